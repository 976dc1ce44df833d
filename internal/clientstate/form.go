package clientstate

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// FormPhase is the admin form's position in its lifecycle.
type FormPhase string

const (
	PhaseIdle          FormPhase = "idle"
	PhaseFileStaged    FormPhase = "fileStaged"
	PhasePromptEntered FormPhase = "promptEntered"
	PhaseGenerating    FormPhase = "generating"
	PhaseGenerated     FormPhase = "generated"
	PhaseSubmitting    FormPhase = "submitting"
)

// AdminForm is the transient state of the add-an-elephant form: the target
// symbol, a staged image, a caption (doubling as the generation prompt), and
// a generation preview.
type AdminForm struct {
	Phase      FormPhase
	Symbol     string
	Filename   string
	StagedFile []byte
	Caption    string
	PreviewURL string

	// prior is where a failed generate/submit returns to.
	prior FormPhase
}

// FetchFunc downloads a generated preview so it can be staged for upload.
// The default fetches over plain HTTP.
type FetchFunc func(ctx context.Context, url string) ([]byte, error)

func httpFetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch preview: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// Form returns a snapshot of the admin form state.
func (s *Synchronizer) Form() AdminForm {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.form.Phase == "" {
		s.form.Phase = PhaseIdle
	}
	return s.form
}

// SetSymbol picks which element the form targets. Allowed in any non-busy
// phase.
func (s *Synchronizer) SetSymbol(symbol string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.formBusyLocked() {
		return
	}
	s.form.Symbol = symbol
}

// StageFile attaches chosen image bytes, moving the form to fileStaged.
// A previously generated preview is discarded.
func (s *Synchronizer) StageFile(filename string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.formBusyLocked() {
		return
	}
	s.form.Filename = filename
	s.form.StagedFile = data
	s.form.PreviewURL = ""
	s.form.Phase = PhaseFileStaged
}

// SetCaption updates the caption/prompt. An empty caption with no staged file
// returns the form to idle; a caption with no file means promptEntered.
func (s *Synchronizer) SetCaption(caption string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.formBusyLocked() {
		return
	}
	s.form.Caption = caption
	if s.form.StagedFile != nil {
		return
	}
	if strings.TrimSpace(caption) == "" {
		s.form.Phase = PhaseIdle
	} else {
		s.form.Phase = PhasePromptEntered
	}
}

// CanSubmit reports whether both a staged file and a non-empty caption are
// present.
func (s *Synchronizer) CanSubmit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canSubmitLocked()
}

func (s *Synchronizer) canSubmitLocked() bool {
	return !s.formBusyLocked() &&
		s.form.StagedFile != nil &&
		strings.TrimSpace(s.form.Caption) != "" &&
		strings.TrimSpace(s.form.Symbol) != ""
}

func (s *Synchronizer) formBusyLocked() bool {
	return s.form.Phase == PhaseGenerating || s.form.Phase == PhaseSubmitting
}

// GeneratePreview asks the gateway for an image matching the caption. On
// success the form holds a preview URL; on failure it returns to the phase
// it was in before.
func (s *Synchronizer) GeneratePreview(ctx context.Context, quality string) error {
	s.mu.Lock()
	if s.formBusyLocked() {
		s.mu.Unlock()
		return fmt.Errorf("form is busy")
	}
	if strings.TrimSpace(s.form.Caption) == "" {
		s.mu.Unlock()
		return fmt.Errorf("caption is required to generate")
	}
	prompt := s.form.Caption
	s.form.prior = s.form.Phase
	s.form.Phase = PhaseGenerating
	s.mu.Unlock()

	url, err := s.api.GenerateImage(ctx, prompt, quality)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return err
	}
	if err != nil {
		s.form.Phase = s.form.prior
		s.notify.Error("image generation failed")
		return err
	}
	s.form.PreviewURL = url
	s.form.Phase = PhaseGenerated
	return nil
}

// AcceptPreview downloads the generated preview and stages it as if the user
// had picked the file, moving generated -> fileStaged. The provider URL is
// ephemeral, so this must happen before it expires.
func (s *Synchronizer) AcceptPreview(ctx context.Context, fetch FetchFunc) error {
	s.mu.Lock()
	if s.form.Phase != PhaseGenerated || s.form.PreviewURL == "" {
		s.mu.Unlock()
		return fmt.Errorf("no preview to accept")
	}
	url := s.form.PreviewURL
	s.mu.Unlock()

	if fetch == nil {
		fetch = httpFetch
	}
	data, err := fetch(ctx, url)
	if err != nil {
		s.notify.Error("could not fetch the generated image")
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.form.StagedFile = data
	s.form.Filename = "generated.png"
	s.form.PreviewURL = ""
	s.form.Phase = PhaseFileStaged
	return nil
}

// Submit uploads the staged file with its caption. On success the form resets
// to idle and the projection is patched; on failure the form returns to the
// phase it was in.
func (s *Synchronizer) Submit(ctx context.Context) (err error) {
	s.mu.Lock()
	if !s.canSubmitLocked() {
		s.mu.Unlock()
		return fmt.Errorf("a staged file and a caption are required")
	}
	symbol := s.form.Symbol
	filename := s.form.Filename
	caption := s.form.Caption
	staged := s.form.StagedFile
	s.form.prior = s.form.Phase
	s.form.Phase = PhaseSubmitting
	s.mu.Unlock()

	_, err = s.Upload(ctx, symbol, filename, caption, bytes.NewReader(staged))

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return err
	}
	if err != nil {
		s.form.Phase = s.form.prior
		return err
	}
	s.form = AdminForm{Phase: PhaseIdle}
	return nil
}
