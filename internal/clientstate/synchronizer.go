package clientstate

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/elemephant/backend/internal/domain"
	"github.com/elemephant/backend/pkg/client"
)

// CatalogAPI is the slice of the catalog client the synchronizer drives.
// *client.Client satisfies it.
type CatalogAPI interface {
	ListElephants(ctx context.Context, elementSymbol string) ([]client.Elephant, error)
	UploadElephant(ctx context.Context, elementSymbol, filename, caption string, image io.Reader) (*client.Elephant, error)
	DeleteElephant(ctx context.Context, id uuid.UUID) error
	GenerateImage(ctx context.Context, prompt, quality string) (string, error)
	ListStories(ctx context.Context, elephantID uuid.UUID) ([]client.Story, error)
	CreateStory(ctx context.Context, elephantID uuid.UUID, content string) (*client.Story, error)
	DeleteStory(ctx context.Context, id uuid.UUID) error
	GenerateStory(ctx context.Context, prompt client.StoryPrompt) (string, error)
}

// Notifier receives fire-and-forget user feedback (toasts). Failures notify
// and leave state untouched.
type Notifier interface {
	Success(message string)
	Error(message string)
}

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Error(string)   {}

// ElementsFunc supplies the static element list, typically elements.Load
// adapted, or a remote fetch.
type ElementsFunc func(ctx context.Context) ([]domain.Element, error)

// Synchronizer owns the client-side projection and keeps the grid views, the
// open detail view and the admin form consistent with confirmed mutations.
// Methods are safe for concurrent use; racing mutations resolve last-write-
// wins on the projection (the server stays authoritative).
type Synchronizer struct {
	api      CatalogAPI
	elements ElementsFunc
	notify   Notifier

	mu       sync.Mutex
	closed   bool
	static   []domain.Element
	grouped  Grouped
	views    []ElementView
	selected *ElementView

	activeIndex int
	stories     []client.Story

	form AdminForm
}

func NewSynchronizer(api CatalogAPI, elements ElementsFunc, notify Notifier) *Synchronizer {
	if notify == nil {
		notify = nopNotifier{}
	}
	return &Synchronizer{
		api:      api,
		elements: elements,
		notify:   notify,
		grouped:  make(Grouped),
	}
}

// Close marks the synchronizer disposed. Responses from calls still in flight
// no longer mutate state.
func (s *Synchronizer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// Load fetches the full elephant listing and the element list together and
// rebuilds the projection from scratch.
func (s *Synchronizer) Load(ctx context.Context) error {
	var (
		elephants []client.Elephant
		static    []domain.Element
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		elephants, err = s.api.ListElephants(gctx, "")
		return err
	})
	g.Go(func() error {
		var err error
		static, err = s.elements(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.notify.Error("could not load the catalog")
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.static = static
	s.grouped = GroupBySymbol(elephants)
	s.views = s.grouped.Overlay(static)
	s.selected = nil
	s.activeIndex = 0
	s.stories = nil
	return nil
}

// Views returns the current grid projection, one view per element.
func (s *Synchronizer) Views() []ElementView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.views
}

// Selected returns the open detail view, or nil.
func (s *Synchronizer) Selected() *ElementView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// ActiveIndex is the carousel position within the selected symbol's elephants.
func (s *Synchronizer) ActiveIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeIndex
}

// Stories are the stories of the currently active elephant only; other
// elephants' stories are fetched when the carousel reaches them.
func (s *Synchronizer) Stories() []client.Story {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stories
}

// Select opens the detail view for a symbol and fetches the active elephant's
// stories.
func (s *Synchronizer) Select(ctx context.Context, symbol string) error {
	s.mu.Lock()
	var found *ElementView
	for i := range s.views {
		if s.views[i].Element.Symbol == symbol {
			found = &s.views[i]
			break
		}
	}
	if found == nil {
		s.mu.Unlock()
		return fmt.Errorf("unknown element symbol %q", symbol)
	}
	view := *found
	s.selected = &view
	s.activeIndex = 0
	s.stories = nil
	s.mu.Unlock()

	return s.refreshStories(ctx)
}

// CloseDetail closes the detail view and drops its carousel state.
func (s *Synchronizer) CloseDetail() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = nil
	s.activeIndex = 0
	s.stories = nil
}

// Next advances the carousel, wrapping at the end, and fetches the newly
// active elephant's stories.
func (s *Synchronizer) Next(ctx context.Context) error {
	return s.step(ctx, 1)
}

// Prev steps the carousel backwards, wrapping at the start.
func (s *Synchronizer) Prev(ctx context.Context) error {
	return s.step(ctx, -1)
}

func (s *Synchronizer) step(ctx context.Context, delta int) error {
	s.mu.Lock()
	if s.selected == nil || len(s.selected.Elephants) == 0 {
		s.mu.Unlock()
		return nil
	}
	count := len(s.selected.Elephants)
	s.activeIndex = ((s.activeIndex+delta)%count + count) % count
	s.mu.Unlock()

	return s.refreshStories(ctx)
}

// ActiveElephant returns the elephant the carousel currently shows.
func (s *Synchronizer) ActiveElephant() (client.Elephant, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeElephantLocked()
}

func (s *Synchronizer) activeElephantLocked() (client.Elephant, bool) {
	if s.selected == nil || len(s.selected.Elephants) == 0 {
		return client.Elephant{}, false
	}
	if s.activeIndex >= len(s.selected.Elephants) {
		return client.Elephant{}, false
	}
	return s.selected.Elephants[s.activeIndex], true
}

func (s *Synchronizer) refreshStories(ctx context.Context) error {
	s.mu.Lock()
	active, ok := s.activeElephantLocked()
	s.mu.Unlock()
	if !ok {
		return nil
	}

	stories, err := s.api.ListStories(ctx, active.ID)
	if err != nil {
		s.notify.Error("could not load stories")
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	// The user may have moved on while the fetch was in flight.
	if current, ok := s.activeElephantLocked(); !ok || current.ID != active.ID {
		return nil
	}
	s.stories = stories
	return nil
}

// Upload sends a new elephant to the server and, on confirmation, patches the
// projection and any open detail view for that symbol.
func (s *Synchronizer) Upload(ctx context.Context, elementSymbol, filename, caption string, image io.Reader) (*client.Elephant, error) {
	created, err := s.api.UploadElephant(ctx, elementSymbol, filename, caption, image)
	if err != nil {
		s.notify.Error("upload failed")
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return created, nil
	}
	s.grouped.ApplyCreate(*created)
	s.reconcileLocked(created.ElementSymbol, uuid.Nil)
	s.notify.Success("elephant added")
	return created, nil
}

// DeleteElephant deletes on the server and patches local state: the symbol's
// group shrinks, the detail view follows, and if the deleted elephant was the
// last one for the open symbol the detail view closes.
func (s *Synchronizer) DeleteElephant(ctx context.Context, symbol string, id uuid.UUID) error {
	if err := s.api.DeleteElephant(ctx, id); err != nil {
		s.notify.Error("delete failed")
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.grouped.ApplyDelete(symbol, id)
	s.reconcileLocked(symbol, id)
	s.notify.Success("elephant removed")
	return nil
}

// CreateStory persists content for the active elephant and refreshes the
// story list in place.
func (s *Synchronizer) CreateStory(ctx context.Context, content string) (*client.Story, error) {
	s.mu.Lock()
	active, ok := s.activeElephantLocked()
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("no active elephant")
	}

	story, err := s.api.CreateStory(ctx, active.ID, content)
	if err != nil {
		s.notify.Error("could not save the story")
		return nil, err
	}

	s.mu.Lock()
	if !s.closed {
		if current, ok := s.activeElephantLocked(); ok && current.ID == active.ID {
			s.stories = append([]client.Story{*story}, s.stories...)
		}
	}
	s.mu.Unlock()
	s.notify.Success("story saved")
	return story, nil
}

// DeleteStory removes a story of the active elephant.
func (s *Synchronizer) DeleteStory(ctx context.Context, id uuid.UUID) error {
	if err := s.api.DeleteStory(ctx, id); err != nil {
		s.notify.Error("could not delete the story")
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	for i, story := range s.stories {
		if story.ID == id {
			s.stories = append(s.stories[:i:i], s.stories[i+1:]...)
			break
		}
	}
	s.notify.Success("story deleted")
	return nil
}

// reconcileLocked re-derives the element views from the grouping and makes
// the open detail view follow the mutation. Caller holds s.mu.
func (s *Synchronizer) reconcileLocked(symbol string, deletedID uuid.UUID) {
	s.views = s.grouped.Overlay(s.static)

	if s.selected == nil || s.selected.Element.Symbol != symbol {
		return
	}

	remaining := s.grouped[symbol]
	if len(remaining) == 0 {
		// The deleted elephant was the last one for the open symbol.
		s.selected = nil
		s.activeIndex = 0
		s.stories = nil
		return
	}

	view := ElementView{Element: s.selected.Element, Elephants: remaining}
	s.selected = &view
	if s.activeIndex >= len(remaining) {
		s.activeIndex = len(remaining) - 1
	}
	if deletedID != uuid.Nil {
		// The index may now point at a different elephant. Acceptable, but its
		// stories must match what is shown.
		s.stories = nil
	}
}
