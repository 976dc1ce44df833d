// Package client is a typed Go client for the elemephant catalog API.
//
// Generation is an explicit two-call protocol: GenerateImage returns an
// ephemeral provider URL that must be re-uploaded through UploadElephant to
// persist, and GenerateStory returns text that must be saved with CreateStory.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Elephant mirrors the API's elephant record.
type Elephant struct {
	ID            uuid.UUID `json:"id"`
	ElementSymbol string    `json:"elementSymbol"`
	ImageURL      string    `json:"imageUrl"`
	BlobKey       string    `json:"blobKey"`
	Caption       string    `json:"caption"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Story mirrors the API's story record.
type Story struct {
	ID         uuid.UUID `json:"id"`
	ElephantID uuid.UUID `json:"elephantId"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
}

// SymbolUsage is one element's slice of the storage usage report.
type SymbolUsage struct {
	Count int   `json:"count"`
	Bytes int64 `json:"size"`
}

// APIError is a non-2xx response decoded from the server's error envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d, code %s): %s", e.Status, e.Code, e.Message)
}

// StoryPrompt carries everything the story generation endpoint embeds in its
// narrative template.
type StoryPrompt struct {
	ElephantID    uuid.UUID `json:"elephantId"`
	ElementSymbol string    `json:"elementSymbol"`
	ElementName   string    `json:"elementName"`
	Caption       string    `json:"caption"`
	ImageURL      string    `json:"imageUrl"`
}

type Client struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient overrides the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithAuthToken attaches a bearer token to every request.
func WithAuthToken(token string) Option {
	return func(c *Client) { c.authToken = token }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login exchanges the admin token for a bearer JWT and attaches it to all
// subsequent requests.
func (c *Client) Login(ctx context.Context, adminToken string) error {
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", map[string]string{"token": adminToken}, &resp); err != nil {
		return err
	}
	c.authToken = resp.Token
	return nil
}

// ListElephants returns every elephant, or only those for elementSymbol when
// it is non-empty. Newest first.
func (c *Client) ListElephants(ctx context.Context, elementSymbol string) ([]Elephant, error) {
	path := "/api/elephants"
	if elementSymbol != "" {
		path += "?element=" + url.QueryEscape(elementSymbol)
	}
	var out []Elephant
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UploadElephant uploads image bytes with a caption for an element symbol.
func (c *Client) UploadElephant(ctx context.Context, elementSymbol, filename, caption string, image io.Reader) (*Elephant, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, fmt.Errorf("copy image: %w", err)
	}
	if err := mw.WriteField("elementSymbol", elementSymbol); err != nil {
		return nil, fmt.Errorf("write field: %w", err)
	}
	if err := mw.WriteField("caption", caption); err != nil {
		return nil, fmt.Errorf("write field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/elephants/upload", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out Elephant
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteElephant removes an elephant and its stories.
func (c *Client) DeleteElephant(ctx context.Context, id uuid.UUID) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/elephants/delete?id="+id.String(), nil, nil)
}

// Usage reports blob count and byte totals grouped by element symbol.
func (c *Client) Usage(ctx context.Context) (map[string]SymbolUsage, error) {
	var resp struct {
		BlobsByElement map[string]SymbolUsage `json:"blobsByElement"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/elephants/usage", nil, &resp); err != nil {
		return nil, err
	}
	return resp.BlobsByElement, nil
}

// GenerateImage returns an ephemeral image URL for the prompt. The URL
// expires; persist it by downloading and calling UploadElephant.
func (c *Client) GenerateImage(ctx context.Context, prompt, quality string) (string, error) {
	var resp struct {
		ImageURL string `json:"imageUrl"`
	}
	payload := map[string]string{"prompt": prompt, "quality": quality}
	if err := c.doJSON(ctx, http.MethodPost, "/api/elephants/generate", payload, &resp); err != nil {
		return "", err
	}
	return resp.ImageURL, nil
}

// ListStories returns the stories for one elephant, newest first.
func (c *Client) ListStories(ctx context.Context, elephantID uuid.UUID) ([]Story, error) {
	var out []Story
	path := "/api/elephants/stories?elephantId=" + elephantID.String()
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateStory persists story content for an elephant.
func (c *Client) CreateStory(ctx context.Context, elephantID uuid.UUID, content string) (*Story, error) {
	var out Story
	payload := map[string]any{"content": content, "elephantId": elephantID}
	if err := c.doJSON(ctx, http.MethodPost, "/api/elephants/stories", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteStory removes a story by id.
func (c *Client) DeleteStory(ctx context.Context, id uuid.UUID) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/elephants/stories?id="+id.String(), nil, nil)
}

// GenerateStory returns generated narrative text. Nothing is persisted until
// the caller saves it with CreateStory.
func (c *Client) GenerateStory(ctx context.Context, prompt StoryPrompt) (string, error) {
	var resp struct {
		Content string `json:"content"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/elephants/stories/generate", prompt, &resp); err != nil {
		return "", err
	}
	return resp.Content, nil
}

// PlaceholderPNG returns the rendered placeholder tile for an element symbol.
func (c *Client) PlaceholderPNG(ctx context.Context, symbol string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/elephants/placeholder?symbol="+url.QueryEscape(symbol), nil)
	if err != nil {
		return nil, err
	}
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp.StatusCode, raw)
	}
	return raw, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(status int, raw []byte) error {
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Error.Code == "" {
		return &APIError{Status: status, Code: "internal_error", Message: strings.TrimSpace(string(raw))}
	}
	return &APIError{Status: status, Code: envelope.Error.Code, Message: envelope.Error.Message}
}
