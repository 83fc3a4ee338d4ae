// Package gemini implements the provider adapter for the Google Gemini
// generateContent API, streaming over SSE. Vision turns are inlined as
// base64 image parts.
package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/example/ghostcanvas/internal/provider"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

// DefaultModel is used when the config names no Gemini model.
const DefaultModel = "gemini-2.0-flash"

// Client streams chat completions from the Gemini API.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// Option modifies a Client during creation.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, used by tests.
func WithBaseURL(u string) Option { return func(c *Client) { c.baseURL = u } }

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.client = h } }

// New creates a Gemini client. The key may be empty; dispatch then fails
// with provider.ErrUnavailable.
func New(apiKey, model string, opts ...Option) *Client {
	if model == "" {
		model = DefaultModel
	}
	c := &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Name() string { return "gemini" }

func (c *Client) Vision() bool { return true }

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiChunk struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Stream dispatches the turns as a streamGenerateContent request.
func (c *Client) Stream(ctx context.Context, turns []provider.Turn) (provider.Stream, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: gemini API key not set", provider.ErrUnavailable)
	}
	contents, err := toContents(turns)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(geminiRequest{Contents: contents})
	if err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/v1beta/models/%s:streamGenerateContent?alt=sse&key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, statusError(resp)
	}
	return newStream(resp.Body), nil
}

func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := strings.TrimSpace(string(body))
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: invalid API key", provider.ErrUnavailable)
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", provider.ErrRateLimited, resp.Status)
	case resp.StatusCode == http.StatusConflict:
		return fmt.Errorf("%w: %s", provider.ErrConflict, resp.Status)
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: %s", provider.ErrUnavailable, resp.Status)
	}
	if msg == "" {
		msg = resp.Status
	}
	return fmt.Errorf("gemini: %s", msg)
}

func toContents(turns []provider.Turn) ([]geminiContent, error) {
	contents := make([]geminiContent, 0, len(turns))
	for _, t := range turns {
		parts := []geminiPart{{Text: t.Text}}
		for _, path := range t.Images {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("read image %s: %w", filepath.Base(path), err)
			}
			parts = append(parts, geminiPart{InlineData: &geminiInlineData{
				MimeType: mimeFor(path),
				Data:     base64.StdEncoding.EncodeToString(data),
			}})
		}
		// Gemini roles match the internal user/model vocabulary directly.
		contents = append(contents, geminiContent{Role: t.Role, Parts: parts})
	}
	return contents, nil
}

func mimeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "image/png"
	}
}
