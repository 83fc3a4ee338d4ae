// Package ollama implements the provider adapter for a local Ollama
// endpoint, streaming newline-delimited JSON from /api/chat.
package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/example/ghostcanvas/internal/provider"
)

const defaultBaseURL = "http://localhost:11434"

// DefaultModel is used when the config names no local model.
const DefaultModel = "llama3"

// Client streams chat completions from a local Ollama server.
type Client struct {
	model   string
	baseURL string
	client  *http.Client
}

// Option modifies a Client during creation.
type Option func(*Client)

// WithBaseURL overrides the endpoint, used by tests.
func WithBaseURL(u string) Option { return func(c *Client) { c.baseURL = u } }

// New creates an Ollama client for the given model.
func New(model string, opts ...Option) *Client {
	if model == "" {
		model = DefaultModel
	}
	c := &Client{
		model:   model,
		baseURL: defaultBaseURL,
		// Local streams have no sensible overall deadline; rely on
		// context cancellation instead.
		client: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Name() string { return "ollama" }

func (c *Client) Vision() bool { return true }

type chatMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatChunk struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Done bool `json:"done"`
}

// Stream dispatches the turns to /api/chat.
func (c *Client) Stream(ctx context.Context, turns []provider.Turn) (provider.Stream, error) {
	msgs, err := toMessages(turns)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(chatRequest{Model: c.model, Messages: msgs, Stream: true})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: ollama endpoint not reachable: %v", provider.ErrUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			return nil, fmt.Errorf("%w: %s", provider.ErrRateLimited, resp.Status)
		case resp.StatusCode == http.StatusConflict:
			return nil, fmt.Errorf("%w: %s", provider.ErrConflict, resp.Status)
		case resp.StatusCode >= 500:
			return nil, fmt.Errorf("%w: %s", provider.ErrUnavailable, resp.Status)
		}
		return nil, fmt.Errorf("ollama: %s: %s", resp.Status, bytes.TrimSpace(body))
	}
	return &stream{body: resp.Body, scanner: bufio.NewScanner(resp.Body)}, nil
}

type stream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	done    bool
}

// Next returns the next non-empty content delta from the NDJSON stream.
func (s *stream) Next() (string, error) {
	if s.done {
		return "", io.EOF
	}
	for s.scanner.Scan() {
		line := bytes.TrimSpace(s.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var chunk chatChunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			continue
		}
		if chunk.Done {
			s.done = true
			if chunk.Message.Content != "" {
				return chunk.Message.Content, nil
			}
			return "", io.EOF
		}
		if chunk.Message.Content != "" {
			return chunk.Message.Content, nil
		}
	}
	s.done = true
	if err := s.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func (s *stream) Close() error { return s.body.Close() }

func toMessages(turns []provider.Turn) ([]chatMessage, error) {
	msgs := make([]chatMessage, 0, len(turns))
	for _, t := range turns {
		// Ollama speaks user/assistant rather than user/model.
		role := t.Role
		if role == provider.RoleModel {
			role = "assistant"
		}
		msg := chatMessage{Role: role, Content: t.Text}
		for _, path := range t.Images {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("read image %s: %w", filepath.Base(path), err)
			}
			msg.Images = append(msg.Images, base64.StdEncoding.EncodeToString(data))
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

// ListModels queries /api/tags for locally available models. Used to build
// the model catalog; an unreachable endpoint is reported as
// provider.ErrUnavailable so the catalog can fall back to defaults.
func ListModels(ctx context.Context, baseURL string) ([]string, error) {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/tags", nil)
	if err != nil {
		return nil, err
	}
	client := &http.Client{Timeout: 3 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", provider.ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama tags: %s", resp.Status)
	}
	var tags struct {
		Models []struct {
			Model string `json:"model"`
			Name  string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		name := m.Model
		if name == "" {
			name = m.Name
		}
		if name != "" {
			out = append(out, name)
		}
	}
	return out, nil
}
