package gemini

import (
	"encoding/json"
	"io"

	"github.com/example/ghostcanvas/internal/provider"
)

type stream struct {
	body io.ReadCloser
	sse  *provider.SSEScanner
}

func newStream(body io.ReadCloser) *stream {
	return &stream{body: body, sse: provider.NewSSEScanner(body)}
}

// Next returns the next non-empty text delta from the SSE stream.
func (s *stream) Next() (string, error) {
	for {
		data, err := s.sse.Next()
		if err != nil {
			return "", err
		}
		var chunk geminiChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			// Skip keep-alive or malformed events rather than aborting a
			// stream that is otherwise delivering text.
			continue
		}
		text := chunkText(chunk)
		if text != "" {
			return text, nil
		}
	}
}

func (s *stream) Close() error { return s.body.Close() }

func chunkText(c geminiChunk) string {
	if len(c.Candidates) == 0 {
		return ""
	}
	var out string
	for _, p := range c.Candidates[0].Content.Parts {
		out += p.Text
	}
	return out
}
