package provider

import (
	"bufio"
	"io"
	"strings"
)

// SSEScanner reads the data payloads of a Server-Sent-Events body. Only the
// data field matters for the backends used here; event names, ids and retry
// hints are skipped.
type SSEScanner struct {
	r      *bufio.Reader
	closed bool
}

// NewSSEScanner wraps an SSE response body.
func NewSSEScanner(r io.Reader) *SSEScanner {
	return &SSEScanner{r: bufio.NewReader(r)}
}

// Next returns the next event's data payload. Multi-line data fields are
// joined with newlines. Returns io.EOF once the body is exhausted.
func (s *SSEScanner) Next() (string, error) {
	if s.closed {
		return "", io.EOF
	}
	var data strings.Builder
	for {
		line, err := s.r.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")

		switch {
		case line == "":
			// Blank line terminates an event.
			if err == nil && data.Len() > 0 {
				return data.String(), nil
			}
		case strings.HasPrefix(line, ":"):
			// Comment, skip.
		default:
			field, value, _ := strings.Cut(line, ":")
			if field == "data" {
				if data.Len() > 0 {
					data.WriteByte('\n')
				}
				data.WriteString(strings.TrimPrefix(value, " "))
			}
		}

		if err != nil {
			s.closed = true
			if err == io.EOF && data.Len() > 0 {
				return data.String(), nil
			}
			return "", err
		}
	}
}
