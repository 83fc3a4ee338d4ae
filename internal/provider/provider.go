// Package provider defines the adapter contract between the conversation
// worker and concrete LLM backends, plus the failure taxonomy shared by all
// of them. New backends implement Provider; the worker never branches on a
// provider name.
package provider

import "context"

// Roles used in the provider-agnostic turn list. Adapters map them onto
// whatever the wire format expects.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Turn is one provider-agnostic conversation turn. Images are file paths;
// adapters that support vision inline them, others ignore them.
type Turn struct {
	Role   string
	Text   string
	Images []string
}

// Stream is a lazy, cancelable sequence of text chunks. Next returns io.EOF
// when the model is done. Close releases the underlying connection and may
// be called concurrently with Next.
type Stream interface {
	Next() (string, error)
	Close() error
}

// Provider adapts a conversation window into one backend request and streams
// the response back.
type Provider interface {
	// Name identifies the backend in logs and errors.
	Name() string
	// Vision reports whether image turns are supported.
	Vision() bool
	// Stream dispatches the turns and returns the chunk stream. Sentinel
	// errors from errors.go classify dispatch failures.
	Stream(ctx context.Context, turns []Turn) (Stream, error)
}
