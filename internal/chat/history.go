// Package chat owns the conversation model and the worker that runs one
// streaming request/response cycle against a provider adapter.
package chat

// Role distinguishes who produced a turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is one confirmed conversation turn. Immutable once appended.
type Turn struct {
	Role   Role
	Text   string
	Images []string // opaque image references (file paths)
}

// History is the ordered, append-only turn log. The stored history is never
// truncated; the worker derives a bounded window from a snapshot of it.
type History []Turn

// DefaultWindow is the number of trailing turns sent to the provider when
// the config does not say otherwise.
const DefaultWindow = 10

// Window returns the last n turns. n <= 0 returns the whole history.
func (h History) Window(n int) History {
	if n <= 0 || len(h) <= n {
		return h
	}
	return h[len(h)-n:]
}

// Clone returns a snapshot the worker can hold while the UI keeps appending.
func (h History) Clone() History {
	out := make(History, len(h))
	copy(out, h)
	return out
}
