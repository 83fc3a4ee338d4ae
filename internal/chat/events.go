package chat

import "fmt"

// EventKind identifies what an Event carries.
type EventKind int

const (
	// EventChunk carries an incremental response fragment.
	EventChunk EventKind = iota
	// EventDone marks a successfully completed cycle. Terminal.
	EventDone
	// EventError marks a failed or canceled cycle. Terminal.
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventChunk:
		return "chunk"
	case EventDone:
		return "done"
	case EventError:
		return "error"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// ErrorKind classifies a terminal cycle failure for the consumer. The UI
// decides presentation per kind; the worker only classifies.
type ErrorKind int

const (
	// ErrorUnavailable covers unreachable endpoints and bad credentials.
	ErrorUnavailable ErrorKind = iota
	// ErrorRateLimited means the retry ceiling was exhausted on 429s.
	ErrorRateLimited
	// ErrorConflict means the backend reported concurrent-use contention.
	ErrorConflict
	// ErrorCanceled means the caller canceled the cycle via its context.
	ErrorCanceled
	// ErrorTransport covers everything else, including malformed responses.
	ErrorTransport
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorUnavailable:
		return "unavailable"
	case ErrorRateLimited:
		return "rate_limited"
	case ErrorConflict:
		return "conflict"
	case ErrorCanceled:
		return "canceled"
	case ErrorTransport:
		return "transport"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// CycleError is the payload of an EventError.
type CycleError struct {
	Kind    ErrorKind
	Message string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Event is one item on the worker's ordered event channel. Chunks arrive in
// arrival order; exactly one terminal event (done or error) ends the stream,
// after which the channel is closed.
type Event struct {
	Kind EventKind
	Text string      // set for EventChunk
	Err  *CycleError // set for EventError
}
