package provider

import "errors"

// Sentinel failures raised by adapters. The worker classifies errors with
// errors.Is; anything that matches none of these is a transport or unknown
// failure and is surfaced with its own message.
var (
	// ErrUnavailable: missing credentials or the backend is not running.
	// Fatal for the cycle, never retried.
	ErrUnavailable = errors.New("provider unavailable")

	// ErrRateLimited: the backend signalled throttling. Retried with
	// exponential backoff up to the configured ceiling.
	ErrRateLimited = errors.New("provider rate limited")

	// ErrConflict: the backend detected a concurrent cycle. Not retried;
	// the caller is asked to wait.
	ErrConflict = errors.New("provider conflict")
)
