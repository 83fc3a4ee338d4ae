package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/example/ghostcanvas/internal/attach"
	"github.com/example/ghostcanvas/internal/logging"
	"github.com/example/ghostcanvas/internal/provider"
)

// ErrBusy is returned by Run while a previous cycle is still in flight.
// The worker is strictly single-flight; callers wait for the terminal event.
var ErrBusy = errors.New("a request cycle is already running")

// RetryPolicy governs re-dispatch on rate-limit failures. Attempts counts
// the first dispatch, so Attempts=3 means at most two retries.
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
}

// DefaultRetryPolicy doubles the delay after each rate-limited attempt.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 3, BaseDelay: 5 * time.Second}
}

// Worker runs one request/response cycle at a time against a provider.
// It never mutates the history it is given; the caller appends the
// confirmed model turn after EventDone.
type Worker struct {
	prov   provider.Provider
	window int
	retry  RetryPolicy
	log    *slog.Logger

	// test seams
	buildContext func(paths []string) string
	sleep        func(ctx context.Context, d time.Duration) error

	running atomic.Bool
}

// Option configures a Worker.
type Option func(*Worker)

// WithWindow bounds how many trailing turns are sent per cycle.
func WithWindow(n int) Option {
	return func(w *Worker) { w.window = n }
}

// WithRetryPolicy overrides the rate-limit retry behaviour.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(w *Worker) { w.retry = p }
}

// WithLogger attaches a structured logger for cycle diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(w *Worker) { w.log = l }
}

// NewWorker returns a worker bound to one provider adapter.
func NewWorker(p provider.Provider, opts ...Option) *Worker {
	w := &Worker{
		prov:         p,
		window:       DefaultWindow,
		retry:        DefaultRetryPolicy(),
		log:          logging.Nop(),
		buildContext: attach.BuildContext,
		sleep:        sleepCtx,
	}
	for _, o := range opts {
		o(w)
	}
	if w.retry.Attempts < 1 {
		w.retry.Attempts = 1
	}
	return w
}

// Run starts one cycle over a snapshot of history. Attachment paths are
// materialized once, up front, and spliced into the final user turn only.
// The returned channel delivers chunks in arrival order and is closed after
// exactly one terminal event. Run fails fast with ErrBusy if a cycle is
// already in flight.
func (w *Worker) Run(ctx context.Context, history History, attachments []string) (<-chan Event, error) {
	if !w.running.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	if len(history) == 0 {
		w.running.Store(false)
		return nil, errors.New("empty history")
	}
	events := make(chan Event, 16)
	go w.cycle(ctx, history.Clone(), attachments, events)
	return events, nil
}

// Busy reports whether a cycle is currently in flight.
func (w *Worker) Busy() bool { return w.running.Load() }

func (w *Worker) cycle(ctx context.Context, history History, attachments []string, events chan<- Event) {
	defer w.running.Store(false)
	defer close(events)

	turns := w.buildTurns(history, attachments)

	stream, err := w.dispatch(ctx, turns, events)
	if err != nil {
		return
	}
	defer stream.Close()

	for {
		if ctx.Err() != nil {
			w.fail(events, ctx.Err())
			return
		}
		text, err := stream.Next()
		if err == io.EOF {
			w.log.Debug("cycle complete")
			events <- Event{Kind: EventDone}
			return
		}
		if err != nil {
			w.fail(events, err)
			return
		}
		events <- Event{Kind: EventChunk, Text: text}
	}
}

// dispatch opens the provider stream, retrying with doubling delays when the
// dispatch itself is rate limited. Failures mid-stream are never retried.
// On failure it emits the terminal error event and returns a non-nil error.
func (w *Worker) dispatch(ctx context.Context, turns []provider.Turn, events chan<- Event) (provider.Stream, error) {
	delay := w.retry.BaseDelay
	for attempt := 1; ; attempt++ {
		stream, err := w.prov.Stream(ctx, turns)
		if err == nil {
			return stream, nil
		}
		if !errors.Is(err, provider.ErrRateLimited) {
			w.fail(events, err)
			return nil, err
		}
		if attempt >= w.retry.Attempts {
			exhausted := fmt.Errorf("max retries exceeded: %w", err)
			w.fail(events, exhausted)
			return nil, exhausted
		}
		w.log.Warn("dispatch rate limited, retrying",
			"provider", w.prov.Name(), "attempt", attempt, "delay", delay)
		if err := w.sleep(ctx, delay); err != nil {
			w.fail(events, err)
			return nil, err
		}
		delay *= 2
	}
}

// buildTurns derives the provider payload: the trailing window of history
// with the attachment context spliced into the last turn. Earlier turns are
// sent verbatim even if they carried attachments when first submitted.
func (w *Worker) buildTurns(history History, attachments []string) []provider.Turn {
	window := history.Window(w.window)
	out := make([]provider.Turn, len(window))
	for i, t := range window {
		out[i] = provider.Turn{Role: string(t.Role), Text: t.Text, Images: t.Images}
	}
	if len(attachments) > 0 {
		fc := w.buildContext(attachments)
		last := &out[len(out)-1]
		last.Text = attach.Splice(fc, last.Text)
	}
	return out
}

func (w *Worker) fail(events chan<- Event, err error) {
	ce := classify(err)
	w.log.Error("cycle failed", "kind", ce.Kind, "error", err)
	events <- Event{Kind: EventError, Err: ce}
}

func classify(err error) *CycleError {
	kind := ErrorTransport
	switch {
	case errors.Is(err, provider.ErrRateLimited):
		kind = ErrorRateLimited
	case errors.Is(err, provider.ErrUnavailable):
		kind = ErrorUnavailable
	case errors.Is(err, provider.ErrConflict):
		kind = ErrorConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		kind = ErrorCanceled
	}
	return &CycleError{Kind: kind, Message: err.Error()}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
