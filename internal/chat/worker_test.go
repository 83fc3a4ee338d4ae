package chat

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/ghostcanvas/internal/provider"
)

type fakeStream struct {
	chunks []string
	i      int
	err    error // returned after chunks are exhausted instead of io.EOF
	gate   chan string
}

func (s *fakeStream) Next() (string, error) {
	if s.gate != nil {
		text, ok := <-s.gate
		if !ok {
			return "", io.EOF
		}
		return text, nil
	}
	if s.i < len(s.chunks) {
		c := s.chunks[s.i]
		s.i++
		return c, nil
	}
	if s.err != nil {
		return "", s.err
	}
	return "", io.EOF
}

func (s *fakeStream) Close() error { return nil }

type fakeProvider struct {
	mu          sync.Mutex
	dispatches  int
	failFirst   int   // fail this many dispatches with dispatchErr
	dispatchErr error // error used for failing dispatches
	stream      *fakeStream
	lastTurns   []provider.Turn
}

func (p *fakeProvider) Name() string { return "fake" }
func (p *fakeProvider) Vision() bool { return true }

func (p *fakeProvider) Stream(_ context.Context, turns []provider.Turn) (provider.Stream, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dispatches++
	p.lastTurns = turns
	if p.dispatches <= p.failFirst {
		return nil, p.dispatchErr
	}
	if p.stream == nil {
		return &fakeStream{}, nil
	}
	return p.stream, nil
}

func (p *fakeProvider) dispatchCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dispatches
}

func drain(t *testing.T, events <-chan Event) []Event {
	t.Helper()
	var out []Event
	for {
		select {
		case e, ok := <-events:
			if !ok {
				return out
			}
			out = append(out, e)
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for events")
		}
	}
}

func TestWorkerStreamsChunksInOrder(t *testing.T) {
	p := &fakeProvider{stream: &fakeStream{chunks: []string{"hel", "lo ", "there"}}}
	w := NewWorker(p)

	events, err := w.Run(context.Background(), History{{Role: RoleUser, Text: "hi"}}, nil)
	require.NoError(t, err)

	got := drain(t, events)
	require.Len(t, got, 4)
	assert.Equal(t, Event{Kind: EventChunk, Text: "hel"}, got[0])
	assert.Equal(t, Event{Kind: EventChunk, Text: "lo "}, got[1])
	assert.Equal(t, Event{Kind: EventChunk, Text: "there"}, got[2])
	assert.Equal(t, EventDone, got[3].Kind)
	assert.False(t, w.Busy())
}

func TestWorkerRetriesRateLimitedDispatch(t *testing.T) {
	p := &fakeProvider{
		failFirst:   2,
		dispatchErr: fmt.Errorf("429: %w", provider.ErrRateLimited),
		stream:      &fakeStream{chunks: []string{"ok"}},
	}
	w := NewWorker(p, WithRetryPolicy(RetryPolicy{Attempts: 3, BaseDelay: 10 * time.Millisecond}))
	var slept []time.Duration
	w.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}

	events, err := w.Run(context.Background(), History{{Role: RoleUser, Text: "hi"}}, nil)
	require.NoError(t, err)

	got := drain(t, events)
	require.Len(t, got, 2)
	assert.Equal(t, EventChunk, got[0].Kind)
	assert.Equal(t, EventDone, got[1].Kind)

	assert.Equal(t, 3, p.dispatchCount())
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}, slept)
}

func TestWorkerRateLimitCeiling(t *testing.T) {
	p := &fakeProvider{
		failFirst:   100,
		dispatchErr: fmt.Errorf("429: %w", provider.ErrRateLimited),
	}
	w := NewWorker(p, WithRetryPolicy(RetryPolicy{Attempts: 3, BaseDelay: time.Millisecond}))
	w.sleep = func(context.Context, time.Duration) error { return nil }

	events, err := w.Run(context.Background(), History{{Role: RoleUser, Text: "hi"}}, nil)
	require.NoError(t, err)

	got := drain(t, events)
	require.Len(t, got, 1)
	require.Equal(t, EventError, got[0].Kind)
	assert.Equal(t, ErrorRateLimited, got[0].Err.Kind)
	assert.Contains(t, got[0].Err.Message, "max retries exceeded")
	assert.Equal(t, 3, p.dispatchCount())
}

func TestWorkerNoRetryOnUnavailable(t *testing.T) {
	p := &fakeProvider{
		failFirst:   100,
		dispatchErr: fmt.Errorf("connect: %w", provider.ErrUnavailable),
	}
	w := NewWorker(p)

	events, err := w.Run(context.Background(), History{{Role: RoleUser, Text: "hi"}}, nil)
	require.NoError(t, err)

	got := drain(t, events)
	require.Len(t, got, 1)
	require.Equal(t, EventError, got[0].Kind)
	assert.Equal(t, ErrorUnavailable, got[0].Err.Kind)
	assert.Equal(t, 1, p.dispatchCount())
}

func TestWorkerNoRetryOnConflict(t *testing.T) {
	p := &fakeProvider{
		failFirst:   100,
		dispatchErr: fmt.Errorf("busy: %w", provider.ErrConflict),
	}
	w := NewWorker(p)

	events, err := w.Run(context.Background(), History{{Role: RoleUser, Text: "hi"}}, nil)
	require.NoError(t, err)

	got := drain(t, events)
	require.Len(t, got, 1)
	require.Equal(t, EventError, got[0].Kind)
	assert.Equal(t, ErrorConflict, got[0].Err.Kind)
	assert.Equal(t, 1, p.dispatchCount())
}

func TestWorkerMidStreamFailureIsTerminal(t *testing.T) {
	p := &fakeProvider{stream: &fakeStream{
		chunks: []string{"partial"},
		err:    fmt.Errorf("connection reset"),
	}}
	w := NewWorker(p)

	events, err := w.Run(context.Background(), History{{Role: RoleUser, Text: "hi"}}, nil)
	require.NoError(t, err)

	got := drain(t, events)
	require.Len(t, got, 2)
	assert.Equal(t, Event{Kind: EventChunk, Text: "partial"}, got[0])
	require.Equal(t, EventError, got[1].Kind)
	assert.Equal(t, ErrorTransport, got[1].Err.Kind)
	assert.Equal(t, 1, p.dispatchCount())
}

func TestWorkerSingleFlight(t *testing.T) {
	gate := make(chan string)
	p := &fakeProvider{stream: &fakeStream{gate: gate}}
	w := NewWorker(p)

	events, err := w.Run(context.Background(), History{{Role: RoleUser, Text: "first"}}, nil)
	require.NoError(t, err)

	gate <- "streaming"
	<-events // wait until the cycle is provably in flight

	_, err = w.Run(context.Background(), History{{Role: RoleUser, Text: "second"}}, nil)
	assert.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, 1, p.dispatchCount())

	close(gate)
	got := drain(t, events)
	require.NotEmpty(t, got)
	assert.Equal(t, EventDone, got[len(got)-1].Kind)

	// after the terminal event the worker accepts work again
	events, err = w.Run(context.Background(), History{{Role: RoleUser, Text: "third"}}, nil)
	require.NoError(t, err)
	drain(t, events)
	assert.Equal(t, 2, p.dispatchCount())
}

func TestWorkerCancelMidStream(t *testing.T) {
	// buffered so the test never blocks if the worker notices the cancel
	// before pulling another chunk
	gate := make(chan string, 1)
	p := &fakeProvider{stream: &fakeStream{gate: gate}}
	w := NewWorker(p)

	ctx, cancel := context.WithCancel(context.Background())
	events, err := w.Run(ctx, History{{Role: RoleUser, Text: "hi"}}, nil)
	require.NoError(t, err)

	gate <- "a"
	first := <-events
	assert.Equal(t, Event{Kind: EventChunk, Text: "a"}, first)

	cancel()
	gate <- "b" // lets the blocked Next return so the cancel check runs

	got := drain(t, events)
	require.NotEmpty(t, got)
	last := got[len(got)-1]
	require.Equal(t, EventError, last.Kind)
	assert.Equal(t, ErrorCanceled, last.Err.Kind)
}

func TestWorkerCancelDuringRetryDelay(t *testing.T) {
	p := &fakeProvider{
		failFirst:   100,
		dispatchErr: fmt.Errorf("429: %w", provider.ErrRateLimited),
	}
	w := NewWorker(p, WithRetryPolicy(RetryPolicy{Attempts: 3, BaseDelay: time.Hour}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	events, err := w.Run(ctx, History{{Role: RoleUser, Text: "hi"}}, nil)
	require.NoError(t, err)

	got := drain(t, events)
	require.Len(t, got, 1)
	require.Equal(t, EventError, got[0].Kind)
	assert.Equal(t, ErrorCanceled, got[0].Err.Kind)
	assert.Equal(t, 1, p.dispatchCount())
}

func TestWorkerWindowAndSplice(t *testing.T) {
	var h History
	for i := 0; i < 24; i++ {
		role := RoleUser
		if i%2 == 1 {
			role = RoleModel
		}
		h = append(h, Turn{Role: role, Text: fmt.Sprintf("turn %d", i)})
	}
	h = append(h, Turn{Role: RoleUser, Text: "what is this?", Images: []string{"/tmp/shot.png"}})

	p := &fakeProvider{stream: &fakeStream{chunks: []string{"answer"}}}
	w := NewWorker(p, WithWindow(10))
	w.buildContext = func(paths []string) string {
		assert.Equal(t, []string{"notes.txt"}, paths)
		return "\n--- FILE: notes.txt ---\nsome notes\n"
	}

	events, err := w.Run(context.Background(), h, []string{"notes.txt"})
	require.NoError(t, err)
	drain(t, events)

	sent := p.lastTurns
	require.Len(t, sent, 10)

	// earlier turns inside the window go out verbatim
	assert.Equal(t, "turn 15", sent[0].Text)
	assert.Equal(t, "turn 23", sent[8].Text)
	for _, turn := range sent[:9] {
		assert.NotContains(t, turn.Text, "CONTEXT FROM FILES")
	}

	last := sent[9]
	assert.Equal(t, "user", last.Role)
	assert.Equal(t, []string{"/tmp/shot.png"}, last.Images)
	assert.Equal(t,
		"CONTEXT FROM FILES:\n\n--- FILE: notes.txt ---\nsome notes\n\n\nQUERY: what is this?",
		last.Text)
}

func TestWorkerNoAttachmentsNoSplice(t *testing.T) {
	p := &fakeProvider{stream: &fakeStream{chunks: []string{"ok"}}}
	w := NewWorker(p)
	w.buildContext = func([]string) string {
		t.Fatal("buildContext called with no attachments")
		return ""
	}

	events, err := w.Run(context.Background(), History{{Role: RoleUser, Text: "plain"}}, nil)
	require.NoError(t, err)
	drain(t, events)

	require.Len(t, p.lastTurns, 1)
	assert.Equal(t, "plain", p.lastTurns[0].Text)
}

func TestWorkerEmptyHistory(t *testing.T) {
	w := NewWorker(&fakeProvider{})
	_, err := w.Run(context.Background(), nil, nil)
	assert.Error(t, err)
	assert.False(t, w.Busy())
}

func TestWorkerDoesNotMutateHistory(t *testing.T) {
	h := History{{Role: RoleUser, Text: "original"}}
	p := &fakeProvider{stream: &fakeStream{chunks: []string{"ok"}}}
	w := NewWorker(p)
	w.buildContext = func([]string) string { return "ctx" }

	events, err := w.Run(context.Background(), h, []string{"f.txt"})
	require.NoError(t, err)
	drain(t, events)

	assert.Equal(t, "original", h[0].Text)
	assert.Contains(t, p.lastTurns[0].Text, "QUERY: original")
}
