package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/ghostcanvas/internal/chat"
	"github.com/example/ghostcanvas/internal/clipboard"
	"github.com/example/ghostcanvas/internal/provider"
	"github.com/example/ghostcanvas/internal/provider/gemini"
	"github.com/example/ghostcanvas/internal/provider/ollama"
	"github.com/example/ghostcanvas/internal/session"
)

// buildProviderFn is swapped in tests to avoid real backends.
var buildProviderFn = buildProvider

func buildProvider(r *root) (provider.Provider, error) {
	switch r.providerName {
	case "gemini":
		key := os.Getenv("GEMINI_API_KEY")
		if key == "" {
			return nil, errors.New("GEMINI_API_KEY is not set; put it in the environment or a .env file")
		}
		return gemini.New(key, r.modelName), nil
	case "ollama":
		return ollama.New(r.modelName, ollama.WithBaseURL(r.config.Chat.OllamaURL)), nil
	}
	return nil, fmt.Errorf("unknown provider %q", r.providerName)
}

func openSessions() (*session.Store, error) {
	dir := dataDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return session.Open(filepath.Join(dir, "sessions.db"))
}

func newWorker(r *root, prov provider.Provider) *chat.Worker {
	return chat.NewWorker(prov,
		chat.WithWindow(r.config.Chat.HistoryWindow),
		chat.WithRetryPolicy(chat.RetryPolicy{
			Attempts:  r.config.Chat.RetryAttempts,
			BaseDelay: r.config.Chat.RetryBaseDelay,
		}),
		chat.WithLogger(r.log),
	)
}

// streamAnswer runs one request cycle, echoing chunks to stdout as they
// arrive. The answer is returned only when the cycle completed; on failure
// the accumulated text has already been echoed but is discarded, so the
// caller never persists a partial model turn.
func streamAnswer(ctx context.Context, w *chat.Worker, history chat.History, attachments []string) (string, error) {
	events, err := w.Run(ctx, history, attachments)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for ev := range events {
		switch ev.Kind {
		case chat.EventChunk:
			fmt.Print(ev.Text)
			sb.WriteString(ev.Text)
		case chat.EventDone:
			fmt.Println()
		case chat.EventError:
			if sb.Len() > 0 {
				fmt.Println()
			}
			return "", ev.Err
		}
	}
	return sb.String(), nil
}

type askOptions struct {
	images     []string
	files      []string
	copyAnswer bool
}

// askOnce appends the user turn to the session, streams the answer, and
// persists the model turn. Images and files ride along on the user turn.
// A failed cycle leaves the session with the user turn only.
func askOnce(ctx context.Context, r *root, store *session.Store, sessionID int64, prompt string, opts askOptions) error {
	prov, err := buildProviderFn(r)
	if err != nil {
		return err
	}
	userTurn := chat.Turn{Role: chat.RoleUser, Text: prompt, Images: opts.images}
	if err := store.AppendTurn(ctx, sessionID, userTurn, opts.files); err != nil {
		return fmt.Errorf("save question: %w", err)
	}
	history, err := store.History(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	answer, err := streamAnswer(ctx, newWorker(r, prov), history, opts.files)
	if err != nil {
		return err
	}
	if answer != "" {
		modelTurn := chat.Turn{Role: chat.RoleModel, Text: answer}
		if err := store.AppendTurn(ctx, sessionID, modelTurn, nil); err != nil {
			return fmt.Errorf("save answer: %w", err)
		}
	}
	if opts.copyAnswer && answer != "" {
		if err := clipboard.WriteText(answer); err != nil {
			fmt.Fprintf(os.Stderr, "warning: copy answer: %v\n", err)
		}
	}
	r.notifyResponse(r.modelName)
	return nil
}

// resolveSession returns the id to ask under, creating a session when none
// was requested.
func resolveSession(ctx context.Context, store *session.Store, requested int64) (int64, error) {
	if requested > 0 {
		return requested, nil
	}
	id, err := store.Create(ctx)
	if err != nil {
		return 0, fmt.Errorf("create session: %w", err)
	}
	return id, nil
}

// splitAttachments turns a comma separated -attach value into paths.
func splitAttachments(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(value, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
