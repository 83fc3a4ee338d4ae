package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/example/ghostcanvas/internal/session"
)

// sessionStore is the slice of session.Store the listing paths need; tests
// substitute a fake.
type sessionStore interface {
	Sessions(ctx context.Context) ([]session.Session, error)
	Messages(ctx context.Context, sessionID int64) ([]session.Message, error)
}

// sessionsCmd lists, shows, or deletes saved conversations.
type sessionsCmd struct {
	*root
	fs   *flag.FlagSet
	args []string
}

func (s *sessionsCmd) FlagSet() *flag.FlagSet { return s.fs }

func parseSessionsCmd(args []string, r *root) (*sessionsCmd, error) {
	fs := flag.NewFlagSet("sessions", flag.ExitOnError)
	s := &sessionsCmd{root: r, fs: fs}
	fs.Usage = usageFunc(s)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	s.args = fs.Args()
	return s, nil
}

func (s *sessionsCmd) Run() error {
	store, err := openSessions()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	if len(s.args) == 0 || s.args[0] == "list" {
		return s.runList(ctx, store)
	}
	switch s.args[0] {
	case "show":
		id, err := s.parseID()
		if err != nil {
			return err
		}
		return s.runShow(ctx, store, id)
	case "delete":
		id, err := s.parseID()
		if err != nil {
			return err
		}
		if err := store.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete session %d: %w", id, err)
		}
		fmt.Printf("deleted session %d\n", id)
		return nil
	default:
		return fmt.Errorf("unknown sessions command: %s", s.args[0])
	}
}

func (s *sessionsCmd) parseID() (int64, error) {
	if len(s.args) < 2 {
		return 0, &UsageError{of: s}
	}
	id, err := strconv.ParseInt(s.args[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad session id %q", s.args[1])
	}
	return id, nil
}

func (s *sessionsCmd) runList(ctx context.Context, store sessionStore) error {
	sessions, err := store.Sessions(ctx)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println("no sessions")
		return nil
	}
	for _, sess := range sessions {
		fmt.Printf("%4d  %s  %s\n", sess.ID, sess.CreatedAt.Format("2006-01-02 15:04"), sess.Title)
	}
	return nil
}

func (s *sessionsCmd) runShow(ctx context.Context, store sessionStore, id int64) error {
	msgs, err := store.Messages(ctx, id)
	if err != nil {
		return err
	}
	for _, m := range msgs {
		fmt.Printf("[%s] %s\n", m.Role, m.Text)
		if m.ImagePath != "" {
			fmt.Printf("      image: %s\n", m.ImagePath)
		}
		if len(m.FilePaths) > 0 {
			fmt.Printf("      files: %s\n", strings.Join(m.FilePaths, ", "))
		}
	}
	return nil
}
