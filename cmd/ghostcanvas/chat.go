package main

import (
	"context"
	"flag"
	"strings"
)

// chatCmd asks a text question without a capture.
type chatCmd struct {
	*root
	fs *flag.FlagSet

	sessionID int64
	attach    string
	copy      bool
	question  string
}

func (c *chatCmd) FlagSet() *flag.FlagSet { return c.fs }

func parseChatCmd(args []string, r *root) (*chatCmd, error) {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	c := &chatCmd{root: r, fs: fs}
	fs.Int64Var(&c.sessionID, "session", 0, "continue an existing session instead of starting one")
	fs.StringVar(&c.attach, "attach", "", "comma separated files to include as context")
	fs.BoolVar(&c.copy, "copy", false, "copy the completed answer to the clipboard")
	fs.Usage = usageFunc(c)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	c.question = strings.Join(fs.Args(), " ")
	if strings.TrimSpace(c.question) == "" {
		return nil, &UsageError{of: c}
	}
	return c, nil
}

func (c *chatCmd) Run() error {
	store, err := openSessions()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	id, err := resolveSession(ctx, store, c.sessionID)
	if err != nil {
		return err
	}
	return askOnce(ctx, c.root, store, id, c.question, askOptions{
		files:      splitAttachments(c.attach),
		copyAnswer: c.copy,
	})
}
