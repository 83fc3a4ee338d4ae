package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/example/ghostcanvas/internal/catalog"
)

// modelsCmd lists the models available to ask.
type modelsCmd struct {
	*root
	fs       *flag.FlagSet
	manifest string
}

func (m *modelsCmd) FlagSet() *flag.FlagSet { return m.fs }

func parseModelsCmd(args []string, r *root) (*modelsCmd, error) {
	fs := flag.NewFlagSet("models", flag.ExitOnError)
	m := &modelsCmd{root: r, fs: fs}
	fs.StringVar(&m.manifest, "manifest", "", "model manifest file (default: models.yaml in the config directory)")
	fs.Usage = usageFunc(m)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *modelsCmd) Run() error {
	path := m.manifest
	if path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, ".config", "ghostcanvas", "models.yaml")
		}
	}
	base, err := catalog.LoadFile(path)
	if err != nil {
		return fmt.Errorf("load manifest: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	models := catalog.Discover(ctx, base, m.config.Chat.OllamaURL)

	for _, mdl := range models {
		vision := ""
		if mdl.Vision {
			vision = "  (vision)"
		}
		marker := " "
		if mdl.Name == m.modelName && mdl.Provider == m.providerName {
			marker = "*"
		}
		fmt.Printf("%s %-10s %s%s\n", marker, mdl.Provider, mdl.Name, vision)
	}
	return nil
}
