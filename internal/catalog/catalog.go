// Package catalog resolves which chat models are selectable: a static YAML
// manifest for hosted models plus whatever a local ollama daemon reports.
package catalog

import (
	"context"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/example/ghostcanvas/internal/provider/ollama"
)

// Model is one selectable backend model.
type Model struct {
	Name     string `yaml:"name"`
	Provider string `yaml:"provider"` // "gemini" or "ollama"
	Vision   bool   `yaml:"vision"`
}

type manifest struct {
	Models []Model `yaml:"models"`
}

// Builtin is the fallback when no manifest file exists.
func Builtin() []Model {
	return []Model{
		{Name: "gemini-2.0-flash", Provider: "gemini", Vision: true},
		{Name: "llama3", Provider: "ollama", Vision: false},
	}
}

// LoadFile reads a models.yaml manifest. A missing file is not an error;
// the builtin list is returned instead.
func LoadFile(path string) ([]Model, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Builtin(), nil
	}
	if err != nil {
		return nil, err
	}
	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if len(m.Models) == 0 {
		return Builtin(), nil
	}
	return m.Models, nil
}

// Discover merges the manifest models with the tags a running ollama daemon
// reports. An unreachable daemon is not an error; the manifest stands alone.
func Discover(ctx context.Context, manifest []Model, ollamaURL string) []Model {
	out := make([]Model, len(manifest))
	copy(out, manifest)

	seen := make(map[string]bool, len(out))
	for _, m := range out {
		seen[m.Provider+"/"+m.Name] = true
	}

	local, err := ollama.ListModels(ctx, ollamaURL)
	if err != nil {
		return out
	}
	var extra []Model
	for _, name := range local {
		if seen["ollama/"+name] {
			continue
		}
		seen["ollama/"+name] = true
		extra = append(extra, Model{Name: name, Provider: "ollama"})
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i].Name < extra[j].Name })
	return append(out, extra...)
}
