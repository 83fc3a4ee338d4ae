package envfile

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := `# comment
GEMINI_API_KEY=abc123
export QUOTED="hello world"
EMPTY=

not-a-pair
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GEMINI_API_KEY", "")
	os.Unsetenv("GEMINI_API_KEY")
	t.Setenv("QUOTED", "")
	os.Unsetenv("QUOTED")
	t.Setenv("EMPTY", "")
	os.Unsetenv("EMPTY")

	res := LoadPath(path)
	if res.Err != nil {
		t.Fatalf("LoadPath: %v", res.Err)
	}
	if !res.Loaded {
		t.Error("expected Loaded")
	}
	if res.Keys != 3 {
		t.Errorf("Keys = %d, want 3", res.Keys)
	}
	if got := os.Getenv("GEMINI_API_KEY"); got != "abc123" {
		t.Errorf("GEMINI_API_KEY = %q", got)
	}
	if got := os.Getenv("QUOTED"); got != "hello world" {
		t.Errorf("QUOTED = %q", got)
	}
}

func TestLoadPathDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("KEPT=fromfile\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("KEPT", "fromshell")

	res := LoadPath(path)
	if res.Err != nil {
		t.Fatalf("LoadPath: %v", res.Err)
	}
	if got := os.Getenv("KEPT"); got != "fromshell" {
		t.Errorf("KEPT = %q, want fromshell", got)
	}
}

func TestLoadPathMissing(t *testing.T) {
	res := LoadPath(filepath.Join(t.TempDir(), "absent.env"))
	if res.Err == nil {
		t.Error("expected error for missing file")
	}
	if res.Loaded {
		t.Error("Loaded should be false")
	}
}

func TestFindUpwards(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(root, ".env")
	if err := os.WriteFile(target, []byte("X=1\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if got := findUpwards(nested, ".env"); got != target {
		t.Errorf("findUpwards = %q, want %q", got, target)
	}
	if got := findUpwards(t.TempDir(), ".env"); got != "" {
		t.Errorf("findUpwards in empty tree = %q, want empty", got)
	}
}
