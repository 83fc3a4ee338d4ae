package attach

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadTextFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.md")
	require.NoError(t, os.WriteFile(path, []byte("# heading\nbody"), 0o644))
	assert.Equal(t, "# heading\nbody", Read(path))
}

func TestReadUnsupportedType(t *testing.T) {
	assert.Equal(t, "[Could not read file type: .exe]", Read("/tmp/setup.exe"))
}

func TestReadMissingFileInlineMarker(t *testing.T) {
	got := Read(filepath.Join(t.TempDir(), "gone.txt"))
	assert.Contains(t, got, "[Error reading gone.txt:")
}

func TestBuildContextDelimitsFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.json")
	require.NoError(t, os.WriteFile(a, []byte("alpha"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte(`{"k":1}`), 0o644))

	got := BuildContext([]string{a, b})
	assert.Contains(t, got, "--- FILE: a.txt ---\nalpha\n")
	assert.Contains(t, got, "--- FILE: b.json ---\n{\"k\":1}\n")
}

// One unreadable attachment must not poison the rest of the context.
func TestBuildContextPartialFailure(t *testing.T) {
	dir := t.TempDir()
	ok := filepath.Join(dir, "ok.txt")
	require.NoError(t, os.WriteFile(ok, []byte("fine"), 0o644))
	missing := filepath.Join(dir, "missing.txt")

	got := BuildContext([]string{missing, ok})
	assert.Contains(t, got, "[Error reading missing.txt:")
	assert.Contains(t, got, "--- FILE: ok.txt ---\nfine\n")
}

func TestSplice(t *testing.T) {
	assert.Equal(t, "just the question", Splice("", "just the question"))

	got := Splice("\n--- FILE: a.txt ---\nalpha\n", "what does it say?")
	assert.Contains(t, got, "CONTEXT FROM FILES:\n")
	assert.Contains(t, got, "QUERY: what does it say?")
}

func TestDecodePDFString(t *testing.T) {
	assert.Equal(t, "a(b)c", decodePDFString([]byte(`a\(b\)c`)))
	assert.Equal(t, " ", decodePDFString([]byte(`\040`)))
	assert.Equal(t, "line\nnext", decodePDFString([]byte(`line\nnext`)))
}

func TestStreamText(t *testing.T) {
	content := []byte("BT\n(Hello) Tj\n0 -12 Td\n[(wor) -20 (ld)] TJ\nET\n")
	assert.Equal(t, "Hello world", streamText(content))
}
