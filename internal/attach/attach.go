// Package attach materializes file attachments into the plain-text context
// block spliced into the final conversation turn. Failures are per-file and
// inline: one unreadable attachment never aborts a request cycle.
package attach

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// textExts are read verbatim. Anything not listed here and not a known
// document format yields an unsupported marker.
var textExts = map[string]bool{
	".txt":  true,
	".md":   true,
	".py":   true,
	".go":   true,
	".js":   true,
	".html": true,
	".css":  true,
	".json": true,
	".xml":  true,
}

// Read returns the textual content of one attachment. Unsupported types and
// read failures are reported as inline marker strings, never as errors.
func Read(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case textExts[ext]:
		data, err := os.ReadFile(path)
		if err != nil {
			return readFailure(path, err)
		}
		return string(data)
	case ext == ".pdf":
		text, err := extractPDF(path)
		if err != nil {
			return readFailure(path, err)
		}
		return text
	default:
		return fmt.Sprintf("[Could not read file type: %s]", ext)
	}
}

func readFailure(path string, err error) string {
	return fmt.Sprintf("[Error reading %s: %v]", filepath.Base(path), err)
}

// BuildContext concatenates the attachments into one context block, each
// file delimited by a header naming it. Returns "" for no attachments.
func BuildContext(paths []string) string {
	var sb strings.Builder
	for _, path := range paths {
		fmt.Fprintf(&sb, "\n--- FILE: %s ---\n%s\n", filepath.Base(path), Read(path))
	}
	return sb.String()
}

// Splice prepends the file context to the live query so the provider can
// tell supplied context apart from the user's own text.
func Splice(fileContext, query string) string {
	if fileContext == "" {
		return query
	}
	return fmt.Sprintf("CONTEXT FROM FILES:\n%s\n\nQUERY: %s", fileContext, query)
}
