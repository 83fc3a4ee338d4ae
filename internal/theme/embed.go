package theme

import "embed"

// EmbeddedThemes ships the built-in overlay palettes.
//
//go:embed defaults/*.theme
var EmbeddedThemes embed.FS
