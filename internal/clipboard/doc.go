// Package clipboard moves composited screenshots and model responses to and
// from the system clipboard. With cgo available it uses golang.design's
// clipboard bindings; without it a pure-Go X11 selection owner takes over.
package clipboard
