package theme

import (
	"image/color"
)

// Theme defines the color palette for the annotation overlay chrome.
type Theme struct {
	Name string

	// Overlay
	Scrim color.RGBA // translucent wash over the frozen frame

	// Toolbar
	Toolbar      color.RGBA
	ToolbarEdge  color.RGBA
	PromptText   color.RGBA // hint text in the ask bar
	PromptCursor color.RGBA

	// Tool buttons
	ButtonBackground      color.RGBA
	ButtonBackgroundHover color.RGBA
	ButtonBackgroundPress color.RGBA
	ButtonActive          color.RGBA // selected tool highlight
	ButtonText            color.RGBA
	ButtonBorder          color.RGBA
}

// Default returns the hardcoded dark overlay theme (fallback).
func Default() *Theme {
	return &Theme{
		Name:                  "Default",
		Scrim:                 color.RGBA{0, 0, 0, 90},
		Toolbar:               color.RGBA{30, 30, 30, 220},
		ToolbarEdge:           color.RGBA{70, 70, 70, 255},
		PromptText:            color.RGBA{160, 160, 160, 255},
		PromptCursor:          color.RGBA{255, 255, 255, 255},
		ButtonBackground:      color.RGBA{45, 45, 45, 255},
		ButtonBackgroundHover: color.RGBA{60, 60, 60, 255},
		ButtonBackgroundPress: color.RGBA{85, 85, 85, 255},
		ButtonActive:          color.RGBA{0, 120, 215, 255},
		ButtonText:            color.RGBA{235, 235, 235, 255},
		ButtonBorder:          color.RGBA{90, 90, 90, 255},
	}
}
