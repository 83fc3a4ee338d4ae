package annotate

import "image/color"

// Mode is the active interaction mode selected in the toolbar.
type Mode int

const (
	ModeIdle Mode = iota
	ModeDraw
	ModeErase
	ModeShape
	ModeText
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeDraw:
		return "draw"
	case ModeErase:
		return "erase"
	case ModeShape:
		return "shape"
	case ModeText:
		return "text"
	}
	return "unknown"
}

// DefaultWidth is the initial brush width.
const DefaultWidth = 4

// Tools is the current tool selection. It is mutated by UI controls and read
// by the input router; the store never touches it.
type Tools struct {
	Mode  Mode
	Color color.RGBA
	Width int
	Shape ShapeKind
}

// PaletteColor pairs a palette entry with a human readable name.
type PaletteColor struct {
	Name  string
	Color color.RGBA
}

var palette = []PaletteColor{
	{"Yellow", color.RGBA{255, 255, 0, 255}},
	{"Red", color.RGBA{255, 0, 0, 255}},
	{"Lime", color.RGBA{0, 255, 0, 255}},
	{"Blue", color.RGBA{0, 0, 255, 255}},
	{"Cyan", color.RGBA{0, 255, 255, 255}},
	{"Magenta", color.RGBA{255, 0, 255, 255}},
	{"White", color.RGBA{255, 255, 255, 255}},
	{"Black", color.RGBA{0, 0, 0, 255}},
}

// Palette returns the selectable annotation colors.
func Palette() []PaletteColor {
	out := make([]PaletteColor, len(palette))
	copy(out, palette)
	return out
}

// NewTools returns the default tool selection: idle, yellow, default width.
func NewTools() *Tools {
	return &Tools{
		Mode:  ModeIdle,
		Color: palette[0].Color,
		Width: DefaultWidth,
		Shape: ShapeRect,
	}
}
