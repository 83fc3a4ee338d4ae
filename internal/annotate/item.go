// Package annotate holds the vector annotation model: committed items,
// the undo/redo history, and erase hit-testing. It is purely synchronous
// and owned by the UI event loop.
package annotate

import (
	"image"
	"image/color"
)

// ShapeKind selects the parametric shape drawn between two corner points.
type ShapeKind int

const (
	ShapeRect ShapeKind = iota
	ShapeCircle
	ShapeLine
	ShapeArrow
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeRect:
		return "rect"
	case ShapeCircle:
		return "circle"
	case ShapeLine:
		return "line"
	case ShapeArrow:
		return "arrow"
	}
	return "unknown"
}

// Item is either a *Stroke or a *Shape. The interface is sealed so draw and
// hit-test sites can switch exhaustively over the two variants.
type Item interface {
	// Bounds returns the item's bounding rectangle, excluding stroke width.
	Bounds() image.Rectangle
	sealed()
}

// Stroke is a freehand annotation: an ordered point sequence rendered as a
// connected line. A committed stroke always has at least two points.
type Stroke struct {
	Points []image.Point
	Color  color.RGBA
	Width  int
}

func (s *Stroke) sealed() {}

func (s *Stroke) Bounds() image.Rectangle {
	if len(s.Points) == 0 {
		return image.Rectangle{}
	}
	r := image.Rectangle{Min: s.Points[0], Max: s.Points[0].Add(image.Pt(1, 1))}
	for _, p := range s.Points[1:] {
		r = r.Union(image.Rectangle{Min: p, Max: p.Add(image.Pt(1, 1))})
	}
	return r
}

// Shape is a parametric annotation defined by two corner points.
type Shape struct {
	Kind  ShapeKind
	Start image.Point
	End   image.Point
	Color color.RGBA
	Width int
}

func (s *Shape) sealed() {}

func (s *Shape) Bounds() image.Rectangle {
	return image.Rect(s.Start.X, s.Start.Y, s.End.X, s.End.Y).Canon()
}

// Span returns the manhattan distance between the shape's corners, used to
// reject degenerate shapes on commit.
func (s *Shape) Span() int {
	return abs(s.End.X-s.Start.X) + abs(s.End.Y-s.Start.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
