// Package render maintains the retained raster for the annotation surface
// and the integer drawing primitives it is built from.
package render

import (
	"image"
	"image/color"
	"math"

	"github.com/example/ghostcanvas/internal/annotate"
)

func setThickPixel(img *image.RGBA, x, y, thick int, col color.Color) {
	r := thick / 2
	for dx := -r; dx <= r; dx++ {
		for dy := -r; dy <= r; dy++ {
			px := x + dx
			py := y + dy
			if image.Pt(px, py).In(img.Bounds()) {
				img.Set(px, py, col)
			}
		}
	}
}

// DrawLine draws a line between the two points with the given thickness.
func DrawLine(img *image.RGBA, x0, y0, x1, y1 int, col color.Color, thick int) {
	dx := math.Abs(float64(x1 - x0))
	dy := math.Abs(float64(y1 - y0))
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	for {
		setThickPixel(img, x0, y0, thick, col)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawRect outlines rect with the given thickness.
func DrawRect(img *image.RGBA, rect image.Rectangle, col color.Color, thick int) {
	DrawLine(img, rect.Min.X, rect.Min.Y, rect.Max.X-1, rect.Min.Y, col, thick)
	DrawLine(img, rect.Max.X-1, rect.Min.Y, rect.Max.X-1, rect.Max.Y-1, col, thick)
	DrawLine(img, rect.Max.X-1, rect.Max.Y-1, rect.Min.X, rect.Max.Y-1, col, thick)
	DrawLine(img, rect.Min.X, rect.Max.Y-1, rect.Min.X, rect.Min.Y, col, thick)
}

// DrawEllipse outlines the ellipse centred at (cx, cy) with the given radii.
func DrawEllipse(img *image.RGBA, cx, cy, rx, ry int, col color.Color, thick int) {
	steps := int(math.Ceil(2 * math.Pi * math.Sqrt(float64(rx*rx+ry*ry))))
	if steps < 8 {
		steps = 8
	}
	var prevX, prevY int
	for i := 0; i <= steps; i++ {
		angle := 2 * math.Pi * float64(i) / float64(steps)
		x := cx + int(math.Cos(angle)*float64(rx))
		y := cy + int(math.Sin(angle)*float64(ry))
		if i > 0 {
			DrawLine(img, prevX, prevY, x, y, col, thick)
		} else {
			setThickPixel(img, x, y, thick, col)
		}
		prevX, prevY = x, y
	}
}

// DrawArrow draws a line from (x0, y0) to (x1, y1) with a head at the end.
func DrawArrow(img *image.RGBA, x0, y0, x1, y1 int, col color.Color, thick int) {
	DrawLine(img, x0, y0, x1, y1, col, thick)
	angle := math.Atan2(float64(y1-y0), float64(x1-x0))
	size := float64(6 + thick*2)
	a1 := angle + math.Pi/6
	a2 := angle - math.Pi/6
	x2 := x1 - int(math.Cos(a1)*size)
	y2 := y1 - int(math.Sin(a1)*size)
	x3 := x1 - int(math.Cos(a2)*size)
	y3 := y1 - int(math.Sin(a2)*size)
	DrawLine(img, x1, y1, x2, y2, col, thick)
	DrawLine(img, x1, y1, x3, y3, col, thick)
}

// DrawItem renders one annotation item onto img.
func DrawItem(img *image.RGBA, it annotate.Item) {
	switch v := it.(type) {
	case *annotate.Stroke:
		if len(v.Points) == 1 {
			setThickPixel(img, v.Points[0].X, v.Points[0].Y, v.Width, v.Color)
			return
		}
		for i := 0; i < len(v.Points)-1; i++ {
			a, b := v.Points[i], v.Points[i+1]
			DrawLine(img, a.X, a.Y, b.X, b.Y, v.Color, v.Width)
		}
	case *annotate.Shape:
		DrawShape(img, v)
	}
}

// DrawShape renders a parametric shape onto img.
func DrawShape(img *image.RGBA, sh *annotate.Shape) {
	switch sh.Kind {
	case annotate.ShapeRect:
		DrawRect(img, sh.Bounds(), sh.Color, sh.Width)
	case annotate.ShapeCircle:
		b := sh.Bounds()
		cx := (b.Min.X + b.Max.X) / 2
		cy := (b.Min.Y + b.Max.Y) / 2
		DrawEllipse(img, cx, cy, b.Dx()/2, b.Dy()/2, sh.Color, sh.Width)
	case annotate.ShapeLine:
		DrawLine(img, sh.Start.X, sh.Start.Y, sh.End.X, sh.End.Y, sh.Color, sh.Width)
	case annotate.ShapeArrow:
		DrawArrow(img, sh.Start.X, sh.Start.Y, sh.End.X, sh.End.Y, sh.Color, sh.Width)
	}
}
