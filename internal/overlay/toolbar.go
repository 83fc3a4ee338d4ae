package overlay

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/example/ghostcanvas/internal/annotate"
	"github.com/example/ghostcanvas/internal/theme"
)

const (
	toolbarHeight = 32
	promptHeight  = 36
	swatchSize    = 18
	buttonPad     = 8
	buttonGap     = 4
)

var brushWidths = []int{2, 4, 6, 10}

// button is a labelled toolbar control. active reports whether the control's
// selection is current so it can be highlighted.
type button struct {
	label  string
	rect   image.Rectangle
	onTap  func()
	active func() bool
}

type swatch struct {
	color color.RGBA
	rect  image.Rectangle
}

type widthButton struct {
	width int
	rect  image.Rectangle
}

// toolbar is the strip of controls along the top edge of the overlay.
type toolbar struct {
	rect     image.Rectangle
	buttons  []*button
	swatches []swatch
	widths   []widthButton
}

func newToolbar(o *Overlay) *toolbar {
	setMode := func(m annotate.Mode) func() {
		return func() {
			if o.tools.Mode == m {
				o.tools.Mode = annotate.ModeIdle
				return
			}
			o.tools.Mode = m
		}
	}
	setShape := func(k annotate.ShapeKind) func() {
		return func() {
			o.tools.Mode = annotate.ModeShape
			o.tools.Shape = k
		}
	}
	isMode := func(m annotate.Mode) func() bool {
		return func() bool { return o.tools.Mode == m }
	}
	isShape := func(k annotate.ShapeKind) func() bool {
		return func() bool { return o.tools.Mode == annotate.ModeShape && o.tools.Shape == k }
	}

	tb := &toolbar{}
	tb.buttons = []*button{
		{label: "B:Draw", onTap: setMode(annotate.ModeDraw), active: isMode(annotate.ModeDraw)},
		{label: "E:Erase", onTap: setMode(annotate.ModeErase), active: isMode(annotate.ModeErase)},
		{label: "X:Rect", onTap: setShape(annotate.ShapeRect), active: isShape(annotate.ShapeRect)},
		{label: "O:Circle", onTap: setShape(annotate.ShapeCircle), active: isShape(annotate.ShapeCircle)},
		{label: "L:Line", onTap: setShape(annotate.ShapeLine), active: isShape(annotate.ShapeLine)},
		{label: "A:Arrow", onTap: setShape(annotate.ShapeArrow), active: isShape(annotate.ShapeArrow)},
		{label: "T:Text", onTap: setMode(annotate.ModeText), active: isMode(annotate.ModeText)},
		{label: "Z:Undo", onTap: o.undo},
		{label: "Y:Redo", onTap: o.redo},
		{label: "Del:Clear", onTap: o.clear},
	}
	for _, pc := range annotate.Palette() {
		tb.swatches = append(tb.swatches, swatch{color: pc.Color})
	}
	for _, w := range brushWidths {
		tb.widths = append(tb.widths, widthButton{width: w})
	}
	return tb
}

// layout positions every control for the given window width. Rects are in
// window coordinates so hit testing can use pointer positions directly.
func (tb *toolbar) layout(width int) {
	tb.rect = image.Rect(0, 0, width, toolbarHeight)
	d := &font.Drawer{Face: basicfont.Face7x13}
	x := buttonPad
	for _, b := range tb.buttons {
		w := d.MeasureString(b.label).Ceil() + 2*buttonPad
		b.rect = image.Rect(x, buttonGap, x+w, toolbarHeight-buttonGap)
		x += w + buttonGap
	}
	x += buttonPad
	sy := (toolbarHeight - swatchSize) / 2
	for i := range tb.swatches {
		tb.swatches[i].rect = image.Rect(x, sy, x+swatchSize, sy+swatchSize)
		x += swatchSize + buttonGap
	}
	x += buttonPad
	for i := range tb.widths {
		tb.widths[i].rect = image.Rect(x, buttonGap, x+22, toolbarHeight-buttonGap)
		x += 22 + buttonGap
	}
}

// tap dispatches a pointer press at p. It reports whether a control was hit.
func (tb *toolbar) tap(p image.Point, tools *annotate.Tools) bool {
	for _, b := range tb.buttons {
		if p.In(b.rect) {
			b.onTap()
			return true
		}
	}
	for _, s := range tb.swatches {
		if p.In(s.rect) {
			tools.Color = s.color
			return true
		}
	}
	for _, w := range tb.widths {
		if p.In(w.rect) {
			tools.Width = w.width
			return true
		}
	}
	return false
}

func (tb *toolbar) draw(dst *image.RGBA, th *theme.Theme, tools annotate.Tools, hover image.Point) {
	draw.Draw(dst, tb.rect, &image.Uniform{th.Toolbar}, image.Point{}, draw.Over)
	edge := image.Rect(tb.rect.Min.X, tb.rect.Max.Y-1, tb.rect.Max.X, tb.rect.Max.Y)
	draw.Draw(dst, edge, &image.Uniform{th.ToolbarEdge}, image.Point{}, draw.Src)

	for _, b := range tb.buttons {
		bg := th.ButtonBackground
		switch {
		case b.active != nil && b.active():
			bg = th.ButtonActive
		case hover.In(b.rect):
			bg = th.ButtonBackgroundHover
		}
		draw.Draw(dst, b.rect, &image.Uniform{bg}, image.Point{}, draw.Over)
		strokeRect(dst, b.rect, th.ButtonBorder)
		d := &font.Drawer{Dst: dst, Src: image.NewUniform(th.ButtonText), Face: basicfont.Face7x13}
		d.Dot = fixed.P(b.rect.Min.X+buttonPad, b.rect.Min.Y+(b.rect.Dy()+11)/2)
		d.DrawString(b.label)
	}

	for _, s := range tb.swatches {
		draw.Draw(dst, s.rect, &image.Uniform{s.color}, image.Point{}, draw.Src)
		border := th.ButtonBorder
		if tools.Color == s.color {
			border = th.ButtonActive
		}
		strokeRect(dst, s.rect, border)
	}

	for _, wb := range tb.widths {
		bg := th.ButtonBackground
		if tools.Width == wb.width {
			bg = th.ButtonActive
		} else if hover.In(wb.rect) {
			bg = th.ButtonBackgroundHover
		}
		draw.Draw(dst, wb.rect, &image.Uniform{bg}, image.Point{}, draw.Over)
		strokeRect(dst, wb.rect, th.ButtonBorder)
		// Width is previewed as a filled dot rather than a number.
		cx := wb.rect.Min.X + wb.rect.Dx()/2
		cy := wb.rect.Min.Y + wb.rect.Dy()/2
		r := wb.width / 2
		if r < 1 {
			r = 1
		}
		dot := image.Rect(cx-r, cy-r, cx+r+1, cy+r+1)
		draw.Draw(dst, dot, &image.Uniform{th.ButtonText}, image.Point{}, draw.Over)
	}
}

func strokeRect(dst *image.RGBA, r image.Rectangle, col color.RGBA) {
	draw.Draw(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), &image.Uniform{col}, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), &image.Uniform{col}, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), &image.Uniform{col}, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), &image.Uniform{col}, image.Point{}, draw.Src)
}
