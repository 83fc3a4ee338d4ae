package overlay

import (
	"context"
	"image"
	"image/draw"
	"log"
	"time"

	"golang.org/x/exp/shiny/screen"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/example/ghostcanvas/internal/annotate"
	"github.com/example/ghostcanvas/internal/compositor"
	"github.com/example/ghostcanvas/internal/render"
	"github.com/example/ghostcanvas/internal/theme"
)

const promptHint = "Ask about this capture... (Enter to send, Esc to close)"

// paintState is a snapshot of everything one frame needs. The event loop
// builds it and hands it to the paint goroutine so a slow present never
// blocks input.
type paintState struct {
	width, height int
	th            *theme.Theme
	frame         *image.RGBA
	canvas        *image.RGBA
	preview       *annotate.Stroke
	shape         *annotate.Shape
	texts         []compositor.TextBox
	tools         annotate.Tools
	tb            *toolbar
	promptRect    image.Rectangle
	prompt        string
	promptFocused bool
	editing       bool
	editPos       image.Point
	editBuf       string
	hover         image.Point
	message       string
	messageUntil  time.Time
}

func drawFrame(ctx context.Context, s screen.Screen, w screen.Window, st paintState) {
	b, err := s.NewBuffer(image.Point{st.width, st.height})
	if err != nil {
		log.Printf("new buffer: %v", err)
		return
	}
	defer b.Release()
	dst := b.RGBA()

	draw.Draw(dst, dst.Bounds(), st.frame, st.frame.Bounds().Min, draw.Src)
	draw.Draw(dst, dst.Bounds(), &image.Uniform{st.th.Scrim}, image.Point{}, draw.Over)
	if ctx.Err() != nil {
		return
	}

	draw.Draw(dst, st.canvas.Bounds(), st.canvas, st.canvas.Bounds().Min, draw.Over)
	if st.preview != nil {
		render.DrawItem(dst, st.preview)
	}
	if st.shape != nil {
		render.DrawShape(dst, st.shape)
	}
	if ctx.Err() != nil {
		return
	}

	// Text boxes are previewed with the bitmap face; the exported image is
	// rendered with the real vector face by the compositor.
	for _, t := range st.texts {
		d := &font.Drawer{Dst: dst, Src: image.NewUniform(t.Color), Face: basicfont.Face7x13}
		d.Dot = fixed.P(t.Pos.X, t.Pos.Y+13)
		d.DrawString(t.Text)
	}
	if st.editing {
		d := &font.Drawer{Dst: dst, Src: image.NewUniform(st.tools.Color), Face: basicfont.Face7x13}
		d.Dot = fixed.P(st.editPos.X, st.editPos.Y+13)
		d.DrawString(st.editBuf + "|")
	}
	if ctx.Err() != nil {
		return
	}

	st.tb.draw(dst, st.th, st.tools, st.hover)
	drawPrompt(dst, st)

	if st.message != "" && time.Now().Before(st.messageUntil) {
		drawMessage(dst, st)
	}
	if ctx.Err() != nil {
		return
	}

	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}

func drawPrompt(dst *image.RGBA, st paintState) {
	draw.Draw(dst, st.promptRect, &image.Uniform{st.th.Toolbar}, image.Point{}, draw.Over)
	edge := image.Rect(st.promptRect.Min.X, st.promptRect.Min.Y, st.promptRect.Max.X, st.promptRect.Min.Y+1)
	draw.Draw(dst, edge, &image.Uniform{st.th.ToolbarEdge}, image.Point{}, draw.Src)

	text := st.prompt
	src := image.NewUniform(st.th.ButtonText)
	if text == "" {
		text = promptHint
		src = image.NewUniform(st.th.PromptText)
	}
	d := &font.Drawer{Dst: dst, Src: src, Face: basicfont.Face7x13}
	d.Dot = fixed.P(st.promptRect.Min.X+buttonPad, st.promptRect.Min.Y+(st.promptRect.Dy()+11)/2)
	d.DrawString(text)
	if st.promptFocused && st.prompt != "" {
		cur := image.NewUniform(st.th.PromptCursor)
		cd := &font.Drawer{Dst: dst, Src: cur, Face: basicfont.Face7x13}
		cd.Dot = d.Dot
		cd.DrawString("|")
	}
}

func drawMessage(dst *image.RGBA, st paintState) {
	d := &font.Drawer{Face: basicfont.Face7x13}
	wmsg := d.MeasureString(st.message).Ceil()
	px := (st.width - wmsg) / 2
	py := st.promptRect.Min.Y - 16
	box := image.Rect(px-6, py-14, px+wmsg+6, py+6)
	draw.Draw(dst, box, &image.Uniform{st.th.Toolbar}, image.Point{}, draw.Over)
	strokeRect(dst, box, st.th.ToolbarEdge)
	md := &font.Drawer{Dst: dst, Src: image.NewUniform(st.th.ButtonText), Face: basicfont.Face7x13}
	md.Dot = fixed.P(px, py)
	md.DrawString(st.message)
}
