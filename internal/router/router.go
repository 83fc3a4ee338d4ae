// Package router converts raw pointer events into annotation store calls,
// driven by the active tool mode. It is a small state machine owned by the
// annotation surface's event loop.
package router

import (
	"image"

	"golang.org/x/mobile/event/mouse"

	"github.com/example/ghostcanvas/internal/annotate"
)

// State is the router's interaction state.
type State int

const (
	StateIdle State = iota
	StateDrawing
	StateErasing
	StateShaping
	StateEditingText
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDrawing:
		return "drawing"
	case StateErasing:
		return "erasing"
	case StateShaping:
		return "shaping"
	case StateEditingText:
		return "editing_text"
	}
	return "unknown"
}

// Router routes pointer events to the store according to the tool mode.
// Chrome rectangles (toolbar, command bar) shadow the drawing surface: events
// inside them are ignored here and handled by the surrounding UI.
type Router struct {
	tools *annotate.Tools
	store *annotate.Store

	state  State
	stroke *annotate.Stroke
	chrome []image.Rectangle

	// PlaceText is invoked on pointer-down in text mode with the surface
	// point where a text box should appear. May be nil.
	PlaceText func(image.Point)
}

// New creates a router over the given tool state and store.
func New(tools *annotate.Tools, store *annotate.Store) *Router {
	return &Router{tools: tools, store: store}
}

// State returns the current interaction state.
func (r *Router) State() State { return r.state }

// AddChrome registers a region that shadows the drawing surface.
func (r *Router) AddChrome(rect image.Rectangle) {
	r.chrome = append(r.chrome, rect)
}

// InChrome reports whether p falls inside a registered chrome region.
func (r *Router) InChrome(p image.Point) bool {
	for _, c := range r.chrome {
		if p.In(c) {
			return true
		}
	}
	return false
}

// Reset clears the store and returns the machine to idle. Used when the
// annotation session is cleared.
func (r *Router) Reset() {
	r.state = StateIdle
	r.stroke = nil
	r.store.Clear()
}

// FinishText leaves the text editing state. The surrounding UI calls this
// when the text box is committed or dismissed.
func (r *Router) FinishText() {
	if r.state == StateEditingText {
		r.state = StateIdle
	}
}

// Mouse feeds one pointer event through the machine. It reports whether the
// event mutated the surface (and a repaint is needed).
func (r *Router) Mouse(e mouse.Event) bool {
	p := image.Pt(int(e.X), int(e.Y))
	switch e.Direction {
	case mouse.DirPress:
		if e.Button != mouse.ButtonLeft || r.InChrome(p) {
			return false
		}
		return r.press(p)
	case mouse.DirNone:
		return r.move(p)
	case mouse.DirRelease:
		if e.Button != mouse.ButtonLeft {
			return false
		}
		return r.release(p)
	}
	return false
}

func (r *Router) press(p image.Point) bool {
	switch r.tools.Mode {
	case annotate.ModeDraw:
		r.state = StateDrawing
		r.stroke = r.store.BeginStroke(p, r.tools.Color, r.tools.Width)
		return true
	case annotate.ModeErase:
		r.state = StateErasing
		return r.store.EraseAt(p, annotate.EraseRadius(r.tools.Width)) > 0
	case annotate.ModeShape:
		r.state = StateShaping
		r.store.BeginShape(r.tools.Shape, p, r.tools.Color, r.tools.Width)
		return true
	case annotate.ModeText:
		r.state = StateEditingText
		if r.PlaceText != nil {
			r.PlaceText(p)
		}
		return true
	}
	return false
}

func (r *Router) move(p image.Point) bool {
	switch r.state {
	case StateDrawing:
		r.store.ExtendStroke(r.stroke, p)
		return true
	case StateErasing:
		// Erasing is painted: every traversed point erases.
		return r.store.EraseAt(p, annotate.EraseRadius(r.tools.Width)) > 0
	case StateShaping:
		r.store.UpdateShapePreview(p)
		return true
	}
	return false
}

func (r *Router) release(p image.Point) bool {
	switch r.state {
	case StateDrawing:
		committed := r.store.CommitStroke(r.stroke)
		r.stroke = nil
		r.state = StateIdle
		return committed
	case StateErasing:
		r.state = StateIdle
		return false
	case StateShaping:
		r.state = StateIdle
		return r.store.CommitShape(p)
	}
	return false
}

// ActiveStroke returns the in-progress stroke for preview rendering, or nil.
func (r *Router) ActiveStroke() *annotate.Stroke {
	if r.state != StateDrawing {
		return nil
	}
	return r.stroke
}
