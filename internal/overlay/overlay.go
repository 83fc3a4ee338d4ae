// Package overlay is the fullscreen annotation window: a frozen screen frame
// under a drawing surface, a toolbar, and a one line ask bar. It owns the
// shiny event loop and feeds pointer events through the input router.
package overlay

import (
	"context"
	"image"
	"image/color"
	"log"
	"sync"
	"time"
	"unicode"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/ghostcanvas/internal/annotate"
	"github.com/example/ghostcanvas/internal/clipboard"
	"github.com/example/ghostcanvas/internal/compositor"
	"github.com/example/ghostcanvas/internal/render"
	"github.com/example/ghostcanvas/internal/router"
	"github.com/example/ghostcanvas/internal/theme"
)

// Result is the annotated capture handed to the submit callback when the
// user confirms the ask bar.
type Result struct {
	Frame  *image.RGBA
	Items  []annotate.Item
	Texts  []compositor.TextBox
	Prompt string
}

// Overlay drives one annotation session over a frozen frame.
type Overlay struct {
	frame  *image.RGBA
	th     *theme.Theme
	tools  *annotate.Tools
	store  *annotate.Store
	cache  *render.Cache
	router *router.Router

	texts    []compositor.TextBox
	textSize float64

	onSubmit func(Result)
	onClose  func()
	copyFn   func(image.Image) error

	closeOnce sync.Once
}

// Option configures an Overlay.
type Option func(*Overlay)

// WithTheme sets the overlay chrome palette.
func WithTheme(th *theme.Theme) Option {
	return func(o *Overlay) {
		if th != nil {
			o.th = th
		}
	}
}

// WithBrush sets the initial annotation color and stroke width.
func WithBrush(col color.RGBA, width int) Option {
	return func(o *Overlay) {
		o.tools.Color = col
		if width > 0 {
			o.tools.Width = width
		}
	}
}

// WithTextSize sets the point size used for text annotations.
func WithTextSize(size float64) Option {
	return func(o *Overlay) {
		if size > 0 {
			o.textSize = size
		}
	}
}

// WithOnSubmit sets the callback invoked when the user confirms the ask bar.
// The overlay window closes after the callback returns.
func WithOnSubmit(fn func(Result)) Option {
	return func(o *Overlay) { o.onSubmit = fn }
}

// WithOnClose sets a callback invoked exactly once when the window goes away,
// whether by submit, escape, or the window manager.
func WithOnClose(fn func()) Option {
	return func(o *Overlay) { o.onClose = fn }
}

// New creates an overlay session over the given frame.
func New(frame *image.RGBA, opts ...Option) *Overlay {
	o := &Overlay{
		frame:    frame,
		th:       theme.Default(),
		tools:    annotate.NewTools(),
		textSize: compositor.DefaultTextSize,
		copyFn:   clipboard.WriteImage,
	}
	o.tools.Mode = annotate.ModeDraw
	o.cache = render.NewCache(frame.Bounds())
	o.store = annotate.NewStore(func(inv annotate.Invalidation) {
		o.cache.Apply(inv, o.store.Items())
	})
	o.router = router.New(o.tools, o.store)
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Overlay) undo() { o.store.Undo() }
func (o *Overlay) redo() { o.store.Redo() }

func (o *Overlay) clear() {
	o.router.Reset()
	o.texts = nil
}

func (o *Overlay) notifyClose() {
	o.closeOnce.Do(func() {
		if o.onClose != nil {
			o.onClose()
		}
	})
}

type keyShortcut struct {
	Rune      rune
	Modifiers key.Modifiers
}

// Run executes the UI loop using shiny's driver.
func (o *Overlay) Run() { driver.Main(o.Main) }

func (o *Overlay) Main(s screen.Screen) {
	width := o.frame.Bounds().Dx()
	height := o.frame.Bounds().Dy()
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: width, Height: height, Title: "GhostCanvas"})
	if err != nil {
		log.Fatalf("new window: %v", err)
	}
	defer w.Release()
	defer o.notifyClose()

	tb := newToolbar(o)
	tb.layout(width)
	promptRect := image.Rect(0, height-promptHeight, width, height)
	o.router.AddChrome(tb.rect)
	o.router.AddChrome(promptRect)

	var (
		prompt        string
		promptFocused = true
		editing       bool
		editPos       image.Point
		editBuf       string
		hover         image.Point
		message       string
		messageUntil  time.Time
	)

	o.router.PlaceText = func(p image.Point) {
		editing = true
		editPos = p
		editBuf = ""
		promptFocused = false
	}

	var paintMu sync.Mutex
	var paintCancel context.CancelFunc
	paintCh := make(chan paintState, 1)
	go func() {
		for st := range paintCh {
			ctx, cancel := context.WithCancel(context.Background())
			paintMu.Lock()
			paintCancel = cancel
			paintMu.Unlock()
			drawFrame(ctx, s, w, st)
			paintMu.Lock()
			paintCancel = nil
			paintMu.Unlock()
		}
	}()
	defer close(paintCh)

	note := func(msg string) {
		message = msg
		messageUntil = time.Now().Add(2 * time.Second)
	}

	commitText := func() {
		if editBuf != "" {
			o.texts = append(o.texts, compositor.TextBox{
				Pos:   editPos,
				Text:  editBuf,
				Color: o.tools.Color,
				Size:  o.textSize,
			})
		}
		editing = false
		editBuf = ""
		o.router.FinishText()
	}

	submit := func() {
		if editing {
			commitText()
		}
		if o.onSubmit != nil {
			o.onSubmit(Result{
				Frame:  o.frame,
				Items:  o.store.Items(),
				Texts:  o.texts,
				Prompt: prompt,
			})
		}
	}

	copyFlat := func() {
		flat, err := compositor.Flatten(o.frame, o.store.Items(), o.texts)
		if err != nil {
			log.Printf("flatten: %v", err)
			note("copy failed")
			return
		}
		if err := o.copyFn(flat); err != nil {
			log.Printf("copy: %v", err)
			note("copy failed")
			return
		}
		note("image copied to clipboard")
	}

	actions := map[string]func(){}
	keyboardAction := map[keyShortcut]string{}
	register := func(name string, keys []keyShortcut, fn func()) {
		actions[name] = fn
		for _, sc := range keys {
			keyboardAction[sc] = name
		}
	}
	register("draw", []keyShortcut{{Rune: 'b'}}, func() { o.tools.Mode = annotate.ModeDraw })
	register("erase", []keyShortcut{{Rune: 'e'}}, func() { o.tools.Mode = annotate.ModeErase })
	register("rect", []keyShortcut{{Rune: 'x'}}, func() {
		o.tools.Mode = annotate.ModeShape
		o.tools.Shape = annotate.ShapeRect
	})
	register("circle", []keyShortcut{{Rune: 'o'}}, func() {
		o.tools.Mode = annotate.ModeShape
		o.tools.Shape = annotate.ShapeCircle
	})
	register("line", []keyShortcut{{Rune: 'l'}}, func() {
		o.tools.Mode = annotate.ModeShape
		o.tools.Shape = annotate.ShapeLine
	})
	register("arrow", []keyShortcut{{Rune: 'a'}}, func() {
		o.tools.Mode = annotate.ModeShape
		o.tools.Shape = annotate.ShapeArrow
	})
	register("text", []keyShortcut{{Rune: 't'}}, func() { o.tools.Mode = annotate.ModeText })
	register("undo", []keyShortcut{{Rune: 'z', Modifiers: key.ModControl}}, o.undo)
	register("redo", []keyShortcut{
		{Rune: 'y', Modifiers: key.ModControl},
		{Rune: 'z', Modifiers: key.ModControl | key.ModShift},
	}, o.redo)
	register("copy", []keyShortcut{{Rune: 'c', Modifiers: key.ModControl}}, copyFlat)
	register("clear", nil, o.clear)

	requestPaint := func() {
		paintMu.Lock()
		if paintCancel != nil {
			paintCancel()
		}
		paintMu.Unlock()
		w.Send(paint.Event{})
	}

	snapshot := func() paintState {
		st := paintState{
			width:         width,
			height:        height,
			th:            o.th,
			frame:         o.frame,
			canvas:        o.cache.Image(),
			texts:         o.texts,
			tools:         *o.tools,
			tb:            tb,
			promptRect:    promptRect,
			prompt:        prompt,
			promptFocused: promptFocused,
			editing:       editing,
			editPos:       editPos,
			editBuf:       editBuf,
			hover:         hover,
			message:       message,
			messageUntil:  messageUntil,
		}
		if stroke := o.router.ActiveStroke(); stroke != nil {
			st.preview = &annotate.Stroke{
				Points: append([]image.Point(nil), stroke.Points...),
				Color:  stroke.Color,
				Width:  stroke.Width,
			}
		}
		if sh := o.store.ShapePreview(); sh != nil {
			cp := *sh
			st.shape = &cp
		}
		return st
	}

	for {
		switch e := w.NextEvent().(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				return
			}

		case size.Event:
			width = e.WidthPx
			height = e.HeightPx
			tb.layout(width)
			promptRect = image.Rect(0, height-promptHeight, width, height)
			w.Send(paint.Event{})

		case paint.Event:
			st := snapshot()
			select {
			case <-paintCh: // drop a stale frame the painter has not taken yet
			default:
			}
			paintCh <- st

		case mouse.Event:
			p := image.Pt(int(e.X), int(e.Y))
			hover = p
			if p.In(tb.rect) {
				if e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress {
					if tb.tap(p, o.tools) {
						requestPaint()
					}
				} else if e.Direction == mouse.DirNone {
					w.Send(paint.Event{})
				}
				continue
			}
			if p.In(promptRect) {
				if e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress {
					promptFocused = true
					if editing {
						commitText()
					}
					requestPaint()
				}
				continue
			}
			if e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress {
				promptFocused = false
			}
			if o.router.Mouse(e) {
				requestPaint()
			}

		case key.Event:
			if e.Direction != key.DirPress {
				continue
			}
			if editing {
				switch e.Code {
				case key.CodeReturnEnter:
					commitText()
					requestPaint()
					continue
				case key.CodeEscape:
					editing = false
					editBuf = ""
					o.router.FinishText()
					requestPaint()
					continue
				case key.CodeDeleteBackspace:
					if len(editBuf) > 0 {
						r := []rune(editBuf)
						editBuf = string(r[:len(r)-1])
						requestPaint()
					}
					continue
				}
				if e.Rune > 0 && e.Modifiers&key.ModControl == 0 {
					editBuf += string(e.Rune)
					requestPaint()
				}
				continue
			}
			switch e.Code {
			case key.CodeReturnEnter:
				submit()
				return
			case key.CodeEscape:
				return
			case key.CodeDeleteBackspace:
				if promptFocused && len(prompt) > 0 {
					r := []rune(prompt)
					prompt = string(r[:len(r)-1])
					requestPaint()
				}
				continue
			case key.CodeDeleteForward:
				actions["clear"]()
				requestPaint()
				continue
			}
			// Control chords fire their binding even while the prompt is
			// focused; unbound chords are swallowed so they do not leak
			// garbage runes into the prompt.
			if e.Modifiers&key.ModControl != 0 {
				ks := keyShortcut{Rune: unicode.ToLower(e.Rune), Modifiers: e.Modifiers}
				if name, ok := keyboardAction[ks]; ok {
					actions[name]()
					requestPaint()
				}
				continue
			}
			if promptFocused {
				if e.Rune > 0 {
					prompt += string(e.Rune)
					requestPaint()
				}
			} else if name, ok := keyboardAction[keyShortcut{Rune: unicode.ToLower(e.Rune)}]; ok {
				actions[name]()
				requestPaint()
			}
		}
	}
}
