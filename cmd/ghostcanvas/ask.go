package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"
	"time"

	"github.com/example/ghostcanvas/internal/capture"
	"github.com/example/ghostcanvas/internal/compositor"
	"github.com/example/ghostcanvas/internal/overlay"
)

// captureFrameFn is swapped in tests.
var captureFrameFn = capture.Frame

// askCmd freezes the screen, opens the annotation overlay, and streams the
// model's answer for the ask bar prompt.
type askCmd struct {
	*root
	fs *flag.FlagSet

	file      string
	monitor   string
	cursor    bool
	sessionID int64
	attach    string
	copy      bool
	prompt    string
}

func (a *askCmd) FlagSet() *flag.FlagSet { return a.fs }

func parseAskCmd(args []string, r *root) (*askCmd, error) {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	a := &askCmd{root: r, fs: fs}
	fs.StringVar(&a.file, "file", "", "annotate an existing image instead of capturing the screen")
	fs.StringVar(&a.monitor, "monitor", "", "capture one monitor: 'primary', an index, or a name fragment")
	fs.BoolVar(&a.cursor, "cursor", false, "include the pointer in the capture")
	fs.Int64Var(&a.sessionID, "session", 0, "continue an existing session instead of starting one")
	fs.StringVar(&a.attach, "attach", "", "comma separated files to include as context")
	fs.BoolVar(&a.copy, "copy", false, "copy the completed answer to the clipboard")
	fs.Usage = usageFunc(a)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	a.prompt = strings.Join(fs.Args(), " ")
	return a, nil
}

func (a *askCmd) Run() error {
	frame, err := a.freeze()
	if err != nil {
		return err
	}
	a.notifyCapture("screen", frame)

	res, submitted := runOverlay(a.root, frame)
	if !submitted {
		return nil
	}
	prompt := res.Prompt
	if prompt == "" {
		prompt = a.prompt
	}
	if prompt == "" {
		return fmt.Errorf("nothing to ask: the ask bar was empty")
	}

	capDir := a.config.Capture.SaveDir
	if capDir == "" {
		capDir = dataDir()
	}
	imgPath := compositor.CapturePath(capDir, time.Now())
	if err := compositor.Export(imgPath, res.Frame, res.Items, res.Texts); err != nil {
		return fmt.Errorf("export capture: %w", err)
	}
	a.log.Debug("capture exported", "path", imgPath)

	store, err := openSessions()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	id, err := resolveSession(ctx, store, a.sessionID)
	if err != nil {
		return err
	}
	return askOnce(ctx, a.root, store, id, prompt, askOptions{
		images:     []string{imgPath},
		files:      splitAttachments(a.attach),
		copyAnswer: a.copy,
	})
}

func (a *askCmd) freeze() (*image.RGBA, error) {
	if a.file != "" {
		return loadImage(a.file)
	}
	frame, err := captureFrameFn(a.monitor, capture.CaptureOptions{IncludeCursor: a.cursor})
	if err != nil {
		return nil, fmt.Errorf("failed to capture screen: %w", err)
	}
	return frame, nil
}

// runOverlay shows the annotation window and reports whether the user
// confirmed the ask bar. Split for testability of the surrounding flow.
var runOverlay = func(r *root, frame *image.RGBA) (overlay.Result, bool) {
	var (
		res       overlay.Result
		submitted bool
	)
	o := overlay.New(frame,
		overlay.WithTheme(r.activeTheme),
		overlay.WithBrush(r.config.Brush.Color, r.config.Brush.Width),
		overlay.WithOnSubmit(func(got overlay.Result) {
			res = got
			submitted = true
		}),
	)
	o.Run()
	return res, submitted
}

func loadImage(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	dec, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	rgba := image.NewRGBA(dec.Bounds())
	draw.Draw(rgba, rgba.Bounds(), dec, dec.Bounds().Min, draw.Src)
	return rgba, nil
}
