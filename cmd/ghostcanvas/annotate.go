package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/ghostcanvas/internal/capture"
	"github.com/example/ghostcanvas/internal/compositor"
	"github.com/example/ghostcanvas/internal/config"
	"github.com/example/ghostcanvas/internal/overlay"
	"github.com/example/ghostcanvas/internal/render"
)

// annotateCmd freezes the screen, opens the overlay, and saves the flattened
// result without asking a model anything.
type annotateCmd struct {
	*root
	fs *flag.FlagSet

	file    string
	monitor string
	cursor  bool
	output  string

	shadow        bool
	shadowRadius  int
	shadowOffset  int
	shadowOpacity float64
}

func (a *annotateCmd) FlagSet() *flag.FlagSet { return a.fs }

func parseAnnotateCmd(args []string, r *root) (*annotateCmd, error) {
	fs := flag.NewFlagSet("annotate", flag.ExitOnError)
	a := &annotateCmd{root: r, fs: fs}
	fs.StringVar(&a.file, "file", "", "annotate an existing image instead of capturing the screen")
	fs.StringVar(&a.monitor, "monitor", "", "capture one monitor: 'primary', an index, or a name fragment")
	fs.BoolVar(&a.cursor, "cursor", false, "include the pointer in the capture")
	fs.StringVar(&a.output, "output", "annotated.jpg", "output file path (.png is written when -shadow is set)")
	fs.BoolVar(&a.shadow, "shadow", false, "surround the saved image with a drop shadow")
	shadowDefaults := config.New().Capture
	if r.config != nil {
		shadowDefaults = r.config.Capture
	}
	fs.IntVar(&a.shadowRadius, "shadow-radius", shadowDefaults.ShadowRadius, "shadow blur radius in pixels")
	fs.IntVar(&a.shadowOffset, "shadow-offset", shadowDefaults.ShadowOffset, "shadow offset in pixels, applied to both axes")
	fs.Float64Var(&a.shadowOpacity, "shadow-opacity", shadowDefaults.ShadowOpacity, "shadow opacity between 0 and 1")
	fs.Usage = usageFunc(a)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *annotateCmd) Run() error {
	var frame *image.RGBA
	var err error
	if a.file != "" {
		frame, err = loadImage(a.file)
	} else {
		frame, err = captureFrameFn(a.monitor, capture.CaptureOptions{IncludeCursor: a.cursor})
		if err != nil {
			err = fmt.Errorf("failed to capture screen: %w", err)
		}
	}
	if err != nil {
		return err
	}
	a.notifyCapture("screen", frame)

	res, submitted := runOverlay(a.root, frame)
	if !submitted {
		return nil
	}
	if a.shadow {
		if err := a.saveWithShadow(res); err != nil {
			return err
		}
	} else if err := compositor.Export(a.output, res.Frame, res.Items, res.Texts); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	fmt.Printf("saved %s\n", a.output)
	return nil
}

// saveWithShadow flattens the annotations and surrounds the result with a
// drop shadow. The padding is transparent, so the output is PNG.
func (a *annotateCmd) saveWithShadow(res overlay.Result) error {
	flat, err := compositor.Flatten(res.Frame, res.Items, res.Texts)
	if err != nil {
		return fmt.Errorf("flatten: %w", err)
	}
	shadowed := render.ApplyShadow(flat, render.ShadowOptions{
		Radius:  a.shadowRadius,
		Offset:  image.Pt(a.shadowOffset, a.shadowOffset),
		Opacity: a.shadowOpacity,
	})
	out := a.output
	if ext := strings.ToLower(filepath.Ext(out)); ext != ".png" {
		out = strings.TrimSuffix(out, filepath.Ext(out)) + ".png"
		a.output = out
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, shadowed)
}
