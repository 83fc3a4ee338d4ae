// Package compositor flattens a captured frame, its annotations and text
// boxes into a single image sized for upload to a vision model.
package compositor

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	xdraw "golang.org/x/image/draw"

	"github.com/example/ghostcanvas/internal/annotate"
	"github.com/example/ghostcanvas/internal/render"
)

const (
	// MaxDim bounds the longest side of an exported image.
	MaxDim = 1600
	// JPEGQuality is the export encoder quality.
	JPEGQuality = 85
	// DefaultTextSize is the annotation text point size.
	DefaultTextSize = 18.0
)

// TextBox is a committed text annotation.
type TextBox struct {
	Pos   image.Point // top-left corner
	Text  string
	Color color.RGBA
	Size  float64 // point size; zero means DefaultTextSize
}

var (
	fontOnce sync.Once
	fontTTF  *truetype.Font
	fontErr  error
)

func loadFont() (*truetype.Font, error) {
	fontOnce.Do(func() {
		fontTTF, fontErr = truetype.Parse(goregular.TTF)
	})
	return fontTTF, fontErr
}

// Flatten draws base, items and text boxes into one RGBA image anchored
// at the origin.
func Flatten(base image.Image, items []annotate.Item, texts []TextBox) (*image.RGBA, error) {
	bounds := base.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), base, bounds.Min, draw.Src)

	for _, it := range items {
		render.DrawItem(dst, it)
	}

	if len(texts) == 0 {
		return dst, nil
	}
	ttf, err := loadFont()
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}
	dc := gg.NewContextForRGBA(dst)
	for _, tb := range texts {
		if tb.Text == "" {
			continue
		}
		size := tb.Size
		if size <= 0 {
			size = DefaultTextSize
		}
		face := truetype.NewFace(ttf, &truetype.Options{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		dc.SetFontFace(face)
		dc.SetColor(tb.Color)
		dc.DrawString(tb.Text, float64(tb.Pos.X), float64(tb.Pos.Y)+size)
	}
	return dst, nil
}

// Downscale shrinks img so its longest side is at most maxDim, keeping the
// aspect ratio. Images already within the bound are returned as-is.
func Downscale(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	longest := w
	if h > longest {
		longest = h
	}
	if maxDim <= 0 || longest <= maxDim {
		return img
	}
	scale := float64(maxDim) / float64(longest)
	nw := int(float64(w) * scale)
	nh := int(float64(h) * scale)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Over, nil)
	return dst
}

// EncodeJPEG writes img as JPEG at the export quality. Transparency is
// flattened onto white since JPEG has no alpha channel.
func EncodeJPEG(w io.Writer, img image.Image) error {
	b := img.Bounds()
	opaque := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(opaque, opaque.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(opaque, opaque.Bounds(), img, b.Min, draw.Over)
	return jpeg.Encode(w, opaque, &jpeg.Options{Quality: JPEGQuality})
}

// CapturePath names an export file inside dir the way query captures are
// stored: q_HHMMSS.jpg under a captures subdirectory.
func CapturePath(dir string, t time.Time) string {
	return filepath.Join(dir, "captures", t.Format("q_150405")+".jpg")
}

// Export flattens, downscales and writes the composite to path, creating
// parent directories as needed.
func Export(path string, base image.Image, items []annotate.Item, texts []TextBox) error {
	flat, err := Flatten(base, items, texts)
	if err != nil {
		return err
	}
	scaled := Downscale(flat, MaxDim)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := EncodeJPEG(f, scaled); err != nil {
		f.Close()
		return fmt.Errorf("encode export: %w", err)
	}
	return f.Close()
}
