package render

import (
	"image"
	"image/color"
	"testing"
)

func TestApplyShadowExpandsBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	subject := image.Pt(5, 5)
	img.Set(subject.X, subject.Y, color.RGBA{R: 255, A: 255})

	opts := ShadowOptions{Radius: 4, Offset: image.Pt(8, 6), Opacity: 0.5}
	out := ApplyShadow(img, opts)
	if out == nil {
		t.Fatal("expected output image")
	}
	expected := image.Rect(0, 0, 22, 20)
	if !out.Bounds().Eq(expected) {
		t.Fatalf("unexpected bounds %v, want %v", out.Bounds(), expected)
	}
	// Spot check that the shadow alpha was written near the offset pixel.
	shadowPt := subject.Add(opts.Offset)
	if out.RGBAAt(shadowPt.X, shadowPt.Y).A == 0 {
		t.Fatalf("expected shadow alpha at %v", shadowPt)
	}
}

func TestApplyShadowNoShadowWhenOpacityZero(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	fill := color.RGBA{R: 200, G: 100, B: 50, A: 255}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, fill)
		}
	}
	out := ApplyShadow(img, ShadowOptions{Radius: 12, Offset: image.Pt(20, 10), Opacity: 0})
	if out != img {
		t.Fatal("zero opacity should return the input image unchanged")
	}
}

func TestApplyShadowBlurredAlpha(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{A: 255})
	opts := ShadowOptions{Radius: 2, Offset: image.Pt(3, 0), Opacity: 1}

	out := ApplyShadow(img, opts)
	if out == nil {
		t.Fatal("expected output image")
	}
	if out.Bounds().Dx() <= img.Bounds().Dx() {
		t.Fatalf("expected wider output bounds")
	}
	// Blur spreads alpha beyond the exact offset location.
	base := img.Bounds().Min.Add(opts.Offset)
	baseAlpha := out.RGBAAt(base.X, base.Y).A
	if baseAlpha == 0 {
		t.Fatal("expected alpha at base shadow location")
	}
	neighbor := out.RGBAAt(base.X+1, base.Y)
	if neighbor.A == 0 {
		t.Fatalf("expected blurred alpha to reach neighbor, base alpha=%d", baseAlpha)
	}
}

func TestApplyShadowClampsOptions(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 3))
	img.Set(1, 1, color.RGBA{A: 255})

	out := ApplyShadow(img, ShadowOptions{Radius: -5, Offset: image.Pt(2, 2), Opacity: 4})
	if out == nil {
		t.Fatal("expected output image")
	}
	// Negative radius clamps to zero, so the canvas only grows by the offset.
	expected := image.Rect(0, 0, 5, 5)
	if !out.Bounds().Eq(expected) {
		t.Fatalf("unexpected bounds %v, want %v", out.Bounds(), expected)
	}
	if got := out.RGBAAt(3, 3).A; got != 255 {
		t.Fatalf("opacity above 1 should clamp to full alpha, got %d", got)
	}
}

func TestApplyShadowNilImage(t *testing.T) {
	if out := ApplyShadow(nil, ShadowOptions{Radius: 8, Offset: image.Pt(4, 4), Opacity: 0.5}); out != nil {
		t.Fatal("nil input should produce nil output")
	}
}
