package render

import (
	"image"
	"image/color"
	"image/draw"
)

// ShadowOptions configures the drop shadow applied to an exported capture.
// The values come from the [capture] config section or the annotate flags.
// Zero opacity disables the effect.
type ShadowOptions struct {
	Radius  int
	Offset  image.Point
	Opacity float64
}

func (o ShadowOptions) clamped() ShadowOptions {
	if o.Radius < 0 {
		o.Radius = 0
	}
	if o.Opacity < 0 {
		o.Opacity = 0
	}
	if o.Opacity > 1 {
		o.Opacity = 1
	}
	return o
}

// ApplyShadow returns img composited over a blurred drop shadow. The canvas
// grows to fit the blur and offset, the padding stays transparent, and the
// result has a zero-based origin. A nil or empty img, or zero opacity,
// returns img unchanged.
func ApplyShadow(img *image.RGBA, opts ShadowOptions) *image.RGBA {
	if img == nil || img.Bounds().Empty() {
		return img
	}
	opts = opts.clamped()
	if opts.Opacity == 0 {
		return img
	}

	src := img.Bounds()
	halo := src.Inset(-opts.Radius).Add(opts.Offset)
	canvas := src.Union(halo)

	blurred := boxBlur(alphaMask(img, opts.Radius), opts.Radius)

	dst := image.NewRGBA(image.Rect(0, 0, canvas.Dx(), canvas.Dy()))
	tint := image.NewUniform(color.RGBA{A: uint8(opts.Opacity*255 + 0.5)})
	draw.DrawMask(dst, halo.Sub(canvas.Min), tint, image.Point{}, blurred, image.Point{}, draw.Over)
	draw.Draw(dst, src.Sub(canvas.Min), img, src.Min, draw.Over)
	return dst
}

// alphaMask copies the subject's alpha channel onto a gray canvas padded by
// radius on every side, so the blur has room to spread.
func alphaMask(img *image.RGBA, radius int) *image.Gray {
	src := img.Bounds()
	m := image.NewGray(image.Rect(0, 0, src.Dx()+2*radius, src.Dy()+2*radius))
	for y := 0; y < src.Dy(); y++ {
		srcRow := y * img.Stride
		dstRow := (y+radius)*m.Stride + radius
		for x := 0; x < src.Dx(); x++ {
			m.Pix[dstRow+x] = img.Pix[srcRow+x*4+3]
		}
	}
	return m
}

// boxBlur runs one horizontal and one vertical box pass over m using prefix
// sums, keeping the cost linear in the pixel count regardless of radius.
func boxBlur(m *image.Gray, radius int) *image.Gray {
	if radius <= 0 {
		return m
	}
	w, h := m.Bounds().Dx(), m.Bounds().Dy()
	tmp := image.NewGray(m.Bounds())
	out := image.NewGray(m.Bounds())

	sums := make([]int, max(w, h)+1)
	for y := 0; y < h; y++ {
		row := y * m.Stride
		for x := 0; x < w; x++ {
			sums[x+1] = sums[x] + int(m.Pix[row+x])
		}
		for x := 0; x < w; x++ {
			lo, hi := max(x-radius, 0), min(x+radius, w-1)
			tmp.Pix[row+x] = uint8((sums[hi+1] - sums[lo]) / (hi - lo + 1))
		}
	}
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			sums[y+1] = sums[y] + int(tmp.Pix[y*tmp.Stride+x])
		}
		for y := 0; y < h; y++ {
			lo, hi := max(y-radius, 0), min(y+radius, h-1)
			out.Pix[y*out.Stride+x] = uint8((sums[hi+1] - sums[lo]) / (hi - lo + 1))
		}
	}
	return out
}
