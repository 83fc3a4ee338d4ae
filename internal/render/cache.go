package render

import (
	"image"
	"image/draw"

	"github.com/example/ghostcanvas/internal/annotate"
)

// Cache is the retained raster mirror of the annotation store. The common
// case, a stroke or shape commit, is painted incrementally onto the existing
// raster; undo, redo, erase and clear replay all items. Either path yields
// the same pixels as replaying every item in order.
//
// The cache is owned by the annotation surface and must only be touched from
// its event loop.
type Cache struct {
	img *image.RGBA
}

// NewCache creates a transparent raster covering bounds.
func NewCache(bounds image.Rectangle) *Cache {
	c := &Cache{}
	c.reset(bounds)
	return c
}

func (c *Cache) reset(bounds image.Rectangle) {
	c.img = image.NewRGBA(bounds)
}

// Image returns the raster. Callers composite it over the captured frame and
// must not draw onto it.
func (c *Cache) Image() *image.RGBA { return c.img }

// Rebuild clears the raster and replays every item in order.
func (c *Cache) Rebuild(items []annotate.Item) {
	draw.Draw(c.img, c.img.Bounds(), image.Transparent, image.Point{}, draw.Src)
	for _, it := range items {
		DrawItem(c.img, it)
	}
}

// Append paints exactly one newly committed item onto the existing raster.
func (c *Cache) Append(it annotate.Item) {
	DrawItem(c.img, it)
}

// Resize replaces the raster when the surface size changes and replays the
// items onto the new bounds.
func (c *Cache) Resize(bounds image.Rectangle, items []annotate.Item) {
	c.reset(bounds)
	c.Rebuild(items)
}

// Apply dispatches a store invalidation: incremental append for commits,
// full rebuild for everything else.
func (c *Cache) Apply(inv annotate.Invalidation, items []annotate.Item) {
	if inv.Full {
		c.Rebuild(items)
		return
	}
	c.Append(inv.Item)
}
