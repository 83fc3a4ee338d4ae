package annotate

import "image"

// Hit returns the indices of items considered hit by an erase circle centred
// at p with the given radius, in ascending order.
//
// Strokes use a two-stage test: a cheap bounding-box check against the erase
// circle's bounding square, then a per-point distance test. Any point within
// radius marks the whole stroke hit; erasing removes whole items, never
// partial segments. Shapes are hit when p falls inside their bounding
// rectangle expanded by radius on all sides.
func Hit(p image.Point, radius int, items []Item) []int {
	if radius < 0 {
		radius = 0
	}
	square := image.Rect(p.X-radius, p.Y-radius, p.X+radius+1, p.Y+radius+1)
	var hits []int
	for i, it := range items {
		switch v := it.(type) {
		case *Stroke:
			if !v.Bounds().Overlaps(square) {
				continue
			}
			if strokeHit(v, p, radius) {
				hits = append(hits, i)
			}
		case *Shape:
			if p.In(v.Bounds().Inset(-radius)) {
				hits = append(hits, i)
			}
		}
	}
	return hits
}

func strokeHit(s *Stroke, p image.Point, radius int) bool {
	rr := radius * radius
	for _, q := range s.Points {
		dx := q.X - p.X
		dy := q.Y - p.Y
		if dx*dx+dy*dy <= rr {
			return true
		}
	}
	return false
}

// EraseRadius returns the erase circle radius used when painting the eraser
// over an item drawn with the given brush width.
func EraseRadius(width int) int {
	if r := width * 2; r > 12 {
		return r
	}
	return 12
}
