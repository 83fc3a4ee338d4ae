package annotate

import (
	"image"
	"image/color"
)

// MinShapeSpan is the smallest manhattan span a shape may have; anything
// smaller is discarded on commit as an accidental click.
const MinShapeSpan = 8

// Invalidation tells the render cache how much of its raster is stale.
// Item is set only for incremental appends; everything else is a full
// rebuild.
type Invalidation struct {
	Full bool
	Item Item
}

type opKind int

const (
	opCommit opKind = iota
	opErase
)

// op is one entry in the undo history: either a single committed item or an
// atomic erase of one or more items.
type op struct {
	kind    opKind
	items   []Item
	indices []int // original positions of erased items, ascending
}

// Store owns the committed annotation items and their undo/redo history.
// All methods are synchronous and must be called from a single goroutine.
type Store struct {
	items   []Item
	history []op
	redo    []op

	pendingShape *Shape

	invalidate func(Invalidation)
}

// NewStore creates an empty store. fn receives a cache invalidation after
// every mutation; it may be nil.
func NewStore(fn func(Invalidation)) *Store {
	if fn == nil {
		fn = func(Invalidation) {}
	}
	return &Store{invalidate: fn}
}

// Items returns the committed items in draw order. The slice is shared;
// callers must not mutate it.
func (s *Store) Items() []Item { return s.items }

// Len returns the number of committed items.
func (s *Store) Len() int { return len(s.items) }

// CanRedo reports whether a redo entry is available.
func (s *Store) CanRedo() bool { return len(s.redo) > 0 }

// BeginStroke starts an in-progress stroke. The stroke is not part of the
// store until CommitStroke.
func (s *Store) BeginStroke(p image.Point, col color.RGBA, width int) *Stroke {
	return &Stroke{Points: []image.Point{p}, Color: col, Width: width}
}

// ExtendStroke appends a point to an in-progress stroke. The caller must
// have obtained st from BeginStroke and not yet committed it.
func (s *Store) ExtendStroke(st *Stroke, p image.Point) {
	st.Points = append(st.Points, p)
}

// CommitStroke moves the stroke into the store. Strokes with fewer than two
// points are discarded. Reports whether the stroke was kept.
func (s *Store) CommitStroke(st *Stroke) bool {
	if len(st.Points) < 2 {
		return false
	}
	s.commit(st)
	return true
}

// BeginShape starts a shape preview anchored at start. The preview is
// rendered by the UI but is not part of the store.
func (s *Store) BeginShape(kind ShapeKind, start image.Point, col color.RGBA, width int) {
	s.pendingShape = &Shape{Kind: kind, Start: start, End: start, Color: col, Width: width}
}

// UpdateShapePreview moves the preview's free corner.
func (s *Store) UpdateShapePreview(end image.Point) {
	if s.pendingShape != nil {
		s.pendingShape.End = end
	}
}

// ShapePreview returns the in-progress shape, or nil.
func (s *Store) ShapePreview() *Shape { return s.pendingShape }

// CommitShape finalises the preview into the store. Degenerate shapes are
// discarded. Reports whether the shape was kept.
func (s *Store) CommitShape(end image.Point) bool {
	sh := s.pendingShape
	s.pendingShape = nil
	if sh == nil {
		return false
	}
	sh.End = end
	if sh.Span() < MinShapeSpan {
		return false
	}
	s.commit(sh)
	return true
}

func (s *Store) commit(it Item) {
	s.items = append(s.items, it)
	s.history = append(s.history, op{kind: opCommit, items: []Item{it}})
	s.redo = s.redo[:0]
	s.invalidate(Invalidation{Item: it})
}

// EraseAt removes every item hit at p within radius in one atomic step. The
// removal is recorded as a single undo entry. Reports how many items were
// removed.
func (s *Store) EraseAt(p image.Point, radius int) int {
	hits := Hit(p, radius, s.items)
	if len(hits) == 0 {
		return 0
	}
	removed := make([]Item, len(hits))
	for i, idx := range hits {
		removed[i] = s.items[idx]
	}
	// Delete from the back so earlier indices stay valid.
	for i := len(hits) - 1; i >= 0; i-- {
		idx := hits[i]
		s.items = append(s.items[:idx], s.items[idx+1:]...)
	}
	s.history = append(s.history, op{kind: opErase, items: removed, indices: hits})
	s.redo = s.redo[:0]
	s.invalidate(Invalidation{Full: true})
	return len(hits)
}

// Undo reverses the most recent commit or erase. It is a no-op on an empty
// history.
func (s *Store) Undo() {
	if len(s.history) == 0 {
		return
	}
	last := s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]
	switch last.kind {
	case opCommit:
		s.items = s.items[:len(s.items)-1]
	case opErase:
		// Reinsert in ascending index order to restore draw order.
		for i, idx := range last.indices {
			s.items = insertItem(s.items, idx, last.items[i])
		}
	}
	s.redo = append(s.redo, last)
	s.invalidate(Invalidation{Full: true})
}

// Redo reapplies the most recently undone entry. It is a no-op when the redo
// stack is empty.
func (s *Store) Redo() {
	if len(s.redo) == 0 {
		return
	}
	last := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	switch last.kind {
	case opCommit:
		s.items = append(s.items, last.items[0])
		s.history = append(s.history, last)
		s.invalidate(Invalidation{Item: last.items[0]})
		return
	case opErase:
		for i := len(last.indices) - 1; i >= 0; i-- {
			idx := last.indices[i]
			s.items = append(s.items[:idx], s.items[idx+1:]...)
		}
		s.history = append(s.history, last)
	}
	s.invalidate(Invalidation{Full: true})
}

// Clear drops all items and history. Used when a new annotation session
// starts.
func (s *Store) Clear() {
	s.items = nil
	s.history = nil
	s.redo = nil
	s.pendingShape = nil
	s.invalidate(Invalidation{Full: true})
}

func insertItem(items []Item, idx int, it Item) []Item {
	if idx >= len(items) {
		return append(items, it)
	}
	items = append(items, nil)
	copy(items[idx+1:], items[idx:])
	items[idx] = it
	return items
}
