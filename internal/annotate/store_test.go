package annotate

import (
	"image"
	"image/color"
	"reflect"
	"testing"
)

var red = color.RGBA{255, 0, 0, 255}

func commitStroke(t *testing.T, s *Store, pts ...image.Point) *Stroke {
	t.Helper()
	st := s.BeginStroke(pts[0], red, 4)
	for _, p := range pts[1:] {
		s.ExtendStroke(st, p)
	}
	if !s.CommitStroke(st) {
		t.Fatalf("stroke %v not committed", pts)
	}
	return st
}

func TestCommitStrokeKeepsPointsInOrder(t *testing.T) {
	s := NewStore(nil)
	pts := []image.Point{{0, 0}, {10, 0}, {20, 5}, {30, 5}, {40, 10}}
	commitStroke(t, s, pts...)

	if s.Len() != 1 {
		t.Fatalf("items = %d, want 1", s.Len())
	}
	st, ok := s.Items()[0].(*Stroke)
	if !ok {
		t.Fatalf("item is %T, want *Stroke", s.Items()[0])
	}
	if !reflect.DeepEqual(st.Points, pts) {
		t.Errorf("points = %v, want %v", st.Points, pts)
	}
}

func TestCommitStrokeDiscardsSinglePoint(t *testing.T) {
	s := NewStore(nil)
	st := s.BeginStroke(image.Pt(5, 5), red, 4)
	if s.CommitStroke(st) {
		t.Error("single-point stroke committed")
	}
	if s.Len() != 0 {
		t.Errorf("items = %d, want 0", s.Len())
	}
}

func TestCommitShapeDiscardsDegenerate(t *testing.T) {
	s := NewStore(nil)
	s.BeginShape(ShapeRect, image.Pt(10, 10), red, 2)
	if s.CommitShape(image.Pt(12, 12)) {
		t.Error("degenerate shape committed")
	}
	s.BeginShape(ShapeRect, image.Pt(10, 10), red, 2)
	if !s.CommitShape(image.Pt(40, 40)) {
		t.Error("valid shape discarded")
	}
	if s.Len() != 1 {
		t.Fatalf("items = %d, want 1", s.Len())
	}
}

func TestShapePreviewNotInItems(t *testing.T) {
	s := NewStore(nil)
	s.BeginShape(ShapeCircle, image.Pt(0, 0), red, 2)
	s.UpdateShapePreview(image.Pt(50, 50))
	if s.Len() != 0 {
		t.Fatalf("preview leaked into items")
	}
	if sh := s.ShapePreview(); sh == nil || sh.End != image.Pt(50, 50) {
		t.Fatalf("preview = %+v", sh)
	}
}

func TestUndoRedoRoundTrip(t *testing.T) {
	s := NewStore(nil)
	commitStroke(t, s, image.Pt(0, 0), image.Pt(10, 0))
	commitStroke(t, s, image.Pt(0, 10), image.Pt(10, 10))
	before := append([]Item(nil), s.Items()...)

	s.Undo()
	if s.Len() != 1 {
		t.Fatalf("after undo items = %d, want 1", s.Len())
	}
	if !s.CanRedo() {
		t.Fatal("redo stack empty after undo")
	}
	s.Redo()
	if !reflect.DeepEqual(s.Items(), before) {
		t.Errorf("undo/redo round trip changed items: %v != %v", s.Items(), before)
	}
}

func TestCommitClearsRedo(t *testing.T) {
	s := NewStore(nil)
	commitStroke(t, s, image.Pt(0, 0), image.Pt(10, 0))
	s.Undo()
	if !s.CanRedo() {
		t.Fatal("expected redo entry")
	}
	commitStroke(t, s, image.Pt(0, 5), image.Pt(10, 5))
	if s.CanRedo() {
		t.Error("redo stack not cleared by new commit")
	}
}

func TestEraseClearsRedo(t *testing.T) {
	s := NewStore(nil)
	commitStroke(t, s, image.Pt(0, 0), image.Pt(10, 0))
	commitStroke(t, s, image.Pt(100, 100), image.Pt(110, 100))
	s.Undo()
	if !s.CanRedo() {
		t.Fatal("expected redo entry")
	}
	if n := s.EraseAt(image.Pt(5, 0), 10); n != 1 {
		t.Fatalf("erased %d, want 1", n)
	}
	if s.CanRedo() {
		t.Error("redo stack not cleared by erase")
	}
}

func TestUndoRestoresErasedItems(t *testing.T) {
	s := NewStore(nil)
	first := commitStroke(t, s, image.Pt(0, 0), image.Pt(10, 0))
	second := commitStroke(t, s, image.Pt(5, 2), image.Pt(15, 2))
	third := commitStroke(t, s, image.Pt(200, 200), image.Pt(210, 200))

	// First two strokes sit inside the erase circle; all removed atomically.
	if n := s.EraseAt(image.Pt(5, 0), 12); n != 2 {
		t.Fatalf("erased %d, want 2", n)
	}
	if s.Len() != 1 || s.Items()[0] != Item(third) {
		t.Fatalf("unexpected survivors: %v", s.Items())
	}

	s.Undo()
	want := []Item{first, second, third}
	if !reflect.DeepEqual(s.Items(), want) {
		t.Errorf("undo did not restore erase: %v, want %v", s.Items(), want)
	}

	s.Redo()
	if s.Len() != 1 || s.Items()[0] != Item(third) {
		t.Errorf("redo did not reapply erase: %v", s.Items())
	}
}

func TestClearEmptiesEverything(t *testing.T) {
	s := NewStore(nil)
	for i := 0; i < 10; i++ {
		commitStroke(t, s, image.Pt(i, 0), image.Pt(i+10, 0))
	}
	s.Undo()
	s.Clear()
	if s.Len() != 0 || s.CanRedo() {
		t.Errorf("clear left items=%d redo=%v", s.Len(), s.CanRedo())
	}
	s.Undo() // must be a no-op
	if s.Len() != 0 {
		t.Errorf("undo after clear resurrected items")
	}
}

func TestInvalidationKinds(t *testing.T) {
	var got []Invalidation
	s := NewStore(func(inv Invalidation) { got = append(got, inv) })

	commitStroke(t, s, image.Pt(0, 0), image.Pt(10, 0))
	s.Undo()
	s.Redo()
	s.EraseAt(image.Pt(5, 0), 10)
	s.Clear()

	wantFull := []bool{false, true, false, true, true}
	if len(got) != len(wantFull) {
		t.Fatalf("got %d invalidations, want %d", len(got), len(wantFull))
	}
	for i, inv := range got {
		if inv.Full != wantFull[i] {
			t.Errorf("invalidation %d: full=%v, want %v", i, inv.Full, wantFull[i])
		}
		if !inv.Full && inv.Item == nil {
			t.Errorf("invalidation %d: incremental without item", i)
		}
	}
}

func TestEndToEndStrokeLifecycle(t *testing.T) {
	s := NewStore(nil)
	pts := []image.Point{{0, 0}, {5, 5}, {10, 10}, {15, 15}, {20, 20}}
	commitStroke(t, s, pts...)

	s.Undo()
	if s.Len() != 0 {
		t.Fatalf("after undo items = %d, want 0", s.Len())
	}
	s.Redo()
	if s.Len() != 1 {
		t.Fatalf("after redo items = %d, want 1", s.Len())
	}
	st := s.Items()[0].(*Stroke)
	if !reflect.DeepEqual(st.Points, pts) {
		t.Errorf("restored points = %v, want %v", st.Points, pts)
	}
}
