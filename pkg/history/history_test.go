package history

import (
	"image"
	"image/color"
	"testing"
	"time"
)

func solidImage(c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore returned error: %v", err)
	}
	return s
}

func TestUndoRedoCycle(t *testing.T) {
	s := newTestStore(t)
	red := solidImage(color.NRGBA{R: 255, A: 255})
	blue := solidImage(color.NRGBA{B: 255, A: 255})

	if err := s.Push("sess", red); err != nil {
		t.Fatalf("Push returned error: %v", err)
	}
	// Nanosecond timestamps order states; make sure they differ.
	time.Sleep(time.Millisecond)
	if err := s.Push("sess", blue); err != nil {
		t.Fatalf("Push returned error: %v", err)
	}

	prev, err := s.Undo("sess")
	if err != nil {
		t.Fatalf("Undo returned error: %v", err)
	}
	if prev == nil {
		t.Fatalf("Undo should return the previous state")
	}
	if got := prev.NRGBAAt(0, 0); got.R != 255 {
		t.Fatalf("Undo should return the red state, got %v", got)
	}

	next, err := s.Redo("sess")
	if err != nil {
		t.Fatalf("Redo returned error: %v", err)
	}
	if next == nil {
		t.Fatalf("Redo should return the undone state")
	}
	if got := next.NRGBAAt(0, 0); got.B != 255 {
		t.Fatalf("Redo should return the blue state, got %v", got)
	}
}

func TestUndoEmpty(t *testing.T) {
	s := newTestStore(t)
	img, err := s.Undo("nothing-here")
	if err != nil {
		t.Fatalf("Undo on empty session returned error: %v", err)
	}
	if img != nil {
		t.Fatalf("Undo on empty session should return nil")
	}
}

func TestUndoSingleState(t *testing.T) {
	s := newTestStore(t)
	if err := s.Push("sess", solidImage(color.NRGBA{G: 255, A: 255})); err != nil {
		t.Fatalf("Push returned error: %v", err)
	}
	img, err := s.Undo("sess")
	if err != nil {
		t.Fatalf("Undo returned error: %v", err)
	}
	if img != nil {
		t.Fatalf("undoing the only state should return nil")
	}
}

func TestPushClearsRedo(t *testing.T) {
	s := newTestStore(t)
	red := solidImage(color.NRGBA{R: 255, A: 255})
	blue := solidImage(color.NRGBA{B: 255, A: 255})

	if err := s.Push("sess", red); err != nil {
		t.Fatalf("Push returned error: %v", err)
	}
	time.Sleep(time.Millisecond)
	if err := s.Push("sess", blue); err != nil {
		t.Fatalf("Push returned error: %v", err)
	}
	if _, err := s.Undo("sess"); err != nil {
		t.Fatalf("Undo returned error: %v", err)
	}

	time.Sleep(time.Millisecond)
	if err := s.Push("sess", red); err != nil {
		t.Fatalf("Push returned error: %v", err)
	}

	img, err := s.Redo("sess")
	if err != nil {
		t.Fatalf("Redo returned error: %v", err)
	}
	if img != nil {
		t.Fatalf("redo stack should be cleared by a new push")
	}
}

func TestInvalidSessionID(t *testing.T) {
	s := newTestStore(t)
	img := solidImage(color.NRGBA{A: 255})
	for _, id := range []string{"", "..", "a/b", `a\b`} {
		if err := s.Push(id, img); err == nil {
			t.Fatalf("Push(%q) should reject the session id", id)
		}
	}
}

func TestPrune(t *testing.T) {
	s := newTestStore(t)
	if err := s.Push("stale", solidImage(color.NRGBA{A: 255})); err != nil {
		t.Fatalf("Push returned error: %v", err)
	}

	removed, err := s.Prune(time.Hour)
	if err != nil {
		t.Fatalf("Prune returned error: %v", err)
	}
	if removed != 0 {
		t.Fatalf("fresh session should not be pruned, removed %d", removed)
	}

	time.Sleep(5 * time.Millisecond)
	removed, err = s.Prune(time.Millisecond)
	if err != nil {
		t.Fatalf("Prune returned error: %v", err)
	}
	if removed != 1 {
		t.Fatalf("stale session should be pruned, removed %d", removed)
	}

	if img, _ := s.Undo("stale"); img != nil {
		t.Fatalf("pruned session should have no states")
	}
}
