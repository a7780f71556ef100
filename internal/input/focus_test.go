package input

import (
	"testing"

	"github.com/loomterm/loom/internal/geom"
	"github.com/loomterm/loom/internal/pane"
)

func TestFocusRingWraps(t *testing.T) {
	var f FocusRing
	if _, ok := f.Focused(); ok {
		t.Fatal("empty ring should have no focus")
	}

	f.Add(1)
	f.Add(2)
	f.Add(3)
	if id, _ := f.Focused(); id != 3 {
		t.Errorf("Add should focus the newcomer, got %d", id)
	}

	if id, _ := f.Next(); id != 1 {
		t.Errorf("Next should wrap to 1, got %d", id)
	}
	if id, _ := f.Prev(); id != 3 {
		t.Errorf("Prev should wrap back to 3, got %d", id)
	}
}

func TestFocusRingRemove(t *testing.T) {
	var f FocusRing
	f.Add(1)
	f.Add(2)
	f.Add(3)
	f.Focus(2)

	// Removing the focused pane advances to the next survivor.
	f.Remove(2)
	if id, _ := f.Focused(); id != 3 {
		t.Errorf("focus after removing holder = %d, want 3", id)
	}

	// Removing an earlier pane keeps the same holder.
	f.Remove(1)
	if id, _ := f.Focused(); id != 3 {
		t.Errorf("focus = %d, want 3", id)
	}

	// Removing the last-positioned holder wraps to the head.
	f.Add(4)
	f.Focus(4)
	f.Remove(4)
	if id, _ := f.Focused(); id != 3 {
		t.Errorf("focus = %d, want 3", id)
	}

	f.Remove(3)
	if _, ok := f.Focused(); ok {
		t.Error("emptied ring should have no focus")
	}
	if _, ok := f.Next(); ok {
		t.Error("Next on empty ring should report false")
	}
}

func TestZOrderStack(t *testing.T) {
	var z ZOrderStack
	z.Push(1)
	z.Push(2)
	z.Push(3)

	if top, _ := z.Top(); top != 3 {
		t.Errorf("top = %d", top)
	}
	if !z.BringToFront(1) {
		t.Fatal("BringToFront should find pane 1")
	}
	if got := z.BottomToTop(); got[0] != 2 || got[1] != 3 || got[2] != 1 {
		t.Errorf("order = %v", got)
	}
	if z.BringToFront(99) {
		t.Error("unknown pane should not be inserted")
	}

	z.Remove(3)
	if z.Len() != 2 {
		t.Errorf("len = %d", z.Len())
	}
}

func TestTopmostAtHitTest(t *testing.T) {
	var z ZOrderStack
	z.Push(1)
	z.Push(2)

	rects := map[pane.ID]geom.Rect{
		1: geom.NewRect(0, 0, 10, 10),
		2: geom.NewRect(5, 5, 10, 10),
	}
	lookup := func(id pane.ID) (geom.Rect, bool) {
		r, ok := rects[id]
		return r, ok
	}

	// Overlap region belongs to the topmost pane.
	if id, ok := z.TopmostAt(geom.Point{X: 7, Y: 7}, lookup); !ok || id != 2 {
		t.Errorf("overlap hit = %d ok=%v, want 2", id, ok)
	}
	if id, ok := z.TopmostAt(geom.Point{X: 1, Y: 1}, lookup); !ok || id != 1 {
		t.Errorf("lower-pane hit = %d ok=%v, want 1", id, ok)
	}
	if _, ok := z.TopmostAt(geom.Point{X: 50, Y: 50}, lookup); ok {
		t.Error("miss should report false")
	}

	// Raising pane 1 flips the overlap winner.
	z.BringToFront(1)
	if id, _ := z.TopmostAt(geom.Point{X: 7, Y: 7}, lookup); id != 1 {
		t.Errorf("after raise, overlap hit = %d, want 1", id)
	}
}
