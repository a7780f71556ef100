package input

import "github.com/loomterm/loom/internal/pane"

// FocusRing tracks focus order over the live panes. Next and Prev wrap;
// removing the focused pane hands focus to the next survivor in order.
type FocusRing struct {
	order   []pane.ID
	current int
}

// Add appends a pane to the ring and focuses it.
func (f *FocusRing) Add(id pane.ID) {
	f.order = append(f.order, id)
	f.current = len(f.order) - 1
}

// Remove drops a pane from the ring.
func (f *FocusRing) Remove(id pane.ID) {
	for i, v := range f.order {
		if v != id {
			continue
		}
		f.order = append(f.order[:i], f.order[i+1:]...)
		if len(f.order) == 0 {
			f.current = 0
			return
		}
		if f.current > i {
			f.current--
		} else if f.current >= len(f.order) {
			f.current = 0
		}
		return
	}
}

// Focused returns the focused pane, or false for an empty ring.
func (f *FocusRing) Focused() (pane.ID, bool) {
	if len(f.order) == 0 {
		return 0, false
	}
	return f.order[f.current], true
}

// Focus moves focus to the given pane if it is in the ring.
func (f *FocusRing) Focus(id pane.ID) bool {
	for i, v := range f.order {
		if v == id {
			f.current = i
			return true
		}
	}
	return false
}

// Next advances focus with wraparound and returns the new holder.
func (f *FocusRing) Next() (pane.ID, bool) {
	if len(f.order) == 0 {
		return 0, false
	}
	f.current = (f.current + 1) % len(f.order)
	return f.order[f.current], true
}

// Prev steps focus backward with wraparound.
func (f *FocusRing) Prev() (pane.ID, bool) {
	if len(f.order) == 0 {
		return 0, false
	}
	f.current = (f.current - 1 + len(f.order)) % len(f.order)
	return f.order[f.current], true
}

// Len returns the ring size.
func (f *FocusRing) Len() int { return len(f.order) }

// IDs returns the focus order.
func (f *FocusRing) IDs() []pane.ID {
	out := make([]pane.ID, len(f.order))
	copy(out, f.order)
	return out
}
