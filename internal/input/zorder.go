package input

import (
	"github.com/loomterm/loom/internal/geom"
	"github.com/loomterm/loom/internal/pane"
)

// ZOrderStack orders panes bottom to top for compositing and hit testing.
type ZOrderStack struct {
	stack []pane.ID
}

// Push places a pane on top of the stack.
func (z *ZOrderStack) Push(id pane.ID) {
	z.Remove(id)
	z.stack = append(z.stack, id)
}

// Remove drops a pane from the stack.
func (z *ZOrderStack) Remove(id pane.ID) {
	for i, v := range z.stack {
		if v == id {
			z.stack = append(z.stack[:i], z.stack[i+1:]...)
			return
		}
	}
}

// BringToFront moves an existing pane to the top.
func (z *ZOrderStack) BringToFront(id pane.ID) bool {
	for _, v := range z.stack {
		if v == id {
			z.Push(id)
			return true
		}
	}
	return false
}

// BottomToTop returns the paint order. The slice is shared; do not modify.
func (z *ZOrderStack) BottomToTop() []pane.ID { return z.stack }

// Top returns the topmost pane.
func (z *ZOrderStack) Top() (pane.ID, bool) {
	if len(z.stack) == 0 {
		return 0, false
	}
	return z.stack[len(z.stack)-1], true
}

// TopmostAt hit-tests top to bottom and returns the first pane whose rect,
// per the rects callback, contains p.
func (z *ZOrderStack) TopmostAt(p geom.Point, rects func(pane.ID) (geom.Rect, bool)) (pane.ID, bool) {
	for i := len(z.stack) - 1; i >= 0; i-- {
		id := z.stack[i]
		if r, ok := rects(id); ok && r.Contains(p) {
			return id, true
		}
	}
	return 0, false
}

// Len returns the stack depth.
func (z *ZOrderStack) Len() int { return len(z.stack) }
