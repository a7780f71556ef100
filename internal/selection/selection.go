// Package selection implements mouse-driven text selection over any surface
// that can map screen points to logical text positions. Pane grids and the
// text viewer both implement Surface; the controller itself never looks at
// cells, so a single drag/copy path serves every selectable component.
package selection

import (
	"github.com/loomterm/loom/internal/geom"
)

// Position addresses a character in a surface's logical text: Row counts
// lines from the top of history, Col counts cells within the line.
type Position struct {
	Row int
	Col int
}

// Before orders positions row-major.
func (p Position) Before(o Position) bool {
	if p.Row != o.Row {
		return p.Row < o.Row
	}
	return p.Col < o.Col
}

// Range is a span of logical text between two positions.
type Range struct {
	Start Position
	End   Position
}

// Normalize returns the range with Start <= End.
func (r Range) Normalize() Range {
	if r.End.Before(r.Start) {
		r.Start, r.End = r.End, r.Start
	}
	return r
}

// Empty reports whether the range selects nothing.
func (r Range) Empty() bool { return r.Start == r.End }

// Contains reports whether pos falls inside the normalized range. Both
// endpoints are inclusive: the cell under the drag cursor is selected.
func (r Range) Contains(pos Position) bool {
	n := r.Normalize()
	if pos.Before(n.Start) {
		return false
	}
	return !n.End.Before(pos)
}

// Surface is a component whose text can be selected.
type Surface interface {
	// SelectionViewport returns the screen rect the surface occupies.
	SelectionViewport() geom.Rect
	// PositionAt maps a screen point inside the viewport to a logical
	// position, accounting for any scroll offset.
	PositionAt(p geom.Point) (Position, bool)
	// TextForRange extracts the text covered by a normalized range.
	TextForRange(r Range) string
	// ScrollSelection shifts the viewport while a drag runs past its edge.
	// delta is in lines, negative toward older content.
	ScrollSelection(delta int)
}

type phase int

const (
	idle phase = iota
	dragging
)

// Controller tracks one in-progress or finished selection. Only a single
// surface holds a selection at a time; the session clears the controller
// when a drag starts elsewhere.
type Controller struct {
	anchor Position
	cursor Position
	have   bool
	phase  phase
}

// Clear resets to the idle, empty state.
func (c *Controller) Clear() {
	*c = Controller{}
}

// BeginDrag anchors a new selection.
func (c *Controller) BeginDrag(pos Position) {
	c.anchor = pos
	c.cursor = pos
	c.have = true
	c.phase = dragging
}

// UpdateDrag extends the selection toward pos. Ignored when no drag runs.
func (c *Controller) UpdateDrag(pos Position) {
	if c.phase == dragging {
		c.cursor = pos
	}
}

// FinishDrag ends the gesture. A non-empty selection survives and is
// returned normalized; an empty one (click without movement) clears.
func (c *Controller) FinishDrag() (Range, bool) {
	if c.phase != dragging {
		return Range{}, false
	}
	c.phase = idle
	r, ok := c.Selection()
	if !ok {
		c.Clear()
		return Range{}, false
	}
	return r, true
}

// Dragging reports whether a drag gesture is active.
func (c *Controller) Dragging() bool { return c.phase == dragging }

// Selection returns the current non-empty range, normalized.
func (c *Controller) Selection() (Range, bool) {
	if !c.have {
		return Range{}, false
	}
	r := Range{Start: c.anchor, End: c.cursor}
	if r.Empty() {
		return Range{}, false
	}
	return r.Normalize(), true
}

// Copy extracts the selected text from the surface, or "" when nothing is
// selected.
func (c *Controller) Copy(s Surface) string {
	r, ok := c.Selection()
	if !ok {
		return ""
	}
	return s.TextForRange(r)
}

// MouseButton abstracts the buttons the controller reacts to.
type MouseButton int

const (
	ButtonNone MouseButton = iota
	ButtonLeft
)

// MouseKind is the gesture stage of a mouse event.
type MouseKind int

const (
	MousePress MouseKind = iota
	MouseDrag
	MouseRelease
)

// MouseEvent is the minimal mouse shape the controller needs.
type MouseEvent struct {
	Kind   MouseKind
	Button MouseButton
	Point  geom.Point
}

// HandleMouse runs one mouse event against a surface: press anchors inside
// the viewport, drag extends (auto-scrolling past the edges), release
// finalizes. It reports whether the event was consumed.
func (c *Controller) HandleMouse(s Surface, ev MouseEvent) bool {
	area := s.SelectionViewport()
	if area.Empty() || ev.Button != ButtonLeft {
		return false
	}

	switch ev.Kind {
	case MousePress:
		if !area.Contains(ev.Point) {
			return false
		}
		pos, ok := s.PositionAt(ev.Point)
		if !ok {
			return false
		}
		c.BeginDrag(pos)
		return true

	case MouseDrag:
		if c.phase != dragging {
			return false
		}
		autoScroll(s, area, ev.Point)
		if pos, ok := s.PositionAt(clampPoint(ev.Point, area)); ok {
			c.UpdateDrag(pos)
		}
		return true

	case MouseRelease:
		if c.phase != dragging {
			return false
		}
		c.FinishDrag()
		return true
	}
	return false
}

func autoScroll(s Surface, area geom.Rect, p geom.Point) {
	if p.Y < area.Y {
		s.ScrollSelection(-1)
	} else if p.Y >= area.Bottom() {
		s.ScrollSelection(1)
	}
}

func clampPoint(p geom.Point, area geom.Rect) geom.Point {
	p.X = min(max(p.X, area.X), area.Right()-1)
	p.Y = min(max(p.Y, area.Y), area.Bottom()-1)
	return p
}
