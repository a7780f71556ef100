// Package layout computes pane rectangles. Panes participate under one of
// two contracts: WindowManaged panes have their rect owned entirely by the
// engine (a tiling slot or a clamped floating rect), while AppManaged panes
// compute their own rect from the screen size and the engine honors it,
// clamped to the terminal bounds.
//
// Apply is deterministic: the same entries and area always produce the same
// rects, so a tick can call it unconditionally.
package layout

import (
	"errors"

	"github.com/loomterm/loom/internal/geom"
	"github.com/loomterm/loom/internal/pane"
)

// Contract states who owns a pane's rectangle.
type Contract int

const (
	// WindowManaged rects are computed by the engine.
	WindowManaged Contract = iota
	// AppManaged rects are supplied by the component itself.
	AppManaged
)

func (c Contract) String() string {
	if c == AppManaged {
		return "app-managed"
	}
	return "window-managed"
}

// SnapEdge names a screen edge for drag-to-edge tiling.
type SnapEdge int

const (
	SnapLeft SnapEdge = iota
	SnapRight
	SnapTop
	SnapBottom
)

// Floating windows never shrink below this size when clamped.
const (
	MinFloatWidth  = 8
	MinFloatHeight = 3
)

// MinTileSize is the smallest edge a tiled pane is given while space
// lasts; once the area is exhausted, later panes in topology order
// absorb the deficit.
const MinTileSize = 4

// ErrUnknownPane is returned for operations on IDs the engine does not hold.
var ErrUnknownPane = errors.New("layout: unknown pane")

type entry struct {
	id        pane.ID
	contract  Contract
	floating  bool
	minimized bool
	maximized bool
	want      geom.Rect // floating target or AppManaged self-report
	rect      geom.Rect // last Apply result
}

// Engine owns the rects of WindowManaged panes.
type Engine struct {
	area    geom.Rect
	entries []*entry
}

// New returns an empty engine covering the given area.
func New(area geom.Rect) *Engine {
	return &Engine{area: area}
}

// Area returns the region Apply distributes.
func (e *Engine) Area() geom.Rect { return e.area }

// SetArea updates the managed region and recomputes all rects.
func (e *Engine) SetArea(area geom.Rect) {
	e.area = area
	e.Apply()
}

func (e *Engine) find(id pane.ID) *entry {
	for _, en := range e.entries {
		if en.id == id {
			return en
		}
	}
	return nil
}

// Insert adds a pane at the end of the topology order and recomputes.
func (e *Engine) Insert(id pane.ID, c Contract) {
	if e.find(id) != nil {
		return
	}
	e.entries = append(e.entries, &entry{id: id, contract: c})
	e.Apply()
}

// Remove drops a pane from the engine.
func (e *Engine) Remove(id pane.ID) {
	for i, en := range e.entries {
		if en.id == id {
			e.entries = append(e.entries[:i], e.entries[i+1:]...)
			e.Apply()
			return
		}
	}
}

// Len returns the number of managed panes, minimized included.
func (e *Engine) Len() int { return len(e.entries) }

// IDs returns pane IDs in topology order.
func (e *Engine) IDs() []pane.ID {
	out := make([]pane.ID, len(e.entries))
	for i, en := range e.entries {
		out[i] = en.id
	}
	return out
}

// Rect returns the pane's current rect. Minimized panes report an empty
// rect and false.
func (e *Engine) Rect(id pane.ID) (geom.Rect, bool) {
	en := e.find(id)
	if en == nil || en.minimized {
		return geom.Rect{}, false
	}
	return en.rect, true
}

// ContractOf returns the pane's layout contract.
func (e *Engine) ContractOf(id pane.ID) (Contract, bool) {
	en := e.find(id)
	if en == nil {
		return WindowManaged, false
	}
	return en.contract, true
}

// IsFloating reports whether the pane is in the floating set.
func (e *Engine) IsFloating(id pane.ID) bool {
	en := e.find(id)
	return en != nil && en.floating
}

// IsMinimized reports whether the pane is minimized.
func (e *Engine) IsMinimized(id pane.ID) bool {
	en := e.find(id)
	return en != nil && en.minimized
}

// IsMaximized reports whether the pane is maximized.
func (e *Engine) IsMaximized(id pane.ID) bool {
	en := e.find(id)
	return en != nil && en.maximized
}

// SetAppRect records the rect an AppManaged pane computed for itself.
// WindowManaged panes reject it.
func (e *Engine) SetAppRect(id pane.ID, r geom.Rect) error {
	en := e.find(id)
	if en == nil {
		return ErrUnknownPane
	}
	if en.contract != AppManaged {
		return errors.New("layout: pane rect is window-managed")
	}
	en.want = r
	e.Apply()
	return nil
}

// Float detaches a pane from tiling at the given rect.
func (e *Engine) Float(id pane.ID, r geom.Rect) error {
	en := e.find(id)
	if en == nil {
		return ErrUnknownPane
	}
	en.floating = true
	en.maximized = false
	en.minimized = false
	en.want = r
	e.Apply()
	return nil
}

// Sink returns a floating pane to the tiling order.
func (e *Engine) Sink(id pane.ID) error {
	en := e.find(id)
	if en == nil {
		return ErrUnknownPane
	}
	en.floating = false
	e.Apply()
	return nil
}

// MoveFloating translates a floating pane by cell deltas.
func (e *Engine) MoveFloating(id pane.ID, dx, dy int) error {
	en := e.find(id)
	if en == nil {
		return ErrUnknownPane
	}
	if !en.floating {
		return errors.New("layout: pane is not floating")
	}
	en.want.X += dx
	en.want.Y += dy
	e.Apply()
	return nil
}

// ResizeFloating grows or shrinks a floating pane, honoring minimums.
func (e *Engine) ResizeFloating(id pane.ID, dw, dh int) error {
	en := e.find(id)
	if en == nil {
		return ErrUnknownPane
	}
	if !en.floating {
		return errors.New("layout: pane is not floating")
	}
	en.want.Width = max(en.want.Width+dw, MinFloatWidth)
	en.want.Height = max(en.want.Height+dh, MinFloatHeight)
	e.Apply()
	return nil
}

// SnapFloating converts a floating pane back to tiled at the chosen edge:
// left/top snap to the head of the topology order, right/bottom to the tail.
func (e *Engine) SnapFloating(id pane.ID, edge SnapEdge) error {
	en := e.find(id)
	if en == nil {
		return ErrUnknownPane
	}
	if !en.floating {
		return errors.New("layout: pane is not floating")
	}
	en.floating = false
	e.reorder(en, edge == SnapLeft || edge == SnapTop)
	e.Apply()
	return nil
}

func (e *Engine) reorder(en *entry, toFront bool) {
	for i, cand := range e.entries {
		if cand == en {
			e.entries = append(e.entries[:i], e.entries[i+1:]...)
			break
		}
	}
	if toFront {
		e.entries = append([]*entry{en}, e.entries...)
	} else {
		e.entries = append(e.entries, en)
	}
}

// Maximize gives the pane the whole managed area until Restore.
func (e *Engine) Maximize(id pane.ID) error {
	en := e.find(id)
	if en == nil {
		return ErrUnknownPane
	}
	en.maximized = true
	en.minimized = false
	e.Apply()
	return nil
}

// Restore undoes Maximize.
func (e *Engine) Restore(id pane.ID) error {
	en := e.find(id)
	if en == nil {
		return ErrUnknownPane
	}
	en.maximized = false
	e.Apply()
	return nil
}

// Minimize removes the pane from the visible layout without closing it.
func (e *Engine) Minimize(id pane.ID) error {
	en := e.find(id)
	if en == nil {
		return ErrUnknownPane
	}
	en.minimized = true
	en.maximized = false
	e.Apply()
	return nil
}

// Unminimize returns a minimized pane to the layout.
func (e *Engine) Unminimize(id pane.ID) error {
	en := e.find(id)
	if en == nil {
		return ErrUnknownPane
	}
	en.minimized = false
	e.Apply()
	return nil
}

// Minimized returns the minimized pane IDs in topology order.
func (e *Engine) Minimized() []pane.ID {
	var out []pane.ID
	for _, en := range e.entries {
		if en.minimized {
			out = append(out, en.id)
		}
	}
	return out
}

// Apply recomputes every WindowManaged rect from the current area.
// Tiled panes split the area master/stack: one pane takes it all, two sit
// side by side, and beyond that the first pane keeps the left half while
// the rest stack in equal rows on the right. Floating rects are clamped
// inside the area. AppManaged rects pass through as reported.
func (e *Engine) Apply() {
	var tiled []*entry
	for _, en := range e.entries {
		if en.minimized {
			en.rect = geom.Rect{}
			continue
		}
		switch {
		case en.contract == AppManaged:
			en.rect = clampApp(en.want, e.area)
		case en.maximized:
			en.rect = e.area
		case en.floating:
			en.rect = clampFloat(en.want, e.area)
		default:
			tiled = append(tiled, en)
		}
	}
	e.tile(tiled)
}

func clampFloat(r geom.Rect, area geom.Rect) geom.Rect {
	r.Width = max(r.Width, MinFloatWidth)
	r.Height = max(r.Height, MinFloatHeight)
	return r.MoveInside(area)
}

// clampApp keeps a self-reported rect on screen without imposing a
// minimum; the component owns its size, the engine owns the bounds.
func clampApp(r geom.Rect, area geom.Rect) geom.Rect {
	r.Width = min(r.Width, area.Width)
	r.Height = min(r.Height, area.Height)
	return r.MoveInside(area)
}

func (e *Engine) tile(tiled []*entry) {
	area := e.area
	switch len(tiled) {
	case 0:
		return
	case 1:
		tiled[0].rect = area
		return
	}

	// The master column keeps MinTileSize before the stack gets any
	// width at all.
	left := area.Width / 2
	if left < MinTileSize {
		left = min(MinTileSize, area.Width)
	}
	tiled[0].rect = geom.NewRect(area.X, area.Y, left, area.Height)

	stack := tiled[1:]
	x := area.X + left
	w := area.Width - left
	if len(stack) == 1 {
		stack[0].rect = geom.NewRect(x, area.Y, w, area.Height)
		return
	}

	rows := max(area.Height/len(stack), MinTileSize)
	y := area.Y
	for i, en := range stack {
		h := rows
		if i == len(stack)-1 {
			// Last stack slot absorbs the remainder rows.
			h = area.Bottom() - y
		}
		// Stack slots past the space run out of rows.
		h = max(min(h, area.Bottom()-y), 0)
		en.rect = geom.NewRect(x, y, w, h)
		y += h
	}
}
