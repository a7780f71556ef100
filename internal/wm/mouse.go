package wm

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/loomterm/loom/internal/clipboard"
	"github.com/loomterm/loom/internal/events"
	"github.com/loomterm/loom/internal/geom"
	"github.com/loomterm/loom/internal/input"
	"github.com/loomterm/loom/internal/layout"
	"github.com/loomterm/loom/internal/pane"
	"github.com/loomterm/loom/internal/selection"
)

// wheelStep is how many lines one wheel notch scrolls the view.
const wheelStep = 3

func (m *Model) onMouse(msg tea.MouseMsg) {
	pt := geom.Point{X: msg.X, Y: msg.Y}

	if m.menuOpen {
		m.menuMouse(msg, pt)
		return
	}
	if m.helpOpen {
		m.helpMouse(msg)
		return
	}
	if m.drag.kind != dragNone {
		m.continueDrag(msg, pt)
		return
	}
	if m.sel.Dragging() {
		m.continueSelection(msg, pt)
		return
	}

	switch msg.Action {
	case tea.MouseActionPress:
		m.mousePress(msg, pt)
	case tea.MouseActionMotion, tea.MouseActionRelease:
		m.forwardMouse(msg, pt)
	}
}

func (m *Model) menuMouse(msg tea.MouseMsg, pt geom.Point) {
	if msg.Action != tea.MouseActionPress {
		return
	}
	rect := m.menuLayer(m.area()).Rect
	content := rect.Inset(1)
	if !content.Contains(pt) {
		// Clicks outside the overlay are swallowed; Esc closes it.
		return
	}
	row := pt.Y - content.Y
	if row >= 0 && row < len(m.entries) {
		m.menuIndex = row
		m.runEntry(m.entries[row])
	}
}

func (m *Model) helpMouse(msg tea.MouseMsg) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.help.ScrollBy(wheelStep)
		return
	case tea.MouseButtonWheelDown:
		m.help.ScrollBy(-wheelStep)
		return
	}
	if msg.Action == tea.MouseActionPress {
		m.helpOpen = false
		if m.router.DismissWm() {
			m.leaveWm()
		}
	}
}

func (m *Model) mousePress(msg tea.MouseMsg, pt geom.Point) {
	if msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown {
		m.wheel(msg, pt)
		return
	}

	// The debug window floats above panes.
	if m.debugVisible && debugRect(m.area()).Contains(pt) {
		if msg.Button == tea.MouseButtonLeft {
			m.startSelection(nil, pt)
		}
		return
	}

	id, ok := m.paneAt(pt)
	if !ok {
		return
	}
	if focused, _ := m.focus.Focused(); focused != id {
		m.focusOn(id)
	}

	if msg.Button == tea.MouseButtonLeft && m.engine.IsFloating(id) {
		r, _ := m.engine.Rect(id)
		if pt.Y == r.Y {
			m.drag = dragState{kind: dragMove, id: id, last: pt}
			return
		}
		if pt.X == r.Right()-1 && pt.Y == r.Bottom()-1 {
			m.drag = dragState{kind: dragResize, id: id, last: pt}
			return
		}
	}

	p, ok := m.sess.Get(id)
	if !ok {
		return
	}
	if m.paneWantsMouse(p, msg) {
		m.forwardTo(p, msg, pt)
		return
	}
	if msg.Button == tea.MouseButtonLeft {
		m.startSelection(p, pt)
	}
}

// paneWantsMouse applies the arbitration rule: the pane gets raw mouse
// events when it reports them and capture is on, unless Shift overrides.
func (m *Model) paneWantsMouse(p *pane.Pane, msg tea.MouseMsg) bool {
	return m.mouseCapture && p.Grid().MouseReporting() && !msg.Shift
}

func (m *Model) wheel(msg tea.MouseMsg, pt geom.Point) {
	if m.debugVisible && debugRect(m.area()).Contains(pt) {
		if msg.Button == tea.MouseButtonWheelUp {
			m.debug.ScrollBy(wheelStep)
		} else {
			m.debug.ScrollBy(-wheelStep)
		}
		return
	}
	id, ok := m.paneAt(pt)
	if !ok {
		return
	}
	p, ok := m.sess.Get(id)
	if !ok {
		return
	}
	if m.paneWantsMouse(p, msg) || p.Grid().AltScreen() {
		m.forwardTo(p, msg, pt)
		return
	}
	delta := wheelStep
	if msg.Button == tea.MouseButtonWheelDown {
		delta = -wheelStep
	}
	off := m.scroll[id] + delta
	off = min(max(off, 0), p.Grid().ScrollbackLen())
	m.scroll[id] = off
}

// startSelection begins a drag on a pane surface, or on the debug view
// when p is nil. Clipboard mode gates all selection input.
func (m *Model) startSelection(p *pane.Pane, pt geom.Point) {
	if !m.clipboardOn {
		return
	}
	m.sel.Clear()
	if p == nil {
		m.selSurface = m.debug
		m.selPane = 0
	} else {
		r, ok := m.engine.Rect(p.ID())
		if !ok {
			return
		}
		m.selSurface = &selection.GridSurface{
			Grid:   p.Grid(),
			Rect:   r.Inset(1),
			Offset: m.scroll[p.ID()],
		}
		m.selPane = p.ID()
	}
	m.sel.HandleMouse(m.selSurface, selection.MouseEvent{
		Kind:   selection.MousePress,
		Button: selection.ButtonLeft,
		Point:  pt,
	})
}

func (m *Model) continueSelection(msg tea.MouseMsg, pt geom.Point) {
	if m.selSurface == nil {
		return
	}
	kind := selection.MouseDrag
	if msg.Action == tea.MouseActionRelease {
		kind = selection.MouseRelease
	}
	m.sel.HandleMouse(m.selSurface, selection.MouseEvent{
		Kind:   kind,
		Button: selection.ButtonLeft,
		Point:  pt,
	})
	if gs, ok := m.selSurface.(*selection.GridSurface); ok {
		// Auto-scroll during the drag moves the pane view with it.
		m.scroll[m.selPane] = gs.Offset
	}
	// Release finalizes the range but keeps it highlighted; copy needs
	// Alt held on release, or the manager-mode copy command.
	if kind == selection.MouseRelease && msg.Alt {
		m.copySelection()
	}
}

func (m *Model) copySelection() {
	if m.selSurface == nil {
		return
	}
	text := m.sel.Copy(m.selSurface)
	if text == "" {
		return
	}
	err := m.clip.Copy(text)
	if err == nil && !m.clip.Available() {
		err = clipboard.ErrUnavailable
	}
	if err != nil {
		m.log.Warnf("clipboard copy via %s: %v", m.clip.Name(), err)
	}
	m.bus.Publish(events.NewClipboardCopiedEvent(m.clip.Name(), len(text), err))
}

func (m *Model) clearSelection() {
	m.sel.Clear()
	m.selSurface = nil
	m.selPane = 0
}

func (m *Model) continueDrag(msg tea.MouseMsg, pt geom.Point) {
	id := m.drag.id
	switch msg.Action {
	case tea.MouseActionMotion:
		dx := pt.X - m.drag.last.X
		dy := pt.Y - m.drag.last.Y
		if dx == 0 && dy == 0 {
			return
		}
		var err error
		if m.drag.kind == dragMove {
			err = m.engine.MoveFloating(id, dx, dy)
		} else {
			err = m.engine.ResizeFloating(id, dx, dy)
		}
		if err != nil {
			m.drag = dragState{}
			return
		}
		m.drag.last = pt
		m.relayout()

	case tea.MouseActionRelease:
		if m.drag.kind == dragMove {
			if edge, ok := m.snapEdgeAt(pt); ok {
				if err := m.engine.SnapFloating(id, edge); err == nil {
					m.bus.Publish(events.NewLayoutChangedEvent("snap"))
				}
				m.relayout()
			}
		}
		m.drag = dragState{}
	}
}

// snapEdgeAt converts a drop position on a screen edge into a snap edge.
func (m *Model) snapEdgeAt(pt geom.Point) (layout.SnapEdge, bool) {
	area := m.area()
	switch {
	case pt.X <= area.X:
		return layout.SnapLeft, true
	case pt.X >= area.Right()-1:
		return layout.SnapRight, true
	case pt.Y <= area.Y:
		return layout.SnapTop, true
	case pt.Y >= area.Bottom()-1:
		return layout.SnapBottom, true
	}
	return 0, false
}

// paneAt hit-tests panes, topmost floating first.
func (m *Model) paneAt(pt geom.Point) (pane.ID, bool) {
	return m.zorder.TopmostAt(pt, func(id pane.ID) (geom.Rect, bool) {
		return m.engine.Rect(id)
	})
}

// forwardMouse sends motion/release to whichever pane is under the
// pointer, when that pane asked for mouse events.
func (m *Model) forwardMouse(msg tea.MouseMsg, pt geom.Point) {
	id, ok := m.paneAt(pt)
	if !ok {
		return
	}
	p, ok := m.sess.Get(id)
	if !ok || !m.paneWantsMouse(p, msg) {
		return
	}
	m.forwardTo(p, msg, pt)
}

// forwardTo encodes one mouse event in the pane's coordinate space.
func (m *Model) forwardTo(p *pane.Pane, msg tea.MouseMsg, pt geom.Point) {
	r, ok := m.engine.Rect(p.ID())
	if !ok {
		return
	}
	content := r.Inset(1)
	if !content.Contains(pt) {
		return
	}
	b := input.MouseReport(msg, pt.X-content.X, pt.Y-content.Y, encodingFor(p.Grid()))
	if len(b) > 0 {
		p.SendInput(b)
	}
}
