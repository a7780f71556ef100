package wm

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/loomterm/loom/internal/events"
	"github.com/loomterm/loom/internal/geom"
	"github.com/loomterm/loom/internal/layout"
	"github.com/loomterm/loom/internal/pane"
)

func (m *Model) actionNewWindow() tea.Cmd {
	spec := pane.Spec{
		Command:    m.cfg.ShellCommand(),
		Rows:       24,
		Cols:       80,
		Scrollback: m.cfg.Scrollback,
	}
	p, err := m.sess.Spawn(m.ctx, spec)
	if err != nil {
		m.log.Errorf("new window: %v", err)
		return nil
	}
	m.engine.Insert(p.ID(), layout.WindowManaged)
	m.focus.Add(p.ID())
	m.zorder.Push(p.ID())
	m.relayout()
	m.bus.Publish(events.NewFocusChangedEvent(uint64(p.ID())))
	return nil
}

func (m *Model) actionNextFocus() tea.Cmd {
	if id, ok := m.focus.Next(); ok {
		m.focusOn(id)
	}
	return nil
}

func (m *Model) actionPrevFocus() tea.Cmd {
	if id, ok := m.focus.Prev(); ok {
		m.focusOn(id)
	}
	return nil
}

// focusOn makes id the input target, raising it when floating and
// restoring it when minimized. Any standing selection clears.
func (m *Model) focusOn(id pane.ID) {
	m.clearSelection()
	m.focus.Focus(id)
	if m.engine.IsMinimized(id) {
		m.engine.Unminimize(id)
		m.relayout()
	}
	if m.engine.IsFloating(id) {
		m.zorder.BringToFront(id)
	}
	m.bus.Publish(events.NewFocusChangedEvent(uint64(id)))
}

func (m *Model) actionFloatSink() tea.Cmd {
	id, ok := m.focus.Focused()
	if !ok {
		return nil
	}
	if m.engine.IsFloating(id) {
		if err := m.engine.Sink(id); err != nil {
			m.log.Warnf("sink pane %d: %v", id, err)
			return nil
		}
	} else {
		r, ok := m.engine.Rect(id)
		if !ok {
			return nil
		}
		// Float at the tiled position, slightly shrunk so the change
		// is visible.
		fr := geom.NewRect(r.X+1, r.Y+1, max(r.Width-2, layout.MinFloatWidth), max(r.Height-2, layout.MinFloatHeight))
		if err := m.engine.Float(id, fr); err != nil {
			m.log.Warnf("float pane %d: %v", id, err)
			return nil
		}
		m.zorder.BringToFront(id)
	}
	m.relayout()
	m.bus.Publish(events.NewLayoutChangedEvent("float-sink"))
	return nil
}

func (m *Model) actionBringFront() tea.Cmd {
	if id, ok := m.focus.Focused(); ok && m.engine.IsFloating(id) {
		m.zorder.BringToFront(id)
	}
	return nil
}

func (m *Model) actionMinimize() tea.Cmd {
	id, ok := m.focus.Focused()
	if !ok {
		return nil
	}
	if err := m.engine.Minimize(id); err != nil {
		m.log.Warnf("minimize pane %d: %v", id, err)
		return nil
	}
	// Focus moves on; the minimized pane keeps running underneath.
	if next, ok := m.focus.Next(); ok && next != id {
		m.focus.Focus(next)
		m.bus.Publish(events.NewFocusChangedEvent(uint64(next)))
	}
	m.relayout()
	return nil
}

func (m *Model) actionMaximize() tea.Cmd {
	id, ok := m.focus.Focused()
	if !ok {
		return nil
	}
	var err error
	if m.engine.IsMaximized(id) {
		err = m.engine.Restore(id)
	} else {
		err = m.engine.Maximize(id)
	}
	if err != nil {
		m.log.Warnf("maximize pane %d: %v", id, err)
		return nil
	}
	m.relayout()
	return nil
}

func (m *Model) actionCloseWindow() tea.Cmd {
	id, ok := m.focus.Focused()
	if !ok {
		return nil
	}
	if err := m.sess.Close(id); err != nil {
		m.log.Warnf("close pane %d: %v", id, err)
	}
	return nil
}

func (m *Model) actionToggleBar() tea.Cmd {
	m.sess.ToggleStatusBar()
	return nil
}

func (m *Model) actionToggleDebug() tea.Cmd {
	m.sess.ToggleDebugWindow()
	return nil
}

func (m *Model) actionToggleMouse() tea.Cmd {
	m.sess.ToggleMouseCapture()
	return nil
}

func (m *Model) actionToggleClipboard() tea.Cmd {
	m.sess.ToggleClipboard()
	return nil
}

func (m *Model) actionCopySelection() tea.Cmd {
	m.copySelection()
	return nil
}

func (m *Model) actionHelp() tea.Cmd {
	m.helpOpen = true
	m.menuOpen = false
	if m.width > 0 {
		m.help.SetRect(overlayRect(m.area()).Inset(1))
	}
	m.help.ScrollToBottom()
	m.help.ScrollBy(m.help.LineCount())
	return nil
}

func (m *Model) actionQuit() tea.Cmd {
	m.quitting = true
	m.sess.CloseAll()
	return tea.Quit
}
