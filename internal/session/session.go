// Package session owns the set of live panes and the user-facing
// toggles. Pane identifiers are index+generation so a stale ID held
// across a close can never address a recycled slot.
package session

import (
	"context"
	"fmt"

	"github.com/loomterm/loom/internal/events"
	"github.com/loomterm/loom/internal/logging"
	"github.com/loomterm/loom/internal/pane"
)

// slot holds one arena entry. gen increments on every reuse.
type slot struct {
	gen uint32
	p   *pane.Pane
}

// toggle is a boolean with a consumed-once change flag.
type toggle struct {
	value   bool
	changed bool
}

func (t *toggle) flip() {
	t.value = !t.value
	t.changed = true
}

func (t *toggle) take() (bool, bool) {
	c := t.changed
	t.changed = false
	return t.value, c
}

// Session is the pane arena. All methods must be called from the
// window manager goroutine; panes do their own internal locking.
type Session struct {
	bus   *events.Bus
	log   *logging.Logger
	slots []slot
	order []pane.ID

	statusBar    toggle
	debugWin     toggle
	mouseCapture toggle
	clipboard    toggle
}

// New creates an empty session. The status bar starts visible; mouse
// capture and clipboard mode start enabled.
func New(bus *events.Bus, log *logging.Logger) *Session {
	return &Session{
		bus:          bus,
		log:          log,
		statusBar:    toggle{value: true},
		mouseCapture: toggle{value: true},
		clipboard:    toggle{value: true},
	}
}

// makeID packs a slot index and generation into a pane ID. Generation
// starts at 1, so the zero ID is never valid.
func makeID(index int, gen uint32) pane.ID {
	return pane.ID(uint64(gen)<<32 | uint64(uint32(index)))
}

func splitID(id pane.ID) (index int, gen uint32) {
	return int(uint32(id)), uint32(uint64(id) >> 32)
}

// Spawn starts a pane in a free arena slot and returns it.
func (s *Session) Spawn(ctx context.Context, spec pane.Spec) (*pane.Pane, error) {
	index := -1
	for i := range s.slots {
		if s.slots[i].p == nil {
			index = i
			break
		}
	}
	if index < 0 {
		s.slots = append(s.slots, slot{})
		index = len(s.slots) - 1
	}

	s.slots[index].gen++
	id := makeID(index, s.slots[index].gen)

	p, err := pane.Start(ctx, id, spec)
	if err != nil {
		return nil, fmt.Errorf("spawn pane: %w", err)
	}
	s.slots[index].p = p
	s.order = append(s.order, id)

	s.log.Infof("pane %d spawned: %s", id, spec.Command)
	s.bus.Publish(events.NewPaneStartedEvent(uint64(id), spec.Command))
	return p, nil
}

// Get returns the pane for id if the slot still holds that generation.
func (s *Session) Get(id pane.ID) (*pane.Pane, bool) {
	index, gen := splitID(id)
	if index < 0 || index >= len(s.slots) {
		return nil, false
	}
	sl := s.slots[index]
	if sl.p == nil || sl.gen != gen {
		return nil, false
	}
	return sl.p, true
}

// Panes returns the live panes in creation order.
func (s *Session) Panes() []*pane.Pane {
	out := make([]*pane.Pane, 0, len(s.order))
	for _, id := range s.order {
		if p, ok := s.Get(id); ok {
			out = append(out, p)
		}
	}
	return out
}

// IDs returns the live pane IDs in creation order.
func (s *Session) IDs() []pane.ID {
	out := make([]pane.ID, len(s.order))
	copy(out, s.order)
	return out
}

// Count returns the number of live panes.
func (s *Session) Count() int { return len(s.order) }

// Close terminates the pane and frees its slot.
func (s *Session) Close(id pane.ID) error {
	p, ok := s.Get(id)
	if !ok {
		return pane.ErrPaneClosed
	}
	err := p.Close()
	s.remove(id)
	s.log.Infof("pane %d closed", id)
	s.bus.Publish(events.NewPaneExitedEvent(uint64(id), nil))
	return err
}

func (s *Session) remove(id pane.ID) {
	index, _ := splitID(id)
	if index >= 0 && index < len(s.slots) {
		s.slots[index].p = nil
	}
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}

// CloseAll terminates every pane. Used on shutdown.
func (s *Session) CloseAll() {
	for _, id := range s.IDs() {
		if p, ok := s.Get(id); ok {
			p.Close()
			s.remove(id)
		}
	}
}

// Tick drains queued output into every grid and prunes panes whose
// child has exited. Returns whether anything changed on screen.
func (s *Session) Tick() bool {
	redraw := false
	for _, id := range s.IDs() {
		p, ok := s.Get(id)
		if !ok {
			continue
		}
		if p.Drain() {
			redraw = true
		}
		if !p.Alive() {
			err := p.ExitErr()
			p.Close()
			s.remove(id)
			redraw = true
			if err != nil {
				s.log.Warnf("pane %d exited: %v", id, err)
			} else {
				s.log.Infof("pane %d exited", id)
			}
			s.bus.Publish(events.NewPaneExitedEvent(uint64(id), err))
		}
	}
	return redraw
}

// ToggleStatusBar flips status bar visibility.
func (s *Session) ToggleStatusBar() { s.statusBar.flip() }

// StatusBarVisible reports status bar visibility without consuming
// the change flag.
func (s *Session) StatusBarVisible() bool { return s.statusBar.value }

// TakeStatusBarChange returns visibility plus whether it changed since
// the last call, clearing the change flag.
func (s *Session) TakeStatusBarChange() (bool, bool) { return s.statusBar.take() }

// ToggleDebugWindow flips debug window visibility.
func (s *Session) ToggleDebugWindow() { s.debugWin.flip() }

// DebugWindowVisible reports debug window visibility.
func (s *Session) DebugWindowVisible() bool { return s.debugWin.value }

// TakeDebugWindowChange returns visibility plus whether it changed,
// clearing the change flag.
func (s *Session) TakeDebugWindowChange() (bool, bool) { return s.debugWin.take() }

// ToggleMouseCapture flips whether mouse events reach panes.
func (s *Session) ToggleMouseCapture() { s.mouseCapture.flip() }

// MouseCaptureEnabled reports whether panes receive mouse events.
func (s *Session) MouseCaptureEnabled() bool { return s.mouseCapture.value }

// TakeMouseCaptureChange returns the setting plus whether it changed,
// clearing the change flag.
func (s *Session) TakeMouseCaptureChange() (bool, bool) { return s.mouseCapture.take() }

// ToggleClipboard flips whether mouse selection is active.
func (s *Session) ToggleClipboard() { s.clipboard.flip() }

// ClipboardEnabled reports whether mouse selection is active.
func (s *Session) ClipboardEnabled() bool { return s.clipboard.value }

// TakeClipboardChange returns the setting plus whether it changed,
// clearing the change flag.
func (s *Session) TakeClipboardChange() (bool, bool) { return s.clipboard.take() }
