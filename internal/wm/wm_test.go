//go:build !windows

package wm

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/loomterm/loom/internal/clipboard"
	"github.com/loomterm/loom/internal/config"
	"github.com/loomterm/loom/internal/events"
	"github.com/loomterm/loom/internal/geom"
	"github.com/loomterm/loom/internal/input"
	"github.com/loomterm/loom/internal/logging"
)

func newTestModel(t *testing.T, panes int) *Model {
	t.Helper()
	cfg := config.Default()
	m := New(context.Background(), cfg, events.NewBus(32), logging.Nop())
	t.Cleanup(m.Shutdown)

	preset := &config.Preset{Name: "test"}
	for i := 0; i < panes; i++ {
		preset.Panes = append(preset.Panes, config.PresetPane{
			Command: "sh", Args: []string{"-c", "sleep 30"},
		})
	}
	if err := m.Bootstrap(preset); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return m
}

func pressKey(m *Model, kt tea.KeyType) {
	m.Update(tea.KeyMsg{Type: kt})
}

func pressRune(m *Model, r rune) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
}

// enterWmMode resolves the Esc ambiguity with a non-Esc key, which lands
// in WM mode and executes that key as a command.
func enterWmMode(t *testing.T, m *Model, cmd rune) {
	t.Helper()
	pressKey(m, tea.KeyEsc)
	if m.router.Mode() != input.EscPending {
		t.Fatalf("mode after Esc = %v, want EscPending", m.router.Mode())
	}
	pressRune(m, cmd)
}

func TestDoubleEscStaysPassThrough(t *testing.T) {
	m := newTestModel(t, 1)

	pressKey(m, tea.KeyEsc)
	pressKey(m, tea.KeyEsc)

	if m.router.Mode() != input.PassThrough {
		t.Errorf("mode = %v, want PassThrough", m.router.Mode())
	}
	if m.menuOpen {
		t.Error("menu must not open on a double Esc")
	}
}

func TestToggleStatusBarViaWmKey(t *testing.T) {
	m := newTestModel(t, 1)
	if !m.barVisible {
		t.Fatal("status bar should start visible")
	}

	enterWmMode(t, m, 's')
	m.Update(tickMsg(time.Now()))

	if m.barVisible {
		t.Error("status bar should be hidden after toggle")
	}
	if m.router.Mode() != input.PassThrough {
		t.Errorf("mode = %v, want PassThrough after running an action", m.router.Mode())
	}
}

func TestNewWindowAction(t *testing.T) {
	m := newTestModel(t, 1)

	enterWmMode(t, m, 'n')

	if m.sess.Count() != 2 {
		t.Fatalf("pane count = %d, want 2", m.sess.Count())
	}
	if m.engine.Len() != 2 {
		t.Errorf("layout entries = %d, want 2", m.engine.Len())
	}
	if m.focus.Len() != 2 {
		t.Errorf("focus ring = %d, want 2", m.focus.Len())
	}
}

func TestCloseWindowPrunesEverywhere(t *testing.T) {
	m := newTestModel(t, 2)
	closed, _ := m.focus.Focused()

	enterWmMode(t, m, 'x')

	if m.sess.Count() != 1 {
		t.Fatalf("pane count = %d, want 1", m.sess.Count())
	}
	if m.engine.Len() != 1 {
		t.Errorf("layout entries = %d, want 1", m.engine.Len())
	}
	if id, ok := m.focus.Focused(); !ok || id == closed {
		t.Errorf("focus = %d, %v; want a surviving pane", id, ok)
	}
}

func TestFocusCycling(t *testing.T) {
	m := newTestModel(t, 3)
	first, _ := m.focus.Focused()

	enterWmMode(t, m, 'j')
	second, _ := m.focus.Focused()
	if second == first {
		t.Fatal("j should move focus")
	}

	enterWmMode(t, m, 'j')
	enterWmMode(t, m, 'j')
	if id, _ := m.focus.Focused(); id != first {
		t.Errorf("three steps over three panes should wrap back to %d, got %d", first, id)
	}
}

func TestViewDrawsFramesAndStatusBar(t *testing.T) {
	m := newTestModel(t, 2)

	out := m.View()
	if out == "" {
		t.Fatal("empty view")
	}
	if !strings.Contains(out, "┌") || !strings.Contains(out, "└") {
		t.Error("view should contain frame borders")
	}
	if !strings.Contains(out, "2 pane(s)") {
		t.Error("status bar should report the pane count")
	}

	rows := strings.Split(out, "\n")
	if len(rows) != 24 {
		t.Errorf("view has %d rows, want 24", len(rows))
	}
}

func TestMenuOpensOnEscTimeout(t *testing.T) {
	m := newTestModel(t, 1)
	now := time.Unix(0, 0)
	m.router = input.NewRouter(
		input.WithEscWindow(600*time.Millisecond),
		input.WithClock(func() time.Time { return now }),
	)

	pressKey(m, tea.KeyEsc)
	if m.menuOpen {
		t.Fatal("menu must not open while the Esc window is pending")
	}

	now = now.Add(700 * time.Millisecond)
	m.Update(tickMsg(now))

	if m.router.Mode() != input.WmMode {
		t.Fatalf("mode = %v, want WmMode after the window expires", m.router.Mode())
	}
	if !m.menuOpen {
		t.Error("menu should open when the Esc window expires")
	}
	if !strings.Contains(m.View(), "new window") {
		t.Error("view should include the menu overlay")
	}
}

func TestClickFocusesPane(t *testing.T) {
	m := newTestModel(t, 2)
	first, _ := m.focus.Focused()

	// Tiled two panes split left/right; click far right.
	m.Update(tea.MouseMsg{
		X: 70, Y: 10,
		Action: tea.MouseActionPress,
		Button: tea.MouseButtonLeft,
	})

	id, ok := m.focus.Focused()
	if !ok || id == first {
		t.Errorf("focus after click = %d, want the right-hand pane", id)
	}
}

func TestFloatDragMoveAndSnap(t *testing.T) {
	m := newTestModel(t, 2)
	id, _ := m.focus.Focused()

	enterWmMode(t, m, 'f')
	if !m.engine.IsFloating(id) {
		t.Fatal("pane should float after f")
	}
	r, _ := m.engine.Rect(id)

	// Drag the title bar right and down.
	start := geom.Point{X: r.X + 2, Y: r.Y}
	m.Update(tea.MouseMsg{X: start.X, Y: start.Y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m.Update(tea.MouseMsg{X: start.X + 3, Y: start.Y + 2, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	m.Update(tea.MouseMsg{X: start.X + 3, Y: start.Y + 2, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})

	moved, _ := m.engine.Rect(id)
	if moved.X != r.X+3 || moved.Y != r.Y+2 {
		t.Errorf("rect after drag = %+v, want origin (%d,%d)", moved, r.X+3, r.Y+2)
	}
	if m.engine.IsFloating(id) != true {
		t.Fatal("still floating after a mid-screen drop")
	}

	// Drag to the left edge and drop: snaps back to tiled.
	fr, _ := m.engine.Rect(id)
	m.Update(tea.MouseMsg{X: fr.X + 2, Y: fr.Y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m.Update(tea.MouseMsg{X: 0, Y: fr.Y, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	m.Update(tea.MouseMsg{X: 0, Y: fr.Y, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})

	if m.engine.IsFloating(id) {
		t.Error("pane should tile after an edge drop")
	}
}

func TestHelpOverlayOpensAndCloses(t *testing.T) {
	m := newTestModel(t, 1)

	enterWmMode(t, m, '?')
	if !m.helpOpen {
		t.Fatal("help should be open")
	}
	out := m.View()
	if !strings.Contains(out, "help") {
		t.Error("view should include the help overlay title")
	}

	pressRune(m, 'q')
	if m.helpOpen {
		t.Error("any key should close help")
	}
	if m.router.Mode() != input.PassThrough {
		t.Errorf("mode = %v, want PassThrough after closing help", m.router.Mode())
	}
}

func TestDebugWindowToggle(t *testing.T) {
	m := newTestModel(t, 1)

	enterWmMode(t, m, 'd')
	m.Update(tickMsg(time.Now()))

	if !m.debugVisible {
		t.Fatal("debug window should be visible")
	}
	if !strings.Contains(m.View(), "debug") {
		t.Error("view should include the debug window title")
	}
}

// newSinkModel runs a single pane whose shell dumps raw stdin to a file,
// so tests can observe exactly what the child received.
func newSinkModel(t *testing.T) (*Model, string) {
	t.Helper()
	out := filepath.Join(t.TempDir(), "sink")
	m := New(context.Background(), config.Default(), events.NewBus(32), logging.Nop())
	t.Cleanup(m.Shutdown)

	preset := &config.Preset{Name: "sink", Panes: []config.PresetPane{{
		Command: "sh", Args: []string{"-c", "stty raw -echo; cat > " + out},
	}}}
	if err := m.Bootstrap(preset); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return m, out
}

func waitForBytes(t *testing.T, path, want string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if b, err := os.ReadFile(path); err == nil && strings.Contains(string(b), want) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	b, _ := os.ReadFile(path)
	t.Fatalf("child never received %q, got %q", want, b)
}

func TestMouseForwardUsesPaneCoordinates(t *testing.T) {
	m, out := newSinkModel(t)
	p, ok := m.focusedPane()
	if !ok {
		t.Fatal("no focused pane")
	}
	// Child opts into SGR mouse reporting.
	p.Grid().WriteString("\x1b[?1000h\x1b[?1006h")

	// The full-screen pane's frame sits at (0,0); its first content cell
	// is screen (1,1), which SGR reports as column;row 1;1.
	m.Update(tea.MouseMsg{X: 1, Y: 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})

	waitForBytes(t, out, "\x1b[<0;1;1M")
}

func TestPasteForwardsWithGuards(t *testing.T) {
	m, out := newSinkModel(t)
	p, ok := m.focusedPane()
	if !ok {
		t.Fatal("no focused pane")
	}
	p.Grid().WriteString("\x1b[?2004h")

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("hi there"), Paste: true})

	waitForBytes(t, out, "\x1b[200~hi there\x1b[201~")
}

func TestPasteWithoutGuardsRewritesNewlines(t *testing.T) {
	m, out := newSinkModel(t)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("one\ntwo"), Paste: true})

	waitForBytes(t, out, "one\rtwo")
}

func TestClipboardToggleGatesSelection(t *testing.T) {
	m := newTestModel(t, 1)
	if !m.clipboardOn {
		t.Fatal("clipboard mode should start enabled")
	}

	enterWmMode(t, m, 'c')
	m.Update(tickMsg(time.Now()))
	if m.clipboardOn {
		t.Fatal("clipboard mode should be off after the toggle")
	}
	if !strings.Contains(m.View(), "clip off") {
		t.Error("status bar should flag clipboard mode off")
	}

	m.Update(tea.MouseMsg{X: 1, Y: 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m.Update(tea.MouseMsg{X: 5, Y: 1, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	if m.sel.Dragging() || m.selSurface != nil {
		t.Error("selection must not start while clipboard mode is off")
	}

	enterWmMode(t, m, 'c')
	m.Update(tickMsg(time.Now()))
	if !m.clipboardOn {
		t.Error("second toggle should re-enable clipboard mode")
	}
}

func TestMenuIgnoresOutsideClick(t *testing.T) {
	m := newTestModel(t, 1)
	now := time.Unix(0, 0)
	m.router = input.NewRouter(
		input.WithEscWindow(600*time.Millisecond),
		input.WithClock(func() time.Time { return now }),
	)

	pressKey(m, tea.KeyEsc)
	now = now.Add(700 * time.Millisecond)
	m.Update(tickMsg(now))
	if !m.menuOpen {
		t.Fatal("menu should be open")
	}

	m.Update(tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})

	if !m.menuOpen {
		t.Error("a click outside the overlay must not dismiss it")
	}
	if m.router.Mode() != input.WmMode {
		t.Errorf("mode = %v, want WmMode", m.router.Mode())
	}
}

// sweep drags left-button from (1,1) to (x2,1) and releases there.
func sweep(m *Model, x2 int, alt bool) {
	m.Update(tea.MouseMsg{X: 1, Y: 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m.Update(tea.MouseMsg{X: x2, Y: 1, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	m.Update(tea.MouseMsg{X: x2, Y: 1, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft, Alt: alt})
}

func TestFocusChangeClearsSelection(t *testing.T) {
	m := newTestModel(t, 2)
	p, _ := m.focusedPane()
	p.Grid().WriteString("hello world")

	sweep(m, 5, false)
	if _, ok := m.sel.Selection(); !ok {
		t.Fatal("selection should survive the release")
	}

	enterWmMode(t, m, 'j')
	if _, ok := m.sel.Selection(); ok {
		t.Error("moving focus must clear the selection")
	}
	if m.selSurface != nil {
		t.Error("selection surface should be dropped with the highlight")
	}
}

func TestCopyNeedsExplicitAction(t *testing.T) {
	m := newTestModel(t, 1)
	mem := clipboard.NewMemory()
	m.clip = mem
	p, _ := m.focusedPane()
	p.Grid().WriteString("hello world")

	// A plain release finalizes the range but copies nothing.
	sweep(m, 5, false)
	if _, err := mem.Paste(); !errors.Is(err, clipboard.ErrEmpty) {
		t.Fatalf("Paste after plain release = %v, want ErrEmpty", err)
	}
	if _, ok := m.sel.Selection(); !ok {
		t.Fatal("range should stay highlighted after release")
	}

	// y in manager mode copies the standing range.
	enterWmMode(t, m, 'y')
	if got, err := mem.Paste(); err != nil || got != "hello" {
		t.Fatalf("Paste after y = %q, %v, want %q", got, err, "hello")
	}

	// Releasing with Alt held copies immediately.
	sweep(m, 11, true)
	if got, err := mem.Paste(); err != nil || got != "hello world" {
		t.Fatalf("Paste after Alt release = %q, %v, want %q", got, err, "hello world")
	}
}
