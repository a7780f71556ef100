// Package wm is the bubbletea front end: it owns the tick loop, routes
// input between the focused pane and the manager, and composes every
// visible surface into the frame bubbletea renders.
package wm

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"

	"github.com/loomterm/loom/internal/clipboard"
	"github.com/loomterm/loom/internal/config"
	"github.com/loomterm/loom/internal/events"
	"github.com/loomterm/loom/internal/geom"
	"github.com/loomterm/loom/internal/grid"
	"github.com/loomterm/loom/internal/input"
	"github.com/loomterm/loom/internal/layout"
	"github.com/loomterm/loom/internal/logging"
	"github.com/loomterm/loom/internal/pane"
	"github.com/loomterm/loom/internal/selection"
	"github.com/loomterm/loom/internal/session"
	"github.com/loomterm/loom/internal/textview"
)

// tickEvery is the frame cadence. Pane output accumulated between ticks
// is drained in one batch.
const tickEvery = 16 * time.Millisecond

type tickMsg time.Time

type configMsg struct{ cfg *config.Config }

// dragKind is what a floating-window drag is doing.
type dragKind int

const (
	dragNone dragKind = iota
	dragMove
	dragResize
)

type dragState struct {
	kind dragKind
	id   pane.ID
	last geom.Point
}

// Model is the window manager program state. All fields are owned by
// the bubbletea goroutine.
type Model struct {
	ctx context.Context
	cfg *config.Config
	bus *events.Bus
	log *logging.Logger

	sess   *session.Session
	engine *layout.Engine
	router *input.Router
	focus  input.FocusRing
	zorder input.ZOrderStack

	sel        selection.Controller
	selSurface selection.Surface
	selPane    pane.ID // zero when the selection is on the debug view
	clip       clipboard.Backend

	profile termenv.Profile
	width   int
	height  int

	// scroll holds per-pane scrollback offsets; absent means live view.
	scroll map[pane.ID]int

	barVisible   bool
	debugVisible bool
	mouseCapture bool
	clipboardOn  bool
	debug        *textview.View

	menuOpen  bool
	menuIndex int
	entries   []menuEntry
	keys      keyMap

	helpOpen bool
	help     *textview.View

	drag dragState

	cfgCh   chan *config.Config
	cfgStop func()

	quitting bool
}

// New wires the window manager together. Call Bootstrap before running
// the program to spawn the initial panes.
func New(ctx context.Context, cfg *config.Config, bus *events.Bus, log *logging.Logger) *Model {
	keys := defaultKeyMap()
	m := &Model{
		ctx:          ctx,
		cfg:          cfg,
		bus:          bus,
		log:          log,
		sess:         session.New(bus, log),
		engine:       layout.New(geom.Rect{}),
		clip:         clipboard.New(),
		profile:      termenv.ColorProfile(),
		scroll:       make(map[pane.ID]int),
		barVisible:   cfg.StatusBar,
		mouseCapture: cfg.MouseCapture,
		clipboardOn:  cfg.Clipboard,
		debug:        textview.New(),
		help:         textview.New(),
		entries:      menuEntries(keys),
		keys:         keys,
		cfgCh:        make(chan *config.Config, 1),
	}
	if !cfg.StatusBar {
		m.sess.ToggleStatusBar()
	}
	if !cfg.MouseCapture {
		m.sess.ToggleMouseCapture()
	}
	if !cfg.Clipboard {
		m.sess.ToggleClipboard()
	}

	opts := []input.Option{}
	if w := cfg.EscWindow(); w > 0 {
		opts = append(opts, input.WithEscWindow(w))
	}
	m.router = input.NewRouter(opts...)

	m.debug.SetColors(grid.Color(7), grid.Color(0))
	m.help.SetText(renderHelp(keys))

	bus.SubscribeAll(func(e events.BusEvent) {
		m.debug.Append(e.EventTime().Format("15:04:05.000") + " " + e.EventKind())
	})
	bus.Subscribe(events.KindPaneExited, func(e events.BusEvent) {
		ev := e.(events.PaneExitedEvent)
		m.dropPane(pane.ID(ev.PaneID))
	})
	return m
}

// Bootstrap spawns the preset's panes before the program starts. Sizes
// are provisional until the first WindowSizeMsg.
func (m *Model) Bootstrap(preset *config.Preset) error {
	for _, pp := range preset.Panes {
		spec := pane.Spec{
			Command:    pp.Command,
			Args:       pp.Args,
			Dir:        pp.Dir,
			Title:      pp.Title,
			Rows:       24,
			Cols:       80,
			Scrollback: m.cfg.Scrollback,
		}
		p, err := m.sess.Spawn(m.ctx, spec)
		if err != nil {
			return err
		}
		contract := layout.WindowManaged
		if pp.Contract == "app" {
			contract = layout.AppManaged
		}
		m.engine.Insert(p.ID(), contract)
		if pp.Floating && contract == layout.WindowManaged {
			m.engine.Float(p.ID(), geom.NewRect(2, 2, 60, 16))
		}
		m.focus.Add(p.ID())
		m.zorder.Push(p.ID())
	}
	return nil
}

// Shutdown stops the config watcher and terminates every pane.
func (m *Model) Shutdown() {
	if m.cfgStop != nil {
		m.cfgStop()
		m.cfgStop = nil
	}
	m.sess.CloseAll()
}

// Init starts the tick loop and the config watcher.
func (m *Model) Init() tea.Cmd {
	stop, err := config.Watch("", func(cfg *config.Config) {
		select {
		case m.cfgCh <- cfg:
		default:
		}
	}, func(err error) {
		m.log.Warnf("config reload: %v", err)
	})
	if err != nil {
		m.log.Warnf("config watch unavailable: %v", err)
	} else {
		m.cfgStop = stop
	}
	return tea.Batch(tick(), m.waitConfig())
}

func tick() tea.Cmd {
	return tea.Tick(tickEvery, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *Model) waitConfig() tea.Cmd {
	return func() tea.Msg {
		cfg, ok := <-m.cfgCh
		if !ok {
			return nil
		}
		return configMsg{cfg: cfg}
	}
}

// Update is the single entry point for every message.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tickMsg:
		cmd := m.onTick()
		return m, tea.Batch(tick(), cmd)

	case configMsg:
		m.applyConfig(msg.cfg)
		return m, m.waitConfig()

	case tea.KeyMsg:
		return m, m.onKey(msg)

	case tea.MouseMsg:
		m.onMouse(msg)
		return m, nil
	}
	return m, nil
}

func (m *Model) onTick() tea.Cmd {
	if m.router.Tick() {
		m.enterWm()
	}
	m.sess.Tick()

	if _, changed := m.sess.TakeStatusBarChange(); changed {
		m.barVisible = m.sess.StatusBarVisible()
		m.relayout()
	}
	if _, changed := m.sess.TakeDebugWindowChange(); changed {
		m.debugVisible = m.sess.DebugWindowVisible()
		m.relayout()
	}
	if v, changed := m.sess.TakeMouseCaptureChange(); changed {
		m.mouseCapture = v
	}
	if v, changed := m.sess.TakeClipboardChange(); changed {
		m.clipboardOn = v
		if !v {
			m.clearSelection()
		}
	}

	if m.quitting && m.sess.Count() == 0 {
		return tea.Quit
	}
	if m.sess.Count() == 0 && m.focus.Len() == 0 {
		// Last pane gone; nothing left to manage.
		return tea.Quit
	}
	return nil
}

func (m *Model) applyConfig(cfg *config.Config) {
	m.cfg = cfg
	if w := cfg.EscWindow(); w > 0 {
		m.router.SetEscWindow(w)
	}
	m.log.SetLevel(cfg.LogLevel())
	m.log.Infof("config reloaded")
	m.bus.Publish(events.NewConfigReloadedEvent(config.DefaultPath()))
}

// resize recomputes the layout area and pushes new sizes to every pane.
func (m *Model) resize(w, h int) {
	m.width, m.height = w, h
	m.relayout()
}

// area is the screen space panes may occupy, excluding the status bar.
func (m *Model) area() geom.Rect {
	h := m.height
	if m.barVisible && h > 0 {
		h--
	}
	return geom.NewRect(0, 0, m.width, h)
}

func (m *Model) relayout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	area := m.area()
	m.engine.SetArea(area)

	// App-managed panes choose their own rect from the screen size; here
	// that means a centered window at two thirds of the area.
	for _, id := range m.engine.IDs() {
		if c, ok := m.engine.ContractOf(id); !ok || c != layout.AppManaged {
			continue
		}
		if r, ok := appRect(area); ok {
			m.engine.SetAppRect(id, r)
		}
	}
	m.engine.Apply()

	for _, id := range m.engine.IDs() {
		r, ok := m.engine.Rect(id)
		if !ok {
			continue
		}
		p, ok := m.sess.Get(id)
		if !ok {
			continue
		}
		content := r.Inset(1)
		if content.Width > 0 && content.Height > 0 {
			p.Resize(content.Height, content.Width)
		}
	}

	if m.debugVisible {
		m.debug.SetRect(debugRect(area).Inset(1))
	}
	if m.helpOpen {
		m.help.SetRect(overlayRect(area).Inset(1))
	}
	m.bus.Publish(events.NewLayoutChangedEvent("resize"))
}

// appRect is the rectangle an app-managed component requests: centered,
// two thirds of the area, respecting minimums.
func appRect(area geom.Rect) (geom.Rect, bool) {
	w := area.Width * 2 / 3
	h := area.Height * 2 / 3
	if w < layout.MinFloatWidth || h < layout.MinFloatHeight {
		return geom.Rect{}, false
	}
	return geom.NewRect(area.X+(area.Width-w)/2, area.Y+(area.Height-h)/2, w, h), true
}

// debugRect pins the debug window to the bottom-right quadrant.
func debugRect(area geom.Rect) geom.Rect {
	w := max(area.Width/2, 20)
	h := max(area.Height/3, 5)
	w = min(w, area.Width)
	h = min(h, area.Height)
	return geom.NewRect(area.Right()-w, area.Bottom()-h, w, h)
}

// overlayRect centers the menu and help overlays.
func overlayRect(area geom.Rect) geom.Rect {
	w := min(48, area.Width)
	h := min(18, area.Height)
	return geom.NewRect(area.X+(area.Width-w)/2, area.Y+(area.Height-h)/2, w, h)
}

// dropPane removes every reference to a pane that no longer exists.
func (m *Model) dropPane(id pane.ID) {
	m.engine.Remove(id)
	m.focus.Remove(id)
	m.zorder.Remove(id)
	delete(m.scroll, id)
	if m.selPane == id {
		m.clearSelection()
	}
	if next, ok := m.focus.Focused(); ok {
		m.bus.Publish(events.NewFocusChangedEvent(uint64(next)))
	}
	m.relayout()
}

// focusedPane returns the pane that receives pass-through input.
func (m *Model) focusedPane() (*pane.Pane, bool) {
	id, ok := m.focus.Focused()
	if !ok {
		return nil, false
	}
	return m.sess.Get(id)
}

// encodingFor reflects the pane's reported terminal modes.
func encodingFor(g *grid.Grid) input.Encoding {
	return input.Encoding{
		AppCursorKeys:  g.Mode()&grid.ModeCursorKeys != 0,
		BracketedPaste: g.BracketedPaste(),
		MouseSGR:       g.Mode()&grid.ModeMouseSGR != 0,
	}
}

func (m *Model) enterWm() {
	m.menuOpen = true
	m.menuIndex = 0
	m.bus.Publish(events.NewModeChangedEvent(input.WmMode.String()))
}

func (m *Model) leaveWm() {
	m.menuOpen = false
	m.helpOpen = false
	m.bus.Publish(events.NewModeChangedEvent(input.PassThrough.String()))
}

func (m *Model) onKey(msg tea.KeyMsg) tea.Cmd {
	if m.helpOpen {
		return m.helpKey(msg)
	}

	var enc input.Encoding
	p, hasFocus := m.focusedPane()
	if hasFocus {
		enc = encodingFor(p.Grid())
	}

	if msg.Paste {
		// Pasted text bypasses the state machine; guard bytes are the
		// pane's to request.
		if hasFocus && m.router.Mode() == input.PassThrough {
			m.scroll[p.ID()] = 0
			p.SendInput(input.PasteBytes(string(msg.Runes), enc))
		}
		return nil
	}

	d := m.router.Key(msg, enc)
	if d.Entered {
		m.enterWm()
	}
	if d.Exited {
		m.leaveWm()
	}

	switch d.Action {
	case input.ActionForward:
		if hasFocus && len(d.Bytes) > 0 {
			// Keyboard input snaps the view back to the live screen.
			m.scroll[p.ID()] = 0
			p.SendInput(d.Bytes)
		}
	case input.ActionWmCommand:
		return m.wmKey(d.Key)
	}
	return nil
}

// wmKey interprets one key in WM mode: menu navigation first, then the
// direct action bindings.
func (m *Model) wmKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.MenuUp):
		if m.menuIndex > 0 {
			m.menuIndex--
		}
		return nil
	case key.Matches(msg, m.keys.MenuDown):
		if m.menuIndex < len(m.entries)-1 {
			m.menuIndex++
		}
		return nil
	case key.Matches(msg, m.keys.MenuSelect):
		return m.runEntry(m.entries[m.menuIndex])
	}

	for _, e := range m.entries {
		if key.Matches(msg, e.binding) {
			return m.runEntry(e)
		}
	}
	return nil
}

func (m *Model) runEntry(e menuEntry) tea.Cmd {
	cmd := e.run(m)
	if m.helpOpen || m.quitting {
		return cmd
	}
	if m.router.DismissWm() {
		m.leaveWm()
	}
	return cmd
}

func (m *Model) helpKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyUp:
		m.help.ScrollBy(1)
		return nil
	case tea.KeyDown:
		m.help.ScrollBy(-1)
		return nil
	}
	m.helpOpen = false
	if m.router.DismissWm() {
		m.leaveWm()
	}
	return nil
}
