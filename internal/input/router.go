// Package input routes terminal input between the focused pane and the
// window manager. Almost everything passes straight through to the child;
// a double-Esc timing gate is the only way in to WM mode, so single Esc
// presses still reach vim and friends after one escape-window delay.
package input

import (
	"runtime"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Mode is the router's input state.
type Mode int

const (
	// PassThrough forwards everything to the focused pane.
	PassThrough Mode = iota
	// EscPending holds one swallowed Esc while waiting to disambiguate.
	EscPending
	// WmMode feeds keys to the window-manager menu instead of the pane.
	WmMode
)

func (m Mode) String() string {
	switch m {
	case EscPending:
		return "esc-pending"
	case WmMode:
		return "wm"
	default:
		return "pass-through"
	}
}

// Action tells the caller what to do with a routed key.
type Action int

const (
	// ActionNone means the router consumed the key as a state change.
	ActionNone Action = iota
	// ActionForward sends Decision.Bytes to the focused pane.
	ActionForward
	// ActionWmCommand hands Decision.Key to the WM menu.
	ActionWmCommand
)

// Decision is the outcome of routing one key.
type Decision struct {
	Action  Action
	Bytes   []byte
	Key     tea.KeyMsg
	Entered bool // WM mode was just entered
	Exited  bool // WM mode was just left
}

// DefaultEscWindow is how long a lone Esc is held before WM mode opens.
// Windows terminals deliver Esc noticeably slower, hence the wider window.
func DefaultEscWindow() time.Duration {
	if runtime.GOOS == "windows" {
		return 1200 * time.Millisecond
	}
	return 600 * time.Millisecond
}

// Router owns the modal input state machine. It is driven from the tick
// goroutine only.
type Router struct {
	mode     Mode
	deadline time.Time
	window   time.Duration
	now      func() time.Time
}

// Option configures a Router.
type Option func(*Router)

// WithEscWindow overrides the double-Esc disambiguation window.
func WithEscWindow(d time.Duration) Option {
	return func(r *Router) {
		if d > 0 {
			r.window = d
		}
	}
}

// WithClock injects a time source for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Router) { r.now = now }
}

// NewRouter returns a router in PassThrough mode.
func NewRouter(opts ...Option) *Router {
	r := &Router{
		window: DefaultEscWindow(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Mode returns the current input mode.
func (r *Router) Mode() Mode { return r.mode }

// EscWindow returns the active disambiguation window.
func (r *Router) EscWindow() time.Duration { return r.window }

// SetEscWindow changes the window live, e.g. on config reload. A pending
// deadline is left as scheduled.
func (r *Router) SetEscWindow(d time.Duration) {
	if d > 0 {
		r.window = d
	}
}

// Tick advances time-dependent state. It reports true when a pending Esc
// just expired into WM mode, so the caller can push the overlay.
func (r *Router) Tick() bool {
	if r.mode == EscPending && !r.now().Before(r.deadline) {
		r.mode = WmMode
		return true
	}
	return false
}

// Key routes one key press through the state machine. Encoding of forwarded
// keys honors enc (the focused pane's reported modes).
func (r *Router) Key(msg tea.KeyMsg, enc Encoding) Decision {
	isEsc := msg.Type == tea.KeyEsc && !msg.Alt

	switch r.mode {
	case PassThrough:
		if isEsc {
			r.mode = EscPending
			r.deadline = r.now().Add(r.window)
			return Decision{Action: ActionNone}
		}
		return Decision{Action: ActionForward, Bytes: KeyBytes(msg, enc)}

	case EscPending:
		if !r.now().Before(r.deadline) {
			// Expired but Tick has not run yet this frame.
			r.mode = WmMode
			d := r.route(msg)
			d.Entered = true
			return d
		}
		if isEsc {
			// Second Esc inside the window: the pane gets exactly one.
			r.mode = PassThrough
			return Decision{Action: ActionForward, Bytes: []byte{0x1b}}
		}
		// Any other key resolves the ambiguity toward WM mode and is
		// immediately interpreted there.
		r.mode = WmMode
		return Decision{Action: ActionWmCommand, Key: msg, Entered: true}

	default: // WmMode
		return r.route(msg)
	}
}

func (r *Router) route(msg tea.KeyMsg) Decision {
	if msg.Type == tea.KeyEsc && !msg.Alt {
		r.mode = PassThrough
		return Decision{Action: ActionNone, Exited: true}
	}
	return Decision{Action: ActionWmCommand, Key: msg}
}

// DismissWm leaves WM mode programmatically (menu item, click outside).
func (r *Router) DismissWm() bool {
	if r.mode != WmMode {
		return false
	}
	r.mode = PassThrough
	return true
}
