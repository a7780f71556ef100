package events

import (
	"time"
)

// Event kinds published on the bus.
const (
	KindPaneStarted     = "pane_started"
	KindPaneExited      = "pane_exited"
	KindPaneTitle       = "pane_title"
	KindFocusChanged    = "focus_changed"
	KindModeChanged     = "mode_changed"
	KindLayoutChanged   = "layout_changed"
	KindClipboardCopied = "clipboard_copied"
	KindConfigReloaded  = "config_reloaded"
)

// BaseEvent provides common fields for all events
type BaseEvent struct {
	Kind string    `json:"kind"`
	Time time.Time `json:"time"`
}

// EventKind returns the event kind
func (e BaseEvent) EventKind() string { return e.Kind }

// EventTime returns the event timestamp
func (e BaseEvent) EventTime() time.Time { return e.Time }

func base(kind string) BaseEvent {
	return BaseEvent{Kind: kind, Time: time.Now().UTC()}
}

// PaneStartedEvent is emitted when a pane's child process starts.
type PaneStartedEvent struct {
	BaseEvent
	PaneID  uint64 `json:"pane_id"`
	Command string `json:"command"`
}

// NewPaneStartedEvent creates a new pane started event
func NewPaneStartedEvent(paneID uint64, command string) PaneStartedEvent {
	return PaneStartedEvent{BaseEvent: base(KindPaneStarted), PaneID: paneID, Command: command}
}

// PaneExitedEvent is emitted when a pane's child process exits and the
// pane is pruned from the session.
type PaneExitedEvent struct {
	BaseEvent
	PaneID uint64 `json:"pane_id"`
	Error  string `json:"error,omitempty"`
}

// NewPaneExitedEvent creates a new pane exited event
func NewPaneExitedEvent(paneID uint64, err error) PaneExitedEvent {
	e := PaneExitedEvent{BaseEvent: base(KindPaneExited), PaneID: paneID}
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// PaneTitleEvent is emitted when a pane changes its title via OSC.
type PaneTitleEvent struct {
	BaseEvent
	PaneID uint64 `json:"pane_id"`
	Title  string `json:"title"`
}

// NewPaneTitleEvent creates a new pane title event
func NewPaneTitleEvent(paneID uint64, title string) PaneTitleEvent {
	return PaneTitleEvent{BaseEvent: base(KindPaneTitle), PaneID: paneID, Title: title}
}

// FocusChangedEvent is emitted when keyboard focus moves to another pane.
type FocusChangedEvent struct {
	BaseEvent
	PaneID uint64 `json:"pane_id"`
}

// NewFocusChangedEvent creates a new focus changed event
func NewFocusChangedEvent(paneID uint64) FocusChangedEvent {
	return FocusChangedEvent{BaseEvent: base(KindFocusChanged), PaneID: paneID}
}

// ModeChangedEvent is emitted when the input router changes mode.
type ModeChangedEvent struct {
	BaseEvent
	Mode string `json:"mode"`
}

// NewModeChangedEvent creates a new mode changed event
func NewModeChangedEvent(mode string) ModeChangedEvent {
	return ModeChangedEvent{BaseEvent: base(KindModeChanged), Mode: mode}
}

// LayoutChangedEvent is emitted when panes are retiled, floated, or moved.
type LayoutChangedEvent struct {
	BaseEvent
	Reason string `json:"reason"`
}

// NewLayoutChangedEvent creates a new layout changed event
func NewLayoutChangedEvent(reason string) LayoutChangedEvent {
	return LayoutChangedEvent{BaseEvent: base(KindLayoutChanged), Reason: reason}
}

// ClipboardCopiedEvent is emitted after a selection is copied.
type ClipboardCopiedEvent struct {
	BaseEvent
	Backend string `json:"backend"`
	Bytes   int    `json:"bytes"`
	Error   string `json:"error,omitempty"`
}

// NewClipboardCopiedEvent creates a new clipboard copied event
func NewClipboardCopiedEvent(backend string, n int, err error) ClipboardCopiedEvent {
	e := ClipboardCopiedEvent{BaseEvent: base(KindClipboardCopied), Backend: backend, Bytes: n}
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// ConfigReloadedEvent is emitted when the config watcher applies a change.
type ConfigReloadedEvent struct {
	BaseEvent
	Path string `json:"path"`
}

// NewConfigReloadedEvent creates a new config reloaded event
func NewConfigReloadedEvent(path string) ConfigReloadedEvent {
	return ConfigReloadedEvent{BaseEvent: base(KindConfigReloaded), Path: path}
}
