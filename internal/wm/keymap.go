package wm

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// keyMap binds the window-manager mode commands. Pass-through mode never
// consults it; everything there goes to the focused pane.
type keyMap struct {
	CloseMenu     key.Binding
	NewWindow     key.Binding
	NextFocus     key.Binding
	PrevFocus     key.Binding
	ToggleBar     key.Binding
	ToggleDebug   key.Binding
	BringFront    key.Binding
	FloatSink     key.Binding
	Minimize      key.Binding
	Maximize      key.Binding
	CloseWindow   key.Binding
	ToggleMouse   key.Binding
	ToggleClip    key.Binding
	CopySelection key.Binding
	Help          key.Binding
	Quit          key.Binding

	MenuUp     key.Binding
	MenuDown   key.Binding
	MenuSelect key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		CloseMenu: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close menu"),
		),
		NewWindow: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new window"),
		),
		NextFocus: key.NewBinding(
			key.WithKeys("tab", "j"),
			key.WithHelp("tab", "focus next"),
		),
		PrevFocus: key.NewBinding(
			key.WithKeys("shift+tab", "k"),
			key.WithHelp("shift+tab", "focus previous"),
		),
		ToggleBar: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "toggle status bar"),
		),
		ToggleDebug: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "toggle debug window"),
		),
		BringFront: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "bring to front"),
		),
		FloatSink: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "float / sink"),
		),
		Minimize: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "minimize"),
		),
		Maximize: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "maximize / restore"),
		),
		CloseWindow: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "close window"),
		),
		ToggleMouse: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "toggle mouse capture"),
		),
		ToggleClip: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "toggle clipboard mode"),
		),
		CopySelection: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy selection"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),

		MenuUp: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "menu up"),
		),
		MenuDown: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "menu down"),
		),
		MenuSelect: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "run item"),
		),
	}
}

// menuEntry pairs a visible menu line with its action.
type menuEntry struct {
	binding key.Binding
	run     func(*Model) tea.Cmd
}

func menuEntries(k keyMap) []menuEntry {
	return []menuEntry{
		{k.NewWindow, (*Model).actionNewWindow},
		{k.NextFocus, (*Model).actionNextFocus},
		{k.PrevFocus, (*Model).actionPrevFocus},
		{k.FloatSink, (*Model).actionFloatSink},
		{k.BringFront, (*Model).actionBringFront},
		{k.Minimize, (*Model).actionMinimize},
		{k.Maximize, (*Model).actionMaximize},
		{k.CloseWindow, (*Model).actionCloseWindow},
		{k.ToggleBar, (*Model).actionToggleBar},
		{k.ToggleDebug, (*Model).actionToggleDebug},
		{k.ToggleMouse, (*Model).actionToggleMouse},
		{k.ToggleClip, (*Model).actionToggleClipboard},
		{k.CopySelection, (*Model).actionCopySelection},
		{k.Help, (*Model).actionHelp},
		{k.Quit, (*Model).actionQuit},
	}
}
