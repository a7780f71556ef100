package input

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// Encoding captures the focused pane's reported input modes so forwarded
// bytes match what the child asked for.
type Encoding struct {
	AppCursorKeys  bool // DECCKM: arrows as SS3 instead of CSI
	BracketedPaste bool
	MouseSGR       bool
}

// KeyBytes translates a key press into the byte sequence a terminal would
// send the child. Unknown keys encode to nil and are dropped.
func KeyBytes(msg tea.KeyMsg, enc Encoding) []byte {
	var seq []byte
	switch msg.Type {
	case tea.KeyRunes:
		seq = []byte(string(msg.Runes))
	case tea.KeyUp:
		seq = cursorKey('A', enc.AppCursorKeys)
	case tea.KeyDown:
		seq = cursorKey('B', enc.AppCursorKeys)
	case tea.KeyRight:
		seq = cursorKey('C', enc.AppCursorKeys)
	case tea.KeyLeft:
		seq = cursorKey('D', enc.AppCursorKeys)
	case tea.KeyHome:
		seq = cursorKey('H', enc.AppCursorKeys)
	case tea.KeyEnd:
		seq = cursorKey('F', enc.AppCursorKeys)
	case tea.KeyShiftTab:
		seq = []byte("\x1b[Z")
	case tea.KeyInsert:
		seq = []byte("\x1b[2~")
	case tea.KeyDelete:
		seq = []byte("\x1b[3~")
	case tea.KeyPgUp:
		seq = []byte("\x1b[5~")
	case tea.KeyPgDown:
		seq = []byte("\x1b[6~")
	case tea.KeyF1:
		seq = []byte("\x1bOP")
	case tea.KeyF2:
		seq = []byte("\x1bOQ")
	case tea.KeyF3:
		seq = []byte("\x1bOR")
	case tea.KeyF4:
		seq = []byte("\x1bOS")
	case tea.KeyF5:
		seq = []byte("\x1b[15~")
	case tea.KeyF6:
		seq = []byte("\x1b[17~")
	case tea.KeyF7:
		seq = []byte("\x1b[18~")
	case tea.KeyF8:
		seq = []byte("\x1b[19~")
	case tea.KeyF9:
		seq = []byte("\x1b[20~")
	case tea.KeyF10:
		seq = []byte("\x1b[21~")
	case tea.KeyF11:
		seq = []byte("\x1b[23~")
	case tea.KeyF12:
		seq = []byte("\x1b[24~")
	default:
		// Control keys, Enter, Tab, Space and Backspace carry their byte
		// value as the key type.
		if msg.Type >= 0 && msg.Type <= 0x7f {
			seq = []byte{byte(msg.Type)}
		}
	}
	if seq == nil {
		return nil
	}
	if msg.Alt {
		return append([]byte{0x1b}, seq...)
	}
	return seq
}

func cursorKey(final byte, app bool) []byte {
	if app {
		return []byte{0x1b, 'O', final}
	}
	return []byte{0x1b, '[', final}
}

// PasteBytes encodes pasted text for the child. With bracketed paste the
// text travels verbatim inside the guards; otherwise newlines become
// carriage returns, matching what a keyboard would have sent.
func PasteBytes(text string, enc Encoding) []byte {
	if enc.BracketedPaste {
		return []byte("\x1b[200~" + text + "\x1b[201~")
	}
	text = strings.ReplaceAll(text, "\r\n", "\r")
	text = strings.ReplaceAll(text, "\n", "\r")
	return []byte(text)
}

// MouseReport encodes a mouse event at pane-relative cell (x, y), both
// 0-based, for a child that requested mouse reporting. Events that cannot
// be represented (legacy encoding out of range, unknown buttons) encode
// to nil.
func MouseReport(msg tea.MouseMsg, x, y int, enc Encoding) []byte {
	cb, ok := buttonCode(msg)
	if !ok {
		return nil
	}
	if msg.Action == tea.MouseActionMotion {
		cb += 32
	}
	if msg.Shift {
		cb += 4
	}
	if msg.Alt {
		cb += 8
	}
	if msg.Ctrl {
		cb += 16
	}

	if enc.MouseSGR {
		final := byte('M')
		if msg.Action == tea.MouseActionRelease {
			final = 'm'
		}
		return []byte(fmt.Sprintf("\x1b[<%d;%d;%d%c", cb, x+1, y+1, final))
	}

	// Legacy X10 encoding folds release into button 3 and tops out at
	// coordinate 222.
	if msg.Action == tea.MouseActionRelease {
		cb = (cb &^ 0x3) | 3
	}
	if x+1 > 222 || y+1 > 222 {
		return nil
	}
	return []byte{0x1b, '[', 'M', byte(32 + cb), byte(32 + x + 1), byte(32 + y + 1)}
}

func buttonCode(msg tea.MouseMsg) (int, bool) {
	switch msg.Button {
	case tea.MouseButtonLeft:
		return 0, true
	case tea.MouseButtonMiddle:
		return 1, true
	case tea.MouseButtonRight:
		return 2, true
	case tea.MouseButtonWheelUp:
		return 64, true
	case tea.MouseButtonWheelDown:
		return 65, true
	case tea.MouseButtonNone:
		// Motion with no button still reports in any-motion mode.
		if msg.Action == tea.MouseActionMotion {
			return 3, true
		}
		return 0, false
	default:
		return 0, false
	}
}
