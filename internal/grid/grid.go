// Package grid implements the per-pane screen emulator: a fixed-size cell
// matrix driven by a VT100/xterm escape interpreter, with a scrollback ring
// behind the primary screen. A Grid is not safe for concurrent use; the
// session loop feeds it from exactly one goroutine.
package grid

import "strings"

// DefaultScrollback is the scrollback line cap used when no option overrides it.
const DefaultScrollback = 2000

// Mode is a bitmask of terminal modes toggled by SM/RM sequences.
type Mode uint32

const (
	// ModeWrap wraps the cursor to the next line at the right margin (DECAWM).
	ModeWrap Mode = 1 << iota
	// ModeOrigin makes row addressing relative to the scroll region (DECOM).
	ModeOrigin
	// ModeInsert shifts existing cells right on write instead of overwriting.
	ModeInsert
	// ModeCursorKeys switches arrow keys to application encoding (DECCKM).
	ModeCursorKeys
	// ModeHideCursor suppresses the cursor (inverse of DECTCEM).
	ModeHideCursor
	// ModeAltScreen selects the alternate screen buffer.
	ModeAltScreen
	// ModeBracketedPaste wraps pasted text in 200~/201~ guards.
	ModeBracketedPaste
	// ModeAppKeypad selects application keypad encoding (DECKPAM).
	ModeAppKeypad
	// ModeMouseButton reports button press/release (mode 1000).
	ModeMouseButton
	// ModeMouseMotion reports motion while a button is held (mode 1002).
	ModeMouseMotion
	// ModeMouseAny reports all motion (mode 1003).
	ModeMouseAny
	// ModeMouseSGR selects SGR mouse encoding (mode 1006).
	ModeMouseSGR
	// ModeFocusEvents reports focus in/out (mode 1004).
	ModeFocusEvents
)

const mouseReportMask = ModeMouseButton | ModeMouseMotion | ModeMouseAny

// Cursor is the write position. WrapNext marks the deferred-wrap state that
// follows a write into the last column.
type Cursor struct {
	Row      int
	Col      int
	WrapNext bool
}

type savedCursor struct {
	cur    Cursor
	brush  Cell
	origin bool
	set    bool
}

// Grid holds one pane's emulated screen. The zero value is not usable; use New.
type Grid struct {
	rows int
	cols int

	primary [][]Cell
	alt     [][]Cell
	lines   [][]Cell // aliases primary or alt

	scrollback    [][]Cell
	maxScrollback int

	cur       Cursor
	saved     savedCursor
	altSaved  savedCursor
	brush     Cell
	top       int // scroll region, inclusive rows
	bottom    int
	mode      Mode
	title     string
	tabStops  []bool
	reply    func([]byte)
	dirty    bool
	lastRune rune // most recent printable, for REP

	parser parserState
}

// Option configures a Grid at construction time.
type Option func(*Grid)

// WithScrollback caps the scrollback ring at n lines. n <= 0 disables
// scrollback entirely.
func WithScrollback(n int) Option {
	return func(g *Grid) { g.maxScrollback = n }
}

// WithReply installs the sink for sequences the emulator must answer
// (DSR, DA). The supervisor points this at the PTY writer.
func WithReply(fn func([]byte)) Option {
	return func(g *Grid) { g.reply = fn }
}

// New builds a grid of the given size. Dimensions below 1 are raised to 1.
func New(rows, cols int, opts ...Option) *Grid {
	rows = max(rows, 1)
	cols = max(cols, 1)
	g := &Grid{
		rows:          rows,
		cols:          cols,
		maxScrollback: DefaultScrollback,
		brush:         Blank(DefaultBG),
		mode:          ModeWrap,
		bottom:        rows - 1,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.primary = makeLines(rows, cols)
	g.alt = makeLines(rows, cols)
	g.lines = g.primary
	g.resetTabStops()
	return g
}

func makeLines(rows, cols int) [][]Cell {
	lines := make([][]Cell, rows)
	for i := range lines {
		lines[i] = blankLine(cols, DefaultBG)
	}
	return lines
}

func blankLine(cols int, bg Color) []Cell {
	line := make([]Cell, cols)
	for i := range line {
		line[i] = Blank(bg)
	}
	return line
}

// Rows returns the live screen height.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the live screen width.
func (g *Grid) Cols() int { return g.cols }

// Cursor returns the current write position.
func (g *Grid) Cursor() Cursor { return g.cur }

// CursorVisible reports whether the application wants the cursor shown.
func (g *Grid) CursorVisible() bool { return g.mode&ModeHideCursor == 0 }

// Title returns the window title set via OSC 0/2, or "".
func (g *Grid) Title() string { return g.title }

// Mode returns the active mode bitmask.
func (g *Grid) Mode() Mode { return g.mode }

// MouseReporting reports whether the application requested any mouse mode.
func (g *Grid) MouseReporting() bool { return g.mode&mouseReportMask != 0 }

// BracketedPaste reports whether pastes must be wrapped in guard sequences.
func (g *Grid) BracketedPaste() bool { return g.mode&ModeBracketedPaste != 0 }

// AltScreen reports whether the alternate buffer is active.
func (g *Grid) AltScreen() bool { return g.mode&ModeAltScreen != 0 }

// Line returns live row i. The returned slice is the grid's backing store;
// callers must not modify it.
func (g *Grid) Line(i int) []Cell {
	if i < 0 || i >= g.rows {
		return nil
	}
	return g.lines[i]
}

// ScrollbackLen returns the number of lines in the scrollback ring.
func (g *Grid) ScrollbackLen() int { return len(g.scrollback) }

// TotalLines returns scrollback plus live rows, the addressable history.
func (g *Grid) TotalLines() int { return len(g.scrollback) + g.rows }

// AbsoluteLine addresses scrollback and live rows as one sequence: index 0
// is the oldest scrollback line, TotalLines()-1 the bottom live row.
func (g *Grid) AbsoluteLine(n int) []Cell {
	if n < 0 || n >= g.TotalLines() {
		return nil
	}
	if n < len(g.scrollback) {
		return g.scrollback[n]
	}
	return g.lines[n-len(g.scrollback)]
}

// TakeDirty returns whether the screen changed since the last call and
// clears the flag.
func (g *Grid) TakeDirty() bool {
	d := g.dirty
	g.dirty = false
	return d
}

// Write feeds raw application output through the escape interpreter.
// Partial escape sequences and split UTF-8 runes carry over to the next
// call. It never fails; the signature matches io.Writer.
func (g *Grid) Write(p []byte) (int, error) {
	for _, b := range p {
		g.parseByte(b)
	}
	return len(p), nil
}

// WriteString is Write for strings.
func (g *Grid) WriteString(s string) {
	g.Write([]byte(s))
}

// Resize clips or pads the screen to the new dimensions. Content is kept
// top-left anchored, the cursor is clamped into bounds, and the scroll
// region resets to the full screen. There is no reflow; lines longer than
// the new width lose their tails.
func (g *Grid) Resize(rows, cols int) {
	rows = max(rows, 1)
	cols = max(cols, 1)
	if rows == g.rows && cols == g.cols {
		return
	}
	g.primary = resizeLines(g.primary, rows, cols)
	g.alt = resizeLines(g.alt, rows, cols)
	if g.mode&ModeAltScreen != 0 {
		g.lines = g.alt
	} else {
		g.lines = g.primary
	}
	for i, line := range g.scrollback {
		g.scrollback[i] = resizeLine(line, cols)
	}
	g.rows = rows
	g.cols = cols
	g.top = 0
	g.bottom = rows - 1
	g.cur.Row = min(g.cur.Row, rows-1)
	g.cur.Col = min(g.cur.Col, cols-1)
	g.cur.WrapNext = false
	if g.saved.set {
		g.saved.cur.Row = min(g.saved.cur.Row, rows-1)
		g.saved.cur.Col = min(g.saved.cur.Col, cols-1)
	}
	g.resetTabStops()
	g.dirty = true
}

func resizeLines(lines [][]Cell, rows, cols int) [][]Cell {
	out := make([][]Cell, rows)
	for i := range out {
		if i < len(lines) {
			out[i] = resizeLine(lines[i], cols)
		} else {
			out[i] = blankLine(cols, DefaultBG)
		}
	}
	return out
}

func resizeLine(line []Cell, cols int) []Cell {
	if len(line) == cols {
		return line
	}
	if len(line) > cols {
		return line[:cols:cols]
	}
	out := make([]Cell, cols)
	copy(out, line)
	for i := len(line); i < cols; i++ {
		out[i] = Blank(DefaultBG)
	}
	return out
}

// PlainLine renders one absolute line as trimmed text, used by selection
// extraction and tests.
func (g *Grid) PlainLine(n int) string {
	line := g.AbsoluteLine(n)
	if line == nil {
		return ""
	}
	var sb strings.Builder
	for _, c := range line {
		if c.Width == 0 {
			continue
		}
		sb.WriteRune(c.Rune)
	}
	return strings.TrimRight(sb.String(), " ")
}

func (g *Grid) resetTabStops() {
	g.tabStops = make([]bool, g.cols)
	for i := 8; i < g.cols; i += 8 {
		g.tabStops[i] = true
	}
}

func (g *Grid) sendReply(s string) {
	if g.reply != nil {
		g.reply([]byte(s))
	}
}
