package grid

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

func (g *Grid) print(r rune) {
	w := runewidth.RuneWidth(r)
	if w == 0 {
		// Combining marks and other zero-width runes are dropped rather
		// than merged into the previous cell.
		return
	}
	if w > g.cols {
		return
	}
	g.lastRune = r
	g.dirty = true

	if g.cur.WrapNext {
		g.cur.WrapNext = false
		if g.mode&ModeWrap != 0 {
			g.cur.Col = 0
			g.lineFeed(false)
		}
	}

	if g.cur.Col+w > g.cols {
		if g.mode&ModeWrap != 0 {
			// A wide rune that does not fit leaves a blank at the margin.
			g.lines[g.cur.Row][g.cols-1] = Blank(g.brush.BG)
			g.cur.Col = 0
			g.lineFeed(false)
		} else {
			g.cur.Col = g.cols - w
		}
	}

	line := g.lines[g.cur.Row]
	if g.mode&ModeInsert != 0 {
		copy(line[g.cur.Col+w:], line[g.cur.Col:])
	}

	// Writing over half of an existing wide pair degrades the survivor.
	g.clearWideAt(g.cur.Row, g.cur.Col)
	if w == 2 && g.cur.Col+1 < g.cols {
		g.clearWideAt(g.cur.Row, g.cur.Col+1)
	}

	cell := g.brush
	cell.Rune = r
	cell.Width = uint8(w)
	line[g.cur.Col] = cell
	if w == 2 && g.cur.Col+1 < g.cols {
		cont := g.brush
		cont.Rune = 0
		cont.Width = 0
		line[g.cur.Col+1] = cont
	}

	if g.cur.Col+w >= g.cols {
		g.cur.Col = g.cols - 1
		g.cur.WrapNext = g.mode&ModeWrap != 0
	} else {
		g.cur.Col += w
	}
}

// clearWideAt repairs a wide pair when one half is about to be overwritten:
// the other half becomes a plain blank.
func (g *Grid) clearWideAt(row, col int) {
	line := g.lines[row]
	c := line[col]
	switch {
	case c.Width == 2 && col+1 < g.cols:
		line[col+1] = Blank(line[col+1].BG)
	case c.Width == 0 && col > 0 && line[col-1].Width == 2:
		line[col-1] = Blank(line[col-1].BG)
	}
}

func (g *Grid) lineFeed(carriage bool) {
	if carriage {
		g.cur.Col = 0
	}
	g.cur.WrapNext = false
	if g.cur.Row == g.bottom {
		g.scrollUp(1)
	} else if g.cur.Row < g.rows-1 {
		g.cur.Row++
	}
	g.dirty = true
}

func (g *Grid) reverseIndex() {
	g.cur.WrapNext = false
	if g.cur.Row == g.top {
		g.scrollDown(1)
	} else if g.cur.Row > 0 {
		g.cur.Row--
	}
	g.dirty = true
}

// scrollUp removes n lines from the top of the scroll region. Lines leaving
// the top of the primary screen enter scrollback.
func (g *Grid) scrollUp(n int) {
	n = min(n, g.bottom-g.top+1)
	if n <= 0 {
		return
	}
	if g.top == 0 && g.mode&ModeAltScreen == 0 && g.maxScrollback > 0 {
		for i := 0; i < n; i++ {
			saved := make([]Cell, g.cols)
			copy(saved, g.lines[g.top+i])
			g.scrollback = append(g.scrollback, saved)
		}
		if excess := len(g.scrollback) - g.maxScrollback; excess > 0 {
			g.scrollback = g.scrollback[excess:]
		}
	}
	copy(g.lines[g.top:], g.lines[g.top+n:g.bottom+1])
	for i := g.bottom - n + 1; i <= g.bottom; i++ {
		g.lines[i] = blankLine(g.cols, g.brush.BG)
	}
	g.dirty = true
}

func (g *Grid) scrollDown(n int) {
	n = min(n, g.bottom-g.top+1)
	if n <= 0 {
		return
	}
	copy(g.lines[g.top+n:g.bottom+1], g.lines[g.top:])
	for i := g.top; i < g.top+n; i++ {
		g.lines[i] = blankLine(g.cols, g.brush.BG)
	}
	g.dirty = true
}

func (g *Grid) dispatchCSI(final byte) {
	p := &g.parser
	if p.inter != 0 {
		// DECSCUSR and friends carry an intermediate; none change the screen.
		return
	}
	switch final {
	case 'A':
		g.moveCursor(g.cur.Row-p.arg(0, 1), g.cur.Col)
	case 'B':
		g.moveCursor(g.cur.Row+p.arg(0, 1), g.cur.Col)
	case 'C':
		g.moveCursor(g.cur.Row, g.cur.Col+p.arg(0, 1))
	case 'D':
		g.moveCursor(g.cur.Row, g.cur.Col-p.arg(0, 1))
	case 'E':
		g.moveCursor(g.cur.Row+p.arg(0, 1), 0)
	case 'F':
		g.moveCursor(g.cur.Row-p.arg(0, 1), 0)
	case 'G', '`':
		g.moveCursor(g.cur.Row, p.arg(0, 1)-1)
	case 'H', 'f':
		g.moveCursorAbsolute(p.arg(0, 1)-1, p.arg(1, 1)-1)
	case 'd':
		g.moveCursorAbsolute(p.arg(0, 1)-1, g.cur.Col)
	case 'J':
		g.eraseInDisplay(p.arg(0, 0))
	case 'K':
		g.eraseInLine(p.arg(0, 0))
	case 'L':
		g.insertLines(p.arg(0, 1))
	case 'M':
		g.deleteLines(p.arg(0, 1))
	case '@':
		g.insertChars(p.arg(0, 1))
	case 'P':
		g.deleteChars(p.arg(0, 1))
	case 'X':
		g.eraseChars(p.arg(0, 1))
	case 'S':
		g.scrollUp(p.arg(0, 1))
	case 'T':
		g.scrollDown(p.arg(0, 1))
	case 'b':
		g.repeatLast(p.arg(0, 1))
	case 'g':
		g.clearTabStops(p.arg(0, 0))
	case 'h':
		g.setModes(true)
	case 'l':
		g.setModes(false)
	case 'm':
		g.selectGraphicRendition()
	case 'n':
		g.deviceStatusReport(p.arg(0, 0))
	case 'c':
		if p.private == 0 || p.private == '?' {
			// DA1: advertise a VT100 with advanced video.
			g.sendReply("\x1b[?1;2c")
		}
	case 'r':
		g.setScrollRegion(p.arg(0, 1)-1, p.arg(1, g.rows)-1)
	case 's':
		if p.private == 0 {
			g.saveCursor()
		}
	case 'u':
		// Kitty keyboard protocol uses CSI u with markers; only the bare
		// ANSI.SYS form restores the cursor.
		if p.private == 0 {
			g.restoreCursor()
		}
	case 't':
		// Window manipulation (XTWINOPS) is not honored.
	}
}

func (g *Grid) moveCursor(row, col int) {
	minRow, maxRow := 0, g.rows-1
	if g.mode&ModeOrigin != 0 {
		minRow, maxRow = g.top, g.bottom
	}
	g.cur.Row = min(max(row, minRow), maxRow)
	g.cur.Col = min(max(col, 0), g.cols-1)
	g.cur.WrapNext = false
	g.dirty = true
}

func (g *Grid) moveCursorAbsolute(row, col int) {
	if g.mode&ModeOrigin != 0 {
		row += g.top
	}
	g.moveCursor(row, col)
}

func (g *Grid) eraseInDisplay(mode int) {
	switch mode {
	case 0:
		g.eraseInLine(0)
		for r := g.cur.Row + 1; r < g.rows; r++ {
			g.lines[r] = blankLine(g.cols, g.brush.BG)
		}
	case 1:
		g.eraseInLine(1)
		for r := 0; r < g.cur.Row; r++ {
			g.lines[r] = blankLine(g.cols, g.brush.BG)
		}
	case 2:
		for r := 0; r < g.rows; r++ {
			g.lines[r] = blankLine(g.cols, g.brush.BG)
		}
	case 3:
		g.scrollback = nil
	}
	g.dirty = true
}

func (g *Grid) eraseInLine(mode int) {
	line := g.lines[g.cur.Row]
	switch mode {
	case 0:
		for c := g.cur.Col; c < g.cols; c++ {
			line[c] = Blank(g.brush.BG)
		}
	case 1:
		for c := 0; c <= g.cur.Col; c++ {
			line[c] = Blank(g.brush.BG)
		}
	case 2:
		g.lines[g.cur.Row] = blankLine(g.cols, g.brush.BG)
	}
	g.dirty = true
}

func (g *Grid) insertLines(n int) {
	if g.cur.Row < g.top || g.cur.Row > g.bottom {
		return
	}
	n = min(n, g.bottom-g.cur.Row+1)
	copy(g.lines[g.cur.Row+n:g.bottom+1], g.lines[g.cur.Row:])
	for i := g.cur.Row; i < g.cur.Row+n; i++ {
		g.lines[i] = blankLine(g.cols, g.brush.BG)
	}
	g.cur.Col = 0
	g.cur.WrapNext = false
	g.dirty = true
}

func (g *Grid) deleteLines(n int) {
	if g.cur.Row < g.top || g.cur.Row > g.bottom {
		return
	}
	n = min(n, g.bottom-g.cur.Row+1)
	copy(g.lines[g.cur.Row:], g.lines[g.cur.Row+n:g.bottom+1])
	for i := g.bottom - n + 1; i <= g.bottom; i++ {
		g.lines[i] = blankLine(g.cols, g.brush.BG)
	}
	g.cur.Col = 0
	g.cur.WrapNext = false
	g.dirty = true
}

func (g *Grid) insertChars(n int) {
	line := g.lines[g.cur.Row]
	n = min(n, g.cols-g.cur.Col)
	copy(line[g.cur.Col+n:], line[g.cur.Col:])
	for c := g.cur.Col; c < g.cur.Col+n; c++ {
		line[c] = Blank(g.brush.BG)
	}
	g.dirty = true
}

func (g *Grid) deleteChars(n int) {
	line := g.lines[g.cur.Row]
	n = min(n, g.cols-g.cur.Col)
	copy(line[g.cur.Col:], line[g.cur.Col+n:])
	for c := g.cols - n; c < g.cols; c++ {
		line[c] = Blank(g.brush.BG)
	}
	g.dirty = true
}

func (g *Grid) eraseChars(n int) {
	line := g.lines[g.cur.Row]
	n = min(n, g.cols-g.cur.Col)
	for c := g.cur.Col; c < g.cur.Col+n; c++ {
		line[c] = Blank(g.brush.BG)
	}
	g.dirty = true
}

func (g *Grid) repeatLast(n int) {
	if g.lastRune == 0 {
		return
	}
	// Bounded by one full screen so a hostile count cannot spin the loop.
	n = min(n, g.rows*g.cols)
	for i := 0; i < n; i++ {
		g.print(g.lastRune)
	}
}

func (g *Grid) clearTabStops(mode int) {
	switch mode {
	case 0:
		if g.cur.Col < len(g.tabStops) {
			g.tabStops[g.cur.Col] = false
		}
	case 3:
		g.tabStops = make([]bool, g.cols)
	}
}

func (g *Grid) setScrollRegion(top, bottom int) {
	top = max(top, 0)
	bottom = min(bottom, g.rows-1)
	if top >= bottom {
		top, bottom = 0, g.rows-1
	}
	g.top = top
	g.bottom = bottom
	g.moveCursorAbsolute(0, 0)
}

func (g *Grid) setModes(set bool) {
	p := &g.parser
	for _, raw := range p.params {
		if p.private == '?' {
			g.setPrivateMode(raw, set)
			continue
		}
		switch raw {
		case 4:
			g.flipMode(ModeInsert, set)
		}
	}
}

func (g *Grid) setPrivateMode(id int, set bool) {
	switch id {
	case 1:
		g.flipMode(ModeCursorKeys, set)
	case 6:
		g.flipMode(ModeOrigin, set)
		g.moveCursorAbsolute(0, 0)
	case 7:
		g.flipMode(ModeWrap, set)
	case 25:
		g.flipMode(ModeHideCursor, !set)
	case 47:
		g.switchScreen(set, false, false)
	case 1000:
		g.flipMode(ModeMouseButton, set)
	case 1002:
		g.flipMode(ModeMouseMotion, set)
	case 1003:
		g.flipMode(ModeMouseAny, set)
	case 1004:
		g.flipMode(ModeFocusEvents, set)
	case 1006:
		g.flipMode(ModeMouseSGR, set)
	case 1047:
		g.switchScreen(set, true, false)
	case 1048:
		if set {
			g.saveCursor()
		} else {
			g.restoreCursor()
		}
	case 1049:
		g.switchScreen(set, true, true)
	case 2004:
		g.flipMode(ModeBracketedPaste, set)
	}
}

func (g *Grid) flipMode(m Mode, set bool) {
	if set {
		g.mode |= m
	} else {
		g.mode &^= m
	}
	g.dirty = true
}

// switchScreen flips between primary and alternate buffers. clear wipes the
// alternate screen on entry; save additionally stashes and restores the
// primary cursor (mode 1049 semantics).
func (g *Grid) switchScreen(toAlt, clear, save bool) {
	if toAlt == (g.mode&ModeAltScreen != 0) {
		return
	}
	if toAlt {
		if save {
			g.saveCursor()
		}
		g.mode |= ModeAltScreen
		g.lines = g.alt
		if clear {
			for i := range g.alt {
				g.alt[i] = blankLine(g.cols, DefaultBG)
			}
		}
		g.cur = Cursor{}
	} else {
		g.mode &^= ModeAltScreen
		g.lines = g.primary
		if save {
			g.restoreCursor()
		}
	}
	g.top = 0
	g.bottom = g.rows - 1
	g.dirty = true
}

func (g *Grid) saveCursor() {
	s := g.activeSaved()
	s.cur = g.cur
	s.brush = g.brush
	s.origin = g.mode&ModeOrigin != 0
	s.set = true
}

func (g *Grid) restoreCursor() {
	s := g.activeSaved()
	if !s.set {
		g.moveCursor(0, 0)
		return
	}
	g.brush = s.brush
	g.flipMode(ModeOrigin, s.origin)
	g.cur = s.cur
	g.cur.Row = min(g.cur.Row, g.rows-1)
	g.cur.Col = min(g.cur.Col, g.cols-1)
	g.cur.WrapNext = false
	g.dirty = true
}

func (g *Grid) activeSaved() *savedCursor {
	if g.mode&ModeAltScreen != 0 {
		return &g.altSaved
	}
	return &g.saved
}

func (g *Grid) deviceStatusReport(kind int) {
	switch kind {
	case 5:
		g.sendReply("\x1b[0n")
	case 6:
		row := g.cur.Row
		if g.mode&ModeOrigin != 0 {
			row -= g.top
		}
		g.sendReply(fmt.Sprintf("\x1b[%d;%dR", row+1, g.cur.Col+1))
	}
}

func (g *Grid) reset() {
	g.mode = ModeWrap
	g.brush = Blank(DefaultBG)
	g.cur = Cursor{}
	g.saved = savedCursor{}
	g.altSaved = savedCursor{}
	g.top = 0
	g.bottom = g.rows - 1
	g.title = ""
	g.lastRune = 0
	g.primary = makeLines(g.rows, g.cols)
	g.alt = makeLines(g.rows, g.cols)
	g.lines = g.primary
	g.scrollback = nil
	g.resetTabStops()
	g.dirty = true
}

func (g *Grid) dispatchOSC() {
	s := string(g.parser.osc)
	code, rest, ok := strings.Cut(s, ";")
	if !ok {
		return
	}
	switch code {
	case "0", "2":
		g.title = rest
		g.dirty = true
	}
}

func (g *Grid) selectGraphicRendition() {
	params := g.parser.params
	if len(params) == 0 {
		params = []int{0}
	}
	for i := 0; i < len(params); i++ {
		switch n := params[i]; {
		case n == 0:
			g.brush = Blank(DefaultBG)
		case n == 1:
			g.brush.Attr |= AttrBold
		case n == 2:
			g.brush.Attr |= AttrFaint
		case n == 3:
			g.brush.Attr |= AttrItalic
		case n == 4:
			g.brush.Attr |= AttrUnderline
		case n == 5 || n == 6:
			g.brush.Attr |= AttrBlink
		case n == 7:
			g.brush.Attr |= AttrReverse
		case n == 9:
			g.brush.Attr |= AttrStrike
		case n == 21 || n == 22:
			g.brush.Attr &^= AttrBold | AttrFaint
		case n == 23:
			g.brush.Attr &^= AttrItalic
		case n == 24:
			g.brush.Attr &^= AttrUnderline
		case n == 25:
			g.brush.Attr &^= AttrBlink
		case n == 27:
			g.brush.Attr &^= AttrReverse
		case n == 29:
			g.brush.Attr &^= AttrStrike
		case n >= 30 && n <= 37:
			g.brush.FG = Color(n - 30)
		case n == 38:
			if c, skip, ok := extendedColor(params[i+1:]); ok {
				g.brush.FG = c
				i += skip
			} else {
				i = len(params)
			}
		case n == 39:
			g.brush.FG = DefaultFG
		case n >= 40 && n <= 47:
			g.brush.BG = Color(n - 40)
		case n == 48:
			if c, skip, ok := extendedColor(params[i+1:]); ok {
				g.brush.BG = c
				i += skip
			} else {
				i = len(params)
			}
		case n == 49:
			g.brush.BG = DefaultBG
		case n >= 90 && n <= 97:
			g.brush.FG = Color(n - 90 + 8)
		case n >= 100 && n <= 107:
			g.brush.BG = Color(n - 100 + 8)
		}
	}
}

// extendedColor decodes the tail of a 38/48 SGR: "5;idx" or "2;r;g;b".
// skip is the number of parameters consumed.
func extendedColor(params []int) (c Color, skip int, ok bool) {
	if len(params) == 0 {
		return 0, 0, false
	}
	switch params[0] {
	case 5:
		if len(params) < 2 {
			return 0, 0, false
		}
		return Color(params[1] & 0xff), 2, true
	case 2:
		if len(params) < 4 {
			return 0, 0, false
		}
		clamp := func(v int) uint8 { return uint8(min(max(v, 0), 255)) }
		return RGB(clamp(params[1]), clamp(params[2]), clamp(params[3])), 4, true
	}
	return 0, 0, false
}
