package grid

import "unicode/utf8"

// parser state machine. Ground feeds printables to the screen; escape
// introducers route to CSI/OSC collectors. Sequences may arrive split
// across Write calls, so every piece of intermediate state lives here.
type parserState struct {
	state    int
	utf8buf  [utf8.UTFMax]byte
	utf8len  int
	utf8need int
	params   []int
	param    int
	hasParam bool
	private  byte
	inter    byte
	osc      []byte
	oscEsc   bool // saw ESC inside OSC, waiting for ST terminator
}

const (
	stGround = iota
	stEsc
	stEscInter // ESC ( / ESC ) charset designators, consume one byte
	stCSI
	stOSC
	stString // DCS/SOS/PM/APC payloads, discarded up to ST
)

const (
	maxParams = 16
	maxOSC    = 512
)

func (g *Grid) parseByte(b byte) {
	p := &g.parser

	if p.state == stGround && p.utf8need > 0 {
		if b&0xC0 == 0x80 {
			p.utf8buf[p.utf8len] = b
			p.utf8len++
			p.utf8need--
			if p.utf8need == 0 {
				r, _ := utf8.DecodeRune(p.utf8buf[:p.utf8len])
				p.utf8len = 0
				g.print(r)
			}
			return
		}
		// Malformed sequence, drop the partial rune and reprocess b.
		p.utf8len = 0
		p.utf8need = 0
	}

	switch p.state {
	case stGround:
		g.parseGround(b)
	case stEsc:
		g.parseEsc(b)
	case stEscInter:
		// Charset designator payload (e.g. ESC ( B). Consumed, not honored.
		p.state = stGround
	case stCSI:
		g.parseCSI(b)
	case stOSC:
		g.parseOSC(b)
	case stString:
		switch {
		case b == 0x1b:
			p.oscEsc = true
		case p.oscEsc && b == '\\':
			p.oscEsc = false
			p.state = stGround
		case b == 0x07:
			p.state = stGround
		default:
			p.oscEsc = false
		}
	}
}

func (g *Grid) parseGround(b byte) {
	p := &g.parser
	switch {
	case b == 0x1b:
		p.state = stEsc
	case b < 0x20:
		g.control(b)
	case b == 0x7f:
		// DEL is ignored on output.
	case b < 0x80:
		g.print(rune(b))
	default:
		n := utf8SequenceLen(b)
		if n <= 1 {
			g.print(utf8.RuneError)
			return
		}
		p.utf8buf[0] = b
		p.utf8len = 1
		p.utf8need = n - 1
	}
}

func utf8SequenceLen(b byte) int {
	switch {
	case b&0xE0 == 0xC0:
		return 2
	case b&0xF0 == 0xE0:
		return 3
	case b&0xF8 == 0xF0:
		return 4
	default:
		return 0
	}
}

func (g *Grid) parseEsc(b byte) {
	p := &g.parser
	p.state = stGround
	switch b {
	case '[':
		p.state = stCSI
		p.params = p.params[:0]
		p.param = 0
		p.hasParam = false
		p.private = 0
		p.inter = 0
	case ']':
		p.state = stOSC
		p.osc = p.osc[:0]
		p.oscEsc = false
	case '(', ')', '*', '+':
		p.state = stEscInter
	case 'P', 'X', '^', '_':
		p.state = stString
		p.oscEsc = false
	case '7':
		g.saveCursor()
	case '8':
		g.restoreCursor()
	case 'D': // IND
		g.lineFeed(false)
	case 'E': // NEL
		g.lineFeed(true)
	case 'M': // RI
		g.reverseIndex()
	case 'H': // HTS
		if g.cur.Col < len(g.tabStops) {
			g.tabStops[g.cur.Col] = true
		}
	case 'c': // RIS
		g.reset()
	case '=':
		g.mode |= ModeAppKeypad
	case '>':
		g.mode &^= ModeAppKeypad
	case '\\':
		// Stray ST.
	default:
		// Unknown escape, swallowed.
	}
}

func (g *Grid) parseCSI(b byte) {
	p := &g.parser
	switch {
	case b >= '0' && b <= '9':
		p.param = p.param*10 + int(b-'0')
		p.hasParam = true
	case b == ';' || b == ':':
		// Colon-separated SGR subparameters are treated like semicolons.
		p.pushParam()
	case b == '?' || b == '>' || b == '<' || b == '=':
		p.private = b
	case b == ' ' || (b >= '!' && b <= '/'):
		p.inter = b
	case b >= 0x40 && b <= 0x7e:
		p.pushParam()
		g.dispatchCSI(b)
		p.state = stGround
	case b == 0x1b:
		p.state = stEsc
	case b < 0x20:
		// Controls execute even inside a sequence.
		g.control(b)
	default:
		p.state = stGround
	}
}

func (p *parserState) pushParam() {
	if len(p.params) >= maxParams {
		return
	}
	if p.hasParam {
		p.params = append(p.params, p.param)
	} else {
		p.params = append(p.params, 0)
	}
	p.param = 0
	p.hasParam = false
}

// arg returns parameter i, or def when absent or zero.
func (p *parserState) arg(i, def int) int {
	if i >= len(p.params) || p.params[i] == 0 {
		return def
	}
	return p.params[i]
}

func (g *Grid) parseOSC(b byte) {
	p := &g.parser
	switch {
	case b == 0x07:
		g.dispatchOSC()
		p.state = stGround
	case b == 0x1b:
		p.oscEsc = true
	case p.oscEsc && b == '\\':
		g.dispatchOSC()
		p.state = stGround
	case p.oscEsc:
		// ESC followed by something other than ST aborts the string.
		p.oscEsc = false
		p.state = stGround
		g.parseByte(0x1b)
		g.parseByte(b)
	default:
		if len(p.osc) < maxOSC {
			p.osc = append(p.osc, b)
		}
	}
}

func (g *Grid) control(b byte) {
	switch b {
	case '\n', 0x0b, 0x0c:
		g.lineFeed(false)
	case '\r':
		g.cur.Col = 0
		g.cur.WrapNext = false
	case '\b':
		if g.cur.Col > 0 {
			g.cur.Col--
		}
		g.cur.WrapNext = false
	case '\t':
		g.nextTabStop()
	case 0x07:
		// BEL: no-op, the host bell is not forwarded.
	case 0x0e, 0x0f:
		// SO/SI charset shifts, not honored.
	}
}

func (g *Grid) nextTabStop() {
	col := g.cur.Col + 1
	for col < g.cols-1 && (col >= len(g.tabStops) || !g.tabStops[col]) {
		col++
	}
	g.cur.Col = min(col, g.cols-1)
	g.cur.WrapNext = false
}
