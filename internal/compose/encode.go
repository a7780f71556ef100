package compose

import (
	"fmt"
	"strings"

	"github.com/muesli/termenv"

	"github.com/loomterm/loom/internal/grid"
)

// Render encodes a frame as one line per row, each a minimal sequence of
// SGR runs: the style is re-emitted only when it changes between cells.
// Colors are downsampled to the given profile. The visible cursor is drawn
// in reverse video before encoding. The bubbletea renderer diffs the
// returned rows against the previous frame, so an unchanged frame costs
// nothing on the wire.
func Render(f *Frame, p termenv.Profile) string {
	var sb strings.Builder
	sb.Grow(f.rows * f.cols * 2)
	for row := 0; row < f.rows; row++ {
		if row > 0 {
			sb.WriteByte('\n')
		}
		renderRow(&sb, f, row, p)
	}
	return sb.String()
}

func renderRow(sb *strings.Builder, f *Frame, row int, p termenv.Profile) {
	var cur grid.Cell
	styled := false
	for col := 0; col < f.cols; col++ {
		c := f.cells[row][col]
		if f.CursorVisible && row == f.CursorRow && col == f.CursorCol {
			c.Attr ^= grid.AttrReverse
		}
		if c.Width == 0 {
			// Continuation cells are covered by their lead rune.
			continue
		}
		if !styled || c.FG != cur.FG || c.BG != cur.BG || c.Attr != cur.Attr {
			sb.WriteString("\x1b[0")
			writeSGR(sb, c, p)
			sb.WriteByte('m')
			cur = c
			styled = true
		}
		if c.Rune == 0 {
			sb.WriteByte(' ')
		} else {
			sb.WriteRune(c.Rune)
		}
	}
	if styled {
		sb.WriteString("\x1b[0m")
	}
}

func writeSGR(sb *strings.Builder, c grid.Cell, p termenv.Profile) {
	if c.Attr&grid.AttrBold != 0 {
		sb.WriteString(";1")
	}
	if c.Attr&grid.AttrFaint != 0 {
		sb.WriteString(";2")
	}
	if c.Attr&grid.AttrItalic != 0 {
		sb.WriteString(";3")
	}
	if c.Attr&grid.AttrUnderline != 0 {
		sb.WriteString(";4")
	}
	if c.Attr&grid.AttrBlink != 0 {
		sb.WriteString(";5")
	}
	if c.Attr&grid.AttrReverse != 0 {
		sb.WriteString(";7")
	}
	if c.Attr&grid.AttrStrike != 0 {
		sb.WriteString(";9")
	}
	if seq := colorSeq(c.FG, false, p); seq != "" {
		sb.WriteByte(';')
		sb.WriteString(seq)
	}
	if seq := colorSeq(c.BG, true, p); seq != "" {
		sb.WriteByte(';')
		sb.WriteString(seq)
	}
}

// colorSeq converts a grid color to SGR parameters for the profile.
// Defaults encode as nothing: the leading reset already selected them.
func colorSeq(c grid.Color, bg bool, p termenv.Profile) string {
	if c == grid.DefaultFG || c == grid.DefaultBG || p == termenv.Ascii {
		return ""
	}
	var tc termenv.Color
	switch {
	case c.IsRGB():
		r, g, b := c.Channels()
		tc = termenv.RGBColor(fmt.Sprintf("#%02x%02x%02x", r, g, b))
	case c < 16:
		tc = termenv.ANSIColor(c)
	default:
		tc = termenv.ANSI256Color(c)
	}
	converted := p.Convert(tc)
	if converted == nil {
		return ""
	}
	return converted.Sequence(bg)
}
