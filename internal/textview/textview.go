// Package textview renders wrapped plain text into grid cells for the
// compositor. It backs the debug log window and the help overlay body,
// and implements the same selection surface contract as pane grids, so
// text can be selected and copied from either.
package textview

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"

	"github.com/loomterm/loom/internal/geom"
	"github.com/loomterm/loom/internal/grid"
	"github.com/loomterm/loom/internal/selection"
)

// View is a scrollable wrapped text surface. The zero value is not
// usable; call New.
type View struct {
	rect    geom.Rect
	raw     []string
	wrapped []string
	// offset counts wrapped lines scrolled up from the bottom.
	offset int
	// follow keeps the view pinned to the newest line while appending.
	follow bool

	fg, bg grid.Color
}

// New returns an empty view that follows appended text.
func New() *View {
	return &View{follow: true, fg: grid.DefaultFG, bg: grid.DefaultBG}
}

// SetColors sets the cell colors used for every rendered rune.
func (v *View) SetColors(fg, bg grid.Color) {
	v.fg = fg
	v.bg = bg
}

// SetRect places the view on screen and rewraps to the new width.
func (v *View) SetRect(r geom.Rect) {
	if r.Width == v.rect.Width && r.Height == v.rect.Height {
		v.rect = r
		return
	}
	v.rect = r
	v.rewrap()
}

// Rect returns the view's screen rectangle.
func (v *View) Rect() geom.Rect { return v.rect }

// SetText replaces the content with text split on newlines.
func (v *View) SetText(text string) {
	v.raw = strings.Split(strings.TrimRight(text, "\n"), "\n")
	v.rewrap()
}

// SetLines replaces the content with the given lines.
func (v *View) SetLines(lines []string) {
	v.raw = append(v.raw[:0], lines...)
	v.rewrap()
}

// Append adds one line to the bottom. When following, the view stays
// pinned there; otherwise the visible content holds still.
func (v *View) Append(line string) {
	v.raw = append(v.raw, line)
	keep := v.offset
	before := len(v.wrapped)
	v.rewrap()
	if !v.follow {
		v.offset = clamp(keep+len(v.wrapped)-before, 0, v.maxOffset())
	}
}

func (v *View) rewrap() {
	v.wrapped = v.wrapped[:0]
	if v.rect.Width <= 0 {
		v.offset = 0
		return
	}
	for _, line := range v.raw {
		if line == "" {
			v.wrapped = append(v.wrapped, "")
			continue
		}
		for _, w := range strings.Split(wordwrap.String(line, v.rect.Width), "\n") {
			v.wrapped = append(v.wrapped, w)
		}
	}
	v.offset = clamp(v.offset, 0, v.maxOffset())
}

// maxOffset is how far the view can scroll up from the bottom.
func (v *View) maxOffset() int {
	return max(len(v.wrapped)-v.rect.Height, 0)
}

// LineCount returns the number of wrapped lines.
func (v *View) LineCount() int { return len(v.wrapped) }

// Offset returns the current scroll offset from the bottom.
func (v *View) Offset() int { return v.offset }

// ScrollBy moves the view up (positive delta) or down. Scrolling to the
// bottom re-enables following.
func (v *View) ScrollBy(delta int) {
	v.offset = clamp(v.offset+delta, 0, v.maxOffset())
	v.follow = v.offset == 0
}

// ScrollToBottom pins the view to the newest line.
func (v *View) ScrollToBottom() {
	v.offset = 0
	v.follow = true
}

// topLine is the wrapped index of the first visible row.
func (v *View) topLine() int {
	return max(len(v.wrapped)-v.rect.Height-v.offset, 0)
}

// TopLine exposes the first visible wrapped-line index, the row-space
// origin compositor selections need.
func (v *View) TopLine() int { return v.topLine() }

// Rows implements compose.Source.
func (v *View) Rows() int { return v.rect.Height }

// Cols implements compose.Source.
func (v *View) Cols() int { return v.rect.Width }

// Line implements compose.Source: visible row i as a full-width cell row.
func (v *View) Line(i int) []grid.Cell {
	cells := make([]grid.Cell, max(v.rect.Width, 0))
	for j := range cells {
		cells[j] = grid.Cell{Rune: ' ', Width: 1, FG: v.fg, BG: v.bg}
	}
	idx := v.topLine() + i
	if idx < 0 || idx >= len(v.wrapped) {
		return cells
	}
	col := 0
	for _, r := range v.wrapped[idx] {
		w := runewidth.RuneWidth(r)
		if w == 0 || col+w > len(cells) {
			continue
		}
		cells[col] = grid.Cell{Rune: r, Width: uint8(w), FG: v.fg, BG: v.bg}
		for k := 1; k < w; k++ {
			cells[col+k] = grid.Cell{Width: 0, FG: v.fg, BG: v.bg}
		}
		col += w
	}
	return cells
}

// SelectionViewport implements selection.Surface.
func (v *View) SelectionViewport() geom.Rect { return v.rect }

// PositionAt implements selection.Surface: screen point to wrapped-line
// coordinates.
func (v *View) PositionAt(pt geom.Point) (selection.Position, bool) {
	if !v.rect.Contains(pt) {
		return selection.Position{}, false
	}
	row := v.topLine() + (pt.Y - v.rect.Y)
	if row >= len(v.wrapped) {
		return selection.Position{}, false
	}
	return selection.Position{Row: row, Col: pt.X - v.rect.X}, true
}

// TextForRange implements selection.Surface over wrapped lines.
func (v *View) TextForRange(r selection.Range) string {
	r = r.Normalize()
	var out []string
	for row := r.Start.Row; row <= r.End.Row; row++ {
		if row < 0 || row >= len(v.wrapped) {
			continue
		}
		line := v.wrapped[row]
		from, to := 0, len(line)
		if row == r.Start.Row {
			from = colToIndex(line, r.Start.Col)
		}
		if row == r.End.Row {
			to = colToIndex(line, r.End.Col+1)
		}
		if from > len(line) {
			from = len(line)
		}
		if to > len(line) {
			to = len(line)
		}
		if from > to {
			from = to
		}
		out = append(out, strings.TrimRight(line[from:to], " "))
	}
	return strings.Join(out, "\n")
}

// colToIndex maps a display column to a byte index in line.
func colToIndex(line string, col int) int {
	w := 0
	for i, r := range line {
		if w >= col {
			return i
		}
		w += runewidth.RuneWidth(r)
	}
	return len(line)
}

// ScrollSelection implements selection.Surface.
func (v *View) ScrollSelection(delta int) {
	v.ScrollBy(-delta)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
