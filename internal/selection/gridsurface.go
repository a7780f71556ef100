package selection

import (
	"strings"

	"github.com/loomterm/loom/internal/geom"
	"github.com/loomterm/loom/internal/grid"
)

// GridSurface adapts a pane's grid to the Surface interface. Logical rows
// are absolute history lines (scrollback first), so a selection survives
// fresh output scrolling under it.
type GridSurface struct {
	Grid *grid.Grid
	// Rect is the pane content area on the host screen.
	Rect geom.Rect
	// Offset counts lines scrolled back from the live bottom.
	Offset int
}

// topLine returns the absolute index of the first visible line.
func (s *GridSurface) topLine() int {
	top := s.Grid.TotalLines() - s.Rect.Height - s.Offset
	return max(top, 0)
}

// SelectionViewport implements Surface.
func (s *GridSurface) SelectionViewport() geom.Rect { return s.Rect }

// PositionAt implements Surface.
func (s *GridSurface) PositionAt(p geom.Point) (Position, bool) {
	if !s.Rect.Contains(p) {
		return Position{}, false
	}
	row := s.topLine() + (p.Y - s.Rect.Y)
	if row >= s.Grid.TotalLines() {
		return Position{}, false
	}
	col := min(p.X-s.Rect.X, s.Grid.Cols()-1)
	return Position{Row: row, Col: col}, true
}

// TextForRange implements Surface. Continuation cells of wide runes are
// skipped and trailing blanks trimmed per line, so round-tripping a
// selection through the clipboard yields the text as printed.
func (s *GridSurface) TextForRange(r Range) string {
	r = r.Normalize()
	var lines []string
	for row := r.Start.Row; row <= r.End.Row; row++ {
		cells := s.Grid.AbsoluteLine(row)
		if cells == nil {
			continue
		}
		from, to := 0, len(cells)
		if row == r.Start.Row {
			from = min(r.Start.Col, len(cells))
		}
		if row == r.End.Row {
			to = min(r.End.Col+1, len(cells))
		}
		var sb strings.Builder
		for _, c := range cells[from:to] {
			if c.Width == 0 {
				continue
			}
			sb.WriteRune(c.Rune)
		}
		lines = append(lines, strings.TrimRight(sb.String(), " "))
	}
	return strings.Join(lines, "\n")
}

// ScrollSelection implements Surface. Positive delta scrolls toward newer
// content.
func (s *GridSurface) ScrollSelection(delta int) {
	s.Offset = min(max(s.Offset-delta, 0), s.Grid.ScrollbackLen())
}
