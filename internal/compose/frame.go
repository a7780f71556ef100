// Package compose flattens the pane stack into a single cell frame and
// encodes frames as styled rows for the host terminal. Layers blit bottom
// to top in z order; the renderer above diffs rows between frames.
package compose

import (
	"github.com/loomterm/loom/internal/geom"
	"github.com/loomterm/loom/internal/grid"
	"github.com/loomterm/loom/internal/selection"
)

// Source yields the cell rows a layer paints. *grid.Grid satisfies it.
type Source interface {
	Rows() int
	Cols() int
	Line(i int) []grid.Cell
}

// GridView adapts a grid with a scrollback offset to Source: row 0 becomes
// the first visible history line instead of the first live row.
type GridView struct {
	Grid   *grid.Grid
	Offset int
}

func (v GridView) Rows() int { return v.Grid.Rows() }
func (v GridView) Cols() int { return v.Grid.Cols() }

func (v GridView) Line(i int) []grid.Cell {
	top := v.Grid.TotalLines() - v.Grid.Rows() - v.Offset
	if top < 0 {
		top = 0
	}
	return v.Grid.AbsoluteLine(top + i)
}

// TopLine returns the absolute index of the first visible line, which is
// also the selection row of this view's first painted row.
func (v GridView) TopLine() int {
	top := v.Grid.TotalLines() - v.Grid.Rows() - v.Offset
	return max(top, 0)
}

// Layer is one rectangle of content in the composition.
type Layer struct {
	// Rect is the outer rect on screen; with Frame set, content is inset
	// by one cell on every side.
	Rect   geom.Rect
	Source Source
	// Frame draws a box-drawing border with the title in the top edge.
	Frame   bool
	Title   string
	Focused bool
	// Selection highlights a span of the source in reverse video.
	// SelectionTop maps source row 0 to the selection's logical row space.
	Selection    *selection.Range
	SelectionTop int
}

// ContentRect returns where the layer's source cells land on screen.
func (l Layer) ContentRect() geom.Rect {
	if l.Frame {
		return l.Rect.Inset(1)
	}
	return l.Rect
}

// Frame is a rows x cols cell buffer, one composited screen.
type Frame struct {
	rows  int
	cols  int
	cells [][]grid.Cell
	// CursorRow/CursorCol place the host cursor; CursorVisible gates it.
	CursorRow     int
	CursorCol     int
	CursorVisible bool
}

// NewFrame returns a frame filled with blank cells.
func NewFrame(rows, cols int) *Frame {
	f := &Frame{rows: max(rows, 1), cols: max(cols, 1)}
	f.cells = make([][]grid.Cell, f.rows)
	for i := range f.cells {
		f.cells[i] = make([]grid.Cell, f.cols)
		for j := range f.cells[i] {
			f.cells[i][j] = grid.Blank(grid.DefaultBG)
		}
	}
	return f
}

// Rows returns the frame height.
func (f *Frame) Rows() int { return f.rows }

// Cols returns the frame width.
func (f *Frame) Cols() int { return f.cols }

// Cell returns the cell at (row, col), or a blank outside bounds.
func (f *Frame) Cell(row, col int) grid.Cell {
	if row < 0 || row >= f.rows || col < 0 || col >= f.cols {
		return grid.Blank(grid.DefaultBG)
	}
	return f.cells[row][col]
}

func (f *Frame) bounds() geom.Rect { return geom.NewRect(0, 0, f.cols, f.rows) }

// set writes a cell, degrading wide pairs it tears apart.
func (f *Frame) set(row, col int, c grid.Cell) {
	if row < 0 || row >= f.rows || col < 0 || col >= f.cols {
		return
	}
	line := f.cells[row]
	// Repair the neighbor halves of any pair being overwritten.
	if old := line[col]; old.Width == 2 && col+1 < f.cols && line[col+1].Width == 0 {
		line[col+1] = grid.Blank(line[col+1].BG)
	} else if old.Width == 0 && col > 0 && line[col-1].Width == 2 {
		line[col-1] = grid.Blank(line[col-1].BG)
	}
	line[col] = c
}

// Compose paints the layers bottom to top into a fresh frame of the given
// size. Out-of-bounds content is clipped; wide-rune pairs cut by a clip or
// layer edge degrade to blanks.
func Compose(rows, cols int, layers []Layer) *Frame {
	f := NewFrame(rows, cols)
	for _, l := range layers {
		if l.Frame {
			f.drawBorder(l)
		}
		f.blit(l)
	}
	return f
}

func (f *Frame) blit(l Layer) {
	if l.Source == nil {
		return
	}
	content := l.ContentRect()
	clip := content.Clamp(f.bounds())
	if clip.Empty() {
		return
	}
	for y := clip.Y; y < clip.Bottom(); y++ {
		srcRow := y - content.Y
		if srcRow >= l.Source.Rows() {
			break
		}
		line := l.Source.Line(srcRow)
		for x := clip.X; x < clip.Right(); x++ {
			srcCol := x - content.X
			if line == nil || srcCol >= len(line) || srcCol >= content.Width {
				f.set(y, x, grid.Blank(grid.DefaultBG))
				continue
			}
			c := line[srcCol]
			switch c.Width {
			case 2:
				// A lead whose continuation falls outside the clip
				// cannot be painted whole.
				if x+1 >= clip.Right() || srcCol+1 >= content.Width {
					c = grid.Blank(c.BG)
				}
			case 0:
				// A continuation whose lead was clipped away.
				if x == clip.X || srcCol == 0 {
					c = grid.Blank(c.BG)
				}
			}
			if l.Selection != nil {
				pos := selection.Position{Row: l.SelectionTop + srcRow, Col: srcCol}
				if l.Selection.Contains(pos) {
					c.Attr ^= grid.AttrReverse
				}
			}
			f.set(y, x, c)
		}
	}
}

const (
	borderFocusedFG   = grid.Color(6) // cyan
	borderUnfocusedFG = grid.Color(8) // bright black
)

func (f *Frame) drawBorder(l Layer) {
	r := l.Rect.Clamp(f.bounds())
	if r.Width < 2 || r.Height < 2 {
		return
	}
	fg := borderUnfocusedFG
	if l.Focused {
		fg = borderFocusedFG
	}
	cell := func(ru rune) grid.Cell {
		return grid.Cell{Rune: ru, Width: 1, FG: fg, BG: grid.DefaultBG}
	}

	for x := r.X + 1; x < r.Right()-1; x++ {
		f.set(r.Y, x, cell('─'))
		f.set(r.Bottom()-1, x, cell('─'))
	}
	for y := r.Y + 1; y < r.Bottom()-1; y++ {
		f.set(y, r.X, cell('│'))
		f.set(y, r.Right()-1, cell('│'))
	}
	f.set(r.Y, r.X, cell('┌'))
	f.set(r.Y, r.Right()-1, cell('┐'))
	f.set(r.Bottom()-1, r.X, cell('└'))
	f.set(r.Bottom()-1, r.Right()-1, cell('┘'))

	if l.Title != "" && r.Width > 6 {
		title := []rune(" " + l.Title + " ")
		maxw := r.Width - 4
		if len(title) > maxw {
			title = append(title[:maxw-1], '…')
		}
		for i, ru := range title {
			f.set(r.Y, r.X+2+i, cell(ru))
		}
	}
}
