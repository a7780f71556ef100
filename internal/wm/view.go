package wm

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/loomterm/loom/internal/compose"
	"github.com/loomterm/loom/internal/geom"
	"github.com/loomterm/loom/internal/grid"
	"github.com/loomterm/loom/internal/pane"
)

var (
	barStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("250"))
	barModeStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("31")).
			Foreground(lipgloss.Color("231")).
			Bold(true)
)

// View composes every surface into one frame and appends the status bar.
func (m *Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	area := m.area()
	focusedID, _ := m.focus.Focused()

	var layers []compose.Layer
	for _, id := range m.engine.IDs() {
		if m.engine.IsFloating(id) {
			continue
		}
		if l, ok := m.paneLayer(id, focusedID); ok {
			layers = append(layers, l)
		}
	}
	for _, id := range m.zorder.BottomToTop() {
		if !m.engine.IsFloating(id) {
			continue
		}
		if l, ok := m.paneLayer(id, focusedID); ok {
			layers = append(layers, l)
		}
	}

	if m.debugVisible {
		l := compose.Layer{
			Rect:   debugRect(area),
			Source: m.debug,
			Frame:  true,
			Title:  "debug",
		}
		if m.selPane == 0 && m.selSurface != nil {
			if r, ok := m.sel.Selection(); ok {
				l.Selection = &r
				l.SelectionTop = m.debug.TopLine()
			}
		}
		layers = append(layers, l)
	}

	if m.helpOpen {
		layers = append(layers, compose.Layer{
			Rect:   overlayRect(area),
			Source: m.help,
			Frame:  true,
			Title:  "help",
		})
	}

	if m.menuOpen {
		layers = append(layers, m.menuLayer(area))
	}

	f := compose.Compose(area.Height, area.Width, layers)
	m.placeCursor(f, focusedID)

	out := compose.Render(f, m.profile)
	if m.barVisible {
		out += "\n" + m.statusBar()
	}
	return out
}

// paneLayer builds one pane's framed layer, with its active selection.
func (m *Model) paneLayer(id pane.ID, focusedID pane.ID) (compose.Layer, bool) {
	r, ok := m.engine.Rect(id)
	if !ok {
		return compose.Layer{}, false
	}
	p, ok := m.sess.Get(id)
	if !ok {
		return compose.Layer{}, false
	}
	src := compose.GridView{Grid: p.Grid(), Offset: m.scroll[id]}
	l := compose.Layer{
		Rect:    r,
		Source:  src,
		Frame:   true,
		Title:   paneTitle(p, m.scroll[id]),
		Focused: id == focusedID,
	}
	if m.selPane == id {
		if sr, ok := m.sel.Selection(); ok {
			l.Selection = &sr
			l.SelectionTop = src.TopLine()
		}
	}
	return l, true
}

func paneTitle(p *pane.Pane, offset int) string {
	if offset > 0 {
		return fmt.Sprintf("%s [-%d]", p.Title(), offset)
	}
	return p.Title()
}

// placeCursor shows the focused pane's cursor unless an overlay is up
// or the pane is scrolled back.
func (m *Model) placeCursor(f *compose.Frame, focusedID pane.ID) {
	if m.menuOpen || m.helpOpen || focusedID == 0 {
		return
	}
	p, ok := m.sess.Get(focusedID)
	if !ok || m.scroll[focusedID] > 0 {
		return
	}
	g := p.Grid()
	if !g.CursorVisible() {
		return
	}
	r, ok := m.engine.Rect(focusedID)
	if !ok {
		return
	}
	content := r.Inset(1)
	cur := g.Cursor()
	row := content.Y + cur.Row
	col := content.X + cur.Col
	if !content.Contains(geom.Point{X: col, Y: row}) {
		return
	}
	f.CursorRow = row
	f.CursorCol = col
	f.CursorVisible = true
}

// menuLayer centers the manager menu over the area.
func (m *Model) menuLayer(area geom.Rect) compose.Layer {
	w := min(40, area.Width)
	h := min(len(m.entries)+2, area.Height)
	rect := geom.NewRect(area.X+(area.Width-w)/2, area.Y+(area.Height-h)/2, w, h)
	return compose.Layer{
		Rect:    rect,
		Source:  menuSource{entries: m.entries, index: m.menuIndex, cols: w - 2},
		Frame:   true,
		Title:   "manager",
		Focused: true,
	}
}

// menuSource renders the menu entries as cells, one per row.
type menuSource struct {
	entries []menuEntry
	index   int
	cols    int
}

func (s menuSource) Rows() int { return len(s.entries) }
func (s menuSource) Cols() int { return s.cols }

func (s menuSource) Line(i int) []grid.Cell {
	var attr grid.Attr
	if i == s.index {
		attr = grid.AttrReverse
	}
	h := s.entries[i].binding.Help()
	text := fmt.Sprintf(" %-10s %s", h.Key, h.Desc)
	cells := make([]grid.Cell, max(s.cols, 0))
	runes := []rune(text)
	for j := range cells {
		c := grid.Cell{Rune: ' ', Width: 1, FG: grid.DefaultFG, BG: grid.DefaultBG, Attr: attr}
		if j < len(runes) {
			c.Rune = runes[j]
		}
		cells[j] = c
	}
	return cells
}

// statusBar renders the bottom row: pane count, focused title, input
// mode, clipboard backend.
func (m *Model) statusBar() string {
	title := ""
	if p, ok := m.focusedPane(); ok {
		title = p.Title()
	}
	mode := m.router.Mode().String()
	if m.menuOpen {
		mode = "manager"
	}

	clip := m.clip.Name()
	switch {
	case !m.clipboardOn:
		clip = "clip off"
	case !m.clip.Available():
		clip += " (local)"
	}

	left := fmt.Sprintf(" loom  %d pane(s)  %s", m.sess.Count(), title)
	right := barModeStyle.Render(" "+mode+" ") + barStyle.Render(" "+clip+" ")

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		runes := []rune(left)
		cut := len(runes) + gap
		if cut < 0 {
			cut = 0
		}
		left = string(runes[:cut])
		gap = 0
	}
	return barStyle.Render(left+fmt.Sprintf("%*s", gap, "")) + right
}
