package compose

import (
	"strings"
	"testing"

	"github.com/muesli/termenv"

	"github.com/loomterm/loom/internal/geom"
	"github.com/loomterm/loom/internal/grid"
	"github.com/loomterm/loom/internal/selection"
)

func gridWith(t *testing.T, rows, cols int, text string) *grid.Grid {
	t.Helper()
	g := grid.New(rows, cols)
	g.WriteString(text)
	return g
}

func frameText(f *Frame, row int) string {
	var sb strings.Builder
	for col := 0; col < f.Cols(); col++ {
		c := f.Cell(row, col)
		if c.Width == 0 {
			continue
		}
		sb.WriteRune(c.Rune)
	}
	return strings.TrimRight(sb.String(), " ")
}

func TestComposeSingleLayer(t *testing.T) {
	g := gridWith(t, 2, 10, "hello")
	f := Compose(4, 20, []Layer{{
		Rect:   geom.NewRect(3, 1, 10, 2),
		Source: g,
	}})

	if got := frameText(f, 0); got != "" {
		t.Errorf("row 0 = %q, want empty", got)
	}
	if got := frameText(f, 1); got != "   hello" {
		t.Errorf("row 1 = %q", got)
	}
}

func TestComposeZOrderOverlap(t *testing.T) {
	bottom := gridWith(t, 3, 10, "bbbbbbbbbb\r\nbbbbbbbbbb\r\nbbbbbbbbbb")
	top := gridWith(t, 2, 6, "tttttt\r\ntttttt")

	f := Compose(5, 15, []Layer{
		{Rect: geom.NewRect(0, 0, 10, 3), Source: bottom},
		{Rect: geom.NewRect(4, 1, 6, 2), Source: top},
	})

	if got := frameText(f, 0); got != "bbbbbbbbbb" {
		t.Errorf("row 0 = %q", got)
	}
	if got := frameText(f, 1); got != "bbbbtttttt" {
		t.Errorf("row 1 = %q, top layer should win the overlap", got)
	}
	if got := frameText(f, 2); got != "bbbbtttttt" {
		t.Errorf("row 2 = %q", got)
	}
}

func TestComposeClipsToScreen(t *testing.T) {
	g := gridWith(t, 2, 10, "0123456789\r\n0123456789")
	f := Compose(3, 6, []Layer{{
		Rect:   geom.NewRect(3, 1, 10, 2),
		Source: g,
	}})

	if got := frameText(f, 1); got != "   012" {
		t.Errorf("clipped row = %q", got)
	}
	// Rows beyond the screen are simply absent; no panic is the real assert.
	if got := frameText(f, 2); got != "   012" {
		t.Errorf("row 2 = %q", got)
	}
}

func TestComposeWideRuneCutAtLayerEdge(t *testing.T) {
	g := gridWith(t, 1, 6, "ab日")
	// Clip so the wide rune's continuation column is outside the screen.
	f := Compose(1, 3, []Layer{{
		Rect:   geom.NewRect(0, 0, 6, 1),
		Source: g,
	}})

	c := f.Cell(0, 2)
	if c.Width != 1 || c.Rune != ' ' {
		t.Errorf("cut wide lead = %+v, want blank", c)
	}
}

func TestComposeWideRunePairSplitByOverlay(t *testing.T) {
	base := gridWith(t, 1, 6, "日本")
	over := gridWith(t, 1, 2, "XX")

	// Overlay starts on the continuation column of 日.
	f := Compose(1, 8, []Layer{
		{Rect: geom.NewRect(0, 0, 6, 1), Source: base},
		{Rect: geom.NewRect(1, 0, 2, 1), Source: over},
	})

	if c := f.Cell(0, 0); c.Rune != ' ' {
		t.Errorf("orphaned lead = %+v, want blank", c)
	}
	if c := f.Cell(0, 1); c.Rune != 'X' {
		t.Errorf("cell 1 = %+v", c)
	}
	if c := f.Cell(0, 2); c.Rune != 'X' {
		t.Errorf("cell 2 = %+v", c)
	}
}

func TestComposeBorderAndTitle(t *testing.T) {
	g := gridWith(t, 2, 8, "inner")
	f := Compose(6, 20, []Layer{{
		Rect:    geom.NewRect(2, 1, 10, 4),
		Source:  g,
		Frame:   true,
		Title:   "sh",
		Focused: true,
	}})

	if c := f.Cell(1, 2); c.Rune != '┌' {
		t.Errorf("corner = %q", c.Rune)
	}
	if c := f.Cell(4, 11); c.Rune != '┘' {
		t.Errorf("bottom corner = %q", c.Rune)
	}
	row1 := frameText(f, 1)
	if !strings.Contains(row1, " sh ") {
		t.Errorf("title row = %q", row1)
	}
	// Content is inset by the border.
	if got := frameText(f, 2); got != "  │inner   │" {
		t.Errorf("content row = %q", got)
	}
	if c := f.Cell(1, 2); c.FG != borderFocusedFG {
		t.Errorf("focused border color = %v", c.FG)
	}
}

func TestComposeSelectionHighlight(t *testing.T) {
	g := gridWith(t, 1, 10, "abcdef")
	sel := selection.Range{
		Start: selection.Position{Row: 0, Col: 1},
		End:   selection.Position{Row: 0, Col: 3},
	}
	f := Compose(1, 10, []Layer{{
		Rect:      geom.NewRect(0, 0, 10, 1),
		Source:    g,
		Selection: &sel,
	}})

	if f.Cell(0, 0).Attr&grid.AttrReverse != 0 {
		t.Error("cell before selection must not be highlighted")
	}
	for col := 1; col <= 3; col++ {
		if f.Cell(0, col).Attr&grid.AttrReverse == 0 {
			t.Errorf("cell %d should be reversed", col)
		}
	}
	if f.Cell(0, 4).Attr&grid.AttrReverse != 0 {
		t.Error("cell after selection must not be highlighted")
	}
}

func TestGridViewScrollback(t *testing.T) {
	g := gridWith(t, 2, 10, "one\r\ntwo\r\nthree\r\nfour")

	live := GridView{Grid: g}
	if got := string(live.Line(0)[0].Rune); got != "t" {
		t.Errorf("live top line starts with %q", got)
	}

	back := GridView{Grid: g, Offset: 2}
	var sb strings.Builder
	for _, c := range back.Line(0) {
		if c.Width != 0 {
			sb.WriteRune(c.Rune)
		}
	}
	if got := strings.TrimRight(sb.String(), " "); got != "one" {
		t.Errorf("scrolled-back top line = %q", got)
	}
	if back.TopLine() != 0 {
		t.Errorf("TopLine = %d", back.TopLine())
	}
}

func TestRenderStableAndMinimal(t *testing.T) {
	g := gridWith(t, 2, 10, "\x1b[31mred\x1b[0m plain")
	f := Compose(2, 10, []Layer{{Rect: geom.NewRect(0, 0, 10, 2), Source: g}})

	a := Render(f, termenv.TrueColor)
	b := Render(f, termenv.TrueColor)
	if a != b {
		t.Fatal("Render must be deterministic for the same frame")
	}
	if !strings.Contains(a, "red") {
		t.Errorf("rendered output missing text: %q", a)
	}
	// One styled run: the style must not be re-emitted per cell.
	if n := strings.Count(a, "31"); n > 2 {
		t.Errorf("red emitted %d times, want one run", n)
	}
}

func TestRenderSoftwareCursor(t *testing.T) {
	g := gridWith(t, 1, 5, "ab")
	f := Compose(1, 5, []Layer{{Rect: geom.NewRect(0, 0, 5, 1), Source: g}})
	f.CursorVisible = true
	f.CursorRow = 0
	f.CursorCol = 1

	out := Render(f, termenv.ANSI)
	if !strings.Contains(out, "\x1b[0;7m") {
		t.Errorf("cursor cell should render reversed: %q", out)
	}

	f.CursorVisible = false
	if out := Render(f, termenv.ANSI); strings.Contains(out, ";7m") {
		t.Errorf("hidden cursor must not reverse anything: %q", out)
	}
}

func TestRenderAsciiProfileDropsColor(t *testing.T) {
	g := gridWith(t, 1, 8, "\x1b[38;2;1;2;3mx")
	f := Compose(1, 8, []Layer{{Rect: geom.NewRect(0, 0, 8, 1), Source: g}})

	out := Render(f, termenv.Ascii)
	if strings.Contains(out, "38;2") {
		t.Errorf("ascii profile must not emit truecolor: %q", out)
	}
}
