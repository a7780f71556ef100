package grid

// Color identifies a cell color. Values below 16 are the classic ANSI
// palette, values up to 255 the extended 256-color palette, and values with
// the rgb bit set carry a packed 24-bit color. The two sentinels sit above
// the RGB range so they can never collide with a real color.
type Color uint32

const (
	rgbBit Color = 1 << 24

	// DefaultFG and DefaultBG ask the host terminal for its defaults.
	DefaultFG Color = 1<<25 + iota
	DefaultBG
)

// RGB packs a 24-bit color.
func RGB(r, g, b uint8) Color {
	return rgbBit | Color(r)<<16 | Color(g)<<8 | Color(b)
}

// IsRGB reports whether the color carries packed 24-bit channels.
func (c Color) IsRGB() bool { return c&rgbBit != 0 && c < DefaultFG }

// IsPalette reports whether the color is a 256-palette index.
func (c Color) IsPalette() bool { return c < 256 }

// Channels unpacks an RGB color. Only valid when IsRGB is true.
func (c Color) Channels() (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// Attr is a bitmask of text attributes applied to a cell.
type Attr uint16

const (
	AttrBold Attr = 1 << iota
	AttrFaint
	AttrItalic
	AttrUnderline
	AttrBlink
	AttrReverse
	AttrStrike
)

// Cell is one rendered terminal cell. A wide rune occupies a lead cell with
// Width 2 followed by a continuation cell with Width 0 and Rune 0.
type Cell struct {
	Rune  rune
	Width uint8
	FG    Color
	BG    Color
	Attr  Attr
}

// Blank returns the empty cell written by erase operations, carrying the
// given background so ED/EL honor the active SGR background.
func Blank(bg Color) Cell {
	return Cell{Rune: ' ', Width: 1, FG: DefaultFG, BG: bg}
}
