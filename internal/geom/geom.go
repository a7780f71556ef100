// Package geom provides the small integer geometry shared by the layout
// engine, input router, and compositor. All coordinates are terminal cells:
// X grows rightward, Y grows downward, and sizes are in columns/rows.
package geom

// Point is a cell coordinate on the host terminal.
type Point struct {
	X int
	Y int
}

// Size is a width/height pair in cells.
type Size struct {
	Width  int
	Height int
}

// Empty reports whether the size covers no cells.
func (s Size) Empty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Rect is an axis-aligned cell rectangle. A rect with zero width or height
// is empty and contains no points.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// NewRect builds a rect from origin and size.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, Width: w, Height: h}
}

// Empty reports whether the rect covers no cells.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Right returns the exclusive right edge.
func (r Rect) Right() int { return r.X + r.Width }

// Bottom returns the exclusive bottom edge.
func (r Rect) Bottom() int { return r.Y + r.Height }

// Size returns the rect's dimensions.
func (r Rect) Size() Size { return Size{Width: r.Width, Height: r.Height} }

// Contains reports whether p falls inside the rect.
func (r Rect) Contains(p Point) bool {
	return !r.Empty() &&
		p.X >= r.X && p.X < r.Right() &&
		p.Y >= r.Y && p.Y < r.Bottom()
}

// Intersects reports whether the two rects share at least one cell.
func (r Rect) Intersects(o Rect) bool {
	if r.Empty() || o.Empty() {
		return false
	}
	return r.X < o.Right() && r.Right() > o.X &&
		r.Y < o.Bottom() && r.Bottom() > o.Y
}

// Clamp returns the portion of r that lies inside bounds. When the two do
// not overlap the zero Rect is returned.
func (r Rect) Clamp(bounds Rect) Rect {
	x0 := max(r.X, bounds.X)
	y0 := max(r.Y, bounds.Y)
	x1 := min(r.Right(), bounds.Right())
	y1 := min(r.Bottom(), bounds.Bottom())
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Inset shrinks the rect by n cells on every side. Shrinking past the
// center yields the zero Rect.
func (r Rect) Inset(n int) Rect {
	if r.Width <= 2*n || r.Height <= 2*n {
		return Rect{}
	}
	return Rect{X: r.X + n, Y: r.Y + n, Width: r.Width - 2*n, Height: r.Height - 2*n}
}

// MoveInside translates r as needed so it fits within bounds, preserving
// its size where possible. A rect larger than bounds is anchored at the
// bounds origin and clipped.
func (r Rect) MoveInside(bounds Rect) Rect {
	if r.Width > bounds.Width {
		r.X = bounds.X
		r.Width = bounds.Width
	} else if r.X < bounds.X {
		r.X = bounds.X
	} else if r.Right() > bounds.Right() {
		r.X = bounds.Right() - r.Width
	}
	if r.Height > bounds.Height {
		r.Y = bounds.Y
		r.Height = bounds.Height
	} else if r.Y < bounds.Y {
		r.Y = bounds.Y
	} else if r.Bottom() > bounds.Bottom() {
		r.Y = bounds.Bottom() - r.Height
	}
	return r
}
