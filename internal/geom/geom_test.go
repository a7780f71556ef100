package geom

import "testing"

func TestRectClamp(t *testing.T) {
	bounds := NewRect(0, 0, 10, 10)

	tests := []struct {
		name string
		in   Rect
		want Rect
	}{
		{"fully inside", NewRect(2, 2, 4, 4), NewRect(2, 2, 4, 4)},
		{"overhangs right", NewRect(8, 1, 5, 3), NewRect(8, 1, 2, 3)},
		{"overhangs top-left", NewRect(-2, -2, 5, 5), NewRect(0, 0, 3, 3)},
		{"disjoint", NewRect(50, 50, 1, 1), Rect{}},
		{"empty input", NewRect(3, 3, 0, 4), Rect{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Clamp(bounds); got != tt.want {
				t.Errorf("Clamp(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRectIntersects(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want bool
	}{
		{"overlap", NewRect(0, 0, 5, 5), NewRect(3, 3, 5, 5), true},
		{"edge touch is disjoint", NewRect(0, 0, 5, 5), NewRect(5, 0, 5, 5), false},
		{"contained", NewRect(0, 0, 10, 10), NewRect(2, 2, 2, 2), true},
		{"zero width never intersects", NewRect(0, 0, 0, 5), NewRect(0, 0, 5, 5), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Intersects(tt.b); got != tt.want {
				t.Errorf("Intersects(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			if got := tt.b.Intersects(tt.a); got != tt.want {
				t.Errorf("Intersects not symmetric for %v, %v", tt.a, tt.b)
			}
		})
	}
}

func TestRectContains(t *testing.T) {
	r := NewRect(2, 3, 4, 2)
	if !r.Contains(Point{X: 2, Y: 3}) {
		t.Error("origin should be inside")
	}
	if r.Contains(Point{X: 6, Y: 3}) {
		t.Error("right edge is exclusive")
	}
	if r.Contains(Point{X: 2, Y: 5}) {
		t.Error("bottom edge is exclusive")
	}
}

func TestRectMoveInside(t *testing.T) {
	bounds := NewRect(0, 0, 20, 10)

	tests := []struct {
		name string
		in   Rect
		want Rect
	}{
		{"already inside", NewRect(5, 5, 4, 3), NewRect(5, 5, 4, 3)},
		{"pushed off right", NewRect(18, 2, 6, 3), NewRect(14, 2, 6, 3)},
		{"pushed off bottom-left", NewRect(-3, 9, 4, 4), NewRect(0, 6, 4, 4)},
		{"wider than bounds", NewRect(5, 2, 30, 3), NewRect(0, 2, 20, 3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.MoveInside(bounds); got != tt.want {
				t.Errorf("MoveInside(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRectInset(t *testing.T) {
	r := NewRect(0, 0, 10, 6)
	if got := r.Inset(1); got != NewRect(1, 1, 8, 4) {
		t.Errorf("Inset(1) = %v", got)
	}
	if got := r.Inset(3); !got.Empty() {
		t.Errorf("Inset past center should be empty, got %v", got)
	}
}
