package geom

import (
	"math"
	"testing"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestRectContains(t *testing.T) {
	r := Rect{X: 10, Y: 20, W: 100, H: 50}

	tests := []struct {
		name string
		p    Point
		want bool
	}{
		{"inside", Pt(50, 40), true},
		{"top-left corner", Pt(10, 20), true},
		{"bottom-right corner", Pt(110, 70), true},
		{"on right edge", Pt(110, 45), true},
		{"left of rect", Pt(9.99, 40), false},
		{"below rect", Pt(50, 70.01), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Contains(tt.p); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestBoundaryPoint(t *testing.T) {
	r := Rect{X: 0, Y: 0, W: 100, H: 40}
	c := r.Center()

	tests := []struct {
		name   string
		target Point
		want   Point
	}{
		{"right", Pt(500, 20), Pt(100, 20)},
		{"left", Pt(-500, 20), Pt(0, 20)},
		{"below", Pt(50, 300), Pt(50, 40)},
		{"above", Pt(50, -300), Pt(50, 0)},
		{"diagonal hits top edge first", Pt(100, -80), Pt(60, 0)},
		{"degenerate", c, c},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BoundaryPoint(r, c, tt.target)
			if !approx(got.X, tt.want.X) || !approx(got.Y, tt.want.Y) {
				t.Errorf("BoundaryPoint(%v) = %v, want %v", tt.target, got, tt.want)
			}
		})
	}
}

func TestBoundaryPointOnEdge(t *testing.T) {
	r := Rect{X: 30, Y: 40, W: 87, H: 31}
	c := r.Center()
	for _, target := range []Point{Pt(0, 0), Pt(300, 41), Pt(-2, 500), Pt(73.5, -1000)} {
		p := BoundaryPoint(r, c, target)
		onX := approx(p.X, r.X) || approx(p.X, r.Right())
		onY := approx(p.Y, r.Y) || approx(p.Y, r.Bottom())
		if !onX && !onY {
			t.Errorf("BoundaryPoint toward %v = %v, not on an edge of %v", target, p, r)
		}
		if !r.Contains(Pt(math.Round(p.X*1e6)/1e6, math.Round(p.Y*1e6)/1e6)) {
			t.Errorf("BoundaryPoint toward %v = %v lies outside %v", target, p, r)
		}
	}
}

func TestPointSegmentDistance(t *testing.T) {
	a, b := Pt(0, 0), Pt(10, 0)

	tests := []struct {
		name string
		p    Point
		want float64
	}{
		{"above middle", Pt(5, 3), 3},
		{"on segment", Pt(7, 0), 0},
		{"before start clamps", Pt(-3, 4), 5},
		{"past end clamps", Pt(13, 4), 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PointSegmentDistance(tt.p, a, b); !approx(got, tt.want) {
				t.Errorf("PointSegmentDistance(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}

	if got := PointSegmentDistance(Pt(3, 4), Pt(0, 0), Pt(0, 0)); !approx(got, 5) {
		t.Errorf("zero-length segment distance = %v, want 5", got)
	}
}

func TestArrowHead(t *testing.T) {
	head := ArrowHead(Pt(0, 0), Pt(100, 0), 15)
	if head[0] != Pt(100, 0) {
		t.Errorf("tip = %v, want (100, 0)", head[0])
	}
	for i, barb := range head[1:] {
		if !approx(barb.Dist(head[0]), 15) {
			t.Errorf("barb %d length = %v, want 15", i, barb.Dist(head[0]))
		}
		if barb.X >= 100 {
			t.Errorf("barb %d = %v should trail the tip", i, barb)
		}
	}
	if !approx(head[1].Y, -head[2].Y) {
		t.Errorf("barbs not symmetric: %v %v", head[1], head[2])
	}
}

func TestRectUnion(t *testing.T) {
	got := Rect{}.Union(Rect{X: 5, Y: 5, W: 10, H: 10}).Union(Rect{X: -5, Y: 8, W: 2, H: 20})
	want := Rect{X: -5, Y: 5, W: 20, H: 23}
	if got != want {
		t.Errorf("Union = %v, want %v", got, want)
	}
}
