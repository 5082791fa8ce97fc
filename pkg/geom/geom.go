package geom

import "math"

// Point is a location in document space.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Scale(f float64) Point { return Point{p.X * f, p.Y * f} }
func (p Point) Dist(q Point) float64 { return math.Hypot(p.X-q.X, p.Y-q.Y) }
func (p Point) Div(f float64) Point { return Point{p.X / f, p.Y / f} }
func (p Point) Angle(to Point) float64 { return math.Atan2(to.Y-p.Y, to.X-p.X) }

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	X, Y, W, H float64
}

// Center returns the midpoint of r.
func (r Rect) Center() Point { return Point{r.X + r.W/2, r.Y + r.H/2} }

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Contains reports whether p lies inside r. Points on an edge count as inside.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Scale multiplies every component of r by f, mapping a document-space
// rectangle to screen space at zoom f.
func (r Rect) Scale(f float64) Rect {
	return Rect{r.X * f, r.Y * f, r.W * f, r.H * f}
}

// Union returns the smallest rectangle covering r and o. A zero-sized r is
// treated as empty.
func (r Rect) Union(o Rect) Rect {
	if r.W == 0 && r.H == 0 {
		return o
	}
	x0, y0 := math.Min(r.X, o.X), math.Min(r.Y, o.Y)
	x1, y1 := math.Max(r.Right(), o.Right()), math.Max(r.Bottom(), o.Bottom())
	return Rect{x0, y0, x1 - x0, y1 - y0}
}

// BoundaryPoint returns where a ray from center toward target leaves r.
//
// The scale needed to reach the half-width along x and the half-height along
// y are computed independently and the smaller one wins, so the result lies
// exactly on whichever edge the ray meets first. When target equals center
// the center is returned unchanged.
func BoundaryPoint(r Rect, center, target Point) Point {
	dx, dy := target.X-center.X, target.Y-center.Y
	if dx == 0 && dy == 0 {
		return center
	}
	hw, hh := r.W/2, r.H/2
	sx, sy := math.Inf(1), math.Inf(1)
	if dx != 0 {
		sx = hw / math.Abs(dx)
	}
	if dy != 0 {
		sy = hh / math.Abs(dy)
	}
	s := math.Min(sx, sy)
	return Point{center.X + dx*s, center.Y + dy*s}
}

// PointSegmentDistance returns the Euclidean distance from p to the closest
// point of segment ab. A zero-length segment degenerates to the distance to a.
func PointSegmentDistance(p, a, b Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	if dx == 0 && dy == 0 {
		return p.Dist(a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / (dx*dx + dy*dy)
	t = math.Max(0, math.Min(1, t))
	return p.Dist(Point{a.X + t*dx, a.Y + t*dy})
}

// DefaultArrowHeadSize is the barb length used by the scene painter.
const DefaultArrowHeadSize = 15.0

// ArrowHead returns the triangle drawn at the end of segment start→end: the
// tip followed by the two barbs, each size units back along the segment at
// ±30 degrees.
func ArrowHead(start, end Point, size float64) [3]Point {
	angle := start.Angle(end)
	const spread = math.Pi / 6
	return [3]Point{
		end,
		{end.X - size*math.Cos(angle-spread), end.Y - size*math.Sin(angle-spread)},
		{end.X - size*math.Cos(angle+spread), end.Y - size*math.Sin(angle+spread)},
	}
}
