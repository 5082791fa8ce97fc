// Package geom provides the plane geometry used by the concept map editor.
//
// Everything here is a pure function of its inputs. Node rectangles,
// arrow anchors and hit tests are computed from the current node positions
// on every call, so there is no cached geometry to invalidate.
//
// # Arrow anchoring
//
// Arrows terminate on node borders, not centers. [BoundaryPoint] finds the
// exit point of a ray leaving a rectangle's center:
//
//	start := geom.BoundaryPoint(src.Rect(), src.Center(), dst.Center())
//	end := geom.BoundaryPoint(dst.Rect(), dst.Center(), src.Center())
//
// # Hit testing
//
// [Rect.Contains] treats edges as inside. Arrows are hit when
// [PointSegmentDistance] to the drawn segment is below a tolerance given in
// document units.
package geom
