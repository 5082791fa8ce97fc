package render

import (
	"image/color"

	"github.com/matzehuels/conceptmap/pkg/cmap"
	"github.com/matzehuels/conceptmap/pkg/geom"
)

// Painter is a drawing surface. Coordinates are surface units; [Scene]
// applies the zoom before calling it.
type Painter interface {
	// Clear fills the whole surface.
	Clear(c color.RGBA)
	// FillRect fills r with corners rounded by radius (0 for square).
	FillRect(r geom.Rect, radius float64, fill color.RGBA)
	// StrokeRect outlines r with corners rounded by radius.
	StrokeRect(r geom.Rect, radius float64, stroke color.RGBA, width float64)
	// Line strokes the segment a-b.
	Line(a, b geom.Point, stroke color.RGBA, width float64)
	// Polygon fills the closed polygon pts.
	Polygon(pts []geom.Point, fill color.RGBA)
	// Text draws s centered in r.
	Text(r geom.Rect, s string, c color.RGBA, size float64)
}

// Scene paints doc onto p at the given zoom: background, every arrow (line
// and head) in insertion order, then every node in z-order.
func Scene(doc *cmap.Document, p Painter, style Style, zoom float64) {
	p.Clear(style.Background)

	for _, a := range doc.Arrows() {
		start, end, ok := doc.Endpoints(a)
		if !ok {
			continue
		}
		paintArrow(p, style, start.Scale(zoom), end.Scale(zoom), a.Selected(), zoom)
	}

	for _, n := range doc.Nodes() {
		paintNode(p, style, n, zoom)
	}
}

func paintArrow(p Painter, s Style, start, end geom.Point, selected bool, zoom float64) {
	c, w := s.pen(selected)
	p.Line(start, end, c, w*zoom)
	head := geom.ArrowHead(start, end, s.ArrowHead*zoom)
	p.Polygon(head[:], c)
}

func paintNode(p Painter, s Style, n *cmap.Node, zoom float64) {
	r := n.Rect().Scale(zoom)
	fontSize := s.FontSize * zoom

	if n.IsText() {
		p.FillRect(r, 0, s.fill(n))
		c, _ := s.pen(n.Selected())
		p.Text(r, n.Text(), c, fontSize)
		return
	}

	c, w := s.pen(n.Selected())
	radius := s.CornerRadius * zoom
	p.FillRect(r, radius, s.fill(n))
	p.StrokeRect(r, radius, c, w*zoom)
	p.Text(r, n.Text(), s.Stroke, fontSize)
}
