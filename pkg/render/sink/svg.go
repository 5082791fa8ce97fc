package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/matzehuels/conceptmap/pkg/cmap"
	"github.com/matzehuels/conceptmap/pkg/fonts"
	"github.com/matzehuels/conceptmap/pkg/geom"
	"github.com/matzehuels/conceptmap/pkg/render"
)

// Metadata written into every SVG export.
const (
	SVGTitle       = "Diagram SVG Export"
	SVGDescription = "Exported diagram as SVG"
)

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	width, height float64
	style         render.Style
}

// WithSize sets the minimum canvas size. The canvas still grows to cover
// every node.
func WithSize(w, h float64) SVGOption {
	return func(r *svgRenderer) { r.width, r.height = w, h }
}

// WithStyle overrides [render.DefaultStyle].
func WithStyle(s render.Style) SVGOption { return func(r *svgRenderer) { r.style = s } }

// RenderSVG renders doc as an SVG document at zoom 1.0.
func RenderSVG(doc *cmap.Document, opts ...SVGOption) []byte {
	r := svgRenderer{
		width:  render.DefaultCanvasWidth,
		height: render.DefaultCanvasHeight,
		style:  render.DefaultStyle(),
	}
	for _, opt := range opts {
		opt(&r)
	}
	w, h := canvasSize(doc, r.width, r.height)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.0f %.0f" width="%.0f" height="%.0f">`+"\n", w, h, w, h)
	fmt.Fprintf(&buf, "  <title>%s</title>\n", SVGTitle)
	fmt.Fprintf(&buf, "  <desc>%s</desc>\n", SVGDescription)

	render.Scene(doc, &svgPainter{buf: &buf}, r.style, 1)

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// canvasSize returns the canvas covering both the requested size and the
// bottom-right corner of every node.
func canvasSize(doc *cmap.Document, w, h float64) (float64, float64) {
	if doc.NodeCount() == 0 {
		return w, h
	}
	b := doc.Bounds()
	return math.Max(w, math.Ceil(b.Right())), math.Max(h, math.Ceil(b.Bottom()))
}

// svgPainter implements render.Painter by appending SVG elements.
type svgPainter struct {
	buf *bytes.Buffer
}

func (p *svgPainter) Clear(c color.RGBA) {
	fmt.Fprintf(p.buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", hex(c))
}

func (p *svgPainter) FillRect(r geom.Rect, radius float64, fill color.RGBA) {
	fmt.Fprintf(p.buf, `  <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f"%s fill="%s"/>`+"\n",
		r.X, r.Y, r.W, r.H, corners(radius), hex(fill))
}

func (p *svgPainter) StrokeRect(r geom.Rect, radius float64, stroke color.RGBA, width float64) {
	fmt.Fprintf(p.buf, `  <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f"%s fill="none" stroke="%s" stroke-width="%.2f"/>`+"\n",
		r.X, r.Y, r.W, r.H, corners(radius), hex(stroke), width)
}

func (p *svgPainter) Line(a, b geom.Point, stroke color.RGBA, width float64) {
	fmt.Fprintf(p.buf, `  <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="%.2f"/>`+"\n",
		a.X, a.Y, b.X, b.Y, hex(stroke), width)
}

func (p *svgPainter) Polygon(pts []geom.Point, fill color.RGBA) {
	coords := make([]string, len(pts))
	for i, pt := range pts {
		coords[i] = fmt.Sprintf("%.2f,%.2f", pt.X, pt.Y)
	}
	fmt.Fprintf(p.buf, `  <polygon points="%s" fill="%s"/>`+"\n", strings.Join(coords, " "), hex(fill))
}

func (p *svgPainter) Text(r geom.Rect, s string, c color.RGBA, size float64) {
	center := r.Center()
	fmt.Fprintf(p.buf, `  <text x="%.2f" y="%.2f" text-anchor="middle" dominant-baseline="central" font-family="%s" font-size="%.1f" fill="%s">%s</text>`+"\n",
		center.X, center.Y, fonts.FontFamily, size, hex(c), escapeXML(s))
}

func corners(radius float64) string {
	if radius <= 0 {
		return ""
	}
	return fmt.Sprintf(` rx="%.2f" ry="%.2f"`, radius, radius)
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
