package sink

import (
	"bytes"
	"image/color"
	"math"

	"github.com/fogleman/gg"

	"github.com/matzehuels/conceptmap/pkg/cmap"
	"github.com/matzehuels/conceptmap/pkg/errors"
	"github.com/matzehuels/conceptmap/pkg/fonts"
	"github.com/matzehuels/conceptmap/pkg/geom"
	"github.com/matzehuels/conceptmap/pkg/render"
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	width, height float64
	style         render.Style
	scale         float64
}

// WithPNGSize sets the minimum canvas size in document units.
func WithPNGSize(w, h float64) PNGOption {
	return func(r *pngRenderer) { r.width, r.height = w, h }
}

// WithPNGStyle overrides [render.DefaultStyle].
func WithPNGStyle(s render.Style) PNGOption { return func(r *pngRenderer) { r.style = s } }

// WithScale sets the pixel density (default 1.0; 2.0 for high-DPI output).
func WithScale(s float64) PNGOption { return func(r *pngRenderer) { r.scale = s } }

// RenderPNG rasterizes doc. Unlike [RenderPDF] it needs no external tools.
func RenderPNG(doc *cmap.Document, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{
		width:  render.DefaultCanvasWidth,
		height: render.DefaultCanvasHeight,
		style:  render.DefaultStyle(),
		scale:  1,
	}
	for _, opt := range opts {
		opt(&r)
	}
	if r.scale <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "png scale must be positive, got %g", r.scale)
	}

	w, h := canvasSize(doc, r.width, r.height)
	dc := gg.NewContext(int(math.Ceil(w*r.scale)), int(math.Ceil(h*r.scale)))
	p := &pngPainter{dc: dc, faces: map[float64]*fonts.Face{}}

	render.Scene(doc, p, r.style, r.scale)
	if p.err != nil {
		return nil, p.err
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "encode png")
	}
	return buf.Bytes(), nil
}

// pngPainter implements render.Painter on a gg context. Font faces are
// created on first use per size.
type pngPainter struct {
	dc    *gg.Context
	faces map[float64]*fonts.Face
	err   error
}

func (p *pngPainter) Clear(c color.RGBA) {
	p.dc.SetColor(c)
	p.dc.Clear()
}

func (p *pngPainter) FillRect(r geom.Rect, radius float64, fill color.RGBA) {
	p.rect(r, radius)
	p.dc.SetColor(fill)
	p.dc.Fill()
}

func (p *pngPainter) StrokeRect(r geom.Rect, radius float64, stroke color.RGBA, width float64) {
	p.rect(r, radius)
	p.dc.SetColor(stroke)
	p.dc.SetLineWidth(width)
	p.dc.Stroke()
}

func (p *pngPainter) rect(r geom.Rect, radius float64) {
	if radius > 0 {
		p.dc.DrawRoundedRectangle(r.X, r.Y, r.W, r.H, radius)
		return
	}
	p.dc.DrawRectangle(r.X, r.Y, r.W, r.H)
}

func (p *pngPainter) Line(a, b geom.Point, stroke color.RGBA, width float64) {
	p.dc.SetColor(stroke)
	p.dc.SetLineWidth(width)
	p.dc.DrawLine(a.X, a.Y, b.X, b.Y)
	p.dc.Stroke()
}

func (p *pngPainter) Polygon(pts []geom.Point, fill color.RGBA) {
	if len(pts) == 0 {
		return
	}
	p.dc.MoveTo(pts[0].X, pts[0].Y)
	for _, pt := range pts[1:] {
		p.dc.LineTo(pt.X, pt.Y)
	}
	p.dc.ClosePath()
	p.dc.SetColor(fill)
	p.dc.Fill()
}

func (p *pngPainter) Text(r geom.Rect, s string, c color.RGBA, size float64) {
	face, err := p.face(size)
	if err != nil {
		p.err = err
		return
	}
	center := r.Center()
	p.dc.SetFontFace(face.FontFace())
	p.dc.SetColor(c)
	p.dc.DrawStringAnchored(s, center.X, center.Y, 0.5, 0.35)
}

func (p *pngPainter) face(size float64) (*fonts.Face, error) {
	if f, ok := p.faces[size]; ok {
		return f, nil
	}
	f, err := fonts.NewFace(size)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "load font")
	}
	p.faces[size] = f
	return f, nil
}
