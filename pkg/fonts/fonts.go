// Package fonts provides text metrics for sizing and drawing node labels.
//
// Node rectangles are derived from the advance width and line height of
// their label, so every document is bound to a [Metrics] provider. Two
// providers ship with the package:
//
//   - [Face]: the Go Regular TrueType font from golang.org/x/image, used for
//     on-disk documents and raster/vector export.
//   - [Fixed]: a fixed-pitch model that counts runes, used by the terminal
//     editor and in tests where exact numbers matter.
package fonts

import (
	"fmt"
	"sync"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// DefaultSize is the node label size in points.
const DefaultSize = 12.0

// FontFamily is the CSS font-family written into SVG output for Go Regular.
const FontFamily = `'Go', 'Helvetica Neue', Arial, sans-serif`

// Metrics reports the size of a single line of text.
type Metrics interface {
	// Advance returns the horizontal advance of s.
	Advance(s string) float64
	// LineHeight returns the height of one line of text.
	LineHeight() float64
}

// Parsed once on first use.
var (
	goRegular    *opentype.Font
	goRegularErr error
	goRegularOne sync.Once
)

func parseGoRegular() (*opentype.Font, error) {
	goRegularOne.Do(func() {
		goRegular, goRegularErr = opentype.Parse(goregular.TTF)
	})
	return goRegular, goRegularErr
}

// Face measures text with Go Regular at a fixed point size.
// A Face is not safe for concurrent use; font.Face caches glyph data.
type Face struct {
	size float64
	face font.Face
}

// NewFace returns a Go Regular face of the given size in points (72 DPI, so
// one point is one document unit).
func NewFace(size float64) (*Face, error) {
	if size <= 0 {
		return nil, fmt.Errorf("font size must be positive, got %v", size)
	}
	f, err := parseGoRegular()
	if err != nil {
		return nil, fmt.Errorf("parse go regular: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("new face: %w", err)
	}
	return &Face{size: size, face: face}, nil
}

// MustFace is like NewFace but panics on error. The embedded font is known
// good, so this only fails for non-positive sizes.
func MustFace(size float64) *Face {
	f, err := NewFace(size)
	if err != nil {
		panic(err)
	}
	return f
}

// Size returns the point size of the face.
func (f *Face) Size() float64 { return f.size }

// FontFace exposes the underlying face for raster painters.
func (f *Face) FontFace() font.Face { return f.face }

// Advance implements Metrics.
func (f *Face) Advance(s string) float64 {
	return toFloat(font.MeasureString(f.face, s))
}

// LineHeight implements Metrics.
func (f *Face) LineHeight() float64 {
	m := f.face.Metrics()
	return toFloat(m.Ascent + m.Descent)
}

func toFloat(v fixed.Int26_6) float64 { return float64(v) / 64 }

// Fixed is a fixed-pitch metrics model: every rune is CharWidth wide and a
// line is Height tall.
type Fixed struct {
	CharWidth float64
	Height    float64
}

// Advance implements Metrics.
func (m Fixed) Advance(s string) float64 {
	return float64(utf8.RuneCountInString(s)) * m.CharWidth
}

// LineHeight implements Metrics.
func (m Fixed) LineHeight() float64 { return m.Height }

var (
	_ Metrics = (*Face)(nil)
	_ Metrics = Fixed{}
)
