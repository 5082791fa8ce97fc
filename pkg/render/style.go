package render

import (
	"image/color"

	"github.com/matzehuels/conceptmap/pkg/cmap"
	"github.com/matzehuels/conceptmap/pkg/geom"
)

// Default canvas size in document units.
const (
	DefaultCanvasWidth  = 2000
	DefaultCanvasHeight = 2000
)

var (
	White     = color.RGBA{255, 255, 255, 255}
	Black     = color.RGBA{0, 0, 0, 255}
	LightGray = color.RGBA{192, 192, 192, 255}
	Highlight = color.RGBA{0, 120, 215, 255}
	PaleBlue  = color.RGBA{180, 210, 255, 255}
)

// Style holds the visual constants of a rendered map.
type Style struct {
	Background color.RGBA

	ConceptFill   color.RGBA
	SelectedFill  color.RGBA
	Stroke        color.RGBA // concept outline, arrow and label color
	SelectedColor color.RGBA // the same for selected entities
	StrokeWidth   float64
	SelectedWidth float64

	CornerRadius float64
	ArrowHead    float64
	FontSize     float64
}

// DefaultStyle returns the standard look: light gray rounded concepts with
// black outlines, blue highlights for the selection.
func DefaultStyle() Style {
	return Style{
		Background:    White,
		ConceptFill:   LightGray,
		SelectedFill:  PaleBlue,
		Stroke:        Black,
		SelectedColor: Highlight,
		StrokeWidth:   2,
		SelectedWidth: 3,
		CornerRadius:  15,
		ArrowHead:     geom.DefaultArrowHeadSize,
		FontSize:      12,
	}
}

// pen returns the outline color and width for an entity.
func (s Style) pen(selected bool) (color.RGBA, float64) {
	if selected {
		return s.SelectedColor, s.SelectedWidth
	}
	return s.Stroke, s.StrokeWidth
}

// fill returns the body color of a node. Linking phrases are painted with
// the background so they mask the arrows running under them.
func (s Style) fill(n *cmap.Node) color.RGBA {
	switch {
	case n.IsText():
		return s.Background
	case n.Selected():
		return s.SelectedFill
	default:
		return s.ConceptFill
	}
}
