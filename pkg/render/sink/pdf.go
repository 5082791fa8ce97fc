package sink

import (
	"context"

	"github.com/matzehuels/conceptmap/pkg/cmap"
	"github.com/matzehuels/conceptmap/pkg/render"
)

// RenderPDF renders doc as PDF via SVG conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, doc *cmap.Document, opts ...SVGOption) ([]byte, error) {
	return render.ToPDF(ctx, RenderSVG(doc, opts...))
}
