// Package render paints concept map documents.
//
// # Overview
//
// Rendering is split between a scene and a surface:
//
//   - [Scene] walks a [cmap.Document] and issues drawing calls in paint
//     order: background, arrows, then nodes in z-order.
//   - A [Painter] is the surface those calls land on. The [sink] subpackage
//     provides SVG and PNG painters; the terminal editor has its own.
//
// Visual constants (colors, pen widths, corner radius, arrowhead size) live
// in [Style]. [DefaultStyle] matches the desktop editor the format comes
// from.
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert SVG output with the external rsvg-convert
// tool (from librsvg):
//
//	svg := sink.RenderSVG(doc)
//	pdf, err := render.ToPDF(ctx, svg)
//
// # Node-Link Diagrams
//
// The [nodelink] subpackage exports the document graph as Graphviz DOT and
// lays it out with Graphviz. That view ignores stored positions and never
// modifies the document.
//
// [sink]: github.com/matzehuels/conceptmap/pkg/render/sink
// [nodelink]: github.com/matzehuels/conceptmap/pkg/render/nodelink
package render
