// Package nodelink renders concept maps as Graphviz node-link diagrams.
//
// # Overview
//
// The editor stores hand-placed positions. This package ignores them and
// hands the graph to Graphviz instead, which is handy for a quick overview
// of a large map or for feeding the structure into other DOT tooling.
// Concepts become rounded gray boxes and linking phrases plain text, the
// same visual split the editor uses.
//
// # Usage
//
//	dot := nodelink.ToDOT(doc, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)
//
// Rendering never modifies the document.
package nodelink
