package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/conceptmap/pkg/cmap"
	"github.com/matzehuels/conceptmap/pkg/errors"
	"github.com/matzehuels/conceptmap/pkg/render"
)

// Options configures node-link diagram generation.
type Options struct {
	// RankDir is the Graphviz rank direction ("TB", "LR", ...). Empty means
	// left to right, which suits propositions read as sentences.
	RankDir string
	// Pinned adds each node's stored position as a pos attribute, for
	// engines such as neato that honor it.
	Pinned bool
}

// ToDOT converts doc to Graphviz DOT source. Nodes are emitted in z-order
// and edges in arrow order, so the output is deterministic.
func ToDOT(doc *cmap.Document, opts Options) string {
	rankdir := opts.RankDir
	if rankdir == "" {
		rankdir = "LR"
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir)
	buf.WriteString("  bgcolor=\"white\";\n")
	buf.WriteString("  node [fontname=\"Helvetica\", fontsize=12];\n")
	buf.WriteString("  edge [arrowsize=0.8];\n")
	buf.WriteString("\n")

	for _, n := range doc.Nodes() {
		fmt.Fprintf(&buf, "  %s [%s];\n", nodeName(n.ID), strings.Join(fmtAttrs(n, opts.Pinned), ", "))
	}

	buf.WriteString("\n")
	for _, a := range doc.Arrows() {
		fmt.Fprintf(&buf, "  %s -> %s;\n", nodeName(a.From), nodeName(a.To))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeName(id cmap.NodeID) string { return "n" + strconv.FormatUint(uint64(id), 10) }

func fmtAttrs(n *cmap.Node, pinned bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", n.Text())}
	if n.IsConcept() {
		attrs = append(attrs, "shape=box", "style=\"rounded,filled\"", "fillcolor=lightgrey", "penwidth=2")
	} else {
		attrs = append(attrs, "shape=plaintext")
	}
	if pinned {
		// Graphviz y grows upward.
		attrs = append(attrs, fmt.Sprintf("pos=\"%.0f,%.0f!\"", n.X, -n.Y))
	}
	return attrs
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the Graphviz root element, which sizes the
// drawing in points, with one sized in pixels.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// RenderPDF renders DOT source as PDF via SVG conversion.
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders DOT source as PNG via SVG conversion at the given scale.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
