package cli

import (
	"bytes"
	"context"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/conceptmap/pkg/cmap"
	"github.com/matzehuels/conceptmap/pkg/errors"
	cmio "github.com/matzehuels/conceptmap/pkg/io"
	"github.com/matzehuels/conceptmap/pkg/observability"
	"github.com/matzehuels/conceptmap/pkg/render/nodelink"
	"github.com/matzehuels/conceptmap/pkg/render/sink"
)

// Export formats.
const (
	formatSVG     = "svg"
	formatPNG     = "png"
	formatPDF     = "pdf"
	formatDOT     = "dot"
	formatTriples = "triples"
	formatJSON    = "json"
)

// validFormats lists the export formats in help order.
var validFormats = []string{formatSVG, formatPNG, formatPDF, formatDOT, formatTriples, formatJSON}

// contentTypes maps formats to their HTTP media types.
var contentTypes = map[string]string{
	formatSVG:     "image/svg+xml",
	formatPNG:     "image/png",
	formatPDF:     "application/pdf",
	formatDOT:     "text/vnd.graphviz; charset=utf-8",
	formatTriples: "text/plain; charset=utf-8",
	formatJSON:    "application/json",
}

// extension returns the file extension for format.
func extension(format string) string {
	if format == formatTriples {
		return "txt"
	}
	return format
}

// exportOpts holds the settings shared by every export format.
type exportOpts struct {
	width, height float64 // canvas size for svg/pdf/png
	scale         float64 // png pixel density
	graphviz      bool    // lay out with Graphviz instead of stored positions
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{formatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(strings.ToLower(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// validateFormats reports the first unknown format.
func validateFormats(formats []string) error {
	for _, f := range formats {
		if !slices.Contains(validFormats, f) {
			return errors.New(errors.ErrCodeInvalidFormat, "unknown format %q (want one of %s)", f, strings.Join(validFormats, ", "))
		}
	}
	return nil
}

// export renders doc in one format and reports the export to the
// observability hooks.
func export(ctx context.Context, doc *cmap.Document, format string, opts exportOpts) ([]byte, error) {
	start := time.Now()
	data, err := exportData(ctx, doc, format, opts)
	observability.Document().OnExport(ctx, format, len(data), time.Since(start), err)
	return data, err
}

func exportData(ctx context.Context, doc *cmap.Document, format string, opts exportOpts) ([]byte, error) {
	switch format {
	case formatJSON:
		return cmio.MarshalJSON(doc)
	case formatTriples:
		var buf bytes.Buffer
		if err := cmio.WriteTriples(doc, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case formatDOT:
		return []byte(nodelink.ToDOT(doc, nodelink.Options{Pinned: !opts.graphviz})), nil
	}

	if opts.graphviz {
		dot := nodelink.ToDOT(doc, nodelink.Options{})
		switch format {
		case formatSVG:
			return nodelink.RenderSVG(ctx, dot)
		case formatPDF:
			return nodelink.RenderPDF(ctx, dot)
		case formatPNG:
			return nodelink.RenderPNG(ctx, dot, opts.scale)
		}
	}

	size := sink.WithSize(opts.width, opts.height)
	switch format {
	case formatSVG:
		return sink.RenderSVG(doc, size), nil
	case formatPDF:
		return sink.RenderPDF(ctx, doc, size)
	case formatPNG:
		return sink.RenderPNG(doc, sink.WithPNGSize(opts.width, opts.height), sink.WithScale(opts.scale))
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", format)
}
