package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/matzehuels/conceptmap/pkg/cmap"
	"github.com/matzehuels/conceptmap/pkg/errors"
)

// watchDebounce coalesces the bursts of events editors emit on save.
const watchDebounce = 200 * time.Millisecond

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output  string   // output file (single format) or base path (multiple)
	formats []string // svg, png, pdf, dot, triples, json
	watch   bool     // re-render whenever the input changes
	exportOpts
}

// renderCommand creates the render command for exporting a document.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{exportOpts: exportOpts{scale: 1}}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Export a concept map",
		Long: `Export a concept map to one or more formats.

Formats:
  svg      vector drawing of the map as laid out in the editor
  png      raster drawing (no external tools needed)
  pdf      vector document (requires rsvg-convert)
  dot      Graphviz source
  triples  one "concept, phrase, concept" proposition per line
  json     the document itself, normalized

With --graphviz, svg, png and pdf are laid out by Graphviz instead of
using the stored node positions. With --watch the command keeps running
and re-renders every time the input file is saved.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := validateFormats(opts.formats); err != nil {
				return err
			}
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if opts.width == 0 {
				opts.width = cfg.Canvas.Width
			}
			if opts.height == 0 {
				opts.height = cfg.Canvas.Height
			}
			if opts.scale <= 0 {
				return errors.New(errors.ErrCodeInvalidInput, "--scale must be positive")
			}

			if err := c.runRender(cmd.Context(), args[0], &opts); err != nil {
				if !opts.watch {
					return err
				}
				c.ui.failure("%s", errors.UserMessage(err))
			}
			if opts.watch {
				return c.watchRender(cmd.Context(), args[0], &opts)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): "+strings.Join(validFormats, ", ")+" (comma-separated, default svg)")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "minimum canvas width (default from config)")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "minimum canvas height (default from config)")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "pixel density for png output")
	cmd.Flags().BoolVar(&opts.graphviz, "graphviz", false, "lay out with Graphviz instead of stored positions")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "re-render when the input changes")

	return cmd
}

// runRender loads input and writes every requested format.
func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts) error {
	prog := newProgress(c.Logger)

	doc, err := c.loadDocument(ctx, input)
	if err != nil {
		return err
	}

	var paths []string
	for _, format := range opts.formats {
		path, err := c.renderFormat(ctx, doc, input, format, opts)
		if err != nil {
			return fmt.Errorf("%s: %w", format, err)
		}
		paths = append(paths, path)
	}

	for _, p := range paths {
		c.ui.file(p)
	}
	prog.done(fmt.Sprintf("Rendered %d file(s)", len(paths)))
	return nil
}

func (c *CLI) renderFormat(ctx context.Context, doc *cmap.Document, input, format string, opts *renderOpts) (string, error) {
	var data []byte
	var err error
	slow := format == formatPDF || (opts.graphviz && format != formatDOT)
	if slow {
		sp := newSpinner(ctx, c.logOut, fmt.Sprintf("Rendering %s...", format))
		sp.Start()
		data, err = export(ctx, doc, format, opts.exportOpts)
		sp.Stop()
	} else {
		data, err = export(ctx, doc, format, opts.exportOpts)
	}
	if err != nil {
		return "", err
	}
	c.Logger.Debugf("Generated %s: %d bytes", format, len(data))

	path := outputPath(opts.output, input, format, len(opts.formats) > 1)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrap(errors.ErrCodeIO, err, "write %s", path)
	}
	return path, nil
}

// outputPath picks the file for one format. A single format goes to output
// verbatim when given; otherwise output (or the input minus its extension)
// is a base path that gets the format's extension.
func outputPath(output, input, format string, multiple bool) string {
	if output != "" && !multiple {
		return output
	}
	return basePath(output, input) + "." + extension(format)
}

// basePath strips a known format extension from output, or derives the
// base from input when output is empty.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := strings.TrimPrefix(filepath.Ext(output), ".")
	if slices.Contains(validFormats, ext) || ext == "txt" {
		return strings.TrimSuffix(output, "."+ext)
	}
	return output
}

// =============================================================================
// Watch Mode
// =============================================================================

// watchRender re-renders input after every change until ctx is done. The
// parent directory is watched so that editors that replace the file on save
// are still seen.
func (c *CLI) watchRender(ctx context.Context, input string, opts *renderOpts) error {
	abs, err := filepath.Abs(input)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "resolve %s", input)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "create file watcher")
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "watch %s", filepath.Dir(abs))
	}

	c.ui.info("Watching %s %s", StyleHighlight.Render(input), StyleDim.Render("(ctrl+c to stop)"))

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !isChange(event, abs) {
				continue
			}
			c.Logger.Debug("input changed", "file", event.Name, "op", event.Op.String())
			debounce = time.After(watchDebounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			c.Logger.Warn("file watcher error", "err", err)
		case <-debounce:
			debounce = nil
			if err := c.runRender(ctx, input, opts); err != nil {
				c.ui.failure("%s", errors.UserMessage(err))
			}
		}
	}
}

// isChange reports whether event writes or recreates the file at path.
func isChange(event fsnotify.Event, path string) bool {
	if filepath.Clean(event.Name) != path {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create) != 0
}
