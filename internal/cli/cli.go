// Package cli implements the conceptmap command-line interface.
//
// The commands create, inspect, export and edit concept-map documents,
// move them in and out of a map library, and serve both over HTTP. The CLI
// is built with cobra; diagnostics go to stderr through charmbracelet/log
// and user-facing output is styled with lipgloss.
//
// # Commands
//
//   - new: write an empty or sample document
//   - info: print counts, bounds and propositions
//   - render: export to svg, png, pdf, dot, triples or json
//   - edit: interactive terminal editor
//   - library: push, pull, list and remove stored maps
//   - serve: HTTP API with Prometheus metrics
//   - config: print or initialize the config file
//   - cache: inspect and clear the export cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/conceptmap/pkg/buildinfo"
	"github.com/matzehuels/conceptmap/pkg/cmap"
	"github.com/matzehuels/conceptmap/pkg/config"
	"github.com/matzehuels/conceptmap/pkg/errors"
	"github.com/matzehuels/conceptmap/pkg/fonts"
	cmio "github.com/matzehuels/conceptmap/pkg/io"
	"github.com/matzehuels/conceptmap/pkg/observability"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "conceptmap"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	ui     printer   // command output, stdout unless redirected
	logOut io.Writer // logger and spinner stream

	configPath string
	cfg        *config.Config
}

// New creates a CLI that logs to w at level and prints command output to
// stdout.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		ui:     printer{w: os.Stdout},
		logOut: w,
	}
}

// SetOutput redirects command output.
func (c *CLI) SetOutput(w io.Writer) {
	c.ui = printer{w: w}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Conceptmap creates and exports concept maps",
		Long:         `Conceptmap is a tool for building concept maps: concepts linked by arrows through short linking phrases, read back as "concept, phrase, concept" propositions.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default "+config.Path()+")")

	root.AddCommand(c.newCommand())
	root.AddCommand(c.infoCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.libraryCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config
// =============================================================================

// config loads the configuration once per invocation.
func (c *CLI) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("config loaded", "path", c.configPathOrDefault())
	c.cfg = cfg
	return cfg, nil
}

func (c *CLI) configPathOrDefault() string {
	if c.configPath != "" {
		return c.configPath
	}
	return config.Path()
}

// textMetrics returns the metrics used to size node labels.
func textMetrics(cfg *config.Config) (fonts.Metrics, error) {
	face, err := fonts.NewFace(cfg.Font.Size)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "font")
	}
	return face, nil
}

// =============================================================================
// Documents
// =============================================================================

// loadDocument reads a document file, sizing nodes with the configured font.
func (c *CLI) loadDocument(ctx context.Context, path string) (*cmap.Document, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	m, err := textMetrics(cfg)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	doc, err := cmio.ImportJSON(path, m)
	nodes := 0
	if doc != nil {
		nodes = doc.NodeCount()
	}
	observability.Document().OnLoad(ctx, "file", nodes, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("loaded document", "path", path, "nodes", doc.NodeCount(), "arrows", doc.ArrowCount())
	return doc, nil
}

// saveDocument writes doc to path.
func (c *CLI) saveDocument(ctx context.Context, doc *cmap.Document, path string) error {
	start := time.Now()
	data, err := cmio.MarshalJSON(doc)
	if err == nil {
		err = cmio.ExportJSON(doc, path)
	}
	observability.Document().OnSave(ctx, "file", len(data), time.Since(start), err)
	if err != nil {
		return err
	}
	c.Logger.Debug("saved document", "path", path, "bytes", len(data))
	return nil
}
