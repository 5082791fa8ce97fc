package cli

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/conceptmap/pkg/errors"
	cmio "github.com/matzehuels/conceptmap/pkg/io"
	"github.com/matzehuels/conceptmap/pkg/library"
	"github.com/matzehuels/conceptmap/pkg/observability"
)

// libraryCommand creates the library command for managing stored maps.
func (c *CLI) libraryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "library",
		Aliases: []string{"lib"},
		Short:   "Store and retrieve maps in the map library",
		Long: `Store and retrieve maps in the map library.

The backend is chosen by [library] backend in the config file: a directory
of JSON files (default), a SQLite database, Redis or MongoDB.`,
	}

	cmd.AddCommand(c.libraryPushCommand())
	cmd.AddCommand(c.libraryPullCommand())
	cmd.AddCommand(c.libraryListCommand())
	cmd.AddCommand(c.libraryRemoveCommand())

	return cmd
}

// openLibrary opens the configured store.
func (c *CLI) openLibrary(ctx context.Context) (library.Store, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	store, err := library.Open(ctx, cfg.Library, c.Logger)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "open %s library", cfg.Library.Backend)
	}
	return store, nil
}

// libraryPushCommand creates the "library push" subcommand.
func (c *CLI) libraryPushCommand() *cobra.Command {
	var name, id string

	cmd := &cobra.Command{
		Use:   "push [file]",
		Short: "Add a map to the library, or update it with --id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			doc, err := c.loadDocument(ctx, args[0])
			if err != nil {
				return err
			}
			data, err := cmio.MarshalJSON(doc)
			if err != nil {
				return err
			}
			if name == "" {
				name = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			}

			store, err := c.openLibrary(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			e, err := library.NewEntry(name, data)
			if err != nil {
				return err
			}
			if id != "" {
				e.ID = id
			}

			start := time.Now()
			err = store.Put(ctx, e)
			observability.Document().OnSave(ctx, "library", len(data), time.Since(start), err)
			if err != nil {
				return fmt.Errorf("push: %w", err)
			}

			c.ui.success("Pushed %s", StyleHighlight.Render(e.Name))
			c.ui.keyValue("ID", e.ID)
			c.ui.stats(e.Nodes, e.Arrows)
			c.ui.nextStep("Fetch it with", appName+" library pull "+e.ID+" map.json")
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "library name (default: file name)")
	cmd.Flags().StringVar(&id, "id", "", "replace the entry with this id")

	return cmd
}

// libraryPullCommand creates the "library pull" subcommand.
func (c *CLI) libraryPullCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "pull [id] [file]",
		Short: "Write a library map to a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, path := args[0], args[1]
			if _, err := os.Stat(path); err == nil && !force {
				return errors.New(errors.ErrCodeInvalidInput, "%s already exists (use --force to overwrite)", path)
			}

			store, err := c.openLibrary(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			e, err := getEntry(ctx, store, id)
			if err != nil {
				return err
			}

			cfg, err := c.config()
			if err != nil {
				return err
			}
			m, err := textMetrics(cfg)
			if err != nil {
				return err
			}

			start := time.Now()
			doc, err := cmio.ReadJSON(bytes.NewReader(e.Data), m)
			nodes := 0
			if doc != nil {
				nodes = doc.NodeCount()
			}
			observability.Document().OnLoad(ctx, "library", nodes, time.Since(start), err)
			if err != nil {
				return err
			}
			if err := c.saveDocument(ctx, doc, path); err != nil {
				return err
			}

			c.ui.success("Pulled %s", StyleHighlight.Render(e.Name))
			c.ui.file(path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	return cmd
}

// libraryListCommand creates the "library list" subcommand.
func (c *CLI) libraryListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List library maps, most recently updated first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openLibrary(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			list, err := store.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("list: %w", err)
			}
			if len(list) == 0 {
				c.ui.info("Library is empty")
				return nil
			}
			c.ui.line(libraryTable(list, time.Now()))
			return nil
		},
	}
}

// libraryRemoveCommand creates the "library rm" subcommand.
func (c *CLI) libraryRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm [id]...",
		Aliases: []string{"remove"},
		Short:   "Remove maps from the library",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openLibrary(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			for _, id := range args {
				if err := store.Delete(cmd.Context(), id); err != nil {
					if stderrors.Is(err, library.ErrNotFound) {
						return errors.New(errors.ErrCodeNotFound, "no library map %s", id)
					}
					return fmt.Errorf("remove %s: %w", id, err)
				}
				c.ui.success("Removed %s", id)
			}
			return nil
		},
	}
}

func getEntry(ctx context.Context, store library.Store, id string) (*library.Entry, error) {
	e, err := store.Get(ctx, id)
	if stderrors.Is(err, library.ErrNotFound) {
		return nil, errors.New(errors.ErrCodeNotFound, "no library map %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", id, err)
	}
	return e, nil
}

// libraryTable renders summaries as a bordered table.
func libraryTable(list []library.Summary, now time.Time) string {
	rows := make([][]string, len(list))
	for i, s := range list {
		rows[i] = []string{s.ID, s.Name, fmt.Sprint(s.Nodes), fmt.Sprint(s.Arrows), formatRelativeTime(s.UpdatedAt, now)}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Name", "Nodes", "Arrows", "Updated").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 0:
				return StyleDim
			case col == 2 || col == 3:
				return StyleNumber
			}
			return StyleValue
		}).
		Render()
}

func formatRelativeTime(t, now time.Time) string {
	diff := now.Sub(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
