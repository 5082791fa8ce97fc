package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/conceptmap/pkg/cmap"
	"github.com/matzehuels/conceptmap/pkg/errors"
)

// newCommand creates the new command for starting a document.
func (c *CLI) newCommand() *cobra.Command {
	var (
		sample bool
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "new [file]",
		Short: "Create a new concept map",
		Long: `Create a new concept map document.

With --sample the map holds one proposition, "Node 1" linked to "Node 2"
through "Text 1", laid out the way the editor's toolbar would place it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := os.Stat(path); err == nil && !force {
				return errors.New(errors.ErrCodeInvalidInput, "%s already exists (use --force to overwrite)", path)
			}

			cfg, err := c.config()
			if err != nil {
				return err
			}
			m, err := textMetrics(cfg)
			if err != nil {
				return err
			}

			doc := cmap.New(m)
			if sample {
				addSample(doc)
			}
			if err := c.saveDocument(cmd.Context(), doc, path); err != nil {
				return err
			}

			c.ui.success("Created %s", path)
			c.ui.stats(doc.NodeCount(), doc.ArrowCount())
			c.ui.nextStep("Edit it with", appName+" edit "+path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&sample, "sample", false, "start with a sample proposition")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	return cmd
}

// addSample adds the "Node 1 → Text 1 → Node 2" proposition.
func addSample(doc *cmap.Document) {
	a := doc.AddNode(cmap.KindConcept, 20, 20)
	m := doc.AddNode(cmap.KindText, 150, 20)
	b := doc.AddNode(cmap.KindConcept, 280, 20)
	doc.AddArrow(a, m)
	doc.AddArrow(m, b)
}
