package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/conceptmap/pkg/cmap"
	cmio "github.com/matzehuels/conceptmap/pkg/io"
)

// infoCommand creates the info command for summarizing a document.
func (c *CLI) infoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info [file]",
		Short: "Show document statistics and propositions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := c.loadDocument(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			c.printSummary(args[0], doc)
			return nil
		},
	}
}

// printSummary prints counts, bounds and the propositions of doc.
func (c *CLI) printSummary(path string, doc *cmap.Document) {
	c.ui.line(StyleTitle.Render(path))
	c.ui.keyValue("Concepts", StyleNumber.Render(fmt.Sprint(doc.CountKind(cmap.KindConcept))))
	c.ui.keyValue("Phrases", StyleNumber.Render(fmt.Sprint(doc.CountKind(cmap.KindText))))
	c.ui.keyValue("Arrows", StyleNumber.Render(fmt.Sprint(doc.ArrowCount())))
	if doc.NodeCount() > 0 {
		b := doc.Bounds()
		c.ui.keyValue("Bounds", fmt.Sprintf("%.0f,%.0f %.0fx%.0f", b.X, b.Y, b.W, b.H))
	}

	triples := cmio.Triples(doc)
	c.ui.newline()
	if len(triples) == 0 {
		c.ui.info("No propositions")
		return
	}
	c.ui.info("%d propositions", len(triples))
	for _, t := range triples {
		c.ui.detail("%s", t)
	}
}
