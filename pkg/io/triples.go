package io

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/matzehuels/conceptmap/pkg/cmap"
	"github.com/matzehuels/conceptmap/pkg/errors"
)

// Triple is one proposition: a concept, a linking phrase and a concept.
type Triple struct {
	Subject   string
	Predicate string
	Object    string
}

// String formats t as "Subject, Predicate, Object".
func (t Triple) String() string {
	return fmt.Sprintf("%s, %s, %s", t.Subject, t.Predicate, t.Object)
}

// Triples returns every concept → text → concept path in doc. Subjects
// follow node order; for each subject, links and objects follow arrow
// order. Chains of any other shape are ignored.
func Triples(doc *cmap.Document) []Triple {
	var out []Triple
	for _, n := range doc.Nodes() {
		if !n.IsConcept() {
			continue
		}
		for _, first := range doc.Outgoing(n.ID) {
			mid, ok := doc.Node(first.To)
			if !ok || !mid.IsText() {
				continue
			}
			for _, second := range doc.Outgoing(mid.ID) {
				end, ok := doc.Node(second.To)
				if !ok || !end.IsConcept() {
					continue
				}
				out = append(out, Triple{Subject: n.Text(), Predicate: mid.Text(), Object: end.Text()})
			}
		}
	}
	return out
}

// WriteTriples writes the triples of doc to w, one per line.
func WriteTriples(doc *cmap.Document, w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, t := range Triples(doc) {
		if _, err := fmt.Fprintln(bw, t.String()); err != nil {
			return errors.Wrap(errors.ErrCodeIO, err, "write triples")
		}
	}
	if err := bw.Flush(); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write triples")
	}
	return nil
}

// ExportTriples writes the triples of doc to path.
func ExportTriples(doc *cmap.Document, path string) error {
	var buf bytes.Buffer
	if err := WriteTriples(doc, &buf); err != nil {
		return err
	}
	return writeFile(path, buf.Bytes())
}
