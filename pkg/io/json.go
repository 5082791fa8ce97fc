package io

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/matzehuels/conceptmap/pkg/cmap"
	"github.com/matzehuels/conceptmap/pkg/errors"
	"github.com/matzehuels/conceptmap/pkg/fonts"
)

// Fields are pointers so that a missing key can be told apart from a zero
// value.
type document struct {
	Nodes  []node  `json:"nodes"`
	Arrows []arrow `json:"arrows"`
}

type node struct {
	Type *string  `json:"type"`
	X    *float64 `json:"x"`
	Y    *float64 `json:"y"`
	Text *string  `json:"text"`
}

type arrow struct {
	Start *int `json:"start"`
	End   *int `json:"end"`
}

// =============================================================================
// Import
// =============================================================================

// ReadJSON decodes a document from r, sizing nodes with m.
//
// ReadJSON returns an INVALID_DOCUMENT error if the JSON is malformed or a
// required field is missing, and an INVALID_ARROW error if an arrow index
// does not name a loaded node. Arrows from a node to itself are kept.
// ReadJSON does not close r.
func ReadJSON(r io.Reader, m fonts.Metrics) (*cmap.Document, error) {
	var data document
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode")
	}
	if data.Nodes == nil {
		return nil, errors.New(errors.ErrCodeInvalidDocument, "missing \"nodes\"")
	}
	if data.Arrows == nil {
		return nil, errors.New(errors.ErrCodeInvalidDocument, "missing \"arrows\"")
	}

	doc := cmap.New(m)
	ids := make([]cmap.NodeID, 0, len(data.Nodes))
	for i, n := range data.Nodes {
		if n.Type == nil || n.X == nil || n.Y == nil || n.Text == nil {
			return nil, errors.New(errors.ErrCodeInvalidDocument, "node %d: missing field", i)
		}
		kind, err := cmap.ParseKind(*n.Type)
		if err != nil {
			continue
		}
		ids = append(ids, doc.AddNodeWithText(kind, *n.X, *n.Y, *n.Text))
	}

	for i, a := range data.Arrows {
		if a.Start == nil || a.End == nil {
			return nil, errors.New(errors.ErrCodeInvalidDocument, "arrow %d: missing field", i)
		}
		start, end := *a.Start, *a.End
		if start < 0 || start >= len(ids) {
			return nil, errors.New(errors.ErrCodeInvalidArrow, "arrow %d: start %d out of range [0, %d)", i, start, len(ids))
		}
		if end < 0 || end >= len(ids) {
			return nil, errors.New(errors.ErrCodeInvalidArrow, "arrow %d: end %d out of range [0, %d)", i, end, len(ids))
		}
		doc.LoadArrow(ids[start], ids[end])
	}

	return doc, nil
}

// ImportJSON reads the document stored at path. See [ReadJSON].
func ImportJSON(path string, m fonts.Metrics) (*cmap.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeIO, err, "open %s", path)
	}
	defer f.Close()
	return ReadJSON(f, m)
}

// =============================================================================
// Export
// =============================================================================

// WriteJSON encodes doc as indented JSON and writes it to w. Selection and
// node sizes are not written.
func WriteJSON(doc *cmap.Document, w io.Writer) error {
	nodes := doc.Nodes()
	out := document{
		Nodes:  make([]node, len(nodes)),
		Arrows: make([]arrow, 0, doc.ArrowCount()),
	}

	index := make(map[cmap.NodeID]int, len(nodes))
	for i, n := range nodes {
		index[n.ID] = i
		kind, text := n.Kind.String(), n.Text()
		x, y := n.X, n.Y
		out.Nodes[i] = node{Type: &kind, X: &x, Y: &y, Text: &text}
	}
	for _, a := range doc.Arrows() {
		start, end := index[a.From], index[a.To]
		out.Arrows = append(out.Arrows, arrow{Start: &start, End: &end})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "encode")
	}
	return nil
}

// MarshalJSON returns the JSON encoding written by [WriteJSON].
func MarshalJSON(doc *cmap.Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteJSON(doc, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportJSON writes doc to path. The file is replaced only once the whole
// document has been written, so a failed save leaves any previous file
// intact.
func ExportJSON(doc *cmap.Document, path string) error {
	data, err := MarshalJSON(doc)
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "create %s", path)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(errors.ErrCodeIO, err, "write %s", path)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write %s", path)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "chmod %s", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "rename %s", path)
	}
	return nil
}
