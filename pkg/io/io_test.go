package io

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/conceptmap/pkg/cmap"
	"github.com/matzehuels/conceptmap/pkg/errors"
	"github.com/matzehuels/conceptmap/pkg/fonts"
)

var testMetrics = fonts.Fixed{CharWidth: 7, Height: 14}

// proposition builds "Node 1" → "Text 1" → "Node 2".
func proposition() *cmap.Document {
	doc := cmap.New(testMetrics)
	a := doc.AddNode(cmap.KindConcept, 20, 20)
	m := doc.AddNode(cmap.KindText, 150, 20)
	b := doc.AddNode(cmap.KindConcept, 280, 20.5)
	doc.AddArrow(a, m)
	doc.AddArrow(m, b)
	return doc
}

func TestRoundTrip(t *testing.T) {
	docs := map[string]*cmap.Document{
		"empty":       cmap.New(testMetrics),
		"proposition": proposition(),
	}

	weird := cmap.New(testMetrics)
	x := weird.AddNodeWithText(cmap.KindText, -5, 1e6, "")
	y := weird.AddNodeWithText(cmap.KindConcept, 0.125, 0, `quotes " and <tags> & ünïcödé`)
	weird.AddArrow(y, x)
	weird.AddArrow(x, y)
	weird.SelectNode(x)
	docs["weird"] = weird

	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			first, err := MarshalJSON(doc)
			if err != nil {
				t.Fatalf("MarshalJSON: %v", err)
			}
			loaded, err := ReadJSON(bytes.NewReader(first), testMetrics)
			if err != nil {
				t.Fatalf("ReadJSON: %v", err)
			}
			second, err := MarshalJSON(loaded)
			if err != nil {
				t.Fatalf("MarshalJSON(loaded): %v", err)
			}
			if !bytes.Equal(first, second) {
				t.Errorf("round trip changed output:\n%s\nvs\n%s", first, second)
			}
			if loaded.SelectionCount() != 0 {
				t.Error("selection should not survive a round trip")
			}
		})
	}
}

func TestWriteJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(proposition(), &buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		`"type": "node"`,
		`"type": "textnode"`,
		`"text": "Text 1"`,
		`"y": 20.5`,
		`"start": 1`,
		`"end": 2`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s:\n%s", want, out)
		}
	}
	if !strings.HasPrefix(out, "{\n  \"nodes\"") {
		t.Errorf("output not indented with two spaces:\n%s", out)
	}
}

func TestReadJSONSizesNodes(t *testing.T) {
	in := `{"nodes":[{"type":"node","x":1,"y":2,"text":"abc"}],"arrows":[]}`
	doc, err := ReadJSON(strings.NewReader(in), testMetrics)
	if err != nil {
		t.Fatal(err)
	}
	n := doc.Nodes()[0]
	if n.X != 1 || n.Y != 2 || n.Width() != 21+cmap.PadX || n.Height() != 14+cmap.PadY {
		t.Errorf("node = (%v,%v) %vx%v", n.X, n.Y, n.Width(), n.Height())
	}
}

func TestReadJSONSkipsUnknownTypes(t *testing.T) {
	in := `{
	  "nodes": [
	    {"type": "node", "x": 0, "y": 0, "text": "A"},
	    {"type": "ellipse", "x": 0, "y": 0, "text": "?"},
	    {"type": "textnode", "x": 0, "y": 0, "text": "M"}
	  ],
	  "arrows": [{"start": 0, "end": 1}]
	}`
	doc, err := ReadJSON(strings.NewReader(in), testMetrics)
	if err != nil {
		t.Fatal(err)
	}
	if doc.NodeCount() != 2 {
		t.Fatalf("NodeCount = %d, want 2", doc.NodeCount())
	}
	arrow := doc.Arrows()[0]
	to, _ := doc.Node(arrow.To)
	if to.Text() != "M" {
		t.Errorf("arrow index 1 resolved to %q, want the node after the skipped one", to.Text())
	}
}

func TestReadJSONErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		code errors.Code
	}{
		{"malformed", `{"nodes": [`, errors.ErrCodeInvalidDocument},
		{"not an object", `[]`, errors.ErrCodeInvalidDocument},
		{"missing nodes", `{"arrows": []}`, errors.ErrCodeInvalidDocument},
		{"missing arrows", `{"nodes": []}`, errors.ErrCodeInvalidDocument},
		{"missing type", `{"nodes":[{"x":0,"y":0,"text":"a"}],"arrows":[]}`, errors.ErrCodeInvalidDocument},
		{"missing x", `{"nodes":[{"type":"node","y":0,"text":"a"}],"arrows":[]}`, errors.ErrCodeInvalidDocument},
		{"missing text", `{"nodes":[{"type":"node","x":0,"y":0}],"arrows":[]}`, errors.ErrCodeInvalidDocument},
		{"wrong type", `{"nodes":[{"type":"node","x":"0","y":0,"text":"a"}],"arrows":[]}`, errors.ErrCodeInvalidDocument},
		{"missing end", `{"nodes":[],"arrows":[{"start":0}]}`, errors.ErrCodeInvalidDocument},
		{"start out of range", twoNodes(`{"start":5,"end":0}`), errors.ErrCodeInvalidArrow},
		{"end out of range", twoNodes(`{"start":0,"end":2}`), errors.ErrCodeInvalidArrow},
		{"negative index", twoNodes(`{"start":-1,"end":0}`), errors.ErrCodeInvalidArrow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(tt.in), testMetrics)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
			if !errors.IsLoadError(err) {
				t.Errorf("IsLoadError(%v) = false", err)
			}
		})
	}
}

func twoNodes(arrow string) string {
	return `{"nodes":[{"type":"node","x":0,"y":0,"text":"a"},{"type":"node","x":9,"y":9,"text":"b"}],"arrows":[` + arrow + `]}`
}

func TestReadJSONKeepsSelfLoops(t *testing.T) {
	in := `{"nodes":[{"type":"node","x":0,"y":0,"text":"a"}],"arrows":[{"start":0,"end":0}]}`
	doc, err := ReadJSON(strings.NewReader(in), testMetrics)
	if err != nil {
		t.Fatal(err)
	}
	if doc.ArrowCount() != 1 {
		t.Fatalf("ArrowCount = %d, want 1", doc.ArrowCount())
	}
	if a := doc.Arrows()[0]; a.From != a.To {
		t.Errorf("arrow %v -> %v, want a self-loop", a.From, a.To)
	}

	out, err := MarshalJSON(doc)
	if err != nil {
		t.Fatal(err)
	}
	again, err := ReadJSON(bytes.NewReader(out), testMetrics)
	if err != nil {
		t.Fatal(err)
	}
	if again.ArrowCount() != 1 {
		t.Errorf("self-loop lost after save and reload:\n%s", out)
	}
}

func TestImportJSONFailureLeavesDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(path, []byte(twoNodes(`{"start":5,"end":0}`)), 0o644); err != nil {
		t.Fatal(err)
	}

	live := proposition()
	before, _ := MarshalJSON(live)

	loaded, err := ImportJSON(path, testMetrics)
	if err == nil {
		live.Replace(loaded)
	}
	if !errors.Is(err, errors.ErrCodeInvalidArrow) {
		t.Fatalf("ImportJSON error = %v, want INVALID_ARROW", err)
	}

	after, _ := MarshalJSON(live)
	if !bytes.Equal(before, after) {
		t.Error("live document changed after a failed load")
	}
}

func TestImportJSONMissingFile(t *testing.T) {
	_, err := ImportJSON(filepath.Join(t.TempDir(), "nope.json"), testMetrics)
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("error = %v, want FILE_NOT_FOUND", err)
	}
	if errors.IsLoadError(err) {
		t.Error("a missing file is not a load error")
	}
}

func TestExportJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.json")
	if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	doc := proposition()
	if err := ExportJSON(doc, path); err != nil {
		t.Fatal(err)
	}

	got, err := ImportJSON(path, testMetrics)
	if err != nil {
		t.Fatal(err)
	}
	if got.NodeCount() != 3 || got.ArrowCount() != 2 {
		t.Errorf("reloaded %d nodes %d arrows, want 3, 2", got.NodeCount(), got.ArrowCount())
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestExportJSONBadDir(t *testing.T) {
	err := ExportJSON(proposition(), filepath.Join(t.TempDir(), "missing", "map.json"))
	if !errors.Is(err, errors.ErrCodeIO) {
		t.Errorf("error = %v, want IO_ERROR", err)
	}
}
