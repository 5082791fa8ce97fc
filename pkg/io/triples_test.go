package io

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/conceptmap/pkg/cmap"
)

func TestTriplesProposition(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTriples(proposition(), &buf); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.String(), "Node 1, Text 1, Node 2\n"; got != want {
		t.Errorf("WriteTriples = %q, want %q", got, want)
	}
}

func TestTriplesShapes(t *testing.T) {
	doc := cmap.New(testMetrics)
	add := func(kind cmap.Kind, text string) cmap.NodeID {
		return doc.AddNodeWithText(kind, 0, 0, text)
	}
	a := add(cmap.KindConcept, "A")
	b := add(cmap.KindConcept, "B")
	m := add(cmap.KindText, "m")
	n := add(cmap.KindText, "n")
	c := add(cmap.KindConcept, "C")

	doc.AddArrow(a, b) // concept → concept: no triple
	doc.AddArrow(a, n)
	doc.AddArrow(a, m)
	doc.AddArrow(m, c)
	doc.AddArrow(m, b)
	doc.AddArrow(n, m) // text → text: no triple
	doc.AddArrow(n, c)
	doc.AddArrow(c, m)

	want := []Triple{
		{"A", "n", "C"},
		{"A", "m", "C"},
		{"A", "m", "B"},
		{"C", "m", "C"},
		{"C", "m", "B"},
	}
	got := Triples(doc)
	if len(got) != len(want) {
		t.Fatalf("Triples = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("triple %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestTriplesNoEscaping(t *testing.T) {
	doc := cmap.New(testMetrics)
	a := doc.AddNodeWithText(cmap.KindConcept, 0, 0, "salt, pepper")
	m := doc.AddNodeWithText(cmap.KindText, 0, 0, "go")
	b := doc.AddNodeWithText(cmap.KindConcept, 0, 0, "")
	doc.AddArrow(a, m)
	doc.AddArrow(m, b)

	if got := Triples(doc)[0].String(); got != "salt, pepper, go, " {
		t.Errorf("String() = %q", got)
	}
}

func TestExportTriplesEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	if err := ExportTriples(cmap.New(testMetrics), path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 0 {
		t.Errorf("file = %q, want empty", data)
	}
}
