package cmap

import (
	"errors"
	"fmt"

	"github.com/matzehuels/conceptmap/pkg/fonts"
	"github.com/matzehuels/conceptmap/pkg/geom"
)

var (
	// ErrUnknownKind is returned by [ParseKind] for wire names other than
	// "node" and "textnode".
	ErrUnknownKind = errors.New("unknown node kind")
)

// Padding added around a label's text metrics to size its node.
const (
	PadX = 18.0
	PadY = 12.0
)

// Kind distinguishes concept nodes from linking-phrase nodes. Rendering,
// sizing and serialization all switch on the kind; there is no other type
// distinction between the two.
type Kind int

const (
	// KindConcept is a boxed, rounded concept node.
	KindConcept Kind = iota
	// KindText is an unboxed linking phrase drawn over the canvas color.
	KindText
)

// Wire names for node kinds.
const (
	wireConcept = "node"
	wireText    = "textnode"
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindConcept:
		return wireConcept
	case KindText:
		return wireText
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// DefaultLabel returns the generated label for the n-th node of this kind
// (1-based): "Node n" for concepts, "Text n" for linking phrases.
func (k Kind) DefaultLabel(n int) string {
	if k == KindText {
		return fmt.Sprintf("Text %d", n)
	}
	return fmt.Sprintf("Node %d", n)
}

// ParseKind maps a wire name back to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case wireConcept:
		return KindConcept, nil
	case wireText:
		return KindText, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// NodeID identifies a node within one Document. IDs are never reused.
type NodeID uint64

// ArrowID identifies an arrow within one Document. IDs are never reused.
type ArrowID uint64

// Node is a concept or linking-phrase node.
//
// Position is the top-left corner in document space. Width and height are
// derived from the label and the document's metrics and are recomputed every
// time the label changes, which is why the label is only writable through
// [Document.SetText].
type Node struct {
	ID   NodeID
	Kind Kind
	X, Y float64

	text     string
	w, h     float64
	selected bool
}

// Text returns the node label.
func (n *Node) Text() string { return n.text }

// Width returns the node width: text advance plus PadX.
func (n *Node) Width() float64 { return n.w }

// Height returns the node height: line height plus PadY.
func (n *Node) Height() float64 { return n.h }

// Selected reports whether the node is the current selection.
func (n *Node) Selected() bool { return n.selected }

// IsConcept reports whether the node is a concept node.
func (n *Node) IsConcept() bool { return n.Kind == KindConcept }

// IsText reports whether the node is a linking-phrase node.
func (n *Node) IsText() bool { return n.Kind == KindText }

// Rect returns the node rectangle in document space.
func (n *Node) Rect() geom.Rect { return geom.Rect{X: n.X, Y: n.Y, W: n.w, H: n.h} }

// Center returns the midpoint of the node rectangle.
func (n *Node) Center() geom.Point { return geom.Pt(n.X+n.w/2, n.Y+n.h/2) }

// Contains reports whether p falls inside the node rectangle (edges inclusive).
func (n *Node) Contains(p geom.Point) bool { return n.Rect().Contains(p) }

// BoundaryToward returns the point on the node border hit by a ray from the
// node center toward target.
func (n *Node) BoundaryToward(target geom.Point) geom.Point {
	return geom.BoundaryPoint(n.Rect(), n.Center(), target)
}

func (n *Node) setText(text string, m fonts.Metrics) {
	n.text = text
	n.w = m.Advance(text) + PadX
	n.h = m.LineHeight() + PadY
}

// Arrow is a directed edge between two nodes of the same document. It holds
// node IDs, not node pointers; the document removes arrows whose endpoints
// disappear.
type Arrow struct {
	ID       ArrowID
	From, To NodeID

	selected bool
}

// Selected reports whether the arrow is the current selection.
func (a *Arrow) Selected() bool { return a.selected }

// Touches reports whether id is either endpoint of the arrow.
func (a *Arrow) Touches(id NodeID) bool { return a.From == id || a.To == id }
