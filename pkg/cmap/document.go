package cmap

import (
	"slices"

	"github.com/matzehuels/conceptmap/pkg/fonts"
	"github.com/matzehuels/conceptmap/pkg/geom"
)

// DefaultHitTolerance is the arrow hit distance in document units.
const DefaultHitTolerance = 8.0

// Document is an ordered set of nodes and a set of arrows between them.
//
// Node order is z-order: later nodes paint on top and win hit tests. Nodes
// and arrows live in an arena keyed by stable IDs, so deleting a node is a
// scan for arrows carrying its ID rather than a pointer chase.
//
// The zero value is not usable - use New. Document is not safe for
// concurrent use.
type Document struct {
	metrics   fonts.Metrics
	nodes     []*Node
	arrows    []*Arrow
	nextNode  NodeID
	nextArrow ArrowID
}

// New creates an empty document that sizes nodes with m.
func New(m fonts.Metrics) *Document {
	return &Document{metrics: m}
}

// Metrics returns the metrics used to size nodes.
func (d *Document) Metrics() fonts.Metrics { return d.metrics }

// SetMetrics switches the metrics provider and resizes every node.
func (d *Document) SetMetrics(m fonts.Metrics) {
	d.metrics = m
	for _, n := range d.nodes {
		n.setText(n.text, m)
	}
}

// =============================================================================
// Nodes
// =============================================================================

// AddNode appends a node with a generated label ("Node n" / "Text n", where
// n-1 is the number of existing nodes of the same kind) and returns its ID.
// The new node is topmost.
func (d *Document) AddNode(kind Kind, x, y float64) NodeID {
	return d.AddNodeWithText(kind, x, y, kind.DefaultLabel(d.CountKind(kind)+1))
}

// AddNodeWithText appends a node with the given label and returns its ID.
func (d *Document) AddNodeWithText(kind Kind, x, y float64, text string) NodeID {
	d.nextNode++
	n := &Node{ID: d.nextNode, Kind: kind, X: x, Y: y}
	n.setText(text, d.metrics)
	d.nodes = append(d.nodes, n)
	return n.ID
}

// DeleteNode removes a node together with every arrow that starts or ends at
// it. It reports whether the node existed.
func (d *Document) DeleteNode(id NodeID) bool {
	idx := d.IndexOf(id)
	if idx < 0 {
		return false
	}
	kept := make([]*Arrow, 0, len(d.arrows))
	for _, a := range d.arrows {
		if !a.Touches(id) {
			kept = append(kept, a)
		}
	}
	d.arrows = kept
	d.nodes = slices.Delete(d.nodes, idx, idx+1)
	return true
}

// MoveNode sets the top-left corner of a node. Any position is accepted.
func (d *Document) MoveNode(id NodeID, x, y float64) bool {
	n, ok := d.Node(id)
	if !ok {
		return false
	}
	n.X, n.Y = x, y
	return true
}

// SetText replaces a node label and recomputes its size.
func (d *Document) SetText(id NodeID, text string) bool {
	n, ok := d.Node(id)
	if !ok {
		return false
	}
	n.setText(text, d.metrics)
	return true
}

// Node returns the node with the given ID.
func (d *Document) Node(id NodeID) (*Node, bool) {
	if i := d.IndexOf(id); i >= 0 {
		return d.nodes[i], true
	}
	return nil, false
}

// IndexOf returns the z-order position of a node, or -1.
func (d *Document) IndexOf(id NodeID) int {
	return slices.IndexFunc(d.nodes, func(n *Node) bool { return n.ID == id })
}

// Nodes returns the nodes in z-order (bottom first). The slice is a copy;
// the nodes are shared.
func (d *Document) Nodes() []*Node { return slices.Clone(d.nodes) }

// NodeCount returns the number of nodes.
func (d *Document) NodeCount() int { return len(d.nodes) }

// CountKind returns the number of nodes of the given kind.
func (d *Document) CountKind(kind Kind) int {
	count := 0
	for _, n := range d.nodes {
		if n.Kind == kind {
			count++
		}
	}
	return count
}

// HitNode returns the topmost node containing p.
func (d *Document) HitNode(p geom.Point) (NodeID, bool) {
	for i := len(d.nodes) - 1; i >= 0; i-- {
		if d.nodes[i].Contains(p) {
			return d.nodes[i].ID, true
		}
	}
	return 0, false
}

// Bounds returns the rectangle covering every node, or the zero Rect for an
// empty document.
func (d *Document) Bounds() geom.Rect {
	var r geom.Rect
	for _, n := range d.nodes {
		r = r.Union(n.Rect())
	}
	return r
}

// =============================================================================
// Arrows
// =============================================================================

// AddArrow links from → to. Self-loops and unknown endpoints are ignored and
// reported with ok == false.
func (d *Document) AddArrow(from, to NodeID) (id ArrowID, ok bool) {
	if from == to {
		return 0, false
	}
	return d.LoadArrow(from, to)
}

// LoadArrow links from → to as read from a file. Unlike [Document.AddArrow]
// it keeps self-loops, so a load followed by a save preserves them. Unknown
// endpoints are still ignored.
func (d *Document) LoadArrow(from, to NodeID) (id ArrowID, ok bool) {
	if d.IndexOf(from) < 0 || d.IndexOf(to) < 0 {
		return 0, false
	}
	d.nextArrow++
	d.arrows = append(d.arrows, &Arrow{ID: d.nextArrow, From: from, To: to})
	return d.nextArrow, true
}

// DeleteArrow removes an arrow and reports whether it existed.
func (d *Document) DeleteArrow(id ArrowID) bool {
	idx := slices.IndexFunc(d.arrows, func(a *Arrow) bool { return a.ID == id })
	if idx < 0 {
		return false
	}
	d.arrows = slices.Delete(d.arrows, idx, idx+1)
	return true
}

// Arrow returns the arrow with the given ID.
func (d *Document) Arrow(id ArrowID) (*Arrow, bool) {
	for _, a := range d.arrows {
		if a.ID == id {
			return a, true
		}
	}
	return nil, false
}

// Arrows returns the arrows in insertion order. The slice is a copy.
func (d *Document) Arrows() []*Arrow { return slices.Clone(d.arrows) }

// ArrowCount returns the number of arrows.
func (d *Document) ArrowCount() int { return len(d.arrows) }

// Outgoing returns the arrows leaving id in insertion order.
func (d *Document) Outgoing(id NodeID) []*Arrow {
	var out []*Arrow
	for _, a := range d.arrows {
		if a.From == id {
			out = append(out, a)
		}
	}
	return out
}

// Endpoints returns where an arrow meets the borders of its source and
// target nodes. The result depends only on current node geometry.
func (d *Document) Endpoints(a *Arrow) (start, end geom.Point, ok bool) {
	src, okS := d.Node(a.From)
	dst, okD := d.Node(a.To)
	if !okS || !okD {
		return geom.Point{}, geom.Point{}, false
	}
	return src.BoundaryToward(dst.Center()), dst.BoundaryToward(src.Center()), true
}

// HitArrow returns the most recently added arrow passing within tol of p.
func (d *Document) HitArrow(p geom.Point, tol float64) (ArrowID, bool) {
	for i := len(d.arrows) - 1; i >= 0; i-- {
		start, end, ok := d.Endpoints(d.arrows[i])
		if ok && geom.PointSegmentDistance(p, start, end) < tol {
			return d.arrows[i].ID, true
		}
	}
	return 0, false
}

// =============================================================================
// Selection
// =============================================================================

// SelectNode makes id the only selected entity. An unknown id clears the
// selection.
func (d *Document) SelectNode(id NodeID) {
	for _, n := range d.nodes {
		n.selected = n.ID == id
	}
	for _, a := range d.arrows {
		a.selected = false
	}
}

// SelectArrow makes id the only selected entity. An unknown id clears the
// selection.
func (d *Document) SelectArrow(id ArrowID) {
	for _, n := range d.nodes {
		n.selected = false
	}
	for _, a := range d.arrows {
		a.selected = a.ID == id
	}
}

// ClearSelection deselects every node and arrow.
func (d *Document) ClearSelection() {
	d.SelectNode(0)
}

// SelectedNode returns the selected node, if a node is selected.
func (d *Document) SelectedNode() (NodeID, bool) {
	for _, n := range d.nodes {
		if n.selected {
			return n.ID, true
		}
	}
	return 0, false
}

// SelectedArrow returns the selected arrow, if an arrow is selected.
func (d *Document) SelectedArrow() (ArrowID, bool) {
	for _, a := range d.arrows {
		if a.selected {
			return a.ID, true
		}
	}
	return 0, false
}

// SelectionCount returns how many entities carry the selected flag. The
// editor keeps this at zero or one.
func (d *Document) SelectionCount() int {
	count := 0
	for _, n := range d.nodes {
		if n.selected {
			count++
		}
	}
	for _, a := range d.arrows {
		if a.selected {
			count++
		}
	}
	return count
}

// =============================================================================
// Whole-document operations
// =============================================================================

// Replace swaps in the content of other in one step. other must not be used
// afterwards.
func (d *Document) Replace(other *Document) {
	*d = *other
	other.nodes, other.arrows = nil, nil
}
