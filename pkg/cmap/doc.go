// Package cmap provides the concept map document model.
//
// A [Document] holds two kinds of nodes and the directed arrows between
// them:
//
//   - Concept nodes ([KindConcept]): rounded boxes naming a concept.
//   - Linking nodes ([KindText]): unboxed phrases that sit on arrows.
//
// A proposition is concept → linking phrase → concept, but the model does
// not enforce that grammar; invalid chains are simply skipped by the triple
// exporter in pkg/io.
//
// # Identity and ownership
//
// Nodes and arrows get stable IDs from the document arena. Arrows refer to
// nodes by [NodeID], so deleting a node is a scan that drops every arrow
// carrying that ID:
//
//	doc := cmap.New(fonts.Fixed{CharWidth: 7, Height: 14})
//	a := doc.AddNode(cmap.KindConcept, 0, 0)   // "Node 1"
//	m := doc.AddNode(cmap.KindText, 100, 0)    // "Text 1"
//	doc.AddArrow(a, m)
//	doc.DeleteNode(m)                          // the arrow goes too
//
// # Geometry
//
// Node sizes come from a [fonts.Metrics] provider: text advance + [PadX]
// by line height + [PadY]. Arrow endpoints are not stored; [Document.Endpoints]
// recomputes them from the current node rectangles every time.
//
// # Selection
//
// Selection is a flag on each entity, but [Document.SelectNode],
// [Document.SelectArrow] and [Document.ClearSelection] always rewrite every
// flag, so at most one entity is selected.
package cmap
