package editor

import (
	"github.com/matzehuels/conceptmap/pkg/cmap"
	"github.com/matzehuels/conceptmap/pkg/geom"
)

// =============================================================================
// Pointer
// =============================================================================

// PointerDown handles a button press at a screen position.
func (c *Controller) PointerDown(button Button, screen geom.Point) {
	pos := c.ToDocument(screen)
	switch button {
	case ButtonPrimary:
		c.primaryDown(pos)
	case ButtonSecondary:
		c.secondaryDown(pos)
	}
}

// primaryDown selects the topmost arrow, else the topmost node (and starts
// dragging it), else clears everything.
func (c *Controller) primaryDown(pos geom.Point) {
	if id, ok := c.doc.HitArrow(pos, c.tolerance); ok {
		c.selectArrow(id)
		c.cancelEdit()
		c.logger.Debug("select arrow", "arrow", id)
		return
	}
	if id, ok := c.doc.HitNode(pos); ok {
		n, _ := c.doc.Node(id)
		c.selectNode(id)
		c.state.Drag = &Drag{Node: id, Offset: pos.Sub(geom.Pt(n.X, n.Y))}
		c.cancelEdit()
		c.logger.Debug("select node", "node", id)
		return
	}
	c.clearSelection()
	c.state.Drag = nil
	c.cancelEdit()
}

// secondaryDown drives the two-click arrow gesture: the first click on a
// node picks the source, a click on a different node creates the arrow and
// a click on empty canvas abandons the pending source.
func (c *Controller) secondaryDown(pos geom.Point) {
	id, hit := c.doc.HitNode(pos)
	pending := c.state.PendingSource

	switch {
	case hit && pending != 0 && pending != id:
		if arrow, ok := c.doc.AddArrow(pending, id); ok {
			c.logger.Debug("add arrow", "arrow", arrow, "from", pending, "to", id)
		}
		c.state.PendingSource = 0
		c.cancelEdit()
		c.touch()
	case hit:
		c.state.PendingSource = id
		c.logger.Debug("arrow source", "node", id)
		c.touch()
	case pending != 0:
		c.state.PendingSource = 0
		c.logger.Debug("arrow cancelled")
		c.touch()
	}
}

// PointerMove drags the grabbed node, if any. Moving a node abandons an
// open label edit without committing it.
func (c *Controller) PointerMove(screen geom.Point) {
	drag := c.state.Drag
	if drag == nil {
		return
	}
	p := c.ToDocument(screen).Sub(drag.Offset)
	if !c.doc.MoveNode(drag.Node, p.X, p.Y) {
		c.state.Drag = nil
		return
	}
	c.cancelEdit()
	c.touch()
}

// PointerUp ends any drag.
func (c *Controller) PointerUp() {
	c.state.Drag = nil
}

// DoubleClick opens the label editor on the topmost node under the pointer,
// or creates a concept node at the default position when the canvas is
// empty there.
func (c *Controller) DoubleClick(screen geom.Point) {
	pos := c.ToDocument(screen)
	if id, ok := c.doc.HitNode(pos); ok {
		c.state.Editing = id
		c.logger.Debug("edit node", "node", id)
		c.touch()
		return
	}
	c.addNode(cmap.KindConcept)
}

// =============================================================================
// Label editing
// =============================================================================

// Overlay returns the inline editor geometry while a label edit is open.
func (c *Controller) Overlay() (Overlay, bool) {
	if c.state.Editing == 0 {
		return Overlay{}, false
	}
	n, ok := c.doc.Node(c.state.Editing)
	if !ok {
		return Overlay{}, false
	}
	z := c.state.Zoom
	return Overlay{
		Node:      n.ID,
		X:         int(n.X * z),
		Y:         int(n.Y * z),
		W:         int(n.Width() * z),
		H:         int(n.Height() * z),
		FontSize:  c.fontSize,
		Text:      n.Text(),
		SelectAll: true,
	}, true
}

// CommitEdit applies text to the node being edited and closes the editor.
// Shells call it when the entry loses focus or fires its commit event;
// there is no separate cancel. It reports whether an edit was open.
func (c *Controller) CommitEdit(text string) bool {
	id := c.state.Editing
	if id == 0 {
		return false
	}
	c.state.Editing = 0
	c.doc.SetText(id, text)
	c.logger.Debug("commit label", "node", id, "text", text)
	c.touch()
	return true
}

// cancelEdit closes the editor without applying its text.
func (c *Controller) cancelEdit() {
	if c.state.Editing != 0 {
		c.state.Editing = 0
		c.touch()
	}
}

// =============================================================================
// Zoom
// =============================================================================

// ZoomIn multiplies the zoom by the zoom step. Zoom is unbounded.
func (c *Controller) ZoomIn() { c.setZoom(c.state.Zoom * c.zoomStep) }

// ZoomOut divides the zoom by the zoom step. Zoom is unbounded.
func (c *Controller) ZoomOut() { c.setZoom(c.state.Zoom / c.zoomStep) }

// setZoom changes the zoom and abandons any open edit, whose overlay would
// no longer line up with the node.
func (c *Controller) setZoom(z float64) {
	c.state.Zoom = z
	c.cancelEdit()
	c.touch()
}

// =============================================================================
// Toolbar
// =============================================================================

// AddConcept creates a concept node at the default position.
func (c *Controller) AddConcept() cmap.NodeID { return c.addNode(cmap.KindConcept) }

// AddText creates a linking-phrase node at the default position.
func (c *Controller) AddText() cmap.NodeID { return c.addNode(cmap.KindText) }

func (c *Controller) addNode(kind cmap.Kind) cmap.NodeID {
	id := c.doc.AddNode(kind, c.newNodeAt.X, c.newNodeAt.Y)
	c.logger.Debug("add node", "node", id, "kind", kind)
	c.touch()
	return id
}

// DeleteSelected deletes the selected node (with its arrows) or the
// selected arrow. It does nothing when nothing is selected.
func (c *Controller) DeleteSelected() bool {
	sel := c.state.Selection
	switch {
	case sel.Node != 0:
		c.doc.DeleteNode(sel.Node)
		c.forgetNode(sel.Node)
		c.logger.Debug("delete node", "node", sel.Node)
	case sel.Arrow != 0:
		c.doc.DeleteArrow(sel.Arrow)
		c.logger.Debug("delete arrow", "arrow", sel.Arrow)
	default:
		return false
	}
	c.state.Selection = Selection{}
	c.touch()
	return true
}

// forgetNode drops transient references to a deleted node.
func (c *Controller) forgetNode(id cmap.NodeID) {
	if c.state.PendingSource == id {
		c.state.PendingSource = 0
	}
	if c.state.Editing == id {
		c.state.Editing = 0
	}
	if c.state.Drag != nil && c.state.Drag.Node == id {
		c.state.Drag = nil
	}
}

// =============================================================================
// Selection
// =============================================================================

func (c *Controller) selectNode(id cmap.NodeID) {
	c.doc.SelectNode(id)
	c.state.Selection = Selection{Node: id}
	c.touch()
}

func (c *Controller) selectArrow(id cmap.ArrowID) {
	c.doc.SelectArrow(id)
	c.state.Selection = Selection{Arrow: id}
	c.touch()
}

func (c *Controller) clearSelection() {
	c.doc.ClearSelection()
	c.state.Selection = Selection{}
	c.touch()
}
