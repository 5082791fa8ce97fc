package editor

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/conceptmap/pkg/cmap"
	"github.com/matzehuels/conceptmap/pkg/fonts"
	"github.com/matzehuels/conceptmap/pkg/geom"
)

// Every label "xx" is 32x26 with these metrics.
var testMetrics = fonts.Fixed{CharWidth: 7, Height: 14}

// fixture lays out a at (0,0), b at (200,0) and an arrow a→b whose segment
// runs along y=13 from x=32 to x=200.
func fixture(t *testing.T, opts ...Option) (*Controller, cmap.NodeID, cmap.NodeID, cmap.ArrowID) {
	t.Helper()
	doc := cmap.New(testMetrics)
	a := doc.AddNodeWithText(cmap.KindConcept, 0, 0, "aa")
	b := doc.AddNodeWithText(cmap.KindConcept, 200, 0, "bb")
	arrow, _ := doc.AddArrow(a, b)
	return New(doc, opts...), a, b, arrow
}

func assertExclusive(t *testing.T, c *Controller) {
	t.Helper()
	if n := c.Document().SelectionCount(); n > 1 {
		t.Fatalf("%d entities selected, want at most 1", n)
	}
}

func TestPrimaryDownSelectsArrowBeforeNode(t *testing.T) {
	c, a, _, arrow := fixture(t)
	c.PointerDown(ButtonPrimary, geom.Pt(10, 10))
	c.DoubleClick(geom.Pt(10, 10))

	c.PointerDown(ButtonPrimary, geom.Pt(100, 15))
	assertExclusive(t, c)

	s := c.State()
	if s.Selection.Arrow != arrow || s.Selection.Node != 0 {
		t.Errorf("Selection = %+v, want arrow %v", s.Selection, arrow)
	}
	if s.Editing != 0 {
		t.Error("selecting an arrow should close the label editor")
	}
	if id, ok := c.Document().SelectedArrow(); !ok || id != arrow {
		t.Errorf("document SelectedArrow = %v, %v", id, ok)
	}
	if _, ok := c.Document().SelectedNode(); ok {
		t.Errorf("node %v still flagged selected", a)
	}
}

func TestPrimaryDownOnNodeStartsDrag(t *testing.T) {
	c, a, _, _ := fixture(t)
	c.PointerDown(ButtonPrimary, geom.Pt(10, 5))

	s := c.State()
	if s.Selection.Node != a {
		t.Fatalf("Selection = %+v, want node %v", s.Selection, a)
	}
	if s.Drag == nil || s.Drag.Node != a || s.Drag.Offset != geom.Pt(10, 5) {
		t.Fatalf("Drag = %+v, want node %v offset (10,5)", s.Drag, a)
	}

	c.PointerMove(geom.Pt(60, 105))
	n, _ := c.Document().Node(a)
	if n.X != 50 || n.Y != 100 {
		t.Errorf("node at (%v,%v) after drag, want (50,100)", n.X, n.Y)
	}

	c.PointerUp()
	if c.State().Drag != nil {
		t.Error("PointerUp should end the drag")
	}
	c.PointerMove(geom.Pt(500, 500))
	if n.X != 50 || n.Y != 100 {
		t.Errorf("node moved after PointerUp: (%v,%v)", n.X, n.Y)
	}
}

func TestPrimaryDownOnEmptyClears(t *testing.T) {
	c, a, _, _ := fixture(t)
	c.PointerDown(ButtonPrimary, geom.Pt(5, 5))
	c.PointerUp()
	c.DoubleClick(geom.Pt(5, 5))

	c.PointerDown(ButtonPrimary, geom.Pt(500, 500))
	s := c.State()
	if !s.Selection.IsEmpty() || s.Drag != nil || s.Editing != 0 {
		t.Errorf("state after empty click = %+v", s)
	}
	if c.Document().SelectionCount() != 0 {
		t.Errorf("node %v still selected", a)
	}
}

func TestDragUsesZoom(t *testing.T) {
	c, a, _, _ := fixture(t)
	c.ZoomIn()
	z := c.Zoom()

	c.PointerDown(ButtonPrimary, geom.Pt(10*z, 10*z))
	c.PointerMove(geom.Pt(110*z, 60*z))

	n, _ := c.Document().Node(a)
	if !near(n.X, 100) || !near(n.Y, 50) {
		t.Errorf("node at (%v,%v), want (100,50)", n.X, n.Y)
	}
}

func TestDragAbandonsEdit(t *testing.T) {
	c, a, _, _ := fixture(t)
	c.PointerDown(ButtonPrimary, geom.Pt(5, 5))
	c.DoubleClick(geom.Pt(5, 5))
	if c.State().Editing != a {
		t.Fatalf("Editing = %v, want %v", c.State().Editing, a)
	}

	c.PointerMove(geom.Pt(6, 6))
	if c.State().Editing != 0 {
		t.Error("moving a node should close the editor")
	}
	if c.CommitEdit("ignored") {
		t.Error("CommitEdit after abandon should report false")
	}
	n, _ := c.Document().Node(a)
	if n.Text() != "aa" {
		t.Errorf("text = %q, want unchanged %q", n.Text(), "aa")
	}
}

func TestSecondaryClickLinking(t *testing.T) {
	doc := cmap.New(testMetrics)
	a := doc.AddNodeWithText(cmap.KindConcept, 0, 0, "aa")
	b := doc.AddNodeWithText(cmap.KindText, 0, 100, "bb")
	c := New(doc)

	c.PointerDown(ButtonSecondary, geom.Pt(5, 5))
	if c.State().PendingSource != a || c.Cursor() != CursorLink {
		t.Fatalf("after first click: pending %v cursor %v", c.State().PendingSource, c.Cursor())
	}

	c.PointerDown(ButtonSecondary, geom.Pt(5, 5))
	if doc.ArrowCount() != 0 {
		t.Error("second click on the same node must not create an arrow")
	}
	if c.State().PendingSource != a {
		t.Errorf("pending = %v, want %v", c.State().PendingSource, a)
	}

	c.PointerDown(ButtonSecondary, geom.Pt(5, 105))
	if doc.ArrowCount() != 1 {
		t.Fatalf("ArrowCount = %d, want 1", doc.ArrowCount())
	}
	arrow := doc.Arrows()[0]
	if arrow.From != a || arrow.To != b {
		t.Errorf("arrow = %v→%v, want %v→%v", arrow.From, arrow.To, a, b)
	}
	if c.State().PendingSource != 0 || c.Cursor() != CursorDefault {
		t.Errorf("after link: pending %v cursor %v", c.State().PendingSource, c.Cursor())
	}
}

func TestSecondaryClickEmptyCancels(t *testing.T) {
	c, a, _, _ := fixture(t)
	c.PointerDown(ButtonSecondary, geom.Pt(5, 5))
	if c.State().PendingSource != a {
		t.Fatal("source not picked")
	}

	before := c.Document().ArrowCount()
	c.PointerDown(ButtonSecondary, geom.Pt(500, 500))
	if c.State().PendingSource != 0 || c.Cursor() != CursorDefault {
		t.Error("click on empty canvas should cancel the pending arrow")
	}

	c.PointerDown(ButtonSecondary, geom.Pt(500, 500))
	if c.Document().ArrowCount() != before {
		t.Error("linking gesture on empty canvas must be a no-op")
	}
}

func TestDoubleClickEditsNode(t *testing.T) {
	c, _, b, _ := fixture(t, WithFontSize(14))
	c.ZoomIn()
	z := c.Zoom()

	c.DoubleClick(geom.Pt(210*z, 10*z))
	o, ok := c.Overlay()
	if !ok {
		t.Fatal("Overlay() ok = false")
	}
	want := Overlay{
		Node: b, X: int(200 * z), Y: 0, W: int(32 * z), H: int(26 * z),
		FontSize: 14, Text: "bb", SelectAll: true,
	}
	if o != want {
		t.Errorf("Overlay = %+v, want %+v", o, want)
	}

	if !c.CommitEdit("a much longer label") {
		t.Fatal("CommitEdit = false")
	}
	n, _ := c.Document().Node(b)
	if n.Text() != "a much longer label" || n.Width() != testMetrics.Advance("a much longer label")+cmap.PadX {
		t.Errorf("after commit: %q width %v", n.Text(), n.Width())
	}
	if _, ok := c.Overlay(); ok {
		t.Error("overlay should be closed after commit")
	}
}

func TestCommitEmptyText(t *testing.T) {
	c, a, _, _ := fixture(t)
	c.DoubleClick(geom.Pt(5, 5))
	c.CommitEdit("")

	n, _ := c.Document().Node(a)
	if n.Text() != "" || n.Width() != cmap.PadX || n.Height() != testMetrics.Height+cmap.PadY {
		t.Errorf("empty label: %q %vx%v", n.Text(), n.Width(), n.Height())
	}
}

func TestDoubleClickEmptyCreatesConcept(t *testing.T) {
	c, _, _, _ := fixture(t)
	c.DoubleClick(geom.Pt(900, 900))

	nodes := c.Document().Nodes()
	n := nodes[len(nodes)-1]
	if n.Kind != cmap.KindConcept || n.X != DefaultNewNodeX || n.Y != DefaultNewNodeY {
		t.Errorf("new node = %v at (%v,%v)", n.Kind, n.X, n.Y)
	}
	if n.Text() != "Node 3" {
		t.Errorf("new node text = %q, want %q", n.Text(), "Node 3")
	}
}

func TestZoomCancelsEdit(t *testing.T) {
	for _, zoom := range []func(*Controller){(*Controller).ZoomIn, (*Controller).ZoomOut} {
		c, _, _, _ := fixture(t)
		c.DoubleClick(geom.Pt(5, 5))
		zoom(c)
		if c.State().Editing != 0 {
			t.Error("zoom should close the editor")
		}
	}
}

func TestZoomUnbounded(t *testing.T) {
	c := New(cmap.New(testMetrics))
	for range 100 {
		c.ZoomOut()
	}
	if c.Zoom() <= 0 {
		t.Fatalf("Zoom = %v, want > 0", c.Zoom())
	}
	for range 200 {
		c.ZoomIn()
	}
	if !near(c.Zoom(), pow(DefaultZoomStep, 100)) {
		t.Errorf("Zoom = %v, want %v", c.Zoom(), pow(DefaultZoomStep, 100))
	}
}

func TestDeleteSelected(t *testing.T) {
	c, a, b, arrow := fixture(t)

	if c.DeleteSelected() {
		t.Error("DeleteSelected with no selection should be a no-op")
	}

	c.PointerDown(ButtonPrimary, geom.Pt(100, 13))
	if !c.DeleteSelected() {
		t.Fatal("DeleteSelected(arrow) = false")
	}
	if _, ok := c.Document().Arrow(arrow); ok || c.Document().NodeCount() != 2 {
		t.Error("arrow deletion should leave both nodes")
	}

	c.Document().AddArrow(a, b)
	c.PointerDown(ButtonSecondary, geom.Pt(5, 5))
	c.PointerDown(ButtonPrimary, geom.Pt(5, 5))
	if !c.DeleteSelected() {
		t.Fatal("DeleteSelected(node) = false")
	}
	if c.Document().NodeCount() != 1 || c.Document().ArrowCount() != 0 {
		t.Errorf("after node delete: %d nodes %d arrows", c.Document().NodeCount(), c.Document().ArrowCount())
	}
	s := c.State()
	if s.PendingSource != 0 || s.Drag != nil || !s.Selection.IsEmpty() {
		t.Errorf("state references deleted node: %+v", s)
	}
}

func TestToolbarAdd(t *testing.T) {
	c := New(cmap.New(testMetrics), WithNewNodeAt(5, 7))
	first := c.AddConcept()
	text := c.AddText()

	n, _ := c.Document().Node(first)
	m, _ := c.Document().Node(text)
	if n.Text() != "Node 1" || m.Text() != "Text 1" || !m.IsText() {
		t.Errorf("labels %q %q", n.Text(), m.Text())
	}
	if n.X != 5 || n.Y != 7 {
		t.Errorf("position (%v,%v), want (5,7)", n.X, n.Y)
	}
}

func TestSetDocumentResetsState(t *testing.T) {
	c, _, _, _ := fixture(t)
	c.ZoomIn()
	c.PointerDown(ButtonPrimary, geom.Pt(5, 5))
	c.PointerDown(ButtonSecondary, geom.Pt(5, 5))
	rev := c.Revision()

	c.SetDocument(cmap.New(testMetrics))
	s := c.State()
	if !s.Selection.IsEmpty() || s.Drag != nil || s.PendingSource != 0 || s.Editing != 0 {
		t.Errorf("state not reset: %+v", s)
	}
	if !near(s.Zoom, DefaultZoomStep) {
		t.Errorf("zoom = %v, want kept %v", s.Zoom, DefaultZoomStep)
	}
	if c.Revision() <= rev {
		t.Error("SetDocument should bump the revision")
	}
}

func TestSetDocumentKeepsLivePointer(t *testing.T) {
	c, _, _, _ := fixture(t)
	live := c.Document()

	loaded := cmap.New(testMetrics)
	loaded.AddNodeWithText(cmap.KindText, 40, 40, "loaded")
	c.SetDocument(loaded)

	if c.Document() != live {
		t.Fatal("SetDocument swapped the document pointer")
	}
	if live.NodeCount() != 1 || live.ArrowCount() != 0 {
		t.Errorf("live document has %d nodes, %d arrows, want 1, 0", live.NodeCount(), live.ArrowCount())
	}
	if n := live.Nodes()[0]; n.Text() != "loaded" {
		t.Errorf("node text = %q, want %q", n.Text(), "loaded")
	}
}

func TestSelectionExclusiveAcrossGestures(t *testing.T) {
	c, _, _, _ := fixture(t)
	points := []geom.Point{
		geom.Pt(5, 5), geom.Pt(100, 13), geom.Pt(205, 5), geom.Pt(900, 900), geom.Pt(100, 14), geom.Pt(5, 5),
	}
	for _, p := range points {
		c.PointerDown(ButtonPrimary, p)
		c.PointerUp()
		assertExclusive(t, c)
	}
}

func TestLoggerTracesGestures(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	c, _, _, _ := fixture(t, WithLogger(logger))

	c.PointerDown(ButtonPrimary, geom.Pt(5, 5))
	if !bytes.Contains(buf.Bytes(), []byte("select node")) {
		t.Errorf("log output %q missing gesture trace", buf.String())
	}
}

func near(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= 1e-9*max(1, abs(a), abs(b))
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func pow(x float64, n int) float64 {
	r := 1.0
	for range n {
		r *= x
	}
	return r
}
