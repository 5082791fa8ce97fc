package editor

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/conceptmap/pkg/cmap"
	"github.com/matzehuels/conceptmap/pkg/fonts"
	"github.com/matzehuels/conceptmap/pkg/geom"
)

// Defaults for the interaction parameters.
const (
	DefaultZoomStep = 1.15
	DefaultNewNodeX = 20.0
	DefaultNewNodeY = 20.0
)

// Button is a pointer button.
type Button int

const (
	// ButtonPrimary selects and drags.
	ButtonPrimary Button = iota
	// ButtonSecondary draws arrows.
	ButtonSecondary
)

// Cursor is the pointer affordance the shell should display.
type Cursor int

const (
	// CursorDefault is the normal pointer.
	CursorDefault Cursor = iota
	// CursorLink signals that an arrow source is picked and the next
	// secondary click on a node completes the arrow.
	CursorLink
)

// Selection is the selected entity. At most one of Node and Arrow is
// non-zero.
type Selection struct {
	Node  cmap.NodeID
	Arrow cmap.ArrowID
}

// IsEmpty reports whether nothing is selected.
func (s Selection) IsEmpty() bool { return s.Node == 0 && s.Arrow == 0 }

// Drag is an in-progress node drag. Offset is the pointer position relative
// to the node's top-left corner when the drag began, in document space.
type Drag struct {
	Node   cmap.NodeID
	Offset geom.Point
}

// State is the transient interaction state. It is owned by a Controller and
// never stored in the document.
type State struct {
	Selection     Selection
	Drag          *Drag
	PendingSource cmap.NodeID // arrow source awaiting a target, 0 if none
	Editing       cmap.NodeID // node whose label is being edited, 0 if none
	Zoom          float64
}

// Overlay describes the inline text entry the shell must show while a node
// label is being edited. The rectangle is in screen pixels and exactly
// covers the node at the current zoom.
type Overlay struct {
	Node       cmap.NodeID
	X, Y, W, H int
	FontSize   float64
	Text       string
	SelectAll  bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger used for gesture tracing at debug level.
func WithLogger(l *log.Logger) Option { return func(c *Controller) { c.logger = l } }

// WithTolerance sets the arrow hit tolerance in document units.
func WithTolerance(tol float64) Option { return func(c *Controller) { c.tolerance = tol } }

// WithZoomStep sets the factor applied by ZoomIn and ZoomOut.
func WithZoomStep(step float64) Option { return func(c *Controller) { c.zoomStep = step } }

// WithNewNodeAt sets where toolbar and double-click creation place nodes.
func WithNewNodeAt(x, y float64) Option {
	return func(c *Controller) { c.newNodeAt = geom.Pt(x, y) }
}

// WithFontSize sets the font size reported in the edit overlay.
func WithFontSize(size float64) Option { return func(c *Controller) { c.fontSize = size } }

// Controller turns raw pointer, keyboard and toolbar events into document
// mutations and transient interaction state.
//
// Every handler runs to completion and leaves the document consistent. A
// Controller is meant to be driven from a single event loop and is not safe
// for concurrent use.
type Controller struct {
	doc   *cmap.Document
	state State

	logger    *log.Logger
	tolerance float64
	zoomStep  float64
	newNodeAt geom.Point
	fontSize  float64
	revision  uint64
}

// New creates a controller over doc at zoom 1.0.
func New(doc *cmap.Document, opts ...Option) *Controller {
	c := &Controller{
		doc:       doc,
		state:     State{Zoom: 1},
		tolerance: cmap.DefaultHitTolerance,
		zoomStep:  DefaultZoomStep,
		newNodeAt: geom.Pt(DefaultNewNodeX, DefaultNewNodeY),
		fontSize:  fonts.DefaultSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.New(io.Discard)
	}
	return c
}

// Document returns the document being edited.
func (c *Controller) Document() *cmap.Document { return c.doc }

// State returns a copy of the interaction state.
func (c *Controller) State() State {
	s := c.state
	if s.Drag != nil {
		d := *s.Drag
		s.Drag = &d
	}
	return s
}

// Zoom returns the current zoom factor.
func (c *Controller) Zoom() float64 { return c.state.Zoom }

// Revision increases every time the document or the visible state changes.
// Shells repaint when it moves.
func (c *Controller) Revision() uint64 { return c.revision }

// Cursor returns the pointer affordance for the current state.
func (c *Controller) Cursor() Cursor {
	if c.state.PendingSource != 0 {
		return CursorLink
	}
	return CursorDefault
}

// SetDocument swaps the content of doc into the edited document, as after a
// successful load. The pointer returned by [Controller.Document] stays valid
// and doc must not be used afterwards. Selection, drag, pending arrow and
// edit are reset; zoom is kept.
func (c *Controller) SetDocument(doc *cmap.Document) {
	c.doc.Replace(doc)
	c.state = State{Zoom: c.state.Zoom}
	c.doc.ClearSelection()
	c.touch()
}

// ToDocument maps a screen position to document space.
func (c *Controller) ToDocument(screen geom.Point) geom.Point {
	return screen.Div(c.state.Zoom)
}

func (c *Controller) touch() { c.revision++ }
