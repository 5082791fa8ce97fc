package cli

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/conceptmap/pkg/cmap"
	"github.com/matzehuels/conceptmap/pkg/editor"
	"github.com/matzehuels/conceptmap/pkg/fonts"
	"github.com/matzehuels/conceptmap/pkg/geom"
)

// A terminal cell covers cellW x cellH screen units. Labels are measured
// one rune per cell horizontally and tall enough that a node spans three
// rows: border, text, border.
const (
	cellW = 6.0
	cellH = 12.0
)

// cellMetrics sizes node labels for the terminal editor.
var cellMetrics = fonts.Fixed{CharWidth: cellW, Height: 2 * cellH}

// cellLimit bounds cell indices so that scaled coordinates at extreme zoom
// still convert to int.
const cellLimit = 1 << 30

// cellStyle is the paint of one cell.
type cellStyle int

const (
	paintNone cellStyle = iota
	paintArrow
	paintConcept
	paintText
	paintSelected
	paintPending
	paintEditing
)

var cellStyles = map[cellStyle]lipgloss.Style{
	paintNone:     lipgloss.NewStyle(),
	paintArrow:    lipgloss.NewStyle().Foreground(colorGray),
	paintConcept:  lipgloss.NewStyle().Foreground(colorWhite),
	paintText:     lipgloss.NewStyle().Foreground(colorCyan).Italic(true),
	paintSelected: lipgloss.NewStyle().Foreground(colorBlue).Bold(true),
	paintPending:  lipgloss.NewStyle().Foreground(colorYellow).Bold(true),
	paintEditing:  lipgloss.NewStyle().Reverse(true),
}

// =============================================================================
// Canvas
// =============================================================================

// canvas is a grid of styled runes.
type canvas struct {
	w, h   int
	runes  [][]rune
	styles [][]cellStyle
}

func newCanvas(w, h int) *canvas {
	c := &canvas{w: max(w, 0), h: max(h, 0)}
	c.runes = make([][]rune, c.h)
	c.styles = make([][]cellStyle, c.h)
	for y := range c.runes {
		c.runes[y] = []rune(strings.Repeat(" ", c.w))
		c.styles[y] = make([]cellStyle, c.w)
	}
	return c
}

func (c *canvas) set(x, y int, r rune, s cellStyle) {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return
	}
	c.runes[y][x] = r
	c.styles[y][x] = s
}

// text writes s starting at (x, y), clipped to limit runes.
func (c *canvas) text(x, y int, s string, limit int, st cellStyle) {
	for i, r := range []rune(s) {
		if i >= limit {
			return
		}
		c.set(x+i, y, r, st)
	}
}

// String renders the grid row by row, styling runs of equal paint.
func (c *canvas) String() string {
	var b strings.Builder
	for y := range c.runes {
		if y > 0 {
			b.WriteByte('\n')
		}
		start := 0
		for x := 1; x <= c.w; x++ {
			if x < c.w && c.styles[y][x] == c.styles[y][start] {
				continue
			}
			run := string(c.runes[y][start:x])
			if st := c.styles[y][start]; st == paintNone {
				b.WriteString(run)
			} else {
				b.WriteString(cellStyles[st].Render(run))
			}
			start = x
		}
	}
	return b.String()
}

// plain returns the grid without styling, for tests.
func (c *canvas) plain() string {
	rows := make([]string, c.h)
	for y, r := range c.runes {
		rows[y] = strings.TrimRight(string(r), " ")
	}
	return strings.Join(rows, "\n")
}

// =============================================================================
// Scene
// =============================================================================

// cellRect is an inclusive cell range.
type cellRect struct{ x0, y0, x1, y1 int }

// toCells maps a screen rectangle to the cells it covers.
func toCells(r geom.Rect) cellRect {
	cr := cellRect{
		x0: cellIndex(r.X / cellW),
		y0: cellIndex(r.Y / cellH),
		x1: cellIndex(math.Ceil(r.Right()/cellW)) - 1,
		y1: cellIndex(math.Ceil(r.Bottom()/cellH)) - 1,
	}
	cr.x1 = max(cr.x1, cr.x0)
	cr.y1 = max(cr.y1, cr.y0)
	return cr
}

// clip returns the part of r that lies on the canvas.
func (r cellRect) clip(cv *canvas) cellRect {
	return cellRect{
		x0: max(r.x0, 0), y0: max(r.y0, 0),
		x1: min(r.x1, cv.w-1), y1: min(r.y1, cv.h-1),
	}
}

// cellIndex floors v and clamps it to ±cellLimit.
func cellIndex(v float64) int {
	return int(math.Max(-cellLimit, math.Min(cellLimit, math.Floor(v))))
}

// cellAt maps a screen point to its cell.
func cellAt(p geom.Point) (int, int) {
	return cellIndex(p.X / cellW), cellIndex(p.Y / cellH)
}

// screenAt returns the screen point at the center of a cell.
func screenAt(x, y int) geom.Point {
	return geom.Pt((float64(x)+0.5)*cellW, (float64(y)+0.5)*cellH)
}

// drawScene paints the controller's document: arrows first, then nodes in
// z-order, then the edit overlay.
func drawScene(cv *canvas, ctrl *editor.Controller, buffer string) {
	doc := ctrl.Document()
	state := ctrl.State()
	zoom := ctrl.Zoom()

	for _, a := range doc.Arrows() {
		start, end, ok := doc.Endpoints(a)
		if !ok {
			continue
		}
		st := paintArrow
		if a.Selected() {
			st = paintSelected
		}
		drawArrow(cv, start.Scale(zoom), end.Scale(zoom), st)
	}

	for _, n := range doc.Nodes() {
		st := paintConcept
		switch {
		case n.ID == state.PendingSource:
			st = paintPending
		case n.Selected():
			st = paintSelected
		case n.IsText():
			st = paintText
		}
		drawNode(cv, n, toCells(n.Rect().Scale(zoom)), st)
	}

	if ov, ok := ctrl.Overlay(); ok {
		r := toCells(geom.Rect{X: float64(ov.X), Y: float64(ov.Y), W: float64(ov.W), H: float64(ov.H)})
		row := (r.y0 + r.y1) / 2
		width := r.x1 - r.x0 + 1
		vis := r.clip(cv)
		for x := vis.x0; x <= vis.x1; x++ {
			cv.set(x, row, ' ', paintEditing)
		}
		runes := []rune(buffer + "▏")
		if len(runes) > width {
			runes = runes[len(runes)-width:]
		}
		cv.text(r.x0, row, string(runes), width, paintEditing)
	}
}

// drawNode paints n over the cells r. Only the visible part of r is
// visited.
func drawNode(cv *canvas, n *cmap.Node, r cellRect, st cellStyle) {
	vis := r.clip(cv)
	for y := vis.y0; y <= vis.y1; y++ {
		for x := vis.x0; x <= vis.x1; x++ {
			cv.set(x, y, ' ', st)
		}
	}
	if n.IsConcept() && r.y1-r.y0 >= 2 && r.x1-r.x0 >= 2 {
		for x := max(r.x0+1, vis.x0); x < min(r.x1, vis.x1+1); x++ {
			cv.set(x, r.y0, '─', st)
			cv.set(x, r.y1, '─', st)
		}
		for y := max(r.y0+1, vis.y0); y < min(r.y1, vis.y1+1); y++ {
			cv.set(r.x0, y, '│', st)
			cv.set(r.x1, y, '│', st)
		}
		cv.set(r.x0, r.y0, '╭', st)
		cv.set(r.x1, r.y0, '╮', st)
		cv.set(r.x0, r.y1, '╰', st)
		cv.set(r.x1, r.y1, '╯', st)
	}

	inner := r.x1 - r.x0 - 1
	label := []rune(n.Text())
	x := r.x0 + 1
	if pad := inner - len(label); pad > 0 {
		x += pad / 2
	}
	cv.text(x, (r.y0+r.y1)/2, string(label), max(inner, 0), st)
}

// drawArrow rasterizes the segment with Bresenham's algorithm and marks the
// last cell with a head pointing along the dominant direction. The segment
// is first clipped to the canvas; the head is drawn only when the end is
// on it.
func drawArrow(cv *canvas, start, end geom.Point, st cellStyle) {
	box := geom.Rect{W: float64(cv.w) * cellW, H: float64(cv.h) * cellH}
	a, b, ok := clipSegment(start, end, box)
	if !ok {
		return
	}
	x0, y0 := cellAt(a)
	x1, y1 := cellAt(b)
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	e := dx + dy
	for {
		cv.set(x0, y0, '·', st)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
	if b == end {
		cv.set(x1, y1, headRune(start, end), st)
	}
}

// clipSegment returns the part of segment ab inside box, using the
// Liang-Barsky parametrization. ok is false when nothing is inside.
func clipSegment(a, b geom.Point, box geom.Rect) (geom.Point, geom.Point, bool) {
	d := b.Sub(a)
	t0, t1 := 0.0, 1.0
	edges := [4][2]float64{
		{-d.X, a.X - box.X},
		{d.X, box.Right() - a.X},
		{-d.Y, a.Y - box.Y},
		{d.Y, box.Bottom() - a.Y},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return a, b, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return a, b, false
			}
			t0 = max(t0, t)
		} else {
			if t < t0 {
				return a, b, false
			}
			t1 = min(t1, t)
		}
	}
	ca, cb := a, b
	if t0 > 0 {
		ca = a.Add(d.Scale(t0))
	}
	if t1 < 1 {
		cb = a.Add(d.Scale(t1))
	}
	return ca, cb, true
}

func headRune(start, end geom.Point) rune {
	// Cells are twice as tall as wide, so compare in cell units.
	dx := (end.X - start.X) / cellW
	dy := (end.Y - start.Y) / cellH
	switch {
	case math.Abs(dx) >= math.Abs(dy) && dx >= 0:
		return '▶'
	case math.Abs(dx) >= math.Abs(dy):
		return '◀'
	case dy > 0:
		return '▼'
	default:
		return '▲'
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
