package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/conceptmap/pkg/cmap"
	"github.com/matzehuels/conceptmap/pkg/config"
	"github.com/matzehuels/conceptmap/pkg/editor"
	"github.com/matzehuels/conceptmap/pkg/errors"
	cmio "github.com/matzehuels/conceptmap/pkg/io"
)

// Screen layout of the editor: one header row, the canvas, two footer rows.
const (
	headerRows = 1
	footerRows = 2
)

// doubleClickWindow is the longest gap between two presses on the same
// cell that still counts as a double click.
const doubleClickWindow = 400 * time.Millisecond

// editCommand creates the edit command for the terminal editor.
func (c *CLI) editCommand() *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "edit [file]",
		Short: "Edit a concept map in the terminal",
		Long: `Edit a concept map in an interactive terminal editor.

Mouse:
  left click        select a node or arrow, drag to move a node
  double click      edit a label, or add a concept on empty canvas
  right click       pick an arrow source, then right click the target

Keys:
  c / t             add a concept / linking phrase
  x, delete         delete the selection
  enter             edit the selected node's label
  + / -             zoom in / out
  ctrl+s            save
  ctrl+r            reload the file, dropping unsaved changes
  q                 quit

While a label is being edited, typing replaces the selected text, and
enter or esc applies it. Clicking anywhere else applies it too.

A missing file is created on first save.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, closeLog, err := editorLogger(logFile)
			if err != nil {
				return err
			}
			defer closeLog()
			return c.runEdit(cmd.Context(), args[0], logger)
		},
	}

	cmd.Flags().StringVar(&logFile, "log", "", "write debug logs to this file")

	return cmd
}

// editorLogger returns a debug logger writing to path. The terminal is owned
// by the editor, so without a path nothing is logged.
func editorLogger(path string) (*log.Logger, func(), error) {
	if path == "" {
		return nil, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeIO, err, "open log file")
	}
	return newLogger(f, log.DebugLevel), func() { f.Close() }, nil
}

func (c *CLI) runEdit(ctx context.Context, path string, logger *log.Logger) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}

	doc, err := c.loadDocument(ctx, path)
	switch {
	case errors.Is(err, errors.ErrCodeFileNotFound):
		doc = cmap.New(cellMetrics)
	case err != nil:
		return err
	default:
		doc.SetMetrics(cellMetrics)
	}

	m, err := newEditModel(ctx, c, path, doc, cfg, logger)
	if err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("editor: %w", err)
	}
	if fm, ok := final.(editModel); ok && fm.err != nil {
		return fm.err
	}
	return nil
}

// =============================================================================
// editModel - bubbletea shell around editor.Controller
// =============================================================================

// editModel adapts terminal events to controller calls. Every controller
// call happens on bubbletea's update loop.
type editModel struct {
	ctx  context.Context
	cli  *CLI
	path string
	ctrl *editor.Controller

	width, height int

	// Label edit buffer for the open overlay.
	editing   cmap.NodeID
	buffer    []rune
	selectAll bool

	lastPress     time.Time
	lastPressCell [2]int

	saved       []byte
	status      string
	confirmQuit bool
	err         error

	now func() time.Time
}

func newEditModel(ctx context.Context, c *CLI, path string, doc *cmap.Document, cfg *config.Config, logger *log.Logger) (editModel, error) {
	saved, err := cmio.MarshalJSON(doc)
	if err != nil {
		return editModel{}, err
	}
	opts := []editor.Option{
		editor.WithTolerance(cfg.Editor.HitTolerance),
		editor.WithZoomStep(cfg.Editor.ZoomStep),
		editor.WithNewNodeAt(cfg.Editor.NewNodeX, cfg.Editor.NewNodeY),
		editor.WithFontSize(cfg.Font.Size),
	}
	if logger != nil {
		opts = append(opts, editor.WithLogger(logger))
	}
	return editModel{
		ctx:    ctx,
		cli:    c,
		path:   path,
		ctrl:   editor.New(doc, opts...),
		width:  80,
		height: 24,
		saved:  saved,
		now:    time.Now,
	}, nil
}

func (m editModel) Init() tea.Cmd {
	return nil
}

func (m editModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.MouseMsg:
		m = m.handleMouse(msg)
	case tea.KeyMsg:
		if m.editing != 0 {
			return m.handleEditKey(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

// =============================================================================
// Input
// =============================================================================

func (m editModel) handleMouse(msg tea.MouseMsg) editModel {
	x, y := msg.X, msg.Y-headerRows
	p := screenAt(x, y)

	switch msg.Action {
	case tea.MouseActionPress:
		m = m.commit()
		m.confirmQuit = false
		switch msg.Button {
		case tea.MouseButtonLeft:
			m.ctrl.PointerDown(editor.ButtonPrimary, p)
			now := m.now()
			cell := [2]int{x, y}
			if cell == m.lastPressCell && now.Sub(m.lastPress) <= doubleClickWindow {
				m.ctrl.DoubleClick(p)
				m.lastPress = time.Time{}
			} else {
				m.lastPress, m.lastPressCell = now, cell
			}
		case tea.MouseButtonRight:
			m.ctrl.PointerDown(editor.ButtonSecondary, p)
		}
	case tea.MouseActionMotion:
		m.ctrl.PointerMove(p)
	case tea.MouseActionRelease:
		m.ctrl.PointerUp()
	}
	return m.syncOverlay()
}

func (m editModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key != "q" {
		m.confirmQuit = false
	}

	switch key {
	case "ctrl+c":
		return m, tea.Quit
	case "q":
		if m.dirty() && !m.confirmQuit {
			m.confirmQuit = true
			m.status = "Unsaved changes: ctrl+s to save, q again to quit"
			return m, nil
		}
		return m, tea.Quit
	case "ctrl+s":
		m = m.save()
	case "ctrl+r":
		m = m.reload()
	case "c":
		m.ctrl.AddConcept()
	case "t":
		m.ctrl.AddText()
	case "x", "delete", "backspace":
		m.ctrl.DeleteSelected()
	case "+", "=":
		m.ctrl.ZoomIn()
	case "-", "_":
		m.ctrl.ZoomOut()
	case "enter":
		if id, ok := m.ctrl.Document().SelectedNode(); ok {
			n, _ := m.ctrl.Document().Node(id)
			m.ctrl.DoubleClick(n.Center().Scale(m.ctrl.Zoom()))
		}
	}
	return m.syncOverlay(), nil
}

func (m editModel) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m.commit(), tea.Quit
	case tea.KeyEnter, tea.KeyEscape:
		return m.commit(), nil
	case tea.KeyBackspace:
		if m.selectAll {
			m.buffer = nil
		} else if len(m.buffer) > 0 {
			m.buffer = m.buffer[:len(m.buffer)-1]
		}
		m.selectAll = false
	case tea.KeySpace, tea.KeyRunes:
		if m.selectAll {
			m.buffer = nil
			m.selectAll = false
		}
		if msg.Type == tea.KeySpace {
			m.buffer = append(m.buffer, ' ')
		} else {
			m.buffer = append(m.buffer, msg.Runes...)
		}
	}
	return m, nil
}

// syncOverlay picks up an edit overlay the controller opened or closed.
func (m editModel) syncOverlay() editModel {
	ov, ok := m.ctrl.Overlay()
	if !ok {
		m.editing, m.buffer, m.selectAll = 0, nil, false
		return m
	}
	if ov.Node != m.editing {
		m.editing = ov.Node
		m.buffer = []rune(ov.Text)
		m.selectAll = ov.SelectAll
	}
	return m
}

// commit applies the edit buffer, if an edit is open.
func (m editModel) commit() editModel {
	if m.editing == 0 {
		return m
	}
	m.ctrl.CommitEdit(string(m.buffer))
	m.editing, m.buffer, m.selectAll = 0, nil, false
	return m
}

func (m editModel) save() editModel {
	doc := m.ctrl.Document()
	data, err := cmio.MarshalJSON(doc)
	if err == nil {
		err = m.cli.saveDocument(m.ctx, doc, m.path)
	}
	if err != nil {
		m.status = "Save failed: " + errors.UserMessage(err)
		return m
	}
	m.saved = data
	m.status = "Saved " + m.path
	return m
}

// reload replaces the edited content with the file on disk. On error the
// document is left as it was.
func (m editModel) reload() editModel {
	doc, err := m.cli.loadDocument(m.ctx, m.path)
	if err != nil {
		m.status = "Reload failed: " + errors.UserMessage(err)
		return m
	}
	doc.SetMetrics(cellMetrics)
	saved, err := cmio.MarshalJSON(doc)
	if err != nil {
		m.status = "Reload failed: " + errors.UserMessage(err)
		return m
	}
	m.ctrl.SetDocument(doc)
	m.saved = saved
	m.status = "Reloaded " + m.path
	return m
}

// dirty reports whether the document differs from the last save.
func (m editModel) dirty() bool {
	data, err := cmio.MarshalJSON(m.ctrl.Document())
	return err != nil || !bytes.Equal(data, m.saved)
}

// =============================================================================
// View
// =============================================================================

func (m editModel) View() string {
	var b strings.Builder

	title := StyleTitle.Render(appName) + " " + StyleValue.Render(m.path)
	if m.dirty() {
		title += StyleWarning.Render(" *")
	}
	b.WriteString(title)
	b.WriteString("\n")

	cv := newCanvas(m.width, m.height-headerRows-footerRows)
	drawScene(cv, m.ctrl, string(m.buffer))
	b.WriteString(cv.String())
	b.WriteString("\n")

	doc := m.ctrl.Document()
	parts := []string{
		fmt.Sprintf("zoom %.0f%%", m.ctrl.Zoom()*100),
		fmt.Sprintf("%d nodes · %d arrows", doc.NodeCount(), doc.ArrowCount()),
	}
	line := StyleDim.Render(strings.Join(parts, " · "))
	switch {
	case m.editing != 0:
		line += "  " + StyleHighlight.Render("editing: enter to apply")
	case m.ctrl.Cursor() == editor.CursorLink:
		line += "  " + StyleWarning.Render("linking: right click the target")
	}
	if m.status != "" {
		line += "  " + m.status
	}
	b.WriteString(line)
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("c concept  t text  x delete  enter label  +/- zoom  ctrl+s save  ctrl+r reload  q quit"))

	return b.String()
}
