// Package scroller coordinates one window of columns of the grid: the
// header, the virtual row pane, scrollbars, the focus indicator, mouse
// sessions and the cell editor.
package scroller

import (
	"image"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/datagrid/internal/data"
	"github.com/charmbracelet/datagrid/internal/event"
	"github.com/charmbracelet/datagrid/internal/ui/column"
	"github.com/charmbracelet/datagrid/internal/ui/pane"
	"github.com/charmbracelet/datagrid/internal/ui/render"
	"github.com/charmbracelet/datagrid/internal/ui/selection"
	"github.com/charmbracelet/datagrid/internal/ui/styles"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/charmbracelet/ultraviolet/screen"
	"github.com/charmbracelet/x/ansi"
)

const (
	// DefaultClickTolerance is the distance the pointer may travel on a
	// header cell before a click turns into a column move.
	DefaultClickTolerance = 1
	// DefaultDoubleClickInterval is the longest delay between two clicks on
	// the same cell that still counts as a double click.
	DefaultDoubleClickInterval = 500 * time.Millisecond
	// DefaultWheelRows is the number of rows scrolled per wheel step.
	DefaultWheelRows = 3
	// MinColumnWidth is the smallest width a column can be resized to.
	MinColumnWidth = 1
)

// Options configure a Scroller.
type Options struct {
	HeaderHeight         int
	KeepFirstRowComplete bool
	LiveResize           bool
	// ResizeRadius widens the resize zone around the last cell of every
	// column.
	ResizeRadius   int
	ClickTolerance int
	// ResetSelectionOnHeaderClick clears the selection after a header
	// click sorted the data.
	ResetSelectionOnHeaderClick bool
	ShowCellFocusIndicator      bool
	DoubleClickInterval         time.Duration
	WheelRows                   int
	Pane                        pane.Options
}

// DefaultOptions returns the default scroller options.
func DefaultOptions() Options {
	return Options{
		HeaderHeight:                1,
		KeepFirstRowComplete:        true,
		LiveResize:                  true,
		ClickTolerance:              DefaultClickTolerance,
		ResetSelectionOnHeaderClick: true,
		ShowCellFocusIndicator:      true,
		DoubleClickInterval:         DefaultDoubleClickInterval,
		WheelRows:                   DefaultWheelRows,
		Pane:                        pane.Options{RowHeight: 1, MaxCacheLines: 1000},
	}
}

// Host is the table a scroller belongs to.
type Host interface {
	Source() data.Source
	ColumnModel() *column.Model
	SelectionManager() *selection.Manager
	FocusedCell() (col, row int)
	// SetFocusedCell moves the table focus, optionally scrolling the cell
	// into view.
	SetFocusedCell(col, row int, scrollVisible bool)
	// SetScrollY scrolls every scroller of the table.
	SetScrollY(y int, sync bool)
	// BeforeSort reports whether sorting col may proceed.
	BeforeSort(col int, ascending bool) bool
	// StopEditing ends the editing session of the table, if any.
	StopEditing()
	// IsLastScroller reports whether s is the rightmost scroller, which
	// owns the vertical scrollbar.
	IsLastScroller(s *Scroller) bool
}

// CellEvent is sent for clicks on the pane and context requests.
type CellEvent struct {
	Row     int
	Col     int
	Gesture selection.Gesture
}

type layout struct {
	width, height int
	headerH       int
	clipW, clipH  int
	vbar, hbar    bool
}

type dragKind uint8

const (
	dragNone dragKind = iota
	dragResize
	dragMove
	dragVScroll
	dragHScroll
)

type cell struct {
	row, col int
	ok       bool
}

// Scroller shows a window of columns of a table. It is not safe for
// concurrent use.
type Scroller struct {
	host   Host
	styles *styles.Styles
	opts   Options

	columns       *column.Pane
	pane          *pane.Pane
	header        headerCache
	defaultHeader render.HeaderRenderer

	lay layout

	scrollX   int
	scrollY   int
	renderedY int

	updatePending bool
	lastRowCount  int

	drag   dragKind
	resize resizeSession
	move   moveSession

	lastDown    cell
	lastClick   cell
	lastClickAt time.Time
	now         func() time.Time

	edit *editSession

	clicked       event.Emitter[CellEvent]
	doubleClicked event.Emitter[CellEvent]
	contextMenu   event.Emitter[CellEvent]
	edited        event.Emitter[EditedEvent]
	vbarChanged   event.Emitter[bool]

	unsubscribe func()
}

// New creates a scroller over all visible columns of the host's column
// model. Narrow the window through Columns.
func New(host Host, rr render.RowRenderer, st *styles.Styles, opts Options) *Scroller {
	opts.HeaderHeight = max(opts.HeaderHeight, 0)
	if opts.DoubleClickInterval <= 0 {
		opts.DoubleClickInterval = DefaultDoubleClickInterval
	}
	if opts.WheelRows <= 0 {
		opts.WheelRows = DefaultWheelRows
	}
	s := &Scroller{
		host:          host,
		styles:        st,
		opts:          opts,
		columns:       column.NewPane(host.ColumnModel()),
		defaultHeader: render.NewHeader(*st),
		now:           time.Now,
	}
	s.pane = pane.New(s.columns, host.Source(), host.SelectionManager().Model(), rr, opts.Pane)
	s.lastRowCount = host.Source().RowCount()
	s.unsubscribe = s.columns.OnChanged(s.OnColumnsChanged)
	return s
}

// Close detaches the scroller from the column model.
func (s *Scroller) Close() {
	s.unsubscribe()
	s.columns.Close()
}

// SetClock replaces the clock used for double click detection.
func (s *Scroller) SetClock(now func() time.Time) {
	s.now = now
}

// Columns returns the column window of the scroller.
func (s *Scroller) Columns() *column.Pane { return s.columns }

// Pane returns the row pane of the scroller.
func (s *Scroller) Pane() *pane.Pane { return s.pane }

// Options returns the scroller options.
func (s *Scroller) Options() Options { return s.opts }

// OnCellClick registers a listener for clicks on cells.
func (s *Scroller) OnCellClick(fn func(CellEvent)) func() {
	return s.clicked.Subscribe(fn)
}

// OnCellDoubleClick registers a listener for double clicks on cells.
func (s *Scroller) OnCellDoubleClick(fn func(CellEvent)) func() {
	return s.doubleClicked.Subscribe(fn)
}

// OnCellContextMenu registers a listener for context menu requests.
func (s *Scroller) OnCellContextMenu(fn func(CellEvent)) func() {
	return s.contextMenu.Subscribe(fn)
}

// OnVerticalScrollBarChanged registers a listener for visibility changes
// of the vertical scrollbar.
func (s *Scroller) OnVerticalScrollBarChanged(fn func(visible bool)) func() {
	return s.vbarChanged.Subscribe(fn)
}

// SetSize sets the outer size of the scroller.
func (s *Scroller) SetSize(width, height int) {
	if width == s.lay.width && height == s.lay.height {
		return
	}
	s.lay.width, s.lay.height = max(width, 0), max(height, 0)
	s.relayout()
}

// Size returns the outer size of the scroller.
func (s *Scroller) Size() (width, height int) {
	return s.lay.width, s.lay.height
}

// PreferredWidth returns the width the scroller needs to show its columns
// without horizontal scrolling.
func (s *Scroller) PreferredWidth() int {
	w := s.columns.TotalWidth()
	if s.host.IsLastScroller(s) && s.contentHeight() > max(s.lay.height-s.opts.HeaderHeight, 0) {
		w++
	}
	return w
}

// PaneHeight returns the number of lines available to rows.
func (s *Scroller) PaneHeight() int { return s.lay.clipH }

// PaneWidth returns the number of cells available to rows.
func (s *Scroller) PaneWidth() int { return s.lay.clipW }

// HeaderHeight returns the header height in lines.
func (s *Scroller) HeaderHeight() int { return s.lay.headerH }

// VerticalScrollBarVisible reports whether the vertical scrollbar shows.
func (s *Scroller) VerticalScrollBarVisible() bool { return s.lay.vbar }

// HorizontalScrollBarVisible reports whether the horizontal scrollbar
// shows.
func (s *Scroller) HorizontalScrollBarVisible() bool { return s.lay.hbar }

func (s *Scroller) rowHeight() int {
	return s.pane.RowHeight()
}

// SetRowHeight changes the row height.
func (s *Scroller) SetRowHeight(h int) {
	s.pane.SetRowHeight(h)
	s.relayout()
}

func (s *Scroller) contentHeight() int {
	return s.host.Source().RowCount() * s.rowHeight()
}

func (s *Scroller) relayout() {
	l := layout{width: s.lay.width, height: s.lay.height}
	l.headerH = min(s.opts.HeaderHeight, l.height)
	l.clipW = l.width
	l.clipH = l.height - l.headerH

	last := s.host.IsLastScroller(s)
	content := s.contentHeight()
	if last && content > l.clipH && l.clipW > 0 {
		l.vbar = true
		l.clipW--
	}
	if s.columns.TotalWidth() > l.clipW && l.clipH > 0 {
		l.hbar = true
		l.clipH--
		if !l.vbar && last && content > l.clipH && l.clipW > 0 {
			l.vbar = true
			l.clipW--
		}
	}

	old := s.lay.vbar
	s.lay = l
	s.scrollX = min(s.scrollX, s.MaxScrollX())
	s.scrollY = min(s.scrollY, s.MaxScrollY())
	s.updateViewport()
	if l.vbar != old {
		s.vbarChanged.Emit(l.vbar)
	}
}

// MaxScrollX returns the largest horizontal scroll offset.
func (s *Scroller) MaxScrollX() int {
	return max(0, s.columns.TotalWidth()-s.lay.clipW)
}

// MaxScrollY returns the largest vertical scroll offset. With complete
// first rows it is rounded up to a row boundary so the last row shows in
// full.
func (s *Scroller) MaxScrollY() int {
	over := s.contentHeight() - s.lay.clipH
	if over <= 0 {
		return 0
	}
	if rh := s.rowHeight(); s.opts.KeepFirstRowComplete && over%rh != 0 {
		over += rh - over%rh
	}
	return over
}

// ScrollX returns the horizontal scroll offset.
func (s *Scroller) ScrollX() int { return s.scrollX }

// ScrollY returns the vertical scroll offset.
func (s *Scroller) ScrollY() int { return s.scrollY }

// SetScrollX scrolls horizontally.
func (s *Scroller) SetScrollX(x int) {
	x = min(max(x, 0), s.MaxScrollX())
	if x == s.scrollX {
		return
	}
	s.scrollX = x
	s.header.invalidate()
}

// SetScrollY scrolls vertically. Unless sync is set the content update is
// deferred to the next Tick.
func (s *Scroller) SetScrollY(y int, sync bool) {
	y = min(max(y, 0), s.MaxScrollY())
	if y == s.scrollY {
		if sync && s.updatePending {
			s.updateViewport()
		}
		return
	}
	s.scrollY = y
	if sync {
		s.updateViewport()
		return
	}
	s.updatePending = true
}

// UpdatePending reports whether a deferred content update is due.
func (s *Scroller) UpdatePending() bool { return s.updatePending }

// Tick performs a deferred content update. It reports whether anything
// was rendered.
func (s *Scroller) Tick() bool {
	if !s.updatePending {
		return false
	}
	s.updateViewport()
	return true
}

// FirstRowOffset returns the number of lines of the first visible row
// hidden above the pane.
func (s *Scroller) FirstRowOffset() int {
	return s.renderedY - s.pane.FirstVisibleRow()*s.rowHeight()
}

func (s *Scroller) updateViewport() {
	s.updatePending = false

	rh := s.rowHeight()
	first := s.scrollY / rh
	count := (s.lay.clipH + rh - 1) / rh
	s.renderedY = first * rh
	if !s.opts.KeepFirstRowComplete {
		count++
		s.renderedY = s.scrollY
	}

	oldFirst := s.pane.FirstVisibleRow()
	s.pane.SetFirstVisibleRow(first)
	s.pane.SetVisibleRowCount(count)
	if first != oldFirst && s.edit != nil && !s.edit.modal {
		s.syncEditorWidth()
	}
}

// ScrollCellVisible scrolls the minimal amount needed to show the cell.
// Cells of columns outside the window are ignored.
func (s *Scroller) ScrollCellVisible(col, row int) {
	if s.columns.X(col) == -1 {
		return
	}
	cm := s.host.ColumnModel()
	left := s.columns.ColumnLeft(col)
	w := cm.ColumnWidth(col)
	rh := s.rowHeight()
	top := row * rh

	minX := min(left, left+w-s.lay.clipW)
	s.SetScrollX(max(minX, min(left, s.scrollX)))

	minY := top + rh - s.lay.clipH
	if s.opts.KeepFirstRowComplete {
		minY += s.lay.clipH % rh
	}
	y := max(minY, min(top, s.scrollY))
	if y != s.scrollY {
		s.host.SetScrollY(y, true)
	}
}

// Wheel scrolls by rows wheel steps; negative values scroll up.
func (s *Scroller) Wheel(steps int) {
	s.host.SetScrollY(s.scrollY+steps*s.opts.WheelRows*s.rowHeight(), false)
}

// SetFocusedCell mirrors the table focus into the pane. Restyling is left
// to the next content update while one is pending.
func (s *Scroller) SetFocusedCell(col, row int) {
	if s.edit != nil {
		return
	}
	s.pane.SetFocusedCell(col, row, s.updatePending)
}

// OnSelectionChanged restyles rows after a selection change.
func (s *Scroller) OnSelectionChanged() {
	s.pane.OnSelectionChanged()
}

// OnColumnsChanged handles changes of column widths, order, visibility and
// renderers.
func (s *Scroller) OnColumnsChanged() {
	s.header.invalidate()
	s.pane.OnColumnsChanged()
	s.relayout()
	if s.edit != nil && !s.edit.modal {
		s.syncEditorWidth()
	}
}

// OnHeaderChanged re-renders the header.
func (s *Scroller) OnHeaderChanged() {
	s.header.invalidate()
}

// OnMetaDataChanged handles source metadata and sort changes.
func (s *Scroller) OnMetaDataChanged() {
	s.header.invalidate()
	s.pane.OnMetaDataChanged()
}

// OnDataChanged handles source data changes.
func (s *Scroller) OnDataChanged(ev data.DataChangedEvent) {
	s.pane.OnDataChanged(ev)
	if n := s.host.Source().RowCount(); n != s.lastRowCount {
		s.lastRowCount = n
		s.relayout()
	}
}

// SetSource rebinds the pane to a new data source.
func (s *Scroller) SetSource(src data.Source) {
	s.CancelEditing()
	s.header.invalidate()
	s.pane.SetSource(src)
	s.lastRowCount = src.RowCount()
	s.relayout()
}

// View renders the scroller into a string.
func (s *Scroller) View() string {
	if s.lay.width <= 0 || s.lay.height <= 0 {
		return ""
	}
	canvas := uv.NewScreenBuffer(s.lay.width, s.lay.height)
	s.Draw(canvas, canvas.Bounds())
	return strings.ReplaceAll(canvas.Render(), "\r\n", "\n")
}

// Draw draws the scroller into area.
func (s *Scroller) Draw(scr uv.Screen, area uv.Rectangle) {
	screen.ClearArea(scr, area)
	l := s.lay
	ox, oy := area.Min.X, area.Min.Y

	for y := range l.headerH {
		line := ""
		if y == 0 {
			line = s.headerLine()
		}
		uv.NewStyledString(line).Draw(scr, uv.Rect(ox, oy+y, l.clipW, 1))
	}

	lines := strings.Split(s.pane.View(), "\n")
	skip := s.FirstRowOffset()
	for y := range l.clipH {
		i := skip + y
		if i < 0 || i >= len(lines) || s.pane.RenderedRowCount() == 0 {
			break
		}
		line := ansi.Cut(lines[i], s.scrollX, s.scrollX+l.clipW)
		uv.NewStyledString(line).Draw(scr, uv.Rect(ox, oy+l.headerH+y, l.clipW, 1))
	}

	if l.vbar {
		s.drawVerticalScrollBar(scr, image.Pt(ox+l.clipW, oy+l.headerH))
	}
	if l.hbar {
		s.drawHorizontalScrollBar(scr, image.Pt(ox, oy+l.headerH+l.clipH))
	}

	s.drawFeedback(scr, area)

	if s.edit != nil && !s.edit.modal {
		if r, ok := s.focusRect(area); ok {
			view := ansi.Truncate(s.edit.editor.View(), r.Dx(), "")
			screen.ClearArea(scr, r)
			uv.NewStyledString(view).Draw(scr, r)
		}
	} else if s.opts.ShowCellFocusIndicator {
		if r, ok := s.focusRect(area); ok {
			reverse(scr, r)
		}
	}
}

func (s *Scroller) focusRect(area uv.Rectangle) (uv.Rectangle, bool) {
	col, row := s.pane.FocusedCell()
	if col < 0 || row < 0 {
		return uv.Rectangle{}, false
	}
	left := s.columns.ColumnLeft(col)
	if left < 0 {
		return uv.Rectangle{}, false
	}
	w := s.host.ColumnModel().ColumnWidth(col)
	rh := s.rowHeight()
	x := left - s.scrollX
	y := s.lay.headerH + row*rh - s.renderedY
	r := image.Rect(x, y, x+w, y+rh).Intersect(image.Rect(0, s.lay.headerH, s.lay.clipW, s.lay.headerH+s.lay.clipH))
	if r.Empty() {
		return uv.Rectangle{}, false
	}
	return r.Add(area.Min), true
}

func reverse(scr uv.Screen, r uv.Rectangle) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c := scr.CellAt(x, y)
			if c == nil {
				continue
			}
			c = c.Clone()
			c.Style.Attrs |= uv.AttrReverse
			scr.SetCell(x, y, c)
		}
	}
}

// HandleEditorMsg forwards a message to the active editor.
func (s *Scroller) HandleEditorMsg(msg tea.Msg) tea.Cmd {
	if s.edit == nil {
		return nil
	}
	return s.edit.editor.Update(msg)
}
