// Package table implements the data grid: a bubbletea model that joins one
// or more scrollers over a shared data source, column model, selection and
// focus.
package table

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"slices"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/datagrid/internal/config"
	"github.com/charmbracelet/datagrid/internal/data"
	"github.com/charmbracelet/datagrid/internal/event"
	"github.com/charmbracelet/datagrid/internal/ui/column"
	"github.com/charmbracelet/datagrid/internal/ui/common"
	"github.com/charmbracelet/datagrid/internal/ui/editor"
	"github.com/charmbracelet/datagrid/internal/ui/pane"
	"github.com/charmbracelet/datagrid/internal/ui/render"
	"github.com/charmbracelet/datagrid/internal/ui/scroller"
	"github.com/charmbracelet/datagrid/internal/ui/selection"
	"github.com/charmbracelet/datagrid/internal/uiutil"
	"github.com/google/uuid"
)

// BeforeSortEvent is sent before a header click sorts the data. Listeners
// may cancel the sort.
type BeforeSortEvent struct {
	Col       int
	Ascending bool

	canceled bool
}

// Cancel prevents the sort.
func (e *BeforeSortEvent) Cancel() {
	e.canceled = true
}

// FocusEvent is sent when the focused cell changed. Col and Row are -1
// when no cell has focus.
type FocusEvent struct {
	Col, Row int
}

// Loadable is implemented by sources that load rows in the background,
// such as [data.Remote].
type Loadable interface {
	Ready() <-chan struct{}
	ApplyLoaded() bool
	Busy() bool
}

// Table is a data grid. It is not safe for concurrent use; all methods
// must be called from the bubbletea event loop.
type Table struct {
	com    *common.Common
	opts   config.TableOptions
	keyMap KeyMap
	id     string

	ctx    context.Context
	cancel context.CancelFunc

	src data.Source
	sel *selection.Model
	mgr *selection.Manager
	cm  *column.Model
	rr  render.RowRenderer

	meta      []int
	scrollers []*scroller.Scroller
	areas     []image.Rectangle
	reloading []bool
	subs      []func()
	srcSubs   []func()
	modelSubs []func()

	focusCol, focusRow int

	width, height int

	visible bool
	tickGen int

	pressed      *scroller.Scroller
	pressedAt    image.Point
	pressGesture selection.Gesture
	captured     bool

	status   uiutil.InfoMsg
	statusID int
	title    string

	// Commands produced by host callbacks during an update.
	pending []tea.Cmd

	beforeSort      event.Emitter[*BeforeSortEvent]
	focusChanged    event.Emitter[FocusEvent]
	cellClick       event.Emitter[scroller.CellEvent]
	cellDoubleClick event.Emitter[scroller.CellEvent]
	cellContextMenu event.Emitter[scroller.CellEvent]
	cellEdited      event.Emitter[scroller.EditedEvent]
	vbarChanged     event.Emitter[bool]
	reloadsData     event.Emitter[bool]
}

var _ scroller.Host = (*Table)(nil)

// New creates a table over src configured from com. Columns start with the
// configured width, the default renderers and a text editor.
func New(com *common.Common, src data.Source) *Table {
	ctx, cancel := context.WithCancel(context.Background())
	opts := com.Config.Table
	t := &Table{
		com:      com,
		opts:     opts,
		keyMap:   DefaultKeyMap(),
		id:       uuid.NewString(),
		ctx:      ctx,
		cancel:   cancel,
		sel:      selection.New(),
		rr:       render.NewRowStyler(com.Styles),
		focusCol: -1,
		focusRow: -1,
		visible:  true,
	}
	t.sel.SetMode(opts.Mode())
	t.mgr = selection.NewManager(t.sel)
	t.cm = column.New(column.Descriptor{
		Width:          opts.ColumnWidth,
		HeaderRenderer: render.NewHeader(com.Styles),
		DataRenderer:   render.Default{},
		EditorFactory:  &editor.TextFactory{Styles: &com.Styles.TextInput},
	})
	t.cm.Init(src.ColumnCount())
	t.src = src

	t.modelSubs = append(t.modelSubs,
		t.cm.OnWidthChanged(func(column.WidthEvent) { t.onColumnsChanged() }),
		t.cm.OnVisibilityChanged(func(column.VisibilityEvent) { t.onColumnsChanged() }),
		t.cm.OnOrderChanged(func(column.OrderEvent) { t.onColumnsChanged() }),
		t.cm.OnDataRendererChanged(func(int) { t.onColumnsChanged() }),
		t.cm.OnHeaderChanged(func(int) { t.onHeaderChanged() }),
		t.sel.OnChange(t.onSelectionChanged),
	)
	t.subscribeSource()

	meta := opts.MetaColumns
	if len(meta) == 0 {
		meta = []int{-1}
	}
	if err := t.SetMetaColumnCounts(meta); err != nil {
		slog.Warn("Ignoring meta columns", "meta", meta, "err", err)
		_ = t.SetMetaColumnCounts([]int{-1})
	}
	return t
}

// Close releases the scrollers and stops background waits.
func (t *Table) Close() {
	t.cancel()
	t.closeScrollers()
	for _, unsub := range slices.Concat(t.srcSubs, t.modelSubs) {
		unsub()
	}
	t.srcSubs, t.modelSubs = nil, nil
}

// ID returns the unique id of the table.
func (t *Table) ID() string { return t.id }

// Source implements scroller.Host.
func (t *Table) Source() data.Source { return t.src }

// ColumnModel implements scroller.Host.
func (t *Table) ColumnModel() *column.Model { return t.cm }

// SelectionManager implements scroller.Host.
func (t *Table) SelectionManager() *selection.Manager { return t.mgr }

// SelectionModel returns the selection of the table.
func (t *Table) SelectionModel() *selection.Model { return t.sel }

// Scrollers returns the scrollers from left to right.
func (t *Table) Scrollers() []*scroller.Scroller { return t.scrollers }

// KeyMap returns the key bindings.
func (t *Table) KeyMap() KeyMap { return t.keyMap }

// SetKeyMap replaces the key bindings.
func (t *Table) SetKeyMap(km KeyMap) { t.keyMap = km }

// OnBeforeSort registers a listener that can cancel header click sorts.
func (t *Table) OnBeforeSort(fn func(*BeforeSortEvent)) func() {
	return t.beforeSort.Subscribe(fn)
}

// OnFocusChanged registers a focus change listener.
func (t *Table) OnFocusChanged(fn func(FocusEvent)) func() {
	return t.focusChanged.Subscribe(fn)
}

// OnCellClick registers a listener for cell clicks in any scroller.
func (t *Table) OnCellClick(fn func(scroller.CellEvent)) func() {
	return t.cellClick.Subscribe(fn)
}

// OnCellDoubleClick registers a listener for cell double clicks.
func (t *Table) OnCellDoubleClick(fn func(scroller.CellEvent)) func() {
	return t.cellDoubleClick.Subscribe(fn)
}

// OnCellContextMenu registers a listener for context menu requests.
func (t *Table) OnCellContextMenu(fn func(scroller.CellEvent)) func() {
	return t.cellContextMenu.Subscribe(fn)
}

// OnCellEdited registers a listener for completed edits.
func (t *Table) OnCellEdited(fn func(scroller.EditedEvent)) func() {
	return t.cellEdited.Subscribe(fn)
}

// OnVerticalScrollBarChanged registers a listener for visibility changes
// of the vertical scrollbar.
func (t *Table) OnVerticalScrollBarChanged(fn func(visible bool)) func() {
	return t.vbarChanged.Subscribe(fn)
}

// OnReloadData registers a listener told whether rendered rows are waiting
// for data.
func (t *Table) OnReloadData(fn func(reloading bool)) func() {
	return t.reloadsData.Subscribe(fn)
}

// SetRowRenderer replaces the row renderer of all scrollers.
func (t *Table) SetRowRenderer(rr render.RowRenderer) {
	t.rr = rr
	for _, s := range t.scrollers {
		s.Pane().SetRowRenderer(rr)
	}
}

// SetSource replaces the data source. Selection and focus are reset. The
// returned command waits for background loads of the new source.
func (t *Table) SetSource(src data.Source) tea.Cmd {
	t.cancelEditing()
	for _, unsub := range t.srcSubs {
		unsub()
	}
	t.src = src
	t.subscribeSource()
	t.sel.ResetSelection()
	t.focusCol, t.focusRow = -1, -1
	if t.cm.OverallColumnCount() != src.ColumnCount() {
		t.cm.Init(src.ColumnCount())
	}
	for _, s := range t.scrollers {
		s.SetFocusedCell(-1, -1)
		s.SetSource(src)
	}
	t.layout()
	t.focusChanged.Emit(FocusEvent{Col: -1, Row: -1})
	return t.waitLoaded()
}

func (t *Table) subscribeSource() {
	t.srcSubs = []func(){
		t.src.OnDataChanged(t.onDataChanged),
		t.src.OnMetaDataChanged(t.onMetaDataChanged),
	}
}

// SetMetaColumnCounts splits the visible columns into scrollers. Each entry
// is the number of columns of one scroller; the last may be -1 for all
// remaining columns. [1, -1] freezes the first column.
func (t *Table) SetMetaColumnCounts(counts []int) error {
	if len(counts) == 0 {
		return fmt.Errorf("%w: no meta columns", column.ErrInvalidArgument)
	}
	for i, n := range counts {
		if n <= 0 && (n != -1 || i != len(counts)-1) {
			return fmt.Errorf("%w: meta column count %d at %d", column.ErrInvalidArgument, n, i)
		}
	}

	t.cancelEditing()
	scrollY := 0
	if len(t.scrollers) > 0 {
		scrollY = t.scrollers[0].ScrollY()
	}
	t.closeScrollers()

	t.meta = slices.Clone(counts)
	opts := t.scrollerOptions()
	var x int
	for i, n := range counts {
		s := scroller.New(t, t.rr, &t.com.Styles, opts)
		s.Columns().SetFirstColumnX(x)
		s.Columns().SetMaxColumnCount(n)
		x += n
		t.watchScroller(i, s)
		t.scrollers = append(t.scrollers, s)
	}
	t.reloading = make([]bool, len(t.scrollers))
	t.layout()
	for _, s := range t.scrollers {
		s.SetFocusedCell(t.focusCol, t.focusRow)
		s.SetScrollY(scrollY, true)
	}
	slog.Debug("Meta columns changed", "table", t.id, "counts", counts)
	return nil
}

// MetaColumnCounts returns the column counts of the scrollers.
func (t *Table) MetaColumnCounts() []int {
	return slices.Clone(t.meta)
}

func (t *Table) scrollerOptions() scroller.Options {
	o := t.opts
	so := scroller.DefaultOptions()
	so.HeaderHeight = o.HeaderHeight
	so.KeepFirstRowComplete = o.KeepFirstRowComplete
	so.LiveResize = o.LiveResize
	so.ResizeRadius = o.ResizeRadius
	so.ClickTolerance = o.ClickTolerance
	so.ResetSelectionOnHeaderClick = o.ResetSelectionOnHeaderClick
	so.ShowCellFocusIndicator = o.ShowCellFocusIndicator
	so.Pane = pane.Options{
		RowHeight:         o.RowHeight,
		MaxCacheLines:     o.MaxCacheLines,
		AlwaysUpdateCells: o.AlwaysUpdateCells,
	}
	return so
}

func (t *Table) watchScroller(i int, s *scroller.Scroller) {
	t.subs = append(t.subs,
		s.OnCellClick(t.cellClick.Emit),
		s.OnCellDoubleClick(t.cellDoubleClick.Emit),
		s.OnCellContextMenu(t.cellContextMenu.Emit),
		s.OnCellEdited(t.cellEdited.Emit),
		s.OnVerticalScrollBarChanged(t.vbarChanged.Emit),
		s.Pane().OnReloadData(func(reloading bool) {
			if i < len(t.reloading) && t.reloading[i] != reloading {
				t.reloading[i] = reloading
				t.reloadsData.Emit(t.Reloading())
			}
		}),
	)
}

func (t *Table) closeScrollers() {
	for _, unsub := range t.subs {
		unsub()
	}
	t.subs = nil
	for _, s := range t.scrollers {
		s.Close()
	}
	t.scrollers = nil
	t.areas = nil
	t.pressed = nil
}

// Reloading reports whether any scroller shows rows missing their data.
func (t *Table) Reloading() bool {
	return slices.Contains(t.reloading, true)
}

// Busy reports whether rows are loading, either because rendered rows wait
// for data or a background load runs.
func (t *Table) Busy() bool {
	if t.Reloading() {
		return true
	}
	l, ok := t.src.(Loadable)
	return ok && l.Busy()
}

// SetSize sets the outer size of the table, including the status bar.
func (t *Table) SetSize(width, height int) {
	t.width, t.height = max(width, 0), max(height, 0)
	t.layout()
}

// Size returns the outer size of the table.
func (t *Table) Size() (width, height int) {
	return t.width, t.height
}

func (t *Table) statusBarVisible() bool {
	return t.opts.StatusBarVisible && t.height > 1
}

func (t *Table) layout() {
	h := t.height
	if t.statusBarVisible() {
		h--
	}
	t.areas = t.areas[:0]
	var x int
	for i, s := range t.scrollers {
		w := max(t.width-x, 0)
		if i < len(t.scrollers)-1 {
			w = min(s.PreferredWidth(), w)
		}
		s.SetSize(w, h)
		t.areas = append(t.areas, image.Rect(x, 0, x+w, h))
		x += w
	}
}

// IsLastScroller implements scroller.Host.
func (t *Table) IsLastScroller(s *scroller.Scroller) bool {
	return len(t.scrollers) > 0 && t.scrollers[len(t.scrollers)-1] == s
}

// FocusedCell implements scroller.Host.
func (t *Table) FocusedCell() (col, row int) {
	return t.focusCol, t.focusRow
}

// SetFocusedCell implements scroller.Host.
func (t *Table) SetFocusedCell(col, row int, scrollVisible bool) {
	if col != t.focusCol || row != t.focusRow {
		t.focusCol, t.focusRow = col, row
		for _, s := range t.scrollers {
			s.SetFocusedCell(col, row)
		}
		t.focusChanged.Emit(FocusEvent{Col: col, Row: row})
	}
	if scrollVisible && col >= 0 && row >= 0 {
		t.ScrollCellVisible(col, row)
	}
}

// ScrollCellVisible scrolls the scroller holding col so the cell shows.
func (t *Table) ScrollCellVisible(col, row int) {
	for _, s := range t.scrollers {
		if s.Columns().X(col) != -1 {
			s.ScrollCellVisible(col, row)
			return
		}
	}
}

// SetScrollY implements scroller.Host. All scrollers scroll together.
func (t *Table) SetScrollY(y int, sync bool) {
	for _, s := range t.scrollers {
		s.SetScrollY(y, sync)
	}
}

// BeforeSort implements scroller.Host.
func (t *Table) BeforeSort(col int, ascending bool) bool {
	ev := &BeforeSortEvent{Col: col, Ascending: ascending}
	t.beforeSort.Emit(ev)
	if ev.canceled {
		slog.Debug("Sort canceled", "col", col, "ascending", ascending)
	}
	return !ev.canceled
}

// StopEditing implements scroller.Host. Write errors are reported through
// the status bar.
func (t *Table) StopEditing() {
	for _, s := range t.scrollers {
		if err := s.StopEditing(); err != nil {
			t.pending = append(t.pending, uiutil.ReportError(err))
		}
	}
}

func (t *Table) cancelEditing() {
	for _, s := range t.scrollers {
		s.CancelEditing()
	}
}

// IsEditing reports whether a cell editor is open.
func (t *Table) IsEditing() bool {
	return t.editing() != nil
}

func (t *Table) editing() *scroller.Scroller {
	for _, s := range t.scrollers {
		if s.IsEditing() {
			return s
		}
	}
	return nil
}

// StartEditing opens an editor on the focused cell.
func (t *Table) StartEditing() (tea.Cmd, bool) {
	if t.IsEditing() {
		return nil, false
	}
	for _, s := range t.scrollers {
		if cmd, ok := s.StartEditing(); ok {
			return cmd, true
		}
	}
	return nil, false
}

func (t *Table) onColumnsChanged() {
	for _, s := range t.scrollers {
		s.OnColumnsChanged()
	}
	t.layout()
}

func (t *Table) onHeaderChanged() {
	for _, s := range t.scrollers {
		s.OnHeaderChanged()
	}
}

func (t *Table) onSelectionChanged() {
	for _, s := range t.scrollers {
		s.OnSelectionChanged()
	}
}

func (t *Table) onMetaDataChanged() {
	if n := t.src.ColumnCount(); n != t.cm.OverallColumnCount() {
		t.cancelEditing()
		t.cm.Init(n)
		if t.focusCol >= n {
			t.SetFocusedCell(-1, -1, false)
		}
	}
	for _, s := range t.scrollers {
		s.OnMetaDataChanged()
	}
}

func (t *Table) onDataChanged(ev data.DataChangedEvent) {
	if ev.ShiftsRows() {
		t.cancelEditing()
	}
	col, row := t.focusCol, t.focusRow
	if ev.RemoveCount > 0 {
		t.sel.RowsRemoved(ev.RemoveStart, ev.RemoveCount)
		switch {
		case row >= ev.RemoveStart+ev.RemoveCount:
			row -= ev.RemoveCount
		case row >= ev.RemoveStart:
			col, row = -1, -1
		}
	}
	if ev.InsertCount > 0 {
		t.sel.RowsInserted(ev.InsertStart, ev.InsertCount)
		if row >= ev.InsertStart {
			row += ev.InsertCount
		}
	}
	if row >= t.src.RowCount() {
		col, row = -1, -1
	}
	for _, s := range t.scrollers {
		s.OnDataChanged(ev)
	}
	if col != t.focusCol || row != t.focusRow {
		t.SetFocusedCell(col, row, false)
	}
}

// MoveFocusedCell moves the focus by the given number of visible columns
// and rows, clamped to the table.
func (t *Table) MoveFocusedCell(dCol, dRow int) {
	col, row, ok := t.moveTarget(dCol, dRow)
	if ok {
		t.SetFocusedCell(col, row, true)
	}
}

// SelectAll selects every row unless the selection mode allows less than
// an interval.
func (t *Table) SelectAll() {
	switch t.sel.Mode() {
	case selection.ModeNone, selection.ModeSingle:
		return
	}
	if n := t.src.RowCount(); n > 0 {
		t.sel.SetSelectionInterval(0, n-1)
	}
}

// SetVisible pauses the update timer while the table is hidden. The
// returned command restarts it.
func (t *Table) SetVisible(visible bool) tea.Cmd {
	if visible == t.visible {
		return nil
	}
	t.visible = visible
	t.tickGen++
	if !visible {
		return nil
	}
	return t.tick()
}

// Visible reports whether the table is visible.
func (t *Table) Visible() bool { return t.visible }

// SetTitle sets the path or name shown in the status bar.
func (t *Table) SetTitle(title string) { t.title = title }
