package scroller

import (
	"fmt"
	"testing"
	"time"

	"github.com/charmbracelet/datagrid/internal/data"
	"github.com/charmbracelet/datagrid/internal/ui/column"
	"github.com/charmbracelet/datagrid/internal/ui/editor"
	"github.com/charmbracelet/datagrid/internal/ui/render"
	"github.com/charmbracelet/datagrid/internal/ui/selection"
	"github.com/charmbracelet/datagrid/internal/ui/styles"
	"github.com/charmbracelet/x/exp/golden"
	"github.com/stretchr/testify/require"
)

var left = selection.Gesture{Button: selection.ButtonLeft}

type testHost struct {
	src       *data.Simple
	cm        *column.Model
	mgr       *selection.Manager
	scrollers []*Scroller

	focusCol, focusRow int
	sorts              int
	veto               bool
}

func (h *testHost) Source() data.Source                  { return h.src }
func (h *testHost) ColumnModel() *column.Model           { return h.cm }
func (h *testHost) SelectionManager() *selection.Manager { return h.mgr }
func (h *testHost) FocusedCell() (int, int)              { return h.focusCol, h.focusRow }

func (h *testHost) IsLastScroller(s *Scroller) bool {
	return s == h.scrollers[len(h.scrollers)-1]
}

func (h *testHost) BeforeSort(col int, ascending bool) bool {
	h.sorts++
	return !h.veto
}

func (h *testHost) StopEditing() {
	for _, s := range h.scrollers {
		_ = s.StopEditing()
	}
}

func (h *testHost) SetScrollY(y int, sync bool) {
	for _, s := range h.scrollers {
		s.SetScrollY(y, sync)
	}
}

func (h *testHost) SetFocusedCell(col, row int, scrollVisible bool) {
	h.focusCol, h.focusRow = col, row
	for _, s := range h.scrollers {
		s.SetFocusedCell(col, row)
		if scrollVisible {
			s.ScrollCellVisible(col, row)
		}
	}
}

type setup struct {
	rows   int
	width  int
	height int
	opts   Options
}

func newScroller(t *testing.T, c setup) (*Scroller, *testHost) {
	t.Helper()

	h := &testHost{focusCol: -1, focusRow: -1}
	h.src = data.NewSimple("ID", "Name", "Even")
	values := make([][]any, c.rows)
	for i := range values {
		values[i] = []any{i, fmt.Sprintf("r%d", i), i%2 == 0}
	}
	h.src.SetData(values)

	h.cm = column.New(column.Descriptor{
		Width:          8,
		HeaderRenderer: &render.Header{},
		DataRenderer:   render.Default{},
	})
	h.cm.Init(3)
	h.mgr = selection.NewManager(selection.New())

	st := styles.DefaultStyles()
	s := New(h, render.Plain{}, &st, c.opts)
	h.scrollers = append(h.scrollers, s)

	h.src.OnDataChanged(s.OnDataChanged)
	h.src.OnMetaDataChanged(s.OnMetaDataChanged)
	h.cm.OnWidthChanged(func(column.WidthEvent) { s.OnColumnsChanged() })
	h.mgr.Model().OnChange(s.OnSelectionChanged)

	s.SetSize(c.width, c.height)
	return s, h
}

func TestScroller_Viewport(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	opts.KeepFirstRowComplete = false
	opts.Pane.RowHeight = 20
	s, _ := newScroller(t, setup{rows: 100, width: 40, height: 206, opts: opts})

	require.Equal(t, 205, s.PaneHeight())
	require.Equal(t, 12, s.Pane().VisibleRowCount())

	s.SetScrollY(30, true)
	require.Equal(t, 1, s.Pane().FirstVisibleRow())
	require.Equal(t, 10, s.FirstRowOffset())

	opts.KeepFirstRowComplete = true
	s, _ = newScroller(t, setup{rows: 100, width: 40, height: 206, opts: opts})
	require.Equal(t, 11, s.Pane().VisibleRowCount())
	s.SetScrollY(30, true)
	require.Equal(t, 1, s.Pane().FirstVisibleRow())
	require.Zero(t, s.FirstRowOffset())
}

func TestScroller_HitTesting(t *testing.T) {
	t.Parallel()

	s, _ := newScroller(t, setup{rows: 100, width: 30, height: 11, opts: DefaultOptions()})
	require.True(t, s.VerticalScrollBarVisible())
	require.False(t, s.HorizontalScrollBarVisible())
	require.Equal(t, 29, s.PaneWidth())

	row, ok := s.RowAt(0, 0)
	require.True(t, ok)
	require.Equal(t, -1, row)

	row, ok = s.RowAt(0, 1)
	require.True(t, ok)
	require.Zero(t, row)

	s.SetScrollY(5, true)
	row, ok = s.RowAt(3, 3)
	require.True(t, ok)
	require.Equal(t, 7, row)

	_, ok = s.RowAt(29, 3)
	require.False(t, ok)
	_, ok = s.RowAt(0, 11)
	require.False(t, ok)

	col, ok := s.ColumnAt(7)
	require.True(t, ok)
	require.Zero(t, col)
	col, ok = s.ColumnAt(8)
	require.True(t, ok)
	require.Equal(t, 1, col)
	_, ok = s.ColumnAt(24)
	require.False(t, ok)

	col, row, ok = s.CellAt(17, 2)
	require.True(t, ok)
	require.Equal(t, 2, col)
	require.Equal(t, 6, row)

	require.Equal(t, 0, s.ResizeColumnAt(7))
	require.Equal(t, 1, s.ResizeColumnAt(15))
	require.Equal(t, -1, s.ResizeColumnAt(6))
}

func TestScroller_RowAtPastEnd(t *testing.T) {
	t.Parallel()

	s, _ := newScroller(t, setup{rows: 5, width: 30, height: 11, opts: DefaultOptions()})
	_, ok := s.RowAt(0, 5)
	require.True(t, ok)
	_, ok = s.RowAt(0, 6)
	require.False(t, ok)
}

func TestScroller_LiveResize(t *testing.T) {
	t.Parallel()

	s, h := newScroller(t, setup{rows: 3, width: 40, height: 5, opts: DefaultOptions()})

	require.True(t, s.MouseDown(7, 0, left))
	require.Zero(t, s.Resizing())
	s.MouseMove(10, 0)
	require.Equal(t, 11, h.cm.ColumnWidth(0))
	s.MouseMove(0, 0)
	require.Equal(t, MinColumnWidth, h.cm.ColumnWidth(0))
	s.MouseUp(0, 0, left)

	require.False(t, s.Dragging())
	require.Zero(t, h.sorts)
}

func TestScroller_DeferredResize(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	opts.LiveResize = false
	s, h := newScroller(t, setup{rows: 3, width: 40, height: 5, opts: opts})

	var events []column.WidthEvent
	h.cm.OnWidthChanged(func(ev column.WidthEvent) { events = append(events, ev) })

	h.cm.SetColumnMinWidth(1, 4)
	require.True(t, s.MouseDown(15, 0, left))
	s.MouseMove(18, 0)
	s.MouseMove(5, 0)
	require.Equal(t, 8, h.cm.ColumnWidth(1))
	require.Empty(t, events)

	s.CaptureLost()
	require.Equal(t, 4, h.cm.ColumnWidth(1))
	require.Equal(t, []column.WidthEvent{{Col: 1, Old: 8, New: 4, Interactive: true}}, events)
	require.False(t, s.Dragging())
}

func TestScroller_MoveColumn(t *testing.T) {
	t.Parallel()

	s, h := newScroller(t, setup{rows: 3, width: 40, height: 5, opts: DefaultOptions()})

	require.True(t, s.MouseDown(2, 0, left))
	require.Zero(t, s.Moving())
	s.MouseMove(3, 0)
	s.MouseMove(20, 0)
	s.MouseUp(20, 0, left)

	require.Equal(t, []int{1, 2, 0}, h.cm.VisibleColumns())
	require.Zero(t, h.sorts)
}

func TestScroller_MovePastItself(t *testing.T) {
	t.Parallel()

	s, h := newScroller(t, setup{rows: 3, width: 40, height: 5, opts: DefaultOptions()})

	var moved int
	h.cm.OnOrderChanged(func(column.OrderEvent) { moved++ })

	s.MouseDown(2, 0, left)
	s.MouseMove(10, 0)
	s.MouseUp(10, 0, left)

	require.Zero(t, moved)
	require.Equal(t, []int{0, 1, 2}, h.cm.VisibleColumns())
	require.Zero(t, h.sorts)
}

func TestScroller_MoveUnsortableColumn(t *testing.T) {
	t.Parallel()

	s, h := newScroller(t, setup{rows: 3, width: 40, height: 5, opts: DefaultOptions()})
	h.src.SetColumnSortable(0, false)

	require.False(t, s.MouseDown(2, 0, left))
	require.False(t, s.Dragging())
	s.MouseMove(20, 0)
	s.MouseUp(20, 0, left)

	require.Equal(t, []int{0, 1, 2}, h.cm.VisibleColumns())
	require.Zero(t, h.sorts)

	// Sortable columns still move.
	require.True(t, s.MouseDown(10, 0, left))
	s.MouseMove(11, 0)
	s.MouseMove(1, 0)
	s.MouseUp(1, 0, left)
	require.Equal(t, []int{1, 0, 2}, h.cm.VisibleColumns())
}

func TestScroller_MoveCaptureLost(t *testing.T) {
	t.Parallel()

	s, h := newScroller(t, setup{rows: 3, width: 40, height: 5, opts: DefaultOptions()})

	s.MouseDown(18, 0, left)
	s.MouseMove(1, 0)
	s.CaptureLost()

	require.Equal(t, []int{2, 0, 1}, h.cm.VisibleColumns())
	require.False(t, s.Dragging())
}

func TestScroller_HeaderClickSorts(t *testing.T) {
	t.Parallel()

	s, h := newScroller(t, setup{rows: 10, width: 40, height: 12, opts: DefaultOptions()})
	h.mgr.Model().SetSelectionInterval(2, 4)

	s.MouseDown(9, 0, left)
	s.MouseUp(9, 0, left)
	require.Equal(t, 1, h.src.SortColumnIndex())
	require.True(t, h.src.IsSortAscending())
	require.True(t, h.mgr.Model().IsSelectionEmpty())

	s.MouseDown(9, 0, left)
	s.MouseUp(9, 0, left)
	require.False(t, h.src.IsSortAscending())
	require.Equal(t, 2, h.sorts)

	h.veto = true
	s.MouseDown(9, 0, left)
	s.MouseUp(9, 0, left)
	require.False(t, h.src.IsSortAscending())
	require.Equal(t, 3, h.sorts)

	h.veto = false
	h.src.SetColumnSortable(2, false)
	s.MouseDown(17, 0, left)
	s.MouseUp(17, 0, left)
	require.Equal(t, 1, h.src.SortColumnIndex())
	require.Equal(t, 3, h.sorts)
}

func TestScroller_ClickAndDoubleClick(t *testing.T) {
	t.Parallel()

	s, h := newScroller(t, setup{rows: 10, width: 40, height: 12, opts: DefaultOptions()})
	h.src.SetEditable(true)
	h.cm.SetEditorFactory(1, &editor.TextFactory{})

	now := time.Unix(0, 0)
	s.SetClock(func() time.Time { return now })

	var clicks, doubles []CellEvent
	s.OnCellClick(func(ev CellEvent) { clicks = append(clicks, ev) })
	s.OnCellDoubleClick(func(ev CellEvent) { doubles = append(doubles, ev) })

	require.False(t, s.MouseDown(10, 3, left))
	s.MouseUp(10, 3, left)
	require.Equal(t, []CellEvent{{Row: 2, Col: 1, Gesture: left}}, clicks)
	require.Equal(t, 1, h.focusCol)
	require.Equal(t, 2, h.focusRow)
	require.True(t, h.mgr.Model().IsSelectedIndex(2))

	now = now.Add(DefaultDoubleClickInterval / 2)
	s.MouseDown(10, 3, left)
	s.MouseUp(10, 3, left)
	require.Len(t, doubles, 1)
	require.True(t, s.IsEditing())

	// Pressing elsewhere commits the edit.
	s.MouseDown(10, 5, left)
	require.False(t, s.IsEditing())
	require.Equal(t, 4, h.focusRow)

	now = now.Add(2 * DefaultDoubleClickInterval)
	s.MouseUp(10, 5, left)
	s.MouseDown(10, 5, left)
	now = now.Add(2 * DefaultDoubleClickInterval)
	s.MouseUp(10, 5, left)
	require.Len(t, doubles, 1)
	require.Len(t, clicks, 3)
}

func TestScroller_ContextMenu(t *testing.T) {
	t.Parallel()

	s, h := newScroller(t, setup{rows: 10, width: 40, height: 12, opts: DefaultOptions()})

	var events []CellEvent
	s.OnCellContextMenu(func(ev CellEvent) { events = append(events, ev) })

	right := selection.Gesture{Button: selection.ButtonRight}
	s.MouseDown(3, 4, right)

	require.Equal(t, []CellEvent{{Row: 3, Col: 0, Gesture: right}}, events)
	require.True(t, h.mgr.Model().IsSelectedIndex(3))
}

func TestScroller_Editing(t *testing.T) {
	t.Parallel()

	s, h := newScroller(t, setup{rows: 10, width: 40, height: 12, opts: DefaultOptions()})
	h.cm.SetEditorFactory(1, &editor.TextFactory{})
	h.SetFocusedCell(1, 2, false)

	_, ok := s.StartEditing()
	require.False(t, ok, "column is not editable")

	h.src.SetColumnEditable(1, true)
	_, ok = s.StartEditing()
	require.True(t, ok)
	_, ok = s.StartEditing()
	require.False(t, ok, "one session at a time")

	var edits []EditedEvent
	s.OnCellEdited(func(ev EditedEvent) { edits = append(edits, ev) })

	s.Editor().(*editor.Text).SetText("changed")
	require.NoError(t, s.StopEditing())
	require.Equal(t, "changed", h.src.Value(1, 2))
	require.Equal(t, []EditedEvent{{Row: 2, Col: 1, OldValue: "r2", Value: "changed"}}, edits)

	_, ok = s.StartEditing()
	require.True(t, ok)
	s.Editor().(*editor.Text).SetText("discarded")
	s.CancelEditing()
	require.Equal(t, "changed", h.src.Value(1, 2))
	require.Len(t, edits, 1)
}

func TestScroller_EditorVeto(t *testing.T) {
	t.Parallel()

	s, h := newScroller(t, setup{rows: 10, width: 40, height: 12, opts: DefaultOptions()})
	h.src.SetEditable(true)
	h.cm.SetEditorFactory(0, &editor.TextFactory{
		Allow: func(info render.CellInfo) bool { return info.Row%2 == 1 },
	})

	h.SetFocusedCell(0, 2, false)
	_, ok := s.StartEditing()
	require.False(t, ok)

	h.SetFocusedCell(0, 3, false)
	_, ok = s.StartEditing()
	require.True(t, ok)
}

func TestScroller_HeaderGolden(t *testing.T) {
	t.Parallel()

	s, h := newScroller(t, setup{rows: 3, width: 24, height: 5, opts: DefaultOptions()})
	first := s.headerLine()
	require.Equal(t, first, s.headerLine())
	require.Equal(t, 1, s.HeaderRenders())

	h.src.SortByColumn(1, true)
	second := s.headerLine()
	require.Equal(t, 2, s.HeaderRenders())

	golden.RequireEqual(t, []byte(first+"\n"+second))
}

func TestScroller_HeaderMemo(t *testing.T) {
	t.Parallel()

	s, h := newScroller(t, setup{rows: 3, width: 40, height: 5, opts: DefaultOptions()})
	s.headerLine()
	s.headerLine()
	require.Equal(t, 1, s.HeaderRenders())

	h.cm.SetColumnWidth(0, 5, false)
	s.headerLine()
	require.Equal(t, 2, s.HeaderRenders())
}

func TestScroller_ScrollCellVisible(t *testing.T) {
	t.Parallel()

	s, _ := newScroller(t, setup{rows: 100, width: 30, height: 11, opts: DefaultOptions()})

	s.ScrollCellVisible(0, 50)
	require.Equal(t, 41, s.ScrollY())
	require.Equal(t, 41, s.Pane().FirstVisibleRow())

	s.ScrollCellVisible(0, 45)
	require.Equal(t, 41, s.ScrollY())

	s.ScrollCellVisible(0, 3)
	require.Equal(t, 3, s.ScrollY())
}

func TestScroller_ScrollX(t *testing.T) {
	t.Parallel()

	s, _ := newScroller(t, setup{rows: 3, width: 12, height: 5, opts: DefaultOptions()})
	require.True(t, s.HorizontalScrollBarVisible())
	require.Equal(t, 12, s.MaxScrollX())

	s.ScrollCellVisible(2, 0)
	require.Equal(t, 12, s.ScrollX())
	col, ok := s.ColumnAt(0)
	require.True(t, ok)
	require.Equal(t, 1, col)

	s.ScrollCellVisible(0, 0)
	require.Zero(t, s.ScrollX())
}

func TestScroller_DeferredScroll(t *testing.T) {
	t.Parallel()

	s, _ := newScroller(t, setup{rows: 100, width: 30, height: 11, opts: DefaultOptions()})

	s.Wheel(2)
	require.True(t, s.UpdatePending())
	require.Equal(t, 6, s.ScrollY())
	require.Zero(t, s.Pane().FirstVisibleRow())

	require.True(t, s.Tick())
	require.Equal(t, 6, s.Pane().FirstVisibleRow())
	require.False(t, s.Tick())

	s.Wheel(-10)
	s.Tick()
	require.Zero(t, s.ScrollY())
}

func TestScroller_VerticalScrollBarEvent(t *testing.T) {
	t.Parallel()

	s, h := newScroller(t, setup{rows: 3, width: 30, height: 6, opts: DefaultOptions()})
	require.False(t, s.VerticalScrollBarVisible())

	var events []bool
	s.OnVerticalScrollBarChanged(func(v bool) { events = append(events, v) })

	rows := make([][]any, 10)
	for i := range rows {
		rows[i] = []any{100 + i, "x", false}
	}
	h.src.AddRows(rows, -1)
	require.Equal(t, []bool{true}, events)

	require.NoError(t, h.src.RemoveRows(0, 12))
	require.Equal(t, []bool{true, false}, events)
}

func TestScroller_View(t *testing.T) {
	t.Parallel()

	s, h := newScroller(t, setup{rows: 10, width: 30, height: 6, opts: DefaultOptions()})
	h.SetFocusedCell(1, 0, false)

	view := s.View()
	require.Contains(t, view, "ID")
	require.Contains(t, view, "r0")
	require.Contains(t, view, "r4")
	require.NotContains(t, view, "r5")
}
