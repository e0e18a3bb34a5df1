package table

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/datagrid/internal/config"
	"github.com/charmbracelet/datagrid/internal/data"
	"github.com/charmbracelet/datagrid/internal/ui/column"
	"github.com/charmbracelet/datagrid/internal/ui/common"
	"github.com/charmbracelet/datagrid/internal/ui/editor"
	"github.com/charmbracelet/datagrid/internal/ui/render"
	"github.com/charmbracelet/datagrid/internal/ui/scroller"
	"github.com/charmbracelet/datagrid/internal/ui/selection"
	"github.com/charmbracelet/datagrid/internal/ui/styles"
	"github.com/charmbracelet/datagrid/internal/uiutil"
	"github.com/stretchr/testify/require"
)

func newCommon(modify func(*config.TableOptions)) *common.Common {
	cfg := config.Defaults()
	if modify != nil {
		modify(&cfg.Table)
	}
	return &common.Common{Config: cfg, Styles: styles.Styles{}}
}

func newSimple(rows int) *data.Simple {
	src := data.NewSimple("ID", "Name", "Even")
	values := make([][]any, rows)
	for i := range values {
		values[i] = []any{i, fmt.Sprintf("r%d", i), i%2 == 0}
	}
	src.SetData(values)
	return src
}

func newTable(t *testing.T, rows int, modify func(*config.TableOptions)) (*Table, *data.Simple) {
	t.Helper()
	src := newSimple(rows)
	tbl := New(newCommon(modify), src)
	t.Cleanup(tbl.Close)
	tbl.SetSize(40, 12)
	return tbl, src
}

func press(code rune, mod tea.KeyMod) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code, Mod: mod}
}

func send(t *testing.T, tbl *Table, msgs ...tea.Msg) tea.Cmd {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		_, cmd = tbl.Update(msg)
	}
	return cmd
}

func TestTable_Layout(t *testing.T) {
	t.Parallel()

	tbl, _ := newTable(t, 100, nil)
	require.Len(t, tbl.Scrollers(), 1)
	s := tbl.Scrollers()[0]
	w, h := s.Size()
	require.Equal(t, 40, w)
	require.Equal(t, 11, h)
	require.Equal(t, 10, s.PaneHeight())
	require.True(t, s.VerticalScrollBarVisible())
	require.False(t, s.HorizontalScrollBarVisible())

	out := strings.Split(tbl.Render(), "\n")
	require.Len(t, out, 12)
	require.True(t, strings.HasPrefix(out[0], "ID"))
	require.True(t, strings.HasPrefix(out[1], "0"))
	require.Contains(t, out[11], "100 rows")
}

func TestTable_MetaColumns(t *testing.T) {
	t.Parallel()

	tbl, _ := newTable(t, 100, func(o *config.TableOptions) {
		o.MetaColumns = []int{1, -1}
	})
	require.Equal(t, []int{1, -1}, tbl.MetaColumnCounts())
	sc := tbl.Scrollers()
	require.Len(t, sc, 2)
	require.Equal(t, []int{0}, sc[0].Columns().Columns())
	require.Equal(t, []int{1, 2}, sc[1].Columns().Columns())

	w0, _ := sc[0].Size()
	w1, _ := sc[1].Size()
	require.Equal(t, 12, w0)
	require.Equal(t, 28, w1)
	require.False(t, sc[0].VerticalScrollBarVisible())
	require.True(t, sc[1].VerticalScrollBarVisible())

	// Scrolling moves both scrollers.
	tbl.SetScrollY(20, true)
	require.Equal(t, 20, sc[0].Pane().FirstVisibleRow())
	require.Equal(t, 20, sc[1].Pane().FirstVisibleRow())

	require.ErrorIs(t, tbl.SetMetaColumnCounts([]int{-1, 1}), column.ErrInvalidArgument)
	require.ErrorIs(t, tbl.SetMetaColumnCounts(nil), column.ErrInvalidArgument)

	require.NoError(t, tbl.SetMetaColumnCounts([]int{2, 1}))
	require.Len(t, tbl.Scrollers(), 2)
	require.Equal(t, []int{2}, tbl.Scrollers()[1].Columns().Columns())
	require.Equal(t, 20, tbl.Scrollers()[1].ScrollY())
}

func TestTable_KeyboardNavigation(t *testing.T) {
	t.Parallel()

	tbl, _ := newTable(t, 100, nil)
	var focus []FocusEvent
	tbl.OnFocusChanged(func(ev FocusEvent) { focus = append(focus, ev) })

	send(t, tbl, press(tea.KeyDown, 0))
	col, row := tbl.FocusedCell()
	require.Equal(t, 0, col)
	require.Zero(t, row)
	require.True(t, tbl.SelectionModel().IsSelectedIndex(0))

	send(t, tbl, press(tea.KeyDown, 0), press(tea.KeyDown, tea.ModShift))
	_, row = tbl.FocusedCell()
	require.Equal(t, 2, row)
	require.Equal(t, []selection.Range{{Min: 1, Max: 2}}, tbl.SelectionModel().Ranges())

	send(t, tbl, press(tea.KeyRight, 0), press(tea.KeyRight, 0), press(tea.KeyRight, 0))
	col, _ = tbl.FocusedCell()
	require.Equal(t, 2, col, "focus clamps at the last column")

	send(t, tbl, press(tea.KeyEnd, 0))
	_, row = tbl.FocusedCell()
	require.Equal(t, 99, row)
	require.Equal(t, 90, tbl.Scrollers()[0].Pane().FirstVisibleRow())

	send(t, tbl, press(tea.KeyPgUp, 0))
	_, row = tbl.FocusedCell()
	require.Equal(t, 90, row)

	send(t, tbl, press(tea.KeyHome, 0))
	_, row = tbl.FocusedCell()
	require.Zero(t, row)
	require.Zero(t, tbl.Scrollers()[0].ScrollY())

	send(t, tbl, press(tea.KeyUp, 0))
	_, row = tbl.FocusedCell()
	require.Zero(t, row, "focus clamps at the first row")

	require.Equal(t, FocusEvent{Col: 0, Row: 0}, focus[0])
}

func TestTable_FocusWithoutSelection(t *testing.T) {
	t.Parallel()

	tbl, _ := newTable(t, 10, func(o *config.TableOptions) {
		o.RowFocusChangeModifiesSelection = false
	})
	send(t, tbl, press(tea.KeyDown, 0), press(tea.KeyDown, 0))
	_, row := tbl.FocusedCell()
	require.Equal(t, 1, row)
	require.True(t, tbl.SelectionModel().IsSelectionEmpty())

	send(t, tbl, press(tea.KeySpace, 0))
	require.True(t, tbl.SelectionModel().IsSelectedIndex(1))
}

func TestTable_SelectAll(t *testing.T) {
	t.Parallel()

	tbl, _ := newTable(t, 100, nil)
	send(t, tbl, press('a', tea.ModCtrl))
	require.Equal(t, 100, tbl.SelectionModel().SelectedCount())

	single, _ := newTable(t, 100, func(o *config.TableOptions) {
		o.SelectionMode = selection.ModeSingle.String()
	})
	send(t, single, press('a', tea.ModCtrl))
	require.True(t, single.SelectionModel().IsSelectionEmpty())
}

func TestTable_Editing(t *testing.T) {
	t.Parallel()

	tbl, src := newTable(t, 20, nil)
	src.SetColumnEditable(1, true)
	var edits []scroller.EditedEvent
	tbl.OnCellEdited(func(ev scroller.EditedEvent) { edits = append(edits, ev) })

	tbl.SetFocusedCell(0, 5, true)
	send(t, tbl, press(tea.KeyEnter, 0))
	require.False(t, tbl.IsEditing(), "column 0 is not editable")

	tbl.SetFocusedCell(1, 5, true)
	send(t, tbl, press(tea.KeyEnter, 0))
	require.True(t, tbl.IsEditing())

	ed, ok := tbl.Scrollers()[0].Editor().(*editor.Text)
	require.True(t, ok)
	ed.SetText("changed")

	send(t, tbl, press(tea.KeyEnter, 0))
	require.False(t, tbl.IsEditing())
	require.Equal(t, "changed", src.Value(1, 5))
	_, row := tbl.FocusedCell()
	require.Equal(t, 6, row, "committing moves the focus down")
	require.Equal(t, []scroller.EditedEvent{{Row: 5, Col: 1, OldValue: "r5", Value: "changed"}}, edits)

	send(t, tbl, press(tea.KeyF2, 0))
	require.True(t, tbl.IsEditing())
	tbl.Scrollers()[0].Editor().(*editor.Text).SetText("dropped")
	send(t, tbl, press(tea.KeyEscape, 0))
	require.False(t, tbl.IsEditing())
	require.Equal(t, "r6", src.Value(1, 6))
	require.Len(t, edits, 1)
}

func TestTable_BeforeSort(t *testing.T) {
	t.Parallel()

	tbl, _ := newTable(t, 5, nil)
	require.True(t, tbl.BeforeSort(1, true))

	unsub := tbl.OnBeforeSort(func(ev *BeforeSortEvent) {
		if ev.Col == 1 {
			ev.Cancel()
		}
	})
	require.False(t, tbl.BeforeSort(1, true))
	require.True(t, tbl.BeforeSort(2, false))
	unsub()
	require.True(t, tbl.BeforeSort(1, true))
}

func TestTable_HeaderClickSorts(t *testing.T) {
	t.Parallel()

	tbl, src := newTable(t, 5, nil)
	// Header cell of column 1 starts at x 12.
	send(t, tbl,
		tea.MouseClickMsg{X: 14, Y: 0, Button: tea.MouseLeft},
		tea.MouseReleaseMsg{X: 14, Y: 0, Button: tea.MouseLeft},
	)
	require.Equal(t, 1, src.SortColumnIndex())
	require.True(t, src.IsSortAscending())
}

func TestTable_MouseClick(t *testing.T) {
	t.Parallel()

	tbl, _ := newTable(t, 100, nil)
	var clicks []scroller.CellEvent
	tbl.OnCellClick(func(ev scroller.CellEvent) { clicks = append(clicks, ev) })

	send(t, tbl,
		tea.MouseClickMsg{X: 13, Y: 3, Button: tea.MouseLeft},
		tea.MouseReleaseMsg{X: 13, Y: 3, Button: tea.MouseLeft},
	)
	col, row := tbl.FocusedCell()
	require.Equal(t, 1, col)
	require.Equal(t, 2, row)
	require.True(t, tbl.SelectionModel().IsSelectedIndex(2))
	require.Len(t, clicks, 1)
	require.Equal(t, 2, clicks[0].Row)

	// Clicks outside any scroller are ignored.
	send(t, tbl, tea.MouseClickMsg{X: 100, Y: 100, Button: tea.MouseLeft})
	require.Len(t, clicks, 1)
}

func TestTable_MouseWheel(t *testing.T) {
	t.Parallel()

	tbl, _ := newTable(t, 100, nil)
	s := tbl.Scrollers()[0]
	send(t, tbl, tea.MouseWheelMsg{X: 5, Y: 5, Button: tea.MouseWheelDown})
	require.Equal(t, scroller.DefaultWheelRows, s.ScrollY())
	require.True(t, s.UpdatePending())
	require.Zero(t, s.Pane().FirstVisibleRow())

	// The timer renders the deferred update.
	send(t, tbl, tickMsg{id: tbl.ID(), gen: tbl.tickGen})
	require.False(t, s.UpdatePending())
	require.Equal(t, scroller.DefaultWheelRows, s.Pane().FirstVisibleRow())
}

func TestTable_Timer(t *testing.T) {
	t.Parallel()

	tbl, _ := newTable(t, 100, nil)
	require.NotNil(t, tbl.Init())

	require.NotNil(t, send(t, tbl, tickMsg{id: tbl.ID(), gen: tbl.tickGen}))
	require.Nil(t, send(t, tbl, tickMsg{id: "other", gen: tbl.tickGen}))

	stale := tickMsg{id: tbl.ID(), gen: tbl.tickGen}
	require.Nil(t, tbl.SetVisible(false))
	require.False(t, tbl.Visible())
	require.Nil(t, tbl.tick())
	require.Nil(t, send(t, tbl, stale), "ticks stop while hidden")

	require.NotNil(t, tbl.SetVisible(true))
	require.Nil(t, send(t, tbl, stale), "ticks of an earlier run are dropped")
}

func TestTable_DataChanged(t *testing.T) {
	t.Parallel()

	tbl, src := newTable(t, 20, nil)
	tbl.SetFocusedCell(1, 10, false)
	tbl.SelectionModel().SetSelectionInterval(8, 12)

	require.NoError(t, src.RemoveRows(0, 3))
	_, row := tbl.FocusedCell()
	require.Equal(t, 7, row)
	require.Equal(t, []selection.Range{{Min: 5, Max: 9}}, tbl.SelectionModel().Ranges())

	require.NoError(t, src.RemoveRows(6, 2))
	col, row := tbl.FocusedCell()
	require.Equal(t, -1, col)
	require.Equal(t, -1, row)

	src.AddRows([][]any{{100, "new", true}}, 0)
	require.Equal(t, []selection.Range{{Min: 6, Max: 8}}, tbl.SelectionModel().Ranges())
	require.Contains(t, tbl.Render(), "16 rows")
}

func TestTable_SetSource(t *testing.T) {
	t.Parallel()

	tbl, _ := newTable(t, 20, nil)
	tbl.SetFocusedCell(1, 3, false)
	tbl.SelectionModel().SetSelectionInterval(1, 2)

	next := data.NewSimple("A", "B")
	next.SetData([][]any{{1, 2}, {3, 4}})
	require.Nil(t, tbl.SetSource(next))

	col, row := tbl.FocusedCell()
	require.Equal(t, -1, col)
	require.Equal(t, -1, row)
	require.True(t, tbl.SelectionModel().IsSelectionEmpty())
	require.Equal(t, 2, tbl.ColumnModel().OverallColumnCount())
	require.Contains(t, tbl.Render(), "2 rows")
}

func TestTable_SelectionTSV(t *testing.T) {
	t.Parallel()

	tbl, src := newTable(t, 5, nil)
	text, n := tbl.SelectionTSV()
	require.Zero(t, n)
	require.Empty(t, text)

	require.NoError(t, src.SetValue(1, 3, "a\tb"))
	tbl.SelectionModel().SetSelectionInterval(2, 3)
	text, n = tbl.SelectionTSV()
	require.Equal(t, 2, n)
	require.Equal(t, "ID\tName\tEven\n2\tr2\ttrue\n3\ta    b\tfalse", text)

	tbl.ColumnModel().SetColumnVisible(2, false)
	text, _ = tbl.SelectionTSV()
	require.Equal(t, "ID\tName\n2\tr2\n3\ta    b", text)
}

func TestTable_Status(t *testing.T) {
	t.Parallel()

	tbl, _ := newTable(t, 5, nil)
	cmd := send(t, tbl, uiutil.InfoMsg{Type: uiutil.InfoTypeWarn, Msg: "careful", TTL: time.Second})
	require.NotNil(t, cmd)
	require.Contains(t, tbl.Render(), "careful")

	send(t, tbl, uiutil.ClearStatusMsg{ID: tbl.statusID - 1})
	require.Contains(t, tbl.Render(), "careful", "stale clears are ignored")

	send(t, tbl, uiutil.ClearStatusMsg{ID: tbl.statusID})
	require.NotContains(t, tbl.Render(), "careful")
	require.Contains(t, tbl.Render(), "5 rows")
}

func TestTable_Remote(t *testing.T) {
	t.Parallel()

	src := data.NewRemote(t.Context(), data.Generated{Rows: 50}, data.RemoteOptions{BlockSize: 10}, data.GeneratedColumns...)
	tbl := New(newCommon(nil), src)
	t.Cleanup(tbl.Close)
	tbl.SetSize(60, 12)

	var reloads []bool
	tbl.OnReloadData(func(r bool) { reloads = append(reloads, r) })

	pump := func(cond func() bool) {
		t.Helper()
		for !cond() {
			wait := tbl.waitLoaded()
			msgs := make(chan tea.Msg, 1)
			go func() { msgs <- wait() }()
			select {
			case msg := <-msgs:
				send(t, tbl, msg)
			case <-time.After(5 * time.Second):
				t.Fatal("timed out waiting for rows")
			}
		}
	}

	pump(func() bool { return src.RowCount() == 50 })
	pump(func() bool { return !tbl.Reloading() })
	require.Equal(t, []bool{true, false}, reloads)
	require.Contains(t, tbl.Render(), "Item 000000")
}

func TestTable_HTML(t *testing.T) {
	t.Parallel()

	tbl, src := newTable(t, 10, nil)
	tbl.ColumnModel().SetColumnVisible(2, false)
	src.SetData([][]any{{1, "<b>", true}, {2, "x", false}})
	src.SortByColumn(0, false)
	tbl.SelectionModel().SetSelectionInterval(1, 1)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(tbl.HTML(0, -1)))
	require.NoError(t, err)
	require.Equal(t, "2", doc.Find(".datagrid").AttrOr("data-rows", ""))

	headers := doc.Find(".header .header-cell")
	require.Equal(t, 2, headers.Length())
	require.Equal(t, "ID", headers.First().Text())
	require.True(t, headers.First().HasClass("sorted-descending"))

	rows := doc.Find(".rows .row")
	require.Equal(t, 2, rows.Length())
	require.True(t, rows.First().HasClass("row-even"))
	require.Equal(t, "x", rows.First().Find(".col-1").Text())
	require.Equal(t, "width:24px;height:1px", rows.First().AttrOr("style", ""))
	require.Equal(t, "left:12px;width:12px;height:1px", rows.First().Find(".col-1").AttrOr("style", ""))

	last := rows.Last()
	require.True(t, last.HasClass("row-selected"))
	require.Equal(t, "<b>", last.Find(".col-1").Text())

	doc, err = goquery.NewDocumentFromReader(strings.NewReader(tbl.HTML(1, 5)))
	require.NoError(t, err)
	require.Equal(t, 1, doc.Find(".row").Length())
	require.Equal(t, "1", doc.Find(".row").AttrOr("data-row", ""))
}

func TestTable_UseTypedRenderers(t *testing.T) {
	t.Parallel()

	tbl, _ := newTable(t, 5, nil)
	tbl.UseTypedRenderers(10)
	cm := tbl.ColumnModel()
	require.IsType(t, render.Number{}, cm.DataRenderer(0))
	require.IsType(t, render.Default{}, cm.DataRenderer(1))
	require.IsType(t, render.Boolean{}, cm.DataRenderer(2))
}

func TestTable_Settle(t *testing.T) {
	t.Parallel()

	src := data.NewRemote(t.Context(), data.Generated{Rows: 30, Latency: time.Millisecond}, data.RemoteOptions{BlockSize: 5}, data.GeneratedColumns...)
	tbl := New(newCommon(nil), src)
	t.Cleanup(tbl.Close)
	tbl.SetSize(60, 12)

	require.NoError(t, tbl.Settle(t.Context()))
	require.False(t, tbl.Busy())
	require.Equal(t, 30, src.RowCount())
	out := tbl.Render()
	require.Contains(t, out, "Item 000000")
	require.Contains(t, out, "Item 000009")
	require.Contains(t, out, "30 rows")

	require.NoError(t, New(newCommon(nil), newSimple(3)).Settle(t.Context()))
}

func TestTable_PasteCell(t *testing.T) {
	t.Parallel()

	tbl, src := newTable(t, 5, nil)
	var edits []scroller.EditedEvent
	tbl.OnCellEdited(func(ev scroller.EditedEvent) { edits = append(edits, ev) })

	tbl.SetFocusedCell(0, 2, false)
	cmd := tbl.paste()
	require.NotNil(t, cmd)
	info, ok := cmd().(uiutil.InfoMsg)
	require.True(t, ok)
	require.Equal(t, uiutil.InfoTypeWarn, info.Type)
	require.Nil(t, tbl.PasteCell(0, 2, "7"))
	require.Equal(t, 2, src.Value(0, 2), "column 0 is not editable")

	// A copied row pastes back as its typed value.
	src.SetColumnEditable(0, true)
	src.SetColumnEditable(1, true)
	tbl.SelectionModel().SetSelectionInterval(2, 2)
	text, n := tbl.SelectionTSV()
	require.Equal(t, 1, n)
	require.Nil(t, tbl.PasteCell(0, 4, text))
	require.Equal(t, 2, src.Value(0, 4))
	require.Nil(t, tbl.PasteCell(1, 4, text))
	require.Equal(t, "2", src.Value(1, 4))

	require.Nil(t, tbl.PasteCell(0, 3, "42\tx\n"))
	require.Equal(t, 42, src.Value(0, 3))
	require.Nil(t, tbl.PasteCell(0, 1, "N/A"))
	require.Equal(t, 1, src.Value(0, 1), "text that does not parse keeps the number")
	require.Equal(t, []scroller.EditedEvent{
		{Row: 4, Col: 0, OldValue: 4, Value: 2},
		{Row: 4, Col: 1, OldValue: "r4", Value: "2"},
		{Row: 3, Col: 0, OldValue: 3, Value: 42},
		{Row: 1, Col: 0, OldValue: 1, Value: 1},
	}, edits)

	send(t, tbl, pasteMsg{id: tbl.ID(), col: 0, row: 4, text: "9"})
	require.Equal(t, 9, src.Value(0, 4))
	send(t, tbl, pasteMsg{id: "other", col: 0, row: 4, text: "10"})
	require.Equal(t, 9, src.Value(0, 4))
}

func TestTable_Title(t *testing.T) {
	t.Parallel()

	tbl, _ := newTable(t, 3, nil)
	tbl.SetTitle("people.csv")
	out := strings.Split(tbl.Render(), "\n")
	require.Contains(t, out[len(out)-1], "people.csv  3 rows")
}
