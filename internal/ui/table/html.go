package table

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/datagrid/internal/ui/render"
)

// HTML renders count rows starting at first as div markup, using the HTML
// flavor of the header, row and cell renderers. A negative count renders
// every remaining row. Rows that are not loaded yet are skipped.
func (t *Table) HTML(first, count int) string {
	first = max(first, 0)
	last := t.src.RowCount()
	if count >= 0 {
		last = min(last, first+count)
	}

	var (
		rr render.HTMLRow
		hr render.HTMLHeader
		cr render.HTMLCell
		b  strings.Builder
	)
	cols, height := t.cm.VisibleColumns(), t.opts.RowHeight
	lefts := make([]int, len(cols))
	var width int
	for i, col := range cols {
		lefts[i] = width
		width += t.cm.ColumnWidth(col)
	}

	fmt.Fprintf(&b, `<div class="datagrid" data-rows="%d">`, t.src.RowCount())
	b.WriteString(`<div class="header">`)
	sortCol := t.src.SortColumnIndex()
	for i, col := range cols {
		b.WriteString(hr.RenderHeader(render.HeaderInfo{
			Name:      t.src.ColumnName(col),
			Col:       col,
			XPos:      i,
			Width:     t.cm.ColumnWidth(col),
			Sortable:  t.src.IsColumnSortable(col),
			Editable:  t.src.IsColumnEditable(col),
			Sorted:    col == sortCol,
			Ascending: t.src.IsSortAscending(),
		}))
	}
	b.WriteString(`</div><div class="rows">`)

	for row := first; row < last; row++ {
		rowData, ok := t.src.RowData(row)
		if !ok {
			continue
		}
		info := render.RowInfo{
			RowData:    rowData,
			Row:        row,
			Selected:   t.sel.IsSelectedIndex(row),
			FocusedRow: row == t.focusRow,
		}
		var cells strings.Builder
		for i, col := range cols {
			stop := cr.RenderCell(&cells, render.CellInfo{
				Value:       t.src.Value(col, row),
				RowData:     rowData,
				Row:         row,
				Col:         col,
				XPos:        i,
				Selected:    info.Selected,
				FocusedRow:  info.FocusedRow,
				Editable:    t.src.IsColumnEditable(col),
				StyleLeft:   lefts[i],
				StyleWidth:  t.cm.ColumnWidth(col),
				StyleHeight: height,
			})
			if stop {
				break
			}
		}
		el := render.RowElement{
			Row:    row,
			Class:  rr.RowClass(info),
			Cells:  cells.String(),
			Width:  width,
			Height: height,
		}
		b.WriteString(rr.Compose(&el))
	}
	b.WriteString(`</div></div>`)
	return b.String()
}
