// Package pane implements the row virtualizer of the grid: it renders
// exactly the rows of the current viewport window, keeps a bounded cache of
// rendered rows and scrolls by small deltas without re-rendering the rows
// that stay visible.
package pane

import (
	"log/slog"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/datagrid/internal/data"
	"github.com/charmbracelet/datagrid/internal/event"
	"github.com/charmbracelet/datagrid/internal/ui/column"
	"github.com/charmbracelet/datagrid/internal/ui/render"
	"github.com/charmbracelet/datagrid/internal/ui/selection"
)

// MaxScrollDelta is the largest row delta handled by splicing rows into
// the rendered block instead of re-rendering it.
const MaxScrollDelta = 10

// Options configure a Pane.
type Options struct {
	// RowHeight is the height of a row in lines.
	RowHeight int
	// MaxCacheLines bounds the row cache: 0 disables it and -1 leaves it
	// unbounded.
	MaxCacheLines int
	// AlwaysUpdateCells re-renders cell content on selection and focus
	// changes instead of restyling rows.
	AlwaysUpdateCells bool
}

// Update selects the kind of content update.
type Update struct {
	// Complete clears the row cache first.
	Complete bool
	// ScrollOffset is the row delta of a scroll.
	ScrollOffset int
	// OnlyRow limits a style update to one row; -1 means all rows.
	OnlyRow int
	// OnlySelectionOrFocus marks updates where only selection or focus
	// changed.
	OnlySelectionOrFocus bool
}

// Stats counts rendering work, mainly for tests and debug logging.
type Stats struct {
	RowsBuilt     int
	CacheHits     int
	RowsRestyled  int
	FullUpdates   int
	ScrollUpdates int
}

type rowNode struct {
	el   render.RowElement
	text string
}

// Pane is the row virtualizer. It is not safe for concurrent use.
type Pane struct {
	columns  *column.Pane
	source   data.Source
	sel      *selection.Model
	renderer render.RowRenderer
	opts     Options

	firstRow    int
	visibleRows int

	focusedCol int
	focusedRow int
	// rows that lost the focus during a mass update and still carry its style.
	staleRows []int

	// nil until the first full update.
	rows  []rowNode
	width int

	cache map[int]rowNode

	stats       Stats
	reloadsData event.Emitter[bool]
	updated     event.Emitter[struct{}]
}

// New creates a pane rendering source through the columns of cols.
func New(cols *column.Pane, source data.Source, sel *selection.Model, rr render.RowRenderer, opts Options) *Pane {
	opts.RowHeight = max(opts.RowHeight, 1)
	return &Pane{
		columns:    cols,
		source:     source,
		sel:        sel,
		renderer:   rr,
		opts:       opts,
		focusedCol: -1,
		focusedRow: -1,
		cache:      make(map[int]rowNode),
	}
}

// OnReloadData registers a listener told after every row batch whether any
// row was missing its data.
func (p *Pane) OnReloadData(fn func(reloading bool)) func() {
	return p.reloadsData.Subscribe(fn)
}

// OnUpdated registers a listener notified after the content changed.
func (p *Pane) OnUpdated(fn func()) func() {
	return p.updated.Subscribe(func(struct{}) { fn() })
}

// Columns returns the pane's column window.
func (p *Pane) Columns() *column.Pane {
	return p.columns
}

// SetSource replaces the data source and re-renders.
func (p *Pane) SetSource(source data.Source) {
	p.source = source
	p.UpdateContent(Update{Complete: true, OnlyRow: -1})
}

// SetRowRenderer replaces the row renderer and re-renders.
func (p *Pane) SetRowRenderer(rr render.RowRenderer) {
	p.renderer = rr
	p.UpdateContent(Update{Complete: true, OnlyRow: -1})
}

// RowHeight returns the row height in lines.
func (p *Pane) RowHeight() int {
	return p.opts.RowHeight
}

// SetRowHeight changes the row height and re-renders.
func (p *Pane) SetRowHeight(h int) {
	h = max(h, 1)
	if h == p.opts.RowHeight {
		return
	}
	p.opts.RowHeight = h
	p.UpdateContent(Update{Complete: true, OnlyRow: -1})
}

// SetAlwaysUpdateCells sets whether selection and focus changes re-render
// cell content.
func (p *Pane) SetAlwaysUpdateCells(v bool) {
	p.opts.AlwaysUpdateCells = v
}

// FirstVisibleRow returns the first row of the viewport window.
func (p *Pane) FirstVisibleRow() int {
	return p.firstRow
}

// SetFirstVisibleRow moves the viewport window, splicing rows for small
// deltas.
func (p *Pane) SetFirstVisibleRow(row int) {
	row = max(row, 0)
	if row == p.firstRow {
		return
	}
	old := p.firstRow
	p.firstRow = row
	p.UpdateContent(Update{ScrollOffset: row - old, OnlyRow: -1})
}

// VisibleRowCount returns the number of rows in the viewport window.
func (p *Pane) VisibleRowCount() int {
	return p.visibleRows
}

// SetVisibleRowCount resizes the viewport window.
func (p *Pane) SetVisibleRowCount(n int) {
	n = max(n, 0)
	if n == p.visibleRows {
		return
	}
	p.visibleRows = n
	p.UpdateContent(Update{OnlyRow: -1})
}

// RenderedRowCount returns the number of rows in the rendered block.
func (p *Pane) RenderedRowCount() int {
	return len(p.rows)
}

// FocusedCell returns the focused column and row, -1 when unset.
func (p *Pane) FocusedCell() (col, row int) {
	return p.focusedCol, p.focusedRow
}

// SetFocusedCell moves the focus. Unless massUpdate is set the previously
// and newly focused rows are restyled right away.
func (p *Pane) SetFocusedCell(col, row int, massUpdate bool) {
	if col == p.focusedCol && row == p.focusedRow {
		return
	}
	oldRow := p.focusedRow
	p.focusedCol, p.focusedRow = col, row
	if row == oldRow {
		return
	}
	if massUpdate {
		if oldRow != -1 {
			p.staleRows = append(p.staleRows, oldRow)
		}
		return
	}
	if oldRow != -1 {
		p.UpdateContent(Update{OnlyRow: oldRow, OnlySelectionOrFocus: true})
	}
	if row != -1 {
		p.UpdateContent(Update{OnlyRow: row, OnlySelectionOrFocus: true})
	}
}

// OnSelectionChanged restyles rows after the selection changed.
func (p *Pane) OnSelectionChanged() {
	p.UpdateContent(Update{OnlyRow: -1, OnlySelectionOrFocus: true})
}

// OnFocusChanged restyles rows after the focus changed elsewhere.
func (p *Pane) OnFocusChanged() {
	p.UpdateContent(Update{OnlyRow: -1, OnlySelectionOrFocus: true})
}

// OnColumnsChanged re-renders after column widths, order, visibility or
// renderers changed.
func (p *Pane) OnColumnsChanged() {
	p.UpdateContent(Update{Complete: true, OnlyRow: -1})
}

// OnMetaDataChanged re-renders after the data source metadata changed.
func (p *Pane) OnMetaDataChanged() {
	p.UpdateContent(Update{Complete: true, OnlyRow: -1})
}

// OnDataChanged invalidates the rows a data change touched. Changes that
// shift rows, extend to the end or intersect the viewport clear the whole
// cache and re-render; other changes only evict the changed rows from the
// cache.
func (p *Pane) OnDataChanged(ev data.DataChangedEvent) {
	last := p.firstRow + p.visibleRows - 1
	if ev.ShiftsRows() || ev.LastRow == -1 || ev.Intersects(p.firstRow, last) {
		clear(p.cache)
		p.UpdateContent(Update{OnlyRow: -1})
		return
	}
	for row := range p.cache {
		if row >= ev.FirstRow && row <= ev.LastRow {
			delete(p.cache, row)
		}
	}
}

// UpdateContent updates the rendered block.
func (p *Pane) UpdateContent(u Update) {
	if u.Complete {
		clear(p.cache)
	}
	switch {
	case u.ScrollOffset != 0 && abs(u.ScrollOffset) <= min(MaxScrollDelta, p.visibleRows):
		p.scrollContent(u.ScrollOffset)
	case u.OnlySelectionOrFocus && !p.opts.AlwaysUpdateCells:
		p.updateRowStyles(u.OnlyRow)
	default:
		p.updateAllRows()
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (p *Pane) scrollContent(offset int) {
	count := p.visibleRows
	if len(p.rows) == 0 || len(p.rows) != count || p.firstRow+count > p.source.RowCount() {
		p.updateAllRows()
		return
	}
	p.stats.ScrollUpdates++

	n := abs(offset)
	if offset > 0 {
		fresh := p.buildRows(p.firstRow+count-n, n)
		p.rows = append(p.rows[n:], fresh...)
	} else {
		fresh := p.buildRows(p.firstRow, n)
		p.rows = append(fresh, p.rows[:count-n]...)
	}

	// The focused row may have moved between kept and fresh rows.
	if p.focusedRow != -1 {
		p.updateRowStyles(p.focusedRow - offset)
		p.updateRowStyles(p.focusedRow)
	}
	for _, row := range p.staleRows {
		p.updateRowStyles(row)
	}
	p.staleRows = p.staleRows[:0]
	p.updated.Emit(struct{}{})
}

func (p *Pane) updateRowStyles(onlyRow int) {
	if len(p.rows) == 0 {
		p.updateAllRows()
		return
	}

	y, end, row := 0, len(p.rows), p.firstRow
	if onlyRow == -1 {
		p.staleRows = p.staleRows[:0]
	} else {
		offset := onlyRow - p.firstRow
		if offset < 0 || offset >= end {
			return
		}
		y, end, row = offset, offset+1, onlyRow
	}

	for ; y < end; y, row = y+1, row+1 {
		info := p.rowInfo(row)
		node := &p.rows[y]
		prev := node.el.Class
		p.renderer.UpdateRow(&node.el, info)
		if node.el.Class != prev {
			node.text = p.renderer.Compose(&node.el)
		}
		p.stats.RowsRestyled++
	}
	p.updated.Emit(struct{}{})
}

func (p *Pane) updateAllRows() {
	first, count := p.firstRow, p.visibleRows
	if total := p.source.RowCount(); first+count > total {
		count = max(0, total-first)
	}

	p.stats.FullUpdates++
	p.staleRows = p.staleRows[:0]
	if count > 0 {
		p.rows = p.buildRows(first, count)
	} else {
		p.rows = []rowNode{}
	}
	p.width = p.columns.TotalWidth()

	slog.Debug("Pane updated", "first", first, "rows", count, "built", p.stats.RowsBuilt, "cached", len(p.cache))
	p.updated.Emit(struct{}{})
}

type cellColumn struct {
	col      int
	xPos     int
	left     int
	width    int
	editable bool
	renderer render.CellRenderer
}

func (p *Pane) rowInfo(row int) render.RowInfo {
	rowData, _ := p.source.RowData(row)
	return render.RowInfo{
		RowData:    rowData,
		Row:        row,
		Selected:   p.sel.IsSelectedIndex(row),
		FocusedRow: row == p.focusedRow,
	}
}

// buildRows renders rows [first, first+count), serving unselected and
// unfocused rows from the cache.
func (p *Pane) buildRows(first, count int) []rowNode {
	p.source.PrefetchRows(first, first+count-1)

	cm := p.columns.Model()
	ncols := p.columns.ColumnCount()
	cols := make([]cellColumn, ncols)
	var left int
	for x := range ncols {
		col := p.columns.ColumnAtX(x)
		w := cm.ColumnWidth(col)
		cols[x] = cellColumn{
			col:      col,
			xPos:     x,
			left:     left,
			width:    w,
			editable: p.source.IsColumnEditable(col),
			renderer: cm.DataRenderer(col),
		}
		left += w
	}
	rowWidth := left
	height := p.opts.RowHeight

	out := make([]rowNode, 0, count)
	var reloading bool
	for row := first; row < first+count; row++ {
		selected := p.sel.IsSelectedIndex(row)
		focused := row == p.focusedRow

		if node, ok := p.cacheGet(row, selected, focused); ok {
			p.stats.CacheHits++
			out = append(out, node)
			continue
		}

		rowData, ok := p.source.RowData(row)
		if !ok {
			reloading = true
		}
		info := render.RowInfo{RowData: rowData, Row: row, Selected: selected, FocusedRow: focused}
		el := render.RowElement{
			Row:    row,
			Class:  p.renderer.RowClass(info),
			Cells:  p.renderCells(cols, info, height),
			Width:  rowWidth,
			Height: height,
		}
		node := rowNode{el: el}
		node.text = p.renderer.Compose(&node.el)
		p.stats.RowsBuilt++

		if ok {
			p.cacheSet(row, node, selected, focused)
		}
		out = append(out, node)
	}
	p.reloadsData.Emit(reloading)
	return out
}

func (p *Pane) renderCells(cols []cellColumn, row render.RowInfo, height int) string {
	var (
		line   strings.Builder
		blocks []string
	)
	for _, c := range cols {
		info := render.CellInfo{
			Value:       p.source.Value(c.col, row.Row),
			RowData:     row.RowData,
			Row:         row.Row,
			Col:         c.col,
			XPos:        c.xPos,
			Selected:    row.Selected,
			FocusedRow:  row.FocusedRow,
			Editable:    c.editable,
			StyleLeft:   c.left,
			StyleWidth:  c.width,
			StyleHeight: height,
		}
		r := c.renderer
		if r == nil {
			r = render.Default{}
		}
		if height == 1 {
			if r.RenderCell(&line, info) {
				break
			}
			continue
		}
		var cell strings.Builder
		stop := r.RenderCell(&cell, info)
		blocks = append(blocks, cell.String())
		if stop {
			break
		}
	}
	if height == 1 {
		return line.String()
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, blocks...)
}

func (p *Pane) cacheGet(row int, selected, focused bool) (rowNode, bool) {
	if selected || focused {
		return rowNode{}, false
	}
	node, ok := p.cache[row]
	return node, ok
}

func (p *Pane) cacheSet(row int, node rowNode, selected, focused bool) {
	limit := p.opts.MaxCacheLines
	if selected || focused || limit == 0 {
		return
	}
	if _, ok := p.cache[row]; ok {
		return
	}
	if limit > 0 && len(p.cache) >= limit {
		return
	}
	p.cache[row] = node
}

// MaxCacheLines returns the row cache limit.
func (p *Pane) MaxCacheLines() int {
	return p.opts.MaxCacheLines
}

// SetMaxCacheLines changes the row cache limit. A limit at or below the
// number of cached rows clears the cache.
func (p *Pane) SetMaxCacheLines(n int) {
	p.opts.MaxCacheLines = n
	if n == 0 || (n > 0 && len(p.cache) >= n) {
		clear(p.cache)
	}
}

// CachedRows returns the number of rows in the cache.
func (p *Pane) CachedRows() int {
	return len(p.cache)
}

// IsCached reports whether row is in the cache.
func (p *Pane) IsCached(row int) bool {
	_, ok := p.cache[row]
	return ok
}

// Stats returns the rendering counters.
func (p *Pane) Stats() Stats {
	return p.stats
}

// ResetStats zeroes the rendering counters.
func (p *Pane) ResetStats() {
	p.stats = Stats{}
}

// Width returns the total column width at the last full update.
func (p *Pane) Width() int {
	return p.width
}

// Rows returns the rendered rows of the block, one entry per row.
func (p *Pane) Rows() []string {
	out := make([]string, len(p.rows))
	for i, n := range p.rows {
		out[i] = n.text
	}
	return out
}

// RowElement returns the element of a rendered row.
func (p *Pane) RowElement(row int) (render.RowElement, bool) {
	i := row - p.firstRow
	if i < 0 || i >= len(p.rows) {
		return render.RowElement{}, false
	}
	return p.rows[i].el, true
}

// View returns the rendered block.
func (p *Pane) View() string {
	return strings.Join(p.Rows(), "\n")
}
