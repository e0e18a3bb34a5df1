package scroller

// RowAt resolves a point in scroller coordinates to a row. Points on the
// header resolve to -1. Points outside the pane or below the last row are
// not found.
func (s *Scroller) RowAt(x, y int) (int, bool) {
	l := s.lay
	if x < 0 || x >= l.clipW {
		return 0, false
	}
	if y >= l.headerH && y < l.headerH+l.clipH {
		rh := s.rowHeight()
		scrollY := s.scrollY
		if s.opts.KeepFirstRowComplete {
			scrollY = scrollY / rh * rh
		}
		row := (scrollY + y - l.headerH) / rh
		if row < s.host.Source().RowCount() {
			return row, true
		}
		return 0, false
	}
	if y >= 0 && y < l.headerH {
		return -1, true
	}
	return 0, false
}

// ColumnAt resolves an x position in scroller coordinates to the model
// index of a column of the window.
func (s *Scroller) ColumnAt(x int) (int, bool) {
	if x < 0 || x >= s.lay.clipW {
		return 0, false
	}
	cm := s.host.ColumnModel()
	target := x + s.scrollX
	var right int
	for i := range s.columns.ColumnCount() {
		col := s.columns.ColumnAtX(i)
		right += cm.ColumnWidth(col)
		if target < right {
			return col, true
		}
	}
	return 0, false
}

// CellAt resolves a point to a cell. The row is -1 on the header.
func (s *Scroller) CellAt(x, y int) (col, row int, ok bool) {
	row, ok = s.RowAt(x, y)
	if !ok {
		return 0, 0, false
	}
	col, ok = s.ColumnAt(x)
	if !ok {
		return 0, 0, false
	}
	return col, row, true
}

// ResizeColumnAt returns the column whose right edge is within the resize
// radius of x, or -1.
func (s *Scroller) ResizeColumnAt(x int) int {
	if x < 0 || x >= s.lay.clipW {
		return -1
	}
	cm := s.host.ColumnModel()
	target := x + s.scrollX
	r := s.opts.ResizeRadius
	var right int
	for i := range s.columns.ColumnCount() {
		col := s.columns.ColumnAtX(i)
		right += cm.ColumnWidth(col)
		if edge := right - 1; target >= edge-r && target <= edge+r {
			return col
		}
	}
	return -1
}
