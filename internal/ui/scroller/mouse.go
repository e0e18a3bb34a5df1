package scroller

import (
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/datagrid/internal/ui/selection"
	"github.com/charmbracelet/x/exp/ordered"
)

type resizeSession struct {
	col       int
	lastX     int
	lastWidth int
}

type moveSession struct {
	col      int
	lastX    int
	colPos   int
	feedback bool
	// target is the visible position the column drops to, -1 for none.
	target int
	line   int
}

// Dragging reports whether a mouse session holds the pointer capture.
func (s *Scroller) Dragging() bool {
	return s.drag != dragNone
}

// Resizing returns the column being resized, or -1.
func (s *Scroller) Resizing() int {
	if s.drag != dragResize {
		return -1
	}
	return s.resize.col
}

// Moving returns the column being moved, or -1.
func (s *Scroller) Moving() int {
	if s.drag != dragMove {
		return -1
	}
	return s.move.col
}

// MouseDown handles a button press at a point in scroller coordinates. It
// reports whether the scroller captured the pointer.
func (s *Scroller) MouseDown(x, y int, g selection.Gesture) bool {
	l := s.lay
	switch {
	case y >= 0 && y < l.headerH:
		if g.Button != selection.ButtonLeft {
			return false
		}
		if col := s.ResizeColumnAt(x); col != -1 {
			s.startResize(col, x)
			return true
		}
		if col, ok := s.ColumnAt(x); ok && s.host.Source().IsColumnSortable(col) {
			s.startMove(col, x)
			return true
		}
		return false

	case l.vbar && x == l.clipW && y >= l.headerH && y < l.headerH+l.clipH:
		s.drag = dragVScroll
		s.dragVerticalScrollBar(y)
		return true

	case l.hbar && y == l.headerH+l.clipH && x >= 0 && x < l.clipW:
		s.drag = dragHScroll
		s.dragHorizontalScrollBar(x)
		return true
	}

	s.host.StopEditing()
	row, ok := s.RowAt(x, y)
	if !ok || row < 0 {
		s.lastDown = cell{}
		return false
	}
	col, colOK := s.ColumnAt(x)
	s.lastDown = cell{row: row, col: col, ok: colOK}
	if colOK {
		s.host.SetFocusedCell(col, row, false)
	}
	s.host.SelectionManager().HandleMouseDown(row, g)
	if g.Button == selection.ButtonRight && colOK {
		s.contextMenu.Emit(CellEvent{Row: row, Col: col, Gesture: g})
	}
	return false
}

// MouseMove handles pointer motion while a session holds the capture.
func (s *Scroller) MouseMove(x, y int) {
	switch s.drag {
	case dragResize:
		s.updateResize(x)
	case dragMove:
		s.updateMove(x)
	case dragVScroll:
		s.dragVerticalScrollBar(y)
	case dragHScroll:
		s.dragHorizontalScrollBar(x)
	}
}

// MouseUp handles a button release at a point in scroller coordinates. A
// double click opens the editor and returns its focus command.
func (s *Scroller) MouseUp(x, y int, g selection.Gesture) tea.Cmd {
	switch s.drag {
	case dragResize:
		s.stopResize()
		return nil
	case dragMove:
		if s.move.feedback {
			s.stopMove()
			return nil
		}
		s.drag = dragNone
		s.headerClick(x)
		return nil
	case dragVScroll, dragHScroll:
		s.drag = dragNone
		return nil
	}

	if g.Button != selection.ButtonLeft {
		return nil
	}
	col, row, ok := s.CellAt(x, y)
	if !ok || row < 0 {
		return nil
	}
	s.host.SelectionManager().HandleTap(row, g)

	c := cell{row: row, col: col, ok: true}
	if s.lastDown != c {
		return nil
	}
	ev := CellEvent{Row: row, Col: col, Gesture: g}
	now := s.now()
	if s.lastClick == c && now.Sub(s.lastClickAt) <= s.opts.DoubleClickInterval {
		s.lastClick = cell{}
		s.doubleClicked.Emit(ev)
		s.host.SetFocusedCell(col, row, false)
		cmd, _ := s.StartEditing()
		return cmd
	}
	s.lastClick, s.lastClickAt = c, now
	s.clicked.Emit(ev)
	return nil
}

// CaptureLost finalizes the running mouse session with its last known
// values.
func (s *Scroller) CaptureLost() {
	switch s.drag {
	case dragResize:
		s.stopResize()
	case dragMove:
		s.stopMove()
	default:
		s.drag = dragNone
	}
}

func (s *Scroller) startResize(col, x int) {
	s.drag = dragResize
	s.resize = resizeSession{
		col:       col,
		lastX:     x,
		lastWidth: s.host.ColumnModel().ColumnWidth(col),
	}
}

func (s *Scroller) updateResize(x int) {
	cm := s.host.ColumnModel()
	r := &s.resize
	w := max(r.lastWidth+x-r.lastX, cm.ColumnMinWidth(r.col), MinColumnWidth)
	if s.opts.LiveResize {
		cm.SetColumnWidth(r.col, w, true)
	}
	r.lastX += w - r.lastWidth
	r.lastWidth = w
}

func (s *Scroller) stopResize() {
	s.drag = dragNone
	if !s.opts.LiveResize {
		s.host.ColumnModel().SetColumnWidth(s.resize.col, s.resize.lastWidth, true)
	}
}

func (s *Scroller) startMove(col, x int) {
	s.drag = dragMove
	s.move = moveSession{
		col:    col,
		lastX:  x,
		colPos: s.columns.ColumnLeft(col),
		target: -1,
	}
}

func (s *Scroller) updateMove(x int) {
	m := &s.move
	tol := s.opts.ClickTolerance
	if !m.feedback && x <= m.lastX+tol && x >= m.lastX-tol {
		return
	}
	m.feedback = true
	m.colPos += x - m.lastX
	m.target = s.moveTarget(x)
	m.lastX = x
}

// moveTarget returns the visible position a column dropped at x lands on
// and places the feedback line.
func (s *Scroller) moveTarget(x int) int {
	cm := s.host.ColumnModel()
	target := x + s.scrollX
	var xPos, right int
	for i := range s.columns.ColumnCount() {
		w := cm.ColumnWidth(s.columns.ColumnAtX(i))
		if 2*target < 2*right+w {
			break
		}
		right += w
		xPos = i + 1
	}
	s.move.line = ordered.Clamp(right-s.scrollX, 0, max(s.lay.clipW-1, 0))
	return s.columns.FirstColumnX() + xPos
}

func (s *Scroller) stopMove() {
	s.drag = dragNone
	m := s.move
	if !m.feedback || m.target < 0 {
		return
	}
	cm := s.host.ColumnModel()
	from := s.columns.FirstColumnX() + s.columns.X(m.col)
	to := m.target
	if to == from || to == from+1 {
		return
	}
	fromOverall := cm.OverallX(cm.VisibleColumnAtX(from))
	toOverall := cm.OverallColumnCount()
	if to < cm.VisibleColumnCount() {
		toOverall = cm.OverallX(cm.VisibleColumnAtX(to))
	}
	if toOverall > fromOverall {
		toOverall--
	}
	cm.MoveColumn(fromOverall, toOverall)
}

func (s *Scroller) headerClick(x int) {
	if s.ResizeColumnAt(x) != -1 {
		return
	}
	col, ok := s.ColumnAt(x)
	if !ok {
		return
	}
	src := s.host.Source()
	if !src.IsColumnSortable(col) {
		return
	}
	ascending := true
	if col == src.SortColumnIndex() {
		ascending = !src.IsSortAscending()
	}
	if !s.host.BeforeSort(col, ascending) {
		return
	}
	s.host.StopEditing()
	src.SortByColumn(col, ascending)
	if s.opts.ResetSelectionOnHeaderClick {
		s.host.SelectionManager().Model().ResetSelection()
	}
}

func (s *Scroller) dragVerticalScrollBar(y int) {
	track := s.lay.clipH
	if track <= 1 {
		return
	}
	pos := ordered.Clamp(y-s.lay.headerH, 0, track-1)
	s.host.SetScrollY(pos*s.MaxScrollY()/(track-1), false)
}

func (s *Scroller) dragHorizontalScrollBar(x int) {
	track := s.lay.clipW
	if track <= 1 {
		return
	}
	pos := ordered.Clamp(x, 0, track-1)
	s.SetScrollX(pos * s.MaxScrollX() / (track - 1))
}
