// Package column tracks column metadata of the grid and translates between
// the three column coordinate spaces: model index (stable identity),
// overall position (display order including hidden columns) and visible
// position (display order of visible columns only).
package column

import (
	"errors"
	"fmt"
	"slices"

	"github.com/charmbracelet/datagrid/internal/event"
	"github.com/charmbracelet/datagrid/internal/ui/editor"
	"github.com/charmbracelet/datagrid/internal/ui/render"
)

// ErrInvalidArgument is returned for malformed bulk arguments.
var ErrInvalidArgument = errors.New("invalid argument")

// RangeError is the panic value for out-of-range column indices and
// positions.
type RangeError struct {
	What  string
	Index int
	Len   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("column: %s %d out of range [0, %d)", e.What, e.Index, e.Len)
}

// Descriptor holds the metadata of one column.
type Descriptor struct {
	Width          int
	MinWidth       int
	HeaderRenderer render.HeaderRenderer
	DataRenderer   render.CellRenderer
	EditorFactory  editor.Factory
}

// WidthEvent is sent after a column width changed. Interactive is set when
// the change comes from a pointer drag.
type WidthEvent struct {
	Col         int
	Old, New    int
	Interactive bool
}

// VisibilityEvent is sent after a column was shown or hidden.
type VisibilityEvent struct {
	Col     int
	Visible bool
}

// OrderEvent is sent after columns were reordered. Full is set after a
// bulk reorder, in which case the other fields are unset.
type OrderEvent struct {
	Col          int
	FromOverallX int
	ToOverallX   int
	Full         bool
}

type position struct {
	overall int
	visible int
}

// Model is the column model. Create it with New and size it with Init.
type Model struct {
	defaults Descriptor
	columns  []Descriptor

	overall []int
	visible []int

	// Derived from overall and visible; nil when stale.
	pos []position

	internalChange bool

	widthChanged        event.Emitter[WidthEvent]
	visibilityChanged   event.Emitter[VisibilityEvent]
	orderChanged        event.Emitter[OrderEvent]
	headerChanged       event.Emitter[int]
	dataRendererChanged event.Emitter[int]
}

// New creates an empty column model. Columns created by Init start with a
// copy of defaults.
func New(defaults Descriptor) *Model {
	return &Model{defaults: defaults}
}

// Init resets the model to count columns in natural order, hiding the
// given model indices. One visibility notification per column is sent at
// the end, followed by a header change notification for all columns (-1).
func (m *Model) Init(count int, hidden ...int) {
	m.columns = make([]Descriptor, count)
	m.overall = make([]int, count)
	for i := range count {
		m.columns[i] = m.defaults
		m.overall[i] = i
	}
	m.visible = slices.Clone(m.overall)
	m.pos = nil

	for _, col := range hidden {
		m.checkCol(col)
		if i := slices.Index(m.visible, col); i >= 0 {
			m.visible = slices.Delete(m.visible, i, i+1)
		}
	}

	for col := range count {
		m.visibilityChanged.Emit(VisibilityEvent{Col: col, Visible: m.IsColumnVisible(col)})
	}
	m.headerChanged.Emit(-1)
}

// OnWidthChanged registers a width change listener.
func (m *Model) OnWidthChanged(fn func(WidthEvent)) func() {
	return m.widthChanged.Subscribe(fn)
}

// OnVisibilityChanged registers a visibility change listener.
func (m *Model) OnVisibilityChanged(fn func(VisibilityEvent)) func() {
	return m.visibilityChanged.Subscribe(fn)
}

// OnOrderChanged registers an order change listener.
func (m *Model) OnOrderChanged(fn func(OrderEvent)) func() {
	return m.orderChanged.Subscribe(fn)
}

// OnHeaderChanged registers a listener for header renderer changes. The
// column is -1 when all headers changed.
func (m *Model) OnHeaderChanged(fn func(col int)) func() {
	return m.headerChanged.Subscribe(fn)
}

// OnDataRendererChanged registers a listener for data renderer changes.
func (m *Model) OnDataRendererChanged(fn func(col int)) func() {
	return m.dataRendererChanged.Subscribe(fn)
}

func (m *Model) checkCol(col int) {
	if col < 0 || col >= len(m.columns) {
		panic(&RangeError{What: "model index", Index: col, Len: len(m.columns)})
	}
}

// Column returns a copy of the descriptor of col.
func (m *Model) Column(col int) Descriptor {
	m.checkCol(col)
	return m.columns[col]
}

// SetColumnWidth changes the width of col. Negative widths are stored as 0.
func (m *Model) SetColumnWidth(col, width int, interactive bool) {
	m.checkCol(col)
	width = max(width, 0)
	old := m.columns[col].Width
	if old == width {
		return
	}
	m.columns[col].Width = width
	m.widthChanged.Emit(WidthEvent{Col: col, Old: old, New: width, Interactive: interactive})
}

// ColumnWidth returns the width of col.
func (m *Model) ColumnWidth(col int) int {
	m.checkCol(col)
	return m.columns[col].Width
}

// SetColumnMinWidth sets the narrowest width interactive resizing allows.
func (m *Model) SetColumnMinWidth(col, width int) {
	m.checkCol(col)
	m.columns[col].MinWidth = max(width, 0)
}

// ColumnMinWidth returns the minimum width of col.
func (m *Model) ColumnMinWidth(col int) int {
	m.checkCol(col)
	return m.columns[col].MinWidth
}

// SetHeaderRenderer replaces the header renderer of col.
func (m *Model) SetHeaderRenderer(col int, r render.HeaderRenderer) {
	m.checkCol(col)
	m.columns[col].HeaderRenderer = r
	m.headerChanged.Emit(col)
}

// HeaderRenderer returns the header renderer of col.
func (m *Model) HeaderRenderer(col int) render.HeaderRenderer {
	m.checkCol(col)
	return m.columns[col].HeaderRenderer
}

// SetDataRenderer replaces the cell renderer of col.
func (m *Model) SetDataRenderer(col int, r render.CellRenderer) {
	m.checkCol(col)
	m.columns[col].DataRenderer = r
	m.dataRendererChanged.Emit(col)
}

// DataRenderer returns the cell renderer of col.
func (m *Model) DataRenderer(col int) render.CellRenderer {
	m.checkCol(col)
	return m.columns[col].DataRenderer
}

// SetEditorFactory replaces the editor factory of col.
func (m *Model) SetEditorFactory(col int, f editor.Factory) {
	m.checkCol(col)
	m.columns[col].EditorFactory = f
}

// EditorFactory returns the editor factory of col.
func (m *Model) EditorFactory(col int) editor.Factory {
	m.checkCol(col)
	return m.columns[col].EditorFactory
}

func (m *Model) positions() []position {
	if m.pos != nil {
		return m.pos
	}
	pos := make([]position, len(m.columns))
	for i := range pos {
		pos[i].visible = -1
	}
	for x, col := range m.overall {
		pos[col].overall = x
	}
	for x, col := range m.visible {
		pos[col].visible = x
	}
	m.pos = pos
	return pos
}

// IsColumnVisible reports whether col is visible.
func (m *Model) IsColumnVisible(col int) bool {
	return m.VisibleX(col) != -1
}

// SetColumnVisible shows or hides col. A column being shown is placed
// before the next visible column that follows it in overall order.
func (m *Model) SetColumnVisible(col int, visible bool) {
	m.checkCol(col)
	if visible == m.IsColumnVisible(col) {
		return
	}

	if visible {
		next := len(m.visible)
		for x := m.OverallX(col) + 1; x < len(m.overall); x++ {
			if vx := m.VisibleX(m.overall[x]); vx != -1 {
				next = vx
				break
			}
		}
		m.visible = slices.Insert(m.visible, next, col)
	} else {
		vx := m.VisibleX(col)
		m.visible = slices.Delete(m.visible, vx, vx+1)
	}
	m.pos = nil

	if !m.internalChange {
		m.visibilityChanged.Emit(VisibilityEvent{Col: col, Visible: visible})
	}
}

// MoveColumn moves the column at overall position from to overall
// position to.
func (m *Model) MoveColumn(from, to int) {
	m.checkOverallX(from)
	m.checkOverallX(to)

	m.internalChange = true
	col := m.overall[from]
	visible := m.IsColumnVisible(col)
	if visible {
		m.SetColumnVisible(col, false)
	}
	m.overall = slices.Delete(m.overall, from, from+1)
	m.overall = slices.Insert(m.overall, to, col)
	m.pos = nil
	if visible {
		m.SetColumnVisible(col, true)
	}
	m.internalChange = false

	m.orderChanged.Emit(OrderEvent{Col: col, FromOverallX: from, ToOverallX: to})
}

// SetColumnsOrder replaces the overall order. order lists the model
// indices in their new overall order and must be a permutation of all
// columns. Visibility is kept.
func (m *Model) SetColumnsOrder(order []int) error {
	if len(order) != len(m.columns) {
		return fmt.Errorf("columns order has %d entries, want %d: %w", len(order), len(m.columns), ErrInvalidArgument)
	}
	seen := make([]bool, len(order))
	for _, col := range order {
		if col < 0 || col >= len(order) || seen[col] {
			return fmt.Errorf("columns order %v is not a permutation: %w", order, ErrInvalidArgument)
		}
		seen[col] = true
	}

	visible := make([]bool, len(m.columns))
	for _, col := range m.visible {
		visible[col] = true
	}
	m.overall = slices.Clone(order)
	m.visible = m.visible[:0]
	for _, col := range m.overall {
		if visible[col] {
			m.visible = append(m.visible, col)
		}
	}
	m.pos = nil

	m.orderChanged.Emit(OrderEvent{Col: -1, FromOverallX: -1, ToOverallX: -1, Full: true})
	return nil
}

func (m *Model) checkOverallX(x int) {
	if x < 0 || x >= len(m.overall) {
		panic(&RangeError{What: "overall position", Index: x, Len: len(m.overall)})
	}
}

// VisibleX returns the visible position of col, or -1 when it is hidden.
func (m *Model) VisibleX(col int) int {
	m.checkCol(col)
	return m.positions()[col].visible
}

// OverallX returns the overall position of col.
func (m *Model) OverallX(col int) int {
	m.checkCol(col)
	return m.positions()[col].overall
}

// VisibleColumnAtX returns the model index of the column at visible
// position x.
func (m *Model) VisibleColumnAtX(x int) int {
	if x < 0 || x >= len(m.visible) {
		panic(&RangeError{What: "visible position", Index: x, Len: len(m.visible)})
	}
	return m.visible[x]
}

// OverallColumnAtX returns the model index of the column at overall
// position x.
func (m *Model) OverallColumnAtX(x int) int {
	m.checkOverallX(x)
	return m.overall[x]
}

// VisibleColumnCount returns the number of visible columns.
func (m *Model) VisibleColumnCount() int {
	return len(m.visible)
}

// OverallColumnCount returns the number of columns.
func (m *Model) OverallColumnCount() int {
	return len(m.overall)
}

// VisibleColumns returns the model indices of the visible columns in
// display order.
func (m *Model) VisibleColumns() []int {
	return slices.Clone(m.visible)
}

// OverallColumns returns the model indices of all columns in display
// order.
func (m *Model) OverallColumns() []int {
	return slices.Clone(m.overall)
}
