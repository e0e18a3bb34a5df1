// Package data defines the table data provider contract consumed by the
// grid and ships an in-memory and a lazily loading implementation.
package data

import (
	"errors"

	"github.com/charmbracelet/datagrid/internal/event"
)

// ErrNotLoaded is returned when accessing rows that have not been loaded
// yet.
var ErrNotLoaded = errors.New("row not loaded")

// ErrOutOfRange is returned for row or column indices outside of the data.
var ErrOutOfRange = errors.New("index out of range")

// DataChangedEvent describes a change of the data. LastRow is -1 when the
// change extends to the end of the data. RemoveCount and InsertCount are
// non-zero when rows were removed or inserted, shifting later rows.
type DataChangedEvent struct {
	FirstRow    int
	LastRow     int
	FirstColumn int
	LastColumn  int

	RemoveStart int
	RemoveCount int

	InsertStart int
	InsertCount int
}

// ShiftsRows reports whether the change moved rows to other indices.
func (e DataChangedEvent) ShiftsRows() bool {
	return e.RemoveCount > 0 || e.InsertCount > 0
}

// Intersects reports whether the change touches any row of [first, last].
func (e DataChangedEvent) Intersects(first, last int) bool {
	if e.LastRow == -1 {
		return e.FirstRow <= last
	}
	return e.FirstRow <= last && e.LastRow >= first
}

// SortedEvent is sent after the data was sorted.
type SortedEvent struct {
	Column    int
	Ascending bool
}

// Source is the table data provider.
type Source interface {
	RowCount() int
	ColumnCount() int
	ColumnName(col int) string
	Value(col, row int) any
	SetValue(col, row int, value any) error
	// RowData returns the object backing row, or false when the row is not
	// available yet.
	RowData(row int) (any, bool)
	// PrefetchRows announces that rows [first, last] are about to be read.
	PrefetchRows(first, last int)

	IsColumnEditable(col int) bool
	IsColumnSortable(col int) bool
	SortByColumn(col int, ascending bool)
	// SortColumnIndex returns -1 when the data is not sorted.
	SortColumnIndex() int
	IsSortAscending() bool

	OnDataChanged(fn func(DataChangedEvent)) func()
	OnMetaDataChanged(fn func()) func()
	OnSorted(fn func(SortedEvent)) func()
}

// Events implements the notification half of Source. Embed it in a Source
// implementation.
type Events struct {
	dataChanged     event.Emitter[DataChangedEvent]
	metaDataChanged event.Emitter[struct{}]
	sorted          event.Emitter[SortedEvent]
}

// OnDataChanged implements Source.
func (e *Events) OnDataChanged(fn func(DataChangedEvent)) func() {
	return e.dataChanged.Subscribe(fn)
}

// OnMetaDataChanged implements Source.
func (e *Events) OnMetaDataChanged(fn func()) func() {
	return e.metaDataChanged.Subscribe(func(struct{}) { fn() })
}

// OnSorted implements Source.
func (e *Events) OnSorted(fn func(SortedEvent)) func() {
	return e.sorted.Subscribe(fn)
}

// FireDataChanged notifies data change listeners.
func (e *Events) FireDataChanged(ev DataChangedEvent) {
	e.dataChanged.Emit(ev)
}

// FireMetaDataChanged notifies metadata listeners.
func (e *Events) FireMetaDataChanged() {
	e.metaDataChanged.Emit(struct{}{})
}

// FireSorted notifies sort listeners.
func (e *Events) FireSorted(ev SortedEvent) {
	e.sorted.Emit(ev)
}
