package data

import (
	"fmt"
	"reflect"
	"slices"
)

type sortMethods struct {
	ascending, descending Comparator
}

// Simple is an in-memory Source. Rows are slices of cell values indexed by
// column.
type Simple struct {
	Events

	columns  []string
	editable []bool
	sortable []bool

	rows [][]any

	sortColumn    int
	sortAscending bool
	caseSensitive bool
	sortMethods   map[int]sortMethods
}

var _ Source = (*Simple)(nil)

// NewSimple creates an empty Simple model with the given column names.
func NewSimple(columns ...string) *Simple {
	s := &Simple{
		sortColumn:    -1,
		sortAscending: true,
		sortMethods:   make(map[int]sortMethods),
	}
	s.SetColumns(columns...)
	return s
}

// SetColumns replaces the column set. Columns are sortable and not editable
// by default.
func (s *Simple) SetColumns(names ...string) {
	s.columns = slices.Clone(names)
	s.editable = make([]bool, len(names))
	s.sortable = make([]bool, len(names))
	for i := range s.sortable {
		s.sortable[i] = true
	}
	s.FireMetaDataChanged()
}

// SetCaseSensitiveSorting selects case sensitive default comparators.
func (s *Simple) SetCaseSensitiveSorting(enabled bool) {
	s.caseSensitive = enabled
}

// SetColumnEditable sets whether cells of col may be edited.
func (s *Simple) SetColumnEditable(col int, editable bool) {
	if col < 0 || col >= len(s.editable) || s.editable[col] == editable {
		return
	}
	s.editable[col] = editable
	s.FireMetaDataChanged()
}

// SetEditable sets the editable flag of every column.
func (s *Simple) SetEditable(editable bool) {
	for i := range s.editable {
		s.editable[i] = editable
	}
	s.FireMetaDataChanged()
}

// SetColumnSortable sets whether col may be sorted.
func (s *Simple) SetColumnSortable(col int, sortable bool) {
	if col < 0 || col >= len(s.sortable) || s.sortable[col] == sortable {
		return
	}
	s.sortable[col] = sortable
	s.FireMetaDataChanged()
}

// SetSortMethods installs custom comparators for col. A nil descending
// comparator sorts in the reverse order of ascending.
func (s *Simple) SetSortMethods(col int, ascending, descending Comparator) {
	if descending == nil && ascending != nil {
		descending = Reverse(ascending)
	}
	s.sortMethods[col] = sortMethods{ascending, descending}
}

// SetData replaces all rows and clears the sort state.
func (s *Simple) SetData(rows [][]any) {
	s.rows = rows
	s.clearSorting()
	s.FireDataChanged(DataChangedEvent{
		FirstRow:    0,
		LastRow:     len(s.rows) - 1,
		FirstColumn: 0,
		LastColumn:  len(s.columns) - 1,
	})
}

// Rows returns the backing rows.
func (s *Simple) Rows() [][]any {
	return s.rows
}

// AddRows inserts rows at start, or appends them when start is negative or
// past the end. Inserting clears the sort state.
func (s *Simple) AddRows(rows [][]any, start int) {
	if len(rows) == 0 {
		return
	}
	if start < 0 || start > len(s.rows) {
		start = len(s.rows)
	}
	s.rows = slices.Insert(s.rows, start, rows...)
	s.clearSorting()
	s.FireDataChanged(DataChangedEvent{
		FirstRow:    start,
		LastRow:     len(s.rows) - 1,
		FirstColumn: 0,
		LastColumn:  len(s.columns) - 1,
		InsertStart: start,
		InsertCount: len(rows),
	})
}

// SetRows overwrites rows starting at start.
func (s *Simple) SetRows(rows [][]any, start int) error {
	if start < 0 || start+len(rows) > len(s.rows) {
		return fmt.Errorf("set rows [%d, %d) of %d: %w", start, start+len(rows), len(s.rows), ErrOutOfRange)
	}
	if len(rows) == 0 {
		return nil
	}
	copy(s.rows[start:], rows)
	s.clearSorting()
	s.FireDataChanged(DataChangedEvent{
		FirstRow:    start,
		LastRow:     start + len(rows) - 1,
		FirstColumn: 0,
		LastColumn:  len(s.columns) - 1,
	})
	return nil
}

// RemoveRows removes count rows starting at start.
func (s *Simple) RemoveRows(start, count int) error {
	if count <= 0 {
		return nil
	}
	if start < 0 || start+count > len(s.rows) {
		return fmt.Errorf("remove rows [%d, %d) of %d: %w", start, start+count, len(s.rows), ErrOutOfRange)
	}
	s.rows = slices.Delete(s.rows, start, start+count)
	s.FireDataChanged(DataChangedEvent{
		FirstRow:    start,
		LastRow:     len(s.rows) - 1,
		FirstColumn: 0,
		LastColumn:  len(s.columns) - 1,
		RemoveStart: start,
		RemoveCount: count,
	})
	return nil
}

// RowCount implements Source.
func (s *Simple) RowCount() int { return len(s.rows) }

// ColumnCount implements Source.
func (s *Simple) ColumnCount() int { return len(s.columns) }

// ColumnName implements Source.
func (s *Simple) ColumnName(col int) string {
	if col < 0 || col >= len(s.columns) {
		return ""
	}
	return s.columns[col]
}

// Value implements Source.
func (s *Simple) Value(col, row int) any {
	if row < 0 || row >= len(s.rows) {
		return nil
	}
	return cell(s.rows[row], col)
}

// SetValue implements Source. Changing a value of the sort column clears
// the sort state.
func (s *Simple) SetValue(col, row int, value any) error {
	if row < 0 || row >= len(s.rows) || col < 0 || col >= len(s.columns) {
		return fmt.Errorf("set value at column %d, row %d: %w", col, row, ErrOutOfRange)
	}
	r := s.rows[row]
	if col >= len(r) {
		r = append(r, make([]any, col-len(r)+1)...)
		s.rows[row] = r
	}
	if equalValues(r[col], value) {
		return nil
	}
	r[col] = value
	if col == s.sortColumn {
		s.clearSorting()
	}
	s.FireDataChanged(DataChangedEvent{
		FirstRow:    row,
		LastRow:     row,
		FirstColumn: col,
		LastColumn:  col,
	})
	return nil
}

func equalValues(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

// RowData implements Source.
func (s *Simple) RowData(row int) (any, bool) {
	if row < 0 || row >= len(s.rows) {
		return nil, false
	}
	return s.rows[row], true
}

// PrefetchRows implements Source. All rows are always available.
func (s *Simple) PrefetchRows(first, last int) {}

// IsColumnEditable implements Source.
func (s *Simple) IsColumnEditable(col int) bool {
	return col >= 0 && col < len(s.editable) && s.editable[col]
}

// IsColumnSortable implements Source.
func (s *Simple) IsColumnSortable(col int) bool {
	return col >= 0 && col < len(s.sortable) && s.sortable[col]
}

// SortByColumn implements Source. The sort is stable.
func (s *Simple) SortByColumn(col int, ascending bool) {
	var cmp Comparator
	if m, ok := s.sortMethods[col]; ok && m.ascending != nil {
		cmp = m.descending
		if ascending {
			cmp = m.ascending
		}
	} else if ascending {
		cmp = Ascending(col, s.caseSensitive)
	} else {
		cmp = Descending(col, s.caseSensitive)
	}

	slices.SortStableFunc(s.rows, cmp)
	s.sortColumn = col
	s.sortAscending = ascending

	s.FireSorted(SortedEvent{Column: col, Ascending: ascending})
	s.FireMetaDataChanged()
}

// SortColumnIndex implements Source.
func (s *Simple) SortColumnIndex() int { return s.sortColumn }

// IsSortAscending implements Source.
func (s *Simple) IsSortAscending() bool { return s.sortAscending }

func (s *Simple) clearSorting() {
	if s.sortColumn == -1 {
		return
	}
	s.sortColumn = -1
	s.sortAscending = true
	s.FireMetaDataChanged()
}
