package data

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func column(s *Simple, col int) []any {
	out := make([]any, 0, s.RowCount())
	for row := range s.RowCount() {
		out = append(out, s.Value(col, row))
	}
	return out
}

func TestSimple_SetData(t *testing.T) {
	t.Parallel()

	s := NewSimple("a", "b")
	var events []DataChangedEvent
	s.OnDataChanged(func(ev DataChangedEvent) { events = append(events, ev) })

	s.SetData([][]any{{1, "x"}, {2, "y"}})
	require.Equal(t, 2, s.RowCount())
	require.Equal(t, 2, s.ColumnCount())
	require.Equal(t, "b", s.ColumnName(1))
	require.Equal(t, "y", s.Value(1, 1))
	require.Nil(t, s.Value(1, 5))
	require.Equal(t, []DataChangedEvent{{FirstRow: 0, LastRow: 1, FirstColumn: 0, LastColumn: 1}}, events)

	data, ok := s.RowData(0)
	require.True(t, ok)
	require.Equal(t, []any{1, "x"}, data)
	_, ok = s.RowData(2)
	require.False(t, ok)
}

func TestSimple_AddRemoveRows(t *testing.T) {
	t.Parallel()

	s := NewSimple("n")
	s.SetData([][]any{{0}, {1}, {2}})
	var last DataChangedEvent
	s.OnDataChanged(func(ev DataChangedEvent) { last = ev })

	s.AddRows([][]any{{10}, {11}}, 1)
	require.Equal(t, []any{0, 10, 11, 1, 2}, column(s, 0))
	require.Equal(t, 1, last.InsertStart)
	require.Equal(t, 2, last.InsertCount)
	require.True(t, last.ShiftsRows())

	require.NoError(t, s.RemoveRows(0, 2))
	require.Equal(t, []any{11, 1, 2}, column(s, 0))
	require.Equal(t, DataChangedEvent{FirstRow: 0, LastRow: 2, LastColumn: 0, RemoveStart: 0, RemoveCount: 2}, last)

	require.ErrorIs(t, s.RemoveRows(2, 5), ErrOutOfRange)

	s.AddRows([][]any{{99}}, -1)
	require.Equal(t, []any{11, 1, 2, 99}, column(s, 0))

	require.NoError(t, s.SetRows([][]any{{7}}, 3))
	require.Equal(t, 7, s.Value(0, 3))
	require.ErrorIs(t, s.SetRows([][]any{{7}, {8}}, 3), ErrOutOfRange)
}

func TestSimple_SetValue(t *testing.T) {
	t.Parallel()

	s := NewSimple("a", "b")
	s.SetData([][]any{{1, "x"}, {2}})

	var n int
	s.OnDataChanged(func(DataChangedEvent) { n++ })

	require.NoError(t, s.SetValue(1, 0, "x"))
	require.Zero(t, n)
	require.NoError(t, s.SetValue(1, 0, "z"))
	require.Equal(t, 1, n)

	// Short rows grow on demand.
	require.NoError(t, s.SetValue(1, 1, "w"))
	require.Equal(t, "w", s.Value(1, 1))

	require.ErrorIs(t, s.SetValue(2, 0, "q"), ErrOutOfRange)
	require.ErrorIs(t, s.SetValue(0, -1, "q"), ErrOutOfRange)

	s.SortByColumn(0, false)
	require.Equal(t, 0, s.SortColumnIndex())
	require.NoError(t, s.SetValue(0, 0, 100))
	require.Equal(t, -1, s.SortColumnIndex())
}

func TestSimple_Sort(t *testing.T) {
	t.Parallel()

	s := NewSimple("name", "n")
	s.SetData([][]any{
		{"banana", 3},
		{"Apple", nil},
		{"cherry", math.NaN()},
		{"apple", 1},
		{nil, 2},
	})

	var sorted []SortedEvent
	s.OnSorted(func(ev SortedEvent) { sorted = append(sorted, ev) })
	var meta int
	s.OnMetaDataChanged(func() { meta++ })

	s.SortByColumn(0, true)
	require.Equal(t, []any{nil, "Apple", "apple", "banana", "cherry"}, column(s, 0))
	require.Equal(t, 0, s.SortColumnIndex())
	require.True(t, s.IsSortAscending())

	s.SetCaseSensitiveSorting(true)
	s.SortByColumn(0, false)
	require.Equal(t, []any{"cherry", "banana", "apple", "Apple", nil}, column(s, 0))

	s.SortByColumn(1, true)
	got := column(s, 1)
	require.Equal(t, []any{nil, 1, 2, 3}, got[:4])
	require.True(t, math.IsNaN(got[4].(float64)))

	require.Equal(t, []SortedEvent{{0, true}, {0, false}, {1, true}}, sorted)
	require.Equal(t, 3, meta)
}

func TestSimple_SortMethods(t *testing.T) {
	t.Parallel()

	s := NewSimple("word")
	s.SetData([][]any{{"ccc"}, {"a"}, {"bb"}})
	s.SetSortMethods(0, func(a, b []any) int {
		return len(a[0].(string)) - len(b[0].(string))
	}, nil)

	s.SortByColumn(0, true)
	require.Equal(t, []any{"a", "bb", "ccc"}, column(s, 0))
	s.SortByColumn(0, false)
	require.Equal(t, []any{"ccc", "bb", "a"}, column(s, 0))
}

func TestSimple_SortStable(t *testing.T) {
	t.Parallel()

	s := NewSimple("k", "v")
	s.SetData([][]any{{1, "a"}, {0, "b"}, {1, "c"}, {0, "d"}})
	s.SortByColumn(0, true)
	require.Equal(t, []any{"b", "d", "a", "c"}, column(s, 1))
}

func TestSimple_Capabilities(t *testing.T) {
	t.Parallel()

	s := NewSimple("a", "b")
	require.True(t, s.IsColumnSortable(0))
	require.False(t, s.IsColumnEditable(0))

	var meta int
	s.OnMetaDataChanged(func() { meta++ })
	s.SetColumnEditable(1, true)
	s.SetColumnEditable(1, true)
	s.SetColumnSortable(0, false)
	require.Equal(t, 2, meta)
	require.True(t, s.IsColumnEditable(1))
	require.False(t, s.IsColumnSortable(0))
	require.False(t, s.IsColumnEditable(7))

	s.SetEditable(true)
	require.True(t, s.IsColumnEditable(0))
}

func TestCompareValues(t *testing.T) {
	t.Parallel()

	require.Negative(t, CompareValues(1, 2.5, nil))
	require.Zero(t, CompareValues(int64(3), 3.0, nil))
	require.Positive(t, CompareValues(true, false, nil))
	require.Negative(t, CompareValues(nil, 0, nil))
	require.Zero(t, CompareValues("A", "a", strings.ToLower))
	require.Positive(t, CompareValues(math.NaN(), 1e9, nil))
}

func TestCompareValues_MixedKinds(t *testing.T) {
	t.Parallel()

	values := []any{"9", 10, nil, "N/A", 9, true, 2.5, "10", false}
	want := []any{nil, false, true, 2.5, 9, 10, "10", "9", "N/A"}

	s := NewSimple("v")
	rows := make([][]any, len(values))
	for i, v := range values {
		rows[i] = []any{v}
	}
	s.SetData(rows)
	s.SortByColumn(0, true)
	require.Equal(t, want, column(s, 0))

	for _, a := range values {
		for _, b := range values {
			require.Equal(t, -CompareValues(b, a, nil), CompareValues(a, b, nil), "%v vs %v", a, b)
			for _, c := range values {
				if CompareValues(a, b, nil) <= 0 && CompareValues(b, c, nil) <= 0 {
					require.LessOrEqual(t, CompareValues(a, c, nil), 0, "%v <= %v <= %v", a, b, c)
				}
			}
		}
	}
}

func TestEvent_Intersects(t *testing.T) {
	t.Parallel()

	ev := DataChangedEvent{FirstRow: 10, LastRow: 20}
	require.True(t, ev.Intersects(15, 30))
	require.True(t, ev.Intersects(0, 10))
	require.False(t, ev.Intersects(21, 30))
	require.False(t, ev.Intersects(0, 9))

	open := DataChangedEvent{FirstRow: 10, LastRow: -1}
	require.True(t, open.Intersects(100, 200))
	require.False(t, open.Intersects(0, 9))
}
