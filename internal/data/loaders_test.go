package data

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromCSV(t *testing.T) {
	t.Parallel()

	in := "name,qty,price,active\nfoo, 3,1.25,true\nbar,x,,FALSE\nbaz\n"
	s, err := FromCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, 4, s.ColumnCount())
	require.Equal(t, "price", s.ColumnName(2))
	require.Equal(t, 3, s.RowCount())

	require.Equal(t, []any{"foo", 3, 1.25, true}, s.Rows()[0])
	require.Equal(t, []any{"bar", "x", nil, false}, s.Rows()[1])
	require.Equal(t, []any{"baz", nil, nil, nil}, s.Rows()[2])
}

func TestFromDelimited(t *testing.T) {
	t.Parallel()

	s, err := FromDelimited(strings.NewReader("a\tb\tc\n1\t\tx y\n"), '\t')
	require.NoError(t, err)
	require.Equal(t, 3, s.ColumnCount())
	require.Equal(t, []any{1, nil, "x y"}, s.Rows()[0])
}

func TestFromCSV_Empty(t *testing.T) {
	t.Parallel()

	_, err := FromCSV(strings.NewReader(""))
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestFromJSON(t *testing.T) {
	t.Parallel()

	doc := []byte(`[
		{"id": 1, "user": {"name": "ann"}, "score": 9.5, "ok": true},
		{"id": 2, "user": {"name": "bob"}, "score": null, "ok": false}
	]`)

	t.Run("paths", func(t *testing.T) {
		t.Parallel()
		s, err := FromJSON(doc, "id", "user.name", "score")
		require.NoError(t, err)
		require.Equal(t, "user.name", s.ColumnName(1))
		require.Equal(t, []any{1, "ann", 9.5}, s.Rows()[0])
		require.Equal(t, []any{2, "bob", nil}, s.Rows()[1])
	})

	t.Run("keys of first object", func(t *testing.T) {
		t.Parallel()
		s, err := FromJSON(doc)
		require.NoError(t, err)
		require.Equal(t, 4, s.ColumnCount())
		require.Equal(t, "ok", s.ColumnName(3))
		require.Equal(t, `{"name": "ann"}`, s.Value(1, 0))
		require.Equal(t, false, s.Value(3, 1))
	})

	t.Run("invalid", func(t *testing.T) {
		t.Parallel()
		_, err := FromJSON([]byte(`{"a":`))
		require.ErrorIs(t, err, ErrInvalidInput)
		_, err = FromJSON([]byte(`{"a": 1}`))
		require.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestParseValue(t *testing.T) {
	t.Parallel()

	require.Nil(t, ParseValue("  "))
	require.Equal(t, 12, ParseValue("12"))
	require.Equal(t, -1.5, ParseValue("-1.5"))
	require.Equal(t, true, ParseValue("True"))
	require.Equal(t, "t", ParseValue("t"))
	require.Equal(t, "hello", ParseValue(" hello "))
}
