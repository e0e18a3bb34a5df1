package data

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/tidwall/gjson"
)

// ErrInvalidInput is returned by the loaders for malformed input.
var ErrInvalidInput = errors.New("invalid input")

// FromCSV reads a Simple model from CSV. The first record names the
// columns. Numeric and boolean fields are converted.
func FromCSV(r io.Reader) (*Simple, error) {
	return FromDelimited(r, ',')
}

// FromDelimited is FromCSV with a custom field separator.
func FromDelimited(r io.Reader, comma rune) (*Simple, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = !unicode.IsSpace(comma)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read csv header: %w", ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	var rows [][]any
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", len(rows)+1, err)
		}
		row := make([]any, len(header))
		for i := range min(len(record), len(header)) {
			row[i] = ParseValue(record[i])
		}
		rows = append(rows, row)
	}

	s := NewSimple(header...)
	s.SetData(rows)
	return s, nil
}

// ParseValue converts textual input to an int, float64 or bool when it
// parses as one, and returns the trimmed text otherwise. Empty text is nil.
func ParseValue(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	return s
}

// FromJSON reads a Simple model from a JSON array of objects. Each path is
// a gjson path selecting one column; without paths the keys of the first
// object are used in document order.
func FromJSON(doc []byte, paths ...string) (*Simple, error) {
	if !gjson.ValidBytes(doc) {
		return nil, fmt.Errorf("parse json: %w", ErrInvalidInput)
	}
	root := gjson.ParseBytes(doc)
	if !root.IsArray() {
		return nil, fmt.Errorf("parse json: top level value is not an array: %w", ErrInvalidInput)
	}
	items := root.Array()

	if len(paths) == 0 && len(items) > 0 {
		items[0].ForEach(func(key, _ gjson.Result) bool {
			paths = append(paths, gjson.Escape(key.String()))
			return true
		})
	}

	rows := make([][]any, 0, len(items))
	for _, item := range items {
		row := make([]any, len(paths))
		for i, p := range paths {
			row[i] = jsonValue(item.Get(p))
		}
		rows = append(rows, row)
	}

	s := NewSimple(paths...)
	s.SetData(rows)
	return s, nil
}

func jsonValue(r gjson.Result) any {
	switch r.Type {
	case gjson.Null:
		return nil
	case gjson.False:
		return false
	case gjson.True:
		return true
	case gjson.Number:
		if i := r.Int(); float64(i) == r.Num {
			return int(i)
		}
		return r.Num
	case gjson.String:
		return r.Str
	}
	return r.Raw
}

// Generated is a synthetic Loader producing deterministic rows. Every row
// has the columns ID, Name, Value, Even and Group.
type Generated struct {
	Rows int
	// Latency is waited before every response.
	Latency time.Duration
}

// GeneratedColumns names the columns of Generated rows.
var GeneratedColumns = []string{"ID", "Name", "Value", "Even", "Group"}

var _ Loader = Generated{}

// RowCount implements Loader.
func (g Generated) RowCount(ctx context.Context) (int, error) {
	if err := g.wait(ctx); err != nil {
		return 0, err
	}
	return g.Rows, nil
}

// LoadRows implements Loader. Any descending sort reverses the natural
// order.
func (g Generated) LoadRows(ctx context.Context, req Request) ([][]any, error) {
	if err := g.wait(ctx); err != nil {
		return nil, err
	}
	first, last := max(req.First, 0), min(req.Last, g.Rows-1)
	if first > last {
		return nil, nil
	}
	rows := make([][]any, 0, last-first+1)
	for i := first; i <= last; i++ {
		id := i
		if req.SortColumn >= 0 && !req.Ascending {
			id = g.Rows - 1 - i
		}
		rows = append(rows, GeneratedRow(id))
	}
	return rows, nil
}

// GeneratedRow returns the synthetic row with the given id.
func GeneratedRow(id int) []any {
	return []any{
		id,
		fmt.Sprintf("Item %06d", id),
		float64(id) * 1.5,
		id%2 == 0,
		fmt.Sprintf("G%02d", id/100),
	}
}

func (g Generated) wait(ctx context.Context) error {
	if g.Latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(g.Latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
