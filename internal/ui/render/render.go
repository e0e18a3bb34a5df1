// Package render defines the collaborator contracts the grid uses to draw
// rows, cells and header cells, along with default terminal and HTML
// implementations.
package render

import (
	"fmt"
	"strconv"
	"strings"
)

// CellInfo describes one cell handed to a CellRenderer.
type CellInfo struct {
	Value   any
	RowData any

	Row int
	// Col is the model index of the column.
	Col int
	// XPos is the visible position of the column within its pane.
	XPos int

	Selected   bool
	FocusedRow bool
	Editable   bool

	StyleLeft   int
	StyleWidth  int
	StyleHeight int
}

// CellRenderer appends the representation of a cell to buf. Returning stop
// suppresses the remaining cells of the row.
type CellRenderer interface {
	RenderCell(buf *strings.Builder, info CellInfo) (stop bool)
}

// CellRendererFunc adapts a function to the CellRenderer interface.
type CellRendererFunc func(buf *strings.Builder, info CellInfo) bool

// RenderCell implements CellRenderer.
func (f CellRendererFunc) RenderCell(buf *strings.Builder, info CellInfo) bool {
	return f(buf, info)
}

// RowInfo describes one row handed to a RowRenderer.
type RowInfo struct {
	RowData    any
	Row        int
	Selected   bool
	FocusedRow bool
}

// RowElement is the rendered form of one row. Cells holds the concatenated
// cell output; the row renderer decorates it in Compose.
type RowElement struct {
	Row    int
	Class  string
	Cells  string
	Width  int
	Height int
}

// RowRenderer computes the row-level class of a row, updates existing row
// elements when only selection or focus changed, and produces the final row
// output.
type RowRenderer interface {
	RowClass(info RowInfo) string
	UpdateRow(el *RowElement, info RowInfo)
	Compose(el *RowElement) string
}

// HeaderInfo describes one header cell handed to a HeaderRenderer.
type HeaderInfo struct {
	Name      string
	Col       int
	XPos      int
	Width     int
	Sortable  bool
	Editable  bool
	Sorted    bool
	Ascending bool
}

// HeaderRenderer renders one header cell.
type HeaderRenderer interface {
	RenderHeader(info HeaderInfo) string
}

// HeaderRendererFunc adapts a function to the HeaderRenderer interface.
type HeaderRendererFunc func(info HeaderInfo) string

// RenderHeader implements HeaderRenderer.
func (f HeaderRendererFunc) RenderHeader(info HeaderInfo) string {
	return f(info)
}

// FormatValue converts a cell value into single-line text.
func FormatValue(v any) string {
	var s string
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		s = v
	case fmt.Stringer:
		s = v.String()
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		s = strconv.FormatFloat(float64(v), 'f', -1, 32)
	case bool:
		s = strconv.FormatBool(v)
	case error:
		s = v.Error()
	default:
		s = fmt.Sprint(v)
	}
	return lineReplacer.Replace(s)
}

var lineReplacer = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", "    ")
