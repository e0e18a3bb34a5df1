package render

import (
	"fmt"
	"html"
	"strings"
)

// HTMLCell renders a cell as an absolutely positioned div.
type HTMLCell struct {
	Format func(v any) string
}

// RenderCell implements CellRenderer.
func (h HTMLCell) RenderCell(buf *strings.Builder, info CellInfo) bool {
	var text string
	if h.Format != nil {
		text = h.Format(info.Value)
	} else {
		text = FormatValue(info.Value)
	}

	class := fmt.Sprintf("cell col-%d", info.Col)
	if info.Editable {
		class += " cell-editable"
	}
	fmt.Fprintf(buf,
		`<div class="%s" style="left:%dpx;width:%dpx;height:%dpx">%s</div>`,
		class, info.StyleLeft, info.StyleWidth, info.StyleHeight, html.EscapeString(text),
	)
	return false
}

// HTMLRow wraps the cells of a row in a div carrying the row classes.
type HTMLRow struct{}

// RowClass implements RowRenderer.
func (HTMLRow) RowClass(info RowInfo) string { return RowClass(info) }

// UpdateRow implements RowRenderer.
func (h HTMLRow) UpdateRow(el *RowElement, info RowInfo) { el.Class = h.RowClass(info) }

// Compose implements RowRenderer.
func (HTMLRow) Compose(el *RowElement) string {
	return fmt.Sprintf(
		`<div class="%s" data-row="%d" style="width:%dpx;height:%dpx">%s</div>`,
		el.Class, el.Row, el.Width, el.Height, el.Cells,
	)
}

// HTMLHeader renders a header cell as a div.
type HTMLHeader struct{}

// RenderHeader implements HeaderRenderer.
func (HTMLHeader) RenderHeader(info HeaderInfo) string {
	class := "header-cell"
	if info.Sortable {
		class += " header-sortable"
	}
	if info.Sorted {
		if info.Ascending {
			class += " sorted-ascending"
		} else {
			class += " sorted-descending"
		}
	}
	return fmt.Sprintf(
		`<div class="%s" data-col="%d" style="width:%dpx">%s</div>`,
		class, info.Col, info.Width, html.EscapeString(info.Name),
	)
}
