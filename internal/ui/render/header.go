package render

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/datagrid/internal/ui/styles"
)

// Header is the default header cell renderer: the column name followed by
// a sort arrow when the column is the sort column.
type Header struct {
	Style  lipgloss.Style
	Sorted lipgloss.Style
	Align  lipgloss.Position
	// Styled disables styling when false, which keeps output plain.
	Styled bool
}

// NewHeader creates a styled header renderer from the grid styles.
func NewHeader(st styles.Styles) *Header {
	return &Header{
		Style:  st.Header.Cell,
		Sorted: st.Header.Sorted,
		Styled: true,
	}
}

// RenderHeader implements HeaderRenderer.
func (h *Header) RenderHeader(info HeaderInfo) string {
	if info.Width <= 0 {
		return ""
	}
	var buf strings.Builder
	WriteCell(&buf, HeaderLabel(info), info.Width, 1, h.Align)
	if !h.Styled {
		return buf.String()
	}
	if info.Sorted {
		return h.Sorted.Render(buf.String())
	}
	return h.Style.Render(buf.String())
}

// HeaderLabel returns the header text of a column including its sort
// indicator.
func HeaderLabel(info HeaderInfo) string {
	if !info.Sorted {
		return info.Name
	}
	arrow := styles.SortDescendingIcon
	if info.Ascending {
		arrow = styles.SortAscendingIcon
	}
	return info.Name + " " + arrow
}
