package render

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/datagrid/internal/ui/styles"
)

// Row classes assigned by the default row renderers.
const (
	ClassRow      = "row"
	ClassOdd      = "row-odd"
	ClassEven     = "row-even"
	ClassSelected = "row-selected"
	ClassFocused  = "row-focused"
)

// RowClass returns the default class string of a row.
func RowClass(info RowInfo) string {
	parts := []string{ClassRow}
	if info.Row%2 == 1 {
		parts = append(parts, ClassOdd)
	} else {
		parts = append(parts, ClassEven)
	}
	if info.Selected {
		parts = append(parts, ClassSelected)
	}
	if info.FocusedRow {
		parts = append(parts, ClassFocused)
	}
	return strings.Join(parts, " ")
}

// HasClass reports whether the space separated class list contains name.
func HasClass(classes, name string) bool {
	for c := range strings.FieldsSeq(classes) {
		if c == name {
			return true
		}
	}
	return false
}

// RowStyler is the default terminal row renderer. It paints the row with
// the style matching its class.
type RowStyler struct {
	Even            lipgloss.Style
	Odd             lipgloss.Style
	Selected        lipgloss.Style
	Focused         lipgloss.Style
	FocusedSelected lipgloss.Style

	// Stripes enables alternating row backgrounds.
	Stripes bool
}

// NewRowStyler creates a RowStyler from the grid styles.
func NewRowStyler(st styles.Styles) *RowStyler {
	return &RowStyler{
		Even:            st.Row.Even,
		Odd:             st.Row.Odd,
		Selected:        st.Row.Selected,
		Focused:         st.Row.Focused,
		FocusedSelected: st.Row.FocusedSelected,
		Stripes:         true,
	}
}

// RowClass implements RowRenderer.
func (r *RowStyler) RowClass(info RowInfo) string {
	return RowClass(info)
}

// UpdateRow implements RowRenderer.
func (r *RowStyler) UpdateRow(el *RowElement, info RowInfo) {
	el.Class = r.RowClass(info)
}

// Compose implements RowRenderer.
func (r *RowStyler) Compose(el *RowElement) string {
	return r.style(el.Class).
		Width(el.Width).
		MaxWidth(el.Width).
		Height(el.Height).
		MaxHeight(el.Height).
		Render(el.Cells)
}

func (r *RowStyler) style(class string) lipgloss.Style {
	selected := HasClass(class, ClassSelected)
	focused := HasClass(class, ClassFocused)
	switch {
	case selected && focused:
		return r.FocusedSelected
	case selected:
		return r.Selected
	case focused:
		return r.Focused
	case r.Stripes && HasClass(class, ClassOdd):
		return r.Odd
	}
	return r.Even
}

// Plain is a row renderer that assigns the default classes and outputs the
// cells unchanged.
type Plain struct{}

// RowClass implements RowRenderer.
func (Plain) RowClass(info RowInfo) string { return RowClass(info) }

// UpdateRow implements RowRenderer.
func (p Plain) UpdateRow(el *RowElement, info RowInfo) { el.Class = p.RowClass(info) }

// Compose implements RowRenderer.
func (Plain) Compose(el *RowElement) string { return el.Cells }
