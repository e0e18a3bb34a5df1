// Package editor defines the cell editor contract and a text editor built
// on bubbles' textinput.
package editor

import (
	"strconv"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/datagrid/internal/ui/render"
)

// Editor is an active cell editor widget.
type Editor interface {
	Update(msg tea.Msg) tea.Cmd
	View() string
	Focus() tea.Cmd
	Blur()
	SetWidth(width int)
	// Modal reports whether the editor is shown in a modal frame instead of
	// over the cell.
	Modal() bool
}

// Factory creates editors for cells and reads their values back.
type Factory interface {
	// CreateCellEditor returns nil to decline editing the cell.
	CreateCellEditor(info render.CellInfo) Editor
	CellEditorValue(ed Editor) any
}

// TextFactory creates single-line text editors.
type TextFactory struct {
	// Validate, when set, receives the parsed value and the original value
	// and returns the value to store.
	Validate func(value, original any) any
	// Allow, when set, can decline editing individual cells.
	Allow func(info render.CellInfo) bool
	// InModal opens editors in a modal frame.
	InModal bool
	Styles  *textinput.Styles
}

// CreateCellEditor implements Factory.
func (f *TextFactory) CreateCellEditor(info render.CellInfo) Editor {
	if f.Allow != nil && !f.Allow(info) {
		return nil
	}

	input := textinput.New()
	input.Prompt = ""
	if f.Styles != nil {
		input.SetStyles(*f.Styles)
	}
	input.SetValue(render.FormatValue(info.Value))
	input.CursorEnd()
	input.SetWidth(max(1, info.StyleWidth-1))

	return &Text{
		input:    input,
		original: info.Value,
		modal:    f.InModal,
	}
}

// CellEditorValue implements Factory.
func (f *TextFactory) CellEditorValue(ed Editor) any {
	t, ok := ed.(*Text)
	if !ok {
		return nil
	}
	v := t.Value()
	if f.Validate != nil {
		v = f.Validate(v, t.original)
	}
	return v
}

// Text is a single-line text editor.
type Text struct {
	input    textinput.Model
	original any
	modal    bool
}

var _ Editor = (*Text)(nil)

// Update implements Editor.
func (t *Text) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	t.input, cmd = t.input.Update(msg)
	return cmd
}

// View implements Editor.
func (t *Text) View() string {
	return t.input.View()
}

// Focus implements Editor.
func (t *Text) Focus() tea.Cmd {
	return t.input.Focus()
}

// Blur implements Editor.
func (t *Text) Blur() {
	t.input.Blur()
}

// SetWidth implements Editor.
func (t *Text) SetWidth(width int) {
	t.input.SetWidth(max(1, width-1))
}

// Modal implements Editor.
func (t *Text) Modal() bool {
	return t.modal
}

// SetText replaces the edited text.
func (t *Text) SetText(s string) {
	t.input.SetValue(s)
}

// Text returns the edited text.
func (t *Text) Text() string {
	return t.input.Value()
}

// Original returns the value the editor was opened with.
func (t *Text) Original() any {
	return t.original
}

// Value returns the edited text converted to the type of the original
// value. Numeric and boolean text that does not parse yields the original.
func (t *Text) Value() any {
	return ParseAs(t.input.Value(), t.original)
}

// ParseAs converts s to the type of original. Numeric and boolean text that
// does not parse yields original; any other original yields s unchanged.
func ParseAs(s string, original any) any {
	trimmed := strings.TrimSpace(s)
	switch orig := original.(type) {
	case int:
		if v, err := strconv.Atoi(trimmed); err == nil {
			return v
		}
		return orig
	case int64:
		if v, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return v
		}
		return orig
	case float64:
		if v, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return v
		}
		return orig
	case bool:
		if v, err := strconv.ParseBool(trimmed); err == nil {
			return v
		}
		return orig
	}
	return s
}
