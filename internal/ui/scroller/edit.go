package scroller

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/datagrid/internal/ui/editor"
	"github.com/charmbracelet/datagrid/internal/ui/render"
)

// EditedEvent is sent after an edited value was written to the source.
type EditedEvent struct {
	Row      int
	Col      int
	OldValue any
	Value    any
}

type editSession struct {
	editor  editor.Editor
	factory editor.Factory
	col     int
	row     int
	modal   bool
}

// OnCellEdited registers a listener for completed edits.
func (s *Scroller) OnCellEdited(fn func(EditedEvent)) func() {
	return s.edited.Subscribe(fn)
}

// IsEditing reports whether an editor is open.
func (s *Scroller) IsEditing() bool {
	return s.edit != nil
}

// Editor returns the open editor, or nil.
func (s *Scroller) Editor() editor.Editor {
	if s.edit == nil {
		return nil
	}
	return s.edit.editor
}

// EditingModal reports whether the open editor is modal.
func (s *Scroller) EditingModal() bool {
	return s.edit != nil && s.edit.modal
}

// StartEditing opens an editor on the focused cell. It reports false when
// the cell is not in this scroller, the column is not editable or the
// editor factory declined.
func (s *Scroller) StartEditing() (tea.Cmd, bool) {
	if s.edit != nil {
		return nil, false
	}
	col, row := s.host.FocusedCell()
	if col < 0 || row < 0 {
		return nil, false
	}
	xPos := s.columns.X(col)
	src := s.host.Source()
	if xPos == -1 || !src.IsColumnEditable(col) {
		return nil, false
	}
	cm := s.host.ColumnModel()
	factory := cm.EditorFactory(col)
	if factory == nil {
		return nil, false
	}

	s.ScrollCellVisible(col, row)
	rowData, _ := src.RowData(row)
	ed := factory.CreateCellEditor(render.CellInfo{
		Value:       src.Value(col, row),
		RowData:     rowData,
		Row:         row,
		Col:         col,
		XPos:        xPos,
		Selected:    s.host.SelectionManager().Model().IsSelectedIndex(row),
		FocusedRow:  true,
		Editable:    true,
		StyleLeft:   s.columns.ColumnLeft(col),
		StyleWidth:  cm.ColumnWidth(col),
		StyleHeight: s.rowHeight(),
	})
	if ed == nil {
		return nil, false
	}

	s.edit = &editSession{
		editor:  ed,
		factory: factory,
		col:     col,
		row:     row,
		modal:   ed.Modal(),
	}
	if !s.edit.modal {
		s.syncEditorWidth()
	}
	return ed.Focus(), true
}

func (s *Scroller) syncEditorWidth() {
	s.edit.editor.SetWidth(s.host.ColumnModel().ColumnWidth(s.edit.col))
}

// FlushEditor writes the editor value to the source without closing the
// editor.
func (s *Scroller) FlushEditor() error {
	if s.edit == nil {
		return nil
	}
	e := s.edit
	src := s.host.Source()
	value := e.factory.CellEditorValue(e.editor)
	old := src.Value(e.col, e.row)
	if err := src.SetValue(e.col, e.row, value); err != nil {
		return fmt.Errorf("set value of row %d column %d: %w", e.row, e.col, err)
	}
	s.edited.Emit(EditedEvent{Row: e.row, Col: e.col, OldValue: old, Value: value})
	return nil
}

// StopEditing writes the editor value and closes the editor. The editor is
// closed even when writing failed.
func (s *Scroller) StopEditing() error {
	if s.edit == nil {
		return nil
	}
	err := s.FlushEditor()
	s.CancelEditing()
	return err
}

// CancelEditing closes the editor without writing its value.
func (s *Scroller) CancelEditing() {
	if s.edit == nil {
		return
	}
	s.edit.editor.Blur()
	s.edit = nil
	col, row := s.host.FocusedCell()
	s.pane.SetFocusedCell(col, row, false)
}
