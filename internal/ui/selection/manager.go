package selection

// Button identifies the pointer button of a mouse gesture.
type Button uint8

// Pointer buttons.
const (
	ButtonNone Button = iota
	ButtonLeft
	ButtonRight
	ButtonMiddle
)

// Gesture describes the pointer button and modifiers of a selection gesture.
type Gesture struct {
	Button Button
	Shift  bool
	Ctrl   bool
}

// Manager translates mouse and keyboard gestures into selection model
// operations.
type Manager struct {
	model *Model

	// Set when the last mouse down already changed the selection, so the
	// following tap does not apply it a second time.
	lastMouseDownHandled bool
}

// NewManager creates a Manager operating on model.
func NewManager(model *Model) *Manager {
	return &Manager{model: model}
}

// Model returns the managed selection model.
func (m *Manager) Model() *Model {
	return m.model
}

// HandleMouseDown handles a pointer press on row. Unselected rows are
// selected on press so a drag starts from them; already selected rows are
// handled on release by HandleTap. A plain right press selects the row if
// it is not selected yet.
func (m *Manager) HandleMouseDown(row int, g Gesture) {
	switch g.Button {
	case ButtonLeft:
		if !m.model.IsSelectedIndex(row) {
			m.handleSelect(row, g)
			m.lastMouseDownHandled = true
		} else {
			m.lastMouseDownHandled = false
		}
	case ButtonRight:
		if !g.Shift && !g.Ctrl && !m.model.IsSelectedIndex(row) {
			m.model.SetSelectionInterval(row, row)
		}
	}
}

// HandleTap handles the click that completes a press on row.
func (m *Manager) HandleTap(row int, g Gesture) {
	if !m.lastMouseDownHandled {
		m.handleSelect(row, g)
	}
	m.lastMouseDownHandled = false
}

// HandleSelectKeyDown handles the select key (space) on row.
func (m *Manager) HandleSelectKeyDown(row int, g Gesture) {
	m.handleSelect(row, g)
}

// HandleMoveKeyDown handles keyboard focus movement to row: without
// modifiers the row becomes the selection, with shift the selection extends
// from the anchor. Ctrl movement leaves the selection alone.
func (m *Manager) HandleMoveKeyDown(row int, g Gesture) {
	switch {
	case g.Ctrl:
	case g.Shift:
		anchor := m.model.AnchorSelectionIndex()
		if anchor == -1 {
			anchor = row
		}
		m.model.SetSelectionInterval(anchor, row)
	default:
		m.model.SetSelectionInterval(row, row)
	}
}

func (m *Manager) handleSelect(row int, g Gesture) {
	sm := m.model
	switch {
	case g.Shift:
		if row == sm.LeadSelectionIndex() && !sm.IsSelectionEmpty() {
			return
		}
		anchor := sm.AnchorSelectionIndex()
		if anchor == -1 {
			anchor = row
		}
		if g.Ctrl {
			sm.AddSelectionInterval(anchor, row)
		} else {
			sm.SetSelectionInterval(anchor, row)
		}
	case g.Ctrl:
		if sm.IsSelectedIndex(row) {
			sm.RemoveSelectionInterval(row, row)
		} else {
			sm.AddSelectionInterval(row, row)
		}
	default:
		sm.SetSelectionInterval(row, row)
	}
}
