package selection

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func click(m *Manager, row int, g Gesture) {
	g.Button = ButtonLeft
	m.HandleMouseDown(row, g)
	m.HandleTap(row, g)
}

func TestManager_Click(t *testing.T) {
	t.Parallel()

	sm := New()
	sm.SetMode(ModeMultipleInterval)
	m := NewManager(sm)

	click(m, 3, Gesture{})
	require.Equal(t, []Range{{3, 3}}, sm.Ranges())

	click(m, 6, Gesture{Shift: true})
	require.Equal(t, []Range{{3, 6}}, sm.Ranges())

	click(m, 4, Gesture{Ctrl: true})
	require.Equal(t, []Range{{3, 3}, {5, 6}}, sm.Ranges())

	click(m, 10, Gesture{Ctrl: true})
	require.Equal(t, []Range{{3, 3}, {5, 6}, {10, 10}}, sm.Ranges())

	click(m, 12, Gesture{Shift: true, Ctrl: true})
	require.Equal(t, []Range{{3, 3}, {5, 6}, {10, 12}}, sm.Ranges())

	click(m, 5, Gesture{})
	require.Equal(t, []Range{{5, 5}}, sm.Ranges())
}

func TestManager_SelectedRowHandledOnTap(t *testing.T) {
	t.Parallel()

	sm := New()
	sm.SetMode(ModeMultipleInterval)
	sm.SetSelectionInterval(2, 8)
	m := NewManager(sm)

	m.HandleMouseDown(4, Gesture{Button: ButtonLeft})
	require.Equal(t, []Range{{2, 8}}, sm.Ranges())
	m.HandleTap(4, Gesture{Button: ButtonLeft})
	require.Equal(t, []Range{{4, 4}}, sm.Ranges())
}

func TestManager_RightClick(t *testing.T) {
	t.Parallel()

	sm := New()
	sm.SetMode(ModeMultipleInterval)
	sm.SetSelectionInterval(2, 8)
	m := NewManager(sm)

	m.HandleMouseDown(5, Gesture{Button: ButtonRight})
	require.Equal(t, []Range{{2, 8}}, sm.Ranges())

	m.HandleMouseDown(20, Gesture{Button: ButtonRight})
	require.Equal(t, []Range{{20, 20}}, sm.Ranges())
}

func TestManager_MoveKeyDown(t *testing.T) {
	t.Parallel()

	sm := New()
	sm.SetMode(ModeMultipleInterval)
	m := NewManager(sm)

	m.HandleMoveKeyDown(4, Gesture{Shift: true})
	require.Equal(t, []Range{{4, 4}}, sm.Ranges())

	m.HandleMoveKeyDown(7, Gesture{Shift: true})
	require.Equal(t, []Range{{4, 7}}, sm.Ranges())

	m.HandleMoveKeyDown(9, Gesture{Ctrl: true})
	require.Equal(t, []Range{{4, 7}}, sm.Ranges())

	m.HandleMoveKeyDown(1, Gesture{})
	require.Equal(t, []Range{{1, 1}}, sm.Ranges())
}
