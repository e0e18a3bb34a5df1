package table

import (
	"context"
	"image"
	"log/slog"
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/datagrid/internal/data"
	"github.com/charmbracelet/datagrid/internal/ui/common"
	"github.com/charmbracelet/datagrid/internal/ui/editor"
	"github.com/charmbracelet/datagrid/internal/ui/render"
	"github.com/charmbracelet/datagrid/internal/ui/scroller"
	"github.com/charmbracelet/datagrid/internal/ui/selection"
	"github.com/charmbracelet/datagrid/internal/uiutil"
	"github.com/charmbracelet/x/exp/ordered"
)

type tickMsg struct {
	id  string
	gen int
}

type loadedMsg struct {
	id string
}

type pasteMsg struct {
	id       string
	col, row int
	text     string
}

// Init implements tea.Model.
func (t *Table) Init() tea.Cmd {
	return tea.Batch(t.tick(), t.waitLoaded())
}

func (t *Table) tick() tea.Cmd {
	if !t.visible {
		return nil
	}
	id, gen := t.id, t.tickGen
	return tea.Tick(t.opts.UpdateInterval, func(time.Time) tea.Msg {
		return tickMsg{id: id, gen: gen}
	})
}

// waitLoaded waits for background loads of the source.
func (t *Table) waitLoaded() tea.Cmd {
	l, ok := t.src.(Loadable)
	if !ok {
		return nil
	}
	ctx, id, ready := t.ctx, t.id, l.Ready()
	return func() tea.Msg {
		select {
		case <-ready:
			return loadedMsg{id: id}
		case <-ctx.Done():
			return nil
		}
	}
}

const settlePoll = 20 * time.Millisecond

// Settle applies background loads of the source until no load runs, or ctx
// is done. It is used to render async sources without a running program.
func (t *Table) Settle(ctx context.Context) error {
	l, ok := t.src.(Loadable)
	if !ok {
		return nil
	}
	for {
		l.ApplyLoaded()
		if !l.Busy() {
			l.ApplyLoaded()
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.Ready():
		case <-time.After(settlePoll):
		}
	}
}

// Tick performs the deferred content updates of all scrollers. It reports
// whether anything was rendered.
func (t *Table) Tick() bool {
	var rendered bool
	for _, s := range t.scrollers {
		if s.Tick() {
			rendered = true
		}
	}
	return rendered
}

// Update implements tea.Model.
func (t *Table) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		t.SetSize(msg.Width, msg.Height)
	case tickMsg:
		if msg.id != t.id || msg.gen != t.tickGen {
			break
		}
		t.Tick()
		cmds = append(cmds, t.tick())
	case loadedMsg:
		if msg.id != t.id {
			break
		}
		if l, ok := t.src.(Loadable); ok {
			l.ApplyLoaded()
		}
		cmds = append(cmds, t.waitLoaded())
	case pasteMsg:
		if msg.id == t.id {
			cmds = append(cmds, t.PasteCell(msg.col, msg.row, msg.text))
		}
	case uiutil.InfoMsg:
		t.statusID++
		t.status = msg
		cmds = append(cmds, uiutil.ClearAfter(t.statusID, msg.TTL))
	case uiutil.ClearStatusMsg:
		if msg.ID == t.statusID {
			t.status = uiutil.InfoMsg{}
		}
	case tea.KeyPressMsg:
		cmds = append(cmds, t.handleKeyPressMsg(msg))
	case tea.MouseClickMsg:
		t.handleMouseDown(msg.Mouse())
	case tea.MouseMotionMsg:
		t.handleMouseMove(msg.Mouse())
	case tea.MouseReleaseMsg:
		cmds = append(cmds, t.handleMouseUp(msg.Mouse()))
	case tea.MouseWheelMsg:
		t.handleMouseWheel(msg.Mouse())
	case tea.FocusMsg:
		cmds = append(cmds, t.SetVisible(true))
	case tea.BlurMsg:
		t.CaptureLost()
	default:
		if s := t.editing(); s != nil {
			cmds = append(cmds, s.HandleEditorMsg(msg))
		}
	}
	cmds = append(cmds, t.pending...)
	t.pending = t.pending[:0]
	return t, tea.Batch(cmds...)
}

func keyGesture(msg tea.KeyPressMsg) selection.Gesture {
	return selection.Gesture{
		Shift: msg.Mod.Contains(tea.ModShift),
		Ctrl:  msg.Mod.Contains(tea.ModCtrl),
	}
}

func (t *Table) handleKeyPressMsg(msg tea.KeyPressMsg) tea.Cmd {
	if s := t.editing(); s != nil {
		switch {
		case key.Matches(msg, t.keyMap.Editor.Commit):
			t.StopEditing()
			t.moveFocus(0, 1, selection.Gesture{})
			return nil
		case key.Matches(msg, t.keyMap.Editor.Cancel):
			s.CancelEditing()
			return nil
		}
		return s.HandleEditorMsg(msg)
	}

	g := keyGesture(msg)
	switch {
	case key.Matches(msg, t.keyMap.Quit):
		return tea.Quit
	case key.Matches(msg, t.keyMap.Up):
		t.moveFocus(0, -1, g)
	case key.Matches(msg, t.keyMap.Down):
		t.moveFocus(0, 1, g)
	case key.Matches(msg, t.keyMap.Left):
		t.moveFocus(-1, 0, g)
	case key.Matches(msg, t.keyMap.Right):
		t.moveFocus(1, 0, g)
	case key.Matches(msg, t.keyMap.Home):
		t.moveFocus(0, -t.src.RowCount(), g)
	case key.Matches(msg, t.keyMap.End):
		t.moveFocus(0, t.src.RowCount(), g)
	case key.Matches(msg, t.keyMap.PageUp):
		t.page(-1, g)
	case key.Matches(msg, t.keyMap.PageDown):
		t.page(1, g)
	case key.Matches(msg, t.keyMap.SelectAll):
		t.SelectAll()
	case key.Matches(msg, t.keyMap.Select):
		if t.focusRow >= 0 {
			t.mgr.HandleSelectKeyDown(t.focusRow, g)
		}
	case key.Matches(msg, t.keyMap.Copy):
		return t.copySelection()
	case key.Matches(msg, t.keyMap.Paste):
		return t.paste()
	case key.Matches(msg, t.keyMap.Editor.Edit):
		cmd, _ := t.StartEditing()
		return cmd
	}
	return nil
}

// moveTarget returns the cell dCol visible columns and dRow rows away from
// the focus. Without focus the first visible cell is the target.
func (t *Table) moveTarget(dCol, dRow int) (col, row int, ok bool) {
	cols, rows := t.cm.VisibleColumnCount(), t.src.RowCount()
	if cols == 0 || rows == 0 {
		return 0, 0, false
	}
	if t.focusCol < 0 || t.focusRow < 0 {
		return t.cm.VisibleColumnAtX(0), 0, true
	}
	x := t.cm.VisibleX(t.focusCol)
	if x == -1 {
		x = 0
	}
	x = ordered.Clamp(x+dCol, 0, cols-1)
	row = ordered.Clamp(t.focusRow+dRow, 0, rows-1)
	return t.cm.VisibleColumnAtX(x), row, true
}

func (t *Table) moveFocus(dCol, dRow int, g selection.Gesture) {
	oldRow := t.focusRow
	col, row, ok := t.moveTarget(dCol, dRow)
	if !ok {
		return
	}
	t.SetFocusedCell(col, row, true)
	if row != oldRow && t.opts.RowFocusChangeModifiesSelection {
		t.mgr.HandleMoveKeyDown(row, g)
	}
}

// page scrolls one page in dir and moves the focus along.
func (t *Table) page(dir int, g selection.Gesture) {
	if len(t.scrollers) == 0 {
		return
	}
	s := t.scrollers[len(t.scrollers)-1]
	rows := max(s.Pane().VisibleRowCount()-1, 1)
	t.SetScrollY(s.ScrollY()+dir*rows*s.Pane().RowHeight(), true)
	t.moveFocus(0, dir*rows, g)
}

func mouseGesture(m tea.Mouse) selection.Gesture {
	g := selection.Gesture{
		Shift: m.Mod.Contains(tea.ModShift),
		Ctrl:  m.Mod.Contains(tea.ModCtrl),
	}
	switch m.Button {
	case tea.MouseLeft:
		g.Button = selection.ButtonLeft
	case tea.MouseRight:
		g.Button = selection.ButtonRight
	case tea.MouseMiddle:
		g.Button = selection.ButtonMiddle
	}
	return g
}

// scrollerAt returns the scroller under p and its origin.
func (t *Table) scrollerAt(p image.Point) (*scroller.Scroller, image.Point) {
	for i, area := range t.areas {
		if p.In(area) {
			return t.scrollers[i], area.Min
		}
	}
	return nil, image.Point{}
}

func (t *Table) handleMouseDown(m tea.Mouse) {
	if t.pressed != nil {
		t.CaptureLost()
	}
	p := image.Pt(m.X, m.Y)
	s, origin := t.scrollerAt(p)
	if s == nil {
		return
	}
	g := mouseGesture(m)
	local := p.Sub(origin)
	t.pressed, t.pressedAt, t.pressGesture = s, origin, g
	t.captured = s.MouseDown(local.X, local.Y, g)
}

func (t *Table) handleMouseMove(m tea.Mouse) {
	if t.pressed == nil || !t.captured {
		return
	}
	local := image.Pt(m.X, m.Y).Sub(t.pressedAt)
	t.pressed.MouseMove(local.X, local.Y)
}

func (t *Table) handleMouseUp(m tea.Mouse) tea.Cmd {
	s := t.pressed
	if s == nil {
		return nil
	}
	local := image.Pt(m.X, m.Y).Sub(t.pressedAt)
	t.pressed, t.captured = nil, false
	return s.MouseUp(local.X, local.Y, t.pressGesture)
}

func (t *Table) handleMouseWheel(m tea.Mouse) {
	s, _ := t.scrollerAt(image.Pt(m.X, m.Y))
	if s == nil {
		return
	}
	switch m.Button {
	case tea.MouseWheelUp:
		if m.Mod.Contains(tea.ModShift) {
			s.SetScrollX(s.ScrollX() - scroller.DefaultWheelRows)
			return
		}
		s.Wheel(-1)
	case tea.MouseWheelDown:
		if m.Mod.Contains(tea.ModShift) {
			s.SetScrollX(s.ScrollX() + scroller.DefaultWheelRows)
			return
		}
		s.Wheel(1)
	case tea.MouseWheelLeft:
		s.SetScrollX(s.ScrollX() - scroller.DefaultWheelRows)
	case tea.MouseWheelRight:
		s.SetScrollX(s.ScrollX() + scroller.DefaultWheelRows)
	}
}

// CaptureLost finalizes a running drag with its last known values.
func (t *Table) CaptureLost() {
	if t.pressed == nil {
		return
	}
	slog.Debug("Mouse capture lost", "table", t.id)
	t.pressed.CaptureLost()
	t.pressed, t.captured = nil, false
}

// SelectionTSV returns the selected rows, or the focused row when nothing
// is selected, as tab separated values with a header line of the visible
// columns.
func (t *Table) SelectionTSV() (string, int) {
	var rows []int
	for row := range t.sel.All() {
		rows = append(rows, row)
	}
	if len(rows) == 0 && t.focusRow >= 0 {
		rows = []int{t.focusRow}
	}
	if len(rows) == 0 {
		return "", 0
	}

	cols := t.cm.VisibleColumns()
	var b strings.Builder
	b.WriteString(t.headerTSV())
	for _, row := range rows {
		b.WriteByte('\n')
		for i, col := range cols {
			if i > 0 {
				b.WriteByte('\t')
			}
			b.WriteString(tsvField.Replace(render.FormatValue(t.src.Value(col, row))))
		}
	}
	return b.String(), len(rows)
}

var tsvField = strings.NewReplacer("\t", " ", "\n", " ", "\r", "")

// headerTSV returns the visible column names joined by tabs.
func (t *Table) headerTSV() string {
	var b strings.Builder
	for i, col := range t.cm.VisibleColumns() {
		if i > 0 {
			b.WriteByte('\t')
		}
		b.WriteString(tsvField.Replace(t.src.ColumnName(col)))
	}
	return b.String()
}

func (t *Table) copySelection() tea.Cmd {
	text, n := t.SelectionTSV()
	if n == 0 {
		return uiutil.ReportWarn("Nothing to copy")
	}
	return func() tea.Msg {
		if err := clipboard.WriteAll(text); err != nil {
			return uiutil.ReportError(err)()
		}
		return uiutil.InfoMsg{
			Type: uiutil.InfoTypeSuccess,
			Msg:  "Copied " + common.RowCount(n, 0),
			TTL:  uiutil.DefaultTTL,
		}
	}
}

func (t *Table) paste() tea.Cmd {
	col, row := t.focusCol, t.focusRow
	if col < 0 || row < 0 {
		return uiutil.ReportWarn("No cell to paste into")
	}
	if !t.src.IsColumnEditable(col) {
		return uiutil.ReportWarn(t.src.ColumnName(col) + " is not editable")
	}
	id := t.id
	return func() tea.Msg {
		text, err := readClipboard()
		if err != nil {
			return uiutil.ReportError(err)()
		}
		return pasteMsg{id: id, col: col, row: row, text: text}
	}
}

// PasteCell stores the first field of text in the cell at col and row. A
// leading line holding the visible column names, as written by SelectionTSV,
// is skipped. The field is converted to the type of the current value.
func (t *Table) PasteCell(col, row int, text string) tea.Cmd {
	if row < 0 || row >= t.src.RowCount() || !t.src.IsColumnEditable(col) {
		return nil
	}
	lines := strings.Split(strings.TrimRight(text, "\r\n"), "\n")
	if len(lines) > 1 && strings.TrimRight(lines[0], "\r") == t.headerTSV() {
		lines = lines[1:]
	}
	field, _, _ := strings.Cut(strings.TrimRight(lines[0], "\r"), "\t")
	old := t.src.Value(col, row)
	var value any
	if old == nil {
		value = data.ParseValue(field)
	} else {
		value = editor.ParseAs(field, old)
	}
	if err := t.src.SetValue(col, row, value); err != nil {
		return uiutil.ReportError(err)
	}
	t.cellEdited.Emit(scroller.EditedEvent{Row: row, Col: col, OldValue: old, Value: value})
	return nil
}
