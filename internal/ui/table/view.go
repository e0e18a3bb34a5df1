package table

import (
	"image"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/datagrid/internal/ui/common"
	"github.com/charmbracelet/datagrid/internal/ui/styles"
	"github.com/charmbracelet/datagrid/internal/uiutil"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/charmbracelet/ultraviolet/screen"
)

// View implements tea.Model.
func (t *Table) View() tea.View {
	var v tea.View
	v.AltScreen = true
	v.BackgroundColor = t.com.Styles.Background
	v.MouseMode = tea.MouseModeCellMotion
	v.Content = t.Render()
	return v
}

// Render draws the table into a string.
func (t *Table) Render() string {
	if t.width <= 0 || t.height <= 0 {
		return ""
	}
	canvas := uv.NewScreenBuffer(t.width, t.height)
	t.Draw(canvas, canvas.Bounds())
	return strings.ReplaceAll(canvas.Render(), "\r\n", "\n")
}

// Draw draws the table into area.
func (t *Table) Draw(scr uv.Screen, area uv.Rectangle) {
	screen.ClearArea(scr, area)
	for i, s := range t.scrollers {
		if i >= len(t.areas) {
			break
		}
		s.Draw(scr, t.areas[i].Add(area.Min))
	}

	if t.statusBarVisible() {
		bar := image.Rect(area.Min.X, area.Max.Y-1, area.Max.X, area.Max.Y)
		uv.NewStyledString(t.statusBar(bar.Dx())).Draw(scr, bar)
	}

	if s := t.editing(); s != nil && s.EditingModal() {
		st := t.com.Styles.ModalEditor
		inner := max(min(area.Dx()-st.GetHorizontalFrameSize(), 60), 1)
		s.Editor().SetWidth(inner)
		box := st.Width(inner + st.GetHorizontalFrameSize()).Render(s.Editor().View())
		r := common.CenterRect(area, lipgloss.Width(box), lipgloss.Height(box))
		screen.ClearArea(scr, r)
		uv.NewStyledString(box).Draw(scr, r)
	}
}

func (t *Table) statusBar(width int) string {
	st := &t.com.Styles
	base := st.StatusBar.Base
	inner := max(width-base.GetHorizontalFrameSize(), 0)

	if t.status.Msg != "" {
		style := st.StatusBar.Info
		icon := styles.CheckIcon
		switch t.status.Type {
		case uiutil.InfoTypeError:
			style, icon = st.StatusBar.Error, styles.CrossIcon
		case uiutil.InfoTypeWarn:
			style, icon = st.StatusBar.Error, "!"
		}
		line := common.Status(st, common.StatusOpts{
			Icon:             icon,
			Title:            t.status.Type.String(),
			TitleColor:       style.GetForeground(),
			Description:      t.status.Msg,
			DescriptionColor: style.GetForeground(),
		}, inner)
		return base.Width(width).MaxWidth(width).Render(line)
	}

	left := common.RowCount(t.src.RowCount(), t.sel.SelectedCount())
	if t.title != "" {
		w := min(lipgloss.Width(t.title), max(inner/3, 1))
		left = common.PrettyPath(st, t.title, w) + "  " + left
	}
	if t.Busy() {
		left = st.StatusBar.Loading.UnsetPadding().Render(styles.LoadingIcon+" loading") + "  " + left
	}
	right := common.CellPosition(t.focusCol, t.focusRow)
	gap := max(inner-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return base.Width(width).MaxWidth(width).Render(left + strings.Repeat(" ", gap) + right)
}
