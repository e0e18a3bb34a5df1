package common

import (
	"cmp"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/datagrid/internal/ui/styles"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
)

// PrettyPath renders path with the home directory shortened to ~.
func PrettyPath(t *styles.Styles, path string, width int) string {
	formatted := path
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		if rest, ok := strings.CutPrefix(path, home); ok && (rest == "" || rest[0] == filepath.Separator) {
			formatted = "~" + rest
		}
	}
	return t.Muted.Width(width).Render(ansi.Truncate(formatted, width, "…"))
}

// RowCount formats the row and selection counters of the status bar.
func RowCount(rows, selected int) string {
	noun := "rows"
	if rows == 1 {
		noun = "row"
	}
	s := fmt.Sprintf("%s %s", humanize.Comma(int64(rows)), noun)
	if selected > 0 {
		s += fmt.Sprintf(", %s selected", humanize.Comma(int64(selected)))
	}
	return s
}

// CellPosition formats the focused cell as "row:col" using one based
// numbers, or an empty string when no cell has focus.
func CellPosition(col, row int) string {
	if col < 0 || row < 0 {
		return ""
	}
	return fmt.Sprintf("%s:%d", humanize.Comma(int64(row+1)), col+1)
}

type StatusOpts struct {
	Icon             string // if empty no icon will be shown
	Title            string
	TitleColor       color.Color
	Description      string
	DescriptionColor color.Color
	ExtraContent     string // additional content to append after the description
}

func Status(t *styles.Styles, opts StatusOpts, width int) string {
	icon := opts.Icon
	title := opts.Title
	description := opts.Description

	titleColor := cmp.Or(opts.TitleColor, t.Muted.GetForeground())
	descriptionColor := cmp.Or(opts.DescriptionColor, t.Subtle.GetForeground())

	title = t.Base.Foreground(titleColor).Render(title)

	if description != "" {
		extraContentWidth := lipgloss.Width(opts.ExtraContent)
		if extraContentWidth > 0 {
			extraContentWidth += 1
		}
		description = ansi.Truncate(description, width-lipgloss.Width(icon)-lipgloss.Width(title)-2-extraContentWidth, "…")
		description = t.Base.Foreground(descriptionColor).Render(description)
	}

	content := []string{}
	if icon != "" {
		content = append(content, icon)
	}
	content = append(content, title)
	if description != "" {
		content = append(content, description)
	}
	if opts.ExtraContent != "" {
		content = append(content, opts.ExtraContent)
	}

	return strings.Join(content, " ")
}
