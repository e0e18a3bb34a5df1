package render

import (
	"cmp"
	"reflect"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/datagrid/internal/ui/styles"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
)

// Ellipsis is appended to truncated cell text.
const Ellipsis = "…"

// Default renders a value as text, truncated and aligned to the cell width.
type Default struct {
	Align lipgloss.Position
	// Format overrides FormatValue.
	Format func(v any) string
}

// RenderCell implements CellRenderer.
func (d Default) RenderCell(buf *strings.Builder, info CellInfo) bool {
	var text string
	if d.Format != nil {
		text = d.Format(info.Value)
	} else {
		text = FormatValue(info.Value)
	}
	WriteCell(buf, text, info.StyleWidth, info.StyleHeight, d.Align)
	return false
}

// Number renders numeric values with thousands separators, right aligned.
// Non-numeric values fall back to plain text.
type Number struct {
	// Decimals limits the number of fraction digits of floats. Negative
	// keeps all significant digits.
	Decimals int
}

// RenderCell implements CellRenderer.
func (n Number) RenderCell(buf *strings.Builder, info CellInfo) bool {
	WriteCell(buf, n.Format(info.Value), info.StyleWidth, info.StyleHeight, lipgloss.Right)
	return false
}

// Format formats v the way RenderCell displays it.
func (n Number) Format(v any) string {
	switch v := v.(type) {
	case int:
		return humanize.Comma(int64(v))
	case int32:
		return humanize.Comma(int64(v))
	case int64:
		return humanize.Comma(v)
	case uint32:
		return humanize.Comma(int64(v))
	case float32:
		return n.float(float64(v))
	case float64:
		return n.float(v)
	}
	return FormatValue(v)
}

func (n Number) float(f float64) string {
	if n.Decimals < 0 {
		return humanize.Commaf(f)
	}
	return humanize.CommafWithDigits(f, n.Decimals)
}

// Boolean renders booleans as check marks, centered.
type Boolean struct {
	True, False string
}

// RenderCell implements CellRenderer.
func (b Boolean) RenderCell(buf *strings.Builder, info CellInfo) bool {
	var text string
	switch v := info.Value.(type) {
	case bool:
		if v {
			text = cmp.Or(b.True, styles.CheckIcon)
		} else {
			text = cmp.Or(b.False, styles.CrossIcon)
		}
	default:
		text = FormatValue(v)
	}
	WriteCell(buf, text, info.StyleWidth, info.StyleHeight, lipgloss.Center)
	return false
}

// Replace renders values through a lookup table, falling back to Fallback
// (or the value itself) for unknown values.
type Replace struct {
	Map      map[any]string
	Fallback func(v any) string
	Align    lipgloss.Position
}

// RenderCell implements CellRenderer.
func (r Replace) RenderCell(buf *strings.Builder, info CellInfo) bool {
	var (
		text string
		ok   bool
	)
	if info.Value != nil && reflect.TypeOf(info.Value).Comparable() {
		text, ok = r.Map[info.Value]
	}
	if !ok {
		if r.Fallback != nil {
			text = r.Fallback(info.Value)
		} else {
			text = FormatValue(info.Value)
		}
	}
	WriteCell(buf, text, info.StyleWidth, info.StyleHeight, r.Align)
	return false
}

// WriteCell writes text into buf as a block of exactly width columns and
// height lines.
func WriteCell(buf *strings.Builder, text string, width, height int, align lipgloss.Position) {
	if width <= 0 {
		return
	}
	if ansi.StringWidth(text) > width {
		text = ansi.Truncate(text, width, Ellipsis)
	}
	buf.WriteString(lipgloss.PlaceHorizontal(width, align, text))
	if height > 1 {
		blank := strings.Repeat(" ", width)
		for range height - 1 {
			buf.WriteByte('\n')
			buf.WriteString(blank)
		}
	}
}
