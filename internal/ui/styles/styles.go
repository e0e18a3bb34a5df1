package styles

import (
	"image/color"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/exp/charmtone"
)

const (
	CheckIcon   string = "✓"
	CrossIcon   string = "×"
	LoadingIcon string = "⟳"

	SortAscendingIcon  string = "▲"
	SortDescendingIcon string = "▼"

	BorderThin  string = "│"
	BorderThick string = "▌"

	ScrollbarTrack  string = "│"
	ScrollbarThumb  string = "┃"
	ScrollbarHTrack string = "─"
	ScrollbarHThumb string = "━"

	ResizeLine string = "┊"
)

type Styles struct {
	// Reusable text styles
	Base   lipgloss.Style
	Muted  lipgloss.Style
	Subtle lipgloss.Style

	// Rows, keyed by the row classes the row renderer assigns.
	Row struct {
		Even            lipgloss.Style
		Odd             lipgloss.Style
		Selected        lipgloss.Style
		Focused         lipgloss.Style
		FocusedSelected lipgloss.Style
	}

	Header struct {
		Cell     lipgloss.Style
		Sorted   lipgloss.Style
		Feedback lipgloss.Style
		Line     lipgloss.Style
	}

	// Focus indicator drawn over the focused cell.
	Focus lipgloss.Style

	// Floating resize line shown while resizing without live resize.
	Resize lipgloss.Style

	Scrollbar struct {
		Track lipgloss.Style
		Thumb lipgloss.Style
	}

	StatusBar struct {
		Base    lipgloss.Style
		Loading lipgloss.Style
		Error   lipgloss.Style
		Info    lipgloss.Style
	}

	// Inputs
	TextInput textinput.Styles

	// Modal editor frame
	ModalEditor lipgloss.Style

	// Background
	Background color.Color
}

func DefaultStyles() Styles {
	var (
		primary   = charmtone.Charple
		secondary = charmtone.Dolly
		tertiary  = charmtone.Bok

		// Backgrounds
		bgBase        = charmtone.Pepper
		bgBaseLighter = charmtone.BBQ
		bgSubtle      = charmtone.Charcoal
		bgOverlay     = charmtone.Iron

		// Foregrounds
		fgBase      = charmtone.Ash
		fgMuted     = charmtone.Squid
		fgHalfMuted = charmtone.Smoke
		fgSubtle    = charmtone.Oyster
		fgSelected  = charmtone.Salt

		// Borders
		borderFocus = charmtone.Charple

		// Status
		info = charmtone.Malibu
		red  = charmtone.Coral
		zest = charmtone.Zest
	)

	base := lipgloss.NewStyle().Foreground(fgBase)

	s := Styles{}

	s.Background = bgBase

	s.Base = base
	s.Muted = base.Foreground(fgMuted)
	s.Subtle = base.Foreground(fgSubtle)

	s.Row.Even = base
	s.Row.Odd = base.Background(bgBaseLighter)
	s.Row.Selected = lipgloss.NewStyle().Foreground(fgSelected).Background(primary)
	s.Row.Focused = base.Background(bgSubtle)
	s.Row.FocusedSelected = lipgloss.NewStyle().Foreground(fgSelected).Background(secondary)

	s.Header.Cell = base.Foreground(fgHalfMuted).Bold(true)
	s.Header.Sorted = base.Foreground(tertiary).Bold(true)
	s.Header.Feedback = lipgloss.NewStyle().Foreground(fgSelected).Background(bgOverlay).Bold(true)
	s.Header.Line = base.Foreground(fgSubtle)

	s.Focus = lipgloss.NewStyle().Foreground(borderFocus).Reverse(true)
	s.Resize = lipgloss.NewStyle().Foreground(zest)

	s.Scrollbar.Track = base.Foreground(bgSubtle)
	s.Scrollbar.Thumb = base.Foreground(fgMuted)

	s.StatusBar.Base = base.Foreground(fgMuted).Background(bgSubtle).Padding(0, 1)
	s.StatusBar.Loading = s.StatusBar.Base.Foreground(zest)
	s.StatusBar.Error = s.StatusBar.Base.Foreground(red)
	s.StatusBar.Info = s.StatusBar.Base.Foreground(info)

	s.TextInput = textinput.Styles{
		Focused: textinput.StyleState{
			Text:        base,
			Placeholder: base.Foreground(fgSubtle),
			Prompt:      base.Foreground(tertiary),
			Suggestion:  base.Foreground(fgSubtle),
		},
		Blurred: textinput.StyleState{
			Text:        base.Foreground(fgMuted),
			Placeholder: base.Foreground(fgSubtle),
			Prompt:      base.Foreground(fgMuted),
			Suggestion:  base.Foreground(fgSubtle),
		},
		Cursor: textinput.CursorStyle{
			Color: secondary,
			Shape: tea.CursorBar,
			Blink: true,
		},
	}

	s.ModalEditor = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderFocus).
		Padding(0, 1)

	return s
}
