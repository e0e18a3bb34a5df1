package table

import "charm.land/bubbles/v2/key"

type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Home     key.Binding
	End      key.Binding
	PageUp   key.Binding
	PageDown key.Binding

	SelectAll key.Binding
	Select    key.Binding
	Copy      key.Binding
	Paste     key.Binding

	Editor struct {
		Edit   key.Binding
		Commit key.Binding
		Cancel key.Binding
	}

	Quit key.Binding
}

func DefaultKeyMap() KeyMap {
	km := KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "shift+up", "ctrl+up"),
			key.WithHelp("↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "shift+down", "ctrl+down"),
			key.WithHelp("↓", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "shift+left", "ctrl+left"),
			key.WithHelp("←", "left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "shift+right", "ctrl+right"),
			key.WithHelp("→", "right"),
		),
		Home: key.NewBinding(
			key.WithKeys("home", "shift+home", "ctrl+home"),
			key.WithHelp("home", "first row"),
		),
		End: key.NewBinding(
			key.WithKeys("end", "shift+end", "ctrl+end"),
			key.WithHelp("end", "last row"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "shift+pgup", "ctrl+pgup"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "shift+pgdown", "ctrl+pgdown"),
			key.WithHelp("pgdown", "page down"),
		),
		SelectAll: key.NewBinding(
			key.WithKeys("ctrl+a"),
			key.WithHelp("ctrl+a", "select all"),
		),
		Select: key.NewBinding(
			key.WithKeys("space", " ", "shift+space", "ctrl+space"),
			key.WithHelp("space", "select"),
		),
		Copy: key.NewBinding(
			key.WithKeys("ctrl+c", "y"),
			key.WithHelp("ctrl+c", "copy rows"),
		),
		Paste: key.NewBinding(
			key.WithKeys("ctrl+v", "p"),
			key.WithHelp("ctrl+v", "paste into cell"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+q"),
			key.WithHelp("q", "quit"),
		),
	}

	km.Editor.Edit = key.NewBinding(
		key.WithKeys("enter", "f2"),
		key.WithHelp("enter", "edit"),
	)
	km.Editor.Commit = key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "save"),
	)
	km.Editor.Cancel = key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	)

	return km
}
