package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	// Navigation
	Up       key.Binding
	Down     key.Binding
	Top      key.Binding
	Bottom   key.Binding
	HalfDown key.Binding
	HalfUp   key.Binding

	// Filter & input
	Filter key.Binding
	Escape key.Binding
	Enter  key.Binding

	// Actions
	Rescan   key.Binding
	Open     key.Binding
	Shell    key.Binding
	CopyPath key.Binding

	// Views
	Sort   key.Binding
	Dupes  key.Binding
	Detail key.Binding

	// Meta
	Help key.Binding
	Quit key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Top: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("g/home", "top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("G/end", "bottom"),
		),
		HalfDown: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("C-d", "½ page down"),
		),
		HalfUp: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("C-u", "½ page up"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "cd to project"),
		),
		Rescan: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rescan"),
		),
		Open: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open finder"),
		),
		Shell: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "shell"),
		),
		CopyPath: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy path"),
		),
		Sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort size/path"),
		),
		Dupes: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "duplicates"),
		),
		Detail: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "detail"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) helpText() string {
	format := func(b key.Binding) string {
		h := b.Help()
		return "  " + padRight(h.Key, 12) + h.Desc
	}

	return `Navigation
` + format(k.Up) + `
` + format(k.Down) + `
` + format(k.Top) + `
` + format(k.Bottom) + `
` + format(k.HalfDown) + `
` + format(k.HalfUp) + `
` + format(k.Filter) + `
` + format(k.Escape) + `

Actions
` + format(k.Enter) + `
` + format(k.Rescan) + `
` + format(k.Open) + `
` + format(k.CopyPath) + `
` + format(k.Shell) + `

Views & Sort
` + format(k.Sort) + `
` + format(k.Dupes) + `
` + format(k.Detail) + `

` + format(k.Help) + `
` + format(k.Quit)
}
