package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	NextGame   key.Binding
	PrevGame   key.Binding
	PickGame   key.Binding
	ToggleMode key.Binding
	Up         key.Binding
	Down       key.Binding
	Open       key.Binding
	Back       key.Binding
	Lang       key.Binding
	RawJSON    key.Binding
	Refresh    key.Binding
	Quit       key.Binding
}

var keys = keyMap{
	NextGame: key.NewBinding(
		key.WithKeys("right"),
		key.WithHelp("→", "next game"),
	),
	PrevGame: key.NewBinding(
		key.WithKeys("left"),
		key.WithHelp("←", "previous game"),
	),
	// 1..6 map onto game.All in order.
	PickGame: key.NewBinding(
		key.WithKeys("1", "2", "3", "4", "5", "6"),
		key.WithHelp("1-6", "pick game"),
	),
	ToggleMode: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "latest/archive"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Open: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "open entry"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	Lang: key.NewBinding(
		key.WithKeys("l"),
		key.WithHelp("l", "language"),
	),
	RawJSON: key.NewBinding(
		key.WithKeys("J"),
		key.WithHelp("J", "raw json"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
