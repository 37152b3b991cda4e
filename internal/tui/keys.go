package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Home    key.Binding
	End     key.Binding
	Open    key.Binding
	Dismiss key.Binding
	Refresh key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		Right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
		Home:    key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "first column")),
		End:     key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "last column")),
		Open:    key.NewBinding(key.WithKeys("enter", "o"), key.WithHelp("enter/o", "open link")),
		Dismiss: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close preview")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "pull data")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.Dismiss, k.Refresh, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Home, k.End},
		{k.Open, k.Dismiss, k.Refresh},
		{k.Help, k.Quit},
	}
}
