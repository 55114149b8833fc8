package terminal

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up, Down, Left, Right key.Binding

	Click, RightClick, ShiftClick, Drop key.Binding

	Close, Help, Quit key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:       key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		Right:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
		Click:      key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "click")),
		RightClick: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "right click")),
		ShiftClick: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "shift click")),
		Drop:       key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "drop")),
		Close:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close menu")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp ...
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Click, k.Close, k.Help, k.Quit}
}

// FullHelp ...
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Click, k.RightClick, k.ShiftClick, k.Drop},
		{k.Close, k.Help, k.Quit},
	}
}
