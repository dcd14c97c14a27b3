package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings of the watch view.
type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	Refresh key.Binding
	Detail  key.Binding
	Escape  key.Binding
	Help    key.Binding
	Quit    key.Binding
}

// DefaultKeyMap provides the default set of key bindings.
var DefaultKeyMap = KeyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("up/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("down/j", "down")),
	Toggle:  key.NewBinding(key.WithKeys("t", "enter"), key.WithHelp("t/enter", "toggle")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Detail:  key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "details")),
	Escape:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}
