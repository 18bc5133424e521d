package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	NextTab key.Binding
	TabAll  key.Binding
	TabPend key.Binding
	TabDone key.Binding
	Add     key.Binding
	Toggle  key.Binding
	Delete  key.Binding
	Reload  key.Binding
	SignOut key.Binding
	Quit    key.Binding

	// Form keys
	Submit   key.Binding
	Cancel   key.Binding
	Focus    key.Binding
	Priority key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		NextTab: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		TabAll:  key.NewBinding(key.WithKeys("1")),
		TabPend: key.NewBinding(key.WithKeys("2")),
		TabDone: key.NewBinding(key.WithKeys("3")),
		Add:     key.NewBinding(key.WithKeys("a", "n"), key.WithHelp("a", "add")),
		Toggle:  key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "toggle")),
		Delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Reload:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		SignOut: key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "sign out")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

		Submit:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "add task")),
		Cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Focus:    key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "next field")),
		Priority: key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "priority")),
	}
}

func (k keyMap) listHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextTab, k.Add, k.Toggle, k.Delete, k.Reload, k.SignOut, k.Quit}
}

func (k keyMap) formHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Focus, k.Priority, k.Cancel}
}
