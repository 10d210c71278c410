package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap is the Normal-mode binding set. Dialog modes use small ad-hoc
// sets handled inline, since most accept only a few keys.
type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	Top        key.Binding
	Bottom     key.Binding
	Enter      key.Binding
	Parent     key.Binding
	SwitchPane key.Binding
	Select     key.Binding

	Copy    key.Binding
	Move    key.Binding
	Delete  key.Binding
	Rename  key.Binding
	NewFile key.Binding
	NewDir  key.Binding
	Chmod   key.Binding

	Reload       key.Binding
	ToggleHidden key.Binding
	CycleSort    key.Binding
	Help         key.Binding
	Quit         key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Top:        key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "top")),
		Bottom:     key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "bottom")),
		Enter:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open dir")),
		Parent:     key.NewBinding(key.WithKeys("backspace", "left"), key.WithHelp("backspace", "parent dir")),
		SwitchPane: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),
		Select:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "mark")),

		Copy:    key.NewBinding(key.WithKeys("f5", "c"), key.WithHelp("F5/c", "copy")),
		Move:    key.NewBinding(key.WithKeys("f6", "m"), key.WithHelp("F6/m", "move")),
		Delete:  key.NewBinding(key.WithKeys("f8", "d"), key.WithHelp("F8/d", "delete")),
		Rename:  key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "rename")),
		NewFile: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new file")),
		NewDir:  key.NewBinding(key.WithKeys("N"), key.WithHelp("N", "new dir")),
		Chmod:   key.NewBinding(key.WithKeys("M"), key.WithHelp("M", "chmod")),

		Reload:       key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		ToggleHidden: key.NewBinding(key.WithKeys("."), key.WithHelp(".", "hidden files")),
		CycleSort:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort order")),
		Help:         key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}
