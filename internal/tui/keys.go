package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the bindings of the home screen and the forms.
type KeyMap struct {
	Add      key.Binding
	Edit     key.Binding
	Delete   key.Binding
	Open     key.Binding
	NextTab  key.Binding
	PrevTab  key.Binding
	TagCycle key.Binding
	Refresh  key.Binding
	Logout   key.Binding
	Quit     key.Binding

	Save   key.Binding
	Cancel key.Binding
	Signup key.Binding
	Yes    key.Binding
	No     key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Edit:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Delete:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Open:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		NextTab:  key.NewBinding(key.WithKeys("tab", "right", "l"), key.WithHelp("tab", "next tab")),
		PrevTab:  key.NewBinding(key.WithKeys("shift+tab", "left", "h"), key.WithHelp("shift+tab", "prev tab")),
		TagCycle: key.NewBinding(key.WithKeys("/", "t"), key.WithHelp("/", "tag filter")),
		Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Logout:   key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "log out")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

		Save:   key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Signup: key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "create account")),
		Yes:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "continue")),
		No:     key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "cancel")),
	}
}
