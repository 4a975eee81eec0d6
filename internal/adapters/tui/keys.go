package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit      key.Binding
	Next      key.Binding
	Prev      key.Binding
	Back      key.Binding
	Forward   key.Binding
	Reload    key.Binding
	Concierge key.Binding
	Help      key.Binding
	Up        key.Binding
	Down      key.Binding
	Select    key.Binding
	Cancel    key.Binding

	// Account
	Login    key.Binding
	Register key.Binding
	Profile  key.Binding
	Logout   key.Binding

	// Attendees
	Search     key.Binding
	Filter     key.Binding
	Toggle     key.Binding
	Refresh    key.Binding
	RefreshAll key.Binding

	// Dashboard
	NextProfile key.Binding
	PrevProfile key.Binding
	Cycle       key.Binding
	Notes       key.Binding
	Save        key.Binding
	Approve     key.Binding
	Reject      key.Binding
	Discard     key.Binding

	// Messages
	Compose key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Next:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next view")),
		Prev:      key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous view")),
		Back:      key.NewBinding(key.WithKeys("["), key.WithHelp("[", "back")),
		Forward:   key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "forward")),
		Reload:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Concierge: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "concierge")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Select:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		Cancel:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),

		Login:    key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "sign in")),
		Register: key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "register")),
		Profile:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "edit profile")),
		Logout:   key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "sign out")),

		Search:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Filter:     key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filters")),
		Toggle:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
		Refresh:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "refresh enrichment")),
		RefreshAll: key.NewBinding(key.WithKeys("E"), key.WithHelp("E", "refresh all")),

		NextProfile: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "next profile")),
		PrevProfile: key.NewBinding(key.WithKeys("P"), key.WithHelp("P", "previous profile")),
		Cycle:       key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "cycle status")),
		Notes:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "notes")),
		Save:        key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save")),
		Approve:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "approve")),
		Reject:      key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "reject")),
		Discard:     key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo edit")),

		Compose: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "write message")),
	}
}
