package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
//
// Single-letter bindings only apply while no text input has focus.
type keyMap struct {
	up          key.Binding
	down        key.Binding
	enter       key.Binding
	back        key.Binding
	next        key.Binding
	prev        key.Binding
	toggle      key.Binding
	useGenres   key.Binding
	visibility  key.Binding
	submit      key.Binding
	refresh     key.Binding
	exportText  key.Binding
	exportImage key.Binding
	bold        key.Binding
	textUp      key.Binding
	textDown    key.Binding
	coverUp     key.Binding
	coverDown   key.Binding
	quit        key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:        key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		next:        key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		prev:        key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev field")),
		toggle:      key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
		useGenres:   key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "filter by genre")),
		visibility:  key.NewBinding(key.WithKeys("left", "right"), key.WithHelp("←/→", "change")),
		submit:      key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "submit")),
		refresh:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		exportText:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "export text")),
		exportImage: key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "export image")),
		bold:        key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "bold")),
		textUp:      key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+/-", "text size")),
		textDown:    key.NewBinding(key.WithKeys("-")),
		coverUp:     key.NewBinding(key.WithKeys("]"), key.WithHelp("[/]", "cover size")),
		coverDown:   key.NewBinding(key.WithKeys("[")),
		quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter},
		{k.next, k.prev, k.back},
		{k.submit, k.quit},
	}
}
