package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// KeyMap holds the browser bindings. Row navigation is handled by the
// table's own key map.
type KeyMap struct {
	Select key.Binding
	Back   key.Binding
	Quit   key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "record")),
		Back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// HelpText is the footer of the table view.
func (k KeyMap) HelpText() string {
	return joinHelp(
		key.NewBinding(key.WithHelp("↑/↓", "navigate")),
		key.NewBinding(key.WithHelp("pgup/pgdn", "page")),
		k.Select,
		k.Quit,
	)
}

// RecordHelpText is the footer of the single-record view.
func (k KeyMap) RecordHelpText() string {
	return joinHelp(k.Back, k.Quit)
}

func joinHelp(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " • ")
}
