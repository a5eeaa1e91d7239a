package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// keyMap defines the keys for the sync view.
type keyMap struct {
	Cancel key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Cancel, k.Quit}
}

// FullHelp returns keybindings for the expanded help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Cancel, k.Quit}}
}

func newKeyMap() keyMap {
	return keyMap{
		Cancel: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "cancel sync")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "cancel and quit")),
	}
}
