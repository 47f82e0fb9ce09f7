// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package wizardui

import "github.com/charmbracelet/bubbles/key"

// KeyMap is the wizard's key bindings.
type KeyMap struct {
	Next      key.Binding
	Prev      key.Binding
	FocusNext key.Binding
	FocusPrev key.Binding
	Toggle    key.Binding
	Quit      key.Binding
}

// DefaultKeyMap binds enter/esc for steps and tab for fields.
var DefaultKeyMap = KeyMap{
	Next: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "next / submit"),
	),
	Prev: key.NewBinding(
		key.WithKeys("esc", "ctrl+b"),
		key.WithHelp("esc", "back"),
	),
	FocusNext: key.NewBinding(
		key.WithKeys("tab", "down"),
		key.WithHelp("tab/↓", "next field"),
	),
	FocusPrev: key.NewBinding(
		key.WithKeys("shift+tab", "up"),
		key.WithHelp("S-tab/↑", "previous field"),
	),
	Toggle: key.NewBinding(
		key.WithKeys(" ", "x"),
		key.WithHelp("space", "toggle"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("C-c", "quit"),
	),
}

// ShortHelp implements help.KeyMap.
func (keys KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{keys.Next, keys.Prev, keys.FocusNext, keys.Toggle, keys.Quit}
}

// FullHelp implements help.KeyMap.
func (keys KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{keys.ShortHelp(), {keys.FocusPrev}}
}
