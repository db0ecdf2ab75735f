package ui

import (
	"github.com/charmbracelet/bubbles/key"

	"issuesearch/internal/smartsearch"
	"issuesearch/internal/stream"
)

// KeyMap holds the global bindings plus those of the search bar
type KeyMap struct {
	Quit   key.Binding
	Close  key.Binding
	Copy   key.Binding
	Manual key.Binding
	Help   key.Binding
	Toggle key.Binding

	Search smartsearch.KeyMap

	showToggle bool
}

// DefaultKeyMap returns the standard bindings. showToggle adds the sidebar key to help.
func DefaultKeyMap(search smartsearch.KeyMap, showToggle bool) KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close/quit"),
		),
		Copy: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("ctrl+y", "copy query"),
		),
		Manual: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "manual"),
		),
		Help: key.NewBinding(
			key.WithKeys("f2"),
			key.WithHelp("f2", "more keys"),
		),
		Toggle:     stream.ToggleKey,
		Search:     search,
		showToggle: showToggle,
	}
}

func (k KeyMap) ShortHelp() []key.Binding {
	keys := []key.Binding{k.Search.Submit, k.Search.Complete, k.Search.Next}
	if k.showToggle {
		keys = append(keys, k.Toggle)
	}
	return append(keys, k.Copy, k.Manual, k.Help, k.Close)
}

func (k KeyMap) FullHelp() [][]key.Binding {
	other := []key.Binding{k.Copy, k.Manual, k.Help, k.Quit}
	if k.showToggle {
		other = append([]key.Binding{k.Toggle}, other...)
	}
	return [][]key.Binding{
		{k.Search.Prev, k.Search.Next, k.Search.Complete},
		{k.Search.Submit, k.Search.Close, k.Close},
		other,
	}
}
