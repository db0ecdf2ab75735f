package smartsearch

import "github.com/charmbracelet/lipgloss"

// Styles used by the search bar and its dropdown
type Styles struct {
	Prompt    lipgloss.Style
	Pinned    lipgloss.Style
	Item      lipgloss.Style
	Selected  lipgloss.Style
	Desc      lipgloss.Style
	Section   lipgloss.Style
	Loading   lipgloss.Style
	Error     lipgloss.Style
	Dropdown  lipgloss.Style
	RecentTag string
}

// DefaultStyles returns the standard look
func DefaultStyles() Styles {
	return Styles{
		Prompt:   lipgloss.NewStyle().Foreground(lipgloss.Color("99")).Bold(true),
		Pinned:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Item:     lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Selected: lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Background(lipgloss.Color("238")).Bold(true),
		Desc:     lipgloss.NewStyle().Faint(true),
		Section:  lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
		Loading:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		Dropdown: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("241")).
			Padding(0, 1),
		RecentTag: "⏱ ",
	}
}
