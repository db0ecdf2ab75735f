package stream

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"issuesearch/internal/smartsearch"
)

// FetchedMsg carries a completed FetchData call back to the update loop
type FetchedMsg struct {
	Result FetchResult
}

// SidebarToggledMsg is sent after the sidebar toggle ran
type SidebarToggledMsg struct {
	Open bool
}

var (
	toggleStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("241")).
			Padding(0, 1)
	toggleOnStyle = toggleStyle.BorderForeground(lipgloss.Color("214")).Foreground(lipgloss.Color("214"))
)

// ToggleKey opens and closes the stream sidebar
var ToggleKey = key.NewBinding(
	key.WithKeys("ctrl+b"),
	key.WithHelp("ctrl+b", "toggle sidebar"),
)

// Component is the bubbletea form of a SearchBar: the generic bar plus the
// optional sidebar toggle.
type Component struct {
	ctx   context.Context
	bar   *SearchBar
	input smartsearch.Model
}

// NewComponent mounts bar. Init starts the first fetch.
func NewComponent(ctx context.Context, bar *SearchBar) Component {
	if ctx == nil {
		ctx = context.Background()
	}
	return Component{
		ctx:   ctx,
		bar:   bar,
		input: smartsearch.New(ctx, bar.Props()),
	}
}

func (c Component) Init() tea.Cmd {
	return tea.Batch(c.input.Init(), c.Fetch())
}

// Fetch returns a command running FetchData
func (c Component) Fetch() tea.Cmd {
	bar, ctx := c.bar, c.ctx
	return func() tea.Msg {
		return FetchedMsg{Result: bar.FetchData(ctx)}
	}
}

func (c Component) Update(msg tea.Msg) (Component, tea.Cmd) {
	switch msg := msg.(type) {
	case FetchedMsg:
		if msg.Result.Changed() {
			c.input = c.input.SetDefaultSearchItems(c.bar.DefaultSearchItems())
		}
		return c, nil

	case smartsearch.SavedRecentSearchMsg:
		// the save command already refetched; pick up the new bucket
		if msg.Err == nil {
			c.input = c.input.SetDefaultSearchItems(c.bar.DefaultSearchItems())
		}
		return c, nil

	case tea.KeyMsg:
		if key.Matches(msg, ToggleKey) && c.bar.ToggleSidebar() {
			open := c.bar.SidebarOpen()
			return c, func() tea.Msg { return SidebarToggledMsg{Open: open} }
		}
	}

	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return c, cmd
}

func (c Component) View() string {
	bar := c.input.View()
	if !c.bar.ShowSidebarToggle() {
		return bar
	}
	style := toggleStyle
	if c.bar.SidebarOpen() {
		style = toggleOnStyle
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, bar, " ", style.Render("⧩ filter"))
}

// Input returns the generic bar
func (c Component) Input() smartsearch.Model { return c.input }

// SearchBar returns the bound suggestion state
func (c Component) SearchBar() *SearchBar { return c.bar }

// Query returns the typed query
func (c Component) Query() string { return c.input.Query() }

// IsOpen reports whether suggestions are shown
func (c Component) IsOpen() bool { return c.input.IsOpen() }

// CloseSuggestions hides the dropdown
func (c Component) CloseSuggestions() Component {
	c.input = c.input.Close()
	return c
}

// KeyMap exposes the generic bar bindings for help rendering
func (c Component) KeyMap() smartsearch.KeyMap { return c.input.KeyMap() }
