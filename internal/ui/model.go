package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"issuesearch/internal/config"
	"issuesearch/internal/eventbus"
	"issuesearch/internal/obs"
	"issuesearch/internal/smartsearch"
	"issuesearch/internal/stream"
	"issuesearch/internal/ui/handlers"
	"issuesearch/internal/ui/state"
	"issuesearch/internal/ui/viewmodels"
	"issuesearch/internal/ui/views"
)

// Model represents the UI state
type Model struct {
	bus    eventbus.EventBus
	config *config.Config
	state  *state.AppState
	logger zerolog.Logger

	search stream.Component
	keys   KeyMap

	width       int
	height      int
	inPagerMode bool // tracks if we're currently in pager mode

	renderer     *views.Renderer
	viewModel    *viewmodels.ViewModel
	eventHandler *handlers.EventHandler
	helpRenderer *HelpRenderer
	helpOps      *HelpOps

	// copyToClipboard is swapped in tests
	copyToClipboard func(string) error

	// Program reference for terminal management
	program *tea.Program
}

// NewModel creates the root model around a mounted search bar
func NewModel(ctx context.Context, bus eventbus.EventBus, cfg *config.Config, bar *stream.SearchBar) *Model {
	appState := state.NewAppState(cfg.Organization)
	appState.RecentLoading = bar.HasRecentSearches()

	search := stream.NewComponent(ctx, bar)
	m := &Model{
		bus:             bus,
		config:          cfg,
		state:           appState,
		logger:          obs.Logger("ui"),
		search:          search,
		keys:            DefaultKeyMap(search.KeyMap(), bar.ShowSidebarToggle()),
		renderer:        views.NewRenderer(),
		viewModel:       viewmodels.NewViewModel(appState),
		eventHandler:    handlers.NewEventHandler(appState),
		helpRenderer:    NewHelpRenderer(),
		helpOps:         NewHelpOps(nil),
		copyToClipboard: clipboard.WriteAll,
	}
	return m
}

// SetProgram sets the program reference for terminal management
func (m *Model) SetProgram(p *tea.Program) {
	m.program = p
	m.helpOps = NewHelpOps(p)
}

// State exposes the UI state
func (m *Model) State() *state.AppState { return m.state }

// Init returns an initial command
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.search.Init(), tick())
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewModel.SetDimensions(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Close):
			if m.search.IsOpen() {
				m.search = m.search.CloseSuggestions()
				return m, nil
			}
			return m, tea.Quit
		case key.Matches(msg, m.keys.Copy):
			return m, m.copyQuery(m.search.Query())
		case key.Matches(msg, m.keys.Manual):
			if m.program == nil {
				m.state.ShowHelp = !m.state.ShowHelp
				return m, nil
			}
			return m, m.fetchHelpPager(m.helpRenderer.RenderHelpContent(m.keys))
		case key.Matches(msg, m.keys.Help):
			m.state.ShowHelp = !m.state.ShowHelp
			return m, nil
		}
		m.state.ClearStatus()

	case EventMsg:
		return m, m.eventHandler.HandleEvent(msg.Event)

	case tickMsg:
		if m.inPagerMode || !m.state.RecentLoading {
			return m, nil
		}
		return m, tick()

	case stream.FetchedMsg:
		m.handleFetch(msg.Result)

	case smartsearch.SubmittedMsg:
		m.state.RecordSubmit(msg.Query)
		if msg.Query == "" {
			m.state.SetStatus(state.StatusInfo, "Showing all issues")
		} else {
			m.state.SetStatus(state.StatusInfo, fmt.Sprintf("Searching issues: %s", msg.Query))
		}
		m.logger.Info().Str("query", msg.Query).Msg("search submitted")
		if m.bus != nil {
			m.bus.Publish(eventbus.SearchSubmittedEvent{Query: msg.Query})
		}

	case smartsearch.SavedRecentSearchMsg:
		if msg.Err != nil {
			m.logger.Warn().Err(msg.Err).Str("query", msg.Query).Msg("save recent search")
			m.state.SetStatus(state.StatusWarning, fmt.Sprintf("Could not save recent search: %v", msg.Err))
		}

	case stream.SidebarToggledMsg:
		m.state.SidebarOpen = msg.Open

	case clipboardMsg:
		if msg.err != nil {
			m.state.SetStatus(state.StatusError, fmt.Sprintf("Copy failed: %v", msg.err))
		} else {
			m.state.SetStatus(state.StatusSuccess, fmt.Sprintf("Copied %q", msg.query))
		}
		return m, nil

	case pauseRenderingMsg:
		m.inPagerMode = true
		return m, nil

	case resumeRenderingMsg:
		m.inPagerMode = false
		return m, nil

	case helpPagerMsg:
		m.inPagerMode = false
		if msg.err != nil {
			m.logger.Error().Err(msg.err).Msg("help pager")
			m.state.SetStatus(state.StatusError, fmt.Sprintf("Help failed: %v", msg.err))
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m *Model) handleFetch(res stream.FetchResult) {
	switch res.Status {
	case stream.FetchApplied:
		m.state.RecentLoading = false
		m.state.RecentCount = len(res.Queries)
	case stream.FetchDisabled:
		m.state.RecentLoading = false
	case stream.FetchFailed:
		m.state.RecentLoading = false
		m.state.SetStatus(state.StatusError, "Error: Unable to fetch recent searches")
	}
}

// View renders the UI
func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	if m.inPagerMode {
		return ""
	}
	return m.renderer.Render(m.viewModel.BuildViewState(m.search.View(), m.keys))
}

func (m *Model) copyQuery(query string) tea.Cmd {
	write := m.copyToClipboard
	return func() tea.Msg {
		return clipboardMsg{query: query, err: write(query)}
	}
}

// fetchHelpPager returns a command that shows help using ov pager
func (m *Model) fetchHelpPager(helpContent string) tea.Cmd {
	program, ops := m.program, m.helpOps
	return func() tea.Msg {
		// Send pause message to stop rendering
		program.Send(pauseRenderingMsg{})

		err := ops.ShowHelpInPager(helpContent)

		// Send resume message to restart rendering
		program.Send(resumeRenderingMsg{})

		return helpPagerMsg{err: err}
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Millisecond*80, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
