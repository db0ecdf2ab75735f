package handlers

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"issuesearch/internal/eventbus"
	"issuesearch/internal/ui/state"
)

// EventHandler applies domain events to the UI state
type EventHandler struct {
	state *state.AppState
}

// NewEventHandler creates a new event handler
func NewEventHandler(appState *state.AppState) *EventHandler {
	return &EventHandler{state: appState}
}

// HandleEvent processes domain events and returns any necessary commands
func (h *EventHandler) HandleEvent(event eventbus.DomainEvent) tea.Cmd {
	switch e := event.(type) {
	case eventbus.RecentSearchesFetchedEvent:
		h.state.RecentLoading = false
		h.state.RecentCount = len(e.Queries)

	case eventbus.RecentSearchSavedEvent:
		h.state.SetStatus(state.StatusSuccess, fmt.Sprintf("Saved %q to recent searches", e.Query))

	case eventbus.SidebarToggledEvent:
		h.state.SidebarOpen = e.Open

	case eventbus.ErrorEvent:
		h.state.RecentLoading = false
		h.state.SetStatus(state.StatusError, fmt.Sprintf("Error: %s", e.Message))

	case eventbus.ConfigSavedEvent:
		h.state.SetStatus(state.StatusInfo, fmt.Sprintf("Config saved to %s", e.Path))
	}

	return nil
}
