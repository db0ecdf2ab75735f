package viewmodels

import (
	"github.com/charmbracelet/bubbles/help"

	"issuesearch/internal/ui/state"
	"issuesearch/internal/ui/views"
)

// ViewModel transforms application state into view-ready data
type ViewModel struct {
	state  *state.AppState
	width  int
	height int
	help   help.Model
}

// NewViewModel creates a new view model
func NewViewModel(appState *state.AppState) *ViewModel {
	return &ViewModel{state: appState, help: help.New()}
}

// SetDimensions sets the current terminal dimensions
func (vm *ViewModel) SetDimensions(width, height int) {
	vm.width = width
	vm.height = height
	vm.help.Width = width
}

// BuildViewState creates a ViewState for rendering. keys feeds the help footer.
func (vm *ViewModel) BuildViewState(searchBar string, keys help.KeyMap) views.ViewState {
	vm.help.ShowAll = vm.state.ShowHelp
	return views.ViewState{
		Width:         vm.width,
		Height:        vm.height,
		Organization:  vm.state.Organization,
		SearchBar:     searchBar,
		StatusMessage: vm.state.StatusMessage,
		StatusKind:    vm.state.StatusKind,
		RecentLoading: vm.state.RecentLoading,
		RecentCount:   vm.state.RecentCount,
		SidebarOpen:   vm.state.SidebarOpen,
		ActiveQuery:   vm.state.ActiveQuery,
		History:       append([]string(nil), vm.state.History...),
		HelpView:      vm.help.View(keys),
	}
}
