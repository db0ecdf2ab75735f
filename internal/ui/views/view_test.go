package views

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"issuesearch/internal/ui/state"
)

func TestRenderIncludesSections(t *testing.T) {
	r := NewRenderer()
	out := r.Render(ViewState{
		Width:         80,
		Organization:  "acme",
		SearchBar:     "Search: is:unresolved",
		StatusMessage: "Error: Unable to fetch project tags",
		StatusKind:    state.StatusError,
		ActiveQuery:   "is:unresolved",
		History:       []string{"is:unresolved", "error:high"},
		HelpView:      "enter search",
	})

	assert.Contains(t, out, "issuesearch")
	assert.Contains(t, out, "acme")
	assert.Contains(t, out, "Search: is:unresolved")
	assert.Contains(t, out, "Showing issues for")
	assert.Contains(t, out, "error:high")
	assert.Contains(t, out, "Unable to fetch project tags")
	assert.Contains(t, out, "enter search")
}

func TestTitleIndicators(t *testing.T) {
	r := NewRenderer()

	assert.Contains(t, r.Render(ViewState{Width: 80, RecentLoading: true}), "Loading recent searches")
	assert.Contains(t, r.Render(ViewState{Width: 80, RecentCount: 3}), "3 recent")
	assert.Contains(t, r.Render(ViewState{Width: 80, SidebarOpen: true}), "[sidebar]")
	assert.NotContains(t, r.Render(ViewState{Width: 80}), "recent")
}
