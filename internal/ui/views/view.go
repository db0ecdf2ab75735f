package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"issuesearch/internal/ui/state"
)

// ViewState contains all the state needed for rendering
type ViewState struct {
	Width         int
	Height        int
	Organization  string
	SearchBar     string // rendered search component
	StatusMessage string
	StatusKind    state.StatusKind
	RecentLoading bool
	RecentCount   int
	SidebarOpen   bool
	ActiveQuery   string
	History       []string
	HelpView      string
}

// Renderer handles all view rendering
type Renderer struct {
	styles *Styles
}

// NewRenderer creates a new renderer
func NewRenderer() *Renderer {
	return &Renderer{styles: NewStyles()}
}

// Styles returns the renderer styles
func (r *Renderer) Styles() *Styles { return r.styles }

// Render produces the complete view
func (r *Renderer) Render(s ViewState) string {
	content := &strings.Builder{}

	content.WriteString(r.titleLine(s))
	content.WriteString("\n\n")
	content.WriteString(s.SearchBar)
	content.WriteString("\n")

	if s.ActiveQuery != "" || len(s.History) > 0 {
		content.WriteString("\n")
		content.WriteString(r.renderHistory(s))
	}

	if status := r.renderStatus(s); status != "" {
		content.WriteString(r.styles.Status.Render(status))
		content.WriteString("\n")
	}

	if s.HelpView != "" {
		content.WriteString(r.styles.Help.Render(s.HelpView))
	}

	return r.styles.Main.Render(content.String())
}

func (r *Renderer) titleLine(s ViewState) string {
	logo := r.styles.Title.Render("issuesearch")
	if s.Organization != "" {
		logo += " " + r.styles.Org.Render(s.Organization)
	}

	indicators := []string{}
	if s.RecentLoading {
		spinner := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
		frame := int(time.Now().UnixMilli()/80) % len(spinner)
		indicators = append(indicators, fmt.Sprintf("%s Loading recent searches", spinner[frame]))
	} else if s.RecentCount > 0 {
		indicators = append(indicators, fmt.Sprintf("⏱ %d recent", s.RecentCount))
	}
	if s.SidebarOpen {
		indicators = append(indicators, "[sidebar]")
	}
	if len(indicators) == 0 {
		return logo
	}

	right := r.styles.Dim.Render(strings.Join(indicators, " | "))
	// Main adds two columns of padding per side
	gap := s.Width - 4 - lipgloss.Width(logo) - lipgloss.Width(right)
	if gap < 2 {
		gap = 2
	}
	return logo + strings.Repeat(" ", gap) + right
}

func (r *Renderer) renderHistory(s ViewState) string {
	var b strings.Builder
	if s.ActiveQuery != "" {
		b.WriteString(r.styles.Dim.Render("Showing issues for "))
		b.WriteString(r.styles.Query.Render(s.ActiveQuery))
		b.WriteString("\n")
	}
	for i, q := range s.History {
		if q == s.ActiveQuery && i == 0 {
			continue
		}
		b.WriteString(r.styles.History.Render("  " + q))
		b.WriteString("\n")
	}
	return b.String()
}

func (r *Renderer) renderStatus(s ViewState) string {
	if s.StatusMessage == "" {
		return ""
	}
	switch s.StatusKind {
	case state.StatusError:
		return r.styles.StatusError.Render(s.StatusMessage)
	case state.StatusWarning:
		return r.styles.StatusWarning.Render(s.StatusMessage)
	case state.StatusSuccess:
		return r.styles.StatusSuccess.Render(s.StatusMessage)
	default:
		return r.styles.StatusLoading.Render(s.StatusMessage)
	}
}
