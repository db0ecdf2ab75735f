package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/noborus/ov/oviewer"

	"issuesearch/internal/stream"
)

// HelpRenderer handles help content rendering
type HelpRenderer struct {
	title   lipgloss.Style
	section lipgloss.Style
	key     lipgloss.Style
	desc    lipgloss.Style
	example lipgloss.Style
}

// NewHelpRenderer creates a new help renderer
func NewHelpRenderer() *HelpRenderer {
	return &HelpRenderer{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginBottom(1),
		section: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			MarginTop(1),
		key:     lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		desc:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		example: lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("241")),
	}
}

func (r *HelpRenderer) writeBindings(b *strings.Builder, bindings ...key.Binding) {
	for _, kb := range bindings {
		h := kb.Help()
		b.WriteString(fmt.Sprintf("  %s  %s\n", r.key.Render(fmt.Sprintf("%-8s", h.Key)), r.desc.Render(h.Desc)))
	}
}

// RenderHelpContent generates the manual shown in the pager
func (r *HelpRenderer) RenderHelpContent(keys KeyMap) string {
	var help strings.Builder

	help.WriteString(r.title.Render("issuesearch Help"))
	help.WriteString("\n")

	help.WriteString(r.section.Render("Search"))
	help.WriteString("\n")
	r.writeBindings(&help, keys.Search.Submit, keys.Search.Close)
	help.WriteString("\n")

	help.WriteString(r.section.Render("Suggestions"))
	help.WriteString("\n")
	r.writeBindings(&help, keys.Search.Prev, keys.Search.Next, keys.Search.Complete)
	help.WriteString(r.example.Render("  Recent searches appear under the defaults when enabled for the organization."))
	help.WriteString("\n")

	help.WriteString(r.section.Render("Query Syntax"))
	help.WriteString("\n")
	for _, item := range stream.SearchItems() {
		help.WriteString(fmt.Sprintf("  %s  %s\n", r.key.Render(fmt.Sprintf("%-14s", item.Title)), r.desc.Render(item.Desc)))
	}
	help.WriteString(r.example.Render(`  Prefix a term with ! to negate it, quote values with spaces: browser:"Chrome 34"`))
	help.WriteString("\n")

	help.WriteString(r.section.Render("Other"))
	help.WriteString("\n")
	other := []key.Binding{keys.Copy, keys.Manual, keys.Help, keys.Close, keys.Quit}
	if keys.showToggle {
		other = append([]key.Binding{keys.Toggle}, other...)
	}
	r.writeBindings(&help, other...)

	return strings.TrimRight(help.String(), "\n")
}

// HelpOps handles help operations
type HelpOps struct {
	program *tea.Program // reference to Bubble Tea program for terminal management
}

// NewHelpOps creates a new help operations instance
func NewHelpOps(program *tea.Program) *HelpOps {
	return &HelpOps{
		program: program,
	}
}

// ShowHelpInPager shows help content using ov pager
func (h *HelpOps) ShowHelpInPager(helpContent string) error {
	if h.program == nil {
		return fmt.Errorf("program not set")
	}

	// Release terminal control to run ov
	if err := h.program.ReleaseTerminal(); err != nil {
		return err
	}

	defer func() {
		// give ov time to exit before restoring the terminal
		time.Sleep(100 * time.Millisecond)
		_ = h.program.RestoreTerminal()
	}()

	root, err := oviewer.NewRoot(strings.NewReader(helpContent))
	if err != nil {
		return err
	}

	// Configure ov to not write on exit (to avoid messing with our screen)
	config := oviewer.NewConfig()
	config.IsWriteOnExit = false
	config.IsWriteOriginal = false
	root.SetConfig(config)

	return root.Run()
}
