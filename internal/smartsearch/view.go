package smartsearch

import (
	"strings"

	"issuesearch/internal/domain"
)

// View renders the input line and, when open, the suggestion dropdown
func (m Model) View() string {
	var b strings.Builder

	if m.props.HasPinnedSearch && m.props.PinnedSearch != nil {
		b.WriteString(m.styles.Pinned.Render("📌 " + m.props.PinnedSearch.Name))
		b.WriteString(" ")
	}
	b.WriteString(m.styles.Prompt.Render("Search: "))
	b.WriteString(m.input.View())

	if !m.open {
		return b.String()
	}

	dropdown := m.dropdownLines()
	if len(dropdown) == 0 {
		return b.String()
	}
	b.WriteString("\n")
	b.WriteString(m.styles.Dropdown.Render(strings.Join(dropdown, "\n")))
	return b.String()
}

func (m Model) dropdownLines() []string {
	if m.loading {
		return []string{m.styles.Loading.Render("Loading…")}
	}
	if m.err != nil {
		return []string{m.styles.Error.Render(m.err.Error())}
	}

	var lines []string
	var section domain.ItemType
	for i, it := range m.items {
		if it.Type != section {
			if title := sectionTitle(it.Type); title != "" {
				lines = append(lines, m.styles.Section.Render(title))
			}
			section = it.Type
		}

		text := it.DisplayText()
		if it.Type == domain.ItemTypeRecentSearch {
			text = m.styles.RecentTag + text
		}
		style := m.styles.Item
		if i == m.highlight {
			style = m.styles.Selected
		}
		line := style.Render(text)
		if it.Title != "" && it.Desc != "" && it.Desc != it.Title {
			line += "  " + m.styles.Desc.Render(it.Desc)
		}
		lines = append(lines, line)
	}
	return lines
}

func sectionTitle(t domain.ItemType) string {
	switch t {
	case domain.ItemTypeRecentSearch:
		return "Recent Searches"
	case domain.ItemTypeTagKey:
		return "Tags"
	default:
		return ""
	}
}
