// Package smartsearch is a terminal search input with query-aware
// autocomplete: default suggestions, recent searches, tag keys and tag values.
package smartsearch

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"issuesearch/internal/domain"
)

// DefaultMaxSearchItems is used when Props.MaxSearchItems is not set
const DefaultMaxSearchItems = 5

// statusValues are offered for the built-in is: key without a backend lookup
var statusValues = []string{"resolved", "unresolved", "ignored", "assigned", "unassigned"}

// Props configures the search bar
type Props struct {
	Query       string
	Placeholder string
	Width       int

	// OnSearch runs when a query is submitted
	OnSearch func(query string)
	// OnGetTagValues resolves values for a tag key; called off the UI goroutine
	OnGetTagValues func(ctx context.Context, tag domain.Tag, query string) ([]string, error)
	SupportedTags  []domain.Tag

	DefaultSearchItems domain.SearchItemGroups
	MaxSearchItems     int

	HasPinnedSearch bool
	PinnedSearch    *domain.SavedSearch
	SavedSearchType domain.SearchType

	DisplayRecentSearches bool
	// SaveRecentSearch stores a submitted query; called off the UI goroutine
	SaveRecentSearch func(ctx context.Context, query string) error
	// OnSavedRecentSearch runs after a successful save, off the UI goroutine
	OnSavedRecentSearch func(ctx context.Context, query string)
	OnSidebarToggle     func()
}

// SubmittedMsg reports a submitted query to the parent model
type SubmittedMsg struct {
	Query string
}

// SavedRecentSearchMsg reports the outcome of saving a submitted query
type SavedRecentSearchMsg struct {
	Query string
	Err   error
}

type tagValuesMsg struct {
	seq    uint64
	tag    domain.Tag
	values []string
	err    error
}

// Model is the search bar state
type Model struct {
	props  Props
	ctx    context.Context
	input  textinput.Model
	keys   KeyMap
	styles Styles

	items     []domain.SearchItem
	highlight int // -1 when nothing is highlighted
	open      bool
	loading   bool
	err       error
	seq       uint64 // bumped whenever the suggestion source changes
	lastValue string
	lastPos   int
}

// New creates a focused search bar. ctx bounds every fetch the bar starts.
func New(ctx context.Context, props Props) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = props.Placeholder
	if ti.Placeholder == "" {
		ti.Placeholder = "Search for events, users, tags, and everything else."
	}
	if props.Width > 0 {
		ti.Width = props.Width
	}
	query := props.Query
	if query == "" && props.PinnedSearch != nil {
		query = props.PinnedSearch.Query
	}
	ti.SetValue(query)
	ti.CursorEnd()
	ti.Focus()

	m := Model{
		props:     props,
		ctx:       ctx,
		input:     ti,
		keys:      DefaultKeyMap(),
		styles:    DefaultStyles(),
		highlight: -1,
		lastValue: ti.Value(),
		lastPos:   ti.Position(),
	}
	return m
}

// Init starts the cursor blink
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Query returns the current input text
func (m Model) Query() string { return m.input.Value() }

// Items returns the suggestions currently offered
func (m Model) Items() []domain.SearchItem { return m.items }

// Highlight returns the highlighted suggestion index, or -1
func (m Model) Highlight() int { return m.highlight }

// IsOpen reports whether the dropdown is shown
func (m Model) IsOpen() bool { return m.open }

// Loading reports an outstanding tag value lookup
func (m Model) Loading() bool { return m.loading }

// Err returns the last lookup error shown in the dropdown
func (m Model) Err() error { return m.err }

// Props returns the current configuration
func (m Model) Props() Props { return m.props }

// KeyMap returns the bindings for help rendering
func (m Model) KeyMap() KeyMap { return m.keys }

// SetProps replaces the configuration, keeping the typed query, and refreshes suggestions.
func (m Model) SetProps(p Props) (Model, tea.Cmd) {
	m.props = p
	if !m.open {
		return m, nil
	}
	return m.refresh()
}

// SetDefaultSearchItems swaps the default buckets. Open default suggestions
// are rebuilt in place; tag lookups in flight are left alone.
func (m Model) SetDefaultSearchItems(groups domain.SearchItemGroups) Model {
	m.props.DefaultSearchItems = groups
	if m.open && CurrentTerm(m.input.Value(), m.input.Position()).Text == "" {
		m.items = m.defaultItems()
		m.clampHighlight()
	}
	return m
}

// SetQuery replaces the input text, moves the cursor to the end and opens suggestions
func (m Model) SetQuery(q string) (Model, tea.Cmd) {
	m.input.SetValue(q)
	m.input.CursorEnd()
	return m.refresh()
}

// OpenSuggestions opens the dropdown for the term under the cursor
func (m Model) OpenSuggestions() (Model, tea.Cmd) {
	return m.refresh()
}

// Close hides the dropdown and discards any lookup in flight
func (m Model) Close() Model {
	m.open = false
	m.loading = false
	m.err = nil
	m.items = nil
	m.highlight = -1
	m.seq++
	return m
}

// Update handles key presses and lookup results
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tagValuesMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		m.items = nil
		if msg.err == nil {
			m.items = m.valueItems(msg.tag, msg.values)
		}
		m.highlight = -1
		m.open = true
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Prev):
			if m.open && len(m.items) > 0 {
				m.highlight--
				if m.highlight < 0 {
					m.highlight = len(m.items) - 1
				}
			}
			return m, nil
		case key.Matches(msg, m.keys.Next):
			if !m.open {
				return m.refresh()
			}
			if len(m.items) > 0 {
				m.highlight = (m.highlight + 1) % len(m.items)
			}
			return m, nil
		case key.Matches(msg, m.keys.Complete):
			if m.open && len(m.items) > 0 {
				idx := m.highlight
				if idx < 0 {
					idx = 0
				}
				return m.complete(m.items[idx])
			}
			return m, nil
		case key.Matches(msg, m.keys.Submit):
			if m.open && m.highlight >= 0 && m.highlight < len(m.items) {
				return m.complete(m.items[m.highlight])
			}
			return m.submit()
		case key.Matches(msg, m.keys.Close):
			if m.open {
				return m.Close(), nil
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != m.lastValue || m.input.Position() != m.lastPos {
		var refresh tea.Cmd
		m, refresh = m.refresh()
		return m, tea.Batch(cmd, refresh)
	}
	return m, cmd
}

func (m Model) maxItems() int {
	if m.props.MaxSearchItems > 0 {
		return m.props.MaxSearchItems
	}
	return DefaultMaxSearchItems
}

func (m Model) defaultItems() []domain.SearchItem {
	limit := m.maxItems()
	items := append([]domain.SearchItem(nil), capItems(m.props.DefaultSearchItems.Static(), limit)...)
	if m.props.DisplayRecentSearches {
		items = append(items, capItems(m.props.DefaultSearchItems.Recent(), limit)...)
	}
	return items
}

func (m *Model) clampHighlight() {
	if m.highlight >= len(m.items) {
		m.highlight = -1
	}
}

// refresh recomputes suggestions for the term under the cursor
func (m Model) refresh() (Model, tea.Cmd) {
	m.lastValue = m.input.Value()
	m.lastPos = m.input.Position()
	m.seq++
	m.err = nil
	m.loading = false
	m.highlight = -1
	m.open = true

	term := CurrentTerm(m.lastValue, m.lastPos)
	switch {
	case term.Text == "" || term.Text == "!":
		m.items = m.defaultItems()
		return m, nil

	case term.HasKey:
		if term.Key == "is" {
			m.items = m.valueItems(domain.Tag{Key: "is"}, filterPrefix(statusValues, term.Value))
			return m, nil
		}
		if term.Key == "has" {
			keys := make([]string, 0, len(m.props.SupportedTags))
			for _, t := range m.props.SupportedTags {
				keys = append(keys, t.Key)
			}
			m.items = m.valueItems(domain.Tag{Key: "has"}, filterPrefix(keys, term.Value))
			return m, nil
		}
		if m.props.OnGetTagValues == nil {
			m.items = nil
			return m, nil
		}
		m.items = nil
		m.loading = true
		return m, m.fetchTagValues(m.seq, m.tagFor(term.Key), term.Value)

	default:
		m.items = m.keyItems(term.Text)
		return m, nil
	}
}

func (m Model) tagFor(k string) domain.Tag {
	for _, t := range m.props.SupportedTags {
		if t.Key == k {
			return t
		}
	}
	return domain.Tag{Key: k, Name: k}
}

func (m Model) valueItems(tag domain.Tag, values []string) []domain.SearchItem {
	items := make([]domain.SearchItem, 0, len(values))
	for _, v := range values {
		items = append(items, domain.SearchItem{
			Desc:  v,
			Value: tag.Key + ":" + FormatValue(v),
			Type:  domain.ItemTypeTagValue,
		})
	}
	return capItems(items, m.maxItems())
}

// keyItems offers tag keys and default items starting with prefix
func (m Model) keyItems(prefix string) []domain.SearchItem {
	lower := strings.ToLower(strings.TrimPrefix(prefix, "!"))
	var items []domain.SearchItem
	for _, t := range m.props.SupportedTags {
		if strings.HasPrefix(strings.ToLower(t.Key), lower) {
			items = append(items, domain.SearchItem{
				Title: t.Key,
				Desc:  t.Name,
				Value: t.Key + ":",
				Type:  domain.ItemTypeTagKey,
			})
		}
	}
	for _, it := range m.props.DefaultSearchItems.Static() {
		if it.Value != "" && strings.HasPrefix(strings.ToLower(it.Value), lower) {
			items = append(items, it)
		}
	}
	return capItems(items, m.maxItems())
}

func (m Model) fetchTagValues(seq uint64, tag domain.Tag, query string) tea.Cmd {
	ctx := m.ctx
	fn := m.props.OnGetTagValues
	return func() tea.Msg {
		values, err := fn(ctx, tag, query)
		return tagValuesMsg{seq: seq, tag: tag, values: values, err: err}
	}
}

// complete applies a chosen suggestion to the query
func (m Model) complete(item domain.SearchItem) (Model, tea.Cmd) {
	query := m.input.Value()
	switch item.Type {
	case domain.ItemTypeRecentSearch:
		m.input.SetValue(item.Value)
		m.input.CursorEnd()
		return m.Close(), nil
	case domain.ItemTypeTagValue:
		term := CurrentTerm(query, m.input.Position())
		repl := item.Value
		if term.Negated {
			repl = "!" + repl
		}
		newQuery, pos := term.Replace(query, repl+" ")
		m.input.SetValue(newQuery)
		m.input.SetCursor(pos)
		return m.refresh()
	default:
		if item.Value == "" {
			return m.Close(), nil
		}
		term := CurrentTerm(query, m.input.Position())
		repl := item.Value
		if term.Negated {
			repl = "!" + repl
		}
		newQuery, pos := term.Replace(query, repl)
		m.input.SetValue(newQuery)
		m.input.SetCursor(pos)
		return m.refresh()
	}
}

// submit runs the query and, when recent searches are shown, saves it
func (m Model) submit() (Model, tea.Cmd) {
	query := strings.TrimSpace(m.input.Value())
	m = m.Close()
	if m.props.OnSearch != nil {
		m.props.OnSearch(query)
	}

	cmds := []tea.Cmd{func() tea.Msg { return SubmittedMsg{Query: query} }}
	if query != "" && m.props.DisplayRecentSearches && m.props.SaveRecentSearch != nil {
		ctx := m.ctx
		save := m.props.SaveRecentSearch
		onSaved := m.props.OnSavedRecentSearch
		cmds = append(cmds, func() tea.Msg {
			if err := save(ctx, query); err != nil {
				return SavedRecentSearchMsg{Query: query, Err: err}
			}
			if onSaved != nil {
				onSaved(ctx, query)
			}
			return SavedRecentSearchMsg{Query: query}
		})
	}
	return m, tea.Batch(cmds...)
}

func capItems(items []domain.SearchItem, limit int) []domain.SearchItem {
	if len(items) > limit {
		return items[:limit]
	}
	return items
}

func filterPrefix(values []string, prefix string) []string {
	lower := strings.ToLower(prefix)
	out := []string{}
	for _, v := range values {
		if strings.HasPrefix(strings.ToLower(v), lower) {
			out = append(out, v)
		}
	}
	return out
}
