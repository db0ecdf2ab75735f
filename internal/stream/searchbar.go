// Package stream binds the generic search bar to the issue stream: static
// suggestions, recent-search history, tag value lookups and pinned searches.
package stream

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"issuesearch/internal/domain"
	"issuesearch/internal/eventbus"
	"issuesearch/internal/features"
	"issuesearch/internal/obs"
	"issuesearch/internal/recent"
	"issuesearch/internal/smartsearch"
	"issuesearch/internal/tags"
)

const (
	// MaxSearchItems is how many suggestions per bucket the bar shows
	MaxSearchItems = 5
	// SavedSearchType scopes recent and pinned searches to issues
	SavedSearchType = domain.SearchTypeIssue
)

var (
	// ErrUnableToFetchTags replaces any tag value lookup failure
	ErrUnableToFetchTags = errors.New("Unable to fetch project tags")

	// ErrMissingTagLoader is returned by New without a TagValueLoader
	ErrMissingTagLoader = errors.New("stream: tag value loader is required")
	// ErrMissingStore is returned by New when recent searches lack a store
	ErrMissingStore     = errors.New("stream: recent search store is required when recent searches are enabled")
)

var searchItems = []domain.SearchItem{
	{
		Title: "Tag",
		Desc:  `browser:"Chrome 34", has:browser`,
		Value: "browser:",
		Type:  domain.ItemTypeDefault,
	},
	{
		Title: "Status",
		Desc:  "is:resolved, unresolved, ignored, assigned, unassigned",
		Value: "is:",
		Type:  domain.ItemTypeDefault,
	},
	{
		Title: "Time or Count",
		Desc:  "firstSeen, lastSeen, event.timestamp, timesSeen",
		Value: "",
		Type:  domain.ItemTypeDefault,
	},
	{
		Title: "Assigned",
		Desc:  "assigned:[me|user@example.com]",
		Value: "assigned:",
		Type:  domain.ItemTypeDefault,
	},
	{
		Title: "Bookmarked By",
		Desc:  "bookmarks:[me|user@example.com]",
		Value: "bookmarks:",
		Type:  domain.ItemTypeDefault,
	},
}

// SearchItems returns a copy of the five static suggestions
func SearchItems() []domain.SearchItem {
	return append([]domain.SearchItem(nil), searchItems...)
}

func recentItems(queries []string) []domain.SearchItem {
	items := make([]domain.SearchItem, 0, len(queries))
	for _, q := range queries {
		items = append(items, domain.SearchItem{
			Desc:      q,
			Value:     q,
			ClassName: "icon-clock",
			Type:      domain.ItemTypeRecentSearch,
		})
	}
	return items
}

// Options wires a SearchBar to its collaborators
type Options struct {
	API            recent.Store
	Organization   string
	Features       features.Set
	SavedSearch    *domain.SavedSearch
	TagValueLoader tags.Loader
	// OnSidebarToggle is optional; without it no toggle is offered
	OnSidebarToggle func()
	// RecentLimit <= 0 uses the store default
	RecentLimit int
	Bus         eventbus.EventBus
	// Bar holds pass-through options for the generic search bar
	Bar smartsearch.Props
}

// SearchBar owns the suggestion state for one mounted issue search bar.
// It is safe for concurrent use.
type SearchBar struct {
	store         recent.Store
	org           string
	caps          features.Set
	savedSearch   *domain.SavedSearch
	loadTagValues tags.Loader
	onToggle      func()
	limit         int
	bus           eventbus.EventBus
	bar           smartsearch.Props
	logger        zerolog.Logger

	mu          sync.Mutex
	items       domain.SearchItemGroups
	recent      []string
	started     uint64 // generation of the newest fetch begun
	applied     uint64 // generation whose result is in items
	cancel      context.CancelFunc
	cancelGen   uint64
	closedGen   uint64 // fetches up to this generation were cancelled by Close
	sidebarOpen bool
}

// New validates opts and returns a SearchBar with the static bucket filled
// and the recent bucket empty.
func New(opts Options) (*SearchBar, error) {
	if opts.TagValueLoader == nil {
		return nil, ErrMissingTagLoader
	}
	if opts.Features.RecentSearches && opts.API == nil {
		return nil, ErrMissingStore
	}
	return &SearchBar{
		store:         opts.API,
		org:           opts.Organization,
		caps:          opts.Features,
		savedSearch:   opts.SavedSearch,
		loadTagValues: opts.TagValueLoader,
		onToggle:      opts.OnSidebarToggle,
		limit:         opts.RecentLimit,
		bus:           opts.Bus,
		bar:           opts.Bar,
		logger:        obs.Logger("stream"),
		items:         domain.SearchItemGroups{SearchItems(), {}},
		recent:        []string{},
	}, nil
}

// HasRecentSearches reports the recent-searches capability
func (s *SearchBar) HasRecentSearches() bool { return s.caps.RecentSearches }

// HasOrgSavedSearches reports the org-saved-searches capability
func (s *SearchBar) HasOrgSavedSearches() bool { return s.caps.OrgSavedSearches }

// FetchData rebuilds the default suggestion buckets. With recent searches
// disabled the recent bucket is emptied and the store is not called.
// Starting a fetch cancels any fetch still in flight.
func (s *SearchBar) FetchData(ctx context.Context) FetchResult {
	s.mu.Lock()
	s.started++
	gen := s.started
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}

	if !s.caps.RecentSearches {
		s.items = domain.SearchItemGroups{SearchItems(), {}}
		s.applied = gen
		res := FetchResult{Status: FetchDisabled, Generation: gen, Items: s.itemsLocked()}
		s.mu.Unlock()
		return res
	}

	fctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.cancelGen = gen
	s.mu.Unlock()

	searches, err := s.store.Recent(fctx, s.org, SavedSearchType, "", s.limit)

	s.mu.Lock()
	if s.cancelGen == gen {
		s.cancel = nil
	}
	cancel()

	if err != nil {
		if gen != s.started || gen <= s.closedGen {
			s.mu.Unlock()
			return FetchResult{Status: FetchStale, Generation: gen, Err: err}
		}
		res := FetchResult{Status: FetchFailed, Generation: gen, Err: fmt.Errorf("fetch recent searches: %w", err)}
		s.mu.Unlock()

		s.logger.Error().Err(err).Str("organization", s.org).Uint64("generation", gen).Msg("recent search fetch failed")
		s.publish(eventbus.ErrorEvent{Message: "Unable to fetch recent searches", Err: err})
		return res
	}

	if gen < s.applied {
		s.mu.Unlock()
		s.logger.Debug().Uint64("generation", gen).Uint64("applied", s.applied).Msg("dropping stale recent searches")
		return FetchResult{Status: FetchStale, Generation: gen}
	}

	queries := recent.Queries(searches)
	s.items = domain.SearchItemGroups{SearchItems(), recentItems(queries)}
	s.recent = queries
	s.applied = gen
	res := FetchResult{
		Status:     FetchApplied,
		Generation: gen,
		Queries:    append([]string(nil), queries...),
		Items:      s.itemsLocked(),
	}
	s.mu.Unlock()

	s.publish(eventbus.RecentSearchesFetchedEvent{Organization: s.org, Queries: res.Queries, Generation: gen})
	return res
}

// HandleSavedRecentSearch refreshes the recent bucket after a save. It is
// a no-op when recent searches are disabled.
func (s *SearchBar) HandleSavedRecentSearch(ctx context.Context) FetchResult {
	if !s.caps.RecentSearches {
		return FetchResult{Status: FetchDisabled}
	}
	return s.FetchData(ctx)
}

// TagValues returns the values matching query for tag. Any loader failure
// is logged and reported as ErrUnableToFetchTags.
func (s *SearchBar) TagValues(ctx context.Context, tag domain.Tag, query string) ([]string, error) {
	values, err := s.loadTagValues(ctx, tag.Key, query)
	if err != nil {
		s.logger.Warn().Err(err).Str("tag", tag.Key).Str("query", query).Msg("tag value lookup failed")
		return nil, ErrUnableToFetchTags
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, v.Value)
	}
	return out, nil
}

// SaveRecentSearch stores a submitted issue query for the organization
func (s *SearchBar) SaveRecentSearch(ctx context.Context, query string) error {
	if s.store == nil {
		return ErrMissingStore
	}
	if err := s.store.Save(ctx, s.org, SavedSearchType, query); err != nil {
		return fmt.Errorf("save recent search: %w", err)
	}
	s.publish(eventbus.RecentSearchSavedEvent{Organization: s.org, SearchType: SavedSearchType, Query: query})
	return nil
}

// DefaultSearchItems returns a copy of the current buckets
func (s *SearchBar) DefaultSearchItems() domain.SearchItemGroups {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.itemsLocked()
}

func (s *SearchBar) itemsLocked() domain.SearchItemGroups {
	return domain.SearchItemGroups{
		append([]domain.SearchItem(nil), s.items[0]...),
		append([]domain.SearchItem{}, s.items[1]...),
	}
}

// RecentSearches returns the raw queries behind the recent bucket
func (s *SearchBar) RecentSearches() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.recent...)
}

// PinnedSearch returns the saved search only when it is pinned
func (s *SearchBar) PinnedSearch() *domain.SavedSearch {
	if s.savedSearch != nil && s.savedSearch.IsPinned {
		return s.savedSearch
	}
	return nil
}

// ShowSidebarToggle reports whether the sidebar toggle affordance is rendered
func (s *SearchBar) ShowSidebarToggle() bool {
	return !s.caps.OrgSavedSearches && s.onToggle != nil
}

// ToggleSidebar runs the toggle callback and reports the new sidebar state.
// It does nothing when the affordance is hidden.
func (s *SearchBar) ToggleSidebar() bool {
	if !s.ShowSidebarToggle() {
		return false
	}
	s.mu.Lock()
	s.sidebarOpen = !s.sidebarOpen
	open := s.sidebarOpen
	s.mu.Unlock()

	s.onToggle()
	s.publish(eventbus.SidebarToggledEvent{Open: open})
	return true
}

// SidebarOpen reports the toggled sidebar state
func (s *SearchBar) SidebarOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sidebarOpen
}

// Props builds the generic bar configuration. Pass-through options are the
// base and the issue stream bindings always win, so a caller cannot widen
// MaxSearchItems or force DisplayRecentSearches past the capability set.
func (s *SearchBar) Props() smartsearch.Props {
	p := s.bar
	p.OnGetTagValues = s.TagValues
	p.DefaultSearchItems = s.DefaultSearchItems()
	p.MaxSearchItems = MaxSearchItems
	p.HasPinnedSearch = s.caps.OrgSavedSearches
	p.PinnedSearch = s.PinnedSearch()
	p.SavedSearchType = SavedSearchType
	p.DisplayRecentSearches = s.caps.RecentSearches
	p.OnSavedRecentSearch = func(ctx context.Context, query string) {
		res := s.HandleSavedRecentSearch(ctx)
		if res.Status == FetchStale || res.Status == FetchFailed {
			s.logger.Debug().Str("query", query).Str("status", res.Status.String()).Msg("refresh after save not applied")
		}
	}
	p.OnSidebarToggle = s.onToggle
	if p.SaveRecentSearch == nil && s.store != nil {
		p.SaveRecentSearch = s.SaveRecentSearch
	}
	if p.SupportedTags == nil {
		p.SupportedTags = defaultTags()
	}
	return p
}

// Close cancels any fetch in flight. A fetch it cancels reports FetchStale.
func (s *SearchBar) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closedGen = s.started
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *SearchBar) publish(e eventbus.DomainEvent) {
	if s.bus != nil {
		s.bus.Publish(e)
	}
}

// defaultTags are offered as keys when the caller supplies none
func defaultTags() []domain.Tag {
	return []domain.Tag{
		{Key: "assigned", Name: "Assigned"},
		{Key: "bookmarks", Name: "Bookmarked By"},
		{Key: "has", Name: "Has Tag"},
		{Key: "is", Name: "Status"},
	}
}
