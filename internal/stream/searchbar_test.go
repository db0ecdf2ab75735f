package stream

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"issuesearch/internal/domain"
	"issuesearch/internal/eventbus"
	"issuesearch/internal/features"
	"issuesearch/internal/recent"
	"issuesearch/internal/smartsearch"
)

type fakeStore struct {
	mu      sync.Mutex
	calls   int
	limits  []int
	queries []string
	err     error
	saved   []string

	// per-call hook, may block; nil means return immediately
	hook func(ctx context.Context, call int) ([]string, error)
}

func (f *fakeStore) Recent(ctx context.Context, org string, searchType domain.SearchType, query string, limit int) ([]domain.RecentSearch, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.limits = append(f.limits, limit)
	queries, err, hook := f.queries, f.err, f.hook
	f.mu.Unlock()

	if hook != nil {
		queries, err = hook(ctx, call)
	}
	if err != nil {
		return nil, err
	}
	out := make([]domain.RecentSearch, 0, len(queries))
	for _, q := range queries {
		out = append(out, domain.RecentSearch{Organization: org, Type: searchType, Query: q})
	}
	return out, nil
}

func (f *fakeStore) Save(ctx context.Context, org string, searchType domain.SearchType, query string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, query)
	f.queries = append([]string{query}, f.queries...)
	return nil
}

func (f *fakeStore) Clear(ctx context.Context, org string, searchType domain.SearchType) error {
	return nil
}

func (f *fakeStore) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

var _ recent.Store = (*fakeStore)(nil)

func noTags(ctx context.Context, key, query string) ([]domain.TagValue, error) {
	return nil, nil
}

func newBar(t *testing.T, store *fakeStore, caps features.Set) *SearchBar {
	t.Helper()
	bar, err := New(Options{
		API:            store,
		Organization:   "acme",
		Features:       caps,
		TagValueLoader: noTags,
	})
	require.NoError(t, err)
	return bar
}

func TestNewValidatesOptions(t *testing.T) {
	_, err := New(Options{API: &fakeStore{}})
	assert.ErrorIs(t, err, ErrMissingTagLoader)

	_, err = New(Options{TagValueLoader: noTags, Features: features.Set{RecentSearches: true}})
	assert.ErrorIs(t, err, ErrMissingStore)

	bar, err := New(Options{TagValueLoader: noTags})
	require.NoError(t, err)
	assert.Equal(t, SearchItems(), bar.DefaultSearchItems().Static())
	assert.Empty(t, bar.DefaultSearchItems().Recent())
}

func TestStaticItems(t *testing.T) {
	items := SearchItems()
	require.Len(t, items, 5)

	titles := []string{}
	values := []string{}
	for _, it := range items {
		titles = append(titles, it.Title)
		values = append(values, it.Value)
		assert.Equal(t, domain.ItemTypeDefault, it.Type)
	}
	assert.Equal(t, []string{"Tag", "Status", "Time or Count", "Assigned", "Bookmarked By"}, titles)
	assert.Equal(t, []string{"browser:", "is:", "", "assigned:", "bookmarks:"}, values)

	// callers get a copy
	items[0].Value = "changed"
	assert.Equal(t, "browser:", SearchItems()[0].Value)
}

func TestFetchDisabledSkipsStore(t *testing.T) {
	store := &fakeStore{queries: []string{"error:high"}}
	bar := newBar(t, store, features.Set{})

	res := bar.FetchData(context.Background())
	assert.Equal(t, FetchDisabled, res.Status)
	assert.True(t, res.Changed())
	assert.Zero(t, store.callCount())
	assert.Empty(t, bar.DefaultSearchItems().Recent())
	assert.Equal(t, SearchItems(), bar.DefaultSearchItems().Static())
}

func TestFetchBuildsRecentBucket(t *testing.T) {
	store := &fakeStore{queries: []string{"error:high", "is:unresolved"}}
	bar := newBar(t, store, features.Set{RecentSearches: true})

	res := bar.FetchData(context.Background())
	require.Equal(t, FetchApplied, res.Status)
	assert.Equal(t, []string{"error:high", "is:unresolved"}, res.Queries)

	got := bar.DefaultSearchItems().Recent()
	require.Len(t, got, 2)
	for i, q := range []string{"error:high", "is:unresolved"} {
		assert.Equal(t, domain.SearchItem{
			Desc:      q,
			Value:     q,
			ClassName: "icon-clock",
			Type:      domain.ItemTypeRecentSearch,
		}, got[i])
	}
	assert.Equal(t, []string{"error:high", "is:unresolved"}, bar.RecentSearches())
	assert.Equal(t, SearchItems(), bar.DefaultSearchItems().Static())
	assert.Equal(t, []int{0}, store.limits, "store default limit applies")
}

func TestFetchUsesConfiguredLimit(t *testing.T) {
	store := &fakeStore{}
	bar, err := New(Options{
		API:            store,
		Features:       features.Set{RecentSearches: true},
		TagValueLoader: noTags,
		RecentLimit:    7,
	})
	require.NoError(t, err)

	bar.FetchData(context.Background())
	assert.Equal(t, []int{7}, store.limits)
}

func TestFetchFailureKeepsState(t *testing.T) {
	store := &fakeStore{queries: []string{"error:high"}}
	bar := newBar(t, store, features.Set{RecentSearches: true})
	require.Equal(t, FetchApplied, bar.FetchData(context.Background()).Status)

	boom := errors.New("backend down")
	store.mu.Lock()
	store.err = boom
	store.mu.Unlock()

	res := bar.FetchData(context.Background())
	assert.Equal(t, FetchFailed, res.Status)
	assert.ErrorIs(t, res.Err, boom)
	assert.False(t, res.Changed())
	assert.Equal(t, []string{"error:high"}, bar.RecentSearches())
	assert.Len(t, bar.DefaultSearchItems().Recent(), 1)
}

func TestFetchFailurePublishesError(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()

	got := make(chan eventbus.ErrorEvent, 1)
	bus.Subscribe(eventbus.EventError, func(e eventbus.DomainEvent) {
		got <- e.(eventbus.ErrorEvent)
	})

	bar, err := New(Options{
		API:            &fakeStore{err: errors.New("nope")},
		Features:       features.Set{RecentSearches: true},
		TagValueLoader: noTags,
		Bus:            bus,
	})
	require.NoError(t, err)
	bar.FetchData(context.Background())

	select {
	case e := <-got:
		assert.Equal(t, "Unable to fetch recent searches", e.Message)
	case <-time.After(time.Second):
		t.Fatal("no error event")
	}
}

func TestNewerFetchCancelsOlder(t *testing.T) {
	entered := make(chan struct{})
	store := &fakeStore{}
	store.hook = func(ctx context.Context, call int) ([]string, error) {
		if call == 1 {
			close(entered)
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return []string{"newer"}, nil
	}
	bar := newBar(t, store, features.Set{RecentSearches: true})

	first := make(chan FetchResult, 1)
	go func() { first <- bar.FetchData(context.Background()) }()
	<-entered

	second := bar.FetchData(context.Background())
	require.Equal(t, FetchApplied, second.Status)

	res := <-first
	assert.Equal(t, FetchStale, res.Status)
	assert.ErrorIs(t, res.Err, context.Canceled)
	assert.Equal(t, []string{"newer"}, bar.RecentSearches())
}

func TestCloseCancelsFetchWithoutError(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()
	errs := make(chan eventbus.ErrorEvent, 1)
	bus.Subscribe(eventbus.EventError, func(e eventbus.DomainEvent) {
		errs <- e.(eventbus.ErrorEvent)
	})

	entered := make(chan struct{})
	store := &fakeStore{queries: []string{"kept"}}
	store.hook = func(ctx context.Context, call int) ([]string, error) {
		if call == 1 {
			close(entered)
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return []string{"kept"}, nil
	}
	bar, err := New(Options{
		API:            store,
		Organization:   "acme",
		Features:       features.Set{RecentSearches: true},
		TagValueLoader: noTags,
		Bus:            bus,
	})
	require.NoError(t, err)

	first := make(chan FetchResult, 1)
	go func() { first <- bar.FetchData(context.Background()) }()
	<-entered
	bar.Close()

	res := <-first
	assert.Equal(t, FetchStale, res.Status)
	assert.ErrorIs(t, res.Err, context.Canceled)
	assert.Empty(t, bar.RecentSearches())

	select {
	case e := <-errs:
		t.Fatalf("unexpected error event %q", e.Message)
	case <-time.After(100 * time.Millisecond):
	}

	// the bar still fetches after Close
	again := bar.FetchData(context.Background())
	assert.Equal(t, FetchApplied, again.Status)
	assert.Equal(t, []string{"kept"}, bar.RecentSearches())
}

func TestStaleResponseDoesNotOverwrite(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	store := &fakeStore{}
	// the first call ignores cancellation and answers late
	store.hook = func(ctx context.Context, call int) ([]string, error) {
		if call == 1 {
			close(entered)
			<-release
			return []string{"older"}, nil
		}
		return []string{"newer"}, nil
	}
	bar := newBar(t, store, features.Set{RecentSearches: true})

	first := make(chan FetchResult, 1)
	go func() { first <- bar.FetchData(context.Background()) }()
	<-entered

	second := bar.FetchData(context.Background())
	require.Equal(t, FetchApplied, second.Status)
	close(release)

	res := <-first
	assert.Equal(t, FetchStale, res.Status)
	assert.Less(t, res.Generation, second.Generation)
	assert.Equal(t, []string{"newer"}, bar.RecentSearches())
}

func TestTagValues(t *testing.T) {
	var gotKey, gotQuery string
	bar, err := New(Options{
		TagValueLoader: func(ctx context.Context, key, query string) ([]domain.TagValue, error) {
			gotKey, gotQuery = key, query
			return []domain.TagValue{{Key: key, Value: "chrome", Count: 3}, {Key: key, Value: "firefox", Count: 1}}, nil
		},
	})
	require.NoError(t, err)

	values, err := bar.TagValues(context.Background(), domain.Tag{Key: "browser", Name: "Browser"}, "e")
	require.NoError(t, err)
	assert.Equal(t, []string{"chrome", "firefox"}, values)
	assert.Equal(t, "browser", gotKey)
	assert.Equal(t, "e", gotQuery)
}

func TestTagValuesNormalizesErrors(t *testing.T) {
	for _, cause := range []error{
		errors.New("network unreachable"),
		errors.New("403 forbidden"),
		context.DeadlineExceeded,
	} {
		bar, err := New(Options{
			TagValueLoader: func(ctx context.Context, key, query string) ([]domain.TagValue, error) {
				return nil, cause
			},
		})
		require.NoError(t, err)

		values, err := bar.TagValues(context.Background(), domain.Tag{Key: "browser"}, "")
		assert.Nil(t, values)
		require.Error(t, err)
		assert.Equal(t, "Unable to fetch project tags", err.Error())
		assert.ErrorIs(t, err, ErrUnableToFetchTags)
		assert.NotErrorIs(t, err, cause)
	}
}

func TestSavedSearchRefetchesOnlyWhenEnabled(t *testing.T) {
	store := &fakeStore{queries: []string{"error:high"}}
	off := newBar(t, store, features.Set{})
	before := off.DefaultSearchItems()

	res := off.HandleSavedRecentSearch(context.Background())
	assert.Equal(t, FetchDisabled, res.Status)
	assert.False(t, res.Changed())
	assert.Zero(t, store.callCount())
	assert.Equal(t, before, off.DefaultSearchItems())

	on := newBar(t, store, features.Set{RecentSearches: true})
	on.FetchData(context.Background())
	require.NoError(t, on.SaveRecentSearch(context.Background(), "is:unresolved"))

	res = on.HandleSavedRecentSearch(context.Background())
	assert.Equal(t, FetchApplied, res.Status)
	assert.Equal(t, 2, store.callCount())
	assert.Equal(t, []string{"is:unresolved", "error:high"}, on.RecentSearches())
}

func TestPinnedSearch(t *testing.T) {
	pinned := &domain.SavedSearch{Name: "Mine", Query: "assigned:me", IsPinned: true}
	unpinned := &domain.SavedSearch{Name: "Other", Query: "is:ignored"}

	bar, err := New(Options{TagValueLoader: noTags, SavedSearch: pinned})
	require.NoError(t, err)
	assert.Same(t, pinned, bar.PinnedSearch())

	bar, err = New(Options{TagValueLoader: noTags, SavedSearch: unpinned})
	require.NoError(t, err)
	assert.Nil(t, bar.PinnedSearch())
}

func TestSidebarToggleVisibility(t *testing.T) {
	toggle := func() {}
	tests := []struct {
		name   string
		caps   features.Set
		toggle func()
		want   bool
	}{
		{"no callback", features.Set{}, nil, false},
		{"callback without pinned searches", features.Set{}, toggle, true},
		{"pinned searches hide toggle", features.Set{OrgSavedSearches: true}, toggle, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar, err := New(Options{TagValueLoader: noTags, Features: tt.caps, OnSidebarToggle: tt.toggle})
			require.NoError(t, err)
			assert.Equal(t, tt.want, bar.ShowSidebarToggle())
		})
	}
}

func TestToggleSidebar(t *testing.T) {
	calls := 0
	bar, err := New(Options{TagValueLoader: noTags, OnSidebarToggle: func() { calls++ }})
	require.NoError(t, err)

	assert.True(t, bar.ToggleSidebar())
	assert.True(t, bar.SidebarOpen())
	assert.True(t, bar.ToggleSidebar())
	assert.False(t, bar.SidebarOpen())
	assert.Equal(t, 2, calls)

	hidden, err := New(Options{TagValueLoader: noTags, Features: features.Set{OrgSavedSearches: true}, OnSidebarToggle: func() { calls++ }})
	require.NoError(t, err)
	assert.False(t, hidden.ToggleSidebar())
	assert.Equal(t, 2, calls)
}

func TestPropsOverridePassThrough(t *testing.T) {
	store := &fakeStore{queries: []string{"error:high"}}
	pinned := &domain.SavedSearch{Name: "Mine", Query: "assigned:me", IsPinned: true}
	toggled := false
	bar, err := New(Options{
		API:             store,
		Features:        features.Set{RecentSearches: true, OrgSavedSearches: true},
		SavedSearch:     pinned,
		TagValueLoader:  noTags,
		OnSidebarToggle: func() { toggled = true },
		Bar: smartsearch.Props{
			Placeholder:     "Search issues",
			MaxSearchItems:  10,
			SavedSearchType: domain.SearchTypeEvent,
		},
	})
	require.NoError(t, err)
	bar.FetchData(context.Background())

	p := bar.Props()
	assert.Equal(t, "Search issues", p.Placeholder)
	assert.Equal(t, MaxSearchItems, p.MaxSearchItems)
	assert.Equal(t, domain.SearchTypeIssue, p.SavedSearchType)
	assert.True(t, p.HasPinnedSearch)
	assert.Same(t, pinned, p.PinnedSearch)
	assert.True(t, p.DisplayRecentSearches)
	assert.Equal(t, bar.DefaultSearchItems(), p.DefaultSearchItems)
	require.NotNil(t, p.OnGetTagValues)
	require.NotNil(t, p.SaveRecentSearch)
	require.NotNil(t, p.OnSavedRecentSearch)
	require.NotNil(t, p.OnSidebarToggle)
	p.OnSidebarToggle()
	assert.True(t, toggled)

	p.OnSavedRecentSearch(context.Background(), "error:high")
	assert.Equal(t, 2, store.callCount())
}

func TestPropsIgnoreCallerRecentDisplay(t *testing.T) {
	bar, err := New(Options{
		TagValueLoader: noTags,
		Bar:            smartsearch.Props{DisplayRecentSearches: true, MaxSearchItems: 10},
	})
	require.NoError(t, err)

	p := bar.Props()
	assert.False(t, p.DisplayRecentSearches)
	assert.Equal(t, MaxSearchItems, p.MaxSearchItems)
}

func TestSaveRecentSearchPublishes(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()
	got := make(chan eventbus.RecentSearchSavedEvent, 1)
	bus.Subscribe(eventbus.EventRecentSearchSaved, func(e eventbus.DomainEvent) {
		got <- e.(eventbus.RecentSearchSavedEvent)
	})

	store := &fakeStore{}
	bar, err := New(Options{API: store, Organization: "acme", TagValueLoader: noTags, Bus: bus})
	require.NoError(t, err)
	require.NoError(t, bar.SaveRecentSearch(context.Background(), "is:unresolved"))

	select {
	case e := <-got:
		assert.Equal(t, "acme", e.Organization)
		assert.Equal(t, domain.SearchTypeIssue, e.SearchType)
		assert.Equal(t, "is:unresolved", e.Query)
	case <-time.After(time.Second):
		t.Fatal("no saved event")
	}
	assert.Equal(t, []string{"is:unresolved"}, store.saved)
}
