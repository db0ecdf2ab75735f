package recent

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"issuesearch/internal/domain"
)

type scopeKey struct {
	org        string
	searchType domain.SearchType
}

// MemoryStore keeps recent searches in process memory
type MemoryStore struct {
	mu      sync.Mutex
	now     Clock
	nextID  int64
	entries map[scopeKey][]domain.RecentSearch
}

// NewMemoryStore creates an empty in-memory store. A nil clock uses time.Now.
func NewMemoryStore(now Clock) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{
		now:     now,
		entries: make(map[scopeKey][]domain.RecentSearch),
	}
}

func (s *MemoryStore) Recent(ctx context.Context, org string, searchType domain.SearchType, query string, limit int) ([]domain.RecentSearch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit = normalizeLimit(limit)
	needle := strings.ToLower(query)

	s.mu.Lock()
	defer s.mu.Unlock()

	all := append([]domain.RecentSearch(nil), s.entries[scopeKey{org, searchType}]...)
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].LastSeen.Equal(all[j].LastSeen) {
			return all[i].ID > all[j].ID
		}
		return all[i].LastSeen.After(all[j].LastSeen)
	})

	out := make([]domain.RecentSearch, 0, limit)
	for _, rs := range all {
		if needle != "" && !strings.Contains(strings.ToLower(rs.Query), needle) {
			continue
		}
		out = append(out, rs)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStore) Save(ctx context.Context, org string, searchType domain.SearchType, query string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q, err := normalizeQuery(query)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := scopeKey{org, searchType}
	now := s.now()
	for i := range s.entries[key] {
		if s.entries[key][i].Query == q {
			s.entries[key][i].LastSeen = now
			return nil
		}
	}

	s.nextID++
	s.entries[key] = append(s.entries[key], domain.RecentSearch{
		ID:           s.nextID,
		Organization: org,
		Type:         searchType,
		Query:        q,
		LastSeen:     now,
		DateCreated:  now,
	})
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context, org string, searchType domain.SearchType) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, scopeKey{org, searchType})
	return nil
}
