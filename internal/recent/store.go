// Package recent stores previously executed search queries per organization
// and search type, most recent first.
package recent

import (
	"context"
	"errors"
	"strings"
	"time"

	"issuesearch/internal/domain"
)

// DefaultLimit is applied when a caller asks for limit <= 0
const DefaultLimit = 3

// ErrEmptyQuery is returned when saving a blank query
var ErrEmptyQuery = errors.New("recent search query is empty")

// Store is the recent-search backing store
type Store interface {
	// Recent returns up to limit searches, newest first. A non-empty query
	// keeps only entries containing it, case-insensitively.
	Recent(ctx context.Context, org string, searchType domain.SearchType, query string, limit int) ([]domain.RecentSearch, error)
	// Save records query, bumping its last-seen time if already present
	Save(ctx context.Context, org string, searchType domain.SearchType, query string) error
	// Clear removes every entry for org and searchType
	Clear(ctx context.Context, org string, searchType domain.SearchType) error
}

// Clock returns the current time; stores take one so tests can pin ordering
type Clock func() time.Time

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}

func normalizeQuery(query string) (string, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return "", ErrEmptyQuery
	}
	return q, nil
}

// Queries extracts the query strings from searches, preserving order
func Queries(searches []domain.RecentSearch) []string {
	out := make([]string, 0, len(searches))
	for _, s := range searches {
		out = append(out, s.Query)
	}
	return out
}
