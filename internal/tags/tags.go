// Package tags resolves tag values for search autocomplete.
package tags

import (
	"context"
	"sort"
	"strings"
	"sync"

	"issuesearch/internal/domain"
)

// MaxValues caps a single lookup
const MaxValues = 1000

// Loader fetches values for key that match query
type Loader func(ctx context.Context, key, query string) ([]domain.TagValue, error)

// Catalog is a static set of known tag values
type Catalog struct {
	mu     sync.RWMutex
	values map[string][]domain.TagValue
}

// NewCatalog builds a catalog from key -> values. Earlier values get higher counts.
func NewCatalog(src map[string][]string) *Catalog {
	c := &Catalog{values: make(map[string][]domain.TagValue, len(src))}
	for key, vals := range src {
		for i, v := range vals {
			c.add(key, v, len(vals)-i)
		}
	}
	return c
}

// Add records one observation of value under key
func (c *Catalog) Add(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.add(key, value, 1)
}

func (c *Catalog) add(key, value string, count int) {
	for i := range c.values[key] {
		if c.values[key][i].Value == value {
			c.values[key][i].Count += count
			return
		}
	}
	c.values[key] = append(c.values[key], domain.TagValue{
		Key:   key,
		Value: value,
		Name:  value,
		Count: count,
	})
}

// Keys returns the known tag keys in alphabetical order
func (c *Catalog) Keys() []domain.Tag {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Tag, 0, len(c.values))
	for k := range c.values {
		out = append(out, domain.Tag{Key: k, Name: k})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Values returns values of key containing query, most frequent first
func (c *Catalog) Values(ctx context.Context, key, query string) ([]domain.TagValue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	needle := strings.ToLower(query)

	c.mu.RLock()
	out := []domain.TagValue{}
	for _, v := range c.values[key] {
		if needle == "" || strings.Contains(strings.ToLower(v.Value), needle) {
			out = append(out, v)
		}
	}
	c.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	if len(out) > MaxValues {
		out = out[:MaxValues]
	}
	return out, nil
}

// Loader adapts the catalog to the Loader function type
func (c *Catalog) Loader() Loader {
	return c.Values
}
