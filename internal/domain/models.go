package domain

import "time"

// SearchType scopes recent and saved searches to one area of the product.
// Values match the upstream API.
type SearchType int

const (
	SearchTypeIssue SearchType = 0
	SearchTypeEvent SearchType = 1
)

func (t SearchType) String() string {
	switch t {
	case SearchTypeIssue:
		return "issue"
	case SearchTypeEvent:
		return "event"
	default:
		return "unknown"
	}
}

// ItemType categorizes a search suggestion
type ItemType string

const (
	ItemTypeDefault      ItemType = "default"
	ItemTypeRecentSearch ItemType = "recent-search"
	ItemTypeTagKey       ItemType = "tag-key"
	ItemTypeTagValue     ItemType = "tag-value"
)

// SearchItem is a single autocomplete suggestion
type SearchItem struct {
	Title     string
	Desc      string
	Value     string // text inserted into the query when chosen
	Type      ItemType
	ClassName string // optional display hint, e.g. "icon-clock"
}

// DisplayText returns what the dropdown shows for the item
func (i SearchItem) DisplayText() string {
	if i.Title != "" {
		return i.Title
	}
	return i.Desc
}

// SearchItemGroups is the two-bucket list of default suggestions:
// static items first, recent searches second.
type SearchItemGroups [2][]SearchItem

// Static returns the first bucket
func (g SearchItemGroups) Static() []SearchItem { return g[0] }

// Recent returns the second bucket
func (g SearchItemGroups) Recent() []SearchItem { return g[1] }

// RecentSearch is a previously executed query kept per organization and type
type RecentSearch struct {
	ID           int64      `json:"id,string"`
	Organization string     `json:"-"`
	Type         SearchType `json:"type"`
	Query        string     `json:"query"`
	LastSeen     time.Time  `json:"lastSeen"`
	DateCreated  time.Time  `json:"dateCreated"`
}

// SavedSearch is a persisted query, optionally pinned as the default view
type SavedSearch struct {
	ID       string     `json:"id" toml:"id"`
	Name     string     `json:"name" toml:"name"`
	Query    string     `json:"query" toml:"query"`
	Type     SearchType `json:"type" toml:"type"`
	IsPinned bool       `json:"isPinned" toml:"is_pinned"`
}

// Tag is a searchable attribute key
type Tag struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// TagValue is a concrete value seen for a tag key
type TagValue struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	Name      string    `json:"name"`
	Count     int       `json:"count"`
	LastSeen  time.Time `json:"lastSeen,omitempty"`
	FirstSeen time.Time `json:"firstSeen,omitempty"`
}
