// Package features decodes organization feature flags into a typed capability set.
package features

// Flag names as the upstream organization payload spells them
const (
	FlagRecentSearches   = "recent-searches"
	FlagOrgSavedSearches = "org-saved-searches"
)

// Set holds the capabilities the search bar cares about
type Set struct {
	RecentSearches   bool
	OrgSavedSearches bool
}

// FromFlags builds a Set from a feature list. Unknown names are ignored.
func FromFlags(flags []string) Set {
	var s Set
	for _, f := range flags {
		switch f {
		case FlagRecentSearches:
			s.RecentSearches = true
		case FlagOrgSavedSearches:
			s.OrgSavedSearches = true
		}
	}
	return s
}

// Flags encodes the set back into flag names
func (s Set) Flags() []string {
	flags := []string{}
	if s.RecentSearches {
		flags = append(flags, FlagRecentSearches)
	}
	if s.OrgSavedSearches {
		flags = append(flags, FlagOrgSavedSearches)
	}
	return flags
}
