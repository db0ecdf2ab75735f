package stream

import "issuesearch/internal/domain"

// FetchStatus is the outcome of a FetchData call
type FetchStatus int

const (
	// FetchApplied means the fetched searches replaced the recent bucket
	FetchApplied FetchStatus = iota
	// FetchDisabled means recent searches are off; the recent bucket is empty
	FetchDisabled
	// FetchStale means a newer fetch superseded this one and nothing changed
	FetchStale
	// FetchFailed means the store call failed and nothing changed
	FetchFailed
)

func (s FetchStatus) String() string {
	switch s {
	case FetchApplied:
		return "applied"
	case FetchDisabled:
		return "disabled"
	case FetchStale:
		return "stale"
	case FetchFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FetchResult reports what a fetch did
type FetchResult struct {
	Status     FetchStatus
	Generation uint64
	Queries    []string
	Items      domain.SearchItemGroups // set for Applied and Disabled
	Err        error                   // set for Failed, and for Stale when the superseded call errored
}

// Changed reports whether the default buckets were replaced
func (r FetchResult) Changed() bool {
	return r.Status == FetchApplied || (r.Status == FetchDisabled && r.Generation > 0)
}
