package state

// StatusKind selects how the status line is styled
type StatusKind int

const (
	StatusInfo StatusKind = iota
	StatusSuccess
	StatusWarning
	StatusError
)

// maxHistory bounds the queries kept for the session list
const maxHistory = 10

// AppState contains the UI state outside the search bar itself
type AppState struct {
	Organization string

	// status line
	StatusMessage string
	StatusKind    StatusKind

	// RecentLoading is set until the first recent-search fetch finishes
	RecentLoading bool
	// RecentCount is the size of the last applied recent bucket
	RecentCount int

	SidebarOpen bool
	ShowHelp    bool

	// ActiveQuery is the last submitted query
	ActiveQuery string
	// History holds queries submitted this session, newest first
	History []string
}

// NewAppState creates a new application state
func NewAppState(org string) *AppState {
	return &AppState{
		Organization: org,
		History:      make([]string, 0, maxHistory),
	}
}

// SetStatus replaces the status line
func (s *AppState) SetStatus(kind StatusKind, msg string) {
	s.StatusKind = kind
	s.StatusMessage = msg
}

// ClearStatus empties the status line
func (s *AppState) ClearStatus() {
	s.StatusKind = StatusInfo
	s.StatusMessage = ""
}

// RecordSubmit makes query the active one and moves it to the front of History
func (s *AppState) RecordSubmit(query string) {
	s.ActiveQuery = query
	if query == "" {
		return
	}
	out := make([]string, 0, maxHistory)
	out = append(out, query)
	for _, q := range s.History {
		if q != query && len(out) < maxHistory {
			out = append(out, q)
		}
	}
	s.History = out
}
