package domain

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventRecentSearchesFetched EventType = "RecentSearchesFetched"
	EventRecentSearchSaved     EventType = "RecentSearchSaved"
	EventSearchSubmitted       EventType = "SearchSubmitted"
	EventSidebarToggled        EventType = "SidebarToggled"
	EventError                 EventType = "Error"
	EventConfigLoaded          EventType = "ConfigLoaded"
	EventConfigSaved           EventType = "ConfigSaved"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// RecentSearchesFetchedEvent is emitted when a fetch result replaces the recent bucket
type RecentSearchesFetchedEvent struct {
	Organization string
	Queries      []string
	Generation   uint64
}

func (e RecentSearchesFetchedEvent) Type() EventType { return EventRecentSearchesFetched }

// RecentSearchSavedEvent is emitted after a submitted query is stored in history
type RecentSearchSavedEvent struct {
	Organization string
	SearchType   SearchType
	Query        string
}

func (e RecentSearchSavedEvent) Type() EventType { return EventRecentSearchSaved }

// SearchSubmittedEvent is emitted when the user runs a query
type SearchSubmittedEvent struct {
	Query string
}

func (e SearchSubmittedEvent) Type() EventType { return EventSearchSubmitted }

// SidebarToggledEvent is emitted when the stream sidebar toggle is activated
type SidebarToggledEvent struct {
	Open bool
}

func (e SidebarToggledEvent) Type() EventType { return EventSidebarToggled }

// ErrorEvent is emitted when an error occurs
type ErrorEvent struct {
	Message string
	Err     error
}

func (e ErrorEvent) Type() EventType { return EventError }

// ConfigLoadedEvent is emitted when configuration is loaded
type ConfigLoadedEvent struct {
	Path         string
	Organization string
}

func (e ConfigLoadedEvent) Type() EventType { return EventConfigLoaded }

// ConfigSavedEvent is emitted when configuration is saved
type ConfigSavedEvent struct {
	Path string
}

func (e ConfigSavedEvent) Type() EventType { return EventConfigSaved }
