// Package api serves and consumes the recent-search and tag-value HTTP API.
package api

import "issuesearch/internal/domain"

// HealthResponse represents the health check response
type HealthResponse struct {
	Status string `json:"status"`
}

// RecentSearchRequest is the body of a recent search save
type RecentSearchRequest struct {
	Query string            `json:"query"`
	Type  domain.SearchType `json:"type"`
}

// ErrorResponse represents API error response
type ErrorResponse struct {
	Error string `json:"detail"`
	Code  string `json:"code,omitempty"`
}
