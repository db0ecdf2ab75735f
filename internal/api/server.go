package api

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"issuesearch/internal/domain"
	"issuesearch/internal/recent"
	"issuesearch/internal/tags"
)

// Server exposes a recent.Store and a tag catalog over HTTP
type Server struct {
	store   recent.Store
	catalog *tags.Catalog
	token   string
	logger  zerolog.Logger
}

// NewServer creates a server. An empty token disables authentication.
func NewServer(store recent.Store, catalog *tags.Catalog, token string, logger zerolog.Logger) *Server {
	return &Server{
		store:   store,
		catalog: catalog,
		token:   token,
		logger:  logger,
	}
}

// Router builds the route tree
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.HandleHealth)

	r.Route("/api/0/organizations/{org}", func(r chi.Router) {
		r.Use(s.authenticate)

		r.Get("/recent-searches/", s.HandleListRecent)
		r.Post("/recent-searches/", s.HandleSaveRecent)
		r.Delete("/recent-searches/", s.HandleClearRecent)

		r.Get("/tags/", s.HandleTagKeys)
		r.Get("/tags/{key}/values/", s.HandleTagValues)
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" {
			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(s.token)) != 1 {
				writeError(w, http.StatusUnauthorized, "Authentication credentials were not provided.", "unauthorized")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// HandleHealth reports liveness
func (s *Server) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// HandleListRecent returns recent searches, newest first
func (s *Server) HandleListRecent(w http.ResponseWriter, r *http.Request) {
	org := chi.URLParam(r, "org")
	q := r.URL.Query()

	searchType, err := parseSearchType(q.Get("type"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid type", "invalid_type")
		return
	}
	limit := 0
	if raw := q.Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit", "invalid_limit")
			return
		}
	}

	searches, err := s.store.Recent(r.Context(), org, searchType, q.Get("query"), limit)
	if err != nil {
		s.logger.Error().Err(err).Str("organization", org).Msg("list recent searches")
		writeError(w, http.StatusInternalServerError, "Failed to list recent searches", "store_error")
		return
	}
	if searches == nil {
		searches = []domain.RecentSearch{}
	}
	writeJSON(w, http.StatusOK, searches)
}

// HandleSaveRecent records a submitted query
func (s *Server) HandleSaveRecent(w http.ResponseWriter, r *http.Request) {
	org := chi.URLParam(r, "org")

	var req RecentSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "invalid_json")
		return
	}
	if !knownSearchType(req.Type) {
		writeError(w, http.StatusBadRequest, "Invalid type", "invalid_type")
		return
	}

	if err := s.store.Save(r.Context(), org, req.Type, req.Query); err != nil {
		if errors.Is(err, recent.ErrEmptyQuery) {
			writeError(w, http.StatusBadRequest, "Query is required", "invalid_query")
			return
		}
		s.logger.Error().Err(err).Str("organization", org).Msg("save recent search")
		writeError(w, http.StatusInternalServerError, "Failed to save recent search", "store_error")
		return
	}

	s.logger.Info().Str("organization", org).Str("type", req.Type.String()).Msg("recent search saved")
	writeJSON(w, http.StatusCreated, RecentSearchRequest{Query: strings.TrimSpace(req.Query), Type: req.Type})
}

// HandleClearRecent drops the history for one search type
func (s *Server) HandleClearRecent(w http.ResponseWriter, r *http.Request) {
	org := chi.URLParam(r, "org")
	searchType, err := parseSearchType(r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid type", "invalid_type")
		return
	}
	if err := s.store.Clear(r.Context(), org, searchType); err != nil {
		s.logger.Error().Err(err).Str("organization", org).Msg("clear recent searches")
		writeError(w, http.StatusInternalServerError, "Failed to clear recent searches", "store_error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleTagKeys lists the known tag keys
func (s *Server) HandleTagKeys(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Keys())
}

// HandleTagValues returns values of a tag matching ?query=
func (s *Server) HandleTagValues(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	values, err := s.catalog.Values(r.Context(), key, r.URL.Query().Get("query"))
	if err != nil {
		s.logger.Error().Err(err).Str("tag", key).Msg("tag values")
		writeError(w, http.StatusInternalServerError, "Failed to load tag values", "tag_error")
		return
	}
	writeJSON(w, http.StatusOK, values)
}

func parseSearchType(raw string) (domain.SearchType, error) {
	if raw == "" {
		return domain.SearchTypeIssue, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	t := domain.SearchType(n)
	if !knownSearchType(t) {
		return 0, errors.New("unknown search type")
	}
	return t, nil
}

func knownSearchType(t domain.SearchType) bool {
	return t == domain.SearchTypeIssue || t == domain.SearchTypeEvent
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response with the given status code
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
