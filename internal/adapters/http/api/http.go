// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/spotnest/matchd/internal/adapters/moderation"
	"github.com/spotnest/matchd/internal/adapters/store"
	"github.com/spotnest/matchd/internal/domain/model"
	"github.com/spotnest/matchd/internal/domain/trust"
)

// Dependencies required by HTTP handlers. Using an interface bundle
// keeps the handler layer loosely coupled to implementations in other
// packages.
type Dependencies interface {
	FindOptimalMatches(ctx context.Context, userID string) []model.Match
	SuggestSpacesBasedOnHistory(ctx context.Context, userID string, criteria model.SearchCriteria) []model.Recommendation
	RankSearchResults(ctx context.Context, userID, query string) ([]model.RankedResult, error)
	CheckListingForAutoFlag(ctx context.Context, listingID, ownerID string) (trust.Assessment, error)
	ReportListing(ctx context.Context, listingID, reporterID, reason string) (model.Flag, error)
	UpdateFlagStatus(ctx context.Context, flagID string, status model.FlagStatus, reviewerID, notes string) (model.Flag, error)
	DismissAllFlags(ctx context.Context, listingID, reviewerID string) (int, error)
	FlagsForListing(ctx context.Context, listingID string) ([]model.Flag, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	matchesHandler    *MatchesHandler
	recommendHandler  *RecommendationsHandler
	searchHandler     *SearchHandler
	trustCheckHandler *TrustCheckHandler
	flagsHandler      *FlagsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(statsProvider),
		matchesHandler:    NewMatchesHandler(deps),
		recommendHandler:  NewRecommendationsHandler(deps),
		searchHandler:     NewSearchHandler(deps),
		trustCheckHandler: NewTrustCheckHandler(deps),
		flagsHandler:      NewFlagsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/matches/", MetricsMiddleware(s.matchesHandler.HandleGetMatches, "matches"))
	mux.HandleFunc("/recommendations/", MetricsMiddleware(s.recommendHandler.HandleGetRecommendations, "recommendations"))
	mux.HandleFunc("/search", MetricsMiddleware(s.searchHandler.HandleSearch, "search"))
	mux.HandleFunc("/trust/check", MetricsMiddleware(s.trustCheckHandler.HandleCheck, "trust_check"))
	mux.HandleFunc("/flags/", MetricsMiddleware(s.flagsHandler.HandleFlags, "flags"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDomainError translates known domain sentinels to their HTTP
// representation, defaulting to 500.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, moderation.ErrFlagNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, moderation.ErrDuplicateReport):
		writeError(w, http.StatusConflict, "duplicate_report", err)
	case errors.Is(err, moderation.ErrInvalidTransition):
		writeError(w, http.StatusUnprocessableEntity, "invalid_transition", err)
	case errors.Is(err, moderation.ErrInvalidStatus), errors.Is(err, trust.ErrReporterRequired):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

func decodeBody(r *http.Request, v any) error {
	defer func() { _ = r.Body.Close() }()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return ErrBadRequest
	}
	return nil
}
