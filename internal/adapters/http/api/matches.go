// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/spotnest/matchd/internal/domain/model"
)

// MatchDependencies defines the interface for match operations.
type MatchDependencies interface {
	FindOptimalMatches(ctx context.Context, userID string) []model.Match
}

// MatchesHandler handles match requests.
type MatchesHandler struct {
	deps MatchDependencies
}

// NewMatchesHandler creates a new matches handler.
func NewMatchesHandler(deps MatchDependencies) *MatchesHandler {
	return &MatchesHandler{deps: deps}
}

// HandleGetMatches handles GET /matches/{user_id} requests.
func (h *MatchesHandler) HandleGetMatches(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	userID := strings.TrimPrefix(r.URL.Path, "/matches/")
	if userID == "" || strings.Contains(userID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	matches := h.deps.FindOptimalMatches(r.Context(), userID)
	writeJSON(w, http.StatusOK, map[string]any{
		"user_id": userID,
		"matches": matches,
	})
}
