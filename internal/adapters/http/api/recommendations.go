// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/spotnest/matchd/internal/domain/model"
)

// RecommendationDependencies defines the interface for recommendation
// operations.
type RecommendationDependencies interface {
	SuggestSpacesBasedOnHistory(ctx context.Context, userID string, criteria model.SearchCriteria) []model.Recommendation
}

// RecommendationsHandler handles recommendation requests.
type RecommendationsHandler struct {
	deps RecommendationDependencies
}

// NewRecommendationsHandler creates a new recommendations handler.
func NewRecommendationsHandler(deps RecommendationDependencies) *RecommendationsHandler {
	return &RecommendationsHandler{deps: deps}
}

// HandleGetRecommendations handles GET /recommendations/{user_id}
// requests. Optional query parameters type, location and max_price
// become explicit search criteria.
func (h *RecommendationsHandler) HandleGetRecommendations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	userID := strings.TrimPrefix(r.URL.Path, "/recommendations/")
	if userID == "" || strings.Contains(userID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	q := r.URL.Query()
	criteria := model.SearchCriteria{
		SpaceType: q.Get("type"),
		Location:  q.Get("location"),
	}
	if raw := q.Get("max_price"); raw != "" {
		maxPrice, err := strconv.ParseFloat(raw, 64)
		if err != nil || maxPrice < 0 {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
		criteria.MaxPrice = maxPrice
	}

	recs := h.deps.SuggestSpacesBasedOnHistory(r.Context(), userID, criteria)
	writeJSON(w, http.StatusOK, map[string]any{
		"user_id":         userID,
		"recommendations": recs,
	})
}
