// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/spotnest/matchd/internal/domain/trust"
)

// TrustCheckDependencies defines the interface for trust assessments.
type TrustCheckDependencies interface {
	CheckListingForAutoFlag(ctx context.Context, listingID, ownerID string) (trust.Assessment, error)
}

// TrustCheckHandler handles trust assessment requests.
type TrustCheckHandler struct {
	deps TrustCheckDependencies
}

// NewTrustCheckHandler creates a new trust check handler.
func NewTrustCheckHandler(deps TrustCheckDependencies) *TrustCheckHandler {
	return &TrustCheckHandler{deps: deps}
}

type trustCheckRequest struct {
	ListingID string `json:"listing_id"`
	OwnerID   string `json:"owner_id"`
}

// HandleCheck handles POST /trust/check requests. Callers invoke it
// once per meaningful listing-state change; re-checking an unchanged
// listing below the threshold creates another flag.
func (h *TrustCheckHandler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req trustCheckRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if strings.TrimSpace(req.ListingID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	assessment, err := h.deps.CheckListingForAutoFlag(r.Context(), req.ListingID, req.OwnerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, assessment)
}
