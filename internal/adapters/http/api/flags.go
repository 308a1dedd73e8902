// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/spotnest/matchd/internal/domain/model"
)

// FlagDependencies defines the interface for moderation operations.
type FlagDependencies interface {
	ReportListing(ctx context.Context, listingID, reporterID, reason string) (model.Flag, error)
	UpdateFlagStatus(ctx context.Context, flagID string, status model.FlagStatus, reviewerID, notes string) (model.Flag, error)
	DismissAllFlags(ctx context.Context, listingID, reviewerID string) (int, error)
	FlagsForListing(ctx context.Context, listingID string) ([]model.Flag, error)
}

// FlagsHandler handles moderation flag requests.
type FlagsHandler struct {
	deps FlagDependencies
}

// NewFlagsHandler creates a new flags handler.
func NewFlagsHandler(deps FlagDependencies) *FlagsHandler {
	return &FlagsHandler{deps: deps}
}

// HandleFlags routes requests under /flags/:
//
//	POST /flags/report           report a listing
//	POST /flags/dismiss          dismiss all open flags for a listing
//	POST /flags/{id}/status      transition a flag
//	GET  /flags/{listing_id}     list a listing's flags
func (h *FlagsHandler) HandleFlags(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/flags/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")

	switch {
	case r.Method == http.MethodPost && rest == "report":
		h.handleReport(w, r)
	case r.Method == http.MethodPost && rest == "dismiss":
		h.handleDismissAll(w, r)
	case r.Method == http.MethodPost && len(parts) == 2 && parts[1] == "status":
		h.handleStatusUpdate(w, r, parts[0])
	case r.Method == http.MethodGet && len(parts) == 1 && parts[0] != "":
		h.handleList(w, r, parts[0])
	default:
		http.NotFound(w, r)
	}
}

type reportRequest struct {
	ListingID  string `json:"listing_id"`
	ReporterID string `json:"reporter_id"`
	Reason     string `json:"reason"`
}

func (h *FlagsHandler) handleReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if strings.TrimSpace(req.ListingID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	flag, err := h.deps.ReportListing(r.Context(), req.ListingID, req.ReporterID, req.Reason)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, flag)
}

type statusUpdateRequest struct {
	Status     string `json:"status"`
	ReviewerID string `json:"reviewer_id"`
	Notes      string `json:"notes"`
}

func (h *FlagsHandler) handleStatusUpdate(w http.ResponseWriter, r *http.Request, flagID string) {
	var req statusUpdateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	flag, err := h.deps.UpdateFlagStatus(r.Context(), flagID, model.FlagStatus(req.Status), req.ReviewerID, req.Notes)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, flag)
}

type dismissRequest struct {
	ListingID  string `json:"listing_id"`
	ReviewerID string `json:"reviewer_id"`
}

func (h *FlagsHandler) handleDismissAll(w http.ResponseWriter, r *http.Request) {
	var req dismissRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if strings.TrimSpace(req.ListingID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	dismissed, err := h.deps.DismissAllFlags(r.Context(), req.ListingID, req.ReviewerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"listing_id": req.ListingID,
		"dismissed":  dismissed,
	})
}

func (h *FlagsHandler) handleList(w http.ResponseWriter, r *http.Request, listingID string) {
	flags, err := h.deps.FlagsForListing(r.Context(), listingID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"listing_id": listingID,
		"flags":      flags,
	})
}
