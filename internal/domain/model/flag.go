package model

import "time"

// FlagType is the closed set of moderation flag categories.
type FlagType string

const (
	FlagIdentityVerification FlagType = "identity_verification"
	FlagSuspiciousPricing    FlagType = "suspicious_pricing"
	FlagRapidListingCreation FlagType = "rapid_listing_creation"
	FlagUserReport           FlagType = "user_report"
)

// FlagStatus is the moderation lifecycle state of a flag.
// Allowed transitions: pending -> reviewing -> resolved | dismissed.
// Resolved and dismissed are terminal; flags are never deleted.
type FlagStatus string

const (
	FlagPending   FlagStatus = "pending"
	FlagReviewing FlagStatus = "reviewing"
	FlagResolved  FlagStatus = "resolved"
	FlagDismissed FlagStatus = "dismissed"
)

// Terminal reports whether s permits no further transitions.
func (s FlagStatus) Terminal() bool {
	return s == FlagResolved || s == FlagDismissed
}

// Valid reports whether s is a known status value.
func (s FlagStatus) Valid() bool {
	switch s {
	case FlagPending, FlagReviewing, FlagResolved, FlagDismissed:
		return true
	}
	return false
}

// Flag is a moderation record for a listing, created either by a user
// report or by the trust scorer. It is mutated only through status
// transitions.
type Flag struct {
	ID        string   `json:"id"`
	ListingID string   `json:"listing_id"`
	Type      FlagType `json:"type"`
	Reason    string   `json:"reason"`
	// ReporterID is empty for auto-created flags.
	ReporterID  string     `json:"reporter_id,omitempty"`
	AutoFlagged bool       `json:"auto_flagged"`
	Confidence  float64    `json:"confidence,omitempty"` // [0,1], auto flags only
	Status      FlagStatus `json:"status"`
	ReviewerID  string     `json:"reviewer_id,omitempty"`
	ReviewNotes string     `json:"review_notes,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
