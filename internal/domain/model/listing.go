// Package model contains domain entities passed between layers.
package model

import "time"

// Listing represents a rentable space. It is a read-only input to the
// scoring engines; the listing store owns its lifecycle.
type Listing struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"` // e.g. "garage", "storage", "parking"
	HourlyPrice float64   `json:"hourly_price"`
	DailyPrice  float64   `json:"daily_price,omitempty"`
	Address     string    `json:"address"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	OwnerID     string    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// DailyEquivalentPrice normalizes a listing to a per-day price for
// risk checks. Listings without an explicit daily price are assumed
// to rent for a full day at the hourly rate.
func (l Listing) DailyEquivalentPrice() float64 {
	if l.DailyPrice > 0 {
		return l.DailyPrice
	}
	return l.HourlyPrice * 24
}

// Owner carries the owner-level fields consulted by trust scoring.
type Owner struct {
	ID                  string    `json:"id"`
	CreatedAt           time.Time `json:"created_at"`
	IdentityDocUploaded bool      `json:"identity_doc_uploaded"`
	// DocConfidence is the verification confidence reported by the
	// identity provider, on a 0-100 scale. Meaningless when no
	// document was uploaded.
	DocConfidence float64 `json:"doc_confidence"`
}

// SearchCriteria captures the explicit filters a renter attached to a
// recommendation or search request.
type SearchCriteria struct {
	SpaceType string  `json:"space_type,omitempty"`
	Location  string  `json:"location,omitempty"`
	MaxPrice  float64 `json:"max_price,omitempty"`
}
