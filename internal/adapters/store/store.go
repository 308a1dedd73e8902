// Package store defines the profile and listing store contracts and
// their in-memory implementations.
package store

import (
	"context"
	"time"

	"github.com/spotnest/matchd/internal/domain/model"
)

// ProfileStore provides read/write access to per-user preference and
// history records.
type ProfileStore interface {
	// Preferences returns the stored preferences for a user.
	// Returns ErrNotFound for unknown users.
	Preferences(ctx context.Context, userID string) (model.Preferences, error)

	// Bookings returns the user's confirmed bookings, oldest first.
	Bookings(ctx context.Context, userID string) ([]model.Booking, error)

	// SearchHistory returns the user's recent searches, oldest first,
	// capped at model.MaxSearchHistory entries.
	SearchHistory(ctx context.Context, userID string) ([]model.SearchQuery, error)

	// AppendSearch records a search, evicting the oldest entry once
	// the cap is reached.
	AppendSearch(ctx context.Context, userID string, q model.SearchQuery) error
}

// ListingStore provides read access to listings and their owners.
type ListingStore interface {
	// Active returns all active listings in a deterministic order.
	Active(ctx context.Context) ([]model.Listing, error)

	// ByID returns one listing. Returns ErrNotFound when unknown.
	ByID(ctx context.Context, id string) (model.Listing, error)

	// ByOwner returns all listings created by an owner.
	ByOwner(ctx context.Context, ownerID string) ([]model.Listing, error)

	// CountCreatedSince counts listings an owner created at or after
	// the given instant.
	CountCreatedSince(ctx context.Context, ownerID string, since time.Time) (int, error)

	// Owner returns the owner's account record. Returns ErrNotFound
	// when unknown.
	Owner(ctx context.Context, ownerID string) (model.Owner, error)
}
