// Package moderation defines the flag store contract and its
// in-memory implementation.
package moderation

import (
	"context"

	"github.com/spotnest/matchd/internal/domain/model"
)

// Store provides access to moderation flags. Flags are never deleted;
// they only move through status transitions.
type Store interface {
	// Insert stores a new flag (auto-created by the trust scorer).
	// The store assigns ID and timestamps when unset.
	Insert(ctx context.Context, f model.Flag) (model.Flag, error)

	// InsertReport stores a user-created flag, enforcing at most one
	// pending report per (listing, reporter) pair. Returns
	// ErrDuplicateReport without inserting when one is pending.
	InsertReport(ctx context.Context, f model.Flag) (model.Flag, error)

	// ByListing returns all flags for a listing, oldest first.
	ByListing(ctx context.Context, listingID string) ([]model.Flag, error)

	// ByStatus returns all flags in the given status, oldest first.
	ByStatus(ctx context.Context, status model.FlagStatus) ([]model.Flag, error)

	// Transition moves a flag along pending -> reviewing ->
	// resolved | dismissed, recording the reviewer and notes.
	Transition(ctx context.Context, flagID string, to model.FlagStatus, reviewerID, notes string) (model.Flag, error)

	// DismissAll transitions every pending and reviewing flag for a
	// listing to dismissed and resets the listing's flag count to
	// zero, as a single atomic step. Returns the number dismissed.
	DismissAll(ctx context.Context, listingID, reviewerID string) (int, error)

	// FlagCount returns the listing's current flag count.
	FlagCount(ctx context.Context, listingID string) int

	// OpenCount returns the number of pending and reviewing flags.
	OpenCount(ctx context.Context) int
}
