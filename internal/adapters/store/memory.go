package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/spotnest/matchd/internal/domain/model"
)

// MemoryProfileStore implements ProfileStore in memory. It is the
// default backing for local runs and tests; production deployments
// substitute a client for the hosted profile service.
type MemoryProfileStore struct {
	mu           sync.RWMutex
	prefs        map[string]model.Preferences
	bookings     map[string][]model.Booking
	searches     map[string][]model.SearchQuery
	historyLimit int
}

// ProfileOption applies a configuration option to MemoryProfileStore.
type ProfileOption func(*MemoryProfileStore)

// WithSearchHistoryLimit overrides the search history cap.
func WithSearchHistoryLimit(limit int) ProfileOption {
	return func(s *MemoryProfileStore) {
		if limit > 0 {
			s.historyLimit = limit
		}
	}
}

// NewMemoryProfileStore creates an empty in-memory profile store.
func NewMemoryProfileStore(opts ...ProfileOption) *MemoryProfileStore {
	s := &MemoryProfileStore{
		prefs:        make(map[string]model.Preferences),
		bookings:     make(map[string][]model.Booking),
		searches:     make(map[string][]model.SearchQuery),
		historyLimit: model.MaxSearchHistory,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PutPreferences stores or replaces a user's preferences.
func (s *MemoryProfileStore) PutPreferences(userID string, p model.Preferences) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs[userID] = p
}

// AddBooking appends a confirmed booking for a user.
func (s *MemoryProfileStore) AddBooking(userID string, b model.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings[userID] = append(s.bookings[userID], b)
}

// Preferences implements ProfileStore.
func (s *MemoryProfileStore) Preferences(_ context.Context, userID string) (model.Preferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.prefs[userID]
	if !ok {
		return model.Preferences{}, ErrNotFound
	}
	return p, nil
}

// Bookings implements ProfileStore.
func (s *MemoryProfileStore) Bookings(_ context.Context, userID string) ([]model.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Booking, len(s.bookings[userID]))
	copy(out, s.bookings[userID])
	return out, nil
}

// SearchHistory implements ProfileStore.
func (s *MemoryProfileStore) SearchHistory(_ context.Context, userID string) ([]model.SearchQuery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.SearchQuery, len(s.searches[userID]))
	copy(out, s.searches[userID])
	return out, nil
}

// AppendSearch implements ProfileStore. The history is append-only
// with the oldest entry evicted once the cap is reached.
func (s *MemoryProfileStore) AppendSearch(_ context.Context, userID string, q model.SearchQuery) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := append(s.searches[userID], q)
	if len(h) > s.historyLimit {
		h = h[len(h)-s.historyLimit:]
	}
	s.searches[userID] = h
	return nil
}

// UserCount returns the number of users with stored preferences.
func (s *MemoryProfileStore) UserCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.prefs)
}

// MemoryListingStore implements ListingStore in memory.
type MemoryListingStore struct {
	mu       sync.RWMutex
	listings map[string]model.Listing
	owners   map[string]model.Owner
}

// NewMemoryListingStore creates an empty in-memory listing store.
func NewMemoryListingStore() *MemoryListingStore {
	return &MemoryListingStore{
		listings: make(map[string]model.Listing),
		owners:   make(map[string]model.Owner),
	}
}

// PutListing stores or replaces a listing.
func (s *MemoryListingStore) PutListing(l model.Listing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listings[l.ID] = l
}

// PutOwner stores or replaces an owner record.
func (s *MemoryListingStore) PutOwner(o model.Owner) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.owners[o.ID] = o
}

// Active implements ListingStore. Listings are returned sorted by ID
// so callers see a deterministic candidate order.
func (s *MemoryListingStore) Active(_ context.Context) ([]model.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Listing, 0, len(s.listings))
	for _, l := range s.listings {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ByID implements ListingStore.
func (s *MemoryListingStore) ByID(_ context.Context, id string) (model.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.listings[id]
	if !ok {
		return model.Listing{}, ErrNotFound
	}
	return l, nil
}

// ByOwner implements ListingStore.
func (s *MemoryListingStore) ByOwner(_ context.Context, ownerID string) ([]model.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Listing
	for _, l := range s.listings {
		if l.OwnerID == ownerID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CountCreatedSince implements ListingStore.
func (s *MemoryListingStore) CountCreatedSince(_ context.Context, ownerID string, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, l := range s.listings {
		if l.OwnerID == ownerID && !l.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

// Owner implements ListingStore.
func (s *MemoryListingStore) Owner(_ context.Context, ownerID string) (model.Owner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.owners[ownerID]
	if !ok {
		return model.Owner{}, ErrNotFound
	}
	return o, nil
}

// ListingCount returns the number of stored listings.
func (s *MemoryListingStore) ListingCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.listings)
}
