package moderation

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spotnest/matchd/internal/domain/model"
	"github.com/spotnest/matchd/pkg/metrics"
)

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithClock injects the time source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// MemoryStore implements Store in memory. All mutations happen under
// one mutex, which is what makes DismissAll a single observable step.
type MemoryStore struct {
	mu     sync.RWMutex
	flags  map[string]model.Flag
	counts map[string]int // listingID -> flag count
	now    func() time.Time
}

// NewMemoryStore creates an empty in-memory flag store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		flags:  make(map[string]model.Flag),
		counts: make(map[string]int),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Insert implements Store.
func (s *MemoryStore) Insert(_ context.Context, f model.Flag) (model.Flag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(f), nil
}

// InsertReport implements Store. The uniqueness check and the insert
// happen under the same lock so concurrent duplicate reports cannot
// both land.
func (s *MemoryStore) InsertReport(_ context.Context, f model.Flag) (model.Flag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.flags {
		if existing.ListingID == f.ListingID &&
			existing.ReporterID == f.ReporterID &&
			existing.Status == model.FlagPending {
			metrics.RecordDuplicateReport()
			return model.Flag{}, ErrDuplicateReport
		}
	}
	return s.insertLocked(f), nil
}

// insertLocked assigns identity and timestamps and bumps the listing
// flag count. Callers hold s.mu.
func (s *MemoryStore) insertLocked(f model.Flag) model.Flag {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.Status == "" {
		f.Status = model.FlagPending
	}
	ts := s.now()
	if f.CreatedAt.IsZero() {
		f.CreatedAt = ts
	}
	f.UpdatedAt = ts

	s.flags[f.ID] = f
	s.counts[f.ListingID]++
	return f
}

// ByListing implements Store.
func (s *MemoryStore) ByListing(_ context.Context, listingID string) ([]model.Flag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Flag
	for _, f := range s.flags {
		if f.ListingID == listingID {
			out = append(out, f)
		}
	}
	sortFlags(out)
	return out, nil
}

// ByStatus implements Store.
func (s *MemoryStore) ByStatus(_ context.Context, status model.FlagStatus) ([]model.Flag, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Flag
	for _, f := range s.flags {
		if f.Status == status {
			out = append(out, f)
		}
	}
	sortFlags(out)
	return out, nil
}

// Transition implements Store.
func (s *MemoryStore) Transition(_ context.Context, flagID string, to model.FlagStatus, reviewerID, notes string) (model.Flag, error) {
	if !to.Valid() {
		return model.Flag{}, ErrInvalidStatus
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.flags[flagID]
	if !ok {
		return model.Flag{}, ErrFlagNotFound
	}
	if !transitionAllowed(f.Status, to) {
		return model.Flag{}, ErrInvalidTransition
	}

	f.Status = to
	f.ReviewerID = reviewerID
	f.ReviewNotes = notes
	f.UpdatedAt = s.now()
	s.flags[flagID] = f
	return f, nil
}

// DismissAll implements Store. Every covered flag transitions and the
// count resets inside one critical section; no caller can observe a
// listing half-dismissed.
func (s *MemoryStore) DismissAll(_ context.Context, listingID, reviewerID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.now()
	dismissed := 0
	for id, f := range s.flags {
		if f.ListingID != listingID {
			continue
		}
		if f.Status != model.FlagPending && f.Status != model.FlagReviewing {
			continue
		}
		f.Status = model.FlagDismissed
		f.ReviewerID = reviewerID
		f.UpdatedAt = ts
		s.flags[id] = f
		dismissed++
	}
	s.counts[listingID] = 0
	return dismissed, nil
}

// FlagCount implements Store.
func (s *MemoryStore) FlagCount(_ context.Context, listingID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counts[listingID]
}

// OpenCount implements Store.
func (s *MemoryStore) OpenCount(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, f := range s.flags {
		if f.Status == model.FlagPending || f.Status == model.FlagReviewing {
			n++
		}
	}
	return n
}

// transitionAllowed encodes pending -> reviewing -> resolved|dismissed.
func transitionAllowed(from, to model.FlagStatus) bool {
	switch from {
	case model.FlagPending:
		return to == model.FlagReviewing
	case model.FlagReviewing:
		return to == model.FlagResolved || to == model.FlagDismissed
	default:
		return false
	}
}

// sortFlags orders by creation time, then ID for a stable tie-break.
func sortFlags(flags []model.Flag) {
	sort.Slice(flags, func(i, j int) bool {
		if !flags[i].CreatedAt.Equal(flags[j].CreatedAt) {
			return flags[i].CreatedAt.Before(flags[j].CreatedAt)
		}
		return flags[i].ID < flags[j].ID
	})
}
