// Package profile assembles per-request behavior profiles from a
// user's stored preferences and history.
package profile

import (
	"context"
	"time"

	"github.com/spotnest/matchd/internal/domain/model"
	"github.com/spotnest/matchd/pkg/logger"
	"github.com/spotnest/matchd/pkg/metrics"
)

// Default builder configuration constants.
const (
	defaultFetchTimeout = 500 * time.Millisecond
	defaultPriceMin     = 0
	defaultPriceMax     = 100
)

// Source abstracts the profile/history store reads the builder needs.
type Source interface {
	// Preferences returns the user's stored preferences.
	Preferences(ctx context.Context, userID string) (model.Preferences, error)

	// Bookings returns the user's confirmed bookings.
	Bookings(ctx context.Context, userID string) ([]model.Booking, error)

	// SearchHistory returns the user's recent searches, newest last.
	SearchHistory(ctx context.Context, userID string) ([]model.SearchQuery, error)
}

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithFetchTimeout bounds the store reads for one build.
func WithFetchTimeout(timeout time.Duration) Option {
	return func(b *Builder) {
		if timeout > 0 {
			b.fetchTimeout = timeout
		}
	}
}

// WithDefaultPriceRange sets the price range assumed for users with no
// stored preferences.
func WithDefaultPriceRange(minPrice, maxPrice float64) Option {
	return func(b *Builder) {
		if maxPrice > minPrice {
			b.defaultRange = model.PriceRange{Min: minPrice, Max: maxPrice}
		}
	}
}

// WithLogger sets a custom logger for the builder.
func WithLogger(l logger.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// Builder produces behavior profiles. It is stateless between calls
// and safe for concurrent use.
type Builder struct {
	source       Source
	fetchTimeout time.Duration
	defaultRange model.PriceRange
	logger       logger.Logger
}

// NewBuilder creates a builder reading from source.
func NewBuilder(source Source, opts ...Option) *Builder {
	b := &Builder{
		source:       source,
		fetchTimeout: defaultFetchTimeout,
		defaultRange: model.PriceRange{Min: defaultPriceMin, Max: defaultPriceMax},
		logger:       logger.Get().Named("profile"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build assembles a fresh profile for userID. It fails open: a user
// with no stored history, or store reads that error or time out,
// yields a profile with empty sequences and the default price range,
// never an error.
func (b *Builder) Build(ctx context.Context, userID string) model.BehaviorProfile {
	ctx, cancel := context.WithTimeout(ctx, b.fetchTimeout)
	defer cancel()

	p := model.BehaviorProfile{
		UserID: userID,
		Preferences: model.Preferences{
			PriceRange: b.defaultRange,
		},
	}

	prefs, err := b.source.Preferences(ctx, userID)
	switch {
	case err != nil:
		b.logger.Debug(ctx, "preferences unavailable, using defaults",
			logger.String("userID", userID), logger.Error(err))
		metrics.RecordProfileFetchFallback()
	default:
		if prefs.PriceRange.Max <= prefs.PriceRange.Min {
			prefs.PriceRange = b.defaultRange
		}
		p.Preferences = prefs
	}

	bookings, err := b.source.Bookings(ctx, userID)
	if err != nil {
		b.logger.Debug(ctx, "booking history unavailable",
			logger.String("userID", userID), logger.Error(err))
		metrics.RecordProfileFetchFallback()
		bookings = nil
	}
	p.BookingHistory = bookings

	searches, err := b.source.SearchHistory(ctx, userID)
	if err != nil {
		b.logger.Debug(ctx, "search history unavailable",
			logger.String("userID", userID), logger.Error(err))
		metrics.RecordProfileFetchFallback()
		searches = nil
	}
	if len(searches) > model.MaxSearchHistory {
		searches = searches[len(searches)-model.MaxSearchHistory:]
	}
	p.SearchHistory = searches

	p.Patterns = DerivePatterns(p.BookingHistory)

	metrics.RecordProfileBuild()

	return p
}
