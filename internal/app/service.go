// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spotnest/matchd/internal/adapters/enhance"
	"github.com/spotnest/matchd/internal/adapters/moderation"
	"github.com/spotnest/matchd/internal/adapters/store"
	"github.com/spotnest/matchd/internal/config"
	"github.com/spotnest/matchd/internal/domain/match"
	"github.com/spotnest/matchd/internal/domain/model"
	"github.com/spotnest/matchd/internal/domain/profile"
	"github.com/spotnest/matchd/internal/domain/recommend"
	"github.com/spotnest/matchd/internal/domain/scoring"
	"github.com/spotnest/matchd/internal/domain/search"
	"github.com/spotnest/matchd/internal/domain/trust"
	"github.com/spotnest/matchd/pkg/logger"
	"github.com/spotnest/matchd/pkg/metrics"
)

// Service wires the matching, recommendation, search and trust
// engines over the profile, listing and moderation stores.
type Service struct {
	mu sync.RWMutex

	cfg *config.Config

	// Stores
	profiles   store.ProfileStore
	listings   store.ListingStore
	moderation moderation.Store

	// Core components
	builder     *profile.Builder
	matcher     *match.Engine
	recommender *recommend.Engine
	ranker      *search.Ranker
	truster     *trust.Scorer

	// Optional collaborator wrapped in a timeout guard at Start.
	enhancer enhance.Enhancer

	started bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithProfileStore injects a profile store, replacing the default
// in-memory one.
func WithProfileStore(s store.ProfileStore) Option {
	return func(svc *Service) {
		if s != nil {
			svc.profiles = s
		}
	}
}

// WithListingStore injects a listing store, replacing the default
// in-memory one.
func WithListingStore(s store.ListingStore) Option {
	return func(svc *Service) {
		if s != nil {
			svc.listings = s
		}
	}
}

// WithModerationStore injects a moderation store, replacing the
// default in-memory one.
func WithModerationStore(s moderation.Store) Option {
	return func(svc *Service) {
		if s != nil {
			svc.moderation = s
		}
	}
}

// WithEnhancer sets the optional text enhancer. It is wrapped in a
// timeout guard when the service starts.
func WithEnhancer(e enhance.Enhancer) Option {
	return func(svc *Service) {
		if e != nil {
			svc.enhancer = e
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(svc *Service) {
		if l != nil {
			svc.logger = l
		}
	}
}

// New constructs a Service from the given configuration.
func New(cfg *config.Config, opts ...Option) *Service {
	s := &Service{
		cfg: cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start assembles the engines over the configured stores. Calling
// Start on a started service is a no-op.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting matching service")

	if s.profiles == nil {
		s.profiles = store.NewMemoryProfileStore()
	}
	if s.listings == nil {
		s.listings = store.NewMemoryListingStore()
	}
	if s.moderation == nil {
		s.moderation = moderation.NewMemoryStore()
	}

	s.builder = profile.NewBuilder(s.profiles,
		profile.WithFetchTimeout(time.Duration(s.cfg.ProfileFetchTimeoutMS)*time.Millisecond),
		profile.WithDefaultPriceRange(s.cfg.DefaultPriceMin, s.cfg.DefaultPriceMax),
	)

	scorer := scoring.NewScorer(
		scoring.WithPriceAffinityTolerance(s.cfg.PriceAffinityTolerance),
	)

	matchOpts := []match.Option{
		match.WithThreshold(s.cfg.MatchThreshold),
		match.WithConfidenceWeights(s.cfg.MatchConfidenceWeights),
		match.WithConcurrency(s.cfg.ScoringConcurrency),
	}
	if s.enhancer != nil {
		guard := enhance.NewGuard(s.enhancer,
			enhance.WithTimeout(time.Duration(s.cfg.EnhancerTimeoutMS)*time.Millisecond),
		)
		matchOpts = append(matchOpts, match.WithEnhancer(guard))
	}
	s.matcher = match.NewEngine(scorer, matchOpts...)

	s.recommender = recommend.NewEngine(s.builder, s.listings,
		recommend.WithThreshold(s.cfg.RecommendThreshold),
		recommend.WithLimit(s.cfg.MaxRecommendations),
		recommend.WithWeights(s.cfg.RecommendWeights),
		recommend.WithUrgencyRatios(s.cfg.UrgentDealRatio, s.cfg.OverpricedRatio),
		recommend.WithConcurrency(s.cfg.ScoringConcurrency),
	)

	s.ranker = search.NewRanker(scorer,
		search.WithWeights(s.cfg.SearchWeights),
		search.WithConcurrency(s.cfg.ScoringConcurrency),
	)

	s.truster = trust.NewScorer(s.listings, s.moderation,
		trust.WithFlagThreshold(s.cfg.TrustFlagThreshold),
		trust.WithDocConfidenceMin(s.cfg.DocConfidenceMin),
		trust.WithNewAccountWindow(time.Duration(s.cfg.NewAccountMaxAgeDays)*24*time.Hour),
		trust.WithHighValueDailyPrice(s.cfg.HighValueDailyPrice),
		trust.WithAbnormalPrices(s.cfg.AbnormalHourlyPrice, s.cfg.AbnormalDailyPrice),
		trust.WithRapidListingPolicy(s.cfg.RapidListingCount, time.Duration(s.cfg.RapidListingWindowHours)*time.Hour),
		trust.WithPenalties(s.cfg.TrustPenalties),
	)

	s.started = true
	s.logger.Info(ctx, "matching service started",
		logger.Int("scoring_concurrency", s.cfg.ScoringConcurrency),
		logger.Float64("match_threshold", s.cfg.MatchThreshold),
		logger.Float64("recommend_threshold", s.cfg.RecommendThreshold),
	)

	return nil
}

// Stop shuts the service down. Engines are stateless, so there is
// nothing to drain; the flag only gates the API.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "matching service stopped")
}

// FindOptimalMatches builds the renter's profile and returns the
// ranked matches over the active inventory. An inventory failure
// degrades to an empty result.
func (s *Service) FindOptimalMatches(ctx context.Context, userID string) []model.Match {
	prof := s.builder.Build(ctx, userID)

	inventory, err := s.listings.Active(ctx)
	if err != nil {
		s.logger.Warn(ctx, "listing inventory unavailable, matching nothing",
			logger.String("user_id", userID),
			logger.Error(err))
		return []model.Match{}
	}

	return s.matcher.FindOptimalMatches(ctx, prof, inventory)
}

// SuggestSpacesBasedOnHistory returns personalized recommendations
// for the renter, optionally biased by explicit search criteria.
func (s *Service) SuggestSpacesBasedOnHistory(ctx context.Context, userID string, criteria model.SearchCriteria) []model.Recommendation {
	return s.recommender.Suggest(ctx, userID, criteria)
}

// RankSearchResults ranks the active inventory against the query and
// the renter's profile, and records the search in the renter's
// history. A history write failure never fails the search.
func (s *Service) RankSearchResults(ctx context.Context, userID, query string) ([]model.RankedResult, error) {
	prof := s.builder.Build(ctx, userID)

	inventory, err := s.listings.Active(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching active listings: %w", err)
	}

	results := s.ranker.Rank(ctx, query, inventory, prof)

	if userID != "" && query != "" {
		if err := s.profiles.AppendSearch(ctx, userID, model.SearchQuery{Query: query, At: time.Now()}); err != nil {
			s.logger.Warn(ctx, "recording search history failed",
				logger.String("user_id", userID),
				logger.Error(err))
		}
	}

	return results, nil
}

// CheckListingForAutoFlag runs a trust assessment for the listing and
// auto-flags it when the score falls below the configured threshold.
func (s *Service) CheckListingForAutoFlag(ctx context.Context, listingID, ownerID string) (trust.Assessment, error) {
	a, err := s.truster.CheckListingForAutoFlag(ctx, listingID, ownerID)
	if err != nil {
		return trust.Assessment{}, err
	}
	s.refreshFlagGauges(ctx)
	return a, nil
}

// ReportListing records a user report against a listing.
func (s *Service) ReportListing(ctx context.Context, listingID, reporterID, reason string) (model.Flag, error) {
	f, err := s.truster.ReportListing(ctx, listingID, reporterID, reason)
	if err != nil {
		return model.Flag{}, err
	}
	s.refreshFlagGauges(ctx)
	return f, nil
}

// UpdateFlagStatus moves a flag along its review lifecycle.
func (s *Service) UpdateFlagStatus(ctx context.Context, flagID string, status model.FlagStatus, reviewerID, notes string) (model.Flag, error) {
	if !status.Valid() {
		return model.Flag{}, fmt.Errorf("status %q: %w", status, moderation.ErrInvalidStatus)
	}

	f, err := s.moderation.Transition(ctx, flagID, status, reviewerID, notes)
	if err != nil {
		return model.Flag{}, err
	}

	metrics.RecordFlagTransition()
	s.refreshFlagGauges(ctx)

	return f, nil
}

// DismissAllFlags dismisses every open flag for a listing and resets
// its flag count in one atomic step.
func (s *Service) DismissAllFlags(ctx context.Context, listingID, reviewerID string) (int, error) {
	n, err := s.moderation.DismissAll(ctx, listingID, reviewerID)
	if err != nil {
		return 0, err
	}

	metrics.RecordFlagsDismissed(n)
	s.refreshFlagGauges(ctx)

	s.logger.Info(ctx, "dismissed all open flags",
		logger.String("listing_id", listingID),
		logger.String("reviewer_id", reviewerID),
		logger.Int("dismissed", n))

	return n, nil
}

// FlagsForListing returns every flag ever raised on a listing.
func (s *Service) FlagsForListing(ctx context.Context, listingID string) ([]model.Flag, error) {
	return s.moderation.ByListing(ctx, listingID)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":             s.started,
		"scoring_concurrency": s.cfg.ScoringConcurrency,
		"match_threshold":     s.cfg.MatchThreshold,
		"recommend_threshold": s.cfg.RecommendThreshold,
	}

	if !s.started {
		return stats
	}

	ctx := context.Background()
	openFlags := s.moderation.OpenCount(ctx)
	stats["open_flags"] = openFlags
	metrics.UpdateOpenFlags(openFlags)

	if m, ok := s.listings.(*store.MemoryListingStore); ok {
		n := m.ListingCount()
		stats["tracked_listings"] = n
		metrics.UpdateTrackedListings(n)
	}
	if m, ok := s.profiles.(*store.MemoryProfileStore); ok {
		n := m.UserCount()
		stats["tracked_profiles"] = n
		metrics.UpdateTrackedProfiles(n)
	}

	return stats
}

// ProfileStore exposes the profile store for seeding.
func (s *Service) ProfileStore() store.ProfileStore { return s.profiles }

// ListingStore exposes the listing store for seeding.
func (s *Service) ListingStore() store.ListingStore { return s.listings }

func (s *Service) refreshFlagGauges(ctx context.Context) {
	metrics.UpdateOpenFlags(s.moderation.OpenCount(ctx))
}
