// Package recommend suggests active listings to a renter based on
// behavioral history and optional explicit criteria.
package recommend

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spotnest/matchd/internal/domain/model"
	"github.com/spotnest/matchd/internal/domain/scoring"
	"github.com/spotnest/matchd/pkg/logger"
	"github.com/spotnest/matchd/pkg/metrics"
)

// Default recommendation policy constants.
const (
	defaultThreshold       = 0.4
	defaultLimit           = 10
	defaultTypeWeight      = 0.25
	defaultPriceWeight     = 0.25
	defaultLocationWeight  = 0.2
	defaultHistoryWeight   = 0.2
	defaultCriteriaWeight  = 0.1
	defaultUrgentRatio     = 0.8
	defaultOverpricedRatio = 1.2
	defaultConcurrency     = 8

	historyAffinityTolerance = 0.2
	confidenceRampBookings   = 10
)

// ProfileBuilder assembles the renter's behavior profile.
type ProfileBuilder interface {
	Build(ctx context.Context, userID string) model.BehaviorProfile
}

// ListingSource provides the active listing inventory.
type ListingSource interface {
	Active(ctx context.Context) ([]model.Listing, error)
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithThreshold sets the minimum (exclusive) score to recommend.
func WithThreshold(threshold float64) Option {
	return func(e *Engine) {
		if threshold >= 0 && threshold <= 1 {
			e.threshold = threshold
		}
	}
}

// WithLimit caps the number of returned recommendations.
func WithLimit(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.limit = n
		}
	}
}

// WithWeights sets per-factor score weights from a configuration map.
func WithWeights(weights map[string]float64) Option {
	return func(e *Engine) {
		set := func(dst *float64, key string) {
			if w, ok := weights[key]; ok && w >= 0 {
				*dst = w
			}
		}
		set(&e.typeWeight, scoring.FactorType)
		set(&e.priceWeight, scoring.FactorPrice)
		set(&e.locationWeight, scoring.FactorLocation)
		set(&e.historyWeight, scoring.FactorHistory)
		set(&e.criteriaWeight, "criteria")
	}
}

// WithUrgencyRatios sets the price ratios that mark a listing as an
// urgent deal or overpriced relative to the renter's budget.
func WithUrgencyRatios(urgent, overpriced float64) Option {
	return func(e *Engine) {
		if urgent > 0 {
			e.urgentRatio = urgent
		}
		if overpriced > 0 {
			e.overpricedRatio = overpriced
		}
	}
}

// WithConcurrency bounds the parallel scoring fan-out.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithMessagePicker overrides the template selection used for
// personalized messages. The picker receives the template count and
// returns an index; it never influences scores or ordering.
func WithMessagePicker(pick func(n int) int) Option {
	return func(e *Engine) {
		if pick != nil {
			e.pick = pick
		}
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// Engine produces personalized recommendations. Safe for concurrent
// use.
type Engine struct {
	profiles ProfileBuilder
	listings ListingSource

	threshold       float64
	limit           int
	typeWeight      float64
	priceWeight     float64
	locationWeight  float64
	historyWeight   float64
	criteriaWeight  float64
	urgentRatio     float64
	overpricedRatio float64
	concurrency     int

	pickMu sync.Mutex
	pick   func(n int) int

	logger logger.Logger
}

// NewEngine creates a recommendation engine over the given profile
// builder and listing source.
func NewEngine(profiles ProfileBuilder, listings ListingSource, opts ...Option) *Engine {
	e := &Engine{
		profiles:        profiles,
		listings:        listings,
		threshold:       defaultThreshold,
		limit:           defaultLimit,
		typeWeight:      defaultTypeWeight,
		priceWeight:     defaultPriceWeight,
		locationWeight:  defaultLocationWeight,
		historyWeight:   defaultHistoryWeight,
		criteriaWeight:  defaultCriteriaWeight,
		urgentRatio:     defaultUrgentRatio,
		overpricedRatio: defaultOverpricedRatio,
		concurrency:     defaultConcurrency,
		logger:          logger.Get().Named("recommend"),
	}
	e.pick = seededPicker(time.Now().UnixNano())
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Suggest builds the renter's profile, scores every active listing
// against it, and returns the top recommendations above the threshold
// sorted by score descending with listing ID as the tie-break. A
// listing inventory failure degrades to an empty result.
func (e *Engine) Suggest(ctx context.Context, userID string, criteria model.SearchCriteria) []model.Recommendation {
	profile := e.profiles.Build(ctx, userID)

	inventory, err := e.listings.Active(ctx)
	if err != nil {
		e.logger.Warn(ctx, "listing inventory unavailable, recommending nothing",
			logger.String("user_id", userID),
			logger.Error(err))
		return []model.Recommendation{}
	}

	meanPrice := scoring.MeanBookingPrice(profile.BookingHistory)
	confidence := scoring.Clamp01(float64(len(profile.BookingHistory)) / confidenceRampBookings)

	scored := scoring.FanOut(ctx, inventory, e.concurrency, func(l model.Listing) *model.Recommendation {
		return e.recommendOne(l, profile, criteria, meanPrice, confidence)
	})

	recs := make([]model.Recommendation, 0, len(scored))
	for _, r := range scored {
		if r != nil {
			recs = append(recs, *r)
		}
	}

	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		return recs[i].ListingID < recs[j].ListingID
	})
	if len(recs) > e.limit {
		recs = recs[:e.limit]
	}

	metrics.RecordRecommendationsServed(len(recs))

	return recs
}

// recommendOne scores a single listing, returning nil when it does
// not clear the threshold.
func (e *Engine) recommendOne(listing model.Listing, profile model.BehaviorProfile, criteria model.SearchCriteria, meanPrice, confidence float64) *model.Recommendation {
	prefs := profile.Preferences

	var score float64
	var reasons []string

	if scoring.TypeMatch(listing, prefs) {
		score += e.typeWeight
		reasons = append(reasons, "matches your preferred space type "+listing.Type)
	}
	if scoring.PriceInRange(listing, prefs) {
		score += e.priceWeight
		reasons = append(reasons, "priced within your usual budget")
	}
	if scoring.LocationMatch(listing, prefs) {
		score += e.locationWeight
		reasons = append(reasons, "located in an area you prefer")
	}
	if scoring.NearPrice(listing.HourlyPrice, meanPrice, historyAffinityTolerance) {
		score += e.historyWeight
		reasons = append(reasons, "close to what you typically pay")
	}
	if criteria.SpaceType != "" && strings.EqualFold(criteria.SpaceType, listing.Type) {
		score += e.criteriaWeight
		reasons = append(reasons, "matches your current search")
	}

	score = scoring.Clamp01(score)
	if score <= e.threshold {
		return nil
	}

	return &model.Recommendation{
		ListingID:           listing.ID,
		Score:               score,
		Confidence:          confidence,
		Reasons:             reasons,
		SuggestedPrice:      math.Min(listing.HourlyPrice, prefs.PriceRange.Max),
		Urgency:             e.urgency(listing, prefs),
		PersonalizedMessage: e.message(listing),
	}
}

// urgency classifies the listing price against the renter's budget.
// Prices far below the budget floor are deals worth acting on fast,
// prices far above the ceiling can wait.
func (e *Engine) urgency(listing model.Listing, prefs model.Preferences) model.Urgency {
	switch {
	case prefs.PriceRange.Min > 0 && listing.HourlyPrice < e.urgentRatio*prefs.PriceRange.Min:
		return model.UrgencyHigh
	case prefs.PriceRange.Max > 0 && listing.HourlyPrice > e.overpricedRatio*prefs.PriceRange.Max:
		return model.UrgencyLow
	default:
		return model.UrgencyMedium
	}
}

func (e *Engine) message(listing model.Listing) string {
	e.pickMu.Lock()
	idx := e.pick(len(MessageTemplates))
	e.pickMu.Unlock()
	if idx < 0 || idx >= len(MessageTemplates) {
		idx = 0
	}
	return RenderMessage(MessageTemplates[idx], listing)
}
