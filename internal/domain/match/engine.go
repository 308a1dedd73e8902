// Package match produces ranked matches for a renter against a
// candidate listing set.
package match

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/spotnest/matchd/internal/domain/model"
	"github.com/spotnest/matchd/internal/domain/scoring"
	"github.com/spotnest/matchd/pkg/logger"
	"github.com/spotnest/matchd/pkg/metrics"
)

// Default match policy constants.
const (
	defaultThreshold      = 0.3
	defaultTypeWeight     = 0.3
	defaultPriceWeight    = 0.3
	defaultLocationWeight = 0.4
	defaultConcurrency    = 8
)

// ReasonEnhancer optionally polishes reason text after ranking. It
// must never reorder or rescore; failures leave results unchanged.
type ReasonEnhancer interface {
	EnhanceReasons(ctx context.Context, listingID string, reasons []string) ([]string, error)
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithThreshold sets the minimum (exclusive) score for a match.
func WithThreshold(threshold float64) Option {
	return func(e *Engine) {
		if threshold >= 0 && threshold <= 1 {
			e.threshold = threshold
		}
	}
}

// WithConfidenceWeights sets the per-factor confidence weights from a
// configuration map keyed by factor name.
func WithConfidenceWeights(weights map[string]float64) Option {
	return func(e *Engine) {
		if w, ok := weights[scoring.FactorType]; ok && w >= 0 {
			e.typeWeight = w
		}
		if w, ok := weights[scoring.FactorPrice]; ok && w >= 0 {
			e.priceWeight = w
		}
		if w, ok := weights[scoring.FactorLocation]; ok && w >= 0 {
			e.locationWeight = w
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

// WithEnhancer sets the optional reason enhancer.
func WithEnhancer(enhancer ReasonEnhancer) Option {
	return func(e *Engine) {
		e.enhancer = enhancer
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

// Engine computes ranked matches. It is stateless given its inputs
// and safe for concurrent use.
type Engine struct {
	scorer         *scoring.Scorer
	threshold      float64
	typeWeight     float64
	priceWeight    float64
	locationWeight float64
	concurrency    int
	enhancer       ReasonEnhancer
	logger         logger.Logger
}

// NewEngine creates a match engine using scorer for factor evaluation.
func NewEngine(scorer *scoring.Scorer, opts ...Option) *Engine {
	e := &Engine{
		scorer:         scorer,
		threshold:      defaultThreshold,
		typeWeight:     defaultTypeWeight,
		priceWeight:    defaultPriceWeight,
		locationWeight: defaultLocationWeight,
		concurrency:    defaultConcurrency,
		logger:         logger.Get().Named("match"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FindOptimalMatches scores every candidate listing against the
// profile, keeps those strictly above the threshold, and returns them
// sorted by score descending with listing ID as the tie-break. The
// ordering is fully deterministic for identical inputs.
func (e *Engine) FindOptimalMatches(ctx context.Context, profile model.BehaviorProfile, listings []model.Listing) []model.Match {
	start := time.Now()

	scored := scoring.FanOut(ctx, listings, e.concurrency, func(l model.Listing) *model.Match {
		return e.matchOne(l, profile)
	})

	matches := make([]model.Match, 0, len(scored))
	for _, m := range scored {
		if m != nil {
			matches = append(matches, *m)
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ListingID < matches[j].ListingID
	})

	e.decorate(ctx, matches)

	metrics.ObserveScoringLatency(float64(time.Since(start).Milliseconds()))
	metrics.RecordMatchesComputed(len(matches))

	return matches
}

// matchOne scores a single listing, returning nil when it does not
// clear the threshold.
func (e *Engine) matchOne(listing model.Listing, profile model.BehaviorProfile) *model.Match {
	b := e.scorer.Score(listing, profile)
	if b.Score <= e.threshold {
		return nil
	}

	return &model.Match{
		ListingID:      listing.ID,
		Score:          b.Score,
		Confidence:     e.confidence(b),
		Reasons:        b.Reasons(),
		SuggestedPrice: math.Min(listing.HourlyPrice, profile.Preferences.PriceRange.Max),
	}
}

// confidence weighs the satisfied type/price/location factors. The
// weights are independent of the equal-factor match score.
func (e *Engine) confidence(b scoring.Breakdown) float64 {
	var c float64
	if b.Satisfied(scoring.FactorType) {
		c += e.typeWeight
	}
	if b.Satisfied(scoring.FactorPrice) {
		c += e.priceWeight
	}
	if b.Satisfied(scoring.FactorLocation) {
		c += e.locationWeight
	}
	return scoring.Clamp01(c)
}

// decorate runs the optional enhancer over the already-sorted matches.
// Scores and order are never touched; the guard layer guarantees a
// failing collaborator leaves the text as-is.
func (e *Engine) decorate(ctx context.Context, matches []model.Match) {
	if e.enhancer == nil {
		return
	}
	for i := range matches {
		enhanced, err := e.enhancer.EnhanceReasons(ctx, matches[i].ListingID, matches[i].Reasons)
		if err != nil || len(enhanced) == 0 {
			continue
		}
		matches[i].Reasons = enhanced
	}
}
