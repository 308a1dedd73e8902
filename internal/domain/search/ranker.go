// Package search ranks listing search results by blended textual and
// behavioral relevance.
package search

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spotnest/matchd/internal/domain/model"
	"github.com/spotnest/matchd/internal/domain/scoring"
	"github.com/spotnest/matchd/pkg/logger"
	"github.com/spotnest/matchd/pkg/metrics"
)

// Default relevance weights.
const (
	defaultTextWeight       = 0.4
	defaultPreferenceWeight = 0.3
	defaultPriceWeight      = 0.2
	defaultLocationWeight   = 0.1
	defaultConcurrency      = 8
)

// Weight map keys accepted by WithWeights.
const (
	WeightText       = "text"
	WeightPreference = "preference"
	WeightPrice      = "price"
	WeightLocation   = "location"
)

// Option applies a configuration option to the Ranker.
type Option func(*Ranker)

// WithWeights sets the relevance blend from a configuration map.
func WithWeights(weights map[string]float64) Option {
	return func(r *Ranker) {
		set := func(dst *float64, key string) {
			if w, ok := weights[key]; ok && w >= 0 {
				*dst = w
			}
		}
		set(&r.textWeight, WeightText)
		set(&r.preferenceWeight, WeightPreference)
		set(&r.priceWeight, WeightPrice)
		set(&r.locationWeight, WeightLocation)
	}
}

// WithConcurrency bounds the parallel scoring fan-out.
func WithConcurrency(n int) Option {
	return func(r *Ranker) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithLogger sets a custom logger for the ranker.
func WithLogger(l logger.Logger) Option {
	return func(r *Ranker) {
		if l != nil {
			r.logger = l
		}
	}
}

// Ranker orders search results. It applies no threshold; every
// candidate comes back with a contiguous 1-indexed rank.
type Ranker struct {
	scorer           *scoring.Scorer
	textWeight       float64
	preferenceWeight float64
	priceWeight      float64
	locationWeight   float64
	concurrency      int
	logger           logger.Logger
}

// NewRanker creates a search ranker using scorer for the behavioral
// relevance component.
func NewRanker(scorer *scoring.Scorer, opts ...Option) *Ranker {
	r := &Ranker{
		scorer:           scorer,
		textWeight:       defaultTextWeight,
		preferenceWeight: defaultPreferenceWeight,
		priceWeight:      defaultPriceWeight,
		locationWeight:   defaultLocationWeight,
		concurrency:      defaultConcurrency,
		logger:           logger.Get().Named("search"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rank scores every candidate against the query text and the renter's
// profile and returns the full set sorted by relevance descending,
// ties broken by listing ID ascending. Ranks are assigned 1..N after
// the sort.
func (r *Ranker) Rank(ctx context.Context, query string, listings []model.Listing, profile model.BehaviorProfile) []model.RankedResult {
	start := time.Now()
	tokens := queryTokens(query)

	results := scoring.FanOut(ctx, listings, r.concurrency, func(l model.Listing) model.RankedResult {
		return r.rankOne(l, tokens, profile)
	})

	sort.Slice(results, func(i, j int) bool {
		if results[i].Relevance != results[j].Relevance {
			return results[i].Relevance > results[j].Relevance
		}
		return results[i].ListingID < results[j].ListingID
	})
	for i := range results {
		results[i].Rank = i + 1
	}

	metrics.RecordSearchRanked()
	metrics.ObserveScoringLatency(float64(time.Since(start).Milliseconds()))

	return results
}

func (r *Ranker) rankOne(listing model.Listing, tokens []string, profile model.BehaviorProfile) model.RankedResult {
	prefs := profile.Preferences

	overlap := tokenOverlap(listing, tokens)
	features := r.scorer.Score(listing, profile)

	var relevance float64
	var reasons []string

	if overlap > 0 {
		relevance += r.textWeight * overlap
		reasons = append(reasons, fmt.Sprintf("matches %.0f%% of your search terms", overlap*100))
	}
	if features.Score > 0 {
		relevance += r.preferenceWeight * features.Score
		reasons = append(reasons, "fits your saved preferences")
	}
	if scoring.PriceInRange(listing, prefs) {
		relevance += r.priceWeight
		reasons = append(reasons, "priced within your budget")
	}
	if scoring.LocationMatch(listing, prefs) {
		relevance += r.locationWeight
		reasons = append(reasons, "located in an area you prefer")
	}

	return model.RankedResult{
		ListingID:  listing.ID,
		Relevance:  scoring.Clamp01(relevance),
		Confidence: overlap,
		Reasons:    reasons,
	}
}

// queryTokens lowercases and deduplicates the query's whitespace
// separated terms. An empty query yields no tokens.
func queryTokens(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	seen := make(map[string]struct{}, len(fields))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		tokens = append(tokens, f)
	}
	return tokens
}

// tokenOverlap returns the fraction of query tokens found in the
// listing's title, description, or address.
func tokenOverlap(listing model.Listing, tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	haystack := strings.ToLower(listing.Title + " " + listing.Description + " " + listing.Address)
	var hits int
	for _, t := range tokens {
		if strings.Contains(haystack, t) {
			hits++
		}
	}
	return float64(hits) / float64(len(tokens))
}
