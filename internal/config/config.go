// Package config defines service configuration structures and loading hooks.
//
// Conventions:
//   - Keep policy values (weights, thresholds, penalties) here; they are
//     configuration taken from product policy, never derived at runtime.
//   - Provide New(...) to build a Config with defaults.
//   - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// ScoringConcurrency bounds the parallel per-listing scoring fan-out.
	ScoringConcurrency int `koanf:"scoring_concurrency"`

	// MatchThreshold is the minimum (exclusive) feature score for a
	// listing to count as a match.
	MatchThreshold float64 `koanf:"match_threshold"`

	// RecommendThreshold is the minimum (exclusive) weighted score for
	// a listing to be recommended.
	RecommendThreshold float64 `koanf:"recommend_threshold"`

	// MaxRecommendations caps the recommendation result set.
	MaxRecommendations int `koanf:"max_recommendations"`

	// ProfileFetchTimeoutMS bounds profile/history store reads.
	ProfileFetchTimeoutMS int `koanf:"profile_fetch_timeout_ms"`

	// EnhancerTimeoutMS bounds optional text-enhancement calls.
	EnhancerTimeoutMS int `koanf:"enhancer_timeout_ms"`

	// DefaultPriceMin/Max is the price range assumed for users with no
	// stored preferences.
	DefaultPriceMin float64 `koanf:"default_price_min"`
	DefaultPriceMax float64 `koanf:"default_price_max"`

	// PriceAffinityTolerance is the relative band around a historical
	// booking price that counts as "similar", e.g. 0.2 for +/-20%.
	PriceAffinityTolerance float64 `koanf:"price_affinity_tolerance"`

	// MatchConfidenceWeights weighs satisfied factors into the match
	// confidence, keyed by factor name (type, price, location).
	MatchConfidenceWeights map[string]float64 `koanf:"match_confidence_weights"`

	// RecommendWeights weighs the recommendation factors, keyed by
	// type, price, location, history, criteria.
	RecommendWeights map[string]float64 `koanf:"recommend_weights"`

	// SearchWeights weighs the search relevance terms, keyed by
	// text, preference, price, location.
	SearchWeights map[string]float64 `koanf:"search_weights"`

	// UrgentDealRatio and OverpricedRatio bound the price-relative
	// urgency bands for recommendations.
	UrgentDealRatio float64 `koanf:"urgent_deal_ratio"`
	OverpricedRatio float64 `koanf:"overpriced_ratio"`

	// TrustFlagThreshold: trust scores strictly below this auto-flag.
	TrustFlagThreshold int `koanf:"trust_flag_threshold"`

	// DocConfidenceMin is the verification confidence below which an
	// uploaded identity document is treated as low-confidence.
	DocConfidenceMin float64 `koanf:"doc_confidence_min"`

	// NewAccountMaxAgeDays bounds the "new account" risk window.
	NewAccountMaxAgeDays int `koanf:"new_account_max_age_days"`

	// HighValueDailyPrice is the daily-equivalent price above which a
	// new account is considered high value.
	HighValueDailyPrice float64 `koanf:"high_value_daily_price"`

	// AbnormalHourlyPrice/AbnormalDailyPrice bound the abnormal
	// pricing signal.
	AbnormalHourlyPrice float64 `koanf:"abnormal_hourly_price"`
	AbnormalDailyPrice  float64 `koanf:"abnormal_daily_price"`

	// RapidListingCount listings within RapidListingWindowHours by one
	// owner trigger the volume signal (strictly greater than).
	RapidListingCount       int `koanf:"rapid_listing_count"`
	RapidListingWindowHours int `koanf:"rapid_listing_window_hours"`

	// TrustPenalties maps signal codes to their score deductions.
	TrustPenalties map[string]int `koanf:"trust_penalties"`
}

// New creates a Config with defaults. Context is accepted first to
// satisfy the project-wide convention; it is reserved for future use.
func New(_ context.Context) *Config {
	c := &Config{
		LogLevel:               "info",
		Addr:                   ":9080",
		ScoringConcurrency:     runtime.NumCPU() * 2,
		MatchThreshold:         0.3,
		RecommendThreshold:     0.4,
		MaxRecommendations:     10,
		ProfileFetchTimeoutMS:  500,
		EnhancerTimeoutMS:      800,
		DefaultPriceMin:        0,
		DefaultPriceMax:        100,
		PriceAffinityTolerance: 0.2,
		MatchConfidenceWeights: map[string]float64{
			"type":     0.3,
			"price":    0.3,
			"location": 0.4,
		},
		RecommendWeights: map[string]float64{
			"type":     0.25,
			"price":    0.25,
			"location": 0.2,
			"history":  0.2,
			"criteria": 0.1,
		},
		SearchWeights: map[string]float64{
			"text":       0.4,
			"preference": 0.3,
			"price":      0.2,
			"location":   0.1,
		},
		UrgentDealRatio:         0.8,
		OverpricedRatio:         1.2,
		TrustFlagThreshold:      60,
		DocConfidenceMin:        50,
		NewAccountMaxAgeDays:    7,
		HighValueDailyPrice:     100,
		AbnormalHourlyPrice:     100,
		AbnormalDailyPrice:      500,
		RapidListingCount:       5,
		RapidListingWindowHours: 24,
		TrustPenalties: map[string]int{
			"missing_identity_document": 30,
			"low_document_confidence":   40,
			"new_account_high_value":    20,
			"abnormal_pricing":          15,
			"rapid_listing_creation":    15,
		},
	}
	return c
}
