// Package scoring computes per-factor preference scores for
// (listing, profile) pairs. All functions are pure: identical inputs
// always yield identical breakdowns.
package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/spotnest/matchd/internal/domain/model"
)

// Factor names used in breakdowns and confidence weighting.
const (
	FactorType     = "type"
	FactorPrice    = "price"
	FactorLocation = "location"
	FactorHistory  = "history"
)

// defaultPriceAffinityTolerance is the relative band around a past
// booking price that counts as "similar".
const defaultPriceAffinityTolerance = 0.2

// Factor is one applicable scoring factor and whether the listing
// satisfied it.
type Factor struct {
	Name      string
	Satisfied bool
	Reason    string // human-readable, set when satisfied
}

// Breakdown is the result of scoring a single listing against a
// profile. Factors holds only the factors applicable to this call;
// inapplicable factors are excluded from the denominator rather than
// scored as zero.
type Breakdown struct {
	Score   float64 // satisfied / applicable, in [0,1]
	Factors []Factor
}

// Satisfied reports whether the named factor was applicable and met.
func (b Breakdown) Satisfied(name string) bool {
	for _, f := range b.Factors {
		if f.Name == name {
			return f.Satisfied
		}
	}
	return false
}

// Reasons returns the reason line of every satisfied factor, in
// factor-evaluation order.
func (b Breakdown) Reasons() []string {
	var out []string
	for _, f := range b.Factors {
		if f.Satisfied {
			out = append(out, f.Reason)
		}
	}
	return out
}

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithPriceAffinityTolerance sets the relative band for the
// historical-price affinity factor, e.g. 0.2 for +/-20%.
func WithPriceAffinityTolerance(tolerance float64) Option {
	return func(s *Scorer) {
		if tolerance > 0 {
			s.tolerance = tolerance
		}
	}
}

// Scorer computes equal-weighted factor scores for listings.
type Scorer struct {
	tolerance float64
}

// NewScorer creates a scorer with configuration options.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{
		tolerance: defaultPriceAffinityTolerance,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score evaluates the four preference factors for one listing. Each
// applicable factor contributes 1/len(applicable) to the total; a
// listing with no applicable factors scores zero.
func (s *Scorer) Score(listing model.Listing, profile model.BehaviorProfile) Breakdown {
	prefs := profile.Preferences
	var factors []Factor

	if len(prefs.SpaceTypes) > 0 {
		factors = append(factors, Factor{
			Name:      FactorType,
			Satisfied: TypeMatch(listing, prefs),
			Reason:    fmt.Sprintf("space type %q is among your preferred types", listing.Type),
		})
	}

	if prefs.PriceRange.Max > 0 {
		factors = append(factors, Factor{
			Name:      FactorPrice,
			Satisfied: PriceInRange(listing, prefs),
			Reason: fmt.Sprintf("$%.2f/hr fits your $%.0f-$%.0f budget",
				listing.HourlyPrice, prefs.PriceRange.Min, prefs.PriceRange.Max),
		})
	}

	if len(prefs.Locations) > 0 {
		matched, ok := matchedLocation(listing, prefs)
		reason := ""
		if ok {
			reason = fmt.Sprintf("located in a preferred area (%s)", matched)
		}
		factors = append(factors, Factor{
			Name:      FactorLocation,
			Satisfied: ok,
			Reason:    reason,
		})
	}

	if len(profile.BookingHistory) > 0 {
		factors = append(factors, Factor{
			Name:      FactorHistory,
			Satisfied: s.historicalAffinity(listing, profile.BookingHistory),
			Reason:    "priced similarly to spaces you have booked before",
		})
	}

	if len(factors) == 0 {
		return Breakdown{}
	}

	satisfied := 0
	for i := range factors {
		if factors[i].Satisfied {
			satisfied++
		} else {
			factors[i].Reason = ""
		}
	}

	return Breakdown{
		Score:   Clamp01(float64(satisfied) / float64(len(factors))),
		Factors: factors,
	}
}

// historicalAffinity reports whether any past booking was priced
// within the tolerance band of the listing's hourly price.
func (s *Scorer) historicalAffinity(listing model.Listing, bookings []model.Booking) bool {
	for _, b := range bookings {
		if NearPrice(b.Price, listing.HourlyPrice, s.tolerance) {
			return true
		}
	}
	return false
}

// TypeMatch reports whether the listing type is a preferred type
// (case-insensitive).
func TypeMatch(listing model.Listing, prefs model.Preferences) bool {
	for _, t := range prefs.SpaceTypes {
		if strings.EqualFold(t, listing.Type) {
			return true
		}
	}
	return false
}

// PriceInRange reports whether the listing's hourly price falls within
// the preferred range.
func PriceInRange(listing model.Listing, prefs model.Preferences) bool {
	return prefs.PriceRange.Contains(listing.HourlyPrice)
}

// LocationMatch reports whether the listing address contains any
// preferred location token (case-insensitive substring).
func LocationMatch(listing model.Listing, prefs model.Preferences) bool {
	_, ok := matchedLocation(listing, prefs)
	return ok
}

func matchedLocation(listing model.Listing, prefs model.Preferences) (string, bool) {
	address := strings.ToLower(listing.Address)
	for _, loc := range prefs.Locations {
		token := strings.TrimSpace(loc)
		if token == "" {
			continue
		}
		if strings.Contains(address, strings.ToLower(token)) {
			return loc, true
		}
	}
	return "", false
}

// NearPrice reports whether price is within the relative tolerance
// band around target, e.g. tolerance 0.2 accepts [0.8t, 1.2t].
func NearPrice(price, target, tolerance float64) bool {
	if target <= 0 {
		return false
	}
	return math.Abs(price-target) <= target*tolerance
}

// MeanBookingPrice returns the mean price over bookings, or 0 when
// there are none.
func MeanBookingPrice(bookings []model.Booking) float64 {
	if len(bookings) == 0 {
		return 0
	}
	var sum float64
	for _, b := range bookings {
		sum += b.Price
	}
	return sum / float64(len(bookings))
}

// Clamp01 clamps v to [0,1].
func Clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
