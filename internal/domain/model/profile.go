package model

import "time"

// MaxSearchHistory bounds the per-user search history. The store
// evicts the oldest entry once the cap is reached.
const MaxSearchHistory = 50

// PriceRange is an inclusive [Min, Max] hourly price preference.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether price falls inside the range.
func (r PriceRange) Contains(price float64) bool {
	return price >= r.Min && price <= r.Max
}

// Preferences are the renter's stated preferences.
type Preferences struct {
	SpaceTypes []string   `json:"space_types"`
	PriceRange PriceRange `json:"price_range"`
	Locations  []string   `json:"locations"`
	Amenities  []string   `json:"amenities"`
}

// SearchQuery is one past search with its filters and the results the
// user clicked on.
type SearchQuery struct {
	Query          string            `json:"query"`
	Filters        map[string]string `json:"filters,omitempty"`
	ClickedResults []string          `json:"clicked_results,omitempty"`
	At             time.Time         `json:"at"`
}

// Booking is a completed booking used as behavioral signal.
type Booking struct {
	ListingID     string    `json:"listing_id"`
	Date          time.Time `json:"date"`
	DurationHours float64   `json:"duration_hours"`
	Price         float64   `json:"price"`
	// Rating is optional; nil means the renter never rated the stay.
	Rating *float64 `json:"rating,omitempty"`
}

// PatternType enumerates the behavior pattern variants.
type PatternType string

const (
	PatternPriceSensitivity   PatternType = "price_sensitivity"
	PatternBookingTiming      PatternType = "booking_timing"
	PatternSearchFrequency    PatternType = "search_frequency"
	PatternLocationPreference PatternType = "location_preference"
)

// BehaviorPattern is a derived behavioral signal with a confidence in
// [0,1]. Only the fields relevant to its Type are populated.
type BehaviorPattern struct {
	Type       PatternType `json:"type"`
	Confidence float64     `json:"confidence"`

	// price_sensitivity
	AveragePrice  float64 `json:"average_price,omitempty"`
	PriceVariance float64 `json:"price_variance,omitempty"`

	// booking_timing: most frequent booking hours of day, most
	// frequent first, at most three.
	PeakHours []int `json:"peak_hours,omitempty"`
}

// BehaviorProfile is a per-request summary of a user's preferences and
// historical activity. It is rebuilt on every request and never
// persisted by the engine.
type BehaviorProfile struct {
	UserID         string            `json:"user_id"`
	Preferences    Preferences       `json:"preferences"`
	SearchHistory  []SearchQuery     `json:"search_history"`
	BookingHistory []Booking         `json:"booking_history"`
	Patterns       []BehaviorPattern `json:"patterns"`
}
