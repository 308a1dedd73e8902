package model

// Match pairs a listing with its fit against a renter's preferences.
type Match struct {
	ListingID      string   `json:"listing_id"`
	Score          float64  `json:"score"`      // [0,1]
	Confidence     float64  `json:"confidence"` // [0,1]
	Reasons        []string `json:"reasons"`
	SuggestedPrice float64  `json:"suggested_price"`
}

// Urgency classifies how quickly a recommendation is worth acting on.
// It is price-relative: an unusually good deal is urgent regardless of
// its match score.
type Urgency string

const (
	UrgencyHigh   Urgency = "high"
	UrgencyMedium Urgency = "medium"
	UrgencyLow    Urgency = "low"
)

// Recommendation is a proactive, history-driven listing suggestion.
type Recommendation struct {
	ListingID           string   `json:"listing_id"`
	Score               float64  `json:"score"`
	Confidence          float64  `json:"confidence"`
	Reasons             []string `json:"reasons"`
	SuggestedPrice      float64  `json:"suggested_price"`
	Urgency             Urgency  `json:"urgency"`
	PersonalizedMessage string   `json:"personalized_message"`
}

// RankedResult is one row of a relevance-ordered search result set.
// Rank is 1-indexed and contiguous over the full candidate set.
type RankedResult struct {
	ListingID  string   `json:"listing_id"`
	Relevance  float64  `json:"relevance"`
	Confidence float64  `json:"confidence"`
	Reasons    []string `json:"reasons"`
	Rank       int      `json:"rank"`
}
