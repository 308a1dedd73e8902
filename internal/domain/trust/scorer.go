// Package trust scores listings for fraud risk and auto-flags the
// ones that fall below the trust threshold.
package trust

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spotnest/matchd/internal/domain/model"
	"github.com/spotnest/matchd/pkg/logger"
	"github.com/spotnest/matchd/pkg/metrics"
)

// Signal codes. Each maps to a fixed penalty; signals are evaluated
// independently and their penalties add up.
const (
	SignalMissingIdentityDoc  = "missing_identity_document"
	SignalLowDocConfidence    = "low_document_confidence"
	SignalNewAccountHighValue = "new_account_high_value"
	SignalAbnormalPricing     = "abnormal_pricing"
	SignalRapidListings       = "rapid_listing_creation"
)

// Default trust policy constants.
const (
	maxTrustScore = 100

	defaultFlagThreshold      = 60
	defaultDocConfidenceMin   = 50
	defaultNewAccountMaxAge   = 7 * 24 * time.Hour
	defaultHighValueDaily     = 100
	defaultAbnormalHourly     = 100
	defaultAbnormalDaily      = 500
	defaultRapidListingCount  = 5
	defaultRapidListingWindow = 24 * time.Hour
)

// defaultPenalties maps signal codes to score deductions.
var defaultPenalties = map[string]int{
	SignalMissingIdentityDoc:  30,
	SignalLowDocConfidence:    40,
	SignalNewAccountHighValue: 20,
	SignalAbnormalPricing:     15,
	SignalRapidListings:       15,
}

// ListingSource provides the listing and owner records the scorer
// evaluates.
type ListingSource interface {
	ByID(ctx context.Context, id string) (model.Listing, error)
	Owner(ctx context.Context, ownerID string) (model.Owner, error)
	CountCreatedSince(ctx context.Context, ownerID string, since time.Time) (int, error)
}

// FlagStore persists the flags the scorer and reporters create.
type FlagStore interface {
	Insert(ctx context.Context, f model.Flag) (model.Flag, error)
	InsertReport(ctx context.Context, f model.Flag) (model.Flag, error)
}

// Signal is one triggered risk indicator with its applied penalty.
type Signal struct {
	Code        string `json:"code"`
	Penalty     int    `json:"penalty"`
	Description string `json:"description"`
}

// Assessment is the outcome of a trust check.
type Assessment struct {
	ListingID string   `json:"listing_id"`
	OwnerID   string   `json:"owner_id"`
	Score     int      `json:"score"` // [0,100]
	Signals   []Signal `json:"signals,omitempty"`
	Flagged   bool     `json:"flagged"`
	FlagID    string   `json:"flag_id,omitempty"`
}

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithFlagThreshold sets the score strictly below which a listing is
// auto-flagged.
func WithFlagThreshold(threshold int) Option {
	return func(s *Scorer) {
		if threshold >= 0 && threshold <= maxTrustScore {
			s.flagThreshold = threshold
		}
	}
}

// WithDocConfidenceMin sets the verification confidence below which
// an uploaded identity document counts as low-confidence.
func WithDocConfidenceMin(min float64) Option {
	return func(s *Scorer) {
		if min >= 0 {
			s.docConfidenceMin = min
		}
	}
}

// WithNewAccountWindow sets the account age below which an owner is
// treated as new.
func WithNewAccountWindow(window time.Duration) Option {
	return func(s *Scorer) {
		if window > 0 {
			s.newAccountMaxAge = window
		}
	}
}

// WithHighValueDailyPrice sets the daily-equivalent price above which
// a new account's listing is considered high value.
func WithHighValueDailyPrice(price float64) Option {
	return func(s *Scorer) {
		if price > 0 {
			s.highValueDaily = price
		}
	}
}

// WithAbnormalPrices sets the hourly and daily-equivalent bounds of
// the abnormal pricing signal.
func WithAbnormalPrices(hourly, daily float64) Option {
	return func(s *Scorer) {
		if hourly > 0 {
			s.abnormalHourly = hourly
		}
		if daily > 0 {
			s.abnormalDaily = daily
		}
	}
}

// WithRapidListingPolicy sets the listing count (strictly greater
// than) and trailing window of the volume signal.
func WithRapidListingPolicy(count int, window time.Duration) Option {
	return func(s *Scorer) {
		if count > 0 {
			s.rapidListingCount = count
		}
		if window > 0 {
			s.rapidListingWindow = window
		}
	}
}

// WithPenalties overrides penalties for the given signal codes.
func WithPenalties(penalties map[string]int) Option {
	return func(s *Scorer) {
		for code, p := range penalties {
			if _, ok := s.penalties[code]; ok && p >= 0 {
				s.penalties[code] = p
			}
		}
	}
}

// WithClock sets the time source, letting tests pin account age and
// listing-creation windows.
func WithClock(now func() time.Time) Option {
	return func(s *Scorer) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the scorer.
func WithLogger(l logger.Logger) Option {
	return func(s *Scorer) {
		if l != nil {
			s.logger = l
		}
	}
}

// Scorer evaluates fraud risk. Stateless between calls and safe for
// concurrent use.
type Scorer struct {
	listings ListingSource
	flags    FlagStore

	flagThreshold      int
	docConfidenceMin   float64
	newAccountMaxAge   time.Duration
	highValueDaily     float64
	abnormalHourly     float64
	abnormalDaily      float64
	rapidListingCount  int
	rapidListingWindow time.Duration
	penalties          map[string]int

	now    func() time.Time
	logger logger.Logger
}

// NewScorer creates a trust scorer over the given listing source and
// flag store.
func NewScorer(listings ListingSource, flags FlagStore, opts ...Option) *Scorer {
	s := &Scorer{
		listings:           listings,
		flags:              flags,
		flagThreshold:      defaultFlagThreshold,
		docConfidenceMin:   defaultDocConfidenceMin,
		newAccountMaxAge:   defaultNewAccountMaxAge,
		highValueDaily:     defaultHighValueDaily,
		abnormalHourly:     defaultAbnormalHourly,
		abnormalDaily:      defaultAbnormalDaily,
		rapidListingCount:  defaultRapidListingCount,
		rapidListingWindow: defaultRapidListingWindow,
		penalties:          make(map[string]int, len(defaultPenalties)),
		now:                time.Now,
		logger:             logger.Get().Named("trust"),
	}
	for code, p := range defaultPenalties {
		s.penalties[code] = p
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckListingForAutoFlag scores the listing's trustworthiness and,
// when the score falls strictly below the threshold, inserts exactly
// one pending auto flag. Listing and owner are mandatory; a missing
// record propagates as an error. A flag write failure surfaces with
// no partial state.
func (s *Scorer) CheckListingForAutoFlag(ctx context.Context, listingID, ownerID string) (Assessment, error) {
	listing, err := s.listings.ByID(ctx, listingID)
	if err != nil {
		return Assessment{}, fmt.Errorf("fetching listing %s: %w", listingID, err)
	}
	if ownerID == "" {
		ownerID = listing.OwnerID
	}
	owner, err := s.listings.Owner(ctx, ownerID)
	if err != nil {
		return Assessment{}, fmt.Errorf("fetching owner %s: %w", ownerID, err)
	}

	assessment := Assessment{
		ListingID: listingID,
		OwnerID:   ownerID,
		Signals:   s.evaluate(ctx, listing, owner),
	}

	score := maxTrustScore
	for _, sig := range assessment.Signals {
		score -= sig.Penalty
	}
	if score < 0 {
		score = 0
	}
	assessment.Score = score

	metrics.RecordTrustCheck()

	if score >= s.flagThreshold {
		return assessment, nil
	}

	flag := model.Flag{
		ListingID:   listingID,
		Type:        flagType(assessment.Signals),
		Reason:      flagReason(assessment.Signals),
		AutoFlagged: true,
		Confidence:  float64(score) / maxTrustScore,
	}
	inserted, err := s.flags.Insert(ctx, flag)
	if err != nil {
		return assessment, fmt.Errorf("inserting auto flag for listing %s: %w", listingID, err)
	}

	assessment.Flagged = true
	assessment.FlagID = inserted.ID

	metrics.RecordFlagCreated(string(inserted.Type), "auto")
	s.logger.Info(ctx, "listing auto-flagged",
		logger.String("listing_id", listingID),
		logger.String("owner_id", ownerID),
		logger.Int("trust_score", score),
		logger.String("flag_type", string(inserted.Type)))

	return assessment, nil
}

// ReportListing records a user report against a listing. The reporter
// is required and the listing must exist. A second pending report by
// the same reporter is rejected without inserting a new flag.
func (s *Scorer) ReportListing(ctx context.Context, listingID, reporterID, reason string) (model.Flag, error) {
	if strings.TrimSpace(reporterID) == "" {
		return model.Flag{}, ErrReporterRequired
	}
	if _, err := s.listings.ByID(ctx, listingID); err != nil {
		return model.Flag{}, fmt.Errorf("fetching listing %s: %w", listingID, err)
	}

	flag, err := s.flags.InsertReport(ctx, model.Flag{
		ListingID:  listingID,
		Type:       model.FlagUserReport,
		Reason:     reason,
		ReporterID: reporterID,
	})
	if err != nil {
		return model.Flag{}, fmt.Errorf("reporting listing %s: %w", listingID, err)
	}

	metrics.RecordFlagCreated(string(model.FlagUserReport), "report")

	return flag, nil
}

// evaluate runs every risk signal against the listing and owner.
// Signals are independent; the document signals are the exception and
// exclude each other since absence and low confidence cannot both
// hold.
func (s *Scorer) evaluate(ctx context.Context, listing model.Listing, owner model.Owner) []Signal {
	var signals []Signal
	add := func(code, description string) {
		signals = append(signals, Signal{Code: code, Penalty: s.penalties[code], Description: description})
	}

	if !owner.IdentityDocUploaded {
		add(SignalMissingIdentityDoc, "owner has not uploaded an identity document")
	} else if owner.DocConfidence < s.docConfidenceMin {
		add(SignalLowDocConfidence,
			fmt.Sprintf("identity document verification confidence %.0f is below %.0f", owner.DocConfidence, s.docConfidenceMin))
	}

	daily := listing.DailyEquivalentPrice()
	if s.now().Sub(owner.CreatedAt) < s.newAccountMaxAge && daily > s.highValueDaily {
		add(SignalNewAccountHighValue,
			fmt.Sprintf("account newer than %d days listing at $%.0f/day", int(s.newAccountMaxAge.Hours()/24), daily))
	}

	if listing.HourlyPrice > s.abnormalHourly || daily > s.abnormalDaily {
		add(SignalAbnormalPricing,
			fmt.Sprintf("price $%.0f/hour ($%.0f/day equivalent) is outside the normal band", listing.HourlyPrice, daily))
	}

	since := s.now().Add(-s.rapidListingWindow)
	count, err := s.listings.CountCreatedSince(ctx, owner.ID, since)
	if err != nil {
		// Count is a degradable read; a store hiccup must not block
		// the rest of the assessment.
		s.logger.Warn(ctx, "listing creation count unavailable",
			logger.String("owner_id", owner.ID),
			logger.Error(err))
		count = 0
	}
	if count > s.rapidListingCount {
		add(SignalRapidListings,
			fmt.Sprintf("owner created %d listings in the last %d hours", count, int(s.rapidListingWindow.Hours())))
	}

	return signals
}

// flagType picks the flag category by signal precedence: identity
// concerns outrank pricing, pricing outranks volume.
func flagType(signals []Signal) model.FlagType {
	byCode := make(map[string]bool, len(signals))
	for _, sig := range signals {
		byCode[sig.Code] = true
	}
	switch {
	case byCode[SignalMissingIdentityDoc] || byCode[SignalLowDocConfidence]:
		return model.FlagIdentityVerification
	case byCode[SignalNewAccountHighValue] || byCode[SignalAbnormalPricing]:
		return model.FlagSuspiciousPricing
	default:
		return model.FlagRapidListingCreation
	}
}

// flagReason concatenates the triggered signal descriptions.
func flagReason(signals []Signal) string {
	parts := make([]string, 0, len(signals))
	for _, sig := range signals {
		parts = append(parts, sig.Description)
	}
	return strings.Join(parts, "; ")
}
