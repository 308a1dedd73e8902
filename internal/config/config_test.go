package config_test

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spotnest/matchd/internal/config"
)

func TestNew(t *testing.T) {
	Convey("Given a default configuration", t, func() {
		cfg := config.New(context.Background())

		Convey("Then the policy thresholds match product policy", func() {
			So(cfg.MatchThreshold, ShouldEqual, 0.3)
			So(cfg.RecommendThreshold, ShouldEqual, 0.4)
			So(cfg.TrustFlagThreshold, ShouldEqual, 60)
			So(cfg.MaxRecommendations, ShouldEqual, 10)
		})

		Convey("And the confidence weights sum to one", func() {
			var sum float64
			for _, w := range cfg.MatchConfidenceWeights {
				sum += w
			}
			So(sum, ShouldAlmostEqual, 1.0, 1e-9)
		})

		Convey("And the recommendation weights sum to one", func() {
			var sum float64
			for _, w := range cfg.RecommendWeights {
				sum += w
			}
			So(sum, ShouldAlmostEqual, 1.0, 1e-9)
		})

		Convey("And the search weights sum to one", func() {
			var sum float64
			for _, w := range cfg.SearchWeights {
				sum += w
			}
			So(sum, ShouldAlmostEqual, 1.0, 1e-9)
		})

		Convey("And the trust penalties carry the policy deductions", func() {
			So(cfg.TrustPenalties["missing_identity_document"], ShouldEqual, 30)
			So(cfg.TrustPenalties["low_document_confidence"], ShouldEqual, 40)
			So(cfg.TrustPenalties["new_account_high_value"], ShouldEqual, 20)
			So(cfg.TrustPenalties["abnormal_pricing"], ShouldEqual, 15)
			So(cfg.TrustPenalties["rapid_listing_creation"], ShouldEqual, 15)
		})

		Convey("And the default price range is [0,100]", func() {
			So(cfg.DefaultPriceMin, ShouldEqual, 0)
			So(cfg.DefaultPriceMax, ShouldEqual, 100)
		})
	})
}
