package search_test

import (
	"context"
	"os"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/spotnest/matchd/internal/domain/model"
	"github.com/spotnest/matchd/internal/domain/scoring"
	"github.com/spotnest/matchd/internal/domain/search"
	"github.com/spotnest/matchd/pkg/logger"
)

func TestMain(m *testing.M) {
	_ = logger.Init()
	os.Exit(m.Run())
}

func rankerProfile() model.BehaviorProfile {
	return model.BehaviorProfile{
		UserID: "renter-1",
		Preferences: model.Preferences{
			SpaceTypes: []string{"garage"},
			PriceRange: model.PriceRange{Min: 5, Max: 15},
			Locations:  []string{"Mission"},
		},
	}
}

func TestRank(t *testing.T) {
	ctx := context.Background()

	Convey("Given a search ranker with default weights", t, func() {
		ranker := search.NewRanker(scoring.NewScorer())
		profile := rankerProfile()

		Convey("When the query matches the listing text fully", func() {
			listing := model.Listing{
				ID:          "s1",
				Type:        "garage",
				HourlyPrice: 8,
				Title:       "Secure garage near BART",
				Description: "Covered parking spot",
				Address:     "123 Mission St",
			}

			results := ranker.Rank(ctx, "secure garage", []model.Listing{listing}, profile)

			Convey("Then text, preferences, price and location all contribute", func() {
				So(results, ShouldHaveLength, 1)
				So(results[0].Relevance, ShouldAlmostEqual, 1.0)
				So(results[0].Rank, ShouldEqual, 1)
				So(results[0].Reasons, ShouldHaveLength, 4)
			})

			Convey("Then confidence reflects the text overlap", func() {
				So(results[0].Confidence, ShouldEqual, 1.0)
			})
		})

		Convey("When the query only partially overlaps", func() {
			listing := model.Listing{ID: "s2", Type: "parking", HourlyPrice: 99, Title: "Driveway spot", Address: "Oakland"}

			results := ranker.Rank(ctx, "driveway sauna", []model.Listing{listing}, profile)

			Convey("Then overlap is the matched fraction of query tokens", func() {
				So(results, ShouldHaveLength, 1)
				So(results[0].Confidence, ShouldEqual, 0.5)
				So(results[0].Relevance, ShouldAlmostEqual, 0.4*0.5)
			})

			Convey("Then a positive relevance always carries reasons", func() {
				So(results[0].Reasons, ShouldNotBeEmpty)
			})
		})

		Convey("When the query is empty", func() {
			listing := model.Listing{ID: "s3", Type: "parking", HourlyPrice: 99, Title: "Driveway spot", Address: "Oakland"}

			results := ranker.Rank(ctx, "", []model.Listing{listing}, profile)

			Convey("Then the text component contributes nothing", func() {
				So(results, ShouldHaveLength, 1)
				So(results[0].Confidence, ShouldEqual, 0)
				So(results[0].Relevance, ShouldEqual, 0)
				So(results[0].Reasons, ShouldBeEmpty)
			})
		})

		Convey("When several listings compete", func() {
			listings := []model.Listing{
				{ID: "s4", Type: "parking", HourlyPrice: 50, Title: "Warehouse bay", Address: "Oakland"},
				{ID: "s5", Type: "garage", HourlyPrice: 8, Title: "Mission garage", Address: "Mission St"},
				{ID: "s6", Type: "garage", HourlyPrice: 8, Title: "Garage with storage", Address: "Mission District"},
			}

			results := ranker.Rank(ctx, "garage", listings, profile)

			Convey("Then every candidate is ranked contiguously from 1", func() {
				So(results, ShouldHaveLength, 3)
				So(results[0].Rank, ShouldEqual, 1)
				So(results[1].Rank, ShouldEqual, 2)
				So(results[2].Rank, ShouldEqual, 3)
			})

			Convey("Then ties on relevance break by listing ID ascending", func() {
				So(results[0].ListingID, ShouldEqual, "s5")
				So(results[1].ListingID, ShouldEqual, "s6")
				So(results[2].ListingID, ShouldEqual, "s4")
			})
		})

		Convey("When the same search runs twice", func() {
			listings := []model.Listing{
				{ID: "s7", Type: "garage", HourlyPrice: 8, Title: "Garage A", Address: "Mission"},
				{ID: "s8", Type: "garage", HourlyPrice: 8, Title: "Garage B", Address: "Mission"},
			}

			first := ranker.Rank(ctx, "garage", listings, profile)
			second := ranker.Rank(ctx, "garage", listings, profile)

			Convey("Then the ranking is identical across runs", func() {
				So(second, ShouldResemble, first)
			})
		})
	})

	Convey("Given custom relevance weights", t, func() {
		ranker := search.NewRanker(scoring.NewScorer(), search.WithWeights(map[string]float64{
			search.WeightText:       1.0,
			search.WeightPreference: 0,
			search.WeightPrice:      0,
			search.WeightLocation:   0,
		}))

		Convey("When only text weight is active", func() {
			listing := model.Listing{ID: "s9", Type: "garage", HourlyPrice: 8, Title: "Garage", Address: "Mission"}

			results := ranker.Rank(ctx, "garage", []model.Listing{listing}, rankerProfile())

			Convey("Then relevance equals the overlap alone", func() {
				So(results, ShouldHaveLength, 1)
				So(results[0].Relevance, ShouldEqual, 1.0)
			})
		})
	})
}
