package recommend_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/spotnest/matchd/internal/domain/model"
	"github.com/spotnest/matchd/internal/domain/recommend"
	"github.com/spotnest/matchd/pkg/logger"
)

func TestMain(m *testing.M) {
	_ = logger.Init()
	os.Exit(m.Run())
}

type fakeProfiles struct {
	profile model.BehaviorProfile
}

func (f fakeProfiles) Build(_ context.Context, _ string) model.BehaviorProfile {
	return f.profile
}

type fakeListings struct {
	listings []model.Listing
	err      error
}

func (f fakeListings) Active(_ context.Context) ([]model.Listing, error) {
	return f.listings, f.err
}

func historyProfile(bookingPrice float64, bookings int) model.BehaviorProfile {
	p := model.BehaviorProfile{
		UserID: "renter-1",
		Preferences: model.Preferences{
			SpaceTypes: []string{"garage"},
			PriceRange: model.PriceRange{Min: 5, Max: 15},
			Locations:  []string{"Mission"},
		},
	}
	for i := 0; i < bookings; i++ {
		p.BookingHistory = append(p.BookingHistory, model.Booking{
			ListingID: "past",
			Date:      time.Date(2026, 8, i+1, 10, 0, 0, 0, time.UTC),
			Price:     bookingPrice,
		})
	}
	return p
}

func missionGarage(id string, hourly float64) model.Listing {
	return model.Listing{
		ID:          id,
		Type:        "garage",
		HourlyPrice: hourly,
		Address:     "123 Mission St, San Francisco",
		Title:       "Mission garage",
	}
}

func TestSuggest(t *testing.T) {
	ctx := context.Background()
	criteria := model.SearchCriteria{SpaceType: "garage"}

	Convey("Given a renter with garage history around $10", t, func() {
		profiles := fakeProfiles{profile: historyProfile(10, 4)}

		Convey("When a listing satisfies every factor", func() {
			engine := recommend.NewEngine(profiles, fakeListings{listings: []model.Listing{missionGarage("r1", 8)}})

			recs := engine.Suggest(ctx, "renter-1", criteria)

			Convey("Then it is recommended with the full weighted score", func() {
				So(recs, ShouldHaveLength, 1)
				So(recs[0].ListingID, ShouldEqual, "r1")
				So(recs[0].Score, ShouldAlmostEqual, 1.0)
				So(recs[0].Reasons, ShouldHaveLength, 5)
				So(recs[0].Urgency, ShouldEqual, model.UrgencyMedium)
			})

			Convey("Then confidence ramps with booking depth", func() {
				So(recs[0].Confidence, ShouldEqual, 0.4)
			})

			Convey("Then the suggested price is capped at the budget", func() {
				So(recs[0].SuggestedPrice, ShouldEqual, 8)
			})
		})

		Convey("When a listing scores exactly at the threshold", func() {
			// Location and history only: 0.2 + 0.2 = 0.4.
			borderline := fakeProfiles{profile: historyProfile(50, 4)}
			listing := model.Listing{ID: "r2", Type: "parking", HourlyPrice: 50, Address: "Mission"}
			engine := recommend.NewEngine(borderline, fakeListings{listings: []model.Listing{listing}})

			recs := engine.Suggest(ctx, "renter-1", model.SearchCriteria{})

			Convey("Then the boundary score is excluded", func() {
				So(recs, ShouldBeEmpty)
			})
		})

		Convey("When the inventory cannot be fetched", func() {
			engine := recommend.NewEngine(profiles, fakeListings{err: errors.New("store down")})

			recs := engine.Suggest(ctx, "renter-1", criteria)

			Convey("Then the result degrades to empty", func() {
				So(recs, ShouldBeEmpty)
			})
		})

		Convey("When more listings qualify than the limit allows", func() {
			listings := []model.Listing{
				missionGarage("r3", 8),
				{ID: "r4", Type: "garage", HourlyPrice: 8, Address: "Valencia St"},
				missionGarage("r5", 8),
			}
			engine := recommend.NewEngine(profiles, fakeListings{listings: listings}, recommend.WithLimit(2))

			recs := engine.Suggest(ctx, "renter-1", criteria)

			Convey("Then only the strongest results survive the cut", func() {
				So(recs, ShouldHaveLength, 2)
				So(recs[0].ListingID, ShouldEqual, "r3")
				So(recs[1].ListingID, ShouldEqual, "r5")
			})
		})

		Convey("When results tie on score", func() {
			listings := []model.Listing{missionGarage("r9", 8), missionGarage("r2", 8)}
			engine := recommend.NewEngine(profiles, fakeListings{listings: listings})

			recs := engine.Suggest(ctx, "renter-1", criteria)

			Convey("Then listing ID breaks the tie ascending", func() {
				So(recs, ShouldHaveLength, 2)
				So(recs[0].ListingID, ShouldEqual, "r2")
				So(recs[1].ListingID, ShouldEqual, "r9")
			})
		})
	})
}

func TestUrgency(t *testing.T) {
	ctx := context.Background()
	profiles := fakeProfiles{profile: historyProfile(10, 4)}
	criteria := model.SearchCriteria{SpaceType: "garage"}

	Convey("Given price-relative urgency classification", t, func() {
		Convey("When a listing is far below the budget floor", func() {
			engine := recommend.NewEngine(profiles, fakeListings{listings: []model.Listing{missionGarage("deal", 3)}})

			recs := engine.Suggest(ctx, "renter-1", criteria)

			Convey("Then it is an urgent deal", func() {
				So(recs, ShouldHaveLength, 1)
				So(recs[0].Urgency, ShouldEqual, model.UrgencyHigh)
			})
		})

		Convey("When a listing is far above the budget ceiling", func() {
			engine := recommend.NewEngine(profiles, fakeListings{listings: []model.Listing{missionGarage("steep", 20)}})

			recs := engine.Suggest(ctx, "renter-1", criteria)

			Convey("Then it can wait", func() {
				So(recs, ShouldHaveLength, 1)
				So(recs[0].Urgency, ShouldEqual, model.UrgencyLow)
			})
		})
	})
}

func TestPersonalizedMessages(t *testing.T) {
	ctx := context.Background()
	profiles := fakeProfiles{profile: historyProfile(10, 4)}
	criteria := model.SearchCriteria{SpaceType: "garage"}
	listing := missionGarage("r1", 8)

	Convey("Given the fixed message template set", t, func() {
		Convey("When a picker is injected", func() {
			engine := recommend.NewEngine(profiles, fakeListings{listings: []model.Listing{listing}},
				recommend.WithMessagePicker(func(int) int { return 1 }))

			recs := engine.Suggest(ctx, "renter-1", criteria)

			Convey("Then the chosen template is rendered with the listing title", func() {
				So(recs, ShouldHaveLength, 1)
				So(recs[0].PersonalizedMessage, ShouldEqual, recommend.RenderMessage(recommend.MessageTemplates[1], listing))
			})
		})

		Convey("When the default randomness is used", func() {
			engine := recommend.NewEngine(profiles, fakeListings{listings: []model.Listing{listing}})

			recs := engine.Suggest(ctx, "renter-1", criteria)

			Convey("Then the message is always drawn from the template set", func() {
				So(recs, ShouldHaveLength, 1)
				rendered := make([]string, 0, len(recommend.MessageTemplates))
				for _, tpl := range recommend.MessageTemplates {
					rendered = append(rendered, recommend.RenderMessage(tpl, listing))
				}
				So(rendered, ShouldContain, recs[0].PersonalizedMessage)
			})
		})

		Convey("When the listing has no title", func() {
			untitled := listing
			untitled.Title = ""

			Convey("Then rendering falls back to the listing ID", func() {
				So(recommend.RenderMessage(recommend.MessageTemplates[0], untitled), ShouldContainSubstring, untitled.ID)
			})
		})
	})
}
