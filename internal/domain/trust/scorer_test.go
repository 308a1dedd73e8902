package trust_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/spotnest/matchd/internal/adapters/moderation"
	"github.com/spotnest/matchd/internal/adapters/store"
	"github.com/spotnest/matchd/internal/domain/model"
	"github.com/spotnest/matchd/internal/domain/trust"
	"github.com/spotnest/matchd/pkg/logger"
)

func TestMain(m *testing.M) {
	_ = logger.Init()
	os.Exit(m.Run())
}

var now = time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

type fixture struct {
	listings *store.MemoryListingStore
	flags    *moderation.MemoryStore
	scorer   *trust.Scorer
}

func newFixture() *fixture {
	listings := store.NewMemoryListingStore()
	flags := moderation.NewMemoryStore()
	return &fixture{
		listings: listings,
		flags:    flags,
		scorer:   trust.NewScorer(listings, flags, trust.WithClock(clock)),
	}
}

func (f *fixture) seed(listing model.Listing, owner model.Owner) {
	f.listings.PutListing(listing)
	f.listings.PutOwner(owner)
}

func verifiedOwner(id string) model.Owner {
	return model.Owner{
		ID:                  id,
		CreatedAt:           now.AddDate(-1, 0, 0),
		IdentityDocUploaded: true,
		DocConfidence:       95,
	}
}

func TestCheckListingForAutoFlag(t *testing.T) {
	ctx := context.Background()

	Convey("Given a trust scorer with default policy", t, func() {
		f := newFixture()

		Convey("When a verified owner lists at a normal price", func() {
			f.seed(
				model.Listing{ID: "l1", OwnerID: "o1", HourlyPrice: 10, CreatedAt: now},
				verifiedOwner("o1"),
			)

			a, err := f.scorer.CheckListingForAutoFlag(ctx, "l1", "o1")

			Convey("Then the score stays at the maximum and nothing is flagged", func() {
				So(err, ShouldBeNil)
				So(a.Score, ShouldEqual, 100)
				So(a.Signals, ShouldBeEmpty)
				So(a.Flagged, ShouldBeFalse)
				So(f.flags.FlagCount(ctx, "l1"), ShouldEqual, 0)
			})
		})

		Convey("When a two-day-old account lists at $150/day without a document", func() {
			f.seed(
				model.Listing{ID: "l2", OwnerID: "o2", DailyPrice: 150, CreatedAt: now},
				model.Owner{ID: "o2", CreatedAt: now.Add(-48 * time.Hour)},
			)

			a, err := f.scorer.CheckListingForAutoFlag(ctx, "l2", "o2")

			Convey("Then the document and new-account penalties stack to 50", func() {
				So(err, ShouldBeNil)
				So(a.Score, ShouldEqual, 50)
				So(a.Signals, ShouldHaveLength, 2)
				So(a.Signals[0].Code, ShouldEqual, trust.SignalMissingIdentityDoc)
				So(a.Signals[1].Code, ShouldEqual, trust.SignalNewAccountHighValue)
				So(a.Flagged, ShouldBeTrue)
				So(a.FlagID, ShouldNotBeEmpty)
			})

			Convey("Then exactly one pending identity flag exists", func() {
				flags, ferr := f.flags.ByListing(ctx, "l2")
				So(ferr, ShouldBeNil)
				So(flags, ShouldHaveLength, 1)
				So(flags[0].Type, ShouldEqual, model.FlagIdentityVerification)
				So(flags[0].Status, ShouldEqual, model.FlagPending)
				So(flags[0].AutoFlagged, ShouldBeTrue)
				So(flags[0].Confidence, ShouldEqual, 0.5)
				So(flags[0].Reason, ShouldNotBeEmpty)
			})
		})

		Convey("When a two-day-old account lists below the high-value bound", func() {
			f.seed(
				model.Listing{ID: "l3", OwnerID: "o3", DailyPrice: 80, CreatedAt: now},
				model.Owner{ID: "o3", CreatedAt: now.Add(-48 * time.Hour)},
			)

			a, err := f.scorer.CheckListingForAutoFlag(ctx, "l3", "o3")

			Convey("Then only the missing document penalty applies", func() {
				So(err, ShouldBeNil)
				So(a.Score, ShouldEqual, 70)
				So(a.Signals, ShouldHaveLength, 1)
				So(a.Signals[0].Code, ShouldEqual, trust.SignalMissingIdentityDoc)
				So(a.Flagged, ShouldBeFalse)
			})
		})

		Convey("When the score lands exactly on the threshold", func() {
			// Low document confidence alone: 100 - 40 = 60.
			f.seed(
				model.Listing{ID: "l4", OwnerID: "o4", HourlyPrice: 10, CreatedAt: now},
				model.Owner{ID: "o4", CreatedAt: now.AddDate(-1, 0, 0), IdentityDocUploaded: true, DocConfidence: 30},
			)

			a, err := f.scorer.CheckListingForAutoFlag(ctx, "l4", "o4")

			Convey("Then the boundary score is not flagged", func() {
				So(err, ShouldBeNil)
				So(a.Score, ShouldEqual, 60)
				So(a.Signals, ShouldHaveLength, 1)
				So(a.Signals[0].Code, ShouldEqual, trust.SignalLowDocConfidence)
				So(a.Flagged, ShouldBeFalse)
				So(f.flags.FlagCount(ctx, "l4"), ShouldEqual, 0)
			})
		})

		Convey("When pricing is abnormal on either axis", func() {
			f.seed(
				model.Listing{ID: "l5", OwnerID: "o5", HourlyPrice: 120, CreatedAt: now},
				verifiedOwner("o5"),
			)
			f.seed(
				model.Listing{ID: "l6", OwnerID: "o6", DailyPrice: 600, CreatedAt: now},
				verifiedOwner("o6"),
			)

			a5, err5 := f.scorer.CheckListingForAutoFlag(ctx, "l5", "o5")
			a6, err6 := f.scorer.CheckListingForAutoFlag(ctx, "l6", "o6")

			Convey("Then each triggers the pricing signal once", func() {
				So(err5, ShouldBeNil)
				So(a5.Score, ShouldEqual, 85)
				So(a5.Signals[0].Code, ShouldEqual, trust.SignalAbnormalPricing)
				So(err6, ShouldBeNil)
				So(a6.Score, ShouldEqual, 85)
			})
		})

		Convey("When an hourly price implies an abnormal daily equivalent", func() {
			// $30/hour with no daily price is $720/day equivalent.
			f.seed(
				model.Listing{ID: "l7", OwnerID: "o7", HourlyPrice: 30, CreatedAt: now},
				verifiedOwner("o7"),
			)

			a, err := f.scorer.CheckListingForAutoFlag(ctx, "l7", "o7")

			Convey("Then the daily-equivalent bound catches it", func() {
				So(err, ShouldBeNil)
				So(a.Score, ShouldEqual, 85)
				So(a.Signals[0].Code, ShouldEqual, trust.SignalAbnormalPricing)
			})
		})

		Convey("When an owner floods the marketplace with listings", func() {
			owner := verifiedOwner("o8")
			f.listings.PutOwner(owner)
			for _, id := range []string{"f1", "f2", "f3", "f4", "f5", "f6"} {
				f.listings.PutListing(model.Listing{ID: id, OwnerID: "o8", HourlyPrice: 10, CreatedAt: now.Add(-time.Hour)})
			}

			a, err := f.scorer.CheckListingForAutoFlag(ctx, "f6", "o8")

			Convey("Then the volume signal fires above the count bound", func() {
				So(err, ShouldBeNil)
				So(a.Score, ShouldEqual, 85)
				So(a.Signals[0].Code, ShouldEqual, trust.SignalRapidListings)
			})
		})

		Convey("When every signal fires at once", func() {
			f.listings.PutOwner(model.Owner{ID: "o9", CreatedAt: now.Add(-time.Hour)})
			for _, id := range []string{"g1", "g2", "g3", "g4", "g5"} {
				f.listings.PutListing(model.Listing{ID: id, OwnerID: "o9", HourlyPrice: 10, CreatedAt: now.Add(-time.Minute)})
			}
			f.listings.PutListing(model.Listing{ID: "g6", OwnerID: "o9", HourlyPrice: 150, DailyPrice: 900, CreatedAt: now})

			a, err := f.scorer.CheckListingForAutoFlag(ctx, "g6", "o9")

			Convey("Then the penalties stack additively", func() {
				So(err, ShouldBeNil)
				So(a.Score, ShouldEqual, 20)
				So(a.Signals, ShouldHaveLength, 4)
			})

			Convey("Then identity outranks pricing and volume for the flag type", func() {
				flags, ferr := f.flags.ByListing(ctx, "g6")
				So(ferr, ShouldBeNil)
				So(flags, ShouldHaveLength, 1)
				So(flags[0].Type, ShouldEqual, model.FlagIdentityVerification)
			})
		})

		Convey("When penalties sum past the maximum score", func() {
			harsh := trust.NewScorer(f.listings, f.flags,
				trust.WithClock(clock),
				trust.WithPenalties(map[string]int{
					trust.SignalMissingIdentityDoc:  60,
					trust.SignalNewAccountHighValue: 30,
					trust.SignalAbnormalPricing:     25,
				}))
			f.seed(
				model.Listing{ID: "l8", OwnerID: "o10", HourlyPrice: 150, DailyPrice: 900, CreatedAt: now},
				model.Owner{ID: "o10", CreatedAt: now.Add(-time.Hour)},
			)

			a, err := harsh.CheckListingForAutoFlag(ctx, "l8", "o10")

			Convey("Then the score floors at zero", func() {
				So(err, ShouldBeNil)
				So(a.Score, ShouldEqual, 0)
				So(a.Flagged, ShouldBeTrue)
			})
		})

		Convey("When the listing does not exist", func() {
			_, err := f.scorer.CheckListingForAutoFlag(ctx, "ghost", "o1")

			Convey("Then the not-found error propagates", func() {
				So(errors.Is(err, store.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When the owner does not exist", func() {
			f.listings.PutListing(model.Listing{ID: "l9", OwnerID: "ghost", HourlyPrice: 10, CreatedAt: now})

			_, err := f.scorer.CheckListingForAutoFlag(ctx, "l9", "")

			Convey("Then the owner is resolved from the listing and still required", func() {
				So(errors.Is(err, store.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestReportListing(t *testing.T) {
	ctx := context.Background()

	Convey("Given a trust scorer and an existing listing", t, func() {
		f := newFixture()
		f.seed(
			model.Listing{ID: "l1", OwnerID: "o1", HourlyPrice: 10, CreatedAt: now},
			verifiedOwner("o1"),
		)

		Convey("When a user reports the listing", func() {
			flag, err := f.scorer.ReportListing(ctx, "l1", "u1", "photos look stolen")

			Convey("Then a pending user report is stored", func() {
				So(err, ShouldBeNil)
				So(flag.ID, ShouldNotBeEmpty)
				So(flag.Type, ShouldEqual, model.FlagUserReport)
				So(flag.Status, ShouldEqual, model.FlagPending)
				So(flag.ReporterID, ShouldEqual, "u1")
				So(flag.AutoFlagged, ShouldBeFalse)
			})

			Convey("And the same reporter reports again while it is pending", func() {
				_, dupErr := f.scorer.ReportListing(ctx, "l1", "u1", "still suspicious")

				Convey("Then the duplicate is rejected without a new flag", func() {
					So(errors.Is(dupErr, moderation.ErrDuplicateReport), ShouldBeTrue)
					So(f.flags.FlagCount(ctx, "l1"), ShouldEqual, 1)
				})
			})

			Convey("And a different reporter reports the same listing", func() {
				_, otherErr := f.scorer.ReportListing(ctx, "l1", "u2", "price bait")

				Convey("Then the second report is accepted", func() {
					So(otherErr, ShouldBeNil)
					So(f.flags.FlagCount(ctx, "l1"), ShouldEqual, 2)
				})
			})
		})

		Convey("When the reporter is missing", func() {
			_, err := f.scorer.ReportListing(ctx, "l1", "  ", "no name")

			Convey("Then validation fails", func() {
				So(errors.Is(err, trust.ErrReporterRequired), ShouldBeTrue)
			})
		})

		Convey("When the listing does not exist", func() {
			_, err := f.scorer.ReportListing(ctx, "ghost", "u1", "bad")

			Convey("Then the not-found error propagates", func() {
				So(errors.Is(err, store.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}
