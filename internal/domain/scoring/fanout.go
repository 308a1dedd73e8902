package scoring

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/spotnest/matchd/internal/domain/model"
)

// FanOut evaluates fn for every listing with bounded concurrency and
// returns the results in input order. Scoring functions are pure, so
// nothing here can fail; the only serialization point is collecting
// the slice, which is index-disjoint across goroutines.
func FanOut[T any](ctx context.Context, listings []model.Listing, limit int, fn func(model.Listing) T) []T {
	if limit < 1 {
		limit = runtime.NumCPU()
	}

	results := make([]T, len(listings))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, l := range listings {
		i, l := i, l
		g.Go(func() error {
			results[i] = fn(l)
			return nil
		})
	}

	_ = g.Wait() // workers never return errors

	return results
}
