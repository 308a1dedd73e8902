// Package enhance defines the optional text-generation collaborator
// used to polish result copy. Enhancement is a pure decorator: it may
// rewrite human-readable text but never scores, orders, or fails a
// request.
package enhance

import (
	"context"
	"time"

	"github.com/spotnest/matchd/pkg/logger"
	"github.com/spotnest/matchd/pkg/metrics"
)

// defaultTimeout bounds one enhancement call.
const defaultTimeout = 800 * time.Millisecond

// Enhancer rewrites result copy. Implementations are typically backed
// by a hosted text-generation service and may be slow or unavailable.
type Enhancer interface {
	// EnhanceReasons returns polished replacements for the reason
	// lines of one result. Implementations must honor ctx.
	EnhanceReasons(ctx context.Context, listingID string, reasons []string) ([]string, error)
}

// Noop returns its input unchanged. It is the default collaborator.
type Noop struct{}

// EnhanceReasons implements Enhancer.
func (Noop) EnhanceReasons(_ context.Context, _ string, reasons []string) ([]string, error) {
	return reasons, nil
}

// Option applies a configuration option to the Guard.
type Option func(*Guard)

// WithTimeout bounds each wrapped call.
func WithTimeout(timeout time.Duration) Option {
	return func(g *Guard) {
		if timeout > 0 {
			g.timeout = timeout
		}
	}
}

// WithLogger sets a custom logger for the guard.
func WithLogger(l logger.Logger) Option {
	return func(g *Guard) {
		if l != nil {
			g.logger = l
		}
	}
}

// Guard wraps an Enhancer with a hard timeout and failure fallback.
// A failing or slow collaborator degrades silently to the original
// text; the scoring path never blocks on it beyond the timeout.
type Guard struct {
	inner   Enhancer
	timeout time.Duration
	logger  logger.Logger
}

// NewGuard wraps inner.
func NewGuard(inner Enhancer, opts ...Option) *Guard {
	g := &Guard{
		inner:   inner,
		timeout: defaultTimeout,
		logger:  logger.Get().Named("enhance"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// EnhanceReasons calls the wrapped enhancer with a bounded context and
// returns the original reasons on any error or timeout. It never
// returns an error itself.
func (g *Guard) EnhanceReasons(ctx context.Context, listingID string, reasons []string) ([]string, error) {
	if g.inner == nil || len(reasons) == 0 {
		return reasons, nil
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	type result struct {
		enhanced []string
		err      error
	}
	done := make(chan result, 1)
	go func() {
		enhanced, err := g.inner.EnhanceReasons(ctx, listingID, reasons)
		done <- result{enhanced: enhanced, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil || len(r.enhanced) == 0 {
			g.logger.Debug(ctx, "enhancer failed, keeping original text",
				logger.String("listingID", listingID), logger.Error(r.err))
			metrics.RecordEnhancerFailure()
			return reasons, nil
		}
		return r.enhanced, nil
	case <-ctx.Done():
		g.logger.Debug(ctx, "enhancer timed out, keeping original text",
			logger.String("listingID", listingID))
		metrics.RecordEnhancerFailure()
		return reasons, nil
	}
}
