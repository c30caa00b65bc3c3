package validation

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Pair names two images to compare.
type Pair struct {
	A, B string
}

// ValidateAll runs independent comparisons concurrently, at most limit at
// a time (limit <= 0 means unbounded). Each comparison owns no shared
// mutable state, so parallelism is safe; strategy failures are captured in
// the individual Results as usual. The returned slice is index-aligned
// with pairs. The only error returned is a context cancellation.
func (p *Pipeline) ValidateAll(ctx context.Context, pairs []Pair, limit int) ([]Result, error) {
	results := make([]Result, len(pairs))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, pair := range pairs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = p.Validate(pair.A, pair.B)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
