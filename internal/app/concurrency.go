package app

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// PartialResult holds a result or an error for partial success patterns.
type PartialResult[T any] struct {
	Value T
	Err   error
}

// ParallelPartialLimit applies fn to every item with at most limit calls in
// flight. A failing call does not cancel the others; results[i] belongs to
// items[i].
//
// Example:
//
//	results := ParallelPartialLimit(ctx, 4, localOnly, remote.Push)
//	for i, r := range results {
//	    if r.Err != nil {
//	        logger.Warn("push failed", "quote_id", localOnly[i].ID)
//	    }
//	}
func ParallelPartialLimit[T, R any](
	ctx context.Context,
	limit int,
	items []T,
	fn func(context.Context, T) (R, error),
) []PartialResult[R] {
	results := make([]PartialResult[R], len(items))
	if len(items) == 0 {
		return results
	}

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, item := range items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = PartialResult[R]{Err: err}
				return nil
			}

			value, err := fn(ctx, item)
			results[i] = PartialResult[R]{Value: value, Err: err}

			return nil
		})
	}

	_ = g.Wait()

	return results
}
