// Package concurrency provides a bounded, order-preserving fan-out executor.
// It backs the orchestrator's per-sample generation loop, the metric
// dispatcher's per-test-case scoring batch, and the arena engine's
// per-contestant fan-out.
//
// Every item's result lands at its own index in the returned slice, so
// callers that must preserve dataset order (per-sample log creation, the
// "first 10 in dataset order" results preview) get it for free even though
// work completes out of order.
package concurrency

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// itemResult pairs one item's result value with its error.
type itemResult[R any] struct {
	value R
	err   error
}

// Run executes fn once per item, honoring opts.Concurrency as a fan-out
// limit, and returns results/errors in the same order as items. A non-nil
// error in errs[i] means items[i] failed; results[i] then holds whatever fn
// returned alongside that error. Run itself never returns an error for
// per-item failures; only ctx cancellation (or opts.Timeout expiring) stops
// the whole batch early, in which case any not-yet-started items get the
// context's error.
func Run[T any, R any](ctx context.Context, items []T, opts Options, fn func(ctx context.Context, item T, index int) (R, error)) ([]R, []error) {
	results := make([]R, len(items))
	errs := make([]error, len(items))
	if len(items) == 0 {
		return results, errs
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	g, gctx := errgroup.WithContext(ctx)
	if opts.Concurrency > 0 {
		g.SetLimit(opts.Concurrency)
	}

	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			itemCtx := gctx
			if opts.ItemTimeout > 0 {
				var cancel context.CancelFunc
				itemCtx, cancel = context.WithTimeout(gctx, opts.ItemTimeout)
				defer cancel()
			}
			if itemCtx.Err() != nil {
				errs[i] = itemCtx.Err()
				return nil
			}
			v, err := fn(itemCtx, item, i)
			results[i] = v
			errs[i] = err
			return nil
		})
	}

	// g.Wait only ever returns non-nil if fn itself returned an error from
	// g.Go, which we never do; per-item failures are recorded in errs.
	_ = g.Wait()

	return results, errs
}
