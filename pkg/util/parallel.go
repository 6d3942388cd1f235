package util

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Parallel runs fn for every input with at most workerLimit calls in flight.
// Unlike errgroup, one failure does not cancel the rest: every input is
// attempted and all errors are returned joined.
func Parallel[T any](ctx context.Context, inputs []T, workerLimit int, fn func(context.Context, T) error) error {
	if len(inputs) == 0 {
		return nil
	}
	if workerLimit <= 0 {
		workerLimit = 1
	}

	var (
		mu   sync.Mutex
		errs []error
	)
	g := new(errgroup.Group)
	g.SetLimit(workerLimit)
	for _, item := range inputs {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := fn(ctx, item); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
