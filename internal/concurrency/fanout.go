// Package concurrency has a small bounded fan-out helper.
package concurrency

import (
	"context"

	"golang.org/x/sync/errgroup"
)

type Task func(ctx context.Context) error

// Run executes tasks with at most limit running at once. The first error
// cancels the context handed to the remaining tasks and is returned after
// all of them finish. limit <= 0 means no bound.
func Run(ctx context.Context, limit int, tasks ...Task) error {
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, task := range tasks {
		g.Go(func() error {
			return task(gctx)
		})
	}
	return g.Wait()
}
