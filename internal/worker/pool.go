package worker

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Pool runs a pure transform over a stream of inputs on several goroutines
// and hands the results to a single sink in input order.
type Pool[In, Out any] struct {
	workers   int
	queue     int
	transform func(In) Out
}

type job[In, Out any] struct {
	in  In
	out chan Out
}

// NewPool creates a pool with the specified number of workers.
// queue bounds the number of inputs in flight.
func NewPool[In, Out any](workers, queue int, transform func(In) Out) *Pool[In, Out] {
	if workers <= 0 {
		workers = 1
	}
	if queue <= 0 {
		queue = workers * 2
	}

	return &Pool[In, Out]{
		workers:   workers,
		queue:     queue,
		transform: transform,
	}
}

// Workers returns the number of transform goroutines
func (p *Pool[In, Out]) Workers() int {
	return p.workers
}

// Run feeds every input emitted by source through the transform and passes
// the outputs to sink, one at a time and in emission order.
// The first error from source or sink stops the run and is returned.
func (p *Pool[In, Out]) Run(ctx context.Context, source func(ctx context.Context, emit func(In) error) error, sink func(Out) error) error {
	if p.workers == 1 {
		return source(ctx, func(in In) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return sink(p.transform(in))
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	jobs := make(chan job[In, Out], p.queue)
	futures := make(chan chan Out, p.queue)

	// Producer: the only sender on both channels, so futures keep input order
	g.Go(func() error {
		defer close(futures)
		defer close(jobs)

		return source(gctx, func(in In) error {
			j := job[In, Out]{in: in, out: make(chan Out, 1)}
			select {
			case jobs <- j:
			case <-gctx.Done():
				return gctx.Err()
			}
			select {
			case futures <- j.out:
			case <-gctx.Done():
				return gctx.Err()
			}
			return nil
		})
	})

	for i := 0; i < p.workers; i++ {
		g.Go(func() error {
			for j := range jobs {
				j.out <- p.transform(j.in)
			}
			return nil
		})
	}

	// Sink: a single goroutine
	g.Go(func() error {
		for fut := range futures {
			select {
			case out := <-fut:
				if err := sink(out); err != nil {
					return err
				}
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	return g.Wait()
}
