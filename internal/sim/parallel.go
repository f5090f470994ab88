package sim

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/lvsim/internal/dynamo"
)

// Ensemble runs independent simulations from several initial states.
// Metrics are stateful, so every run gets its own Simulator from build.
type Ensemble struct {
	build   func() *Simulator
	workers int
}

func NewEnsemble(build func() *Simulator) *Ensemble {
	return &Ensemble{build: build, workers: runtime.NumCPU()}
}

// SetWorkers bounds the number of concurrent runs.
func (e *Ensemble) SetWorkers(n int) {
	if n > 0 {
		e.workers = n
	}
}

// Run returns one result per initial state, in input order. The first
// failure cancels the remaining runs.
func (e *Ensemble) Run(ctx context.Context, inits []dynamo.State, grid dynamo.TimeGrid) ([]*Result, error) {
	results := make([]*Result, len(inits))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, x0 := range inits {
		i, x0 := i, x0
		g.Go(func() error {
			res, err := e.build().Run(ctx, x0, grid)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
