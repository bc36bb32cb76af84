package sim

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/rocketsim/internal/dynamo"
	"github.com/san-kum/rocketsim/internal/integrators"
	"github.com/san-kum/rocketsim/internal/models"
	"github.com/san-kum/rocketsim/internal/vehicle"
)

// Case is one apogee prediction of a sweep.
type Case struct {
	Name    string
	Vehicle vehicle.Vehicle
	Initial models.Initial
	Solver  integrators.Config
}

type CaseResult struct {
	Case   Case
	Apogee float64
	Err    error
}

// Sweep predicts the apogee of every case concurrently. Results keep the
// order of cases. Per-case failures are reported in CaseResult.Err; only
// cancellation aborts the sweep. Observers are not notified: cases run
// concurrently and would otherwise share them.
func (s *Simulator) Sweep(ctx context.Context, cases []Case) ([]CaseResult, error) {
	results := make([]CaseResult, len(cases))
	runner := *s
	runner.observers = nil

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, c := range cases {
		g.Go(func() error {
			apogee, err := runner.PredictApogee(gctx, c.Vehicle, c.Initial, c.Solver)
			results[i] = CaseResult{Case: c, Apogee: apogee, Err: err}
			if errors.Is(err, dynamo.ErrContextCanceled) {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
