package sim

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/san-kum/lvsim/internal/dynamo"
	"github.com/san-kum/lvsim/internal/integrators"
	"github.com/san-kum/lvsim/internal/logging"
)

// DefaultSubsteps is the number of fixed steps taken between grid times
// when the stepper is not adaptive.
const DefaultSubsteps = 10

// Result is one completed run.
type Result struct {
	Trajectory *dynamo.Trajectory `json:"trajectory"`
	Metrics    map[string]float64 `json:"metrics"`
	Stats      integrators.Stats  `json:"stats"`
}

// errorer is implemented by metrics that can fail on individual samples.
type errorer interface {
	Err() error
}

type Simulator struct {
	sys      dynamo.System
	stepper  dynamo.Stepper
	metrics  []dynamo.Metric
	logger   logr.Logger
	opts     integrators.Options
	substeps int
}

type Option func(*Simulator)

// WithLogger overrides the logger taken from the run context.
func WithLogger(logger logr.Logger) Option {
	return func(s *Simulator) { s.logger = logger }
}

// WithSolveOptions sets tolerances and step limits for adaptive steppers.
func WithSolveOptions(opts integrators.Options) Option {
	return func(s *Simulator) { s.opts = opts }
}

// WithSubsteps sets the fixed steps per grid interval for non-adaptive
// steppers.
func WithSubsteps(n int) Option {
	return func(s *Simulator) { s.substeps = n }
}

func New(sys dynamo.System, stepper dynamo.Stepper, opts ...Option) *Simulator {
	s := &Simulator{
		sys:      sys,
		stepper:  stepper,
		metrics:  make([]dynamo.Metric, 0),
		opts:     integrators.DefaultOptions(),
		substeps: DefaultSubsteps,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Simulator) AddMetric(m dynamo.Metric) { s.metrics = append(s.metrics, m) }

// Run solves the initial-value problem x(grid[0]) = x0 and feeds every
// sample of the solution to the registered metrics. A solver failure is
// returned unchanged so callers can match dynamo.ErrNumericalFailure.
func (s *Simulator) Run(ctx context.Context, x0 dynamo.State, grid dynamo.TimeGrid) (*Result, error) {
	logger := s.logger
	if logger.GetSink() == nil {
		logger = logging.FromContext(ctx)
	}
	logger = logger.WithValues("x0", []float64(x0), "horizon", gridEnd(grid), "samples", len(grid))

	var (
		traj  *dynamo.Trajectory
		stats integrators.Stats
		err   error
	)
	if adaptive, ok := s.stepper.(dynamo.AdaptiveStepper); ok {
		logger.V(logging.DEBUG).Info("Solving adaptively", "order", adaptive.Order(), "rtol", s.opts.RTol, "atol", s.opts.ATol)
		traj, stats, err = integrators.Solve(ctx, s.sys, adaptive, x0, grid, s.opts)
	} else {
		logger.V(logging.DEBUG).Info("Solving with fixed steps", "substeps", s.substeps)
		traj, stats, err = integrators.SolveFixed(ctx, s.sys, s.stepper, x0, grid, s.substeps)
	}
	if err != nil {
		logger.Error(err, "Simulation failed", "steps", stats.Steps, "rejected", stats.Rejected)
		return nil, fmt.Errorf("simulate from %v: %w", []float64(x0), err)
	}

	result := &Result{
		Trajectory: traj,
		Metrics:    make(map[string]float64, len(s.metrics)),
		Stats:      stats,
	}

	for _, m := range s.metrics {
		m.Reset()
	}
	for i, x := range traj.States {
		for _, m := range s.metrics {
			m.Observe(x, traj.Times[i])
		}
	}
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
		if e, ok := m.(errorer); ok && e.Err() != nil {
			logger.V(logging.VERBOSE).Info("Metric skipped samples", "metric", m.Name(), "reason", e.Err().Error())
		}
	}

	logger.V(logging.VERBOSE).Info("Simulation finished",
		"steps", stats.Steps, "rejected", stats.Rejected, "evaluations", stats.Evaluations)
	return result, nil
}

func gridEnd(grid dynamo.TimeGrid) float64 {
	if len(grid) == 0 {
		return 0
	}
	return grid.End()
}
