package experiment

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/san-kum/lvsim/internal/analysis"
	"github.com/san-kum/lvsim/internal/config"
	"github.com/san-kum/lvsim/internal/dynamo"
	"github.com/san-kum/lvsim/internal/field"
	"github.com/san-kum/lvsim/internal/integrators"
	"github.com/san-kum/lvsim/internal/logging"
	"github.com/san-kum/lvsim/internal/physics"
	"github.com/san-kum/lvsim/internal/sim"
)

// Report carries everything a renderer needs from one experiment.
type Report struct {
	Model      string                  `json:"model"`
	Integrator string                  `json:"integrator"`
	Params     map[string]float64      `json:"params"`
	Critical   []physics.CriticalPoint `json:"critical_points"`
	Main       *sim.Result             `json:"main"`
	Orbits     []*sim.Result           `json:"orbits,omitempty"`
	Bounds     field.Bounds            `json:"bounds"`
	Direction  *field.DirectionField   `json:"direction_field"`
	// Conserved and Levels are nil for models without a first integral.
	Conserved *field.ScalarField `json:"conserved,omitempty"`
	Levels    []float64          `json:"levels,omitempty"`
	Summary   *analysis.Summary  `json:"summary"`
	// Period is the mean time between upward crossings of the prey
	// nullcline x = c/d, or zero when the prey does not oscillate.
	Period float64 `json:"period"`
}

type Experiment struct {
	cfg      *config.Config
	registry *Registry
	logger   logr.Logger
}

type Option func(*Experiment)

func WithLogger(logger logr.Logger) Option {
	return func(e *Experiment) { e.logger = logger }
}

func New(cfg *config.Config, opts ...Option) *Experiment {
	e := &Experiment{cfg: cfg.Clone(), registry: NewRegistry()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Experiment) Config() *config.Config { return e.cfg.Clone() }

// Run validates the configuration, simulates the main trajectory and
// any extra orbits, then samples the direction field and, when the model
// has a first integral, its contour field over bounds derived from the
// main trajectory.
func (e *Experiment) Run(ctx context.Context) (*Report, error) {
	logger := e.logger
	if logger.GetSink() == nil {
		logger = logging.FromContext(ctx)
	}
	logger = logger.WithValues("model", e.cfg.Model, "integrator", e.cfg.Integrator)
	ctx = logging.IntoContext(ctx, logger)

	if err := e.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	model, err := e.registry.GetModel(e.cfg.Model, e.cfg.Params)
	if err != nil {
		return nil, err
	}
	if _, err := e.registry.GetIntegrator(e.cfg.Integrator); err != nil {
		return nil, err
	}
	grid, err := e.cfg.Grid()
	if err != nil {
		return nil, err
	}

	critical, err := model.CriticalPoints()
	if err != nil {
		return nil, err
	}

	build := func() *sim.Simulator {
		stepper, _ := e.registry.GetIntegrator(e.cfg.Integrator)
		s := sim.New(model, stepper,
			sim.WithLogger(logger),
			sim.WithSolveOptions(integrators.Options{
				RTol:     e.cfg.Solver.RTol,
				ATol:     e.cfg.Solver.ATol,
				MaxSteps: e.cfg.Solver.MaxSteps,
			}),
			sim.WithSubsteps(e.cfg.Solver.Substeps),
		)
		for _, m := range e.registry.DefaultMetrics(model) {
			s.AddMetric(m)
		}
		return s
	}

	primary, err := build().Run(ctx, e.cfg.InitialState(), grid)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Model:      e.cfg.Model,
		Integrator: e.cfg.Integrator,
		Params:     model.GetParams(),
		Critical:   critical,
		Main:       primary,
	}

	if len(e.cfg.Orbits) > 0 {
		report.Orbits, err = sim.NewEnsemble(build).Run(ctx, e.cfg.OrbitStates(), grid)
		if err != nil {
			return nil, fmt.Errorf("orbits: %w", err)
		}
	}

	// The interior fixed point sizes the plot when a species starts at zero.
	report.Bounds, err = field.BoundsFromTrajectory(primary.Trajectory, e.cfg.Field.Margin,
		field.MinExtent(e.cfg.Params.C/e.cfg.Params.D, e.cfg.Params.A/e.cfg.Params.B))
	if err != nil {
		return nil, err
	}
	dirGrid, err := field.NewGrid(report.Bounds, e.cfg.Field.Resolution)
	if err != nil {
		return nil, err
	}
	report.Direction = field.Sample(model, dirGrid)

	if scalar, ok := model.(field.Scalar); ok {
		cGrid, err := field.NewGrid(report.Bounds, e.cfg.Contour.Resolution, field.ExcludeAxes())
		if err != nil {
			return nil, err
		}
		report.Conserved, err = field.ConservedField(scalar, cGrid)
		if err != nil {
			return nil, err
		}
		report.Levels = e.cfg.Contour.Values
		if len(report.Levels) == 0 {
			report.Levels = field.Levels(report.Conserved, e.cfg.Contour.Levels)
		}
	}

	report.Summary, err = analysis.Summarize(primary.Trajectory)
	if err != nil {
		return nil, err
	}
	report.Period, err = analysis.CrossingPeriod(primary.Trajectory, 0, e.cfg.Params.C/e.cfg.Params.D)
	if errors.Is(err, analysis.ErrNoOscillation) {
		err = nil
	}
	if err != nil {
		return nil, err
	}

	logger.V(logging.VERBOSE).Info("Experiment complete",
		"period", report.Period, "orbits", len(report.Orbits), "critical_points", len(critical))
	return report, nil
}

// Interior returns the fixed point away from both axes, if the model has
// one.
func (r *Report) Interior() (physics.CriticalPoint, bool) {
	for _, p := range r.Critical {
		if p.X > 0 && p.Y > 0 {
			return p, true
		}
	}
	return physics.CriticalPoint{}, false
}

// Trajectories returns the main trajectory followed by the orbits.
func (r *Report) Trajectories() []*dynamo.Trajectory {
	out := []*dynamo.Trajectory{r.Main.Trajectory}
	for _, o := range r.Orbits {
		out = append(out, o.Trajectory)
	}
	return out
}
