package integrators

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/lvsim/internal/dynamo"
)

// Options controls the adaptive driver. Zero fields take the defaults
// described on each field.
type Options struct {
	// RTol and ATol form the per-component error scale atol + rtol*|x|.
	RTol float64
	ATol float64

	// InitialDt, if > 0, is the size of the first attempted step.
	// Otherwise it is estimated from the derivative at x0.
	InitialDt float64

	// MinDt is the smallest step the controller may propose before the
	// solve is abandoned. Defaults to 1e-12 times the grid span.
	MinDt float64

	// MaxDt, if > 0, caps every step.
	MaxDt float64

	// MaxSteps bounds accepted plus rejected steps.
	MaxSteps int
}

// DefaultOptions mirrors the tolerances of LSODA-style library solvers.
func DefaultOptions() Options {
	return Options{
		RTol:     1.49012e-8,
		ATol:     1.49012e-8,
		MaxSteps: 100000,
	}
}

func (o Options) validate() error {
	if !(o.RTol > 0) {
		return fmt.Errorf("%w: rtol must be positive, got %g", dynamo.ErrParameter, o.RTol)
	}
	if o.ATol < 0 || math.IsNaN(o.ATol) {
		return fmt.Errorf("%w: atol must be non-negative, got %g", dynamo.ErrParameter, o.ATol)
	}
	if o.MaxSteps <= 0 {
		return fmt.Errorf("%w: max steps must be positive, got %d", dynamo.ErrParameter, o.MaxSteps)
	}
	if o.MinDt < 0 || o.MaxDt < 0 || o.InitialDt < 0 {
		return fmt.Errorf("%w: step bounds must be non-negative", dynamo.ErrParameter)
	}
	return nil
}

func (o Options) withDefaults(grid dynamo.TimeGrid) Options {
	d := DefaultOptions()
	if o.RTol == 0 {
		o.RTol = d.RTol
	}
	if o.ATol == 0 {
		o.ATol = d.ATol
	}
	if o.MaxSteps == 0 {
		o.MaxSteps = d.MaxSteps
	}
	if o.MinDt == 0 {
		o.MinDt = 1e-12 * (grid.End() - grid.Start())
	}
	return o
}

// Stats reports the work done by one solve.
type Stats struct {
	Steps       int     `json:"steps"`
	Rejected    int     `json:"rejected"`
	Evaluations int     `json:"evaluations"`
	LastDt      float64 `json:"last_dt"`
}

type countingSystem struct {
	dynamo.System
	evals int
}

func (c *countingSystem) Derive(x dynamo.State, t float64) dynamo.State {
	c.evals++
	return c.System.Derive(x, t)
}

// Solve integrates sys from x0 over grid with error-controlled adaptive
// steps and returns the solution sampled exactly at every grid time.
// Steps are clipped so they land on the grid; internal step sizes are
// otherwise free.
//
// A non-finite state, a step proposal below MinDt or an exhausted step
// budget aborts the solve with a *dynamo.SimulationError matching
// dynamo.ErrNumericalFailure. No partial trajectory is returned.
func Solve(ctx context.Context, sys dynamo.System, stepper dynamo.AdaptiveStepper, x0 dynamo.State, grid dynamo.TimeGrid, opts Options) (*dynamo.Trajectory, Stats, error) {
	var stats Stats
	if err := checkProblem(sys, x0, grid); err != nil {
		return nil, stats, err
	}
	opts = opts.withDefaults(grid)
	if err := opts.validate(); err != nil {
		return nil, stats, err
	}

	cs := &countingSystem{System: sys}
	fail := func(err error) (*dynamo.Trajectory, Stats, error) {
		stats.Evaluations = cs.evals
		return nil, stats, err
	}

	traj := &dynamo.Trajectory{
		Times:  make([]float64, len(grid)),
		States: make([]dynamo.State, len(grid)),
	}
	copy(traj.Times, grid)
	traj.States[0] = x0.Clone()

	x := x0.Clone()
	t := grid.Start()
	dt := opts.InitialDt
	if dt == 0 {
		dt = initialStep(cs, stepper.Order(), x, t, grid.End()-t, opts)
	}

	for i := 1; i < len(grid); i++ {
		target := grid[i]
		for t < target {
			select {
			case <-ctx.Done():
				return fail(ctx.Err())
			default:
			}

			if stats.Steps+stats.Rejected >= opts.MaxSteps {
				return fail(&dynamo.SimulationError{Step: stats.Steps, Time: t, State: x.Clone(), Wrapped: dynamo.ErrStepBudget})
			}

			h := dt
			if opts.MaxDt > 0 && h > opts.MaxDt {
				h = opts.MaxDt
			}
			last := false
			if h >= target-t {
				h = target - t
				last = true
			}

			xNew, errRatio, dtNext := stepper.StepAdaptive(cs, x, t, h, opts.RTol, opts.ATol)
			valid := xNew.IsValid()

			if valid && errRatio <= 1 {
				x = xNew
				if last {
					t = target
				} else {
					t += h
				}
				stats.Steps++
				stats.LastDt = h
				// A step shortened to land on the grid says nothing about
				// the step size the solution can afford.
				if !(last && h < dt) {
					dt = dtNext
				}
			} else {
				stats.Rejected++
				if !valid {
					dtNext = h * 0.2
				}
				dt = dtNext
			}

			if dt < opts.MinDt || t+dt == t {
				wrapped := dynamo.ErrStepTooSmall
				if !valid {
					wrapped = dynamo.ErrInvalidState
				}
				return fail(&dynamo.SimulationError{Step: stats.Steps, Time: t, State: x.Clone(), Wrapped: wrapped})
			}
		}
		traj.States[i] = x.Clone()
	}

	stats.Evaluations = cs.evals
	return traj, stats, nil
}

// SolveFixed integrates with a fixed-step stepper, taking substeps equal
// steps between consecutive grid times.
func SolveFixed(ctx context.Context, sys dynamo.System, stepper dynamo.Stepper, x0 dynamo.State, grid dynamo.TimeGrid, substeps int) (*dynamo.Trajectory, Stats, error) {
	var stats Stats
	if err := checkProblem(sys, x0, grid); err != nil {
		return nil, stats, err
	}
	if substeps < 1 {
		return nil, stats, fmt.Errorf("%w: substeps must be at least 1, got %d", dynamo.ErrParameter, substeps)
	}

	cs := &countingSystem{System: sys}
	traj := &dynamo.Trajectory{
		Times:  make([]float64, len(grid)),
		States: make([]dynamo.State, len(grid)),
	}
	copy(traj.Times, grid)
	traj.States[0] = x0.Clone()

	x := x0.Clone()
	for i := 1; i < len(grid); i++ {
		select {
		case <-ctx.Done():
			return nil, stats, ctx.Err()
		default:
		}

		t := grid[i-1]
		dt := (grid[i] - grid[i-1]) / float64(substeps)
		for k := 0; k < substeps; k++ {
			x = stepper.Step(cs, x, t, dt)
			t = grid[i-1] + float64(k+1)*dt
			stats.Steps++
		}
		if !x.IsValid() {
			stats.Evaluations = cs.evals
			return nil, stats, &dynamo.SimulationError{Step: stats.Steps, Time: grid[i], State: x, Wrapped: dynamo.ErrInvalidState}
		}
		stats.LastDt = dt
		traj.States[i] = x.Clone()
	}

	stats.Evaluations = cs.evals
	return traj, stats, nil
}

func checkProblem(sys dynamo.System, x0 dynamo.State, grid dynamo.TimeGrid) error {
	if err := grid.Validate(); err != nil {
		return err
	}
	if len(x0) != sys.StateDim() {
		return fmt.Errorf("%w: state has %d components, system expects %d", dynamo.ErrDimensionMismatch, len(x0), sys.StateDim())
	}
	if !x0.IsValid() {
		return fmt.Errorf("initial state %v: %w", x0, dynamo.ErrInvalidState)
	}
	return nil
}

// initialStep estimates a first step size from the scale of x0 and its
// derivatives (Hairer, Norsett & Wanner, Solving ODEs I, II.4).
func initialStep(sys dynamo.System, order int, x0 dynamo.State, t0, span float64, opts Options) float64 {
	n := len(x0)
	f0 := sys.Derive(x0, t0)

	scaled := func(v dynamo.State, ref dynamo.State) float64 {
		sum := 0.0
		for i := 0; i < n; i++ {
			s := opts.ATol + opts.RTol*math.Abs(ref[i])
			e := v[i] / s
			sum += e * e
		}
		return math.Sqrt(sum / float64(n))
	}

	d0 := scaled(x0, x0)
	d1 := scaled(f0, x0)
	h0 := 1e-6
	if d0 >= 1e-5 && d1 >= 1e-5 {
		h0 = 0.01 * d0 / d1
	}
	h0 = math.Min(h0, span)

	x1 := make(dynamo.State, n)
	for i := range x0 {
		x1[i] = x0[i] + h0*f0[i]
	}
	f1 := sys.Derive(x1, t0+h0)
	d2 := scaled(f1.Sub(f0), x0) / h0

	var h1 float64
	if math.Max(d1, d2) <= 1e-15 {
		h1 = math.Max(1e-6, h0*1e-3)
	} else {
		h1 = math.Pow(0.01/math.Max(d1, d2), 1/float64(order))
	}

	h := math.Min(100*h0, h1)
	if math.IsNaN(h) || h <= 0 {
		h = 1e-6
	}
	return math.Min(h, span)
}
