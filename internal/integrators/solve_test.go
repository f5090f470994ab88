package integrators

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/san-kum/lvsim/internal/dynamo"
	"github.com/san-kum/lvsim/internal/physics"
)

type decay struct{}

func (d *decay) StateDim() int { return 1 }
func (d *decay) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{-x[0]}
}

// x' = x^2 leaves every finite value at t = 1/x0.
type blowUp struct{}

func (b *blowUp) StateDim() int { return 1 }
func (b *blowUp) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{x[0] * x[0]}
}

func classic(t *testing.T) (*physics.LotkaVolterra, dynamo.TimeGrid) {
	t.Helper()
	lv, err := physics.NewLotkaVolterra(physics.DefaultParams())
	if err != nil {
		t.Fatalf("model: %v", err)
	}
	grid, err := dynamo.Linspace(0, 200, 800)
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	return lv, grid
}

func TestSolve_SamplesEveryGridPoint(t *testing.T) {
	lv, grid := classic(t)

	traj, stats, err := Solve(context.Background(), lv, NewRK45(), dynamo.State{40, 9}, grid, DefaultOptions())
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}

	if traj.Len() != len(grid) {
		t.Fatalf("expected %d samples, got %d", len(grid), traj.Len())
	}
	for i := range grid {
		if traj.Times[i] != grid[i] {
			t.Fatalf("sample %d at t=%v, want %v", i, traj.Times[i], grid[i])
		}
	}
	if traj.States[0][0] != 40 || traj.States[0][1] != 9 {
		t.Errorf("first sample must be the initial state, got %v", traj.States[0])
	}
	if stats.Steps < len(grid)-1 {
		t.Errorf("expected at least one step per interval, got %d", stats.Steps)
	}
	if stats.Evaluations == 0 {
		t.Error("expected evaluations to be counted")
	}
}

func TestSolve_ExponentialDecay(t *testing.T) {
	grid, _ := dynamo.Linspace(0, 5, 51)

	traj, _, err := Solve(context.Background(), &decay{}, NewRK45(), dynamo.State{1}, grid, DefaultOptions())
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}

	for i, tm := range traj.Times {
		want := math.Exp(-tm)
		if got := traj.States[i][0]; math.Abs(got-want) > 1e-7 {
			t.Fatalf("t=%.2f: got %.10f, want %.10f", tm, got, want)
		}
	}
}

func TestSolve_ConservesFirstIntegral(t *testing.T) {
	lv, grid := classic(t)

	traj, _, err := Solve(context.Background(), lv, NewRK45(), dynamo.State{40, 9}, grid, DefaultOptions())
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}

	c0, _ := lv.Conserved(traj.States[0])
	maxDev := 0.0
	for _, s := range traj.States {
		c, err := lv.Conserved(s)
		if err != nil {
			t.Fatalf("conserved quantity undefined at %v: %v", s, err)
		}
		maxDev = math.Max(maxDev, math.Abs(c-c0)/math.Abs(c0))
	}

	if maxDev > 1e-6 {
		t.Errorf("first integral drifted by %e", maxDev)
	}
}

func TestSolve_Bounded(t *testing.T) {
	lv, grid := classic(t)

	traj, _, err := Solve(context.Background(), lv, NewRK45(), dynamo.State{40, 9}, grid, DefaultOptions())
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}

	limit := 10 * 40.0
	for i, s := range traj.States {
		for _, v := range s {
			if v < 0 || v > limit {
				t.Fatalf("sample %d out of [0, %v]: %v", i, limit, s)
			}
		}
	}
}

func TestSolve_Deterministic(t *testing.T) {
	lv, grid := classic(t)

	first, _, err := Solve(context.Background(), lv, NewRK45(), dynamo.State{40, 9}, grid, DefaultOptions())
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	second, _, err := Solve(context.Background(), lv, NewRK45(), dynamo.State{40, 9}, grid, DefaultOptions())
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated solve differs (-first +second):\n%s", diff)
	}
}

func TestSolve_BlowUpIsNumericalFailure(t *testing.T) {
	grid, _ := dynamo.Linspace(0, 2, 10)

	traj, _, err := Solve(context.Background(), &blowUp{}, NewRK45(), dynamo.State{1}, grid, DefaultOptions())
	if err == nil {
		t.Fatal("expected failure for finite-time blow-up")
	}
	if traj != nil {
		t.Error("failed solve must not return a trajectory")
	}
	if !errors.Is(err, dynamo.ErrNumericalFailure) {
		t.Errorf("expected ErrNumericalFailure, got %v", err)
	}

	var simErr *dynamo.SimulationError
	if !errors.As(err, &simErr) {
		t.Fatalf("expected *SimulationError, got %T", err)
	}
	if simErr.Time > 1.0+1e-6 {
		t.Errorf("solver passed the singularity at t=1: stopped at %v", simErr.Time)
	}
}

func TestSolve_StepBudget(t *testing.T) {
	lv, grid := classic(t)
	opts := DefaultOptions()
	opts.MaxSteps = 5

	_, stats, err := Solve(context.Background(), lv, NewRK45(), dynamo.State{40, 9}, grid, opts)

	if !errors.Is(err, dynamo.ErrStepBudget) {
		t.Fatalf("expected ErrStepBudget, got %v", err)
	}
	if !errors.Is(err, dynamo.ErrNumericalFailure) {
		t.Errorf("budget exhaustion must be a numerical failure, got %v", err)
	}
	if stats.Steps+stats.Rejected != 5 {
		t.Errorf("expected 5 attempts, got %d", stats.Steps+stats.Rejected)
	}
}

func TestSolve_InvalidInput(t *testing.T) {
	lv, grid := classic(t)

	tests := []struct {
		name string
		x0   dynamo.State
		grid dynamo.TimeGrid
		opts Options
		want error
	}{
		{"wrong dimension", dynamo.State{1}, grid, DefaultOptions(), dynamo.ErrDimensionMismatch},
		{"nan state", dynamo.State{math.NaN(), 1}, grid, DefaultOptions(), dynamo.ErrInvalidState},
		{"single sample", dynamo.State{40, 9}, dynamo.TimeGrid{0}, DefaultOptions(), dynamo.ErrGrid},
		{"decreasing grid", dynamo.State{40, 9}, dynamo.TimeGrid{0, 2, 1}, DefaultOptions(), dynamo.ErrGrid},
		{"negative rtol", dynamo.State{40, 9}, grid, Options{RTol: -1}, dynamo.ErrParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Solve(context.Background(), lv, NewRK45(), tt.x0, tt.grid, tt.opts)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestSolve_Canceled(t *testing.T) {
	lv, grid := classic(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := Solve(ctx, lv, NewRK45(), dynamo.State{40, 9}, grid, DefaultOptions())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestSolveFixed_RK4BeatsEuler(t *testing.T) {
	lv, grid := classic(t)
	x0 := dynamo.State{40, 9}

	drift := func(traj *dynamo.Trajectory) float64 {
		c0, _ := lv.Conserved(traj.States[0])
		c1, _ := lv.Conserved(traj.Final())
		return math.Abs(c1-c0) / math.Abs(c0)
	}

	rk4, _, err := SolveFixed(context.Background(), lv, NewRK4(), x0, grid, 4)
	if err != nil {
		t.Fatalf("rk4 failed: %v", err)
	}
	euler, _, err := SolveFixed(context.Background(), lv, NewEuler(), x0, grid, 4)
	if err != nil {
		t.Fatalf("euler failed: %v", err)
	}

	if drift(rk4) > 1e-6 {
		t.Errorf("rk4 drift too high: %e", drift(rk4))
	}
	if drift(euler) <= drift(rk4) {
		t.Errorf("expected euler (%e) to drift more than rk4 (%e)", drift(euler), drift(rk4))
	}
}

func TestSolveFixed_RejectsZeroSubsteps(t *testing.T) {
	lv, grid := classic(t)

	_, _, err := SolveFixed(context.Background(), lv, NewRK4(), dynamo.State{40, 9}, grid, 0)
	if !errors.Is(err, dynamo.ErrParameter) {
		t.Errorf("expected ErrParameter, got %v", err)
	}
}
