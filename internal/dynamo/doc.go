// Package dynamo holds the vocabulary shared by every other package: the
// phase-space [State], the [System] right-hand side, the [Stepper] and
// [AdaptiveStepper] integrator contracts, per-sample [Metric] observers,
// the [TimeGrid] a run must report on and the resulting [Trajectory].
//
// All failures are reported through the sentinel errors in errors.go.
// Integration failures arrive as a [*SimulationError] carrying the step,
// time and state where the solver gave up; it matches
// [ErrNumericalFailure] under errors.Is.
//
//	grid, _ := dynamo.Linspace(0, 200, 800)
//	traj, _, err := integrators.Solve(ctx, model, integrators.NewRK45(), dynamo.State{40, 9}, grid, integrators.DefaultOptions())
//	if errors.Is(err, dynamo.ErrNumericalFailure) {
//	    // blow-up, step underflow or exhausted budget
//	}
//
// Steppers keep scratch buffers and must not be shared between goroutines.
package dynamo
