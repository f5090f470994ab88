package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrParameter indicates a model parameter outside its valid range.
	ErrParameter = errors.New("dynamo: invalid parameter")

	// ErrDomain indicates a function evaluated outside its domain,
	// e.g. a logarithm of a non-positive population.
	ErrDomain = errors.New("dynamo: argument outside function domain")

	// ErrNumericalFailure indicates the solver could not produce a
	// trajectory within its error tolerance and step budget.
	ErrNumericalFailure = errors.New("dynamo: numerical failure")

	// ErrInvalidState indicates a state vector with NaN or Inf values.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrStepTooSmall indicates adaptive timestep became too small.
	ErrStepTooSmall = errors.New("dynamo: adaptive timestep below minimum")

	// ErrStepBudget indicates the solver exhausted its step budget.
	ErrStepBudget = errors.New("dynamo: step budget exhausted")

	// ErrDimensionMismatch indicates mismatched state/system dimensions.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")

	// ErrGrid indicates a malformed time or spatial grid.
	ErrGrid = errors.New("dynamo: invalid grid")

	// ErrNoTrajectory indicates an operation that needs a computed
	// trajectory received none.
	ErrNoTrajectory = errors.New("dynamo: no trajectory")
)

// SimulationError wraps a solver failure with integration context.
// It always matches ErrNumericalFailure under errors.Is.
type SimulationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("%s: step %d (t=%.4f): %v", ErrNumericalFailure, e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}

func (e *SimulationError) Is(target error) bool {
	return target == ErrNumericalFailure
}
