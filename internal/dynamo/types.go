package dynamo

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// State is a point in phase space: [prey, predator] for every model in
// this module.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

// IsValid reports whether every component is finite.
func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Sub returns s - other. Both must have the same length.
func (s State) Sub(other State) State {
	return floats.SubTo(make(State, len(s)), s, other)
}

// System is an autonomous or time-dependent ODE right-hand side.
type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

// Invariant is implemented by systems with a first integral of motion.
type Invariant interface {
	Conserved(x State) (float64, error)
}

// Stepper advances a state by one step of fixed size.
type Stepper interface {
	Step(dyn System, x State, t, dt float64) State
}

// AdaptiveStepper additionally reports the scaled local error of a step
// so a driver can accept or reject it. errRatio <= 1 means the step meets
// the tolerance; dtNext is the suggested size of the next attempt.
type AdaptiveStepper interface {
	Stepper
	StepAdaptive(dyn System, x State, t, dt, rtol, atol float64) (xNew State, errRatio, dtNext float64)
	Order() int
}

type Metric interface {
	Name() string
	Observe(x State, t float64)
	Value() float64
	Reset()
}

type Configurable interface {
	GetParams() map[string]float64
}
