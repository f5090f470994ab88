package dynamo

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// TimeGrid is an increasing sequence of sample times.
type TimeGrid []float64

// Linspace returns n evenly spaced times over [start, end], both ends
// included. n must be at least 2 and end must exceed start.
func Linspace(start, end float64, n int) (TimeGrid, error) {
	if n < 2 {
		return nil, fmt.Errorf("%w: need at least 2 samples, got %d", ErrGrid, n)
	}
	if !(end > start) || math.IsInf(end, 0) || math.IsNaN(start) {
		return nil, fmt.Errorf("%w: empty interval [%g, %g]", ErrGrid, start, end)
	}
	g := make(TimeGrid, n)
	floats.Span(g, start, end)
	return g, nil
}

// Validate checks that the grid has at least two finite, strictly
// increasing samples.
func (g TimeGrid) Validate() error {
	if len(g) < 2 {
		return fmt.Errorf("%w: need at least 2 samples, got %d", ErrGrid, len(g))
	}
	for i, t := range g {
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return fmt.Errorf("%w: sample %d is not finite", ErrGrid, i)
		}
		if i > 0 && t <= g[i-1] {
			return fmt.Errorf("%w: sample %d (%g) not after %g", ErrGrid, i, t, g[i-1])
		}
	}
	return nil
}

func (g TimeGrid) Start() float64 { return g[0] }
func (g TimeGrid) End() float64   { return g[len(g)-1] }

// Trajectory is the solution of one initial-value problem sampled on a
// TimeGrid. States[i] is the state at Times[i].
type Trajectory struct {
	Times  []float64
	States []State
}

func (tr *Trajectory) Len() int {
	if tr == nil {
		return 0
	}
	return len(tr.Times)
}

// Column returns component i of every sample.
func (tr *Trajectory) Column(i int) []float64 {
	col := make([]float64, len(tr.States))
	for k, s := range tr.States {
		col[k] = s[i]
	}
	return col
}

// Max returns the largest value of component i.
func (tr *Trajectory) Max(i int) float64 {
	return floats.Max(tr.Column(i))
}

// Min returns the smallest value of component i.
func (tr *Trajectory) Min(i int) float64 {
	return floats.Min(tr.Column(i))
}

// Final returns the last sampled state.
func (tr *Trajectory) Final() State {
	return tr.States[len(tr.States)-1]
}
