package metrics

import (
	"fmt"
	"math"

	"github.com/san-kum/lvsim/internal/dynamo"
)

// Extrema records the smallest or largest value of one state component.
type Extrema struct {
	name    string
	index   int
	max     bool
	value   float64
	samples int
}

// NewMin tracks the minimum of component idx under the given label,
// reported as "<label>_min".
func NewMin(label string, idx int) *Extrema {
	return &Extrema{name: fmt.Sprintf("%s_min", label), index: idx}
}

// NewMax tracks the maximum of component idx, reported as "<label>_max".
func NewMax(label string, idx int) *Extrema {
	return &Extrema{name: fmt.Sprintf("%s_max", label), index: idx, max: true}
}

func (e *Extrema) Name() string { return e.name }

func (e *Extrema) Observe(x dynamo.State, t float64) {
	if e.index >= len(x) {
		return
	}
	v := x[e.index]
	switch {
	case e.samples == 0:
		e.value = v
	case e.max:
		e.value = math.Max(e.value, v)
	default:
		e.value = math.Min(e.value, v)
	}
	e.samples++
}

func (e *Extrema) Value() float64 {
	if e.samples == 0 {
		return math.NaN()
	}
	return e.value
}

func (e *Extrema) Reset() {
	e.value = 0
	e.samples = 0
}

// Species returns min and max trackers for the prey and predator
// components.
func Species() []dynamo.Metric {
	return []dynamo.Metric{
		NewMin("prey", 0), NewMax("prey", 0),
		NewMin("predator", 1), NewMax("predator", 1),
	}
}
