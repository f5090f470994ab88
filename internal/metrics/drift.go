package metrics

import (
	"math"

	"github.com/san-kum/lvsim/internal/dynamo"
)

// InvariantDrift tracks the largest relative deviation of a conserved
// quantity from its value at the first observed sample. When that value
// is zero the deviation is absolute.
type InvariantDrift struct {
	name     string
	inv      dynamo.Invariant
	initial  float64
	maxDrift float64
	samples  int
	err      error
}

func NewInvariantDrift(inv dynamo.Invariant) *InvariantDrift {
	return &InvariantDrift{
		name: "invariant_drift",
		inv:  inv,
	}
}

func (d *InvariantDrift) Name() string { return d.name }

// Observe skips samples outside the domain of the invariant and keeps the
// first such error for Err.
func (d *InvariantDrift) Observe(x dynamo.State, t float64) {
	c, err := d.inv.Conserved(x)
	if err != nil {
		if d.err == nil {
			d.err = err
		}
		return
	}

	if d.samples == 0 {
		d.initial = c
	}
	d.samples++

	drift := math.Abs(c - d.initial)
	if d.initial != 0 {
		drift /= math.Abs(d.initial)
	}
	d.maxDrift = math.Max(d.maxDrift, drift)
}

func (d *InvariantDrift) Value() float64 {
	return d.maxDrift
}

// Err reports the first sample the invariant could not be evaluated at.
func (d *InvariantDrift) Err() error { return d.err }

func (d *InvariantDrift) Reset() {
	d.initial = 0
	d.maxDrift = 0
	d.samples = 0
	d.err = nil
}
