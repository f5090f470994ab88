package metrics

import (
	"math"

	"github.com/san-kum/lvsim/internal/dynamo"
)

// Boundedness is the fraction of samples whose every component lies in
// [0, limit]. A non-positive limit is replaced by ten times the largest
// component of the first sample.
type Boundedness struct {
	name       string
	limit      float64
	auto       bool
	violations int
	samples    int
}

func NewBoundedness(limit float64) *Boundedness {
	return &Boundedness{
		name:  "boundedness",
		limit: limit,
		auto:  !(limit > 0),
	}
}

func (b *Boundedness) Name() string {
	return b.name
}

func (b *Boundedness) Observe(x dynamo.State, t float64) {
	if b.samples == 0 && b.auto {
		b.limit = 0
		for _, v := range x {
			b.limit = math.Max(b.limit, 10*v)
		}
	}
	b.samples++
	for _, v := range x {
		if v < 0 || v > b.limit || math.IsNaN(v) {
			b.violations++
			break
		}
	}
}

func (b *Boundedness) Value() float64 {
	if b.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(b.violations)/float64(b.samples)
}

// Limit is the upper bound in effect.
func (b *Boundedness) Limit() float64 { return b.limit }

func (b *Boundedness) Reset() {
	b.violations = 0
	b.samples = 0
	if b.auto {
		b.limit = 0
	}
}
