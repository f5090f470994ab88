package physics

import (
	"fmt"

	"github.com/san-kum/lvsim/internal/dynamo"
)

// Kinds of fixed point.
const (
	KindSaddle = "saddle"
	KindCenter = "center"
	KindSpiral = "spiral"
	KindNode   = "node"
)

// CriticalPoint is a state where every derivative vanishes.
type CriticalPoint struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Kind string  `json:"kind"`
}

// CriticalPoints returns the two fixed points of the Lotka-Volterra
// system: the origin and (c/d, a/b). Only b and d are divisors, so only
// they are checked here.
func CriticalPoints(p Params) ([]CriticalPoint, error) {
	if p.B == 0 {
		return nil, fmt.Errorf("%w: b must be non-zero to locate the interior fixed point", dynamo.ErrParameter)
	}
	if p.D == 0 {
		return nil, fmt.Errorf("%w: d must be non-zero to locate the interior fixed point", dynamo.ErrParameter)
	}
	return []CriticalPoint{
		{X: 0, Y: 0, Kind: KindSaddle},
		{X: p.C / p.D, Y: p.A / p.B, Kind: KindCenter},
	}, nil
}
