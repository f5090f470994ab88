package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/lvsim/internal/dynamo"
)

// Logistic implements the Lotka-Volterra system with a prey carrying
// capacity. Without predators the prey grows logistically towards K.
// Equations:
//
//	dx/dt = a*x*(1 - x/K) - b*x*y
//	dy/dt = -c*y + d*x*y
//
// The system has no first integral; trajectories spiral into the
// interior fixed point when it exists.
type Logistic struct {
	p Params
	k float64
}

func NewLogistic(p Params, k float64) (*Logistic, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if !(k > 0) || math.IsInf(k, 0) {
		return nil, fmt.Errorf("%w: carrying capacity k must be positive, got %g", dynamo.ErrParameter, k)
	}
	return &Logistic{p: p, k: k}, nil
}

// LogisticRates is the right-hand side of the logistic variant.
func LogisticRates(p Params, k, x, y float64) (dx, dy float64) {
	dx = p.A*x*(1-x/k) - p.B*x*y
	dy = -p.C*y + p.D*x*y
	return dx, dy
}

func (l *Logistic) StateDim() int  { return 2 }
func (l *Logistic) Params() Params { return l.p }

func (l *Logistic) Derive(s dynamo.State, _ float64) dynamo.State {
	dx, dy := LogisticRates(l.p, l.k, s[0], s[1])
	return dynamo.State{dx, dy}
}

func (l *Logistic) Rates(x, y float64) (float64, float64) {
	return LogisticRates(l.p, l.k, x, y)
}

// CriticalPoints returns (0,0), (K,0) and, when K > c/d, the interior
// point (c/d, a/b*(1 - c/(d*K))).
func (l *Logistic) CriticalPoints() ([]CriticalPoint, error) {
	if l.p.B == 0 || l.p.D == 0 {
		return nil, fmt.Errorf("%w: b and d must be non-zero", dynamo.ErrParameter)
	}
	xs := l.p.C / l.p.D

	edge := CriticalPoint{X: l.k, Y: 0, Kind: KindSaddle}
	if l.k <= xs {
		edge.Kind = KindNode
	}
	points := []CriticalPoint{{X: 0, Y: 0, Kind: KindSaddle}, edge}
	if l.k <= xs {
		return points, nil
	}

	ys := l.p.A / l.p.B * (1 - xs/l.k)
	// Jacobian at the interior point: trace -a*x/K, determinant b*d*x*y.
	trace := -l.p.A * xs / l.k
	det := l.p.B * l.p.D * xs * ys
	kind := KindSpiral
	if trace*trace-4*det >= 0 {
		kind = KindNode
	}
	return append(points, CriticalPoint{X: xs, Y: ys, Kind: kind}), nil
}

func (l *Logistic) GetParams() map[string]float64 {
	return map[string]float64{"a": l.p.A, "b": l.p.B, "c": l.p.C, "d": l.p.D, "k": l.k}
}
