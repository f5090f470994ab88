package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/lvsim/internal/dynamo"
)

// Params holds the Lotka-Volterra coefficients.
//
//	A: prey growth rate
//	B: predation efficiency
//	C: predator death rate
//	D: predator growth per prey eaten
type Params struct {
	A float64 `yaml:"a" json:"a"`
	B float64 `yaml:"b" json:"b"`
	C float64 `yaml:"c" json:"c"`
	D float64 `yaml:"d" json:"d"`
}

// DefaultParams returns the lions-and-zebras coefficients.
func DefaultParams() Params {
	return Params{A: 0.1, B: 0.02, C: 0.3, D: 0.01}
}

// Validate rejects non-positive or non-finite coefficients.
func (p Params) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{{"a", p.A}, {"b", p.B}, {"c", p.C}, {"d", p.D}} {
		if !(f.v > 0) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: %s must be positive, got %g", dynamo.ErrParameter, f.name, f.v)
		}
	}
	return nil
}

// Rates is the Lotka-Volterra right-hand side. Every evaluation of the
// vector field, whether for integration or for grid sampling, goes
// through this function.
func Rates(p Params, x, y float64) (dx, dy float64) {
	dx = p.A*x - p.B*x*y
	dy = -p.C*y + p.D*x*y
	return dx, dy
}

// Conserved evaluates the first integral
//
//	C(x, y) = a*ln(y) - b*y + c*ln(x) - d*x
//
// which is constant along every trajectory. It is undefined for x <= 0
// or y <= 0.
func Conserved(p Params, x, y float64) (float64, error) {
	if !(x > 0) || !(y > 0) {
		return math.NaN(), fmt.Errorf("%w: conserved quantity needs x > 0 and y > 0, got (%g, %g)", dynamo.ErrDomain, x, y)
	}
	return p.A*math.Log(y) - p.B*y + p.C*math.Log(x) - p.D*x, nil
}

// LotkaVolterra implements the classic predator-prey system.
// State: [x, y] = [prey, predators]
// Equations:
//
//	dx/dt = a*x - b*x*y
//	dy/dt = -c*y + d*x*y
type LotkaVolterra struct {
	p Params
}

// NewLotkaVolterra validates p and returns the model.
func NewLotkaVolterra(p Params) (*LotkaVolterra, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &LotkaVolterra{p: p}, nil
}

func (l *LotkaVolterra) StateDim() int  { return 2 }
func (l *LotkaVolterra) Params() Params { return l.p }

// Derive is the scalar call site used by integrators. The system is
// autonomous; t is accepted for interface compatibility only.
func (l *LotkaVolterra) Derive(s dynamo.State, _ float64) dynamo.State {
	dx, dy := Rates(l.p, s[0], s[1])
	return dynamo.State{dx, dy}
}

// Rates is the grid call site used by field sampling.
func (l *LotkaVolterra) Rates(x, y float64) (float64, float64) {
	return Rates(l.p, x, y)
}

// Conserved implements dynamo.Invariant.
func (l *LotkaVolterra) Conserved(s dynamo.State) (float64, error) {
	return Conserved(l.p, s[0], s[1])
}

// ConservedAt evaluates the first integral at a single point.
func (l *LotkaVolterra) ConservedAt(x, y float64) (float64, error) {
	return Conserved(l.p, x, y)
}

func (l *LotkaVolterra) CriticalPoints() ([]CriticalPoint, error) {
	return CriticalPoints(l.p)
}

// GetParams implements dynamo.Configurable
func (l *LotkaVolterra) GetParams() map[string]float64 {
	return map[string]float64{"a": l.p.A, "b": l.p.B, "c": l.p.C, "d": l.p.D}
}
