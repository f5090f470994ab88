package integrators

import "github.com/san-kum/lvsim/internal/dynamo"

// Stage offsets and weights (in sixths) of the classic tableau.
var (
	rk4Nodes   = [4]float64{0, 0.5, 0.5, 1}
	rk4Weights = [4]float64{1, 2, 2, 1}
)

// RK4 is the classic fixed-step fourth-order Runge-Kutta method. It has
// no error estimate; SolveFixed substeps it between grid points.
type RK4 struct {
	k   [4]dynamo.State
	tmp dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) resize(n int) {
	if len(r.tmp) == n {
		return
	}
	for s := range r.k {
		r.k[s] = make(dynamo.State, n)
	}
	r.tmp = make(dynamo.State, n)
}

// Step takes one step of size dt. Each stage evaluates the field at the
// previous stage's slope scaled by its node offset.
func (r *RK4) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	r.resize(len(x))

	copy(r.k[0], dyn.Derive(x, t))
	for s := 1; s < len(r.k); s++ {
		h := rk4Nodes[s] * dt
		axpy(r.tmp, x, h, r.k[s-1])
		copy(r.k[s], dyn.Derive(r.tmp, t+h))
	}

	next := x.Clone()
	for s, w := range rk4Weights {
		axpy(next, next, dt*w/6, r.k[s])
	}
	return next
}
