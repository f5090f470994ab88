package integrators

import "github.com/san-kum/lvsim/internal/dynamo"

// Euler is the explicit first-order method. Its drift on closed
// predator-prey orbits makes it a useful worst case in comparisons.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	next := make(dynamo.State, len(x))
	axpy(next, x, dt, dyn.Derive(x, t))
	return next
}

// axpy sets dst = x + h*k.
func axpy(dst, x dynamo.State, h float64, k dynamo.State) {
	for i := range dst {
		dst[i] = x[i] + h*k[i]
	}
}
