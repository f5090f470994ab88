package integrators

import (
	"math"

	"github.com/san-kum/lvsim/internal/dynamo"
)

// Dormand-Prince coefficients (RK45)
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

// RK45 is the Dormand-Prince 5(4) embedded pair. The fifth-order solution
// is propagated; the difference to the fourth-order one estimates the
// local error.
type RK45 struct {
	safety   float64
	minScale float64
	maxScale float64

	k1, k2, k3, k4, k5, k6, k7 dynamo.State
	scratch                    dynamo.State
}

func NewRK45() *RK45 {
	return &RK45{
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
	}
}

func (r *RK45) Order() int { return 5 }

func (r *RK45) ensureScratch(n int) {
	if len(r.scratch) != n {
		r.k1 = make(dynamo.State, n)
		r.k2 = make(dynamo.State, n)
		r.k3 = make(dynamo.State, n)
		r.k4 = make(dynamo.State, n)
		r.k5 = make(dynamo.State, n)
		r.k6 = make(dynamo.State, n)
		r.k7 = make(dynamo.State, n)
		r.scratch = make(dynamo.State, n)
	}
}

// Step takes one step of size dt without error control.
func (r *RK45) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	newX, _, _ := r.StepAdaptive(dyn, x, t, dt, 1e-6, 1e-9)
	return newX
}

// StepAdaptive takes one step of size dt and returns the new state, the
// RMS local error scaled by atol + rtol*max(|x|, |xNew|), and the step
// size suggested for the next attempt. The caller decides whether to
// accept the step (errRatio <= 1).
func (r *RK45) StepAdaptive(dyn dynamo.System, x dynamo.State, t, dt, rtol, atol float64) (dynamo.State, float64, float64) {
	n := len(x)
	r.ensureScratch(n)

	copy(r.k1, dyn.Derive(x, t))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*b21*r.k1[i]
	}
	copy(r.k2, dyn.Derive(r.scratch, t+a2*dt))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*(b31*r.k1[i]+b32*r.k2[i])
	}
	copy(r.k3, dyn.Derive(r.scratch, t+a3*dt))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*(b41*r.k1[i]+b42*r.k2[i]+b43*r.k3[i])
	}
	copy(r.k4, dyn.Derive(r.scratch, t+a4*dt))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*(b51*r.k1[i]+b52*r.k2[i]+b53*r.k3[i]+b54*r.k4[i])
	}
	copy(r.k5, dyn.Derive(r.scratch, t+a5*dt))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*(b61*r.k1[i]+b62*r.k2[i]+b63*r.k3[i]+b64*r.k4[i]+b65*r.k5[i])
	}
	copy(r.k6, dyn.Derive(r.scratch, t+dt))

	xNew := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		xNew[i] = x[i] + dt*(c1*r.k1[i]+c3*r.k3[i]+c4*r.k4[i]+c5*r.k5[i]+c6*r.k6[i])
	}

	copy(r.k7, dyn.Derive(xNew, t+dt))

	sum := 0.0
	for i := 0; i < n; i++ {
		errEst := dt * (dc1*r.k1[i] + dc3*r.k3[i] + dc4*r.k4[i] + dc5*r.k5[i] + dc6*r.k6[i] + dc7*r.k7[i])
		scale := atol + rtol*math.Max(math.Abs(x[i]), math.Abs(xNew[i]))
		e := errEst / scale
		sum += e * e
	}
	errRatio := math.Sqrt(sum / float64(n))

	var dtNew float64
	switch {
	case math.IsNaN(errRatio) || math.IsInf(errRatio, 0):
		dtNew = dt * r.minScale
	case errRatio > 1:
		scale := math.Max(r.minScale, r.safety*math.Pow(errRatio, -0.25))
		dtNew = dt * scale
	case errRatio > 0:
		scale := math.Min(r.maxScale, r.safety*math.Pow(errRatio, -0.2))
		dtNew = dt * scale
	default:
		dtNew = dt * r.maxScale
	}

	return xNew, errRatio, dtNew
}
