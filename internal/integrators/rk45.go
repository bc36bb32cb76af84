package integrators

import (
	"fmt"
	"math"

	"github.com/san-kum/rocketsim/internal/dynamo"
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

// maxRejects bounds the consecutive rejected attempts of one step.
const maxRejects = 64

// RK45 is the Dormand-Prince 5(4) pair with a step size controller.
type RK45 struct {
	atol, rtol       float64
	minStep, maxStep float64

	safety   float64
	minScale float64
	maxScale float64
}

func NewRK45(tol Tolerances, minStep, maxStep float64) *RK45 {
	return &RK45{
		atol:     tol.Absolute,
		rtol:     tol.Relative,
		minStep:  minStep,
		maxStep:  maxStep,
		safety:   0.9,
		minScale: 0.2,
		maxScale: 5.0,
	}
}

// Advance retries the step with shrinking sizes until the local error
// estimate is within tolerance. Rejected attempts never advance time.
func (r *RK45) Advance(m dynamo.Model, x dynamo.State, t, h float64) (Step, error) {
	h = clamp(h, r.minStep, r.maxStep)
	rejected := 0

	for {
		xNew, errNorm := r.attempt(m, x, t, h)
		if !xNew.IsValid() || math.IsNaN(errNorm) {
			errNorm = math.Inf(1)
		}

		if errNorm <= 1 {
			return Step{
				State:     xNew,
				Time:      t + h,
				Size:      h,
				Next:      r.propose(h, errNorm),
				ErrNorm:   errNorm,
				Estimated: true,
				Rejected:  rejected,
			}, nil
		}

		rejected++
		if h <= r.minStep || rejected > maxRejects {
			return Step{Time: t, Size: h, ErrNorm: errNorm, Estimated: true, Rejected: rejected},
				fmt.Errorf("%w: h=%g err=%g after %d rejections", dynamo.ErrNumericalStagnation, h, errNorm, rejected)
		}
		h = r.propose(h, errNorm)
	}
}

func (r *RK45) propose(h, errNorm float64) float64 {
	factor := r.maxScale
	if errNorm > 0 {
		factor = clamp(r.safety*math.Pow(errNorm, -0.2), r.minScale, r.maxScale)
	}
	return clamp(h*factor, r.minStep, r.maxStep)
}

func (r *RK45) attempt(m dynamo.Model, x dynamo.State, t, dt float64) (dynamo.State, float64) {
	n := len(x)

	k1 := m.Derivative(x, t)

	x2 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x2[i] = x[i] + dt*b21*k1[i]
	}
	k2 := m.Derivative(x2, t+a2*dt)

	x3 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x3[i] = x[i] + dt*(b31*k1[i]+b32*k2[i])
	}
	k3 := m.Derivative(x3, t+a3*dt)

	x4 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x4[i] = x[i] + dt*(b41*k1[i]+b42*k2[i]+b43*k3[i])
	}
	k4 := m.Derivative(x4, t+a4*dt)

	x5 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x5[i] = x[i] + dt*(b51*k1[i]+b52*k2[i]+b53*k3[i]+b54*k4[i])
	}
	k5 := m.Derivative(x5, t+a5*dt)

	x6 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x6[i] = x[i] + dt*(b61*k1[i]+b62*k2[i]+b63*k3[i]+b64*k4[i]+b65*k5[i])
	}
	k6 := m.Derivative(x6, t+dt)

	xNew := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		xNew[i] = x[i] + dt*(c1*k1[i]+c3*k3[i]+c4*k4[i]+c5*k5[i]+c6*k6[i])
	}

	k7 := m.Derivative(xNew, t+dt)

	sum := 0.0
	for i := 0; i < n; i++ {
		errEst := dt * (dc1*k1[i] + dc3*k3[i] + dc4*k4[i] + dc5*k5[i] + dc6*k6[i] + dc7*k7[i])
		scale := r.atol + r.rtol*math.Max(math.Abs(x[i]), math.Abs(xNew[i]))
		ratio := errEst / scale
		sum += ratio * ratio
	}

	return xNew, math.Sqrt(sum / float64(n))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
