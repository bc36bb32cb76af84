package integrators

import "github.com/san-kum/rocketsim/internal/dynamo"

// RK3 is the three-stage strong stability preserving Runge-Kutta scheme
// (Shu-Osher form).
type RK3 struct {
	scratch dynamo.State
}

func NewRK3() *RK3 {
	return &RK3{}
}

func (r *RK3) Advance(m dynamo.Model, x dynamo.State, t, h float64) (Step, error) {
	n := len(x)
	if len(r.scratch) != n {
		r.scratch = make(dynamo.State, n)
	}

	k1 := m.Derivative(x, t)
	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + h*k1[i]
	}

	k2 := m.Derivative(r.scratch, t+h)
	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + 0.25*h*(k1[i]+k2[i])
	}

	k3 := m.Derivative(r.scratch, t+0.5*h)

	result := make(dynamo.State, n)
	h6 := h / 6.0
	for i := 0; i < n; i++ {
		result[i] = x[i] + h6*(k1[i]+k2[i]+4*k3[i])
	}
	return fixedStep(result, t, h), nil
}
