package integrators

import "github.com/san-kum/rocketsim/internal/dynamo"

// Step is the outcome of one accepted integration step.
type Step struct {
	State dynamo.State
	Time  float64
	// Size is the accepted step size, Next the proposed size of the
	// following step.
	Size float64
	Next float64
	// ErrNorm is the scaled RMS local error. It is only meaningful when
	// Estimated is true.
	ErrNorm   float64
	Estimated bool
	// Rejected counts the discarded attempts that preceded this step.
	Rejected int
}

// Stepper advances a model by one accepted step. Implementations always
// return a freshly allocated state.
type Stepper interface {
	Advance(m dynamo.Model, x dynamo.State, t, h float64) (Step, error)
}

func fixedStep(x dynamo.State, t, h float64) Step {
	return Step{State: x, Time: t + h, Size: h, Next: h}
}
