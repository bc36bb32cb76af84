package integrators

import "github.com/san-kum/rocketsim/internal/dynamo"

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Advance(m dynamo.Model, x dynamo.State, t, h float64) (Step, error) {
	dx := m.Derivative(x, t)
	return fixedStep(x.AddScaled(h, dx), t, h), nil
}
