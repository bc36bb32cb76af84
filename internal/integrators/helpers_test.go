package integrators

import (
	"math"

	"github.com/san-kum/rocketsim/internal/dynamo"
)

type harmonicOscillator struct{}

func (h *harmonicOscillator) StateDim() int { return 2 }

func (h *harmonicOscillator) Derivative(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}

func (h *harmonicOscillator) Altitude(x dynamo.State) float64         { return x[0] }
func (h *harmonicOscillator) VerticalVelocity(x dynamo.State) float64 { return x[1] }
func (h *harmonicOscillator) Columns() []string                      { return []string{"x", "v"} }
func (h *harmonicOscillator) LogRow(x dynamo.State, t float64) []float64 {
	return []float64{x[0], x[1]}
}

func (h *harmonicOscillator) Energy(x dynamo.State) float64 {
	return 0.5 * (x[0]*x[0] + x[1]*x[1])
}

// freeFall is the drag-free vertical model; its solution is quadratic in t.
type freeFall struct{ harmonicOscillator }

func (f *freeFall) Derivative(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{x[1], -9.8}
}

type nanModel struct{ harmonicOscillator }

func (n *nanModel) Derivative(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{math.NaN(), x[0]}
}

// integrate runs s from 0 to end and returns the final state with the
// number of accepted and rejected steps.
func integrate(s Stepper, m dynamo.Model, x dynamo.State, h, end float64) (dynamo.State, int, int, error) {
	t := 0.0
	accepted, rejected := 0, 0
	for t < end-1e-12 {
		if t+h > end {
			h = end - t
		}
		step, err := s.Advance(m, x, t, h)
		if err != nil {
			return x, accepted, rejected, err
		}
		x, t, h = step.State, step.Time, step.Next
		accepted++
		rejected += step.Rejected
	}
	return x, accepted, rejected, nil
}
