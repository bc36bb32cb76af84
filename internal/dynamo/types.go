package dynamo

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	return floats.Norm(s, 2)
}

// Add returns s + other. Both vectors must have the same length.
func (s State) Add(other State) State {
	return floats.AddTo(make(State, len(s)), s, other)
}

// Sub returns s - other. Both vectors must have the same length.
func (s State) Sub(other State) State {
	return floats.SubTo(make(State, len(s)), s, other)
}

func (s State) Scale(factor float64) State {
	return floats.ScaleTo(make(State, len(s)), factor, s)
}

// AddScaled returns s + alpha*dir without touching either operand.
func (s State) AddScaled(alpha float64, dir State) State {
	return floats.AddScaledTo(make(State, len(s)), s, alpha, dir)
}

// Model is the vehicle dynamics contract. Implementations are pure: they
// hold only immutable parameters and may be called concurrently.
type Model interface {
	Derivative(x State, t float64) State
	StateDim() int
	Altitude(x State) float64
	VerticalVelocity(x State) float64
	// Columns names the values returned by LogRow, in order.
	Columns() []string
	// LogRow returns the state components followed by derived quantities.
	LogRow(x State, t float64) []float64
}

// Named is implemented by models that expose a short identifier.
type Named interface {
	Name() string
}
