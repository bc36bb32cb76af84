package models

import (
	"math"

	"github.com/san-kum/rocketsim/internal/dynamo"
	"github.com/san-kum/rocketsim/internal/vehicle"
)

// Initial is the starting condition of a run. The concrete type selects the
// model dimensionality, so a state can never carry fields of another model.
type Initial interface {
	// Model builds the dynamics model for this state layout.
	Model(v vehicle.Vehicle) dynamo.Model
	// Vector returns the state in model order.
	Vector() dynamo.State
	initial()
}

// OneDOF is the initial state of the vertical model.
type OneDOF struct {
	Altitude float64
	Velocity float64
}

func (s OneDOF) Model(v vehicle.Vehicle) dynamo.Model { return NewOneDOF(v) }
func (s OneDOF) Vector() dynamo.State                 { return dynamo.State{s.Altitude, s.Velocity} }
func (OneDOF) initial()                               {}

// ThreeDOF is the initial state of the planar model.
type ThreeDOF struct {
	X         float64
	Altitude  float64
	Pitch     float64
	VX        float64
	VY        float64
	PitchRate float64
}

func (s ThreeDOF) Model(v vehicle.Vehicle) dynamo.Model { return NewThreeDOF(v) }
func (s ThreeDOF) Vector() dynamo.State {
	return dynamo.State{s.X, s.Altitude, s.Pitch, s.VX, s.VY, s.PitchRate}
}
func (ThreeDOF) initial() {}

// Launch returns a 3DOF state at the given altitude whose velocity points
// along the body axis.
func Launch(altitude, speed, pitch float64) ThreeDOF {
	sin, cos := math.Sincos(pitch)
	return ThreeDOF{
		Altitude: altitude,
		Pitch:    pitch,
		VX:       speed * cos,
		VY:       speed * sin,
	}
}

// Dimensions returns the degrees of freedom of the model selected by s.
func Dimensions(s Initial) int {
	switch s.(type) {
	case OneDOF:
		return 1
	case ThreeDOF:
		return 3
	default:
		return 0
	}
}
