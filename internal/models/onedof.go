package models

import (
	"github.com/san-kum/rocketsim/internal/dynamo"
	"github.com/san-kum/rocketsim/internal/vehicle"
)

// OneDOFModel is a vertical-only coast model with state [altitude, velocity].
type OneDOFModel struct {
	v vehicle.Vehicle
}

func NewOneDOF(v vehicle.Vehicle) *OneDOFModel {
	return &OneDOFModel{v: v}
}

func (m *OneDOFModel) Name() string  { return "1dof" }
func (m *OneDOFModel) StateDim() int { return 2 }

func (m *OneDOFModel) Vehicle() vehicle.Vehicle { return m.v }

func (m *OneDOFModel) Derivative(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{x[1], m.acceleration(x[1])}
}

// acceleration is gravity plus drag opposing the sign of the velocity.
func (m *OneDOFModel) acceleration(vel float64) float64 {
	drag := DragForce(vel, m.v.DragCoefficient, m.v.ReferenceArea)
	sign := 0.0
	if vel > 0 {
		sign = 1
	} else if vel < 0 {
		sign = -1
	}
	return -Gravity - sign*drag/m.v.Mass
}

func (m *OneDOFModel) Altitude(x dynamo.State) float64         { return x[0] }
func (m *OneDOFModel) VerticalVelocity(x dynamo.State) float64 { return x[1] }

func (m *OneDOFModel) Columns() []string {
	return []string{"altitude", "velocity", "acceleration"}
}

func (m *OneDOFModel) LogRow(x dynamo.State, t float64) []float64 {
	return []float64{x[0], x[1], m.acceleration(x[1])}
}

// Energy returns the specific mechanical energy (per unit mass).
func (m *OneDOFModel) Energy(x dynamo.State) float64 {
	return 0.5*x[1]*x[1] + Gravity*x[0]
}
