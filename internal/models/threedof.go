package models

import (
	"math"

	"github.com/san-kum/rocketsim/internal/dynamo"
	"github.com/san-kum/rocketsim/internal/vehicle"
)

// ThreeDOFModel is a planar model with translation in a vertical plane and
// rotation about the pitch axis. State: [x, altitude, pitch, vx, vy, pitchRate].
// Pitch is measured counter-clockwise from the horizontal.
type ThreeDOFModel struct {
	v vehicle.Vehicle
}

func NewThreeDOF(v vehicle.Vehicle) *ThreeDOFModel {
	return &ThreeDOFModel{v: v}
}

func (m *ThreeDOFModel) Name() string  { return "3dof" }
func (m *ThreeDOFModel) StateDim() int { return 6 }

func (m *ThreeDOFModel) Vehicle() vehicle.Vehicle { return m.v }

func (m *ThreeDOFModel) Derivative(x dynamo.State, t float64) dynamo.State {
	ax, ay, alpha := m.accelerations(x)
	return dynamo.State{x[3], x[4], x[5], ax, ay, alpha}
}

// AngleOfAttack returns pitch minus the flight path angle, wrapped to
// (-pi, pi]. It is zero when the vehicle is (nearly) at rest.
func (m *ThreeDOFModel) AngleOfAttack(x dynamo.State) float64 {
	vx, vy := x[3], x[4]
	if math.Hypot(vx, vy) < minSpeed {
		return 0
	}
	return wrapAngle(x[2] - math.Atan2(vy, vx))
}

func (m *ThreeDOFModel) accelerations(x dynamo.State) (ax, ay, alpha float64) {
	vx, vy := x[3], x[4]
	speed := math.Hypot(vx, vy)
	if speed < minSpeed {
		return 0, -Gravity, 0
	}

	ux, uy := vx/speed, vy/speed
	q := DynamicPressure(speed)
	drag := q * m.v.DragCoefficient * m.v.ReferenceArea
	lift := q * m.v.LiftSlope * m.AngleOfAttack(x) * m.v.LiftingArea

	// drag opposes the velocity, lift acts along the velocity rotated +90 degrees
	fx := -drag*ux - lift*uy
	fy := -drag*uy + lift*ux

	ax = fx / m.v.Mass
	ay = fy/m.v.Mass - Gravity
	alpha = -m.v.StaticMargin * lift / m.v.MomentOfInertia
	return ax, ay, alpha
}

func (m *ThreeDOFModel) Altitude(x dynamo.State) float64         { return x[1] }
func (m *ThreeDOFModel) VerticalVelocity(x dynamo.State) float64 { return x[4] }

func (m *ThreeDOFModel) Columns() []string {
	return []string{"x", "altitude", "pitch", "vx", "vy", "pitch_rate", "ax", "ay", "pitch_accel"}
}

func (m *ThreeDOFModel) LogRow(x dynamo.State, t float64) []float64 {
	ax, ay, alpha := m.accelerations(x)
	return []float64{x[0], x[1], x[2], x[3], x[4], x[5], ax, ay, alpha}
}

// Energy returns the translational specific energy plus the rotational
// energy divided by mass.
func (m *ThreeDOFModel) Energy(x dynamo.State) float64 {
	vx, vy, omega := x[3], x[4], x[5]
	ke := 0.5 * (vx*vx + vy*vy)
	keRot := 0.5 * m.v.MomentOfInertia * omega * omega / m.v.Mass
	return ke + keRot + Gravity*x[1]
}
