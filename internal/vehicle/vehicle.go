// Package vehicle describes the physical parameters of a coasting rocket.
package vehicle

import (
	"math"

	"github.com/san-kum/rocketsim/internal/dynamo"
)

// Vehicle holds the immutable parameters of a rocket. It is a value type:
// one Vehicle is shared read-only by every step of a run and across runs.
type Vehicle struct {
	Mass            float64 // kg
	DragCoefficient float64
	ReferenceArea   float64 // m^2, cross-section used for drag
	LiftingArea     float64 // m^2, lifting-surface reference area
	MomentOfInertia float64 // kg m^2 about the pitch axis (3DOF only)
	StaticMargin    float64 // m, distance between center of pressure and center of gravity
	LiftSlope       float64 // per radian
}

// New builds a Vehicle from its seven positional parameters and validates it.
func New(mass, cd, referenceArea, liftingArea, inertia, staticMargin, liftSlope float64) (Vehicle, error) {
	v := Vehicle{
		Mass:            mass,
		DragCoefficient: cd,
		ReferenceArea:   referenceArea,
		LiftingArea:     liftingArea,
		MomentOfInertia: inertia,
		StaticMargin:    staticMargin,
		LiftSlope:       liftSlope,
	}
	if err := v.Validate(); err != nil {
		return Vehicle{}, err
	}
	return v, nil
}

// Validate reports the first violated invariant as an error wrapping
// dynamo.ErrInvalidParameter.
func (v Vehicle) Validate() error {
	for _, p := range v.params() {
		if math.IsNaN(p.value) || math.IsInf(p.value, 0) {
			return dynamo.InvalidParameter("%s must be finite, got %g", p.name, p.value)
		}
	}
	if v.Mass <= 0 {
		return dynamo.InvalidParameter("mass must be positive, got %g", v.Mass)
	}
	if v.DragCoefficient < 0 {
		return dynamo.InvalidParameter("drag coefficient must be non-negative, got %g", v.DragCoefficient)
	}
	if v.ReferenceArea <= 0 {
		return dynamo.InvalidParameter("reference area must be positive, got %g", v.ReferenceArea)
	}
	if v.LiftingArea <= 0 {
		return dynamo.InvalidParameter("lifting area must be positive, got %g", v.LiftingArea)
	}
	if v.MomentOfInertia <= 0 {
		return dynamo.InvalidParameter("moment of inertia must be positive, got %g", v.MomentOfInertia)
	}
	return nil
}

// Params returns the parameters keyed by name, for metadata and display.
func (v Vehicle) Params() map[string]float64 {
	out := make(map[string]float64, 7)
	for _, p := range v.params() {
		out[p.name] = p.value
	}
	return out
}

type param struct {
	name  string
	value float64
}

func (v Vehicle) params() []param {
	return []param{
		{"mass", v.Mass},
		{"drag_coefficient", v.DragCoefficient},
		{"reference_area", v.ReferenceArea},
		{"lifting_area", v.LiftingArea},
		{"moment_of_inertia", v.MomentOfInertia},
		{"static_margin", v.StaticMargin},
		{"lift_slope", v.LiftSlope},
	}
}
