package config

import (
	"math"
	"sort"
)

var referenceVehicle = VehicleSpec{
	Mass:            DefaultMass,
	DragCoefficient: DefaultDragCoefficient,
	ReferenceArea:   DefaultReferenceArea,
	LiftingArea:     DefaultLiftingArea,
	MomentOfInertia: DefaultInertia,
	StaticMargin:    DefaultStaticMargin,
	LiftSlope:       DefaultLiftSlope,
}

var Presets = map[string]map[string]*Config{
	ModelOneDOF: {
		"reference": {
			Model: ModelOneDOF, Vehicle: referenceVehicle,
			Initial: InitialSpec{Velocity: 100},
			Solver:  SolverSpec{Method: "rk45", AbsTol: 1e-6, RelTol: 1e-6},
		},
		"euler": {
			Model: ModelOneDOF, Vehicle: referenceVehicle,
			Initial: InitialSpec{Velocity: 100},
			Solver:  SolverSpec{Method: "euler", StepSize: 0.01},
		},
		"loose": {
			Model: ModelOneDOF, Vehicle: referenceVehicle,
			Initial: InitialSpec{Velocity: 100},
			Solver:  SolverSpec{Method: "rk45", AbsTol: 1.0, RelTol: 1.0},
		},
		"high-drag": {
			Model: ModelOneDOF,
			Vehicle: VehicleSpec{
				Mass: 2, DragCoefficient: 1.2, ReferenceArea: 0.02, LiftingArea: 0.05,
				MomentOfInertia: 1, StaticMargin: 0.3, LiftSlope: 0.2,
			},
			Initial: InitialSpec{Velocity: 250},
			Solver:  SolverSpec{Method: "rk45", AbsTol: 1e-6, RelTol: 1e-6},
		},
		"drop": {
			Model: ModelOneDOF, Vehicle: referenceVehicle,
			Initial: InitialSpec{Altitude: 500},
			Solver:  SolverSpec{Method: "rk4", StepSize: 0.01},
		},
	},
	ModelThreeDOF: {
		"vertical": {
			Model: ModelThreeDOF, Vehicle: referenceVehicle,
			Initial: InitialSpec{Velocity: 100, Pitch: math.Pi / 2},
			Solver:  SolverSpec{Method: "rk45", AbsTol: 1e-6, RelTol: 1e-6},
		},
		"tilted": {
			Model: ModelThreeDOF, Vehicle: referenceVehicle,
			Initial: InitialSpec{Velocity: 100, Pitch: 80 * math.Pi / 180},
			Solver:  SolverSpec{Method: "rk45", AbsTol: 1e-6, RelTol: 1e-6},
		},
		"wobble": {
			Model: ModelThreeDOF, Vehicle: referenceVehicle,
			Initial: InitialSpec{Velocity: 120, Pitch: 75 * math.Pi / 180, PitchRate: 0.5},
			Solver:  SolverSpec{Method: "rk4", StepSize: 0.005},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	out := *cfg
	return &out
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
