package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/rocketsim/internal/dynamo"
	"github.com/san-kum/rocketsim/internal/integrators"
	"github.com/san-kum/rocketsim/internal/models"
	"github.com/san-kum/rocketsim/internal/vehicle"
)

const (
	ModelOneDOF   = "1dof"
	ModelThreeDOF = "3dof"
)

const (
	DefaultMass            = 10.0
	DefaultDragCoefficient = 0.3
	DefaultReferenceArea   = 0.005
	DefaultLiftingArea     = 0.05
	DefaultInertia         = 5.0
	DefaultStaticMargin    = 0.5
	DefaultLiftSlope       = 0.2
	DefaultVelocity        = 100.0
	DefaultMethod          = "rk45"
)

type Config struct {
	Model    string      `yaml:"model"`
	Vehicle  VehicleSpec `yaml:"vehicle"`
	Initial  InitialSpec `yaml:"initial"`
	Solver   SolverSpec  `yaml:"solver"`
	MaxSteps int         `yaml:"max_steps"`
}

type VehicleSpec struct {
	Mass            float64 `yaml:"mass"`
	DragCoefficient float64 `yaml:"drag_coefficient"`
	ReferenceArea   float64 `yaml:"reference_area"`
	LiftingArea     float64 `yaml:"lifting_area"`
	MomentOfInertia float64 `yaml:"moment_of_inertia"`
	StaticMargin    float64 `yaml:"static_margin"`
	LiftSlope       float64 `yaml:"lift_slope"`
}

// InitialSpec covers both models. X, Pitch and PitchRate are ignored by the
// 1DOF model; for 3DOF the velocity is directed along the body axis.
type InitialSpec struct {
	Altitude  float64 `yaml:"altitude"`
	Velocity  float64 `yaml:"velocity"`
	X         float64 `yaml:"x,omitempty"`
	Pitch     float64 `yaml:"pitch,omitempty"`
	PitchRate float64 `yaml:"pitch_rate,omitempty"`
}

type SolverSpec struct {
	Method      string  `yaml:"method"`
	StepSize    float64 `yaml:"step_size,omitempty"`
	AbsTol      float64 `yaml:"abs_tol,omitempty"`
	RelTol      float64 `yaml:"rel_tol,omitempty"`
	InitialStep float64 `yaml:"initial_step,omitempty"`
	MinStep     float64 `yaml:"min_step,omitempty"`
	MaxStep     float64 `yaml:"max_step,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Model: ModelOneDOF,
		Vehicle: VehicleSpec{
			Mass:            DefaultMass,
			DragCoefficient: DefaultDragCoefficient,
			ReferenceArea:   DefaultReferenceArea,
			LiftingArea:     DefaultLiftingArea,
			MomentOfInertia: DefaultInertia,
			StaticMargin:    DefaultStaticMargin,
			LiftSlope:       DefaultLiftSlope,
		},
		Initial: InitialSpec{
			Velocity: DefaultVelocity,
			Pitch:    math.Pi / 2,
		},
		Solver: SolverSpec{
			Method:   DefaultMethod,
			StepSize: integrators.DefaultStepSize,
			AbsTol:   integrators.DefaultTolerance,
			RelTol:   integrators.DefaultTolerance,
			MinStep:  integrators.DefaultMinStep,
			MaxStep:  integrators.DefaultMaxStep,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks every section by building it.
func (c *Config) Validate() error {
	if _, err := c.VehicleParams(); err != nil {
		return fmt.Errorf("vehicle: %w", err)
	}
	if _, err := c.InitialState(); err != nil {
		return fmt.Errorf("initial: %w", err)
	}
	if _, err := c.SolverConfig(); err != nil {
		return fmt.Errorf("solver: %w", err)
	}
	if c.MaxSteps < 0 {
		return dynamo.InvalidParameter("max_steps must not be negative, got %d", c.MaxSteps)
	}
	return nil
}

func (c *Config) VehicleParams() (vehicle.Vehicle, error) {
	v := c.Vehicle
	return vehicle.New(v.Mass, v.DragCoefficient, v.ReferenceArea, v.LiftingArea,
		v.MomentOfInertia, v.StaticMargin, v.LiftSlope)
}

func (c *Config) InitialState() (models.Initial, error) {
	in := c.Initial
	switch c.Model {
	case ModelOneDOF, "":
		return models.OneDOF{Altitude: in.Altitude, Velocity: in.Velocity}, nil
	case ModelThreeDOF:
		s := models.Launch(in.Altitude, in.Velocity, in.Pitch)
		s.X = in.X
		s.PitchRate = in.PitchRate
		return s, nil
	default:
		return nil, dynamo.InvalidParameter("unknown model %q", c.Model)
	}
}

func (c *Config) SolverConfig() (integrators.Config, error) {
	s := c.Solver
	method, err := integrators.ParseMethod(s.Method)
	if err != nil {
		return integrators.Config{}, err
	}

	var cfg integrators.Config
	if method.Adaptive() {
		cfg = integrators.Adaptive(s.AbsTol, s.RelTol,
			integrators.WithInitialStep(s.InitialStep),
			integrators.WithStepBounds(s.MinStep, s.MaxStep))
	} else {
		cfg = integrators.Fixed(method, s.StepSize)
	}
	return cfg, cfg.Validate()
}
