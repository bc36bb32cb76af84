package integrators

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/rocketsim/internal/dynamo"
)

type Method int

const (
	MethodEuler Method = iota
	MethodRK3
	MethodRK4
	MethodRK45
)

const (
	DefaultStepSize  = 0.01
	DefaultTolerance = 1e-6
	DefaultMinStep   = 1e-8
	DefaultMaxStep   = 0.1
)

var methodNames = map[Method]string{
	MethodEuler: "euler",
	MethodRK3:   "rk3",
	MethodRK4:   "rk4",
	MethodRK45:  "rk45",
}

func (m Method) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return fmt.Sprintf("method(%d)", int(m))
}

// Adaptive reports whether the method controls its own step size.
func (m Method) Adaptive() bool {
	return m == MethodRK45
}

func ParseMethod(name string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "euler":
		return MethodEuler, nil
	case "rk3", "ssprk3":
		return MethodRK3, nil
	case "rk4":
		return MethodRK4, nil
	case "rk45", "dopri", "adaptive":
		return MethodRK45, nil
	}
	return 0, dynamo.InvalidParameter("unknown integration method %q", name)
}

// Methods lists the supported methods in declaration order.
func Methods() []Method {
	return []Method{MethodEuler, MethodRK3, MethodRK4, MethodRK45}
}

type Tolerances struct {
	Absolute float64
	Relative float64
}

// Config selects a stepper and its parameters. It is a value and is built
// fresh for every run.
type Config struct {
	Method     Method
	StepSize   float64
	Tolerances Tolerances
	// InitialStep of zero derives the first adaptive step from the
	// tolerances.
	InitialStep float64
	MinStep     float64
	MaxStep     float64
}

// Fixed returns a fixed-step configuration.
func Fixed(method Method, stepSize float64) Config {
	return Config{Method: method, StepSize: stepSize}
}

type AdaptiveOption func(*Config)

func WithInitialStep(h float64) AdaptiveOption {
	return func(c *Config) { c.InitialStep = h }
}

func WithStepBounds(minStep, maxStep float64) AdaptiveOption {
	return func(c *Config) {
		c.MinStep = minStep
		c.MaxStep = maxStep
	}
}

// Adaptive returns an RK45 configuration with default step bounds.
func Adaptive(atol, rtol float64, opts ...AdaptiveOption) Config {
	c := Config{
		Method:     MethodRK45,
		Tolerances: Tolerances{Absolute: atol, Relative: rtol},
		MinStep:    DefaultMinStep,
		MaxStep:    DefaultMaxStep,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Bounds returns the step bounds, falling back to the defaults for unset
// values.
func (c Config) Bounds() (float64, float64) {
	lo, hi := c.MinStep, c.MaxStep
	if lo == 0 {
		lo = DefaultMinStep
	}
	if hi == 0 {
		hi = DefaultMaxStep
	}
	return lo, hi
}

func (c Config) Validate() error {
	if _, ok := methodNames[c.Method]; !ok {
		return dynamo.InvalidParameter("unknown integration method %d", int(c.Method))
	}

	if !c.Method.Adaptive() {
		if !positive(c.StepSize) {
			return dynamo.InvalidParameter("step size must be positive, got %g", c.StepSize)
		}
		return nil
	}

	if !positive(c.Tolerances.Absolute) {
		return dynamo.InvalidParameter("absolute tolerance must be positive, got %g", c.Tolerances.Absolute)
	}
	if !positive(c.Tolerances.Relative) {
		return dynamo.InvalidParameter("relative tolerance must be positive, got %g", c.Tolerances.Relative)
	}
	lo, hi := c.Bounds()
	if !positive(lo) || !positive(hi) {
		return dynamo.InvalidParameter("step bounds must be positive, got [%g, %g]", lo, hi)
	}
	if lo > hi {
		return dynamo.InvalidParameter("minimum step %g exceeds maximum step %g", lo, hi)
	}
	if c.InitialStep < 0 || math.IsNaN(c.InitialStep) || math.IsInf(c.InitialStep, 0) {
		return dynamo.InvalidParameter("initial step must be non-negative, got %g", c.InitialStep)
	}
	return nil
}

// FirstStep is the size of the first attempted step.
func (c Config) FirstStep() float64 {
	if !c.Method.Adaptive() {
		return c.StepSize
	}
	lo, hi := c.Bounds()
	h := c.InitialStep
	if h == 0 {
		h = 100 * math.Min(c.Tolerances.Absolute, c.Tolerances.Relative)
	}
	return clamp(h, lo, hi)
}

// Stepper validates the configuration and builds a new stepper.
func (c Config) Stepper() (Stepper, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	switch c.Method {
	case MethodEuler:
		return NewEuler(), nil
	case MethodRK3:
		return NewRK3(), nil
	case MethodRK4:
		return NewRK4(), nil
	default:
		lo, hi := c.Bounds()
		return NewRK45(c.Tolerances, lo, hi), nil
	}
}

func (c Config) String() string {
	if c.Method.Adaptive() {
		return fmt.Sprintf("%s(atol=%g, rtol=%g)", c.Method, c.Tolerances.Absolute, c.Tolerances.Relative)
	}
	return fmt.Sprintf("%s(h=%g)", c.Method, c.StepSize)
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}
