package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidParameter indicates a vehicle or solver configuration that
	// violates its invariants. It is reported before any stepping happens.
	ErrInvalidParameter = errors.New("dynamo: invalid parameter")

	// ErrInvalidState indicates a state vector with NaN or Inf components.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrNumericalStagnation indicates the adaptive controller could not
	// find an acceptable step at the minimum step size.
	ErrNumericalStagnation = errors.New("dynamo: adaptive step stagnated at minimum step size")

	// ErrMaxSteps indicates the step ceiling was reached before the run
	// produced its answer.
	ErrMaxSteps = errors.New("dynamo: maximum number of steps exceeded")

	// ErrContextCanceled indicates the simulation was interrupted.
	ErrContextCanceled = errors.New("dynamo: simulation canceled by context")

	// ErrDimensionMismatch indicates a state whose length does not match the model.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and model")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}

// InvalidParameter returns an error wrapping ErrInvalidParameter.
func InvalidParameter(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidParameter, fmt.Sprintf(format, args...))
}
