// Package dynamo provides the core primitives shared by the rocket flight
// models, the steppers and the simulation driver.
//
// The package defines:
//
//   - [State]: state vector whose layout is fixed by the active model
//   - [Model]: vehicle dynamics contract (dX/dt = f(X, t))
//   - domain errors such as [ErrInvalidParameter] and [ErrNumericalStagnation]
//   - [SimulationError]: wraps a failure with the step, time and state
//
// # Example
//
//	m := models.NewOneDOF(v)
//	dx := m.Derivative(dynamo.State{0, 100}, 0)
//
// # Thread Safety
//
// Models are immutable after construction and safe for concurrent use.
// States are plain slices; every stepper returns a fresh one.
package dynamo
