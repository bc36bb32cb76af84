package sim

import (
	"fmt"

	"github.com/san-kum/rocketsim/internal/dynamo"
)

// Event is the outcome of evaluating the termination policy after a step.
type Event int

const (
	Continue Event = iota
	ApogeeReached
	GroundImpact
	MaxStepsExceeded
)

func (e Event) String() string {
	switch e {
	case Continue:
		return "continue"
	case ApogeeReached:
		return "apogee"
	case GroundImpact:
		return "ground_impact"
	case MaxStepsExceeded:
		return "max_steps"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

// Policy decides when a run stops. It reads altitude and vertical velocity
// through the model so it works for any state layout.
type Policy struct {
	Model    dynamo.Model
	Apogee   bool // stop at the first downward crossing of vertical velocity
	MaxSteps int
}

// Evaluate is called with the previous and current accepted states. step
// counts accepted steps, so step 0 is the initial state and the ground check
// never fires on it.
func (p Policy) Evaluate(prev, cur dynamo.State, step int) Event {
	if p.Apogee && p.Model.VerticalVelocity(prev) > 0 && p.Model.VerticalVelocity(cur) <= 0 {
		return ApogeeReached
	}
	if step >= 1 && p.Model.Altitude(cur) <= 0 && p.Model.VerticalVelocity(cur) < 0 {
		return GroundImpact
	}
	if p.MaxSteps > 0 && step >= p.MaxSteps {
		return MaxStepsExceeded
	}
	return Continue
}
