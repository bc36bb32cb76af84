package sim

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/san-kum/rocketsim/internal/dynamo"
	"github.com/san-kum/rocketsim/internal/flightlog"
	"github.com/san-kum/rocketsim/internal/integrators"
	"github.com/san-kum/rocketsim/internal/models"
	"github.com/san-kum/rocketsim/internal/vehicle"
)

// Observer receives every accepted step of a run. OnStep is called on the
// goroutine running the simulation. Sweep never calls observers.
type Observer interface {
	OnStep(step int, t float64, x dynamo.State)
}

type Simulator struct {
	log       zerolog.Logger
	maxSteps  int
	workers   int
	observers []Observer
}

func New(opts ...Option) *Simulator {
	s := &Simulator{
		log:      zerolog.Nop(),
		maxSteps: DefaultMaxSteps,
		workers:  defaultWorkers(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Flight is the result of a full simulation.
type Flight struct {
	Log      *flightlog.Log
	Event    Event
	Accepted int
	Rejected int
}

func (f *Flight) Summary() flightlog.Summary {
	return flightlog.Summarize(f.Log)
}

// SimulateFlight integrates until ground impact and records every accepted
// step. Reaching the step ceiling is not an error; the partial log is
// returned with Event set to MaxStepsExceeded.
func (s *Simulator) SimulateFlight(ctx context.Context, v vehicle.Vehicle, init models.Initial, cfg integrators.Config) (*Flight, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}
	if init == nil {
		return nil, dynamo.InvalidParameter("initial state is nil")
	}
	return s.Integrate(ctx, init.Model(v), init.Vector(), cfg)
}

// PredictApogee integrates until the vertical velocity turns non-positive
// and returns the altitude at that step. No history is kept.
func (s *Simulator) PredictApogee(ctx context.Context, v vehicle.Vehicle, init models.Initial, cfg integrators.Config) (float64, error) {
	if err := v.Validate(); err != nil {
		return 0, err
	}
	if init == nil {
		return 0, dynamo.InvalidParameter("initial state is nil")
	}
	return s.Apogee(ctx, init.Model(v), init.Vector(), cfg)
}

// Integrate is SimulateFlight for an arbitrary model and initial state.
func (s *Simulator) Integrate(ctx context.Context, m dynamo.Model, x0 dynamo.State, cfg integrators.Config) (*Flight, error) {
	if err := validate(m, x0, cfg); err != nil {
		return nil, err
	}

	log := flightlog.New(m.Columns())
	out, err := s.run(ctx, m, x0, cfg, Policy{Model: m, MaxSteps: s.maxSteps}, log)
	if err != nil {
		return nil, err
	}
	log.Freeze()

	return &Flight{
		Log:      log,
		Event:    out.event,
		Accepted: out.accepted,
		Rejected: out.rejected,
	}, nil
}

// Apogee is PredictApogee for an arbitrary model and initial state.
func (s *Simulator) Apogee(ctx context.Context, m dynamo.Model, x0 dynamo.State, cfg integrators.Config) (float64, error) {
	if err := validate(m, x0, cfg); err != nil {
		return 0, err
	}

	if m.VerticalVelocity(x0) <= 0 {
		return m.Altitude(x0), nil
	}

	out, err := s.run(ctx, m, x0, cfg, Policy{Model: m, Apogee: true, MaxSteps: s.maxSteps}, nil)
	if err != nil {
		return 0, err
	}

	if out.event == MaxStepsExceeded {
		return 0, &dynamo.SimulationError{
			Step:    out.accepted,
			Time:    out.t,
			State:   out.x,
			Wrapped: fmt.Errorf("%w: no apogee after %d steps", dynamo.ErrMaxSteps, out.accepted),
		}
	}
	return m.Altitude(out.x), nil
}

type outcome struct {
	event    Event
	x        dynamo.State
	t        float64
	accepted int
	rejected int
}

func (s *Simulator) run(ctx context.Context, m dynamo.Model, x0 dynamo.State, cfg integrators.Config, policy Policy, log *flightlog.Log) (outcome, error) {
	stepper, err := cfg.Stepper()
	if err != nil {
		return outcome{}, err
	}

	runLog := s.log.With().Str("solver", cfg.String()).Int("dim", m.StateDim()).Logger()
	if named, ok := m.(dynamo.Named); ok {
		runLog = runLog.With().Str("model", named.Name()).Logger()
	}
	runLog.Debug().Bool("history", log != nil).Msg("simulation started")

	out := outcome{x: x0.Clone()}
	h := cfg.FirstStep()

	if log != nil {
		if err := log.Append(out.t, m.LogRow(out.x, out.t)); err != nil {
			return outcome{}, err
		}
	}

	for step := 1; ; step++ {
		select {
		case <-ctx.Done():
			return outcome{}, &dynamo.SimulationError{
				Step:    out.accepted,
				Time:    out.t,
				State:   out.x,
				Wrapped: fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, ctx.Err()),
			}
		default:
		}

		res, err := stepper.Advance(m, out.x, out.t, h)
		out.rejected += res.Rejected
		if err != nil {
			runLog.Warn().Err(err).Int("step", step).Float64("t", out.t).Msg("step failed")
			return outcome{}, &dynamo.SimulationError{Step: step, Time: out.t, State: out.x, Wrapped: err}
		}
		if !res.State.IsValid() {
			return outcome{}, &dynamo.SimulationError{Step: step, Time: res.Time, State: res.State, Wrapped: dynamo.ErrInvalidState}
		}

		prev := out.x
		out.x, out.t, h = res.State, res.Time, res.Next
		out.accepted++

		if log != nil {
			if err := log.Append(out.t, m.LogRow(out.x, out.t)); err != nil {
				return outcome{}, err
			}
		}

		runLog.Trace().
			Int("step", step).
			Float64("t", out.t).
			Float64("altitude", m.Altitude(out.x)).
			Float64("vy", m.VerticalVelocity(out.x)).
			Float64("h", res.Size).
			Msg("step")

		for _, o := range s.observers {
			o.OnStep(step, out.t, out.x)
		}

		if out.event = policy.Evaluate(prev, out.x, step); out.event != Continue {
			break
		}
	}

	runLog.Debug().
		Stringer("event", out.event).
		Int("accepted", out.accepted).
		Int("rejected", out.rejected).
		Float64("t", out.t).
		Float64("altitude", m.Altitude(out.x)).
		Msg("simulation finished")

	return out, nil
}

func validate(m dynamo.Model, x0 dynamo.State, cfg integrators.Config) error {
	if len(x0) != m.StateDim() {
		return fmt.Errorf("%w: state has %d components, model expects %d", dynamo.ErrDimensionMismatch, len(x0), m.StateDim())
	}
	if !x0.IsValid() {
		return fmt.Errorf("initial state: %w", dynamo.ErrInvalidState)
	}
	return cfg.Validate()
}
