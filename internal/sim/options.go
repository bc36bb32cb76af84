package sim

import (
	"runtime"

	"github.com/rs/zerolog"
)

const DefaultMaxSteps = 100000

type Option func(*Simulator)

// WithLogger sets the logger for run events. Per-step events are emitted at
// trace level.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Simulator) { s.log = log }
}

// WithMaxSteps sets the accepted step ceiling of a single run.
func WithMaxSteps(n int) Option {
	return func(s *Simulator) {
		if n > 0 {
			s.maxSteps = n
		}
	}
}

// WithWorkers bounds the number of concurrent runs in Sweep.
func WithWorkers(n int) Option {
	return func(s *Simulator) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithObserver registers a callback for every accepted step of
// SimulateFlight, PredictApogee, Integrate and Apogee. Sweep runs without
// observers.
func WithObserver(o Observer) Option {
	return func(s *Simulator) { s.observers = append(s.observers, o) }
}

func defaultWorkers() int {
	return runtime.GOMAXPROCS(0)
}
