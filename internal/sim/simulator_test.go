package sim_test

import (
	"bytes"
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"

	"github.com/san-kum/rocketsim/internal/dynamo"
	"github.com/san-kum/rocketsim/internal/flightlog"
	"github.com/san-kum/rocketsim/internal/integrators"
	"github.com/san-kum/rocketsim/internal/models"
	"github.com/san-kum/rocketsim/internal/sim"
	"github.com/san-kum/rocketsim/internal/vehicle"
)

const g = models.Gravity

func mustVehicle(mass, cd, aref, alift, inertia, margin, cla float64) vehicle.Vehicle {
	v, err := vehicle.New(mass, cd, aref, alift, inertia, margin, cla)
	Expect(err).NotTo(HaveOccurred())
	return v
}

// analyticApogee is the exact apogee of the vertical model with quadratic
// drag and constant density.
func analyticApogee(v vehicle.Vehicle, h0, v0 float64) float64 {
	k := 0.5 * models.AirDensity * v.DragCoefficient * v.ReferenceArea / v.Mass
	return h0 + math.Log(1+k*v0*v0/g)/(2*k)
}

type countingObserver struct{ steps int }

func (c *countingObserver) OnStep(step int, t float64, x dynamo.State) { c.steps++ }

type blowUp struct{ *models.OneDOFModel }

func (b blowUp) Derivative(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{math.Inf(1), math.NaN()}
}

var _ = Describe("Simulator", func() {
	var (
		ctx     context.Context
		s       *sim.Simulator
		rocket  vehicle.Vehicle
		launch  models.OneDOF
		quantum float64
	)

	BeforeEach(func() {
		ctx = context.Background()
		s = sim.New()
		rocket = mustVehicle(10, 0.3, 0.005, 0.05, 5, 0.5, 0.2)
		launch = models.OneDOF{Altitude: 0, Velocity: 100}
		quantum = g * integrators.DefaultMaxStep * integrators.DefaultMaxStep / 2
	})

	Describe("SimulateFlight", func() {
		It("starts at the initial state and ends on the ground with Euler", func() {
			flight, err := s.SimulateFlight(ctx, rocket, launch, integrators.Fixed(integrators.MethodEuler, 1e-2))
			Expect(err).NotTo(HaveOccurred())
			Expect(flight.Event).To(Equal(sim.GroundImpact))

			log := flight.Log
			Expect(log.Cols()).To(Equal(4))
			Expect(log.Value(0, 0)).To(Equal(0.0))
			Expect(log.Value(0, 1)).To(Equal(0.0))
			Expect(log.Value(0, 2)).To(Equal(100.0))
			Expect(log.Value(log.Len()-1, 1)).To(BeNumerically("<=", 0))
		})

		It("logs one row per accepted step and none for rejected attempts", func() {
			draggy := mustVehicle(1, 50, 0.05, 0.05, 1, 0.5, 0.2)
			cfg := integrators.Adaptive(1e-7, 1e-7, integrators.WithInitialStep(0.1))

			flight, err := s.SimulateFlight(ctx, draggy, models.OneDOF{Velocity: 300}, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(flight.Rejected).To(BeNumerically(">", 0))
			Expect(flight.Log.Len()).To(Equal(flight.Accepted + 1))

			for i := 1; i < flight.Log.Len(); i++ {
				Expect(flight.Log.Time(i)).To(BeNumerically(">", flight.Log.Time(i-1)))
			}
		})

		It("terminates for a rocket resting on the ground", func() {
			for _, cfg := range []integrators.Config{
				integrators.Fixed(integrators.MethodEuler, 1e-2),
				integrators.Fixed(integrators.MethodRK4, 1e-2),
				integrators.Adaptive(1e-6, 1e-6),
			} {
				flight, err := s.SimulateFlight(ctx, rocket, models.OneDOF{}, cfg)
				Expect(err).NotTo(HaveOccurred())
				Expect(flight.Event).To(Equal(sim.GroundImpact), cfg.String())
				Expect(flight.Log.Len()).To(Equal(2), cfg.String())
			}
		})

		DescribeTable("matches the drag-free closed form",
			func(cfg integrators.Config, slack func(t float64) float64) {
				noDrag := mustVehicle(10, 0, 0.005, 0.05, 5, 0.5, 0.2)
				flight, err := s.SimulateFlight(ctx, noDrag, models.OneDOF{Altitude: 5, Velocity: 40}, cfg)
				Expect(err).NotTo(HaveOccurred())

				log := flight.Log
				for i := 0; i < log.Len(); i++ {
					t := log.Time(i)
					exact := 5 + 40*t - 0.5*g*t*t
					Expect(log.Value(i, 1)).To(BeNumerically("~", exact, slack(t)+1e-9))
				}
			},
			Entry("euler", integrators.Fixed(integrators.MethodEuler, 1e-2), func(t float64) float64 { return g * t * 1e-2 / 2 }),
			Entry("rk3", integrators.Fixed(integrators.MethodRK3, 1e-2), func(float64) float64 { return 1e-8 }),
			Entry("rk4", integrators.Fixed(integrators.MethodRK4, 1e-2), func(float64) float64 { return 1e-8 }),
			Entry("rk45", integrators.Adaptive(1e-6, 1e-6), func(float64) float64 { return 1e-8 }),
		)

		It("returns the partial log at the step ceiling", func() {
			s = sim.New(sim.WithMaxSteps(10))
			flight, err := s.SimulateFlight(ctx, rocket, launch, integrators.Fixed(integrators.MethodRK4, 1e-2))
			Expect(err).NotTo(HaveOccurred())
			Expect(flight.Event).To(Equal(sim.MaxStepsExceeded))
			Expect(flight.Log.Len()).To(Equal(11))
		})

		It("produces 3DOF logs with derived columns", func() {
			flight, err := s.SimulateFlight(ctx, rocket, models.Launch(0, 100, 1.2), integrators.Adaptive(1e-6, 1e-6))
			Expect(err).NotTo(HaveOccurred())
			Expect(flight.Event).To(Equal(sim.GroundImpact))
			Expect(flight.Log.Cols()).To(Equal(10))
			Expect(flight.Log.Columns()[1:3]).To(Equal([]string{"x", "altitude"}))

			summary := flight.Summary()
			Expect(summary.Apogee).To(BeNumerically(">", 0))
			Expect(summary.FinalAltitude).To(BeNumerically("<=", 0))
			Expect(flight.Log.Named("x")[flight.Log.Len()-1]).To(BeNumerically(">", 0))
		})

		It("notifies observers of every accepted step", func() {
			obs := &countingObserver{}
			s = sim.New(sim.WithObserver(obs))
			flight, err := s.SimulateFlight(ctx, rocket, launch, integrators.Fixed(integrators.MethodRK3, 1e-2))
			Expect(err).NotTo(HaveOccurred())
			Expect(obs.steps).To(Equal(flight.Accepted))
		})

		It("freezes the returned log", func() {
			flight, err := s.SimulateFlight(ctx, rocket, launch, integrators.Fixed(integrators.MethodRK4, 1e-2))
			Expect(err).NotTo(HaveOccurred())
			n := flight.Log.Len()
			Expect(flight.Log.Append(0, []float64{0, 0, 0})).To(MatchError(flightlog.ErrFrozen))
			Expect(flight.Log.Len()).To(Equal(n))
		})

		It("rejects a nil initial state", func() {
			_, err := s.SimulateFlight(ctx, rocket, nil, integrators.Fixed(integrators.MethodRK4, 1e-2))
			Expect(errors.Is(err, dynamo.ErrInvalidParameter)).To(BeTrue())
		})

		It("traces steps through the logger", func() {
			prev := zerolog.GlobalLevel()
			DeferCleanup(zerolog.SetGlobalLevel, prev)
			zerolog.SetGlobalLevel(zerolog.TraceLevel)
			var buf bytes.Buffer
			s = sim.New(sim.WithLogger(zerolog.New(&buf).Level(zerolog.TraceLevel)))
			_, err := s.SimulateFlight(ctx, rocket, launch, integrators.Fixed(integrators.MethodEuler, 0.5))
			Expect(err).NotTo(HaveOccurred())
			Expect(buf.String()).To(ContainSubstring(`"message":"simulation started"`))
			Expect(buf.String()).To(ContainSubstring(`"message":"step"`))
			Expect(buf.String()).To(ContainSubstring(`"event":"ground_impact"`))
		})
	})

	Describe("PredictApogee", func() {
		It("rejects a nil initial state", func() {
			_, err := s.PredictApogee(ctx, rocket, nil, integrators.Adaptive(1e-6, 1e-6))
			Expect(errors.Is(err, dynamo.ErrInvalidParameter)).To(BeTrue())
		})

		It("stays below the drag-free bound for the reference rocket", func() {
			apogee, err := s.PredictApogee(ctx, rocket, launch, integrators.Adaptive(1e-6, 1e-6))
			Expect(err).NotTo(HaveOccurred())
			Expect(math.IsInf(apogee, 0) || math.IsNaN(apogee)).To(BeFalse())
			Expect(apogee).To(BeNumerically(">", 0))
			Expect(apogee).To(BeNumerically("<", 510))
			Expect(apogee).To(BeNumerically("~", analyticApogee(rocket, 0, 100), quantum))
		})

		DescribeTable("agrees with the maximum altitude of the full flight",
			func(cfg integrators.Config) {
				apogee, err := s.PredictApogee(ctx, rocket, launch, cfg)
				Expect(err).NotTo(HaveOccurred())

				flight, err := s.SimulateFlight(ctx, rocket, launch, cfg)
				Expect(err).NotTo(HaveOccurred())
				Expect(apogee).To(BeNumerically("~", flight.Log.MaxAltitude(), quantum))
			},
			Entry("euler", integrators.Fixed(integrators.MethodEuler, 1e-2)),
			Entry("rk3", integrators.Fixed(integrators.MethodRK3, 1e-2)),
			Entry("rk4", integrators.Fixed(integrators.MethodRK4, 1e-2)),
			Entry("rk45 loose", integrators.Adaptive(1e-3, 1e-3)),
			Entry("rk45 tight", integrators.Adaptive(1e-9, 1e-9)),
		)

		It("does not drift further from the exact apogee when tolerances tighten", func() {
			exact := analyticApogee(rocket, 0, 100)
			deviation := func(tol float64) float64 {
				apogee, err := s.PredictApogee(ctx, rocket, launch, integrators.Adaptive(tol, tol))
				Expect(err).NotTo(HaveOccurred())
				return math.Abs(apogee - exact)
			}

			loose, medium, tight := deviation(1e-2), deviation(1e-5), deviation(1e-8)
			Expect(medium).To(BeNumerically("<=", loose+quantum))
			Expect(tight).To(BeNumerically("<=", medium+quantum))
		})

		It("returns the initial altitude when the rocket is not climbing", func() {
			apogee, err := s.PredictApogee(ctx, rocket, models.OneDOF{Altitude: 50, Velocity: -3}, integrators.Adaptive(1e-6, 1e-6))
			Expect(err).NotTo(HaveOccurred())
			Expect(apogee).To(Equal(50.0))
		})

		It("matches the vertical model for a vertical 3DOF launch", func() {
			cfg := integrators.Fixed(integrators.MethodRK4, 1e-3)
			one, err := s.PredictApogee(ctx, rocket, launch, cfg)
			Expect(err).NotTo(HaveOccurred())
			three, err := s.PredictApogee(ctx, rocket, models.ThreeDOF{Pitch: math.Pi / 2, VY: 100}, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(three).To(BeNumerically("~", one, 1e-9))
		})

		It("fails at the step ceiling", func() {
			s = sim.New(sim.WithMaxSteps(5))
			_, err := s.PredictApogee(ctx, rocket, launch, integrators.Fixed(integrators.MethodEuler, 1e-2))
			Expect(errors.Is(err, dynamo.ErrMaxSteps)).To(BeTrue())

			var simErr *dynamo.SimulationError
			Expect(errors.As(err, &simErr)).To(BeTrue())
			Expect(simErr.Step).To(Equal(5))
		})
	})

	Describe("errors", func() {
		It("rejects invalid vehicles before stepping", func() {
			bad := rocket
			bad.Mass = 0
			_, err := s.SimulateFlight(ctx, bad, launch, integrators.Adaptive(1e-6, 1e-6))
			Expect(errors.Is(err, dynamo.ErrInvalidParameter)).To(BeTrue())
			_, err = s.PredictApogee(ctx, bad, launch, integrators.Adaptive(1e-6, 1e-6))
			Expect(errors.Is(err, dynamo.ErrInvalidParameter)).To(BeTrue())
		})

		It("rejects invalid solver configs", func() {
			_, err := s.SimulateFlight(ctx, rocket, launch, integrators.Fixed(integrators.MethodRK4, 0))
			Expect(errors.Is(err, dynamo.ErrInvalidParameter)).To(BeTrue())
			_, err = s.PredictApogee(ctx, rocket, launch, integrators.Adaptive(-1, 1e-6))
			Expect(errors.Is(err, dynamo.ErrInvalidParameter)).To(BeTrue())
		})

		It("rejects states that do not fit the model", func() {
			_, err := s.Integrate(ctx, models.NewOneDOF(rocket), dynamo.State{1, 2, 3}, integrators.Adaptive(1e-6, 1e-6))
			Expect(errors.Is(err, dynamo.ErrDimensionMismatch)).To(BeTrue())

			_, err = s.Apogee(ctx, models.NewOneDOF(rocket), dynamo.State{math.NaN(), 2}, integrators.Adaptive(1e-6, 1e-6))
			Expect(errors.Is(err, dynamo.ErrInvalidState)).To(BeTrue())
		})

		It("reports stagnation with the failing step and no log", func() {
			m := blowUp{models.NewOneDOF(rocket)}
			flight, err := s.Integrate(ctx, m, dynamo.State{0, 10}, integrators.Adaptive(1e-6, 1e-6))
			Expect(flight).To(BeNil())
			Expect(errors.Is(err, dynamo.ErrNumericalStagnation)).To(BeTrue())

			var simErr *dynamo.SimulationError
			Expect(errors.As(err, &simErr)).To(BeTrue())
			Expect(simErr.Step).To(Equal(1))
			Expect(simErr.Time).To(Equal(0.0))
		})

		It("reports non-finite states from fixed steppers", func() {
			m := blowUp{models.NewOneDOF(rocket)}
			_, err := s.Integrate(ctx, m, dynamo.State{0, 10}, integrators.Fixed(integrators.MethodEuler, 0.1))
			Expect(errors.Is(err, dynamo.ErrInvalidState)).To(BeTrue())
		})

		It("stops when the context is canceled", func() {
			canceled, cancel := context.WithCancel(ctx)
			cancel()

			_, err := s.SimulateFlight(canceled, rocket, launch, integrators.Adaptive(1e-6, 1e-6))
			Expect(errors.Is(err, dynamo.ErrContextCanceled)).To(BeTrue())
			Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		})
	})
})
