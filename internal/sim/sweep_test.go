package sim_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/rocketsim/internal/dynamo"
	"github.com/san-kum/rocketsim/internal/integrators"
	"github.com/san-kum/rocketsim/internal/models"
	"github.com/san-kum/rocketsim/internal/sim"
	"github.com/san-kum/rocketsim/internal/vehicle"
)

var _ = Describe("Sweep", func() {
	var (
		s     *sim.Simulator
		cases []sim.Case
	)

	BeforeEach(func() {
		s = sim.New(sim.WithWorkers(3))
		cases = nil
		for _, mass := range []float64{5, 10, 20, 40, 80} {
			cases = append(cases, sim.Case{
				Vehicle: mustVehicle(mass, 0.3, 0.005, 0.05, 5, 0.5, 0.2),
				Initial: models.OneDOF{Velocity: 100},
				Solver:  integrators.Adaptive(1e-6, 1e-6),
			})
		}
	})

	It("keeps input order and matches sequential predictions", func() {
		results, err := s.Sweep(context.Background(), cases)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(len(cases)))

		for i, r := range results {
			Expect(r.Err).NotTo(HaveOccurred())
			Expect(r.Case.Vehicle.Mass).To(Equal(cases[i].Vehicle.Mass))

			want, err := sim.New().PredictApogee(context.Background(), cases[i].Vehicle, cases[i].Initial, cases[i].Solver)
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Apogee).To(Equal(want))
		}

		for i := 1; i < len(results); i++ {
			Expect(results[i].Apogee).To(BeNumerically(">", results[i-1].Apogee))
		}
	})

	It("records per-case failures without aborting", func() {
		cases[2].Vehicle = vehicle.Vehicle{}
		results, err := s.Sweep(context.Background(), cases)
		Expect(err).NotTo(HaveOccurred())
		Expect(errors.Is(results[2].Err, dynamo.ErrInvalidParameter)).To(BeTrue())
		Expect(results[3].Err).NotTo(HaveOccurred())
	})

	It("does not share observers between concurrent cases", func() {
		obs := &countingObserver{}
		s = sim.New(sim.WithWorkers(4), sim.WithObserver(obs))
		for range 3 {
			cases = append(cases, cases...)
		}

		results, err := s.Sweep(context.Background(), cases)
		Expect(err).NotTo(HaveOccurred())
		for _, r := range results {
			Expect(r.Err).NotTo(HaveOccurred())
		}
		Expect(obs.steps).To(BeZero())

		_, err = s.PredictApogee(context.Background(), cases[0].Vehicle, cases[0].Initial, cases[0].Solver)
		Expect(err).NotTo(HaveOccurred())
		Expect(obs.steps).To(BeNumerically(">", 0))
	})

	It("reports a missing initial state as a case failure", func() {
		cases[1].Initial = nil
		results, err := s.Sweep(context.Background(), cases)
		Expect(err).NotTo(HaveOccurred())
		Expect(errors.Is(results[1].Err, dynamo.ErrInvalidParameter)).To(BeTrue())
		Expect(results[0].Err).NotTo(HaveOccurred())
	})

	It("aborts on cancellation", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := s.Sweep(ctx, cases)
		Expect(errors.Is(err, dynamo.ErrContextCanceled)).To(BeTrue())
	})
})
