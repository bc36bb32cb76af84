package main

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/san-kum/rocketsim/internal/config"
	"github.com/san-kum/rocketsim/internal/flightlog"
	"github.com/san-kum/rocketsim/internal/integrators"
	"github.com/san-kum/rocketsim/internal/models"
	"github.com/san-kum/rocketsim/internal/plot"
	"github.com/san-kum/rocketsim/internal/sim"
	"github.com/san-kum/rocketsim/internal/storage"
	"github.com/san-kum/rocketsim/internal/vehicle"
	"github.com/san-kum/rocketsim/internal/viz"
)

const (
	chartWidth  = 70
	chartHeight = 15
)

// resolveConfig builds the run configuration: defaults, then a preset or a
// config file, then any flag the user set explicitly.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	f := cmd.Flags()
	cfg := config.DefaultConfig()

	if preset != "" {
		p, err := findPreset(preset, model, f.Changed("model"))
		if err != nil {
			return nil, err
		}
		cfg = p
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	if f.Changed("model") {
		cfg.Model = model
	}
	setIf := func(name string, dst *float64, v float64) {
		if f.Changed(name) {
			*dst = v
		}
	}
	setIf("mass", &cfg.Vehicle.Mass, mass)
	setIf("cd", &cfg.Vehicle.DragCoefficient, dragCoeff)
	setIf("area", &cfg.Vehicle.ReferenceArea, refArea)
	setIf("lift-area", &cfg.Vehicle.LiftingArea, liftArea)
	setIf("inertia", &cfg.Vehicle.MomentOfInertia, inertia)
	setIf("margin", &cfg.Vehicle.StaticMargin, staticMargin)
	setIf("cla", &cfg.Vehicle.LiftSlope, liftSlope)

	setIf("altitude", &cfg.Initial.Altitude, altitude)
	setIf("velocity", &cfg.Initial.Velocity, velocity)
	setIf("x", &cfg.Initial.X, downrange)
	setIf("pitch", &cfg.Initial.Pitch, pitchDeg*math.Pi/180)
	setIf("pitch-rate", &cfg.Initial.PitchRate, pitchRate)

	if f.Changed("method") {
		cfg.Solver.Method = method
	}
	setIf("dt", &cfg.Solver.StepSize, stepSize)
	setIf("atol", &cfg.Solver.AbsTol, absTol)
	setIf("rtol", &cfg.Solver.RelTol, relTol)
	setIf("h0", &cfg.Solver.InitialStep, initialStep)
	setIf("hmin", &cfg.Solver.MinStep, minStep)
	setIf("hmax", &cfg.Solver.MaxStep, maxStep)
	if f.Changed("max-steps") {
		cfg.MaxSteps = maxSteps
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// findPreset looks the preset up under the given model, or under every model
// when none was chosen.
func findPreset(name, forModel string, modelSet bool) (*config.Config, error) {
	if modelSet {
		if p := config.GetPreset(forModel, name); p != nil {
			return p, nil
		}
		return nil, fmt.Errorf("unknown preset %q for model %s", name, forModel)
	}
	for _, m := range []string{config.ModelOneDOF, config.ModelThreeDOF} {
		if p := config.GetPreset(m, name); p != nil {
			return p, nil
		}
	}
	return nil, fmt.Errorf("unknown preset %q", name)
}

type runSetup struct {
	vehicle vehicle.Vehicle
	initial models.Initial
	solver  integrators.Config
}

func setup(cfg *config.Config) (runSetup, error) {
	v, err := cfg.VehicleParams()
	if err != nil {
		return runSetup{}, err
	}
	init, err := cfg.InitialState()
	if err != nil {
		return runSetup{}, err
	}
	solver, err := cfg.SolverConfig()
	if err != nil {
		return runSetup{}, err
	}
	return runSetup{vehicle: v, initial: init, solver: solver}, nil
}

func newSimulator(cfg *config.Config, opts ...sim.Option) *sim.Simulator {
	opts = append([]sim.Option{sim.WithLogger(logger), sim.WithMaxSteps(cfg.MaxSteps)}, opts...)
	return sim.New(opts...)
}

func dataDir() string {
	return viper.GetString("data_dir")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	rs, err := setup(cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "simulating %s flight (%s)...\n", cfg.Model, rs.solver)

	start := time.Now()
	flight, err := newSimulator(cfg).SimulateFlight(cmd.Context(), rs.vehicle, rs.initial, rs.solver)
	if err != nil {
		return fmt.Errorf("simulate: %w", err)
	}
	elapsed := time.Since(start)

	sum := flight.Summary()
	fmt.Fprintf(out, "completed in %v\n", elapsed)
	fmt.Fprintf(out, "event: %s\n", flight.Event)
	fmt.Fprintf(out, "steps: %d accepted, %d rejected\n", flight.Accepted, flight.Rejected)
	fmt.Fprintf(out, "apogee: %.3f m at t=%.3f s\n", sum.Apogee, sum.ApogeeTime)
	fmt.Fprintf(out, "max speed: %.3f m/s\n", sum.MaxSpeed)
	fmt.Fprintf(out, "flight time: %.3f s\n", sum.FlightTime)

	if csvOut != "" {
		if err := writeCSVFile(csvOut, flight.Log); err != nil {
			return err
		}
		fmt.Fprintf(out, "wrote %s\n", csvOut)
	}

	if !noSave {
		store := storage.New(dataDir())
		if err := store.Init(); err != nil {
			return err
		}
		runID, err := store.Save(storage.RunMetadata{
			Name:     preset,
			Model:    cfg.Model,
			Solver:   rs.solver.String(),
			Event:    flight.Event.String(),
			Accepted: flight.Accepted,
			Rejected: flight.Rejected,
			Vehicle:  rs.vehicle.Params(),
		}, flight.Log)
		if err != nil {
			return fmt.Errorf("save run: %w", err)
		}
		logger.Info().Str("run", runID).Str("dir", dataDir()).Msg("run saved")
		fmt.Fprintf(out, "run id: %s\n", runID)
	}

	if asciiPlot {
		graph, err := plot.Terminal(flight.Log, "altitude", chartWidth, chartHeight)
		if err != nil {
			return err
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, graph)
	}
	return nil
}

func runApogee(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	rs, err := setup(cfg)
	if err != nil {
		return err
	}

	apogee, err := newSimulator(cfg).PredictApogee(cmd.Context(), rs.vehicle, rs.initial, rs.solver)
	if err != nil {
		return fmt.Errorf("apogee: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "apogee: %.3f m (%s, %s)\n", apogee, cfg.Model, rs.solver)
	return nil
}

// sweepSetters maps a sweep parameter to the config field it varies.
var sweepSetters = map[string]func(*config.Config, float64){
	"mass":     func(c *config.Config, v float64) { c.Vehicle.Mass = v },
	"cd":       func(c *config.Config, v float64) { c.Vehicle.DragCoefficient = v },
	"area":     func(c *config.Config, v float64) { c.Vehicle.ReferenceArea = v },
	"margin":   func(c *config.Config, v float64) { c.Vehicle.StaticMargin = v },
	"velocity": func(c *config.Config, v float64) { c.Initial.Velocity = v },
	"altitude": func(c *config.Config, v float64) { c.Initial.Altitude = v },
	"pitch":    func(c *config.Config, v float64) { c.Initial.Pitch = v * math.Pi / 180 },
}

func sweepParams() []string {
	names := make([]string, 0, len(sweepSetters))
	for name := range sweepSetters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// sweepCases expands the base configuration into one case per value.
func sweepCases(base *config.Config, param string, values []float64) ([]sim.Case, error) {
	set, ok := sweepSetters[param]
	if !ok {
		return nil, fmt.Errorf("unknown sweep parameter %q (want one of %s)", param, strings.Join(sweepParams(), ", "))
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("sweep: no values given")
	}

	cases := make([]sim.Case, 0, len(values))
	for _, v := range values {
		c := *base
		set(&c, v)
		rs, err := setup(&c)
		if err != nil {
			return nil, fmt.Errorf("%s=%g: %w", param, v, err)
		}
		cases = append(cases, sim.Case{
			Name:    fmt.Sprintf("%s=%g", param, v),
			Vehicle: rs.vehicle,
			Initial: rs.initial,
			Solver:  rs.solver,
		})
	}
	return cases, nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	cases, err := sweepCases(cfg, sweepParam, sweepVals)
	if err != nil {
		return err
	}

	results, err := newSimulator(cfg, sim.WithWorkers(workers)).Sweep(cmd.Context(), cases)
	if err != nil {
		return fmt.Errorf("sweep: %w", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CASE\tAPOGEE (m)\tERROR")
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(w, "%s\t-\t%v\n", r.Case.Name, r.Err)
			continue
		}
		fmt.Fprintf(w, "%s\t%.3f\t\n", r.Case.Name, r.Apogee)
	}
	return w.Flush()
}

type comparison struct {
	label  string
	solver integrators.Config
}

// comparisons lists the solvers to run: fixed-step methods at the configured
// step size and RK45 once per tolerance.
func comparisons(cfg *config.Config, methods []string, tols []float64) ([]comparison, error) {
	if len(methods) == 0 {
		for _, m := range integrators.Methods() {
			methods = append(methods, m.String())
		}
	}

	var out []comparison
	for _, name := range methods {
		m, err := integrators.ParseMethod(name)
		if err != nil {
			return nil, err
		}
		if !m.Adaptive() {
			h := cfg.Solver.StepSize
			if h == 0 {
				h = integrators.DefaultStepSize
			}
			solver := integrators.Fixed(m, h)
			out = append(out, comparison{label: solver.String(), solver: solver})
			continue
		}
		for _, tol := range tols {
			solver := integrators.Adaptive(tol, tol,
				integrators.WithInitialStep(cfg.Solver.InitialStep),
				integrators.WithStepBounds(cfg.Solver.MinStep, cfg.Solver.MaxStep))
			out = append(out, comparison{label: fmt.Sprintf("rk45(tol=%g)", tol), solver: solver})
		}
	}
	return out, nil
}

func runCompare(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	rs, err := setup(cfg)
	if err != nil {
		return err
	}
	runs, err := comparisons(cfg, args, tolerances)
	if err != nil {
		return err
	}

	s := newSimulator(cfg)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "comparing solvers for %s (v0=%.1f m/s)\n\n", cfg.Model, cfg.Initial.Velocity)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SOLVER\tAPOGEE (m)\tAPOGEE TIME (s)\tACCEPTED\tREJECTED\tTIME (ms)")

	var lines []plot.Line
	for _, c := range runs {
		start := time.Now()
		flight, err := s.SimulateFlight(cmd.Context(), rs.vehicle, rs.initial, c.solver)
		elapsed := time.Since(start)
		if err != nil {
			fmt.Fprintf(w, "%s\terror: %v\t\t\t\t\n", c.label, err)
			continue
		}
		sum := flight.Summary()
		fmt.Fprintf(w, "%s\t%.3f\t%.3f\t%d\t%d\t%.2f\n", c.label, sum.Apogee, sum.ApogeeTime,
			flight.Accepted, flight.Rejected, float64(elapsed.Microseconds())/1000)
		lines = append(lines, plot.Line{Label: c.label, Log: flight.Log})
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}

	graph, err := plot.TerminalMany("altitude", chartWidth, chartHeight, lines...)
	if err != nil {
		return err
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, graph)

	if pngDir != "" {
		if err := os.MkdirAll(pngDir, 0755); err != nil {
			return err
		}
		path := filepath.Join(pngDir, "compare_altitude.png")
		if err := plot.SaveLines(path, "Altitude by solver", flightlog.TimeColumn, "altitude", lines...); err != nil {
			return err
		}
		fmt.Fprintf(out, "wrote %s\n", path)
	}
	return nil
}

func replayRun(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		store := storage.New(dataDir())
		meta, err := store.Load(args[0])
		if err != nil {
			return fmt.Errorf("load run: %w", err)
		}
		log, err := store.LoadLog(args[0])
		if err != nil {
			return fmt.Errorf("load log: %w", err)
		}
		title := meta.Name
		if title == "" {
			title = meta.ID
		}
		return viz.Run(log, fmt.Sprintf("%s · %s · %s", title, meta.Model, meta.Solver))
	}

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	rs, err := setup(cfg)
	if err != nil {
		return err
	}
	flight, err := newSimulator(cfg).SimulateFlight(cmd.Context(), rs.vehicle, rs.initial, rs.solver)
	if err != nil {
		return fmt.Errorf("simulate: %w", err)
	}
	return viz.Run(flight.Log, fmt.Sprintf("%s · %s", cfg.Model, rs.solver))
}

func writeCSVFile(path string, log *flightlog.Log) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := flightlog.WriteCSV(f, log); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
