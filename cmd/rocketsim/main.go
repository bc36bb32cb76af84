package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/san-kum/rocketsim/internal/config"
	"github.com/san-kum/rocketsim/internal/logging"
)

var (
	// Config sources
	configFile string
	preset     string
	model      string
	// Vehicle
	mass         float64
	dragCoeff    float64
	refArea      float64
	liftArea     float64
	inertia      float64
	staticMargin float64
	liftSlope    float64
	// Initial state
	altitude  float64
	velocity  float64
	downrange float64
	pitchDeg  float64
	pitchRate float64
	// Solver
	method      string
	stepSize    float64
	absTol      float64
	relTol      float64
	initialStep float64
	minStep     float64
	maxStep     float64
	maxSteps    int
	// Output
	noSave     bool
	asciiPlot  bool
	csvOut     string
	pngDir     string
	column     string
	outFile    string
	sweepParam string
	sweepVals  []float64
	workers    int
	tolerances []float64

	logger = zerolog.Nop()
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "rocketsim",
		Short:        "coast-phase rocket flight simulator",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadSettings(); err != nil {
				return err
			}
			logger = logging.New(os.Stderr, logging.ParseLevel(viper.GetString("log_level")), !viper.GetBool("log_json"))
			return nil
		},
	}

	rootCmd.PersistentFlags().String("data", ".rocketsim", "data directory")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "write logs as JSON lines")
	_ = viper.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log_json", rootCmd.PersistentFlags().Lookup("log-json"))

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "simulate a full flight and store its log",
		Args:  cobra.NoArgs,
		RunE:  runSimulate,
	}
	addRunFlags(simulateCmd)
	simulateCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	simulateCmd.Flags().BoolVar(&asciiPlot, "ascii", false, "print an altitude chart")
	simulateCmd.Flags().StringVar(&csvOut, "csv", "", "also write the flight log to this CSV file")

	apogeeCmd := &cobra.Command{
		Use:   "apogee",
		Short: "predict the apogee without keeping the flight history",
		Args:  cobra.NoArgs,
		RunE:  runApogee,
	}
	addRunFlags(apogeeCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "predict apogees over a range of one parameter",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "mass", "parameter to vary ("+strings.Join(sweepParams(), ", ")+")")
	sweepCmd.Flags().Float64SliceVar(&sweepVals, "values", []float64{5, 10, 20}, "parameter values")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "concurrent runs (0 = GOMAXPROCS)")

	compareCmd := &cobra.Command{
		Use:   "compare [method...]",
		Short: "compare integration methods and tolerances on the same flight",
		RunE:  runCompare,
	}
	addRunFlags(compareCmd)
	compareCmd.Flags().Float64SliceVar(&tolerances, "tols", []float64{1, 0.1, 0.01}, "rk45 tolerances to compare")
	compareCmd.Flags().StringVar(&pngDir, "png", "", "write an altitude comparison chart into this directory")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&pngDir, "png", "", "write PNG charts into this directory")
	plotCmd.Flags().StringVar(&column, "column", "altitude", "column for the terminal chart")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default <run_id>.json)")

	replayCmd := &cobra.Command{
		Use:   "replay [run_id]",
		Short: "replay a stored run, or simulate one, in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  replayRun,
	}
	addRunFlags(replayCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	rootCmd.AddCommand(simulateCmd, apogeeCmd, sweepCmd, compareCmd, listCmd, plotCmd, exportCSVCmd, exportJSONCmd, replayCmd, presetsCmd)
	return rootCmd
}

// loadSettings reads optional CLI settings from rocketsim.yaml and
// ROCKETSIM_* environment variables.
func loadSettings() error {
	viper.SetEnvPrefix("rocketsim")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetConfigName("rocketsim")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home + "/.config/rocketsim")
	}
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read settings: %w", err)
		}
	}
	return nil
}

func addRunFlags(cmd *cobra.Command) {
	d := config.DefaultConfig()
	f := cmd.Flags()

	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.StringVar(&model, "model", d.Model, "dynamics model (1dof, 3dof)")

	f.Float64Var(&mass, "mass", d.Vehicle.Mass, "mass (kg)")
	f.Float64Var(&dragCoeff, "cd", d.Vehicle.DragCoefficient, "drag coefficient")
	f.Float64Var(&refArea, "area", d.Vehicle.ReferenceArea, "reference area (m^2)")
	f.Float64Var(&liftArea, "lift-area", d.Vehicle.LiftingArea, "lifting area (m^2)")
	f.Float64Var(&inertia, "inertia", d.Vehicle.MomentOfInertia, "pitch moment of inertia (kg m^2)")
	f.Float64Var(&staticMargin, "margin", d.Vehicle.StaticMargin, "static margin (m)")
	f.Float64Var(&liftSlope, "cla", d.Vehicle.LiftSlope, "lift slope (1/rad)")

	f.Float64Var(&altitude, "altitude", d.Initial.Altitude, "initial altitude (m)")
	f.Float64Var(&velocity, "velocity", d.Initial.Velocity, "initial speed (m/s)")
	f.Float64Var(&downrange, "x", d.Initial.X, "initial downrange position (m, 3dof)")
	f.Float64Var(&pitchDeg, "pitch", 90, "launch pitch from horizontal (deg, 3dof)")
	f.Float64Var(&pitchRate, "pitch-rate", d.Initial.PitchRate, "initial pitch rate (rad/s, 3dof)")

	f.StringVar(&method, "method", d.Solver.Method, "integration method (euler, rk3, rk4, rk45)")
	f.Float64Var(&stepSize, "dt", d.Solver.StepSize, "step size for fixed-step methods")
	f.Float64Var(&absTol, "atol", d.Solver.AbsTol, "absolute tolerance (rk45)")
	f.Float64Var(&relTol, "rtol", d.Solver.RelTol, "relative tolerance (rk45)")
	f.Float64Var(&initialStep, "h0", d.Solver.InitialStep, "initial step (rk45, 0 = derive)")
	f.Float64Var(&minStep, "hmin", d.Solver.MinStep, "minimum step (rk45)")
	f.Float64Var(&maxStep, "hmax", d.Solver.MaxStep, "maximum step (rk45)")
	f.IntVar(&maxSteps, "max-steps", d.MaxSteps, "step ceiling (0 = default)")
}
