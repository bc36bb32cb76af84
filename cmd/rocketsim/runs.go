package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/rocketsim/internal/config"
	"github.com/san-kum/rocketsim/internal/flightlog"
	"github.com/san-kum/rocketsim/internal/plot"
	"github.com/san-kum/rocketsim/internal/storage"
)

func listRuns(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir())
	runs, err := store.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tMODEL\tSOLVER\tEVENT\tAPOGEE (m)\tROWS\tTIMESTAMP")
	for _, run := range runs {
		name := run.Name
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.3f\t%d\t%s\n",
			run.ID, name, run.Model, run.Solver, run.Event,
			run.Summary.Apogee, run.Summary.Rows,
			run.Timestamp.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, *flightlog.Log, error) {
	store := storage.New(dataDir())
	meta, err := store.Load(runID)
	if err != nil {
		return nil, nil, fmt.Errorf("load run: %w", err)
	}
	log, err := store.LoadLog(runID)
	if err != nil {
		return nil, nil, fmt.Errorf("load log: %w", err)
	}
	return meta, log, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, log, err := loadRun(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if pngDir != "" {
		files, err := plot.SaveFlight(pngDir, log)
		if err != nil {
			return err
		}
		for _, f := range files {
			fmt.Fprintf(out, "wrote %s\n", f)
		}
		return nil
	}

	graph, err := plot.Terminal(log, column, chartWidth, chartHeight)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "run: %s\n", meta.ID)
	fmt.Fprintf(out, "model: %s\n", meta.Model)
	fmt.Fprintf(out, "solver: %s\n", meta.Solver)
	fmt.Fprintf(out, "rows: %d\n\n", log.Len())
	fmt.Fprintln(out, graph)
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, log, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if outFile == "" {
		return flightlog.WriteCSV(cmd.OutOrStdout(), log)
	}
	if err := writeCSVFile(outFile, log); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", outFile)
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, log, err := loadRun(args[0])
	if err != nil {
		return err
	}
	path := outFile
	if path == "" {
		path = meta.ID + ".json"
	}
	if err := storage.ExportJSON(path, *meta, log); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	modelNames := []string{config.ModelOneDOF, config.ModelThreeDOF}
	if len(args) == 1 {
		modelNames = args
	}

	out := cmd.OutOrStdout()
	for _, m := range modelNames {
		names := config.ListPresets(m)
		if len(names) == 0 {
			fmt.Fprintf(out, "no presets for model: %s\n", m)
			continue
		}
		fmt.Fprintf(out, "presets for %s:\n", m)
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, name := range names {
			p := config.GetPreset(m, name)
			fmt.Fprintf(w, "  %s\t%s\tv0=%g m/s\th0=%g m\n", name, p.Solver.Method, p.Initial.Velocity, p.Initial.Altitude)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
	return nil
}
