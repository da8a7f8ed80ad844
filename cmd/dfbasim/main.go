package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"dfbasim/internal/analysis"
	"dfbasim/internal/config"
	"dfbasim/internal/dfba"
	"dfbasim/internal/integrators"
	"dfbasim/internal/metrics"
	"dfbasim/internal/sim"
	"dfbasim/internal/storage"
	"dfbasim/internal/viz"
)

var (
	dataDir    string
	dt         float64
	duration   float64
	integrator string
	adaptive   bool
	tolerance  float64
	configFile string
	column     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dfbasim",
		Short: "dynamic flux-balance simulation of microbial communities",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".dfbasim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "run a scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	runCmd.Flags().Float64Var(&dt, "dt", 0.05, "timestep (h)")
	runCmd.Flags().Float64Var(&duration, "time", 0, "duration (h)")
	runCmd.Flags().StringVar(&integrator, "integrator", "", "integrator (euler, rk4, rk45, implicit)")
	runCmd.Flags().BoolVar(&adaptive, "adaptive", true, "adaptive stepping")
	runCmd.Flags().Float64Var(&tolerance, "tol", 1e-6, "adaptive tolerance")
	runCmd.Flags().StringVar(&configFile, "config", "", "scenario file (yaml), overrides the named scenario")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&column, "column", "", "column name or index (default: all)")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a stored run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "depletion and diauxic-shift analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	scenariosCmd := &cobra.Command{
		Use:   "scenarios",
		Short: "list built-in scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListScenarios() {
				fmt.Println(name)
			}
			return nil
		},
	}

	liveCmd := &cobra.Command{
		Use:   "live [scenario]",
		Short: "run a scenario with live visualization",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().Float64Var(&dt, "dt", 0.05, "timestep (h)")
	liveCmd.Flags().Float64Var(&duration, "time", 0, "duration (h)")
	liveCmd.Flags().StringVar(&integrator, "integrator", "", "integrator")
	liveCmd.Flags().StringVar(&configFile, "config", "", "scenario file (yaml)")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, analyzeCmd, scenariosCmd, liveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadScenario(cmd *cobra.Command, name string) (*config.Config, error) {
	var cfg *config.Config
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
		if cfg.Scenario == "" {
			cfg.Scenario = name
		}
	} else {
		cfg = config.GetScenario(name)
		if cfg == nil {
			return nil, fmt.Errorf("unknown scenario: %s (available: %v)", name, config.ListScenarios())
		}
	}

	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("integrator") {
		cfg.Integrator = integrator
	}
	if cmd.Flags().Changed("adaptive") {
		cfg.Adaptive = adaptive
	}
	if cmd.Flags().Changed("tol") {
		cfg.Tolerance = tolerance
	}
	return cfg, nil
}

func getIntegrator(name string) (dfba.Integrator, error) {
	switch name {
	case "euler":
		return integrators.NewEuler(), nil
	case "rk4":
		return integrators.NewRK4(), nil
	case "rk45":
		return integrators.NewRK45(), nil
	case "implicit", "":
		return integrators.NewImplicitEuler(), nil
	default:
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
}

func columnIndex(labels []string, name string) int {
	for i, l := range labels {
		if l == name {
			return i
		}
	}
	return -1
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd, args[0])
	if err != nil {
		return err
	}

	com, x0, err := cfg.Build()
	if err != nil {
		return err
	}
	integ, err := getIntegrator(cfg.Integrator)
	if err != nil {
		return err
	}

	s := sim.New(com, integ)
	labels := com.Labels()
	if idx := columnIndex(labels, "glucose"); idx >= 0 {
		s.AddMetric(metrics.NewDepletion("glucose_depletion_h", idx, 1e-3))
	}
	if idx := columnIndex(labels, "ethanol"); idx >= 0 {
		s.AddMetric(metrics.NewPeak("ethanol_peak", idx))
	}
	for i, l := range labels {
		if i < len(com.Organisms()) {
			s.AddMetric(metrics.NewFinalValue("final_"+l, i))
		}
	}

	result, err := s.Run(context.Background(), x0, cfg.SimConfig())
	if err != nil {
		return fmt.Errorf("simulation failed at t=%.3f: %w", lastTime(result), err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "scenario\t%s\n", cfg.Scenario)
	fmt.Fprintf(w, "steps\t%d\n", result.StepsTaken)
	for name, val := range result.Metrics {
		fmt.Fprintf(w, "%s\t%.4f\n", name, val)
	}
	w.Flush()

	store := storage.New(dataDir)
	if err := store.Init(); err != nil {
		return err
	}
	runID, err := store.Save(cfg.Scenario, cfg.Integrator, cfg.Adaptive, cfg.Dt, cfg.Duration, labels, result)
	if err != nil {
		return err
	}
	fmt.Printf("saved: %s\n", runID)
	return nil
}

func lastTime(result *dfba.Result) float64 {
	if result == nil || len(result.Times) == 0 {
		return 0
	}
	return result.Times[len(result.Times)-1]
}

func listRuns(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	runs, err := store.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tINTEGRATOR\tDT\tDURATION\tWHEN")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.3f\t%.1f\t%s\n",
			r.ID, r.Scenario, r.Integrator, r.Dt, r.Duration,
			r.Timestamp.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	meta, err := store.Load(args[0])
	if err != nil {
		return err
	}
	states, _, err := store.LoadStates(args[0])
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("run %s has no states", args[0])
	}

	cols := make([]int, 0, len(meta.Columns))
	if column == "" {
		for i := range meta.Columns {
			cols = append(cols, i)
		}
	} else if idx := columnIndex(meta.Columns, column); idx >= 0 {
		cols = append(cols, idx)
	} else if idx, err := strconv.Atoi(column); err == nil && idx >= 0 && idx < len(meta.Columns) {
		cols = append(cols, idx)
	} else {
		return fmt.Errorf("unknown column: %s (have %v)", column, meta.Columns)
	}

	for _, c := range cols {
		series := make([]float64, len(states))
		for i, s := range states {
			if c < len(s) {
				series[i] = s[c]
			}
		}
		graph := asciigraph.Plot(series,
			asciigraph.Height(10),
			asciigraph.Width(72),
			asciigraph.Caption(meta.Columns[c]),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	return store.ExportJSON(os.Stdout, args[0])
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	meta, err := store.Load(args[0])
	if err != nil {
		return err
	}
	states, times, err := store.LoadStates(args[0])
	if err != nil {
		return err
	}

	glc := columnIndex(meta.Columns, "glucose")
	eth := columnIndex(meta.Columns, "ethanol")

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if glc >= 0 {
		if t, ok := analysis.DepletionTime(times, states, glc, 1e-3); ok {
			fmt.Fprintf(w, "glucose depleted\tt = %.3f h\n", t)
		} else {
			fmt.Fprintln(w, "glucose depleted\tnever")
		}
	}
	if eth >= 0 {
		if t, v, ok := analysis.PeakTime(times, states, eth); ok {
			fmt.Fprintf(w, "ethanol peak\t%.4f g/L at t = %.3f h\n", v, t)
		}
	}
	if glc >= 0 && eth >= 0 {
		if t, ok := analysis.DiauxicShift(times, states, glc, eth); ok {
			fmt.Fprintf(w, "diauxic shift\tt = %.3f h\n", t)
		} else {
			fmt.Fprintln(w, "diauxic shift\tnot observed")
		}
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd, args[0])
	if err != nil {
		return err
	}
	com, x0, err := cfg.Build()
	if err != nil {
		return err
	}
	integ, err := getIntegrator(cfg.Integrator)
	if err != nil {
		return err
	}
	return viz.Run(com, integ, x0, cfg.Dt, cfg.Duration)
}
