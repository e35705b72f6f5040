package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/san-kum/bodysim/internal/config"
	"github.com/san-kum/bodysim/internal/sweep"
)

var (
	dataDir    string
	configFile string
	preset     string

	days     int
	mass     float64
	height   float64
	age      int
	calories float64
	activity float64
	sex      string

	runDt        float64
	compareDt    float64
	liveDt       float64
	paramDt      float64
	speed        float64
	exportRun    bool
	exportFormat string

	base      float64
	increment float64
	count     int
	horizon   int
	methods   []string
	reference string
	format    string
	outPath   string

	writeConfig string

	paramMin   float64
	paramMax   float64
	paramSteps int
)

var logger = log.New(os.Stderr, "bodysim: ", 0)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

// newRootCmd wires every command; with no subcommand it runs the default
// error sweep.
func newRootCmd() *cobra.Command {
	defaults := config.DefaultConfig()

	rootCmd := &cobra.Command{
		Use:           "bodysim",
		Short:         "body mass energy balance: Euler vs RK4 against the closed form",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runSweep,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".bodysim", "data directory for exported runs")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "subject preset (see `bodysim presets`)")
	pf.IntVar(&days, "days", defaults.Subject.Days, "simulated span [days]")
	pf.Float64Var(&mass, "mass", defaults.Subject.Mass, "initial body mass [kg]")
	pf.Float64Var(&height, "height", defaults.Subject.Height, "height [cm]")
	pf.IntVar(&age, "age", defaults.Subject.Age, "age [years]")
	pf.Float64Var(&calories, "calories", defaults.Subject.Calories, "daily intake [kcal]")
	pf.Float64Var(&activity, "activity", defaults.Subject.Activity, "physical activity factor")
	pf.StringVar(&sex, "sex", defaults.Subject.Sex, "female or male")

	addSweepFlags(rootCmd, defaults)

	runCmd := &cobra.Command{
		Use:   "run [integrator]",
		Short: "integrate one trajectory and compare it with the closed form",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTrajectory,
	}
	runCmd.Flags().Float64Var(&runDt, "dt", defaults.Dt, "step size [days]")
	runCmd.Flags().BoolVar(&exportRun, "export", false, "write CSV, metadata and chart under --data")
	runCmd.Flags().StringVar(&exportFormat, "format", "png", "chart format for --export (png, svg, pdf)")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "error sweep over step sizes",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addSweepFlags(sweepCmd, defaults)

	compareCmd := &cobra.Command{
		Use:   "compare",
		Short: "final mass of every integrator against the closed form",
		Args:  cobra.NoArgs,
		RunE:  compareIntegrators,
	}
	compareCmd.Flags().Float64Var(&compareDt, "dt", defaults.Dt, "step size [days]")

	analyticCmd := &cobra.Command{
		Use:   "analytic",
		Short: "closed-form mass for each day",
		Args:  cobra.NoArgs,
		RunE:  runAnalytic,
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "step Euler and RK4 side by side in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	liveCmd.Flags().Float64Var(&liveDt, "dt", 0.05, "step size [days]")
	liveCmd.Flags().Float64Var(&speed, "speed", 8, "steps per frame")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list subject presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "print the effective configuration as yaml",
		Args:  cobra.NoArgs,
		RunE:  showConfig,
	}
	configCmd.Flags().StringVar(&writeConfig, "write", "", "also save it to this path")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file.yaml]",
		Short: "run a scripted sequence of subject variations",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	paramCmd := &cobra.Command{
		Use:   "param [name]",
		Short: "vary one subject parameter and compare final masses",
		Args:  cobra.ExactArgs(1),
		RunE:  runParamSweep,
	}
	paramCmd.Flags().Float64Var(&paramMin, "min", 1200, "first value")
	paramCmd.Flags().Float64Var(&paramMax, "max", 2400, "last value")
	paramCmd.Flags().IntVar(&paramSteps, "steps", 7, "number of values")
	paramCmd.Flags().Float64Var(&paramDt, "dt", defaults.Dt, "step size [days]")

	rootCmd.AddCommand(runCmd, sweepCmd, compareCmd, analyticCmd, liveCmd, scenarioCmd, paramCmd, presetsCmd, configCmd)
	return rootCmd
}

func addSweepFlags(cmd *cobra.Command, defaults *config.Config) {
	f := cmd.Flags()
	f.Float64Var(&base, "base", defaults.Sweep.Base, "step size offset")
	f.Float64Var(&increment, "increment", defaults.Sweep.Increment, "step size increment")
	f.IntVar(&count, "count", defaults.Sweep.Count, "number of step sizes")
	f.IntVar(&horizon, "horizon", defaults.Sweep.Horizon, "integrated span [days], 0 uses --days")
	f.StringSliceVar(&methods, "methods", defaults.Sweep.Methods, "integrators to compare")
	f.StringVar(&reference, "reference", defaults.Sweep.Reference, "closed form at the run's end time (endpoint) or at day --horizon (horizon)")
	f.StringVar(&format, "format", defaults.Output.Format, "chart output: term, png, svg or pdf")
	f.StringVar(&outPath, "out", "", "chart path for file formats (default: inside the run directory)")
}

// resolveConfig layers defaults, preset, config file and explicitly set
// flags, in that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("days") {
		cfg.Subject.Days = days
	}
	if flags.Changed("mass") {
		cfg.Subject.Mass = mass
	}
	if flags.Changed("height") {
		cfg.Subject.Height = height
	}
	if flags.Changed("age") {
		cfg.Subject.Age = age
	}
	if flags.Changed("calories") {
		cfg.Subject.Calories = calories
	}
	if flags.Changed("activity") {
		cfg.Subject.Activity = activity
	}
	if flags.Changed("sex") {
		cfg.Subject.Sex = sex
	}
	// Several commands declare --dt and --format with their own defaults, so
	// the values are read back from the command's flag set.
	if flags.Changed("dt") {
		v, err := flags.GetFloat64("dt")
		if err != nil {
			return nil, err
		}
		cfg.Dt = v
	}
	if flags.Changed("base") {
		cfg.Sweep.Base = base
	}
	if flags.Changed("increment") {
		cfg.Sweep.Increment = increment
	}
	if flags.Changed("count") {
		cfg.Sweep.Count = count
	}
	if flags.Changed("horizon") {
		cfg.Sweep.Horizon = horizon
	}
	if flags.Changed("methods") {
		cfg.Sweep.Methods = methods
	}
	if flags.Changed("reference") {
		cfg.Sweep.Reference = reference
	}
	if flags.Changed("format") {
		v, err := flags.GetString("format")
		if err != nil {
			return nil, err
		}
		cfg.Output.Format = v
	}

	if _, err := sweep.ParseReference(cfg.Sweep.Reference); err != nil {
		return nil, err
	}
	return cfg, nil
}
