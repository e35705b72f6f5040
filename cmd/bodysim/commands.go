package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot/vg"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/bodysim/internal/analysis"
	"github.com/san-kum/bodysim/internal/automation"
	"github.com/san-kum/bodysim/internal/bodymass"
	"github.com/san-kum/bodysim/internal/config"
	"github.com/san-kum/bodysim/internal/experiment"
	"github.com/san-kum/bodysim/internal/export"
	"github.com/san-kum/bodysim/internal/metrics"
	"github.com/san-kum/bodysim/internal/sweep"
	"github.com/san-kum/bodysim/internal/tui"
	"github.com/san-kum/bodysim/internal/viz"
)

func buildModel(cfg *config.Config) (*bodymass.Model, error) {
	params, err := cfg.Params()
	if err != nil {
		return nil, err
	}
	return bodymass.New(params)
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	model, err := buildModel(cfg)
	if err != nil {
		return err
	}
	swCfg, err := cfg.SweepConfig()
	if err != nil {
		return err
	}

	res, err := sweep.Run(cmd.Context(), model, experiment.NewRegistry(), swCfg)
	if err != nil {
		return err
	}

	fmt.Printf("analytical mass at day %d: %.6f kg (errors against the %s value)\n\n", res.Horizon, res.Analytical, res.Reference)

	headers := []string{"i", "h", "end day"}
	for _, m := range res.Methods {
		headers = append(headers, m+" final", m+" |error|")
	}
	rows := make([][]string, 0, len(res.Points))
	for _, p := range res.Points {
		row := []string{strconv.Itoa(p.Index), fmt.Sprintf("%.3f", p.Step), fmt.Sprintf("%.3f", p.EndTime)}
		for _, m := range res.Methods {
			row = append(row, fmt.Sprintf("%.6f", p.Final[m]), fmt.Sprintf("%.3e", p.AbsErr[m]))
		}
		rows = append(rows, row)
	}
	fmt.Print(viz.Table{Title: "error sweep", Headers: headers, Rows: rows})

	summary := make([][]string, 0, len(res.Methods))
	for _, m := range res.Methods {
		s := res.Summarize(m)
		summary = append(summary, []string{m, fmt.Sprintf("%.3e", s.Min), fmt.Sprintf("%.3e", s.Max), fmt.Sprintf("%.3e", s.Mean), fmt.Sprintf("%.2f", s.Order)})
	}
	fmt.Print(viz.Table{Headers: []string{"method", "min", "max", "mean", "order"}, Rows: summary})
	fmt.Println()

	fig := res.StepFigure()
	if len(res.Methods) >= 2 {
		if fig, err = res.Figure(res.Methods[0], res.Methods[1]); err != nil {
			return err
		}
	}
	if _, dropped := viz.Sanitize(fig); dropped > 0 {
		logger.Printf("%d point(s) with zero or non-finite error left off the log-log chart", dropped)
	}

	if cfg.Output.Format == "term" {
		return viz.NewTerminal(os.Stdout).Render(fig)
	}

	params, _ := cfg.Params()
	store := export.NewStore(dataDir)
	if err := store.Init(); err != nil {
		return err
	}
	run, err := store.Create("sweep", params)
	if err != nil {
		return err
	}
	if err := run.WriteSweep(res); err != nil {
		return err
	}
	path := outPath
	if path == "" {
		path = run.Path("errors." + cfg.Output.Format)
	}
	if err := renderFile(fig, cfg, path); err != nil {
		return err
	}
	if err := run.Close(); err != nil {
		return err
	}
	logger.Printf("wrote %s and %s", run.Dir, path)
	return nil
}

func renderFile(fig viz.Figure, cfg *config.Config, path string) error {
	var r viz.Renderer
	switch cfg.Output.Format {
	case "svg":
		r = export.NewSVG(path)
	case "png", "pdf":
		p := export.NewPlot(path)
		p.Width = vg.Length(cfg.Output.Width) * vg.Inch
		p.Height = vg.Length(cfg.Output.Height) * vg.Inch
		r = p
	default:
		return fmt.Errorf("unknown output format: %s (term, png, svg, pdf)", cfg.Output.Format)
	}
	return r.Render(fig)
}

func runTrajectory(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if len(args) > 0 {
		cfg.Integrator = args[0]
	}
	model, err := buildModel(cfg)
	if err != nil {
		return err
	}
	p := model.Params()

	registry := experiment.NewRegistry()
	exp := experiment.New(experiment.Config{Integrator: cfg.Integrator, Dt: cfg.Dt, ValidateState: true}, model)
	if err := exp.Setup(registry, metrics.Defaults(p.Mass)); err != nil {
		return err
	}
	progress := tui.NewProgress(os.Stderr, cfg.Integrator, model.Duration(), 10)
	exp.GetSimulator().AddObserver(progress)

	start := time.Now()
	run, err := exp.Run(cmd.Context())
	progress.Done()
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("%s, h=%g, %d steps in %.1fms\n\n", run.Integrator, run.Dt, run.Result.StepsTaken, float64(elapsed.Microseconds())/1000)
	fmt.Print(viz.Table{
		Headers: []string{"quantity", "value"},
		Rows: [][]string{
			{"final mass", fmt.Sprintf("%.6f kg", run.Final)},
			{"end day", fmt.Sprintf("%.4f", run.EndTime)},
			{"closed form at end day", fmt.Sprintf("%.6f kg", run.Reference)},
			{"|error|", fmt.Sprintf("%.3e", run.AbsError)},
			{fmt.Sprintf("closed form at day %d", p.Days), fmt.Sprintf("%.6f kg", run.Analytical)},
			{"|error| at last day", fmt.Sprintf("%.3e", run.HorizonError)},
			{"equilibrium", fmt.Sprintf("%.3f kg", model.Equilibrium())},
		},
	})
	for _, se := range run.Result.Errors {
		logger.Print(se)
	}

	names := make([]string, 0, len(run.Result.Metrics))
	for name := range run.Result.Metrics {
		names = append(names, name)
	}
	slices.Sort(names)
	rows := make([][]string, 0, len(names)+2)
	for _, name := range names {
		rows = append(rows, []string{name, fmt.Sprintf("%.4f", run.Result.Metrics[name])})
	}
	integ, err := registry.GetIntegrator(run.Integrator)
	if err != nil {
		return err
	}
	if lambda, err := analysis.LyapunovExponent(model, integ, model.InitialState(), run.Dt, model.Duration(), 1e-3); err == nil {
		rows = append(rows,
			[]string{"lyapunov exponent", fmt.Sprintf("%.6e /day", lambda)},
			[]string{"exact rate -1/tau", fmt.Sprintf("%.6e /day", -1/model.TimeConstant())},
		)
	}
	fmt.Print(viz.Table{Headers: []string{"metric", "value"}, Rows: rows})
	fmt.Println()

	fig := trajectoryFigure(model, run)
	if err := viz.NewTerminal(os.Stdout).Render(fig); err != nil && !errors.Is(err, viz.ErrNothingToDraw) {
		return err
	}

	if !exportRun {
		return nil
	}
	store := export.NewStore(dataDir)
	if err := store.Init(); err != nil {
		return err
	}
	out, err := store.Create("run", p)
	if err != nil {
		return err
	}
	if err := out.WriteTrajectory(model, run); err != nil {
		return err
	}
	chartFormat := cfg.Output.Format
	if chartFormat == "term" {
		chartFormat = exportFormat
	}
	cfg.Output.Format = chartFormat
	if err := renderFile(fig, cfg, out.Path("trajectory."+chartFormat)); err != nil && !errors.Is(err, viz.ErrNothingToDraw) {
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	logger.Printf("exported run %s to %s", out.ID(), out.Dir)
	return nil
}

func trajectoryFigure(model *bodymass.Model, run *experiment.Run) viz.Figure {
	times := append([]float64{0}, run.Result.Times...)
	masses := append([]float64{run.Result.Initial[0]}, run.Result.Component(0)...)
	exact := make([]float64, len(times))
	for i, t := range times {
		exact[i] = model.MassAt(t)
	}
	return viz.Figure{
		Title:  fmt.Sprintf("body mass, %s h=%g", run.Integrator, run.Dt),
		XLabel: "day",
		YLabel: "kg",
		Series: []viz.Series{
			{Name: run.Integrator, X: times, Y: masses, Kind: viz.Line},
			{Name: "analytical", X: times, Y: exact, Kind: viz.Line},
		},
	}
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	model, err := buildModel(cfg)
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	rows := make([][]string, 0)
	for _, name := range registry.ListIntegrators() {
		start := time.Now()
		run, err := experiment.RunIntegrator(cmd.Context(), registry, model, name, cfg.Dt)
		elapsed := time.Since(start)
		if err != nil {
			rows = append(rows, []string{name, "error: " + err.Error(), "", "", "", ""})
			continue
		}
		rows = append(rows, []string{
			name,
			fmt.Sprintf("%.6f", run.Final),
			fmt.Sprintf("%.6f", run.Reference),
			fmt.Sprintf("%.3e", run.AbsError),
			fmt.Sprintf("%.3e", run.HorizonError),
			fmt.Sprintf("%.2f", float64(elapsed.Microseconds())/1000),
		})
	}

	fmt.Printf("comparing integrators (h=%g, %d days)\n", cfg.Dt, model.Params().Days)
	fmt.Print(viz.Table{
		Headers: []string{"integrator", "final", "closed form", "|error|", "|error| last day", "time_ms"},
		Rows:    rows,
	})
	return nil
}

func runAnalytic(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	model, err := buildModel(cfg)
	if err != nil {
		return err
	}
	p := model.Params()

	final, err := model.FinalValue(p.Days)
	if err != nil {
		return err
	}
	fmt.Printf("day %d: %.6f kg  (equilibrium %.3f kg, time constant %.1f days)\n\n", p.Days, final, model.Equilibrium(), model.TimeConstant())

	series := model.Analytical(p.Days)
	if len(series) < 2 {
		return nil
	}
	graph := asciigraph.Plot(series,
		asciigraph.Height(12),
		asciigraph.Width(72),
		asciigraph.Caption("analytical mass [kg] by day"),
	)
	fmt.Println(graph)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	model, err := buildModel(cfg)
	if err != nil {
		return err
	}
	step := liveDt
	if !cmd.Flags().Changed("dt") && configFile != "" {
		step = cfg.Dt
	}
	v, err := tui.NewViewer(model, experiment.NewRegistry(), step, speed)
	if err != nil {
		return err
	}
	return tui.RunViewer(v)
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	base, err := cfg.Params()
	if err != nil {
		return err
	}
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	results, err := automation.RunScenario(cmd.Context(), sc, experiment.NewRegistry(), base,
		automation.Defaults{Integrator: cfg.Integrator, Dt: cfg.Dt})
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{
			r.Name,
			fmt.Sprintf("%s %d %gcm", r.Params.Sex, r.Params.Age, r.Params.Height),
			fmt.Sprintf("%g", r.Params.Calories),
			strconv.Itoa(r.Params.Days),
			fmt.Sprintf("%s h=%g", r.Run.Integrator, r.Run.Dt),
			fmt.Sprintf("%.4f", r.Run.Final),
			fmt.Sprintf("%.3e", r.Run.AbsError),
		})
	}
	fmt.Print(viz.Table{
		Title:   sc.Name,
		Headers: []string{"step", "subject", "kcal", "days", "method", "final", "|error|"},
		Rows:    rows,
	})
	return err
}

func runParamSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	base, err := cfg.Params()
	if err != nil {
		return err
	}

	ps := &automation.ParameterSweep{
		Param:      args[0],
		Min:        paramMin,
		Max:        paramMax,
		NumSteps:   paramSteps,
		Integrator: cfg.Integrator,
		Dt:         cfg.Dt,
	}
	results, err := automation.RunSweep(cmd.Context(), ps, experiment.NewRegistry(), base)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(results))
	xs := make([]float64, 0, len(results))
	ys := make([]float64, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{
			fmt.Sprintf("%g", r.Value),
			fmt.Sprintf("%.4f", r.Run.Final),
			fmt.Sprintf("%.4f", r.Run.Analytical),
			fmt.Sprintf("%.3e", r.Run.AbsError),
		})
		xs = append(xs, r.Value)
		ys = append(ys, r.Run.Final)
	}
	fmt.Print(viz.Table{
		Title:   fmt.Sprintf("final mass by %s (%s, h=%g)", ps.Param, ps.Integrator, ps.Dt),
		Headers: []string{ps.Param, "final", fmt.Sprintf("closed form day %d", base.Days), "|error|"},
		Rows:    rows,
	})
	fmt.Println()

	fig := viz.Figure{
		Title:  "final mass [kg]",
		XLabel: ps.Param,
		YLabel: "kg",
		Series: []viz.Series{{Name: ps.Integrator, X: xs, Y: ys, Kind: viz.Scatter}},
	}
	return viz.NewTerminal(os.Stdout).Render(fig)
}

func listPresets(cmd *cobra.Command, args []string) error {
	rows := make([][]string, 0, len(config.Presets))
	for _, name := range config.ListPresets() {
		s := config.Presets[name]
		rows = append(rows, []string{
			name, s.Sex, strconv.Itoa(s.Age),
			fmt.Sprintf("%g", s.Mass), fmt.Sprintf("%g", s.Height),
			fmt.Sprintf("%g", s.Calories), fmt.Sprintf("%g", s.Activity), strconv.Itoa(s.Days),
		})
	}
	fmt.Print(viz.Table{
		Title:   "presets",
		Headers: []string{"name", "sex", "age", "mass", "height", "kcal", "activity", "days"},
		Rows:    rows,
	})
	return nil
}

func showConfig(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if _, err := cfg.Params(); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Print(string(data))

	if writeConfig != "" {
		if err := os.MkdirAll(filepath.Dir(writeConfig), 0755); err != nil {
			return err
		}
		if err := config.Save(writeConfig, cfg); err != nil {
			return err
		}
		logger.Printf("saved %s", writeConfig)
	}
	return nil
}
