package experiment

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/bodysim/internal/bodymass"
	"github.com/san-kum/bodysim/internal/metrics"
	"github.com/san-kum/bodysim/internal/sim"
)

type Config struct {
	Integrator    string
	Dt            float64
	ValidateState bool
}

// Run is one integrator run over the model's full span.
//
// A run stops after int(days/dt) steps, which can fall short of the last day
// by up to dt. Reference is the closed form at the time the run actually
// stopped and AbsError is measured against it; Analytical is the closed form
// on the last day and HorizonError is measured against that.
type Run struct {
	Integrator   string
	Dt           float64
	Result       *sim.Result
	Final        float64
	EndTime      float64
	Reference    float64
	AbsError     float64
	Analytical   float64
	HorizonError float64
}

type Experiment struct {
	cfg       Config
	model     *bodymass.Model
	simulator *sim.Simulator
}

func New(cfg Config, model *bodymass.Model) *Experiment {
	return &Experiment{cfg: cfg, model: model}
}

func (e *Experiment) Setup(registry *Registry, metrics []sim.Metric) error {
	integ, err := registry.GetIntegrator(e.cfg.Integrator)
	if err != nil {
		return err
	}
	e.simulator = sim.New(e.model, integ)
	for _, m := range metrics {
		e.simulator.AddMetric(m)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*Run, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	simCfg := sim.Config{
		Dt:            e.cfg.Dt,
		Duration:      e.model.Duration(),
		ValidateState: e.cfg.ValidateState,
	}

	result, err := e.simulator.Run(ctx, e.model.InitialState(), simCfg)
	if err != nil {
		return nil, fmt.Errorf("%s run (dt=%g): %w", e.cfg.Integrator, e.cfg.Dt, err)
	}

	analytical, err := e.model.FinalValue(e.model.Params().Days)
	if err != nil {
		return nil, err
	}

	final := result.Final()[0]
	reference := e.model.MassAt(result.EndTime())
	return &Run{
		Integrator:   e.cfg.Integrator,
		Dt:           e.cfg.Dt,
		Result:       result,
		Final:        final,
		EndTime:      result.EndTime(),
		Reference:    reference,
		AbsError:     math.Abs(reference - final),
		Analytical:   analytical,
		HorizonError: math.Abs(analytical - final),
	}, nil
}

// GetSimulator returns the underlying simulator for adding observers.
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}

// RunIntegrator is the one-shot form used by comparisons: fresh integrator,
// default metrics, full span.
func RunIntegrator(ctx context.Context, registry *Registry, model *bodymass.Model, name string, dt float64) (*Run, error) {
	exp := New(Config{Integrator: name, Dt: dt}, model)
	if err := exp.Setup(registry, metrics.Defaults(model.Params().Mass)); err != nil {
		return nil, err
	}
	return exp.Run(ctx)
}
