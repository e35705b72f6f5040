// Package sweep measures how far each fixed-step integrator lands from the
// closed-form solution as the step size varies.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/bodysim/internal/bodymass"
	"github.com/san-kum/bodysim/internal/experiment"
	"github.com/san-kum/bodysim/internal/sim"
)

var (
	ErrEmptySweep = errors.New("sweep: count must be at least 1")
	ErrNoMethods  = errors.New("sweep: at least one method is required")
	ErrNoData     = errors.New("sweep: not enough positive errors to fit")
)

// Reference selects the closed-form value each final mass is compared with.
type Reference int

const (
	// Endpoint compares against the closed form at the time the integrator
	// stopped, int(horizon/h)*h.
	Endpoint Reference = iota
	// Horizon compares against the closed form on day Horizon. When h does
	// not divide the horizon the run stops short of it, and the elapsed-time
	// gap outweighs RK4's truncation error.
	Horizon
)

func ParseReference(s string) (Reference, error) {
	switch s {
	case "", "endpoint":
		return Endpoint, nil
	case "horizon":
		return Horizon, nil
	default:
		return 0, fmt.Errorf("sweep: unknown reference %q (endpoint, horizon)", s)
	}
}

func (r Reference) String() string {
	if r == Horizon {
		return "horizon"
	}
	return "endpoint"
}

// Config generates the step sizes Increment*i + Base for i = 1..Count.
type Config struct {
	Base      float64
	Increment float64
	Count     int
	// Horizon is the integrated span in days; 0 means the model's span.
	Horizon   int
	Reference Reference
	Methods   []string
}

func DefaultConfig() Config {
	return Config{
		Base:      0.01,
		Increment: 0.001,
		Count:     9,
		Reference: Endpoint,
		Methods:   []string{"euler", "rk4"},
	}
}

func (c Config) Step(i int) float64 {
	return c.Increment*float64(i) + c.Base
}

func (c Config) Steps() []float64 {
	steps := make([]float64, 0, max(c.Count, 0))
	for i := 1; i <= c.Count; i++ {
		steps = append(steps, c.Step(i))
	}
	return steps
}

func (c Config) Validate() error {
	if c.Count < 1 {
		return fmt.Errorf("%w: got %d", ErrEmptySweep, c.Count)
	}
	if len(c.Methods) == 0 {
		return ErrNoMethods
	}
	if c.Horizon < 0 {
		return fmt.Errorf("sweep: horizon must be non-negative, got %d", c.Horizon)
	}
	for i, h := range c.Steps() {
		if err := sim.ValidateStep(h); err != nil {
			return fmt.Errorf("sweep step %d: %w", i+1, err)
		}
	}
	return nil
}

type Point struct {
	Index     int
	Step      float64
	EndTime   float64
	Reference float64
	Final     map[string]float64
	AbsErr    map[string]float64
}

type Result struct {
	Horizon int
	// Analytical is the closed-form mass on day Horizon.
	Analytical float64
	Reference  Reference
	Methods    []string
	Points     []Point
}

// Run executes the sweep. The day-Horizon value is evaluated once; each
// method's final mass is computed once per step size on a freshly built
// integrator.
func Run(ctx context.Context, model *bodymass.Model, registry *experiment.Registry, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	for _, name := range cfg.Methods {
		if _, err := registry.GetIntegrator(name); err != nil {
			return nil, err
		}
	}

	horizon := cfg.Horizon
	if horizon == 0 {
		horizon = model.Params().Days
	}
	analytical, err := model.FinalValue(horizon)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Horizon:    horizon,
		Analytical: analytical,
		Reference:  cfg.Reference,
		Methods:    append([]string(nil), cfg.Methods...),
		Points:     make([]Point, 0, cfg.Count),
	}

	simCfg := sim.Config{Duration: float64(horizon)}
	for i, h := range cfg.Steps() {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		simCfg.Dt = h
		endTime := float64(simCfg.Steps()) * h
		reference := analytical
		if cfg.Reference == Endpoint {
			reference = model.MassAt(endTime)
		}
		pt := Point{
			Index:     i + 1,
			Step:      h,
			EndTime:   endTime,
			Reference: reference,
			Final:     make(map[string]float64, len(cfg.Methods)),
			AbsErr:    make(map[string]float64, len(cfg.Methods)),
		}

		for _, name := range cfg.Methods {
			integ, err := registry.GetIntegrator(name)
			if err != nil {
				return nil, err
			}
			run, err := sim.New(model, integ).Run(ctx, model.InitialState(), simCfg)
			if err != nil {
				return result, fmt.Errorf("%s at h=%g: %w", name, h, err)
			}
			final := run.Final()[0]
			pt.Final[name] = final
			pt.AbsErr[name] = math.Abs(reference - final)
		}

		result.Points = append(result.Points, pt)
	}

	return result, nil
}

// Series returns the absolute error of method at every sweep index.
func (r *Result) Series(method string) []float64 {
	out := make([]float64, len(r.Points))
	for i, p := range r.Points {
		out[i] = p.AbsErr[method]
	}
	return out
}

func (r *Result) Steps() []float64 {
	out := make([]float64, len(r.Points))
	for i, p := range r.Points {
		out[i] = p.Step
	}
	return out
}
