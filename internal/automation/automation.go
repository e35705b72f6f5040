package automation

import (
	"context"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/bodysim/internal/bodymass"
	"github.com/san-kum/bodysim/internal/config"
	"github.com/san-kum/bodysim/internal/experiment"
)

// Scenario is a scripted sequence of runs, each a subject variation.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from the base subject, or from Preset when set, then
// applies Sex and Params on top.
type ScenarioStep struct {
	Name       string             `yaml:"name"`
	Preset     string             `yaml:"preset"`
	Sex        string             `yaml:"sex"`
	Params     map[string]float64 `yaml:"params"`
	Integrator string             `yaml:"integrator"`
	Dt         float64            `yaml:"dt"`
}

type StepResult struct {
	Name   string
	Params bodymass.Params
	Run    *experiment.Run
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// ApplyParam sets one named subject parameter. Integer parameters are
// rounded.
func ApplyParam(p *bodymass.Params, name string, v float64) error {
	switch name {
	case "days":
		p.Days = int(math.Round(v))
	case "mass":
		p.Mass = v
	case "height":
		p.Height = v
	case "age":
		p.Age = int(math.Round(v))
	case "calories":
		p.Calories = v
	case "activity":
		p.Activity = v
	default:
		return fmt.Errorf("unknown parameter %q (days, mass, height, age, calories, activity)", name)
	}
	return nil
}

func (s ScenarioStep) params(base bodymass.Params) (bodymass.Params, error) {
	p := base
	if s.Preset != "" {
		cfg := config.GetPreset(s.Preset)
		if cfg == nil {
			return p, fmt.Errorf("unknown preset: %s", s.Preset)
		}
		var err error
		if p, err = cfg.Params(); err != nil {
			return p, err
		}
	}
	if s.Sex != "" {
		sex, err := bodymass.ParseSex(s.Sex)
		if err != nil {
			return p, err
		}
		p.Sex = sex
	}
	for name, v := range s.Params {
		if err := ApplyParam(&p, name, v); err != nil {
			return p, err
		}
	}
	return p, p.Validate()
}

// Defaults supplies the integrator and step size for steps that name
// neither. Zero fields fall back to the package config defaults.
type Defaults struct {
	Integrator string
	Dt         float64
}

// RunScenario executes every step in order and stops at the first failure.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, base bodymass.Params, def Defaults) ([]StepResult, error) {
	if def.Integrator == "" {
		def.Integrator = config.DefaultIntegrator
	}
	if def.Dt == 0 {
		def.Dt = config.DefaultDt
	}

	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step %d", i+1)
		}

		p, err := step.params(base)
		if err != nil {
			return results, fmt.Errorf("%s: %w", name, err)
		}
		model, err := bodymass.New(p)
		if err != nil {
			return results, fmt.Errorf("%s: %w", name, err)
		}

		integ := step.Integrator
		if integ == "" {
			integ = def.Integrator
		}
		dt := step.Dt
		if dt == 0 {
			dt = def.Dt
		}

		run, err := experiment.RunIntegrator(ctx, registry, model, integ, dt)
		if err != nil {
			return results, fmt.Errorf("%s: %w", name, err)
		}
		results = append(results, StepResult{Name: name, Params: p, Run: run})
	}

	return results, nil
}

// ParameterSweep varies one subject parameter over NumSteps evenly spaced
// values from Min to Max.
type ParameterSweep struct {
	Param      string
	Min        float64
	Max        float64
	NumSteps   int
	Integrator string
	Dt         float64
}

type SweepResult struct {
	Value float64
	Run   *experiment.Run
}

func (s *ParameterSweep) Values() []float64 {
	if s.NumSteps == 1 {
		return []float64{s.Min}
	}
	step := (s.Max - s.Min) / float64(s.NumSteps-1)
	values := make([]float64, s.NumSteps)
	for i := range values {
		values[i] = s.Min + float64(i)*step
	}
	return values
}

func RunSweep(ctx context.Context, sweep *ParameterSweep, registry *experiment.Registry, base bodymass.Params) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("parameter sweep needs at least one value, got %d", sweep.NumSteps)
	}
	if err := ApplyParam(&bodymass.Params{}, sweep.Param, 0); err != nil {
		return nil, err
	}

	results := make([]SweepResult, 0, sweep.NumSteps)
	for _, v := range sweep.Values() {
		p := base
		if err := ApplyParam(&p, sweep.Param, v); err != nil {
			return results, err
		}
		model, err := bodymass.New(p)
		if err != nil {
			return results, fmt.Errorf("%s=%g: %w", sweep.Param, v, err)
		}
		run, err := experiment.RunIntegrator(ctx, registry, model, sweep.Integrator, sweep.Dt)
		if err != nil {
			return results, fmt.Errorf("%s=%g: %w", sweep.Param, v, err)
		}
		results = append(results, SweepResult{Value: v, Run: run})
	}

	return results, nil
}
