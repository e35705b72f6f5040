package automation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/bodysim/internal/bodymass"
	"github.com/san-kum/bodysim/internal/experiment"
)

const scenarioYAML = `name: diets
description: same subject, three intakes
steps:
  - name: baseline
    params: {days: 30}
  - name: more food
    params: {days: 30, calories: 2500}
    integrator: euler
    dt: 0.1
  - name: male
    preset: male
    sex: f
    params: {days: 30}
`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if sc.Name != "diets" || len(sc.Steps) != 3 {
		t.Fatalf("unexpected scenario %+v", sc)
	}

	results, err := RunScenario(context.Background(), sc, experiment.NewRegistry(), bodymass.Reference(), Defaults{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	if results[0].Run.Integrator != "rk4" || results[1].Run.Integrator != "euler" {
		t.Errorf("integrator defaults not applied")
	}
	if results[1].Run.Final <= results[0].Run.Final {
		t.Errorf("higher intake should end heavier: %v vs %v", results[1].Run.Final, results[0].Run.Final)
	}
	// preset male, then sex overridden back to female: same as the baseline
	if results[2].Params != results[0].Params {
		t.Errorf("expected %+v, got %+v", results[0].Params, results[2].Params)
	}
}

func TestRunScenarioStopsOnError(t *testing.T) {
	sc := &Scenario{Steps: []ScenarioStep{
		{Params: map[string]float64{"days": 5}},
		{Params: map[string]float64{"activity": 0}},
		{Params: map[string]float64{"days": 5}},
	}}
	results, err := RunScenario(context.Background(), sc, experiment.NewRegistry(), bodymass.Reference(), Defaults{})
	if !errors.Is(err, bodymass.ErrDegenerateActivity) {
		t.Errorf("expected degenerate activity, got %v", err)
	}
	if len(results) != 1 {
		t.Errorf("expected the first result only, got %d", len(results))
	}
}

func TestRunScenarioUsesGivenDefaults(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	results, err := RunScenario(context.Background(), sc, experiment.NewRegistry(), bodymass.Reference(),
		Defaults{Integrator: "euler", Dt: 0.5})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, i := range []int{0, 2} {
		if results[i].Run.Integrator != "euler" || results[i].Run.Dt != 0.5 {
			t.Errorf("step %d: expected euler h=0.5, got %s h=%g", i, results[i].Run.Integrator, results[i].Run.Dt)
		}
	}
	// explicit step settings still win
	if results[1].Run.Integrator != "euler" || results[1].Run.Dt != 0.1 {
		t.Errorf("step 1 overrides lost: %s h=%g", results[1].Run.Integrator, results[1].Run.Dt)
	}
}

func TestLoadScenarioRejectsEmpty(t *testing.T) {
	if _, err := LoadScenario(writeScenario(t, "name: nothing\n")); err == nil {
		t.Error("expected error for scenario without steps")
	}
}

func TestApplyParam(t *testing.T) {
	p := bodymass.Reference()
	if err := ApplyParam(&p, "age", 30.6); err != nil || p.Age != 31 {
		t.Errorf("age: %v %d", err, p.Age)
	}
	if err := ApplyParam(&p, "weight", 1); err == nil {
		t.Error("expected unknown parameter error")
	}
}

func TestRunParameterSweep(t *testing.T) {
	base := bodymass.Reference()
	base.Days = 60
	ps := &ParameterSweep{Param: "calories", Min: 1200, Max: 2400, NumSteps: 4, Integrator: "rk4", Dt: 0.25}

	results, err := RunSweep(context.Background(), ps, experiment.NewRegistry(), base)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if len(results) != 4 || results[3].Value != 2400 {
		t.Fatalf("unexpected values %+v", ps.Values())
	}
	for i := 1; i < len(results); i++ {
		if results[i].Run.Final <= results[i-1].Run.Final {
			t.Errorf("final mass should grow with intake at index %d", i)
		}
	}
}

func TestRunParameterSweepUnknownParam(t *testing.T) {
	ps := &ParameterSweep{Param: "weight", Min: 1, Max: 2, NumSteps: 2, Integrator: "rk4", Dt: 1}
	if _, err := RunSweep(context.Background(), ps, experiment.NewRegistry(), bodymass.Reference()); err == nil {
		t.Error("expected error")
	}
}
