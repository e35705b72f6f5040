package experiment

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/bodysim/internal/bodymass"
	"github.com/san-kum/bodysim/internal/integrators"
	"github.com/san-kum/bodysim/internal/sim"
)

func referenceModel(t *testing.T) *bodymass.Model {
	t.Helper()
	m, err := bodymass.New(bodymass.Reference())
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	names := r.ListIntegrators()
	if len(names) != 2 || names[0] != "euler" || names[1] != "rk4" {
		t.Errorf("unexpected integrators %v", names)
	}

	a, _ := r.GetIntegrator("rk4")
	b, _ := r.GetIntegrator("rk4")
	if a == b {
		t.Error("registry returned a shared integrator instance")
	}

	if _, err := r.GetIntegrator("verlet"); !errors.Is(err, ErrUnknownIntegrator) {
		t.Errorf("expected ErrUnknownIntegrator, got %v", err)
	}

	r.Register("halfstep", func() sim.Integrator { return integrators.NewEuler() })
	if names := r.ListIntegrators(); len(names) != 3 || names[1] != "halfstep" {
		t.Errorf("registered integrator not listed in order: %v", names)
	}
	if _, err := r.GetIntegrator("halfstep"); err != nil {
		t.Errorf("registered integrator not found: %v", err)
	}

	// replacing a name keeps a single entry
	r.Register("rk4", func() sim.Integrator { return integrators.NewRK4() })
	if n := len(r.ListIntegrators()); n != 3 {
		t.Errorf("expected 3 integrators after re-registering rk4, got %d", n)
	}
}

func TestReferenceScenario(t *testing.T) {
	model := referenceModel(t)
	registry := NewRegistry()
	const h = 0.011

	for _, name := range []string{"euler", "rk4"} {
		t.Run(name, func(t *testing.T) {
			run, err := RunIntegrator(context.Background(), registry, model, name, h)
			if err != nil {
				t.Fatal(err)
			}

			if got := len(run.Result.States); got != 33181 {
				t.Fatalf("expected 33181 samples, got %d", got)
			}

			times := run.Result.Times
			for i := 1; i < len(times); i++ {
				if math.Abs(times[i]-times[i-1]-h) > 1e-9 {
					t.Fatalf("time step %d is %v, want %v", i, times[i]-times[i-1], h)
				}
			}

			if run.HorizonError > 1e-3 {
				t.Errorf("final mass %v too far from day-365 value %v", run.Final, run.Analytical)
			}
			if math.Abs(run.EndTime-33181*h) > 1e-9 {
				t.Errorf("expected end time %v, got %v", 33181*h, run.EndTime)
			}

			if run.Result.Metrics["mass_change"] >= 0 {
				t.Errorf("expected mass loss, got change %v", run.Result.Metrics["mass_change"])
			}
			if run.Result.Metrics["divergence"] != 0 {
				t.Errorf("expected no divergence, got %v", run.Result.Metrics["divergence"])
			}
		})
	}
}

func TestRK4BeatsEulerForSmallSteps(t *testing.T) {
	model := referenceModel(t)
	registry := NewRegistry()

	for _, h := range []float64{0.02, 0.015, 0.011} {
		euler, err := RunIntegrator(context.Background(), registry, model, "euler", h)
		if err != nil {
			t.Fatal(err)
		}
		rk4, err := RunIntegrator(context.Background(), registry, model, "rk4", h)
		if err != nil {
			t.Fatal(err)
		}
		if rk4.AbsError >= euler.AbsError {
			t.Errorf("h=%v: rk4 error %.3e not below euler error %.3e", h, rk4.AbsError, euler.AbsError)
		}
	}
}

func TestHorizonErrorDominatedByEndTime(t *testing.T) {
	// 365/0.011 is not an integer: the run stops at day 364.991, so the gap to
	// the day-365 value is mostly elapsed time, not integration error.
	run, err := RunIntegrator(context.Background(), NewRegistry(), referenceModel(t), "rk4", 0.011)
	if err != nil {
		t.Fatal(err)
	}
	if run.AbsError > 1e-9 {
		t.Errorf("rk4 error at matched time too large: %v", run.AbsError)
	}
	if run.HorizonError < 1e-4 {
		t.Errorf("expected end-time gap to show in horizon error, got %v", run.HorizonError)
	}
}

func TestRunRejectsBadStep(t *testing.T) {
	model := referenceModel(t)
	registry := NewRegistry()

	for _, h := range []float64{0, -0.01, math.NaN()} {
		_, err := RunIntegrator(context.Background(), registry, model, "euler", h)
		if !errors.Is(err, sim.ErrInvalidStep) {
			t.Errorf("dt=%v: expected ErrInvalidStep, got %v", h, err)
		}
	}
}

func TestRunNotSetup(t *testing.T) {
	exp := New(Config{Integrator: "rk4", Dt: 0.1}, referenceModel(t))
	if _, err := exp.Run(context.Background()); err == nil {
		t.Error("expected error running without setup")
	}
}

func TestStepLargerThanSpan(t *testing.T) {
	p := bodymass.Reference()
	p.Days = 3
	model, err := bodymass.New(p)
	if err != nil {
		t.Fatal(err)
	}

	run, err := RunIntegrator(context.Background(), NewRegistry(), model, "rk4", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(run.Result.States) != 0 || run.Final != p.Mass {
		t.Errorf("expected no steps and final = initial, got %d samples, final %v", len(run.Result.States), run.Final)
	}
	if run.AbsError != 0 {
		t.Errorf("expected zero error against the initial mass, got %v", run.AbsError)
	}
}
