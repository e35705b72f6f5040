package tui

import (
	"bytes"
	"context"
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/bodysim/internal/bodymass"
	"github.com/san-kum/bodysim/internal/experiment"
	"github.com/san-kum/bodysim/internal/integrators"
	"github.com/san-kum/bodysim/internal/sim"
)

func newViewer(t *testing.T, days int, dt float64) Viewer {
	t.Helper()
	p := bodymass.Reference()
	p.Days = days
	model, err := bodymass.New(p)
	if err != nil {
		t.Fatalf("model: %v", err)
	}
	v, err := NewViewer(model, experiment.NewRegistry(), dt, 1)
	if err != nil {
		t.Fatalf("viewer: %v", err)
	}
	return v
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, v Viewer, msg tea.Msg) Viewer {
	t.Helper()
	next, _ := v.Update(msg)
	out, ok := next.(Viewer)
	if !ok {
		t.Fatalf("unexpected model type %T", next)
	}
	return out
}

func TestViewerStepsBothMethods(t *testing.T) {
	v := newViewer(t, 10, 0.5)
	v = update(t, v, tickMsg{})
	v = update(t, v, tickMsg{})

	if v.Time() != 1.0 {
		t.Fatalf("expected t=1, got %v", v.Time())
	}

	euler, rk4, exact := v.Masses()
	if math.Abs(rk4-exact) > 1e-9 {
		t.Errorf("rk4 mass %v too far from %v", rk4, exact)
	}
	if math.Abs(euler-exact) < math.Abs(rk4-exact) {
		t.Errorf("euler error below rk4 error")
	}
}

func TestViewerMatchesSimulator(t *testing.T) {
	v := newViewer(t, 2, 0.25)
	for !v.Done() {
		v = update(t, v, tickMsg{})
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	res, err := sim.New(v.model, integrators.NewRK4()).Run(ctx, v.model.InitialState(), sim.Config{Dt: 0.25, Duration: 2})
	if err != nil {
		t.Fatal(err)
	}
	_, rk4, _ := v.Masses()
	if rk4 != res.Final()[0] {
		t.Errorf("viewer %v != simulator %v", rk4, res.Final()[0])
	}
}

func TestViewerKeys(t *testing.T) {
	v := newViewer(t, 10, 0.5)

	v = update(t, v, key(" "))
	v = update(t, v, tickMsg{})
	if v.Time() != 0 {
		t.Error("paused viewer advanced")
	}

	v = update(t, v, key(" "))
	v = update(t, v, key("+"))
	if v.speed != 2 {
		t.Errorf("expected speed 2, got %d", v.speed)
	}
	v = update(t, v, tickMsg{})
	if v.Time() != 1.0 {
		t.Errorf("expected two steps per frame, t=%v", v.Time())
	}

	v = update(t, v, key("-"))
	v = update(t, v, key("-"))
	if v.speed != 1 {
		t.Errorf("speed should not drop below 1, got %d", v.speed)
	}

	v = update(t, v, key("r"))
	if v.Time() != 0 || len(v.history) != 1 {
		t.Error("reset did not rewind")
	}

	_, cmd := v.Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestViewerStopsAtHorizon(t *testing.T) {
	v := newViewer(t, 1, 0.3)
	for i := 0; i < 10; i++ {
		v = update(t, v, tickMsg{})
	}
	if !v.Done() || v.i != 3 {
		t.Errorf("expected 3 steps, got %d", v.i)
	}
	if !strings.Contains(v.View(), "done") {
		t.Error("view does not report completion")
	}
}

func TestViewerRejectsBadStep(t *testing.T) {
	model, _ := bodymass.New(bodymass.Reference())
	if _, err := NewViewer(model, experiment.NewRegistry(), 0, 1); err == nil {
		t.Error("expected error for zero step")
	}
}

func TestViewRendersMasses(t *testing.T) {
	v := newViewer(t, 10, 0.5)
	v = update(t, v, tickMsg{})
	out := v.View()
	for _, want := range []string{"analytical", "euler", "rk4", "day 0.5/10"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestProgressThrottles(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, "rk4", 10, 1)
	p.OnStep(sim.State{79.5}, 1)
	p.OnStep(sim.State{79.4}, 2)
	p.Done()

	out := buf.String()
	if strings.Count(out, "\r") != 1 {
		t.Errorf("expected a single frame, got %q", out)
	}
	if !strings.Contains(out, "79.5000") || !strings.HasSuffix(out, "\n") {
		t.Errorf("unexpected output %q", out)
	}
}
