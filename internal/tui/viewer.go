package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/bodysim/internal/bodymass"
	"github.com/san-kum/bodysim/internal/experiment"
	"github.com/san-kum/bodysim/internal/sim"
	"github.com/san-kum/bodysim/internal/viz"
)

const (
	historyLen = 120
	maxSpeed   = 4096
)

// Viewer steps Euler and RK4 side by side at the same step size and shows
// both against the closed form.
type Viewer struct {
	model *bodymass.Model
	dt    float64
	steps int

	euler sim.Integrator
	rk4   sim.Integrator
	xe    sim.State
	xr    sim.State
	i     int

	paused  bool
	speed   int
	history []float64

	width int
}

func NewViewer(model *bodymass.Model, registry *experiment.Registry, dt, speed float64) (Viewer, error) {
	if err := sim.ValidateStep(dt); err != nil {
		return Viewer{}, err
	}
	euler, err := registry.GetIntegrator("euler")
	if err != nil {
		return Viewer{}, err
	}
	rk4, err := registry.GetIntegrator("rk4")
	if err != nil {
		return Viewer{}, err
	}
	v := Viewer{
		model: model,
		dt:    dt,
		steps: sim.Config{Dt: dt, Duration: model.Duration()}.Steps(),
		euler: euler,
		rk4:   rk4,
		speed: min(max(int(speed), 1), maxSpeed),
		width: 80,
	}
	v.reset()
	return v, nil
}

func (v *Viewer) reset() {
	v.xe = v.model.InitialState()
	v.xr = v.model.InitialState()
	v.i = 0
	v.paused = false
	v.history = append(make([]float64, 0, historyLen), v.xr[0])
}

func (v Viewer) Time() float64 { return float64(v.i) * v.dt }
func (v Viewer) Done() bool    { return v.i >= v.steps }

// Masses returns the Euler, RK4 and closed-form mass at the current time.
func (v Viewer) Masses() (euler, rk4, exact float64) {
	return v.xe[0], v.xr[0], v.model.MassAt(v.Time())
}

func (v *Viewer) advance(n int) {
	for k := 0; k < n && !v.Done(); k++ {
		t := v.Time()
		v.xe = v.euler.Step(v.model, v.xe, t, v.dt)
		v.xr = v.rk4.Step(v.model, v.xr, t, v.dt)
		v.i++
	}
	v.history = append(v.history, v.xr[0])
	if len(v.history) > historyLen {
		v.history = v.history[1:]
	}
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(33*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (v Viewer) Init() tea.Cmd { return tick() }

func (v Viewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return v, tea.Quit
		case " ", "p":
			v.paused = !v.paused
		case "r":
			v.reset()
		case "+", "=":
			v.speed = min(v.speed*2, maxSpeed)
		case "-", "_":
			v.speed = max(v.speed/2, 1)
		}
		return v, nil
	case tea.WindowSizeMsg:
		v.width = msg.Width
		return v, nil
	case tickMsg:
		if !v.paused && !v.Done() {
			v.advance(v.speed)
		}
		return v, tick()
	}
	return v, nil
}

func (v Viewer) View() string {
	var b strings.Builder

	status := viz.StatusRunning.Render("● running")
	switch {
	case v.Done():
		status = viz.MetricValue.Render("■ done")
	case v.paused:
		status = viz.StatusPaused.Render("○ paused")
	}
	p := v.model.Params()
	fmt.Fprintf(&b, "\n   %s  %s  %s\n", viz.Title.Render("bodysim"), status,
		viz.Subtle.Render(fmt.Sprintf("h=%g  %d steps/frame", v.dt, v.speed)))

	progress := 1.0
	if v.steps > 0 {
		progress = float64(v.i) / float64(v.steps)
	}
	fmt.Fprintf(&b, "   %s %s\n\n", viz.ProgressBar(progress, 36),
		viz.Subtle.Render(fmt.Sprintf("day %.1f/%d", v.Time(), p.Days)))

	euler, rk4, exact := v.Masses()
	row := func(label string, mass float64, err string) {
		fmt.Fprintf(&b, "   %s %s  %s\n", viz.MetricLabel.Render(fmt.Sprintf("%-10s", label)),
			viz.MetricValue.Render(fmt.Sprintf("%9.4f kg", mass)), err)
	}
	row("analytical", exact, "")
	row("euler", euler, viz.Subtle.Render(fmt.Sprintf("err %.3e", math.Abs(exact-euler))))
	row("rk4", rk4, viz.Subtle.Render(fmt.Sprintf("err %.3e", math.Abs(exact-rk4))))
	fmt.Fprintf(&b, "   %s %s\n\n", viz.MetricLabel.Render(fmt.Sprintf("%-10s", "trend")),
		viz.Sparkline(v.history, 30))

	if len(v.history) > 1 {
		graph := asciigraph.Plot(v.history,
			asciigraph.Height(8),
			asciigraph.Width(max(min(v.width-16, 80), 20)),
			asciigraph.Precision(2),
			asciigraph.Caption("rk4 mass [kg]"),
		)
		for _, line := range strings.Split(graph, "\n") {
			b.WriteString("   " + line + "\n")
		}
	}

	b.WriteString("\n" + viz.KeyHint.Render("   space pause  +/- speed  r reset  q quit") + "\n")
	return b.String()
}

func RunViewer(v Viewer) error {
	p := tea.NewProgram(v, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
