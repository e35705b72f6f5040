package metrics

import (
	"math"

	"github.com/san-kum/bodysim/internal/sim"
)

// MassChange is the last observed mass minus the initial mass.
type MassChange struct {
	name    string
	initial float64
	last    float64
	seen    bool
}

func NewMassChange(initial float64) *MassChange {
	return &MassChange{name: "mass_change", initial: initial}
}

func (m *MassChange) Name() string { return m.name }

func (m *MassChange) Observe(x sim.State, t float64) {
	m.last = x[0]
	m.seen = true
}

func (m *MassChange) Value() float64 {
	if !m.seen {
		return 0
	}
	return m.last - m.initial
}

func (m *MassChange) Reset() {
	m.last = 0
	m.seen = false
}

// Extremum tracks the smallest or largest observed mass.
type Extremum struct {
	name  string
	pick  func(a, b float64) float64
	value float64
	seen  bool
}

func NewMinMass() *Extremum {
	return &Extremum{name: "min_mass", pick: math.Min}
}

func NewMaxMass() *Extremum {
	return &Extremum{name: "max_mass", pick: math.Max}
}

func (e *Extremum) Name() string { return e.name }

func (e *Extremum) Observe(x sim.State, t float64) {
	if !e.seen {
		e.value = x[0]
		e.seen = true
		return
	}
	e.value = e.pick(e.value, x[0])
}

func (e *Extremum) Value() float64 {
	if !e.seen {
		return math.NaN()
	}
	return e.value
}

func (e *Extremum) Reset() {
	e.value = 0
	e.seen = false
}

// Defaults is the metric set attached to every single-integrator run.
func Defaults(initial float64) []sim.Metric {
	return []sim.Metric{
		NewMassChange(initial),
		NewMinMass(),
		NewMaxMass(),
		NewDivergence(0, 1000),
	}
}
