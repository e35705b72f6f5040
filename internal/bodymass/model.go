package bodymass

import "github.com/san-kum/bodysim/internal/sim"

// KcalPerKg is the energy content of one kilogram of body mass.
const KcalPerKg = 7700.0

// Model is a validated, immutable parameter set.
type Model struct {
	p         Params
	sexOffset float64
}

// New validates p and returns the model built from it.
func New(p Params) (*Model, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	offset, _ := p.Sex.Offset()
	return &Model{p: p, sexOffset: offset}, nil
}

func (m *Model) Params() Params { return m.p }

// BMR is the Mifflin-St Jeor basal metabolic rate at body mass kg, in kcal/day.
func (m *Model) BMR(kg float64) float64 {
	return 10*kg + m.massIndependent()
}

func (m *Model) massIndependent() float64 {
	return 6.25*m.p.Height - 5*float64(m.p.Age) + m.sexOffset
}

// Rate returns dm/dt in kg/day at body mass kg.
func (m *Model) Rate(kg float64) float64 {
	return (m.p.Calories - m.p.Activity*m.BMR(kg)) / KcalPerKg
}

func (m *Model) Derive(x sim.State, t float64) sim.State {
	return sim.State{m.Rate(x[0])}
}

func (m *Model) StateDim() int { return 1 }

func (m *Model) InitialState() sim.State {
	return sim.State{m.p.Mass}
}

// Duration is the simulated span in days.
func (m *Model) Duration() float64 {
	return float64(m.p.Days)
}
