package bodymass

import "math"

// Equilibrium is the mass at which intake balances expenditure, E/(10f).
func (m *Model) Equilibrium() float64 {
	return m.energySurplus() / (10 * m.p.Activity)
}

// energySurplus is E = C - f*(6.25h - 5a + s), the mass-independent part of
// the energy balance.
func (m *Model) energySurplus() float64 {
	return m.p.Calories - m.p.Activity*m.massIndependent()
}

// TimeConstant is the relaxation time 770/f in days.
func (m *Model) TimeConstant() float64 {
	return KcalPerKg / (10 * m.p.Activity)
}

// MassAt evaluates the closed-form solution at t days. MassAt(0) is exactly
// the initial mass.
func (m *Model) MassAt(t float64) float64 {
	if t == 0 {
		return m.p.Mass
	}
	eq := m.Equilibrium()
	return (m.p.Mass-eq)*math.Exp(-m.p.Activity*t/770) + eq
}

// Analytical returns the closed-form mass for each day 1..days; entry i holds
// day i+1.
func (m *Model) Analytical(days int) []float64 {
	if days <= 0 {
		return []float64{}
	}
	series := make([]float64, days)
	for d := 1; d <= days; d++ {
		series[d-1] = m.MassAt(float64(d))
	}
	return series
}

// FinalValue returns the closed-form mass on day days. Day 0 is the initial
// mass.
func (m *Model) FinalValue(days int) (float64, error) {
	if days < 0 {
		return 0, &ParamError{Param: "days", Value: days, Err: ErrParameterBounds}
	}
	return m.MassAt(float64(days)), nil
}
