package integrators

import "github.com/san-kum/bodysim/internal/sim"

// Euler is the explicit first-order method x + dt*f(x, t). It has no
// stability guard: a step that is large against the system's time constant
// diverges.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(sys sim.System, x sim.State, t float64, dt float64) sim.State {
	dx := sys.Derive(x, t)
	result := make(sim.State, len(x))
	for i := range x {
		result[i] = x[i] + dt*dx[i]
	}
	return result
}
