package analysis

import (
	"errors"
	"math"

	"github.com/san-kum/bodysim/internal/sim"
)

var ErrNoSteps = errors.New("analysis: duration shorter than one step")

// LyapunovExponent estimates the largest Lyapunov exponent of the discrete
// map integ induces on sys, by trajectory separation.
//
// Algorithm:
// 1. Step a reference and a perturbed trajectory together
// 2. After each step record ln(|δx|/δ0) and pull the perturbed state back to δ0
// 3. λ ≈ Σ ln(|δx|/δ0) / (steps·dt)
//
// A negative value means nearby trajectories converge.
func LyapunovExponent(sys sim.System, integ sim.Integrator, x0 sim.State, dt, duration, perturbation float64) (float64, error) {
	if err := sim.ValidateStep(dt); err != nil {
		return 0, err
	}
	if len(x0) == 0 || !(perturbation > 0) {
		return 0, errors.New("analysis: need a state and a positive perturbation")
	}
	steps := sim.Config{Dt: dt, Duration: duration}.Steps()
	if steps == 0 {
		return 0, ErrNoSteps
	}

	x := x0.Clone()
	xp := x0.Clone()
	xp[0] += perturbation

	sumLog := 0.0
	for i := 0; i < steps; i++ {
		t := float64(i) * dt
		x = integ.Step(sys, x, t, dt)
		xp = integ.Step(sys, xp, t, dt)

		sep := xp.Sub(x).Norm()
		if sep == 0 || math.IsNaN(sep) || math.IsInf(sep, 0) {
			return math.Inf(-1), nil
		}
		sumLog += math.Log(sep / perturbation)

		scale := perturbation / sep
		for j := range xp {
			xp[j] = x[j] + (xp[j]-x[j])*scale
		}
	}

	return sumLog / (float64(steps) * dt), nil
}
