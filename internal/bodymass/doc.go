// Package bodymass models body mass under the energy-balance equation
//
//	dm/dt = (C - f*BMR(m)) / 7700
//
// where BMR is the Mifflin-St Jeor basal metabolic rate, C the daily caloric
// intake and f the activity factor. Time is measured in days and mass in kg.
//
// [Model] implements [sim.System] so the fixed-step integrators can drive it,
// and it also carries the closed-form solution of the same linear ODE used as
// ground truth when measuring integrator error.
package bodymass
