// Package sim provides the fixed-step simulation primitives used by bodysim.
//
// The package defines the interfaces and types for numerical integration of
// ordinary differential equations of the form dX/dt = f(X, t):
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE right-hand sides
//   - [Integrator]: single-step numerical integrator
//   - [Metric]: per-run observer reduced to a scalar
//   - [Simulator]: drives an integrator over a fixed number of steps
//
// # Example
//
//	model, _ := bodymass.New(bodymass.Reference())
//	s := sim.New(model, integrators.NewRK4())
//	result, _ := s.Run(ctx, model.InitialState(), sim.Config{Dt: 0.011, Duration: 365})
//
// # Sampling
//
// A run of duration D with step dt records int(D/dt) samples. Sample i holds
// the state after step i+1, at time (i+1)*dt; the initial state is not a
// sample. Every call to [Simulator.Run] allocates a fresh [Result].
package sim
