// Package analysis characterises the integrated dynamics beyond single
// trajectories.
//
//   - [LyapunovExponent]: contraction rate of nearby trajectories. For the
//     body mass model the exact rate is -activity/770 per day, and each
//     integrator reports its own discrete approximation of it.
package analysis
