package sim

import (
	"errors"
	"fmt"
	"math"
)

// Domain errors for simulation runs.
var (
	// ErrInvalidStep indicates a step size that is not a positive finite number.
	ErrInvalidStep = errors.New("sim: step size must be positive and finite")

	// ErrInvalidDuration indicates a negative or non-finite run duration.
	ErrInvalidDuration = errors.New("sim: duration must be non-negative and finite")

	// ErrInvalidState indicates a state vector with NaN or Inf entries.
	ErrInvalidState = errors.New("sim: invalid state (NaN or Inf detected)")

	// ErrDimensionMismatch indicates an initial state that does not fit the system.
	ErrDimensionMismatch = errors.New("sim: dimension mismatch between state and system")
)

// ValidateStep reports whether dt can drive a fixed-step integrator.
func ValidateStep(dt float64) error {
	if !(dt > 0) || math.IsInf(dt, 1) {
		return fmt.Errorf("%w: got %v", ErrInvalidStep, dt)
	}
	return nil
}
