package bodymass

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSex indicates a sex category other than female or male.
	ErrInvalidSex = errors.New("bodymass: sex must be female or male")

	// ErrDegenerateActivity indicates an activity factor of zero, for which
	// the closed-form equilibrium E/(10f) is undefined.
	ErrDegenerateActivity = errors.New("bodymass: activity factor must be non-zero")

	// ErrParameterBounds indicates a parameter value outside its valid range.
	ErrParameterBounds = errors.New("bodymass: parameter out of valid bounds")
)

// ParamError names the parameter that failed validation.
type ParamError struct {
	Param string
	Value any
	Err   error
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%s=%v: %v", e.Param, e.Value, e.Err)
}

func (e *ParamError) Unwrap() error {
	return e.Err
}
