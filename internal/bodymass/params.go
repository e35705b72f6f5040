package bodymass

import (
	"fmt"
	"math"
	"strings"
)

// Sex selects the constant term of the Mifflin-St Jeor equation. The zero
// value is not a valid category.
type Sex int

const (
	Female Sex = iota + 1
	Male
)

// ParseSex accepts "female", "f", "male" and "m", case-insensitively.
func ParseSex(s string) (Sex, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "female", "f":
		return Female, nil
	case "male", "m":
		return Male, nil
	default:
		return 0, &ParamError{Param: "sex", Value: s, Err: ErrInvalidSex}
	}
}

// Offset returns the sex-specific constant in kcal/day.
func (s Sex) Offset() (float64, error) {
	switch s {
	case Female:
		return -161, nil
	case Male:
		return 5, nil
	default:
		return 0, &ParamError{Param: "sex", Value: int(s), Err: ErrInvalidSex}
	}
}

func (s Sex) String() string {
	switch s {
	case Female:
		return "female"
	case Male:
		return "male"
	default:
		return fmt.Sprintf("Sex(%d)", int(s))
	}
}

func (s Sex) MarshalText() ([]byte, error) {
	if _, err := s.Offset(); err != nil {
		return nil, err
	}
	return []byte(s.String()), nil
}

func (s *Sex) UnmarshalText(text []byte) error {
	parsed, err := ParseSex(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Params are the seven scalar inputs of one experiment.
type Params struct {
	Days     int     `json:"days"`     // simulated span [days]
	Mass     float64 `json:"mass"`     // initial body mass [kg]
	Height   float64 `json:"height"`   // [cm]
	Age      int     `json:"age"`      // [years]
	Calories float64 `json:"calories"` // daily intake [kcal]
	Activity float64 `json:"activity"` // physical activity factor
	Sex      Sex     `json:"sex"`
}

// Reference returns the literal parameter set of the reference experiment.
func Reference() Params {
	return Params{
		Days:     365,
		Mass:     80,
		Height:   170,
		Age:      25,
		Calories: 1500,
		Activity: 1.3,
		Sex:      Female,
	}
}

// Validate checks every parameter and reports the first offending one.
func (p Params) Validate() error {
	if p.Days < 0 {
		return &ParamError{Param: "days", Value: p.Days, Err: ErrParameterBounds}
	}
	if !positive(p.Mass) {
		return &ParamError{Param: "mass", Value: p.Mass, Err: ErrParameterBounds}
	}
	if !positive(p.Height) {
		return &ParamError{Param: "height", Value: p.Height, Err: ErrParameterBounds}
	}
	if p.Age <= 0 {
		return &ParamError{Param: "age", Value: p.Age, Err: ErrParameterBounds}
	}
	if math.IsNaN(p.Calories) || math.IsInf(p.Calories, 0) {
		return &ParamError{Param: "calories", Value: p.Calories, Err: ErrParameterBounds}
	}
	if p.Activity == 0 {
		return &ParamError{Param: "activity", Value: p.Activity, Err: ErrDegenerateActivity}
	}
	if !positive(p.Activity) {
		return &ParamError{Param: "activity", Value: p.Activity, Err: ErrParameterBounds}
	}
	if _, err := p.Sex.Offset(); err != nil {
		return err
	}
	return nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}
