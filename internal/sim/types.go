package sim

import (
	"fmt"
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// System is the right-hand side of dX/dt = f(X, t).
type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

type Integrator interface {
	Step(sys System, x State, t, dt float64) State
}

type Metric interface {
	Name() string
	Observe(x State, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(x State, t float64)
}

type Config struct {
	Dt       float64
	Duration float64
	// ValidateState stops the run at the first NaN/Inf state. Off by default:
	// an unstable explicit step is allowed to diverge.
	ValidateState bool
}

type Result struct {
	Initial    State
	States     []State
	Times      []float64
	Metrics    map[string]float64
	StepsTaken int
	Errors     []error
}

// Final returns the last recorded state, or the initial state of a run that
// took no steps.
func (r *Result) Final() State {
	if len(r.States) == 0 {
		return r.Initial
	}
	return r.States[len(r.States)-1]
}

// EndTime is the time of the last sample, 0 for a run that took no steps.
func (r *Result) EndTime() float64 {
	if len(r.Times) == 0 {
		return 0
	}
	return r.Times[len(r.Times)-1]
}

// Component extracts state index k from every sample.
func (r *Result) Component(k int) []float64 {
	out := make([]float64, len(r.States))
	for i, s := range r.States {
		if k < len(s) {
			out[i] = s[k]
		}
	}
	return out
}

// Steps returns the number of samples a run with the given config records.
func (c Config) Steps() int {
	return int(c.Duration / c.Dt)
}

type SimError struct {
	Time    float64
	Step    int
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}
