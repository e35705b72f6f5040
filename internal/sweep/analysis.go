package sweep

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary condenses one method's error series.
type Summary struct {
	Method string
	Min    float64
	Max    float64
	Mean   float64
	Order  float64 // NaN when it cannot be fitted
}

// Order is the observed convergence order: the slope of log(error) against
// log(step) over the points with a positive error.
func (r *Result) Order(method string) (float64, error) {
	errs := r.Series(method)
	steps := r.Steps()

	xs := make([]float64, 0, len(errs))
	ys := make([]float64, 0, len(errs))
	for i, e := range errs {
		if e > 0 && !math.IsInf(e, 0) {
			xs = append(xs, math.Log(steps[i]))
			ys = append(ys, math.Log(e))
		}
	}
	if len(xs) < 2 || floats.Max(xs) == floats.Min(xs) {
		return math.NaN(), fmt.Errorf("%w: %s has %d usable points", ErrNoData, method, len(xs))
	}

	_, slope := stat.LinearRegression(xs, ys, nil, false)
	return slope, nil
}

func (r *Result) Summarize(method string) Summary {
	errs := r.Series(method)
	s := Summary{Method: method, Min: math.NaN(), Max: math.NaN(), Mean: math.NaN()}
	if len(errs) > 0 {
		s.Min = floats.Min(errs)
		s.Max = floats.Max(errs)
		s.Mean = stat.Mean(errs, nil)
	}
	order, err := r.Order(method)
	if err != nil {
		order = math.NaN()
	}
	s.Order = order
	return s
}

// Dominates reports whether method a has a strictly smaller error than b at
// every sweep index.
func (r *Result) Dominates(a, b string) bool {
	ea, eb := r.Series(a), r.Series(b)
	for i := range ea {
		if ea[i] >= eb[i] {
			return false
		}
	}
	return len(ea) > 0
}
