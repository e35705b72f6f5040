package metrics

import (
	"math"

	"github.com/san-kum/bodysim/internal/sim"
)

// Divergence reports the fraction of samples whose mass left the plausible
// band [low, high] or stopped being finite. It only observes; a divergent run
// keeps going.
type Divergence struct {
	name       string
	low, high  float64
	violations int
	samples    int
}

func NewDivergence(low, high float64) *Divergence {
	return &Divergence{
		name: "divergence",
		low:  low,
		high: high,
	}
}

func (d *Divergence) Name() string {
	return d.name
}

func (d *Divergence) Observe(x sim.State, t float64) {
	d.samples++
	for _, val := range x {
		if math.IsNaN(val) || val < d.low || val > d.high {
			d.violations++
			break
		}
	}
}

func (d *Divergence) Value() float64 {
	if d.samples == 0 {
		return 0
	}
	return float64(d.violations) / float64(d.samples)
}

func (d *Divergence) Reset() {
	d.violations = 0
	d.samples = 0
}
