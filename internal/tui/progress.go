package tui

import (
	"fmt"
	"io"
	"time"

	"github.com/san-kum/bodysim/internal/sim"
)

// Progress is a sim.Observer that rewrites one status line at most rate
// times per second while a long run integrates.
type Progress struct {
	out       io.Writer
	label     string
	horizon   float64
	interval  time.Duration
	lastFrame time.Time
	frames    int
}

func NewProgress(out io.Writer, label string, horizon float64, rate int) *Progress {
	return &Progress{
		out:      out,
		label:    label,
		horizon:  horizon,
		interval: time.Second / time.Duration(max(rate, 1)),
	}
}

func (p *Progress) OnStep(x sim.State, t float64) {
	if time.Since(p.lastFrame) < p.interval {
		return
	}
	p.lastFrame = time.Now()
	p.frames++

	pct := 100.0
	if p.horizon > 0 {
		pct = 100 * t / p.horizon
	}
	fmt.Fprintf(p.out, "\r  %s  day %7.2f  (%5.1f%%)  mass %.4f kg", p.label, t, pct, x[0])
}

// Done ends the status line.
func (p *Progress) Done() {
	if p.frames > 0 {
		fmt.Fprintln(p.out)
	}
}
