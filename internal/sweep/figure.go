package sweep

import (
	"fmt"
	"slices"

	"github.com/san-kum/bodysim/internal/viz"
)

// Figure builds the log-log scatter of method x's error against method y's
// error, one point per step size.
func (r *Result) Figure(x, y string) (viz.Figure, error) {
	for _, m := range []string{x, y} {
		if !slices.Contains(r.Methods, m) {
			return viz.Figure{}, fmt.Errorf("sweep: method %q not in result %v", m, r.Methods)
		}
	}

	name := "h"
	if n := len(r.Points); n > 0 {
		name = fmt.Sprintf("h = %g .. %g", r.Points[0].Step, r.Points[n-1].Step)
	}

	return viz.Figure{
		Title:  fmt.Sprintf("Absolute error at day %d", r.Horizon),
		XLabel: fmt.Sprintf("|analytical - %s| [kg]", x),
		YLabel: fmt.Sprintf("|analytical - %s| [kg]", y),
		XScale: viz.Log,
		YScale: viz.Log,
		Series: []viz.Series{{
			Name: name,
			X:    r.Series(x),
			Y:    r.Series(y),
			Kind: viz.Scatter,
		}},
	}, nil
}

// StepFigure plots every method's error against the step size on log-log
// axes.
func (r *Result) StepFigure() viz.Figure {
	fig := viz.Figure{
		Title:  fmt.Sprintf("Absolute error vs step size (%s reference)", r.Reference),
		XLabel: "h [days]",
		YLabel: "absolute error [kg]",
		XScale: viz.Log,
		YScale: viz.Log,
	}
	steps := r.Steps()
	for _, m := range r.Methods {
		fig.Series = append(fig.Series, viz.Series{Name: m, X: steps, Y: r.Series(m), Kind: viz.Scatter})
	}
	return fig
}
