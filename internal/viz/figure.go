package viz

import "math"

type Scale int

const (
	Linear Scale = iota
	Log
)

func (s Scale) String() string {
	if s == Log {
		return "log"
	}
	return "linear"
}

type Kind int

const (
	Line Kind = iota
	Scatter
)

type Series struct {
	Name string
	X, Y []float64
	Kind Kind
}

// Figure is everything a renderer needs; it carries no rendering state.
type Figure struct {
	Title  string
	XLabel string
	YLabel string
	XScale Scale
	YScale Scale
	Series []Series
}

// Renderer is the plotting collaborator: series in, figure out.
type Renderer interface {
	Render(fig Figure) error
}

// Sanitize drops points that cannot be placed on the figure's axes: NaN/Inf
// anywhere and non-positive values on a log axis. It returns the cleaned copy
// and the number of points dropped.
func Sanitize(fig Figure) (Figure, int) {
	out := fig
	out.Series = make([]Series, len(fig.Series))
	dropped := 0

	for i, s := range fig.Series {
		n := min(len(s.X), len(s.Y))
		clean := Series{Name: s.Name, Kind: s.Kind, X: make([]float64, 0, n), Y: make([]float64, 0, n)}
		for j := 0; j < n; j++ {
			if !placeable(s.X[j], fig.XScale) || !placeable(s.Y[j], fig.YScale) {
				dropped++
				continue
			}
			clean.X = append(clean.X, s.X[j])
			clean.Y = append(clean.Y, s.Y[j])
		}
		dropped += max(len(s.X), len(s.Y)) - n
		out.Series[i] = clean
	}

	return out, dropped
}

func placeable(v float64, scale Scale) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	return scale != Log || v > 0
}

// Bounds returns the data extent over all series in axis space, i.e. log10
// of the values on a log axis. ok is false when there is nothing to draw.
func (f Figure) Bounds() (minX, maxX, minY, maxY float64, ok bool) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, s := range f.Series {
		for j := range s.X {
			if j >= len(s.Y) {
				break
			}
			x, y := f.XScale.Apply(s.X[j]), f.YScale.Apply(s.Y[j])
			minX, maxX = math.Min(minX, x), math.Max(maxX, x)
			minY, maxY = math.Min(minY, y), math.Max(maxY, y)
			ok = true
		}
	}
	return minX, maxX, minY, maxY, ok
}

// Apply maps a data value into axis space.
func (s Scale) Apply(v float64) float64 {
	if s == Log {
		return math.Log10(v)
	}
	return v
}
