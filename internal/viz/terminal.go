package viz

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

var ErrNothingToDraw = errors.New("viz: figure has no drawable points")

var (
	seriesColors = []lipgloss.Color{"#00ccff", "#ff6b6b", "#00ff88", "#ffcc00"}
	graphColors  = []asciigraph.AnsiColor{asciigraph.DeepSkyBlue, asciigraph.IndianRed, asciigraph.SpringGreen, asciigraph.Gold}
)

// Terminal draws figures as text. Linear line charts go through asciigraph;
// everything else is drawn on a Braille canvas with labelled axes.
type Terminal struct {
	Out    io.Writer
	Width  int
	Height int
}

func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{Out: out, Width: 60, Height: 16}
}

func (t *Terminal) Render(fig Figure) error {
	fig, _ = Sanitize(fig)
	if _, _, _, _, ok := fig.Bounds(); !ok {
		return ErrNothingToDraw
	}

	var out string
	if lineChart(fig) {
		out = t.lines(fig)
	} else {
		out = t.scatter(fig)
	}
	_, err := io.WriteString(t.Out, out)
	return err
}

func lineChart(fig Figure) bool {
	if fig.XScale != Linear || fig.YScale != Linear {
		return false
	}
	for _, s := range fig.Series {
		if s.Kind != Line {
			return false
		}
	}
	return true
}

func (t *Terminal) lines(fig Figure) string {
	data := make([][]float64, 0, len(fig.Series))
	names := make([]string, 0, len(fig.Series))
	colors := make([]asciigraph.AnsiColor, 0, len(fig.Series))
	for i, s := range fig.Series {
		if len(s.Y) == 0 {
			continue
		}
		data = append(data, s.Y)
		names = append(names, s.Name)
		colors = append(colors, graphColors[i%len(graphColors)])
	}

	caption := fig.Title
	if fig.YLabel != "" {
		caption = strings.TrimSpace(caption + " (" + fig.YLabel + ")")
	}
	graph := asciigraph.PlotMany(data,
		asciigraph.Height(t.Height),
		asciigraph.Width(t.Width),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(colors...),
		asciigraph.SeriesLegends(names...),
	)
	return graph + "\n"
}

func (t *Terminal) scatter(fig Figure) string {
	minX, maxX, minY, maxY, _ := fig.Bounds()
	minX, maxX = widen(minX, maxX)
	minY, maxY = widen(minY, maxY)

	layers := make([]*Canvas, len(fig.Series))
	for i, s := range fig.Series {
		c := NewCanvas(t.Width, t.Height)
		px, py := -1, -1
		for j := range s.X {
			u := (fig.XScale.Apply(s.X[j]) - minX) / (maxX - minX)
			v := (fig.YScale.Apply(s.Y[j]) - minY) / (maxY - minY)
			if s.Kind == Scatter {
				c.Mark(u, v)
				continue
			}
			x := int(u*float64(c.DotsX()-1) + 0.5)
			y := int((1-v)*float64(c.DotsY()-1) + 0.5)
			if px >= 0 {
				c.DrawLine(px, py, x, y)
			} else {
				c.Set(x, y)
			}
			px, py = x, y
		}
		layers[i] = c
	}

	top := tickLabel(maxY, fig.YScale)
	mid := tickLabel((minY+maxY)/2, fig.YScale)
	bottom := tickLabel(minY, fig.YScale)
	gutter := max(len(top), len(mid), len(bottom))

	var b strings.Builder
	if fig.Title != "" {
		b.WriteString(lipgloss.NewStyle().Bold(true).Render(fig.Title) + "\n")
	}
	if fig.YLabel != "" {
		b.WriteString(MetricLabel.Render(fig.YLabel) + "\n")
	}

	for row := 0; row < t.Height; row++ {
		label := ""
		switch row {
		case 0:
			label = top
		case t.Height / 2:
			label = mid
		case t.Height - 1:
			label = bottom
		}
		fmt.Fprintf(&b, "%*s ┤", gutter, label)
		for col := 0; col < t.Width; col++ {
			b.WriteString(mergeCell(layers, row, col))
		}
		b.WriteString("\n")
	}

	b.WriteString(strings.Repeat(" ", gutter+1) + "└" + strings.Repeat("─", t.Width) + "\n")
	left := tickLabel(minX, fig.XScale)
	right := tickLabel(maxX, fig.XScale)
	pad := max(t.Width-len(left)-len(right), 1)
	b.WriteString(strings.Repeat(" ", gutter+2) + left + strings.Repeat(" ", pad) + right + "\n")
	if fig.XLabel != "" {
		indent := gutter + 2 + max((t.Width-len(fig.XLabel))/2, 0)
		b.WriteString(strings.Repeat(" ", indent) + MetricLabel.Render(fig.XLabel) + "\n")
	}

	legend := make([]string, 0, len(fig.Series))
	for i, s := range fig.Series {
		style := lipgloss.NewStyle().Foreground(seriesColors[i%len(seriesColors)])
		legend = append(legend, style.Render("■")+" "+s.Name)
	}
	if len(legend) > 0 {
		b.WriteString(strings.Repeat(" ", gutter+2) + strings.Join(legend, "   ") + "\n")
	}
	return b.String()
}

// mergeCell ORs the dots of every layer; the cell takes the colour of the
// last series that touches it.
func mergeCell(layers []*Canvas, row, col int) string {
	cell := rune(brailleBlank)
	owner := -1
	for i, c := range layers {
		if dots := c.Grid[row][col]; dots != brailleBlank {
			cell |= dots
			owner = i
		}
	}
	if owner < 0 {
		return string(cell)
	}
	return lipgloss.NewStyle().Foreground(seriesColors[owner%len(seriesColors)]).Render(string(cell))
}

func widen(lo, hi float64) (float64, float64) {
	if hi > lo {
		return lo, hi
	}
	return lo - 0.5, hi + 0.5
}

// tickLabel formats an axis-space value back into data units.
func tickLabel(v float64, scale Scale) string {
	if scale == Log {
		return strconv.FormatFloat(math.Pow(10, v), 'e', 1, 64)
	}
	return strconv.FormatFloat(v, 'g', 4, 64)
}
