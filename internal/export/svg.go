package export

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/san-kum/bodysim/internal/viz"
)

var svgColors = []string{"#00ccff", "#ff6b6b", "#00ff88", "#ffcc00"}

// SVG writes a figure as a small hand-built SVG document: one path per line
// series and one circle per scatter point inside a labelled frame, on a dark
// background.
type SVG struct {
	Path   string
	Width  int
	Height int
}

func NewSVG(path string) *SVG {
	return &SVG{Path: path, Width: 640, Height: 480}
}

func (r *SVG) Render(fig viz.Figure) (err error) {
	if err := os.MkdirAll(filepath.Dir(r.Path), 0o755); err != nil {
		return fmt.Errorf("create svg directory: %w", err)
	}
	f, err := os.Create(r.Path)
	if err != nil {
		return fmt.Errorf("create svg: %w", err)
	}
	defer closeFile(f, &err)
	return r.Encode(f, fig)
}

const (
	marginLeft   = 80
	marginRight  = 20
	marginTop    = 40
	marginBottom = 56
	svgTicks     = 5
)

// Encode writes the document for fig to w: a framed plot area with tick
// labels in data units, the axis titles and the figure title.
func (r *SVG) Encode(w io.Writer, fig viz.Figure) error {
	fig, _ = viz.Sanitize(fig)
	minX, maxX, minY, maxY, ok := fig.Bounds()
	if !ok {
		return viz.ErrNothingToDraw
	}

	rangeX, rangeY := maxX-minX, maxY-minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	padX, padY := rangeX*0.05, rangeY*0.05
	loX, loY := minX-padX, minY-padY
	spanX, spanY := rangeX+2*padX, rangeY+2*padY

	left, top := float64(marginLeft), float64(marginTop)
	plotW := float64(r.Width - marginLeft - marginRight)
	plotH := float64(r.Height - marginTop - marginBottom)
	// axis-space coordinates, already passed through the scale
	ax := func(a float64) float64 { return left + (a-loX)/spanX*plotW }
	ay := func(a float64) float64 { return top + plotH - (a-loY)/spanY*plotH }
	toX := func(v float64) float64 { return ax(fig.XScale.Apply(v)) }
	toY := func(v float64) float64 { return ay(fig.YScale.Apply(v)) }

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="monospace" font-size="11">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, r.Width, r.Height, r.Width, r.Height)
	if fig.Title != "" {
		fmt.Fprintf(&sb, "<title>%s</title>\n", escape(fig.Title))
		fmt.Fprintf(&sb, "<text class=\"title\" x=\"%.1f\" y=\"%d\" fill=\"#e0e0e0\" font-size=\"14\" text-anchor=\"middle\">%s</text>\n",
			left+plotW/2, marginTop/2+5, escape(fig.Title))
	}

	fmt.Fprintf(&sb, "<rect class=\"frame\" x=\"%.1f\" y=\"%.1f\" width=\"%.1f\" height=\"%.1f\" fill=\"none\" stroke=\"#666688\"/>\n",
		left, top, plotW, plotH)
	sb.WriteString("<g class=\"ticks\" fill=\"#888899\" stroke=\"#666688\">\n")
	for i := 0; i < svgTicks; i++ {
		a := minX + rangeX*float64(i)/float64(svgTicks-1)
		x := ax(a)
		fmt.Fprintf(&sb, "<line x1=\"%.1f\" y1=\"%.1f\" x2=\"%.1f\" y2=\"%.1f\"/>\n", x, top+plotH, x, top+plotH+5)
		fmt.Fprintf(&sb, "<text x=\"%.1f\" y=\"%.1f\" stroke=\"none\" text-anchor=\"middle\">%s</text>\n",
			x, top+plotH+18, axisLabel(fig.XScale, a))
	}
	for i := 0; i < svgTicks; i++ {
		a := minY + rangeY*float64(i)/float64(svgTicks-1)
		y := ay(a)
		fmt.Fprintf(&sb, "<line x1=\"%.1f\" y1=\"%.1f\" x2=\"%.1f\" y2=\"%.1f\"/>\n", left-5, y, left, y)
		fmt.Fprintf(&sb, "<text x=\"%.1f\" y=\"%.1f\" stroke=\"none\" text-anchor=\"end\">%s</text>\n",
			left-8, y+4, axisLabel(fig.YScale, a))
	}
	sb.WriteString("</g>\n")

	if fig.XLabel != "" {
		fmt.Fprintf(&sb, "<text class=\"xlabel\" x=\"%.1f\" y=\"%d\" fill=\"#e0e0e0\" text-anchor=\"middle\">%s</text>\n",
			left+plotW/2, r.Height-12, escape(axisTitle(fig.XLabel, fig.XScale)))
	}
	if fig.YLabel != "" {
		cy := top + plotH/2
		fmt.Fprintf(&sb, "<text class=\"ylabel\" x=\"16\" y=\"%.1f\" fill=\"#e0e0e0\" text-anchor=\"middle\" transform=\"rotate(-90 16 %.1f)\">%s</text>\n",
			cy, cy, escape(axisTitle(fig.YLabel, fig.YScale)))
	}

	for i, s := range fig.Series {
		color := svgColors[i%len(svgColors)]
		if s.Kind == viz.Scatter {
			fmt.Fprintf(&sb, "<g fill=\"%s\">\n", color)
			for j := range s.X {
				fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"3\"/>\n", toX(s.X[j]), toY(s.Y[j]))
			}
			sb.WriteString("</g>\n")
			continue
		}
		if len(s.X) < 2 {
			continue
		}
		fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, color)
		for j := range s.X {
			if j > 0 {
				sb.WriteString(" L")
			}
			fmt.Fprintf(&sb, "%.1f,%.1f", toX(s.X[j]), toY(s.Y[j]))
		}
		sb.WriteString("\"/>\n")
	}

	if len(fig.Series) > 1 {
		sb.WriteString("<g class=\"legend\">\n")
		for i, s := range fig.Series {
			y := top + 14 + float64(i)*14
			fmt.Fprintf(&sb, "<text x=\"%.1f\" y=\"%.1f\" fill=\"%s\" text-anchor=\"end\">%s</text>\n",
				left+plotW-6, y, svgColors[i%len(svgColors)], escape(s.Name))
		}
		sb.WriteString("</g>\n")
	}

	sb.WriteString("</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

// axisLabel formats a tick at axis-space position a in data units.
func axisLabel(s viz.Scale, a float64) string {
	if s == viz.Log {
		return strconv.FormatFloat(math.Pow(10, a), 'e', 1, 64)
	}
	return strconv.FormatFloat(a, 'g', 4, 64)
}

func axisTitle(label string, s viz.Scale) string {
	if s == viz.Log {
		return label + " (log)"
	}
	return label
}

func escape(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(s)
}
