package export

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/san-kum/bodysim/internal/viz"
)

// Plot renders a figure to an image file with gonum/plot. The format follows
// the file extension; .png is rasterised at DPI, anything else goes through
// plot.Save.
type Plot struct {
	Path   string
	Width  vg.Length
	Height vg.Length
	DPI    int
}

func NewPlot(path string) *Plot {
	return &Plot{Path: path, Width: 8 * vg.Inch, Height: 6 * vg.Inch, DPI: 150}
}

func (r *Plot) Render(fig viz.Figure) error {
	p, err := build(fig)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(r.Path), 0o755); err != nil {
		return fmt.Errorf("create plot directory: %w", err)
	}
	if strings.EqualFold(filepath.Ext(r.Path), ".png") {
		return r.savePNG(p)
	}
	return p.Save(r.Width, r.Height, r.Path)
}

func build(fig viz.Figure) (*plot.Plot, error) {
	fig, _ = viz.Sanitize(fig)
	if _, _, _, _, ok := fig.Bounds(); !ok {
		return nil, viz.ErrNothingToDraw
	}

	p := plot.New()
	p.Title.Text = fig.Title
	p.X.Label.Text = fig.XLabel
	p.Y.Label.Text = fig.YLabel
	if fig.XScale == viz.Log {
		p.X.Scale = plot.LogScale{}
		p.X.Tick.Marker = plot.LogTicks{Prec: -1}
	}
	if fig.YScale == viz.Log {
		p.Y.Scale = plot.LogScale{}
		p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	}
	p.Add(plotter.NewGrid())

	for i, s := range fig.Series {
		if len(s.X) == 0 {
			continue
		}
		pts := make(plotter.XYs, len(s.X))
		for j := range s.X {
			pts[j].X = s.X[j]
			pts[j].Y = s.Y[j]
		}

		switch s.Kind {
		case viz.Scatter:
			sc, err := plotter.NewScatter(pts)
			if err != nil {
				return nil, fmt.Errorf("series %q: %w", s.Name, err)
			}
			sc.GlyphStyle.Color = plotutil.Color(i)
			sc.GlyphStyle.Shape = draw.CircleGlyph{}
			sc.GlyphStyle.Radius = vg.Points(3)
			p.Add(sc)
			p.Legend.Add(s.Name, sc)
		default:
			line, err := plotter.NewLine(pts)
			if err != nil {
				return nil, fmt.Errorf("series %q: %w", s.Name, err)
			}
			line.LineStyle.Color = plotutil.Color(i)
			line.LineStyle.Width = vg.Points(1.5)
			p.Add(line)
			p.Legend.Add(s.Name, line)
		}
	}
	return p, nil
}

func (r *Plot) savePNG(p *plot.Plot) (err error) {
	c := vgimg.NewWith(
		vgimg.UseWH(r.Width, r.Height),
		vgimg.UseDPI(r.DPI),
	)
	p.Draw(draw.New(c))

	f, err := os.Create(r.Path)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	defer closeFile(f, &err)

	bw := bufio.NewWriter(f)
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(bw); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return bw.Flush()
}
