package figure

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Series is one labelled curve. When Lower and Upper are set, the area
// between them is shaded in the series colour.
type Series struct {
	Label string
	X     []float64
	Y     []float64
	Lower []float64
	Upper []float64
}

// Axes holds the labels and optional limits of a figure. Limits are only
// applied when Max > Min.
type Axes struct {
	XLabel     string
	YLabel     string
	XMin, XMax float64
	YMin, YMax float64
}

func (a Axes) apply(p *plot.Plot) {
	if a.XMax > a.XMin {
		p.X.Min, p.X.Max = a.XMin, a.XMax
	}
	if a.YMax > a.YMin {
		p.Y.Min, p.Y.Max = a.YMin, a.YMax
	}
}

// points returns the finite (x, y) pairs of a curve.
func points(xs, ys []float64) plotter.XYs {
	n := min(len(xs), len(ys))
	out := make(plotter.XYs, 0, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) || math.IsInf(ys[i], 0) {
			continue
		}
		out = append(out, plotter.XY{X: xs[i], Y: ys[i]})
	}
	return out
}

// band returns the outline of the area between lower and upper: the lower
// edge left to right, then the upper edge back.
func band(xs, lower, upper []float64) plotter.XYs {
	n := min(len(xs), len(lower), len(upper))
	var lo, hi plotter.XYs
	for i := 0; i < n; i++ {
		if math.IsNaN(xs[i]) || math.IsNaN(lower[i]) || math.IsNaN(upper[i]) {
			continue
		}
		lo = append(lo, plotter.XY{X: xs[i], Y: lower[i]})
		hi = append(hi, plotter.XY{X: xs[i], Y: upper[i]})
	}
	out := make(plotter.XYs, 0, len(lo)+len(hi))
	out = append(out, lo...)
	for i := len(hi) - 1; i >= 0; i-- {
		out = append(out, hi[i])
	}
	return out
}

// Bands plots every series as a line with its confidence band and writes
// the figure as PNG.
func Bands(path string, s Style, ax Axes, series []Series) error {
	p := s.newPlot(ax.XLabel, ax.YLabel)
	p.Legend.Top = true
	p.Legend.Left = true

	for i, sr := range series {
		c := SeriesColor(i)
		if sr.Lower != nil && sr.Upper != nil {
			outline := band(sr.X, sr.Lower, sr.Upper)
			if len(outline) > 2 {
				poly, err := plotter.NewPolygon(outline)
				if err != nil {
					return fmt.Errorf("band %q: %w", sr.Label, err)
				}
				poly.Color = translucent(c, 0.2)
				poly.LineStyle.Width = 0
				p.Add(poly)
			}
		}
		pts := points(sr.X, sr.Y)
		if len(pts) == 0 {
			continue
		}
		l, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("series %q: %w", sr.Label, err)
		}
		l.Color = c
		l.Width = vg.Points(1.5)
		p.Add(l)
		p.Legend.Add(sr.Label, l)
	}
	ax.apply(p)
	return s.save(p, path)
}

// Lines plots plain curves, e.g. the pCO2 forcing of each scenario.
func Lines(path string, s Style, ax Axes, series []Series) error {
	plain := make([]Series, len(series))
	for i, sr := range series {
		plain[i] = Series{Label: sr.Label, X: sr.X, Y: sr.Y}
	}
	return Bands(path, s, ax, plain)
}
