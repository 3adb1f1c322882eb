package figure

import (
	"errors"
	"fmt"

	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Boxes draws one box plot per group, labelled along the x axis.
func Boxes(path string, s Style, ax Axes, labels []string, groups [][]float64) error {
	if len(groups) == 0 || len(labels) != len(groups) {
		return errors.New("box plot needs one label per group")
	}
	p := s.newPlot(ax.XLabel, ax.YLabel)
	w := s.Width / vg.Length(3*len(groups))
	for i, g := range groups {
		b, err := plotter.NewBoxPlot(w, float64(i), plotter.Values(g))
		if err != nil {
			return fmt.Errorf("box %q: %w", labels[i], err)
		}
		b.FillColor = translucent(SeriesColor(i), 0.6)
		b.GlyphStyle.Radius = vg.Points(1.5)
		p.Add(b)
	}
	p.NominalX(labels...)
	ax.apply(p)
	return s.save(p, path)
}

// Densities draws a kernel density curve per group. The curves are given
// as series evaluated on their own grids.
func Densities(path string, s Style, ax Axes, series []Series) error {
	if ax.YLabel == "" {
		ax.YLabel = "Density"
	}
	return Lines(path, s, ax, series)
}
