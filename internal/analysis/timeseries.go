package analysis

import (
	"context"
	"fmt"
	"math"

	"github.com/rtm0/ctacid/internal/figure"
	"github.com/rtm0/ctacid/internal/scenario"
	"github.com/rtm0/ctacid/internal/temporal"
)

// Timeseries plots the spatial-mean median of every variable against
// time with a band of BandZ standard deviations, one line per scenario.
// The figure is saved as fig3a, fig4a and fig5a and under the column name
// (<column>.png), next to an interactive HTML version.
func (r *Runner) Timeseries(ctx context.Context) error {
	tables, err := r.loadTables()
	if err != nil {
		return err
	}
	for _, v := range scenario.Variables {
		if err := ctx.Err(); err != nil {
			return err
		}
		series, err := r.bandSeries(tables, v)
		if err != nil {
			return err
		}
		ax := figure.Axes{XLabel: "Time [Decades]", YLabel: v.Label}
		ax.XMin, ax.XMax = timeLimits(tables)

		col := v.Column(scenario.Median)
		name := fmt.Sprintf("fig%da.png", v.Figure)
		for _, png := range []string{name, col + ".png"} {
			if err := figure.Bands(r.figPath(png), r.style(), ax, series); err != nil {
				return fmt.Errorf("%s: %w", png, err)
			}
		}
		html := col + ".html"
		if err := figure.HTMLLines(r.figPath(html), v.Label, ax, series); err != nil {
			return fmt.Errorf("%s: %w", html, err)
		}
		r.logger.Info("Plotted time series", "variable", v.Name, "figure", name)
	}
	return nil
}

func (r *Runner) bandSeries(tables []*temporal.Table, v scenario.Variable) ([]figure.Series, error) {
	series := make([]figure.Series, len(tables))
	for i, t := range tables {
		med, err := t.Column(v.Column(scenario.Median))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", scenario.All[i], err)
		}
		std, err := t.Column(v.Column(scenario.Std))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", scenario.All[i], err)
		}
		lower := make([]float64, len(med))
		upper := make([]float64, len(med))
		for k := range med {
			lower[k] = med[k] - r.cfg.BandZ*std[k]
			upper[k] = med[k] + r.cfg.BandZ*std[k]
		}
		series[i] = figure.Series{Label: scenario.All[i].Label(), X: t.Years(), Y: med, Lower: lower, Upper: upper}
	}
	return series, nil
}

// timeLimits spans the start of the historical run to the end of the
// longest projection.
func timeLimits(tables []*temporal.Table) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for i, t := range tables {
		ys := t.Years()
		if len(ys) == 0 {
			continue
		}
		if i == 0 {
			lo = ys[0]
		}
		hi = math.Max(hi, ys[len(ys)-1])
	}
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) || lo >= hi {
		return 0, 0
	}
	return lo, hi
}
