package analysis

import (
	"context"
	"errors"
	"fmt"

	"github.com/rtm0/ctacid/internal/figure"
	"github.com/rtm0/ctacid/internal/grid"
	"github.com/rtm0/ctacid/internal/scenario"
)

// Spatial reduces each scenario's median field to a map, plots the
// historical map (fig_<p>6a) and the anomaly of every projection against
// it (fig_<p>6b..f), then compares the cell values of the six maps.
func (r *Runner) Spatial(ctx context.Context) error {
	labels := scenario.Labels(scenario.All)
	s := r.style().WithSize(r.style().Width, r.style().Width/2)
	for _, v := range scenario.Variables {
		if err := ctx.Err(); err != nil {
			return err
		}
		sm, err := r.spatialMaps(v)
		if err != nil {
			return err
		}

		name := fmt.Sprintf("fig_%s6a.png", v.Prefix)
		if err := figure.Raster(r.figPath(name), s, sm.maps[0], figure.Map{Label: v.Name + " (Historical)"}); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		for i, anomaly := range sm.anomalies {
			name := fmt.Sprintf("fig_%s6%c.png", v.Prefix, 'b'+i)
			err := figure.Raster(r.figPath(name), s, anomaly, figure.Map{
				Label:    "Δ" + v.Name,
				ColorMap: figure.CoolWarmR(r.cfg.AnomalyMin, r.cfg.AnomalyMax),
				Bins:     r.cfg.AnomalyBins,
			})
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
		}
		r.logger.Info("Plotted maps", "variable", v.Name, "prefix", v.Prefix)

		groups := make([][]float64, len(sm.maps))
		for i, m := range sm.maps {
			groups[i] = m.Values()
		}
		fmt.Fprintln(r.out, section(v.Prefix+" maps"))
		if _, err := r.groupTest(v.Label, labels, groups); err != nil {
			return err
		}
	}
	return nil
}

// spatialMaps holds the map of every scenario in canonical order and the
// anomaly of every projection against the historical map.
type spatialMaps struct {
	maps      []*grid.Grid
	anomalies []*grid.Grid
}

func (r *Runner) spatialMaps(v scenario.Variable) (spatialMaps, error) {
	var sm spatialMaps
	extent := r.cfg.MapExtent()
	for _, sc := range scenario.All {
		m, err := r.loadMap(sc, v)
		if err != nil {
			return sm, fmt.Errorf("%s %s: %w", sc, v.Name, err)
		}
		if !extent.IsZero() {
			m = m.WithExtent(extent)
		}
		sm.maps = append(sm.maps, m)
	}
	for i, m := range sm.maps[1:] {
		anomaly, err := grid.Anomaly(m, sm.maps[0])
		if err != nil {
			return sm, fmt.Errorf("%s anomaly: %w", scenario.All[i+1], err)
		}
		sm.anomalies = append(sm.anomalies, anomaly)
	}
	return sm, nil
}

// loadMap reads a spatial subset and reduces it with the variable's
// mode. A year slice falls back to the last year of runs that end before
// the map year, which is always the case for the historical run.
func (r *Runner) loadMap(sc scenario.Scenario, v scenario.Variable) (*grid.Grid, error) {
	g, err := grid.Open(scenario.SpatialPath(r.cfg.SpatialDir, sc, v, scenario.Median), v.Name, grid.Window{})
	if err != nil {
		return nil, err
	}
	if v.Reduce == scenario.TimeMean || len(g.Time) == 0 {
		return g.TimeMean(), nil
	}
	m, err := g.SelectYear(r.cfg.MapYear)
	if !errors.Is(err, grid.ErrNoTimeStep) {
		return m, err
	}
	last := g.Time[len(g.Time)-1].Year()
	r.logger.Info("Map year not covered, using last year", "scenario", sc, "variable", v.Name, "year", r.cfg.MapYear, "used", last)
	return g.SelectYear(last)
}
