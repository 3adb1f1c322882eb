package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rtm0/ctacid/internal/figure"
	"github.com/rtm0/ctacid/internal/grid"
)

// reliefVariables are the elevation variable names tried in order.
var reliefVariables = []string{"z", "elevation"}

// Relief renders the study area (figure 1) from a local relief grid.
func (r *Runner) Relief(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	g, err := openRelief(r.cfg.ReliefFile, r.cfg.Region())
	if err != nil {
		return err
	}
	r.logger.Info("Loaded relief", "file", r.cfg.ReliefFile, "laCnt", len(g.Lat), "loCnt", len(g.Lon))

	lo, hi := g.Range()
	if math.IsNaN(lo) {
		return fmt.Errorf("%s: no elevation values in region %s", r.cfg.ReliefFile, r.cfg.Region())
	}
	if !(hi > lo) {
		hi = lo + 1
	}
	markers := make([]figure.Marker, len(r.cfg.ReliefMarkers))
	for i, mk := range r.cfg.ReliefMarkers {
		markers[i] = figure.Marker{Lon: mk.Lon, Lat: mk.Lat, Label: mk.Label}
	}
	err = figure.Raster(r.figPath("fig1.png"), r.style(), g, figure.Map{
		Label:    "Elevation [m]",
		ColorMap: figure.Geo(lo, hi),
		Markers:  markers,
	})
	if err != nil {
		return err
	}
	r.logger.Info("Plotted relief", "figure", "fig1.png")
	return nil
}

func openRelief(path string, w grid.Window) (*grid.Grid, error) {
	var err error
	for _, name := range reliefVariables {
		var g *grid.Grid
		g, err = grid.Open(path, name, w)
		if err == nil {
			return g, nil
		}
		if !errors.Is(err, grid.ErrVariableNotFound) {
			return nil, err
		}
	}
	return nil, err
}
