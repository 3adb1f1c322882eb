package analysis

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/rtm0/ctacid/internal/grid"
	"github.com/rtm0/ctacid/internal/scenario"
	"github.com/rtm0/ctacid/internal/temporal"
)

// statistics are extracted in this order for every variable.
var statistics = []scenario.Statistic{scenario.Median, scenario.Std}

// Extract subsets the raw fields of the selected scenarios to the analysis
// window, writes the subsets to the spatial directory and the spatial
// means to the scenario's temporal table. Scenarios run concurrently;
// the first failure cancels the others.
func (r *Runner) Extract(ctx context.Context) error {
	selected, err := r.cfg.SelectedScenarios()
	if err != nil {
		return err
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Concurrency)
	for _, sc := range selected {
		g.Go(func() error {
			if err := r.extractScenario(ctx, sc); err != nil {
				return fmt.Errorf("%s: %w", sc, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func (r *Runner) extractScenario(ctx context.Context, sc scenario.Scenario) error {
	var table *temporal.Table
	for _, v := range scenario.Variables {
		for _, st := range statistics {
			if err := ctx.Err(); err != nil {
				return err
			}
			g, err := r.readWindow(scenario.RawPath(r.cfg.RawDir, sc, v, st), v.Name)
			if err != nil {
				return err
			}
			out := scenario.SpatialPath(r.cfg.SpatialDir, sc, v, st)
			if err := grid.Write(out, g); err != nil {
				return err
			}
			r.logger.Debug("Wrote subset", "scenario", sc, "path", out)

			// the time axis of the first variable indexes the table
			if table == nil {
				table = temporal.NewTable(g.Time)
			}
			if err := table.Add(v.Column(st), g.SpatialMean()); err != nil {
				return err
			}
		}
	}
	path := scenario.TemporalPath(r.cfg.TemporalDir, sc)
	if err := table.Save(path); err != nil {
		return err
	}
	r.logger.Info("Extracted", "scenario", sc, "rows", table.Len(), "table", path)
	return nil
}

// readWindow reads a variable restricted to the configured window one
// time step at a time.
func (r *Runner) readWindow(path, variable string) (*grid.Grid, error) {
	s, err := grid.NewScanner(path, variable, r.cfg.Window())
	if err != nil {
		return nil, err
	}
	defer s.Close()
	r.logger.Debug("Opened", append([]any{"path", path}, s.Summary()...)...)

	g := grid.New(variable, s.Lon(), s.Lat(), s.Time())
	t := 0
	for s.Scan() {
		copy(g.Step(t), s.Step())
		t++
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return g, nil
}
