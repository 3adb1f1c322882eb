// Package analysis implements the ctacid pipelines. Each pipeline reads
// its inputs by path convention, applies one aggregation or test and
// writes NetCDF, CSV, PNG or HTML artifacts; they share nothing but the
// configuration.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gonum.org/v1/plot/vg"

	"github.com/rtm0/ctacid/internal/config"
	"github.com/rtm0/ctacid/internal/figure"
	"github.com/rtm0/ctacid/internal/scenario"
	"github.com/rtm0/ctacid/internal/stats"
	"github.com/rtm0/ctacid/internal/temporal"
)

// Runner executes pipelines with a configuration. Reports (test
// statistics, matrices) are printed to out, progress goes to the logger.
type Runner struct {
	cfg    *config.Config
	logger *slog.Logger
	out    io.Writer
}

// New creates a Runner.
func New(cfg *config.Config, logger *slog.Logger, out io.Writer) *Runner {
	return &Runner{cfg: cfg, logger: logger, out: out}
}

// Step is a named pipeline.
type Step struct {
	Name string
	Run  func(*Runner, context.Context) error
}

// Steps lists the pipelines in dependency order: extract produces the
// inputs of the temporal and spatial analyses.
var Steps = []Step{
	{"extract", (*Runner).Extract},
	{"pco2", (*Runner).PCO2},
	{"timeseries", (*Runner).Timeseries},
	{"compare", (*Runner).Compare},
	{"describe", (*Runner).Describe},
	{"spatial", (*Runner).Spatial},
	{"relief", (*Runner).Relief},
}

// All runs every pipeline in order. The relief map is skipped when no
// relief file is present.
func (r *Runner) All(ctx context.Context) error {
	for _, s := range Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.Name == "relief" {
			if _, err := os.Stat(r.cfg.ReliefFile); errors.Is(err, os.ErrNotExist) {
				r.logger.Warn("Skipping relief map", "file", r.cfg.ReliefFile, "err", err)
				continue
			}
		}
		r.logger.Info("Running", "step", s.Name)
		if err := s.Run(r, ctx); err != nil {
			return fmt.Errorf("%s: %w", s.Name, err)
		}
	}
	return nil
}

func (r *Runner) style() figure.Style {
	s := figure.DefaultStyle().WithSize(vg.Length(r.cfg.FigWidth)*vg.Inch, vg.Length(r.cfg.FigHeight)*vg.Inch)
	s.DPI = r.cfg.DPI
	return s
}

func (r *Runner) figPath(name string) string {
	return filepath.Join(r.cfg.FigDir, name)
}

// loadTables reads the temporal table of every scenario in canonical
// order.
func (r *Runner) loadTables() ([]*temporal.Table, error) {
	tables := make([]*temporal.Table, len(scenario.All))
	for i, sc := range scenario.All {
		t, err := temporal.Load(scenario.TemporalPath(r.cfg.TemporalDir, sc))
		if err != nil {
			return nil, err
		}
		tables[i] = t
	}
	return tables, nil
}

// columnGroups returns one NaN-free group per scenario for a column.
func columnGroups(tables []*temporal.Table, column string) ([][]float64, error) {
	groups := make([][]float64, len(tables))
	for i, t := range tables {
		vals, err := t.Column(column)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", scenario.All[i], err)
		}
		groups[i] = stats.DropNaN(vals)
	}
	return groups, nil
}
