package analysis

import (
	"context"
	"fmt"

	"github.com/rtm0/ctacid/internal/scenario"
	"github.com/rtm0/ctacid/internal/stats"
)

// describeOrder is the column order of the descriptive report.
var describeOrder = []scenario.Variable{scenario.Aragonite, scenario.Calcite, scenario.PH}

// Describe prints the shape, normality and stationarity statistics of
// every scenario's spatial-mean median series, then runs the scenario
// comparison on each column and writes <column>_boxplot.png,
// <column>_density.png and, when significant, <column>_dunn.png.
func (r *Runner) Describe(ctx context.Context) error {
	tables, err := r.loadTables()
	if err != nil {
		return err
	}
	labels := scenario.Labels(scenario.All)
	for _, v := range describeOrder {
		if err := ctx.Err(); err != nil {
			return err
		}
		col := v.Column(scenario.Median)
		groups, err := columnGroups(tables, col)
		if err != nil {
			return err
		}
		fmt.Fprintln(r.out, section(col))
		for i, g := range groups {
			if err := r.describeSeries(labels[i], g); err != nil {
				return fmt.Errorf("%s %s: %w", scenario.All[i], col, err)
			}
		}
		fmt.Fprintln(r.out)
		test, err := r.groupTest(v.Label, labels, groups)
		if err != nil {
			return err
		}
		if err := r.heatmap(col+"_dunn.png", test); err != nil {
			return err
		}
		if err := r.groupFigures(col+"_boxplot.png", col+"_density.png", v.Label, labels, groups); err != nil {
			return err
		}
	}
	return nil
}

// describeSeries prints the statistics of one series. A test whose
// preconditions fail aborts the report.
func (r *Runner) describeSeries(label string, xs []float64) error {
	m, err := stats.Describe(xs)
	if err != nil {
		return fmt.Errorf("moments: %w", err)
	}
	sw, err := stats.ShapiroWilk(xs)
	if err != nil {
		return fmt.Errorf("shapiro-wilk: %w", err)
	}
	adf, err := stats.ADF(xs, -1)
	if err != nil {
		return fmt.Errorf("adf: %w", err)
	}
	fmt.Fprintf(r.out, "\nResults for %s:\n", label)
	fmt.Fprintf(r.out, "  Skewness: %.3f\n", m.Skewness)
	fmt.Fprintf(r.out, "  Kurtosis: %.3f\n", m.Kurtosis)
	fmt.Fprintf(r.out, "  Shapiro-Wilk Test: Statistic=%.3f, p-value=%.3f\n", sw.W, sw.P)
	fmt.Fprintf(r.out, "  ADF Test: %s, Used Lag=%d, Observations=%d\n", adf, adf.UsedLag, adf.NObs)
	return nil
}
