package analysis

import (
	"context"
	"fmt"

	"github.com/rtm0/ctacid/internal/scenario"
)

// Compare tests whether the spatial-mean median of each variable differs
// between scenarios and renders the box plot, density and (when the
// difference is significant) Dunn heat map figures b, c and d.
func (r *Runner) Compare(ctx context.Context) error {
	tables, err := r.loadTables()
	if err != nil {
		return err
	}
	labels := scenario.Labels(scenario.All)
	for _, v := range scenario.Variables {
		if err := ctx.Err(); err != nil {
			return err
		}
		col := v.Column(scenario.Median)
		groups, err := columnGroups(tables, col)
		if err != nil {
			return err
		}
		fmt.Fprintln(r.out, section(col))
		test, err := r.groupTest(v.Label, labels, groups)
		if err != nil {
			return err
		}
		if err := r.heatmap(fmt.Sprintf("fig%dd.png", v.Figure), test); err != nil {
			return err
		}
		box, density := fmt.Sprintf("fig%db.png", v.Figure), fmt.Sprintf("fig%dc.png", v.Figure)
		if err := r.groupFigures(box, density, v.Label, labels, groups); err != nil {
			return err
		}
		r.logger.Info("Compared scenarios", "column", col, "H", test.Kruskal.H, "p", test.Kruskal.P, "significant", test.Significant())
	}
	return nil
}
