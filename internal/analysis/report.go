package analysis

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/rtm0/ctacid/internal/figure"
	"github.com/rtm0/ctacid/internal/stats"
)

// GroupTest is the outcome of the Kruskal-Wallis gate and, when it
// passes, Dunn's pairwise post-hoc test.
type GroupTest struct {
	Labels  []string
	Kruskal stats.KruskalResult
	// Dunn is nil unless the Kruskal-Wallis test is significant.
	Dunn *mat.SymDense
}

// Significant reports whether the groups differ.
func (g GroupTest) Significant() bool {
	return g.Dunn != nil
}

func adjustLabel(a stats.Adjustment) string {
	switch a {
	case stats.Bonferroni:
		return "Bonferroni adjusted"
	case stats.Holm:
		return "Holm adjusted"
	}
	return "unadjusted"
}

// groupTest runs the Kruskal-Wallis test across groups and Dunn's test
// when it is significant, printing the report. subject names the
// measured quantity in the interpretation line.
func (r *Runner) groupTest(subject string, labels []string, groups [][]float64) (GroupTest, error) {
	res := GroupTest{Labels: labels}
	kw, err := stats.KruskalWallis(groups...)
	if err != nil {
		return res, fmt.Errorf("kruskal-wallis on %s: %w", subject, err)
	}
	res.Kruskal = kw
	fmt.Fprintln(r.out, kw.String())

	if !stats.Significant(kw.P, r.cfg.Alpha) {
		fmt.Fprintln(r.out, "No significant differences found among the groups.")
		fmt.Fprintf(r.out, "This suggests that there is no statistical evidence to conclude that the groups differ in median %s.\n", subject)
		return res, nil
	}
	fmt.Fprintln(r.out, "Significant differences found among the groups.")
	fmt.Fprintln(r.out, "This indicates that at least one group's median significantly differs from the others.")

	adjust, err := stats.ParseAdjustment(r.cfg.Adjust)
	if err != nil {
		return res, err
	}
	res.Dunn, err = stats.Dunn(groups, adjust)
	if err != nil {
		return res, fmt.Errorf("dunn on %s: %w", subject, err)
	}
	fmt.Fprintf(r.out, "Dunn's test p-values (%s):\n", adjustLabel(adjust))
	if err := stats.WriteMatrix(r.out, labels, res.Dunn); err != nil {
		return res, err
	}
	fmt.Fprintf(r.out, "Values below %g indicate pairs of groups with statistically significant differences in medians.\n", r.cfg.Alpha)
	return res, nil
}

// groupFigures renders the box plot and kernel density figures of the
// groups. Groups too small or too flat for a density estimate are left
// out of the density figure.
func (r *Runner) groupFigures(boxName, densityName, label string, labels []string, groups [][]float64) error {
	s := r.style()
	if err := figure.Boxes(r.figPath(boxName), s, figure.Axes{XLabel: "Scenarios", YLabel: label}, labels, groups); err != nil {
		return err
	}

	var series []figure.Series
	for i, g := range groups {
		d, err := stats.KDE(g, densityPoints)
		if err != nil {
			r.logger.Warn("Skipping density", "group", labels[i], "err", err)
			continue
		}
		series = append(series, figure.Series{Label: labels[i], X: d.X, Y: d.Y})
	}
	return figure.Densities(r.figPath(densityName), s, figure.Axes{XLabel: label, YLabel: "Probability Density"}, series)
}

// densityPoints is the size of the kernel density evaluation grid.
const densityPoints = 200

// heatmap renders the Dunn matrix of a significant test.
func (r *Runner) heatmap(name string, g GroupTest) error {
	if !g.Significant() {
		return nil
	}
	s := r.style().WithSize(r.style().Width, r.style().Width*0.8)
	return figure.PValueHeatmap(r.figPath(name), s, g.Labels, g.Dunn)
}

func section(title string) string {
	return fmt.Sprintf("\n%s\n%s", title, strings.Repeat("=", len([]rune(title))))
}
