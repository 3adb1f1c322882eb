package analysis

import (
	"context"
	"fmt"

	"github.com/rtm0/ctacid/internal/figure"
	"github.com/rtm0/ctacid/internal/forcing"
	"github.com/rtm0/ctacid/internal/scenario"
)

// PCO2 plots the atmospheric pCO2 forcing of every scenario up to 2100
// (figure 2) and prints the extremes of each trajectory.
func (r *Runner) PCO2(ctx context.Context) error {
	series := make([]figure.Series, 0, len(scenario.All))
	fmt.Fprintln(r.out, section("pCO2 forcing"))
	for _, sc := range scenario.All {
		if err := ctx.Err(); err != nil {
			return err
		}
		f, err := forcing.Load(r.cfg.RFDir, sc)
		if err != nil {
			return err
		}
		sum, err := f.Summarize()
		if err != nil {
			return err
		}
		fmt.Fprintf(r.out, "%s statistics: %s\n", sc.Label(), sum)
		series = append(series, figure.Series{Label: sc.Label(), X: f.Year, Y: f.Value})
	}
	ax := figure.Axes{XLabel: "Time [years]", YLabel: "pCO2 [ppm]", XMin: -1, XMax: 2102}
	if err := figure.Lines(r.figPath("fig2.png"), r.style(), ax, series); err != nil {
		return err
	}
	r.logger.Info("Plotted pCO2 forcing", "figure", "fig2.png")
	return nil
}
