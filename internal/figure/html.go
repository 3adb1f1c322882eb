package figure

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// HTMLLines renders the series as an interactive line chart. NaN points
// are dropped since they cannot be encoded as JSON.
func HTMLLines(path, title string, ax Axes, series []Series) error {
	line := charts.NewLine()
	xAxis := opts.XAxis{Type: "value", Name: ax.XLabel, NameLocation: "middle", NameGap: 25}
	if ax.XMax > ax.XMin {
		xAxis.Min, xAxis.Max = ax.XMin, ax.XMax
	}
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1000px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "30"}),
		charts.WithXAxisOpts(xAxis),
		charts.WithYAxisOpts(opts.YAxis{Name: ax.YLabel, Scale: opts.Bool(true)}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}, opts.DataZoom{Type: "inside"}),
	)
	for _, sr := range series {
		n := min(len(sr.X), len(sr.Y))
		data := make([]opts.LineData, 0, n)
		for i := 0; i < n; i++ {
			if math.IsNaN(sr.X[i]) || math.IsNaN(sr.Y[i]) {
				continue
			}
			data = append(data, opts.LineData{Value: []interface{}{sr.X[i], sr.Y[i]}})
		}
		line.AddSeries(sr.Label, data, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := line.Render(f); err != nil {
		f.Close()
		return fmt.Errorf("render %s: %w", path, err)
	}
	return f.Close()
}
