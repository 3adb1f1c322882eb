package figure

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"slices"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/rtm0/ctacid/internal/grid"
)

// paletteSize is the number of colours sampled from a colour map for
// heat maps; large enough that class edges of binned maps stay sharp.
const paletteSize = 512

// rasterCells is the map size above which cells are drawn as an image.
const rasterCells = 250_000

// matrixGrid shows a square matrix with row 0 at the top.
type matrixGrid struct {
	m mat.Symmetric
}

func (g matrixGrid) Dims() (c, r int) {
	n := g.m.SymmetricDim()
	return n, n
}

func (g matrixGrid) Z(c, r int) float64 {
	return g.m.At(g.m.SymmetricDim()-1-r, c)
}

func (g matrixGrid) X(c int) float64 { return float64(c) }
func (g matrixGrid) Y(r int) float64 { return float64(r) }

// colorBar draws p with a vertical colour bar for cm on its right.
func (s Style) colorBar(path string, p *plot.Plot, cm palette.ColorMap, label string, classes int) error {
	bar := plot.New()
	bar.Add(&plotter.ColorBar{ColorMap: cm, Vertical: true, Colors: classes})
	bar.HideX()
	bar.Y.Label.Text = label
	bar.Y.Label.TextStyle.Font.Size = s.LabelSize
	bar.Y.Tick.Label.Font.Size = s.TickSize
	if classes > 0 {
		ticks := make([]plot.Tick, classes+1)
		step := (cm.Max() - cm.Min()) / float64(classes)
		for i := range ticks {
			v := cm.Min() + float64(i)*step
			ticks[i] = plot.Tick{Value: v, Label: fmt.Sprintf("%.2f", v)}
		}
		bar.Y.Tick.Marker = plot.ConstantTicks(ticks)
	}

	barW := 1.5 * vg.Inch
	return s.render(path, func(c draw.Canvas) {
		p.Draw(draw.Crop(c, 0, -barW, 0, 0))
		bar.Draw(draw.Crop(c, c.Max.X-c.Min.X-barW, 0, 0, 0))
	})
}

// PValueHeatmap renders a pairwise p-value matrix with the reversed
// cool-warm map, so significant pairs show red.
func PValueHeatmap(path string, s Style, labels []string, m mat.Symmetric) error {
	n := m.SymmetricDim()
	if n == 0 || len(labels) != n {
		return errors.New("heat map needs one label per matrix row")
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			lo = math.Min(lo, m.At(i, j))
			hi = math.Max(hi, m.At(i, j))
		}
	}
	if !(hi > lo) {
		lo, hi = 0, 1
	}
	cm := CoolWarmR(lo, hi)
	hm := plotter.NewHeatMap(matrixGrid{m: m}, sample(cm, paletteSize))
	hm.Min, hm.Max = lo, hi

	p := plot.New()
	p.Add(hm)
	p.NominalX(labels...)
	top := slices.Clone(labels)
	slices.Reverse(top)
	p.NominalY(top...)
	p.X.Tick.Label.Font.Size = s.TickSize
	p.Y.Tick.Label.Font.Size = s.TickSize
	return s.colorBar(path, p, cm, "p-values", 0)
}

// Marker is an annotated point drawn on a map.
type Marker struct {
	Lon, Lat float64
	Label    string
}

// Map configures a Raster figure.
type Map struct {
	Axes
	// Label is the colour bar label.
	Label string
	// ColorMap defaults to CoolWarmR over the data range.
	ColorMap palette.ColorMap
	// Bins, when positive, splits the colour range into discrete classes.
	Bins    int
	Markers []Marker
}

// rasterGrid shows the first step of a grid with both axes ascending.
type rasterGrid struct {
	g          *grid.Grid
	rows, cols []int
}

func ascending(coords []float64) []int {
	idx := make([]int, len(coords))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return coords[idx[a]] < coords[idx[b]] })
	return idx
}

func (r rasterGrid) Dims() (c, rr int) { return len(r.cols), len(r.rows) }
func (r rasterGrid) Z(c, rr int) float64 {
	return r.g.At(0, r.rows[rr], r.cols[c])
}
func (r rasterGrid) X(c int) float64  { return r.g.Lon[r.cols[c]] }
func (r rasterGrid) Y(rr int) float64 { return r.g.Lat[r.rows[rr]] }

// Raster renders the first time step of g as a longitude/latitude map
// with a colour bar. Missing cells are drawn in the Missing colour and
// values outside the colour range take the nearest end colour.
func Raster(path string, s Style, g *grid.Grid, m Map) error {
	if len(g.Lon) == 0 || len(g.Lat) == 0 {
		return grid.ErrEmptyWindow
	}
	cm := m.ColorMap
	if cm == nil {
		lo, hi := g.Range()
		if math.IsNaN(lo) {
			return fmt.Errorf("map %s: all cells missing", g.Name)
		}
		if !(hi > lo) {
			hi = lo + 1
		}
		cm = CoolWarmR(lo, hi)
	}
	if m.Bins > 0 {
		cm = Binned(cm, m.Bins)
	}
	pal := sample(cm, paletteSize)
	hm := plotter.NewHeatMap(rasterGrid{g: g, rows: ascending(g.Lat), cols: ascending(g.Lon)}, pal)
	hm.Min, hm.Max = cm.Min(), cm.Max()
	hm.NaN = Missing
	hm.Underflow = pal[0]
	hm.Overflow = pal[len(pal)-1]
	// relief grids are regular and too large to draw cell by cell
	hm.Rasterized = len(g.Lon)*len(g.Lat) > rasterCells

	if m.XLabel == "" {
		m.XLabel = "Longitude"
	}
	if m.YLabel == "" {
		m.YLabel = "Latitude"
	}
	p := s.newPlot(m.XLabel, m.YLabel)
	p.Add(hm)
	if len(m.Markers) > 0 {
		if err := addMarkers(p, s, m.Markers); err != nil {
			return err
		}
	}
	m.apply(p)
	return s.colorBar(path, p, cm, m.Label, m.Bins)
}

func addMarkers(p *plot.Plot, s Style, ms []Marker) error {
	xys := make(plotter.XYs, len(ms))
	names := make([]string, len(ms))
	for i, mk := range ms {
		xys[i] = plotter.XY{X: mk.Lon, Y: mk.Lat}
		names[i] = mk.Label
	}
	sc, err := plotter.NewScatter(xys)
	if err != nil {
		return fmt.Errorf("markers: %w", err)
	}
	sc.GlyphStyle.Shape = draw.CircleGlyph{}
	sc.GlyphStyle.Radius = vg.Points(3)
	sc.GlyphStyle.Color = color.RGBA{R: 0xff, A: 0xff}
	p.Add(sc)

	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: names})
	if err != nil {
		return fmt.Errorf("marker labels: %w", err)
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].Font.Size = s.TickSize
	}
	p.Add(labels)
	return nil
}
