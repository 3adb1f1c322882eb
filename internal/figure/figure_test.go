package figure

import (
	"go/format"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot/vg"

	"github.com/rtm0/ctacid/internal/grid"
)

func testStyle() Style {
	s := DefaultStyle().WithSize(4*vg.Inch, 3*vg.Inch)
	s.DPI = 72
	return s
}

func requirePNG(t *testing.T, path string, s Style) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, int(float64(s.Width/vg.Inch)*float64(s.DPI)+0.5), cfg.Width)
	assert.Equal(t, int(float64(s.Height/vg.Inch)*float64(s.DPI)+0.5), cfg.Height)
}

func TestBands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "figs", "bands.png")
	s := testStyle()
	xs := []float64{2000, 2001, 2002, 2003}
	err := Bands(path, s, Axes{XLabel: "Time [Decades]", YLabel: "pH", XMin: 2000, XMax: 2003}, []Series{
		{Label: "Historical", X: xs, Y: []float64{8.1, 8.09, math.NaN(), 8.07}, Lower: []float64{8, 8, 8, 8}, Upper: []float64{8.2, 8.2, 8.2, 8.2}},
		{Label: "SSP 1-1.9", X: xs, Y: []float64{8.0, 7.9, 7.8, 7.7}},
	})
	require.NoError(t, err)
	requirePNG(t, path, s)
}

func TestBandOutline(t *testing.T) {
	out := band([]float64{0, 1, 2}, []float64{0, math.NaN(), 0}, []float64{1, 1, 1})
	require.Len(t, out, 4)
	assert.Equal(t, 0.0, out[0].X)
	assert.Equal(t, 2.0, out[1].X)
	assert.Equal(t, 2.0, out[2].X)
	assert.Equal(t, 1.0, out[2].Y)
	assert.Equal(t, 0.0, out[3].X)
}

func TestBoxesAndDensities(t *testing.T) {
	dir := t.TempDir()
	s := testStyle()
	groups := [][]float64{{1, 2, 3, 4, 5}, {2, 3, 4, 5, 6}}
	require.NoError(t, Boxes(filepath.Join(dir, "box.png"), s, Axes{YLabel: "pH"}, []string{"a", "b"}, groups))
	requirePNG(t, filepath.Join(dir, "box.png"), s)

	err := Boxes(filepath.Join(dir, "bad.png"), s, Axes{}, []string{"a"}, groups)
	assert.Error(t, err)

	require.NoError(t, Densities(filepath.Join(dir, "kde.png"), s, Axes{XLabel: "pH"}, []Series{
		{Label: "a", X: []float64{0, 1, 2}, Y: []float64{0.1, 0.5, 0.1}},
	}))
	requirePNG(t, filepath.Join(dir, "kde.png"), s)
}

func TestPValueHeatmap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dunn.png")
	s := testStyle()
	m := mat.NewSymDense(3, []float64{
		1, 0.01, 0.5,
		0.01, 1, 0.2,
		0.5, 0.2, 1,
	})
	require.NoError(t, PValueHeatmap(path, s, []string{"a", "b", "c"}, m))
	requirePNG(t, path, s)

	assert.Error(t, PValueHeatmap(path, s, []string{"a"}, m))
}

func TestMatrixGridTopDown(t *testing.T) {
	m := mat.NewSymDense(2, []float64{1, 0.3, 0.3, 0.9})
	g := matrixGrid{m: m}
	// the top row of the picture is matrix row 0
	assert.Equal(t, 1.0, g.Z(0, 1))
	assert.Equal(t, 0.9, g.Z(1, 0))
}

func TestRaster(t *testing.T) {
	dir := t.TempDir()
	s := testStyle()
	g := grid.New("anomaly", []float64{100, 101, 102}, []float64{5, 0}, nil)
	copy(g.Data, []float64{-0.5, -0.3, math.NaN(), -0.1, -0.05, -0.7})

	require.NoError(t, Raster(filepath.Join(dir, "map.png"), s, g, Map{Label: "Δ pH"}))
	requirePNG(t, filepath.Join(dir, "map.png"), s)

	require.NoError(t, Raster(filepath.Join(dir, "delta.png"), s, g, Map{
		Label:    "Δ pH",
		ColorMap: CoolWarmR(-0.6, -0.04),
		Bins:     7,
		Markers:  []Marker{{Lon: 101, Lat: 2, Label: "site"}},
	}))
	requirePNG(t, filepath.Join(dir, "delta.png"), s)

	empty := grid.New("empty", []float64{1}, []float64{1}, nil)
	assert.Error(t, Raster(filepath.Join(dir, "empty.png"), s, empty, Map{}))
}

func TestRasterGridAscending(t *testing.T) {
	g := grid.New("v", []float64{10, 20}, []float64{5, 0}, nil)
	copy(g.Data, []float64{1, 2, 3, 4})
	r := rasterGrid{g: g, rows: ascending(g.Lat), cols: ascending(g.Lon)}
	assert.Equal(t, 0.0, r.Y(0))
	assert.Equal(t, 3.0, r.Z(0, 0))
	assert.Equal(t, 2.0, r.Z(1, 1))
}

func TestColorMaps(t *testing.T) {
	cw := CoolWarmR(0, 1)
	lo, err := cw.At(0)
	require.NoError(t, err)
	hi, err := cw.At(1)
	require.NoError(t, err)
	r, _, b, _ := lo.RGBA()
	assert.Greater(t, r, b, "low values are red")
	r, _, b, _ = hi.RGBA()
	assert.Greater(t, b, r, "high values are blue")

	bins := Binned(CoolWarmR(-0.6, -0.04), 7)
	c1, err := bins.At(-0.59)
	require.NoError(t, err)
	c2, err := bins.At(-0.53)
	require.NoError(t, err)
	assert.Equal(t, c1, c2)
	c3, err := bins.At(-0.05)
	require.NoError(t, err)
	assert.NotEqual(t, c1, c3)
	_, err = bins.At(0)
	assert.Error(t, err)

	geo := Geo(-5000, 3000)
	sea, err := geo.At(-3000)
	require.NoError(t, err)
	r, _, b, _ = sea.RGBA()
	assert.Greater(t, b, r)
	assert.Len(t, geo.Palette(16).Colors(), 16)
	_, err = geo.At(math.NaN())
	assert.Error(t, err)
}

func TestHTMLLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ph_med.html")
	err := HTMLLines(path, "pH", Axes{XLabel: "Time", YLabel: "pH", XMin: 1850, XMax: 2100}, []Series{
		{Label: "SSP 5-8.5", X: []float64{2015, 2016}, Y: []float64{8.05, math.NaN()}},
	})
	require.NoError(t, err)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(b), "SSP 5-8.5"))
	assert.Contains(t, string(b), "echarts")
}

func TestSourcesFormatted(t *testing.T) {
	files, err := filepath.Glob("*.go")
	require.NoError(t, err)
	require.NotEmpty(t, files)
	for _, f := range files {
		src, err := os.ReadFile(f)
		require.NoError(t, err)
		got, err := format.Source(src)
		require.NoError(t, err, f)
		assert.Equal(t, string(got), string(src), "%s is not gofmt-ed", f)
	}
}
