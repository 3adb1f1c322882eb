package grid

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func year(y int) time.Time {
	return time.Date(y, time.July, 1, 0, 0, 0, 0, time.UTC)
}

// testGrid is a 3 step, 2x3 grid whose value encodes its index.
func testGrid() *Grid {
	g := New("pHT", []float64{100, 110, 120}, []float64{-10, 0}, []time.Time{year(2000), year(2100), year(2100)})
	for t := 0; t < 3; t++ {
		for la := 0; la < 2; la++ {
			for lo := 0; lo < 3; lo++ {
				g.Set(t, la, lo, float64(100*t+10*la+lo))
			}
		}
	}
	return g
}

func TestSpatialMean(t *testing.T) {
	g := New("x", []float64{0, 1}, []float64{0, 1}, []time.Time{year(2000)})
	copy(g.Data, []float64{1, 2, 3, 4})
	assert.InDelta(t, 2.5, g.SpatialMean()[0], 1e-12)

	g.Set(0, 1, 1, math.NaN())
	assert.InDelta(t, 2.0, g.SpatialMean()[0], 1e-12)

	empty := New("x", []float64{0}, []float64{0}, []time.Time{year(2000)})
	assert.True(t, math.IsNaN(empty.SpatialMean()[0]))
}

func TestWithExtent(t *testing.T) {
	g := testGrid()
	geo := g.WithExtent(Window{LonMin: 95, LonMax: 196, LatMin: -25, LatMax: 29})
	assert.Equal(t, []float64{95, 145.5, 196}, geo.Lon)
	assert.Equal(t, []float64{-25, 29}, geo.Lat)
	assert.Equal(t, g.At(2, 1, 2), geo.At(2, 1, 2))
	// the source grid keeps its coordinates
	assert.Equal(t, []float64{100, 110, 120}, g.Lon)

	north := New("x", []float64{7}, []float64{119, 92, 65}, nil)
	geo = north.WithExtent(Window{LonMin: 95, LonMax: 196, LatMin: -25, LatMax: 29})
	assert.Equal(t, []float64{29, 2, -25}, geo.Lat)
	assert.Equal(t, []float64{95}, geo.Lon)
}

func TestTimeMeanAndSelectYear(t *testing.T) {
	g := testGrid()
	m := g.TimeMean()
	assert.Equal(t, 1, m.Steps())
	assert.InDelta(t, 100.0, m.At(0, 0, 0), 1e-12)
	assert.InDelta(t, 112.0, m.At(0, 1, 2), 1e-12)

	y, err := g.SelectYear(2100)
	require.NoError(t, err)
	assert.InDelta(t, 150.0, y.At(0, 0, 0), 1e-12)

	_, err = g.SelectYear(1990)
	assert.ErrorIs(t, err, ErrNoTimeStep)
}

func TestAnomaly(t *testing.T) {
	base := testGrid().TimeMean()
	proj, err := testGrid().SelectYear(2100)
	require.NoError(t, err)
	d, err := Anomaly(proj, base)
	require.NoError(t, err)
	for _, v := range d.Data {
		assert.InDelta(t, 50.0, v, 1e-12)
	}

	small := New("pHT", []float64{100}, []float64{-10, 0}, nil)
	_, err = Anomaly(small, base)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestValuesAndRange(t *testing.T) {
	g := New("x", []float64{0, 1}, []float64{0}, nil)
	g.Data[0] = 3
	assert.Equal(t, []float64{3}, g.Values())
	lo, hi := g.Range()
	assert.Equal(t, 3.0, lo)
	assert.Equal(t, 3.0, hi)
}

func TestWriteOpenRoundTrip(t *testing.T) {
	g := testGrid()
	g.Set(1, 0, 1, math.NaN())
	path := filepath.Join(t.TempDir(), "sub", "historical_pht_med.nc")
	require.NoError(t, Write(path, g))

	got, err := Open(path, "pHT", Window{})
	require.NoError(t, err)
	assert.Equal(t, g.Lon, got.Lon)
	assert.Equal(t, g.Lat, got.Lat)
	require.Len(t, got.Time, 3)
	for i := range g.Time {
		assert.True(t, g.Time[i].Equal(got.Time[i]), "time %d: %v != %v", i, g.Time[i], got.Time[i])
	}
	require.Len(t, got.Data, len(g.Data))
	for i, v := range g.Data {
		if math.IsNaN(v) {
			assert.True(t, math.IsNaN(got.Data[i]), "cell %d", i)
			continue
		}
		assert.InDelta(t, v, got.Data[i], 1e-4)
	}

	sub, err := Open(path, "pHT", Window{LonMin: 120, LonMax: 120, LatMin: 0, LatMax: 0})
	require.NoError(t, err)
	assert.Equal(t, []float64{12, 112, 212}, sub.Data)

	_, err = Open(path, "aragonite", Window{})
	assert.ErrorIs(t, err, ErrVariableNotFound)
}

func TestWriteOpenExtendedProjection(t *testing.T) {
	ts := []time.Time{
		time.Date(2200, time.July, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2300, time.July, 1, 0, 0, 0, 0, time.UTC),
	}
	g := New("pHT", []float64{100}, []float64{0}, ts)
	g.Set(0, 0, 0, 7.8)
	g.Set(1, 0, 0, 7.6)
	path := filepath.Join(t.TempDir(), "ssp585_pht_med.nc")
	require.NoError(t, Write(path, g))

	got, err := Open(path, "pHT", Window{})
	require.NoError(t, err)
	require.Len(t, got.Time, 2)
	for i := range ts {
		assert.True(t, ts[i].Equal(got.Time[i]), "time %d: %v != %v", i, ts[i], got.Time[i])
	}
	m, err := got.SelectYear(2300)
	require.NoError(t, err)
	assert.InDelta(t, 7.6, m.At(0, 0, 0), 1e-6)
}

func TestScannerSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "g.nc")
	require.NoError(t, Write(path, testGrid()))
	s, err := NewScanner(path, "pHT", Window{LonMin: 100, LonMax: 110, LatMin: -10, LatMax: 0})
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, []any{"var", "pHT", "tsCnt", 3, "laCnt", 2, "loCnt", 2, "cellCnt", 12}, s.Summary())
}
