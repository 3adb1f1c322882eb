// Package grid holds gridded carbonate chemistry fields (longitude x
// latitude x time) and the reductions applied to them: regional subsets,
// spatial and temporal means, year slices and anomalies.
package grid

import (
	"errors"
	"fmt"
	"math"
	"time"

	gfloats "gonum.org/v1/gonum/floats"
)

var (
	ErrEmptyWindow      = errors.New("window selects no grid cells")
	ErrShapeMismatch    = errors.New("grid shapes differ")
	ErrNoTimeStep       = errors.New("no time step matches")
	ErrVariableNotFound = errors.New("variable not found")
)

// Grid is a scalar field stored row-major as [time][lat][lon]. Missing
// cells are NaN. A map has a single time step.
type Grid struct {
	Name string
	Lon  []float64
	Lat  []float64
	Time []time.Time
	Data []float64
}

// New allocates a NaN-filled grid.
func New(name string, lon, lat []float64, ts []time.Time) *Grid {
	g := &Grid{Name: name, Lon: lon, Lat: lat, Time: ts}
	g.Data = make([]float64, g.Steps()*len(lat)*len(lon))
	for i := range g.Data {
		g.Data[i] = math.NaN()
	}
	return g
}

// Steps returns the number of time steps; a grid without a time axis has
// one step.
func (g *Grid) Steps() int {
	if len(g.Time) == 0 {
		return 1
	}
	return len(g.Time)
}

// Cells returns the number of cells in one time step.
func (g *Grid) Cells() int {
	return len(g.Lat) * len(g.Lon)
}

// At returns the value at the given time, latitude and longitude index.
func (g *Grid) At(t, la, lo int) float64 {
	return g.Data[(t*len(g.Lat)+la)*len(g.Lon)+lo]
}

// Set stores v at the given index.
func (g *Grid) Set(t, la, lo int, v float64) {
	g.Data[(t*len(g.Lat)+la)*len(g.Lon)+lo] = v
}

// Step returns the cells of time step t. The slice aliases the grid.
func (g *Grid) Step(t int) []float64 {
	n := g.Cells()
	return g.Data[t*n : (t+1)*n]
}

// Window is an inclusive longitude/latitude box expressed in coordinate
// values. The zero Window selects everything.
type Window struct {
	LonMin, LonMax float64
	LatMin, LatMax float64
}

// IsZero reports whether the window is unset.
func (w Window) IsZero() bool {
	return w == Window{}
}

func (w Window) String() string {
	if w.IsZero() {
		return "all"
	}
	return fmt.Sprintf("lon[%g,%g] lat[%g,%g]", w.LonMin, w.LonMax, w.LatMin, w.LatMax)
}

// indices returns the positions of the coordinates inside [lo, hi].
func indices(coords []float64, lo, hi float64, all bool) []int {
	idx := make([]int, 0, len(coords))
	for i, c := range coords {
		if all || (c >= lo && c <= hi) {
			idx = append(idx, i)
		}
	}
	return idx
}

// Select returns the latitude and longitude indices covered by the window.
func (w Window) Select(lat, lon []float64) (latIdx, lonIdx []int, err error) {
	latIdx = indices(lat, w.LatMin, w.LatMax, w.IsZero())
	lonIdx = indices(lon, w.LonMin, w.LonMax, w.IsZero())
	if len(latIdx) == 0 || len(lonIdx) == 0 {
		return nil, nil, fmt.Errorf("%w: %s", ErrEmptyWindow, w)
	}
	return latIdx, lonIdx, nil
}

func pick(vs []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = vs[j]
	}
	return out
}

// WithExtent returns a view of g whose coordinates are spread evenly over
// the window, keeping the grid's orientation. The data is shared.
func (g *Grid) WithExtent(w Window) *Grid {
	out := *g
	out.Lon = spread(w.LonMin, w.LonMax, g.Lon)
	out.Lat = spread(w.LatMin, w.LatMax, g.Lat)
	return &out
}

func spread(lo, hi float64, coords []float64) []float64 {
	n := len(coords)
	out := make([]float64, n)
	switch {
	case n == 0:
		return out
	case n == 1:
		out[0] = lo
		return out
	}
	if coords[0] > coords[n-1] {
		lo, hi = hi, lo
	}
	return gfloats.Span(out, lo, hi)
}

// nanMean averages the non-NaN values; it is NaN when there are none.
func nanMean(vs []float64) float64 {
	var sum float64
	var n int
	for _, v := range vs {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// SpatialMean reduces the grid to a time series by averaging over
// latitude and longitude, ignoring missing cells.
func (g *Grid) SpatialMean() []float64 {
	out := make([]float64, g.Steps())
	for t := range out {
		out[t] = nanMean(g.Step(t))
	}
	return out
}

// meanOver averages the given time steps cell by cell.
func (g *Grid) meanOver(steps []int) *Grid {
	var ts []time.Time
	if len(g.Time) > 0 {
		ts = []time.Time{g.Time[steps[0]]}
	}
	out := New(g.Name, g.Lon, g.Lat, ts)
	n := g.Cells()
	col := make([]float64, len(steps))
	for c := 0; c < n; c++ {
		for i, t := range steps {
			col[i] = g.Data[t*n+c]
		}
		out.Data[c] = nanMean(col)
	}
	return out
}

// TimeMean reduces the grid to a map by averaging every time step.
func (g *Grid) TimeMean() *Grid {
	steps := make([]int, g.Steps())
	for i := range steps {
		steps[i] = i
	}
	return g.meanOver(steps)
}

// SelectYear reduces the grid to a map by averaging the time steps that
// fall within the calendar year.
func (g *Grid) SelectYear(year int) (*Grid, error) {
	var steps []int
	for i, t := range g.Time {
		if t.Year() == year {
			steps = append(steps, i)
		}
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("%w: year %d in %s", ErrNoTimeStep, year, g.Name)
	}
	return g.meanOver(steps), nil
}

// Anomaly returns projected minus baseline, cell by cell. Both grids must
// have the same shape.
func Anomaly(projected, baseline *Grid) (*Grid, error) {
	if len(projected.Lat) != len(baseline.Lat) || len(projected.Lon) != len(baseline.Lon) || len(projected.Data) != len(baseline.Data) {
		return nil, fmt.Errorf("%w: %dx%dx%d vs %dx%dx%d", ErrShapeMismatch,
			projected.Steps(), len(projected.Lat), len(projected.Lon),
			baseline.Steps(), len(baseline.Lat), len(baseline.Lon))
	}
	out := New(projected.Name, projected.Lon, projected.Lat, projected.Time)
	for i := range out.Data {
		out.Data[i] = projected.Data[i] - baseline.Data[i]
	}
	return out, nil
}

// Values returns the non-NaN cells in storage order.
func (g *Grid) Values() []float64 {
	out := make([]float64, 0, len(g.Data))
	for _, v := range g.Data {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// Range returns the minimum and maximum non-NaN value. Both are NaN for
// an all-missing grid.
func (g *Grid) Range() (lo, hi float64) {
	lo, hi = math.NaN(), math.NaN()
	for _, v := range g.Data {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(lo) || v < lo {
			lo = v
		}
		if math.IsNaN(hi) || v > hi {
			hi = v
		}
	}
	return lo, hi
}
