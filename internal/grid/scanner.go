package grid

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
)

var (
	latNames  = []string{"lat", "latitude", "y"}
	lonNames  = []string{"lon", "longitude", "x"}
	timeNames = []string{"time", "t"}
)

// Scanner retrieves a gridded variable from a NetCDF file one time step
// at a time, restricted to a window.
type Scanner struct {
	nc     api.Group
	vg     api.VarGetter
	name   string
	lat    []float64
	lon    []float64
	latIdx []int
	lonIdx []int
	ts     []time.Time
	// lonFirst is set when the horizontal dimensions are stored (lon, lat).
	lonFirst bool
	hasTime  bool
	packing  packing
	pos      int
	step     []float64
	err      error
}

// packing is the CF decoding applied to every stored value.
type packing struct {
	scale, offset float64
	fill          []float64
}

func (p packing) decode(v float64) float64 {
	for _, f := range p.fill {
		if v == f {
			return math.NaN()
		}
	}
	return v*p.scale + p.offset
}

// NewScanner opens filePath and prepares to read variable within the
// window.
func NewScanner(filePath, variable string, w Window) (*Scanner, error) {
	nc, err := netcdf.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filePath, err)
	}
	s, err := newScanner(nc, variable, w)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	return s, nil
}

func newScanner(nc api.Group, variable string, w Window) (*Scanner, error) {
	s := &Scanner{nc: nc, name: variable}
	var err error
	s.vg, err = nc.GetVarGetter(variable)
	if err != nil {
		return nil, fmt.Errorf("%w: %q (have %v)", ErrVariableNotFound, variable, nc.ListVariables())
	}

	dims := s.vg.Dimensions()
	var latDim, lonDim string
	switch len(dims) {
	case 3:
		if !slices.Contains(timeNames, dims[0]) {
			return nil, fmt.Errorf("variable %q: leading dimension %q is not time", variable, dims[0])
		}
		s.hasTime = true
		latDim, lonDim = dims[1], dims[2]
	case 2:
		latDim, lonDim = dims[0], dims[1]
	default:
		return nil, fmt.Errorf("variable %q: expected 2 or 3 dimensions, got %v", variable, dims)
	}
	if slices.Contains(lonNames, latDim) && slices.Contains(latNames, lonDim) {
		latDim, lonDim = lonDim, latDim
		s.lonFirst = true
	}
	if !slices.Contains(latNames, latDim) || !slices.Contains(lonNames, lonDim) {
		return nil, fmt.Errorf("variable %q: unrecognised dimensions %v", variable, dims)
	}

	s.lat, _, err = dimValues(nc, latDim)
	if err != nil {
		return nil, err
	}
	s.lon, _, err = dimValues(nc, lonDim)
	if err != nil {
		return nil, err
	}
	s.latIdx, s.lonIdx, err = w.Select(s.lat, s.lon)
	if err != nil {
		return nil, err
	}

	if s.hasTime {
		raw, tv, err := dimValues(nc, dims[0])
		if err != nil {
			return nil, err
		}
		units, _ := attrString(tv.Attributes(), "units")
		calendar, _ := attrString(tv.Attributes(), "calendar")
		s.ts, err = DecodeTime(raw, units, calendar)
		if err != nil {
			return nil, fmt.Errorf("time axis: %w", err)
		}
	}

	s.packing = packing{scale: 1}
	attrs := s.vg.Attributes()
	if v, ok := attrFloat(attrs, "scale_factor"); ok {
		s.packing.scale = v
	}
	if v, ok := attrFloat(attrs, "add_offset"); ok {
		s.packing.offset = v
	}
	for _, key := range []string{"_FillValue", "missing_value"} {
		if v, ok := attrFloat(attrs, key); ok {
			s.packing.fill = append(s.packing.fill, v)
		}
	}
	return s, nil
}

// dimValues reads a coordinate variable as float64 whatever its stored
// type.
func dimValues(nc api.Group, dimName string) ([]float64, api.VarGetter, error) {
	dim, err := nc.GetVarGetter(dimName)
	if err != nil {
		return nil, nil, fmt.Errorf("coordinate %q: %w", dimName, err)
	}
	v, err := dim.Values()
	if err != nil {
		return nil, nil, fmt.Errorf("coordinate %q: %w", dimName, err)
	}
	vals, ok := floats(v)
	if !ok {
		return nil, nil, fmt.Errorf("coordinate %q: unsupported type %T", dimName, v)
	}
	return vals, dim, nil
}

func floats(v any) ([]float64, bool) {
	switch x := v.(type) {
	case []float64:
		return x, true
	case []float32:
		return convert(x), true
	case []int32:
		return convert(x), true
	case []int16:
		return convert(x), true
	case []int64:
		return convert(x), true
	case []int8:
		return convert(x), true
	case float64:
		return []float64{x}, true
	case float32:
		return []float64{float64(x)}, true
	}
	return nil, false
}

func convert[T float32 | int8 | int16 | int32 | int64](vs []T) []float64 {
	out := make([]float64, len(vs))
	for i, v := range vs {
		out[i] = float64(v)
	}
	return out
}

func attrFloat(am api.AttributeMap, key string) (float64, bool) {
	if am == nil {
		return 0, false
	}
	v, ok := am.Get(key)
	if !ok {
		return 0, false
	}
	vals, ok := floats(v)
	if !ok || len(vals) == 0 {
		return 0, false
	}
	return vals[0], true
}

func attrString(am api.AttributeMap, key string) (string, bool) {
	if am == nil {
		return "", false
	}
	v, ok := am.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Close closes the scanner.
func (s *Scanner) Close() {
	s.nc.Close()
}

// Summary returns the summary information about the dataset suitable for
// logging.
func (s *Scanner) Summary() []any {
	return []any{
		"var", s.name,
		"tsCnt", s.Steps(),
		"laCnt", len(s.latIdx),
		"loCnt", len(s.lonIdx),
		"cellCnt", s.Steps() * len(s.latIdx) * len(s.lonIdx),
	}
}

// Steps returns the number of time steps in the file.
func (s *Scanner) Steps() int {
	if !s.hasTime {
		return 1
	}
	return len(s.ts)
}

// Lat returns the selected latitudes.
func (s *Scanner) Lat() []float64 { return pick(s.lat, s.latIdx) }

// Lon returns the selected longitudes.
func (s *Scanner) Lon() []float64 { return pick(s.lon, s.lonIdx) }

// Time returns the decoded time axis; it is nil for a 2-D variable.
func (s *Scanner) Time() []time.Time { return s.ts }

// Scan reads the windowed cells of the next time step.
func (s *Scanner) Scan() bool {
	if s.err != nil || s.pos >= s.Steps() {
		return false
	}
	var raw any
	var err error
	if s.hasTime {
		raw, err = s.vg.GetSlice(int64(s.pos), int64(s.pos+1))
	} else {
		raw, err = s.vg.Values()
	}
	if err != nil {
		s.err = fmt.Errorf("%s step %d: %w", s.name, s.pos, err)
		return false
	}
	plane, err := firstPlane(raw)
	if err != nil {
		s.err = fmt.Errorf("%s step %d: %w", s.name, s.pos, err)
		return false
	}
	s.step = make([]float64, len(s.latIdx)*len(s.lonIdx))
	k := 0
	for _, la := range s.latIdx {
		for _, lo := range s.lonIdx {
			var v float64
			if s.lonFirst {
				v = plane(lo, la)
			} else {
				v = plane(la, lo)
			}
			s.step[k] = s.packing.decode(v)
			k++
		}
	}
	s.pos++
	return true
}

// firstPlane returns an accessor over the first 2-D plane of a 2-D or 3-D
// slice returned by the NetCDF reader.
func firstPlane(v any) (func(i, j int) float64, error) {
	switch x := v.(type) {
	case [][][]float32:
		return planeOf(x[0]), nil
	case [][][]float64:
		return planeOf(x[0]), nil
	case [][][]int16:
		return planeOf(x[0]), nil
	case [][][]int32:
		return planeOf(x[0]), nil
	case [][]float32:
		return planeOf(x), nil
	case [][]float64:
		return planeOf(x), nil
	case [][]int16:
		return planeOf(x), nil
	case [][]int32:
		return planeOf(x), nil
	}
	return nil, fmt.Errorf("unsupported slice type %T", v)
}

func planeOf[T float32 | float64 | int16 | int32](p [][]T) func(i, j int) float64 {
	return func(i, j int) float64 { return float64(p[i][j]) }
}

// Step returns the cells read by the last Scan, row-major [lat][lon].
// The function transfers ownership of the slice to the caller.
func (s *Scanner) Step() []float64 {
	step := s.step
	s.step = nil
	return step
}

// Err returns the first error encountered by Scan.
func (s *Scanner) Err() error {
	return s.err
}

// Open reads the whole windowed variable into a Grid.
func Open(filePath, variable string, w Window) (*Grid, error) {
	s, err := NewScanner(filePath, variable, w)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	g := New(variable, s.Lon(), s.Lat(), s.Time())
	t := 0
	for s.Scan() {
		copy(g.Step(t), s.Step())
		t++
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return g, nil
}
