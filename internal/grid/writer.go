package grid

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/batchatco/go-native-netcdf/netcdf/cdf"
	"github.com/batchatco/go-native-netcdf/netcdf/util"
)

// FillValue marks missing cells in files written by Write.
const FillValue float32 = 1e20

func attributes(kv ...string) (api.AttributeMap, error) {
	keys := make([]string, 0, len(kv)/2)
	vals := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		keys = append(keys, kv[i])
		vals[kv[i]] = kv[i+1]
	}
	return util.NewOrderedMap(keys, vals)
}

// Write stores the grid as a classic NetCDF file with lat, lon and (when
// present) time coordinate variables.
func Write(path string, g *Grid) error {
	if len(g.Data) != g.Steps()*g.Cells() {
		return fmt.Errorf("%w: %d values for %dx%dx%d grid", ErrShapeMismatch, len(g.Data), g.Steps(), len(g.Lat), len(g.Lon))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	// the writer refuses to overwrite an existing file
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	cw, err := cdf.OpenWriter(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := addVars(cw, g); err != nil {
		cw.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := cw.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

func addVars(cw *cdf.CDFWriter, g *Grid) error {
	dims := []string{"lat", "lon"}
	if len(g.Time) > 0 {
		attrs, err := attributes("units", TimeUnits, "calendar", TimeCalendar, "standard_name", "time")
		if err != nil {
			return err
		}
		if err := cw.AddVar("time", api.Variable{Values: EncodeTime(g.Time), Dimensions: []string{"time"}, Attributes: attrs}); err != nil {
			return err
		}
		dims = []string{"time", "lat", "lon"}
	}

	attrs, err := attributes("units", "degrees_north", "standard_name", "latitude")
	if err != nil {
		return err
	}
	if err := cw.AddVar("lat", api.Variable{Values: g.Lat, Dimensions: []string{"lat"}, Attributes: attrs}); err != nil {
		return err
	}
	attrs, err = attributes("units", "degrees_east", "standard_name", "longitude")
	if err != nil {
		return err
	}
	if err := cw.AddVar("lon", api.Variable{Values: g.Lon, Dimensions: []string{"lon"}, Attributes: attrs}); err != nil {
		return err
	}

	dataAttrs, err := util.NewOrderedMap([]string{"_FillValue"}, map[string]any{"_FillValue": FillValue})
	if err != nil {
		return err
	}
	var values any
	if len(g.Time) > 0 {
		values = cube(g)
	} else {
		values = plane(g, 0)
	}
	return cw.AddVar(g.Name, api.Variable{Values: values, Dimensions: dims, Attributes: dataAttrs})
}

func plane(g *Grid, t int) [][]float32 {
	out := make([][]float32, len(g.Lat))
	for i := range out {
		row := make([]float32, len(g.Lon))
		for j := range row {
			v := g.At(t, i, j)
			if math.IsNaN(v) {
				row[j] = FillValue
			} else {
				row[j] = float32(v)
			}
		}
		out[i] = row
	}
	return out
}

func cube(g *Grid) [][][]float32 {
	out := make([][][]float32, g.Steps())
	for t := range out {
		out[t] = plane(g, t)
	}
	return out
}
