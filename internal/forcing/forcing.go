// Package forcing reads the atmospheric pCO2 trajectories that drive the
// historical and SSP runs.
package forcing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rtm0/ctacid/internal/scenario"
	"github.com/rtm0/ctacid/internal/stats"
)

// Column names read from the forcing files; other columns are ignored.
const (
	YearColumn  = "year"
	ValueColumn = "data_mean_global"
)

// MaxYear is the last year kept from a trajectory.
const MaxYear = 2100

var ErrMissingColumn = errors.New("forcing column missing")

// Series is a yearly global-mean pCO2 trajectory in ppm.
type Series struct {
	Scenario scenario.Scenario
	Year     []float64
	Value    []float64
}

// Summary holds the extremes of a trajectory and the years they occur.
type Summary struct {
	Max     float64
	MaxYear float64
	Min     float64
	MinYear float64
}

func (s Summary) String() string {
	return fmt.Sprintf("max %.3f ppm in %g, min %.3f ppm in %g", s.Max, s.MaxYear, s.Min, s.MinYear)
}

// Read parses a forcing CSV keeping the rows with year <= maxYear.
func Read(r io.Reader, maxYear float64) (*Series, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	yi, vi := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(h) {
		case YearColumn:
			yi = i
		case ValueColumn:
			vi = i
		}
	}
	if yi < 0 || vi < 0 {
		return nil, fmt.Errorf("%w: need %q and %q, have %v", ErrMissingColumn, YearColumn, ValueColumn, header)
	}

	s := &Series{}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if max(yi, vi) >= len(rec) {
			return nil, fmt.Errorf("line %d: short record", line)
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(rec[yi]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: year: %w", line, err)
		}
		if y > maxYear {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[vi]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %s: %w", line, ValueColumn, err)
		}
		s.Year = append(s.Year, y)
		s.Value = append(s.Value, v)
	}
	return s, nil
}

// Load reads the forcing file of a scenario from dir.
func Load(dir string, sc scenario.Scenario) (*Series, error) {
	path := filepath.Join(dir, sc.ForcingFile())
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := Read(f, MaxYear)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.Scenario = sc
	return s, nil
}

// Summarize returns the extremes of the trajectory.
func (s *Series) Summarize() (Summary, error) {
	e, ok := stats.FindExtremes(s.Value)
	if !ok {
		return Summary{}, fmt.Errorf("%s: no forcing values", s.Scenario)
	}
	return Summary{
		Max:     e.Max,
		MaxYear: s.Year[e.MaxIdx],
		Min:     e.Min,
		MinYear: s.Year[e.MinIdx],
	}, nil
}
