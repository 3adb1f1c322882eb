// Package temporal holds the per-scenario summary tables: one row per time
// step with the regional mean of every variable's median and spread.
package temporal

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/rtm0/ctacid/internal/grid"
)

// ErrNoColumn is returned when a table lacks a requested column.
var ErrNoColumn = errors.New("no such column")

const (
	timeColumn = "time"
	dateLayout = "2006-01-02"
)

// Table is a time-indexed set of named columns.
type Table struct {
	Time    []time.Time
	names   []string
	columns map[string][]float64
}

// NewTable creates an empty table over the given time axis.
func NewTable(ts []time.Time) *Table {
	return &Table{Time: ts, columns: make(map[string][]float64)}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Time)
}

// Names returns the data column names in insertion order.
func (t *Table) Names() []string {
	return slices.Clone(t.names)
}

// Add appends a column. The column must have one value per row.
func (t *Table) Add(name string, vals []float64) error {
	if len(vals) != t.Len() {
		return fmt.Errorf("column %q has %d values, table has %d rows", name, len(vals), t.Len())
	}
	if name == timeColumn {
		return fmt.Errorf("column name %q is reserved", name)
	}
	if _, ok := t.columns[name]; !ok {
		t.names = append(t.names, name)
	}
	t.columns[name] = vals
	return nil
}

// Column returns the values of a column.
func (t *Table) Column(name string) ([]float64, error) {
	v, ok := t.columns[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoColumn, name)
	}
	return v, nil
}

// Years returns the time axis as decimal years.
func (t *Table) Years() []float64 {
	out := make([]float64, len(t.Time))
	for i, ts := range t.Time {
		out[i] = grid.DecimalYear(ts)
	}
	return out
}

// Write encodes the table as CSV with the time column first.
func (t *Table) Write(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{timeColumn}, t.names...)); err != nil {
		return err
	}
	rec := make([]string, len(t.names)+1)
	for i, ts := range t.Time {
		rec[0] = ts.Format(dateLayout)
		for j, name := range t.names {
			v := t.columns[name][i]
			if math.IsNaN(v) {
				rec[j+1] = ""
				continue
			}
			rec[j+1] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read decodes a CSV table written by Write. The time column may hold
// dates, RFC 3339 timestamps or plain (decimal) years; empty cells are
// read as NaN.
func Read(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	tcol := slices.Index(header, timeColumn)
	if tcol < 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoColumn, timeColumn)
	}
	t := NewTable(nil)
	cols := make([][]float64, len(header))
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		ts, err := parseTime(rec[tcol])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		t.Time = append(t.Time, ts)
		for j, cell := range rec {
			if j == tcol {
				continue
			}
			v := math.NaN()
			if cell != "" {
				if v, err = strconv.ParseFloat(cell, 64); err != nil {
					return nil, fmt.Errorf("line %d column %q: %w", line, header[j], err)
				}
			}
			cols[j] = append(cols[j], v)
		}
	}
	for j, name := range header {
		if j == tcol {
			continue
		}
		if cols[j] == nil {
			cols[j] = []float64{}
		}
		if err := t.Add(name, cols[j]); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func parseTime(s string) (time.Time, error) {
	for _, l := range []string{dateLayout, time.RFC3339, "2006-01-02 15:04:05"} {
		if ts, err := time.Parse(l, s); err == nil {
			return ts, nil
		}
	}
	y, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("unparseable time %q", s)
	}
	ts, err := grid.DecodeTime([]float64{y}, "", "")
	if err != nil {
		return time.Time{}, err
	}
	return ts[0], nil
}

// Save writes the table to path, creating parent directories.
func (t *Table) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := t.Write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// Load reads a table from path.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	t, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}
