// Package scenario names the CMIP6 experiments and carbonate chemistry
// variables analysed by ctacid, together with the file naming conventions
// that chain the pipelines together.
package scenario

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Scenario is a CMIP6 experiment: the historical run or a future SSP.
type Scenario string

const (
	Historical Scenario = "historical"
	SSP119     Scenario = "ssp119"
	SSP126     Scenario = "ssp126"
	SSP245     Scenario = "ssp245"
	SSP370     Scenario = "ssp370"
	SSP585     Scenario = "ssp585"
)

// All lists the scenarios in canonical order. Historical always comes
// first since it is the baseline every projection is compared against.
var All = []Scenario{Historical, SSP119, SSP126, SSP245, SSP370, SSP585}

var labels = map[Scenario]string{
	Historical: "Historical",
	SSP119:     "SSP 1-1.9",
	SSP126:     "SSP 1-2.6",
	SSP245:     "SSP 2-4.5",
	SSP370:     "SSP 3-7.0",
	SSP585:     "SSP 5-8.5",
}

// Integrated assessment model runs that provide the pCO2 forcing.
var forcingFiles = map[Scenario]string{
	Historical: "historical.csv",
	SSP119:     "IMAGE_ssp119.csv",
	SSP126:     "IMAGE_ssp126.csv",
	SSP245:     "MASSAGE_GLOBIOM_ssp245.csv",
	SSP370:     "AIM_ssp370.csv",
	SSP585:     "REMIND_MAGPIE_ssp585.csv",
}

// Parse converts a scenario id into a Scenario. "his" is accepted as an
// alias of the historical run.
func Parse(s string) (Scenario, error) {
	v := Scenario(strings.ToLower(strings.TrimSpace(s)))
	if v == "his" {
		return Historical, nil
	}
	if _, ok := labels[v]; !ok {
		return "", fmt.Errorf("unknown scenario %q", s)
	}
	return v, nil
}

// Label returns the human readable name used in legends.
func (s Scenario) Label() string {
	if l, ok := labels[s]; ok {
		return l
	}
	return string(s)
}

// ForcingFile returns the name of the pCO2 forcing CSV for the scenario.
func (s Scenario) ForcingFile() string {
	return forcingFiles[s]
}

// Labels returns the labels of the given scenarios in order.
func Labels(ss []Scenario) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = s.Label()
	}
	return out
}

// Statistic distinguishes the ensemble median field from its spread.
type Statistic int

const (
	Median Statistic = iota
	Std
)

// raw returns the token used by the pre-processed input files.
func (st Statistic) raw() string {
	if st == Std {
		return "std"
	}
	return "median"
}

// Suffix returns the token used by processed files and table columns.
func (st Statistic) Suffix() string {
	if st == Std {
		return "std"
	}
	return "med"
}

// Reduction selects how a gridded field becomes a single map.
type Reduction int

const (
	// TimeMean averages every time step.
	TimeMean Reduction = iota
	// YearSlice averages the steps of a single calendar year.
	YearSlice
)

// Variable is one of the carbonate chemistry fields.
type Variable struct {
	// Stem names the raw input files, e.g. "pHT_median_ssp119.nc".
	Stem string
	// Name is the data variable inside the NetCDF files.
	Name string
	// Prefix is the figure prefix of the spatial maps.
	Prefix string
	// Label is the axis label.
	Label string
	// Figure is the figure number of the temporal plots.
	Figure int
	// Reduce is how the spatial maps are derived.
	Reduce Reduction
}

var (
	PH        = Variable{Stem: "pHT", Name: "pHT", Prefix: "ph", Label: "pH", Figure: 3, Reduce: TimeMean}
	Aragonite = Variable{Stem: "Aragonite", Name: "aragonite", Prefix: "ar", Label: "Ω Aragonite", Figure: 4, Reduce: YearSlice}
	Calcite   = Variable{Stem: "Calcite", Name: "calcite", Prefix: "cal", Label: "Ω Calcite", Figure: 5, Reduce: YearSlice}
)

// Variables lists the variables in table column order.
var Variables = []Variable{PH, Aragonite, Calcite}

// Column returns the temporal table column for the statistic.
func (v Variable) Column(st Statistic) string {
	return v.Name + "_" + st.Suffix()
}

// RawPath returns the path of a pre-processed input file.
func RawPath(dir string, s Scenario, v Variable, st Statistic) string {
	return filepath.Join(dir, string(s), fmt.Sprintf("%s_%s_%s.nc", v.Stem, st.raw(), s))
}

// SpatialPath returns the path of a regional subset written by extract.
func SpatialPath(dir string, s Scenario, v Variable, st Statistic) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s_%s.nc", s, strings.ToLower(v.Stem), st.Suffix()))
}

// TemporalPath returns the path of the per-scenario summary table.
func TemporalPath(dir string, s Scenario) string {
	return filepath.Join(dir, string(s)+".csv")
}
