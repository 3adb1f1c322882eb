// Package config holds the settings shared by every pipeline: where the
// data lives, the analysis window and the figure style.
package config

import (
	"runtime"

	"github.com/rtm0/ctacid/internal/grid"
	"github.com/rtm0/ctacid/internal/scenario"
)

// Marker is a labelled point.
type Marker struct {
	Lon   float64 `koanf:"lon"`
	Lat   float64 `koanf:"lat"`
	Label string  `koanf:"label"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat is text or json.
	LogFormat string `koanf:"log_format"`

	// RawDir holds the pre-processed model output, one directory per
	// scenario.
	RawDir      string `koanf:"raw_dir"`
	SpatialDir  string `koanf:"spatial_dir"`
	TemporalDir string `koanf:"temporal_dir"`
	FigDir      string `koanf:"fig_dir"`
	// RFDir holds the pCO2 forcing CSVs.
	RFDir string `koanf:"rf_dir"`
	// ReliefFile is a local relief grid (NetCDF, variable z or elevation).
	ReliefFile string `koanf:"relief_file"`

	// Analysis window applied by extract.
	LonMin float64 `koanf:"lon_min"`
	LonMax float64 `koanf:"lon_max"`
	LatMin float64 `koanf:"lat_min"`
	LatMax float64 `koanf:"lat_max"`

	// Study area of the relief map.
	RegionLonMin float64 `koanf:"region_lon_min"`
	RegionLonMax float64 `koanf:"region_lon_max"`
	RegionLatMin float64 `koanf:"region_lat_min"`
	RegionLatMax float64 `koanf:"region_lat_max"`
	// ReliefMarkers are points of interest drawn on the relief map.
	ReliefMarkers []Marker `koanf:"relief_markers"`

	// Geographic extent the spatial maps are drawn over. The subsets carry
	// index-like coordinates, so the map axes are spread evenly over it.
	MapLonMin float64 `koanf:"map_lon_min"`
	MapLonMax float64 `koanf:"map_lon_max"`
	MapLatMin float64 `koanf:"map_lat_min"`
	MapLatMax float64 `koanf:"map_lat_max"`

	// Scenarios restricts extract and push to some runs; empty means all.
	Scenarios []string `koanf:"scenarios"`

	// Alpha is the significance level of the Kruskal-Wallis gate.
	Alpha float64 `koanf:"alpha"`
	// Adjust is the Dunn p-value adjustment: bonferroni, holm or none.
	Adjust string `koanf:"adjust"`
	// BandZ scales the std band of the time series figures.
	BandZ float64 `koanf:"band_z"`
	// MapYear is the year sliced for the saturation state maps.
	MapYear int `koanf:"map_year"`

	AnomalyMin  float64 `koanf:"anomaly_min"`
	AnomalyMax  float64 `koanf:"anomaly_max"`
	AnomalyBins int     `koanf:"anomaly_bins"`

	DPI int `koanf:"dpi"`
	// FigWidth and FigHeight are in inches.
	FigWidth  float64 `koanf:"fig_width"`
	FigHeight float64 `koanf:"fig_height"`

	// Concurrency bounds the scenarios processed at once.
	Concurrency int `koanf:"concurrency"`

	// InsertURL is the Victoria Metrics import endpoint used by push.
	InsertURL     string `koanf:"insert_url"`
	MetricPrefix  string `koanf:"metric_prefix"`
	RecsPerInsert int    `koanf:"recs_per_insert"`
}

// New returns a Config with the defaults of the published analysis.
func New() *Config {
	return &Config{
		LogLevel:      "info",
		LogFormat:     "text",
		RawDir:        "../data/pre_processed/acid",
		SpatialDir:    "../data/processed/spa",
		TemporalDir:   "../data/processed/temporal",
		FigDir:        "../figs",
		RFDir:         "../data/rf",
		ReliefFile:    "../data/relief/earth_relief_15s.nc",
		LonMin:        71,
		LonMax:        172,
		LatMin:        65,
		LatMax:        119,
		RegionLonMin:  95,
		RegionLonMax:  191,
		RegionLatMin:  -25,
		RegionLatMax:  30,
		MapLonMin:     95,
		MapLonMax:     196,
		MapLatMin:     -25,
		MapLatMax:     29,
		Alpha:         0.05,
		Adjust:        "bonferroni",
		BandZ:         1.96,
		MapYear:       2100,
		AnomalyMin:    -0.6,
		AnomalyMax:    -0.04,
		AnomalyBins:   7,
		DPI:           300,
		FigWidth:      10,
		FigHeight:     6,
		Concurrency:   runtime.NumCPU(),
		InsertURL:     "http://localhost:8428/write",
		MetricPrefix:  "ctacid",
		RecsPerInsert: 500,
	}
}

// Window returns the extraction window.
func (c *Config) Window() grid.Window {
	return grid.Window{LonMin: c.LonMin, LonMax: c.LonMax, LatMin: c.LatMin, LatMax: c.LatMax}
}

// MapExtent returns the geographic extent of the spatial maps.
func (c *Config) MapExtent() grid.Window {
	return grid.Window{LonMin: c.MapLonMin, LonMax: c.MapLonMax, LatMin: c.MapLatMin, LatMax: c.MapLatMax}
}

// SelectedScenarios parses Scenarios, in canonical order without
// duplicates.
func (c *Config) SelectedScenarios() ([]scenario.Scenario, error) {
	if len(c.Scenarios) == 0 {
		return scenario.All, nil
	}
	want := make(map[scenario.Scenario]bool, len(c.Scenarios))
	for _, id := range c.Scenarios {
		sc, err := scenario.Parse(id)
		if err != nil {
			return nil, err
		}
		want[sc] = true
	}
	var out []scenario.Scenario
	for _, sc := range scenario.All {
		if want[sc] {
			out = append(out, sc)
		}
	}
	return out, nil
}

// Region returns the relief map window.
func (c *Config) Region() grid.Window {
	return grid.Window{LonMin: c.RegionLonMin, LonMax: c.RegionLonMax, LatMin: c.RegionLatMin, LatMax: c.RegionLatMax}
}
