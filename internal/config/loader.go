package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/rtm0/ctacid/internal/stats"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CTACID_"

var ErrInvalidConfig = errors.New("invalid config")

// Load builds a Config by layering defaults, an optional YAML file and
// env vars. Order of precedence (low -> high):
//  1. defaults (New())
//  2. file: path, or CTACID_CONFIG when path is empty
//  3. env (prefix CTACID_)
func Load(path string) (*Config, error) {
	base := New()
	k := koanf.New(".")

	if path == "" {
		path = os.Getenv(EnvPrefix + "CONFIG")
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	// CTACID_BAND_Z -> band_z; underscores are kept to match the flat tags.
	// List keys take comma separated values.
	envProvider := env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.TrimPrefix(strings.ToLower(key), strings.ToLower(EnvPrefix))
		if key == "scenarios" {
			return key, strings.FieldsFunc(value, func(r rune) bool { return r == ',' || r == ' ' })
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings every pipeline relies on.
func (c *Config) Validate() error {
	var errs []error
	if c.LonMin > c.LonMax || c.LatMin > c.LatMax {
		errs = append(errs, errors.New("window minimum exceeds maximum"))
	}
	if c.RegionLonMin > c.RegionLonMax || c.RegionLatMin > c.RegionLatMax {
		errs = append(errs, errors.New("relief region minimum exceeds maximum"))
	}
	if c.MapLonMin > c.MapLonMax || c.MapLatMin > c.MapLatMax {
		errs = append(errs, errors.New("map extent minimum exceeds maximum"))
	}
	if _, err := c.SelectedScenarios(); err != nil {
		errs = append(errs, err)
	}
	if c.Alpha <= 0 || c.Alpha >= 1 {
		errs = append(errs, fmt.Errorf("alpha %g outside (0, 1)", c.Alpha))
	}
	if _, err := stats.ParseAdjustment(c.Adjust); err != nil {
		errs = append(errs, err)
	}
	if c.BandZ < 0 {
		errs = append(errs, errors.New("band_z must not be negative"))
	}
	if c.AnomalyMin >= c.AnomalyMax {
		errs = append(errs, errors.New("anomaly_min must be below anomaly_max"))
	}
	if c.AnomalyBins < 1 {
		errs = append(errs, errors.New("anomaly_bins must be positive"))
	}
	if c.DPI < 1 || c.FigWidth <= 0 || c.FigHeight <= 0 {
		errs = append(errs, errors.New("figure size and dpi must be positive"))
	}
	if c.Concurrency < 1 {
		errs = append(errs, errors.New("concurrency must be positive"))
	}
	if c.RecsPerInsert < 1 {
		errs = append(errs, errors.New("recs_per_insert must be positive"))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log_format %q", c.LogFormat))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
