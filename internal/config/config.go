// Package config defines generator configuration structures and loading hooks.
//
// Conventions:
// - New() builds a Config with the defaults of the tutorial dataset.
// - Load layers a YAML file and the environment on top of those defaults.
// - Validation errors wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"runtime"
	"slices"

	"github.com/okian/kappagen/internal/domain/distribution"
	"github.com/okian/kappagen/internal/domain/kappa"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// OutputDir is the directory every dataset file is written to.
	OutputDir string `koanf:"output_dir"`

	// Workers bounds concurrent map generation and smoothing fan-out.
	Workers int `koanf:"workers"`

	// MetricsFile, when set, receives a Prometheus textfile dump after a run.
	MetricsFile string `koanf:"metrics_file"`

	// Large catalogue.
	CatalogueSize         int     `koanf:"catalogue_size"`
	CatalogueAreaDeg2     float64 `koanf:"catalogue_area_deg2"`
	CatalogueSeed         int64   `koanf:"catalogue_seed"`
	CatalogueRedshiftDist string  `koanf:"catalogue_redshift_dist"`
	CatalogueSizeDist     string  `koanf:"catalogue_size_dist"`

	// Convergence map grid.
	MapNsides  []int     `koanf:"map_nsides"`
	MapSources []float64 `koanf:"map_sources"`
	MapSeed    int64     `koanf:"map_seed"`

	// Spectroscopic/photometric pair.
	RedshiftCatalogueSize     int     `koanf:"redshift_catalogue_size"`
	RedshiftCatalogueAreaDeg2 float64 `koanf:"redshift_catalogue_area_deg2"`
	RedshiftCatalogueSeed     int64   `koanf:"redshift_catalogue_seed"`
}

// New creates a Config with the defaults of the tutorial dataset.
func New() *Config {
	return &Config{
		LogLevel:                  "info",
		OutputDir:                 "data",
		Workers:                   runtime.NumCPU(),
		CatalogueSize:             50_000,
		CatalogueAreaDeg2:         100,
		CatalogueSeed:             42,
		CatalogueRedshiftDist:     "gamma",
		CatalogueSizeDist:         "lognormal",
		MapNsides:                 []int{128, 256, 512},
		MapSources:                []float64{0.5, 1.0, 1.5, 2.0},
		MapSeed:                   42,
		RedshiftCatalogueSize:     10_000,
		RedshiftCatalogueAreaDeg2: 25,
		RedshiftCatalogueSeed:     123,
	}
}

var logLevels = []string{"debug", "info", "warn", "warning", "error"}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if !slices.Contains(logLevels, c.LogLevel) {
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("%w: output_dir must not be empty", ErrInvalidConfig)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidConfig, c.Workers)
	}
	if c.CatalogueSize <= 0 || c.RedshiftCatalogueSize <= 0 {
		return fmt.Errorf("%w: catalogue sizes must be positive", ErrInvalidConfig)
	}
	if c.CatalogueAreaDeg2 <= 0 || c.RedshiftCatalogueAreaDeg2 <= 0 {
		return fmt.Errorf("%w: catalogue areas must be positive", ErrInvalidConfig)
	}
	if _, err := distribution.ParseRedshiftKind(c.CatalogueRedshiftDist); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := distribution.ParseSizeKind(c.CatalogueSizeDist); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := kappa.ValidateGrid(c.MapNsides, c.MapSources); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
