// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/applied-geosolutions/lidar2dems/pkg/executor"
	"github.com/applied-geosolutions/lidar2dems/pkg/pipeline"
)

// Config represents the full configuration for l2d.
type Config struct {
	// External tools
	PDALPath      string `yaml:"pdal_path"`
	GdalwarpPath  string `yaml:"gdalwarp_path"`
	TrustExitCode bool   `yaml:"trust_exit_code"`

	// Rasterization
	Resolution float64  `yaml:"resolution"`
	Radii      []string `yaml:"radii"`
	Buffer     float64  `yaml:"buffer"`
	GapFill    bool     `yaml:"gapfill"`
	OutDir     string   `yaml:"outdir"`
	Suffix     string   `yaml:"suffix"`

	// Filters
	Filters FilterConfig `yaml:"filters"`

	// Ground classification
	Ground GroundConfig `yaml:"ground"`

	// Product lists keyed by DEM type; missing types use the built-in defaults
	Products map[string][]string `yaml:"products"`

	// Batch
	Jobs int `yaml:"jobs"`

	// Debug
	Debug    bool   `yaml:"debug"`
	DebugDir string `yaml:"debug_dir"`
}

// FilterConfig represents the optional point filters. Nil means disabled.
type FilterConfig struct {
	Decimation   *int     `yaml:"decimation"`
	MaxSD        *float64 `yaml:"maxsd"`
	OutlierMeanK int      `yaml:"outlier_mean_k"`
	MaxZ         *float64 `yaml:"maxz"`
	MaxAngle     *float64 `yaml:"maxangle"`
	ReturnNum    *int     `yaml:"returnnum"`
}

// GroundConfig represents progressive morphological filter settings.
type GroundConfig struct {
	Slope         float64  `yaml:"slope"`
	CellSize      float64  `yaml:"cellsize"`
	MaxWindowSize *float64 `yaml:"maxwindowsize"`
	MaxDistance   *float64 `yaml:"maxdistance"`
	Approximate   bool     `yaml:"approximate"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	ground := pipeline.DefaultGroundParams()
	dem := pipeline.DefaultDEMInput()
	return Config{
		TrustExitCode: true,

		Resolution: dem.Resolution,
		Radii:      []string{dem.Radius},
		Buffer:     pipeline.DefaultBuffer,
		OutDir:     ".",

		Filters: FilterConfig{
			OutlierMeanK: 20,
		},

		Ground: GroundConfig{
			Slope:         ground.Slope,
			CellSize:      ground.CellSize,
			MaxWindowSize: ground.MaxWindowSize,
			MaxDistance:   ground.MaxDistance,
		},

		Jobs: 1,

		DebugDir: "./debug",
	}
}

// LoadFromFile loads configuration from a YAML file on top of Defaults.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks values that would otherwise fail deep inside a run.
func (c Config) Validate() error {
	if c.Resolution <= 0 {
		return fmt.Errorf("resolution must be positive, got %g", c.Resolution)
	}
	if len(c.Radii) == 0 {
		return fmt.Errorf("at least one radius is required")
	}
	if c.Jobs < 1 {
		return fmt.Errorf("jobs must be at least 1, got %d", c.Jobs)
	}
	for name, codes := range c.Products {
		demType, err := pipeline.ParseDEMType(name)
		if err != nil {
			return fmt.Errorf("products: %w", err)
		}
		products, err := pipeline.ParseProducts(codes)
		if err != nil {
			return fmt.Errorf("products.%s: %w", name, err)
		}
		if err := pipeline.CheckProducts(demType, products); err != nil {
			return fmt.Errorf("products.%s: %w", name, err)
		}
	}
	return nil
}

// ProductsFor returns the configured products for t, or nil to use the
// type's defaults.
func (c Config) ProductsFor(t pipeline.DEMType) ([]pipeline.Product, error) {
	codes, ok := c.Products[string(t)]
	if !ok || len(codes) == 0 {
		return nil, nil
	}
	return pipeline.ParseProducts(codes)
}

// GroundParams converts the ground section to pipeline.GroundParams.
func (c Config) GroundParams() pipeline.GroundParams {
	return pipeline.GroundParams{
		Slope:         c.Ground.Slope,
		CellSize:      c.Ground.CellSize,
		MaxWindowSize: c.Ground.MaxWindowSize,
		MaxDistance:   c.Ground.MaxDistance,
		Approximate:   c.Ground.Approximate,
	}
}

// PipelineFilters converts the filters section to pipeline.Filters.
func (c Config) PipelineFilters() pipeline.Filters {
	return pipeline.Filters{
		Decimation:   c.Filters.Decimation,
		MaxSD:        c.Filters.MaxSD,
		OutlierMeanK: c.Filters.OutlierMeanK,
		MaxZ:         c.Filters.MaxZ,
		MaxAngle:     c.Filters.MaxAngle,
		ReturnNum:    c.Filters.ReturnNum,
	}
}

// ExecutorOptions converts the tool settings to executor.Options.
func (c Config) ExecutorOptions() executor.Options {
	opts := executor.DefaultOptions()
	opts.PDALPath = c.PDALPath
	opts.TrustExitCode = c.TrustExitCode
	return opts
}

// ToDEMsInput builds the multi-radius request for one DEM type.
func (c Config) ToDEMsInput(t pipeline.DEMType, filenames []string, site *pipeline.Site) (pipeline.DEMsInput, error) {
	products, err := c.ProductsFor(t)
	if err != nil {
		return pipeline.DEMsInput{}, err
	}

	input := pipeline.DefaultDEMInput()
	input.Filenames = filenames
	input.DEMType = t
	input.Resolution = c.Resolution
	input.Filters = c.PipelineFilters()
	input.Site = site
	input.Buffer = c.Buffer
	input.Products = products
	input.OutDir = c.OutDir
	input.Suffix = c.Suffix
	input.Radius = c.Radii[0]

	return pipeline.DEMsInput{
		DEMInput: input,
		Radii:    c.Radii,
		GapFill:  c.GapFill,
	}, nil
}
