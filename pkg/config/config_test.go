package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/applied-geosolutions/lidar2dems/pkg/pipeline"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "l2d.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	assert.NoError(t, cfg.Validate())
	assert.True(t, cfg.TrustExitCode)
	assert.Equal(t, 0.1, cfg.Resolution)
	assert.Equal(t, []string{"0.56"}, cfg.Radii)
	assert.Equal(t, 20.0, cfg.Buffer)
	assert.Equal(t, 20, cfg.Filters.OutlierMeanK)
	assert.Equal(t, pipeline.DefaultGroundParams(), cfg.GroundParams())
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
pdal_path: /opt/pdal/bin/pdal
resolution: 0.5
radii: ["0.56", "1.41", "2.50"]
gapfill: true
filters:
  maxsd: 2.5
  maxz: 400
ground:
  slope: 0.5
  approximate: true
products:
  dsm: [den, max, mean]
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "/opt/pdal/bin/pdal", cfg.PDALPath)
	assert.Equal(t, 0.5, cfg.Resolution)
	assert.Equal(t, []string{"0.56", "1.41", "2.50"}, cfg.Radii)
	assert.True(t, cfg.GapFill)

	require.NotNil(t, cfg.Filters.MaxSD)
	assert.Equal(t, 2.5, *cfg.Filters.MaxSD)
	assert.Nil(t, cfg.Filters.MaxAngle)

	params := cfg.GroundParams()
	assert.Equal(t, 0.5, params.Slope)
	assert.Equal(t, 1.0, params.CellSize, "unset values keep defaults")
	assert.True(t, params.Approximate)

	products, err := cfg.ProductsFor(pipeline.DSM)
	require.NoError(t, err)
	assert.Equal(t, []pipeline.Product{pipeline.ProductDensity, pipeline.ProductMax, pipeline.ProductMean}, products)

	products, err = cfg.ProductsFor(pipeline.DTM)
	require.NoError(t, err)
	assert.Nil(t, products)
}

func TestLoadFromFile_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "radii: [unterminated"},
		{"zero resolution", "resolution: 0"},
		{"empty radii", "radii: []"},
		{"unknown dem type", "products:\n  chm: [max]"},
		{"unknown product", "products:\n  dsm: [median]"},
		{"product not available for type", "products:\n  density: [idw]"},
		{"zero jobs", "jobs: 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfig_ExecutorOptions(t *testing.T) {
	cfg := Defaults()
	cfg.PDALPath = "/usr/local/bin/pdal"
	cfg.TrustExitCode = false

	opts := cfg.ExecutorOptions()
	assert.Equal(t, "/usr/local/bin/pdal", opts.PDALPath)
	assert.False(t, opts.TrustExitCode)
}

func TestConfig_ToDEMsInput(t *testing.T) {
	cfg := Defaults()
	cfg.Radii = []string{"0.5", "1.0"}
	cfg.OutDir = "/out"
	cfg.Suffix = "_test"
	cfg.GapFill = true
	site := &pipeline.Site{Name: "plot1", WKT: "POLYGON ((0 0, 1 0, 1 1, 0 0))"}

	input, err := cfg.ToDEMsInput(pipeline.DTM, []string{"a.las"}, site)
	require.NoError(t, err)

	assert.Equal(t, pipeline.DTM, input.DEMType)
	assert.Equal(t, []string{"0.5", "1.0"}, input.Radii)
	assert.Equal(t, "0.5", input.Radius)
	assert.True(t, input.GapFill)
	assert.Equal(t, site, input.Site)
	assert.Equal(t, "/out", input.OutDir)
	assert.Equal(t, "_test", input.Suffix)
	assert.Nil(t, input.Products)
	assert.Equal(t, 20, input.Filters.OutlierMeanK)
}
