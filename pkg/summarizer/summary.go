// Package summarizer provides summary generation for DEM runs.
package summarizer

import (
	"time"

	"github.com/applied-geosolutions/lidar2dems/pkg/pipeline"
)

// Summary contains all data collected during one l2d invocation.
type Summary struct {
	// Metadata
	GeneratedAt time.Time
	Duration    time.Duration

	// Settings shared by every run
	Settings Settings

	// One entry per site and DEM type
	Runs []Run
}

// Settings contains the rasterization configuration.
type Settings struct {
	Resolution float64
	Radii      []string
	GapFill    bool
	Buffer     float64
	Filters    pipeline.Filters
}

// Run describes the products created for one site and DEM type.
type Run struct {
	Site     string // Empty without a site
	DEMType  pipeline.DEMType
	Inputs   int
	Products []ProductInfo
	Skipped  int    // Radii whose products all existed
	Error    string // Set when the run failed
}

// ProductInfo describes one final raster.
type ProductInfo struct {
	Product   pipeline.Product
	Path      string
	GapFilled bool
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithSettings sets the rasterization settings.
func (b *Builder) WithSettings(settings Settings) *Builder {
	b.summary.Settings = settings
	return b
}

// WithDuration sets the total wall time.
func (b *Builder) WithDuration(d time.Duration) *Builder {
	b.summary.Duration = d
	return b
}

// AddResult records a completed multi-radius run.
func (b *Builder) AddResult(input pipeline.DEMsInput, result pipeline.DEMsResult) *Builder {
	run := newRun(input)
	filled := make(map[pipeline.Product]bool, len(result.GapFilled))
	for _, p := range result.GapFilled {
		filled[p] = true
	}
	for _, p := range result.Products.Products() {
		run.Products = append(run.Products, ProductInfo{
			Product:   p,
			Path:      result.Products[p],
			GapFilled: filled[p],
		})
	}
	for _, r := range result.PerRadius {
		if r.Skipped {
			run.Skipped++
		}
	}
	b.summary.Runs = append(b.summary.Runs, run)
	return b
}

// AddFailure records a run that returned err.
func (b *Builder) AddFailure(input pipeline.DEMsInput, err error) *Builder {
	run := newRun(input)
	run.Error = err.Error()
	b.summary.Runs = append(b.summary.Runs, run)
	return b
}

func newRun(input pipeline.DEMsInput) Run {
	run := Run{
		DEMType: input.DEMType,
		Inputs:  len(input.Filenames),
	}
	if input.Site != nil {
		run.Site = input.Site.Basename()
	}
	return run
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
