package pdal

import (
	"path/filepath"

	"github.com/applied-geosolutions/lidar2dems/pkg/pipeline"
)

// DefaultOutlierMeanK is the neighbour count used by the outlier filter.
const DefaultOutlierMeanK = 20

// groundClass is the LAS classification code for ground points.
const groundClass = 2

// DEMOptions describes a rasterization pipeline.
type DEMOptions struct {
	Filenames   []string
	DEMType     pipeline.DEMType
	Radius      string
	Resolution  float64
	OutputBase  string             // Absolute path without product and extension
	Products    []pipeline.Product // Only the first is written
	Filters     pipeline.Filters
	CropPolygon string // Already buffered WKT; empty for no crop
}

// MergeOptions describes a pipeline that merges LAS files into one.
type MergeOptions struct {
	Filenames   []string
	Output      string
	Decimation  *int
	CropPolygon string
}

// NewDEMPipeline builds readers, filters and a writers.gdal stage.
// writers.gdal produces one raster per pipeline, so only the first product is
// written; request products one at a time to get several rasters.
func NewDEMPipeline(opts DEMOptions) Pipeline {
	stages := readers(opts.Filenames)

	if opts.CropPolygon != "" {
		stages = append(stages, FilterCrop{Polygon: opts.CropPolygon})
	}

	switch opts.DEMType {
	case pipeline.DTM:
		stages = append(stages, FilterRange{Limits: Equal("Classification", groundClass)})
	case pipeline.DSM:
		stages = append(stages, FilterRange{Limits: AtMost("Classification", groundClass)})
	}

	stages = append(stages, filters(opts.Filters)...)

	if opts.Filters.Decimation != nil {
		stages = append(stages, FilterDecimation{Step: *opts.Filters.Decimation})
	}

	if len(opts.Products) > 0 {
		product := opts.Products[0]
		stages = append(stages, WriterGDAL{
			Resolution: opts.Resolution,
			Radius:     opts.Radius,
			Filename:   pipeline.ProductPath(opts.OutputBase, product),
			OutputType: product.OutputType(),
		})
	}

	return Pipeline{Stages: stages}
}

// NewMergePipeline builds readers, an optional crop and decimation, and a
// writers.las stage.
func NewMergePipeline(opts MergeOptions) Pipeline {
	stages := readers(opts.Filenames)
	if opts.CropPolygon != "" {
		stages = append(stages, FilterCrop{Polygon: opts.CropPolygon})
	}
	if opts.Decimation != nil {
		stages = append(stages, FilterDecimation{Step: *opts.Decimation})
	}
	stages = append(stages, WriterLAS{Filename: opts.Output})
	return Pipeline{Stages: stages}
}

// readers returns one reader per file followed by a merge when there are
// several. Paths are made absolute so pdal's working directory is irrelevant.
func readers(filenames []string) []Stage {
	stages := make([]Stage, 0, len(filenames)+1)
	for _, f := range filenames {
		if abs, err := filepath.Abs(f); err == nil {
			f = abs
		}
		stages = append(stages, ReaderLAS{Filename: f})
	}
	if len(filenames) > 1 {
		stages = append(stages, FilterMerge{})
	}
	return stages
}

// filters returns the optional point filters in execution order:
// return number, scan angle, elevation, outliers.
func filters(f pipeline.Filters) []Stage {
	var stages []Stage
	if f.ReturnNum != nil {
		stages = append(stages, FilterRange{Limits: Equal("ReturnNum", float64(*f.ReturnNum))})
	}
	if f.MaxAngle != nil {
		stages = append(stages, FilterRange{Limits: Between("ScanAngleRank", -*f.MaxAngle, *f.MaxAngle)})
	}
	if f.MaxZ != nil {
		stages = append(stages, FilterRange{Limits: AtMost("Z", *f.MaxZ)})
	}
	if f.MaxSD != nil {
		meanK := f.OutlierMeanK
		if meanK <= 0 {
			meanK = DefaultOutlierMeanK
		}
		stages = append(stages, FilterOutlier{
			Method:     "statistical",
			MeanK:      meanK,
			Multiplier: *f.MaxSD,
		})
	}
	return stages
}
