// Package gapfill implements the stage that fills holes in a small radius
// raster with values from larger radius rasters.
package gapfill

import (
	"context"
	"fmt"
	"time"

	"github.com/applied-geosolutions/lidar2dems/pkg/pipeline"
	"github.com/applied-geosolutions/lidar2dems/pkg/ports"
)

// Stage runs a GapFiller unless its output already exists.
type Stage struct {
	filler ports.GapFiller
	fs     ports.FileSystem
	logger ports.Logger
}

// NewStage creates a new gap-fill stage.
func NewStage(filler ports.GapFiller, fs ports.FileSystem, logger ports.Logger) *Stage {
	return &Stage{
		filler: filler,
		fs:     fs,
		logger: logger,
	}
}

// Execute merges input.Inputs into input.Output. Inputs are ordered from the
// smallest radius, whose values win, to the largest.
func (s *Stage) Execute(ctx context.Context, input pipeline.GapFillInput) (pipeline.GapFillResult, error) {
	result := pipeline.GapFillResult{Path: input.Output}
	if len(input.Inputs) == 0 {
		return result, fmt.Errorf("no rasters to gap-fill %s", input.Output)
	}

	if !input.Overwrite {
		exists, err := s.fs.Exists(input.Output)
		if err != nil {
			return result, fmt.Errorf("check %s: %w", input.Output, err)
		}
		if exists {
			result.Skipped = true
			return result, nil
		}
	}

	start := time.Now()
	s.logger.Info("Gap-filling %s from %d rasters", pipeline.DisplayPath(input.Output), len(input.Inputs))
	if err := s.filler.GapFill(ctx, input.Inputs, input.Output, input.Site); err != nil {
		return result, fmt.Errorf("gap-fill %s: %w", input.Output, err)
	}
	s.logger.Info("Created %s in %s", pipeline.DisplayPath(input.Output), time.Since(start).Round(time.Millisecond))
	return result, nil
}
