// Package orchestrator sequences the stages of the classification and DEM
// workflows.
package orchestrator

import (
	"context"
	"fmt"

	"github.com/applied-geosolutions/lidar2dems/pkg/pipeline"
	"github.com/applied-geosolutions/lidar2dems/pkg/ports"
)

// Orchestrator coordinates the execution of the pipeline stages.
type Orchestrator struct {
	mergeStage   pipeline.Stage[pipeline.MergeInput, pipeline.MergeResult]
	groundStage  pipeline.Stage[pipeline.GroundInput, pipeline.GroundResult]
	demStage     pipeline.Stage[pipeline.DEMInput, pipeline.DEMResult]
	gapfillStage pipeline.Stage[pipeline.GapFillInput, pipeline.GapFillResult]
	fs           ports.FileSystem
	logger       ports.Logger
}

// New creates a new Orchestrator.
func New(
	mergeStage pipeline.Stage[pipeline.MergeInput, pipeline.MergeResult],
	groundStage pipeline.Stage[pipeline.GroundInput, pipeline.GroundResult],
	demStage pipeline.Stage[pipeline.DEMInput, pipeline.DEMResult],
	gapfillStage pipeline.Stage[pipeline.GapFillInput, pipeline.GapFillResult],
	fs ports.FileSystem,
	logger ports.Logger,
) *Orchestrator {
	return &Orchestrator{
		mergeStage:   mergeStage,
		groundStage:  groundStage,
		demStage:     demStage,
		gapfillStage: gapfillStage,
		fs:           fs,
		logger:       logger,
	}
}

// Classify merges input.Filenames into an intermediate file and runs ground
// classification on it. The intermediate file is removed before returning,
// whether classification succeeded or not.
func (o *Orchestrator) Classify(ctx context.Context, input pipeline.ClassifyInput) (pipeline.GroundResult, error) {
	o.logger.Info("Classifying %d files into %s", len(input.Filenames), pipeline.DisplayPath(input.Output))

	merged, err := o.mergeStage.Execute(ctx, pipeline.MergeInput{
		Filenames:  input.Filenames,
		Output:     input.MergePath,
		Site:       input.Site,
		Buffer:     input.Buffer,
		Decimation: input.Decimation,
		Verbose:    input.Verbose,
	})
	if err != nil {
		partial := merged.Path
		if partial == "" {
			partial = input.MergePath
		}
		o.removeIntermediate(partial)
		return pipeline.GroundResult{}, fmt.Errorf("merge stage: %w", err)
	}
	defer o.removeIntermediate(merged.Path)

	result, err := o.groundStage.Execute(ctx, pipeline.GroundInput{
		Input:   merged.Path,
		Output:  input.Output,
		Params:  input.Params,
		Verbose: input.Verbose,
	})
	if err != nil {
		return pipeline.GroundResult{}, fmt.Errorf("ground stage: %w", err)
	}
	return result, nil
}

// removeIntermediate deletes path when it exists; failures are only logged.
func (o *Orchestrator) removeIntermediate(path string) {
	if path == "" {
		return
	}
	exists, err := o.fs.Exists(path)
	if err != nil || !exists {
		return
	}
	if err := o.fs.Remove(path); err != nil {
		o.logger.Warn("Failed to remove merged file %s: %s", path, err)
	}
}

// CreateDEM creates the products of one DEM type at one radius.
func (o *Orchestrator) CreateDEM(ctx context.Context, input pipeline.DEMInput) (pipeline.DEMResult, error) {
	result, err := o.demStage.Execute(ctx, input)
	if err != nil {
		return pipeline.DEMResult{}, fmt.Errorf("dem stage: %w", err)
	}
	return result, nil
}

// CreateDEMs runs CreateDEM once per radius.
//
// With GapFill every product except density is merged across radii into a
// final raster without a radius in its name; density always resolves to the
// first radius. Without GapFill every product resolves to the first radius
// and the other rasters stay on disk unreferenced.
func (o *Orchestrator) CreateDEMs(ctx context.Context, input pipeline.DEMsInput) (pipeline.DEMsResult, error) {
	result := pipeline.DEMsResult{Products: make(pipeline.ProductSet)}
	if len(input.Radii) == 0 {
		return result, fmt.Errorf("no radius given")
	}

	sets := make([]pipeline.ProductSet, 0, len(input.Radii))
	for _, radius := range input.Radii {
		demInput := input.DEMInput
		demInput.Radius = radius
		dem, err := o.CreateDEM(ctx, demInput)
		if err != nil {
			return result, err
		}
		result.PerRadius = append(result.PerRadius, dem)
		sets = append(sets, dem.Products)
	}

	series := pipeline.Transpose(sets)
	for _, product := range sets[0].Products() {
		paths := series[product]
		if !input.GapFill || product == pipeline.ProductDensity {
			result.Products[product] = paths[0]
			continue
		}

		output := pipeline.GapFillPath(input.OutDir, input.Site, input.DEMType, input.Suffix, product)
		filled, err := o.gapfillStage.Execute(ctx, pipeline.GapFillInput{
			Inputs:    paths,
			Output:    output,
			Site:      input.Site,
			Overwrite: input.Overwrite,
		})
		if err != nil {
			return result, fmt.Errorf("gapfill stage: %w", err)
		}
		if !filled.Skipped {
			result.GapFilled = append(result.GapFilled, product)
		}
		result.Products[product] = filled.Path
	}

	return result, nil
}
