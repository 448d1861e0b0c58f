// Package ground implements the ground classification stage.
//
// PDAL pipelines cannot express progressive morphological filtering, so the
// stage runs "pdal ground" directly on an already merged file.
package ground

import (
	"context"
	"errors"
	"fmt"

	"github.com/applied-geosolutions/lidar2dems/pkg/executor"
	"github.com/applied-geosolutions/lidar2dems/pkg/pipeline"
	"github.com/applied-geosolutions/lidar2dems/pkg/ports"
)

// ErrClassifyFailed is returned when pdal did not produce the classified file.
var ErrClassifyFailed = errors.New("ground: classified file was not created")

// Executor runs "pdal ground".
type Executor interface {
	Ground(ctx context.Context, args executor.GroundArgs, verbose bool) (executor.Result, error)
}

// Stage classifies ground points in one LAS file.
type Stage struct {
	exec   Executor
	fs     ports.FileSystem
	logger ports.Logger
}

// NewStage creates a new ground stage.
func NewStage(exec Executor, fs ports.FileSystem, logger ports.Logger) *Stage {
	return &Stage{
		exec:   exec,
		fs:     fs,
		logger: logger,
	}
}

// Execute classifies input.Input into input.Output. The output must exist
// afterwards even when pdal reports success.
func (s *Stage) Execute(ctx context.Context, input pipeline.GroundInput) (pipeline.GroundResult, error) {
	result := pipeline.GroundResult{}

	args := executor.GroundArgs{
		Input:  input.Input,
		Output: input.Output,
		Params: input.Params,
	}
	if _, err := s.exec.Ground(ctx, args, input.Verbose); err != nil {
		return result, fmt.Errorf("classify %s: %w", input.Output, err)
	}

	exists, err := s.fs.Exists(input.Output)
	if err != nil {
		return result, fmt.Errorf("check %s: %w", input.Output, err)
	}
	if !exists {
		return result, fmt.Errorf("%w: %s", ErrClassifyFailed, input.Output)
	}

	result.Path = input.Output
	return result, nil
}
