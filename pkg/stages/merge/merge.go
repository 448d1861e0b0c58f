// Package merge implements the stage that merges LAS files into one.
package merge

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/applied-geosolutions/lidar2dems/pkg/executor"
	"github.com/applied-geosolutions/lidar2dems/pkg/pdal"
	"github.com/applied-geosolutions/lidar2dems/pkg/pipeline"
	"github.com/applied-geosolutions/lidar2dems/pkg/ports"
)

// ErrMergeFailed is returned when pdal did not produce the merged file.
var ErrMergeFailed = errors.New("merge: merged file was not created")

// Executor runs pdal pipelines.
type Executor interface {
	Execute(ctx context.Context, p pdal.Pipeline, verbose bool) (executor.Result, error)
}

// Stage merges, and optionally crops and decimates, LAS files.
type Stage struct {
	exec    Executor
	fs      ports.FileSystem
	geom    ports.Geometry
	logger  ports.Logger
	newName func() string
}

// NewStage creates a new merge stage.
func NewStage(exec Executor, fs ports.FileSystem, geom ports.Geometry, logger ports.Logger) *Stage {
	return &Stage{
		exec:    exec,
		fs:      fs,
		geom:    geom,
		logger:  logger,
		newName: uuid.NewString,
	}
}

// Execute writes the merged point cloud and returns its path. Without an
// explicit output the file gets a random name next to the first input.
// Once the output is named, Path is set on failure too, so the caller can
// remove whatever pdal left behind.
func (s *Stage) Execute(ctx context.Context, input pipeline.MergeInput) (pipeline.MergeResult, error) {
	result := pipeline.MergeResult{}
	if len(input.Filenames) == 0 {
		return result, fmt.Errorf("no files to merge")
	}
	start := time.Now()

	output := input.Output
	if output == "" {
		dir, err := filepath.Abs(filepath.Dir(input.Filenames[0]))
		if err != nil {
			return result, fmt.Errorf("resolve merge directory: %w", err)
		}
		output = filepath.Join(dir, s.newName()+".las")
	}
	result.Path = output

	crop, err := pdal.SitePolygon(s.geom, input.Site, input.Buffer)
	if err != nil {
		return result, err
	}

	p := pdal.NewMergePipeline(pdal.MergeOptions{
		Filenames:   input.Filenames,
		Output:      output,
		Decimation:  input.Decimation,
		CropPolygon: crop,
	})
	if _, err := s.exec.Execute(ctx, p, input.Verbose); err != nil {
		return result, fmt.Errorf("merge %d files into %s: %w", len(input.Filenames), output, err)
	}

	exists, err := s.fs.Exists(output)
	if err != nil {
		return result, fmt.Errorf("check %s: %w", output, err)
	}
	if !exists {
		return result, fmt.Errorf("%w: %s", ErrMergeFailed, output)
	}

	s.logger.Info("Created merged file %s in %s", pipeline.DisplayPath(output), time.Since(start).Round(time.Millisecond))
	return result, nil
}
