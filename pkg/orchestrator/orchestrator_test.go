package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/applied-geosolutions/lidar2dems/pkg/adapters/logger"
	"github.com/applied-geosolutions/lidar2dems/pkg/executor"
	"github.com/applied-geosolutions/lidar2dems/pkg/mocks"
	"github.com/applied-geosolutions/lidar2dems/pkg/pipeline"
	"github.com/applied-geosolutions/lidar2dems/pkg/ports"
	"github.com/applied-geosolutions/lidar2dems/pkg/stages/dem"
	"github.com/applied-geosolutions/lidar2dems/pkg/stages/gapfill"
	"github.com/applied-geosolutions/lidar2dems/pkg/stages/ground"
	"github.com/applied-geosolutions/lidar2dems/pkg/stages/merge"
)

type fixture struct {
	orch   *Orchestrator
	fs     *mocks.FileSystem
	pdal   *mocks.PDAL
	runner *mocks.CommandRunner
	filler *mocks.GapFiller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fs := mocks.NewFileSystem()
	pdal := &mocks.PDAL{FS: fs}
	runner := pdal.Runner()
	filler := &mocks.GapFiller{FS: fs}
	geom := &mocks.Geometry{}
	log := logger.NewNoop()

	opts := executor.DefaultOptions()
	opts.PDALPath = "/usr/bin/pdal"
	exec := executor.New(runner, fs, mocks.NewDebugSink(false), log, opts)

	orch := New(
		merge.NewStage(exec, fs, geom, log),
		ground.NewStage(exec, fs, log),
		dem.NewStage(exec, fs, geom, log),
		gapfill.NewStage(filler, fs, log),
		fs,
		log,
	)
	return &fixture{orch: orch, fs: fs, pdal: pdal, runner: runner, filler: filler}
}

func demsInput(radii ...string) pipeline.DEMsInput {
	input := pipeline.DefaultDEMInput()
	input.Filenames = []string{"/data/a.las", "/data/b.las"}
	input.DEMType = pipeline.DSM
	input.OutDir = "/out"
	input.Products = []pipeline.Product{pipeline.ProductDensity, pipeline.ProductMax}
	return pipeline.DEMsInput{DEMInput: input, Radii: radii}
}

func TestOrchestrator_CreateDEM_EndToEnd(t *testing.T) {
	f := newFixture(t)

	input := demsInput("0.56").DEMInput
	input.DEMType = pipeline.DTM
	input.Radius = "0.56"

	result, err := f.orch.CreateDEM(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, pipeline.ProductSet{
		pipeline.ProductDensity: "/out/dtm_r0.56.den.tif",
		pipeline.ProductMax:     "/out/dtm_r0.56.max.tif",
	}, result.Products)

	for i, doc := range f.pdal.Documents {
		var readers, merges, ranges, writers int
		for _, stage := range doc["pipeline"] {
			switch stage["type"] {
			case "readers.las":
				readers++
			case "filters.merge":
				merges++
			case "filters.range":
				ranges++
				assert.Equal(t, "Classification[2:2]", stage["limits"])
			case "writers.gdal":
				writers++
			}
		}
		assert.Equal(t, 2, readers, "document %d", i)
		assert.Equal(t, 1, merges, "document %d", i)
		assert.Equal(t, 1, ranges, "document %d", i)
		assert.Equal(t, 1, writers, "document %d", i)
	}
}

func TestOrchestrator_CreateDEM_Idempotent(t *testing.T) {
	f := newFixture(t)
	input := demsInput("0.56").DEMInput

	first, err := f.orch.CreateDEM(context.Background(), input)
	require.NoError(t, err)
	calls := f.runner.CallCount()
	require.Greater(t, calls, 0)

	second, err := f.orch.CreateDEM(context.Background(), input)
	require.NoError(t, err)
	assert.True(t, second.Skipped)
	assert.Equal(t, first.Products, second.Products)
	assert.Equal(t, calls, f.runner.CallCount(), "second run should not invoke pdal")
}

func TestOrchestrator_CreateDEMs_GapFill(t *testing.T) {
	f := newFixture(t)
	input := demsInput("0.5", "1.0", "2.0")
	input.GapFill = true

	result, err := f.orch.CreateDEMs(context.Background(), input)
	require.NoError(t, err)

	require.Len(t, f.filler.Calls, 1)
	call := f.filler.Calls[0]
	assert.Equal(t, "/out/dsm.max.tif", call.Output)
	assert.Equal(t, []string{
		"/out/dsm_r0.5.max.tif",
		"/out/dsm_r1.0.max.tif",
		"/out/dsm_r2.0.max.tif",
	}, call.Inputs)

	assert.Equal(t, "/out/dsm_r0.5.den.tif", result.Products[pipeline.ProductDensity])
	assert.Equal(t, "/out/dsm.max.tif", result.Products[pipeline.ProductMax])
	assert.Equal(t, []pipeline.Product{pipeline.ProductMax}, result.GapFilled)
	assert.Len(t, result.PerRadius, 3)
}

func TestOrchestrator_CreateDEMs_GapFillSkipsExisting(t *testing.T) {
	f := newFixture(t)
	f.fs.AddFile("/out/dsm.max.tif", nil)
	input := demsInput("0.5", "1.0")
	input.GapFill = true

	result, err := f.orch.CreateDEMs(context.Background(), input)
	require.NoError(t, err)
	assert.Empty(t, f.filler.Calls)
	assert.Empty(t, result.GapFilled)
	assert.Equal(t, "/out/dsm.max.tif", result.Products[pipeline.ProductMax])
}

func TestOrchestrator_CreateDEMs_NoGapFill(t *testing.T) {
	f := newFixture(t)
	input := demsInput("0.5", "1.0")

	result, err := f.orch.CreateDEMs(context.Background(), input)
	require.NoError(t, err)

	assert.Empty(t, f.filler.Calls)
	assert.Equal(t, pipeline.ProductSet{
		pipeline.ProductDensity: "/out/dsm_r0.5.den.tif",
		pipeline.ProductMax:     "/out/dsm_r0.5.max.tif",
	}, result.Products)

	exists, _ := f.fs.Exists("/out/dsm_r1.0.max.tif")
	assert.True(t, exists, "larger radius rasters stay on disk")
}

func TestOrchestrator_CreateDEMs_NoRadius(t *testing.T) {
	f := newFixture(t)
	_, err := f.orch.CreateDEMs(context.Background(), demsInput())
	assert.Error(t, err)
}

func TestOrchestrator_CreateDEMs_GapFillError(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("gdalwarp exited with status 1")
	f.filler.Err = boom
	input := demsInput("0.5", "1.0")
	input.GapFill = true

	_, err := f.orch.CreateDEMs(context.Background(), input)
	assert.ErrorIs(t, err, boom)
}

func TestOrchestrator_Classify(t *testing.T) {
	f := newFixture(t)

	result, err := f.orch.Classify(context.Background(), pipeline.ClassifyInput{
		Filenames: []string{"/data/a.las", "/data/b.las"},
		Output:    "/data/ground.las",
		MergePath: "/data/merged.las",
		Params:    pipeline.DefaultGroundParams(),
	})
	require.NoError(t, err)
	assert.Equal(t, "/data/ground.las", result.Path)

	require.Equal(t, 2, f.runner.CallCount())
	assert.Equal(t, "pipeline", f.runner.Subcommand(0))
	assert.Equal(t, "ground", f.runner.Subcommand(1))

	exists, _ := f.fs.Exists("/data/merged.las")
	assert.False(t, exists, "intermediate file should be removed")
	exists, _ = f.fs.Exists("/data/ground.las")
	assert.True(t, exists)
}

func TestOrchestrator_Classify_RemovesIntermediateOnFailure(t *testing.T) {
	f := newFixture(t)
	f.runner.RunFunc = func(ctx context.Context, cmd ports.Command) (int, error) {
		if cmd.Args[0] == "ground" {
			return 1, nil
		}
		return f.pdal.Run(ctx, cmd)
	}

	_, err := f.orch.Classify(context.Background(), pipeline.ClassifyInput{
		Filenames: []string{"/data/a.las"},
		Output:    "/data/ground.las",
		MergePath: "/data/merged.las",
		Params:    pipeline.DefaultGroundParams(),
	})
	require.Error(t, err)

	assert.Contains(t, f.fs.Removed(), "/data/merged.las")
	exists, _ := f.fs.Exists("/data/merged.las")
	assert.False(t, exists, "intermediate file should be removed after a failed classification")
}

func TestOrchestrator_Classify_MissingOutput(t *testing.T) {
	f := newFixture(t)
	f.runner.RunFunc = func(ctx context.Context, cmd ports.Command) (int, error) {
		if cmd.Args[0] == "ground" {
			return 0, nil
		}
		return f.pdal.Run(ctx, cmd)
	}

	_, err := f.orch.Classify(context.Background(), pipeline.ClassifyInput{
		Filenames: []string{"/data/a.las"},
		Output:    "/data/ground.las",
		MergePath: "/data/merged.las",
		Params:    pipeline.DefaultGroundParams(),
	})
	assert.ErrorIs(t, err, ground.ErrClassifyFailed)
	exists, _ := f.fs.Exists("/data/merged.las")
	assert.False(t, exists)
}

func TestOrchestrator_Classify_MergeFailure(t *testing.T) {
	fs := mocks.NewFileSystem()
	log := logger.NewNoop()
	boom := errors.New("merge interrupted")

	mergeStage := pipeline.StageFunc[pipeline.MergeInput, pipeline.MergeResult](
		func(ctx context.Context, input pipeline.MergeInput) (pipeline.MergeResult, error) {
			fs.AddFile(input.Output, []byte("partial"))
			return pipeline.MergeResult{}, boom
		})
	groundStage := pipeline.StageFunc[pipeline.GroundInput, pipeline.GroundResult](
		func(ctx context.Context, input pipeline.GroundInput) (pipeline.GroundResult, error) {
			t.Fatal("ground stage should not run after a failed merge")
			return pipeline.GroundResult{}, nil
		})

	orch := New(mergeStage, groundStage, nil, nil, fs, log)
	_, err := orch.Classify(context.Background(), pipeline.ClassifyInput{
		Filenames: []string{"/data/a.las"},
		Output:    "/data/ground.las",
		MergePath: "/data/merged.las",
	})
	assert.ErrorIs(t, err, boom)

	exists, _ := fs.Exists("/data/merged.las")
	assert.False(t, exists, "partial intermediate file should be removed")
}

func TestOrchestrator_Classify_RemovesRandomMergeOnFailure(t *testing.T) {
	f := newFixture(t)
	f.pdal.ExitCode = 1

	_, err := f.orch.Classify(context.Background(), pipeline.ClassifyInput{
		Filenames: []string{"/data/a.las"},
		Output:    "/data/ground.las",
		Params:    pipeline.DefaultGroundParams(),
	})
	require.ErrorIs(t, err, executor.ErrNonZeroExit)

	leftovers, err := f.fs.Glob("/data/*.las")
	require.NoError(t, err)
	assert.Empty(t, leftovers, "merged file written by the failed pdal run should be removed")
}
