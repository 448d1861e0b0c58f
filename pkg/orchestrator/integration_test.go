package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/applied-geosolutions/lidar2dems/pkg/adapters/execrunner"
	"github.com/applied-geosolutions/lidar2dems/pkg/adapters/gdalfill"
	"github.com/applied-geosolutions/lidar2dems/pkg/adapters/logger"
	"github.com/applied-geosolutions/lidar2dems/pkg/adapters/nullsink"
	"github.com/applied-geosolutions/lidar2dems/pkg/adapters/osfilesystem"
	"github.com/applied-geosolutions/lidar2dems/pkg/executor"
	"github.com/applied-geosolutions/lidar2dems/pkg/mocks"
	"github.com/applied-geosolutions/lidar2dems/pkg/pipeline"
	"github.com/applied-geosolutions/lidar2dems/pkg/stages/dem"
	"github.com/applied-geosolutions/lidar2dems/pkg/stages/gapfill"
	"github.com/applied-geosolutions/lidar2dems/pkg/stages/ground"
	"github.com/applied-geosolutions/lidar2dems/pkg/stages/merge"
)

// fakePDAL touches the writer filename of a pipeline, or the -o argument of
// "pdal ground".
const fakePDAL = `#!/bin/sh
case "$1" in
pipeline)
  out=$(grep -o '"filename":"[^"]*"' "$3" | tail -n 1 | sed 's/"filename":"\(.*\)"/\1/')
  touch "$out"
  ;;
ground)
  shift
  while [ $# -gt 0 ]; do
    if [ "$1" = "-o" ]; then touch "$2"; fi
    shift
  done
  ;;
esac
`

// fakeGdalwarp touches its last argument.
const fakeGdalwarp = `#!/bin/sh
for last; do :; done
touch "$last"
`

func writeScript(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0755))
	return path
}

func TestIntegration_ClassifyThenDEMs(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	dir := t.TempDir()
	tmp := filepath.Join(dir, "tmp")
	out := filepath.Join(dir, "dems")
	require.NoError(t, os.MkdirAll(tmp, 0755))
	for _, name := range []string{"a.las", "b.las"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}
	pdalPath := writeScript(t, dir, "pdal", fakePDAL)
	gdalwarpPath := writeScript(t, dir, "gdalwarp", fakeGdalwarp)

	fs := osfilesystem.NewWithTempDir(tmp)
	runner := execrunner.New()
	geom := &mocks.Geometry{}
	log := logger.NewNoop()

	opts := executor.DefaultOptions()
	opts.PDALPath = pdalPath
	exec := executor.New(runner, fs, nullsink.New(), log, opts)

	orch := New(
		merge.NewStage(exec, fs, geom, log),
		ground.NewStage(exec, fs, log),
		dem.NewStage(exec, fs, geom, log),
		gapfill.NewStage(gdalfill.New(gdalwarpPath, runner, fs, log), fs, log),
		fs,
		log,
	)
	ctx := context.Background()

	classified := filepath.Join(dir, "ground.las")
	_, err := orch.Classify(ctx, pipeline.ClassifyInput{
		Filenames: []string{filepath.Join(dir, "a.las"), filepath.Join(dir, "b.las")},
		Output:    classified,
		Params:    pipeline.DefaultGroundParams(),
	})
	require.NoError(t, err)
	assert.FileExists(t, classified)

	las, err := filepath.Glob(filepath.Join(dir, "*.las"))
	require.NoError(t, err)
	assert.Len(t, las, 3, "merged intermediate should be removed: %v", las)

	input := pipeline.DefaultDEMInput()
	input.Filenames = []string{classified}
	input.DEMType = pipeline.DTM
	input.OutDir = out
	input.Products = []pipeline.Product{pipeline.ProductDensity, pipeline.ProductMin}

	result, err := orch.CreateDEMs(ctx, pipeline.DEMsInput{
		DEMInput: input,
		Radii:    []string{"0.5", "1.0"},
		GapFill:  true,
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(out, "dtm_r0.5.den.tif"), result.Products[pipeline.ProductDensity])
	assert.Equal(t, filepath.Join(out, "dtm.min.tif"), result.Products[pipeline.ProductMin])
	for _, name := range []string{"dtm_r0.5.den.tif", "dtm_r0.5.min.tif", "dtm_r1.0.den.tif", "dtm_r1.0.min.tif", "dtm.min.tif"} {
		assert.FileExists(t, filepath.Join(out, name))
	}

	leftovers, err := filepath.Glob(filepath.Join(tmp, "*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers, "pipeline files should be removed")
}
