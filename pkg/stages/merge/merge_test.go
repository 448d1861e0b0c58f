package merge

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/applied-geosolutions/lidar2dems/pkg/adapters/logger"
	"github.com/applied-geosolutions/lidar2dems/pkg/executor"
	"github.com/applied-geosolutions/lidar2dems/pkg/mocks"
	"github.com/applied-geosolutions/lidar2dems/pkg/pipeline"
)

func newStage(pdal *mocks.PDAL) (*Stage, *mocks.Geometry) {
	opts := executor.DefaultOptions()
	opts.PDALPath = "/usr/bin/pdal"
	exec := executor.New(pdal.Runner(), pdal.FS, mocks.NewDebugSink(false), logger.NewNoop(), opts)
	geom := &mocks.Geometry{}
	stage := NewStage(exec, pdal.FS, geom, logger.NewNoop())
	stage.newName = func() string { return "fixed" }
	return stage, geom
}

func TestStage_Execute(t *testing.T) {
	pdal := &mocks.PDAL{FS: mocks.NewFileSystem()}
	stage, geom := newStage(pdal)

	result, err := stage.Execute(context.Background(), pipeline.MergeInput{
		Filenames: []string{"/data/a.las", "/data/b.las"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Path != "/data/fixed.las" {
		t.Errorf("expected /data/fixed.las, got %s", result.Path)
	}
	if len(pdal.Documents) != 1 {
		t.Fatalf("expected 1 pipeline, got %d", len(pdal.Documents))
	}
	if got := pdal.WriterType(0); got != "writers.las" {
		t.Errorf("expected writers.las, got %s", got)
	}
	if len(geom.BufferCalls) != 0 {
		t.Error("expected no buffering without a site")
	}
}

func TestStage_Execute_ExplicitOutputAndSite(t *testing.T) {
	pdal := &mocks.PDAL{FS: mocks.NewFileSystem()}
	stage, geom := newStage(pdal)

	site := &pipeline.Site{Name: "plot1", WKT: "POLYGON ((0 0, 1 0, 1 1, 0 0))"}
	result, err := stage.Execute(context.Background(), pipeline.MergeInput{
		Filenames: []string{"/data/a.las"},
		Output:    "/out/merged.las",
		Site:      site,
		Buffer:    20,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Path != "/out/merged.las" {
		t.Errorf("expected /out/merged.las, got %s", result.Path)
	}
	if len(geom.BufferCalls) != 1 || geom.BufferCalls[0] != 20 {
		t.Errorf("expected one buffer of 20, got %v", geom.BufferCalls)
	}

	stages := pdal.Documents[0]["pipeline"]
	if stages[1]["type"] != "filters.crop" {
		t.Fatalf("expected crop after the reader, got %v", stages[1]["type"])
	}
	if poly, _ := stages[1]["polygon"].(string); !strings.HasPrefix(poly, "BUFFER(20,") {
		t.Errorf("expected buffered polygon, got %s", poly)
	}
}

func TestStage_Execute_OutputMissing(t *testing.T) {
	pdal := &mocks.PDAL{FS: mocks.NewFileSystem(), SkipOutputs: true}
	stage, _ := newStage(pdal)

	_, err := stage.Execute(context.Background(), pipeline.MergeInput{
		Filenames: []string{"/data/a.las"},
	})
	if !errors.Is(err, ErrMergeFailed) {
		t.Errorf("expected ErrMergeFailed, got %v", err)
	}
}

func TestStage_Execute_NoFiles(t *testing.T) {
	pdal := &mocks.PDAL{FS: mocks.NewFileSystem()}
	stage, _ := newStage(pdal)

	if _, err := stage.Execute(context.Background(), pipeline.MergeInput{}); err == nil {
		t.Error("expected error for empty input")
	}
	if len(pdal.Documents) != 0 {
		t.Error("expected pdal not to run")
	}
}

func TestStage_Execute_FailureReportsOutput(t *testing.T) {
	pdal := &mocks.PDAL{FS: mocks.NewFileSystem(), ExitCode: 1}
	stage, _ := newStage(pdal)

	result, err := stage.Execute(context.Background(), pipeline.MergeInput{
		Filenames: []string{"/data/a.las"},
	})
	if !errors.Is(err, executor.ErrNonZeroExit) {
		t.Fatalf("expected ErrNonZeroExit, got %v", err)
	}
	if result.Path != "/data/fixed.las" {
		t.Errorf("expected the failed output to be reported, got %q", result.Path)
	}
}
