package gapfill

import (
	"context"
	"errors"
	"testing"

	"github.com/applied-geosolutions/lidar2dems/pkg/adapters/logger"
	"github.com/applied-geosolutions/lidar2dems/pkg/mocks"
	"github.com/applied-geosolutions/lidar2dems/pkg/pipeline"
)

func TestStage_Execute(t *testing.T) {
	fs := mocks.NewFileSystem()
	filler := &mocks.GapFiller{FS: fs}
	stage := NewStage(filler, fs, logger.NewNoop())

	inputs := []string{"/out/dsm_r0.5.max.tif", "/out/dsm_r1.0.max.tif"}
	result, err := stage.Execute(context.Background(), pipeline.GapFillInput{
		Inputs: inputs,
		Output: "/out/dsm.max.tif",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Skipped {
		t.Error("expected gap-fill to run")
	}
	if len(filler.Calls) != 1 {
		t.Fatalf("expected 1 GapFill call, got %d", len(filler.Calls))
	}
	if got := filler.Calls[0].Inputs; len(got) != 2 || got[0] != inputs[0] {
		t.Errorf("expected inputs %v, got %v", inputs, got)
	}
}

func TestStage_Execute_SkipsExisting(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.AddFile("/out/dsm.max.tif", nil)
	filler := &mocks.GapFiller{FS: fs}
	stage := NewStage(filler, fs, logger.NewNoop())

	input := pipeline.GapFillInput{
		Inputs: []string{"/out/dsm_r0.5.max.tif"},
		Output: "/out/dsm.max.tif",
	}
	result, err := stage.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Skipped || len(filler.Calls) != 0 {
		t.Error("expected existing output to be kept")
	}

	input.Overwrite = true
	if _, err := stage.Execute(context.Background(), input); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(filler.Calls) != 1 {
		t.Error("expected overwrite to run gap-fill")
	}
}

func TestStage_Execute_FillerError(t *testing.T) {
	fs := mocks.NewFileSystem()
	boom := errors.New("gdalwarp failed")
	stage := NewStage(&mocks.GapFiller{Err: boom}, fs, logger.NewNoop())

	_, err := stage.Execute(context.Background(), pipeline.GapFillInput{
		Inputs: []string{"/out/dsm_r0.5.max.tif"},
		Output: "/out/dsm.max.tif",
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected filler error, got %v", err)
	}
}
