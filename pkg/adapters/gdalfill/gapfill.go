// Package gdalfill gap-fills rasters with gdalwarp.
//
// Inputs are warped onto one output in reverse priority order. Each source's
// nodata cells leave the destination untouched, so the highest priority raster
// (the smallest search radius) wins wherever it has data and coarser rasters
// only fill its holes.
package gdalfill

import (
	"context"
	"os/exec"
	"strings"
	"sync"

	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"

	"github.com/applied-geosolutions/lidar2dems/pkg/pipeline"
	"github.com/applied-geosolutions/lidar2dems/pkg/ports"
)

// ErrGdalwarpNotFound is returned when gdalwarp cannot be located.
var ErrGdalwarpNotFound = errors.New("gdalfill: gdalwarp not found in PATH")

// Filler implements ports.GapFiller.
type Filler struct {
	gdalwarp string
	lookup   sync.Once
	runner   ports.CommandRunner
	fs       ports.FileSystem
	logger   ports.Logger
}

// New creates a new Filler. An empty gdalwarp path is looked up in PATH on
// first use.
func New(gdalwarp string, runner ports.CommandRunner, fs ports.FileSystem, logger ports.Logger) *Filler {
	return &Filler{
		gdalwarp: gdalwarp,
		runner:   runner,
		fs:       fs,
		logger:   logger.WithComponent("gapfill"),
	}
}

// GapFill merges inputs, highest priority first, into output.
func (f *Filler) GapFill(ctx context.Context, inputs []string, output string, site *pipeline.Site) error {
	if len(inputs) == 0 {
		return errors.Errorf("no rasters to gap-fill into %s", output)
	}
	f.lookup.Do(func() {
		if f.gdalwarp == "" {
			f.gdalwarp, _ = exec.LookPath("gdalwarp")
		}
	})
	if f.gdalwarp == "" {
		return ErrGdalwarpNotFound
	}

	args := []string{"-overwrite", "-q"}
	if site != nil {
		cutline, err := f.writeCutline(site)
		if err != nil {
			return err
		}
		defer func() {
			if err := f.fs.Remove(cutline); err != nil {
				f.logger.Warn("Failed to remove cutline %s: %s", cutline, err)
			}
		}()
		args = append(args, "-cutline", cutline, "-crop_to_cutline")
	}
	args = append(args, ReverseInputs(inputs)...)
	args = append(args, output)

	var stderr strings.Builder
	f.logger.Debug("%s %s", f.gdalwarp, strings.Join(args, " "))
	code, err := f.runner.Run(ctx, ports.Command{Path: f.gdalwarp, Args: args, Stderr: &stderr})
	if err != nil {
		return errors.Wrapf(err, "run gdalwarp for %s", output)
	}
	if code != 0 {
		return errors.Errorf("gdalwarp exited with status %d for %s: %s", code, output, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// ReverseInputs returns inputs in gdalwarp order, lowest priority first.
func ReverseInputs(inputs []string) []string {
	out := make([]string, len(inputs))
	for i, in := range inputs {
		out[len(inputs)-1-i] = in
	}
	return out
}

func (f *Filler) writeCutline(site *pipeline.Site) (string, error) {
	geom, err := wkt.Unmarshal(site.WKT)
	if err != nil {
		return "", errors.Wrapf(err, "parse site %s", site.Name)
	}
	fc := geojson.NewFeatureCollection()
	feature := geojson.NewFeature(geom)
	feature.Properties["name"] = site.Name
	fc.Append(feature)

	data, err := fc.MarshalJSON()
	if err != nil {
		return "", errors.Wrap(err, "encode cutline")
	}
	path, err := f.fs.CreateTemp("l2d-cutline-*.geojson")
	if err != nil {
		return "", errors.Wrap(err, "create cutline file")
	}
	if err := f.fs.WriteFile(path, data); err != nil {
		f.fs.Remove(path)
		return "", errors.Wrap(err, "write cutline file")
	}
	return path, nil
}

// Ensure Filler implements ports.GapFiller
var _ ports.GapFiller = (*Filler)(nil)
