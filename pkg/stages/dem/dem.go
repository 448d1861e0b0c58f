// Package dem implements the stage that rasterizes point clouds into DEM
// products at one radius.
package dem

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/applied-geosolutions/lidar2dems/pkg/executor"
	"github.com/applied-geosolutions/lidar2dems/pkg/pdal"
	"github.com/applied-geosolutions/lidar2dems/pkg/pipeline"
	"github.com/applied-geosolutions/lidar2dems/pkg/ports"
)

// ErrOutputMissing is returned when pdal succeeded but a product raster
// does not exist afterwards.
var ErrOutputMissing = errors.New("dem: expected output was not created")

// Executor runs pdal pipelines.
type Executor interface {
	Execute(ctx context.Context, p pdal.Pipeline, verbose bool) (executor.Result, error)
}

// Stage creates DEM product rasters.
type Stage struct {
	exec   Executor
	fs     ports.FileSystem
	geom   ports.Geometry
	logger ports.Logger
}

// NewStage creates a new DEM stage.
func NewStage(exec Executor, fs ports.FileSystem, geom ports.Geometry, logger ports.Logger) *Stage {
	return &Stage{
		exec:   exec,
		fs:     fs,
		geom:   geom,
		logger: logger,
	}
}

// Execute creates the requested products for one DEM type and radius.
//
// A product counts as present when any file shares its name up to the
// extension. When every product is present and Overwrite is false nothing
// runs and the result is marked Skipped. Otherwise one pipeline runs per
// missing product (every product with Overwrite), since writers.gdal writes
// a single raster per pipeline.
func (s *Stage) Execute(ctx context.Context, input pipeline.DEMInput) (pipeline.DEMResult, error) {
	result := pipeline.DEMResult{}
	if len(input.Filenames) == 0 {
		return result, fmt.Errorf("no input files for %s", input.DEMType)
	}

	products := input.Products
	if len(products) == 0 {
		products = input.DEMType.DefaultProducts()
	}
	if err := pipeline.CheckProducts(input.DEMType, products); err != nil {
		return result, err
	}

	base, err := pipeline.OutputBase(input.OutDir, input.Site, input.DEMType, input.Suffix, input.Radius)
	if err != nil {
		return result, err
	}

	outputs := make(pipeline.ProductSet, len(products))
	for _, p := range products {
		outputs[p] = pipeline.ProductPath(base, p)
	}
	result.Products = outputs

	var todo []pipeline.Product
	for _, p := range products {
		if input.Overwrite {
			todo = append(todo, p)
			continue
		}
		present, err := s.present(outputs[p])
		if err != nil {
			return result, err
		}
		if !present {
			todo = append(todo, p)
		}
	}

	pretty := fmt.Sprintf("%s [%s]", pipeline.DisplayPath(base), joinProducts(products))
	if len(todo) == 0 {
		s.logger.Info("Skipping %s, all products exist", pretty)
		result.Skipped = true
		return result, nil
	}

	start := time.Now()
	s.logger.Info("Creating %s from %d files", pretty, len(input.Filenames))

	if err := s.fs.MkdirAll(filepath.Dir(base)); err != nil {
		return result, fmt.Errorf("create output directory: %w", err)
	}

	crop, err := pdal.SitePolygon(s.geom, input.Site, input.Buffer)
	if err != nil {
		return result, err
	}

	for _, product := range todo {
		p := pdal.NewDEMPipeline(pdal.DEMOptions{
			Filenames:   input.Filenames,
			DEMType:     input.DEMType,
			Radius:      input.Radius,
			Resolution:  input.Resolution,
			OutputBase:  base,
			Products:    []pipeline.Product{product},
			Filters:     input.Filters,
			CropPolygon: crop,
		})
		if _, err := s.exec.Execute(ctx, p, input.Verbose); err != nil {
			return result, fmt.Errorf("create %s: %w", outputs[product], err)
		}
	}

	var missing []string
	for _, p := range products {
		exists, err := s.fs.Exists(outputs[p])
		if err != nil {
			return result, fmt.Errorf("check %s: %w", outputs[p], err)
		}
		if !exists {
			missing = append(missing, outputs[p])
		}
	}
	if len(missing) > 0 {
		return result, fmt.Errorf("%w: %s", ErrOutputMissing, strings.Join(missing, " "))
	}

	s.logger.Info("Completed %s in %s", pretty, time.Since(start).Round(time.Millisecond))
	return result, nil
}

// present reports whether any file matches path with its extension replaced.
func (s *Stage) present(path string) (bool, error) {
	stem := strings.TrimSuffix(path, "."+pipeline.RasterExt)
	matches, err := s.fs.Glob(escapeGlob(stem) + ".*")
	if err != nil {
		return false, fmt.Errorf("glob %s: %w", stem, err)
	}
	return len(matches) > 0, nil
}

// escapeGlob quotes the filepath.Match metacharacters in s so it matches
// only itself.
func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[':
			b.WriteByte('[')
			b.WriteRune(r)
			b.WriteByte(']')
		case '\\':
			if filepath.Separator != '\\' {
				b.WriteByte('\\')
			}
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func joinProducts(products []pipeline.Product) string {
	names := make([]string, len(products))
	for i, p := range products {
		names[i] = string(p)
	}
	return strings.Join(names, " ")
}
