package ports

import (
	"context"

	"github.com/applied-geosolutions/lidar2dems/pkg/pipeline"
)

// GapFiller merges rasters of the same product made with different search
// radii into one raster with fewer holes.
type GapFiller interface {
	// GapFill merges inputs, ordered from highest to lowest priority, into
	// output. site, when not nil, clips the result.
	GapFill(ctx context.Context, inputs []string, output string, site *pipeline.Site) error
}
