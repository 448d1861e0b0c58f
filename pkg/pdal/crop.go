package pdal

import (
	"fmt"

	"github.com/applied-geosolutions/lidar2dems/pkg/pipeline"
	"github.com/applied-geosolutions/lidar2dems/pkg/ports"
)

// SitePolygon returns the crop polygon for site: its geometry expanded by
// buffer. It returns "" when site is nil; a non-positive buffer keeps the
// geometry as is.
func SitePolygon(geom ports.Geometry, site *pipeline.Site, buffer float64) (string, error) {
	if site == nil {
		return "", nil
	}
	if buffer <= 0 {
		return site.WKT, nil
	}
	wkt, err := geom.Buffer(site.WKT, buffer)
	if err != nil {
		return "", fmt.Errorf("buffer site %s: %w", site.Basename(), err)
	}
	return wkt, nil
}
