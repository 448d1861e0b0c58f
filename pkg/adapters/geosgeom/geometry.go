// Package geosgeom implements ports.Geometry with GEOS.
package geosgeom

import (
	"github.com/pkg/errors"
	"github.com/twpayne/go-geos"

	"github.com/applied-geosolutions/lidar2dems/pkg/ports"
)

// quadSegs is the number of segments used to approximate a quarter circle.
const quadSegs = 8

// Geometry buffers WKT geometries with GEOS.
type Geometry struct{}

// New creates a new Geometry.
func New() *Geometry {
	return &Geometry{}
}

// Buffer expands wkt by distance.
func (g *Geometry) Buffer(wkt string, distance float64) (string, error) {
	geom, err := geos.NewGeomFromWKT(wkt)
	if err != nil {
		return "", errors.Wrap(err, "parse site geometry")
	}
	buffered := geom.Buffer(distance, quadSegs)
	if buffered == nil || buffered.IsEmpty() {
		return "", errors.Errorf("buffer by %g produced an empty geometry", distance)
	}
	return buffered.ToWKT(), nil
}

// Ensure Geometry implements ports.Geometry
var _ ports.Geometry = (*Geometry)(nil)
