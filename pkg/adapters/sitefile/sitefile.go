// Package sitefile loads site polygons from WKT or GeoJSON files.
package sitefile

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"

	"github.com/applied-geosolutions/lidar2dems/pkg/pipeline"
	"github.com/applied-geosolutions/lidar2dems/pkg/ports"
)

// Loader reads site files.
type Loader struct {
	fs ports.FileSystem
}

// New creates a new Loader.
func New(fs ports.FileSystem) *Loader {
	return &Loader{fs: fs}
}

// Load reads every site in path.
//
// A .wkt file holds one polygon named after the file. A .geojson or .json
// file holds a feature collection; each polygon feature is a site named by its
// "name" property, or site<N> when it has none.
func (l *Loader) Load(path string) ([]pipeline.Site, error) {
	data, err := l.fs.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read site file %s", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".wkt":
		site, err := parseWKT(stem(path), string(data))
		if err != nil {
			return nil, errors.Wrapf(err, "site file %s", path)
		}
		return []pipeline.Site{site}, nil
	case ".geojson", ".json":
		sites, err := parseGeoJSON(data)
		if err != nil {
			return nil, errors.Wrapf(err, "site file %s", path)
		}
		return sites, nil
	default:
		return nil, errors.Errorf("unsupported site file %s (want .wkt, .geojson or .json)", path)
	}
}

func parseWKT(name, text string) (pipeline.Site, error) {
	geom, err := wkt.Unmarshal(strings.TrimSpace(text))
	if err != nil {
		return pipeline.Site{}, errors.Wrap(err, "parse WKT")
	}
	if !isPolygonal(geom) {
		return pipeline.Site{}, errors.Errorf("geometry is a %s, want a polygon", geom.GeoJSONType())
	}
	return pipeline.Site{Name: name, WKT: wkt.MarshalString(geom)}, nil
}

func parseGeoJSON(data []byte) ([]pipeline.Site, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errors.Wrap(err, "parse GeoJSON")
	}

	sites := make([]pipeline.Site, 0, len(fc.Features))
	for i, f := range fc.Features {
		if f.Geometry == nil || !isPolygonal(f.Geometry) {
			continue
		}
		name := f.Properties.MustString("name", "")
		if name == "" {
			name = fmt.Sprintf("site%d", i)
		}
		sites = append(sites, pipeline.Site{Name: name, WKT: wkt.MarshalString(f.Geometry)})
	}
	if len(sites) == 0 {
		return nil, errors.New("no polygon features")
	}
	return sites, nil
}

func isPolygonal(g orb.Geometry) bool {
	switch g.(type) {
	case orb.Polygon, orb.MultiPolygon:
		return true
	}
	return false
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
