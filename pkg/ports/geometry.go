package ports

// Geometry performs polygon operations on WKT geometries.
type Geometry interface {
	// Buffer expands the geometry by distance and returns the result as WKT.
	Buffer(wkt string, distance float64) (string, error)
}
