package mocks

import (
	"fmt"

	"github.com/applied-geosolutions/lidar2dems/pkg/ports"
)

// Geometry is a mock implementation of ports.Geometry.
// Buffer returns "BUFFER(<distance>, <wkt>)" unless BufferFunc is set.
type Geometry struct {
	BufferCalls []float64
	BufferFunc  func(wkt string, distance float64) (string, error)
}

func (m *Geometry) Buffer(wkt string, distance float64) (string, error) {
	m.BufferCalls = append(m.BufferCalls, distance)
	if m.BufferFunc != nil {
		return m.BufferFunc(wkt, distance)
	}
	return fmt.Sprintf("BUFFER(%g, %s)", distance, wkt), nil
}

var _ ports.Geometry = (*Geometry)(nil)
