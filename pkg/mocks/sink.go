package mocks

import (
	"sync"

	"github.com/applied-geosolutions/lidar2dems/pkg/ports"
)

// DebugSink is a mock implementation of ports.DebugSink.
type DebugSink struct {
	mu sync.RWMutex

	enabled bool

	Pipelines map[string][]byte
	Names     []string
}

// NewDebugSink creates a new mock DebugSink.
func NewDebugSink(enabled bool) *DebugSink {
	return &DebugSink{
		enabled:   enabled,
		Pipelines: make(map[string][]byte),
	}
}

func (m *DebugSink) Enabled() bool {
	return m.enabled
}

func (m *DebugSink) SavePipeline(name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Pipelines[name] = data
	m.Names = append(m.Names, name)
	return nil
}

var _ ports.DebugSink = (*DebugSink)(nil)

// NullSink is a no-op implementation of ports.DebugSink.
type NullSink struct{}

func (m *NullSink) Enabled() bool                               { return false }
func (m *NullSink) SavePipeline(name string, data []byte) error { return nil }

var _ ports.DebugSink = (*NullSink)(nil)
