package mocks

import (
	"context"
	"sync"

	"github.com/applied-geosolutions/lidar2dems/pkg/pipeline"
	"github.com/applied-geosolutions/lidar2dems/pkg/ports"
)

// GapFillCall records one GapFill invocation.
type GapFillCall struct {
	Inputs []string
	Output string
	Site   *pipeline.Site
}

// GapFiller is a mock implementation of ports.GapFiller.
// When FS is set the output file is created in it.
type GapFiller struct {
	mu    sync.Mutex
	Calls []GapFillCall
	FS    *FileSystem
	Err   error
}

func (m *GapFiller) GapFill(ctx context.Context, inputs []string, output string, site *pipeline.Site) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, GapFillCall{Inputs: append([]string(nil), inputs...), Output: output, Site: site})
	m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if m.FS != nil {
		m.FS.AddFile(output, []byte("gapfilled"))
	}
	return nil
}

var _ ports.GapFiller = (*GapFiller)(nil)
