package mocks

import (
	"context"
	"sync"

	"github.com/applied-geosolutions/lidar2dems/pkg/ports"
)

// CommandRunner is a mock implementation of ports.CommandRunner.
// Every command is recorded; RunFunc, when set, decides the outcome.
type CommandRunner struct {
	mu    sync.Mutex
	Calls []ports.Command

	RunFunc func(ctx context.Context, cmd ports.Command) (int, error)
}

func (m *CommandRunner) Run(ctx context.Context, cmd ports.Command) (int, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, cmd)
	m.mu.Unlock()
	if m.RunFunc != nil {
		return m.RunFunc(ctx, cmd)
	}
	return 0, nil
}

// CallCount returns the number of commands run.
func (m *CommandRunner) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// Subcommand returns the first argument of call i, e.g. "pipeline" or "ground".
func (m *CommandRunner) Subcommand(i int) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i >= len(m.Calls) || len(m.Calls[i].Args) == 0 {
		return ""
	}
	return m.Calls[i].Args[0]
}

var _ ports.CommandRunner = (*CommandRunner)(nil)
