// Package execrunner runs external programs with os/exec.
package execrunner

import (
	"context"
	"errors"
	"os/exec"

	"github.com/applied-geosolutions/lidar2dems/pkg/ports"
)

// Runner implements ports.CommandRunner with os/exec.
type Runner struct{}

// New creates a new Runner.
func New() *Runner {
	return &Runner{}
}

// Run starts the command and waits for it. Cancelling ctx kills the process.
func (r *Runner) Run(ctx context.Context, cmd ports.Command) (int, error) {
	c := exec.CommandContext(ctx, cmd.Path, cmd.Args...)
	c.Stdout = cmd.Stdout
	c.Stderr = cmd.Stderr

	err := c.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		return exitErr.ExitCode(), nil
	}
	if ctx.Err() != nil {
		return -1, ctx.Err()
	}
	return -1, err
}

// Ensure Runner implements ports.CommandRunner
var _ ports.CommandRunner = (*Runner)(nil)
