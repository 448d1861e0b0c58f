package ports

import (
	"context"
	"io"
)

// Command is an external program invocation. Arguments are passed as a
// vector and never through a shell.
type Command struct {
	Path   string
	Args   []string
	Stdout io.Writer
	Stderr io.Writer
}

// CommandRunner runs external programs.
type CommandRunner interface {
	// Run starts the command and waits for it to exit.
	// A non-zero exit is reported through exitCode, not err; err is reserved
	// for failures to start or wait on the process.
	Run(ctx context.Context, cmd Command) (exitCode int, err error)
}
