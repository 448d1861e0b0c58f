// Package executor runs pdal: pipeline documents through "pdal pipeline" and
// ground classification through "pdal ground".
package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/applied-geosolutions/lidar2dems/pkg/pdal"
	"github.com/applied-geosolutions/lidar2dems/pkg/pipeline"
	"github.com/applied-geosolutions/lidar2dems/pkg/ports"
)

// outputTail is how much captured pdal output is kept for error messages.
const outputTail = 4096

// Options configures an Executor.
type Options struct {
	PDALPath      string    // Empty means FindPDAL
	Output        io.Writer // Destination of pdal output in verbose mode (default: os.Stdout)
	TrustExitCode bool      // Treat a non-zero exit as a failure
}

// DefaultOptions returns Options with default values.
func DefaultOptions() Options {
	return Options{TrustExitCode: true}
}

// Result is the outcome of one pdal invocation.
type Result struct {
	ExitCode int
	Output   string // Tail of captured output; empty in verbose mode for stdout
}

// Success reports whether pdal exited with status zero.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// GroundArgs are the arguments of "pdal ground".
type GroundArgs struct {
	Input  string
	Output string
	Params pipeline.GroundParams
}

// Executor runs pdal as a subprocess.
type Executor struct {
	pdalPath      string
	lookup        sync.Once
	lookupErr     error
	runner        ports.CommandRunner
	fs            ports.FileSystem
	sink          ports.DebugSink
	logger        ports.Logger
	out           io.Writer
	trustExitCode bool
	seq           atomic.Int64
}

// New creates a new Executor.
func New(runner ports.CommandRunner, fs ports.FileSystem, sink ports.DebugSink, logger ports.Logger, opts Options) *Executor {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	return &Executor{
		pdalPath:      opts.PDALPath,
		runner:        runner,
		fs:            fs,
		sink:          sink,
		logger:        logger.WithComponent("pdal"),
		out:           out,
		trustExitCode: opts.TrustExitCode,
	}
}

// Execute writes p to a temporary pipeline file, runs "pdal pipeline -i" on
// it and removes the file before returning, whatever the outcome.
// Declared outputs are not checked; that is up to the caller.
func (e *Executor) Execute(ctx context.Context, p pdal.Pipeline, verbose bool) (Result, error) {
	if err := p.Validate(); err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrInvalidPipeline, err)
	}

	data, err := json.Marshal(p)
	if err != nil {
		return Result{}, fmt.Errorf("marshal pipeline: %w", err)
	}

	if verbose {
		if pretty, err := p.Indent(); err == nil {
			e.logger.Info("%s", string(pretty))
		}
	}

	path, err := e.fs.CreateTemp("l2d-pipeline-*.json")
	if err != nil {
		return Result{}, fmt.Errorf("create pipeline file: %w", err)
	}
	defer func() {
		if err := e.fs.Remove(path); err != nil {
			e.logger.Warn("Failed to remove pipeline file %s: %s", path, err)
		}
	}()

	if verbose {
		e.logger.Info("Pipeline file: %s", path)
	}
	if err := e.fs.WriteFile(path, data); err != nil {
		return Result{}, fmt.Errorf("write pipeline file: %w", err)
	}

	seq := e.seq.Add(1)
	if e.sink.Enabled() {
		if err := e.sink.SavePipeline(fmt.Sprintf("pipeline-%03d.json", seq), data); err != nil {
			e.logger.Warn("Failed to save debug pipeline: %s", err)
		}
	}

	return e.run(ctx, []string{"pipeline", "-i", path}, verbose)
}

// Ground runs "pdal ground" on a single file.
func (e *Executor) Ground(ctx context.Context, args GroundArgs, verbose bool) (Result, error) {
	return e.run(ctx, GroundCommandArgs(args, verbose), verbose)
}

// GroundCommandArgs returns the argument vector for "pdal ground".
func GroundCommandArgs(args GroundArgs, verbose bool) []string {
	p := args.Params
	argv := []string{
		"ground",
		"-i", args.Input,
		"-o", args.Output,
		"--slope", formatFloat(p.Slope),
		"--cell_size", formatFloat(p.CellSize),
	}
	if p.MaxWindowSize != nil {
		argv = append(argv, "--max_window_size", formatFloat(*p.MaxWindowSize))
	}
	if p.MaxDistance != nil {
		argv = append(argv, "--max_distance", formatFloat(*p.MaxDistance))
	}
	if p.Approximate {
		argv = append(argv, "--approximate")
	}
	if verbose {
		argv = append(argv, "--developer-debug")
	}
	return argv
}

func (e *Executor) run(ctx context.Context, args []string, verbose bool) (Result, error) {
	e.lookup.Do(func() {
		if e.pdalPath == "" {
			e.pdalPath, e.lookupErr = FindPDAL("")
		}
	})
	if e.lookupErr != nil {
		return Result{}, e.lookupErr
	}

	captured := &tailBuffer{limit: outputTail}
	cmd := ports.Command{Path: e.pdalPath, Args: args}
	if verbose {
		cmd.Stdout = e.out
		cmd.Stderr = io.MultiWriter(e.out, captured)
		e.logger.Info("%s %s", e.pdalPath, strings.Join(args, " "))
	} else {
		cmd.Stdout = captured
		cmd.Stderr = captured
		e.logger.Debug("%s %s", e.pdalPath, strings.Join(args, " "))
	}

	code, err := e.runner.Run(ctx, cmd)
	result := Result{ExitCode: code, Output: captured.String()}
	if err != nil {
		return result, fmt.Errorf("run pdal %s: %w", args[0], err)
	}
	if code != 0 {
		if e.trustExitCode {
			return result, fmt.Errorf("%w: pdal %s exited with status %d: %s",
				ErrNonZeroExit, args[0], code, strings.TrimSpace(result.Output))
		}
		e.logger.Warn("pdal %s exited with status %d", args[0], code)
	}
	return result, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	limit int
	buf   []byte
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.buf = append(b.buf, p...)
	if over := len(b.buf) - b.limit; over > 0 {
		b.buf = b.buf[over:]
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	return string(b.buf)
}
