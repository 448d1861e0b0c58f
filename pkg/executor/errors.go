package executor

import "errors"

var (
	// ErrPDALNotFound is returned when the pdal executable cannot be located.
	ErrPDALNotFound = errors.New("executor: pdal not found in PATH")

	// ErrNonZeroExit is returned when pdal exits with a non-zero status and
	// exit codes are trusted.
	ErrNonZeroExit = errors.New("executor: pdal exited with non-zero status")

	// ErrInvalidPipeline is returned when a pipeline fails validation.
	ErrInvalidPipeline = errors.New("executor: invalid pipeline")
)
