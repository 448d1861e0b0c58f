package pipeline

import (
	"path/filepath"
	"strings"
)

// DisplayPath returns path relative to the working directory when it lies
// below it, for log messages.
func DisplayPath(path string) string {
	wd, err := filepath.Abs(".")
	if err != nil {
		return path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(wd, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
