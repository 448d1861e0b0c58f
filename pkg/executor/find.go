package executor

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// FindPDAL locates the pdal executable.
// Priority: 1) custom path, 2) PDAL_PATH env, 3) PATH, 4) common locations.
func FindPDAL(custom string) (string, error) {
	if custom != "" {
		if _, err := os.Stat(custom); err == nil {
			return custom, nil
		}
		return "", fmt.Errorf("%w: custom path %s not found", ErrPDALNotFound, custom)
	}

	if envPath := os.Getenv("PDAL_PATH"); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
		return "", fmt.Errorf("%w: PDAL_PATH %s not found", ErrPDALNotFound, envPath)
	}

	execName := "pdal"
	if runtime.GOOS == "windows" {
		execName = "pdal.exe"
	}
	if path, err := exec.LookPath(execName); err == nil {
		return path, nil
	}

	var commonPaths []string
	switch runtime.GOOS {
	case "windows":
		commonPaths = []string{
			`C:\OSGeo4W\bin\pdal.exe`,
			`C:\OSGeo4W64\bin\pdal.exe`,
		}
	case "darwin":
		commonPaths = []string{
			"/opt/homebrew/bin/pdal",
			"/usr/local/bin/pdal",
		}
	default:
		commonPaths = []string{
			"/usr/bin/pdal",
			"/usr/local/bin/pdal",
			"/opt/conda/bin/pdal",
		}
	}
	for _, p := range commonPaths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", ErrPDALNotFound
}
