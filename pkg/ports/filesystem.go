package ports

// FileSystem abstracts file system operations.
type FileSystem interface {
	// ReadFile reads the entire contents of a file.
	ReadFile(path string) ([]byte, error)

	// WriteFile writes data to a file, creating it if necessary.
	WriteFile(path string, data []byte) error

	// CreateTemp creates a new empty file with a unique name in the temp
	// directory and returns its path. pattern follows os.CreateTemp.
	CreateTemp(pattern string) (string, error)

	// MkdirAll creates a directory and all parent directories.
	MkdirAll(path string) error

	// Exists checks if a file or directory exists.
	Exists(path string) (bool, error)

	// Glob returns the paths matching pattern.
	Glob(pattern string) ([]string, error)

	// Remove deletes a file or empty directory.
	Remove(path string) error
}
