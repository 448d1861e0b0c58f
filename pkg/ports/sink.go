package ports

// DebugSink abstracts debug output for intermediate results.
// It keeps every pipeline document handed to pdal for later inspection.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SavePipeline saves a serialized pipeline document under name.
	SavePipeline(name string, data []byte) error
}
