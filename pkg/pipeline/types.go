package pipeline

// =============================================================================
// Common Types
// =============================================================================

// Site is a named polygon that bounds the area of interest.
type Site struct {
	Name string // Used as the output filename prefix
	WKT  string // Polygon geometry as well-known text
}

// Basename returns the name used to prefix output files.
func (s *Site) Basename() string {
	return s.Name
}

// Filters holds the optional point filters shared by merge and DEM pipelines.
// A nil field means the filter is not applied.
type Filters struct {
	Decimation   *int     // Keep every Nth point
	MaxSD        *float64 // Statistical outlier multiplier
	OutlierMeanK int      // Neighbours for the outlier filter (default: 20)
	MaxZ         *float64 // Maximum elevation
	MaxAngle     *float64 // Maximum absolute scan angle
	ReturnNum    *int     // Keep only this return number
}

// DefaultBuffer is the distance a site polygon is expanded before cropping.
const DefaultBuffer = 20.0

// =============================================================================
// Merge Stage Types
// =============================================================================

// MergeInput contains parameters for merging LAS files into one.
type MergeInput struct {
	Filenames  []string
	Output     string // Optional; defaults to a random name next to the first input
	Site       *Site
	Buffer     float64 // Zero crops to the site polygon as is
	Decimation *int
	Verbose    bool
}

// DefaultMergeInput returns MergeInput with default values.
func DefaultMergeInput() MergeInput {
	return MergeInput{Buffer: DefaultBuffer}
}

// MergeResult contains the merged file path.
type MergeResult struct {
	Path string
}

// =============================================================================
// Ground Stage Types
// =============================================================================

// GroundParams configures progressive morphological ground classification.
type GroundParams struct {
	Slope         float64
	CellSize      float64
	MaxWindowSize *float64
	MaxDistance   *float64
	Approximate   bool
}

// DefaultGroundParams returns GroundParams with default values.
func DefaultGroundParams() GroundParams {
	maxWindow := 10.0
	maxDistance := 1.0
	return GroundParams{
		Slope:         1.0,
		CellSize:      1.0,
		MaxWindowSize: &maxWindow,
		MaxDistance:   &maxDistance,
	}
}

// GroundInput contains parameters for classifying one LAS file.
type GroundInput struct {
	Input   string
	Output  string
	Params  GroundParams
	Verbose bool
}

// GroundResult contains the classified file path.
type GroundResult struct {
	Path string
}

// ClassifyInput contains parameters for the merge then classify workflow.
type ClassifyInput struct {
	Filenames  []string
	Output     string
	MergePath  string // Optional intermediate path
	Params     GroundParams
	Site       *Site
	Buffer     float64
	Decimation *int
	Verbose    bool
}

// DefaultClassifyInput returns ClassifyInput with default values.
func DefaultClassifyInput() ClassifyInput {
	return ClassifyInput{
		Params: DefaultGroundParams(),
		Buffer: DefaultBuffer,
	}
}

// =============================================================================
// DEM Stage Types
// =============================================================================

// DEMInput contains parameters for generating DEM products at one radius.
type DEMInput struct {
	Filenames  []string
	DEMType    DEMType
	Radius     string  // As written in output names, e.g. "0.56"
	Resolution float64 // Output cell size (default: 0.1)
	Filters    Filters
	Site       *Site
	Buffer     float64
	Products   []Product // Defaults to DEMType.DefaultProducts()
	OutDir     string
	Suffix     string
	Overwrite  bool
	Verbose    bool
}

// DefaultDEMInput returns DEMInput with default values.
func DefaultDEMInput() DEMInput {
	return DEMInput{
		DEMType:    DSM,
		Radius:     "0.56",
		Resolution: 0.1,
		Buffer:     DefaultBuffer,
	}
}

// DEMResult contains the generated rasters.
type DEMResult struct {
	Products ProductSet
	Skipped  bool // True when every product already existed
}

// DEMsInput contains parameters for generating DEMs over several radii.
type DEMsInput struct {
	DEMInput
	Radii   []string
	GapFill bool
}

// =============================================================================
// Gap-fill Stage Types
// =============================================================================

// GapFillInput contains parameters for merging per-radius rasters.
type GapFillInput struct {
	Inputs    []string // Ordered from smallest to largest radius
	Output    string
	Site      *Site
	Overwrite bool
}

// GapFillResult contains the gap-filled raster path.
type GapFillResult struct {
	Path    string
	Skipped bool
}

// DEMsResult contains the final rasters of a multi-radius run.
type DEMsResult struct {
	Products  ProductSet  // Final raster per product
	PerRadius []DEMResult // In radius order
	GapFilled []Product   // Products merged across radii in this run
}
