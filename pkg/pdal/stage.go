// Package pdal assembles PDAL pipeline documents.
//
// A pipeline is an ordered list of typed stages serialized as
// {"pipeline": [...]}. Stages are appended in execution order: readers,
// merge, filters, then a single writer.
package pdal

import (
	"encoding/json"
)

// Stage types understood by PDAL.
const (
	TypeReaderLAS        = "readers.las"
	TypeFilterMerge      = "filters.merge"
	TypeFilterDecimation = "filters.decimation"
	TypeFilterRange      = "filters.range"
	TypeFilterOutlier    = "filters.outlier"
	TypeFilterCrop       = "filters.crop"
	TypeWriterGDAL       = "writers.gdal"
	TypeWriterLAS        = "writers.las"
)

// Stage is one reader, filter or writer. The set of implementations is closed.
type Stage interface {
	// Type returns the PDAL stage type, e.g. "filters.range".
	Type() string
	stage()
}

// ReaderLAS reads a LAS/LAZ file.
type ReaderLAS struct {
	Filename string
}

// FilterMerge merges the output of every preceding reader.
type FilterMerge struct{}

// FilterDecimation keeps every Step-th point.
type FilterDecimation struct {
	Step int
}

// FilterRange keeps points within Limits.
type FilterRange struct {
	Limits Limits
}

// FilterOutlier removes statistical outliers.
type FilterOutlier struct {
	Method     string
	MeanK      int
	Multiplier float64
}

// FilterCrop keeps points inside a WKT polygon.
type FilterCrop struct {
	Polygon string
}

// WriterGDAL rasterizes points into a GeoTIFF.
type WriterGDAL struct {
	Resolution float64
	Radius     string
	Filename   string
	OutputType string
}

// WriterLAS writes points to a LAS file.
type WriterLAS struct {
	Filename string
}

func (ReaderLAS) Type() string        { return TypeReaderLAS }
func (FilterMerge) Type() string      { return TypeFilterMerge }
func (FilterDecimation) Type() string { return TypeFilterDecimation }
func (FilterRange) Type() string      { return TypeFilterRange }
func (FilterOutlier) Type() string    { return TypeFilterOutlier }
func (FilterCrop) Type() string       { return TypeFilterCrop }
func (WriterGDAL) Type() string       { return TypeWriterGDAL }
func (WriterLAS) Type() string        { return TypeWriterLAS }

func (ReaderLAS) stage()        {}
func (FilterMerge) stage()      {}
func (FilterDecimation) stage() {}
func (FilterRange) stage()      {}
func (FilterOutlier) stage()    {}
func (FilterCrop) stage()       {}
func (WriterGDAL) stage()       {}
func (WriterLAS) stage()        {}

func (s ReaderLAS) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type     string `json:"type"`
		Filename string `json:"filename"`
	}{s.Type(), s.Filename})
}

func (s FilterMerge) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
	}{s.Type()})
}

func (s FilterDecimation) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
		Step int    `json:"step"`
	}{s.Type(), s.Step})
}

func (s FilterRange) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type   string `json:"type"`
		Limits string `json:"limits"`
	}{s.Type(), s.Limits.String()})
}

func (s FilterOutlier) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type       string  `json:"type"`
		Method     string  `json:"method"`
		MeanK      int     `json:"mean_k"`
		Multiplier float64 `json:"multiplier"`
	}{s.Type(), s.Method, s.MeanK, s.Multiplier})
}

func (s FilterCrop) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    string `json:"type"`
		Polygon string `json:"polygon"`
	}{s.Type(), s.Polygon})
}

func (s WriterGDAL) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type       string  `json:"type"`
		Resolution float64 `json:"resolution"`
		Radius     string  `json:"radius"`
		Filename   string  `json:"filename"`
		OutputType string  `json:"output_type"`
	}{s.Type(), s.Resolution, s.Radius, s.Filename, s.OutputType})
}

func (s WriterLAS) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type     string `json:"type"`
		Filename string `json:"filename"`
	}{s.Type(), s.Filename})
}

func isWriter(s Stage) bool {
	switch s.(type) {
	case WriterGDAL, WriterLAS:
		return true
	}
	return false
}
