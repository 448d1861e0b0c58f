package pdal

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNoWriter is returned when a pipeline does not end with a writer.
	ErrNoWriter = errors.New("pdal: pipeline must end with exactly one writer")

	// ErrStageOrder is returned when readers, merge and filters are out of order.
	ErrStageOrder = errors.New("pdal: stages out of order")
)

// Pipeline is an ordered list of stages; index 0 runs first.
type Pipeline struct {
	Stages []Stage
}

// MarshalJSON encodes the pipeline as {"pipeline": [...]}.
func (p Pipeline) MarshalJSON() ([]byte, error) {
	stages := p.Stages
	if stages == nil {
		stages = []Stage{}
	}
	return json.Marshal(struct {
		Pipeline []Stage `json:"pipeline"`
	}{stages})
}

// Indent returns the pipeline document pretty-printed for display.
func (p Pipeline) Indent() ([]byte, error) {
	return json.MarshalIndent(p, "", "    ")
}

// Readers returns the reader stages in order.
func (p Pipeline) Readers() []ReaderLAS {
	var readers []ReaderLAS
	for _, s := range p.Stages {
		if r, ok := s.(ReaderLAS); ok {
			readers = append(readers, r)
		}
	}
	return readers
}

// Writer returns the final stage when it is a writer.
func (p Pipeline) Writer() (Stage, bool) {
	if len(p.Stages) == 0 {
		return nil, false
	}
	last := p.Stages[len(p.Stages)-1]
	return last, isWriter(last)
}

// Count returns the number of stages of the given PDAL type.
func (p Pipeline) Count(stageType string) int {
	n := 0
	for _, s := range p.Stages {
		if s.Type() == stageType {
			n++
		}
	}
	return n
}

// Validate checks that readers come first, a merge directly follows them when
// there are several, filters come next and exactly one writer comes last.
func (p Pipeline) Validate() error {
	if _, ok := p.Writer(); !ok {
		return ErrNoWriter
	}
	body := p.Stages[:len(p.Stages)-1]

	i := 0
	for i < len(body) {
		if _, ok := body[i].(ReaderLAS); !ok {
			break
		}
		i++
	}
	readers := i
	if readers > 1 {
		if i >= len(body) || body[i].Type() != TypeFilterMerge {
			return fmt.Errorf("%w: %d readers not followed by %s", ErrStageOrder, readers, TypeFilterMerge)
		}
		i++
	}
	for ; i < len(body); i++ {
		switch body[i].(type) {
		case ReaderLAS:
			return fmt.Errorf("%w: reader at position %d after filters", ErrStageOrder, i)
		case FilterMerge:
			return fmt.Errorf("%w: unexpected %s at position %d", ErrStageOrder, TypeFilterMerge, i)
		case WriterGDAL, WriterLAS:
			return ErrNoWriter
		}
	}
	return nil
}
