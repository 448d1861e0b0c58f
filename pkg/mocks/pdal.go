package mocks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/applied-geosolutions/lidar2dems/pkg/ports"
)

// PDAL simulates the pdal binary on top of a mock FileSystem: "pipeline"
// creates the file named by the writer stage of the document, "ground"
// creates its -o argument.
type PDAL struct {
	FS *FileSystem

	// Documents holds every pipeline document that was run.
	Documents []map[string][]map[string]any
	// SkipOutputs suppresses output creation while still exiting with status 0.
	SkipOutputs bool
	// ExitCode is returned for every invocation.
	ExitCode int
}

// Runner returns a CommandRunner backed by the simulator.
func (p *PDAL) Runner() *CommandRunner {
	return &CommandRunner{RunFunc: p.Run}
}

// Run handles one pdal invocation.
func (p *PDAL) Run(ctx context.Context, cmd ports.Command) (int, error) {
	if len(cmd.Args) == 0 {
		return 1, nil
	}
	switch cmd.Args[0] {
	case "pipeline":
		if len(cmd.Args) < 3 {
			return 1, nil
		}
		data, ok := p.FS.GetFile(cmd.Args[2])
		if !ok {
			return 0, fmt.Errorf("pipeline file %s not found", cmd.Args[2])
		}
		var doc map[string][]map[string]any
		if err := json.Unmarshal(data, &doc); err != nil {
			return 0, err
		}
		p.Documents = append(p.Documents, doc)
		stages := doc["pipeline"]
		if !p.SkipOutputs && len(stages) > 0 {
			if name, ok := stages[len(stages)-1]["filename"].(string); ok {
				p.FS.AddFile(name, []byte("pdal"))
			}
		}
	case "ground":
		for i := 1; i+1 < len(cmd.Args); i++ {
			if cmd.Args[i] == "-o" && !p.SkipOutputs {
				p.FS.AddFile(cmd.Args[i+1], []byte("ground"))
			}
		}
	}
	return p.ExitCode, nil
}

// WriterType returns the type of the last stage of document i.
func (p *PDAL) WriterType(i int) string {
	stages := p.Documents[i]["pipeline"]
	t, _ := stages[len(stages)-1]["type"].(string)
	return t
}

// OutputType returns the output_type of the writer of document i.
func (p *PDAL) OutputType(i int) string {
	stages := p.Documents[i]["pipeline"]
	t, _ := stages[len(stages)-1]["output_type"].(string)
	return t
}
