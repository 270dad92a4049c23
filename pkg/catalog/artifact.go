package catalog

import (
	"encoding/json"
	"fmt"
)

// Kind identifies the type of catalog record an artifact carries.
type Kind string

const (
	KindDataset    Kind = "dataset"
	KindVariable   Kind = "variable"
	KindWorkflow   Kind = "workflow"
	KindExperiment Kind = "experiment"
)

// Artifact is a generated catalog record tagged with its identifier (used
// for merge matching) and its target path inside the catalog tree. An
// artifact is owned by the publish run that created it until it is handed to
// the merger.
type Artifact struct {
	// ID is the merge identifier (e.g. collection id, "<collection>/<var>").
	ID string

	// Path is the record file path relative to the catalog tree root.
	Path string

	// Kind is the record type.
	Kind Kind

	// Title is a short human-readable label used for index entries.
	Title string

	// Record is the marshalable record payload.
	Record interface{}
}

// MarshalRecord renders the record payload as the catalog's canonical JSON
// form (2-space indent, trailing newline).
func (a *Artifact) MarshalRecord() ([]byte, error) {
	data, err := json.MarshalIndent(a.Record, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record %q: %w", a.ID, err)
	}
	return append(data, '\n'), nil
}
