// Package config provides the validated configuration models consumed by the
// publishing pipeline: dataset and workflow descriptions, the credential
// file, and the environment-to-repository mapping.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DatasetStatus describes the completeness of a published dataset.
type DatasetStatus string

const (
	StatusCompleted DatasetStatus = "completed"
	StatusOngoing   DatasetStatus = "ongoing"
	StatusPlanned   DatasetStatus = "planned"
)

// Valid reports whether the status is one of the accepted values.
func (s DatasetStatus) Valid() bool {
	switch s {
	case StatusCompleted, StatusOngoing, StatusPlanned:
		return true
	}
	return false
}

// CfParameter is a CF-convention parameter entry attached to a collection.
type CfParameter struct {
	Name         string `yaml:"name" json:"Name"`
	Unit         string `yaml:"unit,omitempty" json:"Unit,omitempty"`
	StandardName string `yaml:"standard_name,omitempty" json:"StandardName,omitempty"`
}

// Variable describes a dataset variable declared in the config.
type Variable struct {
	// Name is the variable identifier within the dataset (e.g. "tos").
	Name string `yaml:"name"`

	// LongName is an optional descriptive name used for the catalog title.
	LongName string `yaml:"long_name,omitempty"`

	// StandardName is the optional CF standard name.
	StandardName string `yaml:"standard_name,omitempty"`
}

// DatasetConfig is the validated in-memory representation of a dataset
// description (dataset-config.yaml).
type DatasetConfig struct {
	// DatasetID identifies the dataset at its storage location (e.g. "x.zarr").
	DatasetID string `yaml:"dataset_id"`

	// CollectionID is the catalog collection identifier and merge target.
	CollectionID string `yaml:"collection_id"`

	// OscThemes are the thematic tags (e.g. "cryosphere").
	OscThemes []string `yaml:"osc_themes"`

	// OscRegion is the spatial region tag (e.g. "Global").
	OscRegion string `yaml:"osc_region"`

	// DatasetStatus is one of completed, ongoing, planned.
	DatasetStatus DatasetStatus `yaml:"dataset_status"`

	// DocumentationLink is an optional URI to dataset documentation.
	DocumentationLink string `yaml:"documentation_link,omitempty"`

	// AccessLink is the URI to the dataset in object storage.
	AccessLink string `yaml:"access_link"`

	// SpatialExtent is an optional bounding box [west, south, east, north].
	// A global extent is assumed when omitted.
	SpatialExtent []float64 `yaml:"spatial_extent,omitempty"`

	// TemporalExtent is an optional [start, end] pair of RFC 3339 timestamps.
	// Either entry may be empty for an open interval.
	TemporalExtent []string `yaml:"temporal_extent,omitempty"`

	// Variables are the declared dataset variables; each yields a
	// variable catalog record.
	Variables []Variable `yaml:"variables,omitempty"`

	// CfParameters are optional CF metadata parameters.
	CfParameters []CfParameter `yaml:"cf_parameter,omitempty"`
}

// Validate checks the invariants the pipeline relies on.
func (c *DatasetConfig) Validate() error {
	if c.DatasetID == "" {
		return fmt.Errorf("dataset config: dataset_id is required")
	}
	if c.CollectionID == "" {
		return fmt.Errorf("dataset config: collection_id is required")
	}
	if c.DatasetStatus != "" && !c.DatasetStatus.Valid() {
		return fmt.Errorf("dataset config: invalid dataset_status %q", c.DatasetStatus)
	}
	return nil
}

// ContactLink is one entry in a contact's link list. All three fields must be
// set; partially specified links are rejected downstream.
type ContactLink struct {
	Rel  string `yaml:"rel" json:"rel"`
	Type string `yaml:"type" json:"type"`
	Href string `yaml:"href" json:"href"`
}

// Contact describes a person associated with a workflow.
type Contact struct {
	Name         string        `yaml:"name"`
	Organization string        `yaml:"organization"`
	Position     string        `yaml:"position,omitempty"`
	Links        []ContactLink `yaml:"links,omitempty"`
	Roles        []string      `yaml:"roles,omitempty"`
}

// JupyterKernelInfo describes the execution environment of a workflow.
type JupyterKernelInfo struct {
	Name          string `yaml:"name" json:"name"`
	PythonVersion string `yaml:"python_version" json:"python_version"`
	EnvFile       string `yaml:"env_file" json:"env_file"`
}

// WorkflowProperties are the descriptive properties of a workflow record.
type WorkflowProperties struct {
	Title             string            `yaml:"title"`
	Description       string            `yaml:"description"`
	Keywords          []string          `yaml:"keywords,omitempty"`
	Themes            []string          `yaml:"themes,omitempty"`
	License           string            `yaml:"license,omitempty"`
	JupyterKernelInfo JupyterKernelInfo `yaml:"jupyter_kernel_info"`
}

// ExperimentConfig marks a workflow as carrying an experiment context; its
// presence causes an additional experiment record to be generated.
type ExperimentConfig struct {
	Title       string `yaml:"title,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// WorkflowConfig is the validated in-memory representation of a workflow
// description (workflow-config.yaml).
type WorkflowConfig struct {
	WorkflowID         string             `yaml:"workflow_id"`
	Properties         WorkflowProperties `yaml:"properties"`
	JupyterNotebookURL string             `yaml:"jupyter_notebook_url"`
	Contacts           []Contact          `yaml:"contacts,omitempty"`
	Experiment         *ExperimentConfig  `yaml:"experiment,omitempty"`
}

// Validate checks the invariants the pipeline relies on.
func (c *WorkflowConfig) Validate() error {
	if c.WorkflowID == "" {
		return fmt.Errorf("workflow config: workflow_id is required")
	}
	if c.Properties.Title == "" {
		return fmt.Errorf("workflow config: properties.title is required")
	}
	return nil
}

// LoadDatasetConfig reads and validates a dataset config YAML file.
func LoadDatasetConfig(path string) (*DatasetConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset config: %w", err)
	}

	var cfg DatasetConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse dataset config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadWorkflowConfig reads and validates a workflow config YAML file.
func LoadWorkflowConfig(path string) (*WorkflowConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow config: %w", err)
	}

	var cfg WorkflowConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse workflow config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
