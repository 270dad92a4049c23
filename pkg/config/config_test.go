package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestLoadDatasetConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "dataset-config.yaml", `
dataset_id: hydrology-1D-0.009deg-100x60x60-3.0.2.zarr
collection_id: hydrology
osc_themes:
  - land
dataset_status: completed
osc_region: Global
documentation_link: https://deepesdl.readthedocs.io/en/latest/datasets/hydrology
access_link: s3://deep-esdl-public/hydrology-1D-0.009deg-100x60x60-3.0.2.zarr
variables:
  - name: tws
    long_name: Terrestrial Water Storage
cf_parameter:
  - name: hydrology
`)

	cfg, err := LoadDatasetConfig(path)
	if err != nil {
		t.Fatalf("LoadDatasetConfig() error = %v", err)
	}

	if cfg.DatasetID != "hydrology-1D-0.009deg-100x60x60-3.0.2.zarr" {
		t.Errorf("DatasetID = %q", cfg.DatasetID)
	}
	if cfg.CollectionID != "hydrology" {
		t.Errorf("CollectionID = %q", cfg.CollectionID)
	}
	if cfg.DatasetStatus != StatusCompleted {
		t.Errorf("DatasetStatus = %q, want %q", cfg.DatasetStatus, StatusCompleted)
	}
	if len(cfg.Variables) != 1 || cfg.Variables[0].LongName != "Terrestrial Water Storage" {
		t.Errorf("Variables = %+v", cfg.Variables)
	}
	if len(cfg.CfParameters) != 1 || cfg.CfParameters[0].Name != "hydrology" {
		t.Errorf("CfParameters = %+v", cfg.CfParameters)
	}
}

func TestLoadDatasetConfigErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing dataset_id",
			content: "collection_id: x\n",
			wantErr: "dataset_id is required",
		},
		{
			name:    "missing collection_id",
			content: "dataset_id: x.zarr\n",
			wantErr: "collection_id is required",
		},
		{
			name:    "bad status",
			content: "dataset_id: x.zarr\ncollection_id: x\ndataset_status: done\n",
			wantErr: "invalid dataset_status",
		},
		{
			name:    "not yaml",
			content: "{{nope",
			wantErr: "failed to parse",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, strings.ReplaceAll(tt.name, " ", "-")+".yaml", tt.content)
			_, err := LoadDatasetConfig(path)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}

	if _, err := LoadDatasetConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadWorkflowConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "workflow-config.yaml", `
workflow_id: hydrology-workflow
properties:
  title: Hydrology cube generation
  description: Produces the hydrology data cube.
  keywords:
    - Earth Science
  themes:
    - land
  license: proprietary
  jupyter_kernel_info:
    name: deep-esdl
    python_version: "3.11"
    env_file: https://github.com/deepesdl/deep-code/blob/main/environment.yml
jupyter_notebook_url: https://github.com/deepesdl/deepesdl-doc/blob/main/notebooks/hydrology.ipynb
contacts:
  - name: Jane Doe
    organization: Example Institute
    links:
      - rel: about
        type: text/html
        href: https://www.example.org/jane-doe
experiment:
  title: Hydrology experiment
`)

	cfg, err := LoadWorkflowConfig(path)
	if err != nil {
		t.Fatalf("LoadWorkflowConfig() error = %v", err)
	}

	if cfg.WorkflowID != "hydrology-workflow" {
		t.Errorf("WorkflowID = %q", cfg.WorkflowID)
	}
	if cfg.Properties.JupyterKernelInfo.PythonVersion != "3.11" {
		t.Errorf("PythonVersion = %q", cfg.Properties.JupyterKernelInfo.PythonVersion)
	}
	if len(cfg.Contacts) != 1 || len(cfg.Contacts[0].Links) != 1 {
		t.Fatalf("Contacts = %+v", cfg.Contacts)
	}
	if cfg.Experiment == nil || cfg.Experiment.Title != "Hydrology experiment" {
		t.Errorf("Experiment = %+v", cfg.Experiment)
	}
}

func TestLoadWorkflowConfigErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing workflow_id",
			content: "properties:\n  title: T\n",
			wantErr: "workflow_id is required",
		},
		{
			name:    "missing title",
			content: "workflow_id: w\n",
			wantErr: "properties.title is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, strings.ReplaceAll(tt.name, " ", "-")+".yaml", tt.content)
			_, err := LoadWorkflowConfig(path)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}
