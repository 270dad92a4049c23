package main

import (
	"testing"

	"github.com/deep-esdl/deep-code/pkg/publisher"
)

func TestResolveConfigPaths(t *testing.T) {
	tests := []struct {
		name         string
		mode         publisher.Mode
		args         []string
		datasetFlag  string
		workflowFlag string
		wantDataset  string
		wantWorkflow string
	}{
		{
			name:        "single arg feeds dataset mode",
			mode:        publisher.ModeDataset,
			args:        []string{"ds.yaml"},
			wantDataset: "ds.yaml",
		},
		{
			name:         "single arg feeds workflow mode",
			mode:         publisher.ModeWorkflow,
			args:         []string{"wf.yaml"},
			wantWorkflow: "wf.yaml",
		},
		{
			name:        "single arg in all mode is the dataset config",
			mode:        publisher.ModeAll,
			args:        []string{"ds.yaml"},
			wantDataset: "ds.yaml",
		},
		{
			name:         "two args are dataset then workflow",
			mode:         publisher.ModeAll,
			args:         []string{"ds.yaml", "wf.yaml"},
			wantDataset:  "ds.yaml",
			wantWorkflow: "wf.yaml",
		},
		{
			name:         "flags win over positional args",
			mode:         publisher.ModeAll,
			args:         []string{"ds.yaml", "wf.yaml"},
			datasetFlag:  "flag-ds.yaml",
			workflowFlag: "flag-wf.yaml",
			wantDataset:  "flag-ds.yaml",
			wantWorkflow: "flag-wf.yaml",
		},
		{
			name:         "flags alone",
			mode:         publisher.ModeWorkflow,
			workflowFlag: "flag-wf.yaml",
			wantWorkflow: "flag-wf.yaml",
		},
		{
			name: "no inputs",
			mode: publisher.ModeAll,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			publishDatasetConfig = tt.datasetFlag
			publishWorkflowConfig = tt.workflowFlag
			defer func() {
				publishDatasetConfig = ""
				publishWorkflowConfig = ""
			}()

			dataset, workflow := resolveConfigPaths(tt.mode, tt.args)
			if dataset != tt.wantDataset {
				t.Errorf("dataset = %q, want %q", dataset, tt.wantDataset)
			}
			if workflow != tt.wantWorkflow {
				t.Errorf("workflow = %q, want %q", workflow, tt.wantWorkflow)
			}
		})
	}
}
