package publisher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/deep-esdl/deep-code/pkg/catalog"
	"github.com/deep-esdl/deep-code/pkg/config"
)

type fakePublisher struct {
	mu   sync.Mutex
	jobs []Job
	fail map[Mode]error
}

func (f *fakePublisher) Name() string { return "fake" }

func (f *fakePublisher) Publish(_ context.Context, job Job) JobResult {
	f.mu.Lock()
	f.jobs = append(f.jobs, job)
	f.mu.Unlock()

	result := JobResult{Mode: job.Mode, Status: StatusSuccess}
	if err, ok := f.fail[job.Mode]; ok {
		result.Fail(err)
	}
	return result
}

func (f *fakePublisher) seen() []Job {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Job{}, f.jobs...)
}

const testDatasetYAML = `
dataset_id: x.zarr
collection_id: x
osc_themes: [cryosphere]
dataset_status: completed
access_link: s3://deep-esdl-public/x.zarr
`

const testWorkflowYAML = `
workflow_id: x-workflow
properties:
  title: X workflow
  description: Produces x.
jupyter_notebook_url: https://github.com/deepesdl/deepesdl-doc/blob/main/notebooks/x.ipynb
`

func writeConfigs(t *testing.T) (dataset, workflow string) {
	t.Helper()
	dir := t.TempDir()
	dataset = filepath.Join(dir, "dataset-config.yaml")
	workflow = filepath.Join(dir, "workflow-config.yaml")
	if err := os.WriteFile(dataset, []byte(testDatasetYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(workflow, []byte(testWorkflowYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	return dataset, workflow
}

func TestRunDatasetMode(t *testing.T) {
	datasetPath, _ := writeConfigs(t)
	fake := &fakePublisher{}

	result, err := NewPipeline(fake).Run(context.Background(), Request{
		Mode:              ModeDataset,
		Environment:       config.EnvTesting,
		DatasetConfigPath: datasetPath,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !result.Success() {
		t.Errorf("result not successful: %+v", result.Jobs)
	}
	if len(result.Jobs) != 1 || result.Jobs[0].Mode != ModeDataset {
		t.Fatalf("jobs = %+v", result.Jobs)
	}

	jobs := fake.seen()
	if len(jobs) != 1 {
		t.Fatalf("publisher saw %d jobs, want 1", len(jobs))
	}
	job := jobs[0]
	if job.ID != "x" || job.Environment != config.EnvTesting {
		t.Errorf("job = %+v", job)
	}
	if len(job.Artifacts) != 1 || job.Artifacts[0].Kind != catalog.KindDataset {
		t.Errorf("artifacts = %+v", job.Artifacts)
	}
}

func TestRunAllMode(t *testing.T) {
	datasetPath, workflowPath := writeConfigs(t)
	fake := &fakePublisher{}

	result, err := NewPipeline(fake).Run(context.Background(), Request{
		Mode:               ModeAll,
		Environment:        config.EnvStaging,
		DatasetConfigPath:  datasetPath,
		WorkflowConfigPath: workflowPath,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(result.Jobs) != 2 {
		t.Fatalf("jobs = %+v", result.Jobs)
	}
	if result.Jobs[0].Mode != ModeDataset || result.Jobs[1].Mode != ModeWorkflow {
		t.Errorf("job order = %s, %s", result.Jobs[0].Mode, result.Jobs[1].Mode)
	}
	if !result.Success() {
		t.Errorf("result not successful: %+v", result.Jobs)
	}
	if len(fake.seen()) != 2 {
		t.Errorf("publisher saw %d jobs", len(fake.seen()))
	}
}

func TestRunAllModePartialFailure(t *testing.T) {
	datasetPath, workflowPath := writeConfigs(t)
	authErr := &AuthorizationError{Op: "push", Err: errors.New("bad credentials")}
	fake := &fakePublisher{fail: map[Mode]error{ModeWorkflow: authErr}}

	result, err := NewPipeline(fake).Run(context.Background(), Request{
		Mode:               ModeAll,
		Environment:        config.EnvTesting,
		DatasetConfigPath:  datasetPath,
		WorkflowConfigPath: workflowPath,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Success() {
		t.Error("result reports success despite workflow failure")
	}

	var dataset, workflow *JobResult
	for i := range result.Jobs {
		switch result.Jobs[i].Mode {
		case ModeDataset:
			dataset = &result.Jobs[i]
		case ModeWorkflow:
			workflow = &result.Jobs[i]
		}
	}
	if dataset == nil || dataset.Status != StatusSuccess {
		t.Errorf("dataset job = %+v, want success despite workflow failure", dataset)
	}
	if workflow == nil || workflow.Status != StatusFailed {
		t.Fatalf("workflow job = %+v", workflow)
	}
	if !IsAuthorizationError(workflow.Err) {
		t.Errorf("workflow error = %v, want AuthorizationError", workflow.Err)
	}
	if workflow.Error == "" {
		t.Error("workflow error string not recorded")
	}
}

func TestRunAllModeBuildFailureIsIsolated(t *testing.T) {
	_, workflowPath := writeConfigs(t)
	fake := &fakePublisher{}

	// No dataset config: the dataset job fails validation, the workflow
	// job still publishes.
	result, err := NewPipeline(fake).Run(context.Background(), Request{
		Mode:               ModeAll,
		Environment:        config.EnvTesting,
		WorkflowConfigPath: workflowPath,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Success() {
		t.Error("result reports success despite dataset validation failure")
	}
	if len(result.Jobs) != 2 {
		t.Fatalf("jobs = %+v", result.Jobs)
	}
	if result.Jobs[0].Mode != ModeDataset || result.Jobs[0].Status != StatusFailed {
		t.Errorf("dataset job = %+v", result.Jobs[0])
	}
	if !catalog.IsValidationError(result.Jobs[0].Err) {
		t.Errorf("dataset error = %v, want ValidationError", result.Jobs[0].Err)
	}
	if result.Jobs[1].Mode != ModeWorkflow || result.Jobs[1].Status != StatusSuccess {
		t.Errorf("workflow job = %+v", result.Jobs[1])
	}

	jobs := fake.seen()
	if len(jobs) != 1 || jobs[0].Mode != ModeWorkflow {
		t.Errorf("publisher saw %+v", jobs)
	}
}

func TestRunRejectsBadRequest(t *testing.T) {
	fake := &fakePublisher{}
	pipeline := NewPipeline(fake)

	if _, err := pipeline.Run(context.Background(), Request{Mode: "bogus", Environment: config.EnvTesting}); err == nil {
		t.Error("expected error for unknown mode")
	}
	if _, err := pipeline.Run(context.Background(), Request{Mode: ModeDataset, Environment: "qa"}); err == nil {
		t.Error("expected error for unknown environment")
	}
}

func TestWriteAndReadResult(t *testing.T) {
	dir := t.TempDir()
	result := &Result{
		Environment: config.EnvTesting,
		Mode:        ModeDataset,
		Jobs: []JobResult{{
			Mode:        ModeDataset,
			Status:      StatusSuccess,
			Identifiers: []string{"x"},
			Branch:      "publish/x-dataset",
			PRNumber:    7,
		}},
	}

	if err := WriteResult(dir, result); err != nil {
		t.Fatalf("WriteResult() error = %v", err)
	}

	got, err := ReadResult(dir)
	if err != nil {
		t.Fatalf("ReadResult() error = %v", err)
	}
	if got.Mode != ModeDataset || len(got.Jobs) != 1 || got.Jobs[0].PRNumber != 7 {
		t.Errorf("round-tripped result = %+v", got)
	}
	if got.PublishedAt.IsZero() {
		t.Error("published_at not set")
	}
}
