package publisher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/deep-esdl/deep-code/pkg/catalog"
	"github.com/deep-esdl/deep-code/pkg/config"
	"github.com/deep-esdl/deep-code/pkg/log"
)

// Pipeline runs publish requests: it loads configurations, builds catalog
// records, and delivers them through a Publisher. In all mode the dataset
// and workflow sub-pipelines run independently, so one failing never stops
// the other.
type Pipeline struct {
	builder   *catalog.Builder
	publisher Publisher
}

// NewPipeline creates a pipeline that delivers records through pub.
func NewPipeline(pub Publisher) *Pipeline {
	return &Pipeline{
		builder:   catalog.NewBuilder(),
		publisher: pub,
	}
}

// Run executes the request and reports the outcome of every sub-pipeline.
// It returns an error only when the request itself is unusable; job failures
// are reported inside the Result.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	if !req.Mode.Valid() {
		return nil, fmt.Errorf("unknown publish mode %q", req.Mode)
	}
	if !req.Environment.Valid() {
		return nil, fmt.Errorf("unknown environment %q", req.Environment)
	}

	result := &Result{
		Environment: req.Environment,
		Mode:        req.Mode,
	}

	var jobs []Job
	if req.Mode == ModeDataset || req.Mode == ModeAll {
		job, err := p.buildDatasetJob(req)
		if err != nil {
			failed := JobResult{Mode: ModeDataset}
			failed.Fail(err)
			result.Jobs = append(result.Jobs, failed)
		} else {
			jobs = append(jobs, job)
		}
	}
	if req.Mode == ModeWorkflow || req.Mode == ModeAll {
		job, err := p.buildWorkflowJob(req)
		if err != nil {
			failed := JobResult{Mode: ModeWorkflow}
			failed.Fail(err)
			result.Jobs = append(result.Jobs, failed)
		} else {
			jobs = append(jobs, job)
		}
	}

	result.Jobs = append(result.Jobs, p.runJobs(ctx, jobs)...)
	sortJobs(result.Jobs)
	result.PublishedAt = time.Now()

	for _, job := range result.Jobs {
		switch job.Status {
		case StatusFailed:
			log.Error("publish job failed", "mode", job.Mode, "error", job.Error)
		default:
			log.Info("publish job finished", "mode", job.Mode, "status", job.Status)
		}
	}

	return result, nil
}

// runJobs delivers each job through the publisher. Multiple jobs run
// concurrently; each job's failure is captured in its own result.
func (p *Pipeline) runJobs(ctx context.Context, jobs []Job) []JobResult {
	results := make([]JobResult, len(jobs))

	var wg sync.WaitGroup
	for i, job := range jobs {
		wg.Add(1)
		go func(i int, job Job) {
			defer wg.Done()
			log.Info("publishing records",
				"mode", job.Mode, "id", job.ID, "environment", job.Environment)
			results[i] = p.publisher.Publish(ctx, job)
		}(i, job)
	}
	wg.Wait()

	return results
}

// buildDatasetJob loads and validates the dataset configuration and builds
// its records.
func (p *Pipeline) buildDatasetJob(req Request) (Job, error) {
	if req.DatasetConfigPath == "" {
		return Job{}, catalog.NewValidationError("dataset_config", "a dataset configuration file is required")
	}

	cfg, err := config.LoadDatasetConfig(req.DatasetConfigPath)
	if err != nil {
		return Job{}, err
	}

	artifacts, err := p.builder.BuildDataset(cfg)
	if err != nil {
		return Job{}, err
	}

	return Job{
		Mode:        ModeDataset,
		ID:          cfg.CollectionID,
		Title:       cfg.CollectionID,
		Environment: req.Environment,
		Artifacts:   artifacts,
	}, nil
}

// buildWorkflowJob loads and validates the workflow configuration and builds
// its records.
func (p *Pipeline) buildWorkflowJob(req Request) (Job, error) {
	if req.WorkflowConfigPath == "" {
		return Job{}, catalog.NewValidationError("workflow_config", "a workflow configuration file is required")
	}

	cfg, err := config.LoadWorkflowConfig(req.WorkflowConfigPath)
	if err != nil {
		return Job{}, err
	}

	artifacts, err := p.builder.BuildWorkflow(cfg)
	if err != nil {
		return Job{}, err
	}

	return Job{
		Mode:        ModeWorkflow,
		ID:          cfg.WorkflowID,
		Title:       cfg.Properties.Title,
		Environment: req.Environment,
		Artifacts:   artifacts,
	}, nil
}

// sortJobs orders results dataset first, workflow second, so reports are
// stable regardless of completion order.
func sortJobs(jobs []JobResult) {
	order := func(m Mode) int {
		if m == ModeDataset {
			return 0
		}
		return 1
	}
	for i := 1; i < len(jobs); i++ {
		for j := i; j > 0 && order(jobs[j].Mode) < order(jobs[j-1].Mode); j-- {
			jobs[j], jobs[j-1] = jobs[j-1], jobs[j]
		}
	}
}
