// Package publisher orchestrates the catalog publishing pipeline: it turns
// dataset and workflow configurations into catalog records and hands them to
// a Publisher implementation (GitHub pull request or local directory).
package publisher

import (
	"context"
	"time"

	"github.com/deep-esdl/deep-code/pkg/catalog"
	"github.com/deep-esdl/deep-code/pkg/config"
)

// Mode selects which configuration inputs a publish run consumes.
type Mode string

const (
	// ModeDataset publishes the dataset collection and its variable records.
	ModeDataset Mode = "dataset"

	// ModeWorkflow publishes the workflow record and, when configured, its
	// experiment record.
	ModeWorkflow Mode = "workflow"

	// ModeAll publishes dataset and workflow records in one run.
	ModeAll Mode = "all"
)

// Valid reports whether the mode is one of the supported values.
func (m Mode) Valid() bool {
	switch m {
	case ModeDataset, ModeWorkflow, ModeAll:
		return true
	}
	return false
}

// Request contains the input parameters for a publish run.
type Request struct {
	// Mode selects dataset, workflow, or all.
	Mode Mode

	// Environment selects the target catalog repository.
	Environment config.Environment

	// DatasetConfigPath is the dataset configuration YAML file. Required
	// for dataset and all modes.
	DatasetConfigPath string

	// WorkflowConfigPath is the workflow configuration YAML file. Required
	// for workflow and all modes.
	WorkflowConfigPath string
}

// Job is one unit of publishing: the records of a single mode, ready to be
// merged into the catalog tree.
type Job struct {
	// Mode is the sub-pipeline this job belongs to (dataset or workflow).
	Mode Mode

	// ID is the primary identifier (collection id or workflow id) used for
	// branch naming and reporting.
	ID string

	// Title is a human-readable label for commit and PR text.
	Title string

	// Environment selects the target catalog repository.
	Environment config.Environment

	// Artifacts are the records to merge, in deterministic order.
	Artifacts []catalog.Artifact
}

// Action represents a single step taken while publishing a job.
type Action struct {
	// Type is the kind of action performed, e.g. "created_branch",
	// "created_commit", "pushed_branch", "created_pr", "wrote_records".
	Type string `json:"type"`

	// Description provides human-readable details about the action.
	Description string `json:"description"`

	// Metadata contains additional action-specific information.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Status is the outcome of a single job.
type Status string

const (
	// StatusSuccess means the job's records reached the target.
	StatusSuccess Status = "success"

	// StatusSkipped means the job had nothing to do (catalog already holds
	// identical records).
	StatusSkipped Status = "skipped"

	// StatusFailed means the job aborted before its records reached the
	// target.
	StatusFailed Status = "failed"
)

// JobResult is the outcome of one job within a publish run.
type JobResult struct {
	// Mode is the sub-pipeline this result belongs to.
	Mode Mode `json:"mode"`

	// Status is the job outcome.
	Status Status `json:"status"`

	// Identifiers are the record identifiers the job carried.
	Identifiers []string `json:"identifiers,omitempty"`

	// Branch is the publish branch used for remote publishing.
	Branch string `json:"branch,omitempty"`

	// PRNumber and PRURL identify the pull request that carries the
	// records, whether created by this run or reused from an earlier one.
	PRNumber int    `json:"pr_number,omitempty"`
	PRURL    string `json:"pr_url,omitempty"`

	// Actions is the ordered list of steps the job performed.
	Actions []Action `json:"actions,omitempty"`

	// Err holds the failure when Status is StatusFailed.
	Err error `json:"-"`

	// Error is the string form of Err for serialized results.
	Error string `json:"error,omitempty"`
}

// Fail marks the result failed and records the error.
func (r *JobResult) Fail(err error) {
	r.Status = StatusFailed
	r.Err = err
	if err != nil {
		r.Error = err.Error()
	}
}

// AddAction appends an action to the result.
func (r *JobResult) AddAction(actionType, description string, metadata map[string]string) {
	r.Actions = append(r.Actions, Action{
		Type:        actionType,
		Description: description,
		Metadata:    metadata,
	})
}

// Result is the outcome of a publish run across all its jobs.
type Result struct {
	// Environment is the catalog environment the run targeted.
	Environment config.Environment `json:"environment"`

	// Mode is the requested mode.
	Mode Mode `json:"mode"`

	// Jobs holds one entry per sub-pipeline, in request order (dataset
	// before workflow for all mode).
	Jobs []JobResult `json:"jobs"`

	// PublishedAt is the timestamp when the run completed.
	PublishedAt time.Time `json:"published_at"`
}

// Success reports whether every job completed without failure.
func (r *Result) Success() bool {
	for _, job := range r.Jobs {
		if job.Status == StatusFailed {
			return false
		}
	}
	return true
}

// Publisher delivers a job's records to a target catalog.
type Publisher interface {
	// Publish merges the job's artifacts into the catalog and delivers the
	// result. Failures are reported inside the JobResult rather than as a
	// bare error so that one job's failure never hides another's outcome.
	Publish(ctx context.Context, job Job) JobResult

	// Name returns the provider name (e.g. "github-pr", "local").
	Name() string
}
