// Package localfs publishes catalog records into a local directory instead
// of a remote repository. The directory is treated as a catalog tree, so
// repeated runs merge rather than duplicate.
package localfs

import (
	"context"
	"fmt"
	"os"

	"github.com/go-git/go-billy/v5/osfs"

	"github.com/deep-esdl/deep-code/pkg/log"
	"github.com/deep-esdl/deep-code/pkg/publisher"
	"github.com/deep-esdl/deep-code/pkg/tree"
)

// Publisher writes catalog records under a local directory.
type Publisher struct {
	dir string
}

// New creates a local directory publisher rooted at dir.
func New(dir string) *Publisher {
	return &Publisher{dir: dir}
}

// Name returns the provider name.
func (p *Publisher) Name() string {
	return "local"
}

// Publish merges the job's records into the catalog tree under the output
// directory.
func (p *Publisher) Publish(_ context.Context, job publisher.Job) publisher.JobResult {
	result := publisher.JobResult{
		Mode:   job.Mode,
		Status: publisher.StatusSuccess,
	}
	for _, artifact := range job.Artifacts {
		result.Identifiers = append(result.Identifiers, artifact.ID)
	}

	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		result.Fail(fmt.Errorf("failed to create output directory: %w", err))
		return result
	}

	fs := osfs.New(p.dir)
	cat, err := tree.Load(fs)
	if err != nil {
		result.Fail(fmt.Errorf("failed to load catalog tree: %w", err))
		return result
	}

	mutation, err := tree.Merge(cat, job.Artifacts)
	if err != nil {
		result.Fail(err)
		return result
	}

	if err := mutation.Apply(fs); err != nil {
		result.Fail(fmt.Errorf("failed to write records: %w", err))
		return result
	}

	log.Info("wrote catalog records", "dir", p.dir,
		"created", len(mutation.Created), "updated", len(mutation.Updated))
	result.AddAction("wrote_records",
		fmt.Sprintf("Wrote %d record file(s) under %s", len(mutation.Paths()), p.dir),
		map[string]string{"dir": p.dir})

	return result
}
