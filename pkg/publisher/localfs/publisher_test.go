package localfs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/deep-esdl/deep-code/pkg/catalog"
	"github.com/deep-esdl/deep-code/pkg/config"
	"github.com/deep-esdl/deep-code/pkg/publisher"
	"github.com/deep-esdl/deep-code/pkg/tree"
)

func datasetJob(t *testing.T) publisher.Job {
	t.Helper()
	builder := &catalog.Builder{Now: func() time.Time {
		return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	}}
	artifacts, err := builder.BuildDataset(&config.DatasetConfig{
		DatasetID:    "x.zarr",
		CollectionID: "x",
		AccessLink:   "s3://deep-esdl-public/x.zarr",
		Variables:    []config.Variable{{Name: "tws", LongName: "Terrestrial Water Storage"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	return publisher.Job{
		Mode:        publisher.ModeDataset,
		ID:          "x",
		Environment: config.EnvTesting,
		Artifacts:   artifacts,
	}
}

func TestPublishWritesTree(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "catalog-out")
	pub := New(dir)

	result := pub.Publish(context.Background(), datasetJob(t))
	if result.Status != publisher.StatusSuccess {
		t.Fatalf("result = %+v", result)
	}

	record, err := os.ReadFile(filepath.Join(dir, "products", "x", "collection.json"))
	if err != nil {
		t.Fatalf("collection record: %v", err)
	}
	if !strings.Contains(string(record), `"osc:project": "deep-earth-system-data-lab"`) {
		t.Errorf("record = %s", record)
	}
	if !strings.HasSuffix(string(record), "\n") {
		t.Error("record lacks trailing newline")
	}

	if _, err := os.Stat(filepath.Join(dir, "variables", "tws", "catalog.json")); err != nil {
		t.Errorf("variable record: %v", err)
	}

	index, err := os.ReadFile(filepath.Join(dir, tree.IndexFile))
	if err != nil {
		t.Fatalf("index: %v", err)
	}
	if !strings.Contains(string(index), "products/x/collection.json") {
		t.Errorf("index = %s", index)
	}
}

func TestRepublishKeepsSingleIndexEntry(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "catalog-out")
	pub := New(dir)
	job := datasetJob(t)

	for i := 0; i < 2; i++ {
		if result := pub.Publish(context.Background(), job); result.Status != publisher.StatusSuccess {
			t.Fatalf("run %d = %+v", i, result)
		}
	}

	index, err := os.ReadFile(filepath.Join(dir, tree.IndexFile))
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(string(index), "products/x/collection.json"); got != 1 {
		t.Errorf("index references the collection %d times, want 1", got)
	}
}

func TestPublishMergeConflict(t *testing.T) {
	pub := New(filepath.Join(t.TempDir(), "out"))
	job := datasetJob(t)
	job.Artifacts = append(job.Artifacts, job.Artifacts[0])

	result := pub.Publish(context.Background(), job)
	if result.Status != publisher.StatusFailed {
		t.Fatalf("result = %+v", result)
	}
	if !tree.IsMergeConflictError(result.Err) {
		t.Errorf("error = %v, want MergeConflictError", result.Err)
	}
}
