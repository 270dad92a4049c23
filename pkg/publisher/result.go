package publisher

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ResultFile is the default file name for a serialized publish result.
const ResultFile = "publish-result.json"

// WriteResult writes the publish result as JSON into dir. It is used to hand
// the run's outcome to calling automation (CI jobs, notebooks).
func WriteResult(dir string, result *Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create result directory: %w", err)
	}

	if result.PublishedAt.IsZero() {
		result.PublishedAt = time.Now()
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal publish result: %w", err)
	}

	path := filepath.Join(dir, ResultFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write publish result: %w", err)
	}

	return nil
}

// ReadResult reads a serialized publish result from dir.
func ReadResult(dir string) (*Result, error) {
	path := filepath.Join(dir, ResultFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read publish result: %w", err)
	}

	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal publish result: %w", err)
	}

	return &result, nil
}
