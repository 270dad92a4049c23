package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	generateOutputDir string
	generateForce     bool
)

const datasetConfigTemplate = `# Dataset publishing configuration.
dataset_id: example.zarr
collection_id: example-collection
osc_themes:
  - land
dataset_status: ongoing
osc_region: Global
documentation_link: https://deepesdl.readthedocs.io/en/latest/datasets/example
access_link: s3://deep-esdl-public/example.zarr
# Optional extents; defaults cover the whole globe with an open interval.
# spatial_extent: [-180.0, -90.0, 180.0, 90.0]
# temporal_extent: ["2000-01-01", "2020-12-31"]
variables:
  - name: Example Variable
    long_name: example_variable
    standard_name: example_variable
cf_parameter:
  - name: example-collection
`

const workflowConfigTemplate = `# Workflow publishing configuration.
workflow_id: example-workflow
properties:
  title: Example workflow
  description: Demonstrates how to produce the example dataset.
  keywords:
    - Earth Science
  themes:
    - land
  license: proprietary
  jupyter_kernel_info:
    name: deep-esdl
    python_version: "3.11"
    env_file: https://github.com/deepesdl/deep-code/blob/main/environment.yml
jupyter_notebook_url: https://github.com/deepesdl/deepesdl-doc/blob/main/notebooks/example.ipynb
contacts:
  - name: Jane Doe
    organization: Example Institute
    links:
      - rel: about
        type: text/html
        href: https://www.example.org/jane-doe
`

var generateConfigCmd = &cobra.Command{
	Use:   "generate-config",
	Short: "Write starter dataset and workflow configuration files",
	Long: `Generate starter configuration files for publishing. The generated
dataset-config.yaml and workflow-config.yaml carry every supported field
with example values and are meant to be edited before publishing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := os.MkdirAll(generateOutputDir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		files := []struct {
			name    string
			content string
		}{
			{"dataset-config.yaml", datasetConfigTemplate},
			{"workflow-config.yaml", workflowConfigTemplate},
		}
		for _, file := range files {
			path := filepath.Join(generateOutputDir, file.name)
			if !generateForce {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", path)
				}
			}
			if err := os.WriteFile(path, []byte(file.content), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			fmt.Printf("Wrote %s\n", path)
		}
		return nil
	},
}

func init() {
	generateConfigCmd.Flags().StringVarP(&generateOutputDir, "output", "o", ".", "Directory to write the configuration files into")
	generateConfigCmd.Flags().BoolVar(&generateForce, "force", false, "Overwrite existing configuration files")
	rootCmd.AddCommand(generateConfigCmd)
}
