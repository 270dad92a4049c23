package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/deep-esdl/deep-code/pkg/config"
	"github.com/deep-esdl/deep-code/pkg/github"
	"github.com/deep-esdl/deep-code/pkg/log"
	"github.com/deep-esdl/deep-code/pkg/publisher"
	"github.com/deep-esdl/deep-code/pkg/publisher/githubpr"
	"github.com/deep-esdl/deep-code/pkg/publisher/localfs"
)

var (
	publishEnvironment    string
	publishMode           string
	publishDatasetConfig  string
	publishWorkflowConfig string
	publishOutputDir      string
	publishResultDir      string
	publishTimeout        time.Duration
)

var publishCmd = &cobra.Command{
	Use:   "publish [dataset-config] [workflow-config]",
	Short: "Publish dataset and workflow metadata to the open science catalog",
	Long: `Publish converts dataset and workflow configurations into catalog
records and delivers them as a pull request against the catalog repository
of the chosen environment. With --output the records are written into a
local directory instead.

In all mode the dataset and workflow records are published independently;
a failure in one does not stop the other, and the command exits non-zero
when any part failed.

Examples:
  deepcode publish dataset-config.yaml workflow-config.yaml
  deepcode publish dataset-config.yaml -m dataset -e staging
  deepcode publish workflow-config.yaml -m workflow
  deepcode publish dataset-config.yaml -m dataset -o ./catalog-out`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := config.ParseEnvironment(publishEnvironment)
		if err != nil {
			return err
		}

		mode := publisher.Mode(publishMode)
		if !mode.Valid() {
			return fmt.Errorf("unknown mode %q (expected dataset, workflow or all)", publishMode)
		}

		datasetPath, workflowPath := resolveConfigPaths(mode, args)

		pub, err := buildPublisher()
		if err != nil {
			return err
		}

		pipeline := publisher.NewPipeline(pub)
		result, err := pipeline.Run(cmd.Context(), publisher.Request{
			Mode:               mode,
			Environment:        env,
			DatasetConfigPath:  datasetPath,
			WorkflowConfigPath: workflowPath,
		})
		if err != nil {
			return err
		}

		if publishResultDir != "" {
			if err := publisher.WriteResult(publishResultDir, result); err != nil {
				return err
			}
		}

		printSummary(result)
		if !result.Success() {
			return fmt.Errorf("publishing to %s finished with failures", env)
		}
		return nil
	},
}

// resolveConfigPaths maps positional arguments onto the config flags. A
// single argument belongs to the requested mode; two arguments are dataset
// first, workflow second. Explicit flags win.
func resolveConfigPaths(mode publisher.Mode, args []string) (dataset, workflow string) {
	dataset = publishDatasetConfig
	workflow = publishWorkflowConfig

	switch len(args) {
	case 1:
		if mode == publisher.ModeWorkflow {
			if workflow == "" {
				workflow = args[0]
			}
		} else if dataset == "" {
			dataset = args[0]
		}
	case 2:
		if dataset == "" {
			dataset = args[0]
		}
		if workflow == "" {
			workflow = args[1]
		}
	}
	return dataset, workflow
}

// buildPublisher selects the delivery backend: a local directory when
// --output is set, otherwise a pull request against the catalog repository.
func buildPublisher() (publisher.Publisher, error) {
	if publishOutputDir != "" {
		return localfs.New(publishOutputDir), nil
	}

	creds, err := config.LoadGitAccess(".")
	if err != nil {
		return nil, err
	}

	client := github.NewClient(creds.Token,
		github.WithRetryConfig(github.DefaultRetryConfig()),
	)
	return githubpr.New(client, creds, githubpr.WithTimeout(publishTimeout)), nil
}

func printSummary(result *publisher.Result) {
	for _, job := range result.Jobs {
		switch job.Status {
		case publisher.StatusFailed:
			fmt.Printf("%s: failed: %s\n", job.Mode, job.Error)
		case publisher.StatusSkipped:
			fmt.Printf("%s: already up to date", job.Mode)
			if job.PRURL != "" {
				fmt.Printf(" (%s)", job.PRURL)
			}
			fmt.Println()
		default:
			fmt.Printf("%s: published", job.Mode)
			if job.PRURL != "" {
				fmt.Printf(" (%s)", job.PRURL)
			}
			fmt.Println()
			for _, action := range job.Actions {
				fmt.Printf("  - %s\n", action.Description)
			}
		}
	}
	log.Sync()
}

func init() {
	publishCmd.Flags().StringVarP(&publishEnvironment, "environment", "e", "production", "Target catalog environment (production, staging, testing)")
	publishCmd.Flags().StringVarP(&publishMode, "mode", "m", "all", "What to publish (dataset, workflow, all)")
	publishCmd.Flags().StringVar(&publishDatasetConfig, "dataset-config", "", "Dataset configuration file")
	publishCmd.Flags().StringVar(&publishWorkflowConfig, "workflow-config", "", "Workflow configuration file")
	publishCmd.Flags().StringVarP(&publishOutputDir, "output", "o", "", "Write records into a local directory instead of publishing")
	publishCmd.Flags().StringVar(&publishResultDir, "result-dir", "", "Directory to write publish-result.json into")
	publishCmd.Flags().DurationVar(&publishTimeout, "timeout", githubpr.DefaultTimeout, "Deadline for each publish job, covering all remote operations")
	rootCmd.AddCommand(publishCmd)
}
