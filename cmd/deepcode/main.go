package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/deep-esdl/deep-code/pkg/log"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "deepcode",
	Short: "Generate and publish EarthCODE open science catalog metadata",
	Long: `deepcode turns DeepESDL dataset and workflow configurations into
STAC collections and OGC API records and publishes them into the shared
open science catalog repository via pull requests.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.SetLevel(logLevel)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
