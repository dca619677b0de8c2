package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	verbose    bool
	jsonOutput bool
)

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "weaver",
		Short: "VMWeaver - Unified Multi-Cloud VM Provisioning",
		Long: `VMWeaver simulates virtual machine provisioning across
multiple cloud providers behind a single request shape.

Features:
  - Unified provisioning API over AWS, Azure, GCP and on-premise targets
  - Per-provider parameter validation with precise error reporting
  - Explicit VM lifecycle state machine with durable records
  - SQLite-backed persistence with aggregate reporting
  - Prometheus metrics and optional request tracing`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	}

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newProvisionCommand())
	rootCmd.AddCommand(newListCommand())
	rootCmd.AddCommand(newGetCommand())
	rootCmd.AddCommand(newStatusCommand())
	rootCmd.AddCommand(newProvidersCommand())
	rootCmd.AddCommand(newSummaryCommand())

	return rootCmd
}
