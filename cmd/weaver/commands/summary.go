package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSummaryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show aggregate counts over all VM records",
		Example: `  # Show the fleet summary
  weaver summary`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			orch, _, cleanup, err := buildStack(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			summary, err := orch.Summary(ctx)
			if err != nil {
				return err
			}

			return printResult(summary, func() {
				fmt.Printf("Total VMs: %d\n\n", summary.Total)
				fmt.Println("By provider:")
				for provider, n := range summary.ByProvider {
					fmt.Printf("  %-12s %d\n", provider, n)
				}
				fmt.Println("\nBy status:")
				for status, n := range summary.ByStatus {
					fmt.Printf("  %-12s %d\n", status, n)
				}
				if len(summary.Recent) > 0 {
					fmt.Println("\nMost recent:")
					printVMTable(summary.Recent)
				}
			})
		},
	}

	return cmd
}
