package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vmweaver/vmweaver/pkg/telemetry"
)

func newGetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <vm-id>",
		Short: "Show a single VM record",
		Example: `  # Show a VM by id
  weaver get i-a1b2c3d4

  # Show as JSON
  weaver get i-a1b2c3d4 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			orch, _, cleanup, err := buildStack(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			vm, err := orch.GetVM(ctx, args[0])
			if err != nil {
				return err
			}

			return printResult(vm, func() {
				fmt.Printf("ID:         %s\n", vm.ID)
				fmt.Printf("Provider:   %s\n", vm.Provider)
				fmt.Printf("Status:     %s\n", vm.Status)
				fmt.Printf("Created:    %s\n", vm.CreatedAt.Format(time.RFC3339))
				fmt.Printf("Updated:    %s\n", vm.UpdatedAt.Format(time.RFC3339))
				fmt.Printf("Parameters: %v\n", telemetry.RedactParameters(vm.Parameters))
			})
		},
	}

	return cmd
}
