package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vmweaver/vmweaver/pkg/engine"
)

func newStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <vm-id> <new-status>",
		Short: "Apply a lifecycle transition to a VM",
		Long: `Move a VM record to a new lifecycle status.

Allowed transitions:
  pending     -> running, terminated
  running     -> stopped, terminated
  stopped     -> running, terminated
  terminated  -> (none)`,
		Example: `  # Start a pending VM
  weaver status i-a1b2c3d4 running

  # Terminate a VM
  weaver status i-a1b2c3d4 terminated`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			orch, _, cleanup, err := buildStack(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			vm, err := orch.UpdateVMStatus(ctx, args[0], engine.VMStatus(args[1]))
			if err != nil {
				return err
			}

			return printResult(vm, func() {
				fmt.Printf("%s is now %s\n", vm.ID, vm.Status)
			})
		},
	}

	return cmd
}
