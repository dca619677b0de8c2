package commands

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/vmweaver/vmweaver/pkg/engine"
)

func newListCommand() *cobra.Command {
	var (
		provider string
		status   string
		limit    int
		offset   int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List VM records",
		Long: `List VM records most-recent-first.

Records can be narrowed to a single provider, a single lifecycle
status, or both. Without filters the listing is paginated.`,
		Example: `  # List all VMs
  weaver list

  # List the second page of ten
  weaver list --limit 10 --offset 10

  # List running AWS VMs
  weaver list --provider aws --status running`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			orch, cfg, cleanup, err := buildStack(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if limit <= 0 {
				limit = cfg.Server.DefaultPageSize
			}

			var vms []*engine.VMRecord
			switch {
			case provider != "":
				var st *engine.VMStatus
				if status != "" {
					s := engine.VMStatus(status)
					if !s.Valid() {
						return fmt.Errorf("unknown status: %s", status)
					}
					st = &s
				}
				vms, err = orch.VMsByProvider(ctx, engine.ProviderType(provider), st)
			case status != "":
				s := engine.VMStatus(status)
				if !s.Valid() {
					return fmt.Errorf("unknown status: %s", status)
				}
				vms, err = orch.VMsByStatus(ctx, s)
			default:
				vms, err = orch.ListVMs(ctx, limit, offset)
			}
			if err != nil {
				return err
			}

			return printResult(vms, func() { printVMTable(vms) })
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "filter by provider type")
	cmd.Flags().StringVar(&status, "status", "", "filter by lifecycle status")
	cmd.Flags().IntVar(&limit, "limit", 0, "page size (default from config)")
	cmd.Flags().IntVar(&offset, "offset", 0, "page offset")

	return cmd
}

func printVMTable(vms []*engine.VMRecord) {
	if len(vms) == 0 {
		fmt.Println("No VM records found")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPROVIDER\tSTATUS\tCREATED")
	for _, vm := range vms {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			vm.ID, vm.Provider, vm.Status, vm.CreatedAt.Format(time.RFC3339))
	}
	_ = w.Flush()
}
