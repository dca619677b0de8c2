package commands

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vmweaver/vmweaver/pkg/providers"
)

func newProvidersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "providers",
		Short: "List supported providers and their required parameters",
		Example: `  # Show the provider catalog
  weaver providers`,
		RunE: func(cmd *cobra.Command, args []string) error {
			infos := providers.NewRegistry().List()

			return printResult(infos, func() {
				w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "TYPE\tNAME\tREQUIRED PARAMETERS")
				for _, info := range infos {
					fmt.Fprintf(w, "%s\t%s\t%s\n",
						info.Type, info.DisplayName, strings.Join(info.RequiredParameters, ", "))
				}
				_ = w.Flush()
			})
		},
	}

	return cmd
}
