package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vmweaver/vmweaver/pkg/engine"
)

func newProvisionCommand() *cobra.Command {
	var (
		params     map[string]string
		paramsFile string
	)

	cmd := &cobra.Command{
		Use:   "provision <provider>",
		Short: "Provision a VM on a provider",
		Long: `Submit a provisioning request directly against the local store.

Each provider requires its own parameter set:
  aws         instance_type, region, vpc, ami
  azure       vm_size, resource_group, location
  gcp         machine_type, zone, project_id
  on_premise  cpu_cores, ram_gb, storage_gb`,
		Example: `  # Provision an AWS instance
  weaver provision aws -p instance_type=t2.micro -p region=us-east-1 -p vpc=vpc-123 -p ami=ami-456

  # Provision from a JSON parameter file
  weaver provision gcp --params-file gcp-vm.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			parameters := engine.Parameters{}
			if paramsFile != "" {
				data, err := os.ReadFile(paramsFile)
				if err != nil {
					return fmt.Errorf("failed to read params file: %w", err)
				}
				if err := json.Unmarshal(data, &parameters); err != nil {
					return fmt.Errorf("failed to parse params file: %w", err)
				}
			}
			for k, v := range params {
				parameters[k] = v
			}

			orch, _, cleanup, err := buildStack(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := orch.Provision(ctx, engine.Request{
				Provider:   engine.ProviderType(args[0]),
				Parameters: parameters,
			})
			if err != nil {
				return err
			}

			if printErr := printResult(result, func() {
				if result.Status == engine.ResultSuccess {
					fmt.Printf("Provisioned %s on %s (request %s)\n",
						result.VMID, result.Provider, result.RequestID)
				} else {
					fmt.Printf("Provisioning failed: %s\n", result.ErrorMessage)
				}
			}); printErr != nil {
				return printErr
			}
			if result.Status != engine.ResultSuccess {
				return fmt.Errorf("provisioning failed")
			}
			return nil
		},
	}

	cmd.Flags().StringToStringVarP(&params, "param", "p", nil, "provider parameters (key=value)")
	cmd.Flags().StringVar(&paramsFile, "params-file", "", "JSON file with provider parameters")

	return cmd
}
