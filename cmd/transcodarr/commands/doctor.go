package commands

import (
	"github.com/spf13/cobra"

	"github.com/transcodarr/transcodarr/cmd/transcodarr/handlers"
)

// Doctor returns the command that probes a host and reports its capabilities.
//
// Optional flags:
//
//	--config, -c: path to the configuration file (default: transcodarr.yaml)
//	--role, -r:   host role to probe: worker or dispatcher (default: worker)
//	--json:       emit machine-readable probe results instead of the table
func Doctor() *cobra.Command {
	var configPath string
	var role string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Probe a host and report its provisioning state",
		Long: `Run every capability probe against a host and print the results.

Doctor is read-only: it never changes the host, it only reports which
capabilities are satisfied and what setup would still have to do.

Examples:
  # Check the worker
  transcodarr doctor

  # Check the dispatcher NAS
  transcodarr doctor --role dispatcher`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Doctor(cmd.Context(), configPath, role, asJSON)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: transcodarr.yaml)")
	cmd.Flags().StringVarP(&role, "role", "r", "worker", "Host role to probe (worker or dispatcher)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit machine-readable probe results")

	return cmd
}
