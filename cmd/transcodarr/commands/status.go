package commands

import (
	"github.com/spf13/cobra"

	"github.com/transcodarr/transcodarr/cmd/transcodarr/handlers"
)

// Status returns the command that prints the setup ledger and worker table.
func Status() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show setup progress and registered workers",
		Long: `Show the local setup ledger and the dispatcher's worker table.

The ledger part reads the local state file only. The worker table queries
rffmpeg on the NAS; if the NAS is unreachable the ledger is still shown.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Status(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: transcodarr.yaml)")

	return cmd
}
