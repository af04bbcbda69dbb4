package commands

import (
	"github.com/spf13/cobra"

	"github.com/transcodarr/transcodarr/cmd/transcodarr/handlers"
)

// Uninstall returns the command that removes the worker from the pipeline.
func Uninstall() *cobra.Command {
	var configPath string
	var yes bool

	cmd := &cobra.Command{
		Use:   "uninstall",
		Short: "Remove the worker from the transcode pipeline",
		Long: `Deregister the worker from rffmpeg, remove the boot-time mount service
and mount script, and reset the local setup ledger.

Installed packages (Homebrew, ffmpeg), power management settings, and the
synthetic.conf entries are left in place; they are harmless without the
mounts and removing them is more invasive than an uninstall should be.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Uninstall(cmd.Context(), configPath, yes)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: transcodarr.yaml)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}
