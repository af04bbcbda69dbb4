package commands

import (
	"github.com/spf13/cobra"

	"github.com/transcodarr/transcodarr/cmd/transcodarr/handlers"
)

// Setup returns the command that provisions a host for its role.
//
// Optional flags:
//
//	--config, -c:  path to the configuration file (default: transcodarr.yaml)
//	--role, -r:    host role to provision: worker or dispatcher (default: worker)
//	--resume:      continue a setup paused by a pending reboot
//	--reset-step:  clear one step's completion record so it runs again
//	--yes, -y:     skip interactive confirmations (reboot prompt)
func Setup() *cobra.Command {
	var opts handlers.SetupOptions

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Provision a host for its role",
		Long: `Provision the dispatcher NAS or a macOS transcode worker.

Setup probes the host first and only runs the steps whose capabilities are
missing, so re-running it is always safe. Worker setup includes a reboot to
materialize the mount directories; setup pauses for it and resumes from the
recorded step afterwards.

Examples:
  # Provision the worker named in transcodarr.yaml
  transcodarr setup

  # Provision the dispatcher NAS
  transcodarr setup --role dispatcher

  # Continue after the worker rebooted
  transcodarr setup --resume

  # Re-run one step whose capability drifted
  transcodarr setup --reset-step nfs-mounts`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Setup(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file (default: transcodarr.yaml)")
	cmd.Flags().StringVarP(&opts.Role, "role", "r", "worker", "Host role to provision (worker or dispatcher)")
	cmd.Flags().BoolVar(&opts.Resume, "resume", false, "Continue a setup paused by a pending reboot")
	cmd.Flags().StringVar(&opts.ResetStep, "reset-step", "", "Clear one step's completion record so it runs again")
	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "Skip interactive confirmations")

	return cmd
}
