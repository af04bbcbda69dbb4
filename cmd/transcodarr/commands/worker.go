package commands

import (
	"github.com/spf13/cobra"

	"github.com/transcodarr/transcodarr/cmd/transcodarr/handlers"
)

// Worker returns the command group for rffmpeg worker registrations.
//
// These subcommands administer the dispatcher's host table directly. They do
// not provision anything: to bring up a new machine, point the configuration
// at it and run setup.
func Worker() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Manage rffmpeg worker registrations",
	}

	cmd.AddCommand(workerStatus())
	cmd.AddCommand(workerAdd())
	cmd.AddCommand(workerRemove())

	return cmd
}

func workerStatus() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show workers registered with rffmpeg",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.WorkerStatus(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: transcodarr.yaml)")

	return cmd
}

func workerAdd() *cobra.Command {
	var configPath string
	var name string
	var weight int

	cmd := &cobra.Command{
		Use:   "add <address>",
		Short: "Register an already-provisioned worker with rffmpeg",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.WorkerAdd(cmd.Context(), configPath, args[0], name, weight)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: transcodarr.yaml)")
	cmd.Flags().StringVarP(&name, "name", "n", "", "Registration name (default: the address)")
	cmd.Flags().IntVarP(&weight, "weight", "w", 1, "Relative share of jobs routed to this worker")

	return cmd
}

func workerRemove() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "remove <name>",
		Short: "Deregister a worker from rffmpeg",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.WorkerRemove(cmd.Context(), configPath, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: transcodarr.yaml)")

	return cmd
}
