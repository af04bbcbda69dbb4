package commands

import (
	"github.com/spf13/cobra"

	"github.com/transcodarr/transcodarr/cmd/transcodarr/handlers"
)

// Init returns the command that creates a configuration file interactively.
//
// Optional flags:
//
//	--output, -o: where to write the configuration (default: transcodarr.yaml)
func Init() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file interactively",
		Long: `Create a transcodarr configuration file using an interactive wizard.

The wizard asks for the NAS and worker connection details, the NFS exports,
and the hardware encoder, then writes a complete configuration file.

Examples:
  # Create transcodarr.yaml in the current directory
  transcodarr init

  # Write to a specific path
  transcodarr init -o ~/transcodarr.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Init(cmd.Context(), outputPath)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "transcodarr.yaml", "Path to write the configuration file")

	return cmd
}
