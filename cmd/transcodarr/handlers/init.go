package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"

	"github.com/transcodarr/transcodarr/internal/config"
)

// Factory function variables for init - can be replaced in tests.
var (
	// fileExists checks if a file exists.
	fileExists = func(path string) bool {
		_, err := os.Stat(path)
		return err == nil
	}

	// stdinIsTTY reports whether the wizard can run interactively.
	stdinIsTTY = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	// confirmOverwrite asks before replacing an existing config file.
	confirmOverwrite = func(path string) (bool, error) {
		var ok bool
		err := huh.NewConfirm().
			Title(fmt.Sprintf("%s already exists. Overwrite?", path)).
			Value(&ok).
			Run()
		return ok, err
	}

	// runWizard runs the interactive configuration wizard.
	runWizard = config.RunWizard

	// writeConfig writes the config to a file.
	writeConfig = config.Write
)

// Init runs the configuration wizard and writes the result to a file.
func Init(ctx context.Context, outputPath string) error {
	if !stdinIsTTY() {
		return fmt.Errorf("init needs an interactive terminal; write %s by hand or run init from a TTY", outputPath)
	}

	if fileExists(outputPath) {
		ok, err := confirmOverwrite(outputPath)
		if err != nil {
			return fmt.Errorf("failed to prompt for confirmation: %w", err)
		}
		if !ok {
			fmt.Println("Aborted.")
			return nil
		}
	}

	printWelcome()

	result, err := runWizard(ctx)
	if err != nil {
		return fmt.Errorf("wizard canceled: %w", err)
	}

	cfg := result.ToConfig()

	if err := writeConfig(cfg, outputPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	printInitSuccess(outputPath, cfg)

	return nil
}

func printWelcome() {
	fmt.Println()
	fmt.Println("transcodarr - hardware transcoding for Jellyfin")
	fmt.Println("===============================================")
	fmt.Println()
	fmt.Println("This wizard creates a configuration describing your NAS and the Mac")
	fmt.Println("that will run transcodes. Setup itself happens afterwards.")
	fmt.Println()
}

func printInitSuccess(outputPath string, cfg *config.Config) {
	fmt.Println()
	fmt.Println("Configuration saved!")
	fmt.Println()
	fmt.Printf("  File: %s\n", outputPath)
	fmt.Println()

	fmt.Println("Summary")
	fmt.Println("-------")
	fmt.Printf("  Dispatcher: %s@%s (container %s)\n", cfg.Dispatcher.User, cfg.Dispatcher.Address, cfg.Dispatcher.Container)
	fmt.Printf("  Worker:     %s@%s as %q (weight %d)\n", cfg.Worker.User, cfg.Worker.Address, cfg.Worker.Name, cfg.Worker.Weight)
	fmt.Printf("  Encoder:    %s\n", cfg.Encoder.Variant)
	fmt.Printf("  Media:      %s -> %s\n", cfg.Media.MediaExport, cfg.Media.MediaMount)
	fmt.Printf("  Cache:      %s -> %s\n", cfg.Media.CacheExport, cfg.Media.CacheMount)
	fmt.Println()

	fmt.Println("Next Steps")
	fmt.Println("----------")
	fmt.Println("  1. Provision the NAS side:")
	fmt.Printf("     transcodarr setup --role dispatcher -c %s\n", outputPath)
	fmt.Println()
	fmt.Println("  2. Provision the worker (expects one reboot):")
	fmt.Printf("     transcodarr setup -c %s\n", outputPath)
	fmt.Println()
	fmt.Println("  3. Verify:")
	fmt.Printf("     transcodarr doctor -c %s\n", outputPath)
	fmt.Println()
}
