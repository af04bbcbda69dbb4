package handlers

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/transcodarr/transcodarr/internal/probe"
)

// confirmUninstall asks before tearing down (replaceable in tests).
var confirmUninstall = func(worker string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(fmt.Sprintf("Remove %s from the transcode pipeline?", worker)).
		Description("Deregisters the worker, removes the mount service and script, and resets the local ledger. Packages and power settings stay.").
		Affirmative("Remove").
		Negative("Cancel").
		Value(&ok).
		Run()
	return ok, err
}

// Uninstall removes the worker from the pipeline: rffmpeg registration,
// boot-time mount service, mount script, local ledger. Each part is removed
// independently so a partially-provisioned host uninstalls cleanly too.
func Uninstall(ctx context.Context, configPath string, yes bool) error {
	cfg, err := loadConfigFile(resolveConfigPath(configPath))
	if err != nil {
		return err
	}

	if !yes {
		ok, err := confirmUninstall(cfg.Worker.Name)
		if err != nil {
			return fmt.Errorf("failed to prompt for confirmation: %w", err)
		}
		if !ok {
			fmt.Println("Aborted.")
			return nil
		}
	}

	timeouts := loadTimeouts()

	// Deregistration first: once the worker is out of the table, rffmpeg
	// stops sending jobs while the rest is dismantled.
	dispatcher, err := dispatcherRemote(cfg, timeouts)
	if err != nil {
		return err
	}
	client := newDispatchClient(dispatcher, cfg.Dispatcher.Container)
	registered, err := client.Registered(ctx, cfg.Worker.Name)
	if err != nil {
		fmt.Printf("Warning: could not query the worker table: %v\n", err)
	} else if registered {
		if err := client.RemoveWorker(ctx, cfg.Worker.Name); err != nil {
			return fmt.Errorf("failed to deregister %s: %w", cfg.Worker.Name, err)
		}
		fmt.Printf("Deregistered %s from rffmpeg.\n", cfg.Worker.Name)
	}

	worker, err := workerRemote(cfg, timeouts)
	if err != nil {
		return err
	}

	teardown := "set -eu\n" +
		fmt.Sprintf("launchctl bootout system/%s 2>/dev/null || true\n", probe.MountServiceLabel) +
		fmt.Sprintf("rm -f /Library/LaunchDaemons/%s.plist\n", probe.MountServiceLabel) +
		"rm -f /opt/transcodarr/bin/mount-shares.sh\n"
	if _, err := worker.ExecPrivilegedBatch(ctx, teardown); err != nil {
		return fmt.Errorf("failed to remove the mount service: %w", err)
	}
	fmt.Println("Removed the mount service and script.")

	st, err := openStateStore()
	if err != nil {
		return fmt.Errorf("failed to open state: %w", err)
	}
	if err := st.Reset(); err != nil {
		return fmt.Errorf("failed to reset state: %w", err)
	}
	fmt.Printf("Reset the setup ledger at %s.\n", st.Path())

	fmt.Println("\nLeft in place: installed packages, power settings, synthetic.conf entries.")
	return nil
}
