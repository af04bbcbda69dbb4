package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/transcodarr/transcodarr/internal/config"
	"github.com/transcodarr/transcodarr/internal/plan"
	"github.com/transcodarr/transcodarr/internal/probe"
	"github.com/transcodarr/transcodarr/internal/provisioning"
	"github.com/transcodarr/transcodarr/internal/provisioning/reboot"
	"github.com/transcodarr/transcodarr/internal/provisioning/steps"
	"github.com/transcodarr/transcodarr/internal/state"
)

// SetupOptions carries the setup command's flags.
type SetupOptions struct {
	ConfigPath string
	Role       string
	Resume     bool
	ResetStep  string
	Yes        bool
}

// rebootRunner matches reboot.Orchestrator's Execute for test injection.
type rebootRunner interface {
	Execute(ctx context.Context, req *provisioning.RebootRequest, host reboot.Host) error
}

// Factory function variables for setup - can be replaced in tests.
var (
	// buildWorkerSteps assembles the worker-role step sequence.
	buildWorkerSteps = steps.WorkerSteps

	// buildDispatcherSteps assembles the dispatcher-role step sequence.
	buildDispatcherSteps = steps.DispatcherSteps

	// runPipeline executes a step sequence.
	runPipeline = provisioning.RunSteps

	// newRebootRunner creates the reboot orchestrator.
	newRebootRunner = func(st *state.Store, observer provisioning.Observer, timeouts *config.Timeouts, assumeYes bool) rebootRunner {
		return reboot.NewOrchestrator(st, observer, timeouts, reboot.WithAssumeYes(assumeYes))
	}

	// loadTimeouts reads the environment-driven timeout set.
	loadTimeouts = config.LoadTimeouts
)

// Setup provisions a host for its role: probe, classify, run the missing
// steps, and shepherd the worker through its reboot when one is required.
func Setup(ctx context.Context, opts SetupOptions) error {
	cfg, err := loadConfigFile(resolveConfigPath(opts.ConfigPath))
	if err != nil {
		return err
	}

	role, err := config.ParseRole(opts.Role)
	if err != nil {
		return err
	}

	st, err := openStateStore()
	if err != nil {
		return fmt.Errorf("failed to open state: %w", err)
	}

	if opts.ResetStep != "" {
		if err := st.ResetStep(opts.ResetStep); err != nil {
			return fmt.Errorf("failed to reset step %s: %w", opts.ResetStep, err)
		}
		fmt.Printf("Cleared completion record for step %s.\n", opts.ResetStep)
	}

	if err := st.Begin(string(role)); err != nil {
		return fmt.Errorf("failed to begin setup: %w", err)
	}
	if err := seedStateConfig(st, cfg); err != nil {
		return fmt.Errorf("failed to record setup config: %w", err)
	}

	timeouts := loadTimeouts()

	dispatcher, err := dispatcherRemote(cfg, timeouts)
	if err != nil {
		return err
	}

	var worker remote
	if role == config.RoleWorker {
		worker, err = workerRemote(cfg, timeouts)
		if err != nil {
			return err
		}
	}

	if err := handlePendingReboot(ctx, st, worker, opts.Resume, timeouts); err != nil {
		return err
	}

	printClassification(ctx, role, cfg, worker, dispatcher)

	pctx := provisioning.NewContext(ctx, cfg, st, worker, dispatcher)

	var sequence []provisioning.Step
	if role == config.RoleWorker {
		sequence = buildWorkerSteps(cfg, worker, dispatcher)
	} else {
		sequence = buildDispatcherSteps(cfg, dispatcher)
	}

	// Each pass either finishes, fails, or stops at a reboot. One reboot per
	// step is the ceiling, so the loop is bounded by the sequence length.
	for range sequence {
		report, err := runPipeline(pctx, sequence)
		if err != nil {
			return err
		}
		if report.Reboot == nil {
			printSetupSuccess(role, cfg)
			return nil
		}

		orch := newRebootRunner(st, pctx.Observer, timeouts, opts.Yes)
		if err := orch.Execute(ctx, report.Reboot, worker); err != nil {
			if errors.Is(err, reboot.ErrDeclined) {
				fmt.Printf("\nSetup paused. Reboot %s when convenient, then run `transcodarr setup --resume`.\n", report.Reboot.Host)
				// Record the resume point so --resume knows where to pick up.
				if serr := st.SetPendingReboot(report.Reboot.StepID, report.Reboot.Host); serr != nil {
					return serr
				}
				return nil
			}
			return err
		}
	}

	return fmt.Errorf("setup did not converge; run `transcodarr doctor` to inspect the host")
}

// handlePendingReboot deals with a marker left by a previous run. Without
// --resume it refuses to continue, because the operator may not know the
// host still has to restart.
func handlePendingReboot(ctx context.Context, st *state.Store, worker remote, resume bool, timeouts *config.Timeouts) error {
	pending, step, host := st.PendingReboot()
	if !pending {
		return nil
	}
	if !resume {
		return fmt.Errorf("a reboot of %s is pending (step %s); restart it if you have not, then run `transcodarr setup --resume`", host, step)
	}
	if worker == nil {
		return fmt.Errorf("a reboot of %s is pending but this invocation has no worker connection; run `transcodarr setup --resume` with the worker role", host)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.SSHDial)
	defer cancel()
	if err := worker.Ping(pingCtx); err != nil {
		return fmt.Errorf("%s is not reachable yet: %w", host, err)
	}

	if err := st.ClearPendingReboot(); err != nil {
		return fmt.Errorf("failed to clear reboot state: %w", err)
	}
	fmt.Printf("Resuming setup after reboot (step %s).\n", step)
	return nil
}

// printClassification runs the probes once up front so the operator sees
// what kind of run this will be before any step fires.
func printClassification(ctx context.Context, role config.Role, cfg *config.Config, worker, dispatcher remote) {
	var probes []probe.Probe
	if role == config.RoleWorker {
		probes = probe.WorkerProbes(worker, dispatcher, cfg)
	} else {
		probes = probe.DispatcherProbes(dispatcher, cfg)
	}

	results := probe.Run(ctx, probes)
	status := plan.Classify(role, results)
	pending := plan.Pending(role, results)

	fmt.Printf("Host classification: %s\n", status)
	if len(pending) > 0 {
		fmt.Printf("Steps to run: %v\n", pending)
	}
}

// seedStateConfig records the connection facts the transcode monitor reads
// out of the state file.
func seedStateConfig(st *state.Store, cfg *config.Config) error {
	pairs := map[string]string{
		"nas_ip":             cfg.Dispatcher.Address,
		"mac_user":           cfg.Worker.User,
		"media_path":         cfg.Media.MediaMount,
		"cache_path":         cfg.Media.CacheMount,
		"jellyfin_container": cfg.Dispatcher.Container,
	}
	for key, value := range pairs {
		if err := st.Set(key, value); err != nil {
			return err
		}
	}
	return nil
}

func printSetupSuccess(role config.Role, cfg *config.Config) {
	fmt.Println()
	fmt.Println("Setup complete!")
	if role == config.RoleWorker {
		fmt.Printf("\n%s is registered with rffmpeg and will pick up transcode jobs.\n", cfg.Worker.Name)
		fmt.Println("Play something in Jellyfin that needs transcoding, then check:")
		fmt.Println("  transcodarr status")
	} else {
		fmt.Println("\nThe dispatcher is ready. Provision a worker next:")
		fmt.Println("  transcodarr setup --role worker")
	}
}
