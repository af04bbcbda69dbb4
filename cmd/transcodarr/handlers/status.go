package handlers

import (
	"context"
	"fmt"

	"github.com/transcodarr/transcodarr/internal/config"
	"github.com/transcodarr/transcodarr/internal/dispatch"
	"github.com/transcodarr/transcodarr/internal/plan"
	"github.com/transcodarr/transcodarr/internal/ui"
)

// Factory function variables for status - can be replaced in tests.
var (
	renderStatus = ui.RenderStatus

	// newDispatchClient creates the rffmpeg admin client.
	newDispatchClient = func(runner dispatch.Runner, container string) *dispatch.Client {
		return dispatch.NewClient(runner, container)
	}
)

// Status prints the local setup ledger and the dispatcher's worker table.
// The ledger always renders; a broken NAS connection only degrades the
// worker table.
func Status(ctx context.Context, configPath string) error {
	cfg, err := loadConfigFile(resolveConfigPath(configPath))
	if err != nil {
		return err
	}

	st, err := openStateStore()
	if err != nil {
		return fmt.Errorf("failed to open state: %w", err)
	}

	role := st.Role()
	if role == "" {
		role = string(config.RoleWorker)
	}

	report := ui.StatusReport{
		Role:           role,
		StatePath:      st.Path(),
		CompletedSteps: st.CompletedSteps(),
		RequiredSteps:  plan.RequiredSteps(config.Role(role)),
	}
	report.PendingReboot, report.ResumeStep, report.ResumeHost = st.PendingReboot()

	if workers, err := fetchWorkers(ctx, cfg); err != nil {
		report.WorkersErr = err
	} else {
		report.Workers = workers
	}

	fmt.Print(renderStatus(report))
	return nil
}

func fetchWorkers(ctx context.Context, cfg *config.Config) ([]dispatch.Host, error) {
	dispatcher, err := dispatcherRemote(cfg, loadTimeouts())
	if err != nil {
		return nil, err
	}
	return newDispatchClient(dispatcher, cfg.Dispatcher.Container).Status(ctx)
}
