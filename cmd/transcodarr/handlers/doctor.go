package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/transcodarr/transcodarr/internal/config"
	"github.com/transcodarr/transcodarr/internal/plan"
	"github.com/transcodarr/transcodarr/internal/probe"
	"github.com/transcodarr/transcodarr/internal/ui"
)

// renderDoctor renders the doctor report (replaceable in tests).
var renderDoctor = ui.RenderDoctor

// doctorJSON is the machine-readable doctor output.
type doctorJSON struct {
	Host    string          `json:"host"`
	Role    string          `json:"role"`
	Status  string          `json:"status"`
	Results map[string]bool `json:"results"`
	Pending []string        `json:"pending"`
}

// Doctor probes one host and prints its capability table and classification.
// It is strictly read-only.
func Doctor(ctx context.Context, configPath, roleFlag string, asJSON bool) error {
	cfg, err := loadConfigFile(resolveConfigPath(configPath))
	if err != nil {
		return err
	}

	role, err := config.ParseRole(roleFlag)
	if err != nil {
		return err
	}

	timeouts := loadTimeouts()

	dispatcher, err := dispatcherRemote(cfg, timeouts)
	if err != nil {
		return err
	}

	var probes []probe.Probe
	var host string
	if role == config.RoleWorker {
		worker, err := workerRemote(cfg, timeouts)
		if err != nil {
			return err
		}
		probes = probe.WorkerProbes(worker, dispatcher, cfg)
		host = cfg.Worker.Address
	} else {
		probes = probe.DispatcherProbes(dispatcher, cfg)
		host = cfg.Dispatcher.Address
	}

	results := probe.Run(ctx, probes)

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(doctorJSON{
			Host:    host,
			Role:    string(role),
			Status:  plan.Classify(role, results).String(),
			Results: results,
			Pending: plan.Pending(role, results),
		})
	}

	fmt.Print(renderDoctor(ui.DoctorReport{
		Host:    host,
		Role:    string(role),
		Probes:  probes,
		Results: results,
		Status:  plan.Classify(role, results),
	}))

	return nil
}
