package steps

import (
	"github.com/transcodarr/transcodarr/internal/config"
	"github.com/transcodarr/transcodarr/internal/dispatch"
	"github.com/transcodarr/transcodarr/internal/probe"
	"github.com/transcodarr/transcodarr/internal/provisioning"
)

// Register adds the worker to rffmpeg's host table so the dispatcher starts
// routing transcode jobs to it. This is the last worker step: everything the
// dispatcher will assume about the worker (encoder, mounts, key trust) must
// already hold.
type Register struct {
	dispatcher provisioning.Executor
	cfg        *config.Config
}

func (s *Register) ID() string { return probe.IDRegister }

func (s *Register) Probe() probe.Probe { return probe.Registered(s.dispatcher, s.cfg) }

func (s *Register) Run(ctx *provisioning.Context) (provisioning.Result, error) {
	client := dispatch.NewClient(s.dispatcher, s.cfg.Dispatcher.Container)

	// rffmpeg add is not idempotent, so re-check the table right before
	// mutating it. The probe ran earlier, but a prior interrupted run may
	// have gotten the add through without the ledger recording it.
	registered, err := client.Registered(ctx, s.cfg.Worker.Name)
	if err != nil {
		return provisioning.Failed, err
	}
	if registered {
		return provisioning.Done, nil
	}

	if err := client.AddWorker(ctx, s.cfg.Worker.Address, s.cfg.Worker.Name, s.cfg.Worker.Weight); err != nil {
		return provisioning.Failed, err
	}
	return provisioning.Done, nil
}
