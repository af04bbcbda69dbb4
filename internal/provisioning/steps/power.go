package steps

import (
	"github.com/transcodarr/transcodarr/internal/probe"
	"github.com/transcodarr/transcodarr/internal/provisioning"
)

// Power applies the pmset policy a transcode worker needs: the machine never
// sleeps, wakes on LAN so the dispatcher can reach it, and restarts itself
// after a power failure.
type Power struct {
	worker provisioning.Executor
}

func (s *Power) ID() string { return probe.IDPower }

func (s *Power) Probe() probe.Probe { return probe.Power(s.worker) }

func (s *Power) Run(ctx *provisioning.Context) (provisioning.Result, error) {
	script := "set -eu\n" +
		"pmset sleep 0\n" +
		"pmset disksleep 0\n" +
		"pmset womp 1\n" +
		"pmset autorestart 1\n"
	if err := execPrivilegedChecked(ctx, s.worker, script); err != nil {
		return provisioning.Failed, err
	}
	return provisioning.Done, nil
}
