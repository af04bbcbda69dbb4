package steps

import (
	"fmt"

	"github.com/transcodarr/transcodarr/internal/config"
	"github.com/transcodarr/transcodarr/internal/probe"
	"github.com/transcodarr/transcodarr/internal/provisioning"
)

// Keypair generates the dispatch key rffmpeg uses to reach workers. The key
// lives on the NAS next to the Jellyfin container's rffmpeg data directory
// and is bind-mounted into the container, so generation happens host-side
// under sudo.
type Keypair struct {
	dispatcher provisioning.Executor
	cfg        *config.Config
}

func (s *Keypair) ID() string { return probe.IDKeypair }

func (s *Keypair) Probe() probe.Probe { return probe.Keypair(s.dispatcher, s.cfg) }

func (s *Keypair) Run(ctx *provisioning.Context) (provisioning.Result, error) {
	keyPath := s.cfg.Dispatcher.DispatchKeyPath
	script := fmt.Sprintf(
		"mkdir -p $(dirname %s)\n"+
			"[ -f %s ] || ssh-keygen -t ed25519 -N '' -C transcodarr-dispatch -f %s\n"+
			"chmod 600 %s\n"+
			"chmod 644 %s.pub\n",
		quote(keyPath), quote(keyPath), quote(keyPath), quote(keyPath), quote(keyPath))
	if err := execPrivilegedChecked(ctx, s.dispatcher, script); err != nil {
		return provisioning.Failed, err
	}
	return provisioning.Done, nil
}

// RffmpegPresent verifies that the Jellyfin container answers rffmpeg admin
// commands. There is nothing to install here: rffmpeg ships inside the
// container image, so if the check fails the image is wrong and the operator
// has to fix the deployment, not this tool.
type RffmpegPresent struct {
	dispatcher provisioning.Executor
	cfg        *config.Config
}

func (s *RffmpegPresent) ID() string { return probe.IDRffmpeg }

func (s *RffmpegPresent) Probe() probe.Probe { return probe.Rffmpeg(s.dispatcher, s.cfg) }

func (s *RffmpegPresent) Run(ctx *provisioning.Context) (provisioning.Result, error) {
	container := s.cfg.Dispatcher.Container
	res, err := s.dispatcher.Exec(ctx, fmt.Sprintf("docker inspect --format '{{.State.Running}}' %s", quote(container)))
	if err != nil {
		return provisioning.Failed, err
	}
	if !res.Ok() {
		return provisioning.Failed, fmt.Errorf("container %q not found on the NAS: %s", container, firstLine(res.Stderr))
	}

	check, err := s.dispatcher.Exec(ctx, fmt.Sprintf("docker exec %s rffmpeg status >/dev/null 2>&1", quote(container)))
	if err != nil {
		return provisioning.Failed, err
	}
	if !check.Ok() {
		return provisioning.Failed, fmt.Errorf(
			"container %q does not include rffmpeg; deploy a Jellyfin image with rffmpeg baked in and re-run setup", container)
	}
	return provisioning.Done, nil
}
