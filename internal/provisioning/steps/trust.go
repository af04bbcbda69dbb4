package steps

import (
	"fmt"
	"strings"

	"github.com/transcodarr/transcodarr/internal/config"
	"github.com/transcodarr/transcodarr/internal/probe"
	"github.com/transcodarr/transcodarr/internal/provisioning"
)

// SSHTrust establishes key trust from the dispatcher to the worker: the
// dispatch public key is read off the NAS and appended (guarded) to the
// worker user's authorized_keys. rffmpeg's SSH sessions from the Jellyfin
// container then authenticate silently.
type SSHTrust struct {
	worker     provisioning.Executor
	dispatcher provisioning.Executor
	cfg        *config.Config
}

func (s *SSHTrust) ID() string { return probe.IDSSHTrust }

func (s *SSHTrust) Probe() probe.Probe { return probe.SSHTrust(s.dispatcher, s.cfg) }

func (s *SSHTrust) Run(ctx *provisioning.Context) (provisioning.Result, error) {
	pubPath := s.cfg.Dispatcher.DispatchKeyPath + ".pub"
	res, err := s.dispatcher.Exec(ctx, fmt.Sprintf("cat %s", quote(pubPath)))
	if err != nil {
		return provisioning.Failed, err
	}
	if !res.Ok() {
		return provisioning.Failed, fmt.Errorf("failed to read dispatch public key %s: %s", pubPath, firstLine(res.Stderr))
	}

	pubKey := strings.TrimSpace(res.Stdout)
	if pubKey == "" {
		return provisioning.Failed, fmt.Errorf("dispatch public key %s is empty", pubPath)
	}

	// Ship the key as a blob; the guarded append compares whole lines so a
	// re-run never duplicates the entry.
	delivered, err := s.worker.Deliver(ctx, []byte(pubKey+"\n"))
	if err != nil {
		return provisioning.Failed, err
	}

	install := fmt.Sprintf(
		"mkdir -p ~/.ssh && chmod 700 ~/.ssh && "+
			"touch ~/.ssh/authorized_keys && chmod 600 ~/.ssh/authorized_keys && "+
			"(grep -qxF \"$(cat %s)\" ~/.ssh/authorized_keys || cat %s >> ~/.ssh/authorized_keys) && "+
			"rm -f %s",
		delivered, delivered, delivered)
	if err := execChecked(ctx, s.worker, install); err != nil {
		return provisioning.Failed, err
	}

	return provisioning.Done, nil
}
