package steps

import (
	"github.com/transcodarr/transcodarr/internal/probe"
	"github.com/transcodarr/transcodarr/internal/provisioning"
)

// Homebrew bootstraps the package manager on the worker.
//
// The privileged part is limited to creating and chowning the Homebrew
// prefix; the tarball unpack runs as the SSH user, matching how Homebrew
// itself insists on being installed.
type Homebrew struct {
	worker provisioning.Executor
}

func (s *Homebrew) ID() string { return probe.IDHomebrew }

func (s *Homebrew) Probe() probe.Probe { return probe.Homebrew(s.worker) }

func (s *Homebrew) Run(ctx *provisioning.Context) (provisioning.Result, error) {
	prefix := "set -eu\n" +
		"mkdir -p /opt/homebrew\n" +
		"chown \"${SUDO_USER:-root}\" /opt/homebrew\n"
	if err := execPrivilegedChecked(ctx, s.worker, prefix); err != nil {
		return provisioning.Failed, err
	}

	unpack := "test -x /opt/homebrew/bin/brew || " +
		"(curl -fsSL https://github.com/Homebrew/brew/tarball/HEAD | tar xz --strip-components 1 -C /opt/homebrew)"
	if err := execChecked(ctx, s.worker, unpack); err != nil {
		return provisioning.Failed, err
	}

	return provisioning.Done, nil
}
