// Package steps implements the provisioning operations for both host roles.
//
// Every step is idempotent: generated scripts guard each mutating line
// (grep-before-append, mkdir -p, install -m over existing files), so a batch
// interrupted halfway converges on re-run instead of duplicating side
// effects. Steps run under set -eu so a failing sub-operation stops the batch
// instead of being masked.
package steps

import (
	"fmt"
	"strings"

	"github.com/transcodarr/transcodarr/internal/config"
	"github.com/transcodarr/transcodarr/internal/platform/ssh"
	"github.com/transcodarr/transcodarr/internal/provisioning"
)

// Filesystem locations the worker steps install into.
const (
	// syntheticConf is where macOS reads root-level directory entries at boot.
	syntheticConf = "/etc/synthetic.conf"
	// firmlinkBase is the writable data-volume directory backing the
	// synthetic root entries.
	firmlinkBase = "/System/Volumes/Data/transcodarr"
	// mountScriptPath is where the boot-time mount script is installed.
	mountScriptPath = "/opt/transcodarr/bin/mount-shares.sh"
	// launchDaemonPath is the installed LaunchDaemon plist.
	launchDaemonPath = "/Library/LaunchDaemons/io.transcodarr.mounts.plist"
)

// brewPath puts both Homebrew prefixes on the PATH of a non-interactive
// session.
const brewPath = "PATH=/opt/homebrew/bin:/usr/local/bin:$PATH"

// WorkerSteps returns the worker-role steps in dependency order: toolchain
// first, then capability-dependent configuration, then service registration,
// then power management and dispatcher-side wiring.
func WorkerSteps(cfg *config.Config, worker, dispatcher provisioning.Executor) []provisioning.Step {
	return []provisioning.Step{
		&Homebrew{worker: worker},
		&FFmpeg{worker: worker, cfg: cfg},
		&Mountpoints{worker: worker, media: cfg.Media},
		&NFSMounts{worker: worker, cfg: cfg},
		&MountService{worker: worker},
		&Power{worker: worker},
		&SSHTrust{worker: worker, dispatcher: dispatcher, cfg: cfg},
		&Register{dispatcher: dispatcher, cfg: cfg},
	}
}

// DispatcherSteps returns the dispatcher-role steps in dependency order.
func DispatcherSteps(cfg *config.Config, dispatcher provisioning.Executor) []provisioning.Step {
	return []provisioning.Step{
		&Keypair{dispatcher: dispatcher, cfg: cfg},
		&RffmpegPresent{dispatcher: dispatcher, cfg: cfg},
	}
}

// execChecked runs a command and folds a non-zero exit into the error.
func execChecked(ctx *provisioning.Context, e provisioning.Executor, command string) error {
	res, err := e.Exec(ctx, command)
	if err != nil {
		return err
	}
	if !res.Ok() {
		return fmt.Errorf("command exited %d: %s", res.ExitCode, firstLine(res.Stderr))
	}
	return nil
}

// execPrivilegedChecked runs a privileged batch and folds failures into the
// error.
func execPrivilegedChecked(ctx *provisioning.Context, e provisioning.Executor, script string) error {
	if _, err := e.ExecPrivilegedBatch(ctx, script); err != nil {
		return err
	}
	return nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// quote is shorthand for ssh.Quote.
func quote(s string) string { return ssh.Quote(s) }
