package probe

import (
	"context"
	"fmt"
	"strings"

	"github.com/transcodarr/transcodarr/internal/config"
	"github.com/transcodarr/transcodarr/internal/platform/ssh"
)

// Probe/step identifiers. The probe id and the id of the step it gates are
// the same string, which is also what lands in the state store's completion
// ledger.
const (
	IDHomebrew     = "homebrew"
	IDFFmpeg       = "ffmpeg"
	IDMountpoints  = "mountpoints"
	IDNFSMounts    = "nfs-mounts"
	IDMountService = "mount-service"
	IDPower        = "power"
	IDSSHTrust     = "ssh-trust"
	IDRegister     = "register"

	IDKeypair = "keypair"
	IDRffmpeg = "rffmpeg"
)

// MountServiceLabel is the launchd label of the boot-time mount service.
const MountServiceLabel = "io.transcodarr.mounts"

// Homebrew checks for the package manager on either Homebrew prefix.
func Homebrew(r Runner) Probe {
	return Probe{
		ID:          IDHomebrew,
		Description: "Homebrew package manager installed",
		Check: func(ctx context.Context) bool {
			return succeeds(ctx, r, "test -x /opt/homebrew/bin/brew || test -x /usr/local/bin/brew")
		},
	}
}

// FFmpeg checks that the encoder toolchain is present and functional: the
// binary must run and report the configured hardware encoder. A binary that
// merely exists on disk is a false positive the planner must not trust.
func FFmpeg(r Runner, enc config.EncoderConfig) Probe {
	binary := enc.Binary
	if binary == "" {
		binary = "ffmpeg"
	}
	command := fmt.Sprintf("%s %s -hide_banner -encoders 2>/dev/null", brewPath, ssh.Quote(binary))
	return Probe{
		ID:          IDFFmpeg,
		Description: fmt.Sprintf("ffmpeg reports the %s encoder", enc.Variant),
		Check: func(ctx context.Context) bool {
			return outputContains(ctx, r, command, string(enc.Variant))
		},
	}
}

// Mountpoints checks that the root directories backing the share mounts
// exist. On macOS these only materialize after the reboot that applies
// /etc/synthetic.conf.
func Mountpoints(r Runner, media config.MediaConfig) Probe {
	command := fmt.Sprintf("test -d %s && test -d %s",
		ssh.Quote(mountRoot(media.MediaMount)), ssh.Quote(mountRoot(media.CacheMount)))
	return Probe{
		ID:          IDMountpoints,
		Description: "share mount roots exist",
		Check: func(ctx context.Context) bool {
			return succeeds(ctx, r, command)
		},
	}
}

// NFSMounts checks that both NAS exports are actually mounted, mirroring the
// monitor's "path appears in mount output" test.
func NFSMounts(r Runner, media config.MediaConfig) Probe {
	return Probe{
		ID:          IDNFSMounts,
		Description: "NAS media and cache shares mounted",
		Check: func(ctx context.Context) bool {
			res, err := r.Exec(ctx, "/sbin/mount")
			if err != nil || !res.Ok() {
				return false
			}
			return strings.Contains(res.Stdout, " on "+media.MediaMount+" ") &&
				strings.Contains(res.Stdout, " on "+media.CacheMount+" ")
		},
	}
}

// MountService checks that the boot-time mount daemon is registered with
// launchd.
func MountService(r Runner) Probe {
	command := fmt.Sprintf("launchctl print system/%s >/dev/null 2>&1", MountServiceLabel)
	return Probe{
		ID:          IDMountService,
		Description: "mount service registered with launchd",
		Check: func(ctx context.Context) bool {
			return succeeds(ctx, r, command)
		},
	}
}

// Power checks the pmset policy a transcode worker needs: never sleep, wake
// on LAN, restart after power loss.
func Power(r Runner) Probe {
	command := "pmset -g custom | grep -qw 'sleep 0' && " +
		"pmset -g custom | grep -qw 'womp 1' && " +
		"pmset -g custom | grep -qw 'autorestart 1'"
	return Probe{
		ID:          IDPower,
		Description: "power management policy applied",
		Check: func(ctx context.Context) bool {
			return succeeds(ctx, r, command)
		},
	}
}

// SSHTrust checks, from the dispatcher side, that rffmpeg's key silently
// authenticates to the worker. The check runs inside the Jellyfin container
// because that is where rffmpeg spawns its SSH sessions from.
func SSHTrust(dispatcher Runner, cfg *config.Config) Probe {
	command := fmt.Sprintf(
		"docker exec %s ssh -i %s -o BatchMode=yes -o StrictHostKeyChecking=accept-new -o ConnectTimeout=5 %s@%s true",
		ssh.Quote(cfg.Dispatcher.Container),
		ssh.Quote(cfg.Dispatcher.DispatchKeyPath),
		cfg.Worker.User, cfg.Worker.Address,
	)
	return Probe{
		ID:          IDSSHTrust,
		Description: "dispatcher key trusted by the worker",
		Check: func(ctx context.Context) bool {
			return succeeds(ctx, dispatcher, command)
		},
	}
}

// Registered checks that the worker appears in rffmpeg's host table.
func Registered(dispatcher Runner, cfg *config.Config) Probe {
	command := fmt.Sprintf("docker exec %s rffmpeg status 2>/dev/null", ssh.Quote(cfg.Dispatcher.Container))
	return Probe{
		ID:          IDRegister,
		Description: "worker registered with rffmpeg",
		Check: func(ctx context.Context) bool {
			return outputContains(ctx, dispatcher, command, cfg.Worker.Name)
		},
	}
}

// WorkerProbes returns the full probe set for the worker role, in step order.
func WorkerProbes(worker, dispatcher Runner, cfg *config.Config) []Probe {
	return []Probe{
		Homebrew(worker),
		FFmpeg(worker, cfg.Encoder),
		Mountpoints(worker, cfg.Media),
		NFSMounts(worker, cfg.Media),
		MountService(worker),
		Power(worker),
		SSHTrust(dispatcher, cfg),
		Registered(dispatcher, cfg),
	}
}

// mountRoot returns the first path component of an absolute mount point,
// e.g. /data/media -> /data. That component is what synthetic.conf creates.
func mountRoot(path string) string {
	trimmed := strings.TrimPrefix(path, "/")
	first, _, _ := strings.Cut(trimmed, "/")
	return "/" + first
}
