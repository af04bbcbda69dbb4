package steps

import (
	"fmt"
	"strings"

	"github.com/transcodarr/transcodarr/internal/config"
	"github.com/transcodarr/transcodarr/internal/probe"
	"github.com/transcodarr/transcodarr/internal/provisioning"
)

// NFSMounts installs the share mount script and mounts both NAS exports
// immediately. The script is also what the boot-time service runs, so it is
// written once here and referenced by the MountService step.
type NFSMounts struct {
	worker provisioning.Executor
	cfg    *config.Config
}

func (s *NFSMounts) ID() string { return probe.IDNFSMounts }

func (s *NFSMounts) Probe() probe.Probe { return probe.NFSMounts(s.worker, s.cfg.Media) }

func (s *NFSMounts) Run(ctx *provisioning.Context) (provisioning.Result, error) {
	script := MountScript(s.cfg)

	// The script body travels as a blob, never through a command line.
	delivered, err := s.worker.Deliver(ctx, []byte(script))
	if err != nil {
		return provisioning.Failed, err
	}

	install := "set -eu\n" +
		fmt.Sprintf("mkdir -p %s\n", quote("/opt/transcodarr/bin")) +
		fmt.Sprintf("install -m 0755 %s %s\n", delivered, quote(mountScriptPath)) +
		fmt.Sprintf("rm -f %s\n", delivered) +
		fmt.Sprintf("%s\n", quote(mountScriptPath))
	if err := execPrivilegedChecked(ctx, s.worker, install); err != nil {
		return provisioning.Failed, err
	}

	if err := ctx.State.Set("mount_script", mountScriptPath); err != nil {
		return provisioning.Failed, err
	}
	return provisioning.Done, nil
}

// MountScript renders the boot-time mount script. Every mount is guarded by
// a "already mounted?" test, so running it repeatedly (manually, at boot, or
// from a re-run batch) is harmless.
func MountScript(cfg *config.Config) string {
	var b strings.Builder
	b.WriteString("#!/bin/sh\n")
	b.WriteString("# transcodarr: mount NAS shares for the transcode worker\n")
	b.WriteString("set -eu\n")
	writeMount(&b, cfg.Dispatcher.Address, cfg.Media.MediaExport, cfg.Media.MediaMount)
	writeMount(&b, cfg.Dispatcher.Address, cfg.Media.CacheExport, cfg.Media.CacheMount)
	return b.String()
}

func writeMount(b *strings.Builder, nas, export, mountPoint string) {
	b.WriteString(fmt.Sprintf("mkdir -p %s\n", quote(mountPoint)))
	b.WriteString(fmt.Sprintf("/sbin/mount | grep -q \" on %s \" || /sbin/mount_nfs -o resvport,soft,locallocks %s %s\n",
		mountPoint, quote(nas+":"+export), quote(mountPoint)))
}
