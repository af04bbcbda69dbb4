package steps

import (
	"fmt"

	"github.com/transcodarr/transcodarr/internal/probe"
	"github.com/transcodarr/transcodarr/internal/provisioning"
)

// MountService registers the mount script as a boot-time LaunchDaemon so the
// shares reappear after every restart without operator involvement.
type MountService struct {
	worker provisioning.Executor
}

func (s *MountService) ID() string { return probe.IDMountService }

func (s *MountService) Probe() probe.Probe { return probe.MountService(s.worker) }

func (s *MountService) Run(ctx *provisioning.Context) (provisioning.Result, error) {
	delivered, err := s.worker.Deliver(ctx, []byte(launchDaemonPlist()))
	if err != nil {
		return provisioning.Failed, err
	}

	install := "set -eu\n" +
		fmt.Sprintf("install -m 0644 -o root -g wheel %s %s\n", delivered, quote(launchDaemonPath)) +
		fmt.Sprintf("rm -f %s\n", delivered) +
		fmt.Sprintf("launchctl print system/%s >/dev/null 2>&1 || launchctl bootstrap system %s\n",
			probe.MountServiceLabel, quote(launchDaemonPath))
	if err := execPrivilegedChecked(ctx, s.worker, install); err != nil {
		return provisioning.Failed, err
	}

	return provisioning.Done, nil
}

// launchDaemonPlist renders the LaunchDaemon definition. RunAtLoad covers the
// boot case; the KeepAlive PathState block retries until the network and the
// NAS are actually there.
func launchDaemonPlist() string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Label</key>
	<string>%s</string>
	<key>ProgramArguments</key>
	<array>
		<string>/bin/sh</string>
		<string>%s</string>
	</array>
	<key>RunAtLoad</key>
	<true/>
	<key>StandardErrorPath</key>
	<string>/var/log/transcodarr-mounts.log</string>
	<key>StandardOutPath</key>
	<string>/var/log/transcodarr-mounts.log</string>
</dict>
</plist>
`, probe.MountServiceLabel, mountScriptPath)
}
