package steps

import (
	"fmt"
	"sort"
	"strings"

	"github.com/transcodarr/transcodarr/internal/config"
	"github.com/transcodarr/transcodarr/internal/probe"
	"github.com/transcodarr/transcodarr/internal/provisioning"
)

// Mountpoints registers the share mount roots in /etc/synthetic.conf.
//
// macOS keeps the root filesystem sealed; root-level directories like /data
// only come into existence through synthetic.conf entries, applied at boot.
// Each entry firmlinks the root name to a writable directory on the data
// volume so the mount script can create subdirectories inside it later.
// The step therefore always reports RebootRequired: it is only invoked when
// the roots do not exist yet, and only a restart materializes them.
type Mountpoints struct {
	worker provisioning.Executor
	media  config.MediaConfig
}

func (s *Mountpoints) ID() string { return probe.IDMountpoints }

func (s *Mountpoints) Probe() probe.Probe { return probe.Mountpoints(s.worker, s.media) }

func (s *Mountpoints) Run(ctx *provisioning.Context) (provisioning.Result, error) {
	script := syntheticConfScript(s.media)
	if err := execPrivilegedChecked(ctx, s.worker, script); err != nil {
		return provisioning.Failed, err
	}
	return provisioning.RebootRequired, nil
}

// syntheticConfScript builds the guarded batch that creates the firmlink
// backing directories and appends one synthetic.conf entry per mount root.
// Appends are guarded per entry: re-running a half-executed batch never
// produces a duplicate line.
func syntheticConfScript(media config.MediaConfig) string {
	roots := mountRootNames(media)

	var b strings.Builder
	b.WriteString("set -eu\n")
	b.WriteString(fmt.Sprintf("touch %s\n", syntheticConf))
	for _, root := range roots {
		backing := fmt.Sprintf("%s/%s", firmlinkBase, root)
		// synthetic.conf is tab-separated: "<root>\t<firmlink target>",
		// target is relative to /.
		entry := fmt.Sprintf("%s\\t%s", root, strings.TrimPrefix(backing, "/"))
		b.WriteString(fmt.Sprintf("mkdir -p %s\n", quote(backing)))
		b.WriteString(fmt.Sprintf("grep -q '^%s[[:space:]]' %s || printf '%s\\n' >> %s\n",
			root, syntheticConf, entry, syntheticConf))
	}
	b.WriteString(fmt.Sprintf("chmod 0644 %s\n", syntheticConf))
	return b.String()
}

// mountRootNames returns the unique first path components of the configured
// mount points, sorted for deterministic script generation.
func mountRootNames(media config.MediaConfig) []string {
	seen := map[string]struct{}{}
	for _, mount := range []string{media.MediaMount, media.CacheMount} {
		name, _, _ := strings.Cut(strings.TrimPrefix(mount, "/"), "/")
		seen[name] = struct{}{}
	}
	roots := make([]string, 0, len(seen))
	for name := range seen {
		roots = append(roots, name)
	}
	sort.Strings(roots)
	return roots
}
