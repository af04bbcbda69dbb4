// Package probe implements the capability checks the planner classifies from.
//
// A probe is a pure check: it runs read-only commands against a host and
// answers "is this capability already satisfied?". Probes never mutate the
// host and never return errors — a probe that cannot determine its answer
// (host unreachable, command missing) answers false, so the planner always
// has a definite classification to work with.
package probe

import (
	"context"
	"strings"

	"github.com/transcodarr/transcodarr/internal/platform/ssh"
)

// Runner executes read-only commands on a remote host. Satisfied by
// *ssh.Client.
type Runner interface {
	Exec(ctx context.Context, command string) (ssh.Result, error)
}

// brewPath covers both Apple silicon and Intel Homebrew prefixes, which are
// not on the PATH of a non-interactive SSH session.
const brewPath = "PATH=/opt/homebrew/bin:/usr/local/bin:$PATH"

// Probe is one named capability check.
type Probe struct {
	// ID matches the provisioning step this probe gates.
	ID string
	// Description is shown by the doctor command.
	Description string
	// Check answers whether the capability is already satisfied.
	Check func(ctx context.Context) bool
}

// Results maps probe ids to their outcome.
type Results map[string]bool

// Satisfied reports the outcome for a probe id; unknown ids are false.
func (r Results) Satisfied(id string) bool { return r[id] }

// Run evaluates every probe in order. It is re-invoked on every planner run;
// results are never cached across invocations because the host can change
// underneath us.
func Run(ctx context.Context, probes []Probe) Results {
	results := make(Results, len(probes))
	for _, p := range probes {
		results[p.ID] = p.Check(ctx)
	}
	return results
}

// succeeds runs a command and answers true only for a clean zero exit.
// Transport failures answer false: an unreachable host has, as far as the
// planner is concerned, no capabilities.
func succeeds(ctx context.Context, r Runner, command string) bool {
	res, err := r.Exec(ctx, command)
	return err == nil && res.Ok()
}

// outputContains runs a command and answers true only if it exited zero and
// its stdout contains want.
func outputContains(ctx context.Context, r Runner, command, want string) bool {
	res, err := r.Exec(ctx, command)
	return err == nil && res.Ok() && strings.Contains(res.Stdout, want)
}
