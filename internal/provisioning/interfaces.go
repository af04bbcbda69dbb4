// Package provisioning provides the sequential step pipeline and the shared
// types provisioning steps are built from.
//
// The provisioning domain is organized into focused subpackages:
//   - steps/ — the idempotent setup operations for each role
//   - reboot/ — the reboot orchestration state machine
//
// This root package owns the Step contract, the pipeline runner, the shared
// Context, and the Observer used for progress reporting.
package provisioning

import (
	"context"

	"github.com/transcodarr/transcodarr/internal/platform/ssh"
	"github.com/transcodarr/transcodarr/internal/probe"
)

// Result is the outcome of one provisioning step.
type Result int

const (
	// Done means the step's postcondition holds, either because the step ran
	// or because its precondition probe short-circuited it.
	Done Result = iota
	// Failed means the step ran and could not establish its postcondition.
	Failed
	// RebootRequired means the step changed host state that only takes
	// effect after a restart. The step never reboots on its own; timing and
	// confirmation belong to the reboot orchestrator.
	RebootRequired
)

func (r Result) String() string {
	switch r {
	case Done:
		return "done"
	case Failed:
		return "failed"
	case RebootRequired:
		return "reboot-required"
	default:
		return "unknown"
	}
}

// Executor runs commands on a remote host. Satisfied by *ssh.Client.
type Executor interface {
	Exec(ctx context.Context, command string) (ssh.Result, error)
	ExecPrivileged(ctx context.Context, command string) (ssh.Result, error)
	ExecPrivilegedBatch(ctx context.Context, script string) (ssh.Result, error)
	Deliver(ctx context.Context, content []byte) (path string, err error)
}

// Step is one idempotent unit of setup work.
type Step interface {
	// ID names the step; it doubles as the probe id and the completion
	// ledger entry.
	ID() string

	// Probe is the step's precondition/postcondition check.
	Probe() probe.Probe

	// Run performs the step's action. The pipeline only calls Run after the
	// probe reported unsatisfied; Run may still be invoked on a
	// half-provisioned host and must converge rather than duplicate work.
	Run(ctx *Context) (Result, error)
}
