// Package plan classifies a host's provisioning status from probe results.
//
// Classification is recomputed from a fresh probe run on every invocation.
// The underlying host can change between runs (manual intervention, a prior
// partial failure, a reboot), so a cached classification would lie.
package plan

import (
	"github.com/transcodarr/transcodarr/internal/config"
	"github.com/transcodarr/transcodarr/internal/probe"
)

// Status is the planner's classification of a host.
type Status int

const (
	// FirstTime means the core encoder toolchain is absent.
	FirstTime Status = iota
	// Partial means some capabilities exist but the required set is incomplete.
	Partial
	// AddingWorker means the toolchain works but the dispatcher cannot yet
	// reach the worker, i.e. an existing installation gaining a new worker.
	AddingWorker
	// FullyConfigured means every required probe is satisfied.
	FullyConfigured
)

func (s Status) String() string {
	switch s {
	case FirstTime:
		return "first-time"
	case Partial:
		return "partial"
	case AddingWorker:
		return "adding-worker"
	case FullyConfigured:
		return "fully-configured"
	default:
		return "unknown"
	}
}

// RequiredSteps returns the full required step set for a role, in dependency
// order: toolchain before capability-dependent configuration before service
// registration before power management.
func RequiredSteps(role config.Role) []string {
	if role == config.RoleDispatcher {
		return []string{probe.IDKeypair, probe.IDRffmpeg}
	}
	return []string{
		probe.IDHomebrew,
		probe.IDFFmpeg,
		probe.IDMountpoints,
		probe.IDNFSMounts,
		probe.IDMountService,
		probe.IDPower,
		probe.IDSSHTrust,
		probe.IDRegister,
	}
}

// Classify maps probe results onto a status for the given role.
func Classify(role config.Role, results probe.Results) Status {
	required := RequiredSteps(role)

	all := true
	for _, id := range required {
		if !results.Satisfied(id) {
			all = false
			break
		}
	}
	if all {
		return FullyConfigured
	}

	if role == config.RoleWorker {
		if !results.Satisfied(probe.IDFFmpeg) {
			return FirstTime
		}
		if !results.Satisfied(probe.IDSSHTrust) {
			return AddingWorker
		}
		return Partial
	}

	// Dispatcher role: no trust-establishment leg, so the classification
	// collapses to first-time / partial / fully-configured.
	if !results.Satisfied(probe.IDRffmpeg) {
		return FirstTime
	}
	return Partial
}

// Pending returns the required steps whose probes are not yet satisfied, in
// dependency order.
func Pending(role config.Role, results probe.Results) []string {
	var pending []string
	for _, id := range RequiredSteps(role) {
		if !results.Satisfied(id) {
			pending = append(pending, id)
		}
	}
	return pending
}
