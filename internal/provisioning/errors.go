package provisioning

import "fmt"

// VerificationError reports a step whose action ran (or was previously
// recorded complete) but whose capability probe still answers false. The
// pipeline halts on it: later steps assume earlier postconditions, so
// proceeding would compound the failure silently.
type VerificationError struct {
	StepID string
	// Remediation is the exact command the operator can run once the
	// underlying condition is fixed.
	Remediation string
}

func (e *VerificationError) Error() string {
	msg := fmt.Sprintf("step %s ran but its capability check still fails", e.StepID)
	if e.Remediation != "" {
		msg += "; after fixing the host, re-run: " + e.Remediation
	}
	return msg
}

// DriftError reports a step recorded complete in the ledger whose probe no
// longer holds. Completed steps are never silently re-run; the operator
// resets the single step explicitly.
type DriftError struct {
	StepID string
}

func (e *DriftError) Error() string {
	return fmt.Sprintf(
		"step %s is recorded complete but the host no longer satisfies it; run: transcodarr setup --reset-step %s",
		e.StepID, e.StepID)
}
