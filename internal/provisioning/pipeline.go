package provisioning

import (
	"fmt"
	"time"
)

// RebootRequest is the pipeline's hand-off to the reboot orchestrator: the
// step that needs the restart and the host that must restart.
type RebootRequest struct {
	StepID string
	Host   string
}

// RunReport summarizes one pipeline pass.
type RunReport struct {
	// Completed lists step ids whose postcondition was established or
	// confirmed during this pass, in execution order.
	Completed []string
	// Reboot is non-nil when the pass stopped because a step requires a
	// host restart.
	Reboot *RebootRequest
}

// RunSteps executes the steps sequentially in declared dependency order. No
// step begins before its predecessor reports Done.
//
// For each step, the precondition probe is evaluated first. A satisfied probe
// short-circuits the step to Done with zero side effects. An unsatisfied
// probe on a step already recorded complete halts with a DriftError rather
// than silently re-running it. Otherwise the step's action runs and its
// postcondition is re-probed before the step is recorded complete.
func RunSteps(ctx *Context, steps []Step) (*RunReport, error) {
	report := &RunReport{}
	start := time.Now()
	ctx.Observer.Printf("running %d provisioning steps", len(steps))

	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("provisioning interrupted: %w", err)
		}

		id := step.ID()
		label := fmt.Sprintf("%s (%d/%d)", id, i+1, len(steps))

		if step.Probe().Check(ctx) {
			ctx.Observer.Event(Event{Type: EventStepSkipped, Step: id, Message: "already satisfied"})
			if err := ctx.State.MarkStepComplete(id); err != nil {
				return report, fmt.Errorf("failed to record %s completion: %w", id, err)
			}
			report.Completed = append(report.Completed, id)
			continue
		}

		if ctx.State.IsStepComplete(id) {
			return report, &DriftError{StepID: id}
		}

		ctx.Observer.Event(Event{Type: EventStepStarted, Step: label})
		stepStart := time.Now()

		result, err := step.Run(ctx)
		if err != nil {
			ctx.Observer.Event(Event{Type: EventStepFailed, Step: id, Message: err.Error()})
			return report, fmt.Errorf("step %s failed: %w", id, err)
		}

		switch result {
		case RebootRequired:
			ctx.Observer.Event(Event{Type: EventRebootRequired, Step: id})
			report.Reboot = &RebootRequest{StepID: id, Host: ctx.Config.Worker.Address}
			return report, nil

		case Failed:
			ctx.Observer.Event(Event{Type: EventStepFailed, Step: id})
			return report, &VerificationError{StepID: id, Remediation: "transcodarr setup"}

		case Done:
			// Re-probe: a step that reports Done without its capability
			// actually holding must not be trusted.
			if !step.Probe().Check(ctx) {
				ctx.Observer.Event(Event{Type: EventStepFailed, Step: id, Message: "postcondition probe still fails"})
				return report, &VerificationError{StepID: id, Remediation: "transcodarr setup"}
			}
			if err := ctx.State.MarkStepComplete(id); err != nil {
				return report, fmt.Errorf("failed to record %s completion: %w", id, err)
			}
			report.Completed = append(report.Completed, id)
			ctx.Observer.Event(Event{
				Type: EventStepCompleted, Step: id,
				Message: fmt.Sprintf("in %v", time.Since(stepStart).Round(time.Millisecond)),
			})
		}
	}

	ctx.Observer.Printf("provisioning pass completed in %v", time.Since(start).Round(time.Millisecond))
	return report, nil
}
