package provisioning

import "log"

// Observer receives progress reporting from the pipeline and the reboot
// orchestrator.
type Observer interface {
	// Printf emits a free-form progress line.
	Printf(format string, v ...any)

	// Event emits a structured step lifecycle event.
	Event(event Event)
}

// Event is one step lifecycle notification.
type Event struct {
	Type    EventType
	Step    string
	Message string
}

// EventType classifies step lifecycle events.
type EventType string

const (
	// EventStepStarted indicates a step's action is about to run.
	EventStepStarted EventType = "step.started"
	// EventStepSkipped indicates a step's precondition already held.
	EventStepSkipped EventType = "step.skipped"
	// EventStepCompleted indicates a step established its postcondition.
	EventStepCompleted EventType = "step.completed"
	// EventStepFailed indicates a step could not establish its postcondition.
	EventStepFailed EventType = "step.failed"
	// EventRebootRequired indicates a step needs a host restart to take effect.
	EventRebootRequired EventType = "step.reboot-required"
)

// ConsoleObserver implements Observer on the standard log package.
type ConsoleObserver struct{}

// NewConsoleObserver creates a console-based observer.
func NewConsoleObserver() *ConsoleObserver {
	return &ConsoleObserver{}
}

// Printf implements Observer.
func (o *ConsoleObserver) Printf(format string, v ...any) {
	log.Printf(format, v...)
}

// Event implements Observer.
func (o *ConsoleObserver) Event(event Event) {
	if event.Message != "" {
		log.Printf("[%s] %s: %s", event.Step, event.Type, event.Message)
		return
	}
	log.Printf("[%s] %s", event.Step, event.Type)
}
