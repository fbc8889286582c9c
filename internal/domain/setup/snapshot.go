package setup

import "slices"

// Phase is the externally visible orchestrator state.
type Phase string

// Orchestrator phases.
const (
	// PhaseIdle means the queue is empty; the manual trigger is enabled but does nothing.
	PhaseIdle Phase = "idle"
	// PhaseReady means actions are pending and a manual trigger is awaited.
	PhaseReady Phase = "ready"
	// PhaseRunning means one action is in flight.
	PhaseRunning Phase = "running"
	// PhaseFailed means the head action failed and waits for a manual retry.
	PhaseFailed Phase = "failed"
)

// Snapshot is the read-only view published to presentation adapters.
type Snapshot struct {
	// Title is the game title from the bundled configuration.
	Title string
	// Phase is the current orchestrator phase.
	Phase Phase
	// Current is the action in flight; zero when nothing runs.
	Current ActionKind
	// Pending lists queued actions in order.
	Pending []ActionKind
	// NextLabel is the manual trigger label; empty when the queue is empty.
	NextLabel string
	// Status is the one-line status text.
	Status string
	// Progress is the latest transfer progress of the current action.
	Progress Progress
	// FailedAction is the action that failed last; zero unless Phase is failed.
	FailedAction ActionKind
	// FailureReason is the reason reported with the failure.
	FailureReason string
	// Hidden asks adapters to hide or suspend themselves while the game runs.
	Hidden bool
}

// Running reports whether an action is in flight.
func (s Snapshot) Running() bool {
	return s.Current != 0
}

// TriggerEnabled reports whether a manual trigger would be accepted.
func (s Snapshot) TriggerEnabled() bool {
	return s.Phase != PhaseRunning
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	cloned := s
	cloned.Pending = slices.Clone(s.Pending)

	return cloned
}
