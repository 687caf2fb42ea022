package runstate

import (
	"time"

	"dexterwatch/internal/event"
)

// Status is the lifecycle phase of a run.
type Status string

const (
	// StatusIdle marks a state with no run started.
	StatusIdle Status = "idle"
	// StatusRunning marks an active run.
	StatusRunning Status = "running"
	// StatusDone marks a run that finished successfully.
	StatusDone Status = "done"
	// StatusError marks a run that failed.
	StatusError Status = "error"
)

// Progress is the most recent transient status narration.
type Progress struct {
	Status  event.ProgressStatus
	Message string
	At      time.Time
}

// State is the client-side view of one run. It is folded one event at a
// time and never mutated in place.
type State struct {
	Status   Status
	RunID    string
	Tasks    []event.Task
	Answer   string
	Progress *Progress
	Error    string
	// Log holds entries newest-first.
	Log []Entry
}

// New returns the idle state that exists before any run.
func New() State {
	return State{Status: StatusIdle}
}

// Started returns a fresh running state, discarding everything from any
// prior run. The run id is attached separately once the backend assigns it.
func Started() State {
	return State{
		Status: StatusRunning,
		Tasks:  []event.Task{},
		Log:    []Entry{},
	}
}

// WithRunID attaches the backend-assigned run id.
func WithRunID(state State, runID string) State {
	state.RunID = runID
	return state
}

// Fail moves a non-terminal state to error with the given message. Used for
// failures that are not stream events: run creation errors and unexpected
// disconnections. Terminal states are left untouched.
func Fail(state State, message string) State {
	if state.Terminal() {
		return state
	}
	state.Status = StatusError
	state.Error = message
	return state
}

// Terminal reports whether the run has reached done or error.
func (s State) Terminal() bool {
	return s.Status == StatusDone || s.Status == StatusError
}
