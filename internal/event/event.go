package event

// Type identifies a run event variant on the wire.
type Type string

const (
	// TypeTaskList replaces the task plan wholesale.
	TypeTaskList Type = "task_list"
	// TypeTaskStart marks a task, identified by description text, as begun.
	TypeTaskStart Type = "task_start"
	// TypeTaskDone marks a task, identified by description text, as completed.
	TypeTaskDone Type = "task_done"
	// TypeProgress carries transient status narration.
	TypeProgress Type = "progress"
	// TypeToolRun reports a finished tool invocation.
	TypeToolRun Type = "tool_run"
	// TypeWarning reports a non-fatal anomaly.
	TypeWarning Type = "warning"
	// TypeLog carries free-form narration.
	TypeLog Type = "log"
	// TypeHeader carries a section marker.
	TypeHeader Type = "header"
	// TypeUserQuery echoes the submitted query.
	TypeUserQuery Type = "user_query"
	// TypeAnswer carries an intermediate or final synthesized answer.
	TypeAnswer Type = "answer"
	// TypeDone is the terminal success signal.
	TypeDone Type = "done"
	// TypeError is the terminal failure signal.
	TypeError Type = "error"
)

// ProgressStatus is the phase reported by a progress event.
type ProgressStatus string

const (
	// ProgressStart marks the beginning of an activity.
	ProgressStart ProgressStatus = "start"
	// ProgressComplete marks an activity finished.
	ProgressComplete ProgressStatus = "complete"
	// ProgressError marks an activity failed.
	ProgressError ProgressStatus = "error"
)

// Task is one entry of the agent's task plan.
type Task struct {
	ID          int
	Description string
	Done        bool
}

// Event is a coerced run event. Only the fields relevant to Type are set.
type Event struct {
	Type Type

	// Tasks is the replacement plan for task_list.
	Tasks []Task
	// Task is the description text for task_start and task_done.
	Task string
	// Status is the normalized phase for progress.
	Status ProgressStatus
	// Message is set for progress, warning, log, header, and error.
	Message string
	// Tool names the tool for tool_run and, optionally, warning.
	Tool string
	// Input is the optional tool input echoed on warning.
	Input string
	// Result is the tool_run result: a string or structured data.
	Result any
	// HasResult reports whether tool_run carried a result.
	HasResult bool
	// Query is the echoed query for user_query.
	Query string
	// Answer is set for answer and, optionally, done.
	Answer string

	// Raw is the decoded payload the event was coerced from.
	Raw map[string]any
}

// Terminal reports whether the event ends the run.
func (e Event) Terminal() bool {
	return e.Type == TypeDone || e.Type == TypeError
}
