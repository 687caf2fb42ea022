package runstate

import (
	"time"

	"dexterwatch/internal/event"
)

// Apply folds one coerced event into the state, in arrival order. Once a
// terminal state is reached, later terminal events are ignored entirely and
// later non-terminal events append their log entry but mutate nothing else.
func Apply(state State, ev event.Event, now time.Time) State {
	if state.Terminal() {
		if ev.Terminal() {
			return state
		}
		return appendEntry(state, ev, now)
	}

	state = appendEntry(state, ev, now)
	switch ev.Type {
	case event.TypeTaskList:
		state.Tasks = cloneTasks(ev.Tasks)
	case event.TypeTaskDone:
		state.Tasks = markDone(state.Tasks, ev.Task)
	case event.TypeProgress:
		state.Progress = &Progress{Status: ev.Status, Message: ev.Message, At: now}
	case event.TypeAnswer:
		state.Answer = ev.Answer
	case event.TypeDone:
		state.Status = StatusDone
		if ev.Answer != "" {
			state.Answer = ev.Answer
		}
	case event.TypeError:
		state.Status = StatusError
		state.Error = ev.Message
	}
	return state
}

// appendEntry prepends the log entry for an event.
func appendEntry(state State, ev event.Event, now time.Time) State {
	state.Log = push(state.Log, entryForEvent(ev, now))
	return state
}

// cloneTasks copies a task plan so later folds cannot alias it.
func cloneTasks(tasks []event.Task) []event.Task {
	cloned := make([]event.Task, len(tasks))
	copy(cloned, tasks)
	return cloned
}

// markDone flips done on every task whose description matches exactly.
// Tasks are matched by text, not id: two tasks sharing a description both
// flip, mirroring the upstream protocol.
func markDone(tasks []event.Task, description string) []event.Task {
	updated := cloneTasks(tasks)
	for i := range updated {
		if updated[i].Description == description {
			updated[i].Done = true
		}
	}
	return updated
}
