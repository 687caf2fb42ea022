package event

import "fmt"

// Coerce validates a decoded JSON value against the event vocabulary. It
// returns false when the value is not an object, carries no recognized type
// tag, or violates a non-empty field constraint. It never mutates its input.
func Coerce(raw any) (Event, bool) {
	payload, ok := raw.(map[string]any)
	if !ok {
		return Event{}, false
	}
	tag, ok := payload["type"].(string)
	if !ok {
		return Event{}, false
	}

	ev := Event{Type: Type(tag), Raw: payload}
	switch ev.Type {
	case TypeTaskList:
		ev.Tasks = coerceTasks(payload["tasks"])
	case TypeTaskStart, TypeTaskDone:
		ev.Task = stringField(payload, "task")
		if ev.Task == "" {
			return Event{}, false
		}
	case TypeProgress:
		ev.Status = coerceProgressStatus(payload["status"])
		ev.Message = stringField(payload, "message")
	case TypeToolRun:
		ev.Tool = stringField(payload, "tool")
		if ev.Tool == "" {
			return Event{}, false
		}
		ev.Result, ev.HasResult = payload["result"]
	case TypeWarning:
		ev.Message = stringField(payload, "message")
		if ev.Message == "" {
			return Event{}, false
		}
		ev.Tool = stringField(payload, "tool")
		ev.Input = stringField(payload, "input")
	case TypeLog, TypeHeader:
		ev.Message = stringField(payload, "message")
	case TypeUserQuery:
		ev.Query = stringField(payload, "query")
	case TypeAnswer, TypeDone:
		ev.Answer = stringField(payload, "answer")
	case TypeError:
		ev.Message = stringField(payload, "message")
		if ev.Message == "" {
			return Event{}, false
		}
	default:
		return Event{}, false
	}
	return ev, true
}

// coerceTasks normalizes the tasks field of a task_list payload.
func coerceTasks(raw any) []Task {
	items, ok := raw.([]any)
	if !ok {
		return []Task{}
	}
	tasks := make([]Task, 0, len(items))
	for i, item := range items {
		tasks = append(tasks, coerceTask(item, i+1))
	}
	return tasks
}

// coerceTask normalizes one task object; position is 1-based.
func coerceTask(raw any, position int) Task {
	task := Task{
		ID:          position,
		Description: fmt.Sprintf("Task %d", position),
	}
	fields, ok := raw.(map[string]any)
	if !ok {
		return task
	}
	if id, ok := numberField(fields, "id"); ok {
		task.ID = id
	}
	if desc, ok := fields["description"].(string); ok {
		task.Description = desc
	}
	task.Done = truthy(fields["done"])
	return task
}

// coerceProgressStatus normalizes a progress status, defaulting to start.
func coerceProgressStatus(raw any) ProgressStatus {
	if status, ok := raw.(string); ok {
		switch ProgressStatus(status) {
		case ProgressStart, ProgressComplete, ProgressError:
			return ProgressStatus(status)
		}
	}
	return ProgressStart
}

// stringField extracts a string field, defaulting to empty.
func stringField(payload map[string]any, key string) string {
	value, _ := payload[key].(string)
	return value
}

// numberField extracts a numeric field as an int.
func numberField(payload map[string]any, key string) (int, bool) {
	switch value := payload[key].(type) {
	case float64:
		return int(value), true
	case int:
		return value, true
	default:
		return 0, false
	}
}

// truthy applies the upstream boolean coercion rules to a decoded value.
func truthy(raw any) bool {
	switch value := raw.(type) {
	case nil:
		return false
	case bool:
		return value
	case float64:
		return value != 0
	case string:
		return value != ""
	default:
		return true
	}
}
