package runstate

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"dexterwatch/internal/event"
)

// Kind classifies a log entry for presentation.
type Kind string

const (
	// KindInfo marks routine narration.
	KindInfo Kind = "info"
	// KindTool marks a tool invocation result.
	KindTool Kind = "tool"
	// KindWarning marks a non-fatal anomaly.
	KindWarning Kind = "warning"
	// KindProgress marks transient status narration.
	KindProgress Kind = "progress"
	// KindError marks the run failure entry.
	KindError Kind = "error"
)

// Entry is one immutable, user-facing log record.
type Entry struct {
	ID        string
	Kind      Kind
	Title     string
	Body      string
	Timestamp string
}

// newEntryID is a seam so tests can observe id generation.
var newEntryID = uuid.NewString

// push assigns a fresh unique id and prepends the entry (newest-first).
func push(log []Entry, entry Entry) []Entry {
	entry.ID = newEntryID()
	updated := make([]Entry, 0, len(log)+1)
	updated = append(updated, entry)
	return append(updated, log...)
}

// entryForEvent builds the log entry for a coerced event. The timestamp is
// taken at fold time, not at upstream emission time.
func entryForEvent(ev event.Event, now time.Time) Entry {
	entry := Entry{Kind: KindInfo, Timestamp: now.Format("15:04:05")}
	switch ev.Type {
	case event.TypeTaskList:
		entry.Title = "Tasks planned"
		entry.Body = countSummary(len(ev.Tasks))
	case event.TypeTaskStart:
		entry.Title = "Task started"
		entry.Body = ev.Task
	case event.TypeTaskDone:
		entry.Title = "Task completed"
		entry.Body = ev.Task
	case event.TypeProgress:
		entry.Kind = KindProgress
		entry.Title = "Progress"
		if ev.Status == event.ProgressStart {
			entry.Title = "Working"
		}
		entry.Body = ev.Message
	case event.TypeToolRun:
		entry.Kind = KindTool
		entry.Title = "Tool: " + ev.Tool
		if ev.HasResult {
			entry.Body = formatResult(ev.Result)
		}
	case event.TypeWarning:
		entry.Kind = KindWarning
		entry.Title = "Warning"
		entry.Body = ev.Message
	case event.TypeUserQuery:
		entry.Title = "Query"
		entry.Body = ev.Query
	case event.TypeAnswer:
		entry.Title = "Answer"
		entry.Body = ev.Answer
	case event.TypeDone:
		entry.Title = "Run complete"
	case event.TypeError:
		entry.Kind = KindError
		entry.Title = "Run failed"
		entry.Body = ev.Message
	default:
		entry.Title = string(ev.Type)
		entry.Body = pretty(ev.Raw)
	}
	return entry
}

// countSummary renders the task plan size.
func countSummary(count int) string {
	if count == 1 {
		return "1 task"
	}
	return fmt.Sprintf("%d tasks", count)
}

// formatResult renders a tool result: strings verbatim, anything else as
// indented JSON.
func formatResult(result any) string {
	if text, ok := result.(string); ok {
		return text
	}
	return pretty(result)
}

// pretty renders a value as indented JSON.
func pretty(value any) string {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	return string(data)
}
