package live

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"dexterwatch/internal/runstate"
)

// statusLabel maps a run status to its display label.
func statusLabel(status runstate.Status) string {
	switch status {
	case runstate.StatusIdle:
		return "idle"
	case runstate.StatusRunning:
		return "running"
	case runstate.StatusDone:
		return "done"
	case runstate.StatusError:
		return "failed"
	default:
		return string(status)
	}
}

// statusColor selects the header color for a run status.
func statusColor(status runstate.Status) lipgloss.Color {
	switch status {
	case runstate.StatusDone:
		return lipgloss.Color("42")
	case runstate.StatusError:
		return lipgloss.Color("196")
	case runstate.StatusRunning:
		return lipgloss.Color("33")
	default:
		return lipgloss.Color("244")
	}
}

// kindColor selects the log line color for an entry kind.
func kindColor(kind runstate.Kind) lipgloss.Color {
	switch kind {
	case runstate.KindError:
		return lipgloss.Color("196")
	case runstate.KindWarning:
		return lipgloss.Color("220")
	case runstate.KindTool:
		return lipgloss.Color("201")
	case runstate.KindProgress:
		return lipgloss.Color("39")
	default:
		return lipgloss.Color("252")
	}
}

// collapseWhitespace folds runs of whitespace into single spaces.
func collapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// truncate shortens text to a display limit.
func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return text[:limit-3] + "..."
}

// firstLine returns the text up to the first newline.
func firstLine(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		return text[:i]
	}
	return text
}

// fmtInt converts an int to a string.
func fmtInt(value int) string {
	return strconv.Itoa(value)
}
