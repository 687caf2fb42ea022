package live

import (
	"time"

	"github.com/charmbracelet/lipgloss"

	"dexterwatch/internal/event"
	"dexterwatch/internal/runstate"
)

// renderHeader renders the run id, status, query, and elapsed time.
func renderHeader(state runstate.State, query string, elapsed time.Duration, noColor bool) string {
	line := "Dexter"
	if state.RunID != "" {
		line += " | Run " + state.RunID
	}
	line += " | " + statusLabel(state.Status)
	if query != "" {
		line += " | " + truncate(collapseWhitespace(query), 60)
	}
	if elapsed > 0 {
		line += " | " + elapsed.Round(100*time.Millisecond).String()
	}
	return stylize(line, noColor, statusColor(state.Status))
}

// renderProgress renders the transient progress line with a spinner while
// the run is still working.
func renderProgress(state runstate.State, spinnerView string, noColor bool) string {
	if state.Status != runstate.StatusRunning || state.Progress == nil {
		return ""
	}
	line := state.Progress.Message
	if state.Progress.Status == event.ProgressStart {
		line = spinnerView + " " + line
	}
	return stylize(line, noColor, lipgloss.Color("39"))
}

// renderLog renders the newest log entries, most recent first.
func renderLog(log []runstate.Entry, height int, noColor bool) string {
	if len(log) == 0 {
		return stylize("Waiting for events...", noColor, lipgloss.Color("242"))
	}
	shown := log
	if len(shown) > height {
		shown = shown[:height]
	}
	lines := make([]string, 0, len(shown))
	for _, entry := range shown {
		lines = append(lines, renderEntry(entry, noColor))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// renderEntry renders one log line: timestamp, title, condensed body.
func renderEntry(entry runstate.Entry, noColor bool) string {
	line := entry.Timestamp + "  " + entry.Title
	if entry.Body != "" {
		line += ": " + truncate(firstLine(entry.Body), 100)
	}
	return stylize(line, noColor, kindColor(entry.Kind))
}

// renderOutcome renders the final answer or the run error.
func renderOutcome(state runstate.State, noColor bool) string {
	switch state.Status {
	case runstate.StatusDone:
		if state.Answer == "" {
			return stylize("Run complete.", noColor, lipgloss.Color("42"))
		}
		return stylize("Answer: ", noColor, lipgloss.Color("42")) + state.Answer
	case runstate.StatusError:
		return stylize("Error: "+state.Error, noColor, lipgloss.Color("196"))
	default:
		return ""
	}
}

// stylize applies optional color styling.
func stylize(text string, noColor bool, color lipgloss.Color) string {
	if noColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Render(text)
}
