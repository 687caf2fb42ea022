package live

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"dexterwatch/internal/runstate"
)

// defaultWidth sizes the task table before the first window size message.
const defaultWidth = 80

// taskColumns builds task table columns for a terminal width.
func taskColumns(width int) []table.Column {
	description := max(width-16, 20)
	return []table.Column{
		{Title: "#", Width: 4},
		{Title: "Task", Width: description},
		{Title: "Status", Width: 8},
	}
}

// taskRows converts the current plan into table rows.
func taskRows(state runstate.State) []table.Row {
	rows := make([]table.Row, 0, len(state.Tasks))
	for _, task := range state.Tasks {
		rows = append(rows, table.Row{
			fmtInt(task.ID),
			collapseWhitespace(task.Description),
			taskStatusLabel(task.Done),
		})
	}
	return rows
}

// taskStatusLabel renders the done marker for a task.
func taskStatusLabel(done bool) string {
	if done {
		return "✓ done"
	}
	return "·"
}

// tableStyles returns task table styles.
func tableStyles(noColor bool) table.Styles {
	if noColor {
		return table.DefaultStyles()
	}
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Foreground(lipgloss.Color("252"))
	return styles
}
