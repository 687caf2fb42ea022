// Package live renders a Dexter run as it unfolds: task plan, progress
// narration, the event log, and the final answer.
package live

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"dexterwatch/internal/runstate"
	"dexterwatch/internal/stream"
)

// Options configures the live UI model.
type Options struct {
	Query        string
	NoColor      bool
	TickInterval time.Duration
}

// Model renders a live run using Bubble Tea.
type Model struct {
	state        runstate.State
	run          *stream.Run
	table        table.Model
	spinner      spinner.Model
	query        string
	startedAt    time.Time
	now          time.Time
	tickInterval time.Duration
	noColor      bool
	logHeight    int
}

// NewModel constructs a live UI model over a run handle. The model owns the
// handle and closes it on quit.
func NewModel(run *stream.Run, opts Options) Model {
	tickInterval := opts.TickInterval
	if tickInterval <= 0 {
		tickInterval = 200 * time.Millisecond
	}
	t := table.New(
		table.WithColumns(taskColumns(defaultWidth)),
		table.WithRows([]table.Row{}),
		table.WithFocused(false),
		table.WithHeight(6),
	)
	t.SetStyles(tableStyles(opts.NoColor))
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	return Model{
		state:        runstate.Started(),
		run:          run,
		table:        t,
		spinner:      sp,
		query:        opts.Query,
		startedAt:    time.Now(),
		now:          time.Now(),
		tickInterval: tickInterval,
		noColor:      opts.NoColor,
		logHeight:    10,
	}
}

// State exposes the current run state snapshot.
func (m Model) State() runstate.State {
	return m.state
}

// Init waits for the first update and starts the clocks.
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForMessage(m.run), tick(m.tickInterval), m.spinner.Tick)
}

// Update consumes run updates, key presses, and timer ticks.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.table.SetWidth(typed.Width)
		m.table.SetColumns(taskColumns(typed.Width))
		m.logHeight = max(typed.Height-m.table.Height()-8, 3)
		return m, nil
	case tea.KeyMsg:
		switch typed.String() {
		case "q", "ctrl+c":
			m.run.Close()
			return m, tea.Quit
		}
		return m, nil
	case messageMsg:
		m = m.applyMessage(typed.message)
		return m, waitForMessage(m.run)
	case feedClosedMsg:
		return m, tea.Quit
	case tickMsg:
		m.now = time.Time(typed)
		return m, tick(m.tickInterval)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(typed)
		return m, cmd
	}
	return m, nil
}

// View renders the live UI.
func (m Model) View() string {
	sections := []string{
		renderHeader(m.state, m.query, m.now.Sub(m.startedAt), m.noColor),
		m.table.View(),
		renderProgress(m.state, m.spinner.View(), m.noColor),
		renderLog(m.state.Log, m.logHeight, m.noColor),
		renderOutcome(m.state, m.noColor),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// applyMessage folds one run update into the model state.
func (m Model) applyMessage(msg stream.Message) Model {
	switch msg.Kind {
	case stream.MessageStarted:
		m.state = runstate.WithRunID(m.state, msg.RunID)
	case stream.MessageEvent:
		m.state = runstate.Apply(m.state, msg.Event, time.Now())
	case stream.MessageFailed:
		m.state = runstate.Fail(m.state, msg.Reason)
	case stream.MessageClosed:
		// Terminal event already folded; nothing left to record.
	}
	m.table.SetRows(taskRows(m.state))
	return m
}

// messageMsg wraps a run update for Bubble Tea.
type messageMsg struct {
	message stream.Message
}

// feedClosedMsg reports that the run's update feed has ended.
type feedClosedMsg struct{}

// tickMsg carries a clock tick.
type tickMsg time.Time

// waitForMessage blocks until the next run update.
func waitForMessage(run *stream.Run) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-run.Messages()
		if !ok {
			return feedClosedMsg{}
		}
		return messageMsg{message: msg}
	}
}

// tick emits a periodic clock tick.
func tick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}
