package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"dexterwatch/internal/runstate"
	"dexterwatch/internal/stream"
)

// askPlain folds run updates into line-oriented output for non-TTY use.
func askPlain(run *stream.Run, stdout, stderr io.Writer) int {
	state := runstate.Started()
	for msg := range run.Messages() {
		state = foldMessage(state, msg, stdout)
	}
	printOutcome(state, stdout)
	if dropped := run.Dropped(); dropped > 0 {
		fmt.Fprintf(stderr, "Dropped %d malformed frames\n", dropped)
	}
	if state.Status == runstate.StatusError {
		return ExitError
	}
	return ExitOK
}

// foldMessage applies one run update and echoes any new log entry.
func foldMessage(state runstate.State, msg stream.Message, w io.Writer) runstate.State {
	switch msg.Kind {
	case stream.MessageStarted:
		fmt.Fprintf(w, "Run %s\n", msg.RunID)
		return runstate.WithRunID(state, msg.RunID)
	case stream.MessageEvent:
		next := runstate.Apply(state, msg.Event, time.Now())
		if len(next.Log) > len(state.Log) {
			printEntry(next.Log[0], w)
		}
		return next
	case stream.MessageFailed:
		return runstate.Fail(state, msg.Reason)
	default:
		return state
	}
}

// printEntry renders one log entry as a single line.
func printEntry(entry runstate.Entry, w io.Writer) {
	line := entry.Timestamp + "  " + entry.Title
	if entry.Body != "" {
		line += ": " + strings.ReplaceAll(entry.Body, "\n", " ")
	}
	fmt.Fprintln(w, line)
}
