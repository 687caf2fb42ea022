package cli

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"dexterwatch/internal/event"
	"dexterwatch/internal/runstate"
)

// runReplay builds the handler for the replay command: it folds a recorded
// JSONL event file through the same coercion and state machine the live
// path uses, without a network.
func runReplay(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		if err := fs.Parse(args); err != nil {
			return ExitUsage
		}
		if fs.NArg() != 1 {
			fmt.Fprintln(stderr, "Expected exactly one <events.jsonl> argument")
			return ExitUsage
		}

		data, err := os.ReadFile(fs.Arg(0))
		if err != nil {
			fmt.Fprintf(stderr, "Failed to read events: %v\n", err)
			return ExitError
		}

		state, dropped := replayFrames(data, stdout)
		printOutcome(state, stdout)
		if dropped > 0 {
			fmt.Fprintf(stderr, "Dropped %d malformed frames\n", dropped)
		}
		if state.Status == runstate.StatusError {
			return ExitError
		}
		return ExitOK
	}
}

// replayFrames folds one frame per line, dropping undecodable ones the way
// the live connection does.
func replayFrames(data []byte, w io.Writer) (runstate.State, int) {
	state := runstate.Started()
	dropped := 0
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var raw any
		if err := json.Unmarshal(line, &raw); err != nil {
			dropped++
			continue
		}
		ev, ok := event.Coerce(raw)
		if !ok {
			dropped++
			continue
		}
		before := len(state.Log)
		state = runstate.Apply(state, ev, time.Now())
		if len(state.Log) > before {
			printEntry(state.Log[0], w)
		}
	}
	return state, dropped
}
