package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"dexterwatch/internal/config"
	"dexterwatch/internal/runstate"
	"dexterwatch/internal/stream"
	"dexterwatch/internal/ui/live"
)

// serverURLEnv overrides the configured backend URL.
const serverURLEnv = "DEXTER_SERVER_URL"

// runLive is a test seam for launching the Bubble Tea program.
var runLive = func(model live.Model, stdout io.Writer) (runstate.State, error) {
	program := tea.NewProgram(model, tea.WithOutput(stdout), tea.WithAltScreen())
	final, err := program.Run()
	if err != nil {
		return runstate.State{}, err
	}
	return final.(live.Model).State(), nil
}

// runAsk builds the handler for the ask command.
func runAsk(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		configPath := fs.String("config", ".dexterwatch.yml", "Path to the config file")
		serverURL := fs.String("server", "", "Dexter backend base URL")
		maxSteps := fs.Int("max-steps", 0, "Cap on agent reasoning steps (0 = backend default)")
		maxStepsPerTask := fs.Int("max-steps-per-task", 0, "Cap on steps per task (0 = backend default)")
		uiMode := fs.String("ui", "", "Output mode: auto, live, or plain")
		noColor := fs.Bool("no-color", false, "Disable styled output")
		if err := fs.Parse(args); err != nil {
			return ExitUsage
		}

		query := strings.TrimSpace(strings.Join(fs.Args(), " "))
		if query == "" {
			fmt.Fprintln(stderr, "Nothing to ask: query is empty")
			return ExitUsage
		}

		// Optional .env for local setups; absence is not an error.
		_ = godotenv.Load()

		cfg, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
			return ExitError
		}
		applyOverrides(&cfg, *serverURL, os.Getenv(serverURLEnv), *maxSteps, *maxStepsPerTask, *uiMode, *noColor)
		if err := config.Validate(&cfg); err != nil {
			fmt.Fprintf(stderr, "Invalid settings: %v\n", err)
			return ExitUsage
		}

		decision, err := resolveUIMode(cfg.UI, stdout)
		if err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return ExitUsage
		}
		if decision.warning != "" {
			fmt.Fprintln(stderr, decision.warning)
		}

		client := stream.NewClient(cfg.ServerURL, nil)
		run := client.Start(context.Background(), stream.StartRequest{
			Query:           query,
			MaxSteps:        cfg.MaxSteps,
			MaxStepsPerTask: cfg.MaxStepsPerTask,
		})
		defer run.Close()

		if decision.useLive {
			return askLive(run, query, cfg.NoColor, stdout, stderr)
		}
		return askPlain(run, stdout, stderr)
	}
}

// applyOverrides layers flag and environment settings over the config file.
func applyOverrides(cfg *config.Config, flagURL, envURL string, maxSteps, maxStepsPerTask int, uiMode string, noColor bool) {
	if envURL != "" {
		cfg.ServerURL = envURL
	}
	if flagURL != "" {
		cfg.ServerURL = flagURL
	}
	if maxSteps > 0 {
		cfg.MaxSteps = maxSteps
	}
	if maxStepsPerTask > 0 {
		cfg.MaxStepsPerTask = maxStepsPerTask
	}
	if uiMode != "" {
		cfg.UI = uiMode
	}
	if noColor {
		cfg.NoColor = true
	}
	config.Normalize(cfg)
}

// askLive watches the run in the full-screen UI.
func askLive(run *stream.Run, query string, noColor bool, stdout, stderr io.Writer) int {
	model := live.NewModel(run, live.Options{Query: query, NoColor: noColor})
	final, err := runLive(model, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "UI error: %v\n", err)
		return ExitError
	}
	printOutcome(final, stdout)
	if final.Status == runstate.StatusError {
		return ExitError
	}
	return ExitOK
}

// printOutcome restates the final answer or error after the UI exits.
func printOutcome(state runstate.State, w io.Writer) {
	switch state.Status {
	case runstate.StatusDone:
		if state.Answer != "" {
			fmt.Fprintln(w, state.Answer)
		}
	case runstate.StatusError:
		fmt.Fprintf(w, "Run failed: %s\n", state.Error)
	}
}
