package cucumber

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dexterwatch/internal/cli"

	"github.com/cucumber/godog"
)

type featureState struct {
	workDir    string
	eventsPath string
	stdout     bytes.Buffer
	stderr     bytes.Buffer
	exitCode   int
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	state := &featureState{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		state.reset()
		return ctx, nil
	})

	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		state.cleanup()
		return ctx, nil
	})

	ctx.Step(`^a recorded event feed:$`, state.aRecordedEventFeed)
	ctx.Step(`^I run "([^"]+)"$`, state.iRunCommand)
	ctx.Step(`^the exit code is zero$`, state.theExitCodeIsZero)
	ctx.Step(`^the exit code is non-zero$`, state.theExitCodeIsNonZero)
	ctx.Step(`^the output contains "([^"]+)"$`, state.theOutputContains)
	ctx.Step(`^the output does not contain "([^"]+)"$`, state.theOutputDoesNotContain)
	ctx.Step(`^the error output contains "([^"]+)"$`, state.theErrorOutputContains)
	ctx.Step(`^the output lists these commands:$`, state.theOutputListsCommands)
}

func (s *featureState) reset() {
	s.stdout.Reset()
	s.stderr.Reset()
	s.exitCode = 0
	s.workDir = ""
	s.eventsPath = ""
}

func (s *featureState) cleanup() {
	if s.workDir != "" {
		_ = os.RemoveAll(s.workDir)
	}
}

func (s *featureState) aRecordedEventFeed(feed *godog.DocString) error {
	dir, err := os.MkdirTemp("", "dexterwatch-feature-*")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	s.workDir = dir
	s.eventsPath = filepath.Join(dir, "events.jsonl")
	contents := strings.TrimSpace(feed.Content) + "\n"
	if err := os.WriteFile(s.eventsPath, []byte(contents), 0o644); err != nil {
		return fmt.Errorf("write event feed: %w", err)
	}
	return nil
}

func (s *featureState) iRunCommand(command string) error {
	args := strings.Fields(command)
	if len(args) == 0 {
		return fmt.Errorf("command is empty")
	}
	if args[0] == "dexterwatch" {
		args = args[1:]
	}
	for i, arg := range args {
		if arg == "events.jsonl" {
			if s.eventsPath == "" {
				return fmt.Errorf("no recorded event feed in this scenario")
			}
			args[i] = s.eventsPath
		}
	}
	s.stdout.Reset()
	s.stderr.Reset()
	s.exitCode = cli.Run(args, &s.stdout, &s.stderr)
	return nil
}

func (s *featureState) theExitCodeIsZero() error {
	if s.exitCode != 0 {
		return fmt.Errorf("expected exit code 0, got %d (stderr: %s)", s.exitCode, s.stderr.String())
	}
	return nil
}

func (s *featureState) theExitCodeIsNonZero() error {
	if s.exitCode == 0 {
		return fmt.Errorf("expected non-zero exit code")
	}
	return nil
}

func (s *featureState) theOutputContains(expected string) error {
	if !strings.Contains(s.stdout.String(), expected) {
		return fmt.Errorf("expected %q in output, got:\n%s", expected, s.stdout.String())
	}
	return nil
}

func (s *featureState) theOutputDoesNotContain(unexpected string) error {
	if strings.Contains(s.stdout.String(), unexpected) {
		return fmt.Errorf("expected %q to be absent from output:\n%s", unexpected, s.stdout.String())
	}
	return nil
}

func (s *featureState) theErrorOutputContains(expected string) error {
	if !strings.Contains(s.stderr.String(), expected) {
		return fmt.Errorf("expected %q in error output, got %q", expected, s.stderr.String())
	}
	return nil
}

func (s *featureState) theOutputListsCommands(table *godog.Table) error {
	output := s.stdout.String()
	for _, row := range table.Rows {
		for _, cell := range row.Cells {
			command := strings.TrimSpace(cell.Value)
			if command == "" {
				continue
			}
			if !strings.Contains(output, command) {
				return fmt.Errorf("expected command %q in output", command)
			}
		}
	}
	return nil
}
