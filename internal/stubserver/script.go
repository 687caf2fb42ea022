package stubserver

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// DemoScript returns the built-in demo run: a planned task list worked
// through with tool runs, a risky-action warning, progress narration, and a
// synthesized answer.
func DemoScript() []json.RawMessage {
	frames := []any{
		map[string]any{"type": "header", "message": "Dexter demo run"},
		map[string]any{"type": "progress", "status": "start", "message": "Planning tasks..."},
		map[string]any{"type": "task_list", "tasks": []any{
			map[string]any{"id": 1, "description": "Fetch filings", "done": false},
			map[string]any{"id": 2, "description": "Summarize findings", "done": false},
		}},
		map[string]any{"type": "progress", "status": "complete", "message": "Planning tasks ✓"},
		map[string]any{"type": "task_start", "task": "Fetch filings"},
		map[string]any{"type": "tool_run", "tool": "search_filings", "result": map[string]any{"hits": 3}},
		map[string]any{"type": "warning", "tool": "shell", "input": "curl example.com",
			"message": "Risky action shell(curl example.com) — auto-confirmed"},
		map[string]any{"type": "task_done", "task": "Fetch filings"},
		map[string]any{"type": "task_start", "task": "Summarize findings"},
		map[string]any{"type": "log", "message": "Condensing three filings into a summary"},
		map[string]any{"type": "task_done", "task": "Summarize findings"},
		map[string]any{"type": "answer", "answer": "Revenue grew 12% year over year."},
		map[string]any{"type": "done", "answer": "Revenue grew 12% year over year."},
	}
	script := make([]json.RawMessage, 0, len(frames))
	for _, frame := range frames {
		encoded, _ := json.Marshal(frame)
		script = append(script, encoded)
	}
	return script
}

// LoadScript reads one JSON frame per line from a JSONL file. Blank lines
// are skipped; every remaining line must be a JSON object.
func LoadScript(path string) ([]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return ParseScript(data)
}

// ParseScript parses JSONL frame data.
func ParseScript(data []byte) ([]json.RawMessage, error) {
	var script []json.RawMessage
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		var probe map[string]any
		if err := json.Unmarshal(text, &probe); err != nil {
			return nil, fmt.Errorf("parse script line %d: %w", line, err)
		}
		script = append(script, json.RawMessage(bytes.Clone(text)))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return script, nil
}
