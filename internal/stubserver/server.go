// Package stubserver implements the backend surface dexterwatch consumes,
// for development and tests: run creation plus the per-run SSE event feed,
// replayed from a scripted frame sequence instead of a live agent.
package stubserver

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Config wires dependencies for the stub handler.
type Config struct {
	// Script is the frame sequence replayed for every run. Defaults to
	// DemoScript's output.
	Script []json.RawMessage
	// Delay is the pause between frames.
	Delay time.Duration
	// NewRunID overrides run id generation.
	NewRunID func() string
}

// NewHandler builds an HTTP handler for the stub backend.
func NewHandler(cfg Config) http.Handler {
	h := &handler{
		script:   cfg.Script,
		delay:    cfg.Delay,
		newRunID: cfg.NewRunID,
		sessions: map[string]session{},
	}
	if h.script == nil {
		h.script = DemoScript()
	}
	if h.newRunID == nil {
		h.newRunID = uuid.NewString
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/api/run", h.handleRun)
	mux.HandleFunc("/api/run/", h.handleEvents)
	return mux
}

// session remembers one created run until its feed has been served.
type session struct {
	query string
}

type handler struct {
	script   []json.RawMessage
	delay    time.Duration
	newRunID func() string

	mu       sync.Mutex
	sessions map[string]session
}

// runRequest mirrors the run-creation payload.
type runRequest struct {
	Query           string `json:"query"`
	MaxSteps        int    `json:"max_steps"`
	MaxStepsPerTask int    `json:"max_steps_per_task"`
}

// runResponse carries the assigned run id.
type runResponse struct {
	RunID string `json:"run_id"`
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) handleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid request body"})
		return
	}
	runID := h.newRunID()
	h.mu.Lock()
	h.sessions[runID] = session{query: req.Query}
	h.mu.Unlock()
	writeJSON(w, http.StatusOK, runResponse{RunID: runID})
}

func (h *handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	runID, ok := parseEventsPath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}
	h.mu.Lock()
	sess, found := h.sessions[runID]
	if found {
		delete(h.sessions, runID)
	}
	h.mu.Unlock()
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Run not found"})
		return
	}
	h.stream(w, r, sess)
}

// stream replays the script as SSE frames, prefixed with the query echo,
// and stops after the first terminal frame.
func (h *handler) stream(w http.ResponseWriter, r *http.Request, sess session) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	frames := append([]json.RawMessage{queryEcho(sess.query)}, h.script...)
	for _, frame := range frames {
		select {
		case <-r.Context().Done():
			return
		default:
		}
		if _, err := w.Write([]byte("data: " + string(frame) + "\n\n")); err != nil {
			return
		}
		flusher.Flush()
		if isTerminal(frame) {
			return
		}
		if h.delay > 0 {
			time.Sleep(h.delay)
		}
	}
}

// queryEcho builds the user_query frame for a session.
func queryEcho(query string) json.RawMessage {
	frame, _ := json.Marshal(map[string]any{"type": "user_query", "query": query})
	return frame
}

// isTerminal reports whether a frame carries a terminal type tag.
func isTerminal(frame json.RawMessage) bool {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(frame, &probe); err != nil {
		return false
	}
	return probe.Type == "done" || probe.Type == "error"
}

// parseEventsPath extracts the run id from /api/run/{id}/events.
func parseEventsPath(path string) (string, bool) {
	rest := strings.TrimPrefix(path, "/api/run/")
	if rest == path {
		return "", false
	}
	runID, ok := strings.CutSuffix(rest, "/events")
	if !ok || runID == "" || strings.Contains(runID, "/") {
		return "", false
	}
	return runID, true
}

// writeJSON renders a JSON response with a status code.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
