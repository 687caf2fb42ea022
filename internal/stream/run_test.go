package stream_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dexterwatch/internal/event"
	"dexterwatch/internal/stream"
	"dexterwatch/internal/testutil"
)

// collect drains a run's message feed until it closes.
func collect(t *testing.T, run *stream.Run) []stream.Message {
	t.Helper()
	ctx := testutil.Context(t, 5*time.Second)
	var messages []stream.Message
	for {
		select {
		case msg, ok := <-run.Messages():
			if !ok {
				return messages
			}
			messages = append(messages, msg)
		case <-ctx.Done():
			t.Fatalf("timed out waiting for messages, got %d so far", len(messages))
		}
	}
}

// eventTypes extracts the coerced event types from a message sequence.
func eventTypes(messages []stream.Message) []event.Type {
	var types []event.Type
	for _, msg := range messages {
		if msg.Kind == stream.MessageEvent {
			types = append(types, msg.Event.Type)
		}
	}
	return types
}

// TestRunHappyPath verifies a full run: id assignment, events in order, and
// a deliberate close after the terminal frame.
func TestRunHappyPath(t *testing.T) {
	server := testutil.StartServer(t, testutil.ServerConfig{
		Script: testutil.Frames(t,
			map[string]any{"type": "task_list", "tasks": []any{
				map[string]any{"id": 1, "description": "Fetch filings"},
			}},
			map[string]any{"type": "answer", "answer": "42"},
			map[string]any{"type": "done"},
		),
	})
	client := stream.NewClient(server.BaseURL, nil)
	run := client.Start(context.Background(), stream.StartRequest{Query: "why?"})
	defer run.Close()

	messages := collect(t, run)
	if messages[0].Kind != stream.MessageStarted || messages[0].RunID == "" {
		t.Fatalf("expected started message with run id, got %#v", messages[0])
	}
	want := []event.Type{event.TypeUserQuery, event.TypeTaskList, event.TypeAnswer, event.TypeDone}
	got := eventTypes(messages)
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	last := messages[len(messages)-1]
	if last.Kind != stream.MessageClosed {
		t.Fatalf("expected clean close, got %#v", last)
	}
}

// TestRunDisconnectBeforeTerminal verifies a dropped feed surfaces the fixed
// lost-connection message.
func TestRunDisconnectBeforeTerminal(t *testing.T) {
	server := testutil.StartServer(t, testutil.ServerConfig{
		Script: testutil.Frames(t,
			map[string]any{"type": "log", "message": "still working"},
		),
	})
	client := stream.NewClient(server.BaseURL, nil)
	run := client.Start(context.Background(), stream.StartRequest{Query: "why?"})
	defer run.Close()

	messages := collect(t, run)
	last := messages[len(messages)-1]
	if last.Kind != stream.MessageFailed {
		t.Fatalf("expected failure, got %#v", last)
	}
	if last.Reason != stream.LostConnectionMessage {
		t.Fatalf("expected lost-connection message, got %q", last.Reason)
	}
}

// TestRunQuietCloseAfterTerminal verifies the client closes deliberately
// even when the server leaves the connection open after the terminal frame.
func TestRunQuietCloseAfterTerminal(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/run", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"run_id":"run-1"}`))
	})
	mux.HandleFunc("/api/run/run-1/events", func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte("data: {\"type\":\"done\",\"answer\":\"42\"}\n\n"))
		flusher.Flush()
		// Hold the connection open; the client must not wait for us.
		<-r.Context().Done()
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := stream.NewClient(server.URL, nil)
	run := client.Start(context.Background(), stream.StartRequest{Query: "why?"})
	defer run.Close()

	messages := collect(t, run)
	last := messages[len(messages)-1]
	if last.Kind != stream.MessageClosed {
		t.Fatalf("expected clean close, got %#v", last)
	}
}

// TestRunDropsMalformedFrames verifies undecodable and unrecognized frames
// are discarded without aborting the run.
func TestRunDropsMalformedFrames(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/run", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"run_id":"run-1"}`))
	})
	mux.HandleFunc("/api/run/run-1/events", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte("data: {not json}\n\n"))
		_, _ = w.Write([]byte("data: {\"type\":\"mystery\"}\n\n"))
		_, _ = w.Write([]byte(": comment line\n\n"))
		_, _ = w.Write([]byte("data: {\"type\":\"answer\",\"answer\":\"42\"}\n\n"))
		_, _ = w.Write([]byte("data: {\"type\":\"done\"}\n\n"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := stream.NewClient(server.URL, nil)
	run := client.Start(context.Background(), stream.StartRequest{Query: "why?"})
	defer run.Close()

	messages := collect(t, run)
	got := eventTypes(messages)
	if len(got) != 2 || got[0] != event.TypeAnswer || got[1] != event.TypeDone {
		t.Fatalf("expected only valid events, got %v", got)
	}
	if run.Dropped() != 2 {
		t.Fatalf("expected 2 dropped frames, got %d", run.Dropped())
	}
}

// TestRunCreationHTTPFailure verifies a non-success run creation surfaces a
// message embedding the status code.
func TestRunCreationHTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := stream.NewClient(server.URL, nil)
	run := client.Start(context.Background(), stream.StartRequest{Query: "why?"})
	defer run.Close()

	messages := collect(t, run)
	if len(messages) != 1 || messages[0].Kind != stream.MessageFailed {
		t.Fatalf("expected a single failure, got %#v", messages)
	}
	if messages[0].Reason != "run request failed with status 502" {
		t.Fatalf("expected status in message, got %q", messages[0].Reason)
	}
}

// TestRunCreationNetworkFailure verifies a pre-response failure surfaces the
// underlying error text.
func TestRunCreationNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := stream.NewClient(server.URL, nil)
	run := client.Start(context.Background(), stream.StartRequest{Query: "why?"})
	defer run.Close()

	messages := collect(t, run)
	if len(messages) != 1 || messages[0].Kind != stream.MessageFailed {
		t.Fatalf("expected a single failure, got %#v", messages)
	}
	if messages[0].Reason == "" {
		t.Fatalf("expected underlying error text")
	}
}

// TestStartRunRejectsBlankQuery verifies blank input never reaches the wire.
func TestStartRunRejectsBlankQuery(t *testing.T) {
	client := stream.NewClient("http://127.0.0.1:0", nil)
	ctx := testutil.Context(t, time.Second)
	if _, err := client.StartRun(ctx, stream.StartRequest{Query: "   "}); err == nil {
		t.Fatalf("expected rejection for blank query")
	}
}

// TestRunCloseStopsDelivery verifies teardown closes the feed without a
// failure message.
func TestRunCloseStopsDelivery(t *testing.T) {
	release := make(chan struct{})
	mux := http.NewServeMux()
	mux.HandleFunc("/api/run", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"run_id":"run-1"}`))
	})
	mux.HandleFunc("/api/run/run-1/events", func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte("data: {\"type\":\"log\",\"message\":\"working\"}\n\n"))
		flusher.Flush()
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	server := httptest.NewServer(mux)
	defer server.Close()
	defer close(release)

	client := stream.NewClient(server.URL, nil)
	run := client.Start(context.Background(), stream.StartRequest{Query: "why?"})

	ctx := testutil.Context(t, 5*time.Second)
	sawLog := false
	for !sawLog {
		select {
		case msg := <-run.Messages():
			if msg.Kind == stream.MessageEvent && msg.Event.Type == event.TypeLog {
				sawLog = true
			}
		case <-ctx.Done():
			t.Fatalf("timed out waiting for first event")
		}
	}
	run.Close()

	for {
		select {
		case msg, ok := <-run.Messages():
			if !ok {
				return
			}
			if msg.Kind == stream.MessageFailed {
				t.Fatalf("teardown must not surface a failure, got %#v", msg)
			}
		case <-ctx.Done():
			t.Fatalf("feed did not close after teardown")
		}
	}
}
