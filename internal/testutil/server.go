package testutil

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"dexterwatch/internal/stubserver"
)

// ServerConfig wires dependencies for StartServer.
type ServerConfig struct {
	Script []json.RawMessage
	Delay  time.Duration
}

// ServerInstance represents a running stub backend.
type ServerInstance struct {
	BaseURL string
	Close   func()
}

// StartServer launches an in-memory stub Dexter backend.
func StartServer(t *testing.T, cfg ServerConfig) *ServerInstance {
	t.Helper()
	handler := stubserver.NewHandler(stubserver.Config{
		Script: cfg.Script,
		Delay:  cfg.Delay,
	})
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return &ServerInstance{
		BaseURL: server.URL,
		Close:   server.Close,
	}
}

// Frames encodes event payloads as script frames.
func Frames(t *testing.T, payloads ...any) []json.RawMessage {
	t.Helper()
	frames := make([]json.RawMessage, 0, len(payloads))
	for _, payload := range payloads {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("encode frame: %v", err)
		}
		frames = append(frames, encoded)
	}
	return frames
}
