package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeConfig drops config data into a temp file.
func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".dexterwatch.yml")
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// TestLoadMissingFileYieldsDefaults verifies the config file is optional.
func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ServerURL != DefaultServerURL || cfg.UI != "auto" {
		t.Fatalf("expected defaults, got %#v", cfg)
	}
}

// TestLoadNormalizesFields verifies trimming and defaulting.
func TestLoadNormalizesFields(t *testing.T) {
	path := writeConfig(t, "server_url: \" http://dexter.local:9000/ \"\nui: LIVE\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ServerURL != "http://dexter.local:9000" {
		t.Fatalf("expected trimmed URL, got %q", cfg.ServerURL)
	}
	if cfg.UI != "live" {
		t.Fatalf("expected lowered ui, got %q", cfg.UI)
	}
}

// TestLoadRejectsUnknownFields verifies strict decoding.
func TestLoadRejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, "server_url: http://dexter.local\nmax_step: 3\n")
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("expected strict parse error, got %v", err)
	}
}

// TestValidate covers the rejection cases.
func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"relative url", "server_url: dexter.local\n"},
		{"bad ui", "ui: fancy\n"},
		{"negative steps", "max_steps: -1\n"},
		{"negative per task", "max_steps_per_task: -2\n"},
	}
	for _, tc := range cases {
		path := writeConfig(t, tc.data)
		if _, err := Load(path); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}
