package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Normalize fills defaults and canonicalizes fields in place.
func Normalize(cfg *Config) {
	cfg.ServerURL = strings.TrimRight(strings.TrimSpace(cfg.ServerURL), "/")
	if cfg.ServerURL == "" {
		cfg.ServerURL = DefaultServerURL
	}
	cfg.UI = strings.ToLower(strings.TrimSpace(cfg.UI))
	if cfg.UI == "" {
		cfg.UI = "auto"
	}
}

// Validate rejects settings the client cannot act on.
func Validate(cfg *Config) error {
	parsed, err := url.Parse(cfg.ServerURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("server_url %q is not an absolute URL", cfg.ServerURL)
	}
	switch cfg.UI {
	case "auto", "live", "plain":
	default:
		return fmt.Errorf("ui %q is invalid (expected auto|live|plain)", cfg.UI)
	}
	if cfg.MaxSteps < 0 {
		return fmt.Errorf("max_steps must not be negative")
	}
	if cfg.MaxStepsPerTask < 0 {
		return fmt.Errorf("max_steps_per_task must not be negative")
	}
	return nil
}
