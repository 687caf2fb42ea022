// Package config loads the optional .dexterwatch.yml client settings.
package config

// DefaultServerURL is the Dexter backend used when nothing else is set.
const DefaultServerURL = "http://127.0.0.1:8000"

// Config holds client settings.
type Config struct {
	// ServerURL is the Dexter backend base URL.
	ServerURL string `yaml:"server_url"`
	// MaxSteps caps the agent's reasoning steps; zero lets the backend
	// pick its default.
	MaxSteps int `yaml:"max_steps"`
	// MaxStepsPerTask caps steps within one task; zero defers to the
	// backend.
	MaxStepsPerTask int `yaml:"max_steps_per_task"`
	// UI selects the output mode: auto, live, or plain.
	UI string `yaml:"ui"`
	// NoColor disables styled output.
	NoColor bool `yaml:"no_color"`
}

// Default returns the settings used when no config file exists.
func Default() Config {
	return Config{
		ServerURL: DefaultServerURL,
		UI:        "auto",
	}
}
