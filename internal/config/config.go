// Package config provides configuration management for gcomplete.
// It handles loading and parsing of the YAML config file and resolving
// vocabulary file locations for each completion mode.
package config

import (
	"path/filepath"
)

// SeedBuiltin seeds a mode from the built-in word list when its vocabulary
// file does not exist yet.
const SeedBuiltin = "builtin"

// Mode describes one independent vocabulary.
type Mode struct {
	// Name identifies the mode, e.g. "words" or "names".
	Name string `yaml:"name"`

	// File is the vocabulary file. Relative paths resolve under the vocab dir.
	File string `yaml:"file"`

	// Seed optionally names a built-in list used when File is missing.
	Seed string `yaml:"seed,omitempty"`
}

// Config holds all gcomplete configuration.
type Config struct {
	// Prompt is shown before the input in both the UI and the line REPL.
	Prompt string `yaml:"prompt"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `yaml:"logLevel"`

	// DefaultMode is the mode selected at startup unless overridden by a flag.
	DefaultMode string `yaml:"defaultMode"`

	// MaxSuggestions caps how many suggestions the UI displays at once.
	// It does not affect what Complete returns.
	MaxSuggestions int `yaml:"maxSuggestions"`

	Modes []Mode `yaml:"modes"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Prompt:         "complete> ",
		LogLevel:       "info",
		DefaultMode:    "words",
		MaxSuggestions: 10,
		Modes:          DefaultModes(),
	}
}

// DefaultModes returns the modes used when the config file declares none.
func DefaultModes() []Mode {
	return []Mode{
		{Name: "words", File: "words.txt", Seed: SeedBuiltin},
		{Name: "names", File: "names.txt"},
	}
}

// GetMode returns a mode by name, or nil if not found.
func (c *Config) GetMode(name string) *Mode {
	for i := range c.Modes {
		if c.Modes[i].Name == name {
			return &c.Modes[i]
		}
	}
	return nil
}

// ModeNames returns the configured mode names in declaration order.
func (c *Config) ModeNames() []string {
	names := make([]string, 0, len(c.Modes))
	for _, m := range c.Modes {
		names = append(names, m.Name)
	}
	return names
}

// ResolveFile returns the absolute vocabulary path for m.
func (m Mode) ResolveFile(vocabDir string) string {
	if filepath.IsAbs(m.File) {
		return m.File
	}
	return filepath.Join(vocabDir, m.File)
}
