package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Loader handles loading and parsing of config files.
type Loader struct {
	logger *zap.Logger
}

// NewLoader creates a new configuration loader.
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		logger: logger,
	}
}

// LoadResult contains the result of loading a configuration file.
type LoadResult struct {
	Config *Config
	Errors []error
}

// LoadFromFile loads configuration from a YAML file.
// Returns the configuration and any non-fatal errors encountered.
// If the file doesn't exist, returns default configuration with no error.
func (l *Loader) LoadFromFile(path string) (*LoadResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			l.logger.Debug("config file not found, using defaults", zap.String("path", path))
			return &LoadResult{Config: DefaultConfig(), Errors: []error{}}, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return l.LoadFromString(string(content))
}

// LoadFromString loads configuration from a YAML string.
// Fields left out of the source keep their default values.
func (l *Loader) LoadFromString(source string) (*LoadResult, error) {
	result := &LoadResult{
		Config: DefaultConfig(),
		Errors: []error{},
	}

	if strings.TrimSpace(source) == "" {
		return result, nil
	}

	parsed := DefaultConfig()
	parsed.Modes = nil
	if err := yaml.Unmarshal([]byte(source), parsed); err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("parse error: %w", err))
		// Continue with defaults on parse errors
		return result, nil
	}
	if parsed.Modes == nil {
		parsed.Modes = DefaultModes()
	}

	result.Config = parsed
	result.Errors = append(result.Errors, l.validate(result.Config)...)
	for _, err := range result.Errors {
		l.logger.Warn("config problem", zap.Error(err))
	}

	return result, nil
}

// validate fixes invalid values in place and reports what it changed.
func (l *Loader) validate(cfg *Config) []error {
	var errs []error
	defaults := DefaultConfig()

	if cfg.MaxSuggestions <= 0 {
		errs = append(errs, fmt.Errorf("maxSuggestions must be positive, got %d", cfg.MaxSuggestions))
		cfg.MaxSuggestions = defaults.MaxSuggestions
	}

	if _, err := zap.ParseAtomicLevel(cfg.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("invalid logLevel %q", cfg.LogLevel))
		cfg.LogLevel = defaults.LogLevel
	}

	var modes []Mode
	for _, m := range cfg.Modes {
		switch {
		case m.Name == "":
			errs = append(errs, fmt.Errorf("mode with file %q has no name", m.File))
			continue
		case m.File == "":
			errs = append(errs, fmt.Errorf("mode %q has no file", m.Name))
			continue
		case m.Seed != "" && m.Seed != SeedBuiltin:
			errs = append(errs, fmt.Errorf("mode %q has unknown seed %q", m.Name, m.Seed))
			m.Seed = ""
		}
		modes = append(modes, m)
	}

	duplicates := lo.FindDuplicatesBy(modes, func(m Mode) string { return m.Name })
	for _, d := range duplicates {
		errs = append(errs, fmt.Errorf("mode %q declared more than once", d.Name))
	}
	modes = lo.UniqBy(modes, func(m Mode) string { return m.Name })

	// Relative files are compared as written; NewManager also catches a
	// relative and an absolute path that meet inside the vocabulary directory.
	fileOwners := make(map[string]string, len(modes))
	modes = lo.Filter(modes, func(m Mode, _ int) bool {
		file := filepath.Clean(m.File)
		if owner, taken := fileOwners[file]; taken {
			errs = append(errs, fmt.Errorf("modes %q and %q share vocabulary file %q", owner, m.Name, m.File))
			return false
		}
		fileOwners[file] = m.Name
		return true
	})

	if len(modes) == 0 {
		errs = append(errs, fmt.Errorf("no usable modes configured"))
		modes = DefaultModes()
	}
	cfg.Modes = modes

	if cfg.GetMode(cfg.DefaultMode) == nil {
		if cfg.DefaultMode != "" {
			errs = append(errs, fmt.Errorf("defaultMode %q is not a configured mode", cfg.DefaultMode))
		}
		cfg.DefaultMode = cfg.Modes[0].Name
	}

	return errs
}
