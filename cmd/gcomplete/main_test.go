package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinylittleshell/gcomplete/internal/config"
	"github.com/atinylittleshell/gcomplete/internal/core"
	"github.com/atinylittleshell/gcomplete/internal/dictionary"
)

func newTestDictionary(t *testing.T) *dictionary.Manager {
	t.Helper()
	dict, err := dictionary.NewManager([]config.Mode{
		{Name: "words", File: "words.txt", Seed: config.SeedBuiltin},
		{Name: "names", File: "names.txt"},
	}, dictionary.Options{VocabDir: t.TempDir()})
	require.NoError(t, err)
	return dict
}

func TestResolveMode(t *testing.T) {
	dict := newTestDictionary(t)

	tests := []struct {
		name        string
		flagValue   string
		defaultMode string
		expected    string
		wantErr     bool
	}{
		{"flag wins", "names", "words", "names", false},
		{"default used", "", "words", "words", false},
		{"unknown flag", "cities", "words", "", true},
		{"unknown default", "", "cities", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mode, err := resolveMode(dict, tt.flagValue, tt.defaultMode)
			if tt.wantErr {
				assert.ErrorIs(t, err, dictionary.ErrUnknownMode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, mode)
		})
	}
}

func TestPrintCompletions(t *testing.T) {
	dict := newTestDictionary(t)

	var buf bytes.Buffer
	require.NoError(t, printCompletions(&buf, dict, "words", "ho"))
	assert.Equal(t, "honey\nhorse\nhouse\n", buf.String())

	buf.Reset()
	require.NoError(t, printCompletions(&buf, dict, "words", "qqq"))
	assert.Empty(t, buf.String())

	buf.Reset()
	assert.Error(t, printCompletions(&buf, dict, "cities", "a"))
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("maxSuggestions: -1\n"), 0644))

	cfg, cfgErrors, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.MaxSuggestions)
	assert.Len(t, cfgErrors, 1)
}

func TestLoadConfigDefaultPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	core.ResetPaths()
	defer core.ResetPaths()

	cfg, cfgErrors, err := loadConfig("")
	require.NoError(t, err)
	assert.Empty(t, cfgErrors)
	assert.Equal(t, config.DefaultConfig(), cfg)
}

func TestInitializeLogger(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	core.ResetPaths()
	defer core.ResetPaths()

	logger, err := initializeLogger(config.DefaultConfig())
	require.NoError(t, err)
	logger.Info("hello")
	require.NoError(t, logger.Sync())

	content, err := os.ReadFile(core.LogFile())
	require.NoError(t, err)
	assert.Contains(t, string(content), "hello")
}

func TestInitializeHistoryManager(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	core.ResetPaths()
	defer core.ResetPaths()

	hm, err := initializeHistoryManager()
	require.NoError(t, err)
	defer hm.Close()

	_, err = os.Stat(core.HistoryFile())
	assert.NoError(t, err)
}
