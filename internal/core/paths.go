package core

import (
	"os"
	"path/filepath"
)

type Paths struct {
	HomeDir     string
	DataDir     string
	LogFile     string
	HistoryFile string
	ConfigFile  string
	VocabDir    string
}

var defaultPaths *Paths

func ensureDefaultPaths() {
	if defaultPaths == nil {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			panic(err)
		}

		dataDir := filepath.Join(homeDir, ".gcomplete")
		defaultPaths = &Paths{
			HomeDir:     homeDir,
			DataDir:     dataDir,
			LogFile:     filepath.Join(dataDir, "gcomplete.log"),
			HistoryFile: filepath.Join(dataDir, "history.db"),
			ConfigFile:  filepath.Join(dataDir, "config.yaml"),
			VocabDir:    filepath.Join(dataDir, "vocab"),
		}

		err = os.MkdirAll(defaultPaths.DataDir, 0755)
		if err != nil {
			panic(err)
		}
	}
}

func HomeDir() string {
	ensureDefaultPaths()
	return defaultPaths.HomeDir
}

func DataDir() string {
	ensureDefaultPaths()
	return defaultPaths.DataDir
}

func LogFile() string {
	ensureDefaultPaths()
	return defaultPaths.LogFile
}

func HistoryFile() string {
	ensureDefaultPaths()
	return defaultPaths.HistoryFile
}

func ConfigFile() string {
	ensureDefaultPaths()
	return defaultPaths.ConfigFile
}

// VocabDir is where relative vocabulary file paths from the config resolve.
func VocabDir() string {
	ensureDefaultPaths()
	return defaultPaths.VocabDir
}

// ResetPaths clears the cached paths, forcing them to be reinitialized.
// This is primarily used for testing purposes.
func ResetPaths() {
	defaultPaths = nil
}
