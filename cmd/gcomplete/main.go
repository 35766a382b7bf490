package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/atinylittleshell/gcomplete/internal/config"
	"github.com/atinylittleshell/gcomplete/internal/core"
	"github.com/atinylittleshell/gcomplete/internal/dictionary"
	"github.com/atinylittleshell/gcomplete/internal/history"
	"github.com/atinylittleshell/gcomplete/internal/repl"
	"github.com/atinylittleshell/gcomplete/internal/styles"
	"github.com/atinylittleshell/gcomplete/internal/ui"
)

var BUILD_VERSION = "dev"

var completePrefix = flag.String("c", "", "print completions for a prefix and exit")
var addWord = flag.String("add", "", "add a word to the selected mode and exit")
var modeFlag = flag.String("mode", "", "completion mode to use (default from config)")
var configPath = flag.String("config", "", "path to the config file")

var helpFlag = flag.Bool("h", false, "display help information")
var versionFlag = flag.Bool("ver", false, "display build version")

const helpText = `gcomplete - prefix word completion over your own vocabularies

USAGE:
  gcomplete [options]

MODES:
  gcomplete                 Interactive completion (line mode when stdin is not a terminal)
  gcomplete -c PREFIX       Print every stored word starting with PREFIX
  gcomplete -add WORD       Add WORD to the vocabulary and save it

Vocabularies are plain text files, one word per line, under ~/.gcomplete/vocab.

OPTIONS:
`

func main() {
	flag.Parse()

	if *versionFlag {
		fmt.Println(BUILD_VERSION)
		return
	}

	if *helpFlag {
		fmt.Print(helpText)
		flag.PrintDefaults()
		return
	}

	// Load configuration
	cfg, cfgErrors, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, styles.ERROR(err.Error()))
		os.Exit(1)
	}

	// Initialize the logger
	logger, err := initializeLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer logger.Sync() // Flush any buffered log entries

	logger.Info("-------- new gcomplete session --------", zap.Any("args", os.Args))
	for _, cfgErr := range cfgErrors {
		logger.Warn("config problem", zap.Error(cfgErr))
		fmt.Fprintln(os.Stderr, styles.ERROR("config: "+cfgErr.Error()))
	}

	// Initialize the history manager
	historyManager, err := initializeHistoryManager()
	if err != nil {
		logger.Error("failed to initialize history manager", zap.Error(err))
		panic("failed to initialize history manager")
	}
	defer historyManager.Close()

	// Load every vocabulary
	dict, err := dictionary.NewManager(cfg.Modes, dictionary.Options{
		VocabDir: core.VocabDir(),
		Recorder: historyManager,
		Logger:   logger,
	})
	if err != nil {
		logger.Error("failed to load vocabularies", zap.Error(err))
		fmt.Fprintln(os.Stderr, styles.ERROR(err.Error()))
		os.Exit(1)
	}

	// Start running
	err = run(cfg, dict, historyManager, logger)
	if err != nil {
		logger.Error("unhandled error", zap.Error(err))
		fmt.Fprintln(os.Stderr, styles.ERROR(err.Error()))
		os.Exit(1)
	}
}

func run(
	cfg *config.Config,
	dict *dictionary.Manager,
	historyManager *history.HistoryManager,
	logger *zap.Logger,
) error {
	ctx := context.Background()

	mode, err := resolveMode(dict, *modeFlag, cfg.DefaultMode)
	if err != nil {
		return err
	}

	// gcomplete -add word
	if *addWord != "" {
		if err := dict.Add(mode, *addWord); err != nil {
			return err
		}
		if !isFlagSet("c") {
			return nil
		}
	}

	// gcomplete -c prefix
	if isFlagSet("c") {
		return printCompletions(os.Stdout, dict, mode, *completePrefix)
	}

	// gcomplete
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return runInteractive(cfg, dict, mode, logger)
	}

	return repl.New(repl.Options{
		Dictionary: dict,
		History:    historyManager,
		Mode:       mode,
		Prompt:     cfg.Prompt,
		In:         os.Stdin,
		Out:        os.Stdout,
		Err:        os.Stderr,
		Logger:     logger,
	}).Run(ctx)
}

// runInteractive starts the Bubble Tea completion UI.
func runInteractive(cfg *config.Config, dict *dictionary.Manager, mode string, logger *zap.Logger) error {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		width = 0
	}

	model := ui.New(ui.Config{
		Dictionary:     dict,
		Mode:           mode,
		Prompt:         cfg.Prompt,
		MaxSuggestions: cfg.MaxSuggestions,
		Width:          width,
		Logger:         logger,
	})

	if _, err := tea.NewProgram(model).Run(); err != nil {
		return fmt.Errorf("failed to run interactive UI: %w", err)
	}
	return nil
}

// resolveMode picks the mode from the flag, falling back to the config default.
func resolveMode(dict *dictionary.Manager, flagValue string, defaultMode string) (string, error) {
	mode := flagValue
	if mode == "" {
		mode = defaultMode
	}
	if !dict.HasMode(mode) {
		return "", fmt.Errorf("%w: %q", dictionary.ErrUnknownMode, mode)
	}
	return mode, nil
}

// printCompletions writes one completion per line. No output means no suggestions.
func printCompletions(w io.Writer, dict *dictionary.Manager, mode string, prefix string) error {
	results, err := dict.Complete(mode, prefix)
	if err != nil {
		return err
	}
	for _, word := range results {
		if _, err := fmt.Fprintln(w, word); err != nil {
			return err
		}
	}
	return nil
}

func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func loadConfig(path string) (*config.Config, []error, error) {
	if path == "" {
		path = core.ConfigFile()
	}

	result, err := config.NewLoader(nil).LoadFromFile(path)
	if err != nil {
		return nil, nil, err
	}
	return result.Config, result.Errors, nil
}

func initializeLogger(cfg *config.Config) (*zap.Logger, error) {
	logLevel, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		logLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	if BUILD_VERSION == "dev" {
		logLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	// Logs only go to file to avoid interfering with the Bubble Tea UI
	loggerConfig := zap.NewProductionConfig()
	loggerConfig.Level = logLevel
	loggerConfig.OutputPaths = []string{
		core.LogFile(),
	}

	logger, err := loggerConfig.Build()
	if err != nil {
		return nil, err
	}

	return logger, nil
}

func initializeHistoryManager() (*history.HistoryManager, error) {
	historyManager, err := history.NewHistoryManager(core.HistoryFile())
	if err != nil {
		return nil, err
	}

	return historyManager, nil
}
