// Package repl implements the line-oriented completion loop used when input
// is not a terminal. Each line is a prefix to complete, a ":" command, or
// "exit". A leading "::" completes a prefix that itself starts with ":".
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/atinylittleshell/gcomplete/internal/history"
	"github.com/atinylittleshell/gcomplete/internal/styles"
	"github.com/atinylittleshell/gcomplete/internal/ui"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

const (
	noSuggestions       = "No suggestions found."
	defaultHistoryLimit = 10
)

// Dictionary is what the REPL needs from the vocabulary owner.
type Dictionary interface {
	Complete(mode string, prefix string) ([]string, error)
	Add(mode string, word string) error
	HasMode(mode string) bool
	Modes() []string
	Len(mode string) (int, error)
	SaveAll() error
}

// History lists and clears recorded additions.
type History interface {
	RecentEntries(mode string, limit int) ([]history.HistoryEntry, error)
	EntriesByPrefix(prefix string, limit int) ([]history.HistoryEntry, error)
	Reset() error
}

// Options configures a REPL.
type Options struct {
	Dictionary Dictionary

	// History is optional; without it the :history command is unavailable.
	History History

	Mode   string
	Prompt string

	In  io.Reader
	Out io.Writer
	Err io.Writer

	// Logger for debug output. If nil, a no-op logger is used.
	Logger *zap.Logger
}

// REPL reads prefixes line by line and prints their completions.
type REPL struct {
	dict    Dictionary
	history History
	mode    string
	prompt  string

	in     io.Reader
	out    io.Writer
	err    io.Writer
	logger *zap.Logger
}

// New creates a REPL.
func New(opts Options) *REPL {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &REPL{
		dict:    opts.Dictionary,
		history: opts.History,
		mode:    opts.Mode,
		prompt:  opts.Prompt,
		in:      opts.In,
		out:     opts.Out,
		err:     opts.Err,
		logger:  logger,
	}
}

// Mode returns the currently selected mode.
func (r *REPL) Mode() string {
	return r.mode
}

// errExit stops the loop without being reported.
var errExit = errors.New("exit")

// Run processes lines until EOF, "exit", or ctx is cancelled.
func (r *REPL) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(r.in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(r.out, r.prompt)
		if !scanner.Scan() {
			fmt.Fprintln(r.out)
			return scanner.Err()
		}

		if err := r.HandleLine(scanner.Text()); err != nil {
			if errors.Is(err, errExit) {
				return nil
			}
			return err
		}
	}
}

// HandleLine processes a single line of input. Command failures are printed
// and do not stop the loop.
func (r *REPL) HandleLine(line string) error {
	line = strings.TrimSpace(line)

	if strings.EqualFold(line, "exit") {
		return errExit
	}

	if strings.HasPrefix(line, "::") {
		line = line[1:]
	} else if strings.HasPrefix(line, ":") {
		if err := r.handleCommand(line[1:]); err != nil {
			if errors.Is(err, errExit) {
				return err
			}
			r.logger.Debug("command failed", zap.String("line", line), zap.Error(err))
			fmt.Fprintln(r.err, styles.ERROR(err.Error()))
		}
		return nil
	}

	prefix := line
	if strings.ContainsFunc(line, isSpace) {
		prefix = ui.CurrentPrefix(line)
	}

	results, err := r.dict.Complete(r.mode, prefix)
	if err != nil {
		fmt.Fprintln(r.err, styles.ERROR(err.Error()))
		return nil
	}

	if len(results) == 0 {
		fmt.Fprintln(r.out, noSuggestions)
		return nil
	}

	for _, word := range results {
		fmt.Fprintln(r.out, styles.SUGGESTION(word))
	}
	return nil
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t'
}

func (r *REPL) handleCommand(command string) error {
	name, arg, _ := strings.Cut(strings.TrimSpace(command), " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "add":
		if arg == "" {
			return errors.New("usage: :add WORD")
		}
		if err := r.dict.Add(r.mode, arg); err != nil {
			return err
		}
		fmt.Fprintln(r.out, styles.NOTICE(fmt.Sprintf("added %q to %s", arg, r.mode)))

	case "mode":
		if arg == "" {
			fmt.Fprintln(r.out, r.mode)
			return nil
		}
		if !r.dict.HasMode(arg) {
			return fmt.Errorf("unknown mode %q (available: %s)", arg, strings.Join(r.dict.Modes(), ", "))
		}
		r.mode = arg
		fmt.Fprintln(r.out, styles.NOTICE("mode: "+arg))

	case "modes":
		for _, mode := range r.dict.Modes() {
			n, err := r.dict.Len(mode)
			if err != nil {
				return err
			}
			marker := " "
			if mode == r.mode {
				marker = "*"
			}
			fmt.Fprintf(r.out, "%s %s (%s words)\n", marker, mode, humanize.Comma(int64(n)))
		}

	case "history":
		return r.printHistory(arg)

	case "save":
		if err := r.dict.SaveAll(); err != nil {
			return err
		}
		fmt.Fprintln(r.out, styles.NOTICE("saved"))

	case "exit", "quit":
		return errExit

	case "help", "":
		fmt.Fprint(r.out, helpText)

	default:
		return fmt.Errorf("unknown command %q, try :help", name)
	}

	return nil
}

func (r *REPL) printHistory(arg string) error {
	if r.history == nil {
		return errors.New("history is not available")
	}

	if arg == "reset" {
		if err := r.history.Reset(); err != nil {
			return fmt.Errorf("failed to reset history: %w", err)
		}
		fmt.Fprintln(r.out, styles.NOTICE("history cleared"))
		return nil
	}

	// A number is a limit for the current mode; any other argument searches
	// every mode by prefix.
	limit := defaultHistoryLimit
	if arg != "" {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return r.printHistoryByPrefix(arg)
		}
		if n <= 0 {
			return fmt.Errorf("invalid history limit %q", arg)
		}
		limit = n
	}

	entries, err := r.history.RecentEntries(r.mode, limit)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	if len(entries) == 0 {
		fmt.Fprintln(r.out, styles.LOG("no words added yet"))
		return nil
	}

	for _, e := range entries {
		fmt.Fprintf(r.out, "%s  %s\n", e.Word, styles.LOG(humanize.Time(e.CreatedAt)))
	}
	return nil
}

func (r *REPL) printHistoryByPrefix(prefix string) error {
	entries, err := r.history.EntriesByPrefix(prefix, defaultHistoryLimit)
	if err != nil {
		return fmt.Errorf("failed to search history: %w", err)
	}
	if len(entries) == 0 {
		fmt.Fprintln(r.out, styles.LOG(fmt.Sprintf("no added words start with %q", prefix)))
		return nil
	}

	for _, e := range entries {
		fmt.Fprintf(r.out, "%s  %s  %s\n", e.Word, e.Mode, styles.LOG(humanize.Time(e.CreatedAt)))
	}
	return nil
}

const helpText = `Type a prefix to list its completions, or "exit" to quit.

Commands:
  :add WORD      add WORD to the current mode and save it
  :mode [NAME]   show or switch the current mode
  :modes         list modes and their sizes
  :history [N]   show the N most recently added words (default 10)
  :history TEXT  search words added in any mode that start with TEXT
  :history reset clear the addition history
  :save          save every mode
  :help          show this help

A line starting with "::" is completed as a prefix beginning with ":",
so "::co" lists words starting with ":co".
`
