// Package ui provides the interactive Bubble Tea front end for gcomplete.
// It owns text editing, prefix extraction and suggestion display, and calls
// into the dictionary only with a single prefix token at a time.
package ui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// Dictionary is what the UI needs from the vocabulary owner.
type Dictionary interface {
	Complete(mode string, prefix string) ([]string, error)
	Add(mode string, word string) error
	NextMode(current string) string
}

// Config holds configuration for creating a new Model.
type Config struct {
	Dictionary Dictionary

	// Mode is the initially selected mode.
	Mode string

	// Prompt is the prompt string to display.
	Prompt string

	// MaxSuggestions caps the number of suggestions shown. Defaults to 10.
	MaxSuggestions int

	// KeyMap provides key bindings. If nil, DefaultKeyMap is used.
	KeyMap *KeyMap

	// Width is the initial terminal width. Defaults to 80.
	Width int

	// CopyFunc writes to the clipboard. If nil, the system clipboard is used.
	CopyFunc func(string) error

	// Logger for debug output. If nil, a no-op logger is used.
	Logger *zap.Logger
}

// Model is the Bubble Tea model for the completion UI.
type Model struct {
	dict   Dictionary
	mode   string
	input  textinput.Model
	keymap KeyMap
	help   help.Model

	prefix      string
	suggestions []string
	selected    int
	maxShown    int

	status    string
	statusErr bool

	width    int
	copyFunc func(string) error
	logger   *zap.Logger
	quitting bool
}

// addResultMsg reports the outcome of adding a word.
type addResultMsg struct {
	mode string
	word string
	err  error
}

// copyResultMsg reports the outcome of a clipboard copy.
type copyResultMsg struct {
	word string
	err  error
}

// New creates a new Model with the given configuration.
func New(cfg Config) Model {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	keymap := DefaultKeyMap()
	if cfg.KeyMap != nil {
		keymap = *cfg.KeyMap
	}

	maxShown := cfg.MaxSuggestions
	if maxShown <= 0 {
		maxShown = 10
	}

	width := cfg.Width
	if width <= 0 {
		width = 80
	}

	copyFunc := cfg.CopyFunc
	if copyFunc == nil {
		copyFunc = clipboard.WriteAll
	}

	input := textinput.New()
	input.Prompt = cfg.Prompt
	input.Placeholder = "start typing"
	input.Focus()

	m := Model{
		dict:     cfg.Dictionary,
		mode:     cfg.Mode,
		input:    input,
		keymap:   keymap,
		help:     help.New(),
		maxShown: maxShown,
		width:    width,
		copyFunc: copyFunc,
		logger:   logger,
	}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Value returns the current input text.
func (m Model) Value() string {
	return m.input.Value()
}

// SetValue replaces the input text and refreshes suggestions.
func (m *Model) SetValue(s string) {
	m.input.SetValue(s)
	m.input.CursorEnd()
	m.refresh()
}

// Mode returns the selected mode.
func (m Model) Mode() string {
	return m.mode
}

// Suggestions returns all completions for the current prefix.
func (m Model) Suggestions() []string {
	return m.suggestions
}

// Selected returns the highlighted suggestion, or "" when there is none.
func (m Model) Selected() string {
	if m.selected < 0 || m.selected >= len(m.suggestions) {
		return ""
	}
	return m.suggestions[m.selected]
}

// refresh recomputes suggestions for the word being typed.
func (m *Model) refresh() {
	m.prefix = CurrentPrefix(m.input.Value())
	m.selected = 0
	m.suggestions = nil

	// An empty prefix would list the whole vocabulary; wait for a character.
	if m.prefix == "" || m.dict == nil {
		return
	}

	suggestions, err := m.dict.Complete(m.mode, m.prefix)
	if err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.suggestions = suggestions
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case addResultMsg:
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("could not add %q: %v", msg.word, msg.err), true)
			return m, nil
		}
		m.setStatus(fmt.Sprintf("added %q to %s", msg.word, msg.mode), false)
		m.refresh()
		return m, nil

	case copyResultMsg:
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("copy failed: %v", msg.err), true)
		} else {
			m.setStatus(fmt.Sprintf("copied %q", msg.word), false)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Next):
		if len(m.suggestions) > 0 {
			m.selected = (m.selected + 1) % min(len(m.suggestions), m.maxShown)
		}
		return m, nil

	case key.Matches(msg, m.keymap.Prev):
		if len(m.suggestions) > 0 {
			shown := min(len(m.suggestions), m.maxShown)
			m.selected = (m.selected - 1 + shown) % shown
		}
		return m, nil

	case key.Matches(msg, m.keymap.Accept):
		if word := m.Selected(); word != "" {
			m.SetValue(ReplaceCurrentWord(m.input.Value(), word))
		}
		return m, nil

	case key.Matches(msg, m.keymap.NextMode):
		if m.dict != nil {
			m.mode = m.dict.NextMode(m.mode)
			m.setStatus("mode: "+m.mode, false)
			m.refresh()
		}
		return m, nil

	case key.Matches(msg, m.keymap.AddWord):
		word := m.prefix
		if word == "" {
			m.setStatus("nothing to add", true)
			return m, nil
		}
		return m, m.addWord(m.mode, word)

	case key.Matches(msg, m.keymap.Copy):
		word := m.Selected()
		if word == "" {
			return m, nil
		}
		return m, m.copyWord(word)
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.status = ""
		m.refresh()
	}
	return m, cmd
}

func (m Model) addWord(mode string, word string) tea.Cmd {
	dict := m.dict
	logger := m.logger
	return func() tea.Msg {
		err := dict.Add(mode, word)
		if err != nil {
			logger.Debug("add word failed", zap.String("word", word), zap.Error(err))
		}
		return addResultMsg{mode: mode, word: word, err: err}
	}
}

func (m Model) copyWord(word string) tea.Cmd {
	copyFunc := m.copyFunc
	return func() tea.Msg {
		return copyResultMsg{word: word, err: copyFunc(word)}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(m.input.View())
	sb.WriteString("\n")
	sb.WriteString(renderSuggestions(m.prefix, m.suggestions, m.selected, m.maxShown, m.width))
	sb.WriteString("\n")
	sb.WriteString(renderStatus(m.mode, m.status, m.statusErr))
	sb.WriteString("\n")
	sb.WriteString(m.help.ShortHelpView(m.keymap.ShortHelp()))
	return sb.String()
}
