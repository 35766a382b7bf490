// Package dictionary owns the completion vocabularies. Each mode is an
// independent trie bound to its own vocabulary file.
package dictionary

import (
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"github.com/atinylittleshell/gcomplete/internal/config"
	"github.com/atinylittleshell/gcomplete/internal/history"
	"github.com/atinylittleshell/gcomplete/internal/trie"
	"github.com/atinylittleshell/gcomplete/internal/vocab"
	"go.uber.org/zap"
)

//go:embed default_words.txt
var builtinWords string

var (
	// ErrUnknownMode is returned for a mode name that was not configured.
	ErrUnknownMode = errors.New("unknown mode")

	// ErrInvalidWord is returned by Add for words the vocabulary file format
	// cannot hold: empty words and words containing line breaks.
	ErrInvalidWord = errors.New("invalid word")

	// ErrSharedVocabulary is returned by NewManager when two modes resolve to
	// the same vocabulary file.
	ErrSharedVocabulary = errors.New("vocabulary file shared between modes")
)

// Recorder receives every successfully added word.
type Recorder interface {
	RecordAdd(mode string, word string) (*history.HistoryEntry, error)
}

// store is one mode's vocabulary guarded by its own lock.
type store struct {
	mu   sync.RWMutex
	trie *trie.Trie
	path string
}

// Manager holds one vocabulary per mode.
type Manager struct {
	logger   *zap.Logger
	recorder Recorder

	order  []string
	stores map[string]*store
}

// Options configures a Manager.
type Options struct {
	// VocabDir is where relative vocabulary paths resolve.
	VocabDir string

	// Recorder is notified of added words. May be nil.
	Recorder Recorder

	// Logger for warnings such as missing vocabulary files. If nil, a no-op logger is used.
	Logger *zap.Logger
}

// BuiltinWords returns the built-in seed word list.
func BuiltinWords() []string {
	return strings.Fields(builtinWords)
}

// NewManager loads every mode's vocabulary. A missing vocabulary file is
// logged and the mode starts empty, or seeded when the mode asks for it.
// Any other load failure is returned, as are two modes sharing one file.
func NewManager(modes []config.Mode, opts Options) (*Manager, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Manager{
		logger:   logger,
		recorder: opts.Recorder,
		stores:   make(map[string]*store, len(modes)),
	}

	owners := make(map[string]string, len(modes))
	for _, mode := range modes {
		if _, exists := m.stores[mode.Name]; exists {
			return nil, fmt.Errorf("mode %q declared more than once", mode.Name)
		}

		path := filepath.Clean(mode.ResolveFile(opts.VocabDir))
		if owner, taken := owners[path]; taken {
			return nil, fmt.Errorf("%w: modes %q and %q both use %s", ErrSharedVocabulary, owner, mode.Name, path)
		}
		owners[path] = mode.Name

		t, err := vocab.Load(path)
		if err != nil {
			if !errors.Is(err, vocab.ErrVocabularyMissing) {
				return nil, fmt.Errorf("failed to load mode %q: %w", mode.Name, err)
			}

			logger.Warn("vocabulary file missing, starting empty",
				zap.String("mode", mode.Name),
				zap.String("path", path))

			if mode.Seed == config.SeedBuiltin {
				t = trie.FromWords(BuiltinWords()...)
				logger.Info("seeded vocabulary from builtin list",
					zap.String("mode", mode.Name),
					zap.Int("words", t.Len()))
			}
		}

		logger.Debug("loaded vocabulary",
			zap.String("mode", mode.Name),
			zap.String("path", path),
			zap.Int("words", t.Len()))

		m.order = append(m.order, mode.Name)
		m.stores[mode.Name] = &store{trie: t, path: path}
	}

	return m, nil
}

func (m *Manager) get(mode string) (*store, error) {
	s, ok := m.stores[mode]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	return s, nil
}

// Modes returns the mode names in configuration order.
func (m *Manager) Modes() []string {
	return append([]string(nil), m.order...)
}

// HasMode reports whether mode is configured.
func (m *Manager) HasMode(mode string) bool {
	_, ok := m.stores[mode]
	return ok
}

// NextMode returns the mode after current, wrapping around.
func (m *Manager) NextMode(current string) string {
	if len(m.order) == 0 {
		return current
	}
	for i, name := range m.order {
		if name == current {
			return m.order[(i+1)%len(m.order)]
		}
	}
	return m.order[0]
}

// Path returns the vocabulary file backing mode.
func (m *Manager) Path(mode string) (string, error) {
	s, err := m.get(mode)
	if err != nil {
		return "", err
	}
	return s.path, nil
}

// Len returns the number of words stored in mode.
func (m *Manager) Len(mode string) (int, error) {
	s, err := m.get(mode)
	if err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.trie.Len(), nil
}

// Complete returns the words in mode starting with prefix. An empty result
// means no suggestions; only an unknown mode is an error.
func (m *Manager) Complete(mode string, prefix string) ([]string, error) {
	s, err := m.get(mode)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.trie.Complete(prefix), nil
}

// Contains reports whether word is stored in mode.
func (m *Manager) Contains(mode string, word string) (bool, error) {
	s, err := m.get(mode)
	if err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.trie.Contains(word), nil
}

// ValidateWord reports whether word can be stored in a vocabulary file.
func ValidateWord(word string) error {
	if strings.TrimSpace(word) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidWord)
	}
	if strings.ContainsAny(word, "\r\n") {
		return fmt.Errorf("%w: contains a line break", ErrInvalidWord)
	}
	if strings.IndexFunc(word, unicode.IsControl) >= 0 {
		return fmt.Errorf("%w: contains a control character", ErrInvalidWord)
	}
	return nil
}

// Add inserts word into mode and saves the whole vocabulary. When the save
// fails the word stays in memory and the error is returned; the next
// successful save will include it.
func (m *Manager) Add(mode string, word string) error {
	if err := ValidateWord(word); err != nil {
		return err
	}
	s, err := m.get(mode)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.trie.Insert(word)
	err = vocab.Save(s.trie, s.path)
	s.mu.Unlock()

	if err != nil {
		m.logger.Error("failed to save vocabulary",
			zap.String("mode", mode),
			zap.String("path", s.path),
			zap.Error(err))
		return fmt.Errorf("failed to save mode %q: %w", mode, err)
	}

	m.logger.Debug("added word", zap.String("mode", mode), zap.String("word", word))

	if m.recorder != nil {
		if _, err := m.recorder.RecordAdd(mode, word); err != nil {
			m.logger.Warn("failed to record added word", zap.Error(err))
		}
	}

	return nil
}

// Save writes mode's vocabulary to its file.
func (m *Manager) Save(mode string) error {
	s, err := m.get(mode)
	if err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := vocab.Save(s.trie, s.path); err != nil {
		return fmt.Errorf("failed to save mode %q: %w", mode, err)
	}
	return nil
}

// SaveAll writes every mode's vocabulary, returning the errors joined.
func (m *Manager) SaveAll() error {
	var errs []error
	for _, mode := range m.order {
		if err := m.Save(mode); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
