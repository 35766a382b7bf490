// Package vocab reads and writes vocabulary files: UTF-8 text with one word
// per line and no header. Blank lines are ignored on read.
package vocab

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/atinylittleshell/gcomplete/internal/trie"
)

// ErrVocabularyMissing is returned by Load when the vocabulary file does not
// exist. It is recoverable: Load still returns a usable empty store.
var ErrVocabularyMissing = errors.New("vocabulary file not found")

// ErrUnrepresentableWord is returned by Write and Save when the store holds a
// word the file format cannot carry: the empty word, or a word containing a
// line break. Nothing is written in that case.
var ErrUnrepresentableWord = errors.New("word cannot be stored in a vocabulary file")

// defaultFileMode applies to vocabulary files that do not exist yet.
const defaultFileMode os.FileMode = 0644

// Read builds a trie from newline-delimited words. The returned trie is
// never nil, even when err is not.
func Read(r io.Reader) (*trie.Trie, error) {
	t := trie.New()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		word := strings.TrimRight(scanner.Text(), "\r\n")
		if word == "" {
			continue
		}
		t.Insert(word)
	}

	if err := scanner.Err(); err != nil {
		return t, fmt.Errorf("failed to read vocabulary: %w", err)
	}
	return t, nil
}

// Load reads the vocabulary file at path. A missing file yields an empty
// trie together with an error wrapping ErrVocabularyMissing.
func Load(path string) (*trie.Trie, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return trie.New(), fmt.Errorf("%w: %s", ErrVocabularyMissing, path)
		}
		return trie.New(), fmt.Errorf("failed to open vocabulary %s: %w", path, err)
	}
	defer f.Close()

	return Read(f)
}

// Write writes every word in t to w, one per line, in completion order.
// Words that would not survive a Read are rejected before anything is written.
func Write(t *trie.Trie, w io.Writer) error {
	words := t.Words()
	for _, word := range words {
		if word == "" {
			return fmt.Errorf("%w: empty word", ErrUnrepresentableWord)
		}
		if strings.ContainsAny(word, "\r\n") {
			return fmt.Errorf("%w: %q contains a line break", ErrUnrepresentableWord, word)
		}
	}

	bw := bufio.NewWriter(w)
	for _, word := range words {
		if _, err := bw.WriteString(word); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Save writes a full snapshot of t to path, replacing any previous content.
// The snapshot is written to a temporary file in the same directory and then
// renamed into place, so a failed save leaves the old file intact. An
// existing file keeps its permissions.
func Save(t *trie.Trie, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create vocabulary directory: %w", err)
	}

	mode := defaultFileMode
	if stat, err := os.Stat(path); err == nil && stat.Mode().IsRegular() {
		mode = stat.Mode().Perm()
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary vocabulary file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if err := Write(t, tmp); err != nil {
		return fmt.Errorf("failed to write vocabulary: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close vocabulary file: %w", err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		return fmt.Errorf("failed to set vocabulary permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace vocabulary %s: %w", path, err)
	}

	committed = true
	return nil
}
