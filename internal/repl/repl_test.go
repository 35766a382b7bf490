package repl

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/atinylittleshell/gcomplete/internal/config"
	"github.com/atinylittleshell/gcomplete/internal/dictionary"
	"github.com/atinylittleshell/gcomplete/internal/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	dict    *dictionary.Manager
	history *history.HistoryManager
	out     *bytes.Buffer
	err     *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()

	hm, err := history.NewHistoryManager(filepath.Join(dir, "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { hm.Close() })

	dict, err := dictionary.NewManager([]config.Mode{
		{Name: "words", File: "words.txt", Seed: config.SeedBuiltin},
		{Name: "names", File: "names.txt"},
	}, dictionary.Options{VocabDir: dir, Recorder: hm})
	require.NoError(t, err)

	return &testEnv{dict: dict, history: hm, out: &bytes.Buffer{}, err: &bytes.Buffer{}}
}

func (e *testEnv) run(t *testing.T, input string) *REPL {
	t.Helper()
	r := New(Options{
		Dictionary: e.dict,
		History:    e.history,
		Mode:       "words",
		Prompt:     "> ",
		In:         strings.NewReader(input),
		Out:        e.out,
		Err:        e.err,
	})
	require.NoError(t, r.Run(context.Background()))
	return r
}

func TestCompletePrefix(t *testing.T) {
	env := newTestEnv(t)
	env.run(t, "ap\n")

	assert.Contains(t, env.out.String(), "app\napple\napricot\n")
	assert.Empty(t, env.err.String())
}

func TestNoSuggestions(t *testing.T) {
	env := newTestEnv(t)
	env.run(t, "qqq\n")

	assert.Contains(t, env.out.String(), "No suggestions found.")
}

func TestLastTokenIsPrefix(t *testing.T) {
	env := newTestEnv(t)
	env.run(t, "the zeb\n")

	assert.Contains(t, env.out.String(), "zebra\n")
}

func TestExitStopsLoop(t *testing.T) {
	env := newTestEnv(t)
	env.run(t, "EXIT\nap\n")

	assert.NotContains(t, env.out.String(), "apple")
}

func TestAddCommand(t *testing.T) {
	env := newTestEnv(t)
	env.run(t, ":add apex\nape\n")

	out := env.out.String()
	assert.Contains(t, out, `added "apex" to words`)
	assert.Contains(t, out, "apex\n")

	ok, err := env.dict.Contains("words", "apex")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAddCommandUsage(t *testing.T) {
	env := newTestEnv(t)
	env.run(t, ":add\n")

	assert.Contains(t, env.err.String(), "usage: :add WORD")
}

func TestModeCommands(t *testing.T) {
	env := newTestEnv(t)
	r := env.run(t, ":mode names\n:add alice\nal\n:mode\n:mode cities\n")

	assert.Equal(t, "names", r.Mode())
	out := env.out.String()
	assert.Contains(t, out, "mode: names")
	assert.Contains(t, out, "alice\n")
	assert.Contains(t, env.err.String(), `unknown mode "cities"`)

	ok, err := env.dict.Contains("words", "alice")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestModesCommand(t *testing.T) {
	env := newTestEnv(t)
	env.run(t, ":modes\n")

	out := env.out.String()
	assert.Contains(t, out, "* words (130 words)")
	assert.Contains(t, out, "  names (0 words)")
}

func TestHistoryCommand(t *testing.T) {
	env := newTestEnv(t)
	env.run(t, ":history\n:add kiwi\n:add kale\n:history 1\n:history 0\n")

	out := env.out.String()
	assert.Contains(t, out, "no words added yet")
	assert.Contains(t, out, "kale  ")
	assert.NotContains(t, out, "kiwi  ")
	assert.Contains(t, env.err.String(), `invalid history limit "0"`)
}

func TestHistoryPrefixSearch(t *testing.T) {
	env := newTestEnv(t)
	env.run(t, ":add kiwi\n:mode names\n:add kim\n:add bob\n:history ki\n:history zz\n")

	out := env.out.String()
	assert.Contains(t, out, "kiwi  words  ")
	assert.Contains(t, out, "kim  names  ")
	assert.NotContains(t, out, "bob  names  ")
	assert.Contains(t, out, `no added words start with "zz"`)
	assert.Empty(t, env.err.String())
}

func TestHistoryReset(t *testing.T) {
	env := newTestEnv(t)
	env.run(t, ":add kiwi\n:history reset\n:history\n")

	out := env.out.String()
	assert.Contains(t, out, "history cleared")
	assert.Contains(t, out, "no words added yet")

	entries, err := env.history.RecentEntries("", 10)
	require.NoError(t, err)
	assert.Empty(t, entries)

	ok, err := env.dict.Contains("words", "kiwi")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDoubleColonCompletesColonPrefix(t *testing.T) {
	env := newTestEnv(t)
	env.run(t, ":add :colon\n::co\n::\n")

	out := env.out.String()
	assert.Contains(t, out, `added ":colon" to words`)
	assert.Contains(t, out, ":colon\n")
	assert.Empty(t, env.err.String())

	ok, err := env.dict.Contains("words", ":colon")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHelpDocumentsColonEscape(t *testing.T) {
	env := newTestEnv(t)
	env.run(t, ":help\n")

	out := env.out.String()
	assert.Contains(t, out, `"::"`)
	assert.Contains(t, out, ":history reset")
}

func TestHistoryUnavailable(t *testing.T) {
	env := newTestEnv(t)
	r := New(Options{Dictionary: env.dict, Mode: "words", In: strings.NewReader(":history\n"), Out: env.out, Err: env.err})
	require.NoError(t, r.Run(context.Background()))

	assert.Contains(t, env.err.String(), "history is not available")
}

func TestSaveAndHelpCommands(t *testing.T) {
	env := newTestEnv(t)
	env.run(t, ":save\n:help\n:bogus\n")

	out := env.out.String()
	assert.Contains(t, out, "saved")
	assert.Contains(t, out, ":add WORD")
	assert.Contains(t, env.err.String(), `unknown command "bogus"`)
}

func TestQuitCommand(t *testing.T) {
	env := newTestEnv(t)
	env.run(t, ":quit\nap\n")

	assert.NotContains(t, env.out.String(), "apple")
}

func TestRunCancelledContext(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := New(Options{Dictionary: env.dict, Mode: "words", In: strings.NewReader("ap\n"), Out: env.out, Err: env.err})
	assert.ErrorIs(t, r.Run(ctx), context.Canceled)
}
