package history

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*HistoryManager, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "history.db")
	hm, err := NewHistoryManager(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { hm.Close() })
	return hm, dbPath
}

func TestRecordAddAndRecentEntries(t *testing.T) {
	hm, _ := newTestManager(t)

	for _, w := range []string{"apple", "apt", "ant"} {
		_, err := hm.RecordAdd("words", w)
		require.NoError(t, err)
	}
	_, err := hm.RecordAdd("names", "alice")
	require.NoError(t, err)

	entries, err := hm.RecentEntries("words", 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "ant", entries[0].Word)
	assert.Equal(t, "apple", entries[2].Word)

	all, err := hm.RecentEntries("", 10)
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.Equal(t, "alice", all[0].Word)
	assert.Equal(t, "names", all[0].Mode)

	limited, err := hm.RecentEntries("", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestEntriesByPrefix(t *testing.T) {
	hm, _ := newTestManager(t)

	for _, w := range []string{"car", "cart", "cat", "50%_off", "500"} {
		_, err := hm.RecordAdd("words", w)
		require.NoError(t, err)
	}

	entries, err := hm.EntriesByPrefix("car", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "cart", entries[0].Word)
	assert.Equal(t, "car", entries[1].Word)

	// LIKE wildcards in the prefix are matched literally.
	entries, err = hm.EntriesByPrefix("50%", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "50%_off", entries[0].Word)
}

func TestReset(t *testing.T) {
	hm, _ := newTestManager(t)

	_, err := hm.RecordAdd("words", "x")
	require.NoError(t, err)
	require.NoError(t, hm.Reset())

	entries, err := hm.RecentEntries("", 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestReopenKeepsEntries(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")

	hm, err := NewHistoryManager(dbPath)
	require.NoError(t, err)
	_, err = hm.RecordAdd("words", "persisted")
	require.NoError(t, err)
	require.NoError(t, hm.Close())

	version, err := os.ReadFile(filepath.Join(filepath.Dir(dbPath), "history_schema_version"))
	require.NoError(t, err)
	assert.Equal(t, "1", string(version))

	hm, err = NewHistoryManager(dbPath)
	require.NoError(t, err)
	defer hm.Close()

	entries, err := hm.RecentEntries("words", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "persisted", entries[0].Word)
}
