package history

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// HistoryManager records every word added to a vocabulary. It is an audit
// trail only and plays no part in completion.
type HistoryManager struct {
	db            *gorm.DB
	schemaVersion string
}

type HistoryEntry struct {
	ID        uint      `gorm:"primarykey"`
	CreatedAt time.Time `gorm:"index"`

	Mode string `gorm:"index"`
	Word string
}

const (
	historySchemaVersion = 1
)

func NewHistoryManager(dbFilePath string) (*HistoryManager, error) {
	dbFileExists := true
	if _, err := os.Stat(dbFilePath); errors.Is(err, os.ErrNotExist) {
		dbFileExists = false
	} else if err != nil {
		return nil, fmt.Errorf("error checking history db: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dbFilePath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("error opening history database: %w", err)
	}

	historyManager := &HistoryManager{
		db:            db,
		schemaVersion: filepath.Join(filepath.Dir(dbFilePath), "history_schema_version"),
	}

	if historyManager.needsMigration(dbFileExists) {
		if err := db.AutoMigrate(&HistoryEntry{}); err != nil {
			return nil, fmt.Errorf("error auto-migrating history schema: %w", err)
		}
		if err := historyManager.writeSchemaVersion(historySchemaVersion); err != nil {
			return nil, fmt.Errorf("error writing history schema version: %w", err)
		}
	}

	return historyManager, nil
}

func (historyManager *HistoryManager) needsMigration(dbFileExists bool) bool {
	if !dbFileExists {
		return true
	}

	versionMatches, err := historyManager.schemaVersionMatches()
	if err != nil || !versionMatches {
		return true
	}

	// If the version marker is present but the table is missing (corruption or manual deletion),
	// re-run migrations to restore the schema.
	return !historyManager.db.Migrator().HasTable(&HistoryEntry{})
}

func (historyManager *HistoryManager) writeSchemaVersion(version int) error {
	return os.WriteFile(historyManager.schemaVersion, []byte(strconv.Itoa(version)), 0644)
}

func (historyManager *HistoryManager) schemaVersionMatches() (bool, error) {
	data, err := os.ReadFile(historyManager.schemaVersion)
	if err != nil {
		return false, err
	}
	version, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return false, err
	}
	if version != historySchemaVersion {
		return false, fmt.Errorf("history schema version mismatch: got %d, want %d", version, historySchemaVersion)
	}
	return true, nil
}

// RecordAdd stores that word was added to mode.
func (historyManager *HistoryManager) RecordAdd(mode string, word string) (*HistoryEntry, error) {
	entry := HistoryEntry{
		Mode: mode,
		Word: word,
	}

	result := historyManager.db.Create(&entry)
	if result.Error != nil {
		return nil, result.Error
	}

	return &entry, nil
}

// RecentEntries returns the most recent additions, newest first. An empty
// mode matches every mode.
func (historyManager *HistoryManager) RecentEntries(mode string, limit int) ([]HistoryEntry, error) {
	var entries []HistoryEntry
	var db = historyManager.db
	if mode != "" {
		db = db.Where("mode = ?", mode)
	}
	result := db.Order("created_at desc").Order("id desc").Limit(limit).Find(&entries)
	if result.Error != nil {
		return nil, result.Error
	}

	return entries, nil
}

// EntriesByPrefix returns additions in any mode whose word starts with
// prefix, newest first. ASCII letters match case-insensitively.
func (historyManager *HistoryManager) EntriesByPrefix(prefix string, limit int) ([]HistoryEntry, error) {
	var entries []HistoryEntry
	result := historyManager.db.Where("word LIKE ? ESCAPE '\\'", escapeLike(prefix)+"%").
		Order("created_at desc").
		Order("id desc").
		Limit(limit).
		Find(&entries)
	if result.Error != nil {
		return nil, result.Error
	}

	return entries, nil
}

// Reset deletes every recorded addition. Vocabulary files are untouched.
func (historyManager *HistoryManager) Reset() error {
	result := historyManager.db.Exec("DELETE FROM history_entries")
	if result.Error != nil {
		return result.Error
	}

	return nil
}

// Close releases the underlying database handle.
func (historyManager *HistoryManager) Close() error {
	sqlDB, err := historyManager.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
