package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS history_entries (
		id TEXT PRIMARY KEY,
		sentence TEXT NOT NULL,
		translation TEXT NOT NULL,
		analyzed_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_history_entries_analyzed_at ON history_entries(analyzed_at)`,
	`CREATE TABLE IF NOT EXISTS history_words (
		entry_id TEXT NOT NULL,
		word TEXT NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (entry_id, position)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_history_words_word ON history_words(word)`,
	`CREATE TABLE IF NOT EXISTS quiz_results (
		id TEXT PRIMARY KEY,
		quiz_id TEXT NOT NULL,
		total INTEGER NOT NULL,
		correct INTEGER NOT NULL,
		score REAL NOT NULL,
		missed TEXT NOT NULL,
		recorded_at INTEGER NOT NULL
	)`,
}

// SQLiteStore persists history in a SQLite database
type SQLiteStore struct {
	sqlStore
	path string
}

// NewSQLiteStore creates (or opens) the history database at dbPath
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// sqlite permits one writer at a time
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{
		sqlStore: sqlStore{db: db, logger: logger, name: "sqlite"},
		path:     dbPath,
	}
	if err := store.migrate(sqliteSchema); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("Opened SQLite history store", zap.String("path", dbPath))
	return store, nil
}

// Path returns the sqlite database path
func (s *SQLiteStore) Path() string {
	return s.path
}
