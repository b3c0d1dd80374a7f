package history

import (
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS history_entries (
		id VARCHAR(36) PRIMARY KEY,
		sentence TEXT NOT NULL,
		translation TEXT NOT NULL,
		analyzed_at BIGINT NOT NULL,
		INDEX idx_history_entries_analyzed_at (analyzed_at)
	) CHARACTER SET utf8mb4`,
	`CREATE TABLE IF NOT EXISTS history_words (
		entry_id VARCHAR(36) NOT NULL,
		word VARCHAR(191) NOT NULL,
		position INT NOT NULL,
		PRIMARY KEY (entry_id, position),
		INDEX idx_history_words_word (word)
	) CHARACTER SET utf8mb4`,
	`CREATE TABLE IF NOT EXISTS quiz_results (
		id VARCHAR(36) PRIMARY KEY,
		quiz_id VARCHAR(191) NOT NULL,
		total INT NOT NULL,
		correct INT NOT NULL,
		score DOUBLE NOT NULL,
		missed TEXT NOT NULL,
		recorded_at BIGINT NOT NULL
	) CHARACTER SET utf8mb4`,
}

// MySQLStore persists history in MySQL
type MySQLStore struct {
	sqlStore
}

// NewMySQLStore connects to MySQL and ensures the history tables exist
func NewMySQLStore(dsn string, logger *zap.Logger) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	store := &MySQLStore{sqlStore: sqlStore{db: db, logger: logger, name: "mysql"}}
	if err := store.migrate(mysqlSchema); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("Connected to MySQL history store")
	return store, nil
}
