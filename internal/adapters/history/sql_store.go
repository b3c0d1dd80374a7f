package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mikey/sentence-assistant/internal/core"
	"go.uber.org/zap"
)

// sqlStore holds the queries shared by the SQLite and MySQL stores. Both
// drivers accept ? placeholders, so only the schema differs.
type sqlStore struct {
	db     *sql.DB
	logger *zap.Logger
	name   string
}

func (s *sqlStore) migrate(statements []string) error {
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply %s schema: %w", s.name, err)
		}
	}
	return nil
}

// Append records an analyzed sentence
func (s *sqlStore) Append(ctx context.Context, entry *core.HistoryEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO history_entries (id, sentence, translation, analyzed_at)
		VALUES (?, ?, ?, ?)
	`, entry.ID, entry.Sentence, entry.Translation, entry.AnalyzedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to insert history entry: %w", err)
	}

	for i, word := range entry.Words {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO history_words (entry_id, word, position)
			VALUES (?, ?, ?)
		`, entry.ID, word, i)
		if err != nil {
			return fmt.Errorf("failed to insert history word: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit history entry: %w", err)
	}
	return nil
}

// List returns entries inside the query bounds, newest first
func (s *sqlStore) List(ctx context.Context, q core.HistoryQuery) ([]core.HistoryEntry, error) {
	var query strings.Builder
	query.WriteString(`
		SELECT e.id, e.sentence, e.translation, e.analyzed_at, w.word
		FROM history_entries e
		LEFT JOIN history_words w ON w.entry_id = e.id
		WHERE 1 = 1`)
	var args []any
	if q.From != nil {
		query.WriteString(" AND e.analyzed_at >= ?")
		args = append(args, q.From.UnixNano())
	}
	if q.Until != nil {
		query.WriteString(" AND e.analyzed_at < ?")
		args = append(args, q.Until.UnixNano())
	}
	query.WriteString(" ORDER BY e.analyzed_at DESC, e.id, w.position")

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []core.HistoryEntry
	for rows.Next() {
		var (
			id, sentence, translation string
			analyzedAt                int64
			word                      sql.NullString
		)
		if err := rows.Scan(&id, &sentence, &translation, &analyzedAt, &word); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		if n := len(entries); n == 0 || entries[n-1].ID != id {
			entries = append(entries, core.HistoryEntry{
				ID:          id,
				Sentence:    sentence,
				Translation: translation,
				Words:       []string{},
				AnalyzedAt:  time.Unix(0, analyzedAt).UTC(),
			})
		}
		if word.Valid {
			last := &entries[len(entries)-1]
			last.Words = append(last.Words, word.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history rows: %w", err)
	}
	return entries, nil
}

// Stats summarises what the store holds
func (s *sqlStore) Stats(ctx context.Context) (*core.HistoryStats, error) {
	stats := &core.HistoryStats{}
	var last sql.NullInt64

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), MAX(analyzed_at) FROM history_entries
	`).Scan(&stats.Entries, &last)
	if err != nil {
		return nil, fmt.Errorf("failed to count history entries: %w", err)
	}
	if last.Valid {
		t := time.Unix(0, last.Int64).UTC()
		stats.LastAnalyzedAt = &t
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT word) FROM history_words`).Scan(&stats.Words); err != nil {
		return nil, fmt.Errorf("failed to count history words: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM quiz_results`).Scan(&stats.QuizResults); err != nil {
		return nil, fmt.Errorf("failed to count quiz results: %w", err)
	}
	return stats, nil
}

// CountWord reports how many entries mention word
func (s *sqlStore) CountWord(ctx context.Context, word string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT entry_id) FROM history_words WHERE word = ?
	`, word).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count word: %w", err)
	}
	return n, nil
}

// DeleteWord removes word from every entry and reports how many were touched
func (s *sqlStore) DeleteWord(ctx context.Context, word string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var n int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT entry_id) FROM history_words WHERE word = ?
	`, word).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count word: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM history_words WHERE word = ?`, word); err != nil {
		return 0, fmt.Errorf("failed to delete word: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit word deletion: %w", err)
	}
	return n, nil
}

// SaveQuizResult records a scored quiz
func (s *sqlStore) SaveQuizResult(ctx context.Context, result *core.QuizResult) error {
	missed, err := json.Marshal(result.Missed)
	if err != nil {
		return fmt.Errorf("failed to encode missed words: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO quiz_results (id, quiz_id, total, correct, score, missed, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, result.ID, result.QuizID, result.Total, result.Correct, result.Score, string(missed), result.RecordedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to insert quiz result: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *sqlStore) Close() error {
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close history database", zap.String("store", s.name), zap.Error(err))
		return err
	}
	return nil
}
