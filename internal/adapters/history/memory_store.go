// Package history holds the HistoryRepository implementations.
package history

import (
	"context"
	"sort"
	"sync"

	"github.com/mikey/sentence-assistant/internal/core"
)

// MemoryStore keeps history in process memory. Nothing survives a restart.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []core.HistoryEntry
	quizzes []core.QuizResult
}

// NewMemoryStore creates an empty in-memory history store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append records an analyzed sentence
func (s *MemoryStore) Append(_ context.Context, entry *core.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *entry
	copied.Words = append([]string(nil), entry.Words...)
	s.entries = append(s.entries, copied)
	return nil
}

// List returns entries inside the query bounds, newest first
func (s *MemoryStore) List(_ context.Context, q core.HistoryQuery) ([]core.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.HistoryEntry
	for _, e := range s.entries {
		if q.From != nil && e.AnalyzedAt.Before(*q.From) {
			continue
		}
		if q.Until != nil && !e.AnalyzedAt.Before(*q.Until) {
			continue
		}
		copied := e
		copied.Words = append([]string{}, e.Words...)
		out = append(out, copied)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AnalyzedAt.After(out[j].AnalyzedAt)
	})
	return out, nil
}

// Stats summarises what the store holds
func (s *MemoryStore) Stats(_ context.Context) (*core.HistoryStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &core.HistoryStats{Entries: len(s.entries), QuizResults: len(s.quizzes)}
	words := make(map[string]struct{})
	for _, e := range s.entries {
		for _, w := range e.Words {
			words[w] = struct{}{}
		}
		if stats.LastAnalyzedAt == nil || e.AnalyzedAt.After(*stats.LastAnalyzedAt) {
			last := e.AnalyzedAt
			stats.LastAnalyzedAt = &last
		}
	}
	stats.Words = len(words)
	return stats, nil
}

// CountWord reports how many entries mention word
func (s *MemoryStore) CountWord(_ context.Context, word string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countLocked(word), nil
}

// DeleteWord removes word from every entry and reports how many were touched
func (s *MemoryStore) DeleteWord(_ context.Context, word string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.countLocked(word)
	for i := range s.entries {
		kept := make([]string, 0, len(s.entries[i].Words))
		for _, w := range s.entries[i].Words {
			if w != word {
				kept = append(kept, w)
			}
		}
		s.entries[i].Words = kept
	}
	return n, nil
}

// SaveQuizResult records a scored quiz
func (s *MemoryStore) SaveQuizResult(_ context.Context, result *core.QuizResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes = append(s.quizzes, *result)
	return nil
}

// Close is a no-op
func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) countLocked(word string) int {
	n := 0
	for _, e := range s.entries {
		for _, w := range e.Words {
			if w == word {
				n++
				break
			}
		}
	}
	return n
}
