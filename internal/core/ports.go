package core

import (
	"context"
	"time"
)

// LLMClient defines the interface for interacting with LLM services
type LLMClient interface {
	// AnalyzeSentence breaks a sentence down into translation, vocabulary and grammar
	AnalyzeSentence(ctx context.Context, sentence string) (*SentenceAnalysis, error)
}

// CacheRepository defines the interface for caching sentence analyses
type CacheRepository interface {
	// Get retrieves a live cache entry, ErrCacheMiss when absent or expired
	Get(ctx context.Context, key string) (*CacheEntry, error)

	// Set stores a cache entry
	Set(ctx context.Context, entry *CacheEntry) error

	// Delete removes a cache entry
	Delete(ctx context.Context, key string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}

// HistoryRepository persists analyzed sentences, vocabulary and quiz results
type HistoryRepository interface {
	// Append records an analyzed sentence
	Append(ctx context.Context, entry *HistoryEntry) error

	// List returns entries inside the query bounds, newest first
	List(ctx context.Context, q HistoryQuery) ([]HistoryEntry, error)

	// Stats summarises what the store holds
	Stats(ctx context.Context) (*HistoryStats, error)

	// CountWord reports how many entries mention word
	CountWord(ctx context.Context, word string) (int, error)

	// DeleteWord removes word from every entry and reports how many were touched
	DeleteWord(ctx context.Context, word string) (int, error)

	// SaveQuizResult records a scored quiz
	SaveQuizResult(ctx context.Context, result *QuizResult) error
}

// Assistant is the capability the web front end delegates to
type Assistant interface {
	AnalyzeSentence(ctx context.Context, sentence string) (*SentenceAnalysis, error)
	GetHistory(ctx context.Context, start, end *time.Time) (*HistoryReport, error)
	CheckHistory(ctx context.Context) (*HistoryStatus, error)
	DeleteWord(ctx context.Context, word string, dryRun bool) (*DeleteWordResult, error)
	SubmitQuizResult(ctx context.Context, submission *QuizSubmission) (*QuizResult, error)
}
