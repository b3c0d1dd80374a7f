package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DateLayout is the calendar date format used by history queries
const DateLayout = "2006-01-02"

// AssistantService is the core service behind the web front end
type AssistantService struct {
	llmClient    LLMClient
	cache        CacheRepository
	history      HistoryRepository
	logger       *zap.Logger
	cacheEnabled bool
	cacheTTL     time.Duration
	now          func() time.Time
}

// NewAssistantService creates a new assistant service
func NewAssistantService(
	llmClient LLMClient,
	cache CacheRepository,
	history HistoryRepository,
	logger *zap.Logger,
	cacheEnabled bool,
	cacheTTL time.Duration,
) *AssistantService {
	return &AssistantService{
		llmClient:    llmClient,
		cache:        cache,
		history:      history,
		logger:       logger,
		cacheEnabled: cacheEnabled && cache != nil,
		cacheTTL:     cacheTTL,
		now:          time.Now,
	}
}

var _ Assistant = (*AssistantService)(nil)

// CacheKey derives the analysis cache key for a sentence
func CacheKey(sentence string) string {
	sum := sha256.Sum256([]byte(sentence))
	return "analysis:" + hex.EncodeToString(sum[:])
}

// AnalyzeSentence analyzes a sentence, consulting the cache first
func (s *AssistantService) AnalyzeSentence(ctx context.Context, sentence string) (*SentenceAnalysis, error) {
	sentence = strings.TrimSpace(sentence)
	if sentence == "" {
		return nil, ErrEmptySentence
	}

	key := CacheKey(sentence)
	result := s.cached(ctx, key)
	if result == nil {
		analysis, err := s.llmClient.AnalyzeSentence(ctx, sentence)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrAssistantUnavailable, err)
		}
		if analysis.Sentence == "" {
			analysis.Sentence = sentence
		}
		result = analysis
		s.store(ctx, key, result)
	}

	s.record(ctx, result)
	return result, nil
}

func (s *AssistantService) cached(ctx context.Context, key string) *SentenceAnalysis {
	if !s.cacheEnabled {
		return nil
	}
	entry, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			s.logger.Warn("Analysis cache lookup failed", zap.Error(err))
		}
		return nil
	}
	if entry.Analysis == nil {
		return nil
	}
	s.logger.Debug("Cache hit for sentence", zap.String("key", key))
	hit := *entry.Analysis
	hit.Cached = true
	return &hit
}

func (s *AssistantService) store(ctx context.Context, key string, analysis *SentenceAnalysis) {
	if !s.cacheEnabled {
		return
	}
	now := s.now()
	entry := &CacheEntry{
		Key:       key,
		Analysis:  analysis,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cacheTTL),
	}
	if err := s.cache.Set(ctx, entry); err != nil {
		s.logger.Error("Failed to update cache", zap.Error(err))
	}
}

// record appends the analysis to history; failures are logged, not returned
func (s *AssistantService) record(ctx context.Context, analysis *SentenceAnalysis) {
	words := make([]string, 0, len(analysis.Words))
	seen := make(map[string]struct{}, len(analysis.Words))
	for _, w := range analysis.Words {
		word := strings.TrimSpace(w.Word)
		if word == "" {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		words = append(words, word)
	}

	entry := &HistoryEntry{
		ID:          uuid.NewString(),
		Sentence:    analysis.Sentence,
		Translation: analysis.Translation,
		Words:       words,
		AnalyzedAt:  s.now().UTC(),
	}
	if err := s.history.Append(ctx, entry); err != nil {
		s.logger.Error("Failed to record history", zap.Error(err), zap.String("entry_id", entry.ID))
	}
}

// GetHistory lists analyzed sentences whose day falls within [start, end]
func (s *AssistantService) GetHistory(ctx context.Context, start, end *time.Time) (*HistoryReport, error) {
	if start != nil && end != nil && start.After(*end) {
		return nil, ErrInvalidRange
	}

	q := HistoryQuery{}
	report := &HistoryReport{}
	if start != nil {
		from := startOfDay(*start)
		q.From = &from
		report.StartDate = from.Format(DateLayout)
	}
	if end != nil {
		until := startOfDay(*end).AddDate(0, 0, 1)
		q.Until = &until
		report.EndDate = startOfDay(*end).Format(DateLayout)
	}

	entries, err := s.history.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}

	counts := make(map[string]int)
	for _, e := range entries {
		for _, w := range e.Words {
			counts[w]++
		}
	}
	words := make([]WordCount, 0, len(counts))
	for w, n := range counts {
		words = append(words, WordCount{Word: w, Count: n})
	}
	sort.Slice(words, func(i, j int) bool {
		if words[i].Count != words[j].Count {
			return words[i].Count > words[j].Count
		}
		return words[i].Word < words[j].Word
	})

	if entries == nil {
		entries = []HistoryEntry{}
	}
	report.Entries = entries
	report.Words = words
	report.Total = len(entries)
	return report, nil
}

// CheckHistory reports whether any history has been recorded
func (s *AssistantService) CheckHistory(ctx context.Context) (*HistoryStatus, error) {
	stats, err := s.history.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read history stats: %w", err)
	}

	status := "ok"
	if stats.Entries == 0 {
		status = "empty"
	}
	return &HistoryStatus{
		Status:         status,
		Entries:        stats.Entries,
		Words:          stats.Words,
		QuizResults:    stats.QuizResults,
		LastAnalyzedAt: stats.LastAnalyzedAt,
	}, nil
}

// DeleteWord removes a word from the recorded vocabulary. A dry run only counts.
func (s *AssistantService) DeleteWord(ctx context.Context, word string, dryRun bool) (*DeleteWordResult, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return nil, ErrEmptyWord
	}

	result := &DeleteWordResult{Word: word, DryRun: dryRun}
	count, err := s.history.CountWord(ctx, word)
	if err != nil {
		return nil, fmt.Errorf("failed to count word: %w", err)
	}
	result.Affected = count

	switch {
	case count == 0:
		result.Status = DeleteStatusNotFound
	case dryRun:
		result.Status = DeleteStatusDryRun
	default:
		removed, err := s.history.DeleteWord(ctx, word)
		if err != nil {
			return nil, fmt.Errorf("failed to delete word: %w", err)
		}
		result.Affected = removed
		result.Status = DeleteStatusDeleted
		s.logger.Info("Deleted word from history", zap.String("word", word), zap.Int("affected", removed))
	}
	return result, nil
}

// SubmitQuizResult scores and records a quiz submission
func (s *AssistantService) SubmitQuizResult(ctx context.Context, submission *QuizSubmission) (*QuizResult, error) {
	if submission == nil || len(submission.Answers) == 0 {
		return nil, ErrEmptyQuiz
	}

	result := &QuizResult{
		ID:         uuid.NewString(),
		QuizID:     submission.QuizID,
		Total:      len(submission.Answers),
		Missed:     []string{},
		RecordedAt: s.now().UTC(),
	}
	if submission.CompletedAt != nil {
		result.RecordedAt = submission.CompletedAt.UTC()
	}
	for _, a := range submission.Answers {
		if a.Correct {
			result.Correct++
			continue
		}
		result.Missed = append(result.Missed, a.Word)
	}
	result.Score = float64(result.Correct) / float64(result.Total)

	if err := s.history.SaveQuizResult(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to save quiz result: %w", err)
	}
	s.logger.Info("Recorded quiz result",
		zap.String("id", result.ID),
		zap.Int("correct", result.Correct),
		zap.Int("total", result.Total))
	return result, nil
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
