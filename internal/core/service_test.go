package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeLLM struct {
	calls int
	err   error
}

func (f *fakeLLM) AnalyzeSentence(_ context.Context, sentence string) (*SentenceAnalysis, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &SentenceAnalysis{
		Translation: "notes",
		Words: []WordEntry{
			{Word: "笔记", Meaning: "notes"},
			{Word: "笔记", Meaning: "notes"},
			{Word: " "},
		},
		ModelUsed: "fake",
	}, nil
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]*CacheEntry
	getErr  error
}

func newFakeCache() *fakeCache { return &fakeCache{entries: map[string]*CacheEntry{}} }

func (c *fakeCache) Get(_ context.Context, key string) (*CacheEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	e, ok := c.entries[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return e, nil
}

func (c *fakeCache) Set(_ context.Context, e *CacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[e.Key] = e
	return nil
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *fakeCache) Cleanup(context.Context) error { return nil }

type fakeHistory struct {
	entries []HistoryEntry
	quizzes []*QuizResult
	lastQ   HistoryQuery
}

func (h *fakeHistory) Append(_ context.Context, e *HistoryEntry) error {
	h.entries = append(h.entries, *e)
	return nil
}

func (h *fakeHistory) List(_ context.Context, q HistoryQuery) ([]HistoryEntry, error) {
	h.lastQ = q
	return h.entries, nil
}

func (h *fakeHistory) Stats(context.Context) (*HistoryStats, error) {
	return &HistoryStats{Entries: len(h.entries), QuizResults: len(h.quizzes)}, nil
}

func (h *fakeHistory) CountWord(_ context.Context, word string) (int, error) {
	n := 0
	for _, e := range h.entries {
		for _, w := range e.Words {
			if w == word {
				n++
				break
			}
		}
	}
	return n, nil
}

func (h *fakeHistory) DeleteWord(ctx context.Context, word string) (int, error) {
	n, _ := h.CountWord(ctx, word)
	for i := range h.entries {
		kept := h.entries[i].Words[:0]
		for _, w := range h.entries[i].Words {
			if w != word {
				kept = append(kept, w)
			}
		}
		h.entries[i].Words = kept
	}
	return n, nil
}

func (h *fakeHistory) SaveQuizResult(_ context.Context, r *QuizResult) error {
	h.quizzes = append(h.quizzes, r)
	return nil
}

func newService(t *testing.T, llm *fakeLLM, cache *fakeCache, history *fakeHistory) *AssistantService {
	t.Helper()
	var repo CacheRepository
	if cache != nil {
		repo = cache
	}
	return NewAssistantService(llm, repo, history, zaptest.NewLogger(t), cache != nil, time.Hour)
}

func TestAnalyzeSentenceRejectsEmpty(t *testing.T) {
	svc := newService(t, &fakeLLM{}, nil, &fakeHistory{})

	_, err := svc.AnalyzeSentence(context.Background(), "  \n")
	assert.ErrorIs(t, err, ErrEmptySentence)
}

func TestAnalyzeSentenceUsesCache(t *testing.T) {
	llm := &fakeLLM{}
	cache := newFakeCache()
	history := &fakeHistory{}
	svc := newService(t, llm, cache, history)

	first, err := svc.AnalyzeSentence(context.Background(), "笔记")
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, "笔记", first.Sentence)

	second, err := svc.AnalyzeSentence(context.Background(), " 笔记 ")
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, "notes", second.Translation)

	assert.Equal(t, 1, llm.calls)
	assert.Len(t, history.entries, 2)
	assert.Equal(t, []string{"笔记"}, history.entries[0].Words)
	assert.Contains(t, cache.entries, CacheKey("笔记"))
}

func TestAnalyzeSentenceCacheFailureFallsThrough(t *testing.T) {
	llm := &fakeLLM{}
	cache := newFakeCache()
	cache.getErr = errors.New("disk on fire")
	svc := newService(t, llm, cache, &fakeHistory{})

	_, err := svc.AnalyzeSentence(context.Background(), "笔记")
	require.NoError(t, err)
	assert.Equal(t, 1, llm.calls)
}

func TestAnalyzeSentenceWrapsLLMFailure(t *testing.T) {
	svc := newService(t, &fakeLLM{err: errors.New("quota")}, nil, &fakeHistory{})

	_, err := svc.AnalyzeSentence(context.Background(), "笔记")
	assert.ErrorIs(t, err, ErrAssistantUnavailable)
	assert.Contains(t, err.Error(), "quota")
}

func TestGetHistoryBoundsAndCounts(t *testing.T) {
	history := &fakeHistory{entries: []HistoryEntry{
		{ID: "1", Words: []string{"笔记", "书"}},
		{ID: "2", Words: []string{"书"}},
	}}
	svc := newService(t, &fakeLLM{}, nil, history)

	start := time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 9, 1, 0, 0, 0, time.UTC)
	report, err := svc.GetHistory(context.Background(), &start, &end)
	require.NoError(t, err)

	assert.Equal(t, "2024-03-01", report.StartDate)
	assert.Equal(t, "2024-03-09", report.EndDate)
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, []WordCount{{Word: "书", Count: 2}, {Word: "笔记", Count: 1}}, report.Words)

	require.NotNil(t, history.lastQ.From)
	require.NotNil(t, history.lastQ.Until)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *history.lastQ.From)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), *history.lastQ.Until)
}

func TestGetHistoryOpenBounds(t *testing.T) {
	history := &fakeHistory{}
	svc := newService(t, &fakeLLM{}, nil, history)

	report, err := svc.GetHistory(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, report.Entries)
	assert.Empty(t, report.Entries)
	assert.Nil(t, history.lastQ.From)
	assert.Nil(t, history.lastQ.Until)
}

func TestGetHistoryInvalidRange(t *testing.T) {
	svc := newService(t, &fakeLLM{}, nil, &fakeHistory{})
	start := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, -1)

	_, err := svc.GetHistory(context.Background(), &start, &end)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestCheckHistory(t *testing.T) {
	history := &fakeHistory{}
	svc := newService(t, &fakeLLM{}, nil, history)

	status, err := svc.CheckHistory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "empty", status.Status)

	history.entries = append(history.entries, HistoryEntry{ID: "1"})
	status, err = svc.CheckHistory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, 1, status.Entries)
}

func TestDeleteWord(t *testing.T) {
	history := &fakeHistory{entries: []HistoryEntry{
		{ID: "1", Words: []string{"笔记", "书"}},
		{ID: "2", Words: []string{"笔记"}},
	}}
	svc := newService(t, &fakeLLM{}, nil, history)
	ctx := context.Background()

	_, err := svc.DeleteWord(ctx, " ", false)
	assert.ErrorIs(t, err, ErrEmptyWord)

	res, err := svc.DeleteWord(ctx, "笔记", true)
	require.NoError(t, err)
	assert.Equal(t, DeleteStatusDryRun, res.Status)
	assert.Equal(t, 2, res.Affected)
	assert.Equal(t, []string{"笔记", "书"}, history.entries[0].Words)

	res, err = svc.DeleteWord(ctx, "笔记", false)
	require.NoError(t, err)
	assert.Equal(t, DeleteStatusDeleted, res.Status)
	assert.Equal(t, 2, res.Affected)
	assert.Equal(t, []string{"书"}, history.entries[0].Words)

	res, err = svc.DeleteWord(ctx, "笔记", false)
	require.NoError(t, err)
	assert.Equal(t, DeleteStatusNotFound, res.Status)
}

func TestSubmitQuizResult(t *testing.T) {
	history := &fakeHistory{}
	svc := newService(t, &fakeLLM{}, nil, history)

	_, err := svc.SubmitQuizResult(context.Background(), &QuizSubmission{})
	assert.ErrorIs(t, err, ErrEmptyQuiz)

	res, err := svc.SubmitQuizResult(context.Background(), &QuizSubmission{
		QuizID: "daily",
		Answers: []QuizAnswer{
			{Word: "笔记", Correct: true},
			{Word: "书", Correct: false},
			{Word: "天气", Correct: true},
			{Word: "好", Correct: true},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Total)
	assert.Equal(t, 3, res.Correct)
	assert.InDelta(t, 0.75, res.Score, 1e-9)
	assert.Equal(t, []string{"书"}, res.Missed)
	assert.NotEmpty(t, res.ID)
	require.Len(t, history.quizzes, 1)
}

func TestCacheKeyStable(t *testing.T) {
	assert.Equal(t, CacheKey("笔记"), CacheKey("笔记"))
	assert.NotEqual(t, CacheKey("笔记"), CacheKey("书"))
	assert.Contains(t, CacheKey("x"), "analysis:")
}
