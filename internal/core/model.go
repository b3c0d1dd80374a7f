package core

import (
	"time"
)

// WordEntry is one vocabulary item picked out of a sentence
type WordEntry struct {
	Word         string `json:"word"`
	Reading      string `json:"reading,omitempty"`
	Meaning      string `json:"meaning"`
	PartOfSpeech string `json:"part_of_speech,omitempty"`
}

// SentenceAnalysis is the assistant's breakdown of a sentence
type SentenceAnalysis struct {
	Sentence     string      `json:"sentence"`
	Translation  string      `json:"translation"`
	Words        []WordEntry `json:"words"`
	Grammar      []string    `json:"grammar,omitempty"`
	Difficulty   string      `json:"difficulty,omitempty"`
	ModelUsed    string      `json:"model_used"`
	AnalyzedAt   time.Time   `json:"analyzed_at"`
	ProcessingID string      `json:"processing_id,omitempty"`
	Cached       bool        `json:"cached"`
}

// HistoryEntry records one analyzed sentence
type HistoryEntry struct {
	ID          string    `json:"id"`
	Sentence    string    `json:"sentence"`
	Translation string    `json:"translation"`
	Words       []string  `json:"words"`
	AnalyzedAt  time.Time `json:"analyzed_at"`
}

// HistoryQuery bounds a history listing; nil bounds are open
type HistoryQuery struct {
	From  *time.Time
	Until *time.Time
}

// WordCount aggregates how often a word appeared in history
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// HistoryReport is returned by GetHistory
type HistoryReport struct {
	StartDate string         `json:"start_date,omitempty"`
	EndDate   string         `json:"end_date,omitempty"`
	Total     int            `json:"total"`
	Entries   []HistoryEntry `json:"entries"`
	Words     []WordCount    `json:"words"`
}

// HistoryStats summarises the history store
type HistoryStats struct {
	Entries        int
	Words          int
	QuizResults    int
	LastAnalyzedAt *time.Time
}

// HistoryStatus is returned by CheckHistory
type HistoryStatus struct {
	Status         string     `json:"status"`
	Entries        int        `json:"entries"`
	Words          int        `json:"words"`
	QuizResults    int        `json:"quiz_results"`
	LastAnalyzedAt *time.Time `json:"last_analyzed_at,omitempty"`
}

// DeleteWordResult describes the outcome of a vocabulary deletion
type DeleteWordResult struct {
	Status   string `json:"status"`
	Word     string `json:"word"`
	DryRun   bool   `json:"dry_run"`
	Affected int    `json:"affected"`
}

// Delete statuses
const (
	DeleteStatusDeleted  = "deleted"
	DeleteStatusDryRun   = "dry_run"
	DeleteStatusNotFound = "not_found"
)

// QuizAnswer is a single answered quiz question
type QuizAnswer struct {
	Word    string `json:"word" validate:"required"`
	Answer  string `json:"answer,omitempty"`
	Correct bool   `json:"correct"`
}

// QuizSubmission is what the quiz page posts back
type QuizSubmission struct {
	QuizID      string       `json:"quiz_id,omitempty"`
	Answers     []QuizAnswer `json:"answers" validate:"required,min=1,dive"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
}

// QuizResult is a scored and recorded quiz submission
type QuizResult struct {
	ID         string    `json:"id"`
	QuizID     string    `json:"quiz_id,omitempty"`
	Total      int       `json:"total"`
	Correct    int       `json:"correct"`
	Score      float64   `json:"score"`
	Missed     []string  `json:"missed"`
	RecordedAt time.Time `json:"recorded_at"`
}

// CacheEntry is a cached sentence analysis
type CacheEntry struct {
	Key       string
	Analysis  *SentenceAnalysis
	CreatedAt time.Time
	ExpiresAt time.Time
}
