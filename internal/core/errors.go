package core

import "errors"

var (
	// ErrEmptySentence is returned when there is nothing to analyze
	ErrEmptySentence = errors.New("no sentence provided")
	// ErrEmptyWord is returned when a word deletion names no word
	ErrEmptyWord = errors.New("no word provided")
	// ErrEmptyQuiz is returned when a quiz submission carries no answers
	ErrEmptyQuiz = errors.New("no quiz answers provided")
	// ErrInvalidRange is returned when a history window ends before it starts
	ErrInvalidRange = errors.New("start date is after end date")
	// ErrCacheMiss is returned by cache repositories for absent or expired keys
	ErrCacheMiss = errors.New("cache entry not found")
	// ErrAssistantUnavailable wraps failures of the LLM backend
	ErrAssistantUnavailable = errors.New("assistant unavailable")
)
