package utils

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

const truncationNotice = "\n[... input truncated due to size limits ...]"

// edgeEscapes are literal escape sequences that double-encoded JSON leaves around a sentence
var edgeEscapes = []string{`\r\n`, `\n`, `\r`, `\t`}

// TextProcessor provides utilities for preparing sentences before they reach
// the cache or an LLM prompt
type TextProcessor struct {
	logger *zap.Logger
}

// NewTextProcessor creates a new TextProcessor
func NewTextProcessor(logger *zap.Logger) *TextProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TextProcessor{
		logger: logger,
	}
}

// TruncateText cuts text to maxSize bytes without splitting a UTF-8 sequence
func (tp *TextProcessor) TruncateText(text string, maxSize int) string {
	if maxSize <= 0 || len(text) <= maxSize {
		return text
	}

	truncated := text[:maxSize]
	for !utf8.ValidString(truncated) && len(truncated) > 0 {
		truncated = truncated[:len(truncated)-1]
	}

	tp.logger.Debug("Text truncated",
		zap.Int("original_size", len(text)),
		zap.Int("truncated_size", len(truncated)),
		zap.Int("max_size", maxSize))

	return truncated + truncationNotice
}

// SanitizeUTF8 drops invalid UTF-8 bytes
func (tp *TextProcessor) SanitizeUTF8(text string) string {
	if utf8.ValidString(text) {
		return text
	}

	sanitized := strings.ToValidUTF8(text, "")
	tp.logger.Debug("Text sanitized",
		zap.Int("original_size", len(text)),
		zap.Int("sanitized_size", len(sanitized)))
	return sanitized
}

// ProcessText truncates and sanitizes text in one operation
func (tp *TextProcessor) ProcessText(text string, maxSize int) string {
	return tp.SanitizeUTF8(tp.TruncateText(text, maxSize))
}

// CleanSentence trims whitespace and literal escape sequences from both ends.
// Backslashes inside the sentence are left alone.
func (tp *TextProcessor) CleanSentence(text string) string {
	for {
		trimmed := strings.TrimSpace(text)
		for _, esc := range edgeEscapes {
			trimmed = strings.TrimPrefix(trimmed, esc)
			trimmed = strings.TrimSuffix(trimmed, esc)
		}
		if trimmed == text {
			return trimmed
		}
		text = trimmed
	}
}

// StringOrEmpty returns v when it is a string and "" for anything else
func StringOrEmpty(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}
