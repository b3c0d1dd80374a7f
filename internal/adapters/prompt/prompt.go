// Package prompt holds the sentence-analysis prompt shared by the LLM
// adapters and the parser for what the models send back.
package prompt

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mikey/sentence-assistant/internal/core"
)

// SystemMessage is sent as the system role where the provider supports one
const SystemMessage = "You are a Chinese language tutor. Respond only with JSON."

// Format is the user prompt; %s receives the sentence
const Format = `You are a Chinese language tutor. Break down the following sentence for a learner.
Respond with a JSON object containing:
- translation: string (natural English translation)
- words: array of objects with word, reading (pinyin), meaning and part_of_speech
- grammar: array of strings (short notes on grammar points used)
- difficulty: string (one of beginner, intermediate, advanced)

Sentence:
%s

Respond only with the JSON object and nothing else.`

// ErrNoJSON is returned when a model reply contains no JSON object
var ErrNoJSON = errors.New("no JSON object in LLM response")

// Response is the structured reply the models are asked for
type Response struct {
	Translation string           `json:"translation"`
	Words       []core.WordEntry `json:"words"`
	Grammar     []string         `json:"grammar"`
	Difficulty  string           `json:"difficulty"`
}

// Build renders the prompt for a sentence
func Build(sentence string) string {
	return fmt.Sprintf(Format, sentence)
}

// Parse decodes a model reply. Replies that wrap the object in prose or
// code fences are cut down to the outermost braces and retried.
func Parse(text string) (*Response, error) {
	var resp Response
	err := json.Unmarshal([]byte(text), &resp)
	if err == nil {
		return &resp, nil
	}

	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return nil, fmt.Errorf("%w: %v", ErrNoJSON, err)
	}

	if err := json.Unmarshal([]byte(text[start:end+1]), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response as JSON: %w", err)
	}
	return &resp, nil
}

// Analysis converts a parsed reply into the core model
func (r *Response) Analysis(sentence, model, processingID string) *core.SentenceAnalysis {
	words := r.Words
	if words == nil {
		words = []core.WordEntry{}
	}
	return &core.SentenceAnalysis{
		Sentence:     sentence,
		Translation:  r.Translation,
		Words:        words,
		Grammar:      r.Grammar,
		Difficulty:   r.Difficulty,
		ModelUsed:    model,
		ProcessingID: processingID,
	}
}
