package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/mikey/sentence-assistant/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type stubModel struct {
	parts []genai.Part
	resp  *genai.GenerateContentResponse
	err   error
}

func (s *stubModel) GenerateContent(_ context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	s.parts = parts
	return s.resp, s.err
}

func candidate(parts ...genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: parts}}},
	}
}

func newClient(t *testing.T, model *stubModel) *GeminiClient {
	logger := zaptest.NewLogger(t)
	return NewGeminiClient(model, nil, "gemini-test", 2048, logger, utils.NewTextProcessor(logger))
}

func TestAnalyzeSentence(t *testing.T) {
	model := &stubModel{resp: candidate(
		genai.Text(`{"translation":"The weather is nice today",`),
		genai.Text(`"words":[{"word":"天气","meaning":"weather"}],"difficulty":"beginner"}`),
	)}
	c := newClient(t, model)

	a, err := c.AnalyzeSentence(context.Background(), "今天天气很好")
	require.NoError(t, err)
	assert.Equal(t, "今天天气很好", a.Sentence)
	assert.Equal(t, "The weather is nice today", a.Translation)
	assert.Equal(t, "gemini-test", a.ModelUsed)
	require.Len(t, a.Words, 1)

	require.Len(t, model.parts, 1)
	text, ok := model.parts[0].(genai.Text)
	require.True(t, ok)
	assert.Contains(t, string(text), "今天天气很好")
	assert.NoError(t, c.Close())
}

func TestAnalyzeSentenceErrors(t *testing.T) {
	tests := []struct {
		name  string
		model *stubModel
	}{
		{"api error", &stubModel{err: errors.New("quota")}},
		{"no candidates", &stubModel{resp: &genai.GenerateContentResponse{}}},
		{"nil content", &stubModel{resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}}},
		{"prose", &stubModel{resp: candidate(genai.Text("I am unable to help."))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newClient(t, tt.model).AnalyzeSentence(context.Background(), "你好")
			assert.Error(t, err)
		})
	}
}
