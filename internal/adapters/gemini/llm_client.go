package gemini

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/mikey/sentence-assistant/internal/adapters/prompt"
	"github.com/mikey/sentence-assistant/internal/core"
	"github.com/mikey/sentence-assistant/internal/utils"
	"go.uber.org/zap"
)

// ContentGenerator is the part of *genai.GenerativeModel the adapter uses
type ContentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// GeminiClient is an implementation of the LLMClient interface using Google Gemini
type GeminiClient struct {
	closer        io.Closer
	model         ContentGenerator
	modelName     string
	maxInputSize  int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
	now           func() time.Time
}

// NewGeminiClient wraps a configured model. closer may be nil.
func NewGeminiClient(
	model ContentGenerator,
	closer io.Closer,
	modelName string,
	maxInputSize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *GeminiClient {
	return &GeminiClient{
		closer:        closer,
		model:         model,
		modelName:     modelName,
		maxInputSize:  maxInputSize,
		logger:        logger,
		textProcessor: textProcessor,
		now:           time.Now,
	}
}

// Close closes the Gemini client
func (c *GeminiClient) Close() error {
	if c.closer != nil {
		return c.closer.Close()
	}
	return nil
}

// AnalyzeSentence asks Gemini for a breakdown of the sentence
func (c *GeminiClient) AnalyzeSentence(ctx context.Context, sentence string) (*core.SentenceAnalysis, error) {
	input := c.textProcessor.ProcessText(sentence, c.maxInputSize)

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt.Build(input)))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content with Gemini: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	parsed, err := prompt.Parse(text)
	if err != nil {
		c.logger.Warn("Unparseable Gemini response", zap.String("model", c.modelName), zap.Error(err))
		return nil, err
	}

	analysis := parsed.Analysis(sentence, c.modelName, "")
	analysis.AnalyzedAt = c.now()
	return analysis, nil
}

// responseText joins the text parts of the first candidate
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String()
}
