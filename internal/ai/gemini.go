package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"llmsecbot/internal/normalize"
)

// GeminiSummarizer is the alternate provider, behind the same contract as
// the OpenAI one.
type GeminiSummarizer struct {
	client      *genai.Client
	model       string
	prompt      string
	maxTokens   int32
	temperature float32
	timeout     time.Duration
}

func NewGeminiSummarizer(ctx context.Context, apiKey, model, prompt string, maxTokens int, temperature float32, timeout time.Duration) (*GeminiSummarizer, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiSummarizer{
		client:      client,
		model:       model,
		prompt:      prompt,
		maxTokens:   int32(maxTokens),
		temperature: temperature,
		timeout:     timeout,
	}, nil
}

func (s *GeminiSummarizer) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

func (s *GeminiSummarizer) Summarize(ctx context.Context, body string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	model := s.client.GenerativeModel(s.model)
	model.SetMaxOutputTokens(s.maxTokens)
	model.SetTemperature(s.temperature)

	resp, err := model.GenerateContent(ctx, genai.Text(RenderPrompt(s.prompt, body)))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("no response from Gemini")
	}

	out := normalize.StripMarkup(fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]))
	if out == "" {
		return "", errors.New("empty completion")
	}
	return out, nil
}
