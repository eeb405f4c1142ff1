package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"llmsecbot/internal/normalize"
)

// OpenAISummarizer drives an OpenAI-compatible chat completion endpoint.
type OpenAISummarizer struct {
	client      *openai.Client
	model       string
	prompt      string
	maxTokens   int
	temperature float32
	timeout     time.Duration
}

func NewOpenAISummarizer(apiKey, model, prompt string, maxTokens int, temperature float32, timeout time.Duration) *OpenAISummarizer {
	return &OpenAISummarizer{
		client:      openai.NewClient(apiKey),
		model:       model,
		prompt:      prompt,
		maxTokens:   maxTokens,
		temperature: temperature,
		timeout:     timeout,
	}
}

func (s *OpenAISummarizer) Summarize(ctx context.Context, body string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: RenderPrompt(s.prompt, body),
			},
		},
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices in completion response")
	}

	// The model can echo markup back; never trust its output raw.
	out := normalize.StripMarkup(strings.TrimSpace(resp.Choices[0].Message.Content))
	if out == "" {
		return "", errors.New("empty completion")
	}
	return out, nil
}
