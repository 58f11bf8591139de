package llm

import (
	"context"
	"errors"
	"fmt"
	"math"

	openai "github.com/sashabaranov/go-openai"
)

// HostedBackend talks to an OpenAI compatible chat completion API.
type HostedBackend struct {
	client *openai.Client
	model  string
}

func NewHostedBackend(apiKey, baseURL, model string) *HostedBackend {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &HostedBackend{client: openai.NewClientWithConfig(cfg), model: model}
}

func (b *HostedBackend) Name() string {
	return ServiceHosted
}

func (b *HostedBackend) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		// zero is dropped by omitempty, this is the library's way to ask for it
		Temperature: math.SmallestNonzeroFloat32,
	})
	if err != nil {
		return "", fmt.Errorf("hosted completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("hosted completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
