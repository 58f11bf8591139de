package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
)

// LocalBackend runs prompts against an Ollama server.
type LocalBackend struct {
	client *api.Client
	model  string
}

func NewLocalBackend(host, model string, httpClient *http.Client) (*LocalBackend, error) {
	base, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host %q: %w", host, err)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &LocalBackend{client: api.NewClient(base, httpClient), model: model}, nil
}

func (b *LocalBackend) Name() string {
	return ServiceLocal
}

func (b *LocalBackend) Generate(ctx context.Context, prompt string) (string, error) {
	stream := false
	var out strings.Builder
	err := b.client.Generate(ctx, &api.GenerateRequest{
		Model:  b.model,
		Prompt: prompt,
		Stream: &stream,
	}, func(resp api.GenerateResponse) error {
		out.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama generate failed: %w", err)
	}
	return out.String(), nil
}
