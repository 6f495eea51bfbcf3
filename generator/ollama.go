package generator

import (
	"context"
	"fmt"
	"strings"
)

const defaultOllamaURL = "http://localhost:11434"

type Ollama struct {
	client httpDoer
	url    string
	model  string
	kwargs map[string]any
}

func NewOllama(client httpDoer, url, model string, kwargs map[string]any) *Ollama {
	if url == "" {
		url = defaultOllamaURL
	}
	return &Ollama{client: client, url: strings.TrimSuffix(url, "/"), model: model, kwargs: kwargs}
}

type ollamaChatRequest struct {
	Model    string         `json:"model"`
	Messages []chatMessage  `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

type ollamaChatResponse struct {
	Message chatMessage `json:"message"`
}

// Generate sends the prompt as a system message, the way the SQL prompt
// is written to be consumed.
func (o *Ollama) Generate(ctx context.Context, prompt string) (string, error) {
	req := ollamaChatRequest{
		Model:    o.model,
		Messages: []chatMessage{{Role: "system", Content: prompt}},
		Options:  o.kwargs,
	}

	var resp ollamaChatResponse
	if err := postJSON(ctx, o.client, o.url+"/api/chat", nil, req, &resp); err != nil {
		return "", fmt.Errorf("ollama: %w", err)
	}
	if resp.Message.Content == "" {
		return "", fmt.Errorf("ollama: %w", ErrEmptyReply)
	}
	return resp.Message.Content, nil
}
