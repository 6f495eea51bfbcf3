package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const defaultMistralURL = "https://api.mistral.ai/v1"

type Mistral struct {
	client httpDoer
	url    string
	token  string
	model  string
	kwargs map[string]any
}

func NewMistral(client httpDoer, url, token, model string, kwargs map[string]any) (*Mistral, error) {
	if token == "" {
		return nil, errors.New("mistral: GENERATOR_TOKEN is required")
	}
	if url == "" {
		url = defaultMistralURL
	}
	if model == "" {
		model = "mistral-large-latest"
	}
	return &Mistral{client: client, url: strings.TrimSuffix(url, "/"), token: token, model: model, kwargs: kwargs}, nil
}

type mistralResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (m *Mistral) Generate(ctx context.Context, prompt string) (string, error) {
	body := map[string]any{}
	for k, v := range m.kwargs {
		body[k] = v
	}
	body["model"] = m.model
	body["messages"] = []chatMessage{{Role: "system", Content: prompt}}

	headers := map[string]string{"Authorization": "Bearer " + m.token}

	var resp mistralResponse
	if err := postJSON(ctx, m.client, m.url+"/chat/completions", headers, body, &resp); err != nil {
		return "", fmt.Errorf("mistral: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("mistral: %w", ErrEmptyReply)
	}
	return resp.Choices[0].Message.Content, nil
}
