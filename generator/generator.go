// Package generator wraps the text generation services a search can use.
// Every backend answers Generate with the raw reply; callers treat it as
// untrusted text.
package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"subito_scrooper/config"
)

const (
	ServiceOllama      = "ollama"
	ServiceMistral     = "mistral"
	ServiceHuggingFace = "hugging-face"
	ServiceGemini      = "gemini"
)

var (
	ErrUnsupportedService = errors.New("unsupported generator service")
	ErrEmptyReply         = errors.New("generator returned no text")
)

// httpDoer is satisfied by *http.Client.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// New builds the backend named by cfg.Service. client is used by the HTTP
// backends; nil gets a client with cfg.Timeout.
func New(ctx context.Context, cfg config.GeneratorConfig, client *http.Client) (Generator, error) {
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	switch cfg.Service {
	case ServiceOllama:
		return NewOllama(client, cfg.URL, cfg.Model, cfg.Kwargs), nil
	case ServiceMistral:
		return NewMistral(client, cfg.URL, cfg.Token, cfg.Model, cfg.Kwargs)
	case ServiceHuggingFace:
		return NewHuggingFace(client, cfg.URL, cfg.Token, cfg.Model, cfg.Kwargs)
	case ServiceGemini:
		return NewGemini(ctx, cfg.Token, cfg.Model, cfg.Kwargs)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedService, cfg.Service)
	}
}

// postJSON sends body as JSON and decodes a 200 response into out.
func postJSON(ctx context.Context, client httpDoer, url string, headers map[string]string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(respBody))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
