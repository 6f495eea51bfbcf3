package generator

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

type Gemini struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

func NewGemini(ctx context.Context, apiKey, model string, kwargs map[string]any) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: GENERATOR_TOKEN is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &Gemini{client: client, model: model, config: geminiConfig(kwargs)}, nil
}

// geminiConfig maps the generation kwargs the other backends share onto
// the GenAI request config. Unknown keys are ignored.
func geminiConfig(kwargs map[string]any) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if v, ok := number(kwargs["temperature"]); ok {
		cfg.Temperature = genai.Ptr(float32(v))
	}
	if v, ok := number(kwargs["top_p"]); ok {
		cfg.TopP = genai.Ptr(float32(v))
	}
	for _, key := range []string{"max_output_tokens", "max_tokens", "max_new_tokens", "num_predict"} {
		if v, ok := number(kwargs[key]); ok {
			cfg.MaxOutputTokens = int32(v)
			break
		}
	}
	return cfg
}

func number(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}

func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), g.config)
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini: %w", ErrEmptyReply)
	}
	return text, nil
}
