package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const defaultHuggingFaceURL = "https://api-inference.huggingface.co/models"

// HuggingFace calls the serverless text-generation inference API.
type HuggingFace struct {
	client httpDoer
	url    string
	token  string
	kwargs map[string]any
}

func NewHuggingFace(client httpDoer, url, token, model string, kwargs map[string]any) (*HuggingFace, error) {
	if model == "" && url == "" {
		return nil, errors.New("hugging-face: GENERATOR_MODEL or GENERATOR_URL is required")
	}
	if url == "" {
		url = defaultHuggingFaceURL + "/" + model
	}
	return &HuggingFace{client: client, url: strings.TrimSuffix(url, "/"), token: token, kwargs: kwargs}, nil
}

type hfRequest struct {
	Inputs     string         `json:"inputs"`
	Parameters map[string]any `json:"parameters"`
}

type hfGeneration struct {
	GeneratedText string `json:"generated_text"`
}

func (h *HuggingFace) Generate(ctx context.Context, prompt string) (string, error) {
	params := map[string]any{"return_full_text": false}
	for k, v := range h.kwargs {
		params[k] = v
	}

	var headers map[string]string
	if h.token != "" {
		headers = map[string]string{"Authorization": "Bearer " + h.token}
	}

	var resp []hfGeneration
	if err := postJSON(ctx, h.client, h.url, headers, hfRequest{Inputs: prompt, Parameters: params}, &resp); err != nil {
		return "", fmt.Errorf("hugging-face: %w", err)
	}
	if len(resp) == 0 || resp[0].GeneratedText == "" {
		return "", fmt.Errorf("hugging-face: %w", ErrEmptyReply)
	}
	return resp[0].GeneratedText, nil
}
