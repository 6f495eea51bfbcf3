package generator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"subito_scrooper/config"
)

func TestNew_UnsupportedService(t *testing.T) {
	_, err := New(context.Background(), config.GeneratorConfig{Service: "openai"}, nil)
	if !errors.Is(err, ErrUnsupportedService) {
		t.Fatalf("expected ErrUnsupportedService, got %v", err)
	}
}

func TestNew_TokenRequired(t *testing.T) {
	for _, service := range []string{ServiceMistral, ServiceGemini} {
		if _, err := New(context.Background(), config.GeneratorConfig{Service: service}, nil); err == nil {
			t.Fatalf("%s: expected error without token", service)
		}
	}
}

func TestOllama_Generate(t *testing.T) {
	var got ollamaChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{"role": "assistant", "content": "SELECT * FROM real_estates ```"},
		})
	}))
	defer srv.Close()

	gen, err := New(context.Background(), config.GeneratorConfig{
		Service: ServiceOllama,
		URL:     srv.URL,
		Model:   "sqlcoder",
		Kwargs:  map[string]any{"temperature": 0.0},
	}, srv.Client())
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}

	reply, err := gen.Generate(context.Background(), "question?")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if reply != "SELECT * FROM real_estates ```" {
		t.Fatalf("unexpected reply %q", reply)
	}
	if got.Model != "sqlcoder" || got.Stream {
		t.Fatalf("unexpected request %+v", got)
	}
	if len(got.Messages) != 1 || got.Messages[0].Role != "system" || got.Messages[0].Content != "question?" {
		t.Fatalf("unexpected messages %+v", got.Messages)
	}
	if _, ok := got.Options["temperature"]; !ok {
		t.Fatalf("expected kwargs forwarded as options, got %v", got.Options)
	}
}

func TestOllama_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	gen := NewOllama(srv.Client(), srv.URL, "missing", nil)
	if _, err := gen.Generate(context.Background(), "q"); err == nil {
		t.Fatalf("expected error for 404")
	}
}

func TestMistral_Generate(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("unexpected auth header %q", r.Header.Get("Authorization"))
		}
		json.NewDecoder(r.Body).Decode(&body)
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "```sql\nSELECT 1\n```"}},
			},
		})
	}))
	defer srv.Close()

	gen, err := NewMistral(srv.Client(), srv.URL, "secret", "", map[string]any{"max_tokens": 128})
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}

	reply, err := gen.Generate(context.Background(), "q")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if reply != "```sql\nSELECT 1\n```" {
		t.Fatalf("unexpected reply %q", reply)
	}
	if body["model"] != "mistral-large-latest" {
		t.Fatalf("expected default model, got %v", body["model"])
	}
	if body["max_tokens"] != float64(128) {
		t.Fatalf("expected kwargs merged into body, got %v", body["max_tokens"])
	}
}

func TestMistral_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	gen, _ := NewMistral(srv.Client(), srv.URL, "secret", "m", nil)
	if _, err := gen.Generate(context.Background(), "q"); !errors.Is(err, ErrEmptyReply) {
		t.Fatalf("expected ErrEmptyReply, got %v", err)
	}
}

func TestHuggingFace_Generate(t *testing.T) {
	var got hfRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`[{"generated_text": "SELECT content FROM real_estates ` + "```" + `"}]`))
	}))
	defer srv.Close()

	gen, err := NewHuggingFace(srv.Client(), srv.URL, "hf_token", "defog/sqlcoder-7b-2", nil)
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}

	reply, err := gen.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if reply != "SELECT content FROM real_estates ```" {
		t.Fatalf("unexpected reply %q", reply)
	}
	if got.Inputs != "prompt" {
		t.Fatalf("unexpected inputs %q", got.Inputs)
	}
	if got.Parameters["return_full_text"] != false {
		t.Fatalf("expected return_full_text false, got %v", got.Parameters["return_full_text"])
	}
}

func TestHuggingFace_DefaultURL(t *testing.T) {
	gen, err := NewHuggingFace(http.DefaultClient, "", "", "defog/sqlcoder-7b-2", nil)
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}
	if gen.url != "https://api-inference.huggingface.co/models/defog/sqlcoder-7b-2" {
		t.Fatalf("unexpected url %s", gen.url)
	}

	if _, err := NewHuggingFace(http.DefaultClient, "", "", "", nil); err == nil {
		t.Fatalf("expected error without model or url")
	}
}

func TestGeminiConfig(t *testing.T) {
	cfg := geminiConfig(map[string]any{"temperature": 0.2, "max_new_tokens": float64(256), "seed": 1})
	if cfg.Temperature == nil || *cfg.Temperature != float32(0.2) {
		t.Fatalf("unexpected temperature %v", cfg.Temperature)
	}
	if cfg.MaxOutputTokens != 256 {
		t.Fatalf("expected 256 max tokens, got %d", cfg.MaxOutputTokens)
	}
	if cfg.TopP != nil {
		t.Fatalf("expected no top_p")
	}
}
