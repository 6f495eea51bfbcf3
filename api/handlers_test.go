package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"subito_scrooper/models"
	"subito_scrooper/query"
	"subito_scrooper/services"
)

type stubIndexer struct {
	run *models.IndexRun
	err error
}

func (s *stubIndexer) BuildIndex(ctx context.Context) (*models.IndexRun, error) {
	return s.run, s.err
}

type stubSearcher struct {
	question string
	result   *services.SearchResult
	err      error
}

func (s *stubSearcher) Search(ctx context.Context, question string) (*services.SearchResult, error) {
	s.question = question
	return s.result, s.err
}

type stubRuns struct {
	limit int
}

func (s *stubRuns) ListRuns(ctx context.Context, limit int) ([]models.IndexRun, error) {
	s.limit = limit
	return []models.IndexRun{*models.NewIndexRun("subito")}, nil
}

func serve(t *testing.T, h *Handlers, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	NewRouter(h).ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := serve(t, NewHandlers(&stubIndexer{}, &stubSearcher{}, nil), http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestBuildIndex(t *testing.T) {
	run := models.NewIndexRun("subito")
	run.RowsWritten = 42
	run.Finish(nil)

	rec := serve(t, NewHandlers(&stubIndexer{run: run}, &stubSearcher{}, nil), http.MethodPost, "/build-index", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}

	var got models.IndexRun
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != run.ID || got.RowsWritten != 42 || got.Status != models.RunStatusCompleted {
		t.Fatalf("unexpected run %+v", got)
	}
}

func TestBuildIndex_Errors(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{services.ErrIndexInProgress, http.StatusConflict},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		rec := serve(t, NewHandlers(&stubIndexer{err: tt.err}, &stubSearcher{}, nil), http.MethodPost, "/build-index", "")
		if rec.Code != tt.code {
			t.Fatalf("%v: expected %d, got %d", tt.err, tt.code, rec.Code)
		}
	}
}

func TestSearch(t *testing.T) {
	searcher := &stubSearcher{result: &services.SearchResult{
		Query: models.GeneratedQuery{Normalized: "select content from real_estates"},
		Rows:  []models.Row{{"Trilocale", int64(145000)}},
	}}

	rec := serve(t, NewHandlers(&stubIndexer{}, searcher, nil), http.MethodPost, "/search", `{"query": "Trilocali?"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	if searcher.question != "Trilocali?" {
		t.Fatalf("unexpected question %q", searcher.question)
	}
	if rec.Header().Get("X-SQL-Statement") != "select content from real_estates" {
		t.Fatalf("expected statement header, got %q", rec.Header().Get("X-SQL-Statement"))
	}

	var rows [][]any
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 1 || rows[0][0] != "Trilocale" || rows[0][1] != float64(145000) {
		t.Fatalf("unexpected rows %v", rows)
	}
}

func TestSearch_EmptyExtractionIsEmptyList(t *testing.T) {
	searcher := &stubSearcher{result: &services.SearchResult{Empty: true}}

	rec := serve(t, NewHandlers(&stubIndexer{}, searcher, nil), http.MethodPost, "/search", `{"query": "?"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("expected [], got %s", rec.Body)
	}
}

func TestSearch_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  error
		code int
	}{
		{"bad body", `not json`, nil, http.StatusBadRequest},
		{"empty question", `{"query": ""}`, services.ErrEmptyQuestion, http.StatusBadRequest},
		{"revision limit", `{"query": "x"}`, fmt.Errorf("%w: 2 rounds", query.ErrRevisionLimit), http.StatusUnprocessableEntity},
		{"statement failed", `{"query": "x"}`, query.ErrStatementFailed, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			searcher := &stubSearcher{err: tt.err}
			rec := serve(t, NewHandlers(&stubIndexer{}, searcher, nil), http.MethodPost, "/search", tt.body)
			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, rec.Code)
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body["error"] == "" {
				t.Fatalf("expected error body, got %s", rec.Body)
			}
		})
	}
}

func TestListRuns(t *testing.T) {
	runs := &stubRuns{}
	h := NewHandlers(&stubIndexer{}, &stubSearcher{}, runs)

	rec := serve(t, h, http.MethodGet, "/runs?limit=5", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if runs.limit != 5 {
		t.Fatalf("expected limit 5, got %d", runs.limit)
	}

	if rec := serve(t, h, http.MethodGet, "/runs?limit=-1", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", rec.Code)
	}

	noRuns := NewHandlers(&stubIndexer{}, &stubSearcher{}, nil)
	if rec := serve(t, noRuns, http.MethodGet, "/runs", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without a run log, got %d", rec.Code)
	}
}
