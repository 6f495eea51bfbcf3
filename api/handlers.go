package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"subito_scrooper/models"
	"subito_scrooper/query"
	"subito_scrooper/services"
)

type Indexer interface {
	BuildIndex(ctx context.Context) (*models.IndexRun, error)
}

type Searcher interface {
	Search(ctx context.Context, question string) (*services.SearchResult, error)
}

type RunLister interface {
	ListRuns(ctx context.Context, limit int) ([]models.IndexRun, error)
}

type Handlers struct {
	indexer  Indexer
	searcher Searcher
	runs     RunLister
}

// NewHandlers wires the endpoints. runs may be nil, in which case /runs
// answers 404.
func NewHandlers(indexer Indexer, searcher Searcher, runs RunLister) *Handlers {
	return &Handlers{indexer: indexer, searcher: searcher, runs: runs}
}

type searchRequest struct {
	Query string `json:"query"`
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) BuildIndex(w http.ResponseWriter, r *http.Request) {
	run, err := h.indexer.BuildIndex(r.Context())
	if err != nil {
		if errors.Is(err, services.ErrIndexInProgress) {
			writeError(w, http.StatusConflict, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// Search answers with the result rows. A reply without a statement is not
// an error and yields an empty list.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("body must be {\"query\": \"...\"}"))
		return
	}

	res, err := h.searcher.Search(r.Context(), req.Query)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyQuestion):
			writeError(w, http.StatusBadRequest, err)
		case errors.Is(err, query.ErrRevisionLimit):
			writeError(w, http.StatusUnprocessableEntity, err)
		default:
			writeError(w, http.StatusInternalServerError, err)
		}
		return
	}

	if res.Query.Normalized != "" {
		w.Header().Set("X-SQL-Statement", res.Query.Normalized)
	}
	rows := res.Rows
	if rows == nil {
		rows = []models.Row{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *Handlers) ListRuns(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		http.NotFound(w, r)
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, errors.New("limit must be a positive integer"))
			return
		}
		limit = n
	}

	runs, err := h.runs.ListRuns(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if runs == nil {
		runs = []models.IndexRun{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
