package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"subito_scrooper/models"
)

var ErrStatementFailed = errors.New("statement failed")

// Querier runs one statement. storage.RecordStore satisfies it.
type Querier interface {
	Execute(ctx context.Context, statement string) ([]models.Row, error)
}

type Result struct {
	Rows       []models.Row `json:"rows"`
	Statements []string     `json:"statements"`
}

type Executor struct {
	store Querier
}

func NewExecutor(store Querier) *Executor {
	return &Executor{store: store}
}

// Run executes statements in order and concatenates their rows. The first
// failure stops the run and no rows are returned.
func (e *Executor) Run(ctx context.Context, statements []string) (Result, error) {
	var rows []models.Row
	for i, stmt := range statements {
		got, err := e.store.Execute(ctx, stmt)
		if err != nil {
			return Result{Statements: statements}, fmt.Errorf("%w: #%d %q: %w", ErrStatementFailed, i, stmt, err)
		}
		slog.Debug("statement executed", "index", i, "rows", len(got))
		rows = append(rows, got...)
	}
	return Result{Rows: rows, Statements: statements}, nil
}
