package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"subito_scrooper/generator"
	"subito_scrooper/models"
	"subito_scrooper/query"
)

var ErrEmptyQuestion = errors.New("empty question")

type SearchResult struct {
	Question string                `json:"question"`
	Query    models.GeneratedQuery `json:"query"`
	Rows     []models.Row          `json:"rows"`
	// Empty is set when the generator reply held no statement to run.
	Empty bool `json:"empty"`
}

// SearchService answers a question by asking the generator for SQL,
// optionally letting it review its own statement, and running the result.
type SearchService struct {
	generator    generator.Generator
	executor     *query.Executor
	table        string
	schema       models.Schema
	maxRevisions int
}

func NewSearchService(gen generator.Generator, executor *query.Executor, table string, schema models.Schema, maxRevisions int) *SearchService {
	return &SearchService{
		generator:    gen,
		executor:     executor,
		table:        table,
		schema:       schema,
		maxRevisions: maxRevisions,
	}
}

func (s *SearchService) Search(ctx context.Context, question string) (*SearchResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	prompt, err := renderSQLPrompt(question, s.table, s.schema)
	if err != nil {
		return nil, err
	}

	reply, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	q := query.ExtractOne(reply)
	result := &SearchResult{Question: question, Query: q}
	if !q.Usable() {
		slog.Info("no statement in generator reply", "question", question)
		result.Empty = true
		return result, nil
	}

	if s.maxRevisions > 0 {
		if err := s.review(ctx, question, &q); err != nil {
			result.Query = q
			return result, err
		}
	}
	result.Query = q

	res, err := s.executor.Run(ctx, []string{q.Normalized})
	if err != nil {
		return result, err
	}
	result.Rows = res.Rows

	slog.Info("search answered", "question", question, "statement", q.Normalized, "rows", len(res.Rows), "rounds", q.Rounds)
	return result, nil
}

// review asks the generator to check q until it answers with the
// completion marker or maxRevisions rounds have passed. A revised
// statement found in a rejecting reply replaces the current one.
func (s *SearchService) review(ctx context.Context, question string, q *models.GeneratedQuery) error {
	for round := 1; round <= s.maxRevisions; round++ {
		prompt, err := renderReviewPrompt(question, q.Normalized, s.table, s.schema)
		if err != nil {
			return err
		}

		reply, err := s.generator.Generate(ctx, prompt)
		if err != nil {
			return fmt.Errorf("review round %d: %w", round, err)
		}
		q.Rounds = round

		v := query.Validate(reply)
		if v.State == models.StateAccepted {
			q.State = models.StateAccepted
			if stmt := acceptedStatement(v.Statement); stmt != "" {
				q.Extracted = stmt
				q.Normalized = query.Normalize(stmt)
			}
			return nil
		}

		q.State = models.StateNeedsRevision
		if revised := query.ExtractOne(v.Statement); revised.Usable() {
			q.RawText = revised.RawText
			q.Extracted = revised.Extracted
			q.Normalized = revised.Normalized
		}
		slog.Debug("statement needs revision", "round", round, "statement", q.Normalized)
	}

	return fmt.Errorf("%w: %d rounds", query.ErrRevisionLimit, s.maxRevisions)
}

// acceptedStatement returns the statement an accepting reply repeats, if
// any. Replies may or may not fence it.
func acceptedStatement(text string) string {
	if stmt, ok := query.Extract(text); ok {
		return stmt
	}
	text = strings.TrimSpace(strings.Trim(strings.TrimSpace(text), "`"))
	if !strings.Contains(strings.ToLower(text), "select") {
		return ""
	}
	return text
}
