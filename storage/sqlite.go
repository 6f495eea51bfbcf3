package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"subito_scrooper/models"
)

type SQLiteStore struct {
	db *sql.DB
	// reader runs Execute; its connections refuse writes.
	reader *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	reader, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000&_query_only=true")
	if err != nil {
		db.Close()
		return nil, err
	}
	store.reader = reader

	return store, nil
}

func (s *SQLiteStore) Close() error {
	rerr := s.reader.Close()
	if err := s.db.Close(); err != nil {
		return err
	}
	return rerr
}

// migrate creates the bookkeeping tables only. Record tables are created
// on first write from the schema the caller supplies.
func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS index_runs (
		id TEXT PRIMARY KEY,
		site_id TEXT,
		started_at DATETIME,
		finished_at DATETIME,
		status TEXT,
		pages_fetched INTEGER DEFAULT 0,
		pages_failed INTEGER DEFAULT 0,
		listings_found INTEGER DEFAULT 0,
		rows_written INTEGER DEFAULT 0,
		error_message TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_index_runs_started ON index_runs(started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) tableExists(ctx context.Context, q queryer, table string) (bool, error) {
	var name string
	err := q.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WriteBatch inserts all records in one transaction. Nothing is committed
// if any record fails.
func (s *SQLiteStore) WriteBatch(ctx context.Context, table string, schema models.Schema, records []models.Record, createIfMissing bool) (int, error) {
	if err := validateTable(table, schema); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	exists, err := s.tableExists(ctx, tx, table)
	if err != nil {
		return 0, fmt.Errorf("check table %s: %w", table, err)
	}
	if !exists {
		if !createIfMissing {
			return 0, fmt.Errorf("%w: %s", ErrTableNotFound, table)
		}
		if _, err := tx.ExecContext(ctx, createTableSQL(table, schema)); err != nil {
			return 0, fmt.Errorf("create table %s: %w", table, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, insertSQL(table, schema, func(int) string { return "?" }))
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		values, err := recordValues(rec, schema)
		if err != nil {
			return 0, fmt.Errorf("record %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, values...); err != nil {
			return 0, fmt.Errorf("insert record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(records), nil
}

// Execute runs statement on a query-only connection, so generated text
// cannot modify the database.
func (s *SQLiteStore) Execute(ctx context.Context, statement string) ([]models.Row, error) {
	rows, err := s.reader.QueryContext(ctx, statement)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var result []models.Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		result = append(result, normalizeRow(values))
	}
	return result, rows.Err()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, run *models.IndexRun) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO index_runs (id, site_id, started_at, status)
		VALUES (?, ?, ?, ?)`,
		run.ID.String(), run.SiteID, run.StartedAt, run.Status)
	return err
}

func (s *SQLiteStore) UpdateRun(ctx context.Context, run *models.IndexRun) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE index_runs SET finished_at = ?, status = ?, pages_fetched = ?, pages_failed = ?,
			listings_found = ?, rows_written = ?, error_message = ?
		WHERE id = ?`,
		run.FinishedAt, run.Status, run.PagesFetched, run.PagesFailed,
		run.ListingsFound, run.RowsWritten, run.ErrorMessage, run.ID.String())
	return err
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]models.IndexRun, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, site_id, started_at, finished_at, status, pages_fetched, pages_failed,
			listings_found, rows_written, COALESCE(error_message, '')
		FROM index_runs
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.IndexRun
	for rows.Next() {
		var (
			r          models.IndexRun
			id         string
			finishedAt sql.NullTime
			status     string
		)
		if err := rows.Scan(&id, &r.SiteID, &r.StartedAt, &finishedAt, &status,
			&r.PagesFetched, &r.PagesFailed, &r.ListingsFound, &r.RowsWritten, &r.ErrorMessage); err != nil {
			return nil, err
		}
		r.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("parse run id %q: %w", id, err)
		}
		r.Status = models.RunStatus(status)
		if finishedAt.Valid {
			t := finishedAt.Time
			r.FinishedAt = &t
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// ResetTable drops a record table so the next write recreates it.
func (s *SQLiteStore) ResetTable(ctx context.Context, table string) error {
	if !identPattern.MatchString(table) {
		return fmt.Errorf("%w: table %q", ErrInvalidIdentifier, table)
	}
	_, err := s.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table)
	return err
}

var _ RecordStore = (*SQLiteStore)(nil)
var _ RunLog = (*SQLiteStore)(nil)
