package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"subito_scrooper/models"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	store := &PostgresStore{pool: pool}
	if err := store.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return store, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS index_runs (
			id UUID PRIMARY KEY,
			site_id TEXT,
			started_at TIMESTAMPTZ,
			finished_at TIMESTAMPTZ,
			status TEXT,
			pages_fetched INTEGER DEFAULT 0,
			pages_failed INTEGER DEFAULT 0,
			listings_found INTEGER DEFAULT 0,
			rows_written INTEGER DEFAULT 0,
			error_message TEXT
		)`)
	return err
}

// =============================================================================
// Records
// =============================================================================

func (s *PostgresStore) tableExists(ctx context.Context, tx pgx.Tx, table string) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = current_schema() AND table_name = $1
		)`, table).Scan(&exists)
	return exists, err
}

// WriteBatch queues every insert into one pgx batch inside a transaction.
func (s *PostgresStore) WriteBatch(ctx context.Context, table string, schema models.Schema, records []models.Record, createIfMissing bool) (int, error) {
	if err := validateTable(table, schema); err != nil {
		return 0, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	exists, err := s.tableExists(ctx, tx, table)
	if err != nil {
		return 0, fmt.Errorf("check table %s: %w", table, err)
	}
	if !exists {
		if !createIfMissing {
			return 0, fmt.Errorf("%w: %s", ErrTableNotFound, table)
		}
		if _, err := tx.Exec(ctx, createTableSQL(table, schema)); err != nil {
			return 0, fmt.Errorf("create table %s: %w", table, err)
		}
	}

	query := insertSQL(table, schema, func(i int) string { return "$" + strconv.Itoa(i) })
	batch := &pgx.Batch{}
	for i, rec := range records {
		values, err := recordValues(rec, schema)
		if err != nil {
			return 0, fmt.Errorf("record %d: %w", i, err)
		}
		batch.Queue(query, values...)
	}

	if batch.Len() > 0 {
		results := tx.SendBatch(ctx, batch)
		for i := 0; i < batch.Len(); i++ {
			if _, err := results.Exec(); err != nil {
				results.Close()
				return 0, fmt.Errorf("insert record %d: %w", i, err)
			}
		}
		if err := results.Close(); err != nil {
			return 0, fmt.Errorf("close batch: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(records), nil
}

// Execute runs statement in a read-only transaction, so generated text
// cannot modify the database.
func (s *PostgresStore) Execute(ctx context.Context, statement string) ([]models.Row, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, statement)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.Row
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		result = append(result, normalizeRow(values))
	}
	return result, rows.Err()
}

func (s *PostgresStore) ResetTable(ctx context.Context, table string) error {
	if !identPattern.MatchString(table) {
		return fmt.Errorf("%w: table %q", ErrInvalidIdentifier, table)
	}
	_, err := s.pool.Exec(ctx, "DROP TABLE IF EXISTS "+table)
	return err
}

// =============================================================================
// Index Runs
// =============================================================================

func (s *PostgresStore) CreateRun(ctx context.Context, run *models.IndexRun) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO index_runs (id, site_id, started_at, status)
		VALUES ($1, $2, $3, $4)`,
		run.ID, run.SiteID, run.StartedAt, string(run.Status))
	return err
}

func (s *PostgresStore) UpdateRun(ctx context.Context, run *models.IndexRun) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE index_runs SET
			finished_at = $2, status = $3, pages_fetched = $4, pages_failed = $5,
			listings_found = $6, rows_written = $7, error_message = $8
		WHERE id = $1`,
		run.ID, run.FinishedAt, string(run.Status), run.PagesFetched, run.PagesFailed,
		run.ListingsFound, run.RowsWritten, run.ErrorMessage)
	return err
}

func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]models.IndexRun, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, site_id, started_at, finished_at, status, pages_fetched, pages_failed,
			listings_found, rows_written, COALESCE(error_message, '')
		FROM index_runs
		ORDER BY started_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.IndexRun
	for rows.Next() {
		var (
			r      models.IndexRun
			status string
		)
		if err := rows.Scan(&r.ID, &r.SiteID, &r.StartedAt, &r.FinishedAt, &status,
			&r.PagesFetched, &r.PagesFailed, &r.ListingsFound, &r.RowsWritten, &r.ErrorMessage); err != nil {
			return nil, err
		}
		r.Status = models.RunStatus(status)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

var _ RecordStore = (*PostgresStore)(nil)
var _ RunLog = (*PostgresStore)(nil)
