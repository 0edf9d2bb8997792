package history

import (
	"context"
	"embed"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // Register pgx driver for database/sql (needed by goose)
	"github.com/pressly/goose/v3"

	"github.com/ppiankov/archivecost/internal/cost"
)

//go:embed migrations/*.sql
var migrations embed.FS

// NewPool creates a pgxpool connection pool and verifies it with a ping.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return pool, nil
}

// RunMigrations applies all pending goose migrations from the embedded SQL files.
func RunMigrations(ctx context.Context, dsn string) error {
	goose.SetBaseFS(migrations)

	db, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open db for migrations: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

// PostgresStore keeps both logs in PostgreSQL. Rows are insert-only and read
// back in insertion order.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an existing pool. The store owns the pool and
// closes it on Close.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// OpenPostgres migrates the schema and returns a store on a fresh pool.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	if err := RunMigrations(ctx, dsn); err != nil {
		return nil, err
	}
	pool, err := NewPool(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return NewPostgresStore(pool), nil
}

// Append implements Store.
func (s *PostgresStore) Append(ctx context.Context, e Entry) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO estimate_history (run_id, recorded_at, pages, size_gb, provider, retention_months, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		runIDOrNew(e.RunID), e.Timestamp, e.Pages, e.SizeGB, string(e.Provider), e.RetentionMonths, e.Total,
	)
	if err != nil {
		return fmt.Errorf("%w: insert history entry: %w", ErrHistoryWrite, err)
	}
	return nil
}

// AppendComponents inserts all records in one transaction.
func (s *PostgresStore) AppendComponents(ctx context.Context, records []ComponentRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", ErrHistoryWrite, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(`
			INSERT INTO cost_components (run_id, component, amount, provider, recorded_at)
			VALUES ($1, $2, $3, $4, $5)`,
			runIDOrNew(r.RunID), r.Component, r.Amount, string(r.Provider), r.Timestamp,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("%w: insert components: %w", ErrHistoryWrite, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit: %w", ErrHistoryWrite, err)
	}
	return nil
}

// LoadAll implements Store.
func (s *PostgresStore) LoadAll(ctx context.Context) ([]Entry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT run_id::text, recorded_at, pages, size_gb, provider, retention_months, total
		FROM estimate_history ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var provider string
		if err := rows.Scan(&e.RunID, &e.Timestamp, &e.Pages, &e.SizeGB, &provider, &e.RetentionMonths, &e.Total); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		e.Provider = cost.Provider(provider)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// LoadAllComponents implements Store.
func (s *PostgresStore) LoadAllComponents(ctx context.Context) ([]ComponentRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT run_id::text, component, amount, provider, recorded_at
		FROM cost_components ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list components: %w", err)
	}
	defer rows.Close()

	var records []ComponentRecord
	for rows.Next() {
		var r ComponentRecord
		var provider string
		if err := rows.Scan(&r.RunID, &r.Component, &r.Amount, &provider, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("scan component: %w", err)
		}
		r.Provider = cost.Provider(provider)
		records = append(records, r)
	}
	return records, rows.Err()
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func runIDOrNew(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}
