package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"NewsScanner/internal/domain"
	"NewsScanner/internal/ports"
)

const headlinesTable = "processed_headlines"

const schema = `CREATE TABLE IF NOT EXISTS processed_headlines (
    link       TEXT PRIMARY KEY,
    title      TEXT NOT NULL,
    symbol     TEXT NOT NULL DEFAULT '',
    confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
    status     TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresRepository persists processed headlines into Postgres.
type PostgresRepository struct {
	db *sql.DB
}

var _ ports.HeadlineRepository = (*PostgresRepository)(nil)

// Open connects through lib/pq and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// EnsureSchema creates the ledger table when missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// AlreadyProcessed returns a map with links that already exist in storage.
func (r *PostgresRepository) AlreadyProcessed(ctx context.Context, links []string) (map[string]bool, error) {
	if r.db == nil || len(links) == 0 {
		return map[string]bool{}, nil
	}

	query, args, err := selectProcessed(links).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query processed: %w", err)
	}

	result := make(map[string]bool)
	for rows.Next() {
		var link string
		if err := rows.Scan(&link); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan link: %w", err)
		}
		result[link] = true
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return result, nil
}

// SaveProcessed upserts the processed headline snapshot.
func (r *PostgresRepository) SaveProcessed(ctx context.Context, headline domain.ProcessedHeadline) error {
	if r.db == nil {
		return nil
	}

	query, args, err := upsertProcessed(headline).ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert processed: %w", err)
	}

	return nil
}

func selectProcessed(links []string) sq.SelectBuilder {
	return psql.Select("link").
		From(headlinesTable).
		Where(sq.Expr("link = ANY(?)", pq.StringArray(links)))
}

func upsertProcessed(h domain.ProcessedHeadline) sq.InsertBuilder {
	return psql.Insert(headlinesTable).
		Columns("link", "title", "symbol", "confidence", "status").
		Values(h.Link, h.Title, h.Symbol, h.Confidence, string(h.Status)).
		Suffix(`ON CONFLICT (link) DO UPDATE
              SET symbol = EXCLUDED.symbol,
                  confidence = EXCLUDED.confidence,
                  status = EXCLUDED.status,
                  updated_at = NOW()`)
}
