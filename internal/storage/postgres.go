package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"commitverify/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS verifications (
	id                TEXT PRIMARY KEY,
	url               TEXT NOT NULL,
	expected_commit   TEXT NOT NULL,
	actual_commit     TEXT NOT NULL DEFAULT '',
	healthy           BOOLEAN NOT NULL,
	connection_status BOOLEAN NOT NULL,
	success           BOOLEAN NOT NULL,
	error_kind        TEXT NOT NULL DEFAULT '',
	message           TEXT NOT NULL,
	exit_code         INTEGER NOT NULL,
	duration_ms       BIGINT NOT NULL,
	checked_at        TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_verifications_url_checked_at ON verifications (url, checked_at DESC);
`

// uniqueViolation is the PostgreSQL SQLSTATE for duplicate keys.
const uniqueViolation = "23505"

// PostgresStorage stores the history in PostgreSQL, shared across runners.
type PostgresStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresStorage connects and creates the schema if needed.
func NewPostgresStorage(config Config) (*PostgresStorage, error) {
	if config.ConnectionString == "" {
		return nil, fmt.Errorf("connection string is required for PostgreSQL storage")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, config.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &PostgresStorage{pool: pool}, nil
}

func postgresTime(t time.Time) time.Time {
	return t
}

func (ps *PostgresStorage) RecordVerification(ctx context.Context, record *models.VerificationRecord) error {
	if record == nil || record.ID == "" {
		return fmt.Errorf("record ID is required")
	}

	query := "INSERT INTO verifications (" + recordColumns + ") VALUES (" + placeholders(12, true) + ")"
	_, err := ps.pool.Exec(ctx, query, recordArgs(record, record.CheckedAt)...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s", ErrDuplicateID, record.ID)
		}
		return fmt.Errorf("failed to insert verification: %w", err)
	}
	return nil
}

func (ps *PostgresStorage) GetVerification(ctx context.Context, id string) (*models.VerificationRecord, error) {
	row := ps.pool.QueryRow(ctx, "SELECT "+recordColumns+" FROM verifications WHERE id = $1", id)
	record, err := scanRecord(row, postgresTime)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get verification: %w", err)
	}
	return record, nil
}

func (ps *PostgresStorage) Verifications(ctx context.Context, url string, limit int) ([]*models.VerificationRecord, error) {
	var (
		query strings.Builder
		args  []any
	)
	query.WriteString("SELECT " + recordColumns + " FROM verifications")
	if url != "" {
		args = append(args, url)
		query.WriteString(" WHERE url = $" + strconv.Itoa(len(args)))
	}
	query.WriteString(" ORDER BY checked_at DESC, id DESC")
	if limit > 0 {
		args = append(args, limit)
		query.WriteString(" LIMIT $" + strconv.Itoa(len(args)))
	}

	rows, err := ps.pool.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query verifications: %w", err)
	}
	defer rows.Close()

	records := []*models.VerificationRecord{}
	for rows.Next() {
		record, err := scanRecord(rows, postgresTime)
		if err != nil {
			return nil, fmt.Errorf("failed to scan verification: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate verifications: %w", err)
	}
	return records, nil
}

func (ps *PostgresStorage) Ping(ctx context.Context) error {
	return ps.pool.Ping(ctx)
}

func (ps *PostgresStorage) Close() error {
	ps.pool.Close()
	return nil
}
