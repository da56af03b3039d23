package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"commitverify/internal/models"

	_ "modernc.org/sqlite"
)

// checked_at is stored as Unix nanoseconds so ordering is numeric.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS verifications (
	id                TEXT PRIMARY KEY,
	url               TEXT NOT NULL,
	expected_commit   TEXT NOT NULL,
	actual_commit     TEXT NOT NULL DEFAULT '',
	healthy           INTEGER NOT NULL,
	connection_status INTEGER NOT NULL,
	success           INTEGER NOT NULL,
	error_kind        TEXT NOT NULL DEFAULT '',
	message           TEXT NOT NULL,
	exit_code         INTEGER NOT NULL,
	duration_ms       INTEGER NOT NULL,
	checked_at        INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_verifications_url_checked_at ON verifications (url, checked_at DESC);
`

// SQLiteStorage stores the history in a SQLite database file.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens the database and creates the schema if needed.
func NewSQLiteStorage(config Config) (*SQLiteStorage, error) {
	if config.ConnectionString == "" {
		return nil, fmt.Errorf("connection string is required for SQLite storage")
	}

	db, err := sql.Open("sqlite", config.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer at a time; SQLite serializes anyway.
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func sqliteTime(ns int64) time.Time {
	return time.Unix(0, ns)
}

func (ss *SQLiteStorage) RecordVerification(ctx context.Context, record *models.VerificationRecord) error {
	if record == nil || record.ID == "" {
		return fmt.Errorf("record ID is required")
	}

	query := "INSERT INTO verifications (" + recordColumns + ") VALUES (" + placeholders(12, false) + ")"
	_, err := ss.db.ExecContext(ctx, query, recordArgs(record, record.CheckedAt.UnixNano())...)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: %s", ErrDuplicateID, record.ID)
		}
		return fmt.Errorf("failed to insert verification: %w", err)
	}
	return nil
}

func (ss *SQLiteStorage) GetVerification(ctx context.Context, id string) (*models.VerificationRecord, error) {
	row := ss.db.QueryRowContext(ctx, "SELECT "+recordColumns+" FROM verifications WHERE id = ?", id)
	record, err := scanRecord(row, sqliteTime)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get verification: %w", err)
	}
	return record, nil
}

func (ss *SQLiteStorage) Verifications(ctx context.Context, url string, limit int) ([]*models.VerificationRecord, error) {
	var (
		query strings.Builder
		args  []any
	)
	query.WriteString("SELECT " + recordColumns + " FROM verifications")
	if url != "" {
		query.WriteString(" WHERE url = ?")
		args = append(args, url)
	}
	query.WriteString(" ORDER BY checked_at DESC, rowid DESC")
	if limit > 0 {
		query.WriteString(" LIMIT ?")
		args = append(args, limit)
	}

	rows, err := ss.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query verifications: %w", err)
	}
	defer rows.Close()

	records := []*models.VerificationRecord{}
	for rows.Next() {
		record, err := scanRecord(rows, sqliteTime)
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

func (ss *SQLiteStorage) Ping(ctx context.Context) error {
	return ss.db.PingContext(ctx)
}

// Close closes the storage connection
func (ss *SQLiteStorage) Close() error {
	return ss.db.Close()
}
