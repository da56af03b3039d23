package storage

import (
	"strconv"
	"strings"
	"time"

	"commitverify/internal/models"
)

// recordColumns is the column order used by every SQL backend.
const recordColumns = "id, url, expected_commit, actual_commit, healthy, connection_status, success, error_kind, message, exit_code, duration_ms, checked_at"

// rowScanner is satisfied by *sql.Row, *sql.Rows and pgx.Row.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRecord reads one row in recordColumns order. checkedAt converts the
// backend's timestamp representation.
func scanRecord[T any](row rowScanner, checkedAt func(T) time.Time) (*models.VerificationRecord, error) {
	var (
		r         models.VerificationRecord
		errorKind string
		ts        T
	)
	err := row.Scan(
		&r.ID,
		&r.URL,
		&r.ExpectedCommit,
		&r.ActualCommit,
		&r.Healthy,
		&r.ConnectionStatus,
		&r.Success,
		&errorKind,
		&r.Message,
		&r.ExitCode,
		&r.DurationMS,
		&ts,
	)
	if err != nil {
		return nil, err
	}
	r.ErrorKind = models.ErrorKind(errorKind)
	r.CheckedAt = checkedAt(ts).UTC()
	return &r, nil
}

// recordArgs returns insert arguments in recordColumns order with the
// timestamp already converted for the backend.
func recordArgs(r *models.VerificationRecord, checkedAt any) []any {
	return []any{
		r.ID,
		r.URL,
		r.ExpectedCommit,
		r.ActualCommit,
		r.Healthy,
		r.ConnectionStatus,
		r.Success,
		string(r.ErrorKind),
		r.Message,
		r.ExitCode,
		r.DurationMS,
		checkedAt,
	}
}

// placeholders renders "?, ?, ?" or "$1, $2, $3".
func placeholders(n int, numbered bool) string {
	parts := make([]string, n)
	for i := range parts {
		if numbered {
			parts[i] = "$" + strconv.Itoa(i+1)
		} else {
			parts[i] = "?"
		}
	}
	return strings.Join(parts, ", ")
}
