package models

import (
	"time"

	"github.com/google/uuid"
)

// VerificationRecord is the persisted form of a VerificationResult.
type VerificationRecord struct {
	ID               string    `json:"id"`
	URL              string    `json:"url"`
	ExpectedCommit   string    `json:"expected_commit"`
	ActualCommit     string    `json:"actual_commit"`
	Healthy          bool      `json:"healthy"`
	ConnectionStatus bool      `json:"connection_status"`
	Success          bool      `json:"success"`
	ErrorKind        ErrorKind `json:"error_kind,omitempty"`
	Message          string    `json:"message"`
	ExitCode         int       `json:"exit_code"`
	DurationMS       int64     `json:"duration_ms"`
	CheckedAt        time.Time `json:"checked_at"`
}

// NewVerificationRecord converts a result into a record with a fresh ID.
func NewVerificationRecord(result *VerificationResult) *VerificationRecord {
	checkedAt := result.CheckedAt
	if checkedAt.IsZero() {
		checkedAt = time.Now()
	}
	return &VerificationRecord{
		ID:               uuid.NewString(),
		URL:              result.URL,
		ExpectedCommit:   result.ExpectedCommit,
		ActualCommit:     result.ActualCommit,
		Healthy:          result.Healthy,
		ConnectionStatus: result.ConnectionStatus,
		Success:          result.Success,
		ErrorKind:        result.ErrorKind,
		Message:          result.Message,
		ExitCode:         result.ExitCode,
		DurationMS:       result.Duration.Milliseconds(),
		CheckedAt:        checkedAt.UTC(),
	}
}
