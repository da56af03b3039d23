package verify

import (
	"context"

	"commitverify/internal/models"
)

// Verifier checks that a deployed service reports the expected commit and
// a healthy state. Implementations always return a non-nil result.
type Verifier interface {
	Verify(ctx context.Context, req *models.VerificationRequest) *models.VerificationResult
}

// Recorder persists verification outcomes.
type Recorder interface {
	RecordVerification(ctx context.Context, record *models.VerificationRecord) error
}

// Ensure Service implements Verifier
var _ Verifier = (*Service)(nil)
