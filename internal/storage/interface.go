package storage

import (
	"context"

	"commitverify/internal/models"
)

// Storage persists the verification history. Implementations are safe for
// concurrent use.
type Storage interface {
	// RecordVerification stores a new record. Records are immutable; storing
	// an existing ID returns ErrDuplicateID.
	RecordVerification(ctx context.Context, record *models.VerificationRecord) error

	// GetVerification retrieves a record by its ID
	GetVerification(ctx context.Context, id string) (*models.VerificationRecord, error)

	// Verifications returns records newest first. An empty url matches every
	// endpoint; a limit <= 0 returns all matching records.
	Verifications(ctx context.Context, url string, limit int) ([]*models.VerificationRecord, error)

	// Ping checks that the backend is reachable
	Ping(ctx context.Context) error

	// Close releases the backend's resources
	Close() error
}

// Config holds configuration for storage backends
type Config struct {
	// Type specifies the storage backend type
	Type string `json:"type" yaml:"type"`

	// Path is used for file-based storage backends
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// ConnectionString is used for database backends
	ConnectionString string `json:"connection_string,omitempty" yaml:"connection_string,omitempty"`
}
