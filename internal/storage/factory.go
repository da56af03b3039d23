package storage

import (
	"fmt"
	"strings"

	"commitverify/internal/models"
)

// Factory creates history backends from configuration.
type Factory struct{}

// NewFactory creates a new storage factory
func NewFactory() *Factory {
	return &Factory{}
}

// Create instantiates a storage provider based on the provided configuration.
// Supported providers:
//   - json: single JSON file
//   - memory: process memory only
//   - postgres: PostgreSQL, shared between runners
//   - sqlite: local SQLite database file
func (f *Factory) Create(config models.HistoryConfig) (Storage, error) {
	if err := f.ValidateConfig(config); err != nil {
		return nil, err
	}

	storageConfig := Config{
		Type:             config.Type,
		Path:             config.Path,
		ConnectionString: config.DSN,
	}

	var (
		s   Storage
		err error
	)
	switch config.Type {
	case models.StorageTypeJSON:
		s, err = NewJSONStorage(storageConfig)
	case models.StorageTypeMemory:
		s, err = NewMemoryStorage(storageConfig)
	case models.StorageTypePostgres:
		s, err = NewPostgresStorage(storageConfig)
	default:
		s, err = NewSQLiteStorage(storageConfig)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s storage: %w", config.Type, err)
	}
	return s, nil
}

// GetSupportedProviders returns a list of all supported storage provider types
func (f *Factory) GetSupportedProviders() []string {
	return []string{models.StorageTypeJSON, models.StorageTypeMemory, models.StorageTypePostgres, models.StorageTypeSQLite}
}

// ValidateConfig validates that a storage configuration is valid for its type
func (f *Factory) ValidateConfig(config models.HistoryConfig) error {
	switch config.Type {
	case models.StorageTypeJSON:
		if config.Path == "" {
			return fmt.Errorf("path is required for JSON storage")
		}
	case models.StorageTypeMemory:
		// Memory storage requires no additional configuration
	case models.StorageTypePostgres, models.StorageTypeSQLite:
		if config.DSN == "" {
			return fmt.Errorf("database DSN is required for %s storage", config.Type)
		}
	default:
		return fmt.Errorf("unsupported storage type: %s (supported: %s)", config.Type, strings.Join(f.GetSupportedProviders(), ", "))
	}
	return nil
}
