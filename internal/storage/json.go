package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"commitverify/internal/models"
)

// JSONStorage keeps the history in a single JSON file, rewritten atomically
// on every record. Suitable for CI runners that cache a workspace directory.
type JSONStorage struct {
	filePath string
	mu       sync.RWMutex
}

// JSONData represents the structure of data stored in JSON format
type JSONData struct {
	Verifications []*models.VerificationRecord `json:"verifications"`
	LastUpdated   time.Time                    `json:"last_updated"`
}

// NewJSONStorage creates a new JSON-based storage instance
func NewJSONStorage(config Config) (*JSONStorage, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("path is required for JSON storage")
	}

	storage := &JSONStorage{
		filePath: config.Path,
	}

	if err := storage.ensureFileExists(); err != nil {
		return nil, fmt.Errorf("failed to ensure file exists: %w", err)
	}

	// Fail early on a corrupt file
	if _, err := storage.loadData(); err != nil {
		return nil, fmt.Errorf("failed to load initial data: %w", err)
	}

	return storage, nil
}

// ensureFileExists creates the JSON file with empty data if it doesn't exist
func (j *JSONStorage) ensureFileExists() error {
	if _, err := os.Stat(j.filePath); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(j.filePath), 0700); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}

		return j.saveData(&JSONData{Verifications: []*models.VerificationRecord{}})
	}
	return nil
}

// loadData reads the file. Callers hold j.mu.
func (j *JSONStorage) loadData() (*JSONData, error) {
	fileData, err := os.ReadFile(j.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var data JSONData
	if err := json.Unmarshal(fileData, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return &data, nil
}

// saveData writes to a temp file and renames it over the original.
func (j *JSONStorage) saveData(data *JSONData) error {
	data.LastUpdated = time.Now().UTC()

	fileData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(j.filePath), ".verifications-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(fileData); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0600); err != nil {
		return fmt.Errorf("failed to set file mode: %w", err)
	}

	if err := os.Rename(tmp.Name(), j.filePath); err != nil {
		return fmt.Errorf("failed to replace file: %w", err)
	}
	return nil
}

func (j *JSONStorage) RecordVerification(ctx context.Context, record *models.VerificationRecord) error {
	if record == nil || record.ID == "" {
		return fmt.Errorf("record ID is required")
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	data, err := j.loadData()
	if err != nil {
		return err
	}

	for _, existing := range data.Verifications {
		if existing.ID == record.ID {
			return fmt.Errorf("%w: %s", ErrDuplicateID, record.ID)
		}
	}

	recordCopy := *record
	data.Verifications = append(data.Verifications, &recordCopy)
	return j.saveData(data)
}

func (j *JSONStorage) GetVerification(ctx context.Context, id string) (*models.VerificationRecord, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	data, err := j.loadData()
	if err != nil {
		return nil, err
	}

	for _, r := range data.Verifications {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

func (j *JSONStorage) Verifications(ctx context.Context, url string, limit int) ([]*models.VerificationRecord, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	data, err := j.loadData()
	if err != nil {
		return nil, err
	}
	return selectRecords(data.Verifications, url, limit), nil
}

func (j *JSONStorage) Ping(ctx context.Context) error {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if _, err := os.Stat(j.filePath); err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}
	return nil
}

func (j *JSONStorage) Close() error {
	return nil
}
