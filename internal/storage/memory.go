package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"commitverify/internal/models"
)

// MemoryStorage keeps the history in process memory. It suits tests and
// one-shot runs where nothing should outlive the process.
type MemoryStorage struct {
	mu      sync.RWMutex
	records []*models.VerificationRecord
	byID    map[string]int
}

// NewMemoryStorage creates a new memory-based storage instance
func NewMemoryStorage(config Config) (*MemoryStorage, error) {
	return &MemoryStorage{
		byID: make(map[string]int),
	}, nil
}

func (m *MemoryStorage) RecordVerification(ctx context.Context, record *models.VerificationRecord) error {
	if record == nil || record.ID == "" {
		return fmt.Errorf("record ID is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byID[record.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, record.ID)
	}

	recordCopy := *record
	m.byID[record.ID] = len(m.records)
	m.records = append(m.records, &recordCopy)
	return nil
}

func (m *MemoryStorage) GetVerification(ctx context.Context, id string) (*models.VerificationRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idx, exists := m.byID[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	recordCopy := *m.records[idx]
	return &recordCopy, nil
}

func (m *MemoryStorage) Verifications(ctx context.Context, url string, limit int) ([]*models.VerificationRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return selectRecords(m.records, url, limit), nil
}

func (m *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}

func (m *MemoryStorage) Close() error {
	return nil
}

// selectRecords filters by url, sorts newest first and applies limit. The
// returned records are copies.
func selectRecords(records []*models.VerificationRecord, url string, limit int) []*models.VerificationRecord {
	selected := make([]*models.VerificationRecord, 0, len(records))
	for _, r := range records {
		if url != "" && r.URL != url {
			continue
		}
		recordCopy := *r
		selected = append(selected, &recordCopy)
	}

	// Stable keeps insertion order for equal timestamps, reversed below.
	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].CheckedAt.Before(selected[j].CheckedAt)
	})
	for i, j := 0, len(selected)-1; i < j; i, j = i+1, j-1 {
		selected[i], selected[j] = selected[j], selected[i]
	}

	if limit > 0 && len(selected) > limit {
		selected = selected[:limit]
	}
	return selected
}
