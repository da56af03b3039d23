package storage

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"commitverify/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func newTestRecord(url string, checkedAt time.Time, success bool) *models.VerificationRecord {
	record := &models.VerificationRecord{
		ID:               uuid.NewString(),
		URL:              url,
		ExpectedCommit:   "abc123",
		ActualCommit:     "abc123",
		Healthy:          true,
		ConnectionStatus: true,
		Success:          success,
		Message:          "INFO: COMMIT_ID: abc123 is installed and available on " + url,
		ExitCode:         models.ExitOK,
		DurationMS:       42,
		CheckedAt:        checkedAt,
	}
	if !success {
		record.ActualCommit = ""
		record.Healthy = false
		record.ConnectionStatus = false
		record.ErrorKind = models.ErrorKindConnection
		record.Message = "ERROR: Connection error: connection refused"
		record.ExitCode = models.ExitFailure
	}
	return record
}

// testStorageContract runs the behaviour every backend must share.
func testStorageContract(t *testing.T, s Storage) {
	ctx := context.Background()
	// Unique per run so shared databases do not leak between runs.
	urlA := "https://a.example.com/" + uuid.NewString()
	urlB := "https://b.example.com/" + uuid.NewString()

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, s.Ping(ctx))
	})

	t.Run("Empty history", func(t *testing.T) {
		records, err := s.Verifications(ctx, urlA, 0)
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	first := newTestRecord(urlA, baseTime, true)
	second := newTestRecord(urlA, baseTime.Add(time.Minute), false)
	third := newTestRecord(urlA, baseTime.Add(2*time.Minute), true)
	other := newTestRecord(urlB, baseTime.Add(30*time.Second), true)

	t.Run("Record and get", func(t *testing.T) {
		for _, r := range []*models.VerificationRecord{second, first, third, other} {
			require.NoError(t, s.RecordVerification(ctx, r))
		}

		got, err := s.GetVerification(ctx, second.ID)
		require.NoError(t, err)
		assert.Equal(t, second.ID, got.ID)
		assert.Equal(t, second.URL, got.URL)
		assert.Equal(t, second.ExpectedCommit, got.ExpectedCommit)
		assert.Equal(t, "", got.ActualCommit)
		assert.False(t, got.Success)
		assert.False(t, got.Healthy)
		assert.False(t, got.ConnectionStatus)
		assert.Equal(t, models.ErrorKindConnection, got.ErrorKind)
		assert.Equal(t, second.Message, got.Message)
		assert.Equal(t, models.ExitFailure, got.ExitCode)
		assert.Equal(t, int64(42), got.DurationMS)
		assert.True(t, second.CheckedAt.Equal(got.CheckedAt), "checked_at %v != %v", got.CheckedAt, second.CheckedAt)
	})

	t.Run("Get missing record", func(t *testing.T) {
		_, err := s.GetVerification(ctx, uuid.NewString())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Duplicate ID", func(t *testing.T) {
		dup := *first
		err := s.RecordVerification(ctx, &dup)
		assert.ErrorIs(t, err, ErrDuplicateID)
	})

	t.Run("Missing ID", func(t *testing.T) {
		err := s.RecordVerification(ctx, &models.VerificationRecord{URL: urlA})
		assert.Error(t, err)
	})

	t.Run("Newest first for one URL", func(t *testing.T) {
		records, err := s.Verifications(ctx, urlA, 0)
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, third.ID, records[0].ID)
		assert.Equal(t, second.ID, records[1].ID)
		assert.Equal(t, first.ID, records[2].ID)
	})

	t.Run("Limit", func(t *testing.T) {
		records, err := s.Verifications(ctx, urlA, 2)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, third.ID, records[0].ID)
		assert.Equal(t, second.ID, records[1].ID)
	})

	t.Run("Filter by URL", func(t *testing.T) {
		records, err := s.Verifications(ctx, urlB, 10)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, other.ID, records[0].ID)
	})

	t.Run("Returned records are copies", func(t *testing.T) {
		got, err := s.GetVerification(ctx, first.ID)
		require.NoError(t, err)
		got.Message = "changed"

		again, err := s.GetVerification(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, first.Message, again.Message)
	})
}

func testStorageConcurrentWrites(t *testing.T, s Storage) {
	ctx := context.Background()
	url := "https://concurrent.example.com/" + uuid.NewString()

	const writers = 10
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			record := newTestRecord(url, baseTime.Add(time.Duration(i)*time.Second), true)
			if err := s.RecordVerification(ctx, record); err != nil {
				errs <- fmt.Errorf("writer %d: %w", i, err)
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}

	records, err := s.Verifications(ctx, url, 0)
	require.NoError(t, err)
	assert.Len(t, records, writers)
}
