package api

import (
	"sync"
	"testing"

	"commitverify/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateStore_Update(t *testing.T) {
	store := NewStateStore(healthyState())

	commit := "def456"
	state, err := store.Update(models.StubStateUpdate{Commit: &commit})
	require.NoError(t, err)
	assert.Equal(t, "def456", state.Commit)
	assert.Equal(t, state, store.Get())
}

func TestStateStore_UpdateInvalid(t *testing.T) {
	store := NewStateStore(healthyState())

	status := 1000
	_, err := store.Update(models.StubStateUpdate{FailStatus: &status})
	assert.Error(t, err)
	assert.Equal(t, healthyState(), store.Get())
}

func TestStateStore_Concurrent(t *testing.T) {
	store := NewStateStore(healthyState())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			healthy := i%2 == 0
			_, err := store.Update(models.StubStateUpdate{Healthy: &healthy})
			assert.NoError(t, err)
		}(i)
		go func() {
			defer wg.Done()
			_ = store.Get()
		}()
	}
	wg.Wait()

	assert.Equal(t, "abc123", store.Get().Commit)
}
