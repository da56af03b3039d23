package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStubState(t *testing.T) {
	state := NewStubState(StubConfig{
		Commit:           "abc123",
		Healthy:          true,
		ConnectionStatus: false,
		FailStatus:       503,
	})

	assert.Equal(t, "abc123", state.Commit)
	assert.True(t, state.Healthy)
	assert.False(t, state.ConnectionStatus)
	assert.True(t, state.Failing())
	assert.Equal(t, HealthResponse{Commit: "abc123", Healthy: true, ConnectionStatus: false}, state.Health())
}

func TestStubState_Apply(t *testing.T) {
	commit := "def456"
	unhealthy := false
	noFail := 0

	tests := []struct {
		name   string
		update StubStateUpdate
		want   StubState
	}{
		{
			name:   "empty update keeps state",
			update: StubStateUpdate{},
			want:   StubState{Commit: "abc123", Healthy: true, ConnectionStatus: true, FailStatus: 500},
		},
		{
			name:   "commit only",
			update: StubStateUpdate{Commit: &commit},
			want:   StubState{Commit: "def456", Healthy: true, ConnectionStatus: true, FailStatus: 500},
		},
		{
			name:   "health flags and fail status",
			update: StubStateUpdate{Healthy: &unhealthy, ConnectionStatus: &unhealthy, FailStatus: &noFail},
			want:   StubState{Commit: "abc123", Healthy: false, ConnectionStatus: false, FailStatus: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := StubState{Commit: "abc123", Healthy: true, ConnectionStatus: true, FailStatus: 500}
			state.Apply(tt.update)
			assert.Equal(t, tt.want, state)
		})
	}
}

func TestStubStateUpdate_Validate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"no fail status", `{"commit": "abc"}`, false},
		{"clear fail status", `{"fail_status": 0}`, false},
		{"server error", `{"fail_status": 503}`, false},
		{"too low", `{"fail_status": 42}`, true},
		{"redirect", `{"fail_status": 302}`, true},
		{"no content", `{"fail_status": 204}`, true},
		{"client error", `{"fail_status": 404}`, false},
		{"too high", `{"fail_status": 600}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var update StubStateUpdate
			require.NoError(t, json.Unmarshal([]byte(tt.body), &update))
			err := update.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStubStateUpdate_DistinguishesFalseFromAbsent(t *testing.T) {
	var update StubStateUpdate
	require.NoError(t, json.Unmarshal([]byte(`{"healthy": false}`), &update))

	require.NotNil(t, update.Healthy)
	assert.False(t, *update.Healthy)
	assert.Nil(t, update.ConnectionStatus)
	assert.Nil(t, update.Commit)
}
