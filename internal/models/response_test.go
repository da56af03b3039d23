package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewErrorResponse(t *testing.T) {
	before := time.Now()
	resp := NewErrorResponse("state not found", ErrorCodeNotFound)

	assert.Equal(t, "error", resp.Error)
	assert.Equal(t, "state not found", resp.Message)
	assert.Equal(t, ErrorCodeNotFound, resp.Code)
	assert.False(t, resp.Timestamp.Before(before))
}

func TestErrorResponse_JSON(t *testing.T) {
	data, err := json.Marshal(NewErrorResponse("boom", ""))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "error", decoded["error"])
	assert.Equal(t, "boom", decoded["message"])
	assert.NotContains(t, decoded, "code")
	assert.Contains(t, decoded, "timestamp")
}
