package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerificationRequest_Normalize(t *testing.T) {
	req := &VerificationRequest{
		URL:            "  http://svc/health ",
		ExpectedCommit: " abc123\n",
		MatchMode:      " PREFIX ",
	}
	req.Normalize()

	assert.Equal(t, "http://svc/health", req.URL)
	assert.Equal(t, "abc123", req.ExpectedCommit)
	assert.Equal(t, MatchModePrefix, req.MatchMode)
	assert.Equal(t, DefaultTimeout, req.Timeout)

	empty := &VerificationRequest{URL: "http://svc", ExpectedCommit: "x"}
	empty.Normalize()
	assert.Equal(t, MatchModeExact, empty.MatchMode)
}

func TestVerificationRequest_Validate(t *testing.T) {
	valid := func() *VerificationRequest {
		return &VerificationRequest{
			URL:            "http://svc/health",
			ExpectedCommit: "abc123",
			Timeout:        time.Second,
			MatchMode:      MatchModeExact,
		}
	}

	tests := []struct {
		name     string
		mutate   func(r *VerificationRequest)
		errorMsg string
	}{
		{name: "valid", mutate: func(r *VerificationRequest) {}},
		{name: "https", mutate: func(r *VerificationRequest) { r.URL = "https://svc.example.com/health" }},
		{name: "missing url", mutate: func(r *VerificationRequest) { r.URL = "" }, errorMsg: "url is required"},
		{name: "ftp scheme", mutate: func(r *VerificationRequest) { r.URL = "ftp://svc/health" }, errorMsg: "unsupported url scheme"},
		{name: "relative url", mutate: func(r *VerificationRequest) { r.URL = "/health" }, errorMsg: "unsupported url scheme"},
		{name: "no host", mutate: func(r *VerificationRequest) { r.URL = "http:///health" }, errorMsg: "url has no host"},
		{name: "missing commit", mutate: func(r *VerificationRequest) { r.ExpectedCommit = "" }, errorMsg: "expected commit is required"},
		{name: "negative timeout", mutate: func(r *VerificationRequest) { r.Timeout = -time.Second }, errorMsg: "timeout must be positive"},
		{name: "bad mode", mutate: func(r *VerificationRequest) { r.MatchMode = "regex" }, errorMsg: "invalid match mode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(req)
			err := req.Validate()
			if tt.errorMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestErrorKind_ExitCode(t *testing.T) {
	assert.Equal(t, ExitOK, ErrorKindNone.ExitCode())
	assert.Equal(t, ExitFailure, ErrorKindHTTPStatus.ExitCode())
	assert.Equal(t, ExitFailure, ErrorKindConnection.ExitCode())
	assert.Equal(t, ExitFailure, ErrorKindTimeout.ExitCode())
	assert.Equal(t, ExitFailure, ErrorKindRequest.ExitCode())
	assert.Equal(t, ExitMalformed, ErrorKindMalformedResponse.ExitCode())
}

func TestVerificationResult_Outcome(t *testing.T) {
	tests := []struct {
		name   string
		result VerificationResult
		want   string
	}{
		{name: "pass", result: VerificationResult{Success: true, Healthy: true, ConnectionStatus: true}, want: "pass"},
		{name: "error", result: VerificationResult{ErrorKind: ErrorKindTimeout, Err: errors.New("x")}, want: "error"},
		{name: "unhealthy", result: VerificationResult{Healthy: false, ConnectionStatus: true}, want: "unhealthy"},
		{name: "disconnected", result: VerificationResult{Healthy: true, ConnectionStatus: false}, want: "unhealthy"},
		{name: "mismatch", result: VerificationResult{Healthy: true, ConnectionStatus: true}, want: "mismatch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.result.Outcome())
		})
	}
}

func TestHealthResponse_Ready(t *testing.T) {
	assert.True(t, HealthResponse{Healthy: true, ConnectionStatus: true}.Ready())
	assert.False(t, HealthResponse{Healthy: true}.Ready())
	assert.False(t, HealthResponse{ConnectionStatus: true}.Ready())
}

func TestNewVerificationRecord(t *testing.T) {
	checkedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	result := &VerificationResult{
		Success:          false,
		Message:          "ERROR: COMMIT_ID: abc123 is not installed, current installed COMMIT_ID: def456",
		ExitCode:         ExitFailure,
		URL:              "http://svc/health",
		ExpectedCommit:   "abc123",
		ActualCommit:     "def456",
		Healthy:          true,
		ConnectionStatus: true,
		Duration:         1500 * time.Millisecond,
		CheckedAt:        checkedAt,
	}

	record := NewVerificationRecord(result)
	assert.NotEmpty(t, record.ID)
	assert.Equal(t, "def456", record.ActualCommit)
	assert.Equal(t, int64(1500), record.DurationMS)
	assert.Equal(t, time.UTC, record.CheckedAt.Location())
	assert.True(t, record.CheckedAt.Equal(checkedAt))

	other := NewVerificationRecord(result)
	assert.NotEqual(t, record.ID, other.ID)
}
