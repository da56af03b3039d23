// Package verify implements the deployment commit check: one GET against a
// health endpoint, classification of what went wrong, and the verdict.
package verify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"commitverify/internal/models"
)

// Service performs verifications over HTTP.
type Service struct {
	client       *http.Client
	userAgent    string
	maxBodyBytes int64
	recorder     Recorder
	logger       *slog.Logger
	now          func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithHTTPClient replaces the default HTTP client. Its Timeout, if any,
// applies in addition to the per-request timeout.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Service) {
		s.client = client
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(s *Service) {
		if ua != "" {
			s.userAgent = ua
		}
	}
}

// WithMaxBodyBytes caps how much of the response body is read.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithRecorder stores every result. Recording failures are logged and never
// change the verdict.
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		s.recorder = r
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates a verifier. Without options it uses a fresh HTTP client
// and reads at most models.DefaultMaxBodyBytes of the response.
func NewService(opts ...Option) *Service {
	s := &Service{
		client:       &http.Client{},
		userAgent:    "verify-commit",
		maxBodyBytes: models.DefaultMaxBodyBytes,
		logger:       slog.Default(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Verify runs one check. Transport failures, HTTP error statuses and
// malformed bodies are reported through result.ErrorKind and result.Err;
// there are no retries.
func (s *Service) Verify(ctx context.Context, req *models.VerificationRequest) *models.VerificationResult {
	start := s.now()
	req.Normalize()

	result := &models.VerificationResult{
		URL:            req.URL,
		ExpectedCommit: req.ExpectedCommit,
		CheckedAt:      start.UTC(),
	}

	health, err := s.check(ctx, req)
	if err != nil {
		var verr *VerificationError
		if !errors.As(err, &verr) {
			verr = newRequestError(req.URL, err)
		}
		result.ErrorKind = verr.Kind
		result.Err = verr
		result.Message = verr.Message()
		s.logger.Warn("Verification failed",
			"url", req.URL,
			"error_kind", string(verr.Kind),
			"status_code", verr.StatusCode,
			"error", verr.Err)
	} else {
		s.evaluate(req, health, result)
	}

	result.ExitCode = result.ErrorKind.ExitCode()
	if result.ErrorKind == models.ErrorKindNone && !result.Success {
		result.ExitCode = models.ExitFailure
	}
	result.Duration = s.now().Sub(start)

	s.record(ctx, result)
	return result
}

func (s *Service) evaluate(req *models.VerificationRequest, health *models.HealthResponse, result *models.VerificationResult) {
	result.ActualCommit = health.Commit
	result.Healthy = health.Healthy
	result.ConnectionStatus = health.ConnectionStatus

	matcher, err := MatcherFor(req.MatchMode)
	if err != nil {
		// Validate already rejected unknown modes.
		matcher = matchExact
	}
	matched, err := matcher(req.ExpectedCommit, health.Commit)
	if err != nil {
		s.logger.Warn("Commit comparison failed",
			"match_mode", req.MatchMode,
			"expected", req.ExpectedCommit,
			"actual", health.Commit,
			"error", err)
	}

	result.Success = health.Ready() && matched
	if result.Success {
		result.Message = successMessage(req.ExpectedCommit, req.URL)
		s.logger.Info("Commit verified", "url", req.URL, "commit", health.Commit)
		return
	}

	result.Message = failureMessage(req.ExpectedCommit, health.Commit)
	s.logger.Warn("Commit not verified",
		"url", req.URL,
		"expected", req.ExpectedCommit,
		"actual", health.Commit,
		"matched", matched,
		"healthy", health.Healthy,
		"connection_status", health.ConnectionStatus)
}

// check performs the GET and decodes the health body.
func (s *Service) check(ctx context.Context, req *models.VerificationRequest) (*models.HealthResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, newRequestError(req.URL, err)
	}

	ctx, cancel := context.WithTimeout(ctx, req.Timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, newRequestError(req.URL, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", s.userAgent)

	s.logger.Debug("Requesting health endpoint", "url", req.URL, "timeout", req.Timeout)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, classifyTransportError(req.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, s.maxBodyBytes))
		return nil, newHTTPStatusError(req.URL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBodyBytes+1))
	if err != nil {
		return nil, classifyTransportError(req.URL, err)
	}
	if int64(len(body)) > s.maxBodyBytes {
		return nil, newMalformedResponseError(req.URL, fmt.Errorf("response body exceeds %d bytes", s.maxBodyBytes))
	}

	health, err := DecodeHealth(body)
	if err != nil {
		return nil, newMalformedResponseError(req.URL, err)
	}
	return health, nil
}

// wireHealth distinguishes absent or null fields from zero values.
type wireHealth struct {
	Commit           *string `json:"commit"`
	Healthy          *bool   `json:"healthy"`
	ConnectionStatus *bool   `json:"connection_status"`
}

// DecodeHealth parses a health body, requiring all three fields with their
// JSON types. Unknown fields are ignored.
func DecodeHealth(body []byte) (*models.HealthResponse, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, errors.New("empty response body")
	}
	if trimmed[0] != '{' {
		return nil, errors.New("response body is not a JSON object")
	}

	var wire wireHealth
	if err := json.Unmarshal(trimmed, &wire); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	var missing []string
	if wire.Commit == nil {
		missing = append(missing, "commit")
	}
	if wire.Healthy == nil {
		missing = append(missing, "healthy")
	}
	if wire.ConnectionStatus == nil {
		missing = append(missing, "connection_status")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing field(s): %s", strings.Join(missing, ", "))
	}

	return &models.HealthResponse{
		Commit:           *wire.Commit,
		Healthy:          *wire.Healthy,
		ConnectionStatus: *wire.ConnectionStatus,
	}, nil
}

func (s *Service) record(ctx context.Context, result *models.VerificationResult) {
	if s.recorder == nil {
		return
	}
	// The request deadline may have expired; recording gets its own budget.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	record := models.NewVerificationRecord(result)
	if err := s.recorder.RecordVerification(ctx, record); err != nil {
		s.logger.Warn("Failed to record verification", "id", record.ID, "error", err)
	}
}
