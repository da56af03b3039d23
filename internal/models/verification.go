// Package models provides the data structures shared by the verifier, its
// history storage and the health stub.
package models

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"
)

// Commit match modes
const (
	MatchModeExact  = "exact"  // reported commit equals the expected one
	MatchModePrefix = "prefix" // short SHA on either side
	MatchModeSemver = "semver" // expected is a semver constraint
)

// MinPrefixLength is the shortest abbreviated commit accepted by prefix matching.
const MinPrefixLength = 7

// Process exit codes
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitUsage     = 2
	ExitMalformed = 3
)

// ErrorKind classifies why a verification could not reach a verdict.
type ErrorKind string

const (
	ErrorKindNone              ErrorKind = ""
	ErrorKindHTTPStatus        ErrorKind = "http_status"
	ErrorKindConnection        ErrorKind = "connection"
	ErrorKindTimeout           ErrorKind = "timeout"
	ErrorKindRequest           ErrorKind = "request"
	ErrorKindMalformedResponse ErrorKind = "malformed_response"
)

// ExitCode maps an error kind to the process exit status.
func (k ErrorKind) ExitCode() int {
	switch k {
	case ErrorKindNone:
		return ExitOK
	case ErrorKindMalformedResponse:
		return ExitMalformed
	default:
		return ExitFailure
	}
}

// IsValidMatchMode reports whether mode is a supported match mode.
func IsValidMatchMode(mode string) bool {
	return slices.Contains([]string{MatchModeExact, MatchModePrefix, MatchModeSemver}, mode)
}

// VerificationRequest describes one deployment check.
type VerificationRequest struct {
	URL            string        `json:"url"`
	ExpectedCommit string        `json:"expected_commit"`
	Timeout        time.Duration `json:"timeout"`
	MatchMode      string        `json:"match_mode"`
}

// Normalize trims inputs and fills defaults.
func (r *VerificationRequest) Normalize() {
	r.URL = strings.TrimSpace(r.URL)
	r.ExpectedCommit = strings.TrimSpace(r.ExpectedCommit)
	r.MatchMode = strings.ToLower(strings.TrimSpace(r.MatchMode))
	if r.MatchMode == "" {
		r.MatchMode = MatchModeExact
	}
	if r.Timeout == 0 {
		r.Timeout = DefaultTimeout
	}
}

func (r *VerificationRequest) Validate() error {
	if r.URL == "" {
		return errors.New("url is required")
	}

	u, err := url.Parse(r.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("url has no host")
	}

	if r.ExpectedCommit == "" {
		return errors.New("expected commit is required")
	}

	if r.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}

	if !IsValidMatchMode(r.MatchMode) {
		return fmt.Errorf("invalid match mode: %s", r.MatchMode)
	}

	return nil
}

// HealthResponse is the body served by a health-check endpoint.
type HealthResponse struct {
	Commit           string `json:"commit"`
	Healthy          bool   `json:"healthy"`
	ConnectionStatus bool   `json:"connection_status"`
}

// Ready reports whether the service considers itself healthy and connected.
func (h HealthResponse) Ready() bool {
	return h.Healthy && h.ConnectionStatus
}

// VerificationResult is the verdict of one check. Message is the
// human-readable line reported to the operator.
type VerificationResult struct {
	Success          bool          `json:"success"`
	Message          string        `json:"message"`
	ExitCode         int           `json:"exit_code"`
	URL              string        `json:"url"`
	ExpectedCommit   string        `json:"expected_commit"`
	ActualCommit     string        `json:"actual_commit,omitempty"`
	Healthy          bool          `json:"healthy"`
	ConnectionStatus bool          `json:"connection_status"`
	ErrorKind        ErrorKind     `json:"error_kind,omitempty"`
	Err              error         `json:"-"`
	Duration         time.Duration `json:"duration"`
	CheckedAt        time.Time     `json:"checked_at"`
}

// Responded reports whether the endpoint returned a decodable health body.
func (r *VerificationResult) Responded() bool {
	return r.ErrorKind == ErrorKindNone
}

// Outcome is a low-cardinality label for metrics.
func (r *VerificationResult) Outcome() string {
	switch {
	case r.Success:
		return "pass"
	case r.ErrorKind != ErrorKindNone:
		return "error"
	case !r.Healthy || !r.ConnectionStatus:
		return "unhealthy"
	default:
		return "mismatch"
	}
}
