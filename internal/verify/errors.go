package verify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"syscall"

	"commitverify/internal/models"
)

// VerificationError is returned when no verdict could be reached: the
// endpoint failed at the transport or HTTP layer, or answered with a body
// that is not a health response.
type VerificationError struct {
	Kind       models.ErrorKind
	URL        string
	StatusCode int
	Err        error
}

func (e *VerificationError) Error() string {
	switch e.Kind {
	case models.ErrorKindHTTPStatus:
		return fmt.Sprintf("Http Error: %s for url: %s", statusLine(e.StatusCode), e.URL)
	case models.ErrorKindConnection:
		return fmt.Sprintf("Connection error: %v", e.Err)
	case models.ErrorKindTimeout:
		return fmt.Sprintf("Timeout error: %v", e.Err)
	case models.ErrorKindMalformedResponse:
		return fmt.Sprintf("Malformed response from %s: %v", e.URL, e.Err)
	default:
		return fmt.Sprintf("failure with %s: %v", e.URL, e.Err)
	}
}

func (e *VerificationError) Unwrap() error {
	return e.Err
}

// Message is the operator-facing report line.
func (e *VerificationError) Message() string {
	return "ERROR: " + e.Error()
}

// isKind reports whether err is a VerificationError of the given kind.
func isKind(err error, kind models.ErrorKind) bool {
	var verr *VerificationError
	return errors.As(err, &verr) && verr.Kind == kind
}

// statusLine renders e.g. "503 Server Error: Service Unavailable".
func statusLine(code int) string {
	class := "Client"
	if code >= 500 {
		class = "Server"
	}
	text := http.StatusText(code)
	if text == "" {
		text = "Unknown Status"
	}
	return fmt.Sprintf("%d %s Error: %s", code, class, text)
}

func newHTTPStatusError(rawURL string, code int) *VerificationError {
	return &VerificationError{
		Kind:       models.ErrorKindHTTPStatus,
		URL:        rawURL,
		StatusCode: code,
	}
}

func newMalformedResponseError(rawURL string, err error) *VerificationError {
	return &VerificationError{
		Kind: models.ErrorKindMalformedResponse,
		URL:  rawURL,
		Err:  err,
	}
}

func newRequestError(rawURL string, err error) *VerificationError {
	return &VerificationError{
		Kind: models.ErrorKindRequest,
		URL:  rawURL,
		Err:  err,
	}
}

// classifyTransportError maps an error from sending the request or reading
// the body onto timeout, connection or generic request failures.
func classifyTransportError(rawURL string, err error) *VerificationError {
	kind := models.ErrorKindRequest
	switch {
	case isTimeout(err):
		kind = models.ErrorKindTimeout
	case isConnectionFailure(err):
		kind = models.ErrorKindConnection
	}
	return &VerificationError{Kind: kind, URL: rawURL, Err: err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isConnectionFailure(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}
