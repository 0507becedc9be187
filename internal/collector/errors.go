// Package collector moves validated events from the bounded queue to the
// VES collector over HTTP.
package collector

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrQueueFull is returned by Enqueue when capacity or max_age limits reject the event.
	ErrQueueFull = errors.New("queue limits reached; rejecting event")
	// ErrQueueClosed is returned once the queue stopped admitting events.
	ErrQueueClosed = errors.New("queue is closed")
	// ErrBreakerOpen is the transient error reported while the circuit breaker rejects sends.
	ErrBreakerOpen = errors.New("collector circuit breaker open")
)

// TransportError describes one failed delivery attempt.
// Params: Permanent marks errors that must not be retried; StatusCode is 0 without a response.
// Returns: error with classification for the retry loop.
type TransportError struct {
	Permanent  bool
	StatusCode int
	Err        error
}

// Error implements error.
func (e *TransportError) Error() string {
	kind := "transient"
	if e.Permanent {
		kind = "permanent"
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s collector error: status %d: %v", kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s collector error: %v", kind, e.Err)
}

// Unwrap returns the underlying cause.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsPermanent reports whether err must not be retried.
// Params: err send error.
// Returns: true for permanent transport errors; unknown errors are treated as transient.
func IsPermanent(err error) bool {
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return transportErr.Permanent
	}
	return false
}

// classifyStatus maps a non-2xx HTTP status to a transport error.
// Params: status response code; detail short response excerpt.
// Returns: transient error for 5xx/408/429, permanent otherwise.
func classifyStatus(status int, detail string) *TransportError {
	err := fmt.Errorf("collector responded %s", http.StatusText(status))
	if detail != "" {
		err = fmt.Errorf("collector responded %s: %s", http.StatusText(status), detail)
	}
	switch {
	case status >= 500, status == http.StatusRequestTimeout, status == http.StatusTooManyRequests:
		return &TransportError{StatusCode: status, Err: err}
	default:
		return &TransportError{Permanent: true, StatusCode: status, Err: err}
	}
}
