package controller

import "fmt"

// ErrorKind classifies upstream failures.
type ErrorKind string

const (
	// KindUnavailable covers network, timeout, and TLS failures.
	KindUnavailable ErrorKind = "unavailable"
	// KindRejected covers non-200 HTTP responses (401/403/404/4xx/5xx).
	KindRejected ErrorKind = "rejected"
	// KindRateLimited is a 429 that persisted through the single retry.
	KindRateLimited ErrorKind = "rate_limited"
)

// UpstreamError is the structured error value the client surfaces instead of
// raising. It never escapes the discovery pipeline: callers downgrade it to a
// missing telemetry slot.
type UpstreamError struct {
	Kind     ErrorKind
	Endpoint string
	Status   int
	Detail   string
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("controller %s: %s (status %d): %s", e.Endpoint, e.Kind, e.Status, e.Detail)
	}
	return fmt.Sprintf("controller %s: %s: %s", e.Endpoint, e.Kind, e.Detail)
}
