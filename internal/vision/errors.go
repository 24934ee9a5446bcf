package vision

import (
	"errors"
	"fmt"
)

// Failure taxonomy for an analysis attempt. Quota exhaustion is the only
// kind with a recovery path (fallback substitution); the rest abort the
// attempt and leave the safety state unchanged.
var (
	// ErrCaptureUnavailable means no frame could be acquired; no request
	// was sent.
	ErrCaptureUnavailable = errors.New("camera frame unavailable")

	// ErrQuotaExceeded means the remote service rejected the request with
	// a quota or rate-limit signal.
	ErrQuotaExceeded = errors.New("inference quota exceeded")

	// ErrResponseCorrupt means the service answered but the structured
	// result could not be parsed.
	ErrResponseCorrupt = errors.New("inference response corrupt")
)

// ServiceError is a non-quota transport or service failure. Code is the
// HTTP status when one was received, 0 for connection-level failures.
type ServiceError struct {
	Code   int
	Detail string
}

func (e *ServiceError) Error() string {
	if e.Code == 0 {
		return fmt.Sprintf("inference service unreachable: %s", e.Detail)
	}
	return fmt.Sprintf("inference service error (status %d): %s", e.Code, e.Detail)
}
