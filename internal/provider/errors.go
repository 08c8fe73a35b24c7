package provider

import (
	"errors"
	"fmt"
)

// APIError is a provider-side rejection. Message carries the provider's
// reason verbatim so callers can display it.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider error (HTTP %d): %s", e.StatusCode, e.Message)
	}
	return "provider error: " + e.Message
}

// IsAPIError reports whether err is a provider-side rejection.
func IsAPIError(err error) bool {
	var ae *APIError
	return errors.As(err, &ae)
}

// Reason extracts the provider's message from err, falling back to
// err.Error() for transport-level failures.
func Reason(err error) string {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
