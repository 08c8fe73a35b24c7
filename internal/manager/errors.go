package manager

import (
	"fmt"

	"podd/pkg/types"
)

// validationError rejects bad creation input before any provider call.
type validationError struct{ msg string }

func (e validationError) Error() string { return e.msg }

func errValidationf(format string, args ...any) error {
	return validationError{msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a creation-input rejection (400).
func IsValidation(err error) bool {
	_, ok := err.(validationError)
	return ok
}

// notFoundError signals an unknown pod id.
type notFoundError struct{ id string }

func (e notFoundError) Error() string { return "pod not found: " + e.id }

func errNotFound(id string) error { return notFoundError{id: id} }

// IsNotFound reports whether err indicates an unknown pod id (404).
func IsNotFound(err error) bool {
	_, ok := err.(notFoundError)
	return ok
}

// provisioningError means the provider rejected creation; no record was
// stored. The reason carries the provider's message verbatim.
type provisioningError struct{ reason string }

func (e provisioningError) Error() string { return "pod creation failed: " + e.reason }

func errProvisioning(reason string) error { return provisioningError{reason: reason} }

// IsProvisioning reports whether err is a provider-side creation rejection.
func IsProvisioning(err error) bool {
	_, ok := err.(provisioningError)
	return ok
}

// invalidTransitionError marks a state change the lifecycle machine
// forbids, typically a stale provider read. The update path drops it
// without applying anything.
type invalidTransitionError struct {
	id       string
	from, to types.Status
}

func (e invalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition for pod %s: %s -> %s", e.id, e.from, e.to)
}

func errInvalidTransition(id string, from, to types.Status) error {
	return invalidTransitionError{id: id, from: from, to: to}
}

// IsInvalidTransition reports whether err is a rejected state change.
func IsInvalidTransition(err error) bool {
	_, ok := err.(invalidTransitionError)
	return ok
}
