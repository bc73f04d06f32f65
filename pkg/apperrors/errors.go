package apperrors

import (
	"errors"
	"fmt"
)

// Stable error kinds surfaced to callers. Handlers map these to HTTP
// statuses; anything else is treated as a storage failure and its cause is
// logged rather than echoed to the client.
var (
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrAlreadyExists    = errors.New("already exists")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrValidation       = errors.New("validation failed")
)

// NotFound wraps ErrNotFound with the missing entity's name.
func NotFound(entity string) error {
	return fmt.Errorf("%s: %w", entity, ErrNotFound)
}

// Forbidden wraps ErrForbidden with a short reason.
func Forbidden(reason string) error {
	return fmt.Errorf("%s: %w", reason, ErrForbidden)
}

// Storage wraps a durable-store error so callers can distinguish it from the
// domain kinds above.
func Storage(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("storage: %w", err)
}

// IsStorage reports whether err is a failure outside the domain taxonomy.
func IsStorage(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrNotFound) &&
		!errors.Is(err, ErrForbidden) &&
		!errors.Is(err, ErrAlreadyExists) &&
		!errors.Is(err, ErrInvalidOperation) &&
		!errors.Is(err, ErrValidation)
}
