// Package common defines the sentinel errors shared by repositories,
// services, and the HTTP gateway. Callers match them with errors.Is.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound       = errors.New("not found")
	ErrorDuplicateEmail = errors.New("email already in use")

	// Service-level errors.
	ErrorInternal           = errors.New("internal error")
	ErrorUnauthorized       = errors.New("unauthorized")
	ErrorInvalidCredentials = errors.New("invalid credentials")
	ErrorValidation         = errors.New("validation error")

	// Store-creation preconditions.
	ErrorOwnerNotFound  = errors.New("owner not found")
	ErrorOwnerWrongRole = errors.New("owner must have the owner role")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// ValidationError wraps ErrorValidation with a field-level message so the
// caller can both match the class (errors.Is) and show the detail.
func ValidationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrorValidation, fmt.Sprintf(format, args...))
}
