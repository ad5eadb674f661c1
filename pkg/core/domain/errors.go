package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers both genuinely absent records and records owned by
	// another user; callers cannot tell the two apart.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a duplicate username, email or target URL.
	ErrConflict = errors.New("already exists")

	// ErrDuplicateCode is the insert-time unique violation on short_code.
	// It never reaches a client; code assignment retries on it.
	ErrDuplicateCode = errors.New("short code already taken")

	// ErrCodeSpaceExhausted means code assignment gave up after repeated
	// collisions. The alphabet or code length needs widening operationally.
	ErrCodeSpaceExhausted = errors.New("short code space exhausted")

	// ErrInvalidCredentials is returned for any login failure, whether the
	// email is unknown or the password is wrong.
	ErrInvalidCredentials = errors.New("wrong credentials")
)

// FieldError is a validation failure keyed by the offending request field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsNotFound reports whether err is a not-found condition.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsConflict reports whether err indicates a uniqueness conflict.
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }
