package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrValidation indicates the form state does not satisfy its schema.
	// Returned wrapped in a *ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrSubmissionInProgress indicates a submission is already running for the form.
	ErrSubmissionInProgress = errors.New("submission in progress")

	// ErrUnknownForm indicates no schema is registered under the given name.
	ErrUnknownForm = errors.New("unknown form")

	// ErrBaseURLUnset indicates the backend base URL is not configured.
	// Remote features (suggestions, lookups, submission) are disabled.
	ErrBaseURLUnset = errors.New("backend base URL not configured")

	// ErrInvalidSchema indicates a form definition references unknown names.
	ErrInvalidSchema = errors.New("invalid schema")

	// Authentication Errors.

	// ErrAuthRequired indicates the backend requires a token but none is configured.
	ErrAuthRequired = errors.New("authentication required")

	// ErrAuthExpired indicates the stored token has expired.
	ErrAuthExpired = errors.New("authentication expired")

	// ErrAuthInvalid indicates the stored token could not be decoded.
	ErrAuthInvalid = errors.New("authentication invalid")

	// Transport Errors.

	// ErrRateLimited indicates the backend rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)

// ValidationError lists the reasons a form cannot be submitted.
type ValidationError struct {
	// Missing holds required fields that are empty.
	Missing []string

	// Invalid maps field names to a reason.
	Invalid map[string]string
}

// Error implements error.
func (e *ValidationError) Error() string {
	parts := make([]string, 0, 2)
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required fields: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		keys := make([]string, 0, len(e.Invalid))
		for k := range e.Invalid {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		invalid := make([]string, 0, len(keys))
		for _, k := range keys {
			invalid = append(invalid, k+" "+e.Invalid[k])
		}
		parts = append(parts, "invalid fields: "+strings.Join(invalid, "; "))
	}
	if len(parts) == 0 {
		return ErrValidation.Error()
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

// Unwrap lets errors.Is match ErrValidation.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Empty reports whether no problem was recorded.
func (e *ValidationError) Empty() bool {
	return len(e.Missing) == 0 && len(e.Invalid) == 0
}

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	// Op names the operation, e.g. "create isolation record".
	Op string

	// StatusCode is the HTTP status code.
	StatusCode int

	// Body is the (truncated) response body.
	Body string
}

// Error implements error.
func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Op, e.StatusCode, e.Body)
}
