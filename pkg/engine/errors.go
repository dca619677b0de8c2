package engine

import (
	"errors"
	"fmt"
)

// ErrorCode classifies an engine error for recovery and surfacing logic.
type ErrorCode string

const (
	// ErrCodeUnsupportedProvider indicates an unknown provider token.
	ErrCodeUnsupportedProvider ErrorCode = "UNSUPPORTED_PROVIDER"

	// ErrCodeMissingParameter indicates a required parameter is absent
	// or has an implausible value.
	ErrCodeMissingParameter ErrorCode = "MISSING_PARAMETER"

	// ErrCodeNotFound indicates an unknown VM id.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeInvalidTransition indicates a status update not permitted
	// by the transition table.
	ErrCodeInvalidTransition ErrorCode = "INVALID_TRANSITION"

	// ErrCodeDuplicateID indicates an identifier collision on create.
	ErrCodeDuplicateID ErrorCode = "DUPLICATE_ID"

	// ErrCodeStorageFailure indicates the persistence layer is
	// unavailable. This is the only fatal condition; it is never
	// auto-retried by the engine.
	ErrCodeStorageFailure ErrorCode = "STORAGE_FAILURE"
)

// Error is a classified engine error. All codes except STORAGE_FAILURE are
// recovered at the orchestrator boundary and surfaced as structured results.
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for chain inspection.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors by code, so sentinel-style comparisons with errors.Is
// work against any error carrying the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewUnsupportedProvider builds the error for an unknown provider token.
// The message format is part of the public API contract.
func NewUnsupportedProvider(token ProviderType) *Error {
	return &Error{
		Code:    ErrCodeUnsupportedProvider,
		Message: fmt.Sprintf("Unsupported provider: %s", token),
	}
}

// NewMissingParameter builds the validation error for the first absent
// required key. The message format is part of the public API contract.
func NewMissingParameter(displayName, key string) *Error {
	return &Error{
		Code:    ErrCodeMissingParameter,
		Message: fmt.Sprintf("Invalid parameters for %s: missing '%s'", displayName, key),
	}
}

// NewNotFound builds the error for an unknown VM id.
func NewNotFound(id string) *Error {
	return &Error{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("VM not found: %s", id),
	}
}

// NewInvalidTransition builds the error for a disallowed status change.
func NewInvalidTransition(id string, from, to VMStatus) *Error {
	return &Error{
		Code:    ErrCodeInvalidTransition,
		Message: fmt.Sprintf("invalid status transition for VM %s: %s -> %s", id, from, to),
	}
}

// NewDuplicateID builds the error for an identifier collision.
func NewDuplicateID(id string) *Error {
	return &Error{
		Code:    ErrCodeDuplicateID,
		Message: fmt.Sprintf("VM id already exists: %s", id),
	}
}

// NewStorageFailure wraps a persistence-layer failure.
func NewStorageFailure(op string, err error) *Error {
	return &Error{
		Code:    ErrCodeStorageFailure,
		Message: fmt.Sprintf("storage operation %s failed", op),
		Err:     err,
	}
}

// CodeOf extracts the error code from err, or returns the empty code when
// err carries no engine classification.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsNotFound reports whether err is classified as NOT_FOUND.
func IsNotFound(err error) bool {
	return CodeOf(err) == ErrCodeNotFound
}

// IsInvalidTransition reports whether err is classified as INVALID_TRANSITION.
func IsInvalidTransition(err error) bool {
	return CodeOf(err) == ErrCodeInvalidTransition
}

// IsStorageFailure reports whether err is classified as STORAGE_FAILURE.
func IsStorageFailure(err error) bool {
	return CodeOf(err) == ErrCodeStorageFailure
}
