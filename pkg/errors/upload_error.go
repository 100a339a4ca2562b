package errors

import (
	"errors"
	"fmt"
)

// Kind is the closed taxonomy of error kinds the core can produce.
// Handlers switch on Kind, never on Message, to pick an HTTP status.
type Kind string

const (
	KindNotFound         Kind = "not_found"
	KindValidation       Kind = "validation"
	KindChecksumMismatch Kind = "checksum_mismatch"
	KindStateConflict    Kind = "state_conflict"
	KindStorageError     Kind = "storage_error"
	KindTransient        Kind = "transient"
	KindFatal            Kind = "fatal"
)

// CoreError is the structured error envelope every core operation returns
// on failure. It carries enough to build both a human message and a
// machine-readable {kind, field} response without re-parsing strings.
type CoreError struct {
	Kind    Kind
	Message string
	Field   string
	Err     error
}

func (e *CoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *CoreError) Unwrap() error { return e.Err }

func NotFound(message string, err error) *CoreError {
	return &CoreError{Kind: KindNotFound, Message: message, Err: err}
}

func Validation(message, field string) *CoreError {
	return &CoreError{Kind: KindValidation, Message: message, Field: field}
}

func ChecksumMismatch(message string) *CoreError {
	return &CoreError{Kind: KindChecksumMismatch, Message: message}
}

func StateConflict(message string) *CoreError {
	return &CoreError{Kind: KindStateConflict, Message: message}
}

func StorageError(message string, err error) *CoreError {
	return &CoreError{Kind: KindStorageError, Message: message, Err: err}
}

func Transient(message string, err error) *CoreError {
	return &CoreError{Kind: KindTransient, Message: message, Err: err}
}

func Fatal(message string, err error) *CoreError {
	return &CoreError{Kind: KindFatal, Message: message, Err: err}
}

// As extracts a *CoreError from err, if any wraps one.
func As(err error) (*CoreError, bool) {
	var ce *CoreError
	ok := errors.As(err, &ce)
	return ce, ok
}
