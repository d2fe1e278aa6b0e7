package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrUnsupportedType indicates a file type with no registered converter.
	// Documents of this type are never converted and never retried.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrConfiguration indicates the global settings are unusable,
	// e.g. the File backend without a storage location.
	ErrConfiguration = errors.New("configuration error")

	// Conversion Errors.

	// ErrConversionFailed indicates the external converter could not
	// produce pages for a document.
	ErrConversionFailed = errors.New("conversion failed")

	// ErrConversionTimeout indicates the external converter exceeded
	// the configured conversion timeout.
	ErrConversionTimeout = errors.New("conversion timed out")

	// ErrStorage indicates the artifact batch could not be persisted.
	ErrStorage = errors.New("storage failure")

	// ErrQueueClosed indicates the job queue no longer accepts or yields jobs.
	ErrQueueClosed = errors.New("queue closed")
)
