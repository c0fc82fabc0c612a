package domain

import "errors"

// Ingestion error categories. Every failure returned by the ingestion core
// wraps exactly one of these, so callers can branch with errors.Is.
var (
	// ErrValidation indicates bad input shape: a missing identifier, an absent
	// payload or an unsupported format. Nothing is chunked or stored.
	ErrValidation = errors.New("validation error")

	// ErrEncoding indicates normalisation produced no usable text.
	ErrEncoding = errors.New("encoding error")

	// ErrChunking indicates invalid chunking configuration.
	ErrChunking = errors.New("chunking error")

	// ErrStorage indicates the atomic write failed and nothing was persisted.
	ErrStorage = errors.New("storage error")
)

// Supporting errors wrapped inside the categories above.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown document format.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrPoolExhausted indicates no storage connection slot was free and the
	// store is configured to fail fast.
	ErrPoolExhausted = errors.New("storage pool exhausted")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("store closed")
)

// Category returns the ingestion category wrapped by err, or nil when err
// does not carry one.
func Category(err error) error {
	for _, c := range []error{ErrValidation, ErrEncoding, ErrChunking, ErrStorage} {
		if errors.Is(err, c) {
			return c
		}
	}
	return nil
}
