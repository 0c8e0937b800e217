package domain

import "errors"

// Failure taxonomy shared across the store, LLM client, and controller.
// Callers classify with errors.Is and map each class to an HTTP status at the
// transport layer.
var (
	// ErrInvalidIdentifier means a session id sanitized to an empty string.
	ErrInvalidIdentifier = errors.New("invalid session identifier")

	// ErrCorruptState means persisted history could not be decoded.
	ErrCorruptState = errors.New("corrupt session state")

	// ErrStorageUnavailable means an underlying storage I/O failure.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrUpstreamFailure means the LLM call itself failed.
	ErrUpstreamFailure = errors.New("upstream model failure")

	// ErrInvalidModelOutput means no JSON object could be extracted from the
	// model's raw output. Missing or wrong-typed fields inside a parsed object
	// are defaulted instead and never produce this error.
	ErrInvalidModelOutput = errors.New("invalid model output")
)
