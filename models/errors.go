package models

import "errors"

// Pipeline error taxonomy. Callers classify failures with errors.Is.
var (
	// ErrConfig marks invalid chunking parameters. The caller must fix its input.
	ErrConfig = errors.New("invalid configuration")

	// ErrIngestion marks a store write failure. The batch insert is a single
	// atomic call, so no partial state is assumed persisted.
	ErrIngestion = errors.New("ingestion failed")

	// ErrParse marks malformed conversation history. The query pipeline
	// recovers by continuing with empty history.
	ErrParse = errors.New("malformed conversation history")

	// ErrTemplate marks a prompt template that references a missing slot.
	// Raised before the generator is invoked.
	ErrTemplate = errors.New("prompt template error")

	// ErrExternalTimeout marks an external model/store call that exceeded its
	// deadline. Retryable by the caller; never retried inside the pipeline.
	ErrExternalTimeout = errors.New("external call timed out")
)
