package reindex

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrRepositoryRequired is returned when a rebuilder is constructed
	// without a title source.
	ErrRepositoryRequired = errors.New("title repository is required")

	// ErrEmbedderRequired is returned when a rebuilder is constructed
	// without an embedder.
	ErrEmbedderRequired = errors.New("embedder is required")
)
