package ingestion

import "errors"

var (
	// ErrGrantRepositoryRequired is returned when a grant repository is not provided.
	ErrGrantRepositoryRequired = errors.New("grant repository required")

	// ErrChunkRepositoryRequired is returned when a chunk repository is not provided.
	ErrChunkRepositoryRequired = errors.New("chunk repository required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrNilGrant is returned when a nil grant is passed to ingestion.
	ErrNilGrant = errors.New("grant required")
)
