// Copyright 2025 Ailsa Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package search

import "errors"

var (
	// ErrGrantRepositoryRequired is returned when a grant repository is not provided.
	ErrGrantRepositoryRequired = errors.New("grant repository required")

	// ErrChunkRepositoryRequired is returned when a chunk repository is not provided.
	ErrChunkRepositoryRequired = errors.New("chunk repository required")

	// ErrSessionRepositoryRequired is returned when a session repository is not provided.
	ErrSessionRepositoryRequired = errors.New("session repository required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrEmptyQuery is returned when a request carries no query text.
	ErrEmptyQuery = errors.New("query cannot be empty")

	// ErrEmbeddingUnavailable is returned when the embedding service keeps
	// failing after retries.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable is returned when vector search keeps failing
	// after retries.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrMetadataUnavailable is returned when the grant metadata store keeps
	// failing after retries.
	ErrMetadataUnavailable = errors.New("grant metadata store unavailable")

	// ErrInvalidMaxAttempts is returned when a retry policy is configured
	// with a non-positive attempt count.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")
)
