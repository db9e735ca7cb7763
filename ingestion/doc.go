// Package ingestion provides pipeline orchestration for indexing grant documents.
//
// The Pipeline type manages the ingestion workflow for a grant, including:
//   - Storing the grant's metadata record
//   - Chunking its documents into embeddable fragments
//   - Generating embeddings and indexing the chunks asynchronously
//
// Embedding is performed concurrently using a worker pool. Errors during async
// processing are logged but do not fail the ingestion operation.
package ingestion
