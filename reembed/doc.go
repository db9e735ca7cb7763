// Package reembed provides functionality for re-embedding the chunk index
// with a new or updated embedding model.
//
// This package supports batch processing of document chunks, progress
// tracking, retry logic with exponential backoff, and vector normalization to
// ensure compatibility with cosine similarity search.
package reembed
