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


package reembed

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/ailsahq/grantseek/ai"
	"github.com/ailsahq/grantseek/core"
	"github.com/ailsahq/grantseek/storage"
)

// Config holds configuration for the re-embedding operation.
type Config struct {
	// BatchSize is the number of chunks to process in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of chunks)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed operations
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reembedder orchestrates the re-embedding of the entire chunk index.
type Reembedder struct {
	repo      storage.ChunkRepository
	embedder  ai.Embedder
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
	iterator  *ChunkIterator
}

// NewReembedder creates a new reembedder.
// progress: where to write progress output (typically os.Stderr)
func NewReembedder(repo storage.ChunkRepository, embedder ai.Embedder, config *Config, progress io.Writer) *Reembedder {
	if config == nil {
		config = DefaultConfig()
	}

	processor := NewBatchProcessor(repo, embedder, config.MaxRetries, config.RetryDelay)
	iterator := NewChunkIterator(repo, config.BatchSize)

	return &Reembedder{
		repo:      repo,
		embedder:  embedder,
		config:    config,
		progress:  progress,
		processor: processor,
		iterator:  iterator,
	}
}

// Run executes the re-embedding operation.
// Every chunk in the index is re-embedded with the configured embedder.
// Progress is reported to the configured writer.
func (r *Reembedder) Run(ctx context.Context) error {
	// First, count total chunks
	allChunks, err := r.repo.GetAllChunks(ctx)
	if err != nil {
		return fmt.Errorf("failed to query chunks: %w", err)
	}

	totalChunks := len(allChunks)
	if totalChunks == 0 {
		fmt.Fprintf(r.progress, "No chunks found in index (0 chunks)\n")
		return nil
	}

	fmt.Fprintf(r.progress, "Starting re-embedding of %d chunks (batch size: %d)\n",
		totalChunks, r.config.BatchSize)

	// Initialize progress tracker
	tracker := NewProgressTracker(r.progress, totalChunks, r.config.ReportInterval)
	tracker.Start()

	processed := 0

	// Process all chunks in batches
	err = r.iterator.ForEach(ctx, func(chunks []*core.Chunk) error {
		// Process this batch
		if err := r.processor.Process(ctx, chunks); err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}

		// Update progress
		processed += len(chunks)
		tracker.Update(processed)

		return nil
	})

	if err != nil {
		return err
	}

	// Finish progress tracking
	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Re-embedding complete. Processed %d chunks in %v (%.1f chunks/sec)\n",
		totalChunks, elapsed.Round(time.Second), float64(totalChunks)/elapsed.Seconds())

	return nil
}
