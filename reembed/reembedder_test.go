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
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ailsahq/grantseek/ai/mock"
	"github.com/ailsahq/grantseek/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReembedder_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("reembeds every chunk with normalized vectors", func(t *testing.T) {
		repo := newChunkRepo(t)
		seedChunks(t, repo, 5)

		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextsFunc = func(_ context.Context, texts []string) ([][]float32, error) {
			vectors := make([][]float32, len(texts))
			for i := range vectors {
				vectors[i] = []float32{3, 4, 0} // normalizes to {0.6, 0.8, 0}
			}
			return vectors, nil
		}

		var buf bytes.Buffer
		config := &Config{BatchSize: 2, ReportInterval: 2, MaxRetries: 2, RetryDelay: time.Millisecond}
		reembedder := NewReembedder(repo, embedder, config, &buf)

		require.NoError(t, reembedder.Run(ctx))

		chunks, err := repo.GetAllChunks(ctx)
		require.NoError(t, err)
		require.Len(t, chunks, 5)
		for _, chunk := range chunks {
			require.Len(t, chunk.Vector, 3)
			assert.InDelta(t, 0.6, chunk.Vector[0], 1e-6)
			assert.InDelta(t, 0.8, chunk.Vector[1], 1e-6)
		}

		assert.Contains(t, buf.String(), "Starting re-embedding of 5 chunks")
		assert.Contains(t, buf.String(), "Re-embedding complete")
	})

	t.Run("empty index is a no-op", func(t *testing.T) {
		repo := newChunkRepo(t)
		embedder := mock.NewMockEmbedder()

		var buf bytes.Buffer
		reembedder := NewReembedder(repo, embedder, nil, &buf)

		require.NoError(t, reembedder.Run(ctx))
		assert.Contains(t, buf.String(), "No chunks found")
		assert.Equal(t, 0, embedder.CallCount())
	})

	t.Run("retries transient embedding failures", func(t *testing.T) {
		repo := newChunkRepo(t)
		seedChunks(t, repo, 2)

		attempts := 0
		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextsFunc = func(_ context.Context, texts []string) ([][]float32, error) {
			attempts++
			if attempts == 1 {
				return nil, errors.New("transient")
			}
			vectors := make([][]float32, len(texts))
			for i := range vectors {
				vectors[i] = []float32{1, 0, 0}
			}
			return vectors, nil
		}

		var buf bytes.Buffer
		config := &Config{BatchSize: 10, ReportInterval: 10, MaxRetries: 3, RetryDelay: time.Millisecond}
		reembedder := NewReembedder(repo, embedder, config, &buf)

		require.NoError(t, reembedder.Run(ctx))
		assert.Equal(t, 2, attempts)
	})

	t.Run("fails after exhausting retries", func(t *testing.T) {
		repo := newChunkRepo(t)
		seedChunks(t, repo, 1)

		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextsFunc = func(_ context.Context, _ []string) ([][]float32, error) {
			return nil, errors.New("still down")
		}

		var buf bytes.Buffer
		config := &Config{BatchSize: 10, ReportInterval: 10, MaxRetries: 2, RetryDelay: time.Millisecond}
		reembedder := NewReembedder(repo, embedder, config, &buf)

		err := reembedder.Run(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to process batch")
	})
}

func TestBatchProcessor_Process(t *testing.T) {
	ctx := context.Background()

	t.Run("empty batch is a no-op", func(t *testing.T) {
		repo := newChunkRepo(t)
		embedder := mock.NewMockEmbedder()

		processor := NewBatchProcessor(repo, embedder, 1, time.Millisecond)
		require.NoError(t, processor.Process(ctx, nil))
		assert.Equal(t, 0, embedder.CallCount())
	})

	t.Run("count mismatch is an error", func(t *testing.T) {
		repo := newChunkRepo(t)
		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextsFunc = func(_ context.Context, _ []string) ([][]float32, error) {
			return [][]float32{{1, 0, 0}}, nil
		}

		processor := NewBatchProcessor(repo, embedder, 1, time.Millisecond)
		err := processor.Process(ctx, []*core.Chunk{
			{GrantId: "nihr:1023", DocType: "overview", Text: "one"},
			{GrantId: "nihr:1023", DocType: "overview", Text: "two"},
		})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "mismatch")
	})
}
