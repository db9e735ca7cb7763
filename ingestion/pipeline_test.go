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


package ingestion

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ailsahq/grantseek/ai/mock"
	"github.com/ailsahq/grantseek/core"
	"github.com/ailsahq/grantseek/storage"
	"github.com/ailsahq/grantseek/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPipeline(t *testing.T, opts ...Option) (*Pipeline, storage.GrantRepository, storage.ChunkRepository) {
	t.Helper()

	grantRepo, chunkRepo, sessionRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)

	pipeline, err := NewPipeline(grantRepo, chunkRepo, mock.NewMockProvider(), opts...)
	require.NoError(t, err)

	t.Cleanup(func() {
		pipeline.Release()
		sessionRepo.Close()
		chunkRepo.Close()
		grantRepo.Close()
		backend.Close()
	})

	return pipeline, grantRepo, chunkRepo
}

func waitForChunk(t *testing.T, chunkRepo storage.ChunkRepository, text string) *core.Chunk {
	t.Helper()

	id := core.ChunkIDFromContent(text)
	var chunk *core.Chunk
	require.Eventually(t, func() bool {
		c, err := chunkRepo.GetChunk(context.Background(), id)
		if err != nil {
			return false
		}
		chunk = c
		return true
	}, 2*time.Second, 10*time.Millisecond, "chunk for %q never appeared", text)

	return chunk
}

func TestNewPipeline(t *testing.T) {
	grantRepo, chunkRepo, sessionRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		sessionRepo.Close()
		chunkRepo.Close()
		grantRepo.Close()
		backend.Close()
	}()

	provider := mock.NewMockProvider()

	t.Run("creates pipeline with all dependencies", func(t *testing.T) {
		pipeline, err := NewPipeline(grantRepo, chunkRepo, provider)
		require.NoError(t, err)
		require.NotNil(t, pipeline)
		pipeline.Release()
	})

	t.Run("nil grant repository", func(t *testing.T) {
		_, err := NewPipeline(nil, chunkRepo, provider)
		assert.Equal(t, ErrGrantRepositoryRequired, err)
	})

	t.Run("nil chunk repository", func(t *testing.T) {
		_, err := NewPipeline(grantRepo, nil, provider)
		assert.Equal(t, ErrChunkRepositoryRequired, err)
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewPipeline(grantRepo, chunkRepo, nil)
		assert.Equal(t, ErrAIProviderRequired, err)
	})
}

func TestIngestGrant(t *testing.T) {
	ctx := context.Background()

	t.Run("stores metadata and indexes documents", func(t *testing.T) {
		pipeline, grantRepo, chunkRepo := newTestPipeline(t)

		grant := &core.Grant{
			Id:     "innovate_uk:77",
			Title:  "Smart Grants Round 12",
			Status: core.StatusOpen,
		}

		err := pipeline.IngestGrant(ctx, grant,
			Document{DocType: "overview", Text: "Smart grants back disruptive R&D from any sector."},
			Document{DocType: "eligibility", Text: "UK registered businesses of any size may lead."},
		)
		require.NoError(t, err)

		// Metadata is visible immediately
		stored, err := grantRepo.GetGrant(ctx, grant.Id)
		require.NoError(t, err)
		assert.Equal(t, "Smart Grants Round 12", stored.Title)

		// Chunks arrive asynchronously with vectors attached
		chunk := waitForChunk(t, chunkRepo, "Smart grants back disruptive R&D from any sector.")
		assert.Equal(t, grant.Id, chunk.GrantId)
		assert.Equal(t, "overview", chunk.DocType)
		assert.NotEmpty(t, chunk.Vector)

		chunk = waitForChunk(t, chunkRepo, "UK registered businesses of any size may lead.")
		assert.Equal(t, "eligibility", chunk.DocType)
	})

	t.Run("re-ingestion replaces previous chunks", func(t *testing.T) {
		pipeline, _, chunkRepo := newTestPipeline(t)

		grant := &core.Grant{Id: "nihr:1023", Title: "AI Diagnostics Accelerator", Status: core.StatusOpen}

		require.NoError(t, pipeline.IngestGrant(ctx, grant,
			Document{DocType: "overview", Text: "Original call text."}))
		waitForChunk(t, chunkRepo, "Original call text.")

		require.NoError(t, pipeline.IngestGrant(ctx, grant,
			Document{DocType: "overview", Text: "Revised call text."}))
		waitForChunk(t, chunkRepo, "Revised call text.")

		_, err := chunkRepo.GetChunk(ctx, core.ChunkIDFromContent("Original call text."))
		assert.True(t, errors.Is(err, storage.ErrNotFound))
	})

	t.Run("metadata-only ingestion", func(t *testing.T) {
		pipeline, grantRepo, _ := newTestPipeline(t)

		grant := &core.Grant{Id: "ukri:5", Title: "Quantum Sensing Call", Status: core.StatusOpen}
		require.NoError(t, pipeline.IngestGrant(ctx, grant))

		_, err := grantRepo.GetGrant(ctx, grant.Id)
		assert.NoError(t, err)
	})

	t.Run("nil grant", func(t *testing.T) {
		pipeline, _, _ := newTestPipeline(t)

		err := pipeline.IngestGrant(ctx, nil)
		assert.Equal(t, ErrNilGrant, err)
	})

	t.Run("invalid grant rejected", func(t *testing.T) {
		pipeline, _, _ := newTestPipeline(t)

		err := pipeline.IngestGrant(ctx, &core.Grant{Id: "not-a-composite", Title: "x", Status: core.StatusOpen})
		assert.Error(t, err)
	})

	t.Run("chunk size option caps fragments", func(t *testing.T) {
		pipeline, _, chunkRepo := newTestPipeline(t, WithChunkSize(40))

		grant := &core.Grant{Id: "innovate_uk:78", Title: "Smart Grants Round 13", Status: core.StatusOpen}
		err := pipeline.IngestGrant(ctx, grant,
			Document{DocType: "overview", Text: "First short paragraph.\n\nSecond short paragraph."})
		require.NoError(t, err)

		// 40-char cap keeps the two paragraphs in separate chunks.
		waitForChunk(t, chunkRepo, "First short paragraph.")
		waitForChunk(t, chunkRepo, "Second short paragraph.")
	})
}
