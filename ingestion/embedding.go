package ingestion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ailsahq/grantseek/ai"
	"github.com/ailsahq/grantseek/core"
	"github.com/ailsahq/grantseek/storage"
)

// embeddingProcessor embeds chunk text and writes the chunks to the index.
type embeddingProcessor struct {
	chunkRepository storage.ChunkRepository
	embedder        ai.Embedder
	logger          *slog.Logger
}

// newEmbeddingProcessor creates a new embedding processor.
func newEmbeddingProcessor(chunkRepository storage.ChunkRepository, embedder ai.Embedder, logger *slog.Logger) (*embeddingProcessor, error) {
	if chunkRepository == nil {
		return nil, fmt.Errorf("chunk repository required")
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &embeddingProcessor{
		chunkRepository: chunkRepository,
		embedder:        embedder,
		logger:          logger.With("processor", "embeddings"),
	}, nil
}

// process embeds the given chunks and adds them to the index.
func (ep *embeddingProcessor) process(ctx context.Context, chunks ...*core.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	ep.logger.Info("embedding chunks", "chunks", len(chunks))

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	embeddings, err := ep.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		ep.logger.Error("error generating embeddings", "err", err)
		return err
	}

	if len(embeddings) != len(chunks) {
		return fmt.Errorf("embedding result mismatch. expected %d, received %d", len(chunks), len(embeddings))
	}

	for i := range embeddings {
		chunks[i].Vector = embeddings[i]
	}

	_, err = ep.chunkRepository.AddChunks(ctx, chunks...)
	return err
}
