package ingestion

import (
	"context"
	"log/slog"
	"runtime"

	"github.com/ailsahq/grantseek/ai"
	"github.com/ailsahq/grantseek/core"
	"github.com/ailsahq/grantseek/storage"
	"github.com/panjf2000/ants/v2"
)

// Document is one textual section of a grant's public record, e.g. the
// overview page or the eligibility criteria.
type Document struct {
	// DocType labels the section, e.g. "overview", "eligibility", "scope".
	DocType string
	Text    string
}

// Pipeline orchestrates the ingestion and indexing of grants.
// It stores metadata synchronously and embeds document chunks asynchronously.
type Pipeline struct {
	grantRepository storage.GrantRepository
	chunkRepository storage.ChunkRepository
	embeddingPool   *ants.Pool
	embeddingProc   *embeddingProcessor
	chunkSize       int
	logger          *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.embeddingPool != nil {
			p.embeddingPool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		p.embeddingPool = pool
		return nil
	}
}

// WithChunkSize sets the character cap per document chunk.
func WithChunkSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = defaultChunkSize
		}
		p.chunkSize = size
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	grantRepository storage.GrantRepository,
	chunkRepository storage.ChunkRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Pipeline, error) {
	if grantRepository == nil {
		return nil, ErrGrantRepositoryRequired
	}
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		grantRepository: grantRepository,
		chunkRepository: chunkRepository,
		embeddingPool:   pool,
		chunkSize:       defaultChunkSize,
		logger:          slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	proc, err := newEmbeddingProcessor(chunkRepository, provider.Embedder(), p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}
	p.embeddingProc = proc

	return p, nil
}

// IngestGrant stores a grant's metadata and indexes its documents.
// The metadata write and the removal of the grant's previous chunks happen
// synchronously, so a successful return means the store is consistent;
// embedding and indexing of the new chunks run asynchronously on the worker
// pool, with failures logged.
func (p *Pipeline) IngestGrant(ctx context.Context, grant *core.Grant, documents ...Document) error {
	if grant == nil {
		return ErrNilGrant
	}

	if _, err := p.grantRepository.PutGrants(ctx, grant); err != nil {
		return err
	}

	chunks := make([]*core.Chunk, 0, len(documents))
	for _, doc := range documents {
		for _, text := range chunkText(doc.Text, p.chunkSize) {
			chunks = append(chunks, &core.Chunk{
				GrantId: grant.Id,
				DocType: doc.DocType,
				Text:    text,
			})
		}
	}

	// Re-ingesting replaces the grant's chunks wholesale; chunk ids are
	// content-derived, so stale fragments from a previous version must be
	// cleared rather than overwritten.
	if err := p.chunkRepository.DeleteChunksByGrant(ctx, grant.Id); err != nil {
		return err
	}

	if len(chunks) == 0 {
		return nil
	}

	p.embeddingPool.Submit(func() {
		if err := p.embeddingProc.process(context.Background(), chunks...); err != nil {
			p.logger.Error("error indexing grant documents", "grant", grant.Id, "err", err)
		}
	})

	return nil
}

// Release releases resources including the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.embeddingPool != nil {
		p.embeddingPool.Release()
	}
}
