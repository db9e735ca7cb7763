package badger

import (
	"context"
	"slices"
	"time"

	"github.com/ailsahq/grantseek/core"
	"github.com/ailsahq/grantseek/storage"
	"github.com/dgraph-io/badger/v4"
)

// ChunkRepository implements storage.ChunkRepository for BadgerDB.
type ChunkRepository struct {
	backend *Backend
}

var _ storage.ChunkRepository = (*ChunkRepository)(nil)

// NewChunkRepository creates a new ChunkRepository.
func NewChunkRepository(backend *Backend) (*ChunkRepository, error) {
	return &ChunkRepository{
		backend: backend,
	}, nil
}

// Close releases resources. ChunkRepository has no resources to release.
func (r *ChunkRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *ChunkRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// FindSimilar delegates to the backend's vector scan.
func (r *ChunkRepository) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.ChunkMatch, error) {
	return r.backend.FindSimilar(ctx, vector, minSimilarity, limit)
}

// AddChunks adds one or more chunks to the index.
func (r *ChunkRepository) AddChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, chunk := range chunks {
			if err := core.ValidateChunk(chunk); err != nil {
				return err
			}

			// Use content-based ID if not set
			if chunk.Id == 0 {
				chunk.Id = core.ChunkIDFromContent(chunk.Text)
			}

			if chunk.InsertedAt.IsZero() {
				chunk.InsertedAt = time.Now().UTC()
			}

			// Store primary record
			key := makeChunkKey(chunk.Id)
			value, err := storage.MarshalChunk(chunk)
			if err != nil {
				return err
			}
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Store grant index
			grantKey := makeChunkGrantKey(chunk.GrantId, chunk.Id)
			if err := tx.Set(grantKey, marshalChunkID(chunk.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return chunks, err
}

// DeleteChunks removes chunks by their IDs.
func (r *ChunkRepository) DeleteChunks(ctx context.Context, ids ...core.ChunkID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeChunkKey(id)

			chunk, err := r.readChunk(tx, key)
			if err != nil {
				return err
			}
			if chunk == nil {
				return storage.ErrNotFound
			}

			grantKey := makeChunkGrantKey(chunk.GrantId, chunk.Id)
			if err := tx.Delete(grantKey); err != nil {
				return err
			}

			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// DeleteChunksByGrant removes all chunks belonging to a grant.
func (r *ChunkRepository) DeleteChunksByGrant(ctx context.Context, grantID core.GrantID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		startKey := makePartialChunkGrantKey(grantID)

		// Collect the keys first; deleting while iterating invalidates the iterator
		var chunkKeys [][]byte
		var indexKeys [][]byte

		iter := tx.NewIterator(badger.DefaultIteratorOptions)
		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if len(key) < len(startKey) || slices.Compare(key[:len(startKey)], startKey) != 0 {
				break
			}

			var chunkID core.ChunkID
			err := iter.Item().Value(func(val []byte) error {
				var err error
				chunkID, err = unmarshalChunkID(val)
				return err
			})
			if err != nil {
				iter.Close()
				return err
			}

			chunkKeys = append(chunkKeys, makeChunkKey(chunkID))
			indexKeys = append(indexKeys, slices.Clone(key))
		}
		iter.Close()

		for i := range chunkKeys {
			if err := tx.Delete(chunkKeys[i]); err != nil {
				return err
			}
			if err := tx.Delete(indexKeys[i]); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetChunk retrieves a single chunk by ID.
func (r *ChunkRepository) GetChunk(ctx context.Context, id core.ChunkID) (*core.Chunk, error) {
	var result *core.Chunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeChunkKey(id)
		var err error
		result, err = r.readChunk(tx, key)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetAllChunks retrieves every chunk in the index, in key order.
func (r *ChunkRepository) GetAllChunks(ctx context.Context) ([]*core.Chunk, error) {
	var chunks []*core.Chunk

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkRecordPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var chunk *core.Chunk
			err := iter.Item().Value(func(val []byte) error {
				var err error
				chunk, err = storage.UnmarshalChunk(val)
				return err
			})
			if err != nil {
				return err
			}
			if chunk != nil {
				chunks = append(chunks, chunk)
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}
	return chunks, nil
}

// readChunk reads a chunk from the transaction.
func (r *ChunkRepository) readChunk(tx *badger.Txn, key []byte) (*core.Chunk, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var chunk *core.Chunk
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		chunk, unmarshalErr = storage.UnmarshalChunk(val)
		return unmarshalErr
	})
	return chunk, err
}
