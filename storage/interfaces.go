package storage

import (
	"context"
	"time"

	"github.com/ailsahq/grantseek/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// GrantRepository provides operations for managing grant metadata records.
type GrantRepository interface {
	Repository
	// PutGrants inserts or replaces one or more grants.
	// Sets InsertedAt on first write and UpdatedAt on every write.
	// Returns the grants with timestamps populated.
	PutGrants(ctx context.Context, grants ...*core.Grant) ([]*core.Grant, error)

	// DeleteGrants removes grants by their IDs.
	// Returns ErrNotFound if any grant doesn't exist.
	DeleteGrants(ctx context.Context, ids ...core.GrantID) error

	// GetGrant retrieves a single grant by ID.
	// Returns ErrNotFound if the grant doesn't exist.
	GetGrant(ctx context.Context, id core.GrantID) (*core.Grant, error)

	// GetGrants retrieves multiple grants by their IDs.
	// Returns only the grants that exist (no error for missing grants).
	GetGrants(ctx context.Context, ids ...core.GrantID) ([]*core.Grant, error)

	// FindGrantsByTitle retrieves grants whose title contains the given
	// fragment (case-insensitive). Returns up to limit grants.
	FindGrantsByTitle(ctx context.Context, fragment string, limit int) ([]*core.Grant, error)

	// GetRecentGrants retrieves the N most recently updated grants,
	// most recent first.
	GetRecentGrants(ctx context.Context, limit int) ([]*core.Grant, error)
}

// ChunkRepository provides operations for managing embedded document chunks
// and running vector similarity search over them.
type ChunkRepository interface {
	Repository
	// AddChunks adds one or more chunks to the index.
	// Chunk IDs are derived from content, so re-adding identical text
	// overwrites in place. Sets InsertedAt if not already set.
	AddChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error)

	// DeleteChunks removes chunks by their IDs.
	// Returns ErrNotFound if any chunk doesn't exist.
	DeleteChunks(ctx context.Context, ids ...core.ChunkID) error

	// DeleteChunksByGrant removes all chunks belonging to a grant.
	// Removing chunks for an unknown grant is not an error.
	DeleteChunksByGrant(ctx context.Context, grantID core.GrantID) error

	// GetChunk retrieves a single chunk by ID.
	// Returns ErrNotFound if the chunk doesn't exist.
	GetChunk(ctx context.Context, id core.ChunkID) (*core.Chunk, error)

	// GetAllChunks retrieves every chunk in the index.
	// Intended for maintenance operations such as re-embedding after a
	// model change; not for serving queries.
	GetAllChunks(ctx context.Context) ([]*core.Chunk, error)

	// FindSimilar finds chunks similar to the given vector.
	// Returns matches with similarity >= minSimilarity, up to limit results,
	// ordered by similarity score (highest first).
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.ChunkMatch, error)
}

// Session is the bounded per-conversation state: the grant ids surfaced to the
// user, most recent first.
type Session struct {
	GrantRefs []core.GrantID
	UpdatedAt time.Time
}

// SessionRepository provides operations for per-session conversational state.
// Sessions are evicted automatically after an inactivity window.
type SessionRepository interface {
	Repository
	// AppendGrantRefs records grant ids surfaced during a session turn.
	// New ids are prepended (most recent first), duplicates are moved to the
	// front, and the list is truncated to the repository's bound. Appending
	// refreshes the session's eviction deadline. The read-modify-write is
	// atomic per session; concurrent appends are last-write-wins.
	AppendGrantRefs(ctx context.Context, sessionID string, ids ...core.GrantID) error

	// GrantRefs returns the session's surfaced grant ids, most recent first.
	// An unknown or expired session returns an empty list, not an error.
	GrantRefs(ctx context.Context, sessionID string) ([]core.GrantID, error)

	// DeleteSession removes a session's state immediately.
	// Deleting an unknown session is not an error.
	DeleteSession(ctx context.Context, sessionID string) error
}
