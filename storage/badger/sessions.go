package badger

import (
	"context"
	"time"

	"github.com/ailsahq/grantseek/core"
	"github.com/ailsahq/grantseek/storage"
	"github.com/dgraph-io/badger/v4"
)

const (
	// defaultRefBound is the maximum number of grant refs kept per session.
	defaultRefBound = 20
	// defaultSessionTTL is the inactivity window after which session state
	// is evicted by the store.
	defaultSessionTTL = 30 * time.Minute
)

// SessionRepository implements storage.SessionRepository for BadgerDB.
// Eviction relies on Badger's native entry TTL: every append rewrites the
// session entry with a fresh TTL, so an inactive session expires on its own.
type SessionRepository struct {
	backend  *Backend
	refBound int
	ttl      time.Duration
}

var _ storage.SessionRepository = (*SessionRepository)(nil)

// SessionOption is a functional option for configuring a SessionRepository.
type SessionOption func(*SessionRepository)

// WithRefBound sets the maximum number of grant refs kept per session.
func WithRefBound(bound int) SessionOption {
	return func(r *SessionRepository) {
		r.refBound = bound
	}
}

// WithSessionTTL sets the inactivity window before session eviction.
func WithSessionTTL(ttl time.Duration) SessionOption {
	return func(r *SessionRepository) {
		r.ttl = ttl
	}
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(backend *Backend, opts ...SessionOption) (*SessionRepository, error) {
	repo := &SessionRepository{
		backend:  backend,
		refBound: defaultRefBound,
		ttl:      defaultSessionTTL,
	}
	for _, opt := range opts {
		opt(repo)
	}
	return repo, nil
}

// Close releases resources. SessionRepository has no resources to release.
func (r *SessionRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *SessionRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AppendGrantRefs records grant ids surfaced during a session turn.
// The read-modify-write happens inside a single transaction; concurrent
// appends to the same session are last-write-wins.
func (r *SessionRepository) AppendGrantRefs(ctx context.Context, sessionID string, ids ...core.GrantID) error {
	if sessionID == "" {
		return storage.ErrInvalidQuery
	}
	if len(ids) == 0 {
		return nil
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeSessionKey(sessionID)

		session, err := r.readSession(tx, key)
		if err != nil {
			return err
		}
		if session == nil {
			session = &storage.Session{}
		}

		// Prepend new ids, moving duplicates to the front
		merged := make([]core.GrantID, 0, len(ids)+len(session.GrantRefs))
		seen := make(map[core.GrantID]bool, len(ids)+len(session.GrantRefs))
		for _, id := range ids {
			if !seen[id] {
				merged = append(merged, id)
				seen[id] = true
			}
		}
		for _, id := range session.GrantRefs {
			if !seen[id] {
				merged = append(merged, id)
				seen[id] = true
			}
		}
		if len(merged) > r.refBound {
			merged = merged[:r.refBound]
		}

		session.GrantRefs = merged
		session.UpdatedAt = time.Now().UTC()

		value, err := storage.MarshalSession(session)
		if err != nil {
			return err
		}

		entry := badger.NewEntry(key, value).WithTTL(r.ttl)
		if err := tx.SetEntry(entry); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GrantRefs returns the session's surfaced grant ids, most recent first.
// An unknown or expired session yields an empty list.
func (r *SessionRepository) GrantRefs(ctx context.Context, sessionID string) ([]core.GrantID, error) {
	if sessionID == "" {
		return nil, storage.ErrInvalidQuery
	}

	var refs []core.GrantID
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		session, err := r.readSession(tx, makeSessionKey(sessionID))
		if err != nil {
			return err
		}
		if session != nil {
			refs = session.GrantRefs
		}
		return nil
	}, false)
	return refs, err
}

// DeleteSession removes a session's state immediately.
func (r *SessionRepository) DeleteSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return storage.ErrInvalidQuery
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		err := tx.Delete(makeSessionKey(sessionID))
		if err != nil && err != badger.ErrKeyNotFound {
			return err
		}
		return tx.Commit()
	}, true)
}

// readSession reads session state from the transaction.
func (r *SessionRepository) readSession(tx *badger.Txn, key []byte) (*storage.Session, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var session *storage.Session
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		session, unmarshalErr = storage.UnmarshalSession(val)
		return unmarshalErr
	})
	return session, err
}
