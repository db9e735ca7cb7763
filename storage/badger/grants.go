package badger

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/ailsahq/grantseek/core"
	"github.com/ailsahq/grantseek/storage"
	"github.com/dgraph-io/badger/v4"
)

// GrantRepository implements storage.GrantRepository for BadgerDB.
type GrantRepository struct {
	backend *Backend
}

var _ storage.GrantRepository = (*GrantRepository)(nil)

// NewGrantRepository creates a new GrantRepository.
func NewGrantRepository(backend *Backend) (*GrantRepository, error) {
	return &GrantRepository{
		backend: backend,
	}, nil
}

// Close releases resources. GrantRepository has no resources to release.
func (r *GrantRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *GrantRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// PutGrants inserts or replaces one or more grants.
func (r *GrantRepository) PutGrants(ctx context.Context, grants ...*core.Grant) ([]*core.Grant, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, grant := range grants {
			if err := core.ValidateGrant(grant); err != nil {
				return err
			}

			key := makeGrantKey(grant.Id)

			// Read old record to maintain the updated-at index and InsertedAt
			old, err := r.readGrant(tx, key)
			if err != nil {
				return err
			}

			now := time.Now().UTC()
			if old != nil {
				grant.InsertedAt = old.InsertedAt
			} else if grant.InsertedAt.IsZero() {
				grant.InsertedAt = now
			}
			grant.UpdatedAt = now

			value, err := storage.MarshalGrant(grant)
			if err != nil {
				return err
			}
			if err := tx.Set(key, value); err != nil {
				return err
			}

			if old != nil {
				oldUpdatedKey := makeGrantUpdatedKey(old.UpdatedAt, old.Id)
				if err := tx.Delete(oldUpdatedKey); err != nil {
					return err
				}
			}
			updatedKey := makeGrantUpdatedKey(grant.UpdatedAt, grant.Id)
			if err := tx.Set(updatedKey, []byte(grant.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return grants, err
}

// DeleteGrants removes grants by their IDs.
func (r *GrantRepository) DeleteGrants(ctx context.Context, ids ...core.GrantID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeGrantKey(id)

			grant, err := r.readGrant(tx, key)
			if err != nil {
				return err
			}
			if grant == nil {
				return storage.ErrNotFound
			}

			updatedKey := makeGrantUpdatedKey(grant.UpdatedAt, grant.Id)
			if err := tx.Delete(updatedKey); err != nil {
				return err
			}

			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetGrant retrieves a single grant by ID.
func (r *GrantRepository) GetGrant(ctx context.Context, id core.GrantID) (*core.Grant, error) {
	var result *core.Grant
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeGrantKey(id)
		var err error
		result, err = r.readGrant(tx, key)
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

// GetGrants retrieves multiple grants by their IDs.
// Missing grants are skipped without error.
func (r *GrantRepository) GetGrants(ctx context.Context, ids ...core.GrantID) ([]*core.Grant, error) {
	var result []*core.Grant
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeGrantKey(id)
			grant, err := r.readGrant(tx, key)
			if err != nil {
				return err
			}
			if grant != nil {
				result = append(result, grant)
			}
		}
		return nil
	}, false)
	return result, err
}

// FindGrantsByTitle retrieves grants whose title contains the given fragment,
// case-insensitively. This is a full scan over grant records; the corpus is
// small enough (thousands of grants) that an index is not worth maintaining.
func (r *GrantRepository) FindGrantsByTitle(ctx context.Context, fragment string, limit int) ([]*core.Grant, error) {
	if fragment == "" {
		return nil, storage.ErrInvalidQuery
	}
	needle := strings.ToLower(fragment)

	var results []*core.Grant
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(grantRecordPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid() && len(results) < limit; iter.Next() {
			var grant *core.Grant
			err := iter.Item().Value(func(val []byte) error {
				var err error
				grant, err = storage.UnmarshalGrant(val)
				return err
			})
			if err != nil {
				return err
			}
			if grant == nil {
				continue
			}
			if strings.Contains(strings.ToLower(grant.Title), needle) {
				results = append(results, grant)
			}
		}
		return nil
	}, false)

	return results, err
}

// GetRecentGrants retrieves the N most recently updated grants, most recent first.
func (r *GrantRepository) GetRecentGrants(ctx context.Context, limit int) ([]*core.Grant, error) {
	var results []*core.Grant
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		// Use reverse iterator to get most recently updated grants first
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true

		iter := tx.NewIterator(opts)
		defer iter.Close()

		// Seek to the last possible key in the updated-at index
		startKey := makePartialGrantUpdatedKey(time.Date(9999, 12, 31, 23, 59, 59, 999999999, time.UTC))

		prefix := []byte(grantUpdatedPrefix + ":")

		count := 0
		for iter.Seek(startKey); iter.Valid() && count < limit; iter.Next() {
			key := iter.Item().Key()

			// Check if we're still in the updated-at index
			if len(key) < len(prefix) || slices.Compare(key[:len(prefix)], prefix) != 0 {
				break
			}

			// Read the grant id from the index value
			var grantID core.GrantID
			if err := iter.Item().Value(func(val []byte) error {
				grantID = core.GrantID(val)
				return nil
			}); err != nil {
				return err
			}

			// Look up the full record
			grantKey := makeGrantKey(grantID)
			grant, err := r.readGrant(tx, grantKey)
			if err != nil {
				return err
			}
			if grant != nil {
				results = append(results, grant)
				count++
			}
		}
		return nil
	}, false)

	return results, err
}

// readGrant reads a grant from the transaction.
func (r *GrantRepository) readGrant(tx *badger.Txn, key []byte) (*core.Grant, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var grant *core.Grant
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		grant, unmarshalErr = storage.UnmarshalGrant(val)
		return unmarshalErr
	})
	return grant, err
}
