package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"

	"github.com/dgraph-io/badger/v4"
)

// Entity provides generic JSON CRUD for one key prefix. The exported
// methods run their own transaction; the lowercase ones join the caller's.
type Entity[T any] struct {
	store  *Store
	prefix string
}

// NewEntity creates a new Entity instance for type T.
func NewEntity[T any](s *Store, prefix string) *Entity[T] {
	return &Entity[T]{store: s, prefix: prefix}
}

func (e *Entity[T]) key(id string) []byte {
	return []byte(e.prefix + id)
}

// Get retrieves an entity by ID.
// Returns ErrNotFound if the entity does not exist.
func (e *Entity[T]) Get(ctx context.Context, id string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out *T
	err := e.store.db.View(func(txn *badger.Txn) error {
		v, err := e.get(txn, id)
		out = v
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// List returns every entity under the prefix in key order.
func (e *Entity[T]) List(ctx context.Context) ([]*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []*T
	err := e.store.db.View(func(txn *badger.Txn) error {
		for v, err := range e.all(txn) {
			if err != nil {
				return err
			}
			out = append(out, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Entity[T]) get(txn *badger.Txn, id string) (*T, error) {
	item, err := txn.Get(e.key(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key: %w", err)
	}

	var v T
	err = item.Value(func(val []byte) error {
		if err := json.Unmarshal(val, &v); err != nil {
			return fmt.Errorf("failed to unmarshal entity: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (e *Entity[T]) exists(txn *badger.Txn, id string) (bool, error) {
	_, err := txn.Get(e.key(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check existing key: %w", err)
	}
	return true, nil
}

func (e *Entity[T]) set(txn *badger.Txn, id string, v *T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}
	if err := txn.Set(e.key(id), data); err != nil {
		return fmt.Errorf("failed to set key: %w", err)
	}
	return nil
}

func (e *Entity[T]) delete(txn *badger.Txn, id string) error {
	if err := txn.Delete(e.key(id)); err != nil {
		return fmt.Errorf("failed to delete key: %w", err)
	}
	return nil
}

// all iterates the prefix inside txn. Iteration stops after the first error.
func (e *Entity[T]) all(txn *badger.Txn) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		prefix := []byte(e.prefix)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var v T
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &v)
			})
			if err != nil {
				yield(nil, fmt.Errorf("failed to unmarshal entity: %w", err))
				return
			}
			if !yield(&v, nil) {
				return
			}
		}
	}
}
