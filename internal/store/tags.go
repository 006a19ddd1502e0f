package store

import (
	"cmp"
	"context"
	"errors"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/learninghub/learninghub/internal/domain"
)

// ListTags returns p's tags ordered by usage count, most used first, then
// by name.
func (s *Store) ListTags(ctx context.Context, p domain.Product) ([]domain.Tag, error) {
	_, tags, err := s.entities(p)
	if err != nil {
		return nil, err
	}

	all, err := tags.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Tag, 0, len(all))
	for _, t := range all {
		out = append(out, *t)
	}
	slices.SortFunc(out, func(a, b domain.Tag) int {
		if c := cmp.Compare(b.UsageCount, a.UsageCount); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out, nil
}

// adjustUsage adds delta to each tag's usage count inside txn. Counts never
// drop below zero and a tag reaching zero is removed.
func adjustUsage(txn *badger.Txn, tags *Entity[domain.Tag], names []string, delta int) error {
	for _, name := range names {
		if name == "" {
			continue
		}

		count := 0
		cur, err := tags.get(txn, name)
		switch {
		case err == nil:
			count = cur.UsageCount
		case !errors.Is(err, ErrNotFound):
			return err
		}

		count = max(0, count+delta)
		if count == 0 {
			if cur == nil {
				continue
			}
			if err := tags.delete(txn, name); err != nil {
				return err
			}
			continue
		}
		if err := tags.set(txn, name, &domain.Tag{Name: name, UsageCount: count}); err != nil {
			return err
		}
	}
	return nil
}
