package store

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/learninghub/learninghub/internal/domain"
	"github.com/learninghub/learninghub/internal/id"
	"github.com/learninghub/learninghub/internal/util"
)

// GetResource returns resource id of product p.
func (s *Store) GetResource(ctx context.Context, p domain.Product, id string) (*domain.Resource, error) {
	res, _, err := s.entities(p)
	if err != nil {
		return nil, err
	}
	return res.Get(ctx, id)
}

// ListResources returns one page of p's resources matching q, newest first.
//
// Filters are applied before paging, so every page is full except the
// last. A limit outside 1..MaxPageSize falls back to PageSize; an invalid
// cursor reads from the start.
func (s *Store) ListResources(ctx context.Context, p domain.Product, q domain.QueryParams) (*domain.ResourceList, error) {
	res, _, err := s.entities(p)
	if err != nil {
		return nil, err
	}

	all, err := res.List(ctx)
	if err != nil {
		return nil, err
	}

	limit := q.Limit
	if limit <= 0 || limit > domain.MaxPageSize {
		limit = domain.PageSize
	}
	offset := q.Cursor.Offset()

	match := matcher(q)
	filtered := make([]domain.Resource, 0, len(all))
	for _, r := range all {
		if match(r) {
			filtered = append(filtered, *r)
		}
	}
	slices.SortFunc(filtered, func(a, b domain.Resource) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	out := &domain.ResourceList{Data: []domain.Resource{}, Total: len(filtered)}
	if offset >= len(filtered) {
		return out, nil
	}
	end := min(offset+limit, len(filtered))
	out.Data = filtered[offset:end]
	if end < len(filtered) {
		out.HasMore = true
		out.NextCursor = domain.OffsetCursor(end)
	}
	return out, nil
}

// matcher builds the list predicate: type when valid, any of the
// normalized tags, and a case-insensitive substring of title or description.
func matcher(q domain.QueryParams) func(*domain.Resource) bool {
	wantType, typed := q.Type.ResourceType()
	wantTags := util.NormalizeTags(q.Tags)
	search := strings.ToLower(q.Search)

	return func(r *domain.Resource) bool {
		if typed && r.Type != wantType {
			return false
		}
		if len(wantTags) > 0 && len(util.Intersect(r.Tags, wantTags)) == 0 {
			return false
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(r.Title), search) &&
			!strings.Contains(strings.ToLower(r.Description), search) {
			return false
		}
		return true
	}
}

// CreateResource stores r under product p and increments its tags' usage.
// An empty ID is generated, tags are normalized and missing timestamps are
// set to now.
func (s *Store) CreateResource(ctx context.Context, p domain.Product, r *domain.Resource) (*domain.Resource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res, tags, err := s.entities(p)
	if err != nil {
		return nil, err
	}

	created := *r
	if created.ID == "" {
		if created.ID, err = id.Generate(id.PrefixResource); err != nil {
			return nil, err
		}
	}
	created.Tags = util.NormalizeTags(created.Tags)
	if created.CreatedAt.IsZero() {
		created.CreatedAt = s.now()
	}
	if created.UpdatedAt.IsZero() {
		created.UpdatedAt = created.CreatedAt
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		exists, err := res.exists(txn, created.ID)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyExists
		}
		if err := res.set(txn, created.ID, &created); err != nil {
			return err
		}
		return adjustUsage(txn, tags, created.Tags, 1)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("resource created", "product", p, "id", created.ID, "tags", created.Tags)
	return &created, nil
}

// UpdateResource loads resource id, lets apply change it and writes it
// back in one transaction. The type cannot change; tags are re-normalized
// and usage counts follow the diff.
func (s *Store) UpdateResource(ctx context.Context, p domain.Product, id string, apply func(*domain.Resource) error) (*domain.Resource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res, tags, err := s.entities(p)
	if err != nil {
		return nil, err
	}

	var updated *domain.Resource
	err = s.db.Update(func(txn *badger.Txn) error {
		cur, err := res.get(txn, id)
		if err != nil {
			return err
		}
		prevType, prevTags := cur.Type, slices.Clone(cur.Tags)

		if err := apply(cur); err != nil {
			return err
		}
		if cur.Type != prevType {
			return ErrTypeChange
		}
		cur.ID = id
		cur.Tags = util.NormalizeTags(cur.Tags)
		cur.UpdatedAt = s.now()

		if err := res.set(txn, id, cur); err != nil {
			return err
		}
		added, removed := util.TagDiff(prevTags, cur.Tags)
		if err := adjustUsage(txn, tags, added, 1); err != nil {
			return err
		}
		if err := adjustUsage(txn, tags, removed, -1); err != nil {
			return err
		}
		updated = cur
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("resource updated", "product", p, "id", id)
	return updated, nil
}

// DeleteResource removes resource id and decrements its tags' usage.
func (s *Store) DeleteResource(ctx context.Context, p domain.Product, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	res, tags, err := s.entities(p)
	if err != nil {
		return err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		cur, err := res.get(txn, id)
		if err != nil {
			return err
		}
		if err := res.delete(txn, id); err != nil {
			return err
		}
		return adjustUsage(txn, tags, cur.Tags, -1)
	})
	if err != nil {
		return err
	}

	s.logger.Debug("resource deleted", "product", p, "id", id)
	return nil
}

// ReplaceResources drops p's data and loads rs in its place, rebuilding tag
// usage from scratch.
func (s *Store) ReplaceResources(ctx context.Context, p domain.Product, rs []domain.Resource) error {
	if err := s.Reset(ctx, p); err != nil {
		return err
	}
	for i := range rs {
		if _, err := s.CreateResource(ctx, p, &rs[i]); err != nil {
			return err
		}
	}
	s.logger.Info("resources loaded", "product", p, "count", len(rs))
	return nil
}
