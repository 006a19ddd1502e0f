// Package service combines the API clients, the query cache and the flash
// center into the read and write hooks the views use.
package service

import (
	"context"
	"log/slog"

	"github.com/learninghub/learninghub/internal/client"
	"github.com/learninghub/learninghub/internal/domain"
	"github.com/learninghub/learninghub/internal/flash"
	"github.com/learninghub/learninghub/internal/query"
)

// ResourceService exposes the hooks of one product.
type ResourceService struct {
	product   domain.Product
	resources *client.ResourcesAPI
	tags      *client.TagsAPI
	cache     *query.Cache
	flash     *flash.Center
	logger    *slog.Logger
}

// NewResourceService creates the hooks for product.
func NewResourceService(c *client.Client, cache *query.Cache, center *flash.Center, product domain.Product, adminSecret string, logger *slog.Logger) *ResourceService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ResourceService{
		product:   product,
		resources: c.Resources(product, adminSecret),
		tags:      c.Tags(product),
		cache:     cache,
		flash:     center,
		logger:    logger.With("product", string(product)),
	}
}

// Product returns the product the hooks are scoped to.
func (s *ResourceService) Product() domain.Product { return s.product }

// Cache returns the shared query cache.
func (s *ResourceService) Cache() *query.Cache { return s.cache }

// Flash returns the notification center.
func (s *ResourceService) Flash() *flash.Center { return s.flash }

// ReadHook is a query whose outcome is reported through the flash center.
type ReadHook[T any] struct {
	q       *query.Query[T]
	tracker *flash.Tracker
	logger  *slog.Logger
}

func newReadHook[T any](s *ResourceService, name string, opts []flash.TrackerOption) *ReadHook[T] {
	return &ReadHook[T]{
		q:       query.NewQuery[T](s.cache),
		tracker: flash.NewReadTracker(s.flash, opts...),
		logger:  s.logger.With("query", name),
	}
}

func (h *ReadHook[T]) run(ctx context.Context, key query.Key, fn query.Fetcher[T], force bool) query.Result[T] {
	h.tracker.Observe(query.StatusPending, nil)
	var res query.Result[T]
	if force {
		res = h.q.Refetch(ctx, key, fn)
	} else {
		res = h.q.Run(ctx, key, fn)
	}
	if res.Superseded {
		return res
	}
	if res.Err != nil {
		h.logger.Warn("query failed", "key", key.String(), "error", res.Err)
	}
	h.tracker.Observe(res.Status, res.Err)
	return res
}

// Result returns the latest result.
func (h *ReadHook[T]) Result() query.Result[T] { return h.q.Result() }

// Stop aborts an in-flight fetch.
func (h *ReadHook[T]) Stop() { h.q.Stop() }

// ListQuery reads pages of resources.
type ListQuery struct {
	*ReadHook[*domain.ResourceList]
	s *ResourceService
}

// NewListQuery creates a resource list hook.
func (s *ResourceService) NewListQuery(opts ...flash.TrackerOption) *ListQuery {
	return &ListQuery{ReadHook: newReadHook[*domain.ResourceList](s, "resources.list", opts), s: s}
}

// Run fetches the page described by p.
func (l *ListQuery) Run(ctx context.Context, p domain.QueryParams) query.Result[*domain.ResourceList] {
	return l.run(ctx, query.ResourceList(l.s.product, p), l.fetcher(p), false)
}

// Refetch bypasses the cache.
func (l *ListQuery) Refetch(ctx context.Context, p domain.QueryParams) query.Result[*domain.ResourceList] {
	return l.run(ctx, query.ResourceList(l.s.product, p), l.fetcher(p), true)
}

func (l *ListQuery) fetcher(p domain.QueryParams) query.Fetcher[*domain.ResourceList] {
	return func(ctx context.Context) (*domain.ResourceList, error) {
		return l.s.resources.List(ctx, p)
	}
}

// DetailQuery reads one resource.
type DetailQuery struct {
	*ReadHook[*domain.Resource]
	s *ResourceService
}

// NewDetailQuery creates a resource detail hook.
func (s *ResourceService) NewDetailQuery(opts ...flash.TrackerOption) *DetailQuery {
	return &DetailQuery{ReadHook: newReadHook[*domain.Resource](s, "resources.detail", opts), s: s}
}

// Run fetches resource id.
func (d *DetailQuery) Run(ctx context.Context, id string) query.Result[*domain.Resource] {
	return d.run(ctx, query.ResourceDetail(d.s.product, id), func(ctx context.Context) (*domain.Resource, error) {
		return d.s.resources.Get(ctx, id)
	}, false)
}

// TagsQuery reads the tag list.
type TagsQuery struct {
	*ReadHook[[]domain.Tag]
	s *ResourceService
}

// NewTagsQuery creates a tag list hook.
func (s *ResourceService) NewTagsQuery(opts ...flash.TrackerOption) *TagsQuery {
	return &TagsQuery{ReadHook: newReadHook[[]domain.Tag](s, "tags.list", opts), s: s}
}

// Run fetches the tag list.
func (t *TagsQuery) Run(ctx context.Context) query.Result[[]domain.Tag] {
	return t.run(ctx, query.TagLists(t.s.product), func(ctx context.Context) ([]domain.Tag, error) {
		return t.s.tags.List(ctx)
	}, false)
}

// WriteHook is a mutation whose outcome is reported through the flash
// center and whose success invalidates the affected queries.
type WriteHook[In, Out any] struct {
	m       *query.Mutation[In, Out]
	tracker *flash.Tracker
	logger  *slog.Logger
}

func newWriteHook[In, Out any](s *ResourceService, kind query.MutationKind, do func(context.Context, In) (Out, error), idOf func(In) string, opts []flash.TrackerOption) *WriteHook[In, Out] {
	effects := func(in In) []query.Effect {
		return query.InvalidationsFor(s.product, kind, idOf(in))
	}
	return &WriteHook[In, Out]{
		m:       query.NewMutation(s.cache, do, effects),
		tracker: flash.NewWriteTracker(s.flash, opts...),
		logger:  s.logger.With("mutation", string(kind)),
	}
}

// Run performs the write.
func (h *WriteHook[In, Out]) Run(ctx context.Context, in In) query.Result[Out] {
	h.tracker.Observe(query.StatusPending, nil)
	res := h.m.Run(ctx, in)
	if res.Err != nil {
		h.logger.Warn("mutation failed", "error", res.Err)
	} else {
		h.logger.Info("mutation succeeded")
	}
	h.tracker.Observe(res.Status, res.Err)
	return res
}

// Result returns the latest result.
func (h *WriteHook[In, Out]) Result() query.Result[Out] { return h.m.Result() }

// Reset returns the hook to idle.
func (h *WriteHook[In, Out]) Reset() {
	h.m.Reset()
	h.tracker.Reset()
}

// NewCreateMutation creates the create-resource hook.
func (s *ResourceService) NewCreateMutation(opts ...flash.TrackerOption) *WriteHook[domain.ResourceInput, *domain.Resource] {
	return newWriteHook(s, query.MutationCreate, s.resources.Create,
		func(domain.ResourceInput) string { return "" }, opts)
}

// NewUpdateMutation creates the update-resource hook.
func (s *ResourceService) NewUpdateMutation(opts ...flash.TrackerOption) *WriteHook[domain.ResourceDelta, *domain.Resource] {
	return newWriteHook(s, query.MutationUpdate, s.resources.Update,
		func(d domain.ResourceDelta) string { return d.ID }, opts)
}

// NewDeleteMutation creates the delete-resource hook.
func (s *ResourceService) NewDeleteMutation(opts ...flash.TrackerOption) *WriteHook[string, struct{}] {
	del := func(ctx context.Context, id string) (struct{}, error) {
		return struct{}{}, s.resources.Delete(ctx, id)
	}
	return newWriteHook(s, query.MutationDelete, del, func(id string) string { return id }, opts)
}
