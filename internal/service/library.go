package service

import (
	"context"

	"github.com/learninghub/learninghub/internal/domain"
	"github.com/learninghub/learninghub/internal/filters"
	"github.com/learninghub/learninghub/internal/query"
)

// Library drives the resource list screen: it feeds the tag list into the
// filters controller and loads the page the controller describes.
type Library struct {
	ctrl *filters.Controller
	list *ListQuery
	tags *TagsQuery
}

// Snapshot is everything the list screen renders.
type Snapshot struct {
	State   filters.State
	Tags    query.Result[[]domain.Tag]
	List    query.Result[*domain.ResourceList]
	Filters bool
}

// HasMore reports whether the server has a next page.
func (s Snapshot) HasMore() bool {
	return s.List.Data != nil && s.List.Data.HasMore
}

// Resources returns the rows of the current page.
func (s Snapshot) Resources() []domain.Resource {
	if s.List.Data == nil {
		return nil
	}
	return s.List.Data.Data
}

// NewLibrary binds ctrl to the hooks of s.
func (s *ResourceService) NewLibrary(ctrl *filters.Controller) *Library {
	return &Library{ctrl: ctrl, list: s.NewListQuery(), tags: s.NewTagsQuery()}
}

// Controller returns the filters controller.
func (l *Library) Controller() *filters.Controller { return l.ctrl }

// LoadTags fetches the tag list and hands the names to the controller.
// A failed fetch leaves the selection untouched.
func (l *Library) LoadTags(ctx context.Context) query.Result[[]domain.Tag] {
	res := l.tags.Run(ctx)
	if res.Err == nil && !res.Superseded {
		l.ctrl.TagsLoaded(domain.TagNames(res.Data))
	}
	return res
}

// LoadList fetches the page the controller currently describes.
func (l *Library) LoadList(ctx context.Context) query.Result[*domain.ResourceList] {
	return l.list.Run(ctx, l.ctrl.QueryParams())
}

// Load fetches tags then the list and returns what to render.
func (l *Library) Load(ctx context.Context) Snapshot {
	tags := l.LoadTags(ctx)
	list := l.LoadList(ctx)
	return Snapshot{
		State:   l.ctrl.State(),
		Tags:    tags,
		List:    list,
		Filters: l.ctrl.HasActiveFilters(),
	}
}

// Stop aborts in-flight fetches.
func (l *Library) Stop() {
	l.list.Stop()
	l.tags.Stop()
}
