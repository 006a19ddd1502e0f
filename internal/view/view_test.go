package view

import (
	"bytes"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learninghub/learninghub/internal/domain"
	apperrors "github.com/learninghub/learninghub/internal/errors"
	"github.com/learninghub/learninghub/internal/filters"
	"github.com/learninghub/learninghub/internal/flash"
)

func sampleResources() []domain.Resource {
	at := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	return []domain.Resource{
		{ID: "res-1", Title: "Intro to Go", Type: domain.TypeVideo, Tags: []string{"go", "basics"}, CreatedAt: at, UpdatedAt: at},
		{ID: "res-2", Title: "React Hooks", Type: domain.TypeArticle, Tags: []string{"react"}, CreatedAt: at, UpdatedAt: at},
	}
}

func TestRenderList(t *testing.T) {
	tests := []struct {
		name    string
		list    List
		want    []string
		notWant []string
	}{
		{
			name: "rows",
			list: List{Resources: sampleResources()},
			want: []string{"Showing 2 of 2 resources", "ID", "res-1", "Intro to Go", "go,basics", "2024-05-06", "article"},
		},
		{
			name: "empty without filters",
			list: List{},
			want: []string{"No resources found", "Get started by creating your first resource"},
		},
		{
			name: "empty with filters",
			list: List{HasActiveFilters: true},
			want: []string{"No resources found", "Try adjusting your filters or search query"},
		},
		{
			name:    "loading",
			list:    List{Loading: true},
			want:    []string{"Loading resources..."},
			notWant: []string{"No resources found"},
		},
		{
			name:    "loading keeps previous rows",
			list:    List{Loading: true, Resources: sampleResources()[:1]},
			want:    []string{"Showing 1 of 1 resources"},
			notWant: []string{"Loading"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, RenderList(&buf, tt.list))
			for _, s := range tt.want {
				assert.Contains(t, buf.String(), s)
			}
			for _, s := range tt.notWant {
				assert.NotContains(t, buf.String(), s)
			}
		})
	}
}

func TestRenderTags(t *testing.T) {
	var buf bytes.Buffer
	tags := []domain.Tag{{Name: "go", UsageCount: 3}, {Name: "react", UsageCount: 1}}
	require.NoError(t, RenderTags(&buf, tags, []string{"react"}))
	assert.Equal(t, "Tags: [ ] go (3)  [x] react (1)\n", buf.String())

	buf.Reset()
	require.NoError(t, RenderTags(&buf, nil, nil))
	assert.Equal(t, "Tags: none\n", buf.String())
}

func TestRenderPagination(t *testing.T) {
	tests := []struct {
		page    int
		hasMore bool
		want    string
	}{
		{1, false, "Page 1\n"},
		{1, true, "Page 1  Next >\n"},
		{3, true, "Page 3  < Prev  Next >\n"},
		{2, false, "Page 2  < Prev\n"},
		{0, false, "Page 1\n"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		require.NoError(t, RenderPagination(&buf, tt.page, tt.hasMore))
		assert.Equal(t, tt.want, buf.String())
	}
}

func TestRenderFilters(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderFilters(&buf, filters.State{SelectedType: domain.TypeAll}))
	assert.Equal(t, "Search: -  Type: All Types\n", buf.String())

	buf.Reset()
	require.NoError(t, RenderFilters(&buf, filters.State{ActiveSearch: "go", SelectedType: "pdf"}))
	assert.Equal(t, "Search: go  Type: PDFs  [Clear]\n", buf.String())
}

func TestRenderDetail_SkipsEmptyFields(t *testing.T) {
	var buf bytes.Buffer
	r := sampleResources()[0]
	r.Description = "Basics"
	require.NoError(t, RenderDetail(&buf, r))

	out := buf.String()
	assert.Contains(t, out, "Title:")
	assert.Contains(t, out, "Intro to Go")
	assert.Contains(t, out, "go, basics")
	assert.NotContains(t, out, "Thumbnail:")
}

func TestRenderFlash(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderFlash(&buf, []flash.Notification{
		{Kind: flash.KindSuccess, Message: "Saved"},
		{Kind: flash.KindError, Message: "Failed to load data"},
	}))
	assert.Equal(t, "[SUCCESS] Saved\n[ERROR] Failed to load data\n", buf.String())
}

func TestBoundaryFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"route error", NewRouteError(http.StatusNotFound), "404 Not Found"},
		{"wrapped route error", apperrors.Join(errors.New("ctx"), NewRouteError(http.StatusBadRequest)), "400 Bad Request"},
		{"coded error", apperrors.NotFound("Resource not found"), "Resource not found"},
		{"plain error", errors.New("render failed"), "render failed"},
		{"nil", nil, "Please click reload to load the app again!"},
		{"empty message", errors.New(""), "Please click reload to load the app again!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := BoundaryFor(tt.err)
			assert.Equal(t, "Something went wrong!", b.Caption)
			assert.Equal(t, tt.want, b.Message)
			assert.Equal(t, "/", b.Href)
		})
	}
}

func TestRenderBoundary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderBoundary(&buf, BoundaryFor(NewRouteError(http.StatusNotFound))))
	assert.Equal(t, "Something went wrong!\n\n404 Not Found\n\nReload App: /\n", buf.String())
}

func TestRenderPage(t *testing.T) {
	var buf bytes.Buffer
	err := RenderPage(&buf, Page{
		Product: domain.ProductEcomm,
		State:   filters.State{SelectedType: domain.TypeAll, CurrentPage: 1, SelectedTags: []string{"go"}},
		Tags:    []domain.Tag{{Name: "go", UsageCount: 1}},
		List:    List{Resources: sampleResources()[:1], HasActiveFilters: true},
		HasMore: true,
		Flash:   []flash.Notification{{Kind: flash.KindInfo, Message: "hello"}},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Learning Hub / ecomm")
	assert.Contains(t, out, "[INFO] hello")
	assert.Contains(t, out, "[x] go (1)")
	assert.Contains(t, out, "Showing 1 of 1 resources")
	assert.Contains(t, out, "Page 1  Next >")
}
