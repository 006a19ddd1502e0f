package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"testing"

	"github.com/learninghub/learninghub/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	method string
	path   string
	query  string
	secret string
	fields map[string]string
	files  map[string]string
}

func captureServer(t *testing.T, status int, response any) (*Client, *capturedRequest) {
	t.Helper()
	got := &capturedRequest{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got.method = r.Method
		got.path = r.URL.Path
		got.query = r.URL.RawQuery
		got.secret = r.Header.Get(domain.AdminSecretHeader)
		if r.MultipartForm == nil && r.Header.Get("Content-Type") != "" && r.Method != http.MethodGet {
			if err := r.ParseMultipartForm(1 << 20); err == nil {
				got.fields = map[string]string{}
				for k, v := range r.MultipartForm.Value {
					got.fields[k] = v[0]
				}
				got.files = map[string]string{}
				for k, fh := range r.MultipartForm.File {
					f, _ := fh[0].Open()
					b, _ := io.ReadAll(f)
					got.files[k] = fh[0].Filename + ":" + string(b)
				}
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if response != nil {
			_ = json.NewEncoder(w).Encode(response)
		}
	})
	return c, got
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func TestResourcesAPI_List(t *testing.T) {
	c, got := captureServer(t, http.StatusOK, map[string]any{
		"data":       []map[string]any{{"id": "r1", "title": "Intro", "type": "video", "tags": []string{"go"}}},
		"hasMore":    true,
		"nextCursor": "40",
	})

	list, err := c.Resources(domain.ProductEcomm, "secret").List(context.Background(), domain.QueryParams{
		Search: "intro",
		Type:   domain.TypeFilter(domain.TypeVideo),
		Tags:   []string{"go", "api"},
		Cursor: "20",
		Limit:  20,
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, got.method)
	assert.Equal(t, "/api/v1/ecomm/resources", got.path)
	assert.Equal(t, "cursor=20&limit=20&search=intro&tags=go%2Capi&type=video", got.query)
	assert.Empty(t, got.secret, "reads carry no admin secret")

	require.Len(t, list.Data, 1)
	assert.Equal(t, "Intro", list.Data[0].Title)
	assert.True(t, list.HasMore)
	assert.Equal(t, domain.Cursor("40"), list.NextCursor)
}

func TestResourcesAPI_ListEmptyData(t *testing.T) {
	c, _ := captureServer(t, http.StatusOK, map[string]any{"hasMore": false})
	list, err := c.Resources("", "").List(context.Background(), domain.QueryParams{})
	require.NoError(t, err)
	assert.NotNil(t, list.Data)
	assert.Empty(t, list.Data)
}

func TestResourcesAPI_Get(t *testing.T) {
	c, got := captureServer(t, http.StatusOK, map[string]any{"id": "r 1", "title": "T"})
	r, err := c.Resources(domain.ProductCRM, "").Get(context.Background(), "r 1")
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/crm/resources/r 1", got.path)
	assert.Equal(t, "T", r.Title)
}

func TestResourcesAPI_CreateSendsOnlyNonEmptyFields(t *testing.T) {
	c, got := captureServer(t, http.StatusCreated, map[string]any{"id": "r1"})

	_, err := c.Resources(domain.ProductEcomm, "s3cret").Create(context.Background(), domain.ResourceInput{
		Title:       "Intro",
		Description: "Basics",
		Type:        domain.TypeVideo,
		Tags:        []string{"go", "intro"},
		File:        &domain.Upload{Name: "intro.mp4", ContentType: "video/mp4", Data: []byte("vid")},
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "/api/v1/ecomm/resources", got.path)
	assert.Equal(t, "s3cret", got.secret)
	assert.Equal(t, []string{"description", "tags", "title", "type"}, keys(got.fields))
	assert.Equal(t, "go,intro", got.fields["tags"])
	assert.Equal(t, map[string]string{"file": "intro.mp4:vid"}, got.files)
}

func TestResourcesAPI_UpdateSendsDeltaOnly(t *testing.T) {
	c, got := captureServer(t, http.StatusOK, map[string]any{"id": "r1", "title": "New"})

	title := "New"
	thumb := "https://img/x.png"
	r, err := c.Resources(domain.ProductAdmin, "s").Update(context.Background(), domain.ResourceDelta{
		ID:           "r1",
		Title:        &title,
		ThumbnailURL: &thumb,
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPatch, got.method)
	assert.Equal(t, "/api/v1/admin/resources/r1", got.path)
	assert.Equal(t, map[string]string{"title": "New", "thumbnailUrl": thumb}, got.fields)
	assert.Empty(t, got.files)
	assert.Equal(t, "New", r.Title)
}

func TestResourcesAPI_Delete(t *testing.T) {
	c, got := captureServer(t, http.StatusNoContent, nil)
	require.NoError(t, c.Resources(domain.ProductEcomm, "s").Delete(context.Background(), "r1"))
	assert.Equal(t, http.MethodDelete, got.method)
	assert.Equal(t, "/api/v1/ecomm/resources/r1", got.path)
	assert.Equal(t, "s", got.secret)
}

func TestTagsAPI_List(t *testing.T) {
	c, got := captureServer(t, http.StatusOK, []map[string]any{
		{"name": "go", "usageCount": 3},
		{"name": "api", "usageCount": 1},
	})

	tags, err := c.Tags(domain.ProductEcomm).List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/ecomm/tags", got.path)
	assert.Equal(t, []domain.Tag{{Name: "go", UsageCount: 3}, {Name: "api", UsageCount: 1}}, tags)
}

func TestForm_Names(t *testing.T) {
	f := NewForm().Set("title", "x").Set("url", "").SetList("tags", nil).File("file", nil).File("thumbnail", &domain.Upload{Name: "t.png"})
	assert.Equal(t, []string{"title", "thumbnail"}, f.Names())

	body, ct, err := f.Encode()
	require.NoError(t, err)
	assert.Contains(t, ct, "multipart/form-data; boundary=")
	assert.Contains(t, body.String(), `filename="t.png"`)
	assert.Contains(t, body.String(), "application/octet-stream")
}
