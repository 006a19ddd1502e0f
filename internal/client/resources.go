package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/learninghub/learninghub/internal/domain"
)

// ResourcesAPI is the typed client for /{product}/resources.
type ResourcesAPI struct {
	c           *Client
	product     domain.Product
	adminSecret string
}

// Resources returns the resources API scoped to product. An empty product
// talks to the unscoped /resources path. Writes send adminSecret in the
// AdminSecret header.
func (c *Client) Resources(product domain.Product, adminSecret string) *ResourcesAPI {
	return &ResourcesAPI{c: c, product: product, adminSecret: adminSecret}
}

func (a *ResourcesAPI) path(id string) string {
	p := scopePath(a.product) + "/resources"
	if id != "" {
		p += "/" + url.PathEscape(id)
	}
	return p
}

func (a *ResourcesAPI) adminHeader() http.Header {
	h := http.Header{}
	if a.adminSecret != "" {
		h.Set(domain.AdminSecretHeader, a.adminSecret)
	}
	return h
}

// List fetches one page of resources matching p.
func (a *ResourcesAPI) List(ctx context.Context, p domain.QueryParams) (*domain.ResourceList, error) {
	var out domain.ResourceList
	if err := a.c.Get(ctx, a.path(""), p.Values(), &out); err != nil {
		return nil, err
	}
	if out.Data == nil {
		out.Data = []domain.Resource{}
	}
	return &out, nil
}

// Get fetches a single resource.
func (a *ResourcesAPI) Get(ctx context.Context, id string) (*domain.Resource, error) {
	var out domain.Resource
	if err := a.c.Get(ctx, a.path(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create posts a new resource as multipart form data.
func (a *ResourcesAPI) Create(ctx context.Context, in domain.ResourceInput) (*domain.Resource, error) {
	form := NewForm().
		Set("title", in.Title).
		Set("description", in.Description).
		Set("type", string(in.Type)).
		SetList("tags", in.Tags).
		Set("url", in.URL).
		Set("thumbnailUrl", in.ThumbnailURL).
		File("file", in.File).
		File("thumbnail", in.Thumbnail)

	var out domain.Resource
	if err := a.c.PostForm(ctx, a.path(""), form, a.adminHeader(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update patches the fields present in d.
func (a *ResourcesAPI) Update(ctx context.Context, d domain.ResourceDelta) (*domain.Resource, error) {
	form := NewForm()
	if d.Title != nil {
		form.Set("title", *d.Title)
	}
	if d.Description != nil {
		form.Set("description", *d.Description)
	}
	if d.Type != nil {
		form.Set("type", string(*d.Type))
	}
	if d.Tags != nil {
		form.SetList("tags", d.Tags)
	}
	if d.URL != nil {
		form.Set("url", *d.URL)
	}
	if d.ThumbnailURL != nil {
		form.Set("thumbnailUrl", *d.ThumbnailURL)
	}
	form.File("file", d.File).File("thumbnail", d.Thumbnail)

	var out domain.Resource
	if err := a.c.PatchForm(ctx, a.path(d.ID), form, a.adminHeader(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a resource.
func (a *ResourcesAPI) Delete(ctx context.Context, id string) error {
	return a.c.Do(ctx, Request{
		Method: http.MethodDelete,
		Path:   a.path(id),
		Header: a.adminHeader(),
	}, nil)
}

func scopePath(p domain.Product) string {
	if p == "" {
		return ""
	}
	return "/" + url.PathEscape(string(p))
}
