package client

import (
	"context"

	"github.com/learninghub/learninghub/internal/domain"
)

// TagsAPI is the typed client for /{product}/tags.
type TagsAPI struct {
	c       *Client
	product domain.Product
}

// Tags returns the tags API scoped to product.
func (c *Client) Tags(product domain.Product) *TagsAPI {
	return &TagsAPI{c: c, product: product}
}

// List fetches every tag, ordered by usage as the backend returns them.
func (a *TagsAPI) List(ctx context.Context) ([]domain.Tag, error) {
	var out []domain.Tag
	if err := a.c.Get(ctx, scopePath(a.product)+"/tags", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Tag{}
	}
	return out, nil
}
