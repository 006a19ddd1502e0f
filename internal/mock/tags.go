package mock

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/learninghub/learninghub/internal/domain"
	"github.com/learninghub/learninghub/internal/http/response"
)

func (s *Server) registerTagRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTags",
		Method:      http.MethodGet,
		Path:        s.opts.BasePath + "/{product}/tags",
		Summary:     "List tags",
		Description: "Returns the product's tags, most used first",
		Tags:        []string{"Tags"},
		Middlewares: huma.Middlewares{s.productOp},
	}, s.handleListTags)
}

// ListTagsInput contains parameters for listing tags.
type ListTagsInput struct {
	Product string `path:"product" doc:"Product scope (ecomm, admin, crm)"`
}

// ListTagsOutput wraps the tag list for Huma.
type ListTagsOutput struct {
	Body []domain.Tag
}

func (s *Server) handleListTags(ctx context.Context, input *ListTagsInput) (*ListTagsOutput, error) {
	tags, err := s.store.ListTags(ctx, domain.Product(input.Product))
	if err != nil {
		s.logger.Error("Error fetching tags", "product", input.Product, "error", err)
		return nil, apiError(http.StatusInternalServerError, response.CodeQueryFailed, "Failed to fetch tags")
	}
	return &ListTagsOutput{Body: tags}, nil
}
