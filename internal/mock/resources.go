package mock

import (
	"context"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
	"github.com/learninghub/learninghub/internal/domain"
	"github.com/learninghub/learninghub/internal/http/response"
)

func (s *Server) registerResourceRoutes() {
	path := s.opts.BasePath + "/{product}/resources"

	huma.Register(s.api, huma.Operation{
		OperationID: "listResources",
		Method:      http.MethodGet,
		Path:        path,
		Summary:     "List resources",
		Description: "Returns one page of resources, newest first",
		Tags:        []string{"Resources"},
		Middlewares: huma.Middlewares{s.productOp},
	}, s.handleListResources)

	huma.Register(s.api, huma.Operation{
		OperationID: "getResource",
		Method:      http.MethodGet,
		Path:        path + "/{id}",
		Summary:     "Get resource",
		Description: "Returns a resource by ID",
		Tags:        []string{"Resources"},
		Middlewares: huma.Middlewares{s.productOp},
	}, s.handleGetResource)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteResource",
		Method:        http.MethodDelete,
		Path:          path + "/{id}",
		Summary:       "Delete resource",
		Description:   "Deletes a resource and decrements its tags' usage",
		Tags:          []string{"Resources"},
		DefaultStatus: http.StatusNoContent,
		Security:      []map[string][]string{{"adminSecret": {}}},
		Middlewares:   huma.Middlewares{s.productOp, s.adminOp},
	}, s.handleDeleteResource)
}

// === DTOs ===

// ListResourcesInput contains parameters for listing resources. Every
// query parameter is a plain string so malformed values fall back to
// defaults instead of failing the request.
type ListResourcesInput struct {
	Product string `path:"product" doc:"Product scope (ecomm, admin, crm)"`
	Search  string `query:"search" doc:"Case-insensitive substring of title or description"`
	Type    string `query:"type" doc:"video, pdf or article; anything else lists every type"`
	Tags    string `query:"tags" doc:"Comma-separated tags, any may match"`
	Cursor  string `query:"cursor" doc:"Offset returned as nextCursor by the previous page"`
	Limit   string `query:"limit" doc:"Page size 1-100, default 20"`
}

// Params converts the input to list parameters.
func (in *ListResourcesInput) Params() domain.QueryParams {
	p := domain.QueryParams{
		Search: in.Search,
		Type:   domain.ParseTypeFilter(in.Type),
		Tags:   domain.SplitList(in.Tags),
		Cursor: domain.Cursor(in.Cursor),
	}
	if n, err := strconv.Atoi(in.Limit); err == nil {
		p.Limit = n
	}
	return p
}

// ListResourcesOutput wraps one page for Huma.
type ListResourcesOutput struct {
	Body *domain.ResourceList
}

// ResourceInput identifies a single resource.
type ResourceInput struct {
	Product string `path:"product" doc:"Product scope (ecomm, admin, crm)"`
	ID      string `path:"id" doc:"Resource ID"`
}

// ResourceOutput wraps a resource for Huma.
type ResourceOutput struct {
	Body *domain.Resource
}

// === Handlers ===

func (s *Server) handleListResources(ctx context.Context, input *ListResourcesInput) (*ListResourcesOutput, error) {
	list, err := s.store.ListResources(ctx, domain.Product(input.Product), input.Params())
	if err != nil {
		s.logger.Error("Failed to list resources", "product", input.Product, "error", err)
		return nil, fromStore(err, response.CodeQueryFailed)
	}
	return &ListResourcesOutput{Body: list}, nil
}

func (s *Server) handleGetResource(ctx context.Context, input *ResourceInput) (*ResourceOutput, error) {
	r, err := s.store.GetResource(ctx, domain.Product(input.Product), input.ID)
	if err != nil {
		return nil, fromStore(err, response.CodeQueryFailed)
	}
	return &ResourceOutput{Body: r}, nil
}

func (s *Server) handleDeleteResource(ctx context.Context, input *ResourceInput) (*struct{}, error) {
	if err := s.store.DeleteResource(ctx, domain.Product(input.Product), input.ID); err != nil {
		return nil, fromStore(err, response.CodeMutationFailed)
	}
	s.logger.Info("Resource deleted", "product", input.Product, "id", input.ID)
	return nil, nil
}
