package gateway

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/learninghub/learninghub/internal/domain"
	"github.com/learninghub/learninghub/internal/errors"
	"github.com/learninghub/learninghub/internal/filters"
	"github.com/learninghub/learninghub/internal/flash"
	"github.com/learninghub/learninghub/internal/service"
	"github.com/learninghub/learninghub/internal/view"
)

// ParamPage selects the list page. It is read on entry only; the
// controller never writes it back.
const ParamPage = "page"

// handleResources renders one page of the list screen. The filters
// controller is rebuilt from the request URL, so every query parameter the
// screen understands works here.
func (s *Server) handleResources(w http.ResponseWriter, r *http.Request) {
	p := domain.Product(chi.URLParam(r, "product"))
	if !p.Valid() {
		s.renderBoundary(w, http.StatusNotFound, view.NewRouteError(http.StatusNotFound))
		return
	}

	center := flash.NewCenter()
	svc := service.NewResourceService(s.client, s.cache, center, p, s.opts.AdminSecret, s.logger)
	ctrl := filters.New(filters.NewMemoryURL(r.URL.Query()))
	lib := svc.NewLibrary(ctrl)
	defer lib.Stop()

	ctx := r.Context()
	tags := lib.LoadTags(ctx)
	if n, err := strconv.Atoi(r.URL.Query().Get(ParamPage)); err == nil {
		ctrl.SetCurrentPage(n)
	}
	list := lib.LoadList(ctx)
	if list.Err != nil {
		s.logger.Warn("List page failed", "product", p, "error", list.Err)
		s.renderBoundary(w, statusFor(list.Err), list.Err)
		return
	}

	page := view.Page{
		Product: p,
		State:   ctrl.State(),
		Tags:    tags.Data,
		List: view.List{
			Resources:        list.Data.Data,
			HasActiveFilters: ctrl.HasActiveFilters(),
		},
		HasMore: list.Data.HasMore,
		Flash:   center.List(),
	}

	var buf bytes.Buffer
	if err := view.RenderPage(&buf, page); err != nil {
		s.renderBoundary(w, http.StatusInternalServerError, err)
		return
	}
	writeText(w, http.StatusOK, buf.Bytes())
}

func (s *Server) renderBoundary(w http.ResponseWriter, status int, err error) {
	var buf bytes.Buffer
	if rerr := view.RenderBoundary(&buf, view.BoundaryFor(err)); rerr != nil {
		s.logger.Error("Failed to render error page", "error", rerr)
	}
	writeText(w, status, buf.Bytes())
}

func writeText(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// statusFor maps a failed backend read to the page status.
func statusFor(err error) int {
	var e *errors.Error
	if errors.As(err, &e) {
		if e.Code == errors.CodeNetwork || e.Code == errors.CodeCanceled {
			return http.StatusBadGateway
		}
		return e.HTTPStatus()
	}
	return http.StatusBadGateway
}
