package mock

import (
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/learninghub/learninghub/internal/domain"
	"github.com/learninghub/learninghub/internal/http/response"
	"github.com/learninghub/learninghub/internal/id"
	"github.com/learninghub/learninghub/internal/store"
	"github.com/learninghub/learninghub/internal/util"
)

const (
	maxMemory = 32 << 20

	msgNotMultipart    = "Request must be multipart/form-data"
	msgFileTooLarge    = "File too large. Maximum size is 100 MB"
	msgRequiredFields  = "Title, description, and type are required"
	msgInvalidType     = "Type must be 'video', 'pdf', or 'article'"
	msgURLRequired     = "Url must be provided for 'article'"
	msgURLOrFile       = "Either provide url or file"
	msgURLOrThumbnail  = "Either provide url or thumbnail"
	msgFileOrURLNeeded = "Either a file or an existing url is required"
)

// uploadURL fabricates the storage URL an upload would receive.
func uploadURL(p domain.Product, kind string, fh *multipart.FileHeader) string {
	base := filepath.Base(fh.Filename)
	ext := filepath.Ext(base)
	if ext == base {
		ext = ""
	}
	name := util.Slugify(strings.TrimSuffix(base, ext)) + strings.ToLower(ext)
	return fmt.Sprintf("mock://uploads/%s/%s/%s_%s", p, kind, id.MustGenerate(id.PrefixUpload), name)
}

// parseMultipart reads a multipart body of at most domain.MaxUploadSize
// bytes. It writes the error response itself and reports false on failure.
func (s *Server) parseMultipart(w http.ResponseWriter, r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/form-data" {
		response.BadRequest(w, response.CodeInvalidContentType, msgNotMultipart, s.logger)
		return false
	}

	r.Body = http.MaxBytesReader(w, r.Body, domain.MaxUploadSize)
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.BadRequest(w, response.CodeInvalidPayload, msgFileTooLarge, s.logger)
			return false
		}
		response.BadRequest(w, response.CodeInvalidPayload, fmt.Sprintf("Failed to parse form data: %v", err), s.logger)
		return false
	}
	return true
}

// formFile returns the first file part named field, or nil.
func formFile(r *http.Request, field string) *multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	if files := r.MultipartForm.File[field]; len(files) > 0 {
		return files[0]
	}
	return nil
}

// formValue returns the trimmed value of field and whether it was sent.
func formValue(r *http.Request, field string) (string, bool) {
	if r.MultipartForm == nil {
		return "", false
	}
	vs, ok := r.MultipartForm.Value[field]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return strings.TrimSpace(vs[0]), true
}

func (s *Server) handleCreateResource(w http.ResponseWriter, r *http.Request) {
	if !s.parseMultipart(w, r) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	p := domain.Product(chi.URLParam(r, "product"))
	title, _ := formValue(r, "title")
	description, _ := formValue(r, "description")
	rawType, _ := formValue(r, "type")
	rawURL, _ := formValue(r, "url")
	thumbnailURL, _ := formValue(r, "thumbnailUrl")
	rawTags, _ := formValue(r, "tags")
	file := formFile(r, "file")
	thumbnail := formFile(r, "thumbnail")

	if title == "" || description == "" || rawType == "" {
		response.BadRequest(w, response.CodeInvalidPayload, msgRequiredFields, s.logger)
		return
	}
	rt, ok := domain.ParseResourceType(rawType)
	if !ok {
		response.BadRequest(w, response.CodeInvalidPayload, msgInvalidType, s.logger)
		return
	}

	res := domain.Resource{
		Title:        title,
		Description:  description,
		Type:         rt,
		ThumbnailURL: thumbnailURL,
		Tags:         util.NormalizeTags(strings.Split(rawTags, ",")),
	}

	if rt.NeedsFile() {
		if file == nil {
			response.BadRequest(w, response.CodeInvalidPayload, fmt.Sprintf("File is required for %s resources", rt), s.logger)
			return
		}
		res.URL = uploadURL(p, string(rt), file)
	} else {
		if rawURL == "" {
			response.BadRequest(w, response.CodeInvalidPayload, msgURLRequired, s.logger)
			return
		}
		res.URL = rawURL
	}
	if res.ThumbnailURL == "" && thumbnail != nil {
		res.ThumbnailURL = uploadURL(p, "image", thumbnail)
	}

	created, err := s.store.CreateResource(r.Context(), p, &res)
	if err != nil {
		s.writeStoreError(w, err, response.CodeMutationFailed)
		return
	}

	s.logger.Info("Resource created", "product", p, "id", created.ID, "type", created.Type)
	response.Created(w, created, s.logger)
}

func (s *Server) handleUpdateResource(w http.ResponseWriter, r *http.Request) {
	if !s.parseMultipart(w, r) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	p := domain.Product(chi.URLParam(r, "product"))
	resourceID := chi.URLParam(r, "id")
	file := formFile(r, "file")
	thumbnail := formFile(r, "thumbnail")

	rawURL, hasURL := formValue(r, "url")
	if hasURL && rawURL != "" && file != nil {
		response.BadRequest(w, response.CodeInvalidPayload, msgURLOrFile, s.logger)
		return
	}
	thumbnailURL, hasThumbnailURL := formValue(r, "thumbnailUrl")
	if hasThumbnailURL && thumbnailURL != "" && thumbnail != nil {
		response.BadRequest(w, response.CodeInvalidPayload, msgURLOrThumbnail, s.logger)
		return
	}

	updated, err := s.store.UpdateResource(r.Context(), p, resourceID, func(res *domain.Resource) error {
		if v, ok := formValue(r, "title"); ok {
			res.Title = v
		}
		if v, ok := formValue(r, "description"); ok {
			res.Description = v
		}
		if v, ok := formValue(r, "type"); ok {
			rt, valid := domain.ParseResourceType(v)
			if !valid {
				return apiError(http.StatusBadRequest, response.CodeInvalidPayload, msgInvalidType)
			}
			if rt != res.Type {
				return store.ErrTypeChange
			}
		}
		if v, ok := formValue(r, "tags"); ok {
			res.Tags = util.NormalizeTags(strings.Split(v, ","))
		}

		switch {
		case file != nil && res.Type.NeedsFile():
			res.URL = uploadURL(p, string(res.Type), file)
		case hasURL && rawURL != "":
			res.URL = rawURL
		}
		if res.URL == "" {
			return apiError(http.StatusBadRequest, response.CodeInvalidPayload, msgFileOrURLNeeded)
		}

		switch {
		case thumbnail != nil:
			res.ThumbnailURL = uploadURL(p, "image", thumbnail)
		case hasThumbnailURL:
			res.ThumbnailURL = thumbnailURL
		}
		return nil
	})
	if err != nil {
		s.writeStoreError(w, err, response.CodeMutationFailed)
		return
	}

	s.logger.Info("Resource updated", "product", p, "id", updated.ID)
	response.Success(w, updated, s.logger)
}

// writeStoreError writes err from a chi handler. API errors keep their
// status and code; store errors are mapped.
func (s *Server) writeStoreError(w http.ResponseWriter, err error, fallback string) {
	var ae *APIError
	if !errors.As(err, &ae) {
		ae = fromStore(err, fallback)
	}
	if ae.status >= http.StatusInternalServerError {
		s.logger.Error("mock write failed", "error", err)
	}
	response.Error(w, ae.status, ae.Code, ae.Message, s.logger)
}
