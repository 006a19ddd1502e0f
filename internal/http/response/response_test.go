package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/learninghub/learninghub/internal/domain"
	"github.com/learninghub/learninghub/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeError(t *testing.T, w *httptest.ResponseRecorder) domain.ErrorResponse {
	t.Helper()
	var body domain.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestJSON_BareBody(t *testing.T) {
	w := httptest.NewRecorder()
	Success(w, domain.Tag{Name: "go", UsageCount: 2}, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"name":"go","usageCount":2}`, w.Body.String())
}

func TestCreatedAndNoContent(t *testing.T) {
	w := httptest.NewRecorder()
	Created(w, map[string]string{"id": "1"}, nil)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	NoContent(w)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name   string
		write  func(w http.ResponseWriter)
		status int
		code   string
	}{
		{"bad request", func(w http.ResponseWriter) { BadRequest(w, CodeInvalidParam, "m", nil) }, 400, CodeInvalidParam},
		{"unauthorized", func(w http.ResponseWriter) { Unauthorized(w, "m", nil) }, 401, CodeUnauthorized},
		{"not found", func(w http.ResponseWriter) { NotFound(w, "m", nil) }, 404, CodeNotFound},
		{"rate limited", func(w http.ResponseWriter) { TooManyRequests(w, "m", nil) }, 429, CodeTooManyRequests},
		{"internal", func(w http.ResponseWriter) { InternalError(w, CodeQueryFailed, "m", nil) }, 500, CodeQueryFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w)
			assert.Equal(t, tt.status, w.Code)
			body := decodeError(t, w)
			assert.Equal(t, tt.code, body.Error)
			assert.Equal(t, "m", body.Message)
		})
	}
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"not found", store.ErrNotFound, 404, CodeNotFound, "Resource not found"},
		{"type change", store.ErrTypeChange, 400, CodeInvalidPayload, "Resource type cannot be changed"},
		{"conflict", store.ErrAlreadyExists, 409, CodeConflict, "Resource already exists"},
		{"unknown", errors.New("disk full"), 500, CodeMutationFailed, "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			HandleError(w, tt.err, CodeMutationFailed, nil)

			assert.Equal(t, tt.status, w.Code)
			body := decodeError(t, w)
			assert.Equal(t, tt.code, body.Error)
			assert.Equal(t, tt.message, body.Message)
		})
	}
}
