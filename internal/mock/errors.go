package mock

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/danielgtaylor/huma/v2"
	"github.com/learninghub/learninghub/internal/domain"
	"github.com/learninghub/learninghub/internal/http/response"
	"github.com/learninghub/learninghub/internal/store"
)

// APIError is the mock's huma.StatusError. It marshals to the backend's
// {"error", "message"} body.
type APIError struct {
	status  int
	Code    string `json:"error" doc:"Machine-readable error code"`
	Message string `json:"message" doc:"Human-readable error message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}

// ContentType returns the content type for the error response.
func (e *APIError) ContentType(_ string) string {
	return "application/json"
}

func apiError(status int, code, message string) *APIError {
	return &APIError{status: status, Code: code, Message: message}
}

// fromStore maps a store failure to an API error. fallback is the code
// used for unexpected failures.
func fromStore(err error, fallback string) *APIError {
	var se *store.Error
	if errors.As(err, &se) {
		return apiError(se.HTTPCode(), response.CodeFor(se.HTTPCode(), fallback), se.Message)
	}
	return apiError(http.StatusInternalServerError, fallback, err.Error())
}

var registerOnce sync.Once

// registerErrorHandler routes huma's own errors (parameter parsing, panics)
// through APIError so every failure has the same shape.
func registerErrorHandler() {
	registerOnce.Do(func() {
		huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
			for _, err := range errs {
				var ae *APIError
				if errors.As(err, &ae) {
					return ae
				}
			}
			return apiError(status, codeForStatus(status), message)
		}
	})
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return response.CodeInvalidParam
	case http.StatusUnauthorized:
		return response.CodeUnauthorized
	case http.StatusNotFound:
		return response.CodeNotFound
	case http.StatusTooManyRequests:
		return response.CodeTooManyRequests
	default:
		return response.CodeQueryFailed
	}
}

// writeHumaError writes an error body from huma middleware, where no
// handler return value is available.
func writeHumaError(ctx huma.Context, status int, code, message string) {
	ctx.SetHeader("Content-Type", "application/json; charset=utf-8")
	ctx.SetStatus(status)
	_ = json.NewEncoder(ctx.BodyWriter()).Encode(domain.ErrorResponse{Error: code, Message: message})
}
