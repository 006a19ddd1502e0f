// Package response writes the backend's JSON responses: bodies are sent
// bare and failures as {"error": <code>, "message": <text>}.
package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/learninghub/learninghub/internal/domain"
	"github.com/learninghub/learninghub/internal/store"
)

// Error codes sent in the "error" field.
const (
	CodeInvalidParam       = "invalid_param"
	CodeInvalidContentType = "invalid_content_type"
	CodeInvalidPayload     = "invalid_payload"
	CodeUnauthorized       = "unauthorized"
	CodeTooManyRequests    = "too_many_request"
	CodeNotFound           = "not_found"
	CodeConflict           = "conflict"
	CodeQueryFailed        = "query_failed"
	CodeMutationFailed     = "mutation_failed"
	CodeUploadFailed       = "upload_failed"
)

// JSON writes data as the response body with the given status code.
func JSON(w http.ResponseWriter, status int, data any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil && logger != nil {
		logger.Error("Failed to encode JSON response", "error", err)
	}
}

// Success writes a successful JSON response (200 OK).
func Success(w http.ResponseWriter, data any, logger *slog.Logger) {
	JSON(w, http.StatusOK, data, logger)
}

// Created writes a created response (201 Created).
func Created(w http.ResponseWriter, data any, logger *slog.Logger) {
	JSON(w, http.StatusCreated, data, logger)
}

// NoContent writes a no content response (204 No Content).
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error writes an error response with the given status code.
func Error(w http.ResponseWriter, status int, code, message string, logger *slog.Logger) {
	JSON(w, status, domain.ErrorResponse{Error: code, Message: message}, logger)
}

// BadRequest writes a 400 Bad Request response.
func BadRequest(w http.ResponseWriter, code, message string, logger *slog.Logger) {
	Error(w, http.StatusBadRequest, code, message, logger)
}

// Unauthorized writes a 401 Unauthorized response.
func Unauthorized(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusUnauthorized, CodeUnauthorized, message, logger)
}

// NotFound writes a 404 Not Found response.
func NotFound(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusNotFound, CodeNotFound, message, logger)
}

// TooManyRequests writes a 429 Too Many Requests response.
func TooManyRequests(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusTooManyRequests, CodeTooManyRequests, message, logger)
}

// InternalError writes a 500 Internal Server Error response.
func InternalError(w http.ResponseWriter, code, message string, logger *slog.Logger) {
	Error(w, http.StatusInternalServerError, code, message, logger)
}

// CodeFor returns the wire code of a store error status. fallback is used
// for 500s so reads and writes report query_failed and mutation_failed.
func CodeFor(status int, fallback string) string {
	switch status {
	case http.StatusBadRequest:
		return CodeInvalidPayload
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusConflict:
		return CodeConflict
	case http.StatusTooManyRequests:
		return CodeTooManyRequests
	default:
		return fallback
	}
}

// HandleError writes an appropriate HTTP response based on the error type.
// Store errors are mapped to their HTTP codes, unknown errors become 500
// with fallback as the code.
func HandleError(w http.ResponseWriter, err error, fallback string, logger *slog.Logger) {
	var storeErr *store.Error
	if errors.As(err, &storeErr) {
		Error(w, storeErr.HTTPCode(), CodeFor(storeErr.HTTPCode(), fallback), storeErr.Message, logger)
		return
	}

	// Unknown error = 500
	if logger != nil {
		logger.Error("Unhandled error", "error", err)
	}
	InternalError(w, fallback, "internal server error", logger)
}
