package validation_test

import (
	"net/http"
	"testing"

	domainerrors "github.com/learninghub/learninghub/internal/errors"
	"github.com/learninghub/learninghub/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testResource struct {
	Title   string   `json:"title" validate:"notblank"`
	Type    string   `json:"type" validate:"resourcetype"`
	Product string   `json:"product,omitempty" validate:"omitempty,product"`
	Tags    []string `json:"tags" validate:"min=1"`
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var e *domainerrors.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, http.StatusBadRequest, e.HTTPStatus())
	return e.Fields()
}

func TestValidator_Valid(t *testing.T) {
	v := validation.New()
	err := v.Validate(testResource{Title: "Go", Type: "pdf", Product: "crm", Tags: []string{"go"}})
	assert.NoError(t, err)
}

func TestValidator_FieldErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name  string
		req   testResource
		field string
		msg   string
	}{
		{"blank title", testResource{Title: "  ", Type: "pdf", Tags: []string{"a"}}, "title", "title is required"},
		{"bad type", testResource{Title: "x", Type: "audio", Tags: []string{"a"}}, "type", "type must be one of: video, pdf, article"},
		{"bad product", testResource{Title: "x", Type: "pdf", Product: "shop", Tags: []string{"a"}}, "product", "product must be one of: ecomm, admin, crm"},
		{"no tags", testResource{Title: "x", Type: "pdf"}, "tags", "tags must contain at least 1 item(s)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := fieldsOf(t, v.Validate(tt.req))
			assert.Equal(t, tt.msg, fields[tt.field])
			assert.Len(t, fields, 1)
		})
	}
}

func TestValidator_MessageOverrides(t *testing.T) {
	v := validation.New()
	msgs := validation.Messages{
		"title":    "Title is required",
		"tags.min": "At least one tag is required",
	}

	fields := fieldsOf(t, v.ValidateWith(testResource{Type: "video"}, msgs))
	assert.Equal(t, "Title is required", fields["title"])
	assert.Equal(t, "At least one tag is required", fields["tags"])
}

func TestValidator_IsValidationCode(t *testing.T) {
	err := validation.New().Validate(testResource{})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}
