// Package validation validates structs with validator/v10 and converts failures
// into field-keyed VALIDATION errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/learninghub/learninghub/internal/domain"
	domainerrors "github.com/learninghub/learninghub/internal/errors"
)

// Messages overrides the generated message for a field. Keys are either
// "field" or "field.tag"; the more specific key wins.
type Messages map[string]string

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator with the Learning Hub custom tags registered:
// notblank, resourcetype and product.
func New() *Validator {
	v := validator.New()

	// Use JSON tag names in error messages.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	mustRegister(v, "notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	mustRegister(v, "resourcetype", func(fl validator.FieldLevel) bool {
		return domain.ResourceType(fl.Field().String()).Valid()
	})
	mustRegister(v, "product", func(fl validator.FieldLevel) bool {
		return domain.Product(fl.Field().String()).Valid()
	})

	return &Validator{v: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// Validate validates a struct and returns a domain error.
func (v *Validator) Validate(s any) error {
	return v.ValidateWith(s, nil)
}

// ValidateWith validates s, using msgs in place of generated messages.
func (v *Validator) ValidateWith(s any, msgs Messages) error {
	if err := v.v.Struct(s); err != nil {
		return formatError(err, msgs)
	}
	return nil
}

func formatError(err error, msgs Messages) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fieldErrors := make(map[string]string, len(validationErrs))
	for _, e := range validationErrs {
		field := e.Field()
		if _, seen := fieldErrors[field]; seen {
			continue
		}
		if msg, ok := msgs[field+"."+e.Tag()]; ok {
			fieldErrors[field] = msg
		} else if msg, ok := msgs[field]; ok {
			fieldErrors[field] = msg
		} else {
			fieldErrors[field] = field + " " + friendlyMessage(e)
		}
	}

	return domainerrors.ValidationWithDetails("validation failed", fieldErrors)
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "notblank":
		return "is required"
	case "min":
		if e.Kind() == reflect.Slice || e.Kind() == reflect.Map {
			return fmt.Sprintf("must contain at least %s item(s)", e.Param())
		}
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of: " + e.Param()
	case "resourcetype":
		return "must be one of: video, pdf, article"
	case "product":
		return "must be one of: ecomm, admin, crm"
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	default:
		return "is invalid"
	}
}
