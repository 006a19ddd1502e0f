// Package fixtures loads the mock backend's dataset from YAML and keeps the
// store in sync with the file while it is edited.
package fixtures

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/learninghub/learninghub/internal/domain"
	domainerrors "github.com/learninghub/learninghub/internal/errors"
	"github.com/learninghub/learninghub/internal/validation"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// Resource is one fixture entry. An empty ID is generated on load and a
// zero createdAt is set to the load time.
type Resource struct {
	ID           string    `yaml:"id" json:"id"`
	Title        string    `yaml:"title" json:"title" validate:"notblank"`
	Description  string    `yaml:"description" json:"description"`
	Type         string    `yaml:"type" json:"type" validate:"resourcetype"`
	URL          string    `yaml:"url" json:"url"`
	ThumbnailURL string    `yaml:"thumbnailUrl" json:"thumbnailUrl"`
	Tags         []string  `yaml:"tags" json:"tags"`
	CreatedAt    time.Time `yaml:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `yaml:"updatedAt" json:"updatedAt"`
}

// Domain converts the entry to a resource.
func (r Resource) Domain() domain.Resource {
	return domain.Resource{
		ID:           r.ID,
		Title:        r.Title,
		Description:  r.Description,
		Type:         domain.ResourceType(r.Type),
		URL:          r.URL,
		ThumbnailURL: r.ThumbnailURL,
		Tags:         r.Tags,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// File is a fixture document.
//
//	products:
//	  ecomm:
//	    - title: Go basics
//	      type: video
//	      tags: [go]
type File struct {
	Products map[domain.Product][]Resource `yaml:"products"`
}

// Resources returns the converted entries of product p.
func (f *File) Resources(p domain.Product) []domain.Resource {
	entries := f.Products[p]
	out := make([]domain.Resource, len(entries))
	for i, e := range entries {
		out[i] = e.Domain()
	}
	return out
}

// Count returns the number of entries across all products.
func (f *File) Count() int {
	n := 0
	for _, rs := range f.Products {
		n += len(rs)
	}
	return n
}

// Decode parses and validates a fixture document. Unknown keys are errors.
func Decode(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, domainerrors.Wrap(err, domainerrors.CodeValidation, "invalid fixtures")
	}
	if f.Products == nil {
		f.Products = map[domain.Product][]Resource{}
	}

	v := validation.New()
	for p, entries := range f.Products {
		if !p.Valid() {
			return nil, domainerrors.Validationf("unknown product %q", p)
		}
		for i, e := range entries {
			if err := v.Validate(e); err != nil {
				return nil, domainerrors.Wrapf(err, domainerrors.CodeValidation, "products.%s[%d]", p, i)
			}
		}
	}
	return &f, nil
}

// Load reads the fixture file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	return Decode(bytes.NewReader(data))
}

// Default returns the built-in sample dataset.
func Default() *File {
	f, err := Decode(bytes.NewReader(defaultYAML))
	if err != nil {
		panic(fmt.Sprintf("invalid built-in fixtures: %v", err))
	}
	return f
}

// Target receives a product's fixture set.
type Target interface {
	ReplaceResources(ctx context.Context, p domain.Product, rs []domain.Resource) error
}

// Apply replaces every product's data in t with f's entries. Products the
// file does not mention are emptied.
func Apply(ctx context.Context, t Target, f *File) error {
	for _, p := range domain.Products {
		if err := t.ReplaceResources(ctx, p, f.Resources(p)); err != nil {
			return fmt.Errorf("apply %s fixtures: %w", p, err)
		}
	}
	return nil
}
