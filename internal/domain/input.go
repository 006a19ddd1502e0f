package domain

import "slices"

// Upload is a file attached to a multipart write.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

// ResourceInput is the full payload of a create request. Empty fields are
// not sent.
type ResourceInput struct {
	Title        string
	Description  string
	Type         ResourceType
	URL          string
	ThumbnailURL string
	Tags         []string
	File         *Upload
	Thumbnail    *Upload
}

// ResourceDelta is a sparse update. Only non-nil fields are sent; ID is
// always present and travels in the request path.
type ResourceDelta struct {
	ID           string
	Title        *string
	Description  *string
	Type         *ResourceType
	URL          *string
	ThumbnailURL *string
	Tags         []string // nil means unchanged
	File         *Upload
	Thumbnail    *Upload
}

// Fields lists the JSON names of the fields the delta carries, id first.
func (d ResourceDelta) Fields() []string {
	fields := []string{"id"}
	add := func(name string, present bool) {
		if present {
			fields = append(fields, name)
		}
	}
	add("title", d.Title != nil)
	add("description", d.Description != nil)
	add("type", d.Type != nil)
	add("url", d.URL != nil)
	add("thumbnailUrl", d.ThumbnailURL != nil)
	add("tags", d.Tags != nil)
	add("file", d.File != nil)
	add("thumbnail", d.Thumbnail != nil)
	return fields
}

// Empty reports whether the delta changes nothing.
func (d ResourceDelta) Empty() bool {
	return len(d.Fields()) == 1
}

// Has reports whether the delta carries field.
func (d ResourceDelta) Has(field string) bool {
	return slices.Contains(d.Fields(), field)
}
