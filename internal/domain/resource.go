package domain

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Wire and paging constants shared by the client and the mock backend.
const (
	PageSize          = 20
	MaxPageSize       = 100
	MaxUploadSize     = 100 << 20
	AdminSecretHeader = "AdminSecret"
	AdminSecretParam  = "adminSecret"
)

// ResourceType is the kind of learning resource.
type ResourceType string

// Resource types.
const (
	TypeVideo   ResourceType = "video"
	TypePDF     ResourceType = "pdf"
	TypeArticle ResourceType = "article"
)

// ResourceTypes lists the valid resource types in display order.
var ResourceTypes = []ResourceType{TypeVideo, TypePDF, TypeArticle}

// Valid reports whether t is a known resource type.
func (t ResourceType) Valid() bool {
	switch t {
	case TypeVideo, TypePDF, TypeArticle:
		return true
	}
	return false
}

// NeedsFile reports whether resources of this type carry an uploaded file
// rather than a link.
func (t ResourceType) NeedsFile() bool {
	return t == TypeVideo || t == TypePDF
}

// Label is the plural label used by the type filter.
func (t ResourceType) Label() string {
	switch t {
	case TypeVideo:
		return "Videos"
	case TypePDF:
		return "PDFs"
	case TypeArticle:
		return "Articles"
	}
	return string(t)
}

// ParseResourceType parses s, reporting whether it names a resource type.
func ParseResourceType(s string) (ResourceType, bool) {
	t := ResourceType(strings.ToLower(strings.TrimSpace(s)))
	return t, t.Valid()
}

// TypeFilter is a resource type or "all".
type TypeFilter string

// TypeAll matches every resource type.
const TypeAll TypeFilter = "all"

// ParseTypeFilter parses s. Anything that is neither a resource type nor
// "all" yields TypeAll.
func ParseTypeFilter(s string) TypeFilter {
	if t, ok := ParseResourceType(s); ok {
		return TypeFilter(t)
	}
	return TypeAll
}

// ResourceType returns the filtered type, or false for TypeAll.
func (f TypeFilter) ResourceType() (ResourceType, bool) {
	t := ResourceType(f)
	return t, t.Valid()
}

// IsAll reports whether the filter matches every type.
func (f TypeFilter) IsAll() bool {
	_, ok := f.ResourceType()
	return !ok
}

// Resource is a learning resource as served by the backend.
type Resource struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Type         ResourceType `json:"type"`
	URL          string       `json:"url"`
	ThumbnailURL string       `json:"thumbnailUrl,omitempty"`
	Tags         []string     `json:"tags"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// Touch updates the UpdatedAt timestamp.
func (r *Resource) Touch() {
	r.UpdatedAt = time.Now()
}

// Cursor is an offset pagination token. The wire form is a string, but
// numeric tokens are accepted when decoding.
type Cursor string

// UnmarshalJSON accepts a JSON string, number or null.
func (c *Cursor) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*c = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*c = Cursor(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*c = Cursor(n.String())
	return nil
}

// Offset returns the numeric offset, or 0 for an empty or invalid cursor.
func (c Cursor) Offset() int {
	n, err := strconv.Atoi(string(c))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// OffsetCursor encodes an offset as a cursor.
func OffsetCursor(offset int) Cursor {
	return Cursor(strconv.Itoa(offset))
}

// ResourceList is one page of resources.
type ResourceList struct {
	Data       []Resource `json:"data"`
	NextCursor Cursor     `json:"nextCursor,omitempty"`
	HasMore    bool       `json:"hasMore"`
	Total      int        `json:"total,omitempty"`
}

// ErrorResponse is the JSON body of a non-2xx backend response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
