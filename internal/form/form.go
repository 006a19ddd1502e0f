// Package form holds the state of the create and update resource forms:
// field values, per-field errors, type-dependent rules and the payloads
// submitted to the API. A Form is owned by one caller and is not safe for
// concurrent use.
package form

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/learninghub/learninghub/internal/domain"
	"github.com/learninghub/learninghub/internal/errors"
	"github.com/learninghub/learninghub/internal/util"
	"github.com/learninghub/learninghub/internal/validation"
)

// Field names, as used for error keys.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldType        = "type"
	FieldURL         = "url"
	FieldThumbnail   = "thumbnailUrl"
	FieldTags        = "tags"
	FieldFile        = "file"
)

// PreviewURLLength is the number of URL characters shown in a preview.
const PreviewURLLength = 50

// Mode tells a create form from an update form.
type Mode int

const (
	ModeCreate Mode = iota
	ModeUpdate
)

func (m Mode) String() string {
	if m == ModeUpdate {
		return "update"
	}
	return "create"
}

// Values is a copy of the current field values.
type Values struct {
	Title        string
	Description  string
	Type         domain.ResourceType
	URL          string
	ThumbnailURL string
	Tags         []string
	File         *domain.Upload
	Thumbnail    *domain.Upload
}

// fields is what the validator sees.
type fields struct {
	Title       string   `json:"title" validate:"notblank"`
	Description string   `json:"description" validate:"notblank"`
	Type        string   `json:"type" validate:"resourcetype"`
	URL         string   `json:"url" validate:"required_if=IsArticle true"`
	Tags        []string `json:"tags" validate:"min=1"`
	HasFile     bool     `json:"file" validate:"required_if=NeedsFile true"`

	IsArticle bool `json:"-"`
	NeedsFile bool `json:"-"`
}

// Form is a resource form in create or update mode.
type Form struct {
	mode     Mode
	original domain.Resource
	v        Values
	preview  string
	errs     map[string]string
	val      *validation.Validator
}

// NewCreate returns an empty create form. The type starts as video.
func NewCreate(val *validation.Validator) *Form {
	return &Form{
		mode: ModeCreate,
		v:    Values{Type: domain.TypeVideo},
		errs: map[string]string{},
		val:  val,
	}
}

// NewUpdate returns an update form pre-filled from r.
func NewUpdate(val *validation.Validator, r domain.Resource) *Form {
	return &Form{
		mode:     ModeUpdate,
		original: r,
		v: Values{
			Title:        r.Title,
			Description:  r.Description,
			Type:         r.Type,
			URL:          r.URL,
			ThumbnailURL: r.ThumbnailURL,
			Tags:         slices.Clone(r.Tags),
		},
		preview: r.ThumbnailURL,
		errs:    map[string]string{},
		val:     val,
	}
}

// Mode returns the form mode.
func (f *Form) Mode() Mode { return f.mode }

// Values returns a copy of the field values.
func (f *Form) Values() Values {
	v := f.v
	v.Tags = slices.Clone(f.v.Tags)
	return v
}

func (f *Form) SetTitle(s string) {
	f.v.Title = s
	f.clearError(FieldTitle)
}

func (f *Form) SetDescription(s string) {
	f.v.Description = s
	f.clearError(FieldDescription)
}

// SetType changes the resource type. On a create form the file and URL
// gathered for the previous type are dropped.
func (f *Form) SetType(t domain.ResourceType) {
	if t == f.v.Type {
		return
	}
	f.v.Type = t
	if f.mode == ModeCreate {
		f.v.File = nil
		f.v.URL = ""
		f.clearError(FieldFile)
		f.clearError(FieldURL)
	}
	f.clearError(FieldType)
}

// SetURL sets the link and drops an attached file.
func (f *Form) SetURL(s string) {
	f.v.URL = s
	if s != "" {
		f.v.File = nil
	}
	f.clearError(FieldURL)
}

func (f *Form) SetThumbnailURL(s string) {
	f.v.ThumbnailURL = s
	f.clearError(FieldThumbnail)
}

// SetTags replaces the tag selection.
func (f *Form) SetTags(tags []string) {
	f.v.Tags = slices.Clone(tags)
	f.clearError(FieldTags)
}

// SetFile attaches the primary file. For videos and PDFs the URL is cleared.
// A nil upload is ignored.
func (f *Form) SetFile(u *domain.Upload) {
	if u == nil {
		return
	}
	f.v.File = u
	if f.v.Type.NeedsFile() {
		f.v.URL = ""
	}
	f.clearError(FieldFile)
}

// RemoveFile detaches the primary file.
func (f *Form) RemoveFile() {
	f.v.File = nil
}

// SetThumbnail attaches a thumbnail and builds its data URL preview.
func (f *Form) SetThumbnail(u *domain.Upload) {
	if u == nil {
		return
	}
	f.v.Thumbnail = u
	f.preview = DataURL(u)
}

// RemoveThumbnail detaches the thumbnail and clears the preview.
func (f *Form) RemoveThumbnail() {
	f.v.Thumbnail = nil
	f.preview = ""
}

// ThumbnailPreview returns the thumbnail preview URL, or "".
func (f *Form) ThumbnailPreview() string {
	return f.preview
}

// Errors returns the current per-field errors.
func (f *Form) Errors() map[string]string {
	out := make(map[string]string, len(f.errs))
	for k, v := range f.errs {
		out[k] = v
	}
	return out
}

// Error returns the error of one field, or "".
func (f *Form) Error(field string) string {
	return f.errs[field]
}

func (f *Form) clearError(field string) {
	delete(f.errs, field)
}

// Validate checks every rule, records the failures and returns a
// VALIDATION error carrying them, or nil.
func (f *Form) Validate() error {
	in := fields{
		Title:       f.v.Title,
		Description: f.v.Description,
		Type:        string(f.v.Type),
		URL:         strings.TrimSpace(f.v.URL),
		Tags:        f.v.Tags,
		HasFile:     f.v.File != nil,
		IsArticle:   f.v.Type == domain.TypeArticle,
	}
	if f.v.Type.NeedsFile() {
		in.NeedsFile = f.mode == ModeCreate || strings.TrimSpace(f.v.URL) == ""
	}

	msgs := validation.Messages{
		FieldTitle:       "Title is required",
		FieldDescription: "Description is required",
		FieldType:        "Type must be one of video, pdf, article",
		FieldURL:         "URL is required for articles",
		FieldTags:        "At least one tag is required",
		FieldFile:        fmt.Sprintf("Please select a %s file", f.v.Type),
	}

	err := f.val.ValidateWith(in, msgs)
	f.errs = map[string]string{}
	if err == nil {
		return nil
	}
	var e *errors.Error
	if errors.As(err, &e) {
		for k, v := range e.Fields() {
			f.errs[k] = v
		}
	}
	return err
}

// CreatePayload validates and returns the create request.
func (f *Form) CreatePayload() (domain.ResourceInput, error) {
	if err := f.Validate(); err != nil {
		return domain.ResourceInput{}, err
	}
	return domain.ResourceInput{
		Title:        f.v.Title,
		Description:  f.v.Description,
		Type:         f.v.Type,
		URL:          f.v.URL,
		ThumbnailURL: f.v.ThumbnailURL,
		Tags:         slices.Clone(f.v.Tags),
		File:         f.v.File,
		Thumbnail:    f.v.Thumbnail,
	}, nil
}

// UpdateDelta validates and returns only what changed since the form was
// filled, plus the resource ID. Tags are compared as sets.
func (f *Form) UpdateDelta() (domain.ResourceDelta, error) {
	if f.mode != ModeUpdate {
		return domain.ResourceDelta{}, errors.Internal("update delta requested from a create form")
	}
	if err := f.Validate(); err != nil {
		return domain.ResourceDelta{}, err
	}

	o := f.original
	d := domain.ResourceDelta{ID: o.ID}
	if f.v.Title != o.Title {
		d.Title = ptr(f.v.Title)
	}
	if f.v.Description != o.Description {
		d.Description = ptr(f.v.Description)
	}
	if f.v.Type != o.Type {
		d.Type = ptr(f.v.Type)
	}
	if f.v.URL != o.URL && f.v.File == nil {
		d.URL = ptr(f.v.URL)
	}
	if f.v.ThumbnailURL != o.ThumbnailURL {
		d.ThumbnailURL = ptr(f.v.ThumbnailURL)
	}
	if !util.SameSet(f.v.Tags, o.Tags) {
		d.Tags = slices.Clone(f.v.Tags)
	}
	d.File = f.v.File
	d.Thumbnail = f.v.Thumbnail
	return d, nil
}

// CanPreview reports whether enough is filled in to show a preview.
func (f *Form) CanPreview() bool {
	if f.v.Title == "" || f.v.Description == "" {
		return false
	}
	switch {
	case f.v.Type == domain.TypeArticle:
		return f.v.URL != ""
	case f.v.Type.NeedsFile():
		return f.v.File != nil || f.v.URL != ""
	}
	return false
}

// Preview is the rendered summary of an in-progress resource.
type Preview struct {
	Title       string
	Description string
	Type        domain.ResourceType
	Body        string
}

// Preview summarizes the form without persisting anything.
func (f *Form) Preview() Preview {
	p := Preview{
		Title:       f.v.Title,
		Description: f.v.Description,
		Type:        f.v.Type,
	}
	if p.Title == "" {
		p.Title = "Resource Preview"
	}

	switch f.v.Type {
	case domain.TypeVideo, domain.TypePDF:
		label := "Video"
		if f.v.Type == domain.TypePDF {
			label = "PDF"
		}
		switch {
		case f.v.File != nil:
			p.Body = fmt.Sprintf("%s file: %s", label, f.v.File.Name)
		case f.v.URL != "":
			p.Body = util.Truncate(f.v.URL, PreviewURLLength)
		default:
			p.Body = label + " file not available for preview"
		}
	case domain.TypeArticle:
		if f.v.URL != "" {
			p.Body = util.Truncate(f.v.URL, PreviewURLLength)
		} else {
			p.Body = "No preview available"
		}
	default:
		p.Body = "No preview available"
	}
	return p
}

// DataURL encodes u as a data URL. A missing content type is sniffed.
func DataURL(u *domain.Upload) string {
	ct := u.ContentType
	if ct == "" {
		ct = http.DetectContentType(u.Data)
	}
	return "data:" + ct + ";base64," + base64.StdEncoding.EncodeToString(u.Data)
}

func ptr[T any](v T) *T { return &v }
