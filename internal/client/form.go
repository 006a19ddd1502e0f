package client

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/learninghub/learninghub/internal/domain"
)

type formFile struct {
	field  string
	upload *domain.Upload
}

// Form is a multipart request body. Empty values and nil uploads are skipped.
type Form struct {
	fields [][2]string
	files  []formFile
}

// NewForm returns an empty form.
func NewForm() *Form {
	return &Form{}
}

// Set adds a text field unless value is empty.
func (f *Form) Set(name, value string) *Form {
	if value != "" {
		f.fields = append(f.fields, [2]string{name, value})
	}
	return f
}

// SetList adds a comma-joined field unless values is empty.
func (f *Form) SetList(name string, values []string) *Form {
	return f.Set(name, strings.Join(values, ","))
}

// File adds a file part unless u is nil.
func (f *Form) File(name string, u *domain.Upload) *Form {
	if u != nil {
		f.files = append(f.files, formFile{field: name, upload: u})
	}
	return f
}

// Names returns the field names in the form, text fields first.
func (f *Form) Names() []string {
	names := make([]string, 0, len(f.fields)+len(f.files))
	for _, kv := range f.fields {
		names = append(names, kv[0])
	}
	for _, ff := range f.files {
		names = append(names, ff.field)
	}
	return names
}

// Encode writes the multipart body and returns it with its content type.
func (f *Form) Encode() (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, kv := range f.fields {
		if err := w.WriteField(kv[0], kv[1]); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", kv[0], err)
		}
	}

	for _, ff := range f.files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, ff.field, ff.upload.Name))
		ct := ff.upload.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("create part %s: %w", ff.field, err)
		}
		if _, err := part.Write(ff.upload.Data); err != nil {
			return nil, "", fmt.Errorf("write part %s: %w", ff.field, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
