package main

import (
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/learninghub/learninghub/internal/domain"
	"github.com/learninghub/learninghub/internal/errors"
)

// readUpload loads the file at path for a multipart write. The content
// type comes from the extension, or is sniffed when the extension is
// unknown.
func readUpload(path string) (*domain.Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeValidation, "read %s", path)
	}
	if len(data) > domain.MaxUploadSize {
		return nil, errors.Validationf("%s is larger than %d MB", filepath.Base(path), domain.MaxUploadSize>>20)
	}

	ct := mime.TypeByExtension(filepath.Ext(path))
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	return &domain.Upload{Name: filepath.Base(path), ContentType: ct, Data: data}, nil
}
