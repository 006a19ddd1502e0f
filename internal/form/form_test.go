package form

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learninghub/learninghub/internal/domain"
	"github.com/learninghub/learninghub/internal/errors"
	"github.com/learninghub/learninghub/internal/validation"
)

var val = validation.New()

func videoUpload() *domain.Upload {
	return &domain.Upload{Name: "intro.mp4", ContentType: "video/mp4", Data: []byte("fake")}
}

func existingVideo() domain.Resource {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return domain.Resource{
		ID:          "res-1",
		Title:       "Intro",
		Description: "Getting started",
		Type:        domain.TypeVideo,
		URL:         "https://cdn.example.com/intro.mp4",
		Tags:        []string{"go", "basics"},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestNewCreate_Defaults(t *testing.T) {
	f := NewCreate(val)
	v := f.Values()
	assert.Equal(t, ModeCreate, f.Mode())
	assert.Equal(t, domain.TypeVideo, v.Type)
	assert.Nil(t, v.File)
	assert.Nil(t, v.Thumbnail)
	assert.Empty(t, f.ThumbnailPreview())
}

func TestNewUpdate_Prefills(t *testing.T) {
	r := existingVideo()
	r.ThumbnailURL = "https://cdn.example.com/intro.png"
	f := NewUpdate(val, r)

	v := f.Values()
	assert.Equal(t, "update", f.Mode().String())
	assert.Equal(t, r.Title, v.Title)
	assert.Equal(t, r.Tags, v.Tags)
	assert.Equal(t, r.ThumbnailURL, f.ThumbnailPreview())
}

func TestValidate_Create(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(f *Form)
		wantErr map[string]string
	}{
		{
			name: "everything missing",
			setup: func(f *Form) {
				f.SetTitle("   ")
			},
			wantErr: map[string]string{
				"title":       "Title is required",
				"description": "Description is required",
				"tags":        "At least one tag is required",
				"file":        "Please select a video file",
			},
		},
		{
			name: "article without url",
			setup: func(f *Form) {
				f.SetType(domain.TypeArticle)
				f.SetTitle("Hooks")
				f.SetDescription("All about hooks")
				f.SetTags([]string{"react"})
			},
			wantErr: map[string]string{"url": "URL is required for articles"},
		},
		{
			name: "article with blank url",
			setup: func(f *Form) {
				f.SetType(domain.TypeArticle)
				f.SetTitle("Hooks")
				f.SetDescription("All about hooks")
				f.SetTags([]string{"react"})
				f.SetURL("   ")
			},
			wantErr: map[string]string{"url": "URL is required for articles"},
		},
		{
			name: "pdf without file",
			setup: func(f *Form) {
				f.SetType(domain.TypePDF)
				f.SetTitle("Guide")
				f.SetDescription("A guide")
				f.SetTags([]string{"docs"})
			},
			wantErr: map[string]string{"file": "Please select a pdf file"},
		},
		{
			name: "unknown type",
			setup: func(f *Form) {
				f.SetType("podcast")
				f.SetTitle("Talk")
				f.SetDescription("A talk")
				f.SetTags([]string{"audio"})
			},
			wantErr: map[string]string{"type": "Type must be one of video, pdf, article"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewCreate(val)
			tt.setup(f)

			err := f.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrValidation))
			assert.Equal(t, tt.wantErr, f.Errors())
		})
	}
}

func TestValidate_ArticlePasses(t *testing.T) {
	f := NewCreate(val)
	f.SetType(domain.TypeArticle)
	f.SetTitle("Hooks")
	f.SetDescription("All about hooks")
	f.SetURL("https://example.com")
	f.SetTags([]string{"react"})

	require.NoError(t, f.Validate())
	assert.Empty(t, f.Errors())

	in, err := f.CreatePayload()
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", in.URL)
	assert.Equal(t, domain.TypeArticle, in.Type)
}

func TestEditingClearsFieldError(t *testing.T) {
	f := NewCreate(val)
	require.Error(t, f.Validate())
	require.NotEmpty(t, f.Error(FieldTitle))

	f.SetTitle("x")
	assert.Empty(t, f.Error(FieldTitle))
	assert.NotEmpty(t, f.Error(FieldDescription))
}

func TestSideEffects(t *testing.T) {
	t.Run("file clears url for videos", func(t *testing.T) {
		f := NewCreate(val)
		f.SetURL("https://example.com/v.mp4")
		f.SetFile(videoUpload())
		assert.Empty(t, f.Values().URL)
		assert.NotNil(t, f.Values().File)
	})

	t.Run("url clears file", func(t *testing.T) {
		f := NewCreate(val)
		f.SetFile(videoUpload())
		f.SetURL("https://example.com/v.mp4")
		assert.Nil(t, f.Values().File)
	})

	t.Run("type switch on create clears file and url", func(t *testing.T) {
		f := NewCreate(val)
		f.SetFile(videoUpload())
		f.SetType(domain.TypeArticle)
		f.SetURL("https://example.com")
		f.SetType(domain.TypePDF)
		v := f.Values()
		assert.Nil(t, v.File)
		assert.Empty(t, v.URL)
	})

	t.Run("type switch on update keeps url", func(t *testing.T) {
		f := NewUpdate(val, existingVideo())
		f.SetType(domain.TypePDF)
		assert.NotEmpty(t, f.Values().URL)
	})

	t.Run("thumbnail preview", func(t *testing.T) {
		f := NewCreate(val)
		f.SetThumbnail(&domain.Upload{Name: "t.png", ContentType: "image/png", Data: []byte("hi")})
		assert.Equal(t, "data:image/png;base64,aGk=", f.ThumbnailPreview())

		f.RemoveThumbnail()
		assert.Empty(t, f.ThumbnailPreview())
		assert.Nil(t, f.Values().Thumbnail)
	})
}

func TestCreatePayload_SendsThumbnailURLSeparately(t *testing.T) {
	f := NewCreate(val)
	f.SetTitle("Intro")
	f.SetDescription("Getting started")
	f.SetTags([]string{"go"})
	f.SetFile(videoUpload())
	f.SetThumbnailURL("https://cdn.example.com/thumb.png")

	in, err := f.CreatePayload()
	require.NoError(t, err)
	assert.Empty(t, in.URL)
	assert.Equal(t, "https://cdn.example.com/thumb.png", in.ThumbnailURL)
	assert.Equal(t, "intro.mp4", in.File.Name)
}

func TestCreatePayload_InvalidNeverBuilds(t *testing.T) {
	f := NewCreate(val)
	in, err := f.CreatePayload()
	require.Error(t, err)
	assert.Equal(t, domain.ResourceInput{}, in)
}

func TestUpdateDelta(t *testing.T) {
	tests := []struct {
		name   string
		edit   func(f *Form)
		fields []string
	}{
		{"nothing changed", func(*Form) {}, []string{"id"}},
		{"only title", func(f *Form) { f.SetTitle("Intro to Go") }, []string{"id", "title"}},
		{"tags reordered", func(f *Form) { f.SetTags([]string{"basics", "go"}) }, []string{"id"}},
		{"tags changed", func(f *Form) { f.SetTags([]string{"go"}) }, []string{"id", "tags"}},
		{"new file replaces url", func(f *Form) { f.SetFile(videoUpload()) }, []string{"id", "file"}},
		{"description and thumbnail url", func(f *Form) {
			f.SetDescription("New")
			f.SetThumbnailURL("https://cdn.example.com/t.png")
		}, []string{"id", "description", "thumbnailUrl"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewUpdate(val, existingVideo())
			tt.edit(f)

			d, err := f.UpdateDelta()
			require.NoError(t, err)
			assert.Equal(t, "res-1", d.ID)
			assert.Equal(t, tt.fields, d.Fields())
		})
	}
}

func TestUpdateDelta_OnlyTitleValue(t *testing.T) {
	f := NewUpdate(val, existingVideo())
	f.SetTitle("Renamed")

	d, err := f.UpdateDelta()
	require.NoError(t, err)
	require.NotNil(t, d.Title)
	assert.Equal(t, "Renamed", *d.Title)
	assert.Nil(t, d.Description)
	assert.Nil(t, d.Tags)
}

func TestUpdateDelta_Validation(t *testing.T) {
	f := NewUpdate(val, existingVideo())
	f.SetURL("")

	_, err := f.UpdateDelta()
	require.Error(t, err)
	assert.Equal(t, "Please select a video file", f.Error(FieldFile))
}

func TestUpdateDelta_CreateForm(t *testing.T) {
	_, err := NewCreate(val).UpdateDelta()
	assert.True(t, errors.Is(err, errors.ErrInternal))
}

func TestPreview(t *testing.T) {
	long := "https://example.com/articles/a-very-long-path-that-keeps-going-and-going"

	tests := []struct {
		name       string
		setup      func(f *Form)
		canPreview bool
		body       string
	}{
		{"empty", func(*Form) {}, false, "Video file not available for preview"},
		{"video with file", func(f *Form) {
			f.SetTitle("T")
			f.SetDescription("D")
			f.SetFile(videoUpload())
		}, true, "Video file: intro.mp4"},
		{"article short url", func(f *Form) {
			f.SetType(domain.TypeArticle)
			f.SetTitle("T")
			f.SetDescription("D")
			f.SetURL("https://example.com")
		}, true, "https://example.com"},
		{"article long url", func(f *Form) {
			f.SetType(domain.TypeArticle)
			f.SetTitle("T")
			f.SetDescription("D")
			f.SetURL(long)
		}, true, long[:50] + "..."},
		{"article without url", func(f *Form) {
			f.SetType(domain.TypeArticle)
			f.SetTitle("T")
			f.SetDescription("D")
		}, false, "No preview available"},
		{"pdf missing description", func(f *Form) {
			f.SetType(domain.TypePDF)
			f.SetTitle("T")
			f.SetFile(&domain.Upload{Name: "guide.pdf"})
		}, false, "PDF file: guide.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewCreate(val)
			tt.setup(f)
			assert.Equal(t, tt.canPreview, f.CanPreview())
			assert.Equal(t, tt.body, f.Preview().Body)
		})
	}
}

func TestPreview_DefaultTitle(t *testing.T) {
	assert.Equal(t, "Resource Preview", NewCreate(val).Preview().Title)
}

func TestDataURL_SniffsContentType(t *testing.T) {
	u := &domain.Upload{Data: []byte("%PDF-1.4 body")}
	assert.Equal(t, "data:application/pdf;base64,", DataURL(u)[:len("data:application/pdf;base64,")])
}
