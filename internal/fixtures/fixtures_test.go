package fixtures

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/learninghub/learninghub/internal/domain"
	domainerrors "github.com/learninghub/learninghub/internal/errors"
	"github.com/learninghub/learninghub/internal/store"
	"github.com/learninghub/learninghub/internal/watcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
products:
  ecomm:
    - id: r1
      title: Go basics
      description: Intro
      type: video
      url: mock://uploads/ecomm/video/r1.mp4
      tags: [Go, web]
      createdAt: 2025-06-03T04:48:28Z
  crm:
    - title: CRM tips
      type: article
      url: https://example.com
`

type recordingTarget struct {
	mu    sync.Mutex
	calls map[domain.Product][]domain.Resource
}

func (r *recordingTarget) ReplaceResources(_ context.Context, p domain.Product, rs []domain.Resource) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.calls == nil {
		r.calls = map[domain.Product][]domain.Resource{}
	}
	r.calls[p] = rs
	return nil
}

func TestDecode(t *testing.T) {
	f, err := Decode(strings.NewReader(sample))
	require.NoError(t, err)

	assert.Equal(t, 2, f.Count())
	ecomm := f.Resources(domain.ProductEcomm)
	require.Len(t, ecomm, 1)
	assert.Equal(t, "r1", ecomm[0].ID)
	assert.Equal(t, domain.TypeVideo, ecomm[0].Type)
	assert.Equal(t, time.Date(2025, 6, 3, 4, 48, 28, 0, time.UTC), ecomm[0].CreatedAt.UTC())
	assert.Empty(t, f.Resources(domain.ProductAdmin))
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"unknown product", "products:\n  shop: []\n", `unknown product "shop"`},
		{"bad type", "products:\n  ecomm:\n    - title: x\n      type: audio\n", "products.ecomm[0]"},
		{"blank title", "products:\n  ecomm:\n    - title: ' '\n      type: pdf\n", "products.ecomm[0]"},
		{"unknown field", "products:\n  ecomm:\n    - title: x\n      type: pdf\n      color: red\n", "invalid fixtures"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.ErrorIs(t, err, domainerrors.ErrValidation)
		})
	}
}

func TestDecode_Empty(t *testing.T) {
	f, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Zero(t, f.Count())
}

func TestDefault(t *testing.T) {
	f := Default()
	assert.Len(t, f.Resources(domain.ProductEcomm), 7)
}

func TestApply_EmptiesUnlistedProducts(t *testing.T) {
	f, err := Decode(strings.NewReader(sample))
	require.NoError(t, err)

	target := &recordingTarget{}
	require.NoError(t, Apply(context.Background(), target, f))

	assert.Len(t, target.calls, len(domain.Products))
	assert.Len(t, target.calls[domain.ProductEcomm], 1)
	assert.Empty(t, target.calls[domain.ProductAdmin])
}

func TestApply_Store(t *testing.T) {
	s, err := store.Open("", nil)
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, Apply(ctx, s, Default()))

	tags, err := s.ListTags(ctx, domain.ProductEcomm)
	require.NoError(t, err)
	require.NotEmpty(t, tags)
	assert.Equal(t, domain.Tag{Name: "test", UsageCount: 7}, tags[0])

	list, err := s.ListResources(ctx, domain.ProductEcomm, domain.QueryParams{})
	require.NoError(t, err)
	assert.Equal(t, "Test Video Tutorial 2", list.Data[0].Title)
}

func TestReloader_AppliesChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fixtures.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	s, err := store.Open("", nil)
	require.NoError(t, err)
	defer s.Close()

	var mu sync.Mutex
	var lastErr error
	applied := 0
	r := NewReloader(path, s, nil,
		WithWatcherOptions(watcher.Options{SettleDelay: 20 * time.Millisecond}),
		OnApply(func(_ *File, err error) {
			mu.Lock()
			defer mu.Unlock()
			applied++
			lastErr = err
		}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	count := func() int {
		list, err := s.ListResources(context.Background(), domain.ProductEcomm, domain.QueryParams{})
		if err != nil {
			return -1
		}
		return list.Total
	}
	assert.Eventually(t, func() bool { return count() == 1 }, 2*time.Second, 10*time.Millisecond)

	// A broken edit keeps the previous data.
	require.NoError(t, os.WriteFile(path, []byte("products: ["), 0o644))
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return applied >= 2 && lastErr != nil
	}, 3*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, count())

	grown := strings.Replace(sample, "  crm:", "    - title: Second\n      type: pdf\n  crm:", 1)
	require.NoError(t, os.WriteFile(path, []byte(grown), 0o644))
	assert.Eventually(t, func() bool { return count() == 2 }, 3*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("reloader did not stop")
	}
}

func TestReloader_MissingFile(t *testing.T) {
	r := NewReloader(filepath.Join(t.TempDir(), "missing.yaml"), &recordingTarget{}, nil)
	err := r.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read fixtures")
}
