package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercase", "GOLANG", "golang"},
		{"spaces to dashes", "dev ops", "dev-ops"},
		{"multiple spaces", "dev   ops", "dev-ops"},
		{"trim", "  go  ", "go"},
		{"accents", "Café Tips", "cafe-tips"},
		{"punctuation", "Go!", "go"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Slugify(tt.input))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 50))
	assert.Equal(t, "abc...", Truncate("abcdef", 3))
}

func TestFold(t *testing.T) {
	assert.True(t, EqualFold("GoLang", "golang"))
	assert.True(t, EqualFold("ÉCOLE", "école"))
	assert.True(t, ContainsFold("Intro to Kubernetes", "KUBER"))
	assert.False(t, ContainsFold("Intro", "docker"))
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{" Go ", "go", "", "  ", "API", "api", "web"})
	assert.Equal(t, []string{"go", "api", "web"}, got)
	assert.Empty(t, NormalizeTags(nil))
}

func TestSameSet(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
		want bool
	}{
		{"equal", []string{"a", "b"}, []string{"a", "b"}, true},
		{"reordered", []string{"a", "b"}, []string{"b", "a"}, true},
		{"repeated", []string{"a", "a", "b"}, []string{"b", "a"}, true},
		{"missing", []string{"a", "b"}, []string{"a"}, false},
		{"extra", []string{"a"}, []string{"a", "c"}, false},
		{"both empty", nil, []string{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SameSet(tt.a, tt.b))
		})
	}
}

func TestIntersect(t *testing.T) {
	assert.Equal(t, []string{"b", "a"}, Intersect([]string{"b", "x", "a"}, []string{"a", "b", "c"}))
	assert.Empty(t, Intersect([]string{"x"}, nil))
}

func TestTagDiff(t *testing.T) {
	added, removed := TagDiff([]string{"a", "b"}, []string{"b", "c"})
	assert.Equal(t, []string{"c"}, added)
	assert.Equal(t, []string{"a"}, removed)
}
