package genre

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Science Fiction", "science-fiction"},
		{"Coming of Age", "coming-of-age"},
		{"Sci-Fi/Fantasy", "sci-fi-fantasy"},
		{"  Mystery & Thriller  ", "mystery-thriller"},
		{"Café Culture", "cafe-culture"},
		{"Über-Fiction", "uber-fiction"},
		{"---", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), "Slugify(%q)", tt.in)
	}
}

func TestNormalizeToSlug(t *testing.T) {
	assert.Equal(t, "science-fiction", NormalizeToSlug("Sci-Fi"))
	assert.Equal(t, "classic", NormalizeToSlug("Classics"))
	assert.Equal(t, "young-adult", NormalizeToSlug("YA"))
	assert.Equal(t, "coming-of-age", NormalizeToSlug("Bildungsroman"))

	// Unknown genres pass through as plain slugs.
	assert.Equal(t, "space-westerns", NormalizeToSlug("Space Westerns"))
}
