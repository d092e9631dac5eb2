package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicIDFromURL(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		folder string
		want   string
	}{
		{
			"resource file",
			"https://res.cloudinary.com/demo/raw/upload/v123/resources/abc123.pdf",
			"resources",
			"resources/abc123",
		},
		{
			"avatar without extension",
			"https://res.cloudinary.com/demo/image/upload/v123/avatars/xyz",
			"avatars",
			"avatars/xyz",
		},
		{
			"folder missing",
			"https://res.cloudinary.com/demo/raw/upload/v123/other/abc.pdf",
			"resources",
			"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PublicIDFromURL(tt.url, tt.folder))
		})
	}
}
