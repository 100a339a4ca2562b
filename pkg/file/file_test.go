package file

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSupportedImageMIME(t *testing.T) {
	assert.True(t, IsSupportedImageMIME("image/jpeg"))
	assert.True(t, IsSupportedImageMIME("IMAGE/PNG"))
	assert.False(t, IsSupportedImageMIME("application/pdf"))
}

func TestMimeTypeFromExtension(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"photo.JPG", "image/jpeg"},
		{"photo.jpeg", "image/jpeg"},
		{"icon.png", "image/png"},
		{"anim.gif", "image/gif"},
		{"modern.webp", "image/webp"},
		{"archive.zip", "application/octet-stream"},
		{"noextension", "application/octet-stream"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, MimeTypeFromExtension(tc.filename), tc.filename)
	}
}

func TestExt(t *testing.T) {
	assert.Equal(t, ".png", Ext("photo.PNG"))
	assert.Equal(t, "", Ext("noext"))
	assert.Equal(t, "", Ext("trailing."))
}

func TestMakeStoredFilename(t *testing.T) {
	got := MakeStoredFilename("upload-1234", "my photo.jpg")
	assert.Equal(t, "1234_my photo.jpg", got)
}

func TestBasename(t *testing.T) {
	assert.Equal(t, "photo.jpg", Basename("/var/data/photo.jpg"))
}
